package domain

import "time"

// SysActivityLog records back-office and storefront activity, written
// asynchronously off the event bus. Failures to log never fail the
// operation being logged.
type SysActivityLog struct {
	ID       int64     `json:"id,string"`
	Action   string    `gorm:"size:64;index" json:"action"`
	RefID    int64     `gorm:"index" json:"ref_id,string"`
	Detail   string    `json:"detail"`
	OptTime  time.Time `gorm:"index" json:"opt_time"`
}

// TableName Specify table name
func (SysActivityLog) TableName() string {
	return "sys_activity_log"
}
