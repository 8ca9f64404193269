package domain

import "time"

// AlertSetting is a single logical row holding the stock-alert
// configuration. It is lazily created with defaults on first access.
type AlertSetting struct {
	ID            int64     `json:"id,string" form:"id"`
	ReceiverEmail string    `json:"receiver_email" form:"receiver_email"` // No sends happen while empty
	CcEmails      string    `json:"cc_emails" form:"cc_emails"`           // Comma-separated additional recipients
	SendHour      string    `gorm:"size:2" json:"send_hour" form:"send_hour"` // Zero-padded "00".."23"
	LastSentDate  string    `gorm:"size:10" json:"last_sent_date"`            // "2006-01-02" daily dedup marker, empty until first send
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName Specify table name
func (AlertSetting) TableName() string {
	return "alert_settings"
}
