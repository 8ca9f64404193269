package domain

var Tables = []interface{}{
	// System
	&SysActivityLog{},
	// Catalog
	&Product{},
	// Orders
	&Order{},
	&OrderItem{},
	// Alerts
	&AlertSetting{},
}
