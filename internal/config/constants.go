package config

import "time"

// Scheduling defaults.
const (
	DefaultWorkdayStart = "07:00"
	DefaultWorkdayEnd   = "23:00"
	DefaultSnapMinutes  = 15
)

// Timeouts.
const (
	ToastDuration  = 4 * time.Second
	RequestTimeout = 10 * time.Second
)

// Application settings.
const (
	AppName       = "studyplan"
	DBFileName    = "studyplan.db"
	ConfigName    = "config"
	EnvPrefix     = "STUDYPLAN"
	ReportsSubdir = "reports"
)

// Settings keys persisted in the database.
const (
	SettingLastRefresh = "last_refresh"
)
