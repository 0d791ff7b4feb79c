package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/akyairhashvil/studyplan/internal/models"
	"github.com/akyairhashvil/studyplan/internal/planner"
	"github.com/akyairhashvil/studyplan/internal/scheduler"
	"github.com/akyairhashvil/studyplan/internal/util"
	"github.com/spf13/viper"
)

// Settings is the complete user configuration.
type Settings struct {
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Plan     PlanConfig     `mapstructure:"plan"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Storage  StorageConfig  `mapstructure:"storage"`
	UI       UIConfig       `mapstructure:"ui"`
}

// ScheduleConfig controls the working-hours window and snap grid.
type ScheduleConfig struct {
	// WorkdayStart and WorkdayEnd use 24h "HH:MM" clock strings.
	WorkdayStart string `mapstructure:"workday_start"`
	WorkdayEnd   string `mapstructure:"workday_end"`
	// SnapMinutes is the placement grid. Must divide a day evenly.
	SnapMinutes int `mapstructure:"snap_minutes"`
	// Timezone is an IANA zone name. Empty uses the system zone.
	Timezone string `mapstructure:"timezone"`
}

// PlanConfig overrides the decomposition rule table.
type PlanConfig struct {
	MinimumFloorMinutes int                       `mapstructure:"minimum_floor_minutes"`
	FallbackMinutes     int                       `mapstructure:"fallback_minutes"`
	Categories          map[string]CategoryConfig `mapstructure:"categories"`
}

// CategoryConfig overrides one category. Zero fields keep the built-in value.
type CategoryConfig struct {
	SessionMinutes   int `mapstructure:"session_minutes"`
	SpanDays         int `mapstructure:"span_days"`
	MinSessions      int `mapstructure:"min_sessions"`
	MaxSessions      int `mapstructure:"max_sessions"`
	SingleSessionMax int `mapstructure:"single_session_max"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`
	// File receives JSON logs. Empty keeps logs off the terminal entirely.
	File string `mapstructure:"file"`
}

// StorageConfig locates the database.
type StorageConfig struct {
	// Path overrides the database file. Empty uses the data directory.
	Path string `mapstructure:"path"`
}

// UIConfig controls the dashboard.
type UIConfig struct {
	Theme string `mapstructure:"theme"`
}

// Default returns Settings with the built-in values.
func Default() *Settings {
	return &Settings{
		Schedule: ScheduleConfig{
			WorkdayStart: DefaultWorkdayStart,
			WorkdayEnd:   DefaultWorkdayEnd,
			SnapMinutes:  DefaultSnapMinutes,
		},
		Plan: PlanConfig{
			MinimumFloorMinutes: planner.DefaultMinimumFloor,
			FallbackMinutes:     planner.DefaultFallbackMinutes,
			Categories:          map[string]CategoryConfig{},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		UI: UIConfig{
			Theme: "default",
		},
	}
}

// SetDefaults registers every default on v so env vars and partial files
// resolve against them.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("schedule.workday_start", d.Schedule.WorkdayStart)
	v.SetDefault("schedule.workday_end", d.Schedule.WorkdayEnd)
	v.SetDefault("schedule.snap_minutes", d.Schedule.SnapMinutes)
	v.SetDefault("schedule.timezone", d.Schedule.Timezone)
	v.SetDefault("plan.minimum_floor_minutes", d.Plan.MinimumFloorMinutes)
	v.SetDefault("plan.fallback_minutes", d.Plan.FallbackMinutes)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("ui.theme", d.UI.Theme)
}

// NewViper returns a viper instance wired for studyplan: defaults, the
// config file search path and STUDYPLAN_* environment overrides.
func NewViper(configFile string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(ConfigDir())
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file if present and returns validated settings.
func Load(v *viper.Viper) (*Settings, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	s := Default()
	if err := v.Unmarshal(s); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if errs := s.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return s, nil
}

// ValidationErrors collects every problem found in a config.
type ValidationErrors []error

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, err := range v {
		msgs[i] = err.Error()
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Validate checks field ranges and cross-field consistency.
func (s *Settings) Validate() []error {
	var errs []error
	start, err := ParseClock(s.Schedule.WorkdayStart)
	if err != nil {
		errs = append(errs, fmt.Errorf("schedule.workday_start: %w", err))
	}
	end, err := ParseClock(s.Schedule.WorkdayEnd)
	if err != nil {
		errs = append(errs, fmt.Errorf("schedule.workday_end: %w", err))
	}
	if err == nil && end <= start {
		errs = append(errs, fmt.Errorf("schedule.workday_end must be after workday_start"))
	}
	if s.Schedule.SnapMinutes <= 0 || (24*60)%s.Schedule.SnapMinutes != 0 {
		errs = append(errs, fmt.Errorf("schedule.snap_minutes must divide a day, got %d", s.Schedule.SnapMinutes))
	}
	if s.Schedule.Timezone != "" {
		if _, err := time.LoadLocation(s.Schedule.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("schedule.timezone: %w", err))
		}
	}
	if s.Plan.MinimumFloorMinutes < 0 || s.Plan.FallbackMinutes < 0 {
		errs = append(errs, fmt.Errorf("plan minutes must not be negative"))
	}
	for name, c := range s.Plan.Categories {
		if _, err := models.ParseCategory(name); err != nil {
			errs = append(errs, fmt.Errorf("plan.categories: %w", err))
			continue
		}
		if c.SessionMinutes < 0 || c.SpanDays < 0 || c.MinSessions < 0 || c.MaxSessions < 0 || c.SingleSessionMax < 0 {
			errs = append(errs, fmt.Errorf("plan.categories.%s: values must not be negative", name))
		}
		if c.MaxSessions > 0 && c.MinSessions > c.MaxSessions {
			errs = append(errs, fmt.Errorf("plan.categories.%s: min_sessions exceeds max_sessions", name))
		}
	}
	switch strings.ToLower(s.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level: unknown level %q", s.Logging.Level))
	}
	return errs
}

// ParseClock converts "HH:MM" into an offset from midnight. "24:00" is
// accepted as the end of the day.
func ParseClock(s string) (time.Duration, error) {
	var h, m int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	if h < 0 || m < 0 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("clock %q out of range", s)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute, nil
}

// Location resolves the configured timezone.
func (s *Settings) Location() *time.Location {
	if s.Schedule.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(s.Schedule.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Rules builds the planner parameter object from the built-in table and
// any configured overrides.
func (s *Settings) Rules() planner.Rules {
	rules := planner.DefaultRules()
	if s.Plan.MinimumFloorMinutes > 0 {
		rules.MinimumFloor = s.Plan.MinimumFloorMinutes
	}
	if s.Plan.FallbackMinutes > 0 {
		rules.FallbackMinutes = s.Plan.FallbackMinutes
	}
	for name, o := range s.Plan.Categories {
		c, err := models.ParseCategory(name)
		if err != nil {
			continue
		}
		rule := rules.Rule(c)
		if o.SessionMinutes > 0 {
			rule.SessionMinutes = o.SessionMinutes
		}
		if o.SpanDays > 0 {
			rule.SpanDays = o.SpanDays
		}
		if o.MinSessions > 0 {
			rule.MinSessions = o.MinSessions
		}
		if o.MaxSessions > 0 {
			rule.MaxSessions = o.MaxSessions
		}
		if o.SingleSessionMax > 0 {
			rule.SingleSessionMax = o.SingleSessionMax
		}
		rules.Categories[c] = rule
	}
	return rules
}

// Constraints builds the scheduler parameter object for a pass starting at
// now, with busy calendar events.
func (s *Settings) Constraints(now time.Time, busy []models.CalendarEvent) (scheduler.Constraints, error) {
	start, err := ParseClock(s.Schedule.WorkdayStart)
	if err != nil {
		return scheduler.Constraints{}, err
	}
	end, err := ParseClock(s.Schedule.WorkdayEnd)
	if err != nil {
		return scheduler.Constraints{}, err
	}
	c := scheduler.Constraints{
		WorkdayStart: start,
		WorkdayEnd:   end,
		Granularity:  time.Duration(s.Schedule.SnapMinutes) * time.Minute,
		Location:     s.Location(),
		NotBefore:    now,
		Busy:         busy,
	}
	return c, c.Validate()
}

// ConfigDir returns the directory searched for config.yaml.
func ConfigDir() string {
	return util.XDGDir("XDG_CONFIG_HOME", AppName, ".config")
}
