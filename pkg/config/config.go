package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	Scheduler SchedulerConfig
	Planner   PlannerConfig
	Export    ExportConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulerConfig tunes the section assignment engine.
type SchedulerConfig struct {
	SectionCapacity   int
	DefaultDemand     int
	TeacherDailyCap   int
	RepairEnabled     bool
	RepairDepth       int
	GenerationTimeout time.Duration
	ScheduleCacheTTL  time.Duration
}

// PlannerConfig governs student enrollment rules.
type PlannerConfig struct {
	MaxCoursesPerTerm   int
	RequiredCredits     int
	ExpectedCreditsYear float64
}

// ExportConfig toggles timetable export formats and governs archived
// export files.
type ExportConfig struct {
	Enabled    bool
	Dir        string
	SignSecret string
	LinkTTL    time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Scheduler = SchedulerConfig{
		SectionCapacity:   v.GetInt("SCHEDULER_SECTION_CAPACITY"),
		DefaultDemand:     v.GetInt("SCHEDULER_DEFAULT_DEMAND"),
		TeacherDailyCap:   v.GetInt("SCHEDULER_TEACHER_DAILY_CAP"),
		RepairEnabled:     v.GetBool("SCHEDULER_REPAIR_ENABLED"),
		RepairDepth:       v.GetInt("SCHEDULER_REPAIR_DEPTH"),
		GenerationTimeout: parseDuration(v.GetString("SCHEDULER_GENERATION_TIMEOUT"), 2*time.Minute),
		ScheduleCacheTTL:  parseDuration(v.GetString("SCHEDULER_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Planner = PlannerConfig{
		MaxCoursesPerTerm:   v.GetInt("PLANNER_MAX_COURSES_PER_TERM"),
		RequiredCredits:     v.GetInt("PLANNER_REQUIRED_CREDITS"),
		ExpectedCreditsYear: v.GetFloat64("PLANNER_EXPECTED_CREDITS_PER_YEAR"),
	}

	cfg.Export = ExportConfig{
		Enabled:    v.GetBool("ENABLE_EXPORT"),
		Dir:        v.GetString("EXPORT_DIR"),
		SignSecret: v.GetString("EXPORT_SIGN_SECRET"),
		LinkTTL:    parseDuration(v.GetString("EXPORT_LINK_TTL"), 24*time.Hour),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "mhs_scheduler")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SCHEDULER_SECTION_CAPACITY", 10)
	v.SetDefault("SCHEDULER_DEFAULT_DEMAND", 10)
	v.SetDefault("SCHEDULER_TEACHER_DAILY_CAP", 4)
	v.SetDefault("SCHEDULER_REPAIR_ENABLED", false)
	v.SetDefault("SCHEDULER_REPAIR_DEPTH", 2)
	v.SetDefault("SCHEDULER_GENERATION_TIMEOUT", "2m")
	v.SetDefault("SCHEDULER_CACHE_TTL", "5m")

	v.SetDefault("PLANNER_MAX_COURSES_PER_TERM", 5)
	v.SetDefault("PLANNER_REQUIRED_CREDITS", 30)
	v.SetDefault("PLANNER_EXPECTED_CREDITS_PER_YEAR", 14)

	v.SetDefault("ENABLE_EXPORT", true)
	v.SetDefault("EXPORT_DIR", "./exports")
	v.SetDefault("EXPORT_SIGN_SECRET", "")
	v.SetDefault("EXPORT_LINK_TTL", "24h")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
