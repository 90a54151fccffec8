package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"autoassign/internal/domain"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const defaultExternalHTTPTimeout = 90 * time.Second
const defaultExternalHTTPTimeoutSeconds = int(defaultExternalHTTPTimeout / time.Second)

// Every ten minutes, on the minute.
const defaultAssignmentSchedule = "0 */10 * * * *"

var ErrNoResources = errors.New("no resources configured, check the resources key or RESOURCES env var")

type Config struct {
	OortURL   string `yaml:"oort_url"`
	OortToken string `yaml:"oort_token"`

	// Each entry is [complaint query, inspector query, region label].
	ResourceList [][]string `yaml:"resources"`
	// RESOURCES env var, a JSON array of the same triples. Wins over ResourceList.
	RawResources string `yaml:"-"`

	AssignmentSchedule  string `yaml:"assignment_schedule"`
	RateLimitIntervalMS int    `yaml:"rate_limit_interval_ms"`

	DBPath                     string `yaml:"db_path"`
	ExternalHTTPTimeoutSeconds int    `yaml:"external_http_timeout_seconds"`
	HTTPAddr                   string `yaml:"http_addr"`

	SlackBotToken   string `yaml:"slack_bot_token"`
	ReportChannelID string `yaml:"report_channel_id"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	Timezone  string `yaml:"timezone"`

	Location *time.Location `yaml:"-"` // computed from Timezone, not from YAML
}

func LoadConfig() Config {
	var cfg Config

	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	envOverride(&cfg.OortURL, "OORT_URL")
	envOverride(&cfg.OortToken, "OORT_TOKEN")
	envOverride(&cfg.RawResources, "RESOURCES")
	envOverride(&cfg.AssignmentSchedule, "ASSIGNMENT_SCHEDULE")
	envOverrideInt(&cfg.RateLimitIntervalMS, "RATE_LIMIT_INTERVAL_MS")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverrideInt(&cfg.ExternalHTTPTimeoutSeconds, "EXTERNAL_HTTP_TIMEOUT_SECONDS")
	envOverrideAllowEmpty(&cfg.HTTPAddr, "HTTP_ADDR")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.ReportChannelID, "REPORT_CHANNEL_ID")
	envOverride(&cfg.LogLevel, "LOG_LEVEL")
	envOverride(&cfg.LogFormat, "LOG_FORMAT")
	envOverride(&cfg.Timezone, "TIMEZONE")

	if cfg.AssignmentSchedule == "" {
		cfg.AssignmentSchedule = defaultAssignmentSchedule
	}
	if cfg.RateLimitIntervalMS == 0 {
		cfg.RateLimitIntervalMS = 1000
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./autoassign.db"
	}
	if cfg.ExternalHTTPTimeoutSeconds == 0 {
		cfg.ExternalHTTPTimeoutSeconds = defaultExternalHTTPTimeoutSeconds
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "UTC"
	}

	required := map[string]string{
		"oort_url":   cfg.OortURL,
		"oort_token": cfg.OortToken,
	}
	for name, val := range required {
		if val == "" {
			log.Fatalf("Required config '%s' is not set (via config.yaml or env var)", name)
		}
	}

	if (cfg.SlackBotToken == "") != (cfg.ReportChannelID == "") {
		log.Fatalf("slack_bot_token and report_channel_id must be set together")
	}

	// Resources are resolved again at the start of every run; a bad list
	// fails those runs rather than the process.
	if _, err := cfg.Resources(); err != nil {
		log.Printf("WARNING: %v. Assignment runs will abort until this is fixed.", err)
	}

	if strings.EqualFold(cfg.Timezone, "Local") {
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			log.Fatalf("invalid timezone '%s': %v", cfg.Timezone, err)
		}
		cfg.Location = loc
	}

	if _, err := ParseSchedule(cfg.AssignmentSchedule); err != nil {
		log.Fatalf("invalid assignment_schedule '%s': %v", cfg.AssignmentSchedule, err)
	}
	if cfg.RateLimitIntervalMS < 0 {
		log.Fatalf("invalid rate_limit_interval_ms '%d': must be >= 0", cfg.RateLimitIntervalMS)
	}
	if cfg.ExternalHTTPTimeoutSeconds < 5 {
		log.Fatalf("invalid external_http_timeout_seconds '%d': must be >= 5", cfg.ExternalHTTPTimeoutSeconds)
	}
	switch strings.ToLower(cfg.LogFormat) {
	case "text", "json":
	default:
		log.Fatalf("log_format must be 'text' or 'json', got '%s'", cfg.LogFormat)
	}

	return cfg
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideAllowEmpty(field *string, envKey string) {
	if val, ok := os.LookupEnv(envKey); ok {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

// Resources returns the configured resources in order. The RESOURCES env var
// takes precedence over the yaml list.
func (c Config) Resources() ([]domain.Resource, error) {
	if strings.TrimSpace(c.RawResources) != "" {
		return ParseResources(c.RawResources)
	}
	if len(c.ResourceList) == 0 {
		return nil, ErrNoResources
	}
	return resourcesFromTriples(c.ResourceList)
}

func (c Config) PaceInterval() time.Duration {
	return time.Duration(c.RateLimitIntervalMS) * time.Millisecond
}

func (c Config) SlackConfigured() bool {
	return c.SlackBotToken != "" && c.ReportChannelID != ""
}

// ParseResources parses a JSON array of [complaintQuery, inspectorQuery, region]
// triples.
func ParseResources(raw string) ([]domain.Resource, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrNoResources
	}
	var triples [][]string
	if err := json.Unmarshal([]byte(raw), &triples); err != nil {
		return nil, fmt.Errorf("parse resources: %w", err)
	}
	if len(triples) == 0 {
		return nil, ErrNoResources
	}
	return resourcesFromTriples(triples)
}

func resourcesFromTriples(triples [][]string) ([]domain.Resource, error) {
	resources := make([]domain.Resource, 0, len(triples))
	for i, t := range triples {
		if len(t) != 3 {
			return nil, fmt.Errorf("resource %d: want [complaint query, inspector query, region], got %d fields", i, len(t))
		}
		for j, field := range t {
			if strings.TrimSpace(field) == "" {
				return nil, fmt.Errorf("resource %d: field %d is empty", i, j)
			}
		}
		resources = append(resources, domain.Resource{
			ComplaintQuery: strings.TrimSpace(t[0]),
			InspectorQuery: strings.TrimSpace(t[1]),
			Region:         strings.TrimSpace(t[2]),
		})
	}
	return resources, nil
}

// ParseSchedule accepts standard 5-field cron expressions and 6-field ones
// with a leading seconds field.
func ParseSchedule(spec string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return parser.Parse(strings.TrimSpace(spec))
}
