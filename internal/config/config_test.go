package config

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"
)

func setMinimalValidConfigEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OORT_URL", "https://oort.example.org")
	t.Setenv("OORT_TOKEN", "token-test")
	t.Setenv("TIMEZONE", "UTC")
}

func TestLoadConfigFromEnvWithDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing-config.yaml"))
	setMinimalValidConfigEnv(t)
	t.Setenv("RESOURCES", `[["allKenyaComplaints","kenya-form","Kenya"]]`)

	cfg := LoadConfig()

	if cfg.OortURL != "https://oort.example.org" {
		t.Fatalf("unexpected oort url: %q", cfg.OortURL)
	}
	if cfg.AssignmentSchedule != defaultAssignmentSchedule {
		t.Fatalf("unexpected schedule default: %q", cfg.AssignmentSchedule)
	}
	if cfg.PaceInterval() != time.Second {
		t.Fatalf("unexpected pace interval default: %s", cfg.PaceInterval())
	}
	if cfg.DBPath != "./autoassign.db" {
		t.Fatalf("unexpected db path default: %q", cfg.DBPath)
	}
	if cfg.ExternalHTTPTimeoutSeconds != int(defaultExternalHTTPTimeout/time.Second) {
		t.Fatalf("unexpected external HTTP timeout default: %d", cfg.ExternalHTTPTimeoutSeconds)
	}
	if cfg.Location == nil || cfg.Location.String() != "UTC" {
		t.Fatalf("unexpected location: %v", cfg.Location)
	}
	if cfg.SlackConfigured() {
		t.Fatal("slack must not be configured by default")
	}

	resources, err := cfg.Resources()
	if err != nil {
		t.Fatalf("Resources returned error: %v", err)
	}
	if len(resources) != 1 || resources[0].Region != "Kenya" || resources[0].InspectorQuery != "kenya-form" {
		t.Fatalf("unexpected resources: %+v", resources)
	}
}

func TestLoadConfigYAMLAndEnvOverride(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
oort_url: "https://yaml.example.org"
oort_token: "yaml-token"
assignment_schedule: "*/5 * * * *"
rate_limit_interval_ms: 1500
db_path: "/tmp/yaml.db"
external_http_timeout_seconds: 75
resources:
  - ["allKenyaComplaints", "kenya-form", "Kenya"]
  - ["allUgandaComplaints", "uganda-form", "Uganda"]
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CONFIG_PATH", cfgPath)
	t.Setenv("OORT_TOKEN", "env-token")
	t.Setenv("DB_PATH", "/tmp/env.db")
	t.Setenv("EXTERNAL_HTTP_TIMEOUT_SECONDS", "120")
	t.Setenv("RESOURCES", "")

	cfg := LoadConfig()

	if cfg.OortURL != "https://yaml.example.org" {
		t.Fatalf("expected oort url from yaml, got %q", cfg.OortURL)
	}
	if cfg.OortToken != "env-token" {
		t.Fatalf("expected oort token from env override, got %q", cfg.OortToken)
	}
	if cfg.DBPath != "/tmp/env.db" {
		t.Fatalf("expected db path from env override, got %q", cfg.DBPath)
	}
	if cfg.PaceInterval() != 1500*time.Millisecond {
		t.Fatalf("expected pace interval from yaml, got %s", cfg.PaceInterval())
	}
	if cfg.ExternalHTTPTimeoutSeconds != 120 {
		t.Fatalf("expected external HTTP timeout from env override, got %d", cfg.ExternalHTTPTimeoutSeconds)
	}

	resources, err := cfg.Resources()
	if err != nil {
		t.Fatalf("Resources returned error: %v", err)
	}
	if len(resources) != 2 || resources[1].ComplaintQuery != "allUgandaComplaints" {
		t.Fatalf("unexpected resources: %+v", resources)
	}
}

func TestResourcesEnvWinsOverYAML(t *testing.T) {
	cfg := Config{
		ResourceList: [][]string{{"a", "b", "c"}},
		RawResources: `[["x","y","z"]]`,
	}
	resources, err := cfg.Resources()
	if err != nil {
		t.Fatalf("Resources returned error: %v", err)
	}
	if len(resources) != 1 || resources[0].Region != "z" {
		t.Fatalf("expected env resources to win, got %+v", resources)
	}
}

func TestResourcesMissingOrMalformed(t *testing.T) {
	if _, err := (Config{}).Resources(); !errors.Is(err, ErrNoResources) {
		t.Fatalf("expected ErrNoResources, got %v", err)
	}

	cases := map[string]string{
		"not json":     `allKenyaComplaints`,
		"empty array":  `[]`,
		"short triple": `[["allKenyaComplaints","kenya-form"]]`,
		"empty field":  `[["allKenyaComplaints","","Kenya"]]`,
		"wrong shape":  `{"query":"allKenyaComplaints"}`,
	}
	for name, raw := range cases {
		if _, err := ParseResources(raw); err == nil {
			t.Errorf("%s: expected ParseResources(%q) to fail", name, raw)
		}
	}
}

func TestParseSchedule(t *testing.T) {
	from := time.Date(2026, 3, 2, 10, 3, 30, 0, time.UTC)

	sched, err := ParseSchedule(defaultAssignmentSchedule)
	if err != nil {
		t.Fatalf("ParseSchedule returned error: %v", err)
	}
	if got, want := sched.Next(from), time.Date(2026, 3, 2, 10, 10, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("unexpected next run: got %v want %v", got, want)
	}

	sched, err = ParseSchedule("*/5 * * * *")
	if err != nil {
		t.Fatalf("ParseSchedule five-field returned error: %v", err)
	}
	if got, want := sched.Next(from), time.Date(2026, 3, 2, 10, 5, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("unexpected next run: got %v want %v", got, want)
	}

	if _, err := ParseSchedule("every ten minutes"); err == nil {
		t.Fatal("expected ParseSchedule to fail for malformed input")
	}
}

func TestEnvOverrideHelpers(t *testing.T) {
	s := "initial"
	t.Setenv("AA_TEST_STR", "value")
	envOverride(&s, "AA_TEST_STR")
	if s != "value" {
		t.Fatalf("envOverride failed, got %q", s)
	}

	e := "yaml"
	t.Setenv("AA_TEST_EMPTY", "")
	envOverrideAllowEmpty(&e, "AA_TEST_EMPTY")
	if e != "" {
		t.Fatalf("envOverrideAllowEmpty failed, got %q", e)
	}

	i := 1
	t.Setenv("AA_TEST_INT", "42")
	envOverrideInt(&i, "AA_TEST_INT")
	if i != 42 {
		t.Fatalf("envOverrideInt failed, got %d", i)
	}
}

func TestLoadConfigMissingTokenFatal(t *testing.T) {
	if os.Getenv("TEST_MISSING_TOKEN_FATAL") == "1" {
		_ = os.Setenv("CONFIG_PATH", filepath.Join(os.TempDir(), "no-config.yaml"))
		_ = os.Setenv("OORT_URL", "https://oort.example.org")
		_ = os.Unsetenv("OORT_TOKEN")
		LoadConfig()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestLoadConfigMissingTokenFatal")
	cmd.Env = append(os.Environ(), "TEST_MISSING_TOKEN_FATAL=1")
	err := cmd.Run()
	if err == nil {
		t.Fatal("expected subprocess to exit with failure")
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got: %v", err)
	}
}
