package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

const validYAML = `
alta:
  base_url: https://acme.eu2.example.com
  api_token: secret-token
  timeout: 45s
  max_attempts: 5
matrix:
  homeserver: https://matrix.example.org
  user_id: "@assistant:example.org"
  access_token: matrix-token
  rooms:
    - "!ops:example.org"
allowed_senders:
  - "@alice:example.org"
database:
  path: /var/lib/assistant/assistant.db
http:
  addr: ":9090"
`

func TestParseValid(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Alta.BaseURL != "https://acme.eu2.example.com" {
		t.Errorf("BaseURL = %q", cfg.Alta.BaseURL)
	}
	if time.Duration(cfg.Alta.Timeout) != 45*time.Second {
		t.Errorf("Timeout = %v, want 45s", time.Duration(cfg.Alta.Timeout))
	}
	if cfg.Alta.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d, want 5", cfg.Alta.MaxAttempts)
	}
	if len(cfg.Matrix.Rooms) != 1 || cfg.Matrix.Rooms[0] != "!ops:example.org" {
		t.Errorf("Rooms = %v", cfg.Matrix.Rooms)
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Errorf("Addr = %q", cfg.HTTP.Addr)
	}
}

func TestParseRejectsUnknownField(t *testing.T) {
	_, err := Parse([]byte("alta:\n  base_urll: typo\n"))
	if err == nil {
		t.Fatal("expected schema validation error")
	}
}

func TestParseRejectsBadUserID(t *testing.T) {
	_, err := Parse([]byte("matrix:\n  user_id: not-an-mxid\n"))
	if err == nil {
		t.Fatal("expected schema validation error")
	}
}

func TestParseRejectsBadDuration(t *testing.T) {
	_, err := Parse([]byte("alta:\n  timeout: soon\n"))
	if err == nil {
		t.Fatal("expected error for non-duration timeout")
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := t.TempDir() + "/config.yaml"
	if err := os.WriteFile(path, []byte(validYAML), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ASSISTANT_CONFIG", path)
	t.Setenv("ALTA_BASE_URL", "https://override.example.com")
	t.Setenv("ALLOWED_SENDERS", "@bob:example.org,@carol:example.org")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Alta.BaseURL != "https://override.example.com" {
		t.Errorf("BaseURL = %q, want the env override", cfg.Alta.BaseURL)
	}
	if len(cfg.AllowedSenders) != 2 {
		t.Errorf("AllowedSenders = %v", cfg.AllowedSenders)
	}
	// File values without an override survive.
	if cfg.Matrix.UserID != "@assistant:example.org" {
		t.Errorf("UserID = %q", cfg.Matrix.UserID)
	}
}

func TestLoadReportsAllMissingFields(t *testing.T) {
	t.Setenv("ASSISTANT_CONFIG", "")
	t.Setenv("ALTA_BASE_URL", "")
	t.Setenv("ALTA_API_TOKEN", "")
	t.Setenv("MATRIX_HOMESERVER", "")
	t.Setenv("MATRIX_USER_ID", "")
	t.Setenv("MATRIX_ACCESS_TOKEN", "")
	t.Setenv("MATRIX_ROOMS", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for empty configuration")
	}
	for _, want := range []string{"alta.base_url", "matrix.homeserver", "matrix.rooms"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should name %s", err, want)
		}
	}
}

func TestLoadWithoutHTTPAddrLeavesHealthServerOff(t *testing.T) {
	const yamlNoHTTP = `
alta:
  base_url: https://acme.eu2.example.com
  api_token: secret-token
matrix:
  homeserver: https://matrix.example.org
  user_id: "@assistant:example.org"
  access_token: matrix-token
  rooms:
    - "!ops:example.org"
`
	path := t.TempDir() + "/config.yaml"
	if err := os.WriteFile(path, []byte(yamlNoHTTP), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ASSISTANT_CONFIG", path)
	t.Setenv("HTTP_ADDR", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// No default address: empty means the health server stays off.
	if cfg.HTTP.Addr != "" {
		t.Errorf("Addr = %q, want empty", cfg.HTTP.Addr)
	}
	// Other defaults still apply.
	if time.Duration(cfg.Alta.Timeout) != 30*time.Second {
		t.Errorf("Timeout = %v, want the 30s default", time.Duration(cfg.Alta.Timeout))
	}
	if cfg.Database.Path != "assistant.db" {
		t.Errorf("Path = %q, want the default", cfg.Database.Path)
	}
}

func TestIsAllowedSender(t *testing.T) {
	open := &Config{}
	if !open.IsAllowedSender("@anyone:example.org") {
		t.Error("empty allowlist must allow everyone")
	}

	restricted := &Config{AllowedSenders: []string{"@alice:example.org"}}
	if !restricted.IsAllowedSender("@alice:example.org") {
		t.Error("listed sender must be allowed")
	}
	if restricted.IsAllowedSender("@mallory:example.org") {
		t.Error("unlisted sender must be rejected")
	}
}
