package config

import (
	"path/filepath"
	"strings"
	"testing"
)

const sampleHCL = `
listen        = "127.0.0.1:9000"
state_dir     = "/tmp/nfcond-test"
file_mode     = "0600"
poll_interval = "250ms"

log {
  level = "debug"
  json  = true
}

trigger {
  listen   = "127.0.0.1:9099"
  password = "hunter2"
}

namespace "default" {
  conditions = ["blackout", "maintenance"]
}

namespace "dmz" {}
`

func TestLoadBytes(t *testing.T) {
	cfg, err := LoadBytes([]byte(sampleHCL), "test.hcl")
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Listen != "127.0.0.1:9000" {
		t.Errorf("Listen = %q", cfg.Listen)
	}
	if cfg.Log.Level != "debug" || !cfg.Log.JSON {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Trigger == nil || cfg.Trigger.Password != "hunter2" {
		t.Errorf("Trigger = %+v", cfg.Trigger)
	}
	if len(cfg.Namespaces) != 2 {
		t.Fatalf("got %d namespaces", len(cfg.Namespaces))
	}
	if cfg.Namespaces[0].Name != "default" || len(cfg.Namespaces[0].Conditions) != 2 {
		t.Errorf("namespace[0] = %+v", cfg.Namespaces[0])
	}

	mode, err := cfg.Mode()
	if err != nil || mode != 0o600 {
		t.Errorf("Mode() = %v, %v", mode, err)
	}
	if poll, err := cfg.Poll(); err != nil || poll.String() != "250ms" {
		t.Errorf("Poll() = %v, %v", poll, err)
	}
}

func TestLoadBytesDefaults(t *testing.T) {
	cfg, err := LoadBytes([]byte(``), "empty.hcl")
	if err != nil {
		t.Fatal(err)
	}
	def := Default()
	if cfg.Listen != def.Listen || cfg.StateDir != def.StateDir {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.Log == nil || cfg.Log.Level != "info" {
		t.Errorf("log defaults not applied: %+v", cfg.Log)
	}
}

func TestLoadFileMissingYieldsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.hcl"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Listen != Default().Listen {
		t.Error("missing file should yield defaults")
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name string
		hcl  string
		want string
	}{
		{"bad namespace name", `namespace "a/b" {}`, "invalid"},
		{"duplicate namespace", "namespace \"x\" {}\nnamespace \"x\" {}", "twice"},
		{"bad condition name", `namespace "x" { conditions = [""] }`, "invalid"},
		{"bad file mode", `file_mode = "rwxr"`, "octal"},
		{"bad poll interval", `poll_interval = "fast"`, "poll_interval"},
		{"negative poll interval", `poll_interval = "-1s"`, "positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadBytes([]byte(tt.hcl), "bad.hcl")
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}
