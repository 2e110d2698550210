package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/moffa90/go-eepromab/internal/log"
	"github.com/moffa90/go-eepromab/protocol"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Device != "/dev/vcio" {
		t.Errorf("Device = %q, want /dev/vcio", cfg.Device)
	}
	if cfg.PacketSize != protocol.MaxPacketSize {
		t.Errorf("PacketSize = %d, want %d", cfg.PacketSize, protocol.MaxPacketSize)
	}
	if cfg.Poll.Attempts != 15 || cfg.Poll.Interval != time.Second {
		t.Errorf("Poll = %+v, want 15 attempts 1s apart", cfg.Poll)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate(Default()) = %v", err)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    func(*Config)
		wantErr string
	}{
		{
			name: "empty document keeps defaults",
			yaml: "",
			want: func(*Config) {},
		},
		{
			name: "overrides",
			yaml: `
device: /tmp/vcio
packet_size: 65536
poll:
  attempts: 30
  interval: 500ms
log:
  level: debug
  format: json
`,
			want: func(c *Config) {
				c.Device = "/tmp/vcio"
				c.PacketSize = 65536
				c.Poll = PollConfig{Attempts: 30, Interval: 500 * time.Millisecond}
				c.Log.Level = "debug"
				c.Log.Format = "json"
			},
		},
		{
			name: "partial poll section",
			yaml: "poll:\n  attempts: 3\n",
			want: func(c *Config) { c.Poll.Attempts = 3 },
		},
		{
			name:    "unknown key",
			yaml:    "devise: /dev/vcio\n",
			wantErr: "devise",
		},
		{
			name:    "bad duration",
			yaml:    "poll:\n  interval: soon\n",
			wantErr: "failed to parse config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.yaml))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want substring %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			want := Default()
			tt.want(want)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("device: /dev/null\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Device != "/dev/null" {
		t.Errorf("Device = %q", cfg.Device)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	cfg, err = Load("")
	if err != nil || cfg.Device != "/dev/vcio" {
		t.Errorf("Load(\"\") = %+v, %v", cfg, err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "nil log", mutate: func(c *Config) { c.Log = nil }},
		{name: "empty device", mutate: func(c *Config) { c.Device = "" }, wantErr: "device"},
		{name: "zero packet size", mutate: func(c *Config) { c.PacketSize = 0 }, wantErr: "packet_size"},
		{name: "oversized packet", mutate: func(c *Config) { c.PacketSize = protocol.MaxPacketSize + 1 }, wantErr: "packet_size"},
		{name: "no attempts", mutate: func(c *Config) { c.Poll.Attempts = 0 }, wantErr: "poll.attempts"},
		{name: "negative interval", mutate: func(c *Config) { c.Poll.Interval = -time.Second }, wantErr: "poll.interval"},
		{name: "bad log level", mutate: func(c *Config) { c.Log = &log.Options{Level: "loud", Format: "json"} }, wantErr: "log"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			before := *cfg

			err := Validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			} else if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want substring %q", err, tt.wantErr)
			}

			if diff := cmp.Diff(before, *cfg); diff != "" {
				t.Errorf("Validate mutated config:\n%s", diff)
			}
		})
	}
}

func TestClientOptions(t *testing.T) {
	cfg := Default()
	cfg.PacketSize = 4096
	cfg.Poll = PollConfig{Attempts: 2, Interval: time.Millisecond}

	if got := len(cfg.ClientOptions()); got != 3 {
		t.Errorf("len(ClientOptions()) = %d, want 3", got)
	}
}
