package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/moffa90/go-eepromab/emulator"
	"github.com/moffa90/go-eepromab/protocol"
)

// run executes the command line args against emu and returns its output.
func run(t *testing.T, emu *emulator.Emulator, args ...string) (string, error) {
	t.Helper()

	opts := NewOptions()
	opts.transport = emu

	var out bytes.Buffer
	cmd := newCommand(opts, &out)
	cmd.SetArgs(append(args, "--poll-interval=1ms", "--log.level=error"))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, emu *emulator.Emulator, args ...string) string {
	t.Helper()
	out, err := run(t, emu, args...)
	if err != nil {
		t.Fatalf("%v: unexpected error: %v", args, err)
	}
	return out
}

func writeImage(t *testing.T, size int) (string, []byte) {
	t.Helper()
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i*7 + 3)
	}
	path := filepath.Join(t.TempDir(), "pieeprom.upd")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path, data
}

func TestQueries(t *testing.T) {
	emu := emulator.New()

	tests := []struct {
		args []string
		want []string
	}{
		{args: []string{"partition"}, want: []string{"A\n"}},
		{args: []string{"committed"}, want: []string{"1\n"}},
		{args: []string{"tryboot"}, want: []string{"0\n"}},
		{args: []string{"spi-check"}, want: []string{"SPI check: OK"}},
		{args: []string{"update-status"}, want: []string{"EEPROM update status:", "No update"}},
		{args: []string{"status-at-boot"}, want: []string{"EEPROM partition used at boot:", "EEPROM committed status at boot:"}},
		{
			args: []string{"partition-status"},
			want: []string{"EEPROM committed partition:", "EEPROM valid partition hash:", emu.Hash(protocol.PartitionA).String()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			out := mustRun(t, emu, tt.args...)
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output %q missing %q", out, want)
				}
			}
		})
	}
}

func TestUpdateCycle(t *testing.T) {
	emu := emulator.New()
	path, data := writeImage(t, protocol.PartitionSize)

	out := mustRun(t, emu, "update", path)
	if !strings.Contains(out, "Write to EEPROM completed") {
		t.Errorf("update output %q", out)
	}
	if !bytes.Equal(emu.Contents(protocol.PartitionB), data) {
		t.Fatal("update did not land in partition B")
	}

	hash := strings.TrimSpace(mustRun(t, emu, "hash", path))
	if hash != emu.Hash(protocol.PartitionB).String() {
		t.Fatalf("hash = %s, want %s", hash, emu.Hash(protocol.PartitionB))
	}

	if out := mustRun(t, emu, "mark-partition-valid", hash); !strings.Contains(out, "Next EEPROM AB partition marked valid") {
		t.Errorf("mark-partition-valid output %q", out)
	}
	if out := mustRun(t, emu, "tryboot", "1"); !strings.Contains(out, "EEPROM tryboot set to: 1") {
		t.Errorf("tryboot output %q", out)
	}

	emu.Reboot()

	if out := mustRun(t, emu, "partition"); out != "B\n" {
		t.Errorf("partition after tryboot = %q, want B", out)
	}
	if out := mustRun(t, emu, "committed"); out != "0\n" {
		t.Errorf("committed before commit = %q, want 0", out)
	}
	mustRun(t, emu, "commit")
	if out := mustRun(t, emu, "committed"); out != "1\n" {
		t.Errorf("committed after commit = %q, want 1", out)
	}
}

func TestReadAndDump(t *testing.T) {
	emu := emulator.New(emulator.WithFill(0x5A))
	dir := t.TempDir()

	partPath := filepath.Join(dir, "part.bin")
	mustRun(t, emu, "read", partPath)
	part, err := os.ReadFile(partPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(part, emu.Contents(protocol.PartitionA)) {
		t.Error("read output does not match partition A")
	}

	dumpPath := filepath.Join(dir, "dump.bin")
	mustRun(t, emu, "dump", dumpPath)
	dump, err := os.ReadFile(dumpPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(dump, emu.EEPROM()) {
		t.Error("dump output does not match the EEPROM")
	}
}

func TestCommandErrors(t *testing.T) {
	shortPath, _ := writeImage(t, 1024)

	tests := []struct {
		name     string
		emu      func() *emulator.Emulator
		args     []string
		wantMsg  string
		wantCode protocol.ErrorCode
	}{
		{
			name:     "update size",
			args:     []string{"update", shortPath},
			wantMsg:  "not a valid AB update size",
			wantCode: protocol.ErrLength,
		},
		{
			name:    "tryboot value",
			args:    []string{"tryboot", "2"},
			wantMsg: "must be 0 or 1",
		},
		{
			name:    "bad hash",
			args:    []string{"mark-partition-valid", "zz"},
			wantMsg: "invalid hash string",
		},
		{
			name: "firmware error",
			emu: func() *emulator.Emulator {
				emu := emulator.New()
				emu.Fail(protocol.TagGetABParams, protocol.ErrBusy)
				return emu
			},
			args:     []string{"partition"},
			wantMsg:  "failed to get EEPROM AB partition",
			wantCode: protocol.ErrBusy,
		},
		{
			name:    "spi check",
			emu:     func() *emulator.Emulator { return emulator.New(emulator.WithSPIGPIOCheck(0)) },
			args:    []string{"spi-check"},
			wantMsg: "SPI check: Failed",
		},
		{
			name: "update write failure",
			emu: func() *emulator.Emulator {
				emu := emulator.New()
				emu.FailNextUpdate(protocol.ErrErase)
				return emu
			},
			args:     []string{"update", ""},
			wantMsg:  "failed to wait for write to EEPROM to complete",
			wantCode: protocol.ErrErase,
		},
		{
			name:    "too many args",
			args:    []string{"partition", "A"},
			wantMsg: "unknown command",
		},
	}

	fullPath, _ := writeImage(t, protocol.PartitionSize)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emu := emulator.New()
			if tt.emu != nil {
				emu = tt.emu()
			}
			args := tt.args
			if len(args) == 2 && args[1] == "" {
				args = []string{args[0], fullPath}
			}

			_, err := run(t, emu, args...)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantMsg)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %v, want substring %q", err, tt.wantMsg)
			}
			if tt.wantCode != protocol.ErrNone && !errors.Is(err, tt.wantCode) {
				t.Errorf("error = %v, want code %v", err, tt.wantCode)
			}
		})
	}
}

func TestOptionsConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "device: /tmp/vcio\npoll:\n  attempts: 5\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("flags override file", func(t *testing.T) {
		opts := NewOptions()
		fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
		opts.AddFlags(fs)
		if err := fs.Parse([]string{"--config", path, "--poll-attempts=3", "--log.level=debug"}); err != nil {
			t.Fatal(err)
		}

		cfg, err := opts.Config(fs)
		if err != nil {
			t.Fatalf("Config() error: %v", err)
		}
		if cfg.Device != "/tmp/vcio" {
			t.Errorf("Device = %q, want file value", cfg.Device)
		}
		if cfg.Poll.Attempts != 3 {
			t.Errorf("Poll.Attempts = %d, want flag value 3", cfg.Poll.Attempts)
		}
		if cfg.Log.Level != "debug" {
			t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
		}
	})

	t.Run("invalid flag value", func(t *testing.T) {
		opts := NewOptions()
		fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
		opts.AddFlags(fs)
		if err := fs.Parse([]string{"--packet-size=0"}); err != nil {
			t.Fatal(err)
		}
		if _, err := opts.Config(fs); err == nil || !strings.Contains(err.Error(), "packet_size") {
			t.Errorf("Config() error = %v, want packet_size error", err)
		}
	})
}
