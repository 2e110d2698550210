package image

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/moffa90/go-eepromab/protocol"
)

func TestLoadReader(t *testing.T) {
	valid := bytes.Repeat([]byte{0xA5}, protocol.PartitionSize)

	tests := []struct {
		name    string
		input   []byte
		wantErr bool
		errMsg  string
	}{
		{name: "exact partition", input: valid},
		{name: "empty", input: nil, wantErr: true, errMsg: "got 0 bytes"},
		{name: "one byte short", input: valid[:protocol.PartitionSize-1], wantErr: true, errMsg: "not a valid AB update size"},
		{name: "one byte long", input: append(append([]byte{}, valid...), 0), wantErr: true, errMsg: "not a valid AB update size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := LoadReader(bytes.NewReader(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("error = %v, want substring %q", err, tt.errMsg)
				}
				if !errors.Is(err, protocol.ErrLength) {
					t.Errorf("size errors should match protocol.ErrLength")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(img.Data, tt.input) {
				t.Error("image data mismatch")
			}
			if img.Hash != Sum(tt.input) {
				t.Errorf("hash = %s, want %s", img.Hash, Sum(tt.input))
			}
		})
	}
}

func TestLoadAndSaveDump(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pieeprom.upd")
	data := bytes.Repeat([]byte{1, 2, 3, 4}, protocol.PartitionSize/4)

	if err := SaveDump(path, data); err != nil {
		t.Fatalf("SaveDump() error: %v", err)
	}
	img, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !bytes.Equal(img.Data, data) {
		t.Error("loaded data does not match saved dump")
	}

	if _, err := Load(filepath.Join(dir, "missing")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) error = %v, want os.ErrNotExist", err)
	}
	if err := SaveDump(filepath.Join(dir, "no", "such", "dir"), data); err == nil {
		t.Error("SaveDump() into a missing directory should fail")
	}
}

func TestSum(t *testing.T) {
	// SHA-256 of "test"
	want := "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"
	if got := Sum([]byte("test")).String(); got != want {
		t.Errorf("Sum() = %s, want %s", got, want)
	}
}

func TestParseHash(t *testing.T) {
	const lower = "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "lowercase", input: lower},
		{name: "uppercase", input: strings.ToUpper(lower)},
		{name: "trailing newline", input: lower + "\n"},
		{name: "too short", input: lower[:62], wantErr: true},
		{name: "too long", input: lower + "00", wantErr: true},
		{name: "not hex", input: "zz" + lower[2:], wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := ParseHash(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if h.String() != lower {
				t.Errorf("ParseHash() = %s, want %s", h, lower)
			}
		})
	}
}

func BenchmarkSum(b *testing.B) {
	data := make([]byte, protocol.PartitionSize)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Sum(data)
	}
}
