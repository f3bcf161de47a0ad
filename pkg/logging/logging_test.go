package logging_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pjecz/portal-notarias/pkg/lifecycle"
	"github.com/pjecz/portal-notarias/pkg/logging"
)

func TestConfigFinalize(t *testing.T) {
	tests := []struct {
		name    string
		cfg     logging.Config
		wantErr bool
	}{
		{name: "defaults", cfg: logging.Config{}},
		{name: "json upper case", cfg: logging.Config{Level: "DEBUG", Format: "JSON"}},
		{name: "bad level", cfg: logging.Config{Level: "verbose"}, wantErr: true},
		{name: "bad format", cfg: logging.Config{Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Finalize() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigEnvOverride(t *testing.T) {
	t.Setenv("TEST_LOG_LEVEL", "warn")
	t.Setenv("TEST_LOG_MAX_BACKUPS", "3")

	cfg := &logging.Config{}
	env := &logging.Env{Level: "TEST_LOG_LEVEL", MaxBackups: "TEST_LOG_MAX_BACKUPS"}
	if err := cfg.Finalize(env); err != nil {
		t.Fatal(err)
	}
	if cfg.Level != "warn" {
		t.Errorf("Level = %q, want warn", cfg.Level)
	}
	if cfg.File.MaxBackups != 3 {
		t.Errorf("MaxBackups = %d, want 3", cfg.File.MaxBackups)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	cfg := &logging.Config{Level: "warn"}
	cfg.Finalize(nil)

	sys, err := logging.New(cfg, &buf)
	if err != nil {
		t.Fatal(err)
	}

	sys.Logger().Info("oculto")
	sys.Logger().Warn("visible")

	out := buf.String()
	if strings.Contains(out, "oculto") {
		t.Error("info record should be filtered at warn level")
	}
	if !strings.Contains(out, "visible") {
		t.Error("warn record missing")
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	cfg := &logging.Config{Format: "json"}
	cfg.Finalize(nil)

	sys, err := logging.New(cfg, &buf)
	if err != nil {
		t.Fatal(err)
	}
	sys.Logger().Info("hola", "modulo", "EDICTOS")

	if !strings.Contains(buf.String(), `"modulo":"EDICTOS"`) {
		t.Errorf("expected json attrs, got %s", buf.String())
	}
}

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal.log")

	var buf bytes.Buffer
	cfg := &logging.Config{File: logging.FileConfig{Path: path}}
	cfg.Finalize(nil)

	sys, err := logging.New(cfg, &buf)
	if err != nil {
		t.Fatal(err)
	}

	lc := lifecycle.New()
	if err := sys.Start(lc); err != nil {
		t.Fatal(err)
	}

	sys.Logger().Info("a archivo")

	if err := lc.Shutdown(5 * time.Second); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "a archivo") {
		t.Errorf("file sink missing record: %s", data)
	}
	if !strings.Contains(buf.String(), "a archivo") {
		t.Error("console sink missing record")
	}
}
