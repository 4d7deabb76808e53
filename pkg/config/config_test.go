package config

import (
	"os"
	"path/filepath"
	"testing"
)

type testConfig struct {
	Mode       string   `split_words:"true" default:"rule"`
	Port       int      `split_words:"true" required:"true"`
	AuditSinks []string `split_words:"true"`
}

func TestNewLoadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "CFGTEST_PORT=8081\nCFGTEST_AUDIT_SINKS=file,redis\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	SetEnvFile(path)
	t.Cleanup(func() {
		SetEnvFile("")
		_ = os.Unsetenv("CFGTEST_PORT")
		_ = os.Unsetenv("CFGTEST_AUDIT_SINKS")
	})

	conf, err := New[testConfig]("CFGTEST")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if conf.Port != 8081 {
		t.Fatalf("Port = %d, want 8081", conf.Port)
	}
	if conf.Mode != "rule" {
		t.Fatalf("Mode = %q, want default rule", conf.Mode)
	}
	if len(conf.AuditSinks) != 2 || conf.AuditSinks[1] != "redis" {
		t.Fatalf("AuditSinks = %v", conf.AuditSinks)
	}
}

func TestNewMissingEnvFile(t *testing.T) {
	SetEnvFile(filepath.Join(t.TempDir(), "missing.env"))
	t.Cleanup(func() { SetEnvFile("") })

	if _, err := New[testConfig]("CFGTEST"); err == nil {
		t.Fatal("expected error for missing env file")
	}
}

func TestNewRequiredField(t *testing.T) {
	SetEnvFile(filepath.Join(t.TempDir(), "empty.env"))
	t.Cleanup(func() { SetEnvFile("") })
	if err := os.WriteFile(resolveEnvPath(), nil, 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	if _, err := New[testConfig]("CFGMISSING"); err == nil {
		t.Fatal("expected error for missing required field")
	}
}
