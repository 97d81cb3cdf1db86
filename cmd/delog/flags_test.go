package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseScanArgsBasic(t *testing.T) {
	cfg, err := parseScanArgs([]string{
		"--receiver", "logger",
		"--methods", "log,debug",
		"--write",
		"--risky",
		"--output", "json",
	})
	if err != nil {
		t.Fatalf("parseScanArgs failed: %v", err)
	}
	if cfg.flagCfg.Receiver == nil || *cfg.flagCfg.Receiver != "logger" {
		t.Fatalf("receiver mismatch: %v", cfg.flagCfg.Receiver)
	}
	if cfg.flagCfg.Methods == nil || !reflect.DeepEqual(*cfg.flagCfg.Methods, []string{"log", "debug"}) {
		t.Fatalf("methods mismatch: %v", cfg.flagCfg.Methods)
	}
	if !cfg.write {
		t.Fatal("--write should set write mode")
	}
	if cfg.flagCfg.Risky == nil || !*cfg.flagCfg.Risky {
		t.Fatal("--risky should set the risky layer")
	}
	if cfg.flagCfg.Output == nil || *cfg.flagCfg.Output != "json" {
		t.Fatalf("output mismatch: %v", cfg.flagCfg.Output)
	}
}

func TestParseScanArgsUnsetFlagsStayNil(t *testing.T) {
	cfg, err := parseScanArgs(nil)
	if err != nil {
		t.Fatalf("parseScanArgs failed: %v", err)
	}
	if cfg.flagCfg.Receiver != nil || cfg.flagCfg.Methods != nil || cfg.flagCfg.Risky != nil ||
		cfg.flagCfg.Verify != nil || cfg.flagCfg.Jobs != nil || cfg.flagCfg.Output != nil {
		t.Fatalf("unset flags must not become overrides: %+v", cfg.flagCfg)
	}
	if cfg.uiCfg.Fields != nil || cfg.uiCfg.Truncate != nil {
		t.Fatalf("unset UI flags must not become overrides: %+v", cfg.uiCfg)
	}
	if cfg.write {
		t.Fatal("default must be dry run")
	}
}

func TestParseScanArgsRepeatablePaths(t *testing.T) {
	cfg, err := parseScanArgs([]string{"--path", "src", "--path", "lib,tools", "--exclude", "dist"})
	if err != nil {
		t.Fatalf("parseScanArgs failed: %v", err)
	}
	want := []string{"src", "lib", "tools"}
	if cfg.flagCfg.Paths == nil || !reflect.DeepEqual(*cfg.flagCfg.Paths, want) {
		t.Fatalf("paths = %v, want %v", cfg.flagCfg.Paths, want)
	}
	if cfg.flagCfg.Excludes == nil || !reflect.DeepEqual(*cfg.flagCfg.Excludes, []string{"dist"}) {
		t.Fatalf("excludes = %v", cfg.flagCfg.Excludes)
	}
}

func TestParseScanArgsNegativeFlagsInvert(t *testing.T) {
	cfg, err := parseScanArgs([]string{"--no-verify", "--no-backup", "--no-exclude-typical"})
	if err != nil {
		t.Fatalf("parseScanArgs failed: %v", err)
	}
	if cfg.flagCfg.Verify == nil || *cfg.flagCfg.Verify {
		t.Fatal("--no-verify should layer verify=false")
	}
	if cfg.flagCfg.Backup == nil || *cfg.flagCfg.Backup {
		t.Fatal("--no-backup should layer backup=false")
	}
	if cfg.flagCfg.ExcludeTypical == nil || *cfg.flagCfg.ExcludeTypical {
		t.Fatal("--no-exclude-typical should layer exclude_typical=false")
	}
}

func TestResolveSettingsLayering(t *testing.T) {
	repo := t.TempDir()
	cfgPath := filepath.Join(repo, ".delog.yaml")
	if err := os.WriteFile(cfgPath, []byte("receiver: filecfg\njobs: 2\noutput: csv\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	env := map[string]string{"DELOG_JOBS": "8", "DELOG_REPO": repo}
	getenv := func(k string) string { return env[k] }

	flagOutput := "ndjson"
	cfg := &scanConfig{}
	cfg.flagCfg.Output = &flagOutput

	settings, _, err := resolveSettings(cfg, getenv)
	if err != nil {
		t.Fatalf("resolveSettings failed: %v", err)
	}
	if settings.Receiver != "filecfg" {
		t.Fatalf("file layer should override defaults: %q", settings.Receiver)
	}
	if settings.Jobs != 8 {
		t.Fatalf("env layer should override file: %d", settings.Jobs)
	}
	if settings.Output != "ndjson" {
		t.Fatalf("flag layer should override env/file: %q", settings.Output)
	}
	if !settings.Verify {
		t.Fatal("defaults should survive where no layer overrides")
	}
}

func TestResolveSettingsRejectsBadOutput(t *testing.T) {
	repo := t.TempDir()
	bad := "xml"
	cfg := &scanConfig{}
	cfg.flagCfg.Output = &bad
	cfg.flagCfg.Repo = &repo

	if _, _, err := resolveSettings(cfg, func(string) string { return "" }); err == nil {
		t.Fatal("expected error for output=xml")
	}
}
