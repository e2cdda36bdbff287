// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults failed validation: %v", err)
	}
	if cfg.ListenAddr != ":12600" {
		t.Errorf("listen addr = %q", cfg.ListenAddr)
	}
	if len(cfg.AllowedHosts) != 1 || cfg.AllowedHosts[0] != "localhost:3000" {
		t.Errorf("allowed hosts = %v", cfg.AllowedHosts)
	}
	if cfg.IdleGapMs != 15000 || cfg.DOMMutationSampleMs != 1000 || cfg.MaxEvents != 20000 {
		t.Errorf("capture defaults = %d %d %d", cfg.IdleGapMs, cfg.DOMMutationSampleMs, cfg.MaxEvents)
	}
}

func TestValidate_Rejections(t *testing.T) {
	t.Run("empty allowlist", func(t *testing.T) {
		cfg := Default()
		cfg.AllowedHosts = nil
		if err := cfg.Validate(); err == nil {
			t.Error("expected error")
		}
	})
	t.Run("zero max events", func(t *testing.T) {
		cfg := Default()
		cfg.MaxEvents = 0
		if err := cfg.Validate(); err == nil {
			t.Error("expected error")
		}
	})
	t.Run("blank allowlist entry", func(t *testing.T) {
		cfg := Default()
		cfg.AllowedHosts = []string{""}
		if err := cfg.Validate(); err == nil {
			t.Error("expected error")
		}
	})
}

func TestLoad_CreatesDefaultFileOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recorder.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != Default().ListenAddr {
		t.Errorf("listen addr = %q", cfg.ListenAddr)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("default file not written: %v", err)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recorder.yaml")
	if err := os.WriteFile(path, []byte("allowed_hosts:\n  - app.example.test\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.AllowedHosts) != 1 || cfg.AllowedHosts[0] != "app.example.test" {
		t.Errorf("allowed hosts = %v", cfg.AllowedHosts)
	}
	if cfg.MaxEvents != Default().MaxEvents {
		t.Errorf("max events = %d, want default", cfg.MaxEvents)
	}
}

func TestLoad_InvalidFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recorder.yaml")
	if err := os.WriteFile(path, []byte("max_events: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected validation error")
	}
}

func TestManager_HostAllowed(t *testing.T) {
	m := NewManager(Default(), "")
	if !m.HostAllowed("localhost:3000") {
		t.Error("default host rejected")
	}
	if m.HostAllowed("evil.example.test") {
		t.Error("unlisted host allowed")
	}
}

func TestManager_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recorder.yaml")
	if _, err := Load(path); err != nil {
		t.Fatal(err)
	}
	m := NewManager(Default(), path)

	if err := os.WriteFile(path, []byte("allowed_hosts:\n  - other.test:8080\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := m.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !m.HostAllowed("other.test:8080") || m.HostAllowed("localhost:3000") {
		t.Errorf("allowlist not swapped: %v", m.Current().AllowedHosts)
	}
}

func TestManager_ReloadKeepsSettingsOnInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recorder.yaml")
	if _, err := Load(path); err != nil {
		t.Fatal(err)
	}
	m := NewManager(Default(), path)

	if err := os.WriteFile(path, []byte("allowed_hosts: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := m.Reload(); err == nil {
		t.Fatal("expected reload error")
	}
	if !m.HostAllowed("localhost:3000") {
		t.Error("previous settings lost after failed reload")
	}
}
