// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads and watches the recorder settings. A missing config
// file is created with defaults on first run; the host allowlist can be
// edited live and is picked up by the file watcher.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Settings is the full recorder configuration.
type Settings struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string `yaml:"listen_addr" validate:"required"`

	// AllowedHosts restricts which hosts may be recorded or replayed.
	AllowedHosts []string `yaml:"allowed_hosts" validate:"required,min=1,dive,required"`

	// CORSOrigins are the origins allowed to call the API from a browser.
	CORSOrigins []string `yaml:"cors_origins"`

	// IdleGapMs is the sessionization idle gap pushed to the driver.
	IdleGapMs int `yaml:"idle_gap_ms" validate:"gte=0"`

	// DOMMutationSampleMs is the coarse DOM mutation sample interval.
	DOMMutationSampleMs int `yaml:"dom_mutation_sample_ms" validate:"gte=0"`

	// MaxEvents bounds the in-memory raw event and action buffers.
	MaxEvents int `yaml:"max_events" validate:"gte=1"`

	// ArchivePath is the directory for the badger session archive.
	ArchivePath string `yaml:"archive_path"`
}

// Default returns the out-of-the-box settings.
func Default() Settings {
	return Settings{
		ListenAddr:          ":12600",
		AllowedHosts:        []string{"localhost:3000"},
		CORSOrigins:         []string{"http://localhost:3000"},
		IdleGapMs:           15_000,
		DOMMutationSampleMs: 1_000,
		MaxEvents:           20_000,
		ArchivePath:         "data/archive",
	}
}

// Validate checks structural constraints.
func (s Settings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

// Load reads settings from path, creating the file with defaults on first
// run. Values not present in the file keep their defaults.
func Load(path string) (Settings, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := writeDefault(path); err != nil {
			return cfg, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read the config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse the config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func writeDefault(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create the config directory: %w", err)
		}
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Manager holds the live settings behind a read lock so the watcher can swap
// them without racing handlers.
type Manager struct {
	mu   sync.RWMutex
	cfg  Settings
	path string
}

func NewManager(cfg Settings, path string) *Manager {
	return &Manager{cfg: cfg, path: path}
}

// Current returns the live settings.
func (m *Manager) Current() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// HostAllowed reports whether host is on the recording allowlist.
func (m *Manager) HostAllowed(host string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, h := range m.cfg.AllowedHosts {
		if h == host {
			return true
		}
	}
	return false
}

// Reload re-reads the config file and swaps the live settings if valid.
func (m *Manager) Reload() error {
	if m.path == "" {
		return nil
	}
	cfg, err := Load(m.path)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.cfg = cfg
	m.mu.Unlock()
	return nil
}
