// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest describes a set of independent acquisition sessions.
type Manifest struct {
	Jobs     int       `yaml:"jobs"`    // number of sessions decoded concurrently
	Metrics  string    `yaml:"metrics"` // path to the prometheus text file, if any
	Sessions []Session `yaml:"sessions"`
}

// Session is a logical acquisition stored in one or more files.
type Session struct {
	Name          string   `yaml:"name"`
	Files         []string `yaml:"files"`
	TimeDriven    bool     `yaml:"time_driven"`
	SkipWaveforms bool     `yaml:"skip_waveforms"`
}

// Load reads the manifest stored in the named YAML file.
// Relative file and metrics paths are resolved against the directory of
// the manifest.
func Load(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("could not decode manifest %q: %w", path, err)
	}

	m.applyDefaults(filepath.Dir(path))
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest %q: %w", path, err)
	}
	return &m, nil
}

func (m *Manifest) applyDefaults(dir string) {
	if m.Jobs <= 0 {
		m.Jobs = 1
	}
	if m.Metrics != "" && !filepath.IsAbs(m.Metrics) && dir != "" {
		m.Metrics = filepath.Join(dir, m.Metrics)
	}
	for i := range m.Sessions {
		s := &m.Sessions[i]
		for j, fname := range s.Files {
			if fname != "" && !filepath.IsAbs(fname) && dir != "" {
				s.Files[j] = filepath.Join(dir, fname)
			}
		}
		if s.Name == "" && len(s.Files) > 0 {
			s.Name = filepath.Base(s.Files[0])
		}
	}
}

func (m *Manifest) validate() error {
	if len(m.Sessions) == 0 {
		return fmt.Errorf("no session")
	}
	names := make(map[string]int, len(m.Sessions))
	for i, s := range m.Sessions {
		if len(s.Files) == 0 {
			return fmt.Errorf("session #%d (%q) has no file", i, s.Name)
		}
		for _, fname := range s.Files {
			if fname == "" {
				return fmt.Errorf("session %q has an empty file name", s.Name)
			}
		}
		if j, dup := names[s.Name]; dup {
			return fmt.Errorf("sessions #%d and #%d have the same name %q", j, i, s.Name)
		}
		names[s.Name] = i
	}
	return nil
}
