// Package config handles exporter configuration loading and management.
package config

import (
	"fmt"

	"github.com/Faultbox/ccexport/internal/planner"
)

// Config holds all exporter settings.
type Config struct {
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`
}

// ExportConfig mirrors the add-on's export panel.
type ExportConfig struct {
	// ExportPath is the destination root. "//" is relative to the scene file.
	ExportPath        string `yaml:"export_path"`
	AddRootFolder     bool   `yaml:"add_root_folder"`     // wrap output in character_config/
	DeleteAndRecreate bool   `yaml:"delete_and_recreate"` // wipe the destination first
	DeleteMode        string `yaml:"delete_mode"`         // remove | trash
	Mode              string `yaml:"mode"`                // strict | permissive
	PersistIDs        bool   `yaml:"persist_ids"`         // write new ids back to the scene
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Delete modes.
const (
	DeleteRemove = "remove"
	DeleteTrash  = "trash"
)

// Default returns a Config with the add-on's default values.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			ExportPath:        "//cc_export",
			AddRootFolder:     true,
			DeleteAndRecreate: true,
			DeleteMode:        DeleteRemove,
			Mode:              "strict",
			PersistIDs:        true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate rejects values the exporter cannot act on.
func (c *Config) Validate() error {
	if c.Export.ExportPath == "" {
		return fmt.Errorf("export.export_path must not be empty")
	}
	switch c.Export.DeleteMode {
	case DeleteRemove, DeleteTrash:
	default:
		return fmt.Errorf("export.delete_mode %q: want %s or %s", c.Export.DeleteMode, DeleteRemove, DeleteTrash)
	}
	if _, err := planner.ParseMode(c.Export.Mode); err != nil {
		return fmt.Errorf("export.mode: %w", err)
	}
	return nil
}

// PlanMode returns the parsed walk mode.
func (c *Config) PlanMode() planner.Mode {
	m, _ := planner.ParseMode(c.Export.Mode)
	return m
}
