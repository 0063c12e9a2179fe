package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mateconpizza/pm/internal/sys/files"
	"github.com/mateconpizza/pm/pkg/db"
)

var ErrConfigFileExists = errors.New("config file already exists")

// File represents the configuration file.
type File struct {
	DB     *db.Cfg `yaml:"db"`     // Database settings
	Export export  `yaml:"export"` // Export settings
	Backup backup  `yaml:"backup"` // Backup settings
	Log    logging `yaml:"log"`    // Log file used by serve
	Editor string  `yaml:"editor"` // Preferred editor command
}

type export struct {
	Dir string `yaml:"dir"` // Directory for relative export paths
}

type logging struct {
	File       string `yaml:"file"`        // Log file path, empty logs to stderr
	MaxSizeMB  int    `yaml:"max_size_mb"` // Rotate after this many megabytes
	MaxBackups int    `yaml:"max_backups"` // Rotated files kept
}

type backup struct {
	Dir  string `yaml:"dir"`  // Directory holding backups
	Keep int    `yaml:"keep"` // Newest backups kept, 0 keeps all
}

// Defaults returns the default configuration.
func Defaults() *File {
	return &File{
		DB: &db.Cfg{
			Name:         db.DefaultName,
			Driver:       db.DriverSQLite,
			SeedDefaults: true,
		},
		Log: logging{MaxSizeMB: 10, MaxBackups: 3},
	}
}

// Validate fills missing settings with their defaults.
func Validate(cfg *File) error {
	def := Defaults()
	if cfg.Backup.Keep < 0 {
		slog.Warn("negative backup keep, keeping all backups", "keep", cfg.Backup.Keep)
		cfg.Backup.Keep = 0
	}

	if cfg.DB == nil {
		cfg.DB = def.DB
		return nil
	}

	if strings.TrimSpace(cfg.DB.Name) == "" {
		slog.Warn("empty database name, using default", "name", def.DB.Name)
		cfg.DB.Name = def.DB.Name
	}

	switch cfg.DB.Driver {
	case "":
		cfg.DB.Driver = def.DB.Driver
	case db.DriverSQLite, db.DriverSQLite3:
	default:
		return fmt.Errorf("%w: %q", db.ErrDriverUnknown, cfg.DB.Driver)
	}

	return nil
}

// Load reads the config file at p. A missing file yields the defaults.
func Load(p string) (*File, error) {
	if !files.Exists(p) {
		slog.Debug("configfile not found, loading defaults", "path", p)
		return Defaults(), nil
	}

	content, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling YAML: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}

	slog.Debug("loading configfile", "path", p)

	return cfg, nil
}

// Dump writes cfg to p. An existing file is kept unless force is set.
func Dump(p string, cfg *File, force bool) error {
	if files.Exists(p) && !force {
		return fmt.Errorf("%s %w. use '--force' to overwrite", p, ErrConfigFileExists)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshalling YAML: %w", err)
	}

	if err := files.WriteFile(p, data); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	slog.Info("configfile written", "path", p)

	return nil
}
