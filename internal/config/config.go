// Package config holds the application settings, its on-disk paths and the
// optional YAML config file.
package config

import "path/filepath"

// version of the application.
var version = "0.1.0"

const (
	appName         string = "pm"         // Default name of the application
	command         string = "pm"         // Default name of the executable
	DefaultFilename string = "config.yml" // Default config filename
)

type (
	AppConfig struct {
		Name    string      `json:"name"`    // Name of the application
		Cmd     string      `json:"cmd"`     // Name of the executable
		Version string      `json:"version"` // Version of the application
		Info    information `json:"info"`    // Application information
		Env     environment `json:"env"`     // Application environment variables
		Path    path        `json:"path"`    // Application paths
		Flags   *Flags      `json:"-"`       // Command line flags
	}

	// Flags are the global command line flags.
	Flags struct {
		DBPath     string // Database file, overrides the config file
		ConfigFile string // Config file path
		JSON       bool   // JSON output
		Force      bool   // Overwrite without asking
		Color      string // Color mode: auto, always or never
		Verbose    int    // Verbose flag
	}

	path struct {
		Data       string `json:"data"`   // Path holding the database
		ConfigFile string `json:"config"` // Path to config file
		Export     string `json:"export"` // Default export directory
		Backup     string `json:"backup"` // Path to store backups
	}

	information struct {
		URL   string `json:"url"`   // URL of the application
		Title string `json:"title"` // Title of the application
		Desc  string `json:"desc"`  // Description of the application
	}

	environment struct {
		Home   string `json:"home"`   // Environment variable for the data directory
		Editor string `json:"editor"` // Environment variable for the preferred editor
	}
)

// App is the default application configuration.
var App = &AppConfig{
	Name:    appName,
	Cmd:     command,
	Version: version,
	Flags:   &Flags{},
	Info: information{
		URL:   "https://github.com/mateconpizza/pm#readme",
		Title: "pm: a prompt manager",
		Desc:  "Store, tag and search LLM prompts from your terminal",
	},
	Env: environment{
		Home:   "PM_HOME",
		Editor: "PM_EDITOR",
	},
}

// SetAppPaths sets the app data path.
func SetAppPaths(p string) {
	App.Path.Data = p
	App.Path.ConfigFile = filepath.Join(p, DefaultFilename)
	App.Path.Export = filepath.Join(p, "export")
	App.Path.Backup = filepath.Join(p, "backup")
}
