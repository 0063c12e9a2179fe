package config

import (
	"fmt"
	"os"

	gap "github.com/muesli/go-app-paths"
)

// DataPath returns the directory holding the database. PM_HOME takes
// precedence over the platform default.
func DataPath() (string, error) {
	return userPath("data", func(s *gap.Scope) (string, error) {
		return s.DataPath("")
	})
}

// ConfigPath returns the directory holding config.yml.
func ConfigPath() (string, error) {
	return userPath("config", func(s *gap.Scope) (string, error) {
		return s.ConfigPath("")
	})
}

func userPath(kind string, fn func(*gap.Scope) (string, error)) (string, error) {
	if p := os.Getenv(App.Env.Home); p != "" {
		return p, nil
	}

	p, err := fn(gap.NewScope(gap.User, appName))
	if err != nil {
		return "", fmt.Errorf("resolving %s path: %w", kind, err)
	}

	return p, nil
}
