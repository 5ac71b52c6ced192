package config

import (
	"os"
	"path/filepath"
)

const appDir = "abc-audio"

// DefaultPath returns ~/.config/abc-audio/config.yaml (or a cwd fallback).
func DefaultPath() string {
	return inConfigDir("config.yaml")
}

// DefaultPreferencesPath returns ~/.config/abc-audio/preferences.json (or a cwd fallback).
func DefaultPreferencesPath() string {
	return inConfigDir("preferences.json")
}

func inConfigDir(name string) string {
	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".config", appDir, name)
	}
	cwd, _ := os.Getwd()
	return filepath.Join(cwd, appDir+"-"+name)
}
