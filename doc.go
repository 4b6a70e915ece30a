// Package main provides the settingskit command. It reads the settings
// declared in etc/main.toml, persists their values through the configured
// store backend and exposes them on the command line and through a JSON
// API served with fiber.
package main
