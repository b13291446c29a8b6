package cmd

import (
	"os"
)

// GetPreferredEditor returns the editor command from the environment, or vi
func GetPreferredEditor() string {
	if env := os.Getenv("VISUAL"); env != "" {
		return env
	}
	if env := os.Getenv("EDITOR"); env != "" {
		return env
	}
	return "vi"
}
