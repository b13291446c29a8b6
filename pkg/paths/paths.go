package paths

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// AppName is the directory name used under each XDG base directory
const AppName = "px"

// Paths holds the locations px reads and writes
type Paths struct {
	ConfigDir  string
	ConfigPath string
	EnvPath    string
	StateDir   string
	StatePath  string
	LogPath    string
	CacheDir   string
}

// New resolves paths from the XDG base directories
func New() (*Paths, error) {
	xdg.Reload()
	if xdg.ConfigHome == "" || xdg.StateHome == "" {
		return nil, fmt.Errorf("failed to determine XDG base directories")
	}
	return NewAt(xdg.ConfigHome, xdg.StateHome, xdg.CacheHome), nil
}

// NewAt builds paths under explicit base directories
func NewAt(configHome, stateHome, cacheHome string) *Paths {
	configDir := filepath.Join(configHome, AppName)
	stateDir := filepath.Join(stateHome, AppName)
	return &Paths{
		ConfigDir:  configDir,
		ConfigPath: filepath.Join(configDir, "config.yaml"),
		EnvPath:    filepath.Join(configDir, ".env"),
		StateDir:   stateDir,
		StatePath:  filepath.Join(stateDir, "state.yaml"),
		LogPath:    filepath.Join(stateDir, "px.log"),
		CacheDir:   filepath.Join(cacheHome, AppName),
	}
}

// Initialize creates the config and state directories
func (p *Paths) Initialize() error {
	for _, dir := range []string{p.ConfigDir, p.StateDir, p.CacheDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Exists reports whether a config file has been written
func (p *Paths) Exists() bool {
	info, err := os.Stat(p.ConfigPath)
	return err == nil && !info.IsDir()
}

// CleanState removes the state directory, forgetting stored preferences and logs
func (p *Paths) CleanState() error {
	if err := os.RemoveAll(p.StateDir); err != nil {
		return fmt.Errorf("failed to remove %s: %w", p.StateDir, err)
	}
	return nil
}
