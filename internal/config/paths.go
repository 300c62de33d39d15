package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved filesystem locations used by the service.
// Relative configuration values are resolved against the working directory,
// matching how the store directory is interpreted by operators.
type Paths struct {
	WorkingDir string
	StoreDir   string
	LogsDir    string
	LogFile    string
}

// GetPaths resolves the filesystem paths for cfg
func GetPaths(cfg *Config) (*Paths, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	paths := &Paths{WorkingDir: wd}

	if cfg.Store.Backend == StoreBackendFile {
		paths.StoreDir = resolve(wd, cfg.Store.Dir)
	}

	if cfg.Logging.Output != "console" {
		paths.LogFile = resolve(wd, cfg.Logging.FilePath)
		paths.LogsDir = filepath.Dir(paths.LogFile)
	}

	return paths, nil
}

func resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

// EnsureDirectories creates the store and log directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	logger := slog.Default()

	for _, dir := range []string{p.StoreDir, p.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		logger.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// LogPathResolution logs resolved paths at startup
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Info("Path resolution",
		slog.String("working_dir", p.WorkingDir),
		slog.String("store_dir", p.StoreDir),
		slog.String("log_file", p.LogFile))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
