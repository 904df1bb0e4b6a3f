package tracker

import (
	"fmt"
	"path/filepath"

	"timecard/internal/config"
	"timecard/internal/jsonstore"
	"timecard/internal/logger"
	"timecard/internal/project"
)

const databaseFile = "timecard.db"

// OpenStore opens the backend selected by cfg.
func OpenStore(cfg config.Config) (Store, error) {
	dir, err := cfg.ResolvedDataDir()
	if err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case config.BackendJSON:
		logger.Debug("opening json store", "dir", dir)
		s, err := jsonstore.Open(dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendSQLite:
		path := filepath.Join(dir, databaseFile)
		logger.Debug("opening sqlite store", "path", path)
		repo, err := project.NewRepository(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open database %s: %w", path, err)
		}
		return repo, nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

func Open(cfg config.Config, opts ...Option) (*Tracker, error) {
	store, err := OpenStore(cfg)
	if err != nil {
		return nil, err
	}
	return New(store, opts...), nil
}
