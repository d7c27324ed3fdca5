package providers

import (
	"os"

	"github.com/samber/do/v2"

	"github.com/cookbookapp/cookbook-server/internal/config"
	"github.com/cookbookapp/cookbook-server/internal/logger"
	"github.com/cookbookapp/cookbook-server/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the SQLite store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Data.BasePath, 0o700); err != nil {
		return nil, err
	}

	dbPath := cfg.DatabasePath()
	st, err := sqlite.Open(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: st}, nil
}
