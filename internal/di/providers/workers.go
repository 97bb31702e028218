package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/audiofolio/folio-server/internal/config"
	"github.com/audiofolio/folio-server/internal/logger"
	"github.com/audiofolio/folio-server/internal/service"
	"github.com/audiofolio/folio-server/internal/watcher"
)

// FolderWatcherHandle wraps the import folder watcher with shutdown capability.
type FolderWatcherHandle struct {
	*watcher.Watcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *FolderWatcherHandle) Shutdown() error {
	if h.Watcher == nil {
		return nil
	}
	h.cancel()
	return h.Watcher.Stop()
}

// ProvideFolderWatcher provides the import folder arrival watcher.
// Arrivals are only flagged; nothing is imported until the user selects
// entries explicitly.
func ProvideFolderWatcher(i do.Injector) (*FolderWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	importService := do.MustInvoke[*service.ImportService](i)

	if !cfg.Watcher.Enabled {
		log.Info("Import folder watcher disabled by configuration")
		return &FolderWatcherHandle{}, nil
	}

	w, err := watcher.New(log.Logger, 0)
	if err != nil {
		return nil, err
	}

	folders, err := storeHandle.ListImportFolders(context.Background())
	if err != nil {
		return nil, err
	}

	watched := 0
	for _, folder := range folders {
		if !folder.Enabled {
			continue
		}
		if err := w.AddFolder(folder.ID, folder.Path); err != nil {
			// A staging folder that vanished should not block startup.
			log.Warn("Failed to watch import folder",
				"folder_id", folder.ID,
				"path", folder.Path,
				"error", err,
			)
			continue
		}
		watched++
	}

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		if err := w.Start(ctx); err != nil && err != context.Canceled {
			log.Error("Import folder watcher error", "error", err)
		}
	}()

	go func() {
		for event := range w.Events() {
			importService.FlagArrival(event.FolderID)
			log.Info("New arrival in import folder",
				"folder_id", event.FolderID,
				"path", event.Path,
				"mod_time", event.ModTime,
			)
		}
	}()

	log.Info("Import folder watcher started", "folders", watched)

	return &FolderWatcherHandle{Watcher: w, cancel: cancel}, nil
}
