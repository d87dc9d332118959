// Command syncdex keeps a local full-text search index synchronised with a
// remote document store.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	indexbleve "github.com/custodia-labs/syncdex/internal/adapters/driven/index/bleve"
	"github.com/custodia-labs/syncdex/internal/adapters/driven/state/sqlite"
	"github.com/custodia-labs/syncdex/internal/adapters/driving/cli"
	"github.com/custodia-labs/syncdex/internal/config"
	"github.com/custodia-labs/syncdex/internal/connectors/filesystem"
	"github.com/custodia-labs/syncdex/internal/connectors/google"
	gdrive "github.com/custodia-labs/syncdex/internal/connectors/google/drive"
	"github.com/custodia-labs/syncdex/internal/core/ports/driven"
	"github.com/custodia-labs/syncdex/internal/core/services"
	"github.com/custodia-labs/syncdex/internal/extract"
	"github.com/custodia-labs/syncdex/internal/extract/html"
	"github.com/custodia-labs/syncdex/internal/extract/pdf"
	"github.com/custodia-labs/syncdex/internal/extract/plaintext"
	"github.com/custodia-labs/syncdex/internal/logger"
)

// version is injected at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath, err := config.DefaultPath()
	if err != nil {
		return err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	dataDir, err := cfg.ResolveDataDir()
	if err != nil {
		return err
	}

	state, err := sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("opening state store: %w", err)
	}
	defer state.Close()

	index, err := indexbleve.New(filepath.Join(dataDir, "index.bleve"))
	if err != nil {
		return fmt.Errorf("opening search index: %w", err)
	}
	defer index.Close()

	remote, err := newRemoteStore(cfg)
	if err != nil {
		return err
	}
	defer remote.Close()

	registry := extract.NewRegistry(extract.Config{
		MaxDocBytes: cfg.Extract.MaxDocBytes,
		Timeout:     cfg.ExtractTimeout(),
	})
	registry.Register(plaintext.New())
	registry.Register(html.New())
	registry.Register(pdf.New())

	syncCfg := services.DefaultSyncConfig()
	syncCfg.Workers = cfg.Sync.Workers
	syncCfg.MaxAttempts = cfg.Sync.MaxAttempts
	syncCfg.RetryBase = cfg.Sync.RetryBase()
	syncCfg.RetryMax = cfg.Sync.RetryMax()

	cli.SetServices(cli.Services{
		Sync:   services.NewSyncOrchestrator(remote, state, registry, index, syncCfg),
		Search: services.NewSearchOrchestrator(index),
		State:  state,
		Index:  index,
	})
	cli.SetVersion(version)

	return cli.Execute()
}

// newRemoteStore builds the remote store selected by the configuration.
func newRemoteStore(cfg *config.Config) (driven.RemoteStore, error) {
	switch cfg.Store.Type {
	case "filesystem":
		if cfg.Store.Root == "" {
			return nil, fmt.Errorf("store.root must be set for the filesystem store")
		}
		return filesystem.New(cfg.Store.Root)

	case "gdrive":
		if cfg.Store.AccessToken == "" {
			return nil, fmt.Errorf("no access token: set SYNCDEX_ACCESS_TOKEN or store.access_token")
		}
		svc, err := google.NewDriveService(context.Background(), google.StaticTokenSource(cfg.Store.AccessToken))
		if err != nil {
			return nil, fmt.Errorf("creating Drive client: %w", err)
		}
		if cfg.Store.FolderID != "" {
			logger.Debug("limiting Drive sync to folder %s", cfg.Store.FolderID)
		}
		driveCfg := gdrive.DefaultConfig()
		driveCfg.FolderID = cfg.Store.FolderID
		return gdrive.New(svc, driveCfg), nil

	default:
		return nil, fmt.Errorf("unknown store type %q (want \"gdrive\" or \"filesystem\")", cfg.Store.Type)
	}
}
