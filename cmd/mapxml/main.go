// Command mapxml converts JSON documents to XML using mapping tables.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/custodia-labs/mapxml/internal/adapters/driven/cache"
	"github.com/custodia-labs/mapxml/internal/adapters/driven/config/file"
	"github.com/custodia-labs/mapxml/internal/adapters/driven/documents"
	"github.com/custodia-labs/mapxml/internal/adapters/driven/emitter/xmlwriter"
	"github.com/custodia-labs/mapxml/internal/adapters/driven/input/jsontree"
	"github.com/custodia-labs/mapxml/internal/adapters/driven/mapping"
	"github.com/custodia-labs/mapxml/internal/adapters/driven/mapping/csvtable"
	"github.com/custodia-labs/mapxml/internal/adapters/driven/mapping/xlsxtable"
	"github.com/custodia-labs/mapxml/internal/adapters/driven/mapping/yamltable"
	"github.com/custodia-labs/mapxml/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/mapxml/internal/adapters/driven/watcher"
	"github.com/custodia-labs/mapxml/internal/adapters/driving/cli"
	"github.com/custodia-labs/mapxml/internal/core/ports/driven"
	"github.com/custodia-labs/mapxml/internal/core/services"
	"github.com/custodia-labs/mapxml/internal/expression"
	"github.com/custodia-labs/mapxml/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cli.SetBootstrap(bootstrap)
	err := cli.Execute(ctx)
	stop()

	if err != nil {
		logger.Error("%v", err)
		os.Exit(cli.ExitCode(err))
	}
}

// bootstrap wires the adapters and services for one invocation.
func bootstrap(configDir string) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, err
	}
	logger.Debug("Config: %s", configStore.Path())

	dataDir := ""
	if configDir != "" {
		dataDir = filepath.Join(configDir, "data")
	}
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	readers := mapping.NewRegistry()
	readers.Register(csvtable.NewReader(), "csv")
	readers.Register(xlsxtable.NewReader(settings.Mapping.Sheet), "xlsx")
	readers.Register(yamltable.NewReader(), "yaml", "yml")

	trees, err := cache.NewTreeCache(settings.Cache.Size)
	if err != nil {
		store.Close()
		return nil, err
	}

	docs := documents.NewStore()
	mappingService := services.NewMappingService(
		services.NewLoader(expression.Compiler{}),
		readers,
		docs,
		store.MappingStore(),
		trees,
	)

	var runs driven.RunStore
	if settings.History.Enabled {
		runs = store.RunStore()
	}
	conversionService := services.NewConversionService(
		mappingService,
		jsontree.NewParser(),
		docs,
		xmlwriter.Factory{},
		services.NewEngine(services.NewPipeline(time.Local)),
		runs,
	)

	fileWatcher, err := watcher.New()
	if err != nil {
		store.Close()
		return nil, err
	}

	return &cli.Services{
		Conversion: conversionService,
		Mapping:    mappingService,
		History:    services.NewHistoryService(store.RunStore()),
		Watch:      services.NewWatchService(conversionService, fileWatcher, settings.Watch.Interval),
		Settings:   settingsService,
		Close: func() error {
			return errors.Join(fileWatcher.Close(), store.Close())
		},
	}, nil
}
