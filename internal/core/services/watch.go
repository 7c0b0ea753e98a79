package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/mapxml/internal/core/domain"
	"github.com/custodia-labs/mapxml/internal/core/ports/driven"
	"github.com/custodia-labs/mapxml/internal/core/ports/driving"
	"github.com/custodia-labs/mapxml/internal/logger"
)

// Ensure WatchService implements the interface.
var _ driving.WatchService = (*WatchService)(nil)

// WatchService re-runs conversions when their local sources change.
type WatchService struct {
	conversions driving.ConversionService
	watcher     driven.Watcher
	interval    time.Duration
}

// NewWatchService creates a watch service that converts at most once per interval.
func NewWatchService(conversions driving.ConversionService, watcher driven.Watcher, interval time.Duration) *WatchService {
	return &WatchService{
		conversions: conversions,
		watcher:     watcher,
		interval:    interval,
	}
}

// Watch converts once, then again after changes to the mapping or input
// file, until ctx is done. Changes that arrive while throttled are
// coalesced into one conversion.
func (s *WatchService) Watch(ctx context.Context, req domain.ConvertRequest, onRun func(*domain.Report, error)) error {
	paths := watchablePaths(req)
	if len(paths) == 0 {
		return fmt.Errorf("%w: neither mapping nor input is a local file", domain.ErrInvalidInput)
	}

	changes, err := s.watcher.Watch(ctx, paths...)
	if err != nil {
		return err
	}
	logger.Info("Watching %s", strings.Join(paths, ", "))

	limit := rate.Inf
	if s.interval > 0 {
		limit = rate.Every(s.interval)
	}
	limiter := rate.NewLimiter(limit, 1)

	convert := func() {
		report, err := s.conversions.Convert(ctx, req)
		if onRun != nil {
			onRun(report, err)
		}
	}
	limiter.Allow()
	convert()

	for {
		select {
		case <-ctx.Done():
			return nil
		case path, ok := <-changes:
			if !ok {
				return nil
			}
			logger.Debug("Changed: %s", path)
			if err := limiter.Wait(ctx); err != nil {
				return nil
			}
			drain(changes)
			convert()
		}
	}
}

// drain discards changes already queued.
func drain(changes <-chan string) {
	for {
		select {
		case _, ok := <-changes:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

// watchablePaths returns the local files behind req.
func watchablePaths(req domain.ConvertRequest) []string {
	var paths []string
	for _, ref := range []string{req.Mapping, req.Input} {
		if ref == "" || strings.HasPrefix(ref, LibraryPrefix) || strings.Contains(ref, "://") {
			continue
		}
		paths = append(paths, ref)
	}
	return paths
}
