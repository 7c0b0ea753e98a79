package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/mapxml/internal/core/domain"
)

// ConversionService converts input documents to XML.
type ConversionService interface {
	// Convert runs a conversion between documents addressed by URL.
	// Mapping and input failures abort before any output is written.
	Convert(ctx context.Context, req domain.ConvertRequest) (*domain.Report, error)

	// ConvertStream converts an already loaded tree from r to w.
	ConvertStream(
		ctx context.Context,
		tree *domain.MappingTree,
		r io.Reader,
		w io.Writer,
		opts domain.OutputSettings,
	) (*domain.Report, error)
}

// WatchService re-runs a conversion whenever its mapping or input changes.
type WatchService interface {
	// Watch converts once, then again after every change, until ctx is done.
	// onRun is called after every conversion.
	Watch(ctx context.Context, req domain.ConvertRequest, onRun func(*domain.Report, error)) error
}
