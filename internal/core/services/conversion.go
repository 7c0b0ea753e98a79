package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/mapxml/internal/core/domain"
	"github.com/custodia-labs/mapxml/internal/core/ports/driven"
	"github.com/custodia-labs/mapxml/internal/core/ports/driving"
	"github.com/custodia-labs/mapxml/internal/logger"
)

// Ensure ConversionService implements the interface.
var _ driving.ConversionService = (*ConversionService)(nil)

// ConversionService orchestrates a conversion: mapping, input, output.
type ConversionService struct {
	mappings driving.MappingService
	parser   driven.InputParser
	docs     driven.DocumentStore
	emitters driven.EmitterFactory
	engine   *Engine
	runs     driven.RunStore
}

// NewConversionService creates a conversion service. runs may be nil to
// disable run history.
func NewConversionService(
	mappings driving.MappingService,
	parser driven.InputParser,
	docs driven.DocumentStore,
	emitters driven.EmitterFactory,
	engine *Engine,
	runs driven.RunStore,
) *ConversionService {
	return &ConversionService{
		mappings: mappings,
		parser:   parser,
		docs:     docs,
		emitters: emitters,
		engine:   engine,
		runs:     runs,
	}
}

// Convert loads the mapping, parses the input and writes the output.
// Mapping and input failures happen before the output is opened. A
// failed write removes the partial output.
func (s *ConversionService) Convert(ctx context.Context, req domain.ConvertRequest) (*domain.Report, error) {
	started := time.Now()
	run := domain.ConversionRun{
		ID:        uuid.New().String(),
		Mapping:   req.Mapping,
		Input:     req.Input,
		Output:    req.Output,
		StartedAt: started.UTC(),
	}
	logger.Debug("Run %s: %s + %s -> %s", run.ID, req.Mapping, req.Input, req.Output)

	report, err := s.convert(ctx, req, &run)
	if report == nil {
		report = &domain.Report{}
	}
	report.RunID = run.ID
	report.Duration = time.Since(started)

	run.Duration = report.Duration
	run.Warnings = len(report.Warnings)
	run.BytesWritten = report.BytesWritten
	run.Status = domain.RunSucceeded
	if err != nil {
		run.Status = domain.RunFailed
		run.Error = err.Error()
	}
	s.record(ctx, run)

	return report, err
}

func (s *ConversionService) convert(
	ctx context.Context,
	req domain.ConvertRequest,
	run *domain.ConversionRun,
) (*domain.Report, error) {
	tree, err := s.mappings.Load(ctx, req.Mapping)
	if err != nil {
		return nil, err
	}
	run.Fingerprint = tree.Fingerprint

	data, err := s.docs.Read(ctx, req.Input)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	input, err := s.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := s.docs.Create(ctx, req.Output)
	if err != nil {
		return nil, domain.ErrEmit.Wrap(err, fmt.Sprintf("opening output: %v", err))
	}

	report, err := s.emit(tree, input, out, req.Options)
	closeErr := out.Close()
	if err == nil && closeErr != nil {
		err = domain.ErrEmit.Wrap(closeErr, fmt.Sprintf("closing output: %v", closeErr))
	}
	if err != nil {
		if rmErr := s.docs.Remove(ctx, req.Output); rmErr != nil {
			logger.Warn("could not remove partial output %s: %v", req.Output, rmErr)
		}
		return report, err
	}

	report.Warnings = append(append([]domain.Warning(nil), tree.Warnings...), report.Warnings...)
	return report, nil
}

// ConvertStream converts an already loaded tree from r to w.
func (s *ConversionService) ConvertStream(
	ctx context.Context,
	tree *domain.MappingTree,
	r io.Reader,
	w io.Writer,
	opts domain.OutputSettings,
) (*domain.Report, error) {
	started := time.Now()
	input, err := s.parser.Parse(r)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	report, err := s.emit(tree, input, w, opts)
	if report != nil {
		report.Duration = time.Since(started)
	}
	return report, err
}

// emit runs the engine into w through a fresh emitter.
func (s *ConversionService) emit(
	tree *domain.MappingTree,
	input *domain.Node,
	w io.Writer,
	opts domain.OutputSettings,
) (*domain.Report, error) {
	cw := &countingWriter{w: w}
	report, err := s.engine.Run(tree, input, s.emitters.NewEmitter(cw, opts))
	report.BytesWritten = cw.n
	return report, err
}

func (s *ConversionService) record(ctx context.Context, run domain.ConversionRun) {
	if s.runs == nil {
		return
	}
	// The run is recorded even when ctx was cancelled mid-conversion.
	if err := s.runs.Save(context.WithoutCancel(ctx), run); err != nil {
		logger.Warn("could not record run %s: %v", run.ID, err)
	}
}

// countingWriter counts bytes accepted by the underlying sink.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
