package cli

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/mapxml/internal/core/domain"
	"github.com/custodia-labs/mapxml/internal/core/ports/driving"
)

// mockConversionService records requests and returns a fixed outcome.
type mockConversionService struct {
	requests []domain.ConvertRequest
	report   *domain.Report
	err      error
}

func (m *mockConversionService) Convert(_ context.Context, req domain.ConvertRequest) (*domain.Report, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	if m.report == nil {
		return &domain.Report{}, nil
	}
	return m.report, nil
}

func (m *mockConversionService) ConvertStream(
	_ context.Context,
	_ *domain.MappingTree,
	_ io.Reader,
	_ io.Writer,
	_ domain.OutputSettings,
) (*domain.Report, error) {
	return m.report, m.err
}

// mockMappingService is a mock implementation of driving.MappingService.
type mockMappingService struct {
	tree     *domain.MappingTree
	mappings []domain.StoredMapping
	imported []string
	deleted  []string
	err      error
}

func (m *mockMappingService) Load(_ context.Context, _ string) (*domain.MappingTree, error) {
	return m.tree, m.err
}

func (m *mockMappingService) Parse(_ domain.MappingFormat, _ []byte) (*domain.MappingTree, error) {
	return m.tree, m.err
}

func (m *mockMappingService) Import(_ context.Context, name, ref string) (*domain.StoredMapping, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.imported = append(m.imported, name+"="+ref)
	return &domain.StoredMapping{
		Name:   name,
		Source: ref,
		Rows:   []domain.MappingRow{{OutputPath: "Company"}, {OutputPath: "Company/Name"}},
	}, nil
}

func (m *mockMappingService) List(_ context.Context) ([]domain.StoredMapping, error) {
	return m.mappings, m.err
}

func (m *mockMappingService) Delete(_ context.Context, name string) error {
	m.deleted = append(m.deleted, name)
	return m.err
}

// mockHistoryService is a mock implementation of driving.HistoryService.
type mockHistoryService struct {
	runs    []domain.ConversionRun
	limit   int
	cleared bool
	err     error
}

func (m *mockHistoryService) List(_ context.Context, limit int) ([]domain.ConversionRun, error) {
	m.limit = limit
	return m.runs, m.err
}

func (m *mockHistoryService) Clear(_ context.Context) error {
	m.cleared = true
	return m.err
}

// mockWatchService runs onRun once per queued outcome.
type mockWatchService struct {
	outcomes []error
	req      domain.ConvertRequest
	err      error
}

func (m *mockWatchService) Watch(_ context.Context, req domain.ConvertRequest, onRun func(*domain.Report, error)) error {
	m.req = req
	if m.err != nil {
		return m.err
	}
	for _, err := range m.outcomes {
		if err != nil {
			onRun(nil, err)
			continue
		}
		onRun(&domain.Report{Elements: 2, BytesWritten: 64, Duration: time.Millisecond}, nil)
	}
	return nil
}

// mockSettingsService keeps settings in memory.
type mockSettingsService struct {
	settings domain.AppSettings
	set      map[string]string
	err      error
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	if m.err != nil {
		return nil, m.err
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.err != nil {
		return m.err
	}
	if m.set == nil {
		m.set = make(map[string]string)
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"output.indent", "output.namespaces"}
}

var (
	_ driving.ConversionService = (*mockConversionService)(nil)
	_ driving.MappingService    = (*mockMappingService)(nil)
	_ driving.HistoryService    = (*mockHistoryService)(nil)
	_ driving.WatchService      = (*mockWatchService)(nil)
	_ driving.SettingsService   = (*mockSettingsService)(nil)
)

// testServices are the mocks installed by setupTestServices.
type testServices struct {
	conversion *mockConversionService
	mapping    *mockMappingService
	history    *mockHistoryService
	watch      *mockWatchService
	settings   *mockSettingsService
}

// setupTestServices installs fresh mocks and returns a cleanup that
// removes them and resets every flag.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		conversion: &mockConversionService{},
		mapping:    &mockMappingService{},
		history:    &mockHistoryService{},
		watch:      &mockWatchService{},
		settings:   &mockSettingsService{settings: domain.DefaultAppSettings()},
	}
	SetServices(&Services{
		Conversion: ts.conversion,
		Mapping:    ts.mapping,
		History:    ts.history,
		Watch:      ts.watch,
		Settings:   ts.settings,
	})

	return ts, func() {
		SetServices(&Services{})
		resetFlags(rootCmd)
		rootCmd.SetArgs(nil)
	}
}

// resetFlags restores defaults on cmd and all its subcommands.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}
