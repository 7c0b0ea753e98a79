package mcp

import (
	"context"
	"io"
	"time"

	"github.com/custodia-labs/mapxml/internal/adapters/driven/documents"
	"github.com/custodia-labs/mapxml/internal/adapters/driven/emitter/xmlwriter"
	"github.com/custodia-labs/mapxml/internal/adapters/driven/input/jsontree"
	"github.com/custodia-labs/mapxml/internal/adapters/driven/mapping"
	"github.com/custodia-labs/mapxml/internal/adapters/driven/mapping/csvtable"
	"github.com/custodia-labs/mapxml/internal/adapters/driven/mapping/yamltable"
	"github.com/custodia-labs/mapxml/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/mapxml/internal/core/domain"
	"github.com/custodia-labs/mapxml/internal/core/ports/driving"
	"github.com/custodia-labs/mapxml/internal/core/services"
	"github.com/custodia-labs/mapxml/internal/expression"
)

const csvHeader = "input_path,output_path,is_list,input_type,output_type,expression,namespace,parent_key\n"

const companyCSV = csvHeader +
	",Company,No,,,,,\n" +
	"name,Company/Name,No,string,string,,,Company\n" +
	"id,Company/@id,No,string,string,,,Company\n"

// newTestPorts wires the real conversion stack over an in-memory library.
func newTestPorts() (*Ports, *memory.MappingStore) {
	readers := mapping.NewRegistry()
	readers.Register(csvtable.NewReader(), "csv")
	readers.Register(yamltable.NewReader(), "yaml", "yml")

	library := memory.NewMappingStore()
	docs := documents.NewStore()
	mappings := services.NewMappingService(services.NewLoader(expression.Compiler{}), readers, docs, library, nil)
	conversions := services.NewConversionService(
		mappings,
		jsontree.NewParser(),
		docs,
		xmlwriter.Factory{},
		services.NewEngine(services.NewPipeline(time.UTC)),
		nil,
	)
	return &Ports{Conversion: conversions, Mapping: mappings}, library
}

// mockConversionService is a mock implementation of driving.ConversionService.
type mockConversionService struct {
	report *domain.Report
	err    error
}

func (m *mockConversionService) Convert(_ context.Context, _ domain.ConvertRequest) (*domain.Report, error) {
	return m.report, m.err
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
	err      error
}

func (m *mockMappingService) Load(_ context.Context, _ string) (*domain.MappingTree, error) {
	return m.tree, m.err
}

func (m *mockMappingService) Parse(_ domain.MappingFormat, _ []byte) (*domain.MappingTree, error) {
	return m.tree, m.err
}

func (m *mockMappingService) Import(_ context.Context, _, _ string) (*domain.StoredMapping, error) {
	return nil, m.err
}

func (m *mockMappingService) List(_ context.Context) ([]domain.StoredMapping, error) {
	return m.mappings, m.err
}

func (m *mockMappingService) Delete(_ context.Context, _ string) error {
	return m.err
}

// mockHistoryService is a mock implementation of driving.HistoryService.
type mockHistoryService struct {
	runs []domain.ConversionRun
	err  error
}

func (m *mockHistoryService) List(_ context.Context, _ int) ([]domain.ConversionRun, error) {
	return m.runs, m.err
}

func (m *mockHistoryService) Clear(_ context.Context) error {
	return m.err
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings domain.AppSettings
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Set(_, _ string) error { return nil }

func (m *mockSettingsService) Keys() []string { return nil }

var (
	_ driving.ConversionService = (*mockConversionService)(nil)
	_ driving.MappingService    = (*mockMappingService)(nil)
	_ driving.HistoryService    = (*mockHistoryService)(nil)
	_ driving.SettingsService   = (*mockSettingsService)(nil)
)
