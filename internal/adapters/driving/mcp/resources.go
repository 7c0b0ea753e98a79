package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/mapxml/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for mapxml resources.
	uriScheme = "mapxml://"

	historyLimit = 20
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "mappings",
		Name:        "mappings",
		Description: "Mapping tables stored in the mapping library",
		MIMEType:    "application/json",
	}, s.handleMappingsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "mappings/{name}",
		Name:        "mapping-rows",
		Description: "Rows of a stored mapping in emission order",
		MIMEType:    "application/json",
	}, s.handleMappingRowsResource)

	if s.ports.History != nil {
		s.server.AddResource(&mcp.Resource{
			URI:         uriScheme + "history",
			Name:        "history",
			Description: "Most recent conversion runs",
			MIMEType:    "application/json",
		}, s.handleHistoryResource)
	}
}

// handleMappingsResource lists the mapping library.
func (s *Server) handleMappingsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	mappings, err := s.ports.Mapping.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing mappings: %w", err)
	}

	type mappingInfo struct {
		Name        string    `json:"name"`
		Source      string    `json:"source"`
		Fingerprint string    `json:"fingerprint"`
		ImportedAt  time.Time `json:"imported_at"`
	}

	infos := make([]mappingInfo, len(mappings))
	for i, m := range mappings {
		infos[i] = mappingInfo{
			Name:        m.Name,
			Source:      m.Source,
			Fingerprint: fmt.Sprintf("%016x", m.Fingerprint),
			ImportedAt:  m.ImportedAt,
		}
	}

	return jsonResult(req.Params.URI, infos)
}

// handleMappingRowsResource returns the loaded rows of one stored mapping.
func (s *Server) handleMappingRowsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	name := extractMappingName(req.Params.URI)
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	tree, err := s.ports.Mapping.Load(ctx, libraryPrefix+name)
	if err != nil {
		if domain.HasKind(err, domain.ErrMappingLoad) && strings.Contains(err.Error(), domain.ErrNotFound.Error()) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, fmt.Errorf("loading mapping %s: %w", name, err)
	}

	type rowInfo struct {
		domain.MappingRow
		Depth int `json:"depth"`
	}

	rows := make([]rowInfo, 0, tree.Size())
	tree.Walk(func(n *domain.MappingNode, depth int) {
		rows = append(rows, rowInfo{MappingRow: n.Row, Depth: depth})
	})

	return jsonResult(req.Params.URI, rows)
}

// handleHistoryResource returns the most recent runs.
func (s *Server) handleHistoryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	runs, err := s.ports.History.List(ctx, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	type runInfo struct {
		ID         string    `json:"id"`
		Mapping    string    `json:"mapping"`
		Input      string    `json:"input"`
		Output     string    `json:"output"`
		Status     string    `json:"status"`
		Warnings   int       `json:"warnings"`
		Error      string    `json:"error,omitempty"`
		StartedAt  time.Time `json:"started_at"`
		DurationMS int64     `json:"duration_ms"`
	}

	infos := make([]runInfo, len(runs))
	for i, r := range runs {
		infos[i] = runInfo{
			ID:         r.ID,
			Mapping:    r.Mapping,
			Input:      r.Input,
			Output:     r.Output,
			Status:     r.Status.String(),
			Warnings:   r.Warnings,
			Error:      r.Error,
			StartedAt:  r.StartedAt,
			DurationMS: r.Duration.Milliseconds(),
		}
	}

	return jsonResult(req.Params.URI, infos)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractMappingName extracts the name from a URI like mapxml://mappings/{name}.
func extractMappingName(uri string) string {
	const prefix = uriScheme + "mappings/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	name := strings.TrimPrefix(uri, prefix)
	if strings.Contains(name, "/") {
		return ""
	}
	return name
}
