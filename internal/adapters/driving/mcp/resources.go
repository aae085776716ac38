package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/comply/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for comply resources.
	uriScheme = "comply://"
)

// frameworkInfo is the list entry for a framework.
type frameworkInfo struct {
	Name         string `json:"name"`
	Title        string `json:"title"`
	Policy       string `json:"policy"`
	Requirements int    `json:"requirements"`
}

// sectionInfo is one checklist section of a framework resource.
type sectionInfo struct {
	Name  string                 `json:"name"`
	Items []domain.ChecklistItem `json:"items"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing frameworks.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "frameworks",
		Name:        "frameworks",
		Description: "Disclosure frameworks available for scoring",
		MIMEType:    "application/json",
	}, s.handleFrameworksResource)

	// Template for a framework checklist.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "frameworks/{name}",
		Name:        "framework-checklist",
		Description: "Checklist of requirements for a specific framework",
		MIMEType:    "application/json",
	}, s.handleFrameworkResource)
}

// handleFrameworksResource returns the registered frameworks.
func (s *Server) handleFrameworksResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	frameworks := s.ports.Compliance.Frameworks()

	infos := make([]frameworkInfo, len(frameworks))
	for i, fw := range frameworks {
		infos[i] = frameworkInfo{
			Name:         fw.Name,
			Title:        fw.DisplayName(),
			Policy:       fw.Policy.String(),
			Requirements: fw.Checklist.Len(),
		}
	}

	return jsonResult(req.Params.URI, infos)
}

// handleFrameworkResource returns the checklist of one framework.
func (s *Server) handleFrameworkResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract name from URI: comply://frameworks/{name}
	name := extractFrameworkName(req.Params.URI)
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	fw, err := s.findFramework(name)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownFramework) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, err
	}

	var sections []sectionInfo
	if fw.Checklist != nil {
		sections = make([]sectionInfo, len(fw.Checklist.Sections))
		for i, sec := range fw.Checklist.Sections {
			sections[i] = sectionInfo{Name: sec.Name, Items: sec.Items}
		}
	}

	return jsonResult(req.Params.URI, struct {
		frameworkInfo
		Sections []sectionInfo `json:"sections"`
	}{
		frameworkInfo: frameworkInfo{
			Name:         fw.Name,
			Title:        fw.DisplayName(),
			Policy:       fw.Policy.String(),
			Requirements: fw.Checklist.Len(),
		},
		Sections: sections,
	})
}

// findFramework looks a framework up by case-insensitive name.
func (s *Server) findFramework(name string) (*domain.Framework, error) {
	for _, fw := range s.ports.Compliance.Frameworks() {
		if strings.EqualFold(fw.Name, name) {
			return fw, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrUnknownFramework, name)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractFrameworkName extracts the framework name from a URI like comply://frameworks/{name}.
func extractFrameworkName(uri string) string {
	const prefix = uriScheme + "frameworks/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	name := strings.TrimPrefix(uri, prefix)
	if strings.Contains(name, "/") {
		return ""
	}
	return name
}
