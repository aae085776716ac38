package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFrameworkName(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid framework URI",
			uri:      "comply://frameworks/gri",
			expected: "gri",
		},
		{
			name:     "invalid prefix",
			uri:      "file://frameworks/gri",
			expected: "",
		},
		{
			name:     "nested path",
			uri:      "comply://frameworks/gri/items",
			expected: "",
		},
		{
			name:     "list URI",
			uri:      "comply://frameworks",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractFrameworkName(tt.uri)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func readRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}}
}

func TestServer_handleFrameworksResource(t *testing.T) {
	server, err := NewServer(&Ports{
		Compliance: &mockComplianceService{frameworks: testFrameworks()},
	})
	require.NoError(t, err)

	result, err := server.handleFrameworksResource(context.Background(), readRequest("comply://frameworks"))
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "comply://frameworks", result.Contents[0].URI)
	assert.Equal(t, "application/json", result.Contents[0].MIMEType)

	var infos []frameworkInfo
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &infos))
	assert.Equal(t, []frameworkInfo{
		{Name: "gri", Title: "GRI", Policy: "percent", Requirements: 2},
		{Name: "tcfd", Title: "TCFD", Policy: "similarity", Requirements: 1},
	}, infos)
}

func TestServer_handleFrameworkResource(t *testing.T) {
	ctx := context.Background()
	server, err := NewServer(&Ports{
		Compliance: &mockComplianceService{frameworks: testFrameworks()},
	})
	require.NoError(t, err)

	t.Run("returns checklist", func(t *testing.T) {
		result, err := server.handleFrameworkResource(ctx, readRequest("comply://frameworks/GRI"))
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)

		var got struct {
			Name         string `json:"name"`
			Requirements int    `json:"requirements"`
			Sections     []struct {
				Name  string `json:"name"`
				Items []struct {
					ID        string  `json:"id"`
					Question  string  `json:"question"`
					Threshold float64 `json:"threshold"`
				} `json:"items"`
			} `json:"sections"`
		}
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &got))

		assert.Equal(t, "gri", got.Name)
		assert.Equal(t, 2, got.Requirements)
		require.Len(t, got.Sections, 1)
		assert.Equal(t, "Emissions", got.Sections[0].Name)
		require.Len(t, got.Sections[0].Items, 2)
		assert.Equal(t, "gri-305-2", got.Sections[0].Items[1].ID)
		assert.Equal(t, 0.55, got.Sections[0].Items[1].Threshold)
	})

	t.Run("unknown framework is not found", func(t *testing.T) {
		result, err := server.handleFrameworkResource(ctx, readRequest("comply://frameworks/iso"))
		require.Error(t, err)
		assert.Nil(t, result)
	})

	t.Run("malformed URI is not found", func(t *testing.T) {
		result, err := server.handleFrameworkResource(ctx, readRequest("comply://frameworks/"))
		require.Error(t, err)
		assert.Nil(t, result)
	})
}
