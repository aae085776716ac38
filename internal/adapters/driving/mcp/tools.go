package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/comply/internal/core/domain"
	"github.com/custodia-labs/comply/internal/core/ports/driving"
)

// CheckInput is the input schema for the check_compliance tool.
type CheckInput struct {
	Framework  string `json:"framework" jsonschema:"framework name, e.g. gri, sasb, tcfd or csrd"`
	DocText    string `json:"doc_text" jsonschema:"full text of the report to score"`
	SkipAdvice bool   `json:"skip_advice,omitempty" jsonschema:"do not generate improvement advice"`
}

// CheckOutput is the output schema for the check_compliance tool.
type CheckOutput struct {
	Framework string         `json:"framework"`
	Results   []ResultOutput `json:"results"`
	LikelyMet int            `json:"likely_met"`
	Unclear   int            `json:"unclear"`
	NotMet    int            `json:"not_met"`
}

// ResultOutput represents the score of a single requirement.
type ResultOutput struct {
	ID         string  `json:"id"`
	Section    string  `json:"section"`
	Question   string  `json:"question"`
	Similarity float64 `json:"similarity"`
	Threshold  float64 `json:"threshold"`
	MatchScore int     `json:"match_score"`
	Status     string  `json:"status"`
	TopChunk   string  `json:"top_chunk"`
	Advice     string  `json:"advice,omitempty"`
}

// RetrieveInput is the input schema for the retrieve_passages tool.
type RetrieveInput struct {
	Query    string `json:"query" jsonschema:"question or topic to look up"`
	Document string `json:"document,omitempty" jsonschema:"indexed document name; empty searches every document"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"maximum number of passages to return (default 15)"`
}

// RetrieveOutput is the output schema for the retrieve_passages tool.
type RetrieveOutput struct {
	Passages  []PassageOutput `json:"passages"`
	Citations []string        `json:"citations"`
}

// PassageOutput represents a single retrieved passage.
type PassageOutput struct {
	Document string  `json:"document"`
	Page     int     `json:"page"`
	Score    float64 `json:"score"`
	Text     string  `json:"text"`
}

// ImproveInput is the input schema for the improve_disclosure tool.
type ImproveInput struct {
	Framework string `json:"framework" jsonschema:"framework name"`
	Question  string `json:"question" jsonschema:"the disclosure requirement to improve on"`
}

// ImproveOutput is the output schema for the improve_disclosure tool.
type ImproveOutput struct {
	Advice string `json:"advice"`
}

// DraftInput is the input schema for the draft_disclosure tool.
type DraftInput struct {
	Framework string `json:"framework" jsonschema:"framework name"`
	Question  string `json:"question" jsonschema:"the disclosure requirement to draft for"`
	DocText   string `json:"doc_text" jsonschema:"full text of the report used to ground the draft"`
}

// DraftOutput is the output schema for the draft_disclosure tool.
type DraftOutput struct {
	Draft    string  `json:"draft"`
	LowMatch bool    `json:"low_match"`
	TopScore float64 `json:"top_score"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "check_compliance",
		Description: "Score a sustainability report against a disclosure framework checklist",
	}, s.handleCheck)

	if s.ports.Corpus != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "retrieve_passages",
			Description: "Retrieve the passages of indexed reports most relevant to a query, with page citations",
		}, s.handleRetrieve)
	}

	if s.ports.Advisor != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "improve_disclosure",
			Description: "Suggest how to improve a report's disclosure for one framework requirement",
		}, s.handleImprove)

		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "draft_disclosure",
			Description: "Draft a disclosure paragraph for one framework requirement",
		}, s.handleDraft)
	}
}

// handleCheck handles the check_compliance tool invocation.
func (s *Server) handleCheck(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CheckInput,
) (*mcp.CallToolResult, CheckOutput, error) {
	report, err := s.ports.Compliance.Check(ctx, input.Framework, input.DocText,
		driving.CheckOptions{SkipAdvice: input.SkipAdvice})
	if err != nil {
		return nil, CheckOutput{}, err
	}

	counts := report.Summary()
	output := CheckOutput{
		Framework: report.Framework,
		Results:   make([]ResultOutput, len(report.Results)),
		LikelyMet: counts[domain.StatusLikelyMet],
		Unclear:   counts[domain.StatusUnclear],
		NotMet:    counts[domain.StatusNotMet],
	}

	for i := range report.Results {
		r := &report.Results[i]
		output.Results[i] = ResultOutput{
			ID:         r.ID,
			Section:    r.Section,
			Question:   r.Question,
			Similarity: r.Similarity,
			Threshold:  r.Threshold,
			MatchScore: r.MatchScore,
			Status:     r.Status.String(),
			TopChunk:   r.TopChunk,
			Advice:     r.Advice,
		}
	}

	return nil, output, nil
}

// handleRetrieve handles the retrieve_passages tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	retrieval, err := s.ports.Corpus.Retrieve(ctx, input.Document, input.Query, input.TopK)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{
		Passages:  make([]PassageOutput, len(retrieval.Passages)),
		Citations: retrieval.Citations,
	}
	for i, p := range retrieval.Passages {
		output.Passages[i] = PassageOutput{
			Document: p.Document,
			Page:     p.Page,
			Score:    p.Score,
			Text:     p.Text,
		}
	}

	return nil, output, nil
}

// handleImprove handles the improve_disclosure tool invocation.
func (s *Server) handleImprove(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ImproveInput,
) (*mcp.CallToolResult, ImproveOutput, error) {
	advice, err := s.ports.Advisor.Improve(ctx, input.Framework, input.Question)
	if err != nil {
		return nil, ImproveOutput{}, err
	}
	return nil, ImproveOutput{Advice: advice}, nil
}

// handleDraft handles the draft_disclosure tool invocation.
func (s *Server) handleDraft(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DraftInput,
) (*mcp.CallToolResult, DraftOutput, error) {
	draft, err := s.ports.Advisor.Draft(ctx, input.Framework, input.Question, input.DocText)
	if err != nil {
		return nil, DraftOutput{}, err
	}
	return nil, DraftOutput{
		Draft:    draft.Text,
		LowMatch: draft.LowMatch,
		TopScore: draft.TopScore,
	}, nil
}
