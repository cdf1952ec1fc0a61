package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/h24486064/plagiarism-detection/internal/core/domain"
)

// PathInput is the input schema shared by all tools.
type PathInput struct {
	Path string `json:"path" jsonschema:"path of a local .txt, .md, .html, .docx or .pdf file"`
}

// SectionOutput is the output schema for the locate_section tool.
type SectionOutput struct {
	Found     bool   `json:"found"`
	Heading   string `json:"heading,omitempty"`
	Start     int    `json:"start"`
	End       int    `json:"end"`
	Truncated bool   `json:"truncated,omitempty"`
	Text      string `json:"text,omitempty"`
}

// ChunksOutput is the output schema for the chunk_section tool.
type ChunksOutput struct {
	Windows []WindowOutput `json:"windows"`
	Count   int            `json:"count"`
}

// WindowOutput represents a single window.
type WindowOutput struct {
	Sequence    int    `json:"sequence"`
	Start       int    `json:"start"`
	End         int    `json:"end"`
	TokenCount  int    `json:"token_count"`
	Approximate bool   `json:"approximate,omitempty"`
	Text        string `json:"text"`
}

// CheckOutput is the output schema for the check_document tool.
type CheckOutput struct {
	RunID    string          `json:"run_id"`
	Status   string          `json:"status"`
	Windows  int             `json:"windows"`
	Findings []FindingOutput `json:"findings"`
	Files    []string        `json:"files,omitempty"`
}

// FindingOutput represents a flagged window.
type FindingOutput struct {
	Sequence      int     `json:"sequence"`
	Kind          string  `json:"kind"`
	Start         int     `json:"start"`
	End           int     `json:"end"`
	AIScore       float64 `json:"ai_score"`
	SourceURL     string  `json:"source_url,omitempty"`
	Similarity    float64 `json:"similarity,omitempty"`
	Confidence    float64 `json:"confidence"`
	Justification string  `json:"justification"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "locate_section",
		Description: "Find the literature review section of a document and return its byte offsets",
	}, s.handleLocateSection)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "chunk_section",
		Description: "Split the literature review section of a document into overlapping token windows",
	}, s.handleChunkSection)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "check_document",
		Description: "Check the literature review section of a document for web plagiarism and AI-generated text",
	}, s.handleCheckDocument)
}

// handleLocateSection handles the locate_section tool invocation.
// A document without a review heading is not an error: Found is false.
func (s *Server) handleLocateSection(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PathInput,
) (*mcp.CallToolResult, SectionOutput, error) {
	_, section, err := s.ports.Check.Section(ctx, input.Path)
	if errors.Is(err, domain.ErrSectionNotFound) {
		return nil, SectionOutput{}, nil
	}
	if err != nil {
		return nil, SectionOutput{}, err
	}

	return nil, SectionOutput{
		Found:     true,
		Heading:   section.Heading,
		Start:     section.Start,
		End:       section.End,
		Truncated: section.Truncated,
		Text:      section.Text,
	}, nil
}

// handleChunkSection handles the chunk_section tool invocation.
func (s *Server) handleChunkSection(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PathInput,
) (*mcp.CallToolResult, ChunksOutput, error) {
	windows, err := s.ports.Check.Chunks(ctx, input.Path)
	if err != nil {
		return nil, ChunksOutput{}, err
	}

	output := ChunksOutput{
		Windows: make([]WindowOutput, len(windows)),
		Count:   len(windows),
	}
	for i, w := range windows {
		output.Windows[i] = WindowOutput{
			Sequence:    w.Sequence,
			Start:       w.Start,
			End:         w.End,
			TokenCount:  w.TokenCount,
			Approximate: w.Approximate,
			Text:        w.Text,
		}
	}
	return nil, output, nil
}

// handleCheckDocument handles the check_document tool invocation.
func (s *Server) handleCheckDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PathInput,
) (*mcp.CallToolResult, CheckOutput, error) {
	report, err := s.ports.Check.Check(ctx, input.Path)
	if err != nil {
		return nil, CheckOutput{}, err
	}

	output := CheckOutput{
		RunID:    report.RunID,
		Status:   string(report.Status),
		Windows:  report.Windows,
		Findings: make([]FindingOutput, len(report.Findings)),
		Files:    report.Files,
	}
	for i, f := range report.Findings {
		out := FindingOutput{
			Sequence:      f.Window.Sequence,
			Kind:          string(f.Kind()),
			Start:         f.Window.Start,
			End:           f.Window.End,
			AIScore:       f.AIScore,
			Confidence:    f.Verdict.Confidence,
			Justification: f.Verdict.Justification,
		}
		if f.Hit != nil {
			out.SourceURL = f.Hit.URL
			out.Similarity = f.Hit.Score
		}
		output.Findings[i] = out
	}
	return nil, output, nil
}
