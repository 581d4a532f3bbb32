package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/therewardcollection/trcdesk/internal/lexicon"
	"github.com/therewardcollection/trcdesk/internal/pipeline"
	"github.com/therewardcollection/trcdesk/internal/storage"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Store    *storage.Store
	Answerer QueryAnswerer // optional; if nil, ask_trc returns an error
}

// NewMCPServer creates an MCP server exposing the query pipeline and the
// knowledge base as tools.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"trcdesk",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("trcdesk — business records and contract knowledge for The Reward Collection dashboard."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("ask_trc",
			mcp.WithDescription("Answer a natural-language question about merchants, publishers, or contracts."),
			mcp.WithString("query", mcp.Description("The question to answer"), mcp.Required()),
			mcp.WithString("tone", mcp.Description("Optional reply tone (sales, account manager, credit control, legal, exec team)")),
		),
		mcpAskTRC(deps),
	)

	s.AddTool(
		mcp.NewTool("search_knowledge",
			mcp.WithDescription("Search the ingested knowledge base documents and return the best matches."),
			mcp.WithString("query", mcp.Description("Search query"), mcp.Required()),
			mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 5)")),
		),
		mcpSearchKnowledge(deps),
	)

	s.AddTool(
		mcp.NewTool("count_records",
			mcp.WithDescription("Count merchant or publisher records, optionally filtered by status and region."),
			mcp.WithString("table", mcp.Description("Which records to count: merchants or publishers"), mcp.Required()),
			mcp.WithString("status", mcp.Description("Optional status filter (live, paused)")),
			mcp.WithString("region", mcp.Description("Optional region filter (UK, Europe, USA)")),
		),
		mcpCountRecords(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"trc://knowledge/recent",
			"Recent Knowledge Documents",
			mcp.WithResourceDescription("Last 10 ingested knowledge base documents"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceRecentDocs(deps),
	)

	return s
}

func mcpAskTRC(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}
		if deps.Answerer == nil {
			return mcpError("query pipeline not configured"), nil
		}

		answer, _, err := deps.Answerer.Answer(ctx, pipeline.Request{
			Query: query,
			Tone:  req.GetString("tone", ""),
		})
		if err != nil {
			return mcpError(fmt.Sprintf("query failed: %v", err)), nil
		}
		return mcpText(answer), nil
	}
}

func mcpSearchKnowledge(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}
		if deps.Store == nil {
			return mcpError("knowledge base not configured"), nil
		}

		limit := req.GetInt("limit", 5)
		if limit <= 0 {
			limit = 5
		}
		if limit > 50 {
			limit = 50
		}

		docs, err := deps.Store.SearchKnowledgeDocs(ctx, query, limit)
		if err != nil {
			return mcpError(fmt.Sprintf("search failed: %v", err)), nil
		}
		if len(docs) == 0 {
			return mcpText("[]"), nil
		}

		type docResult struct {
			FileName string `json:"file_name"`
			FileURL  string `json:"file_url"`
			Snippet  string `json:"snippet"`
		}
		results := make([]docResult, len(docs))
		for i, d := range docs {
			results[i] = docResult{
				FileName: d.FileName,
				FileURL:  d.FileURL,
				Snippet:  truncateRunes(d.ExtractedText, 500),
			}
		}

		b, err := json.Marshal(results)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpCountRecords(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tableArg, err := req.RequireString("table")
		if err != nil {
			return mcpError("table is required"), nil
		}
		if deps.Store == nil {
			return mcpError("database not configured"), nil
		}

		table := lexicon.MatchTable(tableArg)
		if table == "" {
			return mcpError(fmt.Sprintf("unknown table %q: use merchants or publishers", tableArg)), nil
		}
		status := lexicon.MatchStatus(req.GetString("status", ""))
		region := lexicon.MatchRegion(req.GetString("region", ""))

		records, err := deps.Store.ListEntityRecords(ctx, string(table))
		if err != nil {
			return mcpError(fmt.Sprintf("listing records failed: %v", err)), nil
		}

		count := 0
		for _, rec := range records {
			if status != "" && !strings.EqualFold(rec.Status(), status) {
				continue
			}
			if region != "" && !lexicon.HasRegion(rec.RegionText(), region) {
				continue
			}
			count++
		}

		b, _ := json.Marshal(map[string]any{
			"table":  string(table),
			"status": status,
			"region": region,
			"count":  count,
		})
		return mcpText(string(b)), nil
	}
}

func mcpResourceRecentDocs(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		if deps.Store == nil {
			return nil, fmt.Errorf("knowledge base not configured")
		}

		docs, err := deps.Store.ListKnowledgeDocs(10)
		if err != nil {
			return nil, fmt.Errorf("failed to list knowledge docs: %w", err)
		}

		type docSummary struct {
			FileName   string `json:"file_name"`
			FileURL    string `json:"file_url"`
			UploadedAt string `json:"uploaded_at"`
		}
		summaries := make([]docSummary, len(docs))
		for i, d := range docs {
			summaries[i] = docSummary{
				FileName:   d.FileName,
				FileURL:    d.FileURL,
				UploadedAt: d.UploadedAt.Format(time.RFC3339),
			}
		}

		b, err := json.Marshal(summaries)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal docs: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
