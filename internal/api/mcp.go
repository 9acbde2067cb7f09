package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/wellbuddy/internal/quotes"
	"github.com/kalambet/wellbuddy/internal/storage"
)

// MoodStore is the slice of storage the MCP tools use.
type MoodStore interface {
	SaveMood(m storage.MoodEntry) error
	ListMoods() ([]storage.MoodEntry, error)
}

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Store   MoodStore
	Version string
	Now     func() time.Time // optional; nil uses time.Now
}

func (d MCPDeps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// NewMCPServer creates an MCP server exposing mood logging and the daily
// quote. Chat is not exposed here so every message that could carry a
// crisis phrase goes through the HTTP chat pipeline and its alerting.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	version := deps.Version
	if version == "" {
		version = "dev"
	}
	s := server.NewMCPServer(
		"wellbuddy",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("wellbuddy: log mood check-ins, read mood history, and fetch the motivational quote of the day."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("log_mood",
			mcp.WithDescription("Record a mood check-in for today."),
			mcp.WithNumber("score", mcp.Description("Mood score, e.g. 1 (low) to 10 (great)"), mcp.Required()),
			mcp.WithString("category", mcp.Description("Short mood label such as happy, calm or anxious"), mcp.Required()),
		),
		mcpLogMood(deps),
	)

	s.AddTool(
		mcp.NewTool("list_moods",
			mcp.WithDescription("Return mood check-ins in the order they were recorded."),
			mcp.WithNumber("limit", mcp.Description("Only return the most recent N entries (default all)")),
		),
		mcpListMoods(deps),
	)

	s.AddTool(
		mcp.NewTool("daily_quote",
			mcp.WithDescription("Return today's motivational quote."),
		),
		mcpDailyQuote(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"wellness://moods",
			"Mood History",
			mcp.WithResourceDescription("All mood check-ins as a JSON array"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceMoods(deps),
	)

	return s
}

func mcpLogMood(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		score, err := req.RequireInt("score")
		if err != nil {
			return mcpError("score is required"), nil
		}
		category, err := req.RequireString("category")
		if err != nil || strings.TrimSpace(category) == "" {
			return mcpError("category is required"), nil
		}

		entry := storage.MoodEntry{
			Date:     deps.now().Format(storage.DateLayout),
			Score:    score,
			Category: strings.TrimSpace(category),
		}
		if err := deps.Store.SaveMood(entry); err != nil {
			return mcpError(fmt.Sprintf("failed to save mood: %v", err)), nil
		}

		return mcpText(fmt.Sprintf("Mood saved! %s: %d (%s)", entry.Date, entry.Score, entry.Category)), nil
	}
}

func mcpListMoods(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		moods, err := deps.Store.ListMoods()
		if err != nil {
			return mcpError(fmt.Sprintf("failed to list moods: %v", err)), nil
		}
		if limit := req.GetInt("limit", 0); limit > 0 && limit < len(moods) {
			moods = moods[len(moods)-limit:]
		}

		b, err := json.Marshal(moods)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal moods: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpDailyQuote(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcpText(quotes.ForDay(deps.now())), nil
	}
}

func mcpResourceMoods(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		moods, err := deps.Store.ListMoods()
		if err != nil {
			return nil, fmt.Errorf("failed to list moods: %w", err)
		}

		b, err := json.Marshal(moods)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal moods: %w", err)
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
