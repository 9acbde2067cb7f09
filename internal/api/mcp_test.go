package api

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kalambet/wellbuddy/internal/quotes"
	"github.com/kalambet/wellbuddy/internal/storage"
)

// --- helpers ---

var fixedNow = time.Date(2025, 4, 10, 15, 30, 0, 0, time.Local)

func newTestMCPDeps(t *testing.T) (MCPDeps, *storage.Store) {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return MCPDeps{
		Store:   store,
		Version: "test",
		Now:     func() time.Time { return fixedNow },
	}, store
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func makeReadResourceRequest(uri string) mcp.ReadResourceRequest {
	return mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

// --- tests ---

func TestNewMCPServer(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	if s := NewMCPServer(deps); s == nil {
		t.Fatal("NewMCPServer returned nil")
	}
}

func TestMCPTool_LogMood(t *testing.T) {
	deps, store := newTestMCPDeps(t)
	handler := mcpLogMood(deps)

	result, err := handler(context.Background(), makeCallToolRequest("log_mood", map[string]interface{}{
		"score":    7,
		"category": " calm ",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error: %s", toolText(t, result))
	}

	moods, err := store.ListMoods()
	if err != nil {
		t.Fatalf("listing moods: %v", err)
	}
	want := storage.MoodEntry{Date: "2025-04-10", Score: 7, Category: "calm"}
	if len(moods) != 1 || moods[0] != want {
		t.Fatalf("moods = %+v, want [%+v]", moods, want)
	}
}

func TestMCPTool_LogMood_MissingArgs(t *testing.T) {
	deps, store := newTestMCPDeps(t)
	handler := mcpLogMood(deps)

	for _, args := range []map[string]interface{}{
		{"category": "happy"},
		{"score": 5},
		{"score": 5, "category": "   "},
	} {
		result, err := handler(context.Background(), makeCallToolRequest("log_mood", args))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Errorf("args %v: expected tool error", args)
		}
	}

	if moods, _ := store.ListMoods(); len(moods) != 0 {
		t.Errorf("stored %d moods from invalid calls", len(moods))
	}
}

func TestMCPTool_ListMoods(t *testing.T) {
	deps, store := newTestMCPDeps(t)
	for i, c := range []string{"sad", "calm", "happy"} {
		if err := store.SaveMood(storage.MoodEntry{Date: "2025-04-0" + string(rune('1'+i)), Score: i + 3, Category: c}); err != nil {
			t.Fatalf("SaveMood: %v", err)
		}
	}

	result, err := mcpListMoods(deps)(context.Background(), makeCallToolRequest("list_moods", map[string]interface{}{"limit": 2}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var moods []storage.MoodEntry
	if err := json.Unmarshal([]byte(toolText(t, result)), &moods); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(moods) != 2 || moods[0].Category != "calm" || moods[1].Category != "happy" {
		t.Errorf("moods = %+v, want last two [calm happy]", moods)
	}
}

func TestMCPTool_ListMoods_Empty(t *testing.T) {
	deps, _ := newTestMCPDeps(t)

	result, err := mcpListMoods(deps)(context.Background(), makeCallToolRequest("list_moods", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := toolText(t, result); got != "[]" {
		t.Errorf("text = %q, want []", got)
	}
}

func TestMCPTool_DailyQuote(t *testing.T) {
	deps, _ := newTestMCPDeps(t)

	result, err := mcpDailyQuote(deps)(context.Background(), makeCallToolRequest("daily_quote", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := toolText(t, result), quotes.ForDay(fixedNow); got != want {
		t.Errorf("quote = %q, want %q", got, want)
	}
}

func TestMCPResource_Moods(t *testing.T) {
	deps, store := newTestMCPDeps(t)
	if err := store.SaveMood(storage.MoodEntry{Date: "2025-04-01", Score: 4, Category: "tired"}); err != nil {
		t.Fatalf("SaveMood: %v", err)
	}

	contents, err := mcpResourceMoods(deps)(context.Background(), makeReadResourceRequest("wellness://moods"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("expected 1 content, got %d", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("expected TextResourceContents, got %T", contents[0])
	}
	if tc.URI != "wellness://moods" || tc.MIMEType != "application/json" {
		t.Errorf("resource = %+v", tc)
	}

	var moods []storage.MoodEntry
	if err := json.Unmarshal([]byte(tc.Text), &moods); err != nil {
		t.Fatalf("failed to parse resource: %v", err)
	}
	if len(moods) != 1 || moods[0].Category != "tired" {
		t.Errorf("moods = %+v", moods)
	}
}

func TestMCPServer_ConcurrentCalls(t *testing.T) {
	deps, store := newTestMCPDeps(t)
	logHandler := mcpLogMood(deps)
	listHandler := mcpListMoods(deps)

	var wg sync.WaitGroup
	errs := make(chan error, 20)

	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			req := makeCallToolRequest("log_mood", map[string]interface{}{"score": i, "category": "ok"})
			if _, err := logHandler(context.Background(), req); err != nil {
				errs <- err
			}
		}(i)
		go func() {
			defer wg.Done()
			if _, err := listHandler(context.Background(), makeCallToolRequest("list_moods", nil)); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent call failed: %v", err)
	}
	if moods, _ := store.ListMoods(); len(moods) != 10 {
		t.Errorf("stored %d moods, want 10", len(moods))
	}
}
