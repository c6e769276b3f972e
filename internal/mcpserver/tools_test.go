package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/thuanndbxvp/Thai-news/internal/keys"
	"github.com/thuanndbxvp/Thai-news/internal/library"
	"github.com/thuanndbxvp/Thai-news/internal/script"
	"github.com/thuanndbxvp/Thai-news/internal/workflow"
)

type fakeGateway struct {
	answer string
}

func (f *fakeGateway) Call(ctx context.Context, prompt string, provider script.Provider, model string, wantJSON bool) (string, error) {
	return f.answer, nil
}

func newTestHandlers(t *testing.T, gw workflow.Caller) *Handlers {
	t.Helper()
	dir := t.TempDir()
	keyStore, err := keys.NewStore(dir)
	if err != nil {
		t.Fatalf("key store: %v", err)
	}
	lib, err := library.NewFileStore(dir)
	if err != nil {
		t.Fatalf("library: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandlers(workflow.New(gw), keyStore, keys.NewValidator(), lib, nil, logger)
}

func callReq(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("result has no content")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", res.Content[0])
	}
	return tc.Text
}

func decodeResult(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(resultText(t, res)), &m); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	return m
}

func TestGenerateOutlineTool(t *testing.T) {
	h := newTestHandlers(t, &fakeGateway{answer: "## Phần 1\nnội dung"})

	res, err := h.HandleGenerateOutline(context.Background(), callReq(map[string]any{
		"title": "น้ำท่วมภาคเหนือ",
	}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}

	out := decodeResult(t, res)
	if out["state"] != string(workflow.StateOutlineReady) {
		t.Errorf("state = %v", out["state"])
	}
	rundown, _ := out["rundown"].(string)
	if !strings.HasPrefix(rundown, "### Dàn Ý Chi Tiết") {
		t.Errorf("rundown missing header: %.60q", rundown)
	}
}

func TestGenerateOutlineToolRequiresTitle(t *testing.T) {
	h := newTestHandlers(t, &fakeGateway{answer: "x"})

	res, err := h.HandleGenerateOutline(context.Background(), callReq(nil))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !res.IsError {
		t.Fatal("missing title should be a tool error")
	}
	if h.ctrl.State() != workflow.StateIdle {
		t.Errorf("failed call changed state to %s", h.ctrl.State())
	}
}

func TestGenerateOutlineToolAppliesParams(t *testing.T) {
	h := newTestHandlers(t, &fakeGateway{answer: "outline"})

	_, err := h.HandleGenerateOutline(context.Background(), callReq(map[string]any{
		"title":       "ข่าวชายแดน",
		"tone":        "Analytical",
		"script_type": "Podcast",
		"bullets":     true,
		"provider":    "openai",
	}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}

	p := h.ctrl.Params()
	if p.StyleOptions.Tone != script.ToneAnalytical {
		t.Errorf("tone = %s", p.StyleOptions.Tone)
	}
	if p.ScriptType != script.TypePodcast {
		t.Errorf("script type = %s", p.ScriptType)
	}
	if !p.FormattingOptions.Bullets {
		t.Error("bullets flag not applied")
	}
	provider, model := h.ctrl.ProviderModel()
	if provider != script.ProviderOpenAI {
		t.Errorf("provider = %s", provider)
	}
	if model != script.DefaultModel(script.ProviderOpenAI) {
		t.Errorf("model = %s, want vendor default", model)
	}
}

func TestReviseScriptToolRequiresInstruction(t *testing.T) {
	h := newTestHandlers(t, &fakeGateway{answer: "x"})

	res, err := h.HandleReviseScript(context.Background(), callReq(map[string]any{"instruction": "  "}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !res.IsError {
		t.Fatal("blank instruction should be a tool error")
	}
}

func TestVisualPromptToolRequiresSection(t *testing.T) {
	h := newTestHandlers(t, &fakeGateway{answer: "x"})

	res, err := h.HandleVisualPrompt(context.Background(), callReq(nil))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !res.IsError {
		t.Fatal("missing section should be a tool error")
	}
}

func TestLibraryToolsRoundTrip(t *testing.T) {
	h := newTestHandlers(t, &fakeGateway{answer: "สวัสดีครับ เนื้อหาข่าววันนี้"})
	ctx := context.Background()

	if _, err := h.HandleGenerateScript(ctx, callReq(map[string]any{"title": "ข่าวเศรษฐกิจ"})); err != nil {
		t.Fatalf("generate: %v", err)
	}

	res, err := h.HandleLibrarySave(ctx, callReq(nil))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if res.IsError {
		t.Fatalf("save failed: %s", resultText(t, res))
	}
	id, _ := decodeResult(t, res)["item_id"].(string)
	if id == "" {
		t.Fatal("save returned no item_id")
	}

	res, err = h.HandleLibraryList(ctx, callReq(nil))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got := decodeResult(t, res)["count"].(float64); got != 1 {
		t.Errorf("count = %v", got)
	}

	// Load into a fresh session and check the state is restored.
	h.ctrl.LoadScript(script.DefaultParams(), "")
	res, err = h.HandleLibraryGet(ctx, callReq(map[string]any{"item_id": id, "load": true}))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if res.IsError {
		t.Fatalf("get failed: %s", resultText(t, res))
	}
	if h.ctrl.State() != workflow.StateComplete {
		t.Errorf("state after load = %s", h.ctrl.State())
	}
	if h.ctrl.Script() != "สวัสดีครับ เนื้อหาข่าววันนี้" {
		t.Error("script not restored")
	}

	res, err = h.HandleLibraryDelete(ctx, callReq(map[string]any{"item_id": id}))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if res.IsError {
		t.Fatalf("delete failed: %s", resultText(t, res))
	}

	res, _ = h.HandleLibraryGet(ctx, callReq(map[string]any{"item_id": id}))
	if !res.IsError {
		t.Error("deleted item still readable")
	}
}

func TestLibrarySaveToolNeedsScript(t *testing.T) {
	h := newTestHandlers(t, &fakeGateway{answer: "x"})

	res, err := h.HandleLibrarySave(context.Background(), callReq(nil))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !res.IsError {
		t.Fatal("save with empty session should be a tool error")
	}
}

func TestCheckKeysToolEmptyStore(t *testing.T) {
	h := newTestHandlers(t, &fakeGateway{answer: "x"})

	res, err := h.HandleCheckKeys(context.Background(), callReq(nil))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if res.IsError {
		t.Fatalf("empty store should not be a tool error: %s", resultText(t, res))
	}
	out := decodeResult(t, res)
	if out["message"] != "no API keys stored" {
		t.Errorf("message = %v", out["message"])
	}
}

func TestToolDefsMatchHandlers(t *testing.T) {
	defs := ToolDefs()
	if len(defs) != 16 {
		t.Errorf("tool count = %d", len(defs))
	}
	seen := map[string]bool{}
	for _, d := range defs {
		if seen[d.Name] {
			t.Errorf("duplicate tool %s", d.Name)
		}
		seen[d.Name] = true
		if d.Description == "" {
			t.Errorf("tool %s has no description", d.Name)
		}
	}
}
