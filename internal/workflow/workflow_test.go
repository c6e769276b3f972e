package workflow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/thuanndbxvp/Thai-news/internal/script"
)

// fakeGateway answers by matching a substring of the prompt, counting calls.
type fakeGateway struct {
	mu      sync.Mutex
	answers map[string]string // prompt substring -> response
	errOn   string            // prompt substring that fails
	err     error
	calls   int
	block   chan struct{} // when set, Call waits until closed
	entered chan struct{} // signaled once when the first Call begins
}

func (f *fakeGateway) Call(ctx context.Context, prompt string, provider script.Provider, model string, wantJSON bool) (string, error) {
	if f.entered != nil {
		select {
		case f.entered <- struct{}{}:
		default:
		}
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.errOn != "" && strings.Contains(prompt, f.errOn) {
		return "", f.err
	}
	for sub, resp := range f.answers {
		if strings.Contains(prompt, sub) {
			return resp, nil
		}
	}
	return "default response", nil
}

func (f *fakeGateway) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func readyController(gw Caller) *Controller {
	c := New(gw)
	p := script.DefaultParams()
	p.Title = "ข่าวเด่น"
	c.SetParams(p)
	return c
}

func TestGenerateOutlineSetsState(t *testing.T) {
	gw := &fakeGateway{answers: map[string]string{"rundown": "## Intro\nจุดเปิด\n\n## Segment A\nข่าวหลัก"}}
	c := readyController(gw)

	out, err := c.GenerateOutline(context.Background())
	if err != nil {
		t.Fatalf("outline: %v", err)
	}
	if !strings.HasPrefix(out, "### Dàn Ý Chi Tiết Tin Tức") {
		t.Error("outline should be prefixed with the rundown header")
	}
	if c.State() != StateOutlineReady {
		t.Errorf("state = %s, want outline-ready", c.State())
	}
}

func TestGenerateOutlineRequiresTitle(t *testing.T) {
	c := New(&fakeGateway{})
	if _, err := c.GenerateOutline(context.Background()); err == nil {
		t.Error("outline without title should fail")
	}
	if c.State() != StateIdle {
		t.Errorf("failed call must not change state, got %s", c.State())
	}
}

func TestSequentialWalkToComplete(t *testing.T) {
	gw := &fakeGateway{answers: map[string]string{
		"rundown":                   "## Intro\nเปิด\n\n## Segment A\nหลัก\n\n## Outro\nปิด",
		"Write script for: \"\"\"## Intro":     "INTRO-TEXT",
		"Write script for: \"\"\"## Segment A": "SEGMENT-TEXT",
		"Write script for: \"\"\"## Outro":     "OUTRO-TEXT",
	}}
	c := readyController(gw)

	if _, err := c.GenerateOutline(context.Background()); err != nil {
		t.Fatalf("outline: %v", err)
	}
	if _, err := c.BeginExpand(context.Background()); err != nil {
		t.Fatalf("begin expand: %v", err)
	}
	if done, total := c.PartProgress(); done != 1 || total != 3 {
		t.Fatalf("progress = %d/%d, want 1/3", done, total)
	}
	if c.State() != StateGenerating {
		t.Errorf("state = %s, want generating", c.State())
	}

	if _, err := c.ContinuePart(context.Background()); err != nil {
		t.Fatalf("part 2: %v", err)
	}
	final, err := c.ContinuePart(context.Background())
	if err != nil {
		t.Fatalf("part 3: %v", err)
	}

	if c.State() != StateComplete {
		t.Errorf("state = %s, want complete", c.State())
	}
	want := "INTRO-TEXT\n\nSEGMENT-TEXT\n\nOUTRO-TEXT"
	if final != want {
		t.Errorf("final script = %q, want ordered concatenation", final)
	}
	if c.Script() != want {
		t.Errorf("stored script = %q", c.Script())
	}
}

func TestFailedPartKeepsPosition(t *testing.T) {
	gw := &fakeGateway{
		answers: map[string]string{"rundown": "## Intro\nเปิด\n\n## Segment A\nหลัก"},
		errOn:   "Write script for: \"\"\"## Segment A",
		err:     errors.New("boom"),
	}
	c := readyController(gw)

	c.GenerateOutline(context.Background())
	if _, err := c.BeginExpand(context.Background()); err != nil {
		t.Fatalf("begin expand: %v", err)
	}

	if _, err := c.ContinuePart(context.Background()); err == nil {
		t.Fatal("part 2 should fail")
	}
	if done, total := c.PartProgress(); done != 1 || total != 2 {
		t.Errorf("progress after failure = %d/%d, want 1/2", done, total)
	}
	if c.State() != StateGenerating {
		t.Errorf("state = %s, want generating (retryable)", c.State())
	}

	// Retry succeeds once the fault clears.
	gw.mu.Lock()
	gw.errOn = ""
	gw.mu.Unlock()
	if _, err := c.ContinuePart(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if c.State() != StateComplete {
		t.Errorf("state = %s, want complete", c.State())
	}
}

func TestBeginExpandNeedsOutline(t *testing.T) {
	c := readyController(&fakeGateway{})
	if _, err := c.BeginExpand(context.Background()); err == nil {
		t.Error("expand without rundown should fail")
	}
}

func TestConcurrentGenerationReturnsBusy(t *testing.T) {
	block := make(chan struct{})
	gw := &fakeGateway{block: block, entered: make(chan struct{}, 1)}
	c := readyController(gw)

	done := make(chan error, 1)
	go func() {
		_, err := c.GenerateFull(context.Background())
		done <- err
	}()
	<-gw.entered // the first generation now holds the slot

	if _, err := c.GenerateOutline(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("overlapping generation err = %v, want ErrBusy", err)
	}

	close(block)
	if err := <-done; err != nil {
		t.Fatalf("first generation: %v", err)
	}
}

func TestReviseIncrementsCounter(t *testing.T) {
	gw := &fakeGateway{answers: map[string]string{"Revise this script": "revised text"}}
	c := readyController(gw)
	c.LoadScript(c.Params(), "existing script")

	if c.RevisionCount() != 0 {
		t.Fatal("fresh load should reset revision count")
	}
	out, err := c.Revise(context.Background(), "make it shorter")
	if err != nil {
		t.Fatalf("revise: %v", err)
	}
	if out != "revised text" || c.Script() != "revised text" {
		t.Errorf("script = %q", c.Script())
	}
	if c.RevisionCount() != 1 {
		t.Errorf("revision count = %d, want 1", c.RevisionCount())
	}
	if c.State() != StateComplete {
		t.Errorf("state = %s, want complete", c.State())
	}
}

func TestReviseRequiresInstructionAndScript(t *testing.T) {
	c := readyController(&fakeGateway{})
	if _, err := c.Revise(context.Background(), "x"); err == nil {
		t.Error("revising with no script should fail")
	}
	c.LoadScript(c.Params(), "script")
	if _, err := c.Revise(context.Background(), "  "); err == nil {
		t.Error("blank instruction should fail")
	}
}

func TestVisualPromptCache(t *testing.T) {
	gw := &fakeGateway{answers: map[string]string{
		"news scene": `{"english": "aerial shot", "vietnamese": "ภาพมุมสูง"}`,
	}}
	c := readyController(gw)

	first, err := c.VisualPrompt(context.Background(), "## Intro scene text")
	if err != nil {
		t.Fatalf("visual prompt: %v", err)
	}
	calls := gw.callCount()

	second, err := c.VisualPrompt(context.Background(), "## Intro scene text")
	if err != nil {
		t.Fatalf("cached visual prompt: %v", err)
	}
	if gw.callCount() != calls {
		t.Error("identical section should be served from cache without a call")
	}
	if first != second {
		t.Error("cache returned a different prompt")
	}

	// A different section is a miss.
	if _, err := c.VisualPrompt(context.Background(), "## Other section"); err != nil {
		t.Fatalf("second section: %v", err)
	}
	if gw.callCount() != calls+1 {
		t.Error("different section should call the provider")
	}
}

func TestVisualCacheClearedOnLoad(t *testing.T) {
	gw := &fakeGateway{answers: map[string]string{
		"news scene": `{"english": "shot", "vietnamese": "ภาพ"}`,
	}}
	c := readyController(gw)

	c.VisualPrompt(context.Background(), "section")
	calls := gw.callCount()

	c.LoadScript(c.Params(), "a different script")
	c.VisualPrompt(context.Background(), "section")
	if gw.callCount() != calls+1 {
		t.Error("loading a different script should clear the visual cache")
	}
}

func TestLoadScriptStates(t *testing.T) {
	c := readyController(&fakeGateway{})

	c.LoadScript(c.Params(), "")
	if c.State() != StateIdle {
		t.Errorf("empty load state = %s", c.State())
	}
	c.LoadScript(c.Params(), script.OutlineHeader+"## Intro")
	if c.State() != StateOutlineReady {
		t.Errorf("rundown load state = %s", c.State())
	}
	c.LoadScript(c.Params(), "finished script text")
	if c.State() != StateComplete {
		t.Errorf("script load state = %s", c.State())
	}
}

func TestSideChannelOpsNeedScript(t *testing.T) {
	c := readyController(&fakeGateway{})
	if _, err := c.ExtractDialogue(context.Background()); err == nil {
		t.Error("dialogue extraction without script should fail")
	}
	if _, err := c.AllVisualPrompts(context.Background()); err == nil {
		t.Error("visual prompts without script should fail")
	}
}

func TestTopicAndKeywordSuggestions(t *testing.T) {
	gw := &fakeGateway{answers: map[string]string{
		"news headlines": `{"suggestions": [{"title": "t1", "outline": "o1"}, {"title": "t2", "outline": "o2"}]}`,
		"SEO keywords":   `{"keywords": ["ข่าว", "ไทย"]}`,
	}}
	c := readyController(gw)

	topics, err := c.TopicSuggestions(context.Background(), "การเมือง")
	if err != nil {
		t.Fatalf("topics: %v", err)
	}
	if len(topics) != 2 {
		t.Errorf("topics = %d", len(topics))
	}

	keywords, err := c.KeywordSuggestions(context.Background(), "หัวข้อข่าว")
	if err != nil {
		t.Fatalf("keywords: %v", err)
	}
	if len(keywords) != 2 {
		t.Errorf("keywords = %v", keywords)
	}

	if kw, err := c.KeywordSuggestions(context.Background(), "  "); err != nil || kw != nil {
		t.Errorf("blank title should return nothing, got %v, %v", kw, err)
	}
}

func TestSequentialPromptCarriesPreviousParts(t *testing.T) {
	var prompts []string
	gw := &fakeGateway{answers: map[string]string{
		"rundown": "## A\nหนึ่ง\n\n## B\nสอง",
	}}
	c := readyController(gw)
	c.GenerateOutline(context.Background())
	c.BeginExpand(context.Background())

	// Capture the part-2 prompt through a recording wrapper.
	rec := &recordingGateway{inner: gw, prompts: &prompts}
	c.gw = rec
	if _, err := c.ContinuePart(context.Background()); err != nil {
		t.Fatalf("part 2: %v", err)
	}
	if len(prompts) != 1 {
		t.Fatalf("recorded %d prompts", len(prompts))
	}
	if !strings.Contains(prompts[0], "default response") {
		t.Error("part prompt should include previously generated text")
	}
	if !strings.Contains(prompts[0], "## B") {
		t.Error("part prompt should name the current section")
	}
}

type recordingGateway struct {
	inner   Caller
	prompts *[]string
}

func (r *recordingGateway) Call(ctx context.Context, prompt string, provider script.Provider, model string, wantJSON bool) (string, error) {
	*r.prompts = append(*r.prompts, prompt)
	return r.inner.Call(ctx, prompt, provider, model, wantJSON)
}
