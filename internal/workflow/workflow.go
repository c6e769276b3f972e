// Package workflow drives the multi-step script generation state machine:
// outline first, then sequential part generation, then revision cycles on
// the finished script. One controller holds the state of one logical user.
package workflow

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/thuanndbxvp/Thai-news/internal/aierr"
	"github.com/thuanndbxvp/Thai-news/internal/progress"
	"github.com/thuanndbxvp/Thai-news/internal/script"
)

// State is the controller's position in the generation lifecycle.
type State string

const (
	StateIdle         State = "idle"
	StateOutlineReady State = "outline-ready"
	StateGenerating   State = "generating"
	StateComplete     State = "complete"
)

// ErrBusy is returned when a generation-class call arrives while another
// one is still running. The caller retries; nothing is queued.
var ErrBusy = errors.New("a generation is already in progress")

// Caller abstracts the provider gateway.
type Caller interface {
	Call(ctx context.Context, prompt string, provider script.Provider, model string, wantJSON bool) (string, error)
}

// Controller owns one user's generation session. Generation-class methods
// (outline, full script, parts, revision) are serialized; the side-channel
// methods (visual prompts, extraction, suggestions) run concurrently.
type Controller struct {
	gw       Caller
	progress progress.Callback

	genMu sync.Mutex // held for the whole of each generation-class call

	mu            sync.Mutex // guards the fields below
	provider      script.Provider
	model         string
	params        script.GenerationParams
	state         State
	scriptText    string
	outlineParts  []string
	generated     []string
	revisionCount int

	cacheMu     sync.Mutex
	visualCache map[[sha256.Size]byte]script.VisualPrompt
}

// New returns an idle controller talking to the given gateway.
func New(gw Caller) *Controller {
	return &Controller{
		gw:          gw,
		progress:    progress.NopCallback,
		provider:    script.ProviderGemini,
		model:       script.DefaultModel(script.ProviderGemini),
		params:      script.DefaultParams(),
		state:       StateIdle,
		visualCache: map[[sha256.Size]byte]script.VisualPrompt{},
	}
}

// OnProgress installs a progress callback. Pass nil to silence events.
func (c *Controller) OnProgress(cb progress.Callback) {
	if cb == nil {
		cb = progress.NopCallback
	}
	c.mu.Lock()
	c.progress = cb
	c.mu.Unlock()
}

func (c *Controller) emit(e progress.Event) {
	c.mu.Lock()
	cb := c.progress
	c.mu.Unlock()
	cb(e)
}

// UseProvider selects the vendor and model for subsequent calls.
func (c *Controller) UseProvider(p script.Provider, model string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.provider = p
	if model == "" {
		model = script.DefaultModel(p)
	}
	c.model = model
}

// ProviderModel reports the vendor and model used for calls.
func (c *Controller) ProviderModel() (script.Provider, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.provider, c.model
}

// SetParams replaces the generation parameters.
func (c *Controller) SetParams(p script.GenerationParams) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.params = p
}

// Params returns a copy of the current generation parameters.
func (c *Controller) Params() script.GenerationParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params
}

// State reports the current lifecycle position.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Script returns the current script text (outline or finished script).
func (c *Controller) Script() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scriptText
}

// RevisionCount reports how many successful revisions have been applied.
// Display only; it carries no behavioral weight.
func (c *Controller) RevisionCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.revisionCount
}

// PartProgress reports completed and total parts of a sequential run.
// Total is zero outside a sequential run.
func (c *Controller) PartProgress() (done, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.generated), len(c.outlineParts)
}

func (c *Controller) snapshot() (script.Provider, string, script.GenerationParams) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.provider, c.model, c.params
}

// tryGen acquires the generation slot without blocking.
func (c *Controller) tryGen() error {
	if !c.genMu.TryLock() {
		return ErrBusy
	}
	return nil
}

// GenerateOutline produces a new rundown and resets the session around it.
// On failure the previous state is untouched.
func (c *Controller) GenerateOutline(ctx context.Context) (string, error) {
	if err := c.tryGen(); err != nil {
		return "", err
	}
	defer c.genMu.Unlock()

	provider, model, params := c.snapshot()
	if err := params.Validate(); err != nil {
		return "", fmt.Errorf("generate outline: %w", err)
	}

	start := time.Now()
	c.emit(progress.NewEvent(progress.StageOutline, "Generating news rundown", 0, start))

	out, err := c.gw.Call(ctx, script.BuildOutline(params), provider, model, false)
	if err != nil {
		return "", aierr.Normalize(err, "tạo dàn ý")
	}

	full := script.OutlineHeader + out
	c.mu.Lock()
	c.scriptText = full
	c.outlineParts = nil
	c.generated = nil
	c.revisionCount = 0
	c.state = StateOutlineReady
	c.mu.Unlock()
	c.clearVisualCache()

	c.emit(progress.NewEvent(progress.StageComplete, "Rundown ready", 1, start))
	return full, nil
}

// GenerateFull produces the whole script in one call.
func (c *Controller) GenerateFull(ctx context.Context) (string, error) {
	if err := c.tryGen(); err != nil {
		return "", err
	}
	defer c.genMu.Unlock()

	provider, model, params := c.snapshot()
	if err := params.Validate(); err != nil {
		return "", fmt.Errorf("generate script: %w", err)
	}

	start := time.Now()
	c.emit(progress.NewEvent(progress.StageOutline, "Generating full script", 0, start))

	out, err := c.gw.Call(ctx, script.BuildFullScript(params), provider, model, false)
	if err != nil {
		return "", aierr.Normalize(err, "tạo kịch bản")
	}

	c.mu.Lock()
	c.scriptText = out
	c.outlineParts = nil
	c.generated = nil
	c.state = StateComplete
	c.mu.Unlock()
	c.clearVisualCache()

	c.emit(progress.NewEvent(progress.StageComplete, "Script ready", 1, start))
	return out, nil
}

// BeginExpand starts sequential generation from the current rundown: the
// outline is split on markdown headers and the first part is written. Use
// ContinuePart to advance. The rundown must exist first.
func (c *Controller) BeginExpand(ctx context.Context) (string, error) {
	if err := c.tryGen(); err != nil {
		return "", err
	}
	defer c.genMu.Unlock()

	c.mu.Lock()
	if c.state != StateOutlineReady {
		state := c.state
		c.mu.Unlock()
		return "", fmt.Errorf("expand script: need a rundown first (state %s)", state)
	}
	parts := script.SplitOutline(c.scriptText)
	c.mu.Unlock()

	if len(parts) == 0 {
		return "", fmt.Errorf("expand script: rundown has no sections")
	}

	c.mu.Lock()
	c.outlineParts = parts
	c.generated = nil
	c.state = StateGenerating
	c.mu.Unlock()

	return c.generateNextPart(ctx)
}

// ContinuePart writes the next pending part. When the last part lands the
// session completes and the script becomes the ordered concatenation of
// every part. A failed part leaves the position unchanged for retry.
func (c *Controller) ContinuePart(ctx context.Context) (string, error) {
	if err := c.tryGen(); err != nil {
		return "", err
	}
	defer c.genMu.Unlock()

	c.mu.Lock()
	state := c.state
	c.mu.Unlock()
	if state != StateGenerating {
		return "", fmt.Errorf("continue script: no sequential generation in progress (state %s)", state)
	}
	return c.generateNextPart(ctx)
}

// generateNextPart runs under genMu.
func (c *Controller) generateNextPart(ctx context.Context) (string, error) {
	provider, model, params := c.snapshot()

	c.mu.Lock()
	k := len(c.generated)
	n := len(c.outlineParts)
	if k >= n {
		c.mu.Unlock()
		return "", fmt.Errorf("continue script: all %d parts already generated", n)
	}
	fullOutline := strings.Join(c.outlineParts, "\n\n")
	previous := strings.Join(c.generated, "\n\n")
	current := c.outlineParts[k]
	c.mu.Unlock()

	start := time.Now()
	e := progress.NewEvent(progress.StagePart, fmt.Sprintf("Writing part %d/%d", k+1, n), float64(k)/float64(n), start)
	e.PartNum, e.PartTotal = k+1, n
	c.emit(e)

	out, err := c.gw.Call(ctx, script.BuildNextPart(fullOutline, previous, current, params), provider, model, false)
	if err != nil {
		return "", aierr.Normalize(err, "tạo phần kịch bản tiếp theo")
	}

	c.mu.Lock()
	c.generated = append(c.generated, out)
	done := len(c.generated) == n
	if done {
		c.scriptText = strings.Join(c.generated, "\n\n")
		c.state = StateComplete
	}
	text := c.scriptText
	c.mu.Unlock()

	if done {
		c.clearVisualCache()
		c.emit(progress.NewEvent(progress.StageComplete, "Script ready", 1, start))
		return text, nil
	}
	return out, nil
}

// Revise rewrites the current script per one instruction. Allowed once a
// rundown or script exists; a successful revision always lands in the
// complete state with the revision counter bumped.
func (c *Controller) Revise(ctx context.Context, instruction string) (string, error) {
	if err := c.tryGen(); err != nil {
		return "", err
	}
	defer c.genMu.Unlock()

	if strings.TrimSpace(instruction) == "" {
		return "", fmt.Errorf("revise script: instruction is empty")
	}

	c.mu.Lock()
	state := c.state
	original := c.scriptText
	c.mu.Unlock()
	if state != StateComplete && state != StateOutlineReady {
		return "", fmt.Errorf("revise script: nothing to revise (state %s)", state)
	}

	provider, model, params := c.snapshot()
	start := time.Now()
	c.emit(progress.NewEvent(progress.StageRevision, "Revising script", 0, start))

	out, err := c.gw.Call(ctx, script.BuildRevision(original, instruction, params), provider, model, false)
	if err != nil {
		return "", aierr.Normalize(err, "sửa kịch bản")
	}

	c.mu.Lock()
	c.scriptText = out
	c.revisionCount++
	c.state = StateComplete
	c.mu.Unlock()
	c.clearVisualCache()

	c.emit(progress.NewEvent(progress.StageComplete, "Revision applied", 1, start))
	return out, nil
}

// LoadScript hydrates the session from stored material, replacing whatever
// was in progress. An empty scriptText loads as a rundown-only session.
func (c *Controller) LoadScript(params script.GenerationParams, scriptText string) {
	c.mu.Lock()
	c.params = params
	c.scriptText = scriptText
	c.outlineParts = nil
	c.generated = nil
	c.revisionCount = 0
	if strings.TrimSpace(scriptText) == "" {
		c.state = StateIdle
	} else if strings.HasPrefix(scriptText, "### Dàn Ý Chi Tiết") {
		c.state = StateOutlineReady
	} else {
		c.state = StateComplete
	}
	c.mu.Unlock()
	c.clearVisualCache()
}

func (c *Controller) clearVisualCache() {
	c.cacheMu.Lock()
	c.visualCache = map[[sha256.Size]byte]script.VisualPrompt{}
	c.cacheMu.Unlock()
}

// VisualPrompt returns the prompt pair for one script section. Results are
// cached by the section's exact content, so repeated requests for unchanged
// text never hit the provider. Different sections may run concurrently.
func (c *Controller) VisualPrompt(ctx context.Context, section string) (script.VisualPrompt, error) {
	key := sha256.Sum256([]byte(section))

	c.cacheMu.Lock()
	if cached, ok := c.visualCache[key]; ok {
		c.cacheMu.Unlock()
		return cached, nil
	}
	c.cacheMu.Unlock()

	provider, model, _ := c.snapshot()
	out, err := c.gw.Call(ctx, script.BuildVisualPrompt(section), provider, model, true)
	if err != nil {
		return script.VisualPrompt{}, aierr.Normalize(err, "tạo prompt hình ảnh")
	}
	vp, err := script.ParseVisualPrompt(out)
	if err != nil {
		return script.VisualPrompt{}, aierr.Normalize(err, "tạo prompt hình ảnh")
	}

	c.cacheMu.Lock()
	c.visualCache[key] = vp
	c.cacheMu.Unlock()
	return vp, nil
}

// AllVisualPrompts covers every section of the current script in one call.
func (c *Controller) AllVisualPrompts(ctx context.Context) ([]script.SectionVisual, error) {
	text, err := c.currentScript("tạo tất cả prompt hình ảnh")
	if err != nil {
		return nil, err
	}
	provider, model, _ := c.snapshot()
	out, err := c.gw.Call(ctx, script.BuildAllVisualPrompts(text), provider, model, true)
	if err != nil {
		return nil, aierr.Normalize(err, "tạo tất cả prompt hình ảnh")
	}
	visuals, err := script.ParseAllVisualPrompts(out)
	if err != nil {
		return nil, aierr.Normalize(err, "tạo tất cả prompt hình ảnh")
	}
	return visuals, nil
}

// ExtractDialogue pulls the spoken lines out of the current script.
func (c *Controller) ExtractDialogue(ctx context.Context) (map[string]string, error) {
	text, err := c.currentScript("tách lời thoại")
	if err != nil {
		return nil, err
	}
	provider, model, _ := c.snapshot()
	out, err := c.gw.Call(ctx, script.BuildDialogueExtraction(text), provider, model, true)
	if err != nil {
		return nil, aierr.Normalize(err, "tách lời thoại")
	}
	dialogue, err := script.ParseDialogue(out)
	if err != nil {
		return nil, aierr.Normalize(err, "tách lời thoại")
	}
	return dialogue, nil
}

// SummarizeScenes breaks the current script into 8-second scenes.
func (c *Controller) SummarizeScenes(ctx context.Context) ([]script.PartSummary, error) {
	text, err := c.currentScript("tóm tắt kịch bản ra các cảnh")
	if err != nil {
		return nil, err
	}
	provider, model, _ := c.snapshot()
	out, err := c.gw.Call(ctx, script.BuildSceneSummary(text), provider, model, true)
	if err != nil {
		return nil, aierr.Normalize(err, "tóm tắt kịch bản ra các cảnh")
	}
	parts, err := script.ParseSceneSummary(out)
	if err != nil {
		return nil, aierr.Normalize(err, "tóm tắt kịch bản ra các cảnh")
	}
	return parts, nil
}

func (c *Controller) currentScript(action string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if strings.TrimSpace(c.scriptText) == "" {
		return "", &aierr.AIError{
			Category: aierr.CategoryUnknown,
			Message:  fmt.Sprintf("Không thể %s. Chưa có kịch bản.", action),
			Action:   action,
		}
	}
	return c.scriptText, nil
}

// TopicSuggestions brainstorms five headline ideas. Stateless.
func (c *Controller) TopicSuggestions(ctx context.Context, theme string) ([]script.TopicSuggestion, error) {
	provider, model, _ := c.snapshot()
	out, err := c.gw.Call(ctx, script.BuildTopicSuggestions(theme), provider, model, true)
	if err != nil {
		return nil, aierr.Normalize(err, "tạo gợi ý chủ đề")
	}
	suggestions, err := script.ParseTopicSuggestions(out)
	if err != nil {
		return nil, aierr.Normalize(err, "tạo gợi ý chủ đề")
	}
	return suggestions, nil
}

// KeywordSuggestions proposes five SEO keywords for a title. Stateless.
func (c *Controller) KeywordSuggestions(ctx context.Context, title string) ([]string, error) {
	if strings.TrimSpace(title) == "" {
		return nil, nil
	}
	provider, model, _ := c.snapshot()
	out, err := c.gw.Call(ctx, script.BuildKeywordSuggestions(title), provider, model, true)
	if err != nil {
		return nil, aierr.Normalize(err, "tạo gợi ý từ khóa")
	}
	keywords, err := script.ParseKeywordSuggestions(out)
	if err != nil {
		return nil, aierr.Normalize(err, "tạo gợi ý từ khóa")
	}
	return keywords, nil
}

// ExtractIdeas parses imported file content into topic ideas. Stateless.
func (c *Controller) ExtractIdeas(ctx context.Context, fileContent string) ([]script.TopicSuggestion, error) {
	if strings.TrimSpace(fileContent) == "" {
		return nil, nil
	}
	provider, model, _ := c.snapshot()
	out, err := c.gw.Call(ctx, script.BuildIdeaExtraction(fileContent), provider, model, true)
	if err != nil {
		return nil, aierr.Normalize(err, "phân tích tệp ý tưởng")
	}
	ideas, err := script.ParseIdeas(out)
	if err != nil {
		return nil, aierr.Normalize(err, "phân tích tệp ý tưởng")
	}
	return ideas, nil
}
