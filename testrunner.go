package inkboard

import (
	"encoding/json"
	"fmt"
)

// testStep represents a single action in a test script.
type testStep struct {
	Action    string   `json:"action"`
	Label     string   `json:"label,omitempty"`
	X         float64  `json:"x,omitempty"`
	Y         float64  `json:"y,omitempty"`
	FromX     float64  `json:"fromX,omitempty"`
	FromY     float64  `json:"fromY,omitempty"`
	ToX       float64  `json:"toX,omitempty"`
	ToY       float64  `json:"toY,omitempty"`
	DeltaX    float64  `json:"deltaX,omitempty"`
	DeltaY    float64  `json:"deltaY,omitempty"`
	Frames    int      `json:"frames,omitempty"`
	Key       string   `json:"key,omitempty"`
	Modifiers []string `json:"mods,omitempty"`
	Tool      string   `json:"tool,omitempty"`
}

// testScript is the top-level JSON structure for a test script.
type testScript struct {
	Steps []testStep `json:"steps"`
}

// TestRunner replays a scripted sequence of input across frames. Attach to
// a Board via SetTestRunner.
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
}

var toolNames = map[string]Tool{
	"cursor": ToolCursor,
	"move":   ToolMove,
	"image":  ToolImage,
	"video":  ToolVideo,
	"music":  ToolMusic,
	"text":   ToolText,
}

// LoadTestScript parses a JSON test script.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	for i, st := range script.Steps {
		switch st.Action {
		case "click", "drag", "press", "move", "release", "wheel", "wait", "screenshot":
		case "key":
			if ParseKey(st.Key) == KeyUnknown {
				return nil, fmt.Errorf("parse test script: step %d: unknown key %q", i, st.Key)
			}
		case "tool":
			if _, ok := toolNames[st.Tool]; !ok {
				return nil, fmt.Errorf("parse test script: step %d: unknown tool %q", i, st.Tool)
			}
		default:
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// SetTestRunner attaches a TestRunner. Its step method runs at the start of
// every Update.
func (b *Board) SetTestRunner(runner *TestRunner) {
	b.testRunner = runner
}

// Done reports whether every step has run.
func (r *TestRunner) Done() bool {
	return r.done
}

// step advances the runner by one frame.
func (r *TestRunner) step(b *Board) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if len(b.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++
	mods := ParseModifiers(st.Modifiers)

	switch st.Action {
	case "screenshot":
		b.RequestScreenshot(st.Label)
	case "click":
		b.InjectPressWith(st.X, st.Y, MouseButtonLeft, mods)
		b.InjectRelease(st.X, st.Y)
	case "press":
		b.InjectPressWith(st.X, st.Y, MouseButtonLeft, mods)
	case "move":
		b.InjectMove(st.X, st.Y)
	case "release":
		b.InjectRelease(st.X, st.Y)
	case "drag":
		b.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames, mods)
	case "wheel":
		b.InjectWheel(st.X, st.Y, st.DeltaX, st.DeltaY, mods)
	case "key":
		b.InjectKey(ParseKey(st.Key), mods)
	case "tool":
		b.SelectTool(toolNames[st.Tool])
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(b.injectQueue) == 0 {
		r.done = true
	}
}

// RequestScreenshot asks the host to capture the next rendered frame under
// label.
func (b *Board) RequestScreenshot(label string) {
	b.screenshots = append(b.screenshots, label)
}

// TakeScreenshotRequests returns and clears the pending screenshot labels.
func (b *Board) TakeScreenshotRequests() []string {
	out := b.screenshots
	b.screenshots = nil
	return out
}
