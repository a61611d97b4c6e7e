// Package acquire turns images arriving from any input channel into
// extraction runs. All channels feed Coordinator.Submit; at most one run is
// in flight at a time.
package acquire

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/mcodersir/axkhan/internal/imaging"
	"github.com/mcodersir/axkhan/internal/models"
	"github.com/mcodersir/axkhan/internal/notify"
	"github.com/mcodersir/axkhan/internal/ocr"
	"github.com/mcodersir/axkhan/internal/settings"
	"github.com/mcodersir/axkhan/internal/viewer"
)

// Source names the input channel an image arrived on
type Source string

const (
	SourceFilePicker Source = "file_picker"
	SourceDragDrop   Source = "drag_drop"
	SourceClipboard  Source = "clipboard"
)

// ResultTarget is the view element scrolled to when a result is ready
const ResultTarget = "result"

var (
	ErrNotImage = errors.New("input is not an image")
	ErrBusy     = errors.New("an extraction is already in progress")
)

const (
	MsgNotImage = "Please choose an image file."
	MsgBusy     = "An image is already being processed. Please wait for it to finish."
	MsgDone     = "Text extracted successfully."
)

// Extractor performs a single extraction call
type Extractor interface {
	Extract(ctx context.Context, req models.ExtractionRequest, apiKey string) (string, error)
}

// SettingsSource supplies the current user settings
type SettingsSource interface {
	Get() settings.Settings
}

// Counter records successful extractions
type Counter interface {
	Increment() int
}

// Options configures a Coordinator
type Options struct {
	Model        string
	MaxDimension int
	BasePrompt   string

	// Presentational pauses; zero skips them
	UploadPause time.Duration
	FormatPause time.Duration
}

// Coordinator owns the pipeline state, the preview image, the result
// editor and the viewer transform
type Coordinator struct {
	extractor Extractor
	settings  SettingsSource
	quota     Counter
	notifier  notify.Notifier
	opts      Options

	// held for the whole life of a run
	busy *semaphore.Weighted

	mu           sync.RWMutex
	state        models.ProcessingState
	current      *Run
	preview      *models.ImagePayload
	instructions string

	editor    *viewer.Editor
	transform *viewer.Transform
}

func New(extractor Extractor, prefs SettingsSource, quota Counter, notifier notify.Notifier, opts Options) *Coordinator {
	return &Coordinator{
		extractor: extractor,
		settings:  prefs,
		quota:     quota,
		notifier:  notifier,
		opts:      opts,
		busy:      semaphore.NewWeighted(1),
		state:     models.StateIdle,
		editor:    viewer.NewEditor(),
		transform: viewer.NewTransform(),
	}
}

// Submit starts a run for payload. Non-images are rejected with ErrNotImage
// and leave all state untouched; a submission while a run is in flight is
// rejected with ErrBusy. On success the preview already shows payload when
// Submit returns and the rest of the run continues in the background.
// Cancelling ctx after Submit returns does not stop the run.
func (c *Coordinator) Submit(ctx context.Context, payload models.ImagePayload, source Source) (*Run, error) {
	if !imaging.IsImage(payload.MimeType) {
		slog.Warn("Rejected non-image input", "source", source, "mime_type", payload.MimeType)
		c.notifier.Toast(notify.LevelWarning, MsgNotImage)
		return nil, ErrNotImage
	}

	if !c.busy.TryAcquire(1) {
		slog.Warn("Rejected submission while busy", "source", source)
		c.notifier.Toast(notify.LevelWarning, MsgBusy)
		return nil, ErrBusy
	}

	run := newRun(uuid.NewString(), source)
	original := payload

	c.mu.Lock()
	c.current = run
	c.preview = &original
	c.mu.Unlock()

	c.editor.Clear()
	c.transform.Reset()
	c.setState(run, models.StateUploading)

	slog.Info("Extraction started", "run_id", run.ID, "source", source, "mime_type", payload.MimeType,
		"width", payload.Width, "height", payload.Height, "bytes", payload.Size())

	go c.process(context.WithoutCancel(ctx), run, original)
	return run, nil
}

func (c *Coordinator) process(ctx context.Context, run *Run, original models.ImagePayload) {
	var (
		text string
		err  error
	)
	defer func() {
		c.busy.Release(1)
		run.finish(text, err)
	}()

	pause(c.opts.UploadPause)
	c.setState(run, models.StateAnalyzing)

	s := c.settings.Get()
	transmitted := original
	if s.EcoMode {
		transmitted = imaging.Normalize(original, c.opts.MaxDimension)
		slog.Debug("Eco mode normalization", "run_id", run.ID,
			"from_bytes", original.Size(), "to_bytes", transmitted.Size(),
			"width", transmitted.Width, "height", transmitted.Height)
	}

	req := ocr.Build(transmitted, c.Instructions(), c.opts.BasePrompt, c.opts.Model)
	text, err = c.extractor.Extract(ctx, req, s.APIKey)
	if err != nil {
		c.fail(run, err)
		return
	}

	c.setState(run, models.StateFormatting)
	pause(c.opts.FormatPause)

	c.editor.Load(text)
	c.quota.Increment()
	c.setState(run, models.StateDone)
	c.notifier.Toast(notify.LevelSuccess, MsgDone)
	c.notifier.ScrollTo(ResultTarget)

	slog.Info("Extraction finished", "run_id", run.ID, "chars", len(text))
}

func (c *Coordinator) fail(run *Run, err error) {
	msg := ocr.Message(err)
	run.setError(msg)
	c.setState(run, models.StateFailed)
	c.notifier.Toast(notify.LevelError, msg)
	slog.Info("Extraction failed", "run_id", run.ID, "kind", ocr.KindOf(err))
}

func (c *Coordinator) setState(run *Run, state models.ProcessingState) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
	run.setState(state)
	slog.Debug("Pipeline state", "run_id", run.ID, "state", state)
}

func pause(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

// State returns the pipeline state
func (c *Coordinator) State() models.ProcessingState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Busy reports whether a run is in flight
func (c *Coordinator) Busy() bool {
	return !c.State().Terminal()
}

// Preview returns the original bytes of the most recent submission
func (c *Coordinator) Preview() (models.ImagePayload, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.preview == nil {
		return models.ImagePayload{}, false
	}
	return *c.preview, true
}

// SetInstructions replaces the custom instructions sent with later runs
func (c *Coordinator) SetInstructions(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.instructions = s
}

func (c *Coordinator) Instructions() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.instructions
}

// EditResult records a user edit of the result text
func (c *Coordinator) EditResult(text string) {
	c.editor.SetText(text)
}

// SetDirection overrides the result direction until the next result
func (c *Coordinator) SetDirection(d viewer.Direction) {
	c.editor.SetDirection(d)
}

func (c *Coordinator) Result() viewer.EditorState {
	return c.editor.State()
}

// Viewer returns the zoom/pan transform of the preview
func (c *Coordinator) Viewer() *viewer.Transform {
	return c.transform
}

// Snapshot is the workspace state as a whole
type Snapshot struct {
	State        models.ProcessingState `json:"state"`
	Busy         bool                   `json:"busy"`
	Run          *models.RunInfo        `json:"run,omitempty"`
	Preview      *models.ImagePayload   `json:"preview,omitempty"`
	Instructions string                 `json:"instructions"`
	Result       viewer.EditorState     `json:"result"`
	Viewer       viewer.TransformState  `json:"viewer"`
}

func (c *Coordinator) Snapshot() Snapshot {
	c.mu.RLock()
	snap := Snapshot{
		State:        c.state,
		Busy:         !c.state.Terminal(),
		Instructions: c.instructions,
	}
	if c.current != nil {
		info := c.current.Info()
		snap.Run = &info
	}
	if c.preview != nil {
		p := *c.preview
		snap.Preview = &p
	}
	c.mu.RUnlock()

	snap.Result = c.editor.State()
	snap.Viewer = c.transform.State()
	return snap
}
