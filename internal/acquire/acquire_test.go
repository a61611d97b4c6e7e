package acquire

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mcodersir/axkhan/internal/images"
	"github.com/mcodersir/axkhan/internal/models"
	"github.com/mcodersir/axkhan/internal/notify"
	"github.com/mcodersir/axkhan/internal/ocr"
	"github.com/mcodersir/axkhan/internal/providers"
	"github.com/mcodersir/axkhan/internal/quota"
	"github.com/mcodersir/axkhan/internal/settings"
	"github.com/mcodersir/axkhan/internal/storage"
)

type fakeExtractor struct {
	mu    sync.Mutex
	calls []models.ExtractionRequest
	keys  []string
	text  string
	err   error
	block chan struct{}
}

func (f *fakeExtractor) Extract(ctx context.Context, req models.ExtractionRequest, apiKey string) (string, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	f.keys = append(f.keys, apiKey)
	return f.text, f.err
}

func (f *fakeExtractor) last() models.ExtractionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

type staticSettings struct {
	s settings.Settings
}

func (s staticSettings) Get() settings.Settings { return s.s }

type fixture struct {
	coord *Coordinator
	ext   *fakeExtractor
	quota *quota.Tracker
	feed  *notify.Feed
}

func newFixture(t *testing.T, ext *fakeExtractor, s settings.Settings) fixture {
	t.Helper()
	q := quota.New(storage.NewMemory(), 1500)
	feed := notify.NewFeed(0)
	coord := New(ext, staticSettings{s: s}, q, feed, Options{
		Model:        "gemini-test",
		MaxDimension: 1000,
		BasePrompt:   ocr.BasePrompt,
	})
	return fixture{coord: coord, ext: ext, quota: q, feed: feed}
}

func pngPayload(t *testing.T, w, h int) models.ImagePayload {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 7 {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return models.ImagePayload{Bytes: buf.Bytes(), MimeType: "image/png", Width: w, Height: h}
}

func waitRun(t *testing.T, run *Run) (string, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	text, err := run.Wait(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("Timed out waiting for run")
	}
	return text, err
}

func TestEcoModeTransmitsNormalizedCopy(t *testing.T) {
	f := newFixture(t, &fakeExtractor{text: "سلام"}, settings.Settings{APIKey: "k", EcoMode: true})
	original := pngPayload(t, 2000, 500)

	run, err := f.coord.Submit(context.Background(), original, SourceFilePicker)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if _, err := waitRun(t, run); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	sent, err := base64.StdEncoding.DecodeString(f.ext.last().ImageBase64)
	if err != nil {
		t.Fatalf("Transmitted body is not base64: %v", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(sent))
	if err != nil {
		t.Fatalf("Transmitted body is not an image: %v", err)
	}
	if max(cfg.Width, cfg.Height) != 1000 {
		t.Errorf("Expected transmitted max dimension 1000, got %dx%d", cfg.Width, cfg.Height)
	}

	preview, ok := f.coord.Preview()
	if !ok {
		t.Fatal("Expected a preview")
	}
	if preview.Width != 2000 || preview.Height != 500 || !bytes.Equal(preview.Bytes, original.Bytes) {
		t.Errorf("Expected preview to stay the original 2000x500, got %dx%d", preview.Width, preview.Height)
	}

	if got := f.quota.CurrentUsage(); got != 1 {
		t.Errorf("Expected usage 1, got %d", got)
	}
}

func TestWithoutEcoModeOriginalIsSent(t *testing.T) {
	f := newFixture(t, &fakeExtractor{text: "ok"}, settings.Settings{APIKey: "k"})
	original := pngPayload(t, 2000, 500)

	run, err := f.coord.Submit(context.Background(), original, SourceClipboard)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	waitRun(t, run)

	expected := base64.StdEncoding.EncodeToString(original.Bytes)
	if f.ext.last().ImageBase64 != expected {
		t.Error("Expected the original bytes to be transmitted")
	}
}

func TestSuccessfulRun(t *testing.T) {
	f := newFixture(t, &fakeExtractor{text: "Hello world"}, settings.Settings{APIKey: "user-key"})
	f.coord.SetInstructions("Keep tables")

	run, err := f.coord.Submit(context.Background(), pngPayload(t, 10, 10), SourceFilePicker)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	text, err := waitRun(t, run)
	if err != nil || text != "Hello world" {
		t.Fatalf("Expected text, got %q (%v)", text, err)
	}

	snap := f.coord.Snapshot()
	if snap.State != models.StateDone || snap.Busy {
		t.Errorf("Expected done and idle, got %s busy=%v", snap.State, snap.Busy)
	}
	if snap.Result.Text != "Hello world" || snap.Result.Direction != "ltr" {
		t.Errorf("Unexpected result %+v", snap.Result)
	}
	if snap.Run == nil || snap.Run.FinishedAt == nil || snap.Run.Source != string(SourceFilePicker) {
		t.Errorf("Unexpected run info %+v", snap.Run)
	}

	req := f.ext.last()
	if req.Model != "gemini-test" {
		t.Errorf("Expected model gemini-test, got %s", req.Model)
	}
	if !bytes.Contains([]byte(req.Prompt), []byte("Keep tables")) {
		t.Error("Expected custom instructions in prompt")
	}
	if f.ext.keys[0] != "user-key" {
		t.Errorf("Expected settings key to be used, got %q", f.ext.keys[0])
	}

	events := f.feed.Since(0)
	if len(events) != 2 {
		t.Fatalf("Expected toast and scroll, got %+v", events)
	}
	if events[0].Level != notify.LevelSuccess || events[1].Kind != notify.KindScroll || events[1].Target != ResultTarget {
		t.Errorf("Unexpected notifications %+v", events)
	}
}

func TestFailedRunLeavesQuota(t *testing.T) {
	ext := &fakeExtractor{err: ocr.Classify(providers.Remote(errors.New("Error 403: forbidden")))}
	f := newFixture(t, ext, settings.Settings{APIKey: "bad"})

	run, err := f.coord.Submit(context.Background(), pngPayload(t, 10, 10), SourceDragDrop)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	_, err = waitRun(t, run)
	if ocr.KindOf(err) != ocr.KindInvalidKey {
		t.Errorf("Expected invalid key, got %v", err)
	}

	if got := f.quota.CurrentUsage(); got != 0 {
		t.Errorf("Expected usage 0, got %d", got)
	}
	if f.coord.State() != models.StateFailed {
		t.Errorf("Expected failed state, got %s", f.coord.State())
	}

	last, _ := f.feed.Last()
	if last.Level != notify.LevelError || last.Message != ocr.MsgInvalidKey {
		t.Errorf("Expected invalid key toast, got %+v", last)
	}

	// failed is not sticky
	f.ext.err = nil
	f.ext.text = "retry"
	run, err = f.coord.Submit(context.Background(), pngPayload(t, 10, 10), SourceDragDrop)
	if err != nil {
		t.Fatalf("Expected resubmission to be accepted, got %v", err)
	}
	if text, _ := waitRun(t, run); text != "retry" {
		t.Errorf("Expected retry text, got %q", text)
	}
}

func TestNonImageIsRejectedWithoutStateChange(t *testing.T) {
	f := newFixture(t, &fakeExtractor{text: "x"}, settings.Settings{APIKey: "k"})
	before := f.coord.Snapshot()

	_, err := f.coord.Submit(context.Background(), models.ImagePayload{Bytes: []byte("%PDF-1.4"), MimeType: "application/pdf"}, SourceFilePicker)
	if !errors.Is(err, ErrNotImage) {
		t.Fatalf("Expected ErrNotImage, got %v", err)
	}

	after := f.coord.Snapshot()
	if after.State != before.State || after.Run != nil || after.Preview != nil {
		t.Errorf("Expected no state change, got %+v", after)
	}
	if len(f.ext.calls) != 0 {
		t.Error("Expected no extraction call")
	}
	last, ok := f.feed.Last()
	if !ok || last.Message != MsgNotImage {
		t.Errorf("Expected not-image notification, got %+v", last)
	}
}

func TestOverlappingSubmissionIsRejected(t *testing.T) {
	ext := &fakeExtractor{text: "first", block: make(chan struct{})}
	f := newFixture(t, ext, settings.Settings{APIKey: "k"})

	run, err := f.coord.Submit(context.Background(), pngPayload(t, 10, 10), SourceFilePicker)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if !f.coord.Busy() {
		t.Error("Expected coordinator to be busy")
	}

	_, err = f.coord.Submit(context.Background(), pngPayload(t, 20, 20), SourceClipboard)
	if !errors.Is(err, ErrBusy) {
		t.Errorf("Expected ErrBusy, got %v", err)
	}
	if p, _ := f.coord.Preview(); p.Width != 10 {
		t.Errorf("Expected preview of the first image, got width %d", p.Width)
	}

	close(ext.block)
	waitRun(t, run)

	if got := f.quota.CurrentUsage(); got != 1 {
		t.Errorf("Expected usage 1, got %d", got)
	}
}

func TestRunSurvivesCallerCancellation(t *testing.T) {
	ext := &fakeExtractor{text: "done", block: make(chan struct{})}
	f := newFixture(t, ext, settings.Settings{APIKey: "k"})

	ctx, cancel := context.WithCancel(context.Background())
	run, err := f.coord.Submit(ctx, pngPayload(t, 10, 10), SourceFilePicker)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	cancel()
	close(ext.block)

	if text, err := waitRun(t, run); err != nil || text != "done" {
		t.Errorf("Expected run to complete, got %q (%v)", text, err)
	}
}

func TestNewRunClearsPreviousResult(t *testing.T) {
	ext := &fakeExtractor{text: "first"}
	f := newFixture(t, ext, settings.Settings{APIKey: "k"})

	run, _ := f.coord.Submit(context.Background(), pngPayload(t, 10, 10), SourceFilePicker)
	waitRun(t, run)
	f.coord.Viewer().ZoomIn()
	f.coord.EditResult("edited")

	ext.block = make(chan struct{})
	run, err := f.coord.Submit(context.Background(), pngPayload(t, 10, 10), SourceFilePicker)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	snap := f.coord.Snapshot()
	if snap.Result.Loaded || snap.Result.Text != "" {
		t.Errorf("Expected result cleared, got %+v", snap.Result)
	}
	if snap.Viewer.Scale != 1 {
		t.Errorf("Expected viewer reset, got scale %g", snap.Viewer.Scale)
	}
	close(ext.block)
	waitRun(t, run)
}

func TestDecodePaste(t *testing.T) {
	img := pngPayload(t, 3, 2)
	b64 := base64.StdEncoding.EncodeToString(img.Bytes)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(img.Bytes)
	}))
	defer srv.Close()
	fetcher := images.NewFetcher(time.Second, 1<<20)

	tests := []struct {
		name       string
		data       string
		mimeType   string
		expectMime string
		expectErr  bool
	}{
		{name: "data uri", data: "data:image/png;base64," + b64, expectMime: "image/png"},
		{name: "bare base64 sniffed", data: b64, expectMime: "image/png"},
		{name: "declared mime wins", data: b64, mimeType: "image/x-custom", expectMime: "image/x-custom"},
		{name: "url", data: srv.URL + "/shot.png", expectMime: "image/png"},
		{name: "garbage", data: "!!not base64!!", expectErr: true},
		{name: "empty", data: "  ", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := DecodePaste(context.Background(), tt.data, tt.mimeType, fetcher, 1<<20)
			if tt.expectErr {
				if err == nil {
					t.Error("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if p.MimeType != tt.expectMime {
				t.Errorf("Expected mime %s, got %s", tt.expectMime, p.MimeType)
			}
			if p.Width != 3 || p.Height != 2 {
				t.Errorf("Expected 3x2, got %dx%d", p.Width, p.Height)
			}
		})
	}
}

func TestFromReaderSizeLimit(t *testing.T) {
	_, err := FromReader(bytes.NewReader(make([]byte, 11)), "a.png", "", 10)
	if !errors.Is(err, images.ErrTooLarge) {
		t.Errorf("Expected ErrTooLarge, got %v", err)
	}
}

func TestFromFile(t *testing.T) {
	img := pngPayload(t, 4, 5)
	path := filepath.Join(t.TempDir(), "scan.png")
	if err := os.WriteFile(path, img.Bytes, 0644); err != nil {
		t.Fatal(err)
	}

	p, err := FromFile(path, 0)
	if err != nil {
		t.Fatalf("FromFile failed: %v", err)
	}
	if p.MimeType != "image/png" || p.Width != 4 || p.Height != 5 {
		t.Errorf("Unexpected payload %s %dx%d", p.MimeType, p.Width, p.Height)
	}
}

func TestWatchDropDir(t *testing.T) {
	f := newFixture(t, &fakeExtractor{text: "dropped"}, settings.Settings{APIKey: "k"})
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := WatchDropDir(ctx, DropConfig{Dir: dir, Debounce: 20 * time.Millisecond}, f.coord); err != nil {
		t.Fatalf("WatchDropDir failed: %v", err)
	}

	img := pngPayload(t, 6, 6)
	if err := os.WriteFile(filepath.Join(dir, "page.png"), img.Bytes, 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if f.coord.State() == models.StateDone {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if f.coord.State() != models.StateDone {
		t.Fatalf("Expected dropped file to be processed, state %s", f.coord.State())
	}
	if snap := f.coord.Snapshot(); snap.Run.Source != string(SourceDragDrop) {
		t.Errorf("Expected drag_drop source, got %s", snap.Run.Source)
	}
}
