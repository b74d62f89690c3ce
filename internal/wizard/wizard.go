// Package wizard drives the four-step flow of a tool page:
// upload, settings, processing and complete.
package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pdftools/backend/internal/clock"
	"github.com/pdftools/backend/internal/models"
	"github.com/pdftools/backend/internal/observability"
	"github.com/pdftools/backend/internal/upload"
)

var (
	// ErrNoFiles is returned when continuing from upload with an empty list.
	ErrNoFiles = errors.New("no files selected")
	// ErrInvalidTransition is returned when a step change is not allowed from the current step.
	ErrInvalidTransition = errors.New("invalid wizard transition")
	// ErrWrongStep is returned when an operation is not available in the current step.
	ErrWrongStep = errors.New("operation not available in current step")
	// ErrInvalidSettings is returned when a settings payload cannot be decoded.
	ErrInvalidSettings = errors.New("invalid settings payload")
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("wizard closed")
)

// DefaultDownloadName is used when no file name is available.
const DefaultDownloadName = "file.pdf"

// Options configures a Wizard.
type Options struct {
	Simulation SimulationConfig
	MaxFiles   int
	Clock      clock.Clock
	Random     clock.Random
	Logger     observability.Logger
}

// Wizard is the state of one tool-page visit. It is safe for concurrent use.
type Wizard struct {
	id     string
	tool   models.Tool
	files  *upload.List
	sim    SimulationConfig
	clock  clock.Clock
	random clock.Random
	logger observability.Logger

	mu        sync.Mutex
	step      models.Step
	progress  float64
	settings  models.Settings
	run       int // bumped whenever a running simulation must stop
	cancel    context.CancelFunc
	closed    bool
	updatedAt time.Time
	subs      map[int]chan models.WizardSnapshot
	nextSub   int
}

// New creates a wizard at the upload step.
func New(id string, tool models.Tool, opts Options) *Wizard {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Random == nil {
		opts.Random = clock.DefaultRandom()
	}
	if opts.Logger == nil {
		opts.Logger = observability.Discard()
	}

	w := &Wizard{
		id:     id,
		tool:   tool,
		files:  upload.NewList(upload.ConfigForTool(tool, opts.MaxFiles)),
		sim:    opts.Simulation.withDefaults(),
		clock:  opts.Clock,
		random: opts.Random,
		logger: opts.Logger.With("session", shortID(id), "tool", tool.ID),
		step:   models.StepUpload,
		subs:   make(map[int]chan models.WizardSnapshot),
	}
	w.settings = models.NewSettings(models.SettingsKindFor(tool.ID))
	w.updatedAt = w.clock.Now()
	return w
}

// ID returns the session id the wizard was created with.
func (w *Wizard) ID() string { return w.id }

// Tool returns the tool this wizard runs.
func (w *Wizard) Tool() models.Tool { return w.tool }

// Step returns the current step.
func (w *Wizard) Step() models.Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Snapshot returns a copy of the current state.
func (w *Wizard) Snapshot() models.WizardSnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

// AddFiles appends selections to the file list and returns how many were kept.
// Selections beyond capacity are dropped silently.
func (w *Wizard) AddFiles(batch []upload.Selection) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.requireStepLocked(models.StepUpload); err != nil {
		return 0, err
	}
	kept := w.files.Add(batch)
	if dropped := len(batch) - kept; dropped > 0 {
		w.logger.Debug("selection truncated", "kept", kept, "dropped", dropped)
	}
	w.changedLocked()
	return kept, nil
}

// RemoveFile removes the file at index. It reports false when the index is out of range.
func (w *Wizard) RemoveFile(index int) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.requireStepLocked(models.StepUpload); err != nil {
		return false, err
	}
	removed := w.files.Remove(index)
	if removed {
		w.changedLocked()
	}
	return removed, nil
}

// ClearFiles empties the file list.
func (w *Wizard) ClearFiles() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.requireStepLocked(models.StepUpload); err != nil {
		return err
	}
	w.files.Clear()
	w.changedLocked()
	return nil
}

// Continue moves from upload to settings. The file list must not be empty.
func (w *Wizard) Continue() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.transitionLocked(models.StepUpload, models.StepSettings); err != nil {
		return err
	}
	if w.files.Len() == 0 {
		return ErrNoFiles
	}
	w.step = models.StepSettings
	w.changedLocked()
	return nil
}

// Back returns from settings to upload. Settings are kept.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.transitionLocked(models.StepSettings, models.StepUpload); err != nil {
		return err
	}
	w.step = models.StepUpload
	w.changedLocked()
	return nil
}

// UpdateSettings merges a JSON object into the tool's settings. Keys that
// the tool does not use are ignored and values are never validated.
func (w *Wizard) UpdateSettings(raw []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.requireStepLocked(models.StepSettings); err != nil {
		return err
	}

	merged := models.NewSettings(w.settings.Kind())
	current, err := json.Marshal(w.settings)
	if err != nil {
		return fmt.Errorf("encoding current settings: %w", err)
	}
	if err := json.Unmarshal(current, merged); err != nil {
		return fmt.Errorf("copying current settings: %w", err)
	}
	if err := json.Unmarshal(raw, merged); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	w.settings = merged
	w.changedLocked()
	return nil
}

// Process starts the progress simulation. Progress restarts at 0.
func (w *Wizard) Process() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.transitionLocked(models.StepSettings, models.StepProcessing); err != nil {
		return err
	}

	w.step = models.StepProcessing
	w.progress = 0
	w.run++

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	// The ticker is created here so the first tick can never be missed.
	ticker := w.clock.NewTicker(w.sim.Interval)
	go w.simulate(ctx, w.run, ticker)

	w.logger.Info("processing started", "files", w.files.Len())
	w.changedLocked()
	return nil
}

// Reset returns from complete to upload, clearing files, settings and progress.
func (w *Wizard) Reset() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.transitionLocked(models.StepComplete, models.StepUpload); err != nil {
		return err
	}

	w.stopLocked()
	w.step = models.StepUpload
	w.progress = 0
	w.files.Clear()
	w.settings = models.NewSettings(w.settings.Kind())
	w.changedLocked()
	return nil
}

// Download returns the attachment offered at the complete step. No real
// output exists, so the body is a short receipt.
func (w *Wizard) Download() (string, []byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.requireStepLocked(models.StepComplete); err != nil {
		return "", nil, err
	}

	files := w.files.Files()
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", w.tool.Name)
	fmt.Fprintf(&b, "completed: %s\n", w.updatedAt.UTC().Format(time.RFC3339))
	for _, f := range files {
		fmt.Fprintf(&b, "input: %s (%d bytes)\n", f.Name, f.Size)
	}
	return w.downloadNameLocked(), []byte(b.String()), nil
}

// Subscribe returns a channel that receives a snapshot after every state
// change, and a function to stop receiving. Slow readers only see the
// latest snapshot. The channel is closed when the wizard is closed.
func (w *Wizard) Subscribe() (<-chan models.WizardSnapshot, func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ch := make(chan models.WizardSnapshot, 1)
	if w.closed {
		close(ch)
		return ch, func() {}
	}

	id := w.nextSub
	w.nextSub++
	w.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			w.mu.Lock()
			defer w.mu.Unlock()
			if sub, ok := w.subs[id]; ok {
				delete(w.subs, id)
				close(sub)
			}
		})
	}
}

// Close tears the wizard down: any running simulation is cancelled and
// subscribers are released. Close is idempotent.
func (w *Wizard) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	w.closed = true
	if w.step == models.StepProcessing {
		w.logger.Info("processing abandoned", "progress", w.progress)
	}
	w.stopLocked()
	for id, ch := range w.subs {
		close(ch)
		delete(w.subs, id)
	}
}

// Closed reports whether Close has been called.
func (w *Wizard) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// advance applies one tick. It reports whether the simulation reached 100
// and whether the run is still current.
func (w *Wizard) advance(run int) (done, current bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || run != w.run || w.step != models.StepProcessing {
		return false, false
	}

	w.progress += w.random.Float64() * w.sim.MaxIncrement
	if w.progress >= 100 {
		w.progress = 100
		done = true
	}
	w.changedLocked()
	return done, true
}

func (w *Wizard) complete(run int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || run != w.run || w.step != models.StepProcessing {
		return
	}
	w.step = models.StepComplete
	w.cancel = nil
	w.logger.Info("processing complete")
	w.changedLocked()
}

func (w *Wizard) stopLocked() {
	w.run++
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
}

func (w *Wizard) requireStepLocked(step models.Step) error {
	if w.closed {
		return ErrClosed
	}
	if w.step != step {
		return fmt.Errorf("%w: in %s, need %s", ErrWrongStep, w.step, step)
	}
	return nil
}

func (w *Wizard) transitionLocked(from, to models.Step) error {
	if w.closed {
		return ErrClosed
	}
	if w.step != from {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, w.step, to)
	}
	return nil
}

func (w *Wizard) changedLocked() {
	w.updatedAt = w.clock.Now()
	snap := w.snapshotLocked()
	for _, ch := range w.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

func (w *Wizard) snapshotLocked() models.WizardSnapshot {
	cfg := w.files.Config()
	snap := models.WizardSnapshot{
		SessionID:     w.id,
		ToolID:        w.tool.ID,
		Step:          w.step,
		Progress:      displayProgress(w.progress),
		Files:         w.files.Files(),
		Multiple:      cfg.Multiple,
		MaxFiles:      cfg.MaxFiles,
		AcceptedFiles: cfg.AcceptedFiles,
		SettingsKind:  w.settings.Kind(),
		Settings:      w.settings,
		UpdatedAt:     w.updatedAt,
	}
	if w.step == models.StepComplete {
		snap.DownloadName = w.downloadNameLocked()
	}
	return snap
}

func (w *Wizard) downloadNameLocked() string {
	if f, ok := w.files.First(); ok && f.Name != "" {
		return "processed-" + f.Name
	}
	return "processed-" + DefaultDownloadName
}

func displayProgress(p float64) float64 {
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
