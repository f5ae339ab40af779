package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/ayusman/airsketch/internal/board"
	"github.com/ayusman/airsketch/internal/canvas"
	"github.com/ayusman/airsketch/internal/feed"
	"github.com/ayusman/airsketch/internal/palette"
	"github.com/ayusman/airsketch/internal/store"
)

// ErrStopped is returned by board commands once Run has returned.
var ErrStopped = errors.New("board is not running")

// ErrInvalidSurface is returned for a resize with a non-positive side.
var ErrInvalidSurface = errors.New("invalid surface size")

// Publisher fans a message out to connected clients.
type Publisher interface {
	Broadcast(v any) error
}

// BoardConfig holds configuration for the board runtime.
type BoardConfig struct {
	FeedURL string
	Surface board.Surface
	// Store supplies the palette and remembers the active color. Optional.
	Store *store.Store
	// Render receives a frame after every change. Optional.
	Render Publisher
}

// Board owns the interpreter and its state. Feed samples and operator
// commands are applied one at a time on the goroutine running Run.
type Board struct {
	config BoardConfig
	interp *board.Interpreter
	client *feed.Client

	// Owned by the Run goroutine.
	state board.State
	last  board.Frame

	samples chan feed.Sample
	cmds    chan func()
	done    chan struct{}
	running chan struct{}

	mu        sync.RWMutex
	modeLabel string
	onChange  func(status feed.Status, modeLabel string)
}

// NewBoard creates a board runtime, loading the palette and the last active
// color from the store when one is configured.
func NewBoard(config BoardConfig) (*Board, error) {
	pal := palette.New(palette.DefaultEntries())
	state := board.NewState()

	if config.Store != nil {
		entries, err := config.Store.Palette().List()
		if err != nil {
			return nil, fmt.Errorf("failed to load palette: %w", err)
		}
		pal.SetEntries(entries)

		saved, err := config.Store.Settings().Get(store.SettingActiveColor)
		switch {
		case err == nil:
			if c, err := canvas.ParseColor(saved); err == nil {
				state.ActiveColor = c
			}
		case !errors.Is(err, store.ErrNotFound):
			return nil, fmt.Errorf("failed to load settings: %w", err)
		}
	}

	b := &Board{
		config:  config,
		interp:  board.New(canvas.NewStore(), pal),
		state:   state,
		samples: make(chan feed.Sample),
		cmds:    make(chan func()),
		done:    make(chan struct{}),
		running: make(chan struct{}),
	}
	if config.Surface.Width > 0 && config.Surface.Height > 0 {
		b.interp.Resize(config.Surface.Width, config.Surface.Height)
	}
	b.last = b.frame(board.Effects{Highlight: -1})

	b.client = feed.NewClient(config.FeedURL, b.enqueue)
	b.client.OnStatus(func(s feed.Status) {
		log.Printf("Tracking feed: %s", s)
		b.notify()
	})

	return b, nil
}

// Client returns the feed client.
func (b *Board) Client() *feed.Client {
	return b.client
}

// Status returns the feed connection state.
func (b *Board) Status() feed.Status {
	return b.client.Status()
}

// ModeLabel returns the label of the most recent mode, such as "Mode: DRAWING".
func (b *Board) ModeLabel() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.modeLabel
}

// OnChange sets a callback for feed status and mode label changes.
func (b *Board) OnChange(fn func(status feed.Status, modeLabel string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onChange = fn
}

func (b *Board) notify() {
	b.mu.RLock()
	fn, label := b.onChange, b.modeLabel
	b.mu.RUnlock()

	if fn != nil {
		fn(b.client.Status(), label)
	}
}

// Run consumes the feed and serves commands until ctx is cancelled.
func (b *Board) Run(ctx context.Context) error {
	select {
	case <-b.running:
		return errors.New("board already running")
	default:
		close(b.running)
	}
	// Closing done first releases a feed handler blocked in enqueue, so the
	// feed goroutine can then observe ctx and exit.
	feedDone := make(chan struct{})
	defer func() { <-feedDone }()
	defer close(b.done)

	go func() {
		defer close(feedDone)
		b.client.Run(ctx)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s := <-b.samples:
			b.apply(s)
		case fn := <-b.cmds:
			fn()
		}
	}
}

// enqueue hands a sample to the Run goroutine. It blocks until the sample is
// taken so none are dropped; the feed transport buffers meanwhile.
func (b *Board) enqueue(s feed.Sample) {
	select {
	case b.samples <- s:
	case <-b.done:
	}
}

// Interpret applies a sample as if it had arrived on the feed.
func (b *Board) Interpret(ctx context.Context, s feed.Sample) error {
	select {
	case b.samples <- s:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-b.done:
		return ErrStopped
	}
}

func (b *Board) apply(s feed.Sample) {
	prev := b.state
	st, fx := b.interp.Interpret(b.state, s)
	b.state = st
	if fx.Skipped {
		return
	}

	if st.ActiveColor != prev.ActiveColor {
		b.saveColor(st.ActiveColor)
	}
	if fx.Erased > 0 {
		log.Printf("Erased %d strokes", fx.Erased)
	}

	b.publish(fx)

	if fx.ModeLabel == "" {
		return
	}
	b.mu.Lock()
	changed := b.modeLabel != fx.ModeLabel
	b.modeLabel = fx.ModeLabel
	b.mu.Unlock()
	if changed {
		b.notify()
	}
}

func (b *Board) frame(fx board.Effects) board.Frame {
	return b.interp.Frame(b.state, fx)
}

func (b *Board) publish(fx board.Effects) {
	b.last = b.frame(fx)
	if b.config.Render == nil {
		return
	}
	if err := b.config.Render.Broadcast(b.last); err != nil {
		log.Printf("render broadcast error: %v", err)
	}
}

func (b *Board) saveColor(c canvas.Color) {
	if b.config.Store == nil {
		return
	}
	if err := b.config.Store.Settings().Set(store.SettingActiveColor, string(c)); err != nil {
		log.Printf("Failed to save active color: %v", err)
	}
}

// do runs fn on the Run goroutine and waits for it. ctx only bounds the wait
// for the Run goroutine to take the command; once taken, fn always completes
// before do returns, so callers may read what fn wrote.
func (b *Board) do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	cmd := func() {
		defer close(finished)
		fn()
	}

	select {
	case b.cmds <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	case <-b.done:
		return ErrStopped
	}

	<-finished
	return nil
}

// Snapshot returns the latest render frame, with the highlight set to the
// active color's swatch.
func (b *Board) Snapshot(ctx context.Context) (board.Frame, error) {
	var f board.Frame
	err := b.do(ctx, func() {
		f = b.last
		f.Strokes = b.interp.Store().Strokes()
		f.Palette = b.interp.Palette().Entries()
		f.ActiveColor = b.state.ActiveColor
		f.Grabbed = b.state.Grabbed
		f.Surface = b.interp.Surface()
		f.Highlight = b.interp.Palette().IndexOf(b.state.ActiveColor)
	})
	return f, err
}

// Clear removes every stroke.
func (b *Board) Clear(ctx context.Context) error {
	return b.do(ctx, func() {
		b.state = b.interp.Clear(b.state)
		log.Println("Canvas cleared")
		b.publish(board.Effects{Redraw: true, Highlight: -1})
	})
}

// SelectColor makes c the active color and returns the swatch index it
// matches, or -1.
func (b *Board) SelectColor(ctx context.Context, c canvas.Color) (int, error) {
	color, err := canvas.ParseColor(string(c))
	if err != nil {
		return -1, err
	}

	index := -1
	err = b.do(ctx, func() {
		prev := b.state.ActiveColor
		b.state, index = b.interp.SelectColor(b.state, color)
		if prev != color {
			b.saveColor(color)
		}
		b.publish(board.Effects{Highlight: index})
	})
	return index, err
}

// Resize sets the drawing surface size used to place later samples.
func (b *Board) Resize(ctx context.Context, width, height float64) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %vx%v", ErrInvalidSurface, width, height)
	}
	return b.do(ctx, func() {
		b.interp.Resize(width, height)
		b.publish(board.Effects{Redraw: true, Highlight: -1})
	})
}

// SetPalette replaces the swatches the cursor can hover.
func (b *Board) SetPalette(ctx context.Context, entries []palette.Entry) error {
	return b.do(ctx, func() {
		b.interp.Palette().SetEntries(entries)
		b.publish(board.Effects{Highlight: b.interp.Palette().IndexOf(b.state.ActiveColor)})
	})
}
