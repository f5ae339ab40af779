package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"gocv.io/x/gocv"

	"github.com/ayusman/airsketch/internal/app"
	"github.com/ayusman/airsketch/internal/board"
	"github.com/ayusman/airsketch/internal/capture"
	"github.com/ayusman/airsketch/internal/detector"
	"github.com/ayusman/airsketch/internal/server"
	"github.com/ayusman/airsketch/internal/store"
)

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestE2E_TrackerToBoard(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	s, err := store.New(filepath.Join(t.TempDir(), "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	// Tracker side: mock camera and detector feeding a websocket hub.
	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	mockDetector := detector.NewMockDetector()
	feedHub := server.NewHub("feed")
	tracker := app.NewTracker(app.TrackerConfig{
		Camera:   capture.NewMockCamera([]*gocv.Mat{&frame}, true),
		Detector: mockDetector,
		Feed:     feedHub,
	})

	trackerSrv := httptest.NewServer(server.New(server.Config{Name: "tracker", Feed: feedHub}))
	defer trackerSrv.Close()

	// Board side.
	render := server.NewHub("render")
	b, err := app.NewBoard(app.BoardConfig{
		FeedURL: "ws" + strings.TrimPrefix(trackerSrv.URL, "http") + "/ws",
		Store:   s,
		Render:  render,
	})
	if err != nil {
		t.Fatalf("NewBoard() error = %v", err)
	}
	render.OnConnect(func() (any, bool) {
		f, err := b.Snapshot(context.Background())
		return f, err == nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	boardDone := make(chan struct{})
	go func() {
		defer close(boardDone)
		b.Run(ctx)
	}()
	defer func() {
		cancel()
		<-boardDone
	}()

	boardSrv := httptest.NewServer(server.New(server.Config{
		Name:   "board",
		Board:  b,
		Render: render,
		Store:  s,
	}))
	defer boardSrv.Close()

	waitFor(t, "feed connection", func() bool { return feedHub.Clients() == 1 })

	if err := tracker.Start(); err != nil {
		t.Fatalf("tracker.Start() error = %v", err)
	}
	defer tracker.Stop()

	snapshot := func(t *testing.T) board.Frame {
		t.Helper()
		f, err := b.Snapshot(ctx)
		if err != nil {
			t.Fatalf("Snapshot() error = %v", err)
		}
		return f
	}

	t.Run("PointingDraws", func(t *testing.T) {
		mockDetector.SetHands([]detector.HandLandmarks{detector.PointingLandmarks()})
		waitFor(t, "a stroke", func() bool {
			f := snapshot(t)
			return len(f.Strokes) == 1 && len(f.Strokes[0].Points) >= 2
		})
		if got := b.ModeLabel(); got != "Mode: DRAWING" {
			t.Errorf("mode label = %q", got)
		}
	})

	t.Run("HandLeavesEndsStroke", func(t *testing.T) {
		mockDetector.SetHands(nil)
		waitFor(t, "no hand", func() bool { return !snapshot(t).Detected })

		mockDetector.SetHands([]detector.HandLandmarks{detector.PointingLandmarks()})
		waitFor(t, "a second stroke", func() bool { return len(snapshot(t).Strokes) == 2 })
		mockDetector.SetHands(nil)
	})

	t.Run("RenderClientGetsSnapshot", func(t *testing.T) {
		url := "ws" + strings.TrimPrefix(boardSrv.URL, "http") + "/api/render"
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("dial render error = %v", err)
		}
		defer conn.Close()

		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read render error = %v", err)
		}
		var f board.Frame
		if err := json.Unmarshal(data, &f); err != nil {
			t.Fatalf("decode frame error = %v", err)
		}
		if len(f.Strokes) != 2 || len(f.Palette) != 5 {
			t.Errorf("greeting has %d strokes and %d swatches", len(f.Strokes), len(f.Palette))
		}
	})

	t.Run("ExportPDF", func(t *testing.T) {
		resp, err := http.Get(boardSrv.URL + "/api/board/export.pdf")
		if err != nil {
			t.Fatalf("export error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
		if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
			t.Errorf("Content-Type = %q", ct)
		}
	})

	t.Run("Clear", func(t *testing.T) {
		resp, err := http.Post(boardSrv.URL+"/api/board/clear", "application/json", nil)
		if err != nil {
			t.Fatalf("clear error = %v", err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusNoContent)
		}
		if n := len(snapshot(t).Strokes); n != 0 {
			t.Errorf("strokes after clear = %d", n)
		}
	})

	t.Run("Health", func(t *testing.T) {
		resp, err := http.Get(trackerSrv.URL + "/api/health")
		if err != nil {
			t.Fatalf("health error = %v", err)
		}
		defer resp.Body.Close()

		var body map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode error = %v", err)
		}
		if body["service"] != "tracker" || body["feed_clients"] != float64(1) {
			t.Errorf("unexpected health: %v", body)
		}
	})
}
