package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/ayusman/airsketch/internal/app"
	"github.com/ayusman/airsketch/internal/board"
	"github.com/ayusman/airsketch/internal/config"
	"github.com/ayusman/airsketch/internal/discovery"
	"github.com/ayusman/airsketch/internal/feed"
	"github.com/ayusman/airsketch/internal/server"
	"github.com/ayusman/airsketch/internal/store"
	"github.com/ayusman/airsketch/internal/tray"
)

func main() {
	fmt.Println("airsketch - air drawing board")

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}

	dataDir := filepath.Join(homeDir, ".airsketch")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	cfg, err := config.Load(filepath.Join(dataDir, config.FileName))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	bc := cfg.Board

	st, err := store.New(filepath.Join(dataDir, "airsketch.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	render := server.NewHub("render")
	b, err := app.NewBoard(app.BoardConfig{
		FeedURL: feedURL(ctx, bc.FeedURL),
		Surface: board.Surface{Width: bc.Width, Height: bc.Height},
		Store:   st,
		Render:  render,
	})
	if err != nil {
		log.Fatalf("Failed to create board: %v", err)
	}

	// New render clients start from the current drawing.
	render.OnConnect(func() (any, bool) {
		snapCtx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		frame, err := b.Snapshot(snapCtx)
		if err != nil {
			return nil, false
		}
		return frame, true
	})

	webDir := bc.WebDir
	if webDir == "" {
		webDir = findWebDir()
	}
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		Name:      "board",
		StaticDir: webDir,
		Board:     b,
		Render:    render,
		Store:     st,
		Status: func() map[string]any {
			return map[string]any{
				"feed":       b.Status().String(),
				"feed_url":   b.Client().URL(),
				"mode_label": b.ModeLabel(),
			}
		},
	})

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", bc.Port),
		Handler: srv,
	}

	boardDone := make(chan struct{})
	go func() {
		defer close(boardDone)
		if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Board stopped: %v", err)
		}
	}()

	go func() {
		fmt.Printf("Starting server on %s\n", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Server failed: %v", err)
			stop()
		}
	}()

	if bc.Tray {
		runTray(ctx, stop, b, httpServer.Addr)
	} else {
		<-ctx.Done()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	stop()
	<-boardDone
}

// runTray shows the tray menu until Quit is picked or ctx ends.
func runTray(ctx context.Context, stop context.CancelFunc, b *app.Board, addr string) {
	t := tray.New()

	b.OnChange(func(status feed.Status, modeLabel string) {
		t.SetStatus(status.String())
		t.SetMode(modeLabel)
	})
	t.OnClear(func() {
		clearCtx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := b.Clear(clearCtx); err != nil {
			log.Printf("Clear failed: %v", err)
		}
	})
	t.OnOpen(func() {
		if err := openBrowser("http://localhost" + addr); err != nil {
			log.Printf("Failed to open browser: %v", err)
		}
	})
	t.OnQuit(stop)

	go func() {
		<-ctx.Done()
		t.Quit()
	}()
	t.Run()
}

// feedURL picks the configured feed, else one found over mDNS, else the
// local default.
func feedURL(ctx context.Context, configured string) string {
	if configured != "" {
		return configured
	}
	url, err := discovery.Lookup(ctx, discovery.DefaultTimeout)
	if err != nil {
		log.Printf("No tracker discovered (%v), using %s", err, config.DefaultFeedURL)
		return config.DefaultFeedURL
	}
	return url
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.airsketch/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".airsketch", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
