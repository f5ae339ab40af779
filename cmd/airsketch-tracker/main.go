package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ayusman/airsketch/internal/app"
	"github.com/ayusman/airsketch/internal/capture"
	"github.com/ayusman/airsketch/internal/config"
	"github.com/ayusman/airsketch/internal/discovery"
	"github.com/ayusman/airsketch/internal/server"
)

func main() {
	fmt.Println("airsketch tracker - hand tracking feed")

	path, err := config.DefaultPath()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	tc := cfg.Tracker

	feedHub := server.NewHub("feed")
	preview := server.NewPreview()

	tracker := app.NewTracker(app.TrackerConfig{
		Camera:         capture.NewCamera(tc.Camera),
		DetectorConfig: tc.Detector,
		Tracking:       tc.Tracking,
		ActiveFPS:      tc.Camera.FPS,
		IdleFPS:        tc.IdleFPS,
		IdleAfter:      time.Duration(tc.IdleAfterMs) * time.Millisecond,
		Feed:           feedHub,
		Preview:        preview,
	})
	if err := tracker.Start(); err != nil {
		log.Fatalf("Failed to start camera: %v", err)
	}
	defer tracker.Stop()

	srv := server.New(server.Config{
		Name:    "tracker",
		Feed:    feedHub,
		Preview: preview,
		Status: func() map[string]any {
			return map[string]any{
				"active":  tracker.Active(),
				"viewers": preview.Viewers(),
			}
		},
	})

	if tc.Advertise {
		adv, err := discovery.Advertise(tc.Instance, tc.Port, "/ws")
		if err != nil {
			log.Printf("mDNS advertise failed: %v", err)
		} else {
			defer adv.Shutdown()
		}
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", tc.Port),
		Handler: srv,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	fmt.Printf("Serving tracking feed on ws://localhost%s/ws\n", httpServer.Addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
}
