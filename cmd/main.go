package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime"

	"github.com/richinsley/goblend/assets"
	"github.com/richinsley/goblend/geometry"
	"github.com/richinsley/goblend/gldevice"
	"github.com/richinsley/goblend/glfwcontext"
	"github.com/richinsley/goblend/logger"
	"github.com/richinsley/goblend/options"
	"github.com/richinsley/goblend/procedural"
	"github.com/richinsley/goblend/recorder"
	"github.com/richinsley/goblend/renderer"
)

func init() {
	runtime.LockOSThread()
}

func newLoader(opts *options.DemoOptions) *assets.Loader {
	loader := assets.NewLoader(*opts.AssetDir)
	loader.CacheDir = *opts.CacheDir
	if loader.CacheDir == "" {
		dir, err := assets.DefaultCacheDir()
		if err != nil {
			slog.Warn("media cache disabled", "err", err)
		}
		loader.CacheDir = dir
	}
	if *opts.Progress {
		loader.Progress = os.Stderr
	}
	return loader
}

func loadManifest(opts *options.DemoOptions) (assets.Manifest, error) {
	if *opts.ManifestFile == "" {
		return assets.DefaultManifest(), nil
	}
	return assets.LoadManifestFile(*opts.ManifestFile)
}

func main() {
	opts, err := options.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("Invalid options: %v", err)
	}
	if *opts.PrintConfig {
		if err := opts.WriteConfig(os.Stdout); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		return
	}

	level := slog.LevelInfo
	if *opts.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	logger.SetLogger(slog.Default())

	manifest, err := loadManifest(opts)
	if err != nil {
		log.Fatalf("Failed to load manifest: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := glfwcontext.InitGraphics(); err != nil {
		log.Fatalf("Failed to initialize graphics: %v", err)
	}
	defer glfwcontext.TerminateGraphics()

	// Record mode draws into a hidden window's framebuffer.
	win, err := glfwcontext.New(*opts.Width, *opts.Height, !*opts.Record)
	if err != nil {
		log.Fatalf("Failed to create window: %v", err)
	}
	defer win.Shutdown()
	win.MakeCurrent()

	dev, err := gldevice.New(gldevice.Options{Debug: *opts.Verbose})
	if err != nil {
		log.Fatalf("Failed to create device: %v", err)
	}

	bg, err := geometry.BuildBackground(dev)
	if err != nil {
		log.Fatalf("Failed to build background: %v", err)
	}
	sprite, err := geometry.BuildSprite(dev)
	if err != nil {
		log.Fatalf("Failed to build sprite: %v", err)
	}
	bgTex, err := procedural.BuildBackgroundTexture(dev)
	if err != nil {
		log.Fatalf("Failed to build background texture: %v", err)
	}

	r, err := renderer.New(dev, win, bg, sprite, bgTex)
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}

	pending := newLoader(opts).Load(ctx, manifest)
	r.AttachSprite(pending, assets.SpriteKey)

	if !*opts.Record {
		slog.Info("Starting interactive render loop...")
		if err := r.Run(ctx, win); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatalf("Render loop failed: %v", err)
		}
		return
	}

	// A recording should show the sprite from the first frame, so wait for
	// the load here. A failed load still records the background.
	if _, err := pending.Wait(ctx); err != nil {
		slog.Warn("recording without sprite", "err", err)
	}

	width, height := win.GetFramebufferSize()
	rec, err := recorder.Start(recorder.Options{
		Output:     *opts.OutputFile,
		FFmpegPath: *opts.FFMPEGPath,
		Width:      width,
		Height:     height,
		FPS:        *opts.FPS,
		Codec:      *opts.Codec,
	})
	if err != nil {
		log.Fatalf("Failed to start recorder: %v", err)
	}

	slog.Info("Starting offscreen render loop...", "frames", *opts.Frames, "fps", *opts.FPS)
	runErr := r.RunOffscreen(ctx, dev, rec, *opts.Frames, *opts.FPS)
	if err := rec.Close(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		log.Fatalf("Offscreen rendering failed: %v", runErr)
	}
	slog.Info("Successfully rendered", "output", *opts.OutputFile, "frames", rec.Frames())
}
