// Package options holds the command-line configuration. Values come from
// flags, with an optional TOML file supplying defaults for flags that were
// not given explicitly.
package options

import (
	"flag"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
)

type DemoOptions struct {
	Width        *int
	Height       *int
	ConfigFile   *string
	ManifestFile *string // YAML asset manifest; empty uses the built-in one
	AssetDir     *string // base directory for relative asset paths
	CacheDir     *string // download cache for remote assets
	Progress     *bool
	Record       *bool // render offscreen to OutputFile instead of a window
	Frames       *int
	FPS          *int
	OutputFile   *string
	FFMPEGPath   *string
	Codec        *string
	Verbose      *bool
	PrintConfig  *bool
}

// FileConfig is the layout of the TOML config file.
type FileConfig struct {
	Verbose bool         `toml:"verbose"`
	Window  WindowConfig `toml:"window"`
	Assets  AssetsConfig `toml:"assets"`
	Record  RecordConfig `toml:"record"`
}

type WindowConfig struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

type AssetsConfig struct {
	Manifest string `toml:"manifest"`
	Dir      string `toml:"dir"`
	Cache    string `toml:"cache"`
	Progress bool   `toml:"progress"`
}

type RecordConfig struct {
	Enabled bool   `toml:"enabled"`
	Frames  int    `toml:"frames"`
	FPS     int    `toml:"fps"`
	Output  string `toml:"output"`
	FFmpeg  string `toml:"ffmpeg"`
	Codec   string `toml:"codec"`
}

// configKey maps a flag name to its TOML key path.
var configKey = map[string][]string{
	"v":        {"verbose"},
	"width":    {"window", "width"},
	"height":   {"window", "height"},
	"manifest": {"assets", "manifest"},
	"assets":   {"assets", "dir"},
	"cache":    {"assets", "cache"},
	"progress": {"assets", "progress"},
	"record":   {"record", "enabled"},
	"frames":   {"record", "frames"},
	"fps":      {"record", "fps"},
	"output":   {"record", "output"},
	"ffmpeg":   {"record", "ffmpeg"},
	"codec":    {"record", "codec"},
}

func (c *FileConfig) value(flagName string) any {
	switch flagName {
	case "v":
		return c.Verbose
	case "width":
		return c.Window.Width
	case "height":
		return c.Window.Height
	case "manifest":
		return c.Assets.Manifest
	case "assets":
		return c.Assets.Dir
	case "cache":
		return c.Assets.Cache
	case "progress":
		return c.Assets.Progress
	case "record":
		return c.Record.Enabled
	case "frames":
		return c.Record.Frames
	case "fps":
		return c.Record.FPS
	case "output":
		return c.Record.Output
	case "ffmpeg":
		return c.Record.FFmpeg
	case "codec":
		return c.Record.Codec
	}
	return nil
}

// NewFlagSet registers the demo flags on a new flag set.
func NewFlagSet(name string) (*flag.FlagSet, *DemoOptions) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	o := &DemoOptions{
		Width:        fs.Int("width", 960, "Width of the window or recording"),
		Height:       fs.Int("height", 640, "Height of the window or recording"),
		ConfigFile:   fs.String("config", "", "TOML config file supplying defaults"),
		ManifestFile: fs.String("manifest", "", "YAML asset manifest (default: built-in sprite0)"),
		AssetDir:     fs.String("assets", ".", "Base directory for relative asset paths"),
		CacheDir:     fs.String("cache", "", "Cache directory for downloaded assets (default: user cache)"),
		Progress:     fs.Bool("progress", true, "Show download progress for remote assets"),
		Record:       fs.Bool("record", false, "Render offscreen and encode to -output"),
		Frames:       fs.Int("frames", 300, "Number of frames to record"),
		FPS:          fs.Int("fps", 60, "Frames per second for recording"),
		OutputFile:   fs.String("output", "output.mp4", "Output file name for recording"),
		FFMPEGPath:   fs.String("ffmpeg", "", "Path to ffmpeg executable"),
		Codec:        fs.String("codec", "h264", "Video codec for recording (h264, hevc)"),
		Verbose:      fs.Bool("v", false, "Enable debug logging"),
		PrintConfig:  fs.Bool("print-config", false, "Print the effective configuration as TOML and exit"),
	}
	return fs, o
}

// Load parses args, applies the config file if one is named, and validates
// the result.
func Load(args []string) (*DemoOptions, error) {
	fs, o := NewFlagSet("goblend")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *o.ConfigFile != "" {
		if err := o.applyConfigFile(fs, *o.ConfigFile); err != nil {
			return nil, err
		}
	}

	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *DemoOptions) applyConfigFile(fs *flag.FlagSet, path string) error {
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}

	explicit := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	for name, key := range configKey {
		if explicit[name] || !md.IsDefined(key...) {
			continue
		}
		if err := fs.Set(name, fmt.Sprint(cfg.value(name))); err != nil {
			return fmt.Errorf("config %s: %s: %w", path, name, err)
		}
	}
	return nil
}

// Validate checks the option values for consistency.
func (o *DemoOptions) Validate() error {
	switch {
	case *o.Width <= 0 || *o.Height <= 0:
		return fmt.Errorf("invalid size %dx%d", *o.Width, *o.Height)
	case *o.FPS <= 0:
		return fmt.Errorf("invalid fps %d", *o.FPS)
	case *o.Codec != "h264" && *o.Codec != "hevc":
		return fmt.Errorf("unsupported codec %q", *o.Codec)
	}
	if *o.Record {
		if *o.Frames <= 0 {
			return fmt.Errorf("invalid frame count %d", *o.Frames)
		}
		if *o.OutputFile == "" {
			return fmt.Errorf("record mode needs an output file")
		}
	}
	return nil
}

// Config returns the effective options in config file form.
func (o *DemoOptions) Config() FileConfig {
	return FileConfig{
		Verbose: *o.Verbose,
		Window:  WindowConfig{Width: *o.Width, Height: *o.Height},
		Assets: AssetsConfig{
			Manifest: *o.ManifestFile,
			Dir:      *o.AssetDir,
			Cache:    *o.CacheDir,
			Progress: *o.Progress,
		},
		Record: RecordConfig{
			Enabled: *o.Record,
			Frames:  *o.Frames,
			FPS:     *o.FPS,
			Output:  *o.OutputFile,
			FFmpeg:  *o.FFMPEGPath,
			Codec:   *o.Codec,
		},
	}
}

// WriteConfig encodes the effective options as TOML.
func (o *DemoOptions) WriteConfig(w io.Writer) error {
	return toml.NewEncoder(w).Encode(o.Config())
}
