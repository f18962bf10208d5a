// Package recorder encodes rendered frames to a video file by piping raw
// RGBA into an ffmpeg process.
package recorder

import (
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/richinsley/goblend/logger"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Options configures an encode.
type Options struct {
	Output     string
	FFmpegPath string
	Width      int
	Height     int
	FPS        int
	// Codec is "h264" (the default) or "hevc".
	Codec string
}

func (o Options) validate() error {
	switch {
	case o.Output == "":
		return fmt.Errorf("recorder: no output file")
	case o.Width <= 0 || o.Height <= 0:
		return fmt.Errorf("recorder: invalid frame size %dx%d", o.Width, o.Height)
	case o.FPS <= 0:
		return fmt.Errorf("recorder: invalid frame rate %d", o.FPS)
	case o.Codec != "" && o.Codec != "h264" && o.Codec != "hevc":
		return fmt.Errorf("recorder: unsupported codec %q", o.Codec)
	}
	return nil
}

// frameSize is the byte length of one packed RGBA frame.
func (o Options) frameSize() int {
	return o.Width * o.Height * 4
}

// videoEncoder picks the software encoder for the codec.
func videoEncoder(codec string) string {
	if codec == "hevc" {
		return "libx265"
	}
	return "libx264"
}

func (o Options) args() (inputArgs ffmpeg.KwArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"f":       "rawvideo",
		"pix_fmt": "rgba",
		"s":       fmt.Sprintf("%dx%d", o.Width, o.Height),
		"r":       o.FPS,
	}
	outputArgs = ffmpeg.KwArgs{
		"c:v":     videoEncoder(o.Codec),
		"pix_fmt": "yuv420p",
	}
	if o.Codec == "hevc" && len(o.Output) > 4 && o.Output[len(o.Output)-4:] == ".mp4" {
		outputArgs["tag:v"] = "hvc1"
	}
	return
}

// Recorder is a frame sink backed by an encoder process.
type Recorder struct {
	opts   Options
	pw     *io.PipeWriter
	errc   chan error
	frames int64

	closeOnce sync.Once
	closeErr  error
}

// Start launches ffmpeg and returns a recorder ready for frames.
func Start(opts Options) (*Recorder, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	inputArgs, outputArgs := opts.args()
	logger.Logger().Info("starting encoder",
		"output", opts.Output, "size", inputArgs["s"], "fps", opts.FPS, "encoder", outputArgs["c:v"], "os", runtime.GOOS)

	return newRecorder(opts, func(r io.Reader) error {
		ffmpegCmd := ffmpeg.Input("pipe:", inputArgs).
			Output(opts.Output, outputArgs).
			OverWriteOutput().WithInput(r).ErrorToStdOut()
		if opts.FFmpegPath != "" {
			ffmpegCmd = ffmpegCmd.SetFfmpegPath(opts.FFmpegPath)
		}
		return ffmpegCmd.Run()
	}), nil
}

// newRecorder runs encode on its own goroutine, reading the frame stream.
func newRecorder(opts Options, encode func(io.Reader) error) *Recorder {
	pr, pw := io.Pipe()
	rec := &Recorder{opts: opts, pw: pw, errc: make(chan error, 1)}
	go func() {
		err := encode(pr)
		if err != nil {
			pr.CloseWithError(fmt.Errorf("encoder exited: %w", err))
		} else {
			pr.Close()
		}
		rec.errc <- err
	}()
	return rec
}

// WriteFrame sends one packed RGBA frame to the encoder.
func (r *Recorder) WriteFrame(pixels []byte) error {
	if len(pixels) != r.opts.frameSize() {
		return fmt.Errorf("recorder: frame is %d bytes, want %d", len(pixels), r.opts.frameSize())
	}
	if _, err := r.pw.Write(pixels); err != nil {
		return err
	}
	r.frames++
	return nil
}

// Frames returns how many frames have been written.
func (r *Recorder) Frames() int64 {
	return r.frames
}

// Close ends the stream and waits for the encoder to finish.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		r.pw.Close()
		r.closeErr = <-r.errc
		logger.Logger().Info("encoder finished", "output", r.opts.Output, "frames", r.frames, "err", r.closeErr)
	})
	return r.closeErr
}
