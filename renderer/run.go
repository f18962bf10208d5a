package renderer

import (
	"context"
	"fmt"

	"github.com/richinsley/goblend/graphics"
	"github.com/richinsley/goblend/logger"
)

// Run drives Tick from the context clock until the window closes or ctx is
// cancelled.
func (r *Renderer) Run(ctx context.Context, c graphics.Context) error {
	last := c.Time()
	for !c.ShouldClose() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		now := c.Time()
		r.Tick(now - last)
		last = now
		c.EndFrame()
	}
	return nil
}

// Readback copies the rendered framebuffer out of the device.
type Readback interface {
	ReadPixels(width, height int) ([]byte, error)
}

// FrameSink consumes tightly packed RGBA frames, top row first.
type FrameSink interface {
	WriteFrame(pixels []byte) error
}

// Frame is a single rendered frame ready for encoding.
type Frame struct {
	Pixels []byte
	PTS    int64
}

const numBuffers = 3

// RunOffscreen renders frames at a fixed step of 1/fps and hands each one to
// sink. Rendering stays on the calling goroutine; the sink is fed from a
// second one.
func (r *Renderer) RunOffscreen(ctx context.Context, rb Readback, sink FrameSink, frames, fps int) error {
	if frames <= 0 || fps <= 0 {
		return fmt.Errorf("invalid offscreen run: %d frames at %d fps", frames, fps)
	}

	frameChan := make(chan *Frame, numBuffers)
	encoderDone := make(chan error, 1)
	go runEncoder(sink, frameChan, encoderDone)

	step := 1.0 / float64(fps)
	var renderErr error
	for i := 0; i < frames; i++ {
		if err := ctx.Err(); err != nil {
			renderErr = err
			break
		}

		r.Tick(step)
		w, h := r.surface.GetFramebufferSize()
		pixels, err := rb.ReadPixels(w, h)
		if err != nil {
			renderErr = fmt.Errorf("failed to read frame %d: %w", i, err)
			break
		}
		frameChan <- &Frame{Pixels: pixels, PTS: int64(i)}
	}
	close(frameChan)

	encErr := <-encoderDone
	if renderErr != nil {
		return renderErr
	}
	return encErr
}

// runEncoder drains frameChan into sink. After the first write error the
// remaining frames are dropped so the producer never blocks.
func runEncoder(sink FrameSink, frameChan <-chan *Frame, done chan<- error) {
	var firstErr error
	for frame := range frameChan {
		if firstErr != nil {
			continue
		}
		if err := sink.WriteFrame(frame.Pixels); err != nil {
			logger.Logger().Error("failed to write frame", "pts", frame.PTS, "err", err)
			firstErr = fmt.Errorf("frame %d: %w", frame.PTS, err)
		}
	}
	done <- firstErr
}
