package renderer

import (
	"context"
	"errors"
	"math"
	"testing"
)

type fakeContext struct {
	frames    int
	maxFrames int
	clock     float64
	step      float64
	cancel    func()
	cancelAt  int
}

func (c *fakeContext) GetFramebufferSize() (int, int) { return 640, 480 }
func (c *fakeContext) MakeCurrent()                   {}
func (c *fakeContext) Shutdown()                      {}
func (c *fakeContext) ShouldClose() bool              { return c.frames >= c.maxFrames }
func (c *fakeContext) Time() float64 {
	c.clock += c.step
	return c.clock
}
func (c *fakeContext) EndFrame() {
	c.frames++
	if c.cancel != nil && c.frames == c.cancelAt {
		c.cancel()
	}
}

func TestRunUntilClose(t *testing.T) {
	f := newFixture(t)
	c := &fakeContext{maxFrames: 4, step: 0.25}
	if err := f.r.Run(context.Background(), c); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if c.frames != 4 {
		t.Errorf("rendered %d frames, want 4", c.frames)
	}
	if n := f.dev.Count("Draw"); n != 4 {
		t.Errorf("Draw called %d times, want 4", n)
	}
	if math.Abs(f.r.Time()-1.0) > 1e-12 {
		t.Errorf("Time() = %v, want 1", f.r.Time())
	}
}

func TestRunCancelled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	c := &fakeContext{maxFrames: 100, step: 0.1, cancel: cancel, cancelAt: 2}
	if err := f.r.Run(ctx, c); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run err = %v, want context.Canceled", err)
	}
	if c.frames != 2 {
		t.Errorf("rendered %d frames, want 2", c.frames)
	}
}

type fakeReadback struct {
	sizes [][2]int
	err   error
}

func (rb *fakeReadback) ReadPixels(w, h int) ([]byte, error) {
	if rb.err != nil {
		return nil, rb.err
	}
	rb.sizes = append(rb.sizes, [2]int{w, h})
	return make([]byte, w*h*4), nil
}

type fakeSink struct {
	frames [][]byte
	err    error
}

func (s *fakeSink) WriteFrame(pix []byte) error {
	if s.err != nil {
		return s.err
	}
	s.frames = append(s.frames, pix)
	return nil
}

func TestRunOffscreen(t *testing.T) {
	f := newFixture(t)
	rb := &fakeReadback{}
	sink := &fakeSink{}
	if err := f.r.RunOffscreen(context.Background(), rb, sink, 10, 25); err != nil {
		t.Fatalf("RunOffscreen: %v", err)
	}
	if len(sink.frames) != 10 {
		t.Fatalf("sink got %d frames, want 10", len(sink.frames))
	}
	if len(sink.frames[0]) != 640*480*4 {
		t.Errorf("frame size = %d", len(sink.frames[0]))
	}
	if rb.sizes[0] != [2]int{640, 480} {
		t.Errorf("readback size = %v", rb.sizes[0])
	}
	if math.Abs(f.r.Time()-0.4) > 1e-9 {
		t.Errorf("Time() = %v, want 0.4", f.r.Time())
	}
}

func TestRunOffscreenErrors(t *testing.T) {
	boom := errors.New("boom")

	f := newFixture(t)
	if err := f.r.RunOffscreen(context.Background(), &fakeReadback{}, &fakeSink{}, 0, 30); err == nil {
		t.Error("zero frames accepted")
	}

	f = newFixture(t)
	err := f.r.RunOffscreen(context.Background(), &fakeReadback{err: boom}, &fakeSink{}, 5, 30)
	if !errors.Is(err, boom) {
		t.Errorf("readback failure: err = %v", err)
	}
	if n := f.dev.Count("Draw"); n != 1 {
		t.Errorf("kept rendering after readback failure: %d draws", n)
	}

	f = newFixture(t)
	err = f.r.RunOffscreen(context.Background(), &fakeReadback{}, &fakeSink{err: boom}, 5, 30)
	if !errors.Is(err, boom) {
		t.Errorf("sink failure: err = %v", err)
	}

	f = newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = f.r.RunOffscreen(ctx, &fakeReadback{}, &fakeSink{}, 5, 30)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled run: err = %v", err)
	}
}
