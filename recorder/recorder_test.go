package recorder

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestOptionsValidate(t *testing.T) {
	good := Options{Output: "out.mp4", Width: 4, Height: 2, FPS: 30}
	if err := good.validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	bad := []Options{
		{Width: 4, Height: 2, FPS: 30},
		{Output: "out.mp4", Width: 0, Height: 2, FPS: 30},
		{Output: "out.mp4", Width: 4, Height: 2},
		{Output: "out.mp4", Width: 4, Height: 2, FPS: 30, Codec: "vp9"},
	}
	for i, o := range bad {
		if err := o.validate(); err == nil {
			t.Errorf("case %d: invalid options accepted: %+v", i, o)
		}
	}
	if _, err := Start(bad[0]); err == nil {
		t.Error("Start accepted invalid options")
	}
}

func TestArgs(t *testing.T) {
	in, out := Options{Output: "demo.mp4", Width: 640, Height: 480, FPS: 60}.args()
	if in["f"] != "rawvideo" || in["pix_fmt"] != "rgba" {
		t.Errorf("input format = %v", in)
	}
	if in["s"] != "640x480" {
		t.Errorf("input size = %v", in["s"])
	}
	if in["r"] != 60 {
		t.Errorf("input rate = %v", in["r"])
	}
	if out["c:v"] != "libx264" || out["pix_fmt"] != "yuv420p" {
		t.Errorf("output args = %v", out)
	}
	if _, ok := out["tag:v"]; ok {
		t.Error("h264 output tagged as hvc1")
	}

	_, out = Options{Output: "demo.mp4", Width: 2, Height: 2, FPS: 1, Codec: "hevc"}.args()
	if out["c:v"] != "libx265" || out["tag:v"] != "hvc1" {
		t.Errorf("hevc output args = %v", out)
	}
}

func TestRecorderStreamsFrames(t *testing.T) {
	var got bytes.Buffer
	opts := Options{Output: "x.mp4", Width: 2, Height: 1, FPS: 30}
	rec := newRecorder(opts, func(r io.Reader) error {
		_, err := io.Copy(&got, r)
		return err
	})

	frame := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	for i := 0; i < 3; i++ {
		if err := rec.WriteFrame(frame); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
	}
	if err := rec.WriteFrame([]byte{1}); err == nil {
		t.Error("short frame accepted")
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := rec.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if rec.Frames() != 3 {
		t.Errorf("Frames() = %d, want 3", rec.Frames())
	}
	if got.Len() != 3*len(frame) {
		t.Errorf("encoder read %d bytes, want %d", got.Len(), 3*len(frame))
	}
}

func TestRecorderEncoderFailure(t *testing.T) {
	boom := errors.New("ffmpeg not found")
	rec := newRecorder(Options{Output: "x.mp4", Width: 1, Height: 1, FPS: 1}, func(io.Reader) error {
		return boom
	})

	// The write blocks until the encoder goroutine has closed the pipe.
	if err := rec.WriteFrame([]byte{0, 0, 0, 0}); !errors.Is(err, boom) {
		t.Errorf("WriteFrame after failure: err = %v", err)
	}
	if err := rec.Close(); !errors.Is(err, boom) {
		t.Fatalf("Close err = %v, want %v", err, boom)
	}
	if rec.Frames() != 0 {
		t.Errorf("Frames() = %d, want 0", rec.Frames())
	}
}
