package graphics

// Surface is anything that can report the size of the framebuffer being drawn to.
type Surface interface {
	GetFramebufferSize() (int, int)
}

// Context defines the interface for an OpenGL context.
type Context interface {
	Surface
	MakeCurrent()
	Shutdown()
	ShouldClose() bool
	EndFrame()
	Time() float64
}
