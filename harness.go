package skyline

import (
	"math"
	"sync"
	"time"
)

// Renderer is the host harness for the procedural scene: it owns the
// render program, the animation clock, the backing-store size, and the
// frame loop. Each Renderer instance owns its resources exclusively and
// destroys them together on Close.
//
// The loop is one self-rescheduling callback, not a fixed-rate timer:
// after each frame the renderer asks the scheduler for exactly one more
// callback, and stops asking on Close or on a render error. The resize
// listener may run concurrently with the loop; both serialize on the
// renderer mutex and pending sizes are applied only at frame start, so
// an in-flight frame never observes a partial resolution.
type Renderer struct {
	mu sync.Mutex

	params  Params
	program Program
	sched   FrameScheduler
	now     func() time.Time

	start       time.Time
	running     bool
	closed      bool
	err         error
	cancelFrame func()

	frame              *Pixmap
	backingW, backingH int
	pendingW, pendingH int
	resizePending      bool

	onFrame    func(*Pixmap)
	frameCount uint64
}

// defaultBackingW/H size the frame buffer until the host reports a
// client size.
const (
	defaultBackingW = 640
	defaultBackingH = 360
)

// New creates a Renderer.
//
// Program resolution order: the program from WithProgram if set,
// otherwise the registered factory (blank-import skyline/gpu). With no
// program and no factory, New returns ErrNoProgram.
//
// New fails fast: environment acquisition, shader compilation, and
// program linking all happen here, and their errors
// (ErrEnvironmentUnsupported, ErrCompileFailure, ErrLinkFailure) are
// terminal — callers should surface them in place of the rendering
// region rather than retry.
func New(opts ...Option) (*Renderer, error) {
	o := defaultRendererOptions()
	for _, opt := range opts {
		opt(&o)
	}

	program := o.program
	if program == nil {
		f := Factory()
		if f == nil {
			return nil, ErrNoProgram
		}
		p, err := f.New(o.provider)
		if err != nil {
			return nil, err
		}
		program = p
	}

	sched := o.scheduler
	if sched == nil {
		sched = NewTickScheduler(0)
	}

	return &Renderer{
		params:   o.params,
		program:  program,
		sched:    sched,
		now:      o.now,
		backingW: defaultBackingW,
		backingH: defaultBackingH,
	}, nil
}

// Start fixes the animation start epoch and schedules the first frame.
// Start is idempotent while the renderer is healthy; it returns the
// terminal error if one is already set.
func (r *Renderer) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRendererClosed
	}
	if r.err != nil {
		return r.err
	}
	if r.running {
		return nil
	}

	r.start = r.now()
	r.running = true
	r.cancelFrame = r.sched.Schedule(r.renderFrame)
	return nil
}

// Close cancels the pending frame callback and releases the program.
// No frame callback fires after Close returns. Close is idempotent.
func (r *Renderer) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.running = false
	cancel := r.cancelFrame
	r.cancelFrame = nil
	program := r.program
	r.program = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if program != nil {
		program.Close()
	}
	return nil
}

// SetClientSize reports the CSS-pixel size of the rendering region and
// the device pixel ratio. The backing store becomes exactly
// round(clientSize * devicePixelRatio), applied at the next frame
// boundary. Safe to call at any time relative to the render loop.
func (r *Renderer) SetClientSize(clientW, clientH, devicePixelRatio float64) {
	w := int(math.Round(clientW * devicePixelRatio))
	h := int(math.Round(clientH * devicePixelRatio))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.pendingW = w
	r.pendingH = h
	r.resizePending = true
}

// BackingSize returns the backing-store pixel dimensions the next frame
// will render at.
func (r *Renderer) BackingSize() (width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.resizePending {
		return r.pendingW, r.pendingH
	}
	return r.backingW, r.backingH
}

// OnFrame sets a callback invoked with the frame pixmap after every
// successful frame. The pixmap is reused between frames; callers must
// not retain it across callbacks.
func (r *Renderer) OnFrame(fn func(*Pixmap)) {
	r.mu.Lock()
	r.onFrame = fn
	r.mu.Unlock()
}

// Err returns the terminal error, or nil while the renderer is healthy.
func (r *Renderer) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Params returns the renderer configuration.
func (r *Renderer) Params() Params {
	return r.params
}

// Label returns the accessibility label for the rendering region.
func (r *Renderer) Label() string {
	return r.params.Label
}

// FrameCount returns the number of frames rendered so far.
func (r *Renderer) FrameCount() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frameCount
}

// Frame returns the most recently rendered frame, or nil before the
// first frame completes.
func (r *Renderer) Frame() *Pixmap {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frame
}

// renderFrame is the self-rescheduling frame callback.
func (r *Renderer) renderFrame() {
	r.mu.Lock()
	r.cancelFrame = nil

	if r.closed || r.err != nil || !r.running {
		r.mu.Unlock()
		return
	}

	// Apply a pending resize before touching the frame buffer.
	if r.resizePending {
		r.backingW = r.pendingW
		r.backingH = r.pendingH
		r.resizePending = false
		r.frame = nil
	}
	if r.frame == nil {
		r.frame = NewPixmap(r.backingW, r.backingH)
	}

	in := FrameInput{
		Elapsed: r.now().Sub(r.start).Seconds(),
		Width:   r.backingW,
		Height:  r.backingH,
		Speed:   r.params.Speed,
		Octaves: r.params.Octaves,
		Scale:   r.params.Scale,
	}

	if err := r.program.Render(r.frame, in); err != nil {
		// Terminal: record the error and stop rescheduling.
		r.err = err
		r.running = false
		r.mu.Unlock()
		Logger().Warn("skyline: render failed, stopping loop", "err", err)
		return
	}

	r.frameCount++
	frame := r.frame
	cb := r.onFrame
	r.cancelFrame = r.sched.Schedule(r.renderFrame)
	r.mu.Unlock()

	if cb != nil {
		cb(frame)
	}
}
