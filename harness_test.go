package skyline

import (
	"errors"
	"testing"
	"time"
)

// manualScheduler queues callbacks and fires them on demand, standing in
// for the display refresh signal.
type manualScheduler struct {
	pending  []func()
	canceled int
}

func (s *manualScheduler) Schedule(fn func()) (cancel func()) {
	s.pending = append(s.pending, fn)
	idx := len(s.pending) - 1
	return func() {
		if s.pending[idx] != nil {
			s.pending[idx] = nil
			s.canceled++
		}
	}
}

// Fire runs the oldest pending callback, if any.
func (s *manualScheduler) Fire() bool {
	for i, fn := range s.pending {
		if fn != nil {
			s.pending[i] = nil
			fn()
			return true
		}
	}
	return false
}

// PendingCount returns the number of callbacks awaiting fire.
func (s *manualScheduler) PendingCount() int {
	n := 0
	for _, fn := range s.pending {
		if fn != nil {
			n++
		}
	}
	return n
}

// fakeProgram records frame inputs and can be made to fail.
type fakeProgram struct {
	inputs  []FrameInput
	failOn  int // 1-based render call to fail on; 0 = never
	renders int
	closed  bool
}

var _ Program = (*fakeProgram)(nil)

var errBoom = errors.New("boom")

func (p *fakeProgram) Render(dst *Pixmap, in FrameInput) error {
	p.renders++
	if p.failOn != 0 && p.renders == p.failOn {
		return errBoom
	}
	p.inputs = append(p.inputs, in)
	return nil
}

func (p *fakeProgram) Close() { p.closed = true }

// fakeClock advances by a fixed step every read.
type fakeClock struct {
	now  time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

func newTestRenderer(t *testing.T, program Program, opts ...Option) (*Renderer, *manualScheduler) {
	t.Helper()
	sched := &manualScheduler{}
	opts = append(opts, WithProgram(program), WithScheduler(sched))
	r, err := New(opts...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r, sched
}

func TestNewWithoutProgramOrFactory(t *testing.T) {
	orig := Factory()
	t.Cleanup(func() { RegisterProgramFactory(orig) })
	RegisterProgramFactory(nil)

	if _, err := New(); !errors.Is(err, ErrNoProgram) {
		t.Fatalf("New() error = %v, want ErrNoProgram", err)
	}
}

func TestNewUsesRegisteredFactory(t *testing.T) {
	orig := Factory()
	t.Cleanup(func() { RegisterProgramFactory(orig) })

	program := &fakeProgram{}
	RegisterProgramFactory(factoryFunc(func(provider any) (Program, error) {
		return program, nil
	}))

	r, err := New(WithScheduler(&manualScheduler{}))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer func() { _ = r.Close() }()

	if err := r.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
}

// factoryFunc adapts a function to ProgramFactory.
type factoryFunc func(provider any) (Program, error)

func (factoryFunc) Name() string                        { return "test" }
func (f factoryFunc) New(provider any) (Program, error) { return f(provider) }

func TestRenderLoopReschedules(t *testing.T) {
	program := &fakeProgram{}
	r, sched := newTestRenderer(t, program)

	if err := r.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if got := sched.PendingCount(); got != 1 {
		t.Fatalf("after Start: %d pending callbacks, want 1", got)
	}

	for i := 1; i <= 5; i++ {
		if !sched.Fire() {
			t.Fatalf("frame %d: no pending callback", i)
		}
		if got := r.FrameCount(); got != uint64(i) {
			t.Fatalf("after frame %d: FrameCount = %d", i, got)
		}
		if got := sched.PendingCount(); got != 1 {
			t.Fatalf("after frame %d: %d pending callbacks, want 1", i, got)
		}
	}
}

func TestElapsedComesFromStartEpoch(t *testing.T) {
	program := &fakeProgram{}
	clock := &fakeClock{now: time.Unix(1000, 0), step: 16 * time.Millisecond}
	r, sched := newTestRenderer(t, program, WithClock(clock.Now))

	if err := r.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	sched.Fire()
	sched.Fire()

	if len(program.inputs) != 2 {
		t.Fatalf("got %d frame inputs, want 2", len(program.inputs))
	}
	// Start consumed one clock read; frames see 16ms and 32ms.
	if got := program.inputs[0].Elapsed; got != 0.016 {
		t.Errorf("frame 1 Elapsed = %v, want 0.016", got)
	}
	if got := program.inputs[1].Elapsed; got != 0.032 {
		t.Errorf("frame 2 Elapsed = %v, want 0.032", got)
	}
}

func TestFrameInputCarriesParams(t *testing.T) {
	program := &fakeProgram{}
	r, sched := newTestRenderer(t, program,
		WithSpeed(2.5), WithOctaves(3), WithScale(4))

	_ = r.Start()
	sched.Fire()

	in := program.inputs[0]
	if in.Speed != 2.5 || in.Octaves != 3 || in.Scale != 4 {
		t.Errorf("FrameInput = %+v, want speed 2.5, octaves 3, scale 4", in)
	}
}

func TestResizeExactBackingStore(t *testing.T) {
	program := &fakeProgram{}
	r, sched := newTestRenderer(t, program)

	r.SetClientSize(800, 450, 2)
	if w, h := r.BackingSize(); w != 1600 || h != 900 {
		t.Fatalf("BackingSize = %dx%d, want 1600x900", w, h)
	}

	_ = r.Start()
	sched.Fire()

	in := program.inputs[0]
	if in.Width != 1600 || in.Height != 900 {
		t.Errorf("frame rendered at %dx%d, want 1600x900", in.Width, in.Height)
	}
	if f := r.Frame(); f.Width() != 1600 || f.Height() != 900 {
		t.Errorf("frame pixmap is %dx%d, want 1600x900", f.Width(), f.Height())
	}
}

func TestResizeFractionalRounding(t *testing.T) {
	tests := []struct {
		name         string
		cw, ch, dpr  float64
		wantW, wantH int
	}{
		{"integer dpr", 800, 450, 2, 1600, 900},
		{"fractional dpr", 800, 450, 1.5, 1200, 675},
		{"rounds half up", 333, 333, 1.5, 500, 500},
		{"floor of one", 0, 0, 1, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRenderer(t, &fakeProgram{})
			r.SetClientSize(tt.cw, tt.ch, tt.dpr)
			if w, h := r.BackingSize(); w != tt.wantW || h != tt.wantH {
				t.Errorf("BackingSize = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestResizeAppliesAtFrameBoundary(t *testing.T) {
	program := &fakeProgram{}
	r, sched := newTestRenderer(t, program)

	_ = r.Start()
	sched.Fire() // frame 1 at the default backing size

	r.SetClientSize(100, 50, 1)
	sched.Fire() // frame 2 picks up the resize

	if got := program.inputs[0]; got.Width != defaultBackingW {
		t.Errorf("frame 1 width = %d, want default %d", got.Width, defaultBackingW)
	}
	if got := program.inputs[1]; got.Width != 100 || got.Height != 50 {
		t.Errorf("frame 2 at %dx%d, want 100x50", got.Width, got.Height)
	}
}

func TestRenderErrorIsTerminal(t *testing.T) {
	program := &fakeProgram{failOn: 2}
	r, sched := newTestRenderer(t, program)

	_ = r.Start()
	sched.Fire() // ok
	sched.Fire() // fails

	if err := r.Err(); !errors.Is(err, errBoom) {
		t.Fatalf("Err() = %v, want errBoom", err)
	}
	// No further frame callback may be registered after the error.
	if got := sched.PendingCount(); got != 0 {
		t.Errorf("%d callbacks pending after error, want 0", got)
	}
	if got := r.FrameCount(); got != 1 {
		t.Errorf("FrameCount = %d after error, want 1", got)
	}
	if err := r.Start(); !errors.Is(err, errBoom) {
		t.Errorf("Start() after error = %v, want the terminal error", err)
	}
}

func TestCloseCancelsPendingFrame(t *testing.T) {
	program := &fakeProgram{}
	r, sched := newTestRenderer(t, program)

	_ = r.Start()
	sched.Fire()

	if err := r.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if !program.closed {
		t.Error("program not closed on renderer Close")
	}
	if got := sched.canceled; got != 1 {
		t.Errorf("canceled callbacks = %d, want 1", got)
	}

	// A callback that races Close must be a no-op.
	before := r.FrameCount()
	sched.Fire()
	if got := r.FrameCount(); got != before {
		t.Errorf("frame rendered after Close: FrameCount %d -> %d", before, got)
	}
}

func TestCloseImmediatelyAfterStart(t *testing.T) {
	// Mount then unmount before any frame fires: nothing renders, no
	// callback survives.
	var frames int
	program := &fakeProgram{}
	r, sched := newTestRenderer(t, program)
	r.OnFrame(func(*Pixmap) { frames++ })

	_ = r.Start()
	_ = r.Close()

	sched.Fire()
	if frames != 0 {
		t.Errorf("%d OnFrame callbacks after immediate Close, want 0", frames)
	}
	if program.renders != 0 {
		t.Errorf("%d renders after immediate Close, want 0", program.renders)
	}
}

func TestCloseIdempotent(t *testing.T) {
	r, _ := newTestRenderer(t, &fakeProgram{})
	if err := r.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if err := r.Start(); !errors.Is(err, ErrRendererClosed) {
		t.Errorf("Start() after Close = %v, want ErrRendererClosed", err)
	}
}

func TestOnFrameReceivesPixmap(t *testing.T) {
	var got *Pixmap
	r, sched := newTestRenderer(t, &fakeProgram{})
	r.OnFrame(func(p *Pixmap) { got = p })

	_ = r.Start()
	sched.Fire()

	if got == nil {
		t.Fatal("OnFrame not invoked")
	}
	if got.Width() != defaultBackingW || got.Height() != defaultBackingH {
		t.Errorf("frame is %dx%d, want default %dx%d",
			got.Width(), got.Height(), defaultBackingW, defaultBackingH)
	}
}

func TestStartIdempotentWhileRunning(t *testing.T) {
	r, sched := newTestRenderer(t, &fakeProgram{})
	_ = r.Start()
	_ = r.Start()
	if got := sched.PendingCount(); got != 1 {
		t.Errorf("%d pending callbacks after double Start, want 1", got)
	}
}
