package skyline

import "time"

// Option configures a Renderer during creation.
//
// Example:
//
//	// Defaults: speed 1, 5 octaves, scale 2.
//	r, err := skyline.New()
//
//	// Slow drift over coarse terrain:
//	r, err := skyline.New(skyline.WithSpeed(0.4), skyline.WithOctaves(3))
type Option func(*rendererOptions)

// rendererOptions holds optional configuration for Renderer creation.
type rendererOptions struct {
	params    Params
	program   Program
	scheduler FrameScheduler
	now       func() time.Time
	provider  any
}

func defaultRendererOptions() rendererOptions {
	return rendererOptions{
		params: DefaultParams(),
		now:    time.Now,
	}
}

// WithSpeed sets the horizontal scroll rate multiplier.
func WithSpeed(speed float64) Option {
	return func(o *rendererOptions) {
		o.params.Speed = speed
	}
}

// WithOctaves sets the number of FBM layers. Values above MaxOctaves
// are truncated inside the accumulation loop; values at or below zero
// produce a flat height field.
func WithOctaves(octaves int) Option {
	return func(o *rendererOptions) {
		o.params.Octaves = octaves
	}
}

// WithScale sets the base spatial frequency of the height field.
func WithScale(scale float64) Option {
	return func(o *rendererOptions) {
		o.params.Scale = scale
	}
}

// WithLabel sets the accessibility label for the rendering region.
func WithLabel(label string) Option {
	return func(o *rendererOptions) {
		o.params.Label = label
	}
}

// WithProgram sets an explicit render program, bypassing the registered
// factory. Use this for dependency injection of the CPU reference
// program or custom programs.
//
//	r, err := skyline.New(skyline.WithProgram(skyline.NewSoftwareProgram()))
func WithProgram(p Program) Option {
	return func(o *rendererOptions) {
		o.program = p
	}
}

// WithScheduler sets a custom frame scheduler. The default schedules at
// roughly display refresh rate.
func WithScheduler(s FrameScheduler) Option {
	return func(o *rendererOptions) {
		o.scheduler = s
	}
}

// WithClock sets the time source used for the animation clock.
// Tests inject a deterministic clock here.
func WithClock(now func() time.Time) Option {
	return func(o *rendererOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithDeviceProvider passes a gpucontext.DeviceProvider to the program
// factory, enabling GPU device sharing with a host application. Ignored
// when an explicit program is set via WithProgram.
func WithDeviceProvider(provider any) Option {
	return func(o *rendererOptions) {
		o.provider = provider
	}
}
