// Command skylinedemo previews the procedural terrain scene.
//
// By default it animates the scene live in the terminal. With -png it
// renders a single frame to a file instead:
//
//	skylinedemo                     # live terminal preview, q to quit
//	skylinedemo -octaves 3 -speed 2 # coarser, faster terrain
//	skylinedemo -png out.png -width 1280 -height 720 -at 12.5
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"log"

	"github.com/gdamore/tcell/v2"
	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/skyline"

	_ "github.com/gogpu/skyline/gpu" // register the GPU program factory
)

// supersample renders at twice the presented resolution; the downscale
// in blit doubles as cheap anti-aliasing.
const supersample = 2.0

func main() {
	var (
		speed   = flag.Float64("speed", skyline.DefaultSpeed, "horizontal scroll rate multiplier")
		octaves = flag.Int("octaves", skyline.DefaultOctaves, "FBM layers (capped at 6)")
		scale   = flag.Float64("scale", skyline.DefaultScale, "base spatial frequency")
		useGPU  = flag.Bool("gpu", false, "render on the GPU instead of the CPU reference")
		pngPath = flag.String("png", "", "render one frame to this PNG file and exit")
		width   = flag.Int("width", 1280, "snapshot width in pixels (-png only)")
		height  = flag.Int("height", 720, "snapshot height in pixels (-png only)")
		at      = flag.Float64("at", 0, "snapshot animation time in seconds (-png only)")
	)
	flag.Parse()

	opts := []skyline.Option{
		skyline.WithSpeed(*speed),
		skyline.WithOctaves(*octaves),
		skyline.WithScale(*scale),
	}
	if !*useGPU {
		opts = append(opts, skyline.WithProgram(skyline.NewSoftwareProgram()))
	}

	var err error
	if *pngPath != "" {
		err = snapshot(*pngPath, *width, *height, *at, *useGPU, *speed, *octaves, *scale)
	} else {
		err = runTerminal(opts)
	}
	if err != nil {
		reportError(err)
	}
}

// reportError is the CLI's stand-in for the error panel a host UI would
// show in place of the rendering surface.
func reportError(err error) {
	switch {
	case errors.Is(err, skyline.ErrEnvironmentUnsupported):
		log.Fatalf("no accelerated rendering context available: %v", err)
	case errors.Is(err, skyline.ErrCompileFailure), errors.Is(err, skyline.ErrLinkFailure):
		log.Fatalf("shader program failed to build: %v", err)
	default:
		log.Fatal(err)
	}
}

// snapshot renders a single frame without the animation loop.
func snapshot(path string, width, height int, at float64, useGPU bool, speed float64, octaves int, scale float64) error {
	var program skyline.Program
	if useGPU {
		f := skyline.Factory()
		if f == nil {
			return skyline.ErrNoProgram
		}
		p, err := f.New(nil)
		if err != nil {
			return err
		}
		program = p
	} else {
		program = skyline.NewSoftwareProgram()
	}
	defer program.Close()

	frame := skyline.NewPixmap(width, height)
	in := skyline.FrameInput{
		Elapsed: at,
		Width:   width,
		Height:  height,
		Speed:   speed,
		Octaves: octaves,
		Scale:   scale,
	}
	if err := program.Render(frame, in); err != nil {
		return err
	}
	if err := frame.SavePNG(path); err != nil {
		return err
	}
	fmt.Printf("snapshot saved to %s (%dx%d, t=%.2fs)\n", path, width, height, at)
	return nil
}

// runTerminal animates the scene in the terminal, two vertical pixels
// per character cell via the upper-half-block glyph.
func runTerminal(opts []skyline.Option) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init terminal screen: %w", err)
	}
	defer screen.Fini()

	r, err := skyline.New(opts...)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	cw, ch := screen.Size()
	r.SetClientSize(float64(cw), float64(ch*2), supersample)

	frames := make(chan *image.RGBA, 1)
	r.OnFrame(func(frame *skyline.Pixmap) {
		img := frame.ToImage()
		select {
		case frames <- img:
		default: // presentation is behind; drop the frame
		}
	})
	if err := r.Start(); err != nil {
		return err
	}

	events := make(chan tcell.Event, 8)
	quit := make(chan struct{})
	go screen.ChannelEvents(events, quit)

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return r.Err()
			}
			switch e := ev.(type) {
			case *tcell.EventResize:
				w, h := e.Size()
				r.SetClientSize(float64(w), float64(h*2), supersample)
				screen.Sync()
			case *tcell.EventKey:
				if e.Key() == tcell.KeyEscape || e.Key() == tcell.KeyCtrlC || e.Rune() == 'q' {
					close(quit)
					return nil
				}
			}
		case img := <-frames:
			if err := r.Err(); err != nil {
				close(quit)
				return err
			}
			blit(screen, img)
		}
	}
}

// blit downscales the supersampled frame to two pixels per cell and
// draws it with half-block glyphs: foreground = top pixel, background =
// bottom pixel.
func blit(screen tcell.Screen, img *image.RGBA) {
	cw, ch := screen.Size()
	if cw <= 0 || ch <= 0 {
		return
	}

	small := image.NewRGBA(image.Rect(0, 0, cw, ch*2))
	xdraw.ApproxBiLinear.Scale(small, small.Bounds(), img, img.Bounds(), xdraw.Src, nil)

	for y := 0; y < ch; y++ {
		for x := 0; x < cw; x++ {
			top := small.RGBAAt(x, y*2)
			bot := small.RGBAAt(x, y*2+1)
			st := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B))).
				Background(tcell.NewRGBColor(int32(bot.R), int32(bot.G), int32(bot.B)))
			screen.SetContent(x, y, '▀', nil, st)
		}
	}
	screen.Show()
}
