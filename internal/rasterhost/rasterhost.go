// Package rasterhost is a demonstration parallel-tile execution harness:
// it partitions an output image into tiles and runs one
// shadevm.Interpreter per tile concurrently, each forked from a shared
// compiled template so every tile sees the same globals without any
// shared mutable state. It exists to give the language's per-pixel
// execution model a runnable, testable home; a production rasterizer
// (texture filtering, antialiasing, real scene geometry) is an external
// collaborator this package does not attempt to be.
package rasterhost

import (
	"context"
	"image"

	"golang.org/x/sync/errgroup"

	"rusteria/internal/bytecode"
	"rusteria/internal/shadevm"
	"rusteria/internal/vmvalue"
)

// Options configures a render pass.
type Options struct {
	// TileSize is the edge length of each square tile; the last row/column
	// of tiles may be smaller where Bounds doesn't divide evenly.
	TileSize int
	// Time is broadcast into every tile's interpreter as the `time` env
	// register before it runs.
	Time float32
	// Sampler, if set, backs every tile interpreter's sample() calls.
	Sampler shadevm.Sampler
}

// Image holds one float32 color per pixel, row-major, matching the
// shader language's 3-lane Value.
type Image struct {
	Bounds image.Rectangle
	Pixels []vmvalue.Value
}

func newImage(bounds image.Rectangle) *Image {
	return &Image{Bounds: bounds, Pixels: make([]vmvalue.Value, bounds.Dx()*bounds.Dy())}
}

func (img *Image) set(x, y int, v vmvalue.Value) {
	img.Pixels[(y-img.Bounds.Min.Y)*img.Bounds.Dx()+(x-img.Bounds.Min.X)] = v
}

// At returns the shaded color at (x, y).
func (img *Image) At(x, y int) vmvalue.Value {
	return img.Pixels[(y-img.Bounds.Min.Y)*img.Bounds.Dx()+(x-img.Bounds.Min.X)]
}

// Render runs program's shade(uv) entry point once per pixel of bounds,
// partitioned into tiles run concurrently via errgroup, each on its own
// Interpreter forked from template. uv is normalized to [0,1] across
// bounds on both axes. Returns the first tile error encountered, if any
// (errgroup cancels the remaining tiles' context on first error, though
// an in-flight Execute call itself isn't preemptible mid-opcode).
func Render(ctx context.Context, program *bytecode.Program, template *shadevm.Interpreter, bounds image.Rectangle, opts Options) (*Image, error) {
	if program.ShadeIndex == nil {
		return nil, errNoShadeFunction
	}
	tileSize := opts.TileSize
	if tileSize <= 0 {
		tileSize = 32
	}

	img := newImage(bounds)
	g, gctx := errgroup.WithContext(ctx)

	for ty := bounds.Min.Y; ty < bounds.Max.Y; ty += tileSize {
		for tx := bounds.Min.X; tx < bounds.Max.X; tx += tileSize {
			tile := image.Rect(tx, ty, min(tx+tileSize, bounds.Max.X), min(ty+tileSize, bounds.Max.Y))
			g.Go(func() error {
				return renderTile(gctx, program, template, img, tile, bounds, opts)
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return img, nil
}

func renderTile(ctx context.Context, program *bytecode.Program, template *shadevm.Interpreter, img *Image, tile, bounds image.Rectangle, opts Options) error {
	in := template.Fork()
	in.Time = vmvalue.Broadcast(opts.Time)
	if opts.Sampler != nil {
		in.Sampler = opts.Sampler
	}

	width, height := float32(bounds.Dx()), float32(bounds.Dy())
	for y := tile.Min.Y; y < tile.Max.Y; y++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		for x := tile.Min.X; x < tile.Max.X; x++ {
			uv := vmvalue.New(
				(float32(x-bounds.Min.X)+0.5)/width,
				(float32(y-bounds.Min.Y)+0.5)/height,
				0,
			)
			in.UV = uv
			color, err := in.RunFunction(program, *program.ShadeIndex, []vmvalue.Value{uv})
			if err != nil {
				return err
			}
			img.set(x, y, color)
		}
	}
	return nil
}

type rasterhostError string

func (e rasterhostError) Error() string { return string(e) }

const errNoShadeFunction = rasterhostError("rasterhost: program defines no shade(uv) function")
