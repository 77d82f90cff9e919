package rasterhost

import (
	"context"
	"image"
	"testing"

	"rusteria/internal/compiler"
	"rusteria/internal/module"
	"rusteria/internal/shadevm"
)

func TestRenderShadesEveryPixel(t *testing.T) {
	prog, err := compiler.CompileProgram(
		"fn shade(uv) { return uv; }",
		"test.shade",
		module.NewFileLoader(t.TempDir()),
	)
	if err != nil {
		t.Fatalf("CompileProgram: %v", err)
	}

	template := shadevm.New(prog)
	bounds := image.Rect(0, 0, 8, 8)
	img, err := Render(context.Background(), prog, template, bounds, Options{TileSize: 3})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if len(img.Pixels) != 64 {
		t.Fatalf("expected 64 pixels, got %d", len(img.Pixels))
	}

	corner := img.At(0, 0)
	if corner.X <= 0 || corner.X >= 1 {
		t.Errorf("expected a centered-pixel uv strictly between 0 and 1, got %v", corner.X)
	}

	opposite := img.At(7, 7)
	if opposite.X <= corner.X {
		t.Errorf("expected uv.x to increase across the image, got corner=%v opposite=%v", corner.X, opposite.X)
	}
}

func TestRenderRejectsProgramWithoutShade(t *testing.T) {
	prog, err := compiler.CompileProgram("let a = 1;", "test.shade", module.NewFileLoader(t.TempDir()))
	if err != nil {
		t.Fatalf("CompileProgram: %v", err)
	}
	template := shadevm.New(prog)
	_, err = Render(context.Background(), prog, template, image.Rect(0, 0, 4, 4), Options{})
	if err == nil {
		t.Fatal("expected an error for a program with no shade(uv) function")
	}
}

func TestRenderGlobalsVisibleToEveryTile(t *testing.T) {
	prog, err := compiler.CompileProgram(`
let tint = 2;
fn shade(uv) {
	return uv * tint;
}
`, "test.shade", module.NewFileLoader(t.TempDir()))
	if err != nil {
		t.Fatalf("CompileProgram: %v", err)
	}

	template := shadevm.New(prog)
	if err := template.Execute(prog.Body, prog); err != nil {
		t.Fatalf("Execute (populate globals): %v", err)
	}

	img, err := Render(context.Background(), prog, template, image.Rect(0, 0, 6, 6), Options{TileSize: 2})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	p := img.At(5, 5)
	if p.X <= 1 {
		t.Errorf("expected tint to double uv.x beyond 1, got %v", p.X)
	}
}
