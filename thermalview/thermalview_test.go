// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package thermalview

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"

	"periph.io/x/conn/v3/physic"
)

func TestPush(t *testing.T) {
	var buf bytes.Buffer
	d := New(&Opts{Width: 4, Writer: &buf})
	if err := d.Push(physic.ZeroCelsius + 25*physic.Kelvin); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "\033[") {
		t.Errorf("no ANSI escape in output %q", out)
	}
	// The sample lands in the rightmost cell.
	n := len(d.pixels)
	if d.pixels[n-3] == 0 && d.pixels[n-2] == 0 && d.pixels[n-1] == 0 {
		t.Error("pushed sample did not color the last cell")
	}
	// Pushing again scrolls it left.
	c := [3]byte{d.pixels[n-3], d.pixels[n-2], d.pixels[n-1]}
	if err := d.Push(physic.ZeroCelsius + 50*physic.Kelvin); err != nil {
		t.Fatal(err)
	}
	if d.pixels[n-6] != c[0] || d.pixels[n-5] != c[1] || d.pixels[n-4] != c[2] {
		t.Error("previous sample did not scroll left")
	}
}

func TestColorScale(t *testing.T) {
	d := New(&Opts{Width: 1, Writer: &bytes.Buffer{}})
	cold := d.colorFor(physic.ZeroCelsius - 10*physic.Kelvin)
	hot := d.colorFor(physic.ZeroCelsius + 60*physic.Kelvin)
	if cold.B != 255 || cold.R != 0 {
		t.Errorf("cold sample = %v, want pure blue", cold)
	}
	if hot.R != 255 || hot.B != 0 {
		t.Errorf("hot sample = %v, want pure red", hot)
	}
	mid := d.colorFor(physic.ZeroCelsius + 25*physic.Kelvin)
	if mid.G == 0 {
		t.Errorf("mid sample = %v, want a green component", mid)
	}
}

func TestBounds(t *testing.T) {
	d := New(&Opts{Width: 7, Writer: &bytes.Buffer{}})
	b := d.Bounds()
	if b.Dx() != 7 || b.Dy() != 1 {
		t.Errorf("Bounds() = %v, want 7x1", b)
	}
	if d.ColorModel() != color.NRGBAModel {
		t.Error("unexpected color model")
	}
	if d.String() != "ThermalView" {
		t.Errorf("String() = %q", d.String())
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	d := New(&Opts{Width: 2, Writer: &buf})
	if _, err := d.Write([]byte{255, 0, 0, 0, 0, 255}); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Write([]byte{1, 2}); err == nil {
		t.Error("Write must reject non-RGB lengths")
	}
	if _, err := d.Write(make([]byte, 9)); err == nil {
		t.Error("Write must reject oversized streams")
	}
}

func TestDraw(t *testing.T) {
	var buf bytes.Buffer
	d := New(&Opts{Width: 3, Writer: &buf})
	img := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{G: 255, A: 255})
	img.SetNRGBA(2, 0, color.NRGBA{B: 255, A: 255})
	if err := d.Draw(d.Bounds(), img, image.Point{}); err != nil {
		t.Fatal(err)
	}
	want := []byte{255, 0, 0, 0, 255, 0, 0, 0, 255}
	if !bytes.Equal(d.pixels, want) {
		t.Errorf("pixels = %v, want %v", d.pixels, want)
	}
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
}
