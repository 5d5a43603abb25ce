// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package thermalview renders a sliding window of temperature samples as a
// one line color bar on a terminal (stdout) using ANSI color codes.
//
// Cold temperatures render blue, hot ones red. Useful to eyeball a
// thermistor reading drifting over time without a plotting setup.
package thermalview

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
)

// Opts represents the options available for this display.
type Opts struct {
	// Width is the number of samples kept in the window, one terminal cell
	// each. Defaults to 32.
	Width int
	// Min and Max bound the color scale. Samples outside the range clamp.
	// Default to 0°C and 50°C.
	Min, Max physic.Temperature
	// Palette converts colors to ANSI codes.
	Palette *ansi256.Palette
	// Writer receives the escape sequences. Defaults to a colorable
	// stdout.
	Writer io.Writer
}

// Dev is a one line temperature strip drawn on the console.
type Dev struct {
	w        io.Writer
	width    int
	min, max physic.Temperature
	palette  ansi256.Palette

	pixels []byte
	buf    bytes.Buffer
}

// New returns a Dev that displays at the console.
func New(opts *Opts) *Dev {
	o := Opts{}
	if opts != nil {
		o = *opts
	}
	if o.Width == 0 {
		o.Width = 32
	}
	if o.Min == 0 && o.Max == 0 {
		o.Min = physic.ZeroCelsius
		o.Max = physic.ZeroCelsius + 50*physic.Kelvin
	}
	p := o.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := o.Writer
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	return &Dev{
		w:       w,
		width:   o.Width,
		min:     o.Min,
		max:     o.Max,
		palette: *p,
		pixels:  make([]byte, 3*o.Width),
	}
}

func (d *Dev) String() string {
	return "ThermalView"
}

// Halt implements conn.Resource.
//
// It resets the terminal colors so the strip is not left dangling.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

// Push appends one sample to the window, scrolling the strip left, and
// redraws it.
func (d *Dev) Push(t physic.Temperature) error {
	copy(d.pixels, d.pixels[3:])
	c := d.colorFor(t)
	n := len(d.pixels)
	d.pixels[n-3] = c.R
	d.pixels[n-2] = c.G
	d.pixels[n-1] = c.B
	_, err := d.refresh()
	return err
}

// Write accepts a stream of raw RGB pixels and writes it to the console.
func (d *Dev) Write(pixels []byte) (int, error) {
	if len(pixels)%3 != 0 || len(pixels) > len(d.pixels) {
		return 0, errors.New("thermalview: invalid RGB stream length")
	}
	copy(d.pixels, pixels)
	return d.refresh()
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rectangle{Max: image.Point{X: d.width, Y: 1}}
}

// Draw implements display.Drawer.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	r = r.Intersect(d.Bounds())
	srcR := src.Bounds()
	srcR.Min = srcR.Min.Add(sp)
	if dX := r.Dx(); dX < srcR.Dx() {
		srcR.Max.X = srcR.Min.X + dX
	}
	deltaX3 := 3 * (r.Min.X - srcR.Min.X)
	for sX := srcR.Min.X; sX < srcR.Max.X; sX++ {
		r16, g16, b16, _ := src.At(sX, srcR.Min.Y).RGBA()
		dX3 := 3*sX + deltaX3
		d.pixels[dX3] = byte(r16 >> 8)
		d.pixels[dX3+1] = byte(g16 >> 8)
		d.pixels[dX3+2] = byte(b16 >> 8)
	}
	_, err := d.refresh()
	return err
}

// colorFor maps a temperature to a blue (cold) to red (hot) gradient, with a
// green bump in the middle of the scale.
func (d *Dev) colorFor(t physic.Temperature) color.NRGBA {
	u := float64(t-d.min) / float64(d.max-d.min)
	u = math.Max(0, math.Min(1, u))
	return color.NRGBA{
		R: byte(255 * u),
		G: byte(96 * (1 - math.Abs(2*u-1))),
		B: byte(255 * (1 - u)),
		A: 255,
	}
}

func (d *Dev) refresh() (int, error) {
	// Minimize the amount of memory allocated per call.
	d.buf.Reset()
	_, _ = d.buf.WriteString("\r\033[0m")
	for i := 0; i < len(d.pixels)/3; i++ {
		c := color.NRGBA{d.pixels[3*i], d.pixels[3*i+1], d.pixels[3*i+2], 255}
		_, _ = io.WriteString(&d.buf, d.palette.Block(c))
	}
	_, _ = d.buf.WriteString("\033[0m ")
	_, err := d.buf.WriteTo(d.w)
	return len(d.pixels), err
}

var _ display.Drawer = &Dev{}
var _ fmt.Stringer = &Dev{}
