// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// thermalplot renders temperature samples logged by "ntctemp -csv" as a PNG
// line chart.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
)

type sample struct {
	at      time.Time
	celsius float64
}

func main() {
	in := flag.String("in", "", "CSV input (RFC3339,celsius per line), empty for stdin")
	out := flag.String("out", "thermal.png", "output PNG file")
	width := flag.Int("w", 800, "chart width in pixels")
	height := flag.Int("h", 300, "chart height in pixels")
	title := flag.String("title", "thermistor temperature", "chart title")
	flag.Parse()

	r := io.Reader(os.Stdin)
	if *in != "" {
		f, err := os.Open(*in)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		r = f
	}

	samples, err := readSamples(r)
	if err != nil {
		log.Fatal(err)
	}
	if len(samples) < 2 {
		log.Fatal("need at least 2 samples to plot")
	}

	if err := render(*out, *width, *height, *title, samples); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %s (%d samples)", *out, len(samples))
}

// readSamples accepts "RFC3339,celsius" lines as written by ntctemp -csv, or
// bare celsius values one per line.
func readSamples(r io.Reader) ([]sample, error) {
	var samples []sample
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var s sample
		fields := strings.SplitN(line, ",", 2)
		v := fields[0]
		if len(fields) == 2 {
			at, err := time.Parse(time.RFC3339, fields[0])
			if err != nil {
				return nil, fmt.Errorf("bad timestamp %q: %w", fields[0], err)
			}
			s.at = at
			v = fields[1]
		} else {
			s.at = time.Unix(int64(len(samples)), 0)
		}
		c, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("bad temperature %q: %w", v, err)
		}
		s.celsius = c
		samples = append(samples, s)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return samples, nil
}

func render(path string, w, h int, title string, samples []sample) error {
	const margin = 40.0

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range samples {
		lo = math.Min(lo, s.celsius)
		hi = math.Max(hi, s.celsius)
	}
	if hi-lo < 1 {
		// Flat traces still get a visible band.
		mid := (hi + lo) / 2
		lo, hi = mid-0.5, mid+0.5
	}

	t0 := samples[0].at
	span := samples[len(samples)-1].at.Sub(t0)
	if span <= 0 {
		span = time.Second
	}

	x := func(s sample) float64 {
		return margin + float64(s.at.Sub(t0))/float64(span)*(float64(w)-2*margin)
	}
	y := func(c float64) float64 {
		return float64(h) - margin - (c-lo)/(hi-lo)*(float64(h)-2*margin)
	}

	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return err
	}
	dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: 12}))

	// Axes.
	dc.SetRGB(0.6, 0.6, 0.6)
	dc.SetLineWidth(1)
	dc.DrawLine(margin, margin, margin, float64(h)-margin)
	dc.DrawLine(margin, float64(h)-margin, float64(w)-margin, float64(h)-margin)
	dc.Stroke()

	// Trace.
	dc.SetRGB(0.8, 0.2, 0.1)
	dc.SetLineWidth(2)
	dc.MoveTo(x(samples[0]), y(samples[0].celsius))
	for _, s := range samples[1:] {
		dc.LineTo(x(s), y(s.celsius))
	}
	dc.Stroke()

	// Labels.
	dc.SetRGB(0.2, 0.2, 0.2)
	dc.DrawStringAnchored(title, float64(w)/2, margin/2, 0.5, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%.1fC", hi), margin-4, margin, 1, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%.1fC", lo), margin-4, float64(h)-margin, 1, 0.5)

	return dc.SavePNG(path)
}
