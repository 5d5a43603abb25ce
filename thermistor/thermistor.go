// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package thermistor

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/physic"
)

// ErrNoReading is returned when a temperature is requested from a resistance
// of exactly 0Ω, the "no sample yet" condition.
var ErrNoReading = errors.New("thermistor: no resistance reading")

// Wiring describes which leg of the voltage divider the thermistor occupies.
type Wiring int

const (
	// NTCToSupply places the thermistor between the supply rail and the
	// sense node, with the series resistor to ground.
	NTCToSupply Wiring = iota
	// NTCToGround places the thermistor between the sense node and ground,
	// with the series resistor to the supply rail.
	NTCToGround
)

func (w Wiring) String() string {
	if w == NTCToGround {
		return "NTCToGround"
	}
	return "NTCToSupply"
}

// Calibration holds three reference points of the thermistor curve. The
// temperatures are in °C, the resistances in Ω.
//
// The three resistances must be positive and pairwise distinct. Degenerate
// points are not rejected; they propagate ±Inf/NaN into the coefficients and
// every subsequent conversion. Callers must supply well separated points.
type Calibration struct {
	T1, T2, T3 float64
	R1, R2, R3 float64
}

// MA100 is the factory calibration of the Amphenol Thermometrics MA100 NTC
// thermistor, used as the default.
var MA100 = Calibration{T1: 15, T2: 30, T3: 45, R1: 16031, R2: 7869, R3: 4267}

// Opts holds the divider and ADC scaling configuration.
type Opts struct {
	// DividerOhm is the value of the fixed series resistor in Ω.
	DividerOhm float64
	// FullScale is the raw count corresponding to the full ADC span, e.g.
	// 1023 for a 10 bit converter or 65535 for an ADS1115.
	FullScale int32
	// SupplyVolt is the divider excitation voltage.
	SupplyVolt float64
	// SpanVolt is the voltage covered by FullScale counts. For an ADS1115
	// at the ±4.096V range this is 8.192.
	SpanVolt float64
	// Wiring selects the divider topology.
	Wiring Wiring
	// OffsetCelsius is added to every computed temperature.
	OffsetCelsius float64
}

// DefaultOpts matches a 10kΩ divider read by an ADS1115 at ±4.096V from a
// 3.3V rail.
var DefaultOpts = Opts{
	DividerOhm: 10000,
	FullScale:  65535,
	SupplyVolt: 3.3,
	SpanVolt:   8.192,
	Wiring:     NTCToSupply,
}

// Converter computes resistance and temperature from raw ADC counts.
//
// It is safe for concurrent use. The last raw count, resistance and
// temperature are retained and can be queried at any time.
type Converter struct {
	mu                  sync.Mutex
	coefA, coefB, coefC float64
	opts                Opts
	raw                 int32
	resistance          float64
	temperature         float64
}

// New returns a Converter calibrated from the three reference points. Zero
// valued fields of opts take their defaults; a nil opts is DefaultOpts.
func New(cal Calibration, opts *Opts) *Converter {
	o := DefaultOpts
	if opts != nil {
		o = *opts
		if o.DividerOhm == 0 {
			o.DividerOhm = DefaultOpts.DividerOhm
		}
		if o.FullScale == 0 {
			o.FullScale = DefaultOpts.FullScale
		}
		if o.SupplyVolt == 0 {
			o.SupplyVolt = DefaultOpts.SupplyVolt
		}
		if o.SpanVolt == 0 {
			o.SpanVolt = DefaultOpts.SpanVolt
		}
	}
	c := &Converter{opts: o}
	c.setCalibration(cal)
	return c
}

// SetCalibration recomputes the Steinhart-Hart coefficients from three new
// reference points. The coefficients stay fixed until the next call.
func (c *Converter) SetCalibration(cal Calibration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setCalibration(cal)
}

func (c *Converter) setCalibration(cal Calibration) {
	t1 := cal.T1 + 273.15
	t2 := cal.T2 + 273.15
	t3 := cal.T3 + 273.15
	x1 := math.Log(cal.R1)
	x2 := math.Log(cal.R2)
	x3 := math.Log(cal.R3)

	s := x1 - x2
	u := x1 - x3
	v := 1/t1 - 1/t2
	w := 1/t1 - 1/t3

	x1c := x1 * x1 * x1
	x2c := x2 * x2 * x2
	x3c := x3 * x3 * x3

	c.coefC = (v - s*w/u) / ((x1c - x2c) - s*(x1c-x3c)/u)
	c.coefB = (v - c.coefC*(x1c-x2c)) / s
	c.coefA = 1/t1 - c.coefC*x1c - c.coefB*x1
}

// ResistanceFromCount converts a raw count from an external ADC into the
// thermistor resistance in Ω, using the configured span voltage. The count
// and the resistance are stored as the most recent sample.
//
// A count of 0 or FullScale yields 0Ω or ±Inf depending on the wiring; the
// input is deliberately not guarded.
func (c *Converter) ResistanceFromCount(count int32) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resistanceFromCount(count)
}

func (c *Converter) resistanceFromCount(count int32) float64 {
	vout := float64(count) / float64(c.opts.FullScale) * c.opts.SpanVolt
	return c.store(count, c.resistanceFromVoltage(vout))
}

func (c *Converter) resistanceFromVoltage(vout float64) float64 {
	if c.opts.Wiring == NTCToGround {
		return vout * c.opts.DividerOhm / (c.opts.SupplyVolt - vout)
	}
	return c.opts.SupplyVolt*c.opts.DividerOhm/vout - c.opts.DividerOhm
}

func (c *Converter) resistanceFromRatio(count int32) float64 {
	if c.opts.Wiring == NTCToGround {
		return c.store(count, c.opts.DividerOhm*float64(count)/float64(c.opts.FullScale-count))
	}
	return c.store(count, c.opts.DividerOhm*(float64(c.opts.FullScale)/float64(count)-1))
}

func (c *Converter) store(count int32, r float64) float64 {
	c.raw = count
	c.resistance = r
	return r
}

// ResistanceFromSample converts an analog.Sample into resistance. If the
// sample carries a calibrated voltage it is used directly; otherwise the
// resistance is derived from the raw count as a fraction of FullScale.
func (c *Converter) ResistanceFromSample(s analog.Sample) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resistanceFromSample(s)
}

func (c *Converter) resistanceFromSample(s analog.Sample) float64 {
	if s.V != 0 {
		vout := float64(s.V) / float64(physic.Volt)
		return c.store(s.Raw, c.resistanceFromVoltage(vout))
	}
	return c.resistanceFromRatio(s.Raw)
}

// ResistanceToTemperature evaluates the Steinhart-Hart fit at r and returns
// the temperature in °C, including the configured offset. A resistance of
// exactly 0Ω marks "no sample yet" and returns ErrNoReading without
// evaluating the logarithm.
func (c *Converter) ResistanceToTemperature(r float64) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resistanceToTemperature(r)
}

func (c *Converter) resistanceToTemperature(r float64) (float64, error) {
	if r == 0 {
		return 0, ErrNoReading
	}
	lr := math.Log(r)
	t := 1/(c.coefA+c.coefB*lr+c.coefC*lr*lr*lr) - 273.15 + c.opts.OffsetCelsius
	return t, nil
}

// TemperatureFromCount converts a raw external ADC count straight to °C. On
// success the temperature is stored as the most recent sample; on error the
// previous temperature is retained.
func (c *Converter) TemperatureFromCount(count int32) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.finish(c.resistanceToTemperature(c.resistanceFromCount(count)))
}

// TemperatureFromSample converts an analog.Sample straight to °C.
func (c *Converter) TemperatureFromSample(s analog.Sample) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.finish(c.resistanceToTemperature(c.resistanceFromSample(s)))
}

func (c *Converter) finish(t float64, err error) (float64, error) {
	if err != nil {
		return 0, err
	}
	c.temperature = t
	return t, nil
}

// SetDividerResistance changes the series resistor value in Ω.
func (c *Converter) SetDividerResistance(ohm float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opts.DividerOhm = ohm
}

// DividerResistance returns the series resistor value in Ω.
func (c *Converter) DividerResistance() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts.DividerOhm
}

// SetOffset changes the temperature offset in °C.
func (c *Converter) SetOffset(celsius float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opts.OffsetCelsius = celsius
}

// Offset returns the temperature offset in °C.
func (c *Converter) Offset() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts.OffsetCelsius
}

// LastRaw returns the most recent raw count.
func (c *Converter) LastRaw() int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.raw
}

// LastResistance returns the most recent resistance in Ω, 0 if no sample was
// converted yet.
func (c *Converter) LastResistance() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resistance
}

// LastTemperature returns the most recent temperature in °C.
func (c *Converter) LastTemperature() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.temperature
}

// Coefficients returns the Steinhart-Hart coefficients a, b and c.
func (c *Converter) Coefficients() (float64, float64, float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.coefA, c.coefB, c.coefC
}

// Dev is a thermistor attached to an analog input pin.
type Dev struct {
	conv *Converter
	p    analog.PinADC

	mu   sync.Mutex
	stop chan struct{}
	wg   sync.WaitGroup
}

// NewPin returns a Dev sampling the divider through p.
func NewPin(p analog.PinADC, cal Calibration, opts *Opts) (*Dev, error) {
	if p == nil {
		return nil, errors.New("thermistor: nil analog pin")
	}
	return &Dev{conv: New(cal, opts), p: p}, nil
}

// Converter returns the underlying Converter for calibration and divider
// adjustments.
func (d *Dev) Converter() *Converter {
	return d.conv
}

// ReadTemperature samples the pin once and returns the temperature in °C.
func (d *Dev) ReadTemperature() (float64, error) {
	s, err := d.p.Read()
	if err != nil {
		return 0, fmt.Errorf("thermistor: %w", err)
	}
	return d.conv.TemperatureFromSample(s)
}

// Sense implements physic.SenseEnv. It samples the pin once and writes the
// temperature to e.
func (d *Dev) Sense(e *physic.Env) error {
	t, err := d.ReadTemperature()
	if err != nil {
		return err
	}
	e.Temperature = physic.Temperature(t*float64(physic.Kelvin)) + physic.ZeroCelsius
	return nil
}

// SenseContinuous implements physic.SenseEnv. It returns a channel receiving
// a reading every interval. Call Halt() to stop sensing and close the
// channel.
func (d *Dev) SenseContinuous(interval time.Duration) (<-chan physic.Env, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		return nil, errors.New("thermistor: already sensing continuously")
	}

	sensing := make(chan physic.Env)
	d.stop = make(chan struct{})
	d.wg.Add(1)
	go func(stop <-chan struct{}) {
		defer d.wg.Done()
		defer close(sensing)
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				e := physic.Env{}
				if err := d.Sense(&e); err == nil {
					select {
					case sensing <- e:
					case <-stop:
						return
					}
				}
			}
		}
	}(d.stop)
	return sensing, nil
}

// Precision implements physic.SenseEnv. The fit itself resolves far below a
// millikelvin; the practical resolution is bounded by the ADC step size.
func (d *Dev) Precision(e *physic.Env) {
	e.Temperature = 10 * physic.MilliKelvin
}

// Halt stops a SenseContinuous operation. Implements conn.Resource.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop == nil {
		return nil
	}
	close(d.stop)
	d.stop = nil
	d.wg.Wait()
	return nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("thermistor{%s}", d.p.Name())
}

var _ conn.Resource = &Dev{}
var _ physic.SenseEnv = &Dev{}
