// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ads1x15

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Variant selects the exact part. It fixes the channel count, resolution and
// the presence of the gain amplifier and comparator.
type Variant string

const (
	ADS1013 Variant = "ADS1013"
	ADS1014 Variant = "ADS1014"
	ADS1015 Variant = "ADS1015"
	ADS1113 Variant = "ADS1113"
	ADS1114 Variant = "ADS1114"
	ADS1115 Variant = "ADS1115"
)

// DefaultAddress is the I²C address with the ADDR pin tied to ground. The
// full legal range is 0x48-0x4B.
const DefaultAddress uint16 = 0x48

var (
	// ErrInvalidAddress is returned by NewI2C for addresses outside
	// 0x48-0x4B.
	ErrInvalidAddress = errors.New("ads1x15: address outside 0x48-0x4B")
	// ErrTimeout is returned by Read when a single-shot conversion does
	// not complete within the data-rate derived deadline.
	ErrTimeout = errors.New("ads1x15: conversion timeout")
	// ErrNoComparator is returned by the threshold accessors on parts
	// without a comparator.
	ErrNoComparator = errors.New("ads1x15: variant has no comparator")
)

// Addresses of the device registers.
const (
	regConversion    byte = 0x00
	regConfig        byte = 0x01
	regLowThreshold  byte = 0x02
	regHighThreshold byte = 0x03
)

// Configuration register bits. Bit 15 starts a single conversion on write
// and reports "not busy" on read.
const (
	osStartSingle     uint16 = 1 << 15
	osNotBusy         uint16 = 1 << 15
	compModeWindow    uint16 = 1 << 4
	compPolActiveHigh uint16 = 1 << 3
	compLatching      uint16 = 1 << 2
)

// Gain selects the full-scale input range. The values are the bit patterns
// of configuration register bits 11-9.
type Gain uint16

const (
	Gain2_3 Gain = 0x0000 // ±6.144V
	Gain1   Gain = 0x0200 // ±4.096V
	Gain2   Gain = 0x0400 // ±2.048V
	Gain4   Gain = 0x0600 // ±1.024V
	Gain8   Gain = 0x0800 // ±0.512V
	Gain16  Gain = 0x0A00 // ±0.256V
)

// FullScale returns the positive full-scale input voltage of the range.
func (g Gain) FullScale() physic.ElectricPotential {
	switch g {
	case Gain1:
		return 4096 * physic.MilliVolt
	case Gain2:
		return 2048 * physic.MilliVolt
	case Gain4:
		return 1024 * physic.MilliVolt
	case Gain8:
		return 512 * physic.MilliVolt
	case Gain16:
		return 256 * physic.MilliVolt
	default:
		return 6144 * physic.MilliVolt
	}
}

// Code returns the conventional datasheet code of the range: one of 0, 1, 2,
// 4, 8 or 16.
func (g Gain) Code() int {
	switch g {
	case Gain1:
		return 1
	case Gain2:
		return 2
	case Gain4:
		return 4
	case Gain8:
		return 8
	case Gain16:
		return 16
	default:
		return 0
	}
}

// GainFromCode maps a datasheet code to a Gain. Any unrecognized code maps
// to the widest, safest range.
func GainFromCode(code int) Gain {
	switch code {
	case 1:
		return Gain1
	case 2:
		return Gain2
	case 4:
		return Gain4
	case 8:
		return Gain8
	case 16:
		return Gain16
	default:
		return Gain2_3
	}
}

// Mode selects between free-running and on-demand conversion. The values are
// the bit patterns of configuration register bit 8.
type Mode uint16

const (
	// Continuous converts back to back at the configured data rate.
	Continuous Mode = 0x0000
	// SingleShot performs one conversion per request, then powers down.
	SingleShot Mode = 0x0100
)

// Code returns 0 for Continuous and 1 for SingleShot.
func (m Mode) Code() int {
	if m == Continuous {
		return 0
	}
	return 1
}

// ModeFromCode maps code 0 to Continuous; everything else is SingleShot.
func ModeFromCode(code int) Mode {
	if code == 0 {
		return Continuous
	}
	return SingleShot
}

// ComparatorQueue sets how many conversions must exceed the thresholds
// before the ALERT/RDY pin asserts.
type ComparatorQueue uint16

const (
	QueueAfterOne  ComparatorQueue = 0
	QueueAfterTwo  ComparatorQueue = 1
	QueueAfterFour ComparatorQueue = 2
	// QueueDisabled turns the comparator off and leaves ALERT/RDY in high
	// impedance. Device default.
	QueueDisabled ComparatorQueue = 3
)

type capabilities struct {
	channels  int
	shift     uint
	hasGain   bool
	hasComp   bool
	convDelay time.Duration
}

var variants = map[Variant]capabilities{
	ADS1013: {channels: 1, shift: 4, convDelay: time.Millisecond},
	ADS1014: {channels: 1, shift: 4, hasGain: true, hasComp: true, convDelay: time.Millisecond},
	ADS1015: {channels: 4, shift: 4, hasGain: true, hasComp: true, convDelay: time.Millisecond},
	ADS1113: {channels: 1, convDelay: 8 * time.Millisecond},
	ADS1114: {channels: 1, hasGain: true, hasComp: true, convDelay: 8 * time.Millisecond},
	ADS1115: {channels: 4, hasGain: true, hasComp: true, convDelay: 8 * time.Millisecond},
}

// noRequest is the lastRequest marker before any conversion was requested.
const noRequest uint16 = 0xFFFF

// Opts holds the configurable options for the device.
type Opts struct {
	// Variant selects the part. Defaults to ADS1115.
	Variant Variant
}

// DefaultOpts is for the 16 bit, 4 channel ADS1115.
var DefaultOpts = Opts{Variant: ADS1115}

// Dev represents one ADS1x15 on an I²C bus.
//
// The bus handle is externally owned and may be shared with other devices;
// each register transaction assumes exclusive access to the device for its
// duration.
type Dev struct {
	d       i2c.Dev
	variant Variant
	caps    capabilities

	mu          sync.Mutex
	gain        Gain
	mode        Mode
	rate        uint16 // pre-shifted into register bits 7-5
	compWindow  bool
	compActHigh bool
	compLatch   bool
	compQueue   ComparatorQueue
	lastRequest uint16
}

// NewI2C returns a Dev for the device at addr on bus b. The address must be
// within the legal 0x48-0x4B range and the device must acknowledge a probe
// transaction. The configuration is reset to the driver defaults; nothing is
// written to the device until the first request.
func NewI2C(b i2c.Bus, addr uint16, opts *Opts) (*Dev, error) {
	if addr < 0x48 || addr > 0x4B {
		return nil, ErrInvalidAddress
	}
	if opts == nil {
		opts = &DefaultOpts
	}
	variant := opts.Variant
	if variant == "" {
		variant = ADS1115
	}
	caps, ok := variants[variant]
	if !ok {
		return nil, fmt.Errorf("ads1x15: unknown variant %q", variant)
	}
	d := &Dev{d: i2c.Dev{Bus: b, Addr: addr}, variant: variant, caps: caps}
	d.Reset()
	if !d.IsConnected() {
		return nil, fmt.Errorf("ads1x15: no device at %#02x", addr)
	}
	return d, nil
}

// Reset restores the driver configuration to its defaults: ±4.096V range,
// continuous mode, data rate code 4, comparator off. It does not touch the
// device; the configuration is applied on the next request.
func (d *Dev) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gain = Gain2_3
	if d.caps.hasGain {
		d.gain = Gain1
	}
	d.mode = Continuous
	d.rate = 4 << 5
	d.compWindow = false
	d.compActHigh = true
	d.compLatch = false
	d.compQueue = QueueDisabled
	d.lastRequest = noRequest
}

// IsConnected reports whether the device acknowledges a zero-length
// transaction.
func (d *Dev) IsConnected() bool {
	return d.d.Tx(nil, nil) == nil
}

// SetGain selects the full-scale range. On fixed-gain parts (ADS1013,
// ADS1113) the call has no effect. Values that are not one of the six ranges
// select the widest range.
func (d *Dev) SetGain(g Gain) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.caps.hasGain {
		return
	}
	switch g {
	case Gain2_3, Gain1, Gain2, Gain4, Gain8, Gain16:
		d.gain = g
	default:
		d.gain = Gain2_3
	}
}

// Gain returns the active full-scale range.
func (d *Dev) Gain() Gain {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gain
}

// SetGainCode selects the range by datasheet code {0,1,2,4,8,16}.
func (d *Dev) SetGainCode(code int) {
	d.SetGain(GainFromCode(code))
}

// GainCode returns the datasheet code of the active range. Fixed-gain parts
// always report 0.
func (d *Dev) GainCode() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.caps.hasGain {
		return 0
	}
	return d.gain.Code()
}

// SetMode selects continuous or single-shot conversion. Anything that is not
// Continuous selects SingleShot.
func (d *Dev) SetMode(m Mode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if m != Continuous {
		m = SingleShot
	}
	d.mode = m
}

// Mode returns the active conversion mode.
func (d *Dev) Mode() Mode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mode
}

// SetDataRate sets the data rate code 0-7. The actual sample rate depends on
// the part: the 12 bit parts span 128-3300 samples/s, the 16 bit parts
// 8-860 samples/s. Out of range codes fall back to the default, 4.
func (d *Dev) SetDataRate(code int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if code < 0 || code > 7 {
		code = 4
	}
	d.rate = uint16(code) << 5
}

// DataRate returns the active data rate code 0-7.
func (d *Dev) DataRate() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int(d.rate >> 5)
}

// Request starts a single-ended conversion of channel ch without waiting for
// it. The full configuration register is composed from the current settings
// and written to the device, so the call also applies pending configuration
// changes in continuous mode. Channels the part does not have are ignored.
func (d *Dev) Request(ch int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.request(ch)
}

func (d *Dev) request(ch int) error {
	if ch < 0 || ch >= d.caps.channels {
		return nil
	}
	mux := uint16(4+ch) << 12
	if err := d.writeRegister(regConfig, d.composeConfig(mux)); err != nil {
		return err
	}
	d.lastRequest = mux
	return nil
}

func (d *Dev) composeConfig(mux uint16) uint16 {
	cfg := osStartSingle | mux | uint16(d.gain) | uint16(d.mode) | d.rate
	if d.compWindow {
		cfg |= compModeWindow
	}
	if d.compActHigh {
		cfg |= compPolActiveHigh
	}
	if d.compLatch {
		cfg |= compLatching
	}
	return cfg | uint16(d.compQueue)
}

// RequestedChannel returns the channel of the most recent request and
// whether any request was made since the last Reset.
func (d *Dev) RequestedChannel() (int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lastRequest == noRequest {
		return 0, false
	}
	return int(d.lastRequest>>12) - 4, true
}

// Read performs a blocking single-ended conversion of channel ch.
//
// In single-shot mode it polls the status bit until the conversion
// completes, sleeping briefly between polls, and returns ErrTimeout if the
// device stays busy past (128>>rate)+1 ms. In continuous mode it waits one
// conversion period so a stale value is not returned. Channels the part does
// not have read as 0.
func (d *Dev) Read(ch int) (int16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if ch < 0 || ch >= d.caps.channels {
		return 0, nil
	}
	if err := d.request(ch); err != nil {
		return 0, err
	}
	if d.mode == SingleShot {
		deadline := time.Now().Add(d.timeout())
		for {
			ready, err := d.isReady()
			if err != nil {
				return 0, err
			}
			if ready {
				break
			}
			if time.Now().After(deadline) {
				return 0, ErrTimeout
			}
			time.Sleep(100 * time.Microsecond)
		}
	} else {
		time.Sleep(d.caps.convDelay)
	}
	return d.value()
}

// timeout is a few ms more than the worst case conversion time at the
// configured rate: 129, 65, 33, 17, 9, 5, 3 or 2 ms.
func (d *Dev) timeout() time.Duration {
	return time.Duration((128>>(d.rate>>5))+1) * time.Millisecond
}

// Value reads the conversion register. On 12 bit parts the left-justified
// result is shifted right to its natural range.
func (d *Dev) Value() (int16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value()
}

func (d *Dev) value() (int16, error) {
	raw, err := d.readRegister(regConversion)
	if err != nil {
		return 0, err
	}
	v := int16(raw)
	if d.caps.shift != 0 {
		v >>= d.caps.shift
	}
	return v, nil
}

// IsReady reports whether no conversion is in progress.
func (d *Dev) IsReady() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.isReady()
}

func (d *Dev) isReady() (bool, error) {
	raw, err := d.readRegister(regConfig)
	if err != nil {
		return false, err
	}
	return raw&osNotBusy != 0, nil
}

// IsBusy reports whether a conversion is in progress.
func (d *Dev) IsBusy() (bool, error) {
	ready, err := d.IsReady()
	return !ready, err
}

// SetComparatorWindow selects window mode instead of the traditional
// comparator. No-op on parts without a comparator. Applied on the next
// request.
func (d *Dev) SetComparatorWindow(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.caps.hasComp {
		return
	}
	d.compWindow = on
}

// ComparatorWindow reports whether window mode is selected.
func (d *Dev) ComparatorWindow() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.compWindow
}

// SetComparatorActiveHigh sets the ALERT/RDY polarity. No-op on parts
// without a comparator. Applied on the next request.
func (d *Dev) SetComparatorActiveHigh(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.caps.hasComp {
		return
	}
	d.compActHigh = on
}

// ComparatorActiveHigh reports whether ALERT/RDY asserts high.
func (d *Dev) ComparatorActiveHigh() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.compActHigh
}

// SetComparatorLatching makes ALERT/RDY latch until the conversion register
// is read. No-op on parts without a comparator. Applied on the next request.
func (d *Dev) SetComparatorLatching(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.caps.hasComp {
		return
	}
	d.compLatch = on
}

// ComparatorLatching reports whether ALERT/RDY latches.
func (d *Dev) ComparatorLatching() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.compLatch
}

// SetComparatorQueue sets the assertion queue depth. Values past
// QueueDisabled clamp to QueueDisabled. No-op on parts without a comparator.
// Applied on the next request.
func (d *Dev) SetComparatorQueue(q ComparatorQueue) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.caps.hasComp {
		return
	}
	if q > QueueDisabled {
		q = QueueDisabled
	}
	d.compQueue = q
}

// ComparatorQueue returns the assertion queue depth.
func (d *Dev) ComparatorQueue() ComparatorQueue {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.compQueue
}

// SetLowThreshold writes the comparator low threshold register immediately.
func (d *Dev) SetLowThreshold(v int16) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.caps.hasComp {
		return ErrNoComparator
	}
	return d.writeRegister(regLowThreshold, uint16(v))
}

// LowThreshold reads the comparator low threshold register.
func (d *Dev) LowThreshold() (int16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.caps.hasComp {
		return 0, ErrNoComparator
	}
	raw, err := d.readRegister(regLowThreshold)
	return int16(raw), err
}

// SetHighThreshold writes the comparator high threshold register
// immediately.
func (d *Dev) SetHighThreshold(v int16) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.caps.hasComp {
		return ErrNoComparator
	}
	return d.writeRegister(regHighThreshold, uint16(v))
}

// HighThreshold reads the comparator high threshold register.
func (d *Dev) HighThreshold() (int16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.caps.hasComp {
		return 0, ErrNoComparator
	}
	raw, err := d.readRegister(regHighThreshold)
	return int16(raw), err
}

// PinForChannel exposes a single-ended channel as an analog input pin.
// Reads through the pin use the blocking Read path with the device's current
// configuration.
func (d *Dev) PinForChannel(ch int) (analog.PinADC, error) {
	if ch < 0 || ch >= d.caps.channels {
		return nil, fmt.Errorf("ads1x15: invalid channel %d", ch)
	}
	return &analogPin{d: d, ch: ch}, nil
}

// Halt implements conn.Resource. There is no background activity to stop; in
// single-shot mode the device idles itself after each conversion.
func (d *Dev) Halt() error {
	return nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("%s{%s}", d.variant, d.d.String())
}

// writeRegister writes reg followed by the big-endian 16 bit value.
func (d *Dev) writeRegister(reg byte, v uint16) error {
	if err := d.d.Tx([]byte{reg, byte(v >> 8), byte(v)}, nil); err != nil {
		return fmt.Errorf("ads1x15: %w", err)
	}
	return nil
}

// readRegister writes reg, then reads the big-endian 16 bit value.
func (d *Dev) readRegister(reg byte) (uint16, error) {
	var r [2]byte
	if err := d.d.Tx([]byte{reg}, r[:]); err != nil {
		return 0, fmt.Errorf("ads1x15: %w", err)
	}
	return uint16(r[0])<<8 | uint16(r[1]), nil
}

// analogPin adapts one single-ended channel to analog.PinADC.
type analogPin struct {
	d  *Dev
	ch int
}

func (p *analogPin) Name() string {
	return fmt.Sprintf("AIN%d", p.ch)
}

func (p *analogPin) Number() int {
	return p.ch
}

func (p *analogPin) Function() string {
	return "ADC"
}

func (p *analogPin) String() string {
	return fmt.Sprintf("%s/AIN%d", p.d, p.ch)
}

// Halt implements conn.Resource.
func (p *analogPin) Halt() error {
	return nil
}

// Range returns the extremes of the active full-scale range.
func (p *analogPin) Range() (analog.Sample, analog.Sample) {
	fs := p.d.Gain().FullScale()
	maxRaw := int32(32767 >> p.d.caps.shift)
	min := analog.Sample{V: -fs, Raw: -maxRaw - 1}
	max := analog.Sample{V: fs, Raw: maxRaw}
	return min, max
}

// Read performs a blocking conversion of the channel.
func (p *analogPin) Read() (analog.Sample, error) {
	v, err := p.d.Read(p.ch)
	if err != nil {
		return analog.Sample{}, err
	}
	fs := p.d.Gain().FullScale()
	maxRaw := int64(32767 >> p.d.caps.shift)
	return analog.Sample{
		V:   physic.ElectricPotential(int64(fs) * int64(v) / maxRaw),
		Raw: int32(v),
	}, nil
}

var _ conn.Resource = &Dev{}
var _ analog.PinADC = &analogPin{}
