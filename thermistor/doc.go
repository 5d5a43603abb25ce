// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package thermistor converts NTC thermistor readings to temperature using
// the Steinhart-Hart equation.
//
// The thermistor is assumed to be wired in a voltage divider with a fixed
// series resistor. The converter is calibrated from three reference points
// (temperature, resistance) and solves the Steinhart-Hart coefficients in
// closed form:
//
//	1/T = a + b·ln(R) + c·ln(R)³
//
// A Converter transforms raw ADC counts from any source into resistance and
// temperature. A Dev binds a Converter to an analog.PinADC so it can be used
// like any other periph temperature sensor through physic.SenseEnv.
//
// # Reference
//
// John M. Zurbuchen. Precision thermistor thermometry. Measurement Science
// Conference Tutorial: Thermometry-Fundamentals and Practice, 2000.
package thermistor
