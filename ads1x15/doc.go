// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ads1x15 controls the Texas Instruments ADS1013/1014/1015 and
// ADS1113/1114/1115 analog to digital converters over an I²C bus.
//
// The six parts share one register map and differ in resolution (12 or 16
// bit), channel count (1 or 4), and whether the programmable gain amplifier
// and the comparator are present. The part is selected at construction time
// and gates the configuration surface: setters for features the part does not
// have are no-ops or return an error.
//
// Single-ended conversions can be requested fire-and-forget with Request and
// collected later with Value, or performed blocking with Read, which in
// single-shot mode polls the status bit until the conversion completes or a
// data-rate derived deadline passes.
//
// # Datasheets
//
// https://www.ti.com/lit/ds/symlink/ads1115.pdf
//
// https://www.ti.com/lit/ds/symlink/ads1015.pdf
package ads1x15
