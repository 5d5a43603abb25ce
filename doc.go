// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package thermal is a container for NTC thermistor temperature conversion
// and a driver for the ADS1x15 family of analog to digital converters.
package thermal
