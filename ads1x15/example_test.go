// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ads1x15_test

import (
	"log"

	"github.com/GermanBionicSystems/thermal/ads1x15"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// Example demonstrating a single-shot conversion of channel 0 on an ADS1115.
func Example() {
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	bus, err := i2creg.Open("")
	if err != nil {
		log.Fatal(err)
	}
	defer bus.Close()

	adc, err := ads1x15.NewI2C(bus, ads1x15.DefaultAddress, nil)
	if err != nil {
		log.Fatal(err)
	}
	adc.SetMode(ads1x15.SingleShot)
	adc.SetGain(ads1x15.Gain1) // ±4.096V

	v, err := adc.Read(0)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("AIN0 = %d counts", v)
}
