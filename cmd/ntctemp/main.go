// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// ntctemp reads an NTC thermistor through an ADS1x15 and prints the
// temperature, either as log lines, CSV for thermalplot, or a live ANSI
// color strip.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/GermanBionicSystems/thermal/ads1x15"
	"github.com/GermanBionicSystems/thermal/thermalview"
	"github.com/GermanBionicSystems/thermal/thermistor"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

func main() {
	busName := flag.String("bus", "", "I²C bus name, empty for the first available")
	addr := flag.Uint("addr", uint(ads1x15.DefaultAddress), "device address (0x48-0x4B)")
	variant := flag.String("variant", "ADS1115", "device variant (ADS1013-ADS1115)")
	channel := flag.Int("channel", 0, "single-ended input channel")
	divider := flag.Float64("divider", 10000, "series resistor value in ohm")
	wiring := flag.String("wiring", "supply", "thermistor wiring: supply or gnd")
	offset := flag.Float64("offset", 0, "offset added to the temperature in Celsius")
	interval := flag.Duration("interval", time.Second, "time between readings")
	view := flag.Bool("view", false, "render a live color strip instead of logging")
	csv := flag.Bool("csv", false, "print RFC3339,celsius lines for thermalplot")
	flag.Parse()

	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}

	bus, err := i2creg.Open(*busName)
	if err != nil {
		log.Fatal(err)
	}
	defer bus.Close()

	adc, err := ads1x15.NewI2C(bus, uint16(*addr), &ads1x15.Opts{
		Variant: ads1x15.Variant(strings.ToUpper(*variant)),
	})
	if err != nil {
		log.Fatal(err)
	}
	adc.SetMode(ads1x15.SingleShot)

	pin, err := adc.PinForChannel(*channel)
	if err != nil {
		log.Fatal(err)
	}

	opts := thermistor.DefaultOpts
	opts.DividerOhm = *divider
	opts.OffsetCelsius = *offset
	switch strings.ToLower(*wiring) {
	case "supply":
		opts.Wiring = thermistor.NTCToSupply
	case "gnd":
		opts.Wiring = thermistor.NTCToGround
	default:
		log.Fatalf("invalid wiring %q", *wiring)
	}

	dev, err := thermistor.NewPin(pin, thermistor.MA100, &opts)
	if err != nil {
		log.Fatal(err)
	}

	var strip *thermalview.Dev
	if *view {
		strip = thermalview.New(nil)
		defer strip.Halt()
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for {
		var e physic.Env
		if err := dev.Sense(&e); err != nil {
			log.Print(err)
			<-ticker.C
			continue
		}
		switch {
		case strip != nil:
			if err := strip.Push(e.Temperature); err != nil {
				log.Fatal(err)
			}
		case *csv:
			fmt.Printf("%s,%.3f\n", time.Now().Format(time.RFC3339), e.Temperature.Celsius())
		default:
			log.Printf("Temperature: %.3f C", e.Temperature.Celsius())
		}
		<-ticker.C
	}
}
