// Package adc converts raw 3-byte ADC samples into calibrated millivolt
// readings. The instrument's converter is a 24-bit part referenced at 2.5 V
// with a fixed gain of 4, so full scale spans roughly ±625 mV.
package adc

import "math"

// Default conversion parameters for the instrument's front end.
const (
	// DataBits is the full-scale divisor (2^23) normalizing a 24-bit
	// measurement into [-1, 1) before voltage scaling.
	DataBits = 1 << 23

	VRef = 2.5
	Gain = 4.0
)

// Sample holds the three raw bytes of one measurement, most significant
// first. Immutable once read off the wire.
type Sample struct {
	Data0 uint8
	Data1 uint8
	Data2 uint8
}

// Measurement concatenates the sample bytes into an unsigned 24-bit integer.
// No sign extension is applied.
func (s Sample) Measurement() uint32 {
	return uint32(s.Data0)<<16 | uint32(s.Data1)<<8 | uint32(s.Data2)
}

// Reading is a converted sample: the raw bytes, the 24-bit measurement, and
// the calibrated voltage in millivolts rounded to 4 decimal digits.
type Reading struct {
	Sample      Sample
	Measurement uint32
	VoltageMV   float64
}

// Convert maps one raw sample to a Reading using the default instrument
// parameters. Pure and deterministic: the same three bytes always yield the
// same reading.
func Convert(s Sample) Reading {
	return ConvertWith(s, DataBits, VRef, Gain)
}

// ConvertWith applies the affine transform with explicit parameters:
//
//	mv = ((measurement / dataBits) - 1) * vref / gain * 1000
//
// rounded half-away-from-zero to 4 decimal digits.
func ConvertWith(s Sample, dataBits float64, vref, gain float64) Reading {
	m := s.Measurement()
	mv := (float64(m)/dataBits - 1) * vref / gain * 1000
	return Reading{
		Sample:      s,
		Measurement: m,
		VoltageMV:   round4(mv),
	}
}

// ConvertBatch converts every sample of a channel in order.
func ConvertBatch(samples []Sample) []Reading {
	readings := make([]Reading, len(samples))
	for i, s := range samples {
		readings[i] = Convert(s)
	}
	return readings
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
