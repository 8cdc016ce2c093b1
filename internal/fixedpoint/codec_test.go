package fixedpoint

import (
	"math"
	"testing"

	"github.com/tamzrod/rt0013/internal/regmap"
)

const quantum = 1.0 / Scale

func TestRoundTripWithinOneQuantum(t *testing.T) {
	ranges := map[regmap.Channel][2]float64{
		regmap.Temperature: {TempMin, TempMax},
		regmap.Humidity:    {HumMin, HumMax},
	}
	for ch, r := range ranges {
		for v := r[0]; v <= r[1]; v += 0.013 {
			got := Decode(ch, Encode(ch, v))
			if math.Abs(got-v) > quantum {
				t.Fatalf("%v: decode(encode(%f)) = %f", ch, v, got)
			}
		}
		if got := Decode(ch, Encode(ch, r[1])); got != r[1] {
			t.Fatalf("%v: upper bound %f decoded as %f", ch, r[1], got)
		}
	}
}

func TestClamping(t *testing.T) {
	if Encode(regmap.Temperature, 85) != Encode(regmap.Temperature, 70) {
		t.Fatalf("temperature above range must clamp to 70")
	}
	if Encode(regmap.Temperature, -50) != Encode(regmap.Temperature, -30) {
		t.Fatalf("temperature below range must clamp to -30")
	}
	if Encode(regmap.Humidity, 150) != Encode(regmap.Humidity, 100) {
		t.Fatalf("humidity above range must clamp to 100")
	}
}

func TestEncodeCodes(t *testing.T) {
	cases := []struct {
		ch   regmap.Channel
		v    float64
		want uint16
	}{
		{regmap.Temperature, 0, 0},
		{regmap.Temperature, 25.5, 816},
		{regmap.Temperature, 70, 2240},
		{regmap.Temperature, -30, 7232},
		{regmap.Temperature, -1, 8160},
		{regmap.Temperature, -15.25, 7704},
		{regmap.Humidity, 0, 0},
		{regmap.Humidity, 55.5, 1776},
		{regmap.Humidity, 100, 3200},
		{regmap.Humidity, -5, 0},
		{regmap.Humidity, math.NaN(), 0},
	}
	for _, c := range cases {
		if got := Encode(c.ch, c.v); got != c.want {
			t.Fatalf("Encode(%v, %f) = %d want %d", c.ch, c.v, got, c.want)
		}
	}
}

func TestDecodeBands(t *testing.T) {
	cases := []struct {
		ch   regmap.Channel
		raw  uint16
		want float64
	}{
		{regmap.Temperature, 0, 0},
		{regmap.Temperature, 2240, 70},
		{regmap.Temperature, 2241, 70},
		{regmap.Temperature, 7231, 70},
		{regmap.Temperature, 7232, -30},
		{regmap.Temperature, 8191, -1.0 / 32},
		{regmap.Temperature, 8192, 0},
		{regmap.Temperature, 0xFFFF, 0},
		{regmap.Humidity, 1600, 50},
		{regmap.Humidity, 3300, 100},
		{regmap.Humidity, 0x8000, 0},
		{regmap.Humidity, 0xFFFF, 0},
	}
	for _, c := range cases {
		if got := Decode(c.ch, c.raw); got != c.want {
			t.Fatalf("Decode(%v, %d) = %f want %f", c.ch, c.raw, got, c.want)
		}
	}
}

func TestIsValid(t *testing.T) {
	if !IsValid(regmap.Temperature, -30) || !IsValid(regmap.Temperature, 70) {
		t.Fatalf("temperature bounds must be valid")
	}
	if IsValid(regmap.Temperature, 70.01) || IsValid(regmap.Temperature, -30.5) {
		t.Fatalf("temperature outside range must be invalid")
	}
	if !IsValid(regmap.Humidity, 0) || IsValid(regmap.Humidity, -0.1) || IsValid(regmap.Humidity, 100.5) {
		t.Fatalf("humidity range check")
	}
	if IsValid(regmap.Channel(7), 1) {
		t.Fatalf("unknown channel must be invalid")
	}
}
