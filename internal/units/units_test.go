package units

import "testing"

func TestFormatMinutes(t *testing.T) {
	cases := []struct {
		minutes int
		want    string
	}{
		{0, "0m"},
		{1, "1m"},
		{15, "15m"},
		{59, "59m"},
		{60, "1h"},
		{90, "1h 30m"},
		{120, "2h"},
		{125, "2h 5m"},
		{615, "10h 15m"},
	}
	for _, c := range cases {
		if got := FormatMinutes(c.minutes); got != c.want {
			t.Errorf("FormatMinutes(%d) = %q, want %q", c.minutes, got, c.want)
		}
	}
}

func TestFormatVolume(t *testing.T) {
	cases := []struct {
		ml   float64
		want string
	}{
		{120, "120ml"},
		{87.5, "87.5ml"},
		{90.25, "90.25ml"},
		{0, "0ml"},
	}
	for _, c := range cases {
		if got := FormatVolume(c.ml); got != c.want {
			t.Errorf("FormatVolume(%v) = %q, want %q", c.ml, got, c.want)
		}
	}
}

func TestFormatWeightAndLength(t *testing.T) {
	if got := FormatWeight(4.25); got != "4.25kg" {
		t.Errorf("FormatWeight(4.25) = %q, want %q", got, "4.25kg")
	}
	if got := FormatWeight(5); got != "5kg" {
		t.Errorf("FormatWeight(5) = %q, want %q", got, "5kg")
	}
	if got := FormatLength(54.5); got != "54.5cm" {
		t.Errorf("FormatLength(54.5) = %q, want %q", got, "54.5cm")
	}
}

func TestFormatTemperature(t *testing.T) {
	if got := FormatTemperature(38); got != "38.0°C" {
		t.Errorf("FormatTemperature(38) = %q, want %q", got, "38.0°C")
	}
	if got := FormatTemperature(36.5); got != "36.5°C" {
		t.Errorf("FormatTemperature(36.5) = %q, want %q", got, "36.5°C")
	}
}
