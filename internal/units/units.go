// Package units converts time deltas and physical quantities into
// display strings. All functions are pure.
package units

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatMinutes renders a whole-minute count as "Xh Ym", "Xh" when there
// is no remainder, or "Ym" for anything under an hour. Zero renders "0m".
func FormatMinutes(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	h := minutes / 60
	m := minutes % 60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

// FormatVolume renders a millilitre amount, trimming trailing zeros
// (e.g. 120 → "120ml", 87.5 → "87.5ml").
func FormatVolume(ml float64) string {
	return trimFloat(ml) + "ml"
}

// FormatWeight renders a kilogram amount (e.g. 4.25 → "4.25kg").
func FormatWeight(kg float64) string {
	return trimFloat(kg) + "kg"
}

// FormatLength renders a centimetre amount (e.g. 54.5 → "54.5cm").
func FormatLength(cm float64) string {
	return trimFloat(cm) + "cm"
}

// FormatTemperature renders a Celsius reading with one decimal place
// (e.g. 38 → "38.0°C").
func FormatTemperature(celsius float64) string {
	return fmt.Sprintf("%.1f°C", celsius)
}

// trimFloat formats a float with up to two decimals, dropping trailing
// zeros and the decimal point itself when unneeded.
func trimFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}
