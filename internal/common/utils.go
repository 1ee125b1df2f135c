package common

import "strconv"

// FormatNumber prints v in its shortest round-tripping decimal form
// (15.2, 60, -0.12), never in exponent notation.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatInt prints an integer reading.
func FormatInt(v int) string {
	return strconv.Itoa(v)
}
