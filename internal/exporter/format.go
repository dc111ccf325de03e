package exporter

import (
	"fmt"
	"math"
	"strconv"
)

// formatCell renders an export cell as text for CSV output. Numbers keep at
// most two decimals without trailing zeros; everything else passes through
// fmt.
func formatCell(v interface{}) string {
	switch c := v.(type) {
	case string:
		return c
	case float64:
		return strconv.FormatFloat(round2(c), 'f', -1, 64)
	case int:
		return strconv.Itoa(c)
	default:
		return fmt.Sprintf("%v", c)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
