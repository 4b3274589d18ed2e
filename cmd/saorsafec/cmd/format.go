package cmd

import (
	"fmt"
	"strings"
)

var sizeUnits = []string{"B", "KiB", "MiB", "GiB", "TiB"}

// formatSize renders a byte count using binary (1024-based) units,
// picking the largest unit under which size still shows at least one
// whole digit before the decimal point.
func formatSize(size int64) string {
	value := float64(size)
	unit := 0
	for value >= 1024 && unit < len(sizeUnits)-1 {
		value /= 1024
		unit++
	}
	if unit == 0 {
		return fmt.Sprintf("%d %s", size, sizeUnits[unit])
	}
	return fmt.Sprintf("%.1f %s", value, sizeUnits[unit])
}

// hexdump prints data sixteen bytes per line, each line labelled with
// prefix and its byte offset, for -debug-header's shard-header dumps.
func hexdump(data []byte, prefix string) {
	const width = 16
	for i := 0; i < len(data); i += width {
		end := i + width
		if end > len(data) {
			end = len(data)
		}
		row := data[i:end]

		hexParts := make([]string, width)
		for j := 0; j < width; j++ {
			if j < len(row) {
				hexParts[j] = fmt.Sprintf("%02x", row[j])
			} else {
				hexParts[j] = "  "
			}
		}

		ascii := make([]byte, len(row))
		for j, b := range row {
			if b >= 32 && b < 127 {
				ascii[j] = b
			} else {
				ascii[j] = '.'
			}
		}

		fmt.Printf("[%s] %04x: %s  %s\n", prefix, i, strings.Join(hexParts, " "), ascii)
	}
}
