package gel

import (
	"fmt"
	"math"
	"strings"
)

const renderRows = 20

// Render draws res as a text gel, wells at the top.
func Render(res Result) string {
	width := len(res.Lanes)*8 + 2
	var sb strings.Builder

	sb.WriteString(strings.Repeat("=", width) + "\n| ")
	for i := range res.Lanes {
		fmt.Fprintf(&sb, "L%-5d ", i+1)
	}
	sb.WriteString("|\n" + strings.Repeat("-", width) + "\n")

	for row := 0; row < renderRows; row++ {
		pos := float64(row) / renderRows
		sb.WriteString("| ")
		for _, lane := range res.Lanes {
			cell := "       "
			for _, b := range lane {
				if math.Abs(b.Migration-pos) < 0.05 {
					switch {
					case b.Intensity > 0.7:
						cell = "██████ "
					case b.Intensity > 0.4:
						cell = "▓▓▓▓▓▓ "
					default:
						cell = "░░░░░░ "
					}
					break
				}
			}
			sb.WriteString(cell)
		}
		sb.WriteString("|\n")
	}
	sb.WriteString(strings.Repeat("=", width) + "\n")
	sb.WriteString("Bands: ██=strong, ▓▓=medium, ░░=weak\n")
	return sb.String()
}
