package regime

import (
	"fmt"
	"strings"
)

// FormatReport renders a classification result as a plain-text block
// for CLI output.
func FormatReport(res Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Liquidity Regime: %s (confidence %.0f%%)\n", res.Primary, res.Confidence*100)
	b.WriteString(strings.Repeat("-", 48) + "\n")
	for _, r := range All {
		marker := "  "
		if r == res.Primary {
			marker = "> "
		}
		fmt.Fprintf(&b, "%s%-12s %s %5.1f\n", marker, r, bar(res.Scores[r]), res.Scores[r])
	}

	if len(res.Explanations) > 0 {
		b.WriteString("\n")
		for _, e := range res.Explanations {
			fmt.Fprintf(&b, "  - %s\n", e)
		}
	}
	if res.Warning != "" {
		fmt.Fprintf(&b, "\n  ! %s\n", res.Warning)
	}
	return b.String()
}

// bar renders a 20-cell score bar.
func bar(score float64) string {
	filled := int(score / 5)
	if filled < 0 {
		filled = 0
	}
	if filled > 20 {
		filled = 20
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", 20-filled) + "]"
}
