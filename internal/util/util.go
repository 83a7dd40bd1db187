package util

import "strings"

// MakeTextList renders items as a human-readable English list: one item
// alone, two joined with "and", three or more comma-separated with an
// Oxford comma before the final "and".
func MakeTextList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		joined := append([]string(nil), items...)
		joined[len(joined)-1] = "and " + joined[len(joined)-1]
		return strings.Join(joined, ", ")
	}
}
