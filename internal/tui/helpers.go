// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// AlignFooter returns a single-line string where `right` is right-aligned
// within `width` columns and `left` is at the start. If width is too small
// a single space separates the tokens.
func AlignFooter(left, right string, width int) string {
	leftLen := utf8.RuneCountInString(left)
	rightLen := utf8.RuneCountInString(right)
	spaces := width - leftLen - rightLen
	if spaces < 1 {
		spaces = 1
	}
	return left + strings.Repeat(" ", spaces) + right
}

// humanBytes renders a byte count in the largest sensible unit.
func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// truncate shortens s to max runes, appending an ellipsis when clipped.
func truncate(s string, max int) string {
	if max <= 3 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}

// fuzzyMatchThreshold is the maximum edit distance for a fuzzy filter hit.
const fuzzyMatchThreshold = 2

// matchesFilter reports whether candidate matches the filter string. Substring
// matches always win; short filters additionally match on small edit distance
// so a typo still narrows the list.
func matchesFilter(candidate, filter string) bool {
	if filter == "" {
		return true
	}
	c := strings.ToLower(candidate)
	f := strings.ToLower(filter)
	if strings.Contains(c, f) {
		return true
	}
	// Fuzzy fallback only makes sense when the filter is comparable in
	// length to the words it is matched against.
	for _, word := range strings.FieldsFunc(c, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '/' || r == '.'
	}) {
		if abs(len(word)-len(f)) <= fuzzyMatchThreshold && levenshtein.ComputeDistance(word, f) <= fuzzyMatchThreshold {
			return true
		}
	}
	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
