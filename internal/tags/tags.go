// Package tags extracts and normalizes hashtag labels from item text.
package tags

import (
	"strings"
	"unicode"
)

const maxLabelLen = 64

// Extract returns the normalized hashtags found in text, in first-seen order
// and without duplicates.
func Extract(text string) []string {
	var out []string
	seen := make(map[string]struct{})

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '#' {
			continue
		}
		// a hashtag must start a word: "issue#12" is not a tag
		if i > 0 && isTagRune(runes[i-1]) {
			continue
		}

		j := i + 1
		for j < len(runes) && isTagRune(runes[j]) {
			j++
		}

		if label := Normalize(string(runes[i+1 : j])); label != "" {
			if _, dup := seen[label]; !dup {
				seen[label] = struct{}{}
				out = append(out, label)
			}
		}
		i = j - 1
	}

	return out
}

// Normalize lowercases a label and strips a leading '#' and surrounding
// whitespace. Labels that are empty, purely numeric, or too long normalize to "".
func Normalize(label string) string {
	label = strings.TrimSpace(label)
	label = strings.TrimLeft(label, "#")
	label = strings.ToLower(label)

	if label == "" || len(label) > maxLabelLen {
		return ""
	}

	allDigits := true
	for _, r := range label {
		if !isTagRune(r) {
			return ""
		}
		if !unicode.IsDigit(r) {
			allDigits = false
		}
	}
	if allDigits {
		return ""
	}

	return label
}

// NormalizeAll normalizes labels, dropping invalid ones and duplicates.
func NormalizeAll(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))

	for _, l := range labels {
		n := Normalize(l)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}

	return out
}

func isTagRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
