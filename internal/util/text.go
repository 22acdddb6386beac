package util

import "strings"

// CleanText collapses all whitespace runs to single spaces
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Truncate cuts text to maxChars runes followed by an ellipsis
func Truncate(text string, maxChars int) string {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return strings.TrimRight(string(runes[:maxChars]), " \t\n") + "…"
}

// Dedupe drops empty and repeated strings, keeping first occurrences
func Dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, item := range items {
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}
