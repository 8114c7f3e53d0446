package tags

import "strings"

// maxTagLength matches the tag name column width.
const maxTagLength = 50

// Normalize cleans up a raw tag list: whitespace is trimmed, empty entries
// are dropped, over-long names are truncated, and duplicates are removed
// case-insensitively (first spelling wins). Order is preserved.
func Normalize(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	var out []string
	for _, tag := range raw {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if runes := []rune(tag); len(runes) > maxTagLength {
			tag = string(runes[:maxTagLength])
		}
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tag)
	}
	return out
}
