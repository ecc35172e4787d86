package relevance

import "strings"

// containsAny reports whether text contains any of terms.
func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if term != "" && strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// weigh sums titleWeight for each term found in title and contentWeight for
// each term found in content. Inputs must already be lowercase.
func weigh(title, content string, terms []string, titleWeight, contentWeight int) int {
	score := 0
	for _, term := range terms {
		if strings.Contains(title, term) {
			score += titleWeight
		}
		if strings.Contains(content, term) {
			score += contentWeight
		}
	}
	return score
}
