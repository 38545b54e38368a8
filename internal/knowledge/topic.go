// Package knowledge holds the canned topic catalog and the keyword matcher used to answer
// free-text questions before the onboarding flow gets a say.
package knowledge

import "strings"

const previewLength = 100

// Topic is a canned response bundle keyed by trigger keywords.
type Topic struct {
	ID               string   `yaml:"id" json:"id"`
	Keywords         []string `yaml:"keywords" json:"keywords"`
	Response         string   `yaml:"response" json:"response"`
	SuggestedReplies []string `yaml:"suggested_replies" json:"suggested_replies"`
}

// Matches reports whether any keyword is contained in the already lower-cased input.
func (t Topic) Matches(lowered string) bool {
	for _, keyword := range t.Keywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

// Preview returns the first characters of the response followed by an ellipsis.
func (t Topic) Preview() string {
	runes := []rune(t.Response)
	if len(runes) <= previewLength {
		return t.Response + "..."
	}
	return string(runes[:previewLength]) + "..."
}

func (t Topic) clone() Topic {
	out := t
	out.Keywords = append([]string(nil), t.Keywords...)
	out.SuggestedReplies = append([]string(nil), t.SuggestedReplies...)
	return out
}
