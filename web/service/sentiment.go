package service

import "strings"

var (
	positiveWords = []string{"good", "great", "amazing", "love", "excellent", "enjoyed"}
	negativeWords = []string{"bad", "boring", "terrible", "awful", "hate", "worst"}
)

// SentimentScore rates a comment in [0, 1] by counting positive and negative
// keywords; 0.5 is neutral. It returns nil for an empty comment.
func SentimentScore(text string) *float64 {
	if text == "" {
		return nil
	}
	lower := strings.ToLower(text)
	count := func(words []string) float64 {
		n := 0
		for _, w := range words {
			if strings.Contains(lower, w) {
				n++
			}
		}
		return float64(n)
	}
	pos, neg := count(positiveWords), count(negativeWords)
	raw := (pos - neg) / (pos + neg + 1e-6)
	score := min(1.0, max(0.0, (raw+1)/2))
	return &score
}
