package types

import "strings"

// WordsPerMinute is the reading speed used for ReadingTimeMinutes.
const WordsPerMinute = 200

// CountWords returns the number of whitespace separated words in s.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

// ReadingTimeMinutes returns ceil(words / WordsPerMinute).
func ReadingTimeMinutes(words int) int {
	if words <= 0 {
		return 0
	}
	return (words + WordsPerMinute - 1) / WordsPerMinute
}
