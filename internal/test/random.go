package test

import (
	"math/rand/v2"
	"strings"
)

const (
	asciiLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	digits       = "0123456789"
)

// RandomASCIIString returns a pseudo-random ASCII string within the provided bounds.
// When maxLen equals minLen the resulting string always has that exact length.
func RandomASCIIString(minLen, maxLen int) string {
	return randomFrom(asciiLetters, minLen, maxLen)
}

// RandomPhone returns a phone number with the formatting characters customers
// tend to type, e.g. "+63 (917) 555-0134".
func RandomPhone() string {
	var b strings.Builder
	b.WriteString("+63 (")
	b.WriteString(randomFrom(digits, 3, 3))
	b.WriteString(") ")
	b.WriteString(randomFrom(digits, 3, 3))
	b.WriteString("-")
	b.WriteString(randomFrom(digits, 4, 4))
	return b.String()
}

func randomFrom(alphabet string, minLen, maxLen int) string {
	if minLen <= 0 {
		minLen = 1
	}
	if maxLen < minLen {
		maxLen = minLen
	}
	length := minLen + rand.IntN(maxLen-minLen+1)
	buf := make([]byte, length)
	for i := range buf {
		buf[i] = alphabet[rand.IntN(len(alphabet))]
	}
	return string(buf)
}
