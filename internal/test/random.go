package test

import "math/rand/v2"

const (
	lowerAlnum = "abcdefghijklmnopqrstuvwxyz0123456789"
	asciiAlnum = lowerAlnum + "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// RandomASCIIString returns a random alphanumeric string with length in [minLen, maxLen].
func RandomASCIIString(minLen, maxLen int) string {
	return randomFrom(asciiAlnum, minLen, maxLen)
}

// RandomLogin returns a random login already in the normalized lowercase form.
func RandomLogin() string {
	return randomFrom(lowerAlnum, 6, 12) + "@example.com"
}

func randomFrom(alphabet string, minLen, maxLen int) string {
	if minLen <= 0 {
		minLen = 1
	}
	if maxLen < minLen {
		maxLen = minLen
	}
	buf := make([]byte, minLen+rand.IntN(maxLen-minLen+1))
	for i := range buf {
		buf[i] = alphabet[rand.IntN(len(alphabet))]
	}
	return string(buf)
}
