package util

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// 혼동되는 문자(0/O, 1/I/L)는 제외
const referenceAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// GenerateRandomNumber generates a random number between min and max (inclusive)
func GenerateRandomNumber(min, max int) int {
	return min + rand.Intn(max-min+1)
}

// RandomString returns n characters drawn from the reference alphabet.
func RandomString(n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(referenceAlphabet[rand.Intn(len(referenceAlphabet))])
	}
	return b.String()
}

// GenerateReference builds a human-readable reference such as "CP-20260115-7KX2M9QA".
// The date part is taken in the location of at.
func GenerateReference(prefix string, at time.Time) string {
	return fmt.Sprintf("%s-%s-%s", prefix, at.Format("20060102"), RandomString(8))
}
