// Package barcode normalizes scanned codes and generates codes for unlabeled goods.
package barcode

import (
	"math/rand"
	"strconv"
	"strings"
)

const (
	generatedMin = 100000000000
	generatedMax = 999999999999
)

// Normalize strips surrounding whitespace and the CR/LF a hand scanner appends.
// Codes are otherwise opaque strings and are compared byte for byte.
func Normalize(code string) string {
	return strings.TrimSpace(code)
}

// Generate returns a random 12-digit code. It is a convenience for goods that arrive
// without a printed barcode.
func Generate() string {
	n := generatedMin + rand.Int63n(generatedMax-generatedMin+1)
	return strconv.FormatInt(n, 10)
}

// GenerateUnique keeps drawing until taken reports the code as free, up to attempts tries.
// It returns "" when every attempt collided.
func GenerateUnique(taken func(string) bool, attempts int) string {
	for i := 0; i < attempts; i++ {
		code := Generate()
		if !taken(code) {
			return code
		}
	}
	return ""
}
