package tool

import (
	"crypto/rand"
	"math/big"
)

const (
	slugAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	slugLength   = 8
)

// GenerateSlug returns an 8-character random string over [A-Za-z] from the
// OS entropy source. The slug is the only thing standing between the shared
// files and the world, so a general-purpose PRNG is not acceptable here.
// Entropy exhaustion is not recoverable; it aborts the process.
func GenerateSlug() string {
	max := big.NewInt(int64(len(slugAlphabet)))
	buf := make([]byte, slugLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			DefaultLogger.Fatalf("system entropy source failed: %v", err)
		}
		buf[i] = slugAlphabet[n.Int64()]
	}
	return string(buf)
}
