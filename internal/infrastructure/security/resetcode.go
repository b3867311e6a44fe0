package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
)

const resetCodeDigits = 6

var resetCodeSpan = big.NewInt(900000) // 100000..999999

// ResetCodes generates six-digit numeric codes and their sha256 hex digest.
type ResetCodes struct {
	rand io.Reader
}

func NewResetCodes() *ResetCodes {
	return &ResetCodes{rand: rand.Reader}
}

func (c *ResetCodes) New() (string, error) {
	n, err := rand.Int(c.rand, resetCodeSpan)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", resetCodeDigits, n.Int64()+100000), nil
}

func (c *ResetCodes) Hash(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
