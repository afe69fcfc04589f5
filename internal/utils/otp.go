package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// otpLength is the fixed length of all OTP codes.
const otpLength = 6

// OTPSource mints the opaque credentials that get persisted as Token
// records: short OTP codes and single-use signup flow tokens. Tests swap in
// a deterministic source.
type OTPSource interface {
	OTP() (string, error)
	FlowToken() string
}

type randomOTPSource struct{}

// NewOTPSource returns the crypto/rand backed OTP source
func NewOTPSource() OTPSource {
	return randomOTPSource{}
}

// OTP generates a random numeric code of the fixed OTP length
func (randomOTPSource) OTP() (string, error) {
	var b strings.Builder
	b.Grow(otpLength)

	max := big.NewInt(10)
	for i := 0; i < otpLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate otp digit: %w", err)
		}
		b.WriteByte(byte('0' + n.Int64()))
	}

	return b.String(), nil
}

// FlowToken generates an opaque token gating the signup completion step
func (randomOTPSource) FlowToken() string {
	return uuid.New().String()
}
