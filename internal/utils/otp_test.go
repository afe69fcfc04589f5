package utils

import "testing"

func TestOTPShape(t *testing.T) {
	source := NewOTPSource()

	for i := 0; i < 20; i++ {
		otp, err := source.OTP()
		if err != nil {
			t.Fatalf("Failed to generate OTP: %v", err)
		}
		if len(otp) != otpLength {
			t.Fatalf("Expected OTP of length %d, got %q", otpLength, otp)
		}
		for _, char := range otp {
			if char < '0' || char > '9' {
				t.Fatalf("Expected numeric OTP, got %q", otp)
			}
		}
	}
}

func TestFlowTokenUniqueness(t *testing.T) {
	source := NewOTPSource()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token := source.FlowToken()
		if token == "" {
			t.Fatal("Expected non-empty flow token")
		}
		if seen[token] {
			t.Fatalf("Flow token %q repeated", token)
		}
		seen[token] = true
	}
}
