package engine

import (
	"errors"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"a@b.c", true},
		{"  bob@x.com ", true},
		{"abc", false},
		{"a.b", false},
		{"a@b", false},
		{"", false},
	}
	for _, tt := range tests {
		_, err := ValidateEmail(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ValidateEmail(%q) err = %v, want ok=%v", tt.in, err, tt.ok)
		}
		if err != nil && !errors.Is(err, ErrValidation) {
			t.Errorf("ValidateEmail(%q) err = %v, want ErrValidation", tt.in, err)
		}
	}
}

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"10.5", "10.5", true},
		{" 25 ", "25", true},
		{".5", ".5", true},
		{"1.", "1.", true},
		{"0", "", false},
		{"0.000", "", false},
		{"-3", "", false},
		{"abc", "", false},
		{"", "", false},
		{"1e3", "", false},
		{"Inf", "", false},
		{"NaN", "", false},
		{"0x10", "", false},
		{"10abc", "", false},
	}
	for _, tt := range tests {
		got, err := ValidateAmount(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ValidateAmount(%q) err = %v, want ok=%v", tt.in, err, tt.ok)
			continue
		}
		if got != tt.want {
			t.Errorf("ValidateAmount(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateAmount_Message(t *testing.T) {
	_, err := ValidateAmount("0")
	var ie *InputError
	if !errors.As(err, &ie) {
		t.Fatalf("err = %v, want *InputError", err)
	}
	if ie.Message != "Invalid amount. Please enter a positive number:" {
		t.Errorf("Message = %q", ie.Message)
	}
}

func TestValidateWalletAddress(t *testing.T) {
	if _, err := ValidateWalletAddress("0123456789"); err != nil {
		t.Errorf("10-character address rejected: %v", err)
	}
	if _, err := ValidateWalletAddress("7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"); err != nil {
		t.Errorf("solana address rejected: %v", err)
	}
	if _, err := ValidateWalletAddress("short"); err == nil {
		t.Error("ValidateWalletAddress(\"short\") should fail")
	}
	if _, err := ValidateWalletAddress("123456789"); err == nil {
		t.Error("9-character address should fail")
	}
}

func TestValidateOptionalMessage(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"skip", ""},
		{"hello", "hello"},
		{"Skip", "Skip"},
		{"lunch money", "lunch money"},
	}
	for _, tt := range tests {
		got, err := ValidateOptionalMessage(tt.in)
		if err != nil {
			t.Errorf("ValidateOptionalMessage(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ValidateOptionalMessage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateOTP(t *testing.T) {
	if got, err := ValidateOTP(" 123456 "); err != nil || got != "123456" {
		t.Errorf("ValidateOTP = (%q, %v), want (\"123456\", nil)", got, err)
	}
	if _, err := ValidateOTP("   "); !errors.Is(err, ErrValidation) {
		t.Errorf("ValidateOTP(blank) err = %v, want ErrValidation", err)
	}
}
