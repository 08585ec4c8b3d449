package intake

import (
	"errors"
	"strings"
	"testing"
)

func TestValidator_Validate(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name        string
		in          [3]string
		wantMissing []string
		wantInvalid []string
	}{
		{name: "valid", in: [3]string{"Ana", "ana@x.com", "hi"}},
		{name: "surrounding whitespace is fine", in: [3]string{"  Ana ", " ana@x.com ", "\thi\n"}},
		{name: "empty name", in: [3]string{"", "ana@x.com", "hi"}, wantMissing: []string{"name"}},
		{name: "blank message", in: [3]string{"Ana", "ana@x.com", "   "}, wantMissing: []string{"message"}},
		{name: "all missing", in: [3]string{"", "", ""}, wantMissing: []string{"name", "email", "message"}},
		{name: "missing wins over bad email", in: [3]string{"", "nope", "hi"}, wantMissing: []string{"name"}},
		{name: "no at sign", in: [3]string{"Ana", "ana.x.com", "hi"}, wantInvalid: []string{"email"}},
		{name: "no tld", in: [3]string{"Ana", "ana@x", "hi"}, wantInvalid: []string{"email"}},
		{name: "embedded space", in: [3]string{"Ana", "a na@x.com", "hi"}, wantInvalid: []string{"email"}},
		{name: "two at signs", in: [3]string{"Ana", "a@b@x.com", "hi"}, wantInvalid: []string{"email"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.in[0], tt.in[1], tt.in[2])
			if tt.wantMissing == nil && tt.wantInvalid == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if strings.Join(verr.Missing, ",") != strings.Join(tt.wantMissing, ",") {
				t.Errorf("missing: want %v, got %v", tt.wantMissing, verr.Missing)
			}
			if strings.Join(verr.Invalid, ",") != strings.Join(tt.wantInvalid, ",") {
				t.Errorf("invalid: want %v, got %v", tt.wantInvalid, verr.Invalid)
			}
		})
	}
}

func TestValidator_PresenceOnly(t *testing.T) {
	v := Validator{}
	if err := v.Validate("Ana", "not-an-address", strings.Repeat("a", 10000)); err != nil {
		t.Errorf("zero Validator should only check presence, got %v", err)
	}
}

func TestValidator_MessageLength(t *testing.T) {
	v := NewValidator()

	if err := v.Validate("Ana", "ana@x.com", strings.Repeat("あ", DefaultMaxMessageLength)); err != nil {
		t.Errorf("message at the limit should pass, got %v", err)
	}

	err := v.Validate("Ana", "ana@x.com", strings.Repeat("a", DefaultMaxMessageLength+1))
	var verr *ValidationError
	if !errors.As(err, &verr) || !verr.HasInvalid("message") {
		t.Fatalf("expected invalid message, got %v", err)
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Missing: []string{"name", "email"}}
	if got := err.Error(); got != "missing field: name, email" {
		t.Errorf("unexpected message %q", got)
	}
	err = &ValidationError{Invalid: []string{"email"}}
	if got := err.Error(); got != "invalid field: email" {
		t.Errorf("unexpected message %q", got)
	}
}
