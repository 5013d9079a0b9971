package http

import (
	"errors"
	"strings"
	"testing"
)

func TestHex32Validation(t *testing.T) {
	type P struct {
		Party string `json:"party" validate:"hex32"`
	}
	cv := NewValidator()

	// valid: 32-char lowercase hex
	ok := P{Party: strings.Repeat("a", 32)}
	if err := cv.Validate(ok); err != nil {
		t.Fatalf("expected valid hex32, got err: %v", err)
	}

	// invalid samples
	for _, s := range []string{
		"",                                  // empty
		strings.Repeat("A", 32),             // uppercase
		"deadbeef",                          // too short
		strings.Repeat("g", 32),             // non-hex char
		"3f9a6a1b3d544fbe8b3a6b3e8d6b2c8",   // 31 chars
		"3f9a6a1b3d544fbe8b3a6b3e8d6b2c88x", // 33 with extra
	} {
		err := cv.Validate(P{Party: s})
		if err == nil {
			t.Fatalf("expected error for %q", s)
		}
		if fe := ToFieldErrors(err); !containsFieldMsg(fe, "party", "32-char lowercase hex") {
			t.Fatalf("expected hex32 message for %q, got: %+v", s, fe)
		}
	}
}

func TestUintStrValidation(t *testing.T) {
	type P struct {
		Amount string `json:"amount" validate:"uintstr"`
	}
	cv := NewValidator()

	for _, v := range []string{"0", "1", "1000000000000000000000", strings.Repeat("9", 78)} {
		if err := cv.Validate(P{Amount: v}); err != nil {
			t.Fatalf("expected uintstr OK for %q, got %v", v, err)
		}
	}
	for _, v := range []string{"", "-1", "1.5", "1e18", " 10", "0x10", strings.Repeat("9", 79)} {
		err := cv.Validate(P{Amount: v})
		if err == nil {
			t.Fatalf("expected uintstr error for %q", v)
		}
		if fe := ToFieldErrors(err); !containsFieldMsg(fe, "amount", "non-negative integer") {
			t.Fatalf("expected 'non-negative integer' for %q, got %+v", v, fe)
		}
	}
}

func TestTokenValidation(t *testing.T) {
	type P struct {
		Token string `json:"token" validate:"token"`
	}
	cv := NewValidator()

	for _, v := range []string{"fdaix", "usdcx", "t0"} {
		if err := cv.Validate(P{Token: v}); err != nil {
			t.Fatalf("expected token OK for %q, got %v", v, err)
		}
	}
	for _, v := range []string{"", "FDAIx", "fda-ix", strings.Repeat("a", 33)} {
		err := cv.Validate(P{Token: v})
		if err == nil {
			t.Fatalf("expected token error for %q", v)
		}
		if fe := ToFieldErrors(err); !containsFieldMsg(fe, "token", "lowercase letters or digits") {
			t.Fatalf("unexpected details for %q: %+v", v, fe)
		}
	}
}

func TestRangeAndRequiredMessages(t *testing.T) {
	type P struct {
		TermMonths uint32 `json:"term_months" validate:"required,lte=600"`
		RatePct    uint32 `json:"annual_interest_rate_pct" validate:"gte=1"`
		Lender     string `json:"lender" validate:"required"`
		Borrower   string `json:"borrower" validate:"nefield=Lender"`
	}
	cv := NewValidator()

	fe := ToFieldErrors(cv.Validate(P{TermMonths: 601, Borrower: "x", Lender: "x"}))
	if !containsFieldMsg(fe, "term_months", "less than or equal to 600") {
		t.Fatalf("lte message missing: %+v", fe)
	}
	if !containsFieldMsg(fe, "annual_interest_rate_pct", "greater than or equal to 1") {
		t.Fatalf("gte message missing: %+v", fe)
	}
	if !containsFieldMsg(fe, "borrower", "must differ from Lender") {
		t.Fatalf("nefield message missing: %+v", fe)
	}

	fe = ToFieldErrors(cv.Validate(P{RatePct: 1, Borrower: "y"}))
	if !containsFieldMsg(fe, "term_months", "is required") || !containsFieldMsg(fe, "lender", "is required") {
		t.Fatalf("required messages missing: %+v", fe)
	}
}

func TestToFieldErrors_NonValidatorError(t *testing.T) {
	fe := ToFieldErrors(errors.New("boom"))
	if len(fe) != 1 || fe[0].Field != "_" || fe[0].Message != "boom" {
		t.Fatalf("unexpected: %+v", fe)
	}
}
