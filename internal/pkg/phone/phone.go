// Package phone validates the phone-number and OTP formats accepted by the
// OTP login flow.
package phone

import "regexp"

// E.164: "+" then 1-15 digits, first digit non-zero.
var e164 = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

var sixDigits = regexp.MustCompile(`^\d{6}$`)

// IsE164 reports whether s is a valid E.164 phone number.
func IsE164(s string) bool { return e164.MatchString(s) }

// IsOTP reports whether s is a well-formed 6-digit one-time code.
func IsOTP(s string) bool { return sixDigits.MatchString(s) }
