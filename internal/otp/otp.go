// Package otp issues the one-time codes shared by the registration,
// resend, forgot-password and reset-password flows.
package otp

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// Validity is the expiry horizon applied identically by every caller.
const Validity = 10 * time.Minute

// CodeLength is the number of decimal digits in a code.
const CodeLength = 6

// Issue returns a 6-digit decimal code drawn uniformly from
// [100000, 999999] and its expiry instant. The code is single-use and short
// lived, so a general PRNG is sufficient here.
func Issue() (string, time.Time) {
	code := 100000 + rand.IntN(900000)
	return fmt.Sprintf("%06d", code), time.Now().Add(Validity)
}
