// Package webhook authenticates payment provider events and routes the ones
// the storefront acts on.
package webhook

import (
	"errors"
	"time"

	stripewebhook "github.com/stripe/stripe-go/v76/webhook"

	"storefront/internal/apperr"
)

// SignatureHeader carries the provider's signature over the raw body.
const SignatureHeader = "Stripe-Signature"

// Verifier checks a signature over the exact bytes received. It must not
// look inside the payload.
type Verifier interface {
	Verify(payload []byte, signature string) error
}

type StripeVerifier struct {
	secret    string
	tolerance time.Duration
}

func NewStripeVerifier(secret string) *StripeVerifier {
	return &StripeVerifier{secret: secret, tolerance: stripewebhook.DefaultTolerance}
}

func (v *StripeVerifier) Verify(payload []byte, signature string) error {
	if v.secret == "" {
		return apperr.Signature("webhook secret not configured", nil)
	}
	if signature == "" {
		return apperr.Signature("missing signature", nil)
	}
	if err := stripewebhook.ValidatePayloadWithTolerance(payload, signature, v.secret, v.tolerance); err != nil {
		return apperr.Signature("invalid signature", err)
	}
	return nil
}

var errEmptyPayload = errors.New("empty payload")
