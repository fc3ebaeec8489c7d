package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateServe(t *testing.T) {
	complete := Config{
		MongoURI:  "mongodb://localhost:27017",
		JWTSecret: "secret",
		Stripe:    StripeConfig{SecretKey: "sk_test_x"},
	}
	require.NoError(t, complete.ValidateServe())

	noJWT := complete
	noJWT.JWTSecret = ""
	err := noJWT.ValidateServe()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	err = Config{}.ValidateServe()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGO_URI, JWT_SECRET, STRIPE_SECRET_KEY")
}
