package utils

import (
	"crypto/rand"
	"os"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestWithSuffix(t *testing.T) {
	os.Unsetenv("API_ENV")
	assert.Equal(t, "PaymentStatusUpdates", WithSuffix("PaymentStatusUpdates"))

	os.Setenv("API_ENV", "staging")
	defer os.Unsetenv("API_ENV")
	assert.Equal(t, "PaymentStatusUpdates-staging", WithSuffix("PaymentStatusUpdates"))
}

func TestEncryptDecryptMessage(t *testing.T) {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	assert.Nil(t, err)

	message := `{"bookingId":3,"renterId":7}`
	enc, err := EncryptMessage(key, message)
	assert.Nil(t, err)
	assert.NotEqual(t, message, enc)

	dec, err := DecryptMessage(key, enc)
	assert.Nil(t, err)
	assert.Equal(t, message, *dec)
}

func TestDecryptMessageWrongKey(t *testing.T) {
	key := make([]byte, 32)
	rand.Read(key)
	enc, err := EncryptMessage(key, "hello")
	assert.Nil(t, err)

	other := make([]byte, 32)
	rand.Read(other)
	_, err = DecryptMessage(other, enc)
	assert.NotNil(t, err)
}

func TestGenerateJWT(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")
	defer os.Unsetenv("JWT_SECRET")

	token, err := GenerateJWT("someone@example.com", 7)
	assert.Nil(t, err)

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	assert.Nil(t, err)
	assert.True(t, parsed.Valid)
	sub, err := parsed.Claims.GetSubject()
	assert.Nil(t, err)
	assert.Equal(t, "7", sub)
}
