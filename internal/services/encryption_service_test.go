package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	svc := NewEncryptionService("test-encryption-key")

	plaintext := "shpat_super_secret_token"
	ciphertext, err := svc.Encrypt(plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, ciphertext)

	decrypted, err := svc.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestEncryptProducesDistinctCiphertexts(t *testing.T) {
	svc := NewEncryptionService("test-encryption-key")

	// Random IVs keep identical plaintexts from leaking equality.
	a, err := svc.Encrypt("same value")
	require.NoError(t, err)
	b, err := svc.Encrypt("same value")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecryptWithWrongKeyFails(t *testing.T) {
	svc := NewEncryptionService("test-encryption-key")
	other := NewEncryptionService("a-different-key-entirely")

	ciphertext, err := svc.Encrypt("secret")
	require.NoError(t, err)

	decrypted, err := other.Decrypt(ciphertext)
	if err == nil {
		// CFB decryption with a wrong key yields garbage rather than
		// an error.
		assert.NotEqual(t, "secret", decrypted)
	}
}

func TestDecryptGarbageFails(t *testing.T) {
	svc := NewEncryptionService("test-encryption-key")

	_, err := svc.Decrypt("not-base64!!!")
	assert.Error(t, err)

	_, err = svc.Decrypt("dG9vc2hvcnQ")
	assert.Error(t, err)
}

func TestEncryptJSONRoundTrip(t *testing.T) {
	svc := NewEncryptionService("test-encryption-key")

	in := map[string]interface{}{
		"shop_domain":  "acme.myshopify.com",
		"access_token": "shpat_secret",
	}
	ciphertext, err := svc.EncryptJSON(in)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, svc.DecryptJSON(ciphertext, &out))
	assert.Equal(t, in, out)
}
