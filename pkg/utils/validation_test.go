package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"user@example.com",
		"first.last+tag@sub.example.co.uk",
		"UPPER@EXAMPLE.COM",
	}
	for _, email := range valid {
		assert.True(t, ValidateEmail(email), email)
	}

	invalid := []string{
		"",
		"plain",
		"missing@tld",
		"@example.com",
		"user@.com",
		"user @example.com",
	}
	for _, email := range invalid {
		assert.False(t, ValidateEmail(email), email)
	}
}

func TestValidateSlug(t *testing.T) {
	assert.NoError(t, ValidateSlug("acme"))
	assert.NoError(t, ValidateSlug("acme-stores-2"))

	assert.Error(t, ValidateSlug(""))
	assert.Error(t, ValidateSlug("Acme"))
	assert.Error(t, ValidateSlug("acme_stores"))
	assert.Error(t, ValidateSlug("-leading"))
	assert.Error(t, ValidateSlug("trailing-"))
	assert.Error(t, ValidateSlug(strings.Repeat("a", 101)))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("Sufficient1"))

	cases := map[string]string{
		"short":    "Ab1",
		"no upper": "sufficient1",
		"no lower": "SUFFICIENT1",
		"no digit": "Sufficient",
		"too long": "A1" + strings.Repeat("a", 127),
	}
	for name, password := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, ValidatePassword(password))
		})
	}
}

func TestValidateDomainEntry(t *testing.T) {
	valid := []string{
		"example.com",
		"shop.example.com",
		"*.example.com",
		"Example.COM",
		"  example.com  ",
	}
	for _, domain := range valid {
		assert.NoError(t, ValidateDomainEntry(domain), domain)
	}

	invalid := []string{
		"",
		"localhost",
		"http//broken",
		"*.too.*.many.com",
		"ex ample.com",
		"-leading.example.com",
	}
	for _, domain := range invalid {
		assert.Error(t, ValidateDomainEntry(domain), domain)
	}
}

func TestValidateHexColor(t *testing.T) {
	assert.NoError(t, ValidateHexColor("#4F46E5"))
	assert.NoError(t, ValidateHexColor("#abcdef"))

	assert.Error(t, ValidateHexColor("4F46E5"))
	assert.Error(t, ValidateHexColor("#FFF"))
	assert.Error(t, ValidateHexColor("#GGGGGG"))
	assert.Error(t, ValidateHexColor("blue"))
}

func TestValidateShopDomain(t *testing.T) {
	assert.NoError(t, ValidateShopDomain("my-store.myshopify.com"))
	assert.NoError(t, ValidateShopDomain("  My-Store.MYSHOPIFY.com "))

	assert.Error(t, ValidateShopDomain(""))
	assert.Error(t, ValidateShopDomain("my-store.example.com"))
	assert.Error(t, ValidateShopDomain("my store.myshopify.com"))
}
