package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var (
	emailRegex  = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	slugRegex   = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	domainRegex = regexp.MustCompile(`^(\*\.)?([a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}$`)
	colorRegex  = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

// ValidateEmail validates email address format
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidateSlug validates an organization slug.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("slug cannot be empty")
	}
	if len(slug) > 100 {
		return fmt.Errorf("slug must not exceed 100 characters")
	}
	if !slugRegex.MatchString(slug) {
		return fmt.Errorf("slug may only contain lowercase letters, digits and hyphens")
	}
	return nil
}

// ValidatePassword validates password strength
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}
	if len(password) > 128 {
		return fmt.Errorf("password must not exceed 128 characters")
	}

	var hasUpper, hasLower, hasNumber bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

// ValidateDomainEntry validates an allowlist entry. A leading "*."
// marks a wildcard subdomain entry.
func ValidateDomainEntry(domain string) error {
	domain = strings.TrimSpace(strings.ToLower(domain))
	if domain == "" {
		return fmt.Errorf("domain cannot be empty")
	}
	if !domainRegex.MatchString(domain) {
		return fmt.Errorf("invalid domain: %s", domain)
	}
	return nil
}

// ValidateHexColor validates a "#RRGGBB" widget color value.
func ValidateHexColor(color string) error {
	if !colorRegex.MatchString(color) {
		return fmt.Errorf("color must be a #RRGGBB hex value")
	}
	return nil
}

// ValidateAgentName validates an agent display name.
func ValidateAgentName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("agent name cannot be empty")
	}
	if len(name) > 255 {
		return fmt.Errorf("agent name must not exceed 255 characters")
	}
	return nil
}

// ValidateShopDomain validates a Shopify shop domain
// ("my-store.myshopify.com").
func ValidateShopDomain(shop string) error {
	shop = strings.TrimSpace(strings.ToLower(shop))
	if shop == "" {
		return fmt.Errorf("shop domain cannot be empty")
	}
	if !strings.HasSuffix(shop, ".myshopify.com") {
		return fmt.Errorf("shop domain must end in .myshopify.com")
	}
	if !domainRegex.MatchString(shop) {
		return fmt.Errorf("invalid shop domain: %s", shop)
	}
	return nil
}
