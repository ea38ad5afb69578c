// Package cart stores the shopping cart on the client as a percent-encoded
// JSON array carried in the "cart" cookie.
package cart

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/ivv-intern/storefront/internal/models"
)

// Encode serializes c into a URL-safe token.
func Encode(c models.Cart) (string, error) {
	if c == nil {
		c = models.Cart{}
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode cart: %w", err)
	}
	return url.QueryEscape(string(raw)), nil
}

// Decode parses a token and never fails: a missing or malformed token yields
// an empty cart and the reason is logged at debug level.
func Decode(token string, logger *slog.Logger) models.Cart {
	c, err := Parse(token)
	if err != nil {
		logger.Debug("discarding malformed cart token", "error", err)
		return models.Cart{}
	}
	return c
}

// Parse is Decode with the failure reported. A cart that decodes but breaks a
// line or uniqueness rule is rejected as a whole.
func Parse(token string) (models.Cart, error) {
	if token == "" {
		return models.Cart{}, nil
	}

	raw, err := url.QueryUnescape(token)
	if err != nil {
		return models.Cart{}, fmt.Errorf("unescape cart token: %w", err)
	}

	var c models.Cart
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return models.Cart{}, fmt.Errorf("unmarshal cart token: %w", err)
	}
	if c == nil {
		return models.Cart{}, nil
	}

	if err := c.Validate(); err != nil {
		return models.Cart{}, fmt.Errorf("invalid cart token: %w", err)
	}

	return c, nil
}
