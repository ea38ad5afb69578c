// Package payment builds SEPA credit transfer QR payloads and renders them
// as scannable images.
package payment

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ivv-intern/storefront/internal/apperror"
	"github.com/shopspring/decimal"
)

const (
	serviceTag     = "BCD"
	payloadVersion = "001"
	characterSet   = "1"
	identification = "SCT"

	maxNameLength      = 70
	maxReferenceLength = 140
)

var (
	maxAmount  = decimal.RequireFromString("999999999.99")
	bicPattern = regexp.MustCompile(`^[A-Z]{6}[A-Z0-9]{2}([A-Z0-9]{3})?$`)
	currencyRe = regexp.MustCompile(`^[A-Z]{3}$`)
	purposeRe  = regexp.MustCompile(`^[A-Z0-9]{4}$`)
)

// Recipient is the account receiving storefront payments.
type Recipient struct {
	Name     string
	IBAN     string
	BIC      string
	Currency string
	Purpose  string
}

// Transfer creates a transfer of amount to r with the given reference.
func (r Recipient) Transfer(amount decimal.Decimal, reference string) Transfer {
	return Transfer{
		RecipientName: r.Name,
		IBAN:          r.IBAN,
		BIC:           r.BIC,
		Currency:      r.Currency,
		Amount:        amount,
		Purpose:       r.Purpose,
		Reference:     reference,
	}
}

// Validate checks the recipient fields that do not depend on an order.
func (r Recipient) Validate() error {
	return r.Transfer(decimal.New(1, -2), "").Validate()
}

// Transfer is a single credit transfer request.
type Transfer struct {
	RecipientName string
	IBAN          string
	BIC           string
	Currency      string
	Amount        decimal.Decimal
	Purpose       string
	Reference     string
}

// Validate rejects transfers a banking app would refuse to scan.
func (t Transfer) Validate() error {
	name := strings.TrimSpace(t.RecipientName)
	if name == "" || len(name) > maxNameLength || strings.ContainsAny(name, "\r\n") {
		return apperror.InvalidArgument(fmt.Sprintf("recipient name must be 1-%d characters on a single line", maxNameLength))
	}
	if err := ValidateIBAN(t.IBAN); err != nil {
		return err
	}
	if bic := normalizeBIC(t.BIC); bic != "" && !bicPattern.MatchString(bic) {
		return apperror.InvalidArgument("BIC must be 8 or 11 characters")
	}
	if !currencyRe.MatchString(strings.ToUpper(t.Currency)) {
		return apperror.InvalidArgument("currency must be a three letter code")
	}
	if !t.Amount.IsPositive() || t.Amount.GreaterThan(maxAmount) {
		return apperror.InvalidArgument("amount must be between 0.01 and 999999999.99")
	}
	if !t.Amount.Equal(t.Amount.Round(2)) {
		return apperror.InvalidArgument("amount must have at most two decimal places")
	}
	if t.Purpose != "" && !purposeRe.MatchString(t.Purpose) {
		return apperror.InvalidArgument("purpose must be a four character code")
	}
	if len(t.Reference) > maxReferenceLength || strings.ContainsAny(t.Reference, "\r\n") {
		return apperror.InvalidArgument(fmt.Sprintf("payment reference must be at most %d characters on a single line", maxReferenceLength))
	}
	return nil
}

// Payload returns the newline-delimited text encoded into the QR code:
// BCD, 001, 1, SCT, name, IBAN, BIC, <currency><amount>, purpose, reference
// and a trailing empty line.
func (t Transfer) Payload() (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}

	lines := []string{
		serviceTag,
		payloadVersion,
		characterSet,
		identification,
		strings.TrimSpace(t.RecipientName),
		NormalizeIBAN(t.IBAN),
		normalizeBIC(t.BIC),
		strings.ToUpper(t.Currency) + t.Amount.StringFixed(2),
		t.Purpose,
		t.Reference,
		"",
	}
	return strings.Join(lines, "\n") + "\n", nil
}

// NormalizeIBAN removes spaces and upper-cases the IBAN.
func NormalizeIBAN(iban string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(iban), " ", ""))
}

func normalizeBIC(bic string) string {
	return strings.ToUpper(strings.TrimSpace(bic))
}

// ValidateIBAN checks length, structure and the ISO 7064 mod 97-10 checksum.
func ValidateIBAN(iban string) error {
	s := NormalizeIBAN(iban)
	if len(s) < 15 || len(s) > 34 {
		return apperror.InvalidArgument("IBAN must be 15-34 characters long")
	}

	for i, r := range s {
		switch {
		case i < 2 && (r < 'A' || r > 'Z'):
			return apperror.InvalidArgument("IBAN must start with a country code")
		case i >= 2 && i < 4 && (r < '0' || r > '9'):
			return apperror.InvalidArgument("IBAN check digits must be numeric")
		case (r < 'A' || r > 'Z') && (r < '0' || r > '9'):
			return apperror.InvalidArgument("IBAN must be alphanumeric")
		}
	}

	rem := 0
	for _, r := range s[4:] + s[:4] {
		if r >= '0' && r <= '9' {
			rem = (rem*10 + int(r-'0')) % 97
		} else {
			rem = (rem*100 + int(r-'A') + 10) % 97
		}
	}
	if rem != 1 {
		return apperror.InvalidArgument("IBAN checksum is invalid")
	}
	return nil
}
