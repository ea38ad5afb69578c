package payment

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultNamespace prefixes every payment reference.
const DefaultNamespace = "ivv-intern"

const (
	orderNumberAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	// OrderNumberLength gives 36^12 ≈ 2^62 possible order numbers.
	OrderNumberLength = 12
)

// NewOrderNumber returns a random order number drawn from crypto/rand.
func NewOrderNumber() (string, error) {
	max := big.NewInt(int64(len(orderNumberAlphabet)))
	b := make([]byte, OrderNumberLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate order number: %w", err)
		}
		b[i] = orderNumberAlphabet[n.Int64()]
	}
	return string(b), nil
}

// BuildReference returns "<namespace>-<name><surname>-<orderNumber>", the memo
// used for the bank transfer and for matching incoming payments. The name part
// is shortened so the reference fits the transfer's reference limit; namespace
// and order number are kept whole.
func BuildReference(namespace, name, surname, orderNumber string) string {
	holder := SanitizeName(name) + SanitizeName(surname)
	room := max(maxReferenceLength-len(namespace)-len(orderNumber)-2, 0)
	if len(holder) > room {
		holder = holder[:room]
	}
	return namespace + "-" + holder + "-" + orderNumber
}

var germanLetters = strings.NewReplacer(
	"ä", "ae", "ö", "oe", "ü", "ue",
	"Ä", "Ae", "Ö", "Oe", "Ü", "Ue",
	"ß", "ss",
)

// SanitizeName reduces a name to ASCII letters and digits so it cannot break
// the line-based payment payload. German umlauts are transliterated, other
// accents are stripped and everything else is dropped.
func SanitizeName(name string) string {
	name = germanLetters.Replace(name)

	stripAccents := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripAccents, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
