package order

import (
	"crypto/rand"
	"fmt"
	"io"
	"regexp"
	"time"

	"orderbot/internal/pkg/errs"
)

const (
	codePrefix     = "EO"
	codeDateLayout = "060102"
	codeSuffixLen  = 4

	// codeAlphabet leaves out 0/O and 1/I so codes can be read back over the phone.
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

var codePattern = regexp.MustCompile(`^EO\d{6}[A-HJ-NP-Z2-9]{4}$`)

// Code is the customer-facing order id, e.g. "EO250825K7QM".
type Code string

// ParseCode validates s as an order code.
func ParseCode(s string) (Code, error) {
	if !codePattern.MatchString(s) {
		return "", errs.NewValueIsInvalidErrorWithCause("order code", fmt.Errorf("%q is not an order code", s))
	}
	return Code(s), nil
}

func (c Code) String() string {
	return string(c)
}

// CodeGenerator issues order codes from the creation date and random characters.
// Uniqueness is finally enforced by the database; the generator only keeps collisions rare.
type CodeGenerator struct {
	random io.Reader
}

// NewCodeGenerator returns a generator reading crypto/rand.
func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{random: rand.Reader}
}

// NewCodeGeneratorWithReader returns a generator reading random bytes from r.
func NewCodeGeneratorWithReader(r io.Reader) *CodeGenerator {
	return &CodeGenerator{random: r}
}

// Generate returns a new code dated now. A failing random source is returned as an error.
func (g *CodeGenerator) Generate(now time.Time) (Code, error) {
	buf := make([]byte, codeSuffixLen)
	if _, err := io.ReadFull(g.random, buf); err != nil {
		return "", fmt.Errorf("generate order code: %w", err)
	}

	suffix := make([]byte, codeSuffixLen)
	for i, b := range buf {
		suffix[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}

	return Code(codePrefix + now.Format(codeDateLayout) + string(suffix)), nil
}
