package currency

import (
	"math"

	"github.com/pkg/errors"
)

const (
	INR = "INR"
	USD = "USD"
	EUR = "EUR"
	GBP = "GBP"
)

var Currencies = []string{INR, USD, EUR, GBP}

var (
	ErrUnknownCurrency = errors.New("unknown currency")
	ErrNegativeAmount  = errors.New("amount must not be negative")
	ErrInvalidAmount   = errors.New("amount must be a finite number")
)

// Converter normalizes entered amounts into the base currency using a
// static rate table. Stored amounts are always already converted; the
// original currency is not retained anywhere past this point.
type Converter struct {
	base  string
	rates map[string]float64
}

func NewConverter(base string, rates map[string]float64) (*Converter, error) {
	if _, ok := rates[base]; !ok {
		return nil, errors.Wrapf(ErrUnknownCurrency, "base currency %s has no rate", base)
	}
	table := make(map[string]float64, len(rates))
	for name, rate := range rates {
		table[name] = rate
	}
	return &Converter{base: base, rates: table}, nil
}

func (c *Converter) Base() string {
	return c.base
}

func (c *Converter) Known(name string) bool {
	_, ok := c.rates[name]
	return ok
}

// ToBase converts an amount entered in the named currency to the base
// currency. Unknown currencies are rejected rather than passed through.
func (c *Converter) ToBase(amount float64, name string) (float64, error) {
	// ParseFloat happily produces NaN and Inf; once stored they poison
	// every aggregate, so they stop here
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, ErrInvalidAmount
	}
	if amount < 0 {
		return 0, ErrNegativeAmount
	}
	rate, ok := c.rates[name]
	if !ok {
		return 0, errors.Wrap(ErrUnknownCurrency, name)
	}
	return amount * rate, nil
}
