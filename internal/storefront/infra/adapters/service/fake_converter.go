package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/jcmexdev/storefront-core/internal/storefront/core/domain/money"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/ports"
	"github.com/shopspring/decimal"
)

// Ensure fakeCurrencyConverter implements the port at compile time.
var _ ports.CurrencyConverter = (*fakeCurrencyConverter)(nil)

// fakeCurrencyConverter converts through a fixed EUR-based rate table, the
// same shape the deployed rate service uses. Intended for local development
// and manual testing only. Do NOT use in production.
type fakeCurrencyConverter struct {
	rates map[string]decimal.Decimal // currency code -> units per EUR
	codes []string
}

// NewFakeCurrencyConverter returns an in-memory CurrencyConverter for
// development/testing.
func NewFakeCurrencyConverter() ports.CurrencyConverter {
	rates := map[string]decimal.Decimal{
		"EUR": decimal.NewFromInt(1),
		"USD": decimal.RequireFromString("1.1305"),
		"JPY": decimal.RequireFromString("126.40"),
		"GBP": decimal.RequireFromString("0.85970"),
		"TRY": decimal.RequireFromString("5.8822"),
		"CAD": decimal.RequireFromString("1.5187"),
	}
	codes := make([]string, 0, len(rates))
	for code := range rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return &fakeCurrencyConverter{rates: rates, codes: codes}
}

func (f *fakeCurrencyConverter) Convert(ctx context.Context, items []ports.ConversionItem, toCode string) ([]ports.ConversionItem, error) {
	toRate, ok := f.rates[toCode]
	if !ok {
		return nil, fmt.Errorf("Convert: unsupported currency %q", toCode)
	}
	out := make([]ports.ConversionItem, 0, len(items))
	for _, item := range items {
		fromRate, ok := f.rates[item.Amount.CurrencyCode]
		if !ok {
			return nil, fmt.Errorf("Convert: unsupported currency %q", item.Amount.CurrencyCode)
		}
		nanos := decimal.NewFromInt(item.Amount.TotalNanos()).Div(fromRate).Mul(toRate)
		out = append(out, ports.ConversionItem{
			ID:     item.ID,
			Amount: money.FromNanos(toCode, nanos.Round(0).IntPart()),
		})
	}
	return out, nil
}

func (f *fakeCurrencyConverter) SupportedCurrencies(ctx context.Context) ([]string, error) {
	codes := make([]string, len(f.codes))
	copy(codes, f.codes)
	return codes, nil
}
