// Package currency converts money-bearing records to the user's selected
// currency through the external rate service, batching whole carts into one
// request and short-circuiting when nothing needs converting.
package currency

import (
	"context"
	"fmt"

	"github.com/jcmexdev/storefront-core/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/domain/money"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/ports"
)

// UnavailableError reports that the rate service could not serve a conversion.
// It names the operation and the item ids involved so the caller can decide
// whether to retry or keep the last converted view.
type UnavailableError struct {
	Op     string
	ToCode string
	IDs    []string
	Err    error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("currency: %s to %s for %d item(s): %v", e.Op, e.ToCode, len(e.IDs), e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Client wraps the converter port with the fast path and batch assembly.
type Client struct {
	converter ports.CurrencyConverter
}

func NewClient(converter ports.CurrencyConverter) *Client {
	return &Client{converter: converter}
}

// Convert returns the input amounts denominated in toCode, preserving input
// order and ids. If every input already carries toCode the inputs are
// returned as-is and no network call is made. Otherwise all amounts are sent
// in a single batched request.
func (c *Client) Convert(ctx context.Context, items []ports.ConversionItem, toCode string) ([]ports.ConversionItem, error) {
	needed := false
	for _, it := range items {
		if it.Amount.CurrencyCode != toCode {
			needed = true
			break
		}
	}
	if !needed {
		return items, nil
	}

	converted, err := c.converter.Convert(ctx, items, toCode)
	if err != nil {
		ids := make([]string, 0, len(items))
		for _, it := range items {
			ids = append(ids, it.ID)
		}
		return nil, &UnavailableError{Op: "Convert", ToCode: toCode, IDs: ids, Err: err}
	}

	// Re-associate by id: the service is not trusted to preserve order.
	byID := make(map[string]money.Money, len(converted))
	for _, it := range converted {
		byID[it.ID] = it.Amount
	}
	out := make([]ports.ConversionItem, len(items))
	for i, it := range items {
		amount, ok := byID[it.ID]
		if !ok {
			return nil, &UnavailableError{
				Op:     "Convert",
				ToCode: toCode,
				IDs:    []string{it.ID},
				Err:    fmt.Errorf("response missing item %q", it.ID),
			}
		}
		out[i] = ports.ConversionItem{ID: it.ID, Amount: amount}
	}
	return out, nil
}

// ConvertProducts returns copies of the given products with each price
// denominated in toCode.
func (c *Client) ConvertProducts(ctx context.Context, products []entity.Product, toCode string) ([]entity.Product, error) {
	items := make([]ports.ConversionItem, len(products))
	for i, p := range products {
		items[i] = ports.ConversionItem{ID: p.ID, Amount: p.Price}
	}
	converted, err := c.Convert(ctx, items, toCode)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Product, len(products))
	for i, p := range products {
		p.Price = converted[i].Amount
		out[i] = p
	}
	return out, nil
}

// SupportedCurrencies lists the codes the rate service can convert to.
func (c *Client) SupportedCurrencies(ctx context.Context) ([]string, error) {
	codes, err := c.converter.SupportedCurrencies(ctx)
	if err != nil {
		return nil, &UnavailableError{Op: "SupportedCurrencies", Err: err}
	}
	return codes, nil
}
