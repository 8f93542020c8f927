package service

import (
	"context"

	"github.com/jcmexdev/storefront-core/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/domain/money"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/ports"
)

// Ensure fakeProductCatalog implements the port at compile time.
var _ ports.ProductCatalog = (*fakeProductCatalog)(nil)

// fakeProductCatalog is an in-memory implementation of ports.ProductCatalog
// seeded with a small USD-priced catalog. Intended for local development and
// manual testing only. Do NOT use in production.
type fakeProductCatalog struct {
	products []entity.Product
	byID     map[string]entity.Product
}

// NewFakeProductCatalog returns an in-memory ProductCatalog for
// development/testing.
func NewFakeProductCatalog() ports.ProductCatalog {
	products := []entity.Product{
		{ID: "OLJCESPC7Z", Name: "Sunglasses", Description: "Add a modern touch to your outfit with these sleek aviator sunglasses.", Picture: "/static/img/products/sunglasses.jpg", Price: money.New("USD", 19, 990000000)},
		{ID: "66VCHSJNUP", Name: "Tank Top", Description: "Perfectly cropped cotton tank, with a scooped neckline.", Picture: "/static/img/products/tank-top.jpg", Price: money.New("USD", 18, 990000000)},
		{ID: "1YMWWN1N4O", Name: "Watch", Description: "This gold-tone stainless steel watch will work with most of your outfits.", Picture: "/static/img/products/watch.jpg", Price: money.New("USD", 109, 990000000)},
		{ID: "L9ECAV7KIM", Name: "Loafers", Description: "A neat addition to your summer wardrobe.", Picture: "/static/img/products/loafers.jpg", Price: money.New("USD", 89, 990000000)},
		{ID: "2ZYFJ3GM2N", Name: "Hairdryer", Description: "This lightweight hairdryer has 3 heat and speed settings.", Picture: "/static/img/products/hairdryer.jpg", Price: money.New("USD", 24, 990000000)},
		{ID: "0PUK6V6EV0", Name: "Candle Holder", Description: "This small but intricate candle holder is an excellent gift.", Picture: "/static/img/products/candle-holder.jpg", Price: money.New("USD", 18, 990000000)},
		{ID: "LS4PSXUNUM", Name: "Salt & Pepper Shakers", Description: "Add some flavor to your kitchen.", Picture: "/static/img/products/salt-and-pepper-shakers.jpg", Price: money.New("USD", 18, 490000000)},
		{ID: "9SIQT8TOJO", Name: "Bamboo Glass Jar", Description: "This bamboo glass jar can hold 57 oz.", Picture: "/static/img/products/bamboo-glass-jar.jpg", Price: money.New("USD", 5, 490000000)},
		{ID: "6E92ZMYYFZ", Name: "Mug", Description: "A simple mug with a mustard interior.", Picture: "/static/img/products/mug.jpg", Price: money.New("USD", 8, 990000000)},
	}
	byID := make(map[string]entity.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &fakeProductCatalog{products: products, byID: byID}
}

func (f *fakeProductCatalog) GetProduct(ctx context.Context, id string) (entity.Product, error) {
	p, ok := f.byID[id]
	if !ok {
		return entity.Product{}, ports.ErrNotFound
	}
	return p, nil
}

func (f *fakeProductCatalog) ListProducts(ctx context.Context) ([]entity.Product, error) {
	products := make([]entity.Product, len(f.products))
	copy(products, f.products)
	return products, nil
}
