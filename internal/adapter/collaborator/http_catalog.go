package collaborator

import (
	"context"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/kumsat/microservices-checkout-quality-gate/internal/core/domain"
	"github.com/kumsat/microservices-checkout-quality-gate/internal/port"
)

// HTTPCatalog reads products from a remote catalog service.
type HTTPCatalog struct {
	client *Client
}

func NewHTTPCatalog(client *Client) *HTTPCatalog {
	return &HTTPCatalog{client: client}
}

// productPayload is the catalog wire shape. Price is a pointer so a missing
// field can be told apart from a zero price.
type productPayload struct {
	ID    string           `json:"id"`
	Name  string           `json:"name"`
	Price *decimal.Decimal `json:"price"`
}

func (p productPayload) toDomain() (domain.Product, error) {
	if p.ID == "" || p.Price == nil || p.Price.IsNegative() {
		return domain.Product{}, fmt.Errorf("%w: malformed product", domain.ErrTechnicalFailure)
	}
	return domain.Product{ID: p.ID, Name: p.Name, Price: *p.Price}, nil
}

func (c *HTTPCatalog) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	var payload productPayload
	if err := c.client.do(ctx, "GET", "/products/"+url.PathEscape(productID), nil, &payload); err != nil {
		return domain.Product{}, err
	}

	product, err := payload.toDomain()
	if err != nil {
		return domain.Product{}, err
	}
	if product.ID != productID {
		return domain.Product{}, fmt.Errorf("%w: catalog returned %q for %q", domain.ErrTechnicalFailure, product.ID, productID)
	}
	return product, nil
}

func (c *HTTPCatalog) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var payloads []productPayload
	if err := c.client.do(ctx, "GET", "/products", nil, &payloads); err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(payloads))
	for _, payload := range payloads {
		product, err := payload.toDomain()
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}

var _ port.Catalog = (*HTTPCatalog)(nil)
