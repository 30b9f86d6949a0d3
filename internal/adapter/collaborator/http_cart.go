package collaborator

import (
	"context"
	"net/url"

	"github.com/kumsat/microservices-checkout-quality-gate/internal/core/domain"
	"github.com/kumsat/microservices-checkout-quality-gate/internal/port"
)

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type cartResponse struct {
	Status string         `json:"status"`
	Cart   map[string]int `json:"cart"`
}

// HTTPCartStore talks to a remote cart service. GET returns the bare
// quantity map; mutations return it wrapped in {"status","cart"}.
type HTTPCartStore struct {
	client *Client
}

func NewHTTPCartStore(client *Client) *HTTPCartStore {
	return &HTTPCartStore{client: client}
}

func (s *HTTPCartStore) AddItem(ctx context.Context, userID, productID string, quantity int) (domain.Cart, error) {
	var resp cartResponse
	err := s.client.do(ctx, "POST", "/cart/"+url.PathEscape(userID)+"/items",
		addItemRequest{ProductID: productID, Quantity: quantity}, &resp)
	if err != nil {
		return domain.Cart{}, err
	}
	return newCart(userID, resp.Cart), nil
}

func (s *HTTPCartStore) GetCart(ctx context.Context, userID string) (domain.Cart, error) {
	var items map[string]int
	if err := s.client.do(ctx, "GET", "/cart/"+url.PathEscape(userID), nil, &items); err != nil {
		return domain.Cart{}, err
	}
	return newCart(userID, items), nil
}

func (s *HTTPCartStore) RemoveItem(ctx context.Context, userID, productID string) (domain.Cart, error) {
	var resp cartResponse
	err := s.client.do(ctx, "DELETE", "/cart/"+url.PathEscape(userID)+"/items/"+url.PathEscape(productID), nil, &resp)
	if err != nil {
		return domain.Cart{}, err
	}
	return newCart(userID, resp.Cart), nil
}

func newCart(userID string, items map[string]int) domain.Cart {
	if items == nil {
		items = make(map[string]int)
	}
	return domain.Cart{UserID: userID, Items: items}
}

var _ port.CartStore = (*HTTPCartStore)(nil)
