package domain

// Cart is a per-user quantity map. Lines accumulate additively.
type Cart struct {
	UserID string         `json:"user_id"`
	Items  map[string]int `json:"items"`
}
