package dto

// CreateIntentRequest names the order to pay for.
type CreateIntentRequest struct {
	OrderID string `json:"order_id"`
}

// CreateIntentResponse carries the handle the client completes payment with.
type CreateIntentResponse struct {
	ClientSecret string `json:"client_secret"`
	OrderID      string `json:"order_id"`
}
