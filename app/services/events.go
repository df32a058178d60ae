package services

// Event names fired on the pkg/event bus. The websocket sales feed and the
// Slack notifier listen on these.
const (
	EventPurchaseCompleted = "purchase.completed"
	EventProductSoldOut    = "product.sold_out"
	EventCategoryArchived  = "category.archived"
)

// PurchasePayload is the payload of EventPurchaseCompleted.
type PurchasePayload struct {
	BuyID      uint    `json:"buy_id"`
	UserID     uint    `json:"user_id"`
	CategoryID uint    `json:"category_id"`
	Product    string  `json:"product"`
	Quantity   int     `json:"quantity"`
	TotalPrice float64 `json:"total_price"`
}

// SoldOutPayload is the payload of EventProductSoldOut.
type SoldOutPayload struct {
	CategoryID uint   `json:"category_id"`
	Product    string `json:"product"`
}
