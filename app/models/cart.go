package models

import "gorm.io/gorm"

// Cart is the single open cart of a user.
type Cart struct {
	gorm.Model
	UserID uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	Items  []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// CartItem associates a cart with a product node and a positive quantity.
type CartItem struct {
	gorm.Model
	CartID     uint `gorm:"not null;index"                json:"cart_id"`
	CategoryID uint `gorm:"not null;index"                json:"category_id"`
	Quantity   int  `gorm:"not null;check:quantity > 0"   json:"quantity"`

	Category Category `gorm:"foreignKey:CategoryID" json:"category"`
}

// Buy is a completed purchase. Sold items carry its id so purchase history
// survives catalog archival.
type Buy struct {
	gorm.Model
	UserID     uint    `gorm:"not null;index" json:"user_id"`
	CategoryID uint    `gorm:"not null;index" json:"category_id"`
	Quantity   int     `gorm:"not null"       json:"quantity"`
	TotalPrice float64 `gorm:"not null"       json:"total_price"`
	IsRefunded bool    `gorm:"not null;default:false" json:"is_refunded"`

	User     User     `gorm:"foreignKey:UserID"     json:"-"`
	Category Category `gorm:"foreignKey:CategoryID" json:"-"`
	Items    []Item   `gorm:"foreignKey:BuyID"      json:"-"`
}
