package models

import "gorm.io/gorm"

// User is a shopper identified by their telegram id. Balance is kept as a
// ledger pair: everything ever topped up minus everything ever spent.
type User struct {
	gorm.Model
	TelegramID        int64   `gorm:"uniqueIndex;not null"       json:"telegram_id"`
	TelegramUsername  string  `gorm:"size:255;index"             json:"telegram_username"`
	TopUpAmount       float64 `gorm:"not null;default:0"         json:"top_up_amount"`
	ConsumeRecords    float64 `gorm:"not null;default:0"         json:"consume_records"`
	CanReceiveMessage bool    `gorm:"not null;default:true"      json:"can_receive_messages"`
	LocationID        *uint   `gorm:"index"                      json:"location_id,omitempty"`
}

// Balance is the spendable amount.
func (u *User) Balance() float64 { return u.TopUpAmount - u.ConsumeRecords }

// Operator is an admin-panel account for the HTTP API.
type Operator struct {
	gorm.Model
	Email    string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password string `gorm:"size:255;not null" json:"-"` // bcrypt hash, never serialised
	Role     string `gorm:"size:50;default:admin" json:"role"`
}
