// Package notifications defines the operator alerts the shop sends out.
package notifications

import (
	"fmt"

	"github.com/shashiranjanraj/bazaar/pkg/notification"
)

// SoldOut alerts operators that a product just ran dry.
type SoldOut struct {
	Product    string
	CategoryID uint
}

func (n SoldOut) Via() []string { return []string{"slack"} }

func (n SoldOut) ToSlack() notification.SlackData {
	return notification.SlackData{
		Text: "Product sold out",
		Attachments: []notification.SlackAttachment{{
			Color: "warning",
			Title: n.Product,
			Text:  fmt.Sprintf("Category #%d has no unsold items left. Restock or archive it.", n.CategoryID),
		}},
	}
}

// LargePurchase flags purchases above the attention threshold.
type LargePurchase struct {
	Product    string
	Quantity   int
	TotalPrice float64
}

func (n LargePurchase) Via() []string { return []string{"slack"} }

func (n LargePurchase) ToSlack() notification.SlackData {
	return notification.SlackData{
		Text: "Large purchase",
		Attachments: []notification.SlackAttachment{{
			Color: "good",
			Title: n.Product,
			Text:  fmt.Sprintf("%d unit(s), %.2f total.", n.Quantity, n.TotalPrice),
		}},
	}
}
