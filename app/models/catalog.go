package models

import "gorm.io/gorm"

// Category is a node in the product taxonomy tree. A node is either a plain
// grouping folder or, when IsProduct is set, a sellable product carrying
// price, description and photo. Children and items hang off it by foreign key
// with database-level cascade, so dropping a subtree never leaves orphans.
type Category struct {
	gorm.Model
	ParentID    *uint    `gorm:"index:idx_categories_parent_name,priority:1"        json:"parent_id"`
	Name        string   `gorm:"size:255;not null;index:idx_categories_parent_name,priority:2" json:"name"`
	IsProduct   bool     `gorm:"not null;default:false;index"                       json:"is_product"`
	IsActive    bool     `gorm:"not null;default:true;index"                        json:"is_active"`
	Price       *float64 `gorm:"check:price IS NULL OR price > 0"                   json:"price,omitempty"`
	Description *string  `gorm:"type:text"                                          json:"description,omitempty"`
	PhotoFileID *string  `gorm:"size:255"                                           json:"photo_file_id,omitempty"`

	Parent   *Category  `gorm:"foreignKey:ParentID"                                 json:"-"`
	Children []Category `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"     json:"children,omitempty"`
	Items    []Item     `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"   json:"-"`
}

// IsRoot reports whether the node has no parent.
func (c *Category) IsRoot() bool { return c.ParentID == nil }

// Item is a single sellable unit belonging to a product node. PrivateData is
// the opaque per-unit payload handed to the buyer; it is stored AES-GCM
// encrypted (pkg/crypt) and only decrypted at delivery time.
type Item struct {
	gorm.Model
	CategoryID  uint   `gorm:"not null;index"                  json:"category_id"`
	LocationID  *uint  `gorm:"index"                           json:"location_id,omitempty"`
	PrivateData string `gorm:"type:text;not null"              json:"-"`
	IsSold      bool   `gorm:"not null;default:false;index"    json:"is_sold"`
	IsNew       bool   `gorm:"not null;default:true"           json:"is_new"`
	BuyID       *uint  `gorm:"index"                           json:"buy_id,omitempty"`
}
