package models

import "gorm.io/gorm"

// Location is a node in the fixed two-level City -> Neighborhood delivery
// tree. Only leaf nodes (neighborhoods) are deliverable; the check constraint
// keeps the two facts in lock-step so a root can never be marked deliverable
// and a leaf can never be a plain grouping.
type Location struct {
	gorm.Model
	ParentID      *uint  `gorm:"index"             json:"parent_id"`
	Name          string `gorm:"size:255;not null" json:"name"`
	IsDeliverable bool   `gorm:"not null;default:false;check:chk_location_level,(parent_id IS NULL AND is_deliverable = false) OR (parent_id IS NOT NULL AND is_deliverable = true)" json:"is_deliverable"`

	Children []Location `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"children,omitempty"`
}

// IsCity reports whether the node is a top-level city.
func (l *Location) IsCity() bool { return l.ParentID == nil }
