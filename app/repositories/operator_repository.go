package repositories

import (
	"errors"

	"github.com/shashiranjanraj/bazaar/app/models"
	"gorm.io/gorm"
)

// OperatorRepository handles admin-panel accounts for the HTTP API.
type OperatorRepository struct {
	db *gorm.DB
}

func NewOperatorRepository(db *gorm.DB) *OperatorRepository {
	return &OperatorRepository{db: db}
}

// FindByEmail looks up an operator by email address.
func (r *OperatorRepository) FindByEmail(email string) (models.Operator, error) {
	var op models.Operator
	err := r.db.Where("email = ?", email).First(&op).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return op, ErrNotFound
	}
	return op, err
}

// Create persists a new operator account.
func (r *OperatorRepository) Create(op *models.Operator) error {
	return r.db.Create(op).Error
}
