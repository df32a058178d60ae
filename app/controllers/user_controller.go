package controllers

import (
	"net/http"
	"strconv"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/app/services"
	"github.com/shashiranjanraj/bazaar/pkg/collection"
	"github.com/shashiranjanraj/bazaar/pkg/ctx"
	"github.com/shashiranjanraj/bazaar/pkg/orm"
	"github.com/shashiranjanraj/bazaar/pkg/resource"
	"gorm.io/gorm"
)

// userResource is the JSON shape of a shopper on the admin API: the ledger
// pair collapsed into the spendable balance.
type userResource struct{ resource.Base }

func (r *userResource) ToArray(v interface{}) resource.Map {
	u := v.(models.User)
	return resource.Map{
		"id":                  u.ID,
		"telegram_id":         u.TelegramID,
		"telegram_username":   u.TelegramUsername,
		"balance":             u.Balance(),
		"top_up_amount":       u.TopUpAmount,
		"consume_records":     u.ConsumeRecords,
		"can_receive_message": u.CanReceiveMessage,
		"location_id":         u.LocationID,
		"created_at":          u.CreatedAt,
	}
}

type UserController struct {
	repos    *repositories.Registry
	purchase *services.PurchaseService
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{
		repos:    repositories.New(db),
		purchase: services.NewPurchaseService(db),
	}
}

// Show resolves a user by id, telegram id or @username.
func (c *UserController) Show(cc *ctx.Context) {
	entity := cc.Param("entity")
	user, err := c.repos.Users.GetByEntity(entity)
	if err != nil {
		if err == repositories.ErrNotFound {
			cc.NotFound()
			return
		}
		cc.Error(http.StatusInternalServerError, "lookup failed")
		return
	}

	resource.New(&userResource{}, user).Respond(cc.W)
}

type topUpInput struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// TopUp credits a user's balance.
func (c *UserController) TopUp(cc *ctx.Context) {
	id, ok := paramID(cc)
	if !ok {
		return
	}
	var in topUpInput
	if !cc.BindJSON(&in) {
		return
	}
	if errs := cc.Validate(&in); len(errs) > 0 {
		cc.ValidationError(errs)
		return
	}

	user, err := c.purchase.TopUp(id, in.Amount)
	if err != nil {
		if err == repositories.ErrNotFound {
			cc.NotFound()
			return
		}
		cc.Error(http.StatusInternalServerError, "top up failed")
		return
	}
	resource.New(&userResource{}, user).Respond(cc.W)
}

// Deduct removes funds from a user's balance.
func (c *UserController) Deduct(cc *ctx.Context) {
	id, ok := paramID(cc)
	if !ok {
		return
	}
	var in topUpInput
	if !cc.BindJSON(&in) {
		return
	}
	if errs := cc.Validate(&in); len(errs) > 0 {
		cc.ValidationError(errs)
		return
	}

	user, err := c.purchase.Deduct(id, in.Amount)
	if err != nil {
		if err == repositories.ErrNotFound {
			cc.NotFound()
			return
		}
		cc.Error(http.StatusInternalServerError, "deduct failed")
		return
	}
	resource.New(&userResource{}, user).Respond(cc.W)
}

// Purchases lists one page of a user's buys.
func (c *UserController) Purchases(cc *ctx.Context) {
	id, ok := paramID(cc)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(cc.DefaultQuery("page", "0"))

	buys, err := c.repos.Buys.ByUser(id, page, 25)
	if err != nil {
		cc.Error(http.StatusInternalServerError, "listing failed")
		return
	}
	cc.Success(collection.Map(buys, func(b models.Buy) resource.Map {
		return resource.Map{
			"id":          b.ID,
			"created_at":  b.CreatedAt,
			"category_id": b.CategoryID,
			"product":     b.Category.Name,
			"quantity":    b.Quantity,
			"total_price": b.TotalPrice,
			"is_refunded": b.IsRefunded,
		}
	}))
}

// Refundable lists buys still eligible for refund.
func (c *UserController) Refundable(cc *ctx.Context) {
	page, _ := strconv.Atoi(cc.DefaultQuery("page", "0"))
	buys, err := c.repos.Buys.Refundable(page, 25)
	if err != nil {
		cc.Error(http.StatusInternalServerError, "listing failed")
		return
	}
	total, _ := c.repos.Buys.CountRefundable()
	cc.Success(map[string]interface{}{
		"buys": buys,
		"pagination": orm.Pagination{
			Page:       page,
			PerPage:    25,
			Total:      total,
			TotalPages: int((total + 24) / 25),
		},
	})
}

// Refund returns a purchase's price to the buyer's balance.
func (c *UserController) Refund(cc *ctx.Context) {
	id, ok := paramID(cc)
	if !ok {
		return
	}

	buy, err := c.purchase.Refund(id)
	if err != nil {
		if err == repositories.ErrNotFound {
			cc.NotFound()
			return
		}
		cc.Error(http.StatusUnprocessableEntity, err.Error())
		return
	}
	cc.Success(buy)
}
