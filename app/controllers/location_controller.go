package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/pkg/ctx"
	"gorm.io/gorm"
)

type LocationController struct {
	locations *repositories.LocationRepository
}

func NewLocationController(db *gorm.DB) *LocationController {
	return &LocationController{locations: repositories.NewLocationRepository(db)}
}

// Index lists cities, or one city's neighborhoods with ?parent=.
func (c *LocationController) Index(cc *ctx.Context) {
	parentID := queryUint(cc, "parent")
	if parentID == 0 {
		cities, err := c.locations.Cities()
		if err != nil {
			cc.Error(http.StatusInternalServerError, "listing failed")
			return
		}
		cc.Success(cities)
		return
	}

	hoods, err := c.locations.Neighborhoods(parentID)
	if err != nil {
		cc.Error(http.StatusInternalServerError, "listing failed")
		return
	}
	cc.Success(hoods)
}

type createLocationInput struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	ParentID *uint  `json:"parent_id"`
}

// Create upserts a city (no parent) or a neighborhood (parent set).
func (c *LocationController) Create(cc *ctx.Context) {
	var in createLocationInput
	if !cc.BindJSON(&in) {
		return
	}
	if errs := cc.Validate(&in); len(errs) > 0 {
		cc.ValidationError(errs)
		return
	}

	if in.ParentID == nil {
		loc, err := c.locations.GetOrCreateCity(in.Name)
		if err != nil {
			cc.Error(http.StatusInternalServerError, "create failed")
			return
		}
		cc.Created(loc)
		return
	}

	loc, err := c.locations.GetOrCreateNeighborhood(*in.ParentID, in.Name)
	switch err {
	case nil:
		cc.Created(loc)
	case repositories.ErrNotFound:
		cc.NotFound("parent city not found")
	case repositories.ErrNotCity:
		cc.Error(http.StatusUnprocessableEntity, err.Error())
	default:
		cc.Error(http.StatusInternalServerError, "create failed")
	}
}

// Delete removes a location unless stock still references its subtree.
func (c *LocationController) Delete(cc *ctx.Context) {
	id, ok := paramID(cc)
	if !ok {
		return
	}

	err := c.locations.Delete(id)
	switch err {
	case nil:
		cc.Success(map[string]bool{"deleted": true})
	case repositories.ErrNotFound:
		cc.NotFound()
	case repositories.ErrLocationInUse:
		cc.Error(http.StatusConflict, "items still reference this location")
	default:
		cc.Error(http.StatusInternalServerError, "delete failed")
	}
}
