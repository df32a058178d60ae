package controllers

import (
	"net/http"
	"strconv"

	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/app/services"
	"github.com/shashiranjanraj/bazaar/pkg/ctx"
	"gorm.io/gorm"
)

// CatalogController is the HTTP face of the catalog: the same operations
// the in-chat admin tooling offers, for dashboards and scripts.
type CatalogController struct {
	repos     *repositories.Registry
	catalog   *services.CatalogService
	inventory *services.InventoryService
}

func NewCatalogController(db *gorm.DB) *CatalogController {
	return &CatalogController{
		repos:     repositories.New(db),
		catalog:   services.NewCatalogService(db),
		inventory: services.NewInventoryService(db),
	}
}

// paramID parses the {id} path parameter. Writes the 404 itself on garbage.
func paramID(cc *ctx.Context) (uint, bool) {
	n, err := strconv.ParseUint(cc.Param("id"), 10, 32)
	if err != nil || n == 0 {
		cc.NotFound()
		return 0, false
	}
	return uint(n), true
}

// queryUint parses an optional numeric query parameter, 0 when absent.
func queryUint(cc *ctx.Context, key string) uint {
	n, _ := strconv.ParseUint(cc.Query(key), 10, 32)
	return uint(n)
}

func optParent(id uint) *uint {
	if id == 0 {
		return nil
	}
	return &id
}

// Index lists one level of the tree. ?parent= selects the level,
// ?archived=1 includes archived nodes.
func (c *CatalogController) Index(cc *ctx.Context) {
	parent := optParent(queryUint(cc, "parent"))
	page, _ := strconv.Atoi(cc.DefaultQuery("page", "0"))
	perPage, _ := strconv.Atoi(cc.DefaultQuery("per_page", "25"))
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}
	archived := cc.Query("archived") == "1"

	cats, err := c.repos.Categories.LevelFiltered(parent, page, perPage, archived)
	if err != nil {
		cc.Error(http.StatusInternalServerError, "listing failed")
		return
	}
	total, err := c.repos.Categories.CountLevelFiltered(parent, archived)
	if err != nil {
		cc.Error(http.StatusInternalServerError, "listing failed")
		return
	}

	cc.Success(map[string]interface{}{
		"categories": cats,
		"total":      total,
	})
}

// Show returns one node with its breadcrumb and stock count.
func (c *CatalogController) Show(cc *ctx.Context) {
	id, ok := paramID(cc)
	if !ok {
		return
	}

	cat, err := c.repos.Categories.GetByID(id)
	if err != nil {
		cc.NotFound()
		return
	}
	crumb, _ := c.repos.Categories.BreadcrumbString(id)

	out := map[string]interface{}{
		"category":   cat,
		"breadcrumb": crumb,
	}
	if cat.IsProduct {
		if qty, err := c.repos.Categories.AvailableQty(id, nil); err == nil {
			out["available"] = qty
		}
	}
	sold, err := c.repos.Categories.CountSoldInSubtree(id)
	if err == nil {
		out["sold"] = sold
	}
	cc.Success(out)
}

type createCategoryInput struct {
	ParentID *uint  `json:"parent_id"`
	Name     string `json:"name" validate:"required,min=1,max=100"`
}

func (c *CatalogController) CreateCategory(cc *ctx.Context) {
	var in createCategoryInput
	if !cc.BindJSON(&in) {
		return
	}
	if errs := cc.Validate(&in); len(errs) > 0 {
		cc.ValidationError(errs)
		return
	}

	cat, err := c.inventory.CreateCategory(in.ParentID, in.Name)
	if err != nil {
		c.writeRepoError(cc, err)
		return
	}
	cc.Created(cat)
}

type createProductInput struct {
	ParentID    *uint   `json:"parent_id"`
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Description string  `json:"description"`
}

func (c *CatalogController) CreateProduct(cc *ctx.Context) {
	var in createProductInput
	if !cc.BindJSON(&in) {
		return
	}
	if errs := cc.Validate(&in); len(errs) > 0 {
		cc.ValidationError(errs)
		return
	}

	cat, err := c.inventory.CreateProduct(in.ParentID, in.Name, in.Price, in.Description)
	if err != nil {
		c.writeRepoError(cc, err)
		return
	}
	cc.Created(cat)
}

type updateProductInput struct {
	Price       *float64 `json:"price"`
	Description *string  `json:"description"`
	PhotoFileID *string  `json:"photo_file_id"`
}

// Update patches the given product fields; absent fields stay untouched.
func (c *CatalogController) Update(cc *ctx.Context) {
	id, ok := paramID(cc)
	if !ok {
		return
	}
	var in updateProductInput
	if !cc.BindJSON(&in) {
		return
	}

	if in.Price != nil {
		if err := c.inventory.EditPrice(id, *in.Price); err != nil {
			c.writeRepoError(cc, err)
			return
		}
	}
	if in.Description != nil {
		if err := c.inventory.EditDescription(id, *in.Description); err != nil {
			c.writeRepoError(cc, err)
			return
		}
	}
	if in.PhotoFileID != nil {
		if err := c.inventory.EditPhoto(id, *in.PhotoFileID); err != nil {
			c.writeRepoError(cc, err)
			return
		}
	}

	cat, err := c.repos.Categories.GetByID(id)
	if err != nil {
		cc.NotFound()
		return
	}
	cc.Success(cat)
}

// Delete runs the archive-or-delete decision and reports which happened.
func (c *CatalogController) Delete(cc *ctx.Context) {
	id, ok := paramID(cc)
	if !ok {
		return
	}

	archived, err := c.inventory.SmartDelete(id)
	if err != nil {
		c.writeRepoError(cc, err)
		return
	}
	cc.Success(map[string]bool{"archived": archived})
}

// Restore reactivates an archived subtree.
func (c *CatalogController) Restore(cc *ctx.Context) {
	id, ok := paramID(cc)
	if !ok {
		return
	}
	if err := c.inventory.Reactivate(id); err != nil {
		c.writeRepoError(cc, err)
		return
	}
	cc.Success(map[string]bool{"active": true})
}

type addStockInput struct {
	Payloads   []string `json:"payloads" validate:"required"`
	LocationID *uint    `json:"location_id"`
}

// AddStock appends encrypted units to a product.
func (c *CatalogController) AddStock(cc *ctx.Context) {
	id, ok := paramID(cc)
	if !ok {
		return
	}
	var in addStockInput
	if !cc.BindJSON(&in) {
		return
	}
	if errs := cc.Validate(&in); len(errs) > 0 {
		cc.ValidationError(errs)
		return
	}

	n, err := c.inventory.AddItems(id, in.Payloads, in.LocationID)
	if err != nil {
		c.writeRepoError(cc, err)
		return
	}
	cc.Created(map[string]int{"added": n})
}

func (c *CatalogController) writeRepoError(cc *ctx.Context, err error) {
	switch err {
	case repositories.ErrNotFound:
		cc.NotFound()
	case repositories.ErrExists:
		cc.Error(http.StatusConflict, err.Error())
	case repositories.ErrInvalidPrice, repositories.ErrNotProduct:
		cc.Error(http.StatusUnprocessableEntity, err.Error())
	default:
		cc.Error(http.StatusInternalServerError, "operation failed")
	}
}
