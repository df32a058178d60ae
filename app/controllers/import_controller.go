package controllers

import (
	"net/http"
	"strings"

	"github.com/shashiranjanraj/bazaar/app/services"
	"github.com/shashiranjanraj/bazaar/pkg/ctx"
	"gorm.io/gorm"
)

type ImportController struct {
	importer *services.ImportService
}

func NewImportController(db *gorm.DB) *ImportController {
	return &ImportController{importer: services.NewImportService(db)}
}

// Import loads a stock file from the request body. The content type picks
// the format: application/json for the object array, anything else for the
// line format. ?location= pins the units to a storage location.
func (c *ImportController) Import(cc *ctx.Context) {
	body, err := cc.Body()
	if err != nil || len(body) == 0 {
		cc.Error(http.StatusBadRequest, "empty body")
		return
	}

	locationID := optParent(queryUint(cc, "location"))

	var report services.ImportReport
	if strings.HasPrefix(cc.Header("Content-Type"), "application/json") {
		report, err = c.importer.ImportJSON(body, locationID)
	} else {
		report, err = c.importer.ImportText(body, locationID)
	}
	if err != nil {
		cc.Error(http.StatusUnprocessableEntity, err.Error())
		return
	}
	cc.Success(report)
}
