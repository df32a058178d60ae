package controllers

import (
	"net/http"
	"strconv"

	"github.com/shashiranjanraj/bazaar/app/services"
	"github.com/shashiranjanraj/bazaar/pkg/ctx"
	"github.com/shashiranjanraj/bazaar/pkg/storage"
	"gorm.io/gorm"
)

type StatsController struct {
	stats *services.StatsService
}

func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{stats: services.NewStatsService(db)}
}

// Overview returns the dashboard windows.
func (c *StatsController) Overview(cc *ctx.Context) {
	overview, err := c.stats.Overview()
	if err != nil {
		cc.Error(http.StatusInternalServerError, "stats failed")
		return
	}
	cc.Success(overview)
}

// Export writes the trailing window as CSV to storage and streams it back.
func (c *StatsController) Export(cc *ctx.Context) {
	days, _ := strconv.Atoi(cc.DefaultQuery("days", "30"))
	if days <= 0 {
		days = 30
	}

	path, err := c.stats.ExportBuys(days)
	if err != nil {
		cc.Error(http.StatusInternalServerError, "export failed")
		return
	}

	data, err := storage.Get(path)
	if err != nil {
		cc.Error(http.StatusInternalServerError, "export failed")
		return
	}

	cc.SetHeader("Content-Type", "text/csv")
	cc.SetHeader("Content-Disposition", `attachment; filename="buys.csv"`)
	cc.Status(http.StatusOK)
	_, _ = cc.W.Write(data)
}
