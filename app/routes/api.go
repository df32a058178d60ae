package routes

import (
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/app/controllers"
	"github.com/shashiranjanraj/bazaar/pkg/ctx"
	"github.com/shashiranjanraj/bazaar/pkg/metrics"
	"github.com/shashiranjanraj/bazaar/pkg/middleware"
	"github.com/shashiranjanraj/bazaar/pkg/rbac"
	"github.com/shashiranjanraj/bazaar/pkg/reqid"
	"github.com/shashiranjanraj/bazaar/pkg/router"
	"github.com/shashiranjanraj/bazaar/pkg/ws"
)

// RegisterAPI mounts the admin HTTP API: operator auth, catalog and stock
// management, user credits, refunds, imports, stats, GraphQL and the live
// sales feed.
func RegisterAPI(r *router.Router, db *gorm.DB, salesFeed *ws.Hub) error {
	r.Use(
		reqid.Middleware(),
		middleware.Recovery,
		middleware.Logger,
		middleware.CORS(middleware.DefaultCORSOptions()),
		metrics.Middleware(),
	)

	authController := controllers.NewAuthController(db)
	catalogController := controllers.NewCatalogController(db)
	locationController := controllers.NewLocationController(db)
	userController := controllers.NewUserController(db)
	statsController := controllers.NewStatsController(db)
	importController := controllers.NewImportController(db)
	graphqlController, err := controllers.NewGraphQLController(db)
	if err != nil {
		return err
	}

	r.Get("/health", "health", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok")) //nolint:errcheck
	})
	r.Get("/metrics", "metrics", metrics.Handler())

	api := r.Group("/api")
	api.Post("/login", "auth.login", ctx.Wrap(authController.Login),
		middleware.RateLimit(10, time.Minute))
	api.Post("/refresh", "auth.refresh", ctx.Wrap(authController.Refresh))

	admin := api.Group("", middleware.AuthMiddleware, rbac.HasRole("admin"))

	admin.Get("/catalog", "catalog.index", ctx.Wrap(catalogController.Index))
	admin.Get("/catalog/{id}", "catalog.show", ctx.Wrap(catalogController.Show))
	admin.Post("/catalog/categories", "catalog.create_category", ctx.Wrap(catalogController.CreateCategory))
	admin.Post("/catalog/products", "catalog.create_product", ctx.Wrap(catalogController.CreateProduct))
	admin.Patch("/catalog/{id}", "catalog.update", ctx.Wrap(catalogController.Update))
	admin.Delete("/catalog/{id}", "catalog.delete", ctx.Wrap(catalogController.Delete))
	admin.Post("/catalog/{id}/restore", "catalog.restore", ctx.Wrap(catalogController.Restore))
	admin.Post("/catalog/{id}/items", "catalog.add_stock", ctx.Wrap(catalogController.AddStock))

	admin.Get("/locations", "locations.index", ctx.Wrap(locationController.Index))
	admin.Post("/locations", "locations.create", ctx.Wrap(locationController.Create))
	admin.Delete("/locations/{id}", "locations.delete", ctx.Wrap(locationController.Delete))

	admin.Get("/users/{entity}", "users.show", ctx.Wrap(userController.Show))
	admin.Post("/users/{id}/topup", "users.topup", ctx.Wrap(userController.TopUp))
	admin.Post("/users/{id}/deduct", "users.deduct", ctx.Wrap(userController.Deduct))
	admin.Get("/users/{id}/purchases", "users.purchases", ctx.Wrap(userController.Purchases))

	admin.Get("/refunds", "refunds.index", ctx.Wrap(userController.Refundable))
	admin.Post("/refunds/{id}", "refunds.refund", ctx.Wrap(userController.Refund))

	admin.Get("/stats", "stats.overview", ctx.Wrap(statsController.Overview))
	admin.Get("/stats/export", "stats.export", ctx.Wrap(statsController.Export))

	admin.Post("/import", "import.run", ctx.Wrap(importController.Import))

	admin.Post("/graphql", "graphql", ctx.Wrap(graphqlController.Query))

	admin.Get("/ws/sales", "ws.sales", func(w http.ResponseWriter, r *http.Request) {
		ws.Upgrade(w, r, salesFeed)
	})

	return nil
}
