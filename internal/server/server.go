// Package server boots the admin HTTP API.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shashiranjanraj/bazaar/app/notifications"
	"github.com/shashiranjanraj/bazaar/app/routes"
	"github.com/shashiranjanraj/bazaar/app/services"
	"github.com/shashiranjanraj/bazaar/config"
	"github.com/shashiranjanraj/bazaar/pkg/cache"
	"github.com/shashiranjanraj/bazaar/pkg/database"
	"github.com/shashiranjanraj/bazaar/pkg/event"
	"github.com/shashiranjanraj/bazaar/pkg/grpc"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/notification"
	"github.com/shashiranjanraj/bazaar/pkg/router"
	"github.com/shashiranjanraj/bazaar/pkg/storage"
	"github.com/shashiranjanraj/bazaar/pkg/ws"
)

// largePurchaseThreshold is the total above which a purchase pings Slack.
const largePurchaseThreshold = 500.0

// Boot loads config and connects the shared backends. Both the bot and the
// API server run through it.
func Boot() error {
	if err := config.Load(); err != nil {
		return err
	}
	if err := database.Connect(); err != nil {
		return err
	}
	if err := cache.Connect(); err != nil {
		// The cache is an accelerator here, not a dependency.
		logger.Warn("boot: cache unavailable", "error", err)
	}
	storage.Connect()
	notification.SetSlackWebhook(config.SlackWebhookURL())
	return nil
}

// registerListeners fans domain events out to the sales feed and Slack.
func registerListeners(salesFeed *ws.Hub) {
	event.Listen(services.EventPurchaseCompleted, func(payload interface{}) {
		p, ok := payload.(services.PurchasePayload)
		if !ok {
			return
		}
		if raw, err := json.Marshal(map[string]interface{}{
			"type": "purchase",
			"data": p,
		}); err == nil {
			salesFeed.Broadcast <- raw
		}
		if p.TotalPrice >= largePurchaseThreshold {
			notification.SendAsync("", notifications.LargePurchase{
				Product:    p.Product,
				Quantity:   p.Quantity,
				TotalPrice: p.TotalPrice,
			})
		}
	})

	event.Listen(services.EventProductSoldOut, func(payload interface{}) {
		p, ok := payload.(services.SoldOutPayload)
		if !ok {
			return
		}
		if raw, err := json.Marshal(map[string]interface{}{
			"type": "sold_out",
			"data": p,
		}); err == nil {
			salesFeed.Broadcast <- raw
		}
		notification.SendAsync("", notifications.SoldOut{
			Product:    p.Product,
			CategoryID: p.CategoryID,
		})
	})
}

// Start boots the backends and serves the admin API until ctx is cancelled.
// A gRPC health endpoint runs alongside when GRPC_PORT is set.
func Start(ctx context.Context) error {
	if err := Boot(); err != nil {
		return err
	}

	salesFeed := ws.NewHub()
	go salesFeed.Run()
	registerListeners(salesFeed)

	r := router.New()
	if err := routes.RegisterAPI(r, database.DB, salesFeed); err != nil {
		return err
	}

	if port := config.GRPCPort(); port != "" {
		grpcSrv, lis, err := grpc.Start(port)
		if err != nil {
			return fmt.Errorf("server: grpc: %w", err)
		}
		defer grpc.Stop(grpcSrv)
		logger.Info("server: grpc health listening", "addr", lis.Addr().String())
	}

	addr := ":" + config.AppPort()
	srv := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("server: listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
