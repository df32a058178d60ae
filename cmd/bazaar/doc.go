// Package cmd/bazaar provides the bazaar CLI.
//
// Build it from the repo root:
//
//	go build -o bazaar ./cmd/bazaar
//
// Everyday commands:
//
//	bazaar bot             # run the Telegram bot (workers + scheduler in-process)
//	bazaar serve           # start the admin HTTP API
//	bazaar migrate         # run migrations
//	bazaar migrate:rollback
//	bazaar migrate:status
//	bazaar seed            # seed demo data
//	bazaar import FILE     # bulk-import products from a text or JSON file
//	bazaar queue:work      # standalone queue worker (needs redis)
//	bazaar schedule:run    # standalone scheduler
//	bazaar route:list      # list API routes
//
// Configuration comes from the environment (or a .env file); see config/.
package main
