package handlers

import (
	"github.com/go-chi/chi/v5"
)

// APIRoutes mounts the query API, meant for r.Route("/api/v1", ...)
func APIRoutes(holders *HoldersHandler, transactions *TransactionHandler, status *StatusHandler) func(chi.Router) {
	return func(r chi.Router) {
		holders.RegisterRoutes(r)
		transactions.RegisterRoutes(r)
		r.Get("/status", status.GetStatus)
	}
}
