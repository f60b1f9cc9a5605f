package main

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/tmoreau/go-billing/internal/handlers"
	"github.com/tmoreau/go-billing/internal/httpx"
	"github.com/tmoreau/go-billing/internal/services"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux *http.ServeMux
}

// NewApp wires services and handlers onto a ServeMux.
func NewApp(conn *gorm.DB) *App {
	catalog := services.NewCatalogService(conn)
	invoices := services.NewInvoiceService(conn, catalog)

	ih := handlers.NewInvoiceHandler(invoices)
	ch := handlers.NewCatalogHandler(catalog)

	mux := http.NewServeMux()

	mux.HandleFunc("POST /invoices", ih.Create)
	mux.HandleFunc("GET /invoices", ih.List)
	mux.HandleFunc("GET /invoices/{id}", ih.Get)
	mux.HandleFunc("DELETE /invoices/{id}", ih.Delete)

	// Read-only catalog
	mux.HandleFunc("GET /products", ch.ListProducts)
	mux.HandleFunc("GET /products/{id}", ch.GetProduct)
	mux.HandleFunc("GET /clients", ch.ListClients)
	mux.HandleFunc("GET /clients/{id}", ch.GetClient)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return &App{mux: mux}
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}
