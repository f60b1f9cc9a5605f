package handlers

import (
	"errors"
	"net/http"

	"github.com/tmoreau/go-billing/internal/httpx"
	"github.com/tmoreau/go-billing/internal/services"
)

// CatalogHandler exposes the seeded reference data read-only. There are no
// mutation routes; the catalog changes only through the startup seed.
type CatalogHandler struct {
	svc *services.CatalogService
}

func NewCatalogHandler(svc *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// ListProducts: GET /products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.ListProducts(r.Context())
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"products": products})
}

// GetProduct: GET /products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	product, err := h.svc.GetProduct(r.Context(), id)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

// ListClients: GET /clients
func (h *CatalogHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.svc.ListClients(r.Context())
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"clients": clients})
}

// GetClient: GET /clients/{id}
func (h *CatalogHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	client, err := h.svc.GetClient(r.Context(), id)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

func writeCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrProductNotFound):
		httpx.JSONError(w, http.StatusNotFound, "product_not_found", nil)
	case errors.Is(err, services.ErrClientNotFound):
		httpx.JSONError(w, http.StatusNotFound, "client_not_found", nil)
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}
