package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/tmoreau/go-billing/internal/httpx"
	"github.com/tmoreau/go-billing/internal/models"
	"github.com/tmoreau/go-billing/internal/services"
	"github.com/tmoreau/go-billing/internal/validation"
)

const dateFormat = "2006-01-02"

type InvoiceHandler struct {
	svc *services.InvoiceService
}

func NewInvoiceHandler(svc *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{svc: svc}
}

type invoiceItemRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type createInvoiceRequest struct {
	ClientID  uint                 `json:"client_id"`
	IssueDate string               `json:"issue_date" validate:"required,datetime=2006-01-02"`
	DueDate   string               `json:"due_date" validate:"required,datetime=2006-01-02"`
	Tax       float64              `json:"tax"`
	Items     []invoiceItemRequest `json:"items"`
}

type clientResponse struct {
	ID                    uint   `json:"id"`
	Name                  string `json:"name"`
	Address               string `json:"address"`
	CompanyRegistrationNo string `json:"company_registration_no"`
}

type invoiceItemResponse struct {
	ID          uint    `json:"id"`
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Subtotal    float64 `json:"subtotal"`
}

type invoiceResponse struct {
	ID        uint                  `json:"id"`
	InvoiceNo string                `json:"invoice_no"`
	IssueDate string                `json:"issue_date"`
	DueDate   string                `json:"due_date"`
	Client    clientResponse        `json:"client"`
	Address   string                `json:"address"`
	Items     []invoiceItemResponse `json:"items"`
	Tax       float64               `json:"tax"`
	Total     float64               `json:"total"`
}

// invoiceSummary is the list entry. Items are omitted for payload economy;
// callers fetch the full invoice by id when they need lines.
type invoiceSummary struct {
	ID         uint    `json:"id"`
	InvoiceNo  string  `json:"invoice_no"`
	IssueDate  string  `json:"issue_date"`
	DueDate    string  `json:"due_date"`
	ClientName string  `json:"client_name"`
	Total      float64 `json:"total"`
}

// Create: POST /invoices
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if err := validation.Validate(req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", validation.Violations(err))
		return
	}
	issueDate, err := time.Parse(dateFormat, req.IssueDate)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"issue_date": "must be a date in format " + dateFormat})
		return
	}
	dueDate, err := time.Parse(dateFormat, req.DueDate)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"due_date": "must be a date in format " + dateFormat})
		return
	}

	in := services.CreateInvoiceInput{
		ClientID:  req.ClientID,
		IssueDate: issueDate,
		DueDate:   dueDate,
		Tax:       req.Tax,
	}
	for _, item := range req.Items {
		in.Items = append(in.Items, services.CreateInvoiceItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	invoice, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeInvoiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toInvoiceResponse(invoice))
}

// List: GET /invoices
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.svc.List(r.Context())
	if err != nil {
		writeInvoiceError(w, err)
		return
	}
	summaries := make([]invoiceSummary, 0, len(invoices))
	for _, inv := range invoices {
		s := invoiceSummary{
			ID:        inv.ID,
			InvoiceNo: inv.InvoiceNo,
			IssueDate: inv.IssueDate.Format(dateFormat),
			DueDate:   inv.DueDate.Format(dateFormat),
			Total:     inv.Total,
		}
		if inv.Client != nil {
			s.ClientName = inv.Client.Name
		}
		summaries = append(summaries, s)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"invoices": summaries})
}

// Get: GET /invoices/{id}
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	invoice, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeInvoiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toInvoiceResponse(invoice))
}

// Delete: DELETE /invoices/{id}
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeInvoiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toInvoiceResponse(inv *models.Invoice) invoiceResponse {
	resp := invoiceResponse{
		ID:        inv.ID,
		InvoiceNo: inv.InvoiceNo,
		IssueDate: inv.IssueDate.Format(dateFormat),
		DueDate:   inv.DueDate.Format(dateFormat),
		Address:   inv.Address,
		Items:     make([]invoiceItemResponse, 0, len(inv.Items)),
		Tax:       inv.Tax,
		Total:     inv.Total,
	}
	if inv.Client != nil {
		resp.Client = clientResponse{
			ID:                    inv.Client.ID,
			Name:                  inv.Client.Name,
			Address:               inv.Client.Address,
			CompanyRegistrationNo: inv.Client.CompanyRegistrationNo,
		}
	}
	for _, item := range inv.Items {
		ir := invoiceItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		}
		if item.Product != nil {
			ir.ProductName = item.Product.Name
		}
		resp.Items = append(resp.Items, ir)
	}
	return resp
}

// pathID parses the {id} path segment, writing a 400 on garbage input.
func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := r.PathValue("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return 0, false
	}
	return uint(id), true
}

// writeInvoiceError maps service errors to HTTP responses. Not-found on
// get/delete is a 404; creation-time validation failures are 400s with
// distinct codes.
func writeInvoiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvoiceNotFound):
		httpx.JSONError(w, http.StatusNotFound, "invoice_not_found", nil)
	case errors.Is(err, services.ErrClientNotFound):
		httpx.JSONError(w, http.StatusBadRequest, "client_not_found", nil)
	case errors.Is(err, services.ErrProductNotFound):
		httpx.JSONError(w, http.StatusBadRequest, "product_not_found", nil)
	case errors.Is(err, services.ErrInvalidDateRange):
		httpx.JSONError(w, http.StatusBadRequest, "invalid_date_range", nil)
	case errors.Is(err, services.ErrInvalidQuantity):
		httpx.JSONError(w, http.StatusBadRequest, "invalid_quantity", nil)
	case errors.Is(err, services.ErrInvalidTax):
		httpx.JSONError(w, http.StatusBadRequest, "invalid_tax", nil)
	case errors.Is(err, services.ErrEmptyItemList):
		httpx.JSONError(w, http.StatusBadRequest, "empty_item_list", nil)
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}
