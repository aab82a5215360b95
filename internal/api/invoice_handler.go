package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tristar/fitness-hub/internal/domain"
	"tristar/fitness-hub/internal/service"
)

type InvoiceHandler struct {
	invoiceService service.InvoiceService
}

func NewInvoiceHandler(invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// CreateInvoiceRequest carries no totals; they are always derived from Items.
type CreateInvoiceRequest struct {
	MemberID string               `json:"memberId" binding:"required"`
	Items    []domain.LineItem    `json:"items" binding:"required,min=1"`
	Status   domain.InvoiceStatus `json:"status" binding:"omitempty,oneof=pending paid overdue"`
	DueDate  *time.Time           `json:"dueDate"`
	Notes    string               `json:"notes"`
}

func (r CreateInvoiceRequest) toDomain() domain.Invoice {
	inv := domain.Invoice{MemberID: r.MemberID, Items: r.Items, Status: r.Status, Notes: r.Notes}
	if r.DueDate != nil {
		inv.DueDate = r.DueDate.UTC()
	}
	return inv
}

type UpdateInvoiceStatusRequest struct {
	Status domain.InvoiceStatus `json:"status" binding:"required"`
}

// ListInvoices godoc
// @Summary List invoices
// @Tags Invoices
// @Produce json
// @Security BearerAuth
// @Param memberId query string false "Member filter"
// @Param status query string false "Status filter"
// @Success 200 {object} Response
// @Router /invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	q, err := parseListQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	invoices, page, err := h.invoiceService.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, invoices, page)
}

// CreateInvoice godoc
// @Summary Issue an invoice
// @Description The identifier is the next #MP number; subtotal, tax and total are computed from the items.
// @Tags Invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param invoice body CreateInvoiceRequest true "Invoice"
// @Success 201 {object} Response
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Member not found"
// @Router /invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req CreateInvoiceRequest
	if !bindJSON(c, &req) {
		return
	}
	invoice, err := h.invoiceService.Create(c.Request.Context(), req.toDomain())
	if err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusCreated, "Invoice created", invoice)
}

func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	invoice, err := h.invoiceService.Get(c.Request.Context(), invoiceIDParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, invoice)
}

func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	var patch domain.InvoicePatch
	if !bindJSON(c, &patch) {
		return
	}
	invoice, err := h.invoiceService.Update(c.Request.Context(), invoiceIDParam(c), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Invoice updated", invoice)
}

// UpdateInvoiceStatus godoc
// @Summary Change an invoice's payment status
// @Tags Invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invoice ID, with or without the leading #"
// @Param status body UpdateInvoiceStatusRequest true "New status"
// @Success 200 {object} Response
// @Router /invoices/{id}/status [put]
func (h *InvoiceHandler) UpdateInvoiceStatus(c *gin.Context) {
	var req UpdateInvoiceStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	invoice, err := h.invoiceService.UpdateStatus(c.Request.Context(), invoiceIDParam(c), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Invoice status updated", invoice)
}

func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	if err := h.invoiceService.Delete(c.Request.Context(), invoiceIDParam(c)); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Invoice deleted", nil)
}

// Summary godoc
// @Summary Invoice totals by status
// @Tags Invoices
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response
// @Router /invoices/stats/summary [get]
func (h *InvoiceHandler) Summary(c *gin.Context) {
	summary, err := h.invoiceService.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, summary)
}
