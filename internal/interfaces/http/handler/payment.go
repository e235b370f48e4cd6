package handler

import (
	"github.com/erp/invoicing/internal/application/invoicing"
	"github.com/erp/invoicing/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *invoicing.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *invoicing.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// Create godoc
// @ID           createPayment
// @Summary      Record a payment
// @Description  Marks the invoice paid once its payments cover the total
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body invoicing.CreatePaymentRequest true "Payment"
// @Success      201 {object} APIResponse[invoicing.PaymentResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	caller, ok := h.principal(c)
	if !ok {
		return
	}
	var req invoicing.CreatePaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	payment, err := h.paymentService.Record(c.Request.Context(), caller, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, payment)
}

// List godoc
// @ID           listPayments
// @Summary      List payments
// @Description  Regular users see their own payments, super-admins see all
// @Tags         payments
// @Produce      json
// @Param        invoice_id query string false "Only payments of this invoice" format(uuid)
// @Param        skip       query int    false "Records to skip" default(0)
// @Param        limit      query int    false "Page size" default(100)
// @Success      200 {object} ListResponse[invoicing.PaymentResponse]
// @Security     BearerAuth
// @Router       /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	caller, ok := h.principal(c)
	if !ok {
		return
	}
	filter, ok := h.BindList(c)
	if !ok {
		return
	}

	listFilter := invoicing.PaymentListFilter{ListFilter: filter}
	if raw := c.Query("invoice_id"); raw != "" {
		invoiceID, err := uuid.Parse(raw)
		if err != nil {
			middleware.HandleInvalidParam(c, "invoice_id", "must be a valid UUID")
			return
		}
		listFilter.InvoiceID = &invoiceID
	}

	payments, total, err := h.paymentService.List(c.Request.Context(), caller, listFilter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, payments, total, filter.Offset(), filter.PageLimit())
}

// Get godoc
// @ID           getPayment
// @Summary      Get a payment
// @Tags         payments
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Success      200 {object} APIResponse[invoicing.PaymentResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments/{id} [get]
func (h *PaymentHandler) Get(c *gin.Context) {
	caller, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	payment, err := h.paymentService.Get(c.Request.Context(), caller, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payment)
}

// Update godoc
// @ID           updatePayment
// @Summary      Update a payment
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id      path string                         true "Payment ID" format(uuid)
// @Param        request body invoicing.UpdatePaymentRequest true "Fields to change"
// @Success      200 {object} APIResponse[invoicing.PaymentResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments/{id} [put]
func (h *PaymentHandler) Update(c *gin.Context) {
	caller, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req invoicing.UpdatePaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	payment, err := h.paymentService.Update(c.Request.Context(), caller, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payment)
}

// Delete godoc
// @ID           deletePayment
// @Summary      Delete a payment
// @Tags         payments
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Success      200 {object} APIResponse[dto.MessageResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments/{id} [delete]
func (h *PaymentHandler) Delete(c *gin.Context) {
	caller, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.paymentService.Delete(c.Request.Context(), caller, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Message(c, "Payment deleted successfully")
}
