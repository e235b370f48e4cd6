package handler

import (
	"github.com/erp/invoicing/internal/application/invoicing"
	"github.com/gin-gonic/gin"
)

// InvoiceHandler handles invoice and invoice item endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *invoicing.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *invoicing.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
	}
}

// Create godoc
// @ID           createInvoice
// @Summary      Create an invoice
// @Description  Creates an invoice owned by the caller, with optional line items
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body invoicing.CreateInvoiceRequest true "Invoice creation request"
// @Success      201 {object} APIResponse[invoicing.InvoiceResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	caller, ok := h.principal(c)
	if !ok {
		return
	}
	var req invoicing.CreateInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	invoice, err := h.invoiceService.Create(c.Request.Context(), caller, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, invoice)
}

// List godoc
// @ID           listInvoices
// @Summary      List invoices
// @Description  Regular users see their own invoices, super-admins see all
// @Tags         invoices
// @Produce      json
// @Param        skip  query int false "Records to skip" default(0)
// @Param        limit query int false "Page size" default(100)
// @Success      200 {object} ListResponse[invoicing.InvoiceResponse]
// @Security     BearerAuth
// @Router       /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	caller, ok := h.principal(c)
	if !ok {
		return
	}
	filter, ok := h.BindList(c)
	if !ok {
		return
	}

	invoices, total, err := h.invoiceService.List(c.Request.Context(), caller, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, invoices, total, filter.Offset(), filter.PageLimit())
}

// Get godoc
// @ID           getInvoice
// @Summary      Get an invoice
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[invoicing.InvoiceResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	caller, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.Get(c.Request.Context(), caller, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// Update godoc
// @ID           updateInvoice
// @Summary      Update an invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id      path string                         true "Invoice ID" format(uuid)
// @Param        request body invoicing.UpdateInvoiceRequest true "Fields to change"
// @Success      200 {object} APIResponse[invoicing.InvoiceResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	caller, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req invoicing.UpdateInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	invoice, err := h.invoiceService.Update(c.Request.Context(), caller, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// Delete godoc
// @ID           deleteInvoice
// @Summary      Delete an invoice
// @Description  Removes the invoice together with its items and payments
// @Tags         invoices
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      204
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	caller, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.invoiceService.Delete(c.Request.Context(), caller, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// AddItem godoc
// @ID           addInvoiceItem
// @Summary      Add a line item
// @Description  The item total is added to the invoice total
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id      path string                true "Invoice ID" format(uuid)
// @Param        request body invoicing.ItemRequest true "Line item"
// @Success      201 {object} APIResponse[invoicing.ItemResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/items [post]
func (h *InvoiceHandler) AddItem(c *gin.Context) {
	caller, ok := h.principal(c)
	if !ok {
		return
	}
	invoiceID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req invoicing.ItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	item, err := h.invoiceService.AddItem(c.Request.Context(), caller, invoiceID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, item)
}

// UpdateItem godoc
// @ID           updateInvoiceItem
// @Summary      Update a line item
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        item_id path string                      true "Item ID" format(uuid)
// @Param        request body invoicing.UpdateItemRequest true "Fields to change"
// @Success      200 {object} APIResponse[invoicing.ItemResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/items/{item_id} [put]
func (h *InvoiceHandler) UpdateItem(c *gin.Context) {
	caller, ok := h.principal(c)
	if !ok {
		return
	}
	itemID, ok := parseUUIDParam(c, "item_id")
	if !ok {
		return
	}
	var req invoicing.UpdateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	item, err := h.invoiceService.UpdateItem(c.Request.Context(), caller, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// DeleteItem godoc
// @ID           deleteInvoiceItem
// @Summary      Delete a line item
// @Tags         invoices
// @Param        item_id path string true "Item ID" format(uuid)
// @Success      204
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/items/{item_id} [delete]
func (h *InvoiceHandler) DeleteItem(c *gin.Context) {
	caller, ok := h.principal(c)
	if !ok {
		return
	}
	itemID, ok := parseUUIDParam(c, "item_id")
	if !ok {
		return
	}

	if err := h.invoiceService.DeleteItem(c.Request.Context(), caller, itemID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
