package handler

import (
	invoicingapp "github.com/facturasnap/backend/internal/application/invoicing"
	"github.com/gin-gonic/gin"
)

// InvoiceHandler handles the caller's stored invoices
type InvoiceHandler struct {
	BaseHandler
	invoices *invoicingapp.InvoiceService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoices *invoicingapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

// List godoc
// @ID           listInvoices
// @Summary      List the caller's invoices
// @Tags         invoices
// @Produce      json
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        search query string false "Folio or merchant"
// @Success      200 {object} APIResponse[[]InvoiceResponse]
// @Security     BearerAuth
// @Router       /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	filter, req, ok := h.listFilter(c)
	if !ok {
		return
	}
	invoices, total, err := h.invoices.List(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]*InvoiceResponse, len(invoices))
	for i := range invoices {
		out[i] = toInvoiceResponse(&invoices[i])
	}
	h.SuccessWithMeta(c, out, total, req.Page, req.PageSize)
}

// Get godoc
// @ID           getInvoice
// @Summary      Get an invoice
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Success      200 {object} APIResponse[InvoiceResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	inv, err := h.invoices.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toInvoiceResponse(inv))
}

// Create godoc
// @ID           createInvoice
// @Summary      Record an invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body InvoiceRequest true "Invoice"
// @Success      201 {object} APIResponse[InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req InvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	inv, err := h.invoices.Create(c.Request.Context(), userID, req.fields())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toInvoiceResponse(inv))
}

// Update godoc
// @ID           updateInvoice
// @Summary      Update an invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Param        request body InvoiceRequest true "Invoice"
// @Success      200 {object} APIResponse[InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req InvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	inv, err := h.invoices.Update(c.Request.Context(), userID, id, req.fields())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toInvoiceResponse(inv))
}

// Delete godoc
// @ID           deleteInvoice
// @Summary      Delete an invoice
// @Tags         invoices
// @Param        id path string true "Invoice ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.invoices.Delete(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Document godoc
// @ID           getInvoiceDocument
// @Summary      Download link for an invoice document
// @Description  Returns a presigned archive link when the document was archived, otherwise the merchant portal URL
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Success      200 {object} APIResponse[DocumentLinkResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/document [get]
func (h *InvoiceHandler) Document(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	link, err := h.invoices.DocumentLink(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toDocumentLinkResponse(link))
}

// TaxRecordHandler handles the caller's fiscal profiles
type TaxRecordHandler struct {
	BaseHandler
	records *invoicingapp.TaxRecordService
}

// NewTaxRecordHandler creates a new tax record handler
func NewTaxRecordHandler(records *invoicingapp.TaxRecordService) *TaxRecordHandler {
	return &TaxRecordHandler{records: records}
}

// List godoc
// @ID           listTaxRecords
// @Summary      List the caller's tax records
// @Tags         tax-records
// @Produce      json
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]TaxRecordResponse]
// @Security     BearerAuth
// @Router       /tax-records [get]
func (h *TaxRecordHandler) List(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	filter, req, ok := h.listFilter(c)
	if !ok {
		return
	}
	records, total, err := h.records.List(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, mapSlice(records, toTaxRecordResponse), total, req.Page, req.PageSize)
}

// Get godoc
// @ID           getTaxRecord
// @Summary      Get a tax record
// @Tags         tax-records
// @Produce      json
// @Param        id path string true "Tax record ID"
// @Success      200 {object} APIResponse[TaxRecordResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tax-records/{id} [get]
func (h *TaxRecordHandler) Get(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	record, err := h.records.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTaxRecordResponse(record))
}

// Create godoc
// @ID           createTaxRecord
// @Summary      Create a tax record
// @Tags         tax-records
// @Accept       json
// @Produce      json
// @Param        request body TaxRecordRequest true "Tax record"
// @Success      201 {object} APIResponse[TaxRecordResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tax-records [post]
func (h *TaxRecordHandler) Create(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req TaxRecordRequest
	if !h.bindJSON(c, &req) {
		return
	}
	record, err := h.records.Create(c.Request.Context(), userID, req.fields())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toTaxRecordResponse(record))
}

// Update godoc
// @ID           updateTaxRecord
// @Summary      Update a tax record
// @Tags         tax-records
// @Accept       json
// @Produce      json
// @Param        id path string true "Tax record ID"
// @Param        request body TaxRecordRequest true "Tax record"
// @Success      200 {object} APIResponse[TaxRecordResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tax-records/{id} [put]
func (h *TaxRecordHandler) Update(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req TaxRecordRequest
	if !h.bindJSON(c, &req) {
		return
	}
	record, err := h.records.Update(c.Request.Context(), userID, id, req.fields())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTaxRecordResponse(record))
}

// Delete godoc
// @ID           deleteTaxRecord
// @Summary      Delete a tax record
// @Tags         tax-records
// @Param        id path string true "Tax record ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tax-records/{id} [delete]
func (h *TaxRecordHandler) Delete(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.records.Delete(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// EstablishmentHandler handles the shared establishment catalog
type EstablishmentHandler struct {
	BaseHandler
	establishments *invoicingapp.EstablishmentService
}

// NewEstablishmentHandler creates a new establishment handler
func NewEstablishmentHandler(establishments *invoicingapp.EstablishmentService) *EstablishmentHandler {
	return &EstablishmentHandler{establishments: establishments}
}

// List godoc
// @ID           listEstablishments
// @Summary      List establishments
// @Tags         establishments
// @Produce      json
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        search query string false "Name"
// @Success      200 {object} APIResponse[[]EstablishmentResponse]
// @Security     BearerAuth
// @Router       /establishments [get]
func (h *EstablishmentHandler) List(c *gin.Context) {
	filter, req, ok := h.listFilter(c)
	if !ok {
		return
	}
	items, total, err := h.establishments.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, mapSlice(items, toEstablishmentResponse), total, req.Page, req.PageSize)
}

// Get godoc
// @ID           getEstablishment
// @Summary      Get an establishment
// @Tags         establishments
// @Produce      json
// @Param        id path string true "Establishment ID"
// @Success      200 {object} APIResponse[EstablishmentResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /establishments/{id} [get]
func (h *EstablishmentHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	e, err := h.establishments.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toEstablishmentResponse(e))
}

// Create godoc
// @ID           createEstablishment
// @Summary      Create an establishment
// @Tags         establishments
// @Accept       json
// @Produce      json
// @Param        request body EstablishmentRequest true "Establishment"
// @Success      201 {object} APIResponse[EstablishmentResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /establishments [post]
func (h *EstablishmentHandler) Create(c *gin.Context) {
	var req EstablishmentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	e, err := h.establishments.Create(c.Request.Context(), req.input())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toEstablishmentResponse(e))
}

// Update godoc
// @ID           updateEstablishment
// @Summary      Update an establishment
// @Tags         establishments
// @Accept       json
// @Produce      json
// @Param        id path string true "Establishment ID"
// @Param        request body EstablishmentRequest true "Establishment"
// @Success      200 {object} APIResponse[EstablishmentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /establishments/{id} [put]
func (h *EstablishmentHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req EstablishmentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	e, err := h.establishments.Update(c.Request.Context(), id, req.input())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toEstablishmentResponse(e))
}

// Delete godoc
// @ID           deleteEstablishment
// @Summary      Delete an establishment
// @Tags         establishments
// @Param        id path string true "Establishment ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /establishments/{id} [delete]
func (h *EstablishmentHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.establishments.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
