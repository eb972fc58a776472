package handler

import (
	accountapp "github.com/facturasnap/backend/internal/application/account"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PlanHandler handles payment plan endpoints
type PlanHandler struct {
	BaseHandler
	plans *accountapp.PlanService
}

// NewPlanHandler creates a new plan handler
func NewPlanHandler(plans *accountapp.PlanService) *PlanHandler {
	return &PlanHandler{plans: plans}
}

// List godoc
// @ID           listPlans
// @Summary      List payment plans
// @Tags         plans
// @Produce      json
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]PlanResponse]
// @Security     BearerAuth
// @Router       /plans [get]
func (h *PlanHandler) List(c *gin.Context) {
	filter, req, ok := h.listFilter(c)
	if !ok {
		return
	}
	plans, total, err := h.plans.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, mapSlice(plans, toPlanResponse), total, req.Page, req.PageSize)
}

// Get godoc
// @ID           getPlan
// @Summary      Get a payment plan
// @Tags         plans
// @Produce      json
// @Param        id path string true "Plan ID"
// @Success      200 {object} APIResponse[PlanResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /plans/{id} [get]
func (h *PlanHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	plan, err := h.plans.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPlanResponse(plan))
}

// Create godoc
// @ID           createPlan
// @Summary      Create a payment plan
// @Tags         plans
// @Accept       json
// @Produce      json
// @Param        request body PlanRequest true "Plan"
// @Success      201 {object} APIResponse[PlanResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /plans [post]
func (h *PlanHandler) Create(c *gin.Context) {
	var req PlanRequest
	if !h.bindJSON(c, &req) {
		return
	}
	plan, err := h.plans.Create(c.Request.Context(), planInput(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toPlanResponse(plan))
}

// Update godoc
// @ID           updatePlan
// @Summary      Update a payment plan
// @Tags         plans
// @Accept       json
// @Produce      json
// @Param        id path string true "Plan ID"
// @Param        request body PlanRequest true "Plan"
// @Success      200 {object} APIResponse[PlanResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /plans/{id} [put]
func (h *PlanHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req PlanRequest
	if !h.bindJSON(c, &req) {
		return
	}
	plan, err := h.plans.Update(c.Request.Context(), id, planInput(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPlanResponse(plan))
}

// Delete godoc
// @ID           deletePlan
// @Summary      Delete a payment plan
// @Tags         plans
// @Param        id path string true "Plan ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /plans/{id} [delete]
func (h *PlanHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.plans.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func planInput(req PlanRequest) accountapp.PlanInput {
	return accountapp.PlanInput{
		Description:  req.Description,
		CreditAmount: req.CreditAmount,
		Price:        req.Price,
	}
}

// CreditHandler handles the caller's credit ledger
type CreditHandler struct {
	BaseHandler
	credits *accountapp.CreditService
}

// NewCreditHandler creates a new credit handler
func NewCreditHandler(credits *accountapp.CreditService) *CreditHandler {
	return &CreditHandler{credits: credits}
}

// List godoc
// @ID           listCredits
// @Summary      List the caller's credit entries
// @Tags         credits
// @Produce      json
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]CreditResponse]
// @Security     BearerAuth
// @Router       /credits [get]
func (h *CreditHandler) List(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	filter, req, ok := h.listFilter(c)
	if !ok {
		return
	}
	credits, total, err := h.credits.List(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, mapSlice(credits, toCreditResponse), total, req.Page, req.PageSize)
}

// Balance godoc
// @ID           getCreditBalance
// @Summary      The caller's available credits
// @Tags         credits
// @Produce      json
// @Success      200 {object} APIResponse[BalanceData]
// @Security     BearerAuth
// @Router       /credits/balance [get]
func (h *CreditHandler) Balance(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	balance, err := h.credits.Balance(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, BalanceData{Balance: balance})
}

// Get godoc
// @ID           getCredit
// @Summary      Get a credit entry
// @Tags         credits
// @Produce      json
// @Param        id path string true "Credit ID"
// @Success      200 {object} APIResponse[CreditResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /credits/{id} [get]
func (h *CreditHandler) Get(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	credit, err := h.credits.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toCreditResponse(credit))
}

// Create godoc
// @ID           createCredit
// @Summary      Add a manual credit adjustment
// @Tags         credits
// @Accept       json
// @Produce      json
// @Param        request body CreditRequest true "Amount"
// @Success      201 {object} APIResponse[CreditResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /credits [post]
func (h *CreditHandler) Create(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req CreditRequest
	if !h.bindJSON(c, &req) {
		return
	}
	credit, err := h.credits.Create(c.Request.Context(), userID, req.Amount)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toCreditResponse(credit))
}

// Update godoc
// @ID           updateCredit
// @Summary      Change a manual credit adjustment
// @Tags         credits
// @Accept       json
// @Produce      json
// @Param        id path string true "Credit ID"
// @Param        request body CreditRequest true "Amount"
// @Success      200 {object} APIResponse[CreditResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /credits/{id} [put]
func (h *CreditHandler) Update(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req CreditRequest
	if !h.bindJSON(c, &req) {
		return
	}
	credit, err := h.credits.Update(c.Request.Context(), userID, id, req.Amount)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toCreditResponse(credit))
}

// Delete godoc
// @ID           deleteCredit
// @Summary      Delete a credit entry
// @Tags         credits
// @Param        id path string true "Credit ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /credits/{id} [delete]
func (h *CreditHandler) Delete(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.credits.Delete(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Purchase godoc
// @ID           purchaseCredits
// @Summary      Buy a payment plan's credits
// @Tags         credits
// @Accept       json
// @Produce      json
// @Param        request body PurchaseRequest true "Plan"
// @Success      201 {object} APIResponse[CreditResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /credits/purchase [post]
func (h *CreditHandler) Purchase(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req PurchaseRequest
	if !h.bindJSON(c, &req) {
		return
	}
	credit, err := h.credits.Purchase(c.Request.Context(), userID, uuid.MustParse(req.PlanID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toCreditResponse(credit))
}

// SessionHandler lists and ends the caller's login sessions
type SessionHandler struct {
	BaseHandler
	sessions *accountapp.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *accountapp.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// List godoc
// @ID           listSessions
// @Summary      List the caller's sessions
// @Tags         sessions
// @Produce      json
// @Success      200 {object} APIResponse[[]SessionResponse]
// @Security     BearerAuth
// @Router       /sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	filter, req, ok := h.listFilter(c)
	if !ok {
		return
	}
	sessions, total, err := h.sessions.List(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, mapSlice(sessions, toSessionResponse), total, req.Page, req.PageSize)
}

// Delete godoc
// @ID           deleteSession
// @Summary      End a session
// @Description  Deletes the session and revokes its access token
// @Tags         sessions
// @Param        id path string true "Session ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sessions/{id} [delete]
func (h *SessionHandler) Delete(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.sessions.Delete(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
