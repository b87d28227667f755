package handler

import (
	"net/http"
	"strings"

	partnerapp "github.com/ecom/backend/internal/application/partner"
	"github.com/ecom/backend/internal/interfaces/http/dto"
	"github.com/ecom/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// CustomerAccountHandler handles account registration, maintenance and login
type CustomerAccountHandler struct {
	BaseHandler
	accountService *partnerapp.CustomerAccountService
}

// NewCustomerAccountHandler creates a new CustomerAccountHandler
func NewCustomerAccountHandler(accountService *partnerapp.CustomerAccountService) *CustomerAccountHandler {
	return &CustomerAccountHandler{accountService: accountService}
}

// Create links a new account to the customer named by :customerId
func (h *CustomerAccountHandler) Create(c *gin.Context) {
	customerID, ok := h.pathID(c, "customerId")
	if !ok {
		return
	}

	var req partnerapp.CreateCustomerAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	account, err := h.accountService.Create(c.Request.Context(), customerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, "New customer account successfully added", account)
}

// GetByUsername returns the account named by ?username= with its customer
func (h *CustomerAccountHandler) GetByUsername(c *gin.Context) {
	username, ok := h.username(c)
	if !ok {
		return
	}

	account, err := h.accountService.GetByUsername(c.Request.Context(), username)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// UpdateByUsername replaces the credentials of the account named by ?username=
func (h *CustomerAccountHandler) UpdateByUsername(c *gin.Context) {
	username, ok := h.username(c)
	if !ok {
		return
	}

	var req partnerapp.UpdateCustomerAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	account, err := h.accountService.UpdateByUsername(c.Request.Context(), username, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMessage(c, "Customer account details have been successfully updated", account)
}

// Delete removes the account named by :accountId
func (h *CustomerAccountHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "accountId")
	if !ok {
		return
	}

	if err := h.accountService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMessage(c, "Customer account successfully deleted", nil)
}

// Login verifies credentials and returns a bearer token
func (h *CustomerAccountHandler) Login(c *gin.Context) {
	var req partnerapp.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.accountService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Me returns the account of the bearer token. Requires middleware.JWTAuth.
func (h *CustomerAccountHandler) Me(c *gin.Context) {
	accountID := middleware.GetJWTAccountID(c)
	if accountID == 0 {
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
		return
	}

	account, err := h.accountService.GetByID(c.Request.Context(), accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

func (h *CustomerAccountHandler) username(c *gin.Context) (string, bool) {
	username := strings.TrimSpace(c.Query("username"))
	if username == "" {
		h.ValidationError(c, map[string]string{"username": "Username is required"})
		return "", false
	}
	return username, true
}
