package partner

import (
	"github.com/ecom/backend/internal/domain/partner"
)

// =============================================================================
// Customer DTOs
// =============================================================================

// CreateCustomerRequest represents a request to create a new customer
type CreateCustomerRequest struct {
	Name  string `json:"name" binding:"required,max=255"`
	Email string `json:"email" binding:"required,email,max=320"`
	Phone string `json:"phone" binding:"required,max=15"`
}

// UpdateCustomerRequest replaces every field of a customer
type UpdateCustomerRequest struct {
	Name  string `json:"name" binding:"required,max=255"`
	Email string `json:"email" binding:"required,email,max=320"`
	Phone string `json:"phone" binding:"required,max=15"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// ToCustomerResponse converts a domain Customer to CustomerResponse
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:    c.ID,
		Name:  c.Name,
		Email: c.Email,
		Phone: c.Phone,
	}
}

// ToCustomerResponses converts a slice of domain Customers
func ToCustomerResponses(customers []partner.Customer) []CustomerResponse {
	responses := make([]CustomerResponse, len(customers))
	for i := range customers {
		responses[i] = ToCustomerResponse(&customers[i])
	}
	return responses
}

// =============================================================================
// Customer account DTOs
// =============================================================================

// CreateCustomerAccountRequest represents a request to link an account to a customer
type CreateCustomerAccountRequest struct {
	Username string `json:"username" binding:"required,max=255"`
	Password string `json:"password" binding:"required,max=72"`
}

// UpdateCustomerAccountRequest replaces username and password
type UpdateCustomerAccountRequest struct {
	Username string `json:"username" binding:"required,max=255"`
	Password string `json:"password" binding:"required,max=72"`
}

// LoginRequest carries account credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CustomerAccountResponse represents an account in API responses.
// It never carries the password or its hash.
type CustomerAccountResponse struct {
	ID         uint   `json:"id"`
	Username   string `json:"username"`
	CustomerID uint   `json:"customer_id"`
}

// CustomerAccountDetailResponse is an account with its linked customer
type CustomerAccountDetailResponse struct {
	CustomerAccountResponse
	Customer *CustomerResponse `json:"customer,omitempty"`
}

// LoginResponse is returned on successful login
type LoginResponse struct {
	AccessToken string                  `json:"access_token"`
	TokenType   string                  `json:"token_type"`
	ExpiresAt   int64                   `json:"expires_at"`
	Account     CustomerAccountResponse `json:"account"`
}

// ToCustomerAccountResponse converts a domain CustomerAccount to CustomerAccountResponse
func ToCustomerAccountResponse(a *partner.CustomerAccount) CustomerAccountResponse {
	return CustomerAccountResponse{
		ID:         a.ID,
		Username:   a.Username,
		CustomerID: a.CustomerID,
	}
}
