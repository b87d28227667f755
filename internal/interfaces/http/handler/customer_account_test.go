package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	partnerapp "github.com/ecom/backend/internal/application/partner"
	"github.com/ecom/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCustomerAccountHandler_Create(t *testing.T) {
	f := newFixture(t)
	ada := f.createCustomer("ada")

	w := f.do(http.MethodPost, fmt.Sprintf("/customer_accounts/%d", ada.ID), map[string]any{
		"username": "ada.l",
		"password": "analytical-engine",
	}, nil)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "analytical-engine")
	assert.NotContains(t, w.Body.String(), "password")
	env := testutil.Decode[partnerapp.CustomerAccountResponse](t, w)
	assert.Equal(t, "New customer account successfully added", env.Message)
	assert.Equal(t, "ada.l", env.Data.Username)
	assert.Equal(t, ada.ID, env.Data.CustomerID)

	var hash string
	require.NoError(t, f.db.DB.Table("Customer_Accounts").Select("password_hash").Where("id = ?", env.Data.ID).Scan(&hash).Error)
	assert.NotEqual(t, "analytical-engine", hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("analytical-engine")))
}

func TestCustomerAccountHandler_Create_Errors(t *testing.T) {
	f := newFixture(t)
	ada := f.createCustomer("ada")
	grace := f.createCustomer("grace")
	f.createAccount(ada.ID, "ada", "first-password")

	tests := []struct {
		name   string
		path   string
		body   any
		status int
		code   string
	}{
		{
			name:   "unknown customer",
			path:   "/customer_accounts/999",
			body:   map[string]any{"username": "ghost", "password": "pw"},
			status: http.StatusNotFound,
			code:   "NOT_FOUND",
		},
		{
			name:   "customer already has an account",
			path:   fmt.Sprintf("/customer_accounts/%d", ada.ID),
			body:   map[string]any{"username": "ada2", "password": "pw"},
			status: http.StatusConflict,
			code:   "CONFLICT",
		},
		{
			name:   "username taken",
			path:   fmt.Sprintf("/customer_accounts/%d", grace.ID),
			body:   map[string]any{"username": "ada", "password": "pw"},
			status: http.StatusConflict,
			code:   "CONFLICT",
		},
		{
			name:   "missing password",
			path:   fmt.Sprintf("/customer_accounts/%d", grace.ID),
			body:   map[string]any{"username": "grace"},
			status: http.StatusBadRequest,
			code:   "VALIDATION_ERROR",
		},
		{
			name:   "password over 72 bytes",
			path:   fmt.Sprintf("/customer_accounts/%d", grace.ID),
			body:   map[string]any{"username": "grace", "password": strings.Repeat("x", 73)},
			status: http.StatusBadRequest,
			code:   "VALIDATION_ERROR",
		},
		{
			name:   "username with spaces",
			path:   fmt.Sprintf("/customer_accounts/%d", grace.ID),
			body:   map[string]any{"username": "grace hopper", "password": "pw"},
			status: http.StatusBadRequest,
			code:   "VALIDATION_ERROR",
		},
		{
			name:   "bad customer id",
			path:   "/customer_accounts/abc",
			body:   map[string]any{"username": "grace", "password": "pw"},
			status: http.StatusBadRequest,
			code:   "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(http.MethodPost, tt.path, tt.body, nil)
			testutil.AssertErrorCode(t, w, tt.status, tt.code)
		})
	}
	assert.Equal(t, int64(1), f.count("Customer_Accounts"))
}

func TestCustomerAccountHandler_GetByUsername(t *testing.T) {
	f := newFixture(t)
	ada := f.createCustomer("ada")
	account := f.createAccount(ada.ID, "ada@home", "pw-123")

	w := f.do(http.MethodGet, "/customer_accounts/by-username?username="+url.QueryEscape("ada@home"), nil, nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "password")
	detail := testutil.Decode[partnerapp.CustomerAccountDetailResponse](t, w).Data
	assert.Equal(t, account, detail.CustomerAccountResponse)
	require.NotNil(t, detail.Customer)
	assert.Equal(t, ada, *detail.Customer)

	w = f.do(http.MethodGet, "/customer_accounts/by-username?username=nobody", nil, nil)
	testutil.AssertErrorCode(t, w, http.StatusNotFound, "NOT_FOUND")

	w = f.do(http.MethodGet, "/customer_accounts/by-username", nil, nil)
	testutil.AssertErrorCode(t, w, http.StatusBadRequest, "VALIDATION_ERROR")
}

func TestCustomerAccountHandler_UpdateByUsername(t *testing.T) {
	f := newFixture(t)
	ada := f.createCustomer("ada")
	grace := f.createCustomer("grace")
	f.createAccount(ada.ID, "ada", "old-password")
	f.createAccount(grace.ID, "grace", "grace-password")

	w := f.do(http.MethodPut, "/customer_accounts/by-username?username=grace", map[string]any{
		"username": "ada",
		"password": "whatever",
	}, nil)
	testutil.AssertErrorCode(t, w, http.StatusConflict, "CONFLICT")

	w = f.do(http.MethodPut, "/customer_accounts/by-username?username=ada", map[string]any{
		"username": "countess",
		"password": "new-password",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	env := testutil.Decode[partnerapp.CustomerAccountResponse](t, w)
	assert.Equal(t, "Customer account details have been successfully updated", env.Message)
	assert.Equal(t, "countess", env.Data.Username)

	w = f.do(http.MethodPost, "/customer_accounts/login", map[string]any{"username": "countess", "password": "old-password"}, nil)
	testutil.AssertErrorCode(t, w, http.StatusUnauthorized, "UNAUTHORIZED")
	w = f.do(http.MethodPost, "/customer_accounts/login", map[string]any{"username": "countess", "password": "new-password"}, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(http.MethodPut, "/customer_accounts/by-username?username=ada", map[string]any{
		"username": "ada",
		"password": "pw",
	}, nil)
	testutil.AssertErrorCode(t, w, http.StatusNotFound, "NOT_FOUND")
}

func TestCustomerAccountHandler_Delete(t *testing.T) {
	f := newFixture(t)
	ada := f.createCustomer("ada")
	account := f.createAccount(ada.ID, "ada", "pw-123")

	w := f.do(http.MethodDelete, fmt.Sprintf("/customer_accounts/%d", account.ID), nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Customer account successfully deleted", testutil.Decode[any](t, w).Message)
	assert.Zero(t, f.count("Customer_Accounts"))
	assert.Equal(t, int64(1), f.count("Customers"))

	w = f.do(http.MethodDelete, fmt.Sprintf("/customer_accounts/%d", account.ID), nil, nil)
	testutil.AssertErrorCode(t, w, http.StatusNotFound, "NOT_FOUND")
}

func TestCustomerAccountHandler_LoginAndMe(t *testing.T) {
	f := newFixture(t)
	ada := f.createCustomer("ada")
	account := f.createAccount(ada.ID, "ada", "correct-horse")

	w := f.do(http.MethodPost, "/customer_accounts/login", map[string]any{
		"username": "ada",
		"password": "correct-horse",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	login := testutil.Decode[partnerapp.LoginResponse](t, w).Data
	assert.Equal(t, "Bearer", login.TokenType)
	assert.NotEmpty(t, login.AccessToken)
	assert.Equal(t, account, login.Account)

	claims, err := f.tokens.ValidateAccessToken(login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, account.ID, claims.AccountID)
	assert.Equal(t, ada.ID, claims.CustomerID)

	w = f.do(http.MethodGet, "/customer_accounts/me", nil, map[string]string{
		"Authorization": "Bearer " + login.AccessToken,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	me := testutil.Decode[partnerapp.CustomerAccountDetailResponse](t, w).Data
	assert.Equal(t, account.ID, me.ID)
	require.NotNil(t, me.Customer)
	assert.Equal(t, ada.ID, me.Customer.ID)

	w = f.do(http.MethodGet, "/customer_accounts/me", nil, nil)
	testutil.AssertErrorCode(t, w, http.StatusUnauthorized, "UNAUTHORIZED")

	w = f.do(http.MethodGet, "/customer_accounts/me", nil, map[string]string{"Authorization": "Bearer garbage"})
	testutil.AssertErrorCode(t, w, http.StatusUnauthorized, "TOKEN_INVALID")
}

func TestCustomerAccountHandler_Login_Rejected(t *testing.T) {
	f := newFixture(t)
	ada := f.createCustomer("ada")
	f.createAccount(ada.ID, "ada", "correct-horse")

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"wrong password", map[string]any{"username": "ada", "password": "battery-staple"}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"unknown username", map[string]any{"username": "bob", "password": "correct-horse"}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"missing password", map[string]any{"username": "ada"}, http.StatusBadRequest, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(http.MethodPost, "/customer_accounts/login", tt.body, nil)
			testutil.AssertErrorCode(t, w, tt.status, tt.code)
		})
	}
}
