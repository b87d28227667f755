package partner

import (
	"errors"
	"regexp"
	"strings"

	"github.com/ecom/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt rejects inputs longer than 72 bytes
const maxPasswordLength = 72

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_\-.@]+$`)

// passwordCost is a variable so tests can lower it
var passwordCost = bcrypt.DefaultCost

// CustomerAccount holds the login credentials of exactly one customer.
// The raw password never leaves the constructor; only its bcrypt hash is kept.
type CustomerAccount struct {
	shared.BaseEntity
	Username     string
	PasswordHash string
	CustomerID   uint
}

// NewCustomerAccount creates an account for the given customer
func NewCustomerAccount(customerID uint, username, password string) (*CustomerAccount, error) {
	if customerID == 0 {
		return nil, shared.NewValidationError("customer_id", "Customer ID cannot be empty")
	}

	a := &CustomerAccount{
		BaseEntity: shared.NewBaseEntity(),
		CustomerID: customerID,
	}
	if err := a.SetCredentials(username, password); err != nil {
		return nil, err
	}
	return a, nil
}

// NormalizeUsername returns username in the form it is stored and compared in
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

// SetCredentials replaces username and password
func (a *CustomerAccount) SetCredentials(username, password string) error {
	username = NormalizeUsername(username)
	if err := validateUsername(username); err != nil {
		return err
	}
	if err := validatePassword(password); err != nil {
		return err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}

	a.Username = username
	a.PasswordHash = hash
	if !a.IsNew() {
		a.Touch()
	}
	return nil
}

// VerifyPassword reports whether password matches the stored hash
func (a *CustomerAccount) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password))
	return err == nil
}

func validateUsername(username string) error {
	if username == "" {
		return shared.NewValidationError("username", "Username cannot be empty")
	}
	if len(username) > maxNameLength {
		return shared.NewValidationError("username", "Username cannot exceed 255 characters")
	}
	if !usernamePattern.MatchString(username) {
		return shared.NewValidationError("username", "Username can only contain letters, numbers, underscores, hyphens, dots, and @")
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return shared.NewValidationError("password", "Password cannot be empty")
	}
	if len(password) > maxPasswordLength {
		return shared.NewValidationError("password", "Password cannot exceed 72 bytes")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", shared.NewValidationError("password", "Password cannot exceed 72 bytes")
		}
		return "", err
	}
	return string(hash), nil
}
