package partner

import (
	"regexp"
	"strings"

	"github.com/ecom/backend/internal/domain/shared"
)

const (
	maxNameLength  = 255
	maxEmailLength = 320
	maxPhoneLength = 15
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^[\d\s\-\(\)\+\.]+$`)
)

// Customer is a person who can hold an account and place orders.
// A customer owns zero or more orders and at most one CustomerAccount.
type Customer struct {
	shared.BaseEntity
	Name  string
	Email string
	Phone string
}

// NewCustomer creates a new customer with required fields
func NewCustomer(name, email, phone string) (*Customer, error) {
	c := &Customer{BaseEntity: shared.NewBaseEntity()}
	if err := c.apply(name, email, phone); err != nil {
		return nil, err
	}
	return c, nil
}

// Update replaces every mutable field of the customer
func (c *Customer) Update(name, email, phone string) error {
	if err := c.apply(name, email, phone); err != nil {
		return err
	}
	c.Touch()
	return nil
}

func (c *Customer) apply(name, email, phone string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	phone = strings.TrimSpace(phone)

	if err := validateCustomerName(name); err != nil {
		return err
	}
	if err := validateEmail(email); err != nil {
		return err
	}
	if err := validatePhone(phone); err != nil {
		return err
	}

	c.Name = name
	c.Email = email
	c.Phone = phone
	return nil
}

func validateCustomerName(name string) error {
	if name == "" {
		return shared.NewValidationError("name", "Customer name cannot be empty")
	}
	if len(name) > maxNameLength {
		return shared.NewValidationError("name", "Customer name cannot exceed 255 characters")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewValidationError("email", "Email cannot be empty")
	}
	if len(email) > maxEmailLength {
		return shared.NewValidationError("email", "Email cannot exceed 320 characters")
	}
	if !emailPattern.MatchString(email) {
		return shared.NewValidationError("email", "Invalid email format")
	}
	return nil
}

func validatePhone(phone string) error {
	if phone == "" {
		return shared.NewValidationError("phone", "Phone number cannot be empty")
	}
	if len(phone) > maxPhoneLength {
		return shared.NewValidationError("phone", "Phone number cannot exceed 15 characters")
	}
	// digits, spaces, hyphens, dots, parentheses and plus sign
	if !phonePattern.MatchString(phone) {
		return shared.NewValidationError("phone", "Invalid phone number format")
	}
	return nil
}
