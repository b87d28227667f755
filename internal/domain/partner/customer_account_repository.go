package partner

import (
	"context"
)

// CustomerAccountRepository defines the interface for customer account persistence.
// Accounts are never listed, so it has no FindAll. Update and Delete return
// ErrNotFound when the account does not exist.
type CustomerAccountRepository interface {
	Create(ctx context.Context, account *CustomerAccount) error
	FindByID(ctx context.Context, id uint) (*CustomerAccount, error)
	Update(ctx context.Context, account *CustomerAccount) error
	Delete(ctx context.Context, id uint) error

	// FindByUsername finds an account by its unique username
	FindByUsername(ctx context.Context, username string) (*CustomerAccount, error)

	// FindByCustomerID finds the account linked to a customer
	FindByCustomerID(ctx context.Context, customerID uint) (*CustomerAccount, error)

	// ExistsByUsername checks whether a username is taken
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}
