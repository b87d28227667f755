package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/ecom/backend/internal/domain/partner"
	"github.com/ecom/backend/internal/domain/shared"
	"github.com/ecom/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCustomerAccountRepository implements CustomerAccountRepository using GORM
type GormCustomerAccountRepository struct {
	db *gorm.DB
}

// NewGormCustomerAccountRepository creates a new GormCustomerAccountRepository
func NewGormCustomerAccountRepository(db *gorm.DB) *GormCustomerAccountRepository {
	return &GormCustomerAccountRepository{db: db}
}

// Create inserts an account. A duplicate username or a second account for
// the same customer yields a conflict error.
func (r *GormCustomerAccountRepository) Create(ctx context.Context, account *partner.CustomerAccount) error {
	model := models.CustomerAccountModelFromDomain(account)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateAccountError(err)
	}
	account.BaseEntity = model.BaseModel.ToDomain()
	return nil
}

// FindByID finds an account by its ID
func (r *GormCustomerAccountRepository) FindByID(ctx context.Context, id uint) (*partner.CustomerAccount, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByUsername finds an account by username
func (r *GormCustomerAccountRepository) FindByUsername(ctx context.Context, username string) (*partner.CustomerAccount, error) {
	return r.findOne(ctx, "username = ?", username)
}

// FindByCustomerID finds the account of a customer
func (r *GormCustomerAccountRepository) FindByCustomerID(ctx context.Context, customerID uint) (*partner.CustomerAccount, error) {
	return r.findOne(ctx, "customer_id = ?", customerID)
}

func (r *GormCustomerAccountRepository) findOne(ctx context.Context, query string, arg any) (*partner.CustomerAccount, error) {
	var model models.CustomerAccountModel
	if err := r.db.WithContext(ctx).Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Customer account not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsByUsername checks whether a username is taken
func (r *GormCustomerAccountRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.CustomerAccountModel{}).
		Where("username = ?", username).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update replaces the username and password hash of an account
func (r *GormCustomerAccountRepository) Update(ctx context.Context, account *partner.CustomerAccount) error {
	updatedAt := account.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	result := r.db.WithContext(ctx).Model(&models.CustomerAccountModel{}).
		Where("id = ?", account.ID).
		Updates(map[string]any{
			"username":      account.Username,
			"password_hash": account.PasswordHash,
			"updated_at":    updatedAt,
		})
	if result.Error != nil {
		return translateAccountError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Customer account not found")
	}
	account.UpdatedAt = updatedAt
	return nil
}

// Delete removes an account; the customer is left in place
func (r *GormCustomerAccountRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.CustomerAccountModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Customer account not found")
	}
	return nil
}

func translateAccountError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.NewConflictError("Username already exists or customer already has an account")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return shared.NewNotFoundError("Customer not found")
	}
	return err
}

// Ensure GormCustomerAccountRepository implements CustomerAccountRepository
var _ partner.CustomerAccountRepository = (*GormCustomerAccountRepository)(nil)
