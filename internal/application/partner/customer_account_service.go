package partner

import (
	"context"
	"errors"

	"github.com/ecom/backend/internal/domain/partner"
	"github.com/ecom/backend/internal/domain/shared"
	"github.com/ecom/backend/internal/infrastructure/auth"
	"github.com/ecom/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// errInvalidCredentials is returned for both unknown usernames and wrong passwords
var errInvalidCredentials = shared.NewDomainError(shared.CodeUnauthorized, "Invalid username or password")

// TokenIssuer signs access tokens for authenticated accounts
type TokenIssuer interface {
	GenerateAccessToken(input auth.TokenInput) (*auth.AccessToken, error)
}

// CustomerAccountService handles account registration, maintenance and login
type CustomerAccountService struct {
	accountRepo  partner.CustomerAccountRepository
	customerRepo partner.CustomerRepository
	tokens       TokenIssuer
	logger       *zap.Logger
}

// NewCustomerAccountService creates a new CustomerAccountService
func NewCustomerAccountService(
	accountRepo partner.CustomerAccountRepository,
	customerRepo partner.CustomerRepository,
	tokens TokenIssuer,
	log *zap.Logger,
) *CustomerAccountService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CustomerAccountService{
		accountRepo:  accountRepo,
		customerRepo: customerRepo,
		tokens:       tokens,
		logger:       log,
	}
}

// Create links a new account to an existing customer.
// A customer has at most one account and usernames are unique.
func (s *CustomerAccountService) Create(ctx context.Context, customerID uint, req CreateCustomerAccountRequest) (*CustomerAccountResponse, error) {
	exists, err := s.customerRepo.ExistsByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.NewNotFoundError("Customer not found")
	}

	if _, err := s.accountRepo.FindByCustomerID(ctx, customerID); err == nil {
		return nil, shared.NewConflictError("Customer already has an account")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	username := partner.NormalizeUsername(req.Username)
	taken, err := s.accountRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, shared.NewConflictError("Username already exists")
	}

	account, err := partner.NewCustomerAccount(customerID, username, req.Password)
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	logger.FromContextOr(ctx, s.logger).Info("Customer account created",
		logger.AccountID(account.ID),
		logger.CustomerID(customerID),
	)
	response := ToCustomerAccountResponse(account)
	return &response, nil
}

// GetByUsername returns an account together with its customer
func (s *CustomerAccountService) GetByUsername(ctx context.Context, username string) (*CustomerAccountDetailResponse, error) {
	account, err := s.accountRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.withCustomer(ctx, account)
}

// GetByID returns an account together with its customer
func (s *CustomerAccountService) GetByID(ctx context.Context, id uint) (*CustomerAccountDetailResponse, error) {
	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withCustomer(ctx, account)
}

func (s *CustomerAccountService) withCustomer(ctx context.Context, account *partner.CustomerAccount) (*CustomerAccountDetailResponse, error) {
	response := &CustomerAccountDetailResponse{
		CustomerAccountResponse: ToCustomerAccountResponse(account),
	}

	customer, err := s.customerRepo.FindByID(ctx, account.CustomerID)
	switch {
	case err == nil:
		c := ToCustomerResponse(customer)
		response.Customer = &c
	case errors.Is(err, shared.ErrNotFound):
		logger.FromContextOr(ctx, s.logger).Warn("Account references a missing customer",
			logger.AccountID(account.ID),
			logger.CustomerID(account.CustomerID),
		)
	default:
		return nil, err
	}
	return response, nil
}

// UpdateByUsername replaces username and password of the account with the given username
func (s *CustomerAccountService) UpdateByUsername(ctx context.Context, username string, req UpdateCustomerAccountRequest) (*CustomerAccountResponse, error) {
	account, err := s.accountRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	newUsername := partner.NormalizeUsername(req.Username)
	if newUsername != account.Username {
		taken, err := s.accountRepo.ExistsByUsername(ctx, newUsername)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, shared.NewConflictError("Username already exists")
		}
	}

	if err := account.SetCredentials(newUsername, req.Password); err != nil {
		return nil, err
	}

	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, err
	}

	logger.FromContextOr(ctx, s.logger).Info("Customer account updated", logger.AccountID(account.ID))
	response := ToCustomerAccountResponse(account)
	return &response, nil
}

// Delete removes an account; the customer is kept
func (s *CustomerAccountService) Delete(ctx context.Context, id uint) error {
	if err := s.accountRepo.Delete(ctx, id); err != nil {
		return err
	}
	logger.FromContextOr(ctx, s.logger).Info("Customer account deleted", logger.AccountID(id))
	return nil
}

// Login verifies credentials and issues an access token
func (s *CustomerAccountService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	log := logger.FromContextOr(ctx, s.logger)

	account, err := s.accountRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			log.Warn("Login attempt for unknown username", zap.String("username", req.Username))
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if !account.VerifyPassword(req.Password) {
		log.Warn("Login attempt with wrong password", logger.AccountID(account.ID))
		return nil, errInvalidCredentials
	}

	token, err := s.tokens.GenerateAccessToken(auth.TokenInput{
		AccountID:  account.ID,
		CustomerID: account.CustomerID,
		Username:   account.Username,
	})
	if err != nil {
		return nil, err
	}

	log.Info("Customer account logged in", logger.AccountID(account.ID))
	return &LoginResponse{
		AccessToken: token.Token,
		TokenType:   token.TokenType,
		ExpiresAt:   token.ExpiresAt.Unix(),
		Account:     ToCustomerAccountResponse(account),
	}, nil
}
