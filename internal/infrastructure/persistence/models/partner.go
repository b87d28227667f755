package models

import (
	"github.com/ecom/backend/internal/domain/partner"
)

// CustomerModel is the persistence model for the Customer domain entity.
// The association fields exist only so AutoMigrate declares cascading
// foreign keys; repositories never load them.
type CustomerModel struct {
	BaseModel
	Name    string                `gorm:"type:varchar(255);not null"`
	Email   string                `gorm:"type:varchar(320);not null"`
	Phone   string                `gorm:"type:varchar(15);not null"`
	Orders  []OrderModel          `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
	Account *CustomerAccountModel `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "Customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		Email:      m.Email,
		Phone:      m.Phone,
	}
}

// FromDomain populates the persistence model from a domain Customer entity.
func (m *CustomerModel) FromDomain(c *partner.Customer) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.Name = c.Name
	m.Email = c.Email
	m.Phone = c.Phone
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer entity.
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}

// CustomerAccountModel is the persistence model for the CustomerAccount domain entity.
type CustomerAccountModel struct {
	BaseModel
	Username     string `gorm:"type:varchar(255);not null;uniqueIndex:idx_customer_accounts_username"`
	PasswordHash string `gorm:"column:password_hash;type:varchar(255);not null"`
	CustomerID   uint   `gorm:"not null;uniqueIndex:idx_customer_accounts_customer"`
}

// TableName returns the table name for GORM
func (CustomerAccountModel) TableName() string {
	return "Customer_Accounts"
}

// ToDomain converts the persistence model to a domain CustomerAccount entity.
func (m *CustomerAccountModel) ToDomain() *partner.CustomerAccount {
	return &partner.CustomerAccount{
		BaseEntity:   m.BaseModel.ToDomain(),
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		CustomerID:   m.CustomerID,
	}
}

// FromDomain populates the persistence model from a domain CustomerAccount entity.
func (m *CustomerAccountModel) FromDomain(a *partner.CustomerAccount) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Username = a.Username
	m.PasswordHash = a.PasswordHash
	m.CustomerID = a.CustomerID
}

// CustomerAccountModelFromDomain creates a new persistence model from a domain CustomerAccount entity.
func CustomerAccountModelFromDomain(a *partner.CustomerAccount) *CustomerAccountModel {
	m := &CustomerAccountModel{}
	m.FromDomain(a)
	return m
}
