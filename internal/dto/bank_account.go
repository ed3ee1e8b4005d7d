package dto

import (
	"time"

	"github.com/hishab-app/hishab_backend/internal/core/domain"
)

// CreateBankAccountRequest defines the data needed to register a bank account.
type CreateBankAccountRequest struct {
	Name          string `json:"name" binding:"required"`
	AccountNumber string `json:"accountNumber" binding:"required"`
	BankName      string `json:"bankName" binding:"required"`
	CurrencyCode  string `json:"currencyCode" binding:"required,uppercase,len=3"`
}

// BankAccountResponse defines the data returned for a bank account.
type BankAccountResponse struct {
	BankAccountID string    `json:"bankAccountID"`
	Name          string    `json:"name"`
	AccountNumber string    `json:"accountNumber"`
	BankName      string    `json:"bankName"`
	CurrencyCode  string    `json:"currencyCode"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// ToBankAccountResponse converts a domain.BankAccount to BankAccountResponse DTO
func ToBankAccountResponse(ba *domain.BankAccount) BankAccountResponse {
	return BankAccountResponse{
		BankAccountID: ba.BankAccountID,
		Name:          ba.Name,
		AccountNumber: ba.AccountNumber,
		BankName:      ba.BankName,
		CurrencyCode:  ba.CurrencyCode,
		IsActive:      ba.IsActive,
		CreatedAt:     ba.CreatedAt,
		CreatedBy:     ba.CreatedBy,
		LastUpdatedAt: ba.LastUpdatedAt,
		LastUpdatedBy: ba.LastUpdatedBy,
	}
}

// ToListBankAccountResponse converts a slice of domain.BankAccount to a slice of BankAccountResponse DTOs
func ToListBankAccountResponse(bas []domain.BankAccount) []BankAccountResponse {
	res := make([]BankAccountResponse, len(bas))
	for i, ba := range bas {
		res[i] = ToBankAccountResponse(&ba)
	}
	return res
}

// ListBankAccountsParams defines query parameters for listing bank accounts.
type ListBankAccountsParams struct {
	Limit  int `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
	Offset int `form:"offset,default=0" binding:"omitempty,min=0"`
}

// ListBankAccountsResponse wraps the list of bank accounts.
type ListBankAccountsResponse struct {
	BankAccounts []BankAccountResponse `json:"bankAccounts"`
}
