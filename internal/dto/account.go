package dto

import (
	"github.com/finbooks/finbooks_app/internal/core/domain"
)

// CreateAccountRequest defines the payload for creating a chart-of-accounts
// entry. AccountType is immutable after creation.
type CreateAccountRequest struct {
	Code            string `json:"code" binding:"required"`
	Name            string `json:"name" binding:"required"`
	AccountType     string `json:"accountType" binding:"required,accounttype"`
	ParentAccountID string `json:"parentAccountID"`
	Description     string `json:"description"`
}

// UpdateAccountRequest defines updatable account fields. The account type is
// deliberately absent.
type UpdateAccountRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID       string `json:"accountID"`
	Code            string `json:"code"`
	Name            string `json:"name"`
	AccountType     string `json:"accountType"`
	ParentAccountID string `json:"parentAccountID,omitempty"`
	Description     string `json:"description,omitempty"`
	IsActive        bool   `json:"isActive"`
	Balance         string `json:"balance"`
}

// ListAccountsResponse wraps a page of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// ToAccountResponse converts a domain.Account to its response DTO.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:       a.AccountID,
		Code:            a.Code,
		Name:            a.Name,
		AccountType:     string(a.AccountType),
		ParentAccountID: a.ParentAccountID,
		Description:     a.Description,
		IsActive:        a.IsActive,
		Balance:         a.Balance.String(),
	}
}

// ToAccountResponses converts a slice of domain accounts.
func ToAccountResponses(accounts []domain.Account) []AccountResponse {
	responses := make([]AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = ToAccountResponse(&accounts[i])
	}
	return responses
}
