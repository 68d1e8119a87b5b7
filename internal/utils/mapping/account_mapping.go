package mapping

import (
	"github.com/SscSPs/split_ledger/internal/core/domain"
	"github.com/SscSPs/split_ledger/internal/models"
)

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:    domain.AccountID(m.AccountID),
		OwnerID:      domain.UserID(m.OwnerID),
		Name:         m.Name,
		CurrencyCode: m.CurrencyCode,
		IsActive:     m.IsActive,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainPayee converts a model Payee to a domain Payee
func ToDomainPayee(m models.Payee) domain.Payee {
	return domain.Payee{
		PayeeID:     domain.PayeeID(m.PayeeID),
		OwnerID:     domain.UserID(m.OwnerID),
		DisplayName: m.DisplayName,
		UsageCount:  m.UsageCount,
	}
}
