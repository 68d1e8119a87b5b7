package domain

// Account is the slice of an account record the ledger core needs: who owns it,
// which currency it is kept in and whether it still accepts transactions.
type Account struct {
	AccountID    AccountID `json:"accountID"`
	OwnerID      UserID    `json:"ownerID"`
	Name         string    `json:"name"`
	CurrencyCode string    `json:"currencyCode"`
	IsActive     bool      `json:"isActive"`
	AuditFields
}

// OwnedBy reports whether the account belongs to owner.
func (a Account) OwnedBy(owner UserID) bool {
	return a.OwnerID == owner
}

// Payee is a counterparty resolved by name per owner.
type Payee struct {
	PayeeID     PayeeID `json:"payeeID"`
	OwnerID     UserID  `json:"ownerID"`
	DisplayName string  `json:"displayName"`
	UsageCount  int64   `json:"usageCount"`
}
