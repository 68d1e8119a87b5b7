package models

// Account is a row of the accounts table.
type Account struct {
	AccountID    string `db:"account_id"`
	OwnerID      string `db:"owner_id"`
	Name         string `db:"name"`
	CurrencyCode string `db:"currency_code"`
	IsActive     bool   `db:"is_active"`
	AuditFields
}

// Payee is a row of the payees table.
type Payee struct {
	PayeeID     string `db:"payee_id"`
	OwnerID     string `db:"owner_id"`
	DisplayName string `db:"display_name"`
	UsageCount  int64  `db:"usage_count"`
}
