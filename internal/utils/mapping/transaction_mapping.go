package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/SscSPs/split_ledger/internal/core/domain"
	"github.com/SscSPs/split_ledger/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction,
// splits included in their stored order.
func ToModelTransaction(tx *domain.Transaction) models.Transaction {
	st := tx.State()
	m := models.Transaction{
		TransactionID:       string(st.ID),
		OwnerID:             string(st.OwnerID),
		AccountID:           string(st.AccountID),
		EffectiveDate:       st.EffectiveDate,
		PostedDate:          st.PostedDate,
		Amount:              st.Amount.Amount(),
		CurrencyCode:        st.Amount.Currency(),
		Status:              string(st.Status),
		Source:              string(st.Source),
		PayeeID:             convertID[domain.PayeeID, string](st.PayeeID),
		PayeeName:           st.PayeeName,
		Memo:                st.Memo,
		CheckNumber:         st.CheckNumber,
		IsMirror:            st.IsMirror,
		SourceTransactionID: convertID[domain.TransactionID, string](st.SourceTransactionID),
		SourceSplitID:       convertID[domain.SplitID, string](st.SourceSplitID),
		AuditFields: ToModelAuditFields(domain.AuditFields{
			CreatedAt: st.CreatedAt,
			UpdatedAt: st.UpdatedAt,
			Version:   st.Version,
		}),
		Splits: make([]models.Split, len(st.Splits)),
	}
	for i, s := range st.Splits {
		m.Splits[i] = models.Split{
			SplitID:           string(s.ID),
			TransactionID:     string(st.ID),
			Position:          i,
			Amount:            s.Amount.Amount(),
			CategoryID:        convertID[domain.CategoryID, string](s.CategoryID),
			TransferAccountID: convertID[domain.AccountID, string](s.TransferAccountID),
			Memo:              s.Memo,
		}
	}
	return m
}

// ToDomainTransaction rebuilds a domain Transaction from its stored row. The
// model's splits must already be ordered by position.
func ToDomainTransaction(m models.Transaction) (*domain.Transaction, error) {
	amount, err := domain.NewMoney(m.Amount, m.CurrencyCode)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", m.TransactionID, err)
	}
	status, err := domain.ParseTransactionStatus(m.Status)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", m.TransactionID, err)
	}
	source, err := domain.ParseTransactionSource(m.Source)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", m.TransactionID, err)
	}

	splits := make([]domain.SplitLineState, len(m.Splits))
	for i, s := range m.Splits {
		splitAmount, err := domain.NewMoney(s.Amount, m.CurrencyCode)
		if err != nil {
			return nil, fmt.Errorf("split %s: %w", s.SplitID, err)
		}
		splits[i] = domain.SplitLineState{
			ID:                domain.SplitID(s.SplitID),
			Amount:            splitAmount,
			CategoryID:        convertID[string, domain.CategoryID](s.CategoryID),
			TransferAccountID: convertID[string, domain.AccountID](s.TransferAccountID),
			Memo:              s.Memo,
		}
	}

	return domain.Rehydrate(domain.TransactionState{
		ID:                  domain.TransactionID(m.TransactionID),
		OwnerID:             domain.UserID(m.OwnerID),
		AccountID:           domain.AccountID(m.AccountID),
		EffectiveDate:       m.EffectiveDate,
		PostedDate:          m.PostedDate,
		Amount:              amount,
		Status:              status,
		Source:              source,
		Splits:              splits,
		PayeeID:             convertID[string, domain.PayeeID](m.PayeeID),
		PayeeName:           m.PayeeName,
		Memo:                m.Memo,
		CheckNumber:         m.CheckNumber,
		IsMirror:            m.IsMirror,
		SourceTransactionID: convertID[string, domain.TransactionID](m.SourceTransactionID),
		SourceSplitID:       convertID[string, domain.SplitID](m.SourceSplitID),
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
		Version:             m.Version,
	})
}

// ToDomainTransactionSlice converts a slice of model Transactions to domain Transactions
func ToDomainTransactionSlice(ms []models.Transaction) ([]*domain.Transaction, error) {
	ds := make([]*domain.Transaction, len(ms))
	for i, m := range ms {
		d, err := ToDomainTransaction(m)
		if err != nil {
			return nil, err
		}
		ds[i] = d
	}
	return ds, nil
}

// ToModelDomainEvent serializes a domain fact into an outbox row.
func ToModelDomainEvent(e domain.Event) (models.DomainEvent, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return models.DomainEvent{}, fmt.Errorf("failed to encode %s event: %w", e.EventType(), err)
	}
	return models.DomainEvent{
		EventID:       uuid.NewString(),
		AggregateID:   e.AggregateID(),
		AggregateType: e.AggregateType(),
		EventType:     e.EventType(),
		Payload:       payload,
		OccurredAt:    e.OccurredAt(),
	}, nil
}

func convertID[From, To ~string](p *From) *To {
	if p == nil {
		return nil
	}
	v := To(*p)
	return &v
}
