package services

import (
	portsrepo "github.com/SscSPs/split_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/split_ledger/internal/core/ports/services"
	"github.com/SscSPs/split_ledger/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Transaction: NewTransactionService(
			repos.UnitOfWork,
			WithPageSizes(cfg.DefaultPageSize, cfg.MaxPageSize),
		),
	}
}
