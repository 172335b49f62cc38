package services

import (
	portsrepo "github.com/finbooks/finbooks_app/internal/core/ports/repositories"
	portssvc "github.com/finbooks/finbooks_app/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Account = NewAccountService(repos.AccountRepo)
	container.Document = NewDocumentService(repos.DocumentRepo)
	container.Journal = NewJournalService(repos.JournalRepo, repos.AccountRepo)
	container.Payment = NewPaymentService(repos.PaymentRepo, repos.DocumentRepo, repos.AccountRepo)

	return container
}

// Compile-time checks that each implementation satisfies its facade.
var (
	_ portssvc.AccountSvcFacade  = (*accountService)(nil)
	_ portssvc.DocumentSvcFacade = (*documentService)(nil)
	_ portssvc.PaymentSvcFacade  = (*paymentService)(nil)
	_ portssvc.JournalSvcFacade  = (*journalService)(nil)
)
