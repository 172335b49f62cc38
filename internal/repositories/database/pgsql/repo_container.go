package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/finbooks/finbooks_app/internal/core/ports/repositories"
)

// NewRepositoryProvider wires all pgsql repositories against one pool. The
// payment repository composes the document and journal repositories so a
// payment, its invoice update and its journal posting share one transaction.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	journalRepo := newPgxJournalRepository(dbPool, accountRepo)
	documentRepo := newPgxDocumentRepository(dbPool)
	paymentRepo := newPgxPaymentRepository(dbPool, documentRepo, journalRepo)

	return portsrepo.RepositoryProvider{
		AccountRepo:  accountRepo,
		DocumentRepo: documentRepo,
		PaymentRepo:  paymentRepo,
		JournalRepo:  journalRepo,
	}
}
