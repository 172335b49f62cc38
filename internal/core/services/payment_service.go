package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finbooks/finbooks_app/internal/apperrors"
	"github.com/finbooks/finbooks_app/internal/core/accounting"
	"github.com/finbooks/finbooks_app/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_app/internal/core/ports/repositories"
	portssvc "github.com/finbooks/finbooks_app/internal/core/ports/services"
	"github.com/finbooks/finbooks_app/internal/dto"
	"github.com/finbooks/finbooks_app/internal/middleware"
)

var (
	ErrInvoiceNotPayable = errors.New("invoice cannot accept payments in its current status")
	ErrPartialGLAccounts = errors.New("deposit and receivable accounts must be supplied together")
)

var validPaymentMethods = map[domain.PaymentMethod]struct{}{
	domain.MethodCash:     {},
	domain.MethodCard:     {},
	domain.MethodTransfer: {},
	domain.MethodCheque:   {},
	domain.MethodOther:    {},
}

// paymentService records customer payments, keeping invoice balances and the
// general ledger in step within one unit of work.
type paymentService struct {
	paymentRepo  portsrepo.PaymentRepositoryFacade
	documentRepo portsrepo.DocumentRepositoryFacade
	accountRepo  portsrepo.AccountRepositoryFacade
}

// NewPaymentService creates a new payment service.
func NewPaymentService(paymentRepo portsrepo.PaymentRepositoryFacade, documentRepo portsrepo.DocumentRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade) portssvc.PaymentSvcFacade {
	return &paymentService{
		paymentRepo:  paymentRepo,
		documentRepo: documentRepo,
		accountRepo:  accountRepo,
	}
}

var _ portssvc.PaymentSvcFacade = (*paymentService)(nil)

func (s *paymentService) RecordPayment(ctx context.Context, req dto.RecordPaymentRequest, creatorUserID string) (*domain.Payment, *domain.Invoice, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, fmt.Errorf("%w: payment amount must be positive", apperrors.ErrValidation)
	}
	method := domain.PaymentMethod(req.Method)
	if _, ok := validPaymentMethods[method]; !ok {
		return nil, nil, fmt.Errorf("%w: unknown payment method %s", apperrors.ErrValidation, req.Method)
	}
	if (req.DepositAccountID == nil) != (req.ReceivableAccountID == nil) {
		return nil, nil, fmt.Errorf("%w", ErrPartialGLAccounts)
	}

	amount := domain.NewMoneyFromDecimal(req.Amount)
	now := time.Now().UTC()

	var invoice *domain.Invoice
	if req.InvoiceID != nil {
		inv, err := s.documentRepo.FindInvoiceByID(ctx, *req.InvoiceID)
		if err != nil {
			if !errors.Is(err, apperrors.ErrNotFound) {
				logger.Error("Failed to fetch invoice for payment", slog.String("error", err.Error()), slog.String("document_id", *req.InvoiceID))
			}
			return nil, nil, err
		}
		if !accounting.InvoicePayable(inv.Status) {
			return nil, nil, fmt.Errorf("%w: status is %s", ErrInvoiceNotPayable, inv.Status)
		}
		invoice = inv
	}

	payment := domain.Payment{
		PaymentID: uuid.NewString(),
		InvoiceID: req.InvoiceID,
		Amount:    amount,
		Date:      req.Date,
		Method:    method,
		Reference: req.Reference,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	var entry *domain.JournalEntry
	if req.DepositAccountID != nil {
		built, err := s.buildPaymentEntry(ctx, payment, *req.DepositAccountID, *req.ReceivableAccountID, creatorUserID, now)
		if err != nil {
			return nil, nil, err
		}
		entry = built
	}

	savedPayment, updatedInvoice, err := s.paymentRepo.SavePayment(ctx, payment, invoice, entry)
	if err != nil {
		logger.Error("Failed to save payment", slog.String("error", err.Error()), slog.String("payment_id", payment.PaymentID))
		return nil, nil, fmt.Errorf("failed to save payment: %w", err)
	}

	logger.Info("Payment recorded",
		slog.String("payment_id", savedPayment.PaymentID),
		slog.String("number", savedPayment.Number),
		slog.String("amount", savedPayment.Amount.String()),
		slog.Bool("applied_to_invoice", updatedInvoice != nil),
		slog.Bool("posted_to_ledger", entry != nil))
	return savedPayment, updatedInvoice, nil
}

// buildPaymentEntry assembles the two-line journal entry for a received
// payment: debit the deposit account, credit the receivable account.
func (s *paymentService) buildPaymentEntry(ctx context.Context, payment domain.Payment, depositAccountID, receivableAccountID, creatorUserID string, now time.Time) (*domain.JournalEntry, error) {
	if depositAccountID == receivableAccountID {
		return nil, fmt.Errorf("%w: deposit and receivable accounts must differ", apperrors.ErrValidation)
	}

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, []string{depositAccountID, receivableAccountID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts for payment posting: %w", err)
	}
	for _, id := range []string{depositAccountID, receivableAccountID} {
		acc, found := accounts[id]
		if !found {
			return nil, fmt.Errorf("%w: ID %s", ErrAccountNotFound, id)
		}
		if !acc.IsActive {
			return nil, fmt.Errorf("%w: ID %s", ErrAccountInactive, id)
		}
	}

	entryID := uuid.NewString()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     creatorUserID,
		LastUpdatedAt: now,
		LastUpdatedBy: creatorUserID,
	}
	entry := &domain.JournalEntry{
		EntryID:     entryID,
		EntryDate:   payment.Date,
		Description: fmt.Sprintf("Payment received (%s)", payment.Method),
		Status:      domain.JournalPosted,
		Amount:      payment.Amount,
		AuditFields: audit,
		Lines: []domain.JournalLine{
			{
				LineID:    uuid.NewString(),
				EntryID:   entryID,
				AccountID: depositAccountID,
				Debit:     payment.Amount,
				Credit:    domain.ZeroMoney,
				SortOrder: 1,
			},
			{
				LineID:    uuid.NewString(),
				EntryID:   entryID,
				AccountID: receivableAccountID,
				Debit:     domain.ZeroMoney,
				Credit:    payment.Amount,
				SortOrder: 2,
			},
		},
	}
	if err := accounting.ValidateBalanced(entry.Lines); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}
	return entry, nil
}

func (s *paymentService) GetPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	payment, err := s.paymentRepo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find payment by ID", slog.String("error", err.Error()), slog.String("payment_id", paymentID))
		}
		return nil, err
	}
	return payment, nil
}

func (s *paymentService) ListPayments(ctx context.Context, params dto.ListParams) ([]domain.Payment, *string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	payments, nextToken, err := s.paymentRepo.ListPayments(ctx, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list payments", slog.String("error", err.Error()))
		return nil, nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nextToken, nil
}
