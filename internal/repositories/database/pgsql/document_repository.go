package pgsql

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finbooks/finbooks_app/internal/apperrors"
	"github.com/finbooks/finbooks_app/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_app/internal/core/ports/repositories"
	"github.com/finbooks/finbooks_app/internal/utils/pagination"
)

type PgxDocumentRepository struct {
	BaseRepository
}

// newPgxDocumentRepository creates a new repository for quotes, invoices and
// sales orders.
func newPgxDocumentRepository(pool *pgxpool.Pool) portsrepo.DocumentRepositoryWithTx {
	return &PgxDocumentRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.DocumentRepositoryWithTx = (*PgxDocumentRepository)(nil)

// headerColumns are the monetary header fields shared by all three document
// tables, always selected and scanned in this order.
const headerColumns = `document_id, number, customer_id, issue_date, subtotal_cents, tax_rate, tax_cents, discount_cents, shipping_cents, total_cents, notes, created_at, created_by, last_updated_at, last_updated_by`

// scanHeaderFields lists destination pointers for headerColumns; cents
// columns are scanned into the int64 targets and converted by the caller.
func scanHeaderFields(h *domain.DocumentHeader, subtotal, tax, discount, shipping, total *int64) []interface{} {
	return []interface{}{
		&h.DocumentID,
		&h.Number,
		&h.CustomerID,
		&h.IssueDate,
		subtotal,
		&h.TaxRate,
		tax,
		discount,
		shipping,
		total,
		&h.Notes,
		&h.CreatedAt,
		&h.CreatedBy,
		&h.LastUpdatedAt,
		&h.LastUpdatedBy,
	}
}

func applyHeaderCents(h *domain.DocumentHeader, subtotal, tax, discount, shipping, total int64) {
	h.Subtotal = domain.MoneyFromCents(subtotal)
	h.TaxAmount = domain.MoneyFromCents(tax)
	h.DiscountAmount = domain.MoneyFromCents(discount)
	h.ShippingAmount = domain.MoneyFromCents(shipping)
	h.Total = domain.MoneyFromCents(total)
}

func headerArgs(h domain.DocumentHeader) []interface{} {
	return []interface{}{
		h.DocumentID,
		h.Number,
		h.CustomerID,
		h.IssueDate,
		h.Subtotal.Cents(),
		h.TaxRate,
		h.TaxAmount.Cents(),
		h.DiscountAmount.Cents(),
		h.ShippingAmount.Cents(),
		h.Total.Cents(),
		h.Notes,
		h.CreatedAt,
		h.CreatedBy,
		h.LastUpdatedAt,
		h.LastUpdatedBy,
	}
}

// insertLineItemsInTx batch-inserts a document's lines.
func insertLineItemsInTx(ctx context.Context, tx pgx.Tx, documentID string, lines []domain.LineItem) error {
	query := `
		INSERT INTO line_items (line_item_id, document_id, description, quantity, unit_price, discount_percent, tax_rate, line_total_cents, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	batch := &pgx.Batch{}
	for _, line := range lines {
		batch.Queue(query,
			line.LineItemID,
			documentID,
			line.Description,
			line.Quantity,
			line.UnitPrice,
			line.DiscountPercent,
			line.TaxRate,
			line.LineTotal.Cents(),
			line.SortOrder,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert line items for document "+documentID, err)
	}
	return nil
}

// findLineItems loads a document's lines in sort order.
func (r *PgxDocumentRepository) findLineItems(ctx context.Context, documentID string) ([]domain.LineItem, error) {
	query := `
		SELECT line_item_id, document_id, description, quantity, unit_price, discount_percent, tax_rate, line_total_cents, sort_order
		FROM line_items
		WHERE document_id = $1
		ORDER BY sort_order;
	`
	rows, err := r.Pool.Query(ctx, query, documentID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query line items for document "+documentID, err)
	}
	defer rows.Close()

	lines := []domain.LineItem{}
	for rows.Next() {
		var line domain.LineItem
		var totalCents int64
		var quantity, unitPrice, discountPercent, taxRate decimal.Decimal
		if err := rows.Scan(
			&line.LineItemID,
			&line.DocumentID,
			&line.Description,
			&quantity,
			&unitPrice,
			&discountPercent,
			&taxRate,
			&totalCents,
			&line.SortOrder,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan line item row for document "+documentID, err)
		}
		line.Quantity = quantity
		line.UnitPrice = unitPrice
		line.DiscountPercent = discountPercent
		line.TaxRate = taxRate
		line.LineTotal = domain.MoneyFromCents(totalCents)
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating line item rows for document "+documentID, err)
	}
	return lines, nil
}

// --- Quotes ---

// SaveQuote persists a quote and its lines, assigning the QT number inside
// the insert transaction.
func (r *PgxDocumentRepository) SaveQuote(ctx context.Context, quote domain.Quote) (*domain.Quote, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	number, err := nextDocumentNumberInTx(ctx, tx, domain.FamilyQuote)
	if err != nil {
		return nil, err
	}
	quote.Number = number

	query := `
		INSERT INTO quotes (` + headerColumns + `, status, expiry_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	args := append(headerArgs(quote.DocumentHeader), quote.Status, quote.ExpiryDate)
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return nil, apperrors.NewAppError(500, "failed to insert quote "+quote.DocumentID, err)
	}
	if err := insertLineItemsInTx(ctx, tx, quote.DocumentID, quote.Lines); err != nil {
		return nil, err
	}
	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &quote, nil
}

// FindQuoteByID retrieves a quote with its lines.
func (r *PgxDocumentRepository) FindQuoteByID(ctx context.Context, documentID string) (*domain.Quote, error) {
	query := `SELECT ` + headerColumns + `, status, expiry_date FROM quotes WHERE document_id = $1;`
	var quote domain.Quote
	var subtotal, tax, discount, shipping, total int64
	dest := append(scanHeaderFields(&quote.DocumentHeader, &subtotal, &tax, &discount, &shipping, &total), &quote.Status, &quote.ExpiryDate)
	if err := r.Pool.QueryRow(ctx, query, documentID).Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find quote "+documentID, err)
	}
	applyHeaderCents(&quote.DocumentHeader, subtotal, tax, discount, shipping, total)

	lines, err := r.findLineItems(ctx, documentID)
	if err != nil {
		return nil, err
	}
	quote.Lines = lines
	return &quote, nil
}

// ListQuotes retrieves a token-paginated page of quote headers, newest first.
func (r *PgxDocumentRepository) ListQuotes(ctx context.Context, limit int, nextToken *string) ([]domain.Quote, *string, error) {
	rows, fetchLimit, err := r.listDocuments(ctx, `quotes`, `, status, expiry_date`, limit, nextToken)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	quotes := make([]domain.Quote, 0, fetchLimit)
	for rows.Next() {
		var quote domain.Quote
		var subtotal, tax, discount, shipping, total int64
		dest := append(scanHeaderFields(&quote.DocumentHeader, &subtotal, &tax, &discount, &shipping, &total), &quote.Status, &quote.ExpiryDate)
		if err := rows.Scan(dest...); err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan quote row", err)
		}
		applyHeaderCents(&quote.DocumentHeader, subtotal, tax, discount, shipping, total)
		quotes = append(quotes, quote)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating quote rows", err)
	}

	var nextTokenVal *string
	if len(quotes) > fetchLimit-1 {
		last := quotes[fetchLimit-2]
		token := pagination.EncodeToken(last.IssueDate, last.CreatedAt)
		nextTokenVal = &token
		quotes = quotes[:fetchLimit-1]
	}
	return quotes, nextTokenVal, nil
}

// UpdateQuoteStatus sets a quote's lifecycle status.
func (r *PgxDocumentRepository) UpdateQuoteStatus(ctx context.Context, documentID string, status domain.QuoteStatus, userID string, now time.Time) error {
	return r.updateStatus(ctx, `quotes`, documentID, string(status), userID, now)
}

// --- Invoices ---

const invoiceExtraColumns = `, status, due_date, amount_paid_cents, amount_due_cents`

// SaveInvoice persists an invoice and its lines, assigning the INV number
// inside the insert transaction.
func (r *PgxDocumentRepository) SaveInvoice(ctx context.Context, invoice domain.Invoice) (*domain.Invoice, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	number, err := nextDocumentNumberInTx(ctx, tx, domain.FamilyInvoice)
	if err != nil {
		return nil, err
	}
	invoice.Number = number

	query := `
		INSERT INTO invoices (` + headerColumns + invoiceExtraColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19);
	`
	args := append(headerArgs(invoice.DocumentHeader), invoice.Status, invoice.DueDate, invoice.AmountPaid.Cents(), invoice.AmountDue.Cents())
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return nil, apperrors.NewAppError(500, "failed to insert invoice "+invoice.DocumentID, err)
	}
	if err := insertLineItemsInTx(ctx, tx, invoice.DocumentID, invoice.Lines); err != nil {
		return nil, err
	}
	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &invoice, nil
}

func scanInvoice(row pgx.Row) (domain.Invoice, error) {
	var invoice domain.Invoice
	var subtotal, tax, discount, shipping, total, paid, due int64
	dest := append(
		scanHeaderFields(&invoice.DocumentHeader, &subtotal, &tax, &discount, &shipping, &total),
		&invoice.Status, &invoice.DueDate, &paid, &due,
	)
	if err := row.Scan(dest...); err != nil {
		return domain.Invoice{}, err
	}
	applyHeaderCents(&invoice.DocumentHeader, subtotal, tax, discount, shipping, total)
	invoice.AmountPaid = domain.MoneyFromCents(paid)
	invoice.AmountDue = domain.MoneyFromCents(due)
	return invoice, nil
}

// FindInvoiceByID retrieves an invoice with its lines.
func (r *PgxDocumentRepository) FindInvoiceByID(ctx context.Context, documentID string) (*domain.Invoice, error) {
	query := `SELECT ` + headerColumns + invoiceExtraColumns + ` FROM invoices WHERE document_id = $1;`
	invoice, err := scanInvoice(r.Pool.QueryRow(ctx, query, documentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find invoice "+documentID, err)
	}

	lines, err := r.findLineItems(ctx, documentID)
	if err != nil {
		return nil, err
	}
	invoice.Lines = lines
	return &invoice, nil
}

// ListInvoices retrieves a token-paginated page of invoice headers, newest
// first.
func (r *PgxDocumentRepository) ListInvoices(ctx context.Context, limit int, nextToken *string) ([]domain.Invoice, *string, error) {
	rows, fetchLimit, err := r.listDocuments(ctx, `invoices`, invoiceExtraColumns, limit, nextToken)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	invoices := make([]domain.Invoice, 0, fetchLimit)
	for rows.Next() {
		invoice, scanErr := scanInvoice(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan invoice row", scanErr)
		}
		invoices = append(invoices, invoice)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating invoice rows", err)
	}

	var nextTokenVal *string
	if len(invoices) > fetchLimit-1 {
		last := invoices[fetchLimit-2]
		token := pagination.EncodeToken(last.IssueDate, last.CreatedAt)
		nextTokenVal = &token
		invoices = invoices[:fetchLimit-1]
	}
	return invoices, nextTokenVal, nil
}

// ReplaceInvoiceLines atomically replaces an invoice's lines and header
// totals with the recomputed values.
func (r *PgxDocumentRepository) ReplaceInvoiceLines(ctx context.Context, invoice domain.Invoice) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	updateQuery := `
		UPDATE invoices
		SET subtotal_cents = $2, tax_cents = $3, discount_cents = $4, total_cents = $5,
		    amount_due_cents = $6, last_updated_at = $7, last_updated_by = $8
		WHERE document_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, updateQuery,
		invoice.DocumentID,
		invoice.Subtotal.Cents(),
		invoice.TaxAmount.Cents(),
		invoice.DiscountAmount.Cents(),
		invoice.Total.Cents(),
		invoice.AmountDue.Cents(),
		invoice.LastUpdatedAt,
		invoice.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update invoice totals "+invoice.DocumentID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM line_items WHERE document_id = $1;`, invoice.DocumentID); err != nil {
		return apperrors.NewAppError(500, "failed to delete old line items for invoice "+invoice.DocumentID, err)
	}
	if err := insertLineItemsInTx(ctx, tx, invoice.DocumentID, invoice.Lines); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// UpdateInvoiceStatus sets an invoice's status.
func (r *PgxDocumentRepository) UpdateInvoiceStatus(ctx context.Context, documentID string, status domain.InvoiceStatus, userID string, now time.Time) error {
	return r.updateStatus(ctx, `invoices`, documentID, string(status), userID, now)
}

// FindInvoiceByIDForUpdate retrieves and locks an invoice header (without
// lines) within the given transaction.
func (r *PgxDocumentRepository) FindInvoiceByIDForUpdate(ctx context.Context, tx pgx.Tx, documentID string) (*domain.Invoice, error) {
	query := `SELECT ` + headerColumns + invoiceExtraColumns + ` FROM invoices WHERE document_id = $1 FOR UPDATE;`
	invoice, err := scanInvoice(tx.QueryRow(ctx, query, documentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to lock invoice "+documentID, err)
	}
	return &invoice, nil
}

// ApplyInvoicePaymentInTx updates an invoice's paid/due amounts and status
// within the given transaction.
func (r *PgxDocumentRepository) ApplyInvoicePaymentInTx(ctx context.Context, tx pgx.Tx, invoice domain.Invoice) error {
	query := `
		UPDATE invoices
		SET amount_paid_cents = $2, amount_due_cents = $3, status = $4, last_updated_at = $5, last_updated_by = $6
		WHERE document_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query,
		invoice.DocumentID,
		invoice.AmountPaid.Cents(),
		invoice.AmountDue.Cents(),
		invoice.Status,
		invoice.LastUpdatedAt,
		invoice.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to apply payment to invoice "+invoice.DocumentID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// --- Sales orders ---

// SaveSalesOrder persists a sales order and its lines, assigning the SO
// number inside the insert transaction.
func (r *PgxDocumentRepository) SaveSalesOrder(ctx context.Context, order domain.SalesOrder) (*domain.SalesOrder, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	number, err := nextDocumentNumberInTx(ctx, tx, domain.FamilySalesOrder)
	if err != nil {
		return nil, err
	}
	order.Number = number

	query := `
		INSERT INTO sales_orders (` + headerColumns + `, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	args := append(headerArgs(order.DocumentHeader), order.Status)
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return nil, apperrors.NewAppError(500, "failed to insert sales order "+order.DocumentID, err)
	}
	if err := insertLineItemsInTx(ctx, tx, order.DocumentID, order.Lines); err != nil {
		return nil, err
	}
	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &order, nil
}

// FindSalesOrderByID retrieves a sales order with its lines.
func (r *PgxDocumentRepository) FindSalesOrderByID(ctx context.Context, documentID string) (*domain.SalesOrder, error) {
	query := `SELECT ` + headerColumns + `, status FROM sales_orders WHERE document_id = $1;`
	var order domain.SalesOrder
	var subtotal, tax, discount, shipping, total int64
	dest := append(scanHeaderFields(&order.DocumentHeader, &subtotal, &tax, &discount, &shipping, &total), &order.Status)
	if err := r.Pool.QueryRow(ctx, query, documentID).Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find sales order "+documentID, err)
	}
	applyHeaderCents(&order.DocumentHeader, subtotal, tax, discount, shipping, total)

	lines, err := r.findLineItems(ctx, documentID)
	if err != nil {
		return nil, err
	}
	order.Lines = lines
	return &order, nil
}

// ListSalesOrders retrieves a token-paginated page of sales order headers,
// newest first.
func (r *PgxDocumentRepository) ListSalesOrders(ctx context.Context, limit int, nextToken *string) ([]domain.SalesOrder, *string, error) {
	rows, fetchLimit, err := r.listDocuments(ctx, `sales_orders`, `, status`, limit, nextToken)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	orders := make([]domain.SalesOrder, 0, fetchLimit)
	for rows.Next() {
		var order domain.SalesOrder
		var subtotal, tax, discount, shipping, total int64
		dest := append(scanHeaderFields(&order.DocumentHeader, &subtotal, &tax, &discount, &shipping, &total), &order.Status)
		if err := rows.Scan(dest...); err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan sales order row", err)
		}
		applyHeaderCents(&order.DocumentHeader, subtotal, tax, discount, shipping, total)
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating sales order rows", err)
	}

	var nextTokenVal *string
	if len(orders) > fetchLimit-1 {
		last := orders[fetchLimit-2]
		token := pagination.EncodeToken(last.IssueDate, last.CreatedAt)
		nextTokenVal = &token
		orders = orders[:fetchLimit-1]
	}
	return orders, nextTokenVal, nil
}

// UpdateSalesOrderStatus sets a sales order's lifecycle status.
func (r *PgxDocumentRepository) UpdateSalesOrderStatus(ctx context.Context, documentID string, status domain.SalesOrderStatus, userID string, now time.Time) error {
	return r.updateStatus(ctx, `sales_orders`, documentID, string(status), userID, now)
}

// --- Shared helpers ---

// listDocuments runs the shared token-paginated header query for one of the
// three document tables. The returned fetchLimit is limit+1; callers trim.
func (r *PgxDocumentRepository) listDocuments(ctx context.Context, table string, extraColumns string, limit int, nextToken *string) (pgx.Rows, int, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + headerColumns + extraColumns + ` FROM ` + table
	orderByClause := `ORDER BY issue_date DESC, created_at DESC`

	args := []interface{}{}
	query := baseQuery
	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, 0, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		query += ` WHERE (issue_date, created_at) < ($1, $2)`
		args = append(args, lastDate, lastCreatedAt)
	}
	query += " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, apperrors.NewAppError(500, "failed to query "+table, err)
	}
	return rows, fetchLimit, nil
}

// updateStatus updates the status column on one of the document tables.
func (r *PgxDocumentRepository) updateStatus(ctx context.Context, table string, documentID string, status string, userID string, now time.Time) error {
	query := `UPDATE ` + table + ` SET status = $2, last_updated_at = $3, last_updated_by = $4 WHERE document_id = $1;`
	cmdTag, err := r.Pool.Exec(ctx, query, documentID, status, now, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update status on "+table+" "+documentID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
