package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository sobre PostgreSQL (usable con pool o tx).
// Snapshots, totales por categoría y notas origen se guardan como JSONB: se
// congelan a la emisión y jamás se consultan por columnas.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `id, company_id, client_id, series, number, year,
	       issue_date, due_date, period_from, period_to,
	       status, einvoice_status, approved,
	       COALESCE(split_group_id, ''), split_percentage, source_note_ids,
	       company_snapshot, client_snapshot, totals,
	       grand_total, paid_amount, remaining_amount,
	       COALESCE(cancel_reason, ''), created_at, updated_at, COALESCE(created_by, '')`

// Create persiste la factura con sus líneas.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice, items []*entity.InvoiceItem) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	companySnap, err := json.Marshal(inv.CompanySnapshot)
	if err != nil {
		return fmt.Errorf("marshal company snapshot: %w", err)
	}
	clientSnap, err := json.Marshal(inv.ClientSnapshot)
	if err != nil {
		return fmt.Errorf("marshal client snapshot: %w", err)
	}
	totals, err := json.Marshal(inv.Totals)
	if err != nil {
		return fmt.Errorf("marshal totals: %w", err)
	}
	sourceIDs, err := json.Marshal(inv.SourceNoteIDs)
	if err != nil {
		return fmt.Errorf("marshal source note ids: %w", err)
	}
	const qi = `
		INSERT INTO invoices (id, company_id, client_id, series, number, year,
			issue_date, due_date, period_from, period_to,
			status, einvoice_status, approved,
			split_group_id, split_percentage, source_note_ids,
			company_snapshot, client_snapshot, totals,
			grand_total, paid_amount, remaining_amount,
			created_at, updated_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, now(), now(), $23)`
	_, err = r.q.Exec(ctx, qi,
		inv.ID, inv.CompanyID, inv.ClientID,
		inv.Number.Series, inv.Number.Number, inv.Number.Year,
		inv.IssueDate, inv.DueDate, inv.PeriodFrom, inv.PeriodTo,
		inv.Status, inv.EInvoiceStatus, inv.Approved,
		nullIfEmpty(inv.SplitGroupID), inv.SplitPercentage, sourceIDs,
		companySnap, clientSnap, totals,
		inv.GrandTotal, inv.PaidAmount, inv.RemainingAmount,
		nullIfEmpty(inv.CreatedBy),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("número de factura %s-%d/%d ya existe: %w", inv.Number.Series, inv.Number.Number, inv.Number.Year, err)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	const ql = `
		INSERT INTO invoice_items (id, invoice_id, note_line_id, product_id, description, category, quantity, unit_price, vat_rate, subtotal, vat_amount, cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	for _, it := range items {
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.InvoiceID = inv.ID
		_, err := r.q.Exec(ctx, ql,
			it.ID, it.InvoiceID, nullIfEmpty(it.NoteLineID), nullIfEmpty(it.ProductID),
			it.Description, it.Category, it.Quantity, it.UnitPrice, it.VATRate,
			it.Subtotal, it.VATAmount, it.Cost,
		)
		if err != nil {
			return fmt.Errorf("insert invoice item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la factura por ID.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	q := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	inv, err := scanInvoice(r.q.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// GetForUpdate bloquea la fila de la factura para mutar saldos.
func (r *InvoiceRepo) GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	q := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1 FOR UPDATE`
	inv, err := scanInvoice(r.q.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice for update: %w", err)
	}
	return inv, nil
}

// GetItems obtiene las líneas de la factura.
func (r *InvoiceRepo) GetItems(ctx context.Context, invoiceID string) ([]*entity.InvoiceItem, error) {
	const q = `
		SELECT id, invoice_id, COALESCE(note_line_id, ''), COALESCE(product_id, ''), description,
		       category, quantity, unit_price, vat_rate, subtotal, vat_amount, cost
		FROM invoice_items WHERE invoice_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, q, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice items: %w", err)
	}
	defer rows.Close()
	var list []*entity.InvoiceItem
	for rows.Next() {
		var it entity.InvoiceItem
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.NoteLineID, &it.ProductID, &it.Description,
			&it.Category, &it.Quantity, &it.UnitPrice, &it.VATRate,
			&it.Subtotal, &it.VATAmount, &it.Cost); err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// ListBySplitGroup devuelve las facturas hermanas de una división.
func (r *InvoiceRepo) ListBySplitGroup(ctx context.Context, splitGroupID string) ([]*entity.Invoice, error) {
	q := `SELECT ` + invoiceColumns + ` FROM invoices WHERE split_group_id = $1 ORDER BY number`
	return r.list(ctx, q, splitGroupID)
}

// ListOutstandingByClient devuelve facturas con saldo pendiente del cliente,
// la de vencimiento más antiguo primero.
func (r *InvoiceRepo) ListOutstandingByClient(ctx context.Context, clientID string) ([]*entity.Invoice, error) {
	q := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE client_id = $1 AND status NOT IN ('CANCELLED', 'PAID') AND remaining_amount > 0
		ORDER BY due_date, issue_date, number`
	return r.list(ctx, q, clientID)
}

// ListByClient lista facturas del cliente en un rango de fechas de emisión.
func (r *InvoiceRepo) ListByClient(ctx context.Context, clientID string, from, to *time.Time) ([]*entity.Invoice, error) {
	q := `SELECT ` + invoiceColumns + ` FROM invoices WHERE client_id = $1`
	args := []any{clientID}
	pos := 2
	if from != nil {
		q += fmt.Sprintf(" AND issue_date >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		q += fmt.Sprintf(" AND issue_date <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	q += " ORDER BY issue_date, number"
	return r.list(ctx, q, args...)
}

// UpdateStatus cambia estado y motivo de anulación.
func (r *InvoiceRepo) UpdateStatus(ctx context.Context, id, status, cancelReason string) error {
	const q = `
		UPDATE invoices
		SET status = $2, cancel_reason = COALESCE($3, cancel_reason), updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, q, id, status, nullIfEmpty(cancelReason))
	if err != nil {
		return fmt.Errorf("update invoice status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("factura %s no existe", id)
	}
	return nil
}

// UpdateEInvoiceStatus cambia el estado del ciclo de factura electrónica.
func (r *InvoiceRepo) UpdateEInvoiceStatus(ctx context.Context, id, status string) error {
	const q = `UPDATE invoices SET einvoice_status = $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(ctx, q, id, status)
	if err != nil {
		return fmt.Errorf("update einvoice status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("factura %s no existe", id)
	}
	return nil
}

// ApplyPaymentAmounts actualiza saldos y estado de cobro en una sola sentencia.
func (r *InvoiceRepo) ApplyPaymentAmounts(ctx context.Context, id string, paid, remaining decimal.Decimal, status string) error {
	const q = `
		UPDATE invoices
		SET paid_amount = $2, remaining_amount = $3, status = $4, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, q, id, paid, remaining, status)
	if err != nil {
		return fmt.Errorf("apply payment amounts: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("factura %s no existe", id)
	}
	return nil
}

func (r *InvoiceRepo) list(ctx context.Context, q string, args ...any) ([]*entity.Invoice, error) {
	rows, err := r.q.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	var companySnap, clientSnap, totals, sourceIDs []byte
	err := row.Scan(
		&inv.ID, &inv.CompanyID, &inv.ClientID,
		&inv.Number.Series, &inv.Number.Number, &inv.Number.Year,
		&inv.IssueDate, &inv.DueDate, &inv.PeriodFrom, &inv.PeriodTo,
		&inv.Status, &inv.EInvoiceStatus, &inv.Approved,
		&inv.SplitGroupID, &inv.SplitPercentage, &sourceIDs,
		&companySnap, &clientSnap, &totals,
		&inv.GrandTotal, &inv.PaidAmount, &inv.RemainingAmount,
		&inv.CancelReason, &inv.CreatedAt, &inv.UpdatedAt, &inv.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(companySnap, &inv.CompanySnapshot); err != nil {
		return nil, fmt.Errorf("unmarshal company snapshot: %w", err)
	}
	if err := json.Unmarshal(clientSnap, &inv.ClientSnapshot); err != nil {
		return nil, fmt.Errorf("unmarshal client snapshot: %w", err)
	}
	if err := json.Unmarshal(totals, &inv.Totals); err != nil {
		return nil, fmt.Errorf("unmarshal totals: %w", err)
	}
	if len(sourceIDs) > 0 {
		if err := json.Unmarshal(sourceIDs, &inv.SourceNoteIDs); err != nil {
			return nil, fmt.Errorf("unmarshal source note ids: %w", err)
		}
	}
	return &inv, nil
}
