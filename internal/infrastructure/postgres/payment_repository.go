package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

// PaymentRepo implementación de PaymentRepository sobre PostgreSQL (usable con pool o tx).
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

const paymentColumns = `id, company_id, client_id, amount, allocated_amount, unallocated_amount,
	       date, status, COALESCE(reference, ''), created_at, updated_at, COALESCE(created_by, '')`

// Create persiste el pago.
func (r *PaymentRepo) Create(ctx context.Context, p *entity.Payment) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	const q = `
		INSERT INTO payments (id, company_id, client_id, amount, allocated_amount, unallocated_amount, date, status, reference, created_at, updated_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now(), $10)`
	_, err := r.q.Exec(ctx, q,
		p.ID, p.CompanyID, p.ClientID, p.Amount, p.AllocatedAmount, p.UnallocatedAmount,
		p.Date, p.Status, nullIfEmpty(p.Reference), nullIfEmpty(p.CreatedBy),
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetByID obtiene el pago por ID.
func (r *PaymentRepo) GetByID(ctx context.Context, id string) (*entity.Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	p, err := scanPayment(r.q.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

// GetForUpdate bloquea la fila del pago para mutar sus acumulados.
func (r *PaymentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 FOR UPDATE`
	p, err := scanPayment(r.q.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment for update: %w", err)
	}
	return p, nil
}

// Update actualiza acumulados y estado del pago.
func (r *PaymentRepo) Update(ctx context.Context, p *entity.Payment) error {
	const q = `
		UPDATE payments
		SET allocated_amount = $2, unallocated_amount = $3, status = $4, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, q, p.ID, p.AllocatedAmount, p.UnallocatedAmount, p.Status)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("pago %s no existe", p.ID)
	}
	return nil
}

// CreateAllocation persiste una asignación pago-factura.
func (r *PaymentRepo) CreateAllocation(ctx context.Context, a *entity.PaymentAllocation) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	const q = `
		INSERT INTO payment_allocations (id, payment_id, invoice_id, amount, created_at)
		VALUES ($1, $2, $3, $4, now())`
	_, err := r.q.Exec(ctx, q, a.ID, a.PaymentID, a.InvoiceID, a.Amount)
	if err != nil {
		return fmt.Errorf("insert allocation: %w", err)
	}
	return nil
}

// DeleteAllocation elimina una asignación (reverso explícito).
func (r *PaymentRepo) DeleteAllocation(ctx context.Context, allocationID string) error {
	const q = `DELETE FROM payment_allocations WHERE id = $1`
	tag, err := r.q.Exec(ctx, q, allocationID)
	if err != nil {
		return fmt.Errorf("delete allocation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("asignación %s no existe", allocationID)
	}
	return nil
}

// GetAllocation obtiene una asignación por ID.
func (r *PaymentRepo) GetAllocation(ctx context.Context, allocationID string) (*entity.PaymentAllocation, error) {
	const q = `
		SELECT id, payment_id, invoice_id, amount, created_at
		FROM payment_allocations WHERE id = $1`
	var a entity.PaymentAllocation
	err := r.q.QueryRow(ctx, q, allocationID).Scan(&a.ID, &a.PaymentID, &a.InvoiceID, &a.Amount, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get allocation: %w", err)
	}
	return &a, nil
}

// ListAllocationsByPayment lista las asignaciones de un pago.
func (r *PaymentRepo) ListAllocationsByPayment(ctx context.Context, paymentID string) ([]*entity.PaymentAllocation, error) {
	const q = `
		SELECT id, payment_id, invoice_id, amount, created_at
		FROM payment_allocations WHERE payment_id = $1 ORDER BY created_at`
	return r.listAllocations(ctx, q, paymentID)
}

// ListAllocationsByInvoice lista las asignaciones contra una factura.
func (r *PaymentRepo) ListAllocationsByInvoice(ctx context.Context, invoiceID string) ([]*entity.PaymentAllocation, error) {
	const q = `
		SELECT id, payment_id, invoice_id, amount, created_at
		FROM payment_allocations WHERE invoice_id = $1 ORDER BY created_at`
	return r.listAllocations(ctx, q, invoiceID)
}

// ListByClient lista pagos del cliente en un rango de fechas.
func (r *PaymentRepo) ListByClient(ctx context.Context, clientID string, from, to *time.Time) ([]*entity.Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE client_id = $1`
	args := []any{clientID}
	pos := 2
	if from != nil {
		q += fmt.Sprintf(" AND date >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		q += fmt.Sprintf(" AND date <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	q += " ORDER BY date, created_at"
	rows, err := r.q.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()
	var list []*entity.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *PaymentRepo) listAllocations(ctx context.Context, q string, arg any) ([]*entity.PaymentAllocation, error) {
	rows, err := r.q.Query(ctx, q, arg)
	if err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	defer rows.Close()
	var list []*entity.PaymentAllocation
	for rows.Next() {
		var a entity.PaymentAllocation
		if err := rows.Scan(&a.ID, &a.PaymentID, &a.InvoiceID, &a.Amount, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan allocation: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}

func scanPayment(row pgx.Row) (*entity.Payment, error) {
	var p entity.Payment
	err := row.Scan(
		&p.ID, &p.CompanyID, &p.ClientID, &p.Amount, &p.AllocatedAmount, &p.UnallocatedAmount,
		&p.Date, &p.Status, &p.Reference, &p.CreatedAt, &p.UpdatedAt, &p.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
