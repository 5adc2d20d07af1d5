package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

var _ repository.DeliveryRepository = (*DeliveryRepo)(nil)

// DeliveryRepo implementación de DeliveryRepository sobre PostgreSQL (usable con pool o tx).
type DeliveryRepo struct {
	q Querier
}

// NewDeliveryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDeliveryRepository(q Querier) *DeliveryRepo {
	return &DeliveryRepo{q: q}
}

const deliveryColumns = `id, company_id, order_id, status, noticed, scheduled_for,
	       COALESCE(location, ''), created_at, updated_at, COALESCE(created_by, '')`

// Create persiste la entrega con sus líneas.
func (r *DeliveryRepo) Create(ctx context.Context, d *entity.Delivery, lines []*entity.DeliveryLine) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	const qd = `
		INSERT INTO deliveries (id, company_id, order_id, status, noticed, scheduled_for, location, created_at, updated_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now(), $8)`
	_, err := r.q.Exec(ctx, qd,
		d.ID, d.CompanyID, d.OrderID, d.Status, d.Noticed, d.ScheduledFor,
		nullIfEmpty(d.Location), nullIfEmpty(d.CreatedBy),
	)
	if err != nil {
		return fmt.Errorf("insert delivery: %w", err)
	}
	const ql = `
		INSERT INTO delivery_lines (id, delivery_id, order_line_id, product_id, product_name, quantity, unit_price, vat_rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for _, l := range lines {
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		l.DeliveryID = d.ID
		_, err := r.q.Exec(ctx, ql,
			l.ID, l.DeliveryID, l.OrderLineID, l.ProductID, l.ProductName,
			l.Quantity, l.UnitPrice, l.VATRate,
		)
		if err != nil {
			return fmt.Errorf("insert delivery line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la entrega por ID.
func (r *DeliveryRepo) GetByID(ctx context.Context, id string) (*entity.Delivery, error) {
	q := `SELECT ` + deliveryColumns + ` FROM deliveries WHERE id = $1`
	var d entity.Delivery
	err := r.q.QueryRow(ctx, q, id).Scan(
		&d.ID, &d.CompanyID, &d.OrderID, &d.Status, &d.Noticed, &d.ScheduledFor,
		&d.Location, &d.CreatedAt, &d.UpdatedAt, &d.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get delivery: %w", err)
	}
	return &d, nil
}

// GetLines obtiene las líneas de la entrega.
func (r *DeliveryRepo) GetLines(ctx context.Context, deliveryID string) ([]*entity.DeliveryLine, error) {
	const q = `
		SELECT id, delivery_id, order_line_id, product_id, product_name, quantity, unit_price, vat_rate
		FROM delivery_lines WHERE delivery_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, q, deliveryID)
	if err != nil {
		return nil, fmt.Errorf("list delivery lines: %w", err)
	}
	defer rows.Close()
	var list []*entity.DeliveryLine
	for rows.Next() {
		var l entity.DeliveryLine
		if err := rows.Scan(&l.ID, &l.DeliveryID, &l.OrderLineID, &l.ProductID, &l.ProductName,
			&l.Quantity, &l.UnitPrice, &l.VATRate); err != nil {
			return nil, fmt.Errorf("scan delivery line: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// ListByOrder devuelve las entregas hermanas de un pedido.
func (r *DeliveryRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.Delivery, error) {
	q := `SELECT ` + deliveryColumns + ` FROM deliveries WHERE order_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(ctx, q, orderID)
	if err != nil {
		return nil, fmt.Errorf("list deliveries by order: %w", err)
	}
	defer rows.Close()
	var list []*entity.Delivery
	for rows.Next() {
		var d entity.Delivery
		if err := rows.Scan(&d.ID, &d.CompanyID, &d.OrderID, &d.Status, &d.Noticed, &d.ScheduledFor,
			&d.Location, &d.CreatedAt, &d.UpdatedAt, &d.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}

// UpdateStatus cambia el estado de la entrega.
func (r *DeliveryRepo) UpdateStatus(ctx context.Context, deliveryID, status string) error {
	const q = `UPDATE deliveries SET status = $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(ctx, q, deliveryID, status)
	if err != nil {
		return fmt.Errorf("update delivery status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("entrega %s no existe", deliveryID)
	}
	return nil
}

// SetNoticed marca/desmarca que la entrega tiene nota emitida.
func (r *DeliveryRepo) SetNoticed(ctx context.Context, deliveryID string, noticed bool) error {
	const q = `UPDATE deliveries SET noticed = $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(ctx, q, deliveryID, noticed)
	if err != nil {
		return fmt.Errorf("set delivery noticed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("entrega %s no existe", deliveryID)
	}
	return nil
}
