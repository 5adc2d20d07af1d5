package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository sobre PostgreSQL (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create persiste el pedido con sus líneas.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order, lines []*entity.OrderLine) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	const qo = `
		INSERT INTO orders (id, company_id, client_id, status, order_date, notes, created_at, updated_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now(), $7)`
	_, err := r.q.Exec(ctx, qo,
		o.ID, o.CompanyID, o.ClientID, o.Status, o.OrderDate, nullIfEmpty(o.Notes), nullIfEmpty(o.CreatedBy),
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	const ql = `
		INSERT INTO order_lines (id, order_id, product_id, product_name, quantity, unit_factor, unit_price, vat_rate, reserved_quantity, delivered_qty)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for _, l := range lines {
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		l.OrderID = o.ID
		_, err := r.q.Exec(ctx, ql,
			l.ID, l.OrderID, l.ProductID, l.ProductName,
			l.Quantity, l.UnitFactor, l.UnitPrice, l.VATRate,
			l.ReservedQuantity, l.DeliveredQty,
		)
		if err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la cabecera del pedido.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	const q = `
		SELECT id, company_id, client_id, status, order_date, COALESCE(notes, ''), created_at, updated_at, COALESCE(created_by, '')
		FROM orders WHERE id = $1`
	var o entity.Order
	err := r.q.QueryRow(ctx, q, id).Scan(
		&o.ID, &o.CompanyID, &o.ClientID, &o.Status, &o.OrderDate, &o.Notes,
		&o.CreatedAt, &o.UpdatedAt, &o.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &o, nil
}

const orderLineColumns = `id, order_id, product_id, product_name, quantity, unit_factor,
	       unit_price, vat_rate, reserved_quantity, delivered_qty`

// GetLines obtiene las líneas del pedido.
func (r *OrderRepo) GetLines(ctx context.Context, orderID string) ([]*entity.OrderLine, error) {
	q := `SELECT ` + orderLineColumns + ` FROM order_lines WHERE order_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, q, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer rows.Close()
	var list []*entity.OrderLine
	for rows.Next() {
		var l entity.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.ProductName,
			&l.Quantity, &l.UnitFactor, &l.UnitPrice, &l.VATRate,
			&l.ReservedQuantity, &l.DeliveredQty); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// GetLine obtiene una línea de pedido por ID.
func (r *OrderRepo) GetLine(ctx context.Context, lineID string) (*entity.OrderLine, error) {
	q := `SELECT ` + orderLineColumns + ` FROM order_lines WHERE id = $1`
	var l entity.OrderLine
	err := r.q.QueryRow(ctx, q, lineID).Scan(
		&l.ID, &l.OrderID, &l.ProductID, &l.ProductName,
		&l.Quantity, &l.UnitFactor, &l.UnitPrice, &l.VATRate,
		&l.ReservedQuantity, &l.DeliveredQty,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order line: %w", err)
	}
	return &l, nil
}

// UpdateStatus cambia el estado del pedido.
func (r *OrderRepo) UpdateStatus(ctx context.Context, orderID, status string) error {
	const q = `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(ctx, q, orderID, status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("pedido %s no existe", orderID)
	}
	return nil
}

// ReleaseReservation descuenta qty del contador de reserva sin dejarlo negativo.
func (r *OrderRepo) ReleaseReservation(ctx context.Context, orderLineID string, qty decimal.Decimal) error {
	const q = `
		UPDATE order_lines
		SET reserved_quantity = GREATEST(reserved_quantity - $2, 0)
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, q, orderLineID, qty)
	if err != nil {
		return fmt.Errorf("release reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("línea de pedido %s no existe", orderLineID)
	}
	return nil
}

// AddDeliveredQty acumula la cantidad entregada en la línea.
func (r *OrderRepo) AddDeliveredQty(ctx context.Context, orderLineID string, qty decimal.Decimal) error {
	const q = `
		UPDATE order_lines
		SET delivered_qty = delivered_qty + $2
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, q, orderLineID, qty)
	if err != nil {
		return fmt.Errorf("add delivered qty: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("línea de pedido %s no existe", orderLineID)
	}
	return nil
}
