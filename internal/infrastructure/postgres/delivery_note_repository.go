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

var _ repository.DeliveryNoteRepository = (*DeliveryNoteRepo)(nil)

// DeliveryNoteRepo implementación de DeliveryNoteRepository sobre PostgreSQL
// (usable con pool o tx).
type DeliveryNoteRepo struct {
	q Querier
}

// NewDeliveryNoteRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDeliveryNoteRepository(q Querier) *DeliveryNoteRepo {
	return &DeliveryNoteRepo{q: q}
}

const noteColumns = `id, company_id, delivery_id, order_id, client_id,
	       series, number, year, status, COALESCE(cancel_reason, ''),
	       issued_at, delivered_at, created_at, updated_at, COALESCE(created_by, '')`

// Create persiste la nota con sus líneas. La unicidad de (series, year, number)
// la respalda un constraint único.
func (r *DeliveryNoteRepo) Create(ctx context.Context, n *entity.DeliveryNote, lines []*entity.DeliveryNoteLine) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	const qn = `
		INSERT INTO delivery_notes (id, company_id, delivery_id, order_id, client_id, series, number, year, status, issued_at, created_at, updated_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now(), $11)`
	_, err := r.q.Exec(ctx, qn,
		n.ID, n.CompanyID, n.DeliveryID, n.OrderID, n.ClientID,
		n.Number.Series, n.Number.Number, n.Number.Year,
		n.Status, n.IssuedAt, nullIfEmpty(n.CreatedBy),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("número de nota %s-%d/%d ya existe: %w", n.Number.Series, n.Number.Number, n.Number.Year, err)
		}
		return fmt.Errorf("insert delivery note: %w", err)
	}
	const ql = `
		INSERT INTO delivery_note_lines (id, note_id, order_line_id, product_id, product_name, item_kind, is_manual, service_id, quantity, unit_price, vat_rate, unit_cost_fifo, line_cost_fifo, cost_provisional, reservation_released)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	for _, l := range lines {
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		l.NoteID = n.ID
		_, err := r.q.Exec(ctx, ql,
			l.ID, l.NoteID, nullIfEmpty(l.OrderLineID), nullIfEmpty(l.ProductID), l.ProductName,
			l.ItemKind, l.IsManual, nullIfEmpty(l.ServiceID),
			l.Quantity, l.UnitPrice, l.VATRate,
			l.UnitCostFIFO, l.LineCostFIFO, l.CostProvisional, l.ReservationReleased,
		)
		if err != nil {
			return fmt.Errorf("insert note line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la nota por ID.
func (r *DeliveryNoteRepo) GetByID(ctx context.Context, id string) (*entity.DeliveryNote, error) {
	q := `SELECT ` + noteColumns + ` FROM delivery_notes WHERE id = $1`
	n, err := scanNote(r.q.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get delivery note: %w", err)
	}
	return n, nil
}

// GetLines obtiene las líneas de la nota.
func (r *DeliveryNoteRepo) GetLines(ctx context.Context, noteID string) ([]*entity.DeliveryNoteLine, error) {
	const q = `
		SELECT id, note_id, COALESCE(order_line_id, ''), COALESCE(product_id, ''), product_name,
		       item_kind, is_manual, COALESCE(service_id, ''), quantity, unit_price, vat_rate,
		       unit_cost_fifo, line_cost_fifo, cost_provisional, reservation_released
		FROM delivery_note_lines WHERE note_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, q, noteID)
	if err != nil {
		return nil, fmt.Errorf("list note lines: %w", err)
	}
	defer rows.Close()
	var list []*entity.DeliveryNoteLine
	for rows.Next() {
		var l entity.DeliveryNoteLine
		if err := rows.Scan(&l.ID, &l.NoteID, &l.OrderLineID, &l.ProductID, &l.ProductName,
			&l.ItemKind, &l.IsManual, &l.ServiceID, &l.Quantity, &l.UnitPrice, &l.VATRate,
			&l.UnitCostFIFO, &l.LineCostFIFO, &l.CostProvisional, &l.ReservationReleased); err != nil {
			return nil, fmt.Errorf("scan note line: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// UpdateStatus cambia estado y motivo de anulación de la nota.
func (r *DeliveryNoteRepo) UpdateStatus(ctx context.Context, noteID, status, cancelReason string) error {
	const q = `
		UPDATE delivery_notes
		SET status = $2, cancel_reason = COALESCE($3, cancel_reason), updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, q, noteID, status, nullIfEmpty(cancelReason))
	if err != nil {
		return fmt.Errorf("update note status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("nota %s no existe", noteID)
	}
	return nil
}

// MarkDelivered pasa la nota a DELIVERED y sella delivered_at.
func (r *DeliveryNoteRepo) MarkDelivered(ctx context.Context, noteID string) error {
	const q = `
		UPDATE delivery_notes
		SET status = $2, delivered_at = now(), updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, q, noteID, entity.NoteStatusDelivered)
	if err != nil {
		return fmt.Errorf("mark note delivered: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("nota %s no existe", noteID)
	}
	return nil
}

// UpdateLineCost persiste los campos de costeo FIFO de una línea.
func (r *DeliveryNoteRepo) UpdateLineCost(ctx context.Context, line *entity.DeliveryNoteLine) error {
	const q = `
		UPDATE delivery_note_lines
		SET unit_cost_fifo = $2, line_cost_fifo = $3, cost_provisional = $4
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, q, line.ID, line.UnitCostFIFO, line.LineCostFIFO, line.CostProvisional)
	if err != nil {
		return fmt.Errorf("update line cost: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("línea de nota %s no existe", line.ID)
	}
	return nil
}

// MarkReservationReleased deja constancia de la liberación de reserva de la línea.
func (r *DeliveryNoteRepo) MarkReservationReleased(ctx context.Context, noteLineID string) error {
	const q = `UPDATE delivery_note_lines SET reservation_released = true WHERE id = $1`
	tag, err := r.q.Exec(ctx, q, noteLineID)
	if err != nil {
		return fmt.Errorf("mark reservation released: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("línea de nota %s no existe", noteLineID)
	}
	return nil
}

// ListByIDs devuelve las notas cuyo ID está en la lista.
func (r *DeliveryNoteRepo) ListByIDs(ctx context.Context, ids []string) ([]*entity.DeliveryNote, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := `SELECT ` + noteColumns + ` FROM delivery_notes WHERE id = ANY($1) ORDER BY issued_at`
	rows, err := r.q.Query(ctx, q, ids)
	if err != nil {
		return nil, fmt.Errorf("list notes by ids: %w", err)
	}
	defer rows.Close()
	var list []*entity.DeliveryNote
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

func scanNote(row pgx.Row) (*entity.DeliveryNote, error) {
	var n entity.DeliveryNote
	err := row.Scan(
		&n.ID, &n.CompanyID, &n.DeliveryID, &n.OrderID, &n.ClientID,
		&n.Number.Series, &n.Number.Number, &n.Number.Year,
		&n.Status, &n.CancelReason,
		&n.IssuedAt, &n.DeliveredAt, &n.CreatedAt, &n.UpdatedAt, &n.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
