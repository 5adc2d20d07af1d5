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
	"github.com/shopspring/decimal"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación del libro de inventario sobre PostgreSQL
// (usable con pool o tx; las operaciones de capas exigen tx).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `id, company_id, product_id, item_kind, type, quantity, unit_cost,
	       remaining_quantity, location, reference_id, date, created_at, created_by`

// Create persiste un movimiento. El libro es append-only: no hay Update ni Delete.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	const q = `
		INSERT INTO stock_movements (id, company_id, product_id, item_kind, type, quantity, unit_cost, remaining_quantity, location, reference_id, date, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), $12)`
	_, err := r.q.Exec(ctx, q,
		m.ID, m.CompanyID, m.ProductID, m.ItemKind, m.Type,
		m.Quantity, m.UnitCost, m.RemainingQuantity,
		nullIfEmpty(m.Location), nullIfEmpty(m.ReferenceID), m.Date, nullIfEmpty(m.CreatedBy),
	)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	q := `SELECT ` + movementColumns + ` FROM stock_movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock movement: %w", err)
	}
	return m, nil
}

// LayersForUpdate devuelve las capas FIFO vivas del producto (remanente > 0) en
// orden de antigüedad, bloqueadas con FOR UPDATE para serializar salidas concurrentes.
func (r *StockMovementRepo) LayersForUpdate(ctx context.Context, productID string) ([]*entity.StockMovement, error) {
	q := `
		SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE product_id = $1 AND remaining_quantity > 0
		ORDER BY created_at, id
		FOR UPDATE`
	rows, err := r.q.Query(ctx, q, productID)
	if err != nil {
		return nil, fmt.Errorf("lock fifo layers: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovementRow(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// UpdateLayerRemaining fija el remanente de una capa. GREATEST evita negativos
// ante cualquier descuadre.
func (r *StockMovementRepo) UpdateLayerRemaining(ctx context.Context, layerID string, remaining decimal.Decimal) error {
	const q = `UPDATE stock_movements SET remaining_quantity = GREATEST($2, 0) WHERE id = $1`
	tag, err := r.q.Exec(ctx, q, layerID, remaining)
	if err != nil {
		return fmt.Errorf("update layer remaining: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("layer %s no existe", layerID)
	}
	return nil
}

// LastKnownUnitCost devuelve el costo de la entrada más reciente del producto,
// aunque la capa esté agotada. 0 si nunca hubo entradas.
func (r *StockMovementRepo) LastKnownUnitCost(ctx context.Context, productID string) (decimal.Decimal, error) {
	const q = `
		SELECT unit_cost FROM stock_movements
		WHERE product_id = $1 AND type IN ('GOODS_IN', 'ADJUSTMENT')
		ORDER BY created_at DESC, id DESC
		LIMIT 1`
	var cost decimal.Decimal
	err := r.q.QueryRow(ctx, q, productID).Scan(&cost)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("last known unit cost: %w", err)
	}
	return cost, nil
}

// Available suma el remanente de todas las capas del producto.
func (r *StockMovementRepo) Available(ctx context.Context, productID string) (decimal.Decimal, error) {
	const q = `
		SELECT COALESCE(SUM(remaining_quantity), 0)
		FROM stock_movements WHERE product_id = $1`
	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, q, productID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum available: %w", err)
	}
	return total, nil
}

// CreateBreakdownEntry persiste una porción del desglose de costo de una salida.
func (r *StockMovementRepo) CreateBreakdownEntry(ctx context.Context, e *entity.CostBreakdownEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	const q = `
		INSERT INTO cost_breakdown_entries (id, source_movement_id, note_line_id, entry_date, quantity, unit_cost, cost_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, q,
		e.ID, nullIfEmpty(e.SourceMovementID), e.NoteLineID, e.EntryDate,
		e.Quantity, e.UnitCost, e.CostType,
	)
	if err != nil {
		return fmt.Errorf("insert breakdown entry: %w", err)
	}
	return nil
}

// ListBreakdownByNoteLine devuelve el desglose de costo de una línea saliente.
func (r *StockMovementRepo) ListBreakdownByNoteLine(ctx context.Context, noteLineID string) ([]*entity.CostBreakdownEntry, error) {
	const q = `
		SELECT id, COALESCE(source_movement_id, ''), note_line_id, entry_date, quantity, unit_cost, cost_type
		FROM cost_breakdown_entries WHERE note_line_id = $1 ORDER BY entry_date, id`
	rows, err := r.q.Query(ctx, q, noteLineID)
	if err != nil {
		return nil, fmt.Errorf("list breakdown: %w", err)
	}
	defer rows.Close()
	var list []*entity.CostBreakdownEntry
	for rows.Next() {
		var e entity.CostBreakdownEntry
		if err := rows.Scan(&e.ID, &e.SourceMovementID, &e.NoteLineID, &e.EntryDate, &e.Quantity, &e.UnitCost, &e.CostType); err != nil {
			return nil, fmt.Errorf("scan breakdown: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// ListByProduct lista movimientos de un producto en un rango de fechas.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	q := `SELECT ` + movementColumns + ` FROM stock_movements WHERE product_id = $1`
	args := []any{productID}
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
	q += fmt.Sprintf(" ORDER BY date DESC, created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovementRow(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var location, referenceID, createdBy *string
	err := row.Scan(
		&m.ID, &m.CompanyID, &m.ProductID, &m.ItemKind, &m.Type,
		&m.Quantity, &m.UnitCost, &m.RemainingQuantity,
		&location, &referenceID, &m.Date, &m.CreatedAt, &createdBy,
	)
	if err != nil {
		return nil, err
	}
	m.Location = derefStr(location)
	m.ReferenceID = derefStr(referenceID)
	m.CreatedBy = derefStr(createdBy)
	return &m, nil
}

func scanMovementRow(rows pgx.Rows) (*entity.StockMovement, error) {
	m, err := scanMovement(rows)
	if err != nil {
		return nil, fmt.Errorf("scan movement: %w", err)
	}
	return m, nil
}
