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

var _ repository.SequenceRepository = (*SequenceRepo)(nil)
var _ repository.SeriesRepository = (*SeriesRepo)(nil)

// SequenceRepo implementa el contador consecutivo por (serie, año) sobre PostgreSQL.
// Debe usarse dentro de la transacción del documento: si la tx hace rollback el
// número incrementado se descarta junto con el documento.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// NextNumber incrementa y devuelve el consecutivo de (series, year) en una sola
// sentencia atómica. El upsert serializa escritores concurrentes por la fila del
// contador: dos llamadas jamás devuelven el mismo número.
func (r *SequenceRepo) NextNumber(ctx context.Context, series string, year int) (int64, error) {
	const q = `
		INSERT INTO series_counters (series, year, last_number, updated_at)
		VALUES ($1, $2, 1, now())
		ON CONFLICT (series, year)
		DO UPDATE SET last_number = series_counters.last_number + 1, updated_at = now()
		RETURNING last_number`
	var n int64
	if err := r.q.QueryRow(ctx, q, series, year).Scan(&n); err != nil {
		return 0, fmt.Errorf("next number %s/%d: %w", series, year, err)
	}
	return n, nil
}

// SeriesRepo implementa el catálogo de series de numeración sobre PostgreSQL.
type SeriesRepo struct {
	q Querier
}

// NewSeriesRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSeriesRepository(q Querier) *SeriesRepo {
	return &SeriesRepo{q: q}
}

// GetByName busca una serie por nombre dentro de la empresa.
func (r *SeriesRepo) GetByName(ctx context.Context, companyID, name string) (*entity.Series, error) {
	const q = `
		SELECT id, company_id, name, doc_type, is_active, created_at, updated_at
		FROM series WHERE company_id = $1 AND name = $2`
	var s entity.Series
	err := r.q.QueryRow(ctx, q, companyID, name).Scan(
		&s.ID, &s.CompanyID, &s.Name, &s.DocType, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get series: %w", err)
	}
	return &s, nil
}

// ListActive lista las series activas de un tipo de documento.
func (r *SeriesRepo) ListActive(ctx context.Context, companyID, docType string) ([]*entity.Series, error) {
	const q = `
		SELECT id, company_id, name, doc_type, is_active, created_at, updated_at
		FROM series WHERE company_id = $1 AND doc_type = $2 AND is_active
		ORDER BY name`
	rows, err := r.q.Query(ctx, q, companyID, docType)
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	defer rows.Close()
	var list []*entity.Series
	for rows.Next() {
		var s entity.Series
		if err := rows.Scan(&s.ID, &s.CompanyID, &s.Name, &s.DocType, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan series: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// Create registra una serie nueva.
func (r *SeriesRepo) Create(ctx context.Context, s *entity.Series) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	const q = `
		INSERT INTO series (id, company_id, name, doc_type, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())`
	_, err := r.q.Exec(ctx, q, s.ID, s.CompanyID, s.Name, s.DocType, s.IsActive)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("serie %s ya existe: %w", s.Name, err)
		}
		return fmt.Errorf("insert series: %w", err)
	}
	return nil
}
