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

var _ repository.ClientRepository = (*ClientRepo)(nil)

// ClientRepo implementación de ClientRepository sobre PostgreSQL (usable con pool o tx).
type ClientRepo struct {
	q Querier
}

// NewClientRepository construye el adaptador. Pasar pool o tx (Querier).
func NewClientRepository(q Querier) *ClientRepo {
	return &ClientRepo{q: q}
}

const clientColumns = `id, company_id, name, COALESCE(tax_id, ''), COALESCE(address, ''),
	       COALESCE(city, ''), COALESCE(phone, ''), COALESCE(email, ''),
	       due_days, credit_limit, is_active, created_at, updated_at`

// Create persiste un cliente.
func (r *ClientRepo) Create(ctx context.Context, c *entity.Client) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	const q = `
		INSERT INTO clients (id, company_id, name, tax_id, address, city, phone, email, due_days, credit_limit, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())`
	_, err := r.q.Exec(ctx, q,
		c.ID, c.CompanyID, c.Name, nullIfEmpty(c.TaxID), nullIfEmpty(c.Address),
		nullIfEmpty(c.City), nullIfEmpty(c.Phone), nullIfEmpty(c.Email),
		c.DueDays, c.CreditLimit, c.IsActive,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("cliente con NIT %s ya existe: %w", c.TaxID, err)
		}
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente por ID.
func (r *ClientRepo) GetByID(ctx context.Context, id string) (*entity.Client, error) {
	q := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	var c entity.Client
	err := r.q.QueryRow(ctx, q, id).Scan(
		&c.ID, &c.CompanyID, &c.Name, &c.TaxID, &c.Address,
		&c.City, &c.Phone, &c.Email,
		&c.DueDays, &c.CreditLimit, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	return &c, nil
}

// List lista clientes de la empresa con paginación.
func (r *ClientRepo) List(ctx context.Context, companyID string, limit, offset int) ([]*entity.Client, error) {
	q := `SELECT ` + clientColumns + ` FROM clients WHERE company_id = $1 ORDER BY name LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, q, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()
	var list []*entity.Client
	for rows.Next() {
		var c entity.Client
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Name, &c.TaxID, &c.Address,
			&c.City, &c.Phone, &c.Email,
			&c.DueDays, &c.CreditLimit, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

// Update actualiza los datos editables del cliente.
func (r *ClientRepo) Update(ctx context.Context, c *entity.Client) error {
	const q = `
		UPDATE clients
		SET name = $2, tax_id = $3, address = $4, city = $5, phone = $6, email = $7,
		    due_days = $8, credit_limit = $9, is_active = $10, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, q,
		c.ID, c.Name, nullIfEmpty(c.TaxID), nullIfEmpty(c.Address),
		nullIfEmpty(c.City), nullIfEmpty(c.Phone), nullIfEmpty(c.Email),
		c.DueDays, c.CreditLimit, c.IsActive,
	)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("cliente %s no existe", c.ID)
	}
	return nil
}
