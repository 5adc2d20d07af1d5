package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo implementación de CompanyRepository sobre PostgreSQL (usable con pool o tx).
type CompanyRepo struct {
	q Querier
}

// NewCompanyRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCompanyRepository(q Querier) *CompanyRepo {
	return &CompanyRepo{q: q}
}

// GetByID obtiene la empresa emisora por ID.
func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	const q = `
		SELECT id, name, COALESCE(tax_id, ''), COALESCE(address, ''), COALESCE(city, ''),
		       COALESCE(phone, ''), COALESCE(email, ''), COALESCE(bank_name, ''), COALESCE(bank_account, ''),
		       created_at, updated_at
		FROM companies WHERE id = $1`
	var c entity.Company
	err := r.q.QueryRow(ctx, q, id).Scan(
		&c.ID, &c.Name, &c.TaxID, &c.Address, &c.City,
		&c.Phone, &c.Email, &c.BankName, &c.BankAccount,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return &c, nil
}

// Update actualiza los datos fiscales y bancarios de la empresa.
func (r *CompanyRepo) Update(ctx context.Context, c *entity.Company) error {
	const q = `
		UPDATE companies
		SET name = $2, tax_id = $3, address = $4, city = $5, phone = $6,
		    email = $7, bank_name = $8, bank_account = $9, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, q,
		c.ID, c.Name, nullIfEmpty(c.TaxID), nullIfEmpty(c.Address), nullIfEmpty(c.City),
		nullIfEmpty(c.Phone), nullIfEmpty(c.Email), nullIfEmpty(c.BankName), nullIfEmpty(c.BankAccount),
	)
	if err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("empresa %s no existe", c.ID)
	}
	return nil
}
