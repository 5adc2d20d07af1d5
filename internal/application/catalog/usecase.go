// Package catalog expone los datos maestros: artículos, clientes y empresa.
package catalog

import (
	"context"

	"github.com/jhoicas/Distribucion-api/internal/domain"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ProductUseCase CRUD del catálogo de artículos.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Create valida y registra un artículo.
func (uc *ProductUseCase) Create(ctx context.Context, companyID string, p *entity.Product) error {
	if p.SKU == "" || p.Name == "" {
		return domain.ErrInvalidInput
	}
	switch p.Kind {
	case entity.ItemKindProduct, entity.ItemKindPackaging, entity.ItemKindService:
	default:
		return domain.ErrInvalidInput
	}
	if p.UnitFactor.LessThanOrEqual(decimal.Zero) {
		p.UnitFactor = decimal.NewFromInt(1)
	}
	existing, err := uc.repo.GetBySKU(ctx, companyID, p.SKU)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.ErrDuplicate
	}
	p.CompanyID = companyID
	p.IsActive = true
	return uc.repo.Create(ctx, p)
}

// GetByID obtiene un artículo verificando tenencia.
func (uc *ProductUseCase) GetByID(ctx context.Context, companyID, id string) (*entity.Product, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if p.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return p, nil
}

// List lista artículos de la empresa.
func (uc *ProductUseCase) List(ctx context.Context, companyID string, limit, offset int) ([]*entity.Product, error) {
	return uc.repo.List(ctx, companyID, limit, offset)
}

// Update actualiza un artículo verificando tenencia.
func (uc *ProductUseCase) Update(ctx context.Context, companyID string, p *entity.Product) error {
	current, err := uc.GetByID(ctx, companyID, p.ID)
	if err != nil {
		return err
	}
	p.CompanyID = current.CompanyID
	return uc.repo.Update(ctx, p)
}

// ClientUseCase CRUD de clientes.
type ClientUseCase struct {
	repo repository.ClientRepository
}

// NewClientUseCase construye el caso de uso.
func NewClientUseCase(repo repository.ClientRepository) *ClientUseCase {
	return &ClientUseCase{repo: repo}
}

// Create valida y registra un cliente.
func (uc *ClientUseCase) Create(ctx context.Context, companyID string, c *entity.Client) error {
	if c.Name == "" {
		return domain.ErrInvalidInput
	}
	if c.DueDays < 0 {
		return domain.ErrInvalidInput
	}
	c.CompanyID = companyID
	c.IsActive = true
	return uc.repo.Create(ctx, c)
}

// GetByID obtiene un cliente verificando tenencia.
func (uc *ClientUseCase) GetByID(ctx context.Context, companyID, id string) (*entity.Client, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	if c.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return c, nil
}

// List lista clientes de la empresa.
func (uc *ClientUseCase) List(ctx context.Context, companyID string, limit, offset int) ([]*entity.Client, error) {
	return uc.repo.List(ctx, companyID, limit, offset)
}

// Update actualiza un cliente verificando tenencia.
func (uc *ClientUseCase) Update(ctx context.Context, companyID string, c *entity.Client) error {
	current, err := uc.GetByID(ctx, companyID, c.ID)
	if err != nil {
		return err
	}
	c.CompanyID = current.CompanyID
	return uc.repo.Update(ctx, c)
}

// CompanyUseCase lectura y actualización de la empresa emisora.
type CompanyUseCase struct {
	repo repository.CompanyRepository
}

// NewCompanyUseCase construye el caso de uso.
func NewCompanyUseCase(repo repository.CompanyRepository) *CompanyUseCase {
	return &CompanyUseCase{repo: repo}
}

// Get obtiene la empresa del token.
func (uc *CompanyUseCase) Get(ctx context.Context, companyID string) (*entity.Company, error) {
	c, err := uc.repo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

// Update actualiza los datos fiscales y bancarios de la empresa del token.
func (uc *CompanyUseCase) Update(ctx context.Context, companyID string, c *entity.Company) error {
	if c.Name == "" {
		return domain.ErrInvalidInput
	}
	c.ID = companyID
	return uc.repo.Update(ctx, c)
}
