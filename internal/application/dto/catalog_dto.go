package dto

import "github.com/shopspring/decimal"

// ProductRequest cuerpo para crear/actualizar un artículo del catálogo.
type ProductRequest struct {
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Kind          string          `json:"kind"` // PRODUCT | PACKAGING | SERVICE
	UnitMeasure   string          `json:"unit_measure"`
	UnitFactor    decimal.Decimal `json:"unit_factor"`
	Price         decimal.Decimal `json:"price"`
	ReferenceCost decimal.Decimal `json:"reference_cost"`
	VATRate       decimal.Decimal `json:"vat_rate"`
	IsActive      *bool           `json:"is_active,omitempty"`
}

// ClientRequest cuerpo para crear/actualizar un cliente.
type ClientRequest struct {
	Name        string          `json:"name"`
	TaxID       string          `json:"tax_id"`
	Address     string          `json:"address"`
	City        string          `json:"city"`
	Phone       string          `json:"phone"`
	Email       string          `json:"email"`
	DueDays     int             `json:"due_days"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
	IsActive    *bool           `json:"is_active,omitempty"`
}

// CompanyRequest cuerpo para actualizar los datos de la empresa emisora.
// Email, banco y cuenta son obligatorios para poder emitir documentos fiscales.
type CompanyRequest struct {
	Name        string `json:"name"`
	TaxID       string `json:"tax_id"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	BankName    string `json:"bank_name"`
	BankAccount string `json:"bank_account"`
}
