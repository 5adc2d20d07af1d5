package entity

import "time"

// Company representa la empresa emisora de los documentos.
// Email y datos bancarios son obligatorios para generar documentos fiscales:
// si faltan, la generación se bloquea completa (nunca sale un documento incompleto).
type Company struct {
	ID          string
	Name        string
	TaxID       string // NIT / identificación fiscal
	Address     string
	City        string
	Phone       string
	Email       string
	BankName    string
	BankAccount string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FiscalReady verifica la configuración mínima para emitir documentos.
func (c *Company) FiscalReady() bool {
	return c.Email != "" && c.BankName != "" && c.BankAccount != ""
}

// CompanySnapshot es la identidad fiscal de la empresa congelada al emitir un documento.
// Se copia al crear (copy-on-create), nunca se vuelve a leer en vivo.
type CompanySnapshot struct {
	Name        string `json:"name"`
	TaxID       string `json:"tax_id"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	BankName    string `json:"bank_name"`
	BankAccount string `json:"bank_account"`
}

// Snapshot congela la identidad fiscal actual de la empresa.
func (c *Company) Snapshot() CompanySnapshot {
	return CompanySnapshot{
		Name:        c.Name,
		TaxID:       c.TaxID,
		Address:     c.Address,
		City:        c.City,
		Phone:       c.Phone,
		Email:       c.Email,
		BankName:    c.BankName,
		BankAccount: c.BankAccount,
	}
}
