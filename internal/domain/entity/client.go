package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Client representa un cliente de la distribuidora.
type Client struct {
	ID          string
	CompanyID   string
	Name        string
	TaxID       string
	Address     string
	City        string
	Phone       string
	Email       string
	DueDays     int             // días de plazo para vencimiento de facturas
	CreditLimit decimal.Decimal // 0 = sin límite
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ClientSnapshot es la identidad fiscal del cliente congelada al emitir la factura.
type ClientSnapshot struct {
	Name    string `json:"name"`
	TaxID   string `json:"tax_id"`
	Address string `json:"address"`
	City    string `json:"city"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// Snapshot congela la identidad fiscal actual del cliente.
func (c *Client) Snapshot() ClientSnapshot {
	return ClientSnapshot{
		Name:    c.Name,
		TaxID:   c.TaxID,
		Address: c.Address,
		City:    c.City,
		Phone:   c.Phone,
		Email:   c.Email,
	}
}
