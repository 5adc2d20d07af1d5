package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockMovementRepository define el puerto del libro de inventario append-only
// y de sus capas FIFO. Usado siempre dentro de transacciones.
type StockMovementRepository interface {
	Create(ctx context.Context, m *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	// LayersForUpdate devuelve las capas con remanente > 0 de un producto en
	// orden de creación (la más vieja primero), bloqueadas con SELECT FOR UPDATE
	// para serializar consumos concurrentes.
	LayersForUpdate(ctx context.Context, productID string) ([]*entity.StockMovement, error)
	// UpdateLayerRemaining fija el remanente de una capa; nunca negativo.
	UpdateLayerRemaining(ctx context.Context, layerID string, remaining decimal.Decimal) error
	// LastKnownUnitCost es el costo de la entrada más reciente del producto
	// (aunque esté agotada); 0 si nunca hubo entradas.
	LastKnownUnitCost(ctx context.Context, productID string) (decimal.Decimal, error)
	// Available suma el remanente de todas las capas del producto.
	Available(ctx context.Context, productID string) (decimal.Decimal, error)
	CreateBreakdownEntry(ctx context.Context, e *entity.CostBreakdownEntry) error
	ListBreakdownByNoteLine(ctx context.Context, noteLineID string) ([]*entity.CostBreakdownEntry, error)
	ListByProduct(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
}
