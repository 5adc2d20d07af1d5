package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Distribucion-api/internal/domain"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Distribucion-api/internal/domain/inventory"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
	"github.com/jhoicas/Distribucion-api/pkg/logger"
)

// LedgerUseCase registra movimientos del libro de inventario de forma
// transaccional y mantiene las capas FIFO por producto. Las salidas consumen
// capas de la más vieja a la más nueva bloqueándolas con SELECT FOR UPDATE.
type LedgerUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	log         *logger.Logger
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(txRunner TxRunner, productRepo repository.ProductRepository, log *logger.Logger) *LedgerUseCase {
	return &LedgerUseCase{txRunner: txRunner, productRepo: productRepo, log: log}
}

// MovementInput entrada para registrar un movimiento.
// UnitCost es obligatorio en GOODS_IN y en ADJUSTMENT positivo.
type MovementInput struct {
	CompanyID   string
	UserID      string
	ProductID   string
	Type        string
	Quantity    decimal.Decimal
	UnitCost    *decimal.Decimal
	Location    string
	ReferenceID string
}

// RegisterMovement abre una transacción, valida y aplica el movimiento según su
// tipo, y hace Commit o Rollback. Devuelve el costeo FIFO para salidas.
func (uc *LedgerUseCase) RegisterMovement(ctx context.Context, in MovementInput) (*entity.MovementCost, error) {
	if in.ProductID == "" || !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	switch in.Type {
	case entity.MovementTypeGoodsIn:
		if in.UnitCost == nil || in.UnitCost.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
	case entity.MovementTypeSaleOut, entity.MovementTypeAdjustment, entity.MovementTypeTransfer:
		// salidas y ajustes costean desde las capas
	default:
		return nil, domain.ErrInvalidInput
	}

	product, err := uc.productRepo.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if product.CompanyID != in.CompanyID {
		return nil, domain.ErrForbidden
	}
	if !product.Stockable() {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	var cost *entity.MovementCost
	err = uc.txRunner.Run(ctx, func(movRepo repository.StockMovementRepository, _ repository.OrderRepository) error {
		switch in.Type {
		case entity.MovementTypeGoodsIn:
			return uc.RegisterGoodsInTx(ctx, movRepo, product, in.Quantity, *in.UnitCost, in.Location, in.ReferenceID, in.UserID, now)
		default:
			c, err := uc.RegisterSaleOutInTx(ctx, movRepo, product, in.Quantity, in.Type, in.Location, in.ReferenceID, "", in.UserID, now)
			if err != nil {
				return err
			}
			cost = c
			return nil
		}
	})
	if err != nil {
		return nil, err
	}
	return cost, nil
}

// RegisterGoodsInTx agrega una capa FIFO nueva (remanente = cantidad) usando los
// repositorios de la transacción del llamador.
func (uc *LedgerUseCase) RegisterGoodsInTx(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	product *entity.Product,
	quantity, unitCost decimal.Decimal,
	location, referenceID, userID string,
	now time.Time,
) error {
	mov := &entity.StockMovement{
		ID:                uuid.New().String(),
		CompanyID:         product.CompanyID,
		ProductID:         product.ID,
		ItemKind:          product.Kind,
		Type:              entity.MovementTypeGoodsIn,
		Quantity:          quantity,
		UnitCost:          unitCost,
		RemainingQuantity: quantity,
		Location:          location,
		ReferenceID:       referenceID,
		Date:              now,
		CreatedAt:         now,
		CreatedBy:         userID,
	}
	return movRepo.Create(ctx, mov)
}

// RegisterSaleOutInTx registra una salida consumiendo capas FIFO en orden de
// creación (la más vieja primero) dentro de la transacción del llamador.
//
// Si las capas no alcanzan (sobreventa), NO falla: la porción faltante se
// costea provisionalmente con el último costo conocido (o el costo de
// referencia del producto) y queda marcada para conciliación posterior. El
// negocio no se bloquea para despachar, pero el rastro de auditoría lo refleja.
func (uc *LedgerUseCase) RegisterSaleOutInTx(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	product *entity.Product,
	quantity decimal.Decimal,
	movType, location, referenceID, noteLineID, userID string,
	now time.Time,
) (*entity.MovementCost, error) {
	if !quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	layers, err := movRepo.LayersForUpdate(ctx, product.ID)
	if err != nil {
		return nil, err
	}

	rest := quantity
	var breakdown []entity.CostBreakdownEntry
	for _, layer := range layers {
		if !rest.GreaterThan(decimal.Zero) {
			break
		}
		take := decimal.Min(layer.RemainingQuantity, rest)
		if !take.GreaterThan(decimal.Zero) {
			continue
		}
		if err := movRepo.UpdateLayerRemaining(ctx, layer.ID, layer.RemainingQuantity.Sub(take)); err != nil {
			return nil, err
		}
		breakdown = append(breakdown, entity.CostBreakdownEntry{
			ID:               uuid.New().String(),
			SourceMovementID: layer.ID,
			NoteLineID:       noteLineID,
			EntryDate:        now,
			Quantity:         take,
			UnitCost:         layer.UnitCost,
			CostType:         entity.CostTypeReal,
		})
		rest = rest.Sub(take)
	}

	provisional := false
	if rest.GreaterThan(decimal.Zero) {
		// Faltante de stock: mejor esfuerzo con el último costo conocido.
		lastCost, err := movRepo.LastKnownUnitCost(ctx, product.ID)
		if err != nil {
			return nil, err
		}
		if lastCost.IsZero() {
			lastCost = product.ReferenceCost
		}
		breakdown = append(breakdown, entity.CostBreakdownEntry{
			ID:         uuid.New().String(),
			NoteLineID: noteLineID,
			EntryDate:  now,
			Quantity:   rest,
			UnitCost:   lastCost,
			CostType:   entity.CostTypeProvisional,
		})
		provisional = true
		if uc.log != nil {
			uc.log.Warn().
				Str("product_id", product.ID).
				Str("reference_id", referenceID).
				Str("faltante", rest.String()).
				Msg("costeo provisional: capas FIFO insuficientes, pendiente de conciliar")
		}
	}

	unitCost := domaininv.WeightedUnitCost(breakdown)
	lineCost := domaininv.LineCost(breakdown)

	mov := &entity.StockMovement{
		ID:          uuid.New().String(),
		CompanyID:   product.CompanyID,
		ProductID:   product.ID,
		ItemKind:    product.Kind,
		Type:        movType,
		Quantity:    quantity,
		UnitCost:    unitCost,
		Location:    location,
		ReferenceID: referenceID,
		Date:        now,
		CreatedAt:   now,
		CreatedBy:   userID,
	}
	if err := movRepo.Create(ctx, mov); err != nil {
		return nil, err
	}
	for i := range breakdown {
		if err := movRepo.CreateBreakdownEntry(ctx, &breakdown[i]); err != nil {
			return nil, err
		}
	}

	return &entity.MovementCost{
		UnitCostFIFO: unitCost,
		LineCostFIFO: lineCost,
		Breakdown:    breakdown,
		Provisional:  provisional,
	}, nil
}

// ReservationRelease identifica la reserva de una línea de pedido a liberar.
type ReservationRelease struct {
	OrderLineID string
	Quantity    decimal.Decimal
}

// ReleaseReservationsInTx decrementa el contador de reserva de cada línea de
// pedido referenciada. La guarda contra doble liberación (flag por línea de
// nota) la administra el llamador, que conoce el documento originante.
func (uc *LedgerUseCase) ReleaseReservationsInTx(ctx context.Context, orderRepo repository.OrderRepository, releases []ReservationRelease) error {
	for _, r := range releases {
		if r.OrderLineID == "" || !r.Quantity.GreaterThan(decimal.Zero) {
			continue
		}
		if err := orderRepo.ReleaseReservation(ctx, r.OrderLineID, r.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// Available devuelve la cantidad disponible (suma de remanentes de capas).
func (uc *LedgerUseCase) Available(ctx context.Context, companyID, productID string) (decimal.Decimal, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return decimal.Zero, err
	}
	if product == nil {
		return decimal.Zero, domain.ErrNotFound
	}
	if product.CompanyID != companyID {
		return decimal.Zero, domain.ErrForbidden
	}
	var qty decimal.Decimal
	err = uc.txRunner.Run(ctx, func(movRepo repository.StockMovementRepository, _ repository.OrderRepository) error {
		q, err := movRepo.Available(ctx, productID)
		if err != nil {
			return err
		}
		qty = q
		return nil
	})
	return qty, err
}

// ListMovements devuelve el historial de movimientos del producto.
func (uc *LedgerUseCase) ListMovements(ctx context.Context, companyID, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if product.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	var list []*entity.StockMovement
	err = uc.txRunner.Run(ctx, func(movRepo repository.StockMovementRepository, _ repository.OrderRepository) error {
		l, err := movRepo.ListByProduct(ctx, productID, from, to, limit, offset)
		if err != nil {
			return err
		}
		list = l
		return nil
	})
	return list, err
}
