package fulfillment

import (
	"context"
	"time"

	"github.com/jhoicas/Distribucion-api/internal/application/inventory"
	"github.com/jhoicas/Distribucion-api/internal/domain"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	domainrules "github.com/jhoicas/Distribucion-api/internal/domain/fulfillment"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

// ConfirmResult es el resultado de confirmar una nota de entrega.
type ConfirmResult struct {
	Note *entity.DeliveryNote
	// ProvisionalCosting avisa que alguna línea quedó con costo provisional
	// por faltante de capas FIFO (advertencia, no error).
	ProvisionalCosting bool
}

// ConfirmDeliveryNote ejecuta la transición IN_TRANSIT -> DELIVERED en una sola
// transacción: (a) libera las reservas de las líneas de pedido de esta nota,
// (b) registra la salida FIFO por cada línea y persiste el desglose de costo,
// (c) marca la nota DELIVERED, (d) marca la entrega DELIVERED y (e) recalcula
// el estado del pedido releyendo las entregas hermanas. Cualquier paso que
// falle aborta la transacción completa: nunca queda stock consumido con
// estados sin actualizar.
func (uc *UseCase) ConfirmDeliveryNote(ctx context.Context, companyID, userID, noteID string) (*ConfirmResult, error) {
	note, err := uc.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, domain.ErrNotFound
	}
	if note.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	// Rechazo por conflicto de estado ANTES de cualquier efecto; una segunda
	// confirmación no altera nada.
	if !domainrules.NoteCanTransition(note.Status, entity.NoteStatusDelivered) {
		return nil, domain.ErrConflict
	}

	now := time.Now()
	provisional := false
	err = uc.txRunner.RunFulfillment(ctx, func(
		noteRepo repository.DeliveryNoteRepository,
		deliveryRepo repository.DeliveryRepository,
		orderRepo repository.OrderRepository,
		movRepo repository.StockMovementRepository,
		_ repository.SequenceRepository,
	) error {
		lines, err := noteRepo.GetLines(ctx, noteID)
		if err != nil {
			return err
		}
		delivery, err := deliveryRepo.GetByID(ctx, note.DeliveryID)
		if err != nil {
			return err
		}
		if delivery == nil {
			return domain.ErrNotFound
		}

		for _, line := range lines {
			// (a) liberar la reserva de la línea de pedido exactamente una vez
			if line.OrderLineID != "" && !line.ReservationReleased {
				releases := []inventory.ReservationRelease{{OrderLineID: line.OrderLineID, Quantity: line.Quantity}}
				if err := uc.ledger.ReleaseReservationsInTx(ctx, orderRepo, releases); err != nil {
					return err
				}
				if err := noteRepo.MarkReservationReleased(ctx, line.ID); err != nil {
					return err
				}
				if err := orderRepo.AddDeliveredQty(ctx, line.OrderLineID, line.Quantity); err != nil {
					return err
				}
			}

			// (b) salida FIFO y desglose de costo sobre la línea
			if line.ItemKind == entity.ItemKindService || line.IsManual {
				continue // sin inventario
			}
			product, err := uc.productRepo.GetByID(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return domain.ErrNotFound
			}
			cost, err := uc.ledger.RegisterSaleOutInTx(ctx, movRepo, product,
				line.Quantity, entity.MovementTypeSaleOut, delivery.Location,
				note.ID, line.ID, userID, now)
			if err != nil {
				return err
			}
			line.UnitCostFIFO = cost.UnitCostFIFO
			line.LineCostFIFO = cost.LineCostFIFO
			line.CostProvisional = cost.Provisional
			if cost.Provisional {
				provisional = true
			}
			if err := noteRepo.UpdateLineCost(ctx, line); err != nil {
				return err
			}
		}

		// (c) nota entregada
		if err := noteRepo.MarkDelivered(ctx, noteID); err != nil {
			return err
		}
		// (d) entrega entregada
		if err := deliveryRepo.UpdateStatus(ctx, delivery.ID, entity.DeliveryStatusDelivered); err != nil {
			return err
		}
		// (e) recálculo del pedido releyendo hermanas dentro de la misma tx
		siblings, err := deliveryRepo.ListByOrder(ctx, note.OrderID)
		if err != nil {
			return err
		}
		for _, s := range siblings {
			if s.ID == delivery.ID {
				s.Status = entity.DeliveryStatusDelivered
			}
		}
		return orderRepo.UpdateStatus(ctx, note.OrderID, domainrules.OrderStatusAfterDelivery(siblings))
	})
	if err != nil {
		return nil, err
	}

	note.Status = entity.NoteStatusDelivered
	note.DeliveredAt = &now
	if provisional {
		uc.log.Warn().Str("note_id", noteID).Msg("nota confirmada con costeo provisional")
	}
	return &ConfirmResult{Note: note, ProvisionalCosting: provisional}, nil
}
