package fulfillment

import (
	"context"

	"github.com/jhoicas/Distribucion-api/internal/domain"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	domainrules "github.com/jhoicas/Distribucion-api/internal/domain/fulfillment"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

// CancelDeliveryNote anula una nota en tránsito. Solo es legal desde IN_TRANSIT:
// tras la entrega física el stock ya se consumió y no hay vuelta atrás por esta
// vía. No toca el libro de inventario (en tránsito aún no hubo salida).
// La entrega vuelve a SCHEDULED con el flag de nota limpio, y el pedido se
// recalcula desde las entregas hermanas restantes.
func (uc *UseCase) CancelDeliveryNote(ctx context.Context, companyID, userID, noteID, reason string) (*entity.DeliveryNote, error) {
	if err := validateCancelReason(reason); err != nil {
		return nil, err
	}
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
	if note.Status != entity.NoteStatusInTransit {
		return nil, domain.ErrConflict
	}

	err = uc.txRunner.RunFulfillment(ctx, func(
		noteRepo repository.DeliveryNoteRepository,
		deliveryRepo repository.DeliveryRepository,
		orderRepo repository.OrderRepository,
		_ repository.StockMovementRepository,
		_ repository.SequenceRepository,
	) error {
		if err := noteRepo.UpdateStatus(ctx, noteID, entity.NoteStatusCancelled, reason); err != nil {
			return err
		}
		if err := deliveryRepo.UpdateStatus(ctx, note.DeliveryID, entity.DeliveryStatusScheduled); err != nil {
			return err
		}
		if err := deliveryRepo.SetNoticed(ctx, note.DeliveryID, false); err != nil {
			return err
		}
		siblings, err := deliveryRepo.ListByOrder(ctx, note.OrderID)
		if err != nil {
			return err
		}
		for _, s := range siblings {
			if s.ID == note.DeliveryID {
				s.Status = entity.DeliveryStatusScheduled
			}
		}
		return orderRepo.UpdateStatus(ctx, note.OrderID, domainrules.OrderStatusAfterDelivery(siblings))
	})
	if err != nil {
		return nil, err
	}

	note.Status = entity.NoteStatusCancelled
	note.CancelReason = reason
	uc.log.Info().Str("note_id", noteID).Str("user_id", userID).Msg("nota de entrega anulada")
	return note, nil
}
