package billing

import (
	"context"

	"github.com/jhoicas/Distribucion-api/internal/domain"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	domainrules "github.com/jhoicas/Distribucion-api/internal/domain/fulfillment"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

// CancelInvoice anula una factura individual (no perteneciente a un grupo de
// división) y devuelve sus notas y entregas origen al estado previo a la
// facturación, recalculando los pedidos relacionados.
func (uc *InvoiceUseCase) CancelInvoice(ctx context.Context, companyID, invoiceID, reason string) error {
	if reason == "" {
		return domain.ErrInvalidInput
	}
	inv, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return err
	}
	if inv == nil {
		return domain.ErrNotFound
	}
	if inv.CompanyID != companyID {
		return domain.ErrForbidden
	}
	if inv.SplitGroupID != "" {
		// las hermanas de un grupo solo se anulan en bloque
		return domain.ErrConflict
	}
	if !inv.Cancellable() {
		return domain.ErrIntegrity
	}

	return uc.txRunner.RunBilling(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		noteRepo repository.DeliveryNoteRepository,
		deliveryRepo repository.DeliveryRepository,
		orderRepo repository.OrderRepository,
		_ repository.SequenceRepository,
	) error {
		if err := invoiceRepo.UpdateStatus(ctx, inv.ID, entity.InvoiceStatusCancelled, reason); err != nil {
			return err
		}
		return uc.releaseSources(ctx, noteRepo, deliveryRepo, orderRepo, inv.SourceNoteIDs)
	})
}

// CancelSplitGroup anula en bloque TODAS las facturas hermanas de un grupo de
// división. Es todo-o-nada: si una sola hermana no es anulable (enviada o
// aceptada externamente, con pagos aplicados o aprobada) se rechaza el grupo
// completo y ninguna cambia de estado. La anulación devuelve las notas y
// entregas origen a su estado previo a la facturación.
func (uc *InvoiceUseCase) CancelSplitGroup(ctx context.Context, companyID, splitGroupID, reason string) error {
	if splitGroupID == "" || reason == "" {
		return domain.ErrInvalidInput
	}
	siblings, err := uc.invoiceRepo.ListBySplitGroup(ctx, splitGroupID)
	if err != nil {
		return err
	}
	if len(siblings) == 0 {
		return domain.ErrNotFound
	}
	for _, s := range siblings {
		if s.CompanyID != companyID {
			return domain.ErrForbidden
		}
		if !s.Cancellable() {
			return domain.ErrIntegrity
		}
	}

	// las hermanas comparten las mismas notas origen
	sourceNoteIDs := siblings[0].SourceNoteIDs

	return uc.txRunner.RunBilling(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		noteRepo repository.DeliveryNoteRepository,
		deliveryRepo repository.DeliveryRepository,
		orderRepo repository.OrderRepository,
		_ repository.SequenceRepository,
	) error {
		for _, s := range siblings {
			// re-verificación dentro de la tx: el estado pudo cambiar
			cur, err := invoiceRepo.GetForUpdate(ctx, s.ID)
			if err != nil {
				return err
			}
			if cur == nil {
				return domain.ErrNotFound
			}
			if !cur.Cancellable() {
				return domain.ErrIntegrity
			}
			if err := invoiceRepo.UpdateStatus(ctx, s.ID, entity.InvoiceStatusCancelled, reason); err != nil {
				return err
			}
		}
		return uc.releaseSources(ctx, noteRepo, deliveryRepo, orderRepo, sourceNoteIDs)
	})
}

// releaseSources devuelve notas y entregas a DELIVERED (estado pre-factura) y
// recalcula los pedidos afectados.
func (uc *InvoiceUseCase) releaseSources(
	ctx context.Context,
	noteRepo repository.DeliveryNoteRepository,
	deliveryRepo repository.DeliveryRepository,
	orderRepo repository.OrderRepository,
	noteIDs []string,
) error {
	orderIDs := make(map[string]struct{})
	for _, noteID := range noteIDs {
		note, err := noteRepo.GetByID(ctx, noteID)
		if err != nil {
			return err
		}
		if note == nil {
			return domain.ErrNotFound
		}
		if !domainrules.NoteCanTransition(note.Status, entity.NoteStatusDelivered) {
			return domain.ErrConflict
		}
		if err := noteRepo.UpdateStatus(ctx, note.ID, entity.NoteStatusDelivered, ""); err != nil {
			return err
		}
		if err := deliveryRepo.UpdateStatus(ctx, note.DeliveryID, entity.DeliveryStatusDelivered); err != nil {
			return err
		}
		orderIDs[note.OrderID] = struct{}{}
	}
	for orderID := range orderIDs {
		siblings, err := deliveryRepo.ListByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if err := orderRepo.UpdateStatus(ctx, orderID, domainrules.OrderStatusAfterInvoicing(siblings)); err != nil {
			return err
		}
	}
	return nil
}
