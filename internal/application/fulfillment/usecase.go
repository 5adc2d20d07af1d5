// Package fulfillment implementa los sagas transaccionales de la cadena
// Pedido -> Entrega -> Nota de entrega. Cada transición es una sola función
// transaccional que relee los documentos hermanos dentro de la misma tx;
// nunca handlers de eventos independientes por documento.
package fulfillment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Distribucion-api/internal/application/inventory"
	"github.com/jhoicas/Distribucion-api/internal/application/sequence"
	"github.com/jhoicas/Distribucion-api/internal/domain"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	domainrules "github.com/jhoicas/Distribucion-api/internal/domain/fulfillment"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
	"github.com/jhoicas/Distribucion-api/pkg/logger"
)

// longitud mínima del motivo de anulación de una nota.
const minCancelReasonLen = 10

// UseCase orquesta creación, confirmación y anulación de notas de entrega.
type UseCase struct {
	txRunner     TxRunner
	numbering    *sequence.NumberingService
	ledger       *inventory.LedgerUseCase
	deliveryRepo repository.DeliveryRepository
	noteRepo     repository.DeliveryNoteRepository
	orderRepo    repository.OrderRepository
	productRepo  repository.ProductRepository
	log          *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	txRunner TxRunner,
	numbering *sequence.NumberingService,
	ledger *inventory.LedgerUseCase,
	deliveryRepo repository.DeliveryRepository,
	noteRepo repository.DeliveryNoteRepository,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner:     txRunner,
		numbering:    numbering,
		ledger:       ledger,
		deliveryRepo: deliveryRepo,
		noteRepo:     noteRepo,
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		log:          log,
	}
}

// CreateNoteResult es el resultado de CreateDeliveryNote: o la nota creada, o
// la petición de selección de serie cuando hay varias activas y no se eligió.
type CreateNoteResult struct {
	Note                   *entity.DeliveryNote
	Lines                  []*entity.DeliveryNoteLine
	RequireSeriesSelection bool
	SeriesChoices          []string
}

// CreateDeliveryNote emite la nota de entrega de una entrega programada:
// congela las líneas de la entrega (snapshot estructural, no referencia viva),
// obtiene el consecutivo y pasa la entrega a IN_TRANSIT, todo en una tx.
func (uc *UseCase) CreateDeliveryNote(ctx context.Context, companyID, userID, deliveryID, requestedSeries string) (*CreateNoteResult, error) {
	if deliveryID == "" {
		return nil, domain.ErrInvalidInput
	}
	delivery, err := uc.deliveryRepo.GetByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	if delivery == nil {
		return nil, domain.ErrNotFound
	}
	if delivery.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	if !domainrules.DeliveryCanTransition(delivery.Status, entity.DeliveryStatusInTransit) {
		return nil, domain.ErrConflict
	}
	if delivery.Noticed {
		// ya tiene nota vigente
		return nil, domain.ErrConflict
	}

	seriesName, choices, err := uc.numbering.ResolveSeries(ctx, companyID, entity.DocTypeDeliveryNote, requestedSeries)
	if err != nil {
		return nil, err
	}
	if seriesName == "" {
		return &CreateNoteResult{RequireSeriesSelection: true, SeriesChoices: choices}, nil
	}

	order, err := uc.orderRepo.GetByID(ctx, delivery.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}

	deliveryLines, err := uc.deliveryRepo.GetLines(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	if len(deliveryLines) == 0 {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	note := &entity.DeliveryNote{
		ID:         uuid.New().String(),
		CompanyID:  companyID,
		DeliveryID: delivery.ID,
		OrderID:    order.ID,
		ClientID:   order.ClientID,
		Status:     entity.NoteStatusInTransit,
		IssuedAt:   now,
		CreatedAt:  now,
		UpdatedAt:  now,
		CreatedBy:  userID,
	}

	var noteLines []*entity.DeliveryNoteLine
	err = uc.txRunner.RunFulfillment(ctx, func(
		noteRepo repository.DeliveryNoteRepository,
		deliveryRepo repository.DeliveryRepository,
		_ repository.OrderRepository,
		_ repository.StockMovementRepository,
		seqRepo repository.SequenceRepository,
	) error {
		number, err := uc.numbering.NextNumber(ctx, seqRepo, seriesName, now.Year())
		if err != nil {
			return err
		}
		note.Number = number

		// Snapshot de líneas: copia estructural de las líneas de la entrega.
		for _, dl := range deliveryLines {
			kind := entity.ItemKindProduct
			if p, err := uc.productRepo.GetByID(ctx, dl.ProductID); err == nil && p != nil {
				kind = p.Kind
			}
			noteLines = append(noteLines, &entity.DeliveryNoteLine{
				ID:          uuid.New().String(),
				NoteID:      note.ID,
				OrderLineID: dl.OrderLineID,
				ProductID:   dl.ProductID,
				ProductName: dl.ProductName,
				ItemKind:    kind,
				Quantity:    dl.Quantity,
				UnitPrice:   dl.UnitPrice,
				VATRate:     dl.VATRate,
			})
		}
		if err := noteRepo.Create(ctx, note, noteLines); err != nil {
			return err
		}
		if err := deliveryRepo.UpdateStatus(ctx, delivery.ID, entity.DeliveryStatusInTransit); err != nil {
			return err
		}
		return deliveryRepo.SetNoticed(ctx, delivery.ID, true)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("note_id", note.ID).
		Str("number", sequence.Format(note.Number)).
		Msg("nota de entrega emitida")
	return &CreateNoteResult{Note: note, Lines: noteLines}, nil
}

// validateCancelReason exige un motivo con longitud mínima.
func validateCancelReason(reason string) error {
	if len(strings.TrimSpace(reason)) < minCancelReasonLen {
		return domain.ErrInvalidInput
	}
	return nil
}
