// Package sequence encapsula la numeración consecutiva de documentos fiscales.
// Es el único punto del núcleo que toca el contador: nadie más hace
// read-modify-write sobre series_counters.
package sequence

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Distribucion-api/internal/domain"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

// NumberingService emite números consecutivos sin huecos por (serie, año).
// Siempre se invoca con un SequenceRepository atado a la transacción del
// llamador: si esa transacción falla, nada queda a medio numerar.
type NumberingService struct {
	seriesRepo repository.SeriesRepository
}

// NewNumberingService construye el servicio.
func NewNumberingService(seriesRepo repository.SeriesRepository) *NumberingService {
	return &NumberingService{seriesRepo: seriesRepo}
}

// NextNumber emite el siguiente consecutivo de la serie para el año dado
// (0 = año actual). El contador arranca en 1 al primer uso de cada año.
func (s *NumberingService) NextNumber(ctx context.Context, seqRepo repository.SequenceRepository, series string, year int) (entity.DocumentNumber, error) {
	if series == "" {
		return entity.DocumentNumber{}, domain.ErrInvalidInput
	}
	if year == 0 {
		year = time.Now().Year()
	}
	n, err := seqRepo.NextNumber(ctx, series, year)
	if err != nil {
		return entity.DocumentNumber{}, fmt.Errorf("siguiente consecutivo %s/%d: %w", series, year, err)
	}
	return entity.DocumentNumber{Series: series, Number: n, Year: year}, nil
}

// ResolveSeries determina la serie a usar para un tipo de documento.
// Si el llamador no eligió y hay varias activas, devuelve la lista de opciones
// para que seleccione explícitamente (nunca se adivina).
func (s *NumberingService) ResolveSeries(ctx context.Context, companyID, docType, requested string) (series string, choices []string, err error) {
	if requested != "" {
		found, err := s.seriesRepo.GetByName(ctx, companyID, requested)
		if err != nil {
			return "", nil, err
		}
		if found == nil || !found.IsActive || found.DocType != docType {
			return "", nil, domain.ErrNotFound
		}
		return found.Name, nil, nil
	}
	active, err := s.seriesRepo.ListActive(ctx, companyID, docType)
	if err != nil {
		return "", nil, err
	}
	switch len(active) {
	case 0:
		// sin serie configurada no se puede emitir el documento
		return "", nil, domain.ErrDependency
	case 1:
		return active[0].Name, nil, nil
	default:
		names := make([]string, 0, len(active))
		for _, s := range active {
			names = append(names, s.Name)
		}
		return "", names, nil
	}
}

// Format produce el número persistido `<serie>-<consecutivo con ceros>`.
// El consecutivo se reinicia en 1 cada año calendario por serie.
func Format(n entity.DocumentNumber) string {
	return fmt.Sprintf("%s-%06d", n.Series, n.Number)
}
