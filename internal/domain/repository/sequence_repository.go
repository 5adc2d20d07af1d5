package repository

import (
	"context"

	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
)

// SequenceRepository define el puerto del contador consecutivo por (serie, año).
// NextNumber debe ser un incremento atómico (find-and-increment-or-create): dos
// llamadas concurrentes jamás devuelven el mismo número. Se ejecuta dentro de la
// transacción del llamador; si la tx hace rollback, el número queda sin usar.
type SequenceRepository interface {
	NextNumber(ctx context.Context, series string, year int) (int64, error)
}

// SeriesRepository define el puerto del catálogo de series de numeración.
type SeriesRepository interface {
	GetByName(ctx context.Context, companyID, name string) (*entity.Series, error)
	// ListActive devuelve las series activas para un tipo de documento; si hay
	// más de una y el llamador no eligió, se le pide selección explícita.
	ListActive(ctx context.Context, companyID, docType string) ([]*entity.Series, error)
	Create(ctx context.Context, s *entity.Series) error
}
