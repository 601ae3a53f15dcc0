package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/cafe-stock-api/internal/domain"
	"github.com/jhoicas/cafe-stock-api/internal/domain/entity"
	"github.com/jhoicas/cafe-stock-api/internal/domain/repository"
	"github.com/jhoicas/cafe-stock-api/pkg/logger"
)

// ReportGenerator renderiza el reporte de mermas de un período.
type ReportGenerator interface {
	Generate(ctx context.Context, records []*entity.SpoilageRecord, from, to time.Time) ([]byte, error)
}

// SpoilageReportUseCase arma el reporte PDF de mermas entre dos fechas.
type SpoilageReportUseCase struct {
	spoilRepo repository.SpoilageRepository
	gen       ReportGenerator
	log       *logger.Logger
}

// NewSpoilageReportUseCase construye el caso de uso.
func NewSpoilageReportUseCase(spoilRepo repository.SpoilageRepository, gen ReportGenerator, log *logger.Logger) *SpoilageReportUseCase {
	return &SpoilageReportUseCase{spoilRepo: spoilRepo, gen: gen, log: log}
}

// GenerateReport devuelve los bytes del PDF con las mermas de [from, to].
func (uc *SpoilageReportUseCase) GenerateReport(ctx context.Context, from, to time.Time) ([]byte, error) {
	if to.Before(from) {
		return nil, domain.ErrInvalidInput
	}
	records, err := uc.spoilRepo.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	out, err := uc.gen.Generate(ctx, records, from, to)
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Int("records", len(records)).
		Time("from", from).
		Time("to", to).
		Msg("reporte de mermas generado")
	return out, nil
}
