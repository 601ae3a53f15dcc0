// Package pdf genera el reporte de mermas en PDF (Maroto v2): una fila por
// línea de merma con el total desperdiciado del período al pie.
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/cafe-stock-api/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 92, Green: 64, Blue: 51}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// SpoilageReportGenerator genera el reporte de mermas de un período.
type SpoilageReportGenerator struct{}

// NewSpoilageReportGenerator construye el generador.
func NewSpoilageReportGenerator() *SpoilageReportGenerator { return &SpoilageReportGenerator{} }

// Generate genera el PDF y devuelve sus bytes.
func (g *SpoilageReportGenerator) Generate(
	_ context.Context,
	records []*entity.SpoilageRecord,
	from, to time.Time,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de Mermas", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(from, to))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())

	total := decimal.Zero
	for _, rec := range records {
		total = total.Add(rec.TotalWaste)
		for _, it := range rec.Items {
			m.AddRows(itemRow(rec, it))
		}
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(len(records), total))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar reporte de mermas: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(from, to time.Time) core.Row {
	return row.New(14).Add(
		col.New(7).Add(
			text.New("Reporte de Mermas", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(5).Add(
			text.New(fmt.Sprintf("Período: %s — %s", from.Format("02/01/2006"), to.Format("02/01/2006")), props.Text{
				Size: 9, Top: 4, Align: align.Right, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	header := props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary}
	return row.New(7).Add(
		col.New(2).Add(text.New("Fecha", header)),
		col.New(3).Add(text.New("Ingrediente", header)),
		col.New(3).Add(text.New("Lote", header)),
		col.New(2).Add(text.New("Cantidad", header)),
		col.New(2).Add(text.New("Motivo", header)),
	)
}

func itemRow(rec *entity.SpoilageRecord, it entity.SpoilageItem) core.Row {
	cell := props.Text{Size: 8}
	batch := it.BatchNumber
	if batch == "" {
		batch = "— (sin lote)"
	}
	origin := it.Reason
	if rec.Auto {
		origin = it.Reason + " (auto)"
	}
	return row.New(6).Add(
		col.New(2).Add(text.New(rec.CreatedAt.Format("02/01/2006"), cell)),
		col.New(3).Add(text.New(it.Snapshot.Name, cell)),
		col.New(3).Add(text.New(batch, cell)),
		col.New(2).Add(text.New(fmt.Sprintf("%s %s", it.Quantity.String(), it.Unit), cell)),
		col.New(2).Add(text.New(origin, cell)),
	)
}

func totalRow(count int, total decimal.Decimal) core.Row {
	return row.New(8).Add(
		col.New(7).Add(
			text.New(fmt.Sprintf("%d registro(s) de merma", count), props.Text{Size: 8, Color: colorGray, Top: 2}),
		),
		col.New(5).Add(
			text.New("Total desperdiciado: "+total.String(), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 1, Color: colorPrimary,
			}),
		),
	)
}
