// Package pdf genera el reporte de valorización de inventario de un ítem con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre del ítem + método │ Fecha de generación     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: Existencias │ Valor total │ Costo promedio         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  KÁRDEX: Fecha | Tipo | Cant. | Costo unit. | Costo | Saldo  │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strings"

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

	"github.com/jhoicas/warehouse-ledger/internal/application/inventory"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
)

var _ inventory.ReportRenderer = (*ValuationReportGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// ValuationReportGenerator implementa inventory.ReportRenderer usando Maroto v2.
type ValuationReportGenerator struct {
	author string
}

// NewValuationReportGenerator construye el generador. author se usa como metadato del PDF.
func NewValuationReportGenerator(author string) *ValuationReportGenerator {
	return &ValuationReportGenerator{author: author}
}

// RenderValuation genera el PDF y devuelve sus bytes.
func (g *ValuationReportGenerator) RenderValuation(data inventory.ReportData) ([]byte, error) {
	if data.Item == nil {
		return nil, fmt.Errorf("pdf: ítem requerido")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Valorización de inventario - "+data.Item.Name, true).
		WithAuthor(g.author, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(data.Valuation))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(ledgerHeaderRow())
	m.AddRows(ledgerRows(data.Movements)...)
	if len(data.Movements) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("El ítem no tiene movimientos registrados.", props.Text{
				Size: 8, Align: align.Center, Color: colorGray, Top: 2,
			}),
		)))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: nombre del ítem y método (izq), fecha de generación (der).
func headerRow(data inventory.ReportData) core.Row {
	return row.New(18).Add(
		col.New(8).Add(
			text.New(data.Item.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Método de costeo: "+methodLabel(data.Item.CostingMethod), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("VALORIZACIÓN DE INVENTARIO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("Generado: "+data.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

// summaryRow: existencias, valor total y costo promedio de lo que queda en bodega.
func summaryRow(v entity.Valuation) core.Row {
	avg := "-"
	if v.QuantityInStock > 0 {
		avg = "$" + formatMoney(v.TotalInventoryValue.Div(decimal.NewFromInt(v.QuantityInStock)))
	}
	cell := func(label, value string) core.Col {
		return col.New(4).Add(
			text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(value, props.Text{Style: fontstyle.Bold, Size: 12, Top: 6}),
		)
	}
	return row.New(16).Add(
		cell("EXISTENCIAS", fmt.Sprintf("%d", v.QuantityInStock)),
		cell("VALOR TOTAL", "$"+formatMoney(v.TotalInventoryValue)),
		cell("COSTO PROMEDIO", avg),
	)
}

func ledgerHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 3, align.Left),
		h("Tipo", 2, align.Left),
		h("Cant.", 1, align.Right),
		h("Costo unit.", 2, align.Right),
		h("Costo", 2, align.Right),
		h("Saldo", 2, align.Right),
	)
}

// ledgerRows: una fila por movimiento con el saldo acumulado de existencias.
func ledgerRows(movements []*entity.Movement) []core.Row {
	rows := make([]core.Row, 0, len(movements))
	var balance int64
	for _, mv := range movements {
		kind, unit, color := "Entrada", "$"+formatMoney(mv.UnitCost), colorGray
		if mv.Kind == entity.MovementOutput {
			balance -= mv.Quantity
			kind, unit, color = "Salida", "-", colorRed
		} else {
			balance += mv.Quantity
		}
		cell := func(s string, size int, a align.Type) core.Col {
			return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
		}
		rows = append(rows, row.New(6).Add(
			cell(mv.CreatedAt.Format("02/01/2006 15:04:05"), 3, align.Left),
			col.New(2).Add(text.New(kind, props.Text{Size: 8, Top: 1, Left: 1, Color: color})),
			cell(fmt.Sprintf("%d", mv.Quantity), 1, align.Right),
			cell(unit, 2, align.Right),
			cell("$"+formatMoney(mv.CostBasis()), 2, align.Right),
			cell(fmt.Sprintf("%d", balance), 2, align.Right),
		))
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func methodLabel(m entity.CostingMethod) string {
	switch m {
	case entity.CostingFIFO:
		return "PEPS (FIFO)"
	case entity.CostingWeightedAverage:
		return "Promedio ponderado"
	}
	return string(m)
}

// formatMoney formatea con 2 decimales y separador de miles: 1234567.5 → 1.234.567,50.
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixedBank(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	out := b.String() + "," + frac
	if neg {
		out = "-" + out
	}
	return out
}
