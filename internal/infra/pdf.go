package infra

// pdf.go — Generación del reporte de valoración de inventario con go-pdf/fpdf.
// Reporte A4 con una fila por producto (nivel 5): código, nombre, stock,
// unidad, estado, costo promedio y valor (stock × costo), más el total al pie.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cocinaclinica/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// FilaInventario es una línea ya clasificada del reporte.
type FilaInventario struct {
	Producto model.Nodo
	Estado   string
	Valor    decimal.Decimal
}

// GenerateInventarioPDF writes the valuation report and returns its path.
// titulo distingue reportes por rama ("Inventario — produccion") del total.
func GenerateInventarioPDF(titulo string, filas []FilaInventario, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("inventario_%s.pdf", time.Now().Format("20060102_150405"))
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, titulo, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, time.Now().Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	// ── Column layout ────────────────────────────────────────────────────────
	colCodigo := contentW * 0.13
	colNombre := contentW * 0.33
	colStock := contentW * 0.12
	colUnidad := contentW * 0.08
	colEstado := contentW * 0.12
	colCosto := contentW * 0.10
	colValor := contentW * 0.12

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(colCodigo, 6, "Código", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colNombre, 6, "Producto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colStock, 6, "Stock", "B", 0, "R", false, 0, "")
	pdf.CellFormat(colUnidad, 6, "Und", "B", 0, "C", false, 0, "")
	pdf.CellFormat(colEstado, 6, "Estado", "B", 0, "C", false, 0, "")
	pdf.CellFormat(colCosto, 6, "Costo", "B", 0, "R", false, 0, "")
	pdf.CellFormat(colValor, 6, "Valor", "B", 1, "R", false, 0, "")

	// ── Rows ─────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 8)
	total := decimal.Zero
	for _, f := range filas {
		p := f.Producto
		nombre := p.Nombre
		if len(nombre) > 38 {
			nombre = nombre[:37] + "…"
		}
		stock := "0"
		if p.StockActual != nil {
			stock = p.StockActual.StringFixed(2)
		}
		unidad := ""
		if p.UnidadStock != nil {
			unidad = *p.UnidadStock
		}
		costo := "-"
		if p.CostoPromedio != nil {
			costo = "$" + p.CostoPromedio.StringFixed(2)
		}

		pdf.CellFormat(colCodigo, 5, p.Codigo, "", 0, "L", false, 0, "")
		pdf.CellFormat(colNombre, 5, nombre, "", 0, "L", false, 0, "")
		pdf.CellFormat(colStock, 5, stock, "", 0, "R", false, 0, "")
		pdf.CellFormat(colUnidad, 5, unidad, "", 0, "C", false, 0, "")
		pdf.CellFormat(colEstado, 5, f.Estado, "", 0, "C", false, 0, "")
		pdf.CellFormat(colCosto, 5, costo, "", 0, "R", false, 0, "")
		pdf.CellFormat(colValor, 5, "$"+f.Valor.StringFixed(2), "", 1, "R", false, 0, "")

		total = total.Add(f.Valor)
	}

	pdf.Ln(2)
	pdf.Line(12, pdf.GetY(), pageW-12, pdf.GetY())
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW-colValor, 7, "VALOR TOTAL:", "", 0, "R", false, 0, "")
	pdf.CellFormat(colValor, 7, "$"+total.StringFixed(2), "", 1, "R", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
