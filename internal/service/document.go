package service

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	documentTitle = "Shopping list"

	sizeTitle  = 24
	sizeText   = 20
	sizeFooter = 14

	tableLeft   = 100.0
	tableTop    = 110.0
	titleY      = 72.0
	rowHeight   = sizeText + 6.0
	nameColumn  = 240.0
	countColumn = 70.0
	unitColumn  = 110.0
)

// DocumentService renders the aggregated shopping list as a PDF held
// entirely in memory. An optional TTF font can be configured for catalogs
// with non-Latin ingredient names; without one the built-in core font is
// used, which needs no font file at all.
type DocumentService struct {
	fontPath string
}

func NewDocumentService(fontPath string) *DocumentService {
	return &DocumentService{fontPath: fontPath}
}

// RenderShoppingList produces the downloadable document: a title, one row
// per aggregated ingredient (name, total, unit, lower-cased), and a footer
// with the generation time placed a fixed offset below the table. An empty
// row set still yields a valid document.
func (s *DocumentService) RenderShoppingList(rows []AggregatedIngredient) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "A4", "")

	font := "Helvetica"
	if s.fontPath != "" {
		font = "catalog"
		pdf.AddUTF8Font(font, "", s.fontPath)
		if pdf.Err() {
			return nil, fmt.Errorf("failed to load font %s: %w", s.fontPath, pdf.Error())
		}
	}

	pdf.SetTitle(documentTitle, true)
	pdf.AddPage()

	pdf.SetFont(font, "", sizeTitle)
	pdf.Text(200, titleY, documentTitle)

	pdf.SetFont(font, "", sizeText)
	pdf.SetXY(tableLeft, tableTop)
	for _, row := range rows {
		pdf.CellFormat(nameColumn, rowHeight, strings.ToLower(row.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(countColumn, rowHeight, strconv.Itoa(row.TotalAmount), "1", 0, "L", false, 0, "")
		pdf.CellFormat(unitColumn, rowHeight, strings.ToLower(row.MeasurementUnit), "1", 1, "L", false, 0, "")
		pdf.SetX(tableLeft)
	}

	tableBottom := tableTop + float64(len(rows))*rowHeight
	pdf.SetFont(font, "", sizeFooter)
	pdf.Text(
		tableLeft,
		tableBottom+2*sizeText,
		fmt.Sprintf("Generated with Foodgram at %s", time.Now().Format("15:04:05")),
	)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render shopping list: %w", err)
	}
	return buf.Bytes(), nil
}
