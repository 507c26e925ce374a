// Package export renders the weekly grid to a PDF document.
package export

import (
	"bytes"
	"context"
	"errors"

	"github.com/ahorrat/weekly-planner/internal/core/domain"
)

// Printer turns an HTML page into PDF bytes.
type Printer interface {
	Print(ctx context.Context, html, footer string) ([]byte, error)
}

var errNotPDF = errors.New("printer returned a non-PDF body")

// PDFExporter implements ports.Exporter.
type PDFExporter struct {
	printer Printer
}

func NewPDFExporter(printer Printer) *PDFExporter {
	return &PDFExporter{printer: printer}
}

func (e *PDFExporter) Export(ctx context.Context, doc domain.Document) ([]byte, error) {
	html, err := RenderHTML(doc)
	if err != nil {
		return nil, err
	}
	data, err := e.printer.Print(ctx, html, footerTemplate)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, errNotPDF
	}
	return data, nil
}
