// Package pdfgen produces the statement-of-account PDF attached to
// follow-up emails. It is the repository's document-generation collaborator:
// callers receive either complete PDF bytes or a definite error, never a
// partial document.
package pdfgen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog"

	"dunning/internal/logger"
	"dunning/internal/pipeline"
	"dunning/pkg/models"
)

// ErrUnknownClient is returned when the requested client is not part of the
// current cycle.
var ErrUnknownClient = errors.New("client not found in current cycle")

// Producer generates an invoice document for a client. partnerRef is the
// accounting system's partner identifier, kept so alternative producers can
// fetch the official document remotely.
type Producer interface {
	InvoiceDocument(ctx context.Context, clientName string, partnerRef int64) ([]byte, error)
}

// StatementProducer renders a statement of account from the cycle's client
// groups using gofpdf.
type StatementProducer struct {
	cycle *pipeline.Cycle
	log   zerolog.Logger
}

// NewStatementProducer creates a producer over the given cycle.
func NewStatementProducer(cycle *pipeline.Cycle) *StatementProducer {
	return &StatementProducer{
		cycle: cycle,
		log:   logger.WithComponent("pdfgen"),
	}
}

// InvoiceDocument implements Producer.
func (p *StatementProducer) InvoiceDocument(_ context.Context, clientName string, partnerRef int64) ([]byte, error) {
	group, ok := p.cycle.GroupFor(clientName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownClient, clientName)
	}
	if len(group.Invoices) == 0 {
		return nil, pipeline.ErrEmptyGroup
	}

	data, err := p.render(group)
	if err != nil {
		return nil, fmt.Errorf("pdfgen: statement for %q failed: %w", clientName, err)
	}

	p.log.Debug().
		Str("client", clientName).
		Int64("partner_ref", partnerRef).
		Int("bytes", len(data)).
		Msg("Statement PDF generated")
	return data, nil
}

func (p *StatementProducer) render(g pipeline.ClientGroup) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Statement of Account", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, g.CompanyName())
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, "Statement of account for "+g.ClientName)
	pdf.Ln(7)
	pdf.Cell(0, 7, "As of "+p.cycle.ReferenceDate.Format(pipeline.DateFormat))
	pdf.Ln(12)

	p.renderTable(pdf, g)

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(118, 8, "Total due", "T", 0, "L", false, 0, "")
	pdf.CellFormat(62, 8, g.CurrencySymbol()+models.FormatCents(g.TotalAmount()), "T", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (p *StatementProducer) renderTable(pdf *gofpdf.Fpdf, g pipeline.ClientGroup) {
	widths := []float64{45, 24, 24, 49, 38}
	headers := []string{"Reference", "Date", "Due date", "Origin", "Amount"}

	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, inv := range g.Invoices {
		date := ""
		if !inv.InvoiceDate.IsZero() {
			date = inv.InvoiceDate.Format(pipeline.DateFormat)
		}
		pdf.CellFormat(widths[0], 7, inv.Number, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, date, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 7, inv.DueDate.Format(pipeline.DateFormat), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 7, inv.Origin, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[4], 7, inv.CurrencySymbol+models.FormatCents(inv.AmountDue), "1", 1, "R", false, 0, "")
	}
}

// StatementFilename builds the attachment name for a client statement.
func StatementFilename(clientName string, refDate time.Time) string {
	return fmt.Sprintf("statement-%s-%s.pdf", sanitize(clientName), refDate.Format(pipeline.DateFormat))
}

func sanitize(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		case r == ' ':
			out = append(out, '_')
		}
	}
	return string(out)
}
