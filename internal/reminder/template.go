// Package reminder renders per-client follow-up messages and tracks each
// outbound draft through its lifecycle.
package reminder

import (
	"fmt"
	"strings"
	"text/template"

	"dunning/internal/pipeline"
	"dunning/pkg/models"
)

// MessageTemplate is the subject and body text for one severity tier. Bodies
// are text/template sources over the fields of templateData.
type MessageTemplate struct {
	Subject string
	Body    string
}

// templateData is the placeholder set available to message bodies.
type templateData struct {
	Client     string
	Company    string
	Total      string // formatted total, e.g. "175.50"
	Symbol     string
	WindowDays int
	Table      string
}

// DefaultTemplates returns the stock message per tier: a friendly nudge, a
// firm reminder and a final notice. The payment windows shrink as the tier
// worsens.
func DefaultTemplates() map[pipeline.Severity]MessageTemplate {
	return map[pipeline.Severity]MessageTemplate{
		pipeline.Recent: {
			Subject: "Payment reminder from {{.Company}}",
			Body: `<p>Dear {{.Client}},</p>
<p>Our records show the following invoices from {{.Company}} are past due:</p>
<pre>{{.Table}}</pre>
<p>The outstanding balance is {{.Symbol}}{{.Total}}. If payment is already on
its way, please disregard this message. Otherwise we kindly ask you to settle
the balance within {{.WindowDays}} days.</p>
<p>Best regards,<br>{{.Company}}</p>`,
		},
		pipeline.Moderate: {
			Subject: "Second reminder: overdue balance with {{.Company}}",
			Body: `<p>Dear {{.Client}},</p>
<p>Despite our previous reminder, the following invoices remain unpaid:</p>
<pre>{{.Table}}</pre>
<p>Please transfer the outstanding {{.Symbol}}{{.Total}} within
{{.WindowDays}} days. If you are experiencing difficulties, contact us so we
can find a solution together.</p>
<p>Regards,<br>{{.Company}}</p>`,
		},
		pipeline.Severe: {
			Subject: "Final notice: overdue balance with {{.Company}}",
			Body: `<p>Dear {{.Client}},</p>
<p>This is a final notice regarding the following seriously overdue invoices:</p>
<pre>{{.Table}}</pre>
<p>Unless the full amount of {{.Symbol}}{{.Total}} is received within
{{.WindowDays}} days, we will have to hand the matter over for collection.</p>
<p>{{.Company}}</p>`,
		},
	}
}

// Renderer turns a client group plus a tier into a subject and body.
// Rendering is pure: the same group, tier and templates always produce the
// same strings, and inputs are never mutated. The reference "today" never
// enters rendering, so output cannot depend on the wall clock.
type Renderer struct {
	templates map[pipeline.Severity]*parsedTemplate
}

type parsedTemplate struct {
	subject *template.Template
	body    *template.Template
}

// NewRenderer parses the given templates. Use DefaultTemplates for the stock
// messages; callers may override individual tiers with user-supplied text.
func NewRenderer(templates map[pipeline.Severity]MessageTemplate) (*Renderer, error) {
	r := &Renderer{templates: make(map[pipeline.Severity]*parsedTemplate, len(templates))}
	for tier, mt := range templates {
		subject, err := template.New(tier.String() + "-subject").Parse(mt.Subject)
		if err != nil {
			return nil, fmt.Errorf("parsing %s subject template: %w", tier, err)
		}
		body, err := template.New(tier.String() + "-body").Parse(mt.Body)
		if err != nil {
			return nil, fmt.Errorf("parsing %s body template: %w", tier, err)
		}
		r.templates[tier] = &parsedTemplate{subject: subject, body: body}
	}
	return r, nil
}

// Render produces the subject and HTML body for a client group at the given
// tier (auto-selected or user override). An empty group is an upstream bug
// and is rejected, never rendered.
func (r *Renderer) Render(g pipeline.ClientGroup, tier pipeline.Severity) (subject, body string, err error) {
	if len(g.Invoices) == 0 {
		return "", "", &RenderError{Client: g.ClientName, Tier: tier.String(), Err: pipeline.ErrEmptyGroup}
	}
	pt, ok := r.templates[tier]
	if !ok {
		return "", "", &RenderError{Client: g.ClientName, Tier: tier.String(), Err: ErrUnknownTier}
	}

	table, err := RenderTable(g)
	if err != nil {
		return "", "", &RenderError{Client: g.ClientName, Tier: tier.String(), Err: err}
	}

	data := templateData{
		Client:     g.ClientName,
		Company:    g.CompanyName(),
		Total:      models.FormatCents(g.TotalAmount()),
		Symbol:     g.CurrencySymbol(),
		WindowDays: tier.PaymentWindowDays(),
		Table:      table,
	}

	var sb, bb strings.Builder
	if err := pt.subject.Execute(&sb, data); err != nil {
		return "", "", &RenderError{Client: g.ClientName, Tier: tier.String(), Err: err}
	}
	if err := pt.body.Execute(&bb, data); err != nil {
		return "", "", &RenderError{Client: g.ClientName, Tier: tier.String(), Err: err}
	}
	return sb.String(), bb.String(), nil
}

// table column widths, fixed for deterministic alignment
const (
	colReference = 18
	colDate      = 10
	colOrigin    = 16
	colAmount    = 12
)

// RenderTable renders the group's invoices as a fixed-column text table:
// reference, date, due date, origin, amount.
func RenderTable(g pipeline.ClientGroup) (string, error) {
	if len(g.Invoices) == 0 {
		return "", pipeline.ErrEmptyGroup
	}

	var b strings.Builder
	writeRow(&b, "Reference", "Date", "Due date", "Origin", "Amount")
	writeRow(&b, strings.Repeat("-", colReference), strings.Repeat("-", colDate),
		strings.Repeat("-", colDate), strings.Repeat("-", colOrigin), strings.Repeat("-", colAmount))

	for _, inv := range g.Invoices {
		date := ""
		if !inv.InvoiceDate.IsZero() {
			date = inv.InvoiceDate.Format(pipeline.DateFormat)
		}
		amount := inv.CurrencySymbol + models.FormatCents(inv.AmountDue)
		writeRow(&b, inv.Number, date, inv.DueDate.Format(pipeline.DateFormat), inv.Origin, amount)
	}
	return b.String(), nil
}

func writeRow(b *strings.Builder, reference, date, due, origin, amount string) {
	fmt.Fprintf(b, "%-*s  %-*s  %-*s  %-*s  %*s\n",
		colReference, reference,
		colDate, date,
		colDate, due,
		colOrigin, origin,
		colAmount, amount)
}
