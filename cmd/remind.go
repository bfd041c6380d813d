package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"dunning/internal/config"
	"dunning/internal/logger"
	"dunning/internal/mail"
	"dunning/internal/pdfgen"
	"dunning/internal/pipeline"
	"dunning/internal/reminder"
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Send follow-up emails for overdue invoices",
	Long: `Fetch overdue invoices, group them per client, and send each client a
follow-up email. The message template is chosen by the client's worst invoice
(recent, moderate or severe) unless overridden with --tier.

Failures are scoped to a single client: one bad address or one rendering
problem never stops the rest of the batch. A per-client outcome report is
printed at the end.`,
	Example: `  # Preview without sending
  dunning remind --dry-run

  # Send with a generated statement PDF attached
  dunning remind --pdf

  # Force the final-notice template for everyone
  dunning remind --tier severe

  # Attach a static bank-details letter and an extra file
  dunning remind --letter ./letters/iban.pdf --attach terms.pdf`,
	Args: cobra.NoArgs,
	RunE: runRemind,
}

func init() {
	rootCmd.AddCommand(remindCmd)

	remindCmd.Flags().String("tier", "", "Override template tier (recent, moderate, severe)")
	remindCmd.Flags().Bool("dry-run", false, "Render and report, do not send")
	remindCmd.Flags().Bool("pdf", false, "Attach a generated statement-of-account PDF")
	remindCmd.Flags().String("letter", "", "Path to a static letter to attach to every email")
	remindCmd.Flags().StringSlice("attach", nil, "Additional file(s) to attach to every email")
	remindCmd.Flags().StringSlice("cc", nil, "CC address(es) on every email")
	remindCmd.Flags().String("ref-date", "", "Reference date (YYYY-MM-DD, default today)")
}

// outcome records the result for one client in the final report.
type outcome struct {
	client string
	sent   bool
	detail string
}

func runRemind(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("remind")

	tierFlag, _ := cmd.Flags().GetString("tier")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	withPDF, _ := cmd.Flags().GetBool("pdf")
	letterPath, _ := cmd.Flags().GetString("letter")
	attachPaths, _ := cmd.Flags().GetStringSlice("attach")
	ccList, _ := cmd.Flags().GetStringSlice("cc")
	refFlag, _ := cmd.Flags().GetString("ref-date")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !dryRun {
		if err := cfg.ValidateMail(); err != nil {
			return err
		}
	}

	var tierOverride *pipeline.Severity
	if tierFlag != "" {
		tier, err := pipeline.ParseSeverity(tierFlag)
		if err != nil {
			return err
		}
		tierOverride = &tier
	}

	refDate, err := referenceDate(refFlag)
	if err != nil {
		return err
	}

	// Static attachments are read once up front; a missing file is a user
	// error worth failing the whole run for, unlike per-client problems.
	static, err := loadStaticAttachments(letterPath, attachPaths)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cycle, err := runCycle(ctx, cfg, refDate)
	if err != nil {
		return err
	}

	renderer, err := reminder.NewRenderer(reminder.DefaultTemplates())
	if err != nil {
		return err
	}

	provider := mail.Provider(cfg.MailProvider)
	if dryRun {
		provider = mail.ProviderDryRun
	}
	transport, err := mail.New(mail.Config{
		Provider:       provider,
		MailgunDomain:  cfg.MailgunDomain,
		MailgunAPIKey:  cfg.MailgunAPIKey,
		SendGridAPIKey: cfg.SendGridAPIKey,
	})
	if err != nil {
		return err
	}

	var producer pdfgen.Producer
	if withPDF {
		producer = pdfgen.NewStatementProducer(cycle)
	}

	outcomes := make([]outcome, 0, len(cycle.Groups))
	for _, group := range cycle.Groups {
		outcomes = append(outcomes, remindClient(ctx, remindParams{
			group:     group,
			cycle:     cycle,
			renderer:  renderer,
			transport: transport,
			producer:  producer,
			sender:    cfg.MailSender,
			cc:        ccList,
			override:  tierOverride,
			static:    static,
		}))
	}

	printOutcomes(outcomes, cycle)

	failed := 0
	for _, o := range outcomes {
		if !o.sent {
			failed++
		}
	}
	log.Info().
		Int("clients", len(outcomes)).
		Int("failed", failed).
		Bool("dry_run", dryRun).
		Msg("Reminder run finished")

	if failed > 0 && failed == len(outcomes) {
		return fmt.Errorf("all %d reminders failed", failed)
	}
	return nil
}

type remindParams struct {
	group     pipeline.ClientGroup
	cycle     *pipeline.Cycle
	renderer  *reminder.Renderer
	transport mail.Transport
	producer  pdfgen.Producer
	sender    string
	cc        []string
	override  *pipeline.Severity
	static    []reminder.Attachment
}

// remindClient builds, decorates and sends one client's draft. Every failure
// path ends in a Failed draft with a reason, never a lost error.
func remindClient(ctx context.Context, p remindParams) outcome {
	tier := p.group.Tier()
	if p.override != nil {
		tier = *p.override
	}

	draft, err := reminder.BuildDraft(p.renderer, p.group, tier, p.cc)
	if err != nil {
		return outcome{client: p.group.ClientName, detail: err.Error()}
	}

	if p.producer != nil {
		data, err := p.producer.InvoiceDocument(ctx, p.group.ClientName, p.group.Invoices[0].PartnerID)
		if err != nil {
			_ = draft.MarkFailed("document generation: " + err.Error())
			return outcome{client: p.group.ClientName, detail: draft.FailReason()}
		}
		_ = draft.Attach(pdfgen.StatementFilename(p.group.ClientName, p.cycle.ReferenceDate), data)
	}
	for _, a := range p.static {
		_ = draft.Attach(a.Filename, a.Bytes)
	}

	if err := p.transport.Send(ctx, p.sender, draft); err != nil {
		_ = draft.MarkFailed("transport: " + err.Error())
		return outcome{client: p.group.ClientName, detail: draft.FailReason()}
	}
	_ = draft.MarkSent()
	return outcome{client: p.group.ClientName, sent: true, detail: tier.String()}
}

func loadStaticAttachments(letterPath string, attachPaths []string) ([]reminder.Attachment, error) {
	paths := attachPaths
	if letterPath != "" {
		paths = append([]string{letterPath}, paths...)
	}
	attachments := make([]reminder.Attachment, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading attachment %q: %w", path, err)
		}
		attachments = append(attachments, reminder.Attachment{
			Filename: filepath.Base(path),
			Bytes:    data,
		})
	}
	return attachments, nil
}

func printOutcomes(outcomes []outcome, cycle *pipeline.Cycle) {
	fmt.Printf("\nReminder report (%d clients):\n", len(outcomes))
	for _, o := range outcomes {
		if o.sent {
			fmt.Printf("  sent    %-30s tier=%s\n", o.client, o.detail)
		} else {
			fmt.Printf("  FAILED  %-30s %s\n", o.client, o.detail)
		}
	}
	if len(cycle.Skips) > 0 {
		fmt.Printf("  %d invoices were skipped before grouping:\n", len(cycle.Skips))
		for _, skip := range cycle.Skips {
			fmt.Printf("    %s\n", skip)
		}
	}
}
