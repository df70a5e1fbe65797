package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/intake-cli/internal/model"
	"github.com/sells-group/intake-cli/internal/monitoring"
	"github.com/sells-group/intake-cli/internal/normalize"
	"github.com/sells-group/intake-cli/internal/review"
	"github.com/sells-group/intake-cli/internal/service"
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Inspect and review ingestion records",
	Long:  "Commands for listing, viewing, approving, rejecting, refreshing and promoting ingestion records.",
}

// -- records list --

var recordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingestion records",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		status, _ := cmd.Flags().GetString("status")
		query, _ := cmd.Flags().GetString("q")
		sortBy, _ := cmd.Flags().GetString("sort")
		order, _ := cmd.Flags().GetString("order")
		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")

		if status != "" && status != review.StatusAll && !model.Status(status).Valid() {
			return eris.Errorf("records list: unknown status %q", status)
		}
		if limit <= 0 {
			limit = cfg.Review.ListLimit
		}

		env, err := initApp(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		q := env.Queue()
		if err := q.Load(ctx, "", limit); err != nil {
			return err
		}
		q.SetFilter(review.Filter{Status: status, Query: query})
		q.SetSort(review.ParseSort(sortBy, order))
		recs := q.Visible()

		if asJSON {
			return writeJSON(cmd.OutOrStdout(), recs)
		}
		if len(recs) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "No records found.")
			return nil
		}
		formatRecordsList(cmd.OutOrStdout(), recs)
		return nil
	},
}

// -- records show --

var recordsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a record with its normalized preview",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		asJSON, _ := cmd.Flags().GetBool("json")

		env, err := initApp(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		rec, err := env.Service.GetRecord(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "records show")
		}

		if asJSON {
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"record":  rec,
				"preview": normalize.ExtractPreview(rec),
			})
		}
		formatRecordDetail(cmd.OutOrStdout(), rec)
		return nil
	},
}

// -- records draft --

var recordsDraftCmd = &cobra.Command{
	Use:   "draft <id>",
	Short: "Print the promotion form defaults for a record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initApp(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		rec, err := env.Service.GetRecord(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "records draft")
		}
		draft := normalize.BuildDraft(rec)
		return writeJSON(cmd.OutOrStdout(), map[string]any{
			"draft": draft,
			"form":  review.FormFromDraft(draft),
		})
	},
}

// -- records approve / reject --

func newBulkCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <id>...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			env, err := initApp(ctx, "cli")
			if err != nil {
				return err
			}
			defer env.Close()

			q, err := queueFor(ctx, env.Service, args)
			if err != nil {
				return err
			}
			results, err := q.Bulk(ctx, action, args)
			formatBulkResults(cmd.OutOrStdout(), action, results)
			return err
		},
	}
}

// -- records reopen --

var recordsReopenCmd = &cobra.Command{
	Use:   "reopen <id>",
	Short: "Return a rejected record to pending review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initApp(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		q, err := queueFor(ctx, env.Service, args)
		if err != nil {
			return err
		}
		rec, err := q.Transition(ctx, args[0], model.StatusPendingReview)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is %s\n", rec.ID, rec.Status)
		return nil
	},
}

// -- records refresh --

var recordsRefreshCmd = &cobra.Command{
	Use:   "refresh <id>",
	Short: "Re-extract a record from its scraped source page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initApp(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		q, err := queueFor(ctx, env.Service, args)
		if err != nil {
			return err
		}
		rec, err := q.Refresh(ctx, args[0])
		if err != nil {
			return err
		}
		formatRecordDetail(cmd.OutOrStdout(), rec)
		return nil
	},
}

// -- records promote --

var recordsPromoteCmd = &cobra.Command{
	Use:   "promote <id>",
	Short: "Promote an approved record into an opportunity",
	Long:  "Submits the promotion form (draft defaults, overridden by flags) and then promotes the record. If the promote step fails the form update is kept and the record is flagged promotion_pending.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		account, _ := cmd.Flags().GetString("account")

		env, err := initApp(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		q, err := queueFor(ctx, env.Service, args)
		if err != nil {
			return err
		}
		rec, _ := q.Record(args[0])
		form := applyFormFlags(cmd, review.FormFromDraft(normalize.BuildDraft(&rec)))

		out, err := q.Promote(ctx, args[0], form, account)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s promoted as %s\n", out.ID, out.OpportunityID)
		return nil
	},
}

// applyFormFlags overrides form fields with any flags the user set.
func applyFormFlags(cmd *cobra.Command, form review.PromotionForm) review.PromotionForm {
	fields := map[string]*string{
		"title":         &form.Title,
		"client":        &form.ClientName,
		"location":      &form.Location,
		"budget":        &form.Budget,
		"deadline":      &form.Deadline,
		"summary":       &form.Summary,
		"source-url":    &form.SourceURL,
		"contact-name":  &form.ContactName,
		"contact-email": &form.ContactEmail,
		"contact-phone": &form.ContactPhone,
	}
	for name, dst := range fields {
		if cmd.Flags().Changed(name) {
			*dst, _ = cmd.Flags().GetString(name)
		}
	}
	if cmd.Flags().Changed("tags") {
		tags, _ := cmd.Flags().GetStringSlice("tags")
		form.Tags = tags
	}
	return form
}

// queueFor loads the named records into a fresh queue.
func queueFor(ctx context.Context, svc *service.Service, ids []string) (*review.Queue, error) {
	recs := make([]model.Record, 0, len(ids))
	for _, id := range ids {
		rec, err := svc.GetRecord(ctx, id)
		if err != nil {
			return nil, eris.Wrapf(err, "load record %s", id)
		}
		recs = append(recs, *rec)
	}
	q := review.NewQueue(svc, review.WithBulkLimit(cfg.Review.BulkLimit))
	q.SetRecords(recs)
	return q, nil
}

// -- records stats --

var recordsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize queue health",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		asJSON, _ := cmd.Flags().GetBool("json")

		env, err := initApp(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		snap, err := env.Collector().Collect(ctx)
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(cmd.OutOrStdout(), snap)
		}
		formatStats(cmd.OutOrStdout(), snap)
		return nil
	},
}

// -- formatting helpers --

func formatStats(out io.Writer, snap *monitoring.QueueSnapshot) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Total:\t%d\n", snap.Total)
	for _, s := range model.Statuses {
		_, _ = fmt.Fprintf(w, "  %s:\t%d\n", s, snap.ByStatus[s])
	}
	_, _ = fmt.Fprintf(w, "Promotion pending:\t%d\n", snap.PromotionPending)
	_, _ = fmt.Fprintf(w, "Stuck promotions:\t%d\n", len(snap.StuckPromotions))
	_, _ = fmt.Fprintf(w, "Stale reviews:\t%d\n", snap.StaleReviews)
	_, _ = fmt.Fprintf(w, "Avg match score:\t%.2f\n", snap.AvgMatchScore)
	_ = w.Flush()

	for _, id := range snap.StuckPromotions {
		_, _ = fmt.Fprintf(out, "stuck: %s\n", id)
	}
}

func formatRecordsList(out io.Writer, recs []model.Record) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSTATUS\tTITLE\tCLIENT\tLOCATION\tSCORE\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t------\t-----\t------\t--------\t-----\t-------")

	for _, r := range recs {
		score := "-"
		if r.MatchScore != nil {
			score = fmt.Sprintf("%.2f", *r.MatchScore)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			truncateID(r.ID),
			r.Status,
			clip(r.ProjectTitle, 40),
			clip(r.ClientName, 28),
			clip(r.Location, 24),
			score,
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

func formatRecordDetail(out io.Writer, rec *model.Record) {
	preview := normalize.ExtractPreview(rec)
	loc := normalize.ResolveLocation(rec)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	row := func(label, value string) {
		if strings.TrimSpace(value) == "" {
			value = "-"
		}
		_, _ = fmt.Fprintf(w, "%s:\t%s\n", label, value)
	}
	row("ID", rec.ID)
	row("Status", string(rec.Status))
	if rec.PromotionPending {
		row("Promotion", "pending")
	}
	row("Title", rec.ProjectTitle)
	row("Client", rec.ClientName)
	row("Location", loc.String())
	row("Address", normalize.DisplayAddress(rec))
	row("Deadline", preview.Deadline)
	row("Budget", rec.BudgetText)
	row("Risk", preview.RiskLevel)
	row("Sector", preview.MarketSector)
	row("Tags", strings.Join(preview.Tags, ", "))
	row("Source", preview.SourceURL)
	row("Contact", rec.ContactName)
	row("Email", rec.ContactEmail)
	if rec.ContactPhone != "" {
		row("Phone", normalize.FormatPhoneForDisplay(rec.ContactPhone))
	}
	if rec.OpportunityID != "" {
		row("Opportunity", rec.OpportunityID)
	}
	row("Next", joinStatuses(review.NextStatuses(rec.Status)))
	_ = w.Flush()

	if desc := strings.TrimSpace(preview.Description); desc != "" {
		_, _ = fmt.Fprintf(out, "\n%s\n", desc)
	}
}

func formatBulkResults(out io.Writer, action string, results []review.BulkResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tACTION\tRESULT")
	failed := 0
	for _, r := range results {
		result := "ok"
		if !r.OK() {
			failed++
			result = r.Err.Error()
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", r.ID, action, result)
	}
	_ = w.Flush()
	_, _ = fmt.Fprintf(out, "%d ok, %d failed\n", len(results)-failed, failed)
}

func joinStatuses(ss []model.Status) string {
	parts := make([]string, len(ss))
	for i, s := range ss {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(v), "encode json")
}

// truncateID shortens a UUID to its first 8 characters for display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	recordsListCmd.Flags().String("status", "", "filter by status (pending_review, approved, rejected, promoted, all)")
	recordsListCmd.Flags().String("q", "", "search title, client, location and tags")
	recordsListCmd.Flags().String("sort", "created_at", "sort field (created_at, match_score, project_title)")
	recordsListCmd.Flags().String("order", "desc", "sort order (asc, desc)")
	recordsListCmd.Flags().Int("limit", 0, "max records to load (default from config)")
	recordsListCmd.Flags().Bool("json", false, "output as JSON")

	recordsShowCmd.Flags().Bool("json", false, "output as JSON")
	recordsStatsCmd.Flags().Bool("json", false, "output as JSON")

	recordsPromoteCmd.Flags().String("account", "", "Salesforce account id for the opportunity")
	recordsPromoteCmd.Flags().String("title", "", "override the title")
	recordsPromoteCmd.Flags().String("client", "", "override the client name")
	recordsPromoteCmd.Flags().String("location", "", "override the location")
	recordsPromoteCmd.Flags().String("budget", "", "override the budget")
	recordsPromoteCmd.Flags().String("deadline", "", "override the deadline")
	recordsPromoteCmd.Flags().String("summary", "", "override the summary")
	recordsPromoteCmd.Flags().String("source-url", "", "override the source url")
	recordsPromoteCmd.Flags().String("contact-name", "", "override the contact name")
	recordsPromoteCmd.Flags().String("contact-email", "", "override the contact email")
	recordsPromoteCmd.Flags().String("contact-phone", "", "override the contact phone")
	recordsPromoteCmd.Flags().StringSlice("tags", nil, "override the tags")

	recordsCmd.AddCommand(
		recordsListCmd,
		recordsShowCmd,
		recordsDraftCmd,
		newBulkCmd(review.ActionApprove, "Approve records"),
		newBulkCmd(review.ActionReject, "Reject records"),
		recordsReopenCmd,
		recordsRefreshCmd,
		recordsPromoteCmd,
		recordsStatsCmd,
	)
	rootCmd.AddCommand(recordsCmd)
}
