package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/sells-group/intake-cli/internal/model"
	"github.com/sells-group/intake-cli/internal/normalize"
	"github.com/sells-group/intake-cli/internal/review"
)

// View renders the current screen.
func (m *Model) View() string {
	var b strings.Builder
	if m.mode == modeDetail {
		if rec, ok := m.queue.Detail(); ok {
			m.renderDetail(&b, rec)
			return b.String()
		}
	}
	m.renderList(&b)
	return b.String()
}

func (m *Model) renderHeader(b *strings.Builder) {
	f, s := m.queue.Filter(), m.queue.Sort()
	status := f.Status
	if status == "" {
		status = review.StatusAll
	}
	b.WriteString(m.styles.Title.Render("Intake review queue"))
	b.WriteString("  ")
	b.WriteString(m.styles.Muted.Render(fmt.Sprintf("status:%s  sort:%s %s  selected:%d",
		status, s.By, s.Order, len(m.queue.Selected()))))
	b.WriteString("\n")
	if m.mode == modeSearch {
		b.WriteString(m.search.View())
	} else if f.Query != "" {
		b.WriteString(m.styles.Muted.Render("search: " + f.Query))
	}
	b.WriteString("\n\n")
}

func (m *Model) renderList(b *strings.Builder) {
	m.renderHeader(b)

	visible := m.queue.Visible()
	if len(visible) == 0 {
		b.WriteString(m.styles.Muted.Render("No records match."))
		b.WriteString("\n")
	}

	end := min(m.offset+m.listHeight(), len(visible))
	for i := m.offset; i < end; i++ {
		rec := visible[i]
		check := "[ ]"
		if m.queue.IsSelected(rec.ID) {
			check = "[x]"
		}
		line := fmt.Sprintf("%s %-14s %-40s %-24s %-20s %s",
			check,
			string(rec.Status),
			truncate(rec.ProjectTitle, 40),
			truncate(rec.ClientName, 24),
			truncate(rec.Location, 20),
			formatScore(rec.MatchScore))
		if i == m.cursor {
			b.WriteString(m.styles.Cursor.Render(line))
		} else {
			b.WriteString(m.styles.Normal.Render(line))
		}
		b.WriteString("\n")
	}

	m.renderFooter(b, m.keys.listHelp())
}

func (m *Model) renderDetail(b *strings.Builder, rec model.Record) {
	preview := normalize.ExtractPreview(&rec)

	b.WriteString(m.styles.Title.Render(orDash(rec.ProjectTitle)))
	b.WriteString("  ")
	b.WriteString(m.styles.StatusStyle(rec.Status).Render(string(rec.Status)))
	if rec.PromotionPending {
		b.WriteString(" ")
		b.WriteString(m.styles.Warning.Render("(promotion pending)"))
	}
	b.WriteString("\n\n")

	rows := [][2]string{
		{"Client", rec.ClientName},
		{"Address", normalize.DisplayAddress(&rec)},
		{"Deadline", preview.Deadline},
		{"Budget", rec.BudgetText},
		{"Match score", formatScore(rec.MatchScore)},
		{"Risk", preview.RiskLevel},
		{"Sector", preview.MarketSector},
		{"Tags", strings.Join(preview.Tags, ", ")},
		{"Source", preview.SourceURL},
		{"Contact", contactLine(rec)},
	}
	if rec.OpportunityID != "" {
		rows = append(rows, [2]string{"Opportunity", rec.OpportunityID})
	}
	for _, r := range rows {
		b.WriteString(m.styles.Label.Render(r[0]))
		b.WriteString(m.styles.Normal.Render(orDash(r[1])))
		b.WriteString("\n")
	}

	if desc := firstLine(preview.Description, preview.Summary); desc != "" {
		b.WriteString("\n")
		width := m.width - 4
		if width <= 20 {
			width = 80
		}
		b.WriteString(m.styles.Border.Width(width).Render(truncate(desc, 1200)))
		b.WriteString("\n")
	}

	next := review.NextStatuses(rec.Status)
	names := make([]string, len(next))
	for i, s := range next {
		names[i] = string(s)
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("next: " + orDash(strings.Join(names, ", "))))
	b.WriteString("\n")

	m.renderFooter(b, m.keys.detailHelp())
}

func (m *Model) renderFooter(b *strings.Builder, bindings []key.Binding) {
	b.WriteString("\n")
	switch {
	case m.busy:
		b.WriteString(m.styles.Warning.Render("working…"))
	case m.err != nil:
		b.WriteString(m.styles.Error.Render("error: " + m.err.Error()))
	case m.message != "":
		b.WriteString(m.styles.Success.Render(m.message))
	}
	b.WriteString("\n")

	parts := make([]string, 0, len(bindings))
	for _, k := range bindings {
		h := k.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	b.WriteString(m.styles.Help.Render(strings.Join(parts, " • ")))
}

func contactLine(rec model.Record) string {
	var parts []string
	for _, p := range []string{rec.ContactName, rec.ContactEmail} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	if strings.TrimSpace(rec.ContactPhone) != "" {
		parts = append(parts, normalize.FormatPhoneForDisplay(rec.ContactPhone))
	}
	return strings.Join(parts, " · ")
}

func formatScore(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func firstLine(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
