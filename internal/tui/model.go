// Package tui is the interactive review queue. It renders a review.Queue with
// bubbletea and turns keystrokes into queue operations.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rotisserie/eris"

	"github.com/sells-group/intake-cli/internal/model"
	"github.com/sells-group/intake-cli/internal/normalize"
	"github.com/sells-group/intake-cli/internal/review"
)

type viewMode int

const (
	modeList viewMode = iota
	modeDetail
	modeSearch
)

var (
	statusCycle = []string{
		review.StatusAll,
		string(model.StatusPendingReview),
		string(model.StatusApproved),
		string(model.StatusRejected),
		string(model.StatusPromoted),
	}
	sortCycle = []review.SortField{review.SortCreatedAt, review.SortMatchScore, review.SortProjectTitle}
)

// Messages produced by the queue commands.
type (
	recordsLoadedMsg struct{ err error }

	bulkDoneMsg struct {
		action  string
		results []review.BulkResult
		err     error
	}

	recordDoneMsg struct {
		action string
		record *model.Record
		err    error
	}
)

// Model is the bubbletea model for the review queue.
type Model struct {
	ctx       context.Context
	queue     *review.Queue
	keys      KeyMap
	styles    *Styles
	search    textinput.Model
	listLimit int

	mode      viewMode
	cursor    int
	offset    int
	width     int
	height    int
	statusIdx int
	sortIdx   int
	busy      bool
	message   string
	err       error
}

// New creates a queue model. listLimit bounds each load.
func New(ctx context.Context, q *review.Queue, listLimit int) *Model {
	ti := textinput.New()
	ti.Placeholder = "title, client, location or tag"
	ti.Prompt = "/ "
	ti.CharLimit = 120
	// Blink messages are not routed back to the input.
	ti.Cursor.SetMode(cursor.CursorStatic)

	return &Model{
		ctx:       ctx,
		queue:     q,
		keys:      DefaultKeyMap(),
		styles:    DefaultStyles(),
		search:    ti,
		listLimit: listLimit,
	}
}

// Run starts the program on the alternate screen and blocks until it exits.
func Run(ctx context.Context, q *review.Queue, listLimit int) error {
	p := tea.NewProgram(New(ctx, q, listLimit), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return eris.Wrap(err, "tui: run")
}

// Init loads the first page of records.
func (m *Model) Init() tea.Cmd {
	return m.load()
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.adjustScroll()
		return m, nil

	case recordsLoadedMsg:
		m.busy = false
		m.err = msg.err
		if msg.err == nil {
			m.message = fmt.Sprintf("loaded %d records", m.queue.Len())
		}
		m.clampCursor()
		return m, nil

	case bulkDoneMsg:
		m.busy = false
		m.err = nil
		failed := 0
		for _, r := range msg.results {
			if !r.OK() {
				failed++
			}
		}
		m.message = fmt.Sprintf("%s: %d ok, %d failed", msg.action, len(msg.results)-failed, failed)
		if msg.err != nil {
			m.err = msg.err
		}
		m.clampCursor()
		return m, nil

	case recordDoneMsg:
		m.busy = false
		m.err = msg.err
		if msg.err == nil && msg.record != nil {
			m.message = fmt.Sprintf("%s: %s is %s", msg.action, msg.record.ID, msg.record.Status)
		} else {
			m.message = ""
		}
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeDetail:
			return m.updateDetail(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	visible := m.queue.Visible()
	current, hasCurrent := m.currentRecord(visible)

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.adjustScroll()
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(visible)-1 {
			m.cursor++
			m.adjustScroll()
		}
	case key.Matches(msg, m.keys.Toggle):
		if hasCurrent {
			m.queue.ToggleSelect(current.ID)
		}
	case key.Matches(msg, m.keys.SelectAll):
		m.queue.SelectAll()
	case key.Matches(msg, m.keys.Clear):
		m.queue.Clear()
	case key.Matches(msg, m.keys.Open):
		if hasCurrent {
			m.queue.SetDetail(current.ID)
			m.mode = modeDetail
		}
	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		m.search.SetValue(m.queue.Filter().Query)
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.CycleStatus):
		m.statusIdx = (m.statusIdx + 1) % len(statusCycle)
		f := m.queue.Filter()
		f.Status = statusCycle[m.statusIdx]
		m.queue.SetFilter(f)
		m.clampCursor()
	case key.Matches(msg, m.keys.CycleSort):
		m.sortIdx = (m.sortIdx + 1) % len(sortCycle)
		s := m.queue.Sort()
		s.By = sortCycle[m.sortIdx]
		m.queue.SetSort(s)
	case key.Matches(msg, m.keys.ToggleOrder):
		s := m.queue.Sort()
		if s.Order == review.SortAsc {
			s.Order = review.SortDesc
		} else {
			s.Order = review.SortAsc
		}
		m.queue.SetSort(s)
	case key.Matches(msg, m.keys.Reload):
		if !m.busy {
			return m, m.load()
		}
	case key.Matches(msg, m.keys.Approve):
		return m, m.act(review.ActionApprove, current, hasCurrent)
	case key.Matches(msg, m.keys.Reject):
		return m, m.act(review.ActionReject, current, hasCurrent)
	case key.Matches(msg, m.keys.Promote):
		return m, m.act(review.ActionPromote, current, hasCurrent)
	}
	return m, nil
}

// act runs action over the selection, or over the cursor record when nothing
// is selected. Nothing runs while another action is in flight.
func (m *Model) act(action string, current model.Record, hasCurrent bool) tea.Cmd {
	if m.busy {
		return nil
	}
	if ids := m.queue.Selected(); len(ids) > 0 {
		m.busy = true
		return m.bulk(action, ids)
	}
	if !hasCurrent {
		return nil
	}
	m.busy = true
	switch action {
	case review.ActionApprove:
		return m.transition(action, current.ID, model.StatusApproved)
	case review.ActionReject:
		return m.transition(action, current.ID, model.StatusRejected)
	}
	return m.promote(current)
}

func (m *Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rec, ok := m.queue.Detail()
	if !ok || key.Matches(msg, m.keys.Back) {
		m.queue.CloseDetail()
		m.mode = modeList
		return m, nil
	}
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if m.busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Approve):
		m.busy = true
		return m, m.transition(review.ActionApprove, rec.ID, model.StatusApproved)
	case key.Matches(msg, m.keys.Reject):
		m.busy = true
		return m, m.transition(review.ActionReject, rec.ID, model.StatusRejected)
	case key.Matches(msg, m.keys.Reopen):
		m.busy = true
		return m, m.transition("reopen", rec.ID, model.StatusPendingReview)
	case key.Matches(msg, m.keys.Promote):
		m.busy = true
		return m, m.promote(rec)
	case key.Matches(msg, m.keys.Refresh):
		m.busy = true
		return m, m.refresh(rec.ID)
	}
	return m, nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.search.Blur()
		m.mode = modeList
		return m, nil
	case tea.KeyEsc:
		m.search.Blur()
		m.search.Reset()
		m.setQuery("")
		m.mode = modeList
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.setQuery(m.search.Value())
	return m, cmd
}

func (m *Model) setQuery(q string) {
	f := m.queue.Filter()
	f.Query = q
	m.queue.SetFilter(f)
	m.cursor, m.offset = 0, 0
}

// Commands

func (m *Model) load() tea.Cmd {
	m.busy = true
	ctx, q, limit := m.ctx, m.queue, m.listLimit
	return func() tea.Msg {
		return recordsLoadedMsg{err: q.Load(ctx, "", limit)}
	}
}

func (m *Model) bulk(action string, ids []string) tea.Cmd {
	ctx, q := m.ctx, m.queue
	return func() tea.Msg {
		results, err := q.Bulk(ctx, action, ids)
		return bulkDoneMsg{action: action, results: results, err: err}
	}
}

func (m *Model) transition(action, id string, to model.Status) tea.Cmd {
	ctx, q := m.ctx, m.queue
	return func() tea.Msg {
		rec, err := q.Transition(ctx, id, to)
		return recordDoneMsg{action: action, record: rec, err: err}
	}
}

// promote submits the draft defaults as the promotion form.
func (m *Model) promote(rec model.Record) tea.Cmd {
	ctx, q := m.ctx, m.queue
	form := review.FormFromDraft(normalize.BuildDraft(&rec))
	return func() tea.Msg {
		out, err := q.Promote(ctx, rec.ID, form, "")
		return recordDoneMsg{action: review.ActionPromote, record: out, err: err}
	}
}

func (m *Model) refresh(id string) tea.Cmd {
	ctx, q := m.ctx, m.queue
	return func() tea.Msg {
		rec, err := q.Refresh(ctx, id)
		return recordDoneMsg{action: "refresh", record: rec, err: err}
	}
}

// Cursor and scrolling

func (m *Model) currentRecord(visible []model.Record) (model.Record, bool) {
	if m.cursor < 0 || m.cursor >= len(visible) {
		return model.Record{}, false
	}
	return visible[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.queue.Visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.adjustScroll()
}

func (m *Model) listHeight() int {
	if m.height <= 0 {
		return 20
	}
	return max(m.height-7, 1)
}

func (m *Model) adjustScroll() {
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
