package dashboard_test

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap"

	"onetap-admin/internal/apiclient"
	"onetap-admin/internal/apitest"
	"onetap-admin/internal/dashboard"
)

type memTable struct {
	mu     sync.Mutex
	rows   []dashboard.Row
	clears int
}

func (t *memTable) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = nil
	t.clears++
}

func (t *memTable) Append(r dashboard.Row) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = append(t.rows, r)
}

func (t *memTable) Rows() []dashboard.Row {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]dashboard.Row(nil), t.rows...)
}

func (t *memTable) Clears() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.clears
}

func (t *memTable) texts(i int) []string {
	row := t.Rows()[i]
	out := make([]string, 0, len(row.Cells))
	for _, c := range row.Cells {
		out = append(out, c.Text)
	}
	return out
}

type panicTable struct{}

func (panicTable) Clear()               {}
func (panicTable) Append(dashboard.Row) { panic("render failed") }

type memField struct{ v string }

func (f *memField) Value() string     { return f.v }
func (f *memField) SetValue(v string) { f.v = v }

type recNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (n *recNotifier) Notify(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

func (n *recNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.msgs...)
}

type stubConfirmer struct {
	answer    bool
	questions []string
}

func (c *stubConfirmer) Confirm(q string) bool {
	c.questions = append(c.questions, q)
	return c.answer
}

type recNavigator struct{ urls []string }

func (n *recNavigator) Navigate(url string) error {
	n.urls = append(n.urls, url)
	return nil
}

type harness struct {
	backend *apitest.Backend
	ctrl    *dashboard.Controller
	deps    dashboard.Deps

	meetings, members, attendance *memTable
	title, date                   *memField
	filterName, filterDate        *memField
	notifier                      *recNotifier
	confirmer                     *stubConfirmer
	navigator                     *recNavigator
}

type option func(*dashboard.Deps)

func newHarness(t *testing.T, opts ...option) *harness {
	t.Helper()
	h := &harness{
		backend:    apitest.New(t),
		meetings:   &memTable{},
		members:    &memTable{},
		attendance: &memTable{},
		title:      &memField{},
		date:       &memField{},
		filterName: &memField{},
		filterDate: &memField{},
		notifier:   &recNotifier{},
		confirmer:  &stubConfirmer{answer: true},
		navigator:  &recNavigator{},
	}
	h.deps = dashboard.Deps{
		API:             apiclient.New(h.backend.URL(), 0, nil, zap.NewNop()),
		MeetingsTable:   h.meetings,
		MembersTable:    h.members,
		AttendanceTable: h.attendance,
		MeetingTitle:    h.title,
		MeetingDate:     h.date,
		FilterName:      h.filterName,
		FilterDate:      h.filterDate,
		Notifier:        h.notifier,
		Confirmer:       h.confirmer,
		Navigator:       h.navigator,
		Log:             zap.NewNop(),
	}
	for _, o := range opts {
		o(&h.deps)
	}
	h.ctrl = dashboard.New(h.deps)
	return h
}

func (h *harness) click(t *testing.T, table *memTable, row int) {
	t.Helper()
	cells := table.Rows()[row].Cells
	last := cells[len(cells)-1]
	if last.Kind != dashboard.ButtonCell || last.OnClick == nil {
		t.Fatalf("row %d has no button", row)
	}
	last.OnClick(context.Background())
}
