package dashboard

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"onetap-admin/internal/apiclient"
	"onetap-admin/internal/metrics"
)

// Operator-facing messages.
const (
	MsgMissingFormFields = "Missing form fields"
	MsgGenericFailure    = "Something went wrong."
	MsgAttendanceFailed  = "Failed to load attendance."
	MsgAttendanceCrashed = "Something went wrong while loading attendance."
	MsgMeetingsFailed    = "Failed to load meetings."
	MsgMembersFailed     = "Failed to load members."

	ConfirmDeleteMeeting = "Are you sure you want to delete this meeting?"
	ConfirmDeleteMember  = "Are you sure you want to delete this member?"
)

// Deps is everything the controller renders into or reads from. Form and
// filter fields may be nil when the surface does not offer them.
type Deps struct {
	API API

	MeetingsTable   Table
	MembersTable    Table
	AttendanceTable Table

	MeetingTitle Field
	MeetingDate  Field
	FilterName   Field
	FilterDate   Field

	Notifier  Notifier
	Confirmer Confirmer
	Navigator Navigator

	Log     *zap.Logger
	Metrics *metrics.Metrics
}

// Controller keeps the three tables in step with the backend. It holds no
// state of its own: every operation is one request followed by a render.
type Controller struct {
	d Deps
}

// New creates a controller.
func New(d Deps) *Controller {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return &Controller{d: d}
}

// LoadAll refreshes every table.
func (c *Controller) LoadAll(ctx context.Context) {
	c.LoadMeetings(ctx)
	c.LoadMembers(ctx)
	c.LoadAttendance(ctx)
}

// LoadMeetings replaces the meetings table with the backend's list.
func (c *Controller) LoadMeetings(ctx context.Context) {
	meetings, err := c.d.API.ListMeetings(ctx)
	if err != nil {
		c.d.Log.Warn("load meetings", zap.Error(err))
		c.notify(messageOr(err, MsgMeetingsFailed))
		return
	}

	t := c.d.MeetingsTable
	t.Clear()
	for _, m := range meetings {
		id := m.ID
		t.Append(Row{Cells: []Cell{
			Text(m.Title),
			Text(m.Date),
			Text(m.Code),
			Image(m.QRImage(), "QR Code"),
			Button("Delete", func(ctx context.Context) { c.DeleteMeeting(ctx, id) }),
		}})
	}
	c.d.Metrics.TableReloaded("meetings")
}

// LoadMembers replaces the members table with the backend's list.
func (c *Controller) LoadMembers(ctx context.Context) {
	members, err := c.d.API.ListMembers(ctx)
	if err != nil {
		c.d.Log.Warn("load members", zap.Error(err))
		c.notify(messageOr(err, MsgMembersFailed))
		return
	}

	t := c.d.MembersTable
	t.Clear()
	for _, m := range members {
		id := m.ID
		t.Append(Row{Cells: []Cell{
			Text(m.Name),
			Text(m.Email),
			Button("Delete", func(ctx context.Context) { c.DeleteMember(ctx, id) }),
		}})
	}
	c.d.Metrics.TableReloaded("members")
}

// LoadAttendance replaces the attendance table using the current filter
// values. Anything unexpected, including a panic, is logged and reported
// with a generic message; the table is left as it was.
func (c *Controller) LoadAttendance(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			c.d.Log.Error("load attendance panicked", zap.Any("panic", r))
			c.notify(MsgAttendanceCrashed)
		}
	}()

	if c.d.FilterName == nil || c.d.FilterDate == nil {
		c.d.Log.Error("load attendance", zap.Error(errors.New("attendance filters not wired")))
		c.notify(MsgAttendanceCrashed)
		return
	}
	q := apiclient.AttendanceQuery{
		UserName:    c.d.FilterName.Value(),
		MeetingDate: c.d.FilterDate.Value(),
	}

	records, err := c.d.API.ListAttendance(ctx, q)
	if err != nil {
		if status := apiStatus(err); status != 0 {
			c.d.Log.Warn("load attendance rejected", zap.Int("status", status), zap.Error(err))
			c.notify(messageOr(err, MsgAttendanceFailed))
			return
		}
		c.d.Log.Error("load attendance", zap.Error(err))
		c.notify(MsgAttendanceCrashed)
		return
	}

	t := c.d.AttendanceTable
	t.Clear()
	for _, r := range records {
		t.Append(Row{Cells: []Cell{
			Text(r.UserName),
			Text(r.UserEmail),
			Text(r.MeetingTitle),
			Text(r.MeetingDate),
		}})
	}
	c.d.Metrics.TableReloaded("attendance")
}

// CreateMeeting submits the meeting form. On success the fields are
// cleared and the meetings table reloaded once; on failure the fields keep
// their values.
func (c *Controller) CreateMeeting(ctx context.Context) {
	title, date := c.d.MeetingTitle, c.d.MeetingDate
	if title == nil || date == nil {
		c.notify(MsgMissingFormFields)
		return
	}

	msg, err := c.d.API.CreateMeeting(ctx, title.Value(), date.Value())
	if err != nil {
		c.d.Log.Warn("create meeting", zap.Error(err))
		c.notify(messageOr(err, MsgGenericFailure))
		return
	}
	c.notify(msg)

	title.SetValue("")
	date.SetValue("")
	c.LoadMeetings(ctx)
}

// DeleteMeeting asks for confirmation, deletes the meeting and reloads
// the meetings table.
func (c *Controller) DeleteMeeting(ctx context.Context, id int64) {
	if !c.confirm(ConfirmDeleteMeeting) {
		return
	}
	msg, err := c.d.API.DeleteMeeting(ctx, id)
	if err != nil {
		c.d.Log.Warn("delete meeting", zap.Int64("meeting_id", id), zap.Error(err))
		c.notify(MsgGenericFailure)
		return
	}
	c.notify(orGeneric(msg))
	c.LoadMeetings(ctx)
}

// DeleteMember asks for confirmation, deletes the member and reloads both
// the members and attendance tables, since attendance rows reference
// members. The two reloads run independently.
func (c *Controller) DeleteMember(ctx context.Context, id int64) {
	if !c.confirm(ConfirmDeleteMember) {
		return
	}
	msg, err := c.d.API.DeleteMember(ctx, id)
	if err != nil {
		c.d.Log.Warn("delete member", zap.Int64("member_id", id), zap.Error(err))
		c.notify(MsgGenericFailure)
		return
	}
	c.notify(orGeneric(msg))

	var g errgroup.Group
	g.Go(func() error { c.LoadMembers(ctx); return nil })
	g.Go(func() error { c.LoadAttendance(ctx); return nil })
	_ = g.Wait()
}

// DownloadCSV hands url to the navigator; the backend produces the file.
func (c *Controller) DownloadCSV(url string) {
	if err := c.d.Navigator.Navigate(url); err != nil {
		c.d.Log.Warn("navigate", zap.String("url", url), zap.Error(err))
	}
}

// ExportMembers downloads the members CSV.
func (c *Controller) ExportMembers() {
	c.DownloadCSV(c.d.API.MembersExportURL())
}

// ExportAttendance downloads the attendance CSV, optionally narrowed to
// one meeting or member.
func (c *Controller) ExportAttendance(q apiclient.AttendanceExportQuery) {
	c.DownloadCSV(c.d.API.AttendanceExportURL(q))
}

func (c *Controller) notify(msg string) {
	c.d.Metrics.Notified()
	c.d.Notifier.Notify(msg)
}

func (c *Controller) confirm(question string) bool {
	ok := c.d.Confirmer.Confirm(question)
	c.d.Metrics.Confirmed(ok)
	return ok
}

// messageOr prefers the server's own message.
func messageOr(err error, fallback string) string {
	if msg := apiclient.ServerMessage(err); msg != "" {
		return msg
	}
	return fallback
}

func orGeneric(msg string) string {
	if msg == "" {
		return MsgGenericFailure
	}
	return msg
}

func apiStatus(err error) int {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
