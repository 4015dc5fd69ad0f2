package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"onetap-admin/internal/apiclient"
	"onetap-admin/internal/dashboard"
	"onetap-admin/internal/metrics"
)

// Options wires a console to its backend and terminal.
type Options struct {
	API         *apiclient.Client
	In          io.Reader
	Out         io.Writer
	QueueSize   int
	OpenBrowser bool
	Log         *zap.Logger
	Metrics     *metrics.Metrics
}

// Console is the interactive admin dashboard.
type Console struct {
	api  *apiclient.Client
	in   io.Reader
	out  io.Writer
	log  *zap.Logger
	ctrl *dashboard.Controller

	lines *lineQueue
	term  *Terminal
	nav   *Browser

	meetings, members, attendance *Table
	title, date                   *Field
	filterName, filterDate        *Field
}

// New builds the console and its dashboard controller.
func New(opts Options) *Console {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	resolve := opts.API.ResolveURL
	c := &Console{
		api:        opts.API,
		in:         opts.In,
		out:        opts.Out,
		log:        opts.Log,
		lines:      newLineQueue(opts.QueueSize),
		meetings:   NewTable("Meetings", []string{"Title", "Date", "Code", "QR Code", ""}, resolve),
		members:    NewTable("Members", []string{"Name", "Email", ""}, resolve),
		attendance: NewTable("Attendance", []string{"Name", "Email", "Meeting", "Date"}, resolve),
		title:      &Field{},
		date:       &Field{},
		filterName: &Field{},
		filterDate: &Field{},
	}
	c.term = &Terminal{ctx: context.Background(), lines: c.lines, out: opts.Out}
	c.nav = &Browser{Out: opts.Out, Resolve: resolve, Launch: opts.OpenBrowser}
	c.ctrl = dashboard.New(dashboard.Deps{
		API:             opts.API,
		MeetingsTable:   c.meetings,
		MembersTable:    c.members,
		AttendanceTable: c.attendance,
		MeetingTitle:    c.title,
		MeetingDate:     c.date,
		FilterName:      c.filterName,
		FilterDate:      c.filterDate,
		Notifier:        c.term,
		Confirmer:       c.term,
		Navigator:       c.nav,
		Log:             opts.Log,
		Metrics:         opts.Metrics,
	})
	return c
}

// Controller exposes the dashboard controller driving this console.
func (c *Console) Controller() *dashboard.Controller { return c.ctrl }

// Run loads every table and then executes commands one at a time until
// input ends, the operator quits or ctx is cancelled.
func (c *Console) Run(ctx context.Context) error {
	c.term.ctx = ctx
	go c.lines.pump(ctx, c.in)

	c.ctrl.LoadAll(ctx)
	c.render(c.meetings, c.members, c.attendance)
	fmt.Fprintln(c.out, `Type "help" for commands.`)

	for {
		fmt.Fprint(c.out, "> ")
		line, err := c.lines.next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				fmt.Fprintln(c.out)
				return nil
			}
			return err
		}
		if quit := c.Exec(ctx, line); quit {
			return nil
		}
	}
}

// Exec runs a single command line. It reports whether the operator asked
// to quit.
func (c *Console) Exec(ctx context.Context, line string) bool {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false
	}
	cmd, args := strings.ToLower(args[0]), args[1:]

	var err error
	switch cmd {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		c.help()
	case "show":
		c.render(c.meetings, c.members, c.attendance)
	case "meetings":
		c.ctrl.LoadMeetings(ctx)
		c.render(c.meetings)
	case "members":
		c.ctrl.LoadMembers(ctx)
		c.render(c.members)
	case "attendance":
		c.ctrl.LoadAttendance(ctx)
		c.render(c.attendance)
	case "refresh":
		c.ctrl.LoadAll(ctx)
		c.render(c.meetings, c.members, c.attendance)
	case "filter":
		err = c.filter(ctx)
	case "new":
		err = c.newMeeting(ctx)
	case "delete":
		err = c.delete(ctx, args)
	case "qr":
		err = c.qr(args)
	case "export":
		err = c.export(args)
	case "open":
		if len(args) != 1 {
			err = errors.New("usage: open <url>")
			break
		}
		c.ctrl.DownloadCSV(args[0])
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		fmt.Fprintf(c.out, "error: %v\n", err)
	}
	return false
}

func (c *Console) filter(ctx context.Context) error {
	name, err := c.term.Ask("Member name", c.filterName.Value())
	if err != nil {
		return err
	}
	date, err := c.term.Ask("Meeting date (YYYY-MM-DD)", c.filterDate.Value())
	if err != nil {
		return err
	}
	c.filterName.SetValue(name)
	c.filterDate.SetValue(date)
	c.ctrl.LoadAttendance(ctx)
	c.render(c.attendance)
	return nil
}

func (c *Console) newMeeting(ctx context.Context) error {
	title, err := c.term.Ask("Title", c.title.Value())
	if err != nil {
		return err
	}
	date, err := c.term.Ask("Date (YYYY-MM-DD)", c.date.Value())
	if err != nil {
		return err
	}
	c.title.SetValue(title)
	c.date.SetValue(date)
	c.ctrl.CreateMeeting(ctx)
	c.render(c.meetings)
	return nil
}

func (c *Console) delete(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: delete meeting|member <row>")
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("row %q is not a number", args[1])
	}

	var table *Table
	var affected []*Table
	switch strings.ToLower(args[0]) {
	case "meeting":
		table, affected = c.meetings, []*Table{c.meetings}
	case "member":
		table, affected = c.members, []*Table{c.members, c.attendance}
	default:
		return fmt.Errorf("cannot delete %q", args[0])
	}

	click, err := table.Button(n)
	if err != nil {
		return err
	}
	click(ctx)
	c.render(affected...)
	return nil
}

func (c *Console) qr(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: qr <meeting row>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("row %q is not a number", args[0])
	}
	src, err := c.meetings.Image(n)
	if err != nil {
		return err
	}
	return c.nav.Navigate(src)
}

func (c *Console) export(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: export members | export attendance [meeting|member <id>]")
	}
	switch strings.ToLower(args[0]) {
	case "members":
		c.ctrl.ExportMembers()
		return nil
	case "attendance":
		var q apiclient.AttendanceExportQuery
		if len(args) == 3 {
			id, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("id %q is not a number", args[2])
			}
			switch strings.ToLower(args[1]) {
			case "meeting":
				q.MeetingID = id
			case "member":
				q.UserID = id
			default:
				return fmt.Errorf("cannot narrow export by %q", args[1])
			}
		} else if len(args) != 1 {
			return errors.New("usage: export attendance [meeting|member <id>]")
		}
		c.ctrl.ExportAttendance(q)
		return nil
	default:
		return fmt.Errorf("cannot export %q", args[0])
	}
}

func (c *Console) render(tables ...*Table) {
	for _, t := range tables {
		fmt.Fprintln(c.out)
		if err := t.Render(c.out); err != nil {
			c.log.Warn("render table", zap.String("table", t.Title), zap.Error(err))
		}
	}
}

func (c *Console) help() {
	fmt.Fprint(c.out, `
  meetings | members | attendance   reload one table
  refresh                           reload every table
  show                              print tables without reloading
  filter                            set attendance filters (name wins over date)
  new                               create a meeting
  delete meeting <row>              delete the meeting in that row
  delete member <row>               delete the member in that row
  qr <row>                          open the QR code of a meeting row
  export members                    download the members CSV
  export attendance [meeting|member <id>]
  open <url>                        open any backend URL
  quit
  At prompts, Enter keeps the shown value and "-" clears it.
`)
}
