package dashboard

import (
	"context"

	"onetap-admin/internal/apiclient"
	"onetap-admin/internal/model"
)

// CellKind says how a cell is presented.
type CellKind int

const (
	TextCell CellKind = iota
	ImageCell
	ButtonCell
)

// Cell is one column of a rendered row. Button cells carry the handler
// the row's renderer registered for them.
type Cell struct {
	Kind    CellKind
	Text    string
	Src     string
	OnClick func(context.Context)
}

// Text returns a plain text cell.
func Text(s string) Cell { return Cell{Kind: TextCell, Text: s} }

// Image returns an image cell.
func Image(src, alt string) Cell { return Cell{Kind: ImageCell, Src: src, Text: alt} }

// Button returns a clickable cell.
func Button(label string, onClick func(context.Context)) Cell {
	return Cell{Kind: ButtonCell, Text: label, OnClick: onClick}
}

// Row is one table row.
type Row struct {
	Cells []Cell
}

// Table is a table body the controller renders into.
type Table interface {
	Clear()
	Append(Row)
}

// Field is a text input the controller reads and may clear.
type Field interface {
	Value() string
	SetValue(string)
}

// Notifier shows a blocking notification and returns once it is dismissed.
type Notifier interface {
	Notify(msg string)
}

// Confirmer asks the operator a yes/no question.
type Confirmer interface {
	Confirm(question string) bool
}

// Navigator sends the operator to a URL, e.g. a CSV download.
type Navigator interface {
	Navigate(url string) error
}

// API is the part of the backend client the controller uses.
type API interface {
	ListMeetings(ctx context.Context) ([]model.Meeting, error)
	CreateMeeting(ctx context.Context, title, date string) (string, error)
	DeleteMeeting(ctx context.Context, id int64) (string, error)
	ListMembers(ctx context.Context) ([]model.Member, error)
	DeleteMember(ctx context.Context, id int64) (string, error)
	ListAttendance(ctx context.Context, q apiclient.AttendanceQuery) ([]model.AttendanceRecord, error)
	MembersExportURL() string
	AttendanceExportURL(q apiclient.AttendanceExportQuery) string
}
