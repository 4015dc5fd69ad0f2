package apiclient

import (
	"net/url"
	"strconv"
	"strings"
)

// AttendanceQuery filters the attendance list by member name or meeting
// date. Only one filter is sent; a non-empty UserName takes precedence.
type AttendanceQuery struct {
	UserName    string
	MeetingDate string
}

// Path returns the request path including the query string.
func (q AttendanceQuery) Path() string {
	const base = "/api/attendance"
	switch {
	case q.UserName != "":
		return base + "?user_name=" + encodeComponent(q.UserName)
	case q.MeetingDate != "":
		return base + "?meeting_date=" + encodeComponent(q.MeetingDate)
	default:
		return base
	}
}

// AttendanceExportQuery narrows the attendance CSV to one meeting or one
// member. MeetingID takes precedence, matching the backend.
type AttendanceExportQuery struct {
	MeetingID int64
	UserID    int64
}

// Path returns the export path including the query string.
func (q AttendanceExportQuery) Path() string {
	const base = "/api/attendance/export"
	switch {
	case q.MeetingID > 0:
		return base + "?meeting_id=" + strconv.FormatInt(q.MeetingID, 10)
	case q.UserID > 0:
		return base + "?user_id=" + strconv.FormatInt(q.UserID, 10)
	default:
		return base
	}
}

// encodeComponent escapes a query value with spaces as %20 rather than +.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
