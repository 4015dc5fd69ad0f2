package model

import (
	"encoding/json"
	"strings"
)

// QRCodeDir is where the backend serves generated QR code images.
const QRCodeDir = "/static/qrcodes/"

// Meeting is a scheduled meeting as returned by the backend.
type Meeting struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"`
	Code  string `json:"code"`
	QRURL string `json:"qr_url,omitempty"`
}

// QRImage returns the image location for the meeting's check-in QR code.
func (m Meeting) QRImage() string {
	if m.QRURL != "" {
		return m.QRURL
	}
	return QRCodeDir + m.Code + ".png"
}

// Member is a person who has checked in at least once.
type Member struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AttendanceRecord is one member/meeting check-in, joined server side.
type AttendanceRecord struct {
	ID           int64  `json:"id,omitempty"`
	UserID       int64  `json:"user_id,omitempty"`
	MeetingID    int64  `json:"meeting_id,omitempty"`
	UserName     string `json:"user_name"`
	UserEmail    string `json:"user_email"`
	MeetingTitle string `json:"meeting_title"`
	MeetingDate  string `json:"meeting_date"`
}

// MeetingList is the body of GET /api/meetings.
type MeetingList struct {
	Meetings []Meeting `json:"meetings"`
}

// MemberList is the body of GET /api/members.
type MemberList struct {
	Members []Member `json:"members"`
}

// AttendanceList is the body of GET /api/attendance.
type AttendanceList struct {
	Attendance []AttendanceRecord `json:"attendance"`
}

// NewMeeting is the body of POST /api/meetings.
type NewMeeting struct {
	Title string `json:"title"`
	Date  string `json:"date"`
}

// Message is the {msg} body returned by mutations.
type Message struct {
	Msg string `json:"msg"`
}

// ErrorBody is the {detail} body of a failed request. Detail is either a
// plain string or a list of validation entries.
type ErrorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// Text flattens Detail into a human-readable message. It returns "" when
// there is nothing usable.
func (e ErrorBody) Text() string {
	if len(e.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.Detail, &s); err == nil {
		return s
	}
	var entries []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(e.Detail, &entries); err == nil {
		msgs := make([]string, 0, len(entries))
		for _, en := range entries {
			if en.Msg != "" {
				msgs = append(msgs, en.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
