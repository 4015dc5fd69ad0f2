// Package apitest runs an in-memory stand-in for the attendance backend so
// console packages can be tested against real HTTP round trips.
package apitest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"onetap-admin/internal/model"
)

// Request is one call the backend received.
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Body     []byte
}

// URI returns the path plus query string, as the client requested it.
func (r Request) URI() string {
	if r.RawQuery == "" {
		return r.Path
	}
	return r.Path + "?" + r.RawQuery
}

type override struct {
	status int
	body   string
}

type checkin struct {
	id        int64
	userID    int64
	meetingID int64
}

// Backend serves /api/meetings, /api/members and /api/attendance from
// memory and records every request it sees.
type Backend struct {
	Server *httptest.Server

	mu        sync.Mutex
	meetings  []model.Meeting
	members   []model.Member
	checkins  []checkin
	requests  []Request
	overrides map[string]override
	nextID    int64
}

// New starts a backend that is closed when the test ends.
func New(t testing.TB) *Backend {
	t.Helper()
	gin.SetMode(gin.TestMode)

	b := &Backend{overrides: make(map[string]override), nextID: 100}

	r := gin.New()
	r.Use(b.record(), b.forced())

	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "OneTap Attendance Tracker is Running") })

	api := r.Group("/api")
	api.GET("/meetings", b.listMeetings)
	api.POST("/meetings", b.createMeeting)
	api.DELETE("/meetings/:id", b.deleteMeeting)
	api.GET("/members", b.listMembers)
	api.GET("/members/export", b.exportMembers)
	api.DELETE("/members/:id", b.deleteMember)
	api.GET("/attendance", b.listAttendance)
	api.GET("/attendance/export", b.exportAttendance)

	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Server.Close)
	return b
}

// URL is the backend's base URL.
func (b *Backend) URL() string { return b.Server.URL }

// AddMeeting stores m and returns it with its id.
func (b *Backend) AddMeeting(m model.Meeting) model.Meeting {
	b.mu.Lock()
	defer b.mu.Unlock()
	if m.ID == 0 {
		m.ID = b.newID()
	}
	b.meetings = append(b.meetings, m)
	return m
}

// AddMember stores m and returns it with its id.
func (b *Backend) AddMember(m model.Member) model.Member {
	b.mu.Lock()
	defer b.mu.Unlock()
	if m.ID == 0 {
		m.ID = b.newID()
	}
	b.members = append(b.members, m)
	return m
}

// CheckIn records that member attended meeting.
func (b *Backend) CheckIn(memberID, meetingID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.checkins = append(b.checkins, checkin{id: b.newID(), userID: memberID, meetingID: meetingID})
}

// Fail makes every request matching method and route (a gin route such as
// "/api/meetings/:id") answer with status and the raw body.
func (b *Backend) Fail(method, route string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.overrides[method+" "+route] = override{status: status, body: body}
}

// Requests returns a copy of everything received so far.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

// Count returns how many requests matched method and the exact path.
func (b *Backend) Count(method, path string) int {
	n := 0
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Reset forgets recorded requests.
func (b *Backend) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = nil
}

func (b *Backend) newID() int64 {
	b.nextID++
	return b.nextID
}

func (b *Backend) record() gin.HandlerFunc {
	return func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		b.mu.Lock()
		b.requests = append(b.requests, Request{
			Method:   c.Request.Method,
			Path:     c.Request.URL.Path,
			RawQuery: c.Request.URL.RawQuery,
			Body:     body,
		})
		b.mu.Unlock()
		c.Next()
	}
}

func (b *Backend) forced() gin.HandlerFunc {
	return func(c *gin.Context) {
		b.mu.Lock()
		o, ok := b.overrides[c.Request.Method+" "+c.FullPath()]
		b.mu.Unlock()
		if !ok {
			c.Next()
			return
		}
		c.Data(o.status, "application/json", []byte(o.body))
		c.Abort()
	}
}

func (b *Backend) listMeetings(c *gin.Context) {
	b.mu.Lock()
	out := append([]model.Meeting{}, b.meetings...)
	b.mu.Unlock()
	c.JSON(http.StatusOK, model.MeetingList{Meetings: out})
}

func (b *Backend) createMeeting(c *gin.Context) {
	var req struct {
		Title *string `json:"title"`
		Date  *string `json:"date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == nil || req.Date == nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": "field required"}}})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, m := range b.meetings {
		if m.Title == *req.Title && m.Date == *req.Date {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "You already created a meeting with this title on that date."})
			return
		}
	}
	id := b.newID()
	m := model.Meeting{ID: id, Title: *req.Title, Date: *req.Date, Code: fmt.Sprintf("M%03d", id%1000)}
	m.QRURL = m.QRImage()
	b.meetings = append(b.meetings, m)
	c.JSON(http.StatusOK, gin.H{
		"msg":        "Meeting created successfully",
		"meeting_id": m.ID,
		"date":       m.Date,
		"code":       m.Code,
		"title":      m.Title,
		"qr_url":     m.QRURL,
	})
}

func (b *Backend) deleteMeeting(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)

	b.mu.Lock()
	defer b.mu.Unlock()
	for i, m := range b.meetings {
		if m.ID != id {
			continue
		}
		b.meetings = append(b.meetings[:i], b.meetings[i+1:]...)
		b.dropCheckins(func(ci checkin) bool { return ci.meetingID == id })
		c.JSON(http.StatusOK, model.Message{Msg: "Meeting deleted successfully"})
		return
	}
	c.JSON(http.StatusOK, model.Message{Msg: "Meeting not found or unauthorized"})
}

func (b *Backend) listMembers(c *gin.Context) {
	b.mu.Lock()
	out := append([]model.Member{}, b.members...)
	b.mu.Unlock()
	c.JSON(http.StatusOK, model.MemberList{Members: out})
}

func (b *Backend) deleteMember(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)

	b.mu.Lock()
	defer b.mu.Unlock()
	for i, m := range b.members {
		if m.ID != id {
			continue
		}
		b.members = append(b.members[:i], b.members[i+1:]...)
		b.dropCheckins(func(ci checkin) bool { return ci.userID == id })
		c.JSON(http.StatusOK, model.Message{Msg: "Member deleted successfully"})
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"detail": "Member not found"})
}

func (b *Backend) listAttendance(c *gin.Context) {
	name := strings.ToLower(c.Query("user_name"))
	date := c.Query("meeting_date")

	b.mu.Lock()
	rows := b.joined()
	b.mu.Unlock()

	out := make([]model.AttendanceRecord, 0, len(rows))
	for _, r := range rows {
		switch {
		case name != "":
			if !strings.Contains(strings.ToLower(r.UserName), name) {
				continue
			}
		case date != "":
			if r.MeetingDate != date {
				continue
			}
		}
		out = append(out, r)
	}
	c.JSON(http.StatusOK, model.AttendanceList{Attendance: out})
}

func (b *Backend) exportMembers(c *gin.Context) {
	b.mu.Lock()
	members := append([]model.Member{}, b.members...)
	b.mu.Unlock()

	rows := [][]string{{"Name", "Email"}}
	for _, m := range members {
		rows = append(rows, []string{m.Name, m.Email})
	}
	writeCSV(c, "members.csv", rows)
}

func (b *Backend) exportAttendance(c *gin.Context) {
	meetingID, _ := strconv.ParseInt(c.Query("meeting_id"), 10, 64)
	userID, _ := strconv.ParseInt(c.Query("user_id"), 10, 64)

	b.mu.Lock()
	recs := b.joined()
	b.mu.Unlock()

	rows := [][]string{{"Member Name", "Member Email", "Meeting Title", "Meeting Date"}}
	for _, r := range recs {
		if meetingID > 0 && r.MeetingID != meetingID {
			continue
		}
		if meetingID == 0 && userID > 0 && r.UserID != userID {
			continue
		}
		rows = append(rows, []string{r.UserName, r.UserEmail, r.MeetingTitle, r.MeetingDate})
	}
	writeCSV(c, "attendance.csv", rows)
}

// joined resolves check-ins against current members and meetings; records
// whose member or meeting is gone are skipped. Callers hold b.mu.
func (b *Backend) joined() []model.AttendanceRecord {
	var out []model.AttendanceRecord
	for _, ci := range b.checkins {
		var member *model.Member
		for i := range b.members {
			if b.members[i].ID == ci.userID {
				member = &b.members[i]
				break
			}
		}
		var meeting *model.Meeting
		for i := range b.meetings {
			if b.meetings[i].ID == ci.meetingID {
				meeting = &b.meetings[i]
				break
			}
		}
		if member == nil || meeting == nil {
			continue
		}
		out = append(out, model.AttendanceRecord{
			ID:           ci.id,
			UserID:       member.ID,
			MeetingID:    meeting.ID,
			UserName:     member.Name,
			UserEmail:    member.Email,
			MeetingTitle: meeting.Title,
			MeetingDate:  meeting.Date,
		})
	}
	return out
}

func (b *Backend) dropCheckins(match func(checkin) bool) {
	kept := b.checkins[:0]
	for _, ci := range b.checkins {
		if !match(ci) {
			kept = append(kept, ci)
		}
	}
	b.checkins = kept
}

func writeCSV(c *gin.Context, filename string, rows [][]string) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.WriteAll(rows)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}
