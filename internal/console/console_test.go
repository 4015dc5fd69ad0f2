package console

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"

	"go.uber.org/zap"

	"onetap-admin/internal/apiclient"
	"onetap-admin/internal/apitest"
	"onetap-admin/internal/model"
)

func runScript(t *testing.T, backend *apitest.Backend, script string) string {
	t.Helper()
	var out bytes.Buffer
	c := New(Options{
		API:       apiclient.New(backend.URL(), 0, nil, zap.NewNop()),
		In:        strings.NewReader(script),
		Out:       &out,
		QueueSize: 4,
		Log:       zap.NewNop(),
	})
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String()
}

func TestRun_InitialLoadRendersAllTables(t *testing.T) {
	backend := apitest.New(t)
	backend.AddMeeting(model.Meeting{Title: "Sync", Date: "2024-01-01", Code: "ABC123"})
	backend.AddMember(model.Member{Name: "Ann", Email: "ann@example.com"})

	out := runScript(t, backend, "quit\n")

	for _, want := range []string{
		"== Meetings (1) ==",
		"== Members (1) ==",
		"== Attendance (0) ==",
		"Sync",
		backend.URL() + "/static/qrcodes/ABC123.png",
		"ann@example.com",
		"[Delete]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestRun_EndOfInputStops(t *testing.T) {
	backend := apitest.New(t)
	runScript(t, backend, "")
	if n := len(backend.Requests()); n != 3 {
		t.Errorf("got %d requests, want the three initial loads", n)
	}
}

func TestRun_DeleteMemberConfirmed(t *testing.T) {
	backend := apitest.New(t)
	backend.AddMember(model.Member{ID: 5, Name: "Ann", Email: "ann@example.com"})

	out := runScript(t, backend, "delete member 1\ny\n\nquit\n")

	if n := backend.Count(http.MethodDelete, "/api/members/5"); n != 1 {
		t.Fatalf("DELETE sent %d times, want 1", n)
	}
	if n := backend.Count(http.MethodGet, "/api/members"); n != 2 {
		t.Errorf("members loaded %d times, want initial + reload", n)
	}
	if n := backend.Count(http.MethodGet, "/api/attendance"); n != 2 {
		t.Errorf("attendance loaded %d times, want initial + reload", n)
	}
	if !strings.Contains(out, "Member deleted successfully") {
		t.Errorf("server message not shown\n%s", out)
	}
	if !strings.Contains(out, "== Members (0) ==") {
		t.Errorf("members table not re-rendered empty\n%s", out)
	}
}

func TestRun_DeleteMeetingDeclined(t *testing.T) {
	backend := apitest.New(t)
	backend.AddMeeting(model.Meeting{ID: 9, Title: "Sync", Date: "2024-01-01", Code: "ABC1"})

	runScript(t, backend, "delete meeting 1\nn\nquit\n")

	if n := backend.Count(http.MethodDelete, "/api/meetings/9"); n != 0 {
		t.Errorf("DELETE sent %d times after declining", n)
	}
	if n := backend.Count(http.MethodGet, "/api/meetings"); n != 1 {
		t.Errorf("meetings loaded %d times, want only the initial load", n)
	}
}

func TestRun_NewMeeting(t *testing.T) {
	backend := apitest.New(t)

	out := runScript(t, backend, "new\nSync\n2024-01-01\n\nquit\n")

	if n := backend.Count(http.MethodPost, "/api/meetings"); n != 1 {
		t.Fatalf("POST sent %d times, want 1", n)
	}
	if !strings.Contains(out, "Meeting created successfully") {
		t.Errorf("confirmation not shown\n%s", out)
	}
	if !strings.Contains(out, "== Meetings (1) ==") {
		t.Errorf("meetings not re-rendered\n%s", out)
	}
}

func TestRun_NewMeetingFailureKeepsValues(t *testing.T) {
	backend := apitest.New(t)
	backend.AddMeeting(model.Meeting{Title: "Sync", Date: "2024-01-01", Code: "ABC1"})

	out := runScript(t, backend, "new\nSync\n2024-01-01\n\nnew\n\n\n\nquit\n")

	if n := backend.Count(http.MethodPost, "/api/meetings"); n != 2 {
		t.Fatalf("POST sent %d times, want 2", n)
	}
	if !strings.Contains(out, "Title [Sync]: ") {
		t.Errorf("second prompt should offer the kept title\n%s", out)
	}
}

func TestRun_FilterAttendance(t *testing.T) {
	backend := apitest.New(t)

	runScript(t, backend, "filter\nAnn\n\nfilter\n-\n2024-01-01\nquit\n")

	var uris []string
	for _, r := range backend.Requests() {
		if r.Path == "/api/attendance" {
			uris = append(uris, r.URI())
		}
	}
	want := []string{"/api/attendance", "/api/attendance?user_name=Ann", "/api/attendance?meeting_date=2024-01-01"}
	if strings.Join(uris, " ") != strings.Join(want, " ") {
		t.Errorf("attendance requests = %v, want %v", uris, want)
	}
}

func TestRun_ExportAndErrors(t *testing.T) {
	backend := apitest.New(t)

	out := runScript(t, backend, "export attendance meeting 3\nexport members\nbogus\ndelete meeting 4\nquit\n")

	for _, want := range []string{
		"-> " + backend.URL() + "/api/attendance/export?meeting_id=3",
		"-> " + backend.URL() + "/api/members/export",
		`error: unknown command "bogus"`,
		"error: meetings has no row 4",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}
