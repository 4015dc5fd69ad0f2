package apiclient

import "testing"

func TestAttendanceQueryPath(t *testing.T) {
	tests := []struct {
		name string
		q    AttendanceQuery
		want string
	}{
		{"empty", AttendanceQuery{}, "/api/attendance"},
		{"name", AttendanceQuery{UserName: "Ann"}, "/api/attendance?user_name=Ann"},
		{"date", AttendanceQuery{MeetingDate: "2024-01-01"}, "/api/attendance?meeting_date=2024-01-01"},
		{"both", AttendanceQuery{UserName: "Ann", MeetingDate: "2024-01-01"}, "/api/attendance?user_name=Ann"},
		{"escaped", AttendanceQuery{UserName: "Ann Lee&co"}, "/api/attendance?user_name=Ann%20Lee%26co"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.q.Path(); got != tt.want {
				t.Errorf("Path() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAttendanceExportQueryPath(t *testing.T) {
	tests := []struct {
		q    AttendanceExportQuery
		want string
	}{
		{AttendanceExportQuery{}, "/api/attendance/export"},
		{AttendanceExportQuery{UserID: 4}, "/api/attendance/export?user_id=4"},
		{AttendanceExportQuery{MeetingID: 2, UserID: 4}, "/api/attendance/export?meeting_id=2"},
	}
	for _, tt := range tests {
		if got := tt.q.Path(); got != tt.want {
			t.Errorf("Path() = %q, want %q", got, tt.want)
		}
	}
}
