package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"onetap-admin/internal/model"
)

// RequestIDHeader carries a per-request id the backend can log.
const RequestIDHeader = "X-Request-ID"

// Client calls the attendance backend's REST API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Log     *zap.Logger
}

// New creates a client. A zero timeout means requests never time out.
func New(baseURL string, timeout time.Duration, transport http.RoundTripper, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		Log: log,
	}
}

// ResolveURL turns a backend-relative path into an absolute URL. Absolute
// URLs are returned unchanged.
func (c *Client) ResolveURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.BaseURL + path
}

// ListMeetings returns the admin's meetings.
func (c *Client) ListMeetings(ctx context.Context) ([]model.Meeting, error) {
	var out model.MeetingList
	if err := c.getList(ctx, "/api/meetings", &out); err != nil {
		return nil, err
	}
	return out.Meetings, nil
}

// CreateMeeting posts a new meeting and returns the server's confirmation.
// Title and date are sent exactly as given.
func (c *Client) CreateMeeting(ctx context.Context, title, date string) (string, error) {
	body, err := json.Marshal(model.NewMeeting{Title: title, Date: date})
	if err != nil {
		return "", err
	}
	resp, err := c.do(ctx, http.MethodPost, "/api/meetings", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", apiError(resp)
	}
	var out model.Message
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: create meeting: %v", ErrDecode, err)
	}
	return out.Msg, nil
}

// DeleteMeeting deletes a meeting and returns the server's message.
func (c *Client) DeleteMeeting(ctx context.Context, id int64) (string, error) {
	return c.deleteResource(ctx, "/api/meetings/"+strconv.FormatInt(id, 10))
}

// ListMembers returns the admin's members.
func (c *Client) ListMembers(ctx context.Context) ([]model.Member, error) {
	var out model.MemberList
	if err := c.getList(ctx, "/api/members", &out); err != nil {
		return nil, err
	}
	return out.Members, nil
}

// DeleteMember deletes a member and returns the server's message.
func (c *Client) DeleteMember(ctx context.Context, id int64) (string, error) {
	return c.deleteResource(ctx, "/api/members/"+strconv.FormatInt(id, 10))
}

// ListAttendance returns attendance records matching q.
func (c *Client) ListAttendance(ctx context.Context, q AttendanceQuery) ([]model.AttendanceRecord, error) {
	var out model.AttendanceList
	if err := c.getList(ctx, q.Path(), &out); err != nil {
		return nil, err
	}
	return out.Attendance, nil
}

// MembersExportURL is where the backend streams the members CSV.
func (c *Client) MembersExportURL() string {
	return c.ResolveURL("/api/members/export")
}

// AttendanceExportURL is where the backend streams the attendance CSV.
func (c *Client) AttendanceExportURL(q AttendanceExportQuery) string {
	return c.ResolveURL(q.Path())
}

// Health checks that the backend answers at all.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("backend unhealthy: %s", resp.Status)
	}
	return nil
}

// deleteResource never branches on status: any decodable {msg} (or
// {detail}) body is returned as the message.
func (c *Client) deleteResource(ctx context.Context, path string) (string, error) {
	resp, err := c.do(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", ErrTransport, path, err)
	}
	var out struct {
		Msg string `json:"msg"`
		model.ErrorBody
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: delete %s: %v", ErrDecode, path, err)
	}
	if out.Msg != "" {
		return out.Msg, nil
	}
	return out.Text(), nil
}

func (c *Client) getList(ctx context.Context, path string, dst any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return apiError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: list %s: %v", ErrDecode, path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.ResolveURL(path), rdr)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.Log.Warn("backend request failed",
			zap.String("method", method), zap.String("path", path),
			zap.String("request_id", reqID), zap.Error(err))
		return nil, fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}
	c.Log.Debug("backend request",
		zap.String("method", method), zap.String("path", path),
		zap.Int("status", resp.StatusCode), zap.String("request_id", reqID),
		zap.Duration("elapsed", time.Since(start)))
	return resp, nil
}
