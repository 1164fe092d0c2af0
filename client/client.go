package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/school"
)

// API is the server surface the workspace depends on.
type API interface {
	Students(ctx context.Context) ([]school.Student, error)
	Classes(ctx context.Context) ([]school.Class, error)
	Sections(ctx context.Context) ([]school.Section, error)
	Allotments(ctx context.Context) ([]school.AllotmentView, error)
	CreateAllotment(ctx context.Context, na school.NewAllotment) (school.AllotmentView, error)
	UpdateAllotment(ctx context.Context, id int, ua school.UpdateAllotment) (school.AllotmentView, error)
	DeleteAllotment(ctx context.Context, id int) (school.Allotment, error)
}

// APIError is any non-2xx response, carrying the envelope's message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return e.Message
}

// envelope mirrors the server's response shape.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message json.RawMessage `json:"message"`
}

// message renders the envelope message, which is either a plain string or
// a field error map for validation failures.
func (env envelope) message() string {
	if len(env.Message) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(env.Message, &s); err == nil {
		return s
	}
	var fields map[string]string
	if err := json.Unmarshal(env.Message, &fields); err == nil {
		parts := make([]string, 0, len(fields))
		for field, msg := range fields {
			parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
		}
		sort.Strings(parts)
		return strings.Join(parts, "; ")
	}
	return string(env.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
}

var _ API = (*Client)(nil)

// NewClient targets baseURL, e.g. "http://localhost:8000". An optional
// *http.Client overrides the default transport.
func NewClient(baseURL string, httpClient ...*http.Client) *Client {
	hc := http.DefaultClient
	if len(httpClient) > 0 && httpClient[0] != nil {
		hc = httpClient[0]
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encoding request body")
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return errors.Wrap(err, "creating request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer func() { _ = resp.Body.Close() }()

	var env envelope
	if err = json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return errors.Wrapf(err, "decoding response (status %d)", resp.StatusCode)
	}
	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		return &APIError{StatusCode: resp.StatusCode, Message: env.message()}
	}
	if out != nil && len(env.Data) > 0 {
		return errors.Wrap(json.Unmarshal(env.Data, out), "decoding response data")
	}
	return nil
}

func (c *Client) Students(ctx context.Context) ([]school.Student, error) {
	var students []school.Student
	err := c.do(ctx, http.MethodGet, "/api/students", nil, &students)
	return students, err
}

func (c *Client) Classes(ctx context.Context) ([]school.Class, error) {
	var classes []school.Class
	err := c.do(ctx, http.MethodGet, "/api/classes", nil, &classes)
	return classes, err
}

func (c *Client) Sections(ctx context.Context) ([]school.Section, error) {
	var sections []school.Section
	err := c.do(ctx, http.MethodGet, "/api/sections", nil, &sections)
	return sections, err
}

func (c *Client) Allotments(ctx context.Context) ([]school.AllotmentView, error) {
	var views []school.AllotmentView
	err := c.do(ctx, http.MethodGet, "/api/allotments", nil, &views)
	return views, err
}

func (c *Client) CreateAllotment(ctx context.Context, na school.NewAllotment) (school.AllotmentView, error) {
	var view school.AllotmentView
	err := c.do(ctx, http.MethodPost, "/api/create-allotment", na, &view)
	return view, err
}

func (c *Client) UpdateAllotment(ctx context.Context, id int, ua school.UpdateAllotment) (school.AllotmentView, error) {
	var view school.AllotmentView
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/allotments/%d", id), ua, &view)
	return view, err
}

func (c *Client) DeleteAllotment(ctx context.Context, id int) (school.Allotment, error) {
	var alt school.Allotment
	err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/allotments/%d", id), nil, &alt)
	return alt, err
}
