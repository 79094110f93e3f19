package apitest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/prperemyshlev/storyboard-api/internal/dto"
)

// RequestOptions tunes a single harness request. The zero value sends the
// request under DefaultPathPrefix and treats any status >= 400 as an error.
type RequestOptions struct {
	// Headers override DefaultHeaders key by key
	Headers http.Header
	// ExpectErrors returns error responses instead of an *AppError
	ExpectErrors bool
	// Environ may adjust the request before it is served, e.g. RemoteAddr
	Environ func(*http.Request)
	// Status, when non-zero, is the only acceptable response status
	Status int
	// Query is flattened into parallel q.field, q.op and q.value parameters
	Query []dto.QueryFilter
	// Params are sent as plain query parameters
	Params url.Values
	// PathPrefix replaces DefaultPathPrefix; point it at "" for absolute paths
	PathPrefix *string
}

// Response is a recorded application response
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// JSON decodes the response body into v
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode %d response %q: %w", r.Status, r.Body, err)
	}
	return nil
}

// AppError is returned for responses whose status was not expected
type AppError struct {
	Method string
	Path   string
	Status int
	Body   []byte
}

func (e *AppError) Error() string {
	return fmt.Sprintf("bad response: %d %s for %s %s: %s",
		e.Status, http.StatusText(e.Status), e.Method, e.Path, strings.TrimSpace(string(e.Body)))
}

// Request sends method path to the application in-process. params, when
// non-nil, is encoded as the JSON request body. The *Response is returned
// even when the status check fails, alongside the *AppError.
func (h *Harness) Request(method, path string, params any, opts RequestOptions) (*Response, error) {
	if h.handler == nil {
		return nil, fmt.Errorf("no application: call MakeApp first")
	}

	prefix := DefaultPathPrefix
	if opts.PathPrefix != nil {
		prefix = *opts.PathPrefix
	}

	target := prefix + path
	if query := encodeQuery(opts.Query, opts.Params); query != "" {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + query
	}

	var body io.Reader
	if params != nil {
		payload, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Accept", "application/json")
	if params != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, values := range mergeHeaders(h.DefaultHeaders, opts.Headers) {
		req.Header[key] = values
	}
	if opts.Environ != nil {
		opts.Environ(req)
	}

	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, req)

	resp := &Response{
		Status: w.Code,
		Header: w.Header(),
		Body:   w.Body.Bytes(),
	}

	if unexpectedStatus(resp.Status, opts) {
		return resp, &AppError{Method: method, Path: target, Status: resp.Status, Body: resp.Body}
	}

	return resp, nil
}

// GetJSON sends a GET and, for successful responses, decodes the body into v when v is non-nil
func (h *Harness) GetJSON(path string, v any, opts RequestOptions) (*Response, error) {
	resp, err := h.Request(http.MethodGet, path, nil, opts)
	if err != nil {
		return resp, err
	}

	if v != nil && resp.Status < http.StatusBadRequest {
		if err := resp.JSON(v); err != nil {
			return resp, err
		}
	}

	return resp, nil
}

// PostJSON sends params as a JSON POST body
func (h *Harness) PostJSON(path string, params any, opts RequestOptions) (*Response, error) {
	return h.Request(http.MethodPost, path, params, opts)
}

// PutJSON sends params as a JSON PUT body
func (h *Harness) PutJSON(path string, params any, opts RequestOptions) (*Response, error) {
	return h.Request(http.MethodPut, path, params, opts)
}

// PatchJSON sends params as a JSON PATCH body
func (h *Harness) PatchJSON(path string, params any, opts RequestOptions) (*Response, error) {
	return h.Request(http.MethodPatch, path, params, opts)
}

// Delete sends a DELETE without a body
func (h *Harness) Delete(path string, opts RequestOptions) (*Response, error) {
	return h.Request(http.MethodDelete, path, nil, opts)
}

// ValidateLink reports whether an absolute link served by the application can be fetched
func (h *Harness) ValidateLink(link string) bool {
	u, err := url.Parse(link)
	if err != nil || u.Path == "" {
		return false
	}

	noPrefix := ""
	_, err = h.GetJSON(u.RequestURI(), nil, RequestOptions{PathPrefix: &noPrefix})
	return err == nil
}

func unexpectedStatus(status int, opts RequestOptions) bool {
	if opts.Status != 0 {
		return status != opts.Status
	}
	return !opts.ExpectErrors && status >= http.StatusBadRequest
}

// mergeHeaders copies defaults and lets overrides replace whole keys
func mergeHeaders(defaults, overrides http.Header) http.Header {
	merged := defaults.Clone()
	if merged == nil {
		merged = make(http.Header)
	}
	for key, values := range overrides {
		merged[http.CanonicalHeaderKey(key)] = values
	}
	return merged
}

// encodeQuery flattens filters into parallel q.* arrays, keeping positions aligned
func encodeQuery(filters []dto.QueryFilter, params url.Values) string {
	values := url.Values{}
	for key, vs := range params {
		values[key] = append([]string(nil), vs...)
	}

	for _, f := range filters {
		values.Add("q.field", f.Field)
		values.Add("q.op", f.Op)
		values.Add("q.value", f.Value)
	}

	return values.Encode()
}
