package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pharmacare/pharmacare-backend/pkg/actor"
)

// NewHTTPRequest builds a request with body encoded as JSON. A nil body
// sends no payload.
func NewHTTPRequest(method, path string, body interface{}) *http.Request {
	var r io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		r = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// WithActor authenticates the request as user id holding permissions,
// bypassing token parsing.
func WithActor(req *http.Request, id string, permissions ...string) *http.Request {
	a := &actor.Actor{
		ID:          id,
		Username:    "tester",
		Permissions: permissions,
	}
	return req.WithContext(actor.WithActor(req.Context(), a))
}

// ExecuteRequest serves req on handler and records the response
func ExecuteRequest(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// AssertStatus fails with the response body when the status differs
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	assert.Equal(t, expected, rr.Code, "unexpected status, body: %s", rr.Body.String())
}

// SkipIfShort skips integration tests under -short
func SkipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
}

func PtrString(s string) *string { return &s }

func PtrBool(b bool) *bool { return &b }
