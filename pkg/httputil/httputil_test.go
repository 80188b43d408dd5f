package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmacare/pharmacare-backend/pkg/errors"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestError_MapsKindsToStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", errors.NotFound("alert"), http.StatusNotFound, "NOT_FOUND"},
		{"illegal state", errors.IllegalState("alert already resolved"), http.StatusBadRequest, "ILLEGAL_STATE"},
		{"duplicate", errors.DuplicateRelationship("product alternative"), http.StatusConflict, "DUPLICATE_RELATIONSHIP"},
		{"wrapped", fmt.Errorf("resolve: %w", errors.NotFound("alert")), http.StatusNotFound, "NOT_FOUND"},
		{"unknown", fmt.Errorf("connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/x", nil)

			Error(rec, req, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			resp := decode(t, rec)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestError_UnknownErrorHidesMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, httptest.NewRequest(http.MethodGet, "/x", nil), fmt.Errorf("pq: password authentication failed"))

	resp := decode(t, rec)
	assert.NotContains(t, resp.Error.Message, "password")
}

func TestPagination(t *testing.T) {
	tests := []struct {
		query       string
		wantPage    int
		wantPerPage int
	}{
		{"", 1, DefaultPerPage},
		{"page=3&per_page=50", 3, 50},
		{"page=-1&per_page=0", 1, DefaultPerPage},
		{"per_page=1000", 1, MaxPerPage},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/items?"+tt.query, nil)
			page, perPage := Pagination(req)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantPerPage, perPage)
		})
	}
}

func TestNewMeta(t *testing.T) {
	meta := NewMeta(2, 20, 41)
	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, int64(41), meta.Total)
}

func TestDecodeAndValidate(t *testing.T) {
	type body struct {
		Quantity int    `json:"quantity" validate:"required,gt=0"`
		Reason   string `json:"reason" validate:"required"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"quantity":0}`))
	var b body
	err := DecodeAndValidate(req, &b)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	assert.Contains(t, appErr.Details, "Quantity")
	assert.Contains(t, appErr.Details, "Reason")

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{not json`))
	err = DecodeAndValidate(req, &b)
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "BAD_REQUEST", appErr.Code)
}

func TestQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?days=14&bad=x", nil)

	n, err := QueryInt(req, "days", 30)
	require.NoError(t, err)
	assert.Equal(t, 14, n)

	n, err = QueryInt(req, "missing", 30)
	require.NoError(t, err)
	assert.Equal(t, 30, n)

	_, err = QueryInt(req, "bad", 30)
	assert.Error(t, err)
}

func TestValidate_Money(t *testing.T) {
	type body struct {
		Cost  string          `validate:"required,money"`
		Price decimal.Decimal `validate:"money"`
	}

	tests := []struct {
		name    string
		in      body
		invalid []string
	}{
		{name: "valid amounts", in: body{Cost: "12.50", Price: decimal.RequireFromString("0.99")}},
		{name: "zero price", in: body{Cost: "0", Price: decimal.Zero}},
		{name: "negative cost", in: body{Cost: "-0.01"}, invalid: []string{"Cost"}},
		{name: "not a number", in: body{Cost: "ten"}, invalid: []string{"Cost"}},
		{name: "negative price", in: body{Cost: "1", Price: decimal.NewFromInt(-3)}, invalid: []string{"Price"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.in)
			if len(tt.invalid) == 0 {
				assert.NoError(t, err)
				return
			}
			var appErr *errors.AppError
			require.True(t, errors.As(err, &appErr))
			for _, field := range tt.invalid {
				assert.Equal(t, "must be a non-negative decimal", appErr.Details[field])
			}
		})
	}
}
