package database

import (
	"database/sql"
	"fmt"
	"net/http"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmacare/pharmacare-backend/pkg/errors"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{name: "no rows", err: sql.ErrNoRows, code: "NOT_FOUND", status: http.StatusNotFound},
		{name: "malformed uuid", err: &pq.Error{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`}, code: "NOT_FOUND", status: http.StatusNotFound},
		{name: "duplicate sku", err: &pq.Error{Code: "23505", Constraint: "products_sku_key"}, code: "CONFLICT", status: http.StatusConflict},
		{name: "prescription already on an open order", err: &pq.Error{Code: "23505", Constraint: "orders_open_prescription_key"}, code: "CONFLICT", status: http.StatusConflict},
		{name: "missing reference", err: &pq.Error{Code: "23503"}, code: "BAD_REQUEST", status: http.StatusBadRequest},
		{name: "negative stock", err: &pq.Error{Code: "23514", Constraint: "inventory_stock_level_non_negative"}, code: "VALIDATION_ERROR", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapError(fmt.Errorf("query: %w", tt.err), "product", "get")

			var appErr *errors.AppError
			require.True(t, errors.As(err, &appErr), "got %v", err)
			assert.Equal(t, tt.code, appErr.Code)
			assert.Equal(t, tt.status, appErr.StatusCode)
		})
	}

	t.Run("open prescription message", func(t *testing.T) {
		appErr := MapPQError(&pq.Error{Code: "23505", Constraint: "orders_open_prescription_key"})
		require.NotNil(t, appErr)
		assert.Contains(t, appErr.Message, "open order")
	})

	t.Run("unknown driver errors are wrapped", func(t *testing.T) {
		err := MapError(sql.ErrConnDone, "product", "get")
		assert.ErrorIs(t, err, sql.ErrConnDone)
		assert.Contains(t, err.Error(), "get product")
	})

	assert.NoError(t, MapError(nil, "product", "get"))
}
