// Package service holds the pharmacy use cases. Services validate references,
// drive the domain transitions, persist them through the repositories and
// publish events once the work has committed.
package service

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/repository"
	"github.com/pharmacare/pharmacare-backend/pkg/errors"
)

// Transactor runs fn in a transaction carried by ctx. Nested calls join the
// outer transaction.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// FileStore stores uploaded files and returns their URL.
type FileStore interface {
	Upload(ctx context.Context, prefix, filename, contentType string, body io.Reader) (string, error)
}

var errUploadsDisabled = errors.New("STORAGE_UNAVAILABLE", "file storage is not configured", http.StatusServiceUnavailable)

// Upload is a file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// ListParams are the paging and free-text inputs shared by list endpoints.
type ListParams struct {
	Page    int
	PerPage int
	Search  string
}

func (p ListParams) page() repository.Page {
	return repository.NewPage(p.Page, p.PerPage)
}

func utcNow() time.Time {
	return time.Now().UTC()
}

func lowerStatus(status string) string {
	return strings.ToLower(status)
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
