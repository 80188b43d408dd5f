// Package handler exposes the pharmacy services over HTTP.
package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/service"
	"github.com/pharmacare/pharmacare-backend/pkg/errors"
	"github.com/pharmacare/pharmacare-backend/pkg/httputil"
)

const maxUploadSize = 10 << 20

// idsRequest is the body of bulk endpoints
type idsRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,uuid"`
}

func listParams(r *http.Request) service.ListParams {
	page, perPage := httputil.Pagination(r)
	return service.ListParams{
		Page:    page,
		PerPage: perPage,
		Search:  r.URL.Query().Get("search"),
	}
}

// list writes a page of items with pagination metadata.
func list[T any](w http.ResponseWriter, params service.ListParams, items []T, total int64) {
	if items == nil {
		items = []T{}
	}
	httputil.JSONWithMeta(w, http.StatusOK, items, httputil.NewMeta(params.Page, params.PerPage, total))
}

// byID runs an action on the {id} path parameter and writes its result.
func byID[T any](w http.ResponseWriter, r *http.Request, fn func(context.Context, string) (T, error)) {
	out, err := fn(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, out)
}

func queryBoolPtr(r *http.Request, key string) (*bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, errors.ValidationField(key, "must be true or false")
	}
	return &b, nil
}

// readUpload reads the "file" part of a multipart request. The returned
// close func must be called once the upload has been consumed.
func readUpload(w http.ResponseWriter, r *http.Request) (service.Upload, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return service.Upload{}, nil, errors.BadRequest("invalid multipart form or file too large")
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return service.Upload{}, nil, errors.ValidationField("file", "this field is required")
	}
	return service.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	}, func() { file.Close() }, nil
}
