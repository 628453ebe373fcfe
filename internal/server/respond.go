package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/koustreak/schemastore/internal/errs"
	"github.com/koustreak/schemastore/internal/store"
)

// maxBody bounds request bodies.
const maxBody = 1 << 20

// statusFor maps a result to an HTTP status. err refines DriverError.
func statusFor(res store.Result, err error) int {
	switch res.Kind {
	case store.Success:
		return http.StatusOK
	case store.AlreadyExists:
		return http.StatusConflict
	case store.NotFound:
		return http.StatusNotFound
	case store.SchemaMismatch:
		return http.StatusUnprocessableEntity
	case store.NotConnected:
		return http.StatusServiceUnavailable
	case store.Unsupported:
		return http.StatusNotImplemented
	case store.InvalidInput:
		return http.StatusBadRequest
	}

	switch errs.KindOf(err) {
	case errs.ErrKindTimeout:
		return http.StatusGatewayTimeout
	case errs.ErrKindPermissionDenied:
		return http.StatusForbidden
	case errs.ErrKindConnectionFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeResult writes res, upgrading a 200 to okStatus (e.g. 201).
func writeResult(w http.ResponseWriter, okStatus int, res store.Result, err error) {
	status := statusFor(res, err)
	if status == http.StatusOK {
		status = okStatus
	}
	writeJSON(w, status, res)
}

// writeError answers a failure that happened outside a store call.
func writeError(w http.ResponseWriter, err error) {
	res := store.Result{Kind: store.DriverError, Message: err.Error()}
	switch errs.KindOf(err) {
	case errs.ErrKindInvalidInput:
		res.Kind = store.InvalidInput
	case errs.ErrKindNotConnected:
		res.Kind = store.NotConnected
	}
	writeJSON(w, statusFor(res, err), res)
}

// decode reads a JSON body into dst. Numbers are kept exact: integers
// become int64 and everything else float64. An empty body leaves dst as is.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errs.Wrap(errs.ErrKindInvalidInput, "invalid JSON body", err)
	}
	return nil
}

// normalize converts json.Number values for binding.
func normalize(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

func normalizeRow(row store.RowData) store.RowData {
	for k, v := range row {
		row[k] = normalize(v)
	}
	return row
}

func normalizeArgs(args []any) []any {
	for i, v := range args {
		args[i] = normalize(v)
	}
	return args
}
