package store

import (
	"fmt"

	"github.com/koustreak/schemastore/internal/errs"
)

// Kind classifies the outcome of a store operation.
type Kind int

const (
	Success        Kind = iota
	AlreadyExists       // target table/column already present; nothing done
	NotFound            // table absent; nothing done
	SchemaMismatch      // table or column required by a column operation is absent
	DriverError         // the database rejected or failed the statement
	NotConnected        // the store has no connection
	Unsupported         // the dialect has no equivalent statement
	InvalidInput        // arguments rejected before reaching the database
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case AlreadyExists:
		return "already_exists"
	case NotFound:
		return "not_found"
	case SchemaMismatch:
		return "schema_mismatch"
	case DriverError:
		return "driver_error"
	case NotConnected:
		return "not_connected"
	case Unsupported:
		return "unsupported"
	case InvalidInput:
		return "invalid_input"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText renders the kind by name in JSON and YAML.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a name written by MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	for c := Success; c <= InvalidInput; c++ {
		if c.String() == string(text) {
			*k = c
			return nil
		}
	}
	return errs.Newf(errs.ErrKindInvalidInput, "unknown result kind %q", text)
}

// Result reports what an operation did. Guard outcomes (AlreadyExists,
// NotFound, SchemaMismatch) come back as a Result with a nil error; every
// other non-Success kind is paired with a non-nil *errs.Error.
type Result struct {
	Kind         Kind   `json:"kind"`
	Message      string `json:"message"`
	RowsAffected int64  `json:"rows_affected,omitempty"`
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool { return r.Kind == Success }

func success(format string, args ...any) Result {
	return Result{Kind: Success, Message: fmt.Sprintf(format, args...)}
}

func outcome(kind Kind, format string, args ...any) Result {
	return Result{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// failure turns an error into the matching Result. The error is returned
// unchanged so callers can propagate it.
func failure(err error) (Result, error) {
	kind := DriverError
	switch errs.KindOf(err) {
	case errs.ErrKindNotConnected:
		kind = NotConnected
	case errs.ErrKindInvalidInput:
		kind = InvalidInput
	case errs.ErrKindUnsupported:
		kind = Unsupported
	}
	return Result{Kind: kind, Message: err.Error()}, err
}
