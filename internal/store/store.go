package store

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"resdb-tools/internal/record"

	"github.com/oklog/ulid/v2"
)

// Backend is a record store.
type Backend interface {
	Fetch(ctx context.Context, id record.Identity) (record.Record, error)
	// Persist replaces an existing record. Renaming a directory moves its
	// descendants' paths along with it.
	Persist(ctx context.Context, rec record.Record) error
	Create(ctx context.Context, rec record.Record) (record.Record, error)
	Delete(ctx context.Context, id record.Identity) error
	List(ctx context.Context, ownerID, path string) ([]record.Record, error)
	Close() error
}

type FailureCode string

const (
	CodeNotFound     FailureCode = "not_found"
	CodeUnauthorized FailureCode = "unauthorized"
	CodeUnavailable  FailureCode = "unavailable"
	CodeInvalid      FailureCode = "invalid"
	CodeConflict     FailureCode = "conflict"
)

// FailureInfo is a structured store failure with a user-facing message.
type FailureInfo struct {
	Code    FailureCode
	Message string
	Err     error
}

func (f *FailureInfo) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Code, f.Message, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Code, f.Message)
}

func (f *FailureInfo) Unwrap() error { return f.Err }

func (f *FailureInfo) FailureMessage() string { return f.Message }

// Is lets errors.Is(err, ErrNotFound) match any not-found failure.
func (f *FailureInfo) Is(target error) bool {
	t, ok := target.(*FailureInfo)
	return ok && t.Code == f.Code && t.Message == ""
}

// HTTPStatus maps the failure to a response code for the HTTP API.
func (f *FailureInfo) HTTPStatus() int {
	switch f.Code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusForbidden
	case CodeInvalid:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusServiceUnavailable
	}
}

var (
	ErrNotFound     = &FailureInfo{Code: CodeNotFound}
	ErrUnauthorized = &FailureInfo{Code: CodeUnauthorized}
)

func notFound(id record.Identity) error {
	return &FailureInfo{Code: CodeNotFound, Message: "Record not found: " + id.String()}
}

func invalid(msg string) error {
	return &FailureInfo{Code: CodeInvalid, Message: msg}
}

// NewRecordID returns a fresh, time-ordered record id.
func NewRecordID() string {
	return "R-" + ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// prepareCreate fills ids and timestamps and validates a new record.
func prepareCreate(rec record.Record, now time.Time) (record.Record, error) {
	rec = rec.Clone()
	if strings.TrimSpace(rec.OwnerID) == "" {
		return rec, invalid("ownerId is required")
	}
	if rec.Kind == "" {
		return rec, invalid("recordType is required")
	}
	if err := record.ValidateName(rec.Kind, rec.Name); err != nil {
		return rec, invalid(err.Error())
	}
	if strings.TrimSpace(rec.RecordID) == "" {
		rec.RecordID = NewRecordID()
	}
	if strings.TrimSpace(rec.Path) == "" {
		rec.Path = "Inventory"
	}
	rec.CreatedAt = now.UTC()
	rec.UpdatedAt = rec.CreatedAt
	return rec, nil
}

func preparePersist(rec record.Record, now time.Time) (record.Record, error) {
	rec = rec.Clone()
	if rec.Identity().IsZero() {
		return rec, invalid("record identity is required")
	}
	if err := record.ValidateName(rec.Kind, rec.Name); err != nil {
		return rec, invalid(err.Error())
	}
	rec.UpdatedAt = now.UTC()
	return rec, nil
}

// movedChildPath reports the old and new ChildPath when persisting next over
// prev renames a directory.
func movedChildPath(prev, next record.Record) (string, string, bool) {
	if prev.Kind != record.KindDirectory || next.Kind != record.KindDirectory {
		return "", "", false
	}
	oldPath, newPath := prev.ChildPath(), next.ChildPath()
	return oldPath, newPath, oldPath != newPath
}

// Failure extracts a FailureInfo from err.
func Failure(err error) (*FailureInfo, bool) {
	var f *FailureInfo
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
