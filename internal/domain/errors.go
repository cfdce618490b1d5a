package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing water right or site.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCriteria signals a criteria value that failed validation.
	ErrInvalidCriteria = errors.New("invalid search criteria")
	// ErrInvalidGeometry signals malformed or unsupported GeoJSON.
	ErrInvalidGeometry = errors.New("invalid geometry")
	// ErrUnknownRegion signals a river basin name missing from the basin table.
	ErrUnknownRegion = errors.New("unknown river basin")
	// ErrInvalidPage signals a missing or negative page number.
	ErrInvalidPage = errors.New("invalid page number")
	// ErrDegenerateCriteria rejects an export with every filter dimension absent.
	ErrDegenerateCriteria = errors.New("export requires at least one search filter")
	// ErrNoMatchingRecords rejects an export whose criteria match nothing.
	ErrNoMatchingRecords = errors.New("no water rights match the search criteria")
	// ErrExportTooLarge signals an export above the configured record ceiling.
	ErrExportTooLarge = errors.New("download limit exceeded")
	// ErrExportWrite signals a failure while streaming the export archive.
	ErrExportWrite = errors.New("export write failed")
)

// InvalidGeometryError wraps ErrInvalidGeometry with the offending input.
type InvalidGeometryError struct {
	Index int
	Err   error
}

func (e *InvalidGeometryError) Error() string {
	return fmt.Sprintf("%s at filterGeometry[%d]: %v", ErrInvalidGeometry.Error(), e.Index, e.Err)
}

func (e *InvalidGeometryError) Unwrap() []error { return []error{ErrInvalidGeometry, e.Err} }

// UnknownRegionError wraps ErrUnknownRegion with the basin name.
type UnknownRegionError struct {
	Name string
}

func (e *UnknownRegionError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownRegion.Error(), e.Name)
}

func (e *UnknownRegionError) Unwrap() error { return ErrUnknownRegion }

// InvalidPageError wraps ErrInvalidPage. Page is nil when it was not supplied.
type InvalidPageError struct {
	Page *int
}

func (e *InvalidPageError) Error() string {
	if e.Page == nil {
		return ErrInvalidPage.Error() + ": pageNumber is required"
	}
	return fmt.Sprintf("%s: %d", ErrInvalidPage.Error(), *e.Page)
}

func (e *InvalidPageError) Unwrap() error { return ErrInvalidPage }

// ExportTooLargeError wraps ErrExportTooLarge with the count and ceiling.
type ExportTooLargeError struct {
	Count int64
	Limit int64
}

func (e *ExportTooLargeError) Error() string {
	return fmt.Sprintf("%s: %d records match, limit is %d", ErrExportTooLarge.Error(), e.Count, e.Limit)
}

func (e *ExportTooLargeError) Unwrap() error { return ErrExportTooLarge }

// ExportWriteError wraps ErrExportWrite with the archive entry being written.
type ExportWriteError struct {
	Entry string
	Err   error
}

func (e *ExportWriteError) Error() string {
	if e.Entry == "" {
		return fmt.Sprintf("%s: %v", ErrExportWrite.Error(), e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", ErrExportWrite.Error(), e.Entry, e.Err)
}

func (e *ExportWriteError) Unwrap() []error { return []error{ErrExportWrite, e.Err} }

// IsCallerError reports whether err is the caller's fault rather than the
// service's.
func IsCallerError(err error) bool {
	return errors.Is(err, ErrInvalidCriteria) ||
		errors.Is(err, ErrInvalidGeometry) ||
		errors.Is(err, ErrUnknownRegion) ||
		errors.Is(err, ErrInvalidPage) ||
		errors.Is(err, ErrDegenerateCriteria) ||
		errors.Is(err, ErrNoMatchingRecords)
}
