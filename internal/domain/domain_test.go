package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openwaterdata/waterrights/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func TestIsCallerError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"invalid criteria", fmt.Errorf("find: %w", domain.ErrInvalidCriteria), true},
		{"invalid geometry", &domain.InvalidGeometryError{Index: 1, Err: errors.New("bad ring")}, true},
		{"unknown region", &domain.UnknownRegionError{Name: "Nile"}, true},
		{"missing page", &domain.InvalidPageError{}, true},
		{"degenerate", domain.ErrDegenerateCriteria, true},
		{"no match", domain.ErrNoMatchingRecords, true},
		{"too large", &domain.ExportTooLargeError{Count: 3, Limit: 2}, false},
		{"write", &domain.ExportWriteError{Entry: "sites.csv", Err: errors.New("pipe")}, false},
		{"not found", domain.ErrNotFound, false},
		{"other", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.IsCallerError(tt.err))
		})
	}
}

func TestTypedErrors_Unwrap(t *testing.T) {
	cause := errors.New("unexpected EOF")

	geomErr := &domain.InvalidGeometryError{Index: 2, Err: cause}
	assert.ErrorIs(t, geomErr, domain.ErrInvalidGeometry)
	assert.ErrorIs(t, geomErr, cause)
	assert.Contains(t, geomErr.Error(), "filterGeometry[2]")

	writeErr := fmt.Errorf("download: %w", &domain.ExportWriteError{Entry: "sites.csv", Err: cause})
	var target *domain.ExportWriteError
	require.ErrorAs(t, writeErr, &target)
	assert.Equal(t, "sites.csv", target.Entry)
	assert.ErrorIs(t, writeErr, domain.ErrExportWrite)

	tooLarge := &domain.ExportTooLargeError{Count: 100001, Limit: 100000}
	assert.ErrorIs(t, tooLarge, domain.ErrExportTooLarge)
	assert.Contains(t, tooLarge.Error(), "100001")

	assert.Contains(t, (&domain.InvalidPageError{}).Error(), "required")
	assert.Contains(t, (&domain.InvalidPageError{Page: ptr(-1)}).Error(), "-1")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		c       domain.SearchCriteria
		wantErr bool
	}{
		{"empty", domain.SearchCriteria{}, false},
		{"page zero", domain.SearchCriteria{PageNumber: ptr(0)}, false},
		{"negative page", domain.SearchCriteria{PageNumber: ptr(-1)}, true},
		{"state codes", domain.SearchCriteria{States: []string{"CO", "nm"}}, false},
		{"long state", domain.SearchCriteria{States: []string{"Colorado"}}, true},
		{"negative flow", domain.SearchCriteria{MinimumFlow: ptr(-0.5)}, true},
		{"pou", domain.SearchCriteria{PodOrPou: "POU"}, false},
		{"bad site kind", domain.SearchCriteria{PodOrPou: "BOTH"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidCriteria)
		})
	}
}

func TestNonBlank(t *testing.T) {
	assert.Equal(t, []string{"CO", "NM"}, domain.NonBlank([]string{" CO ", "", "NM", "\t"}))
	assert.Nil(t, domain.NonBlank(nil))
}
