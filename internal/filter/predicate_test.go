package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openwaterdata/waterrights/internal/domain"
	"github.com/openwaterdata/waterrights/internal/filter"
)

func TestTrueIsNeutral(t *testing.T) {
	assert.True(t, filter.True().IsNeutral())
	assert.True(t, filter.Predicate{}.IsNeutral())
	assert.True(t, filter.And().IsNeutral())
	assert.True(t, filter.And(filter.True(), filter.True()).IsNeutral())
	assert.True(t, filter.True().Match(&domain.Record{}))
}

func TestAnd_KeepsEveryClause(t *testing.T) {
	co := filter.States(domain.SearchCriteria{States: []string{"CO"}})
	exempt := filter.Exemption(domain.SearchCriteria{ExemptOfVolumeFlowPriority: ptr(true)})

	both := filter.And(filter.True(), co, exempt)
	assert.False(t, both.IsNeutral())

	yes, no := true, false
	assert.True(t, both.Match(&domain.Record{State: "CO", ExemptOfVolumeFlowPriority: &yes}))
	assert.False(t, both.Match(&domain.Record{State: "CO", ExemptOfVolumeFlowPriority: &no}))
	assert.False(t, both.Match(&domain.Record{State: "UT", ExemptOfVolumeFlowPriority: &yes}))
}

func TestBuild_EmptyCriteriaIsNeutral(t *testing.T) {
	assert.True(t, filter.Build(domain.SearchCriteria{}).IsNeutral())

	// Blank entries and the citation URL constrain nothing.
	assert.True(t, filter.Build(domain.SearchCriteria{
		States:          []string{"", "  "},
		AllocationOwner: "   ",
		FilterURL:       "https://example.org",
		PageNumber:      ptr(3),
	}).IsNeutral())
}

func ptr[T any](v T) *T { return &v }
