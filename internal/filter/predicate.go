// Package filter turns search criteria into a composable predicate over
// water-right records. Every predicate can be evaluated in memory and
// rendered as a gorm scope against the allocation fact table, aliased "a".
package filter

import (
	"gorm.io/gorm"

	"github.com/openwaterdata/waterrights/internal/domain"
)

// FactAlias is the alias the scopes expect on the allocation fact table.
const FactAlias = "a"

type clause struct {
	match func(*domain.Record) bool
	scope func(*gorm.DB) *gorm.DB
}

// Predicate is a conjunction of clauses. The zero value is neutral and
// matches every record.
type Predicate struct {
	clauses []clause
}

// True returns the neutral predicate.
func True() Predicate { return Predicate{} }

func newPredicate(match func(*domain.Record) bool, scope func(*gorm.DB) *gorm.DB) Predicate {
	return Predicate{clauses: []clause{{match: match, scope: scope}}}
}

// And conjoins ps. Neutral operands contribute nothing, so And() and
// And(True(), True()) are both neutral.
func And(ps ...Predicate) Predicate {
	var out Predicate
	for _, p := range ps {
		out.clauses = append(out.clauses, p.clauses...)
	}
	return out
}

// IsNeutral reports whether p constrains nothing.
func (p Predicate) IsNeutral() bool { return len(p.clauses) == 0 }

// Match evaluates p against one record.
func (p Predicate) Match(r *domain.Record) bool {
	for _, c := range p.clauses {
		if !c.match(r) {
			return false
		}
	}
	return true
}

// Scope applies every clause as a WHERE condition. It has the shape gorm
// expects from db.Scopes.
func (p Predicate) Scope(db *gorm.DB) *gorm.DB {
	for _, c := range p.clauses {
		db = c.scope(db)
	}
	return db
}
