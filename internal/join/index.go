// Package join indexes education records by FIPS code.
package join

import (
	"slices"

	"github.com/rotisserie/eris"

	"github.com/sells-group/edumap/internal/model"
)

// Policy decides which record wins when two records share a FIPS code.
type Policy string

const (
	// LastWins keeps the last record in input order.
	LastWins Policy = "last"
	// FirstWins keeps the first record, matching a linear first-match search.
	FirstWins Policy = "first"
)

// ParsePolicy validates a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case LastWins, FirstWins:
		return Policy(s), nil
	case "":
		return LastWins, nil
	default:
		return "", eris.Errorf("join: unknown duplicate policy %q", s)
	}
}

// Index maps FIPS codes to education records. It is immutable once built.
type Index struct {
	byFIPS     map[int]model.EducationRecord
	order      []int
	values     []float64
	duplicates int
}

// Build indexes records under the given duplicate policy.
func Build(records []model.EducationRecord, policy Policy) *Index {
	idx := &Index{
		byFIPS: make(map[int]model.EducationRecord, len(records)),
		values: make([]float64, 0, len(records)),
	}
	for _, rec := range records {
		idx.values = append(idx.values, rec.BachelorsOrHigher)
		if _, seen := idx.byFIPS[rec.FIPS]; seen {
			idx.duplicates++
			if policy == FirstWins {
				continue
			}
		} else {
			idx.order = append(idx.order, rec.FIPS)
		}
		idx.byFIPS[rec.FIPS] = rec
	}
	return idx
}

// Lookup returns the record for fips. A miss is not an error.
func (i *Index) Lookup(fips int) (model.EducationRecord, bool) {
	if i == nil {
		return model.EducationRecord{}, false
	}
	rec, ok := i.byFIPS[fips]
	return rec, ok
}

// Len returns the number of distinct FIPS codes.
func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.byFIPS)
}

// Duplicates returns how many input records collided with an earlier FIPS code.
func (i *Index) Duplicates() int {
	if i == nil {
		return 0
	}
	return i.duplicates
}

// Values returns the statistic of every input record in input order,
// duplicates included, so a color domain built from it spans the full dataset.
func (i *Index) Values() []float64 {
	if i == nil {
		return nil
	}
	return slices.Clone(i.values)
}

// Each calls fn for every indexed record, ordered by the first appearance of
// each FIPS code.
func (i *Index) Each(fn func(model.EducationRecord)) {
	if i == nil {
		return
	}
	for _, fips := range i.order {
		fn(i.byFIPS[fips])
	}
}
