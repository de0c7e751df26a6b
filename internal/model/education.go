package model

import (
	"strconv"
)

// EducationRecord is one county row of the education dataset.
type EducationRecord struct {
	FIPS              int     `json:"fips" yaml:"fips"`
	State             string  `json:"state" yaml:"state"`
	AreaName          string  `json:"area_name" yaml:"area_name"`
	BachelorsOrHigher float64 `json:"bachelorsOrHigher" yaml:"bachelors_or_higher"`
}

// FormatPercent renders a percentage value the way it appears in the source
// data: shortest decimal form, no trailing zeros.
func FormatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Summary returns the "{area_name}, {state}: {value}%" description of the record.
func (r EducationRecord) Summary() string {
	return r.AreaName + ", " + r.State + ": " + FormatPercent(r.BachelorsOrHigher) + "%"
}
