package student

import (
	"strings"

	"github.com/pkg/errors"
)

// Attendance policy thresholds. These are fixed, not configurable.
const (
	AtRiskThreshold = 55.0
	TopperThreshold = 85.0

	MinAttendance = 0.0
	MaxAttendance = 100.0
)

// AllBranches and AllYears are the wildcard selections.
const (
	AllBranches = "ALL"
	AllYears    = 0
)

// Quick is one of the mutually exclusive convenience filters.
type Quick string

const (
	QuickAll    Quick = "ALL"
	QuickAtRisk Quick = "AT_RISK"
	QuickTopper Quick = "TOPPER"
)

var errUnknownQuick = errors.New("quick filter must be one of ALL, AT_RISK, TOPPER")

// ParseQuick accepts the quick filter names case-insensitively; an empty string means ALL.
func ParseQuick(s string) (Quick, error) {
	switch q := Quick(strings.ToUpper(strings.TrimSpace(s))); q {
	case "", QuickAll:
		return QuickAll, nil
	case QuickAtRisk, "AT-RISK", "ATRISK":
		return QuickAtRisk, nil
	case QuickTopper:
		return QuickTopper, nil
	default:
		return "", errUnknownQuick
	}
}

func (q Quick) match(attendance float64) bool {
	switch q {
	case QuickAtRisk:
		return attendance < AtRiskThreshold
	case QuickTopper:
		return attendance >= TopperThreshold
	default:
		return true
	}
}

// Filter is the roster filter selection. Year 0 and Branch ALL (or "") are wildcards.
type Filter struct {
	Search string
	Branch string
	Year   int
	Low    float64
	High   float64
	Quick  Quick
}

// DefaultFilter selects every student.
func DefaultFilter() Filter {
	return Filter{
		Branch: AllBranches,
		Year:   AllYears,
		Low:    MinAttendance,
		High:   MaxAttendance,
		Quick:  QuickAll,
	}
}

// Normalize keeps the attendance range within [0,100] with Low <= High.
func (f *Filter) Normalize() {
	f.Low = clamp(f.Low, MinAttendance, MaxAttendance)
	f.High = clamp(f.High, MinAttendance, MaxAttendance)
	if f.Low > f.High {
		f.Low, f.High = f.High, f.Low
	}
	if f.Branch == "" {
		f.Branch = AllBranches
	}
	if f.Quick == "" {
		f.Quick = QuickAll
	}
}

// IsDefault reports whether the filter selects every student.
func (f Filter) IsDefault() bool {
	f.Normalize()
	return strings.TrimSpace(f.Search) == "" && f.Branch == AllBranches && f.Year == AllYears &&
		f.Low == MinAttendance && f.High == MaxAttendance && f.Quick == QuickAll
}

// Match reports whether s passes every predicate of the filter.
func (f Filter) Match(s Student) bool {
	return f.matchSearch(s, strings.ToLower(strings.TrimSpace(f.Search))) &&
		f.matchBranch(s) &&
		f.matchYear(s) &&
		f.matchRange(s.Attendance()) &&
		f.Quick.match(s.Attendance())
}

// Apply returns the students passing the filter, in roster order.
func (f Filter) Apply(students []Student) []Student {
	query := strings.ToLower(strings.TrimSpace(f.Search))
	res := make([]Student, 0, len(students))
	for _, s := range students {
		att := s.Attendance()
		if f.matchSearch(s, query) && f.matchBranch(s) && f.matchYear(s) && f.matchRange(att) && f.Quick.match(att) {
			res = append(res, s)
		}
	}
	return res
}

func (f Filter) matchSearch(s Student, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(s.IDString(), query) || strings.Contains(strings.ToLower(s.Name), query)
}

func (f Filter) matchBranch(s Student) bool {
	return f.Branch == "" || f.Branch == AllBranches || s.Branch == f.Branch
}

func (f Filter) matchYear(s Student) bool {
	return f.Year == AllYears || s.StudentYear == f.Year
}

func (f Filter) matchRange(attendance float64) bool {
	return attendance >= f.Low && attendance <= f.High
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
