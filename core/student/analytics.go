package student

import (
	"fmt"
	"sort"
)

// BranchAverage is one row of the branch analytics table.
type BranchAverage struct {
	Branch string  `json:"branch"`
	Avg    float64 `json:"avg"`
	Count  int     `json:"count"`
}

// Bucket is one attendance range of the histogram. Min is inclusive, Max exclusive;
// the first and last buckets are open-ended so every value lands in exactly one bucket.
type Bucket struct {
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// Contains reports whether attendance falls in the bucket.
func (b Bucket) Contains(attendance float64, first, last bool) bool {
	return (first || attendance >= b.Min) && (last || attendance < b.Max)
}

// Percent is the bucket share of total; an empty roster counts as 1 to avoid dividing by zero.
func (b Bucket) Percent(total int) float64 {
	if total <= 0 {
		total = 1
	}
	return float64(b.Count) * 100 / float64(total)
}

// TrendPoint is one week of the synthetic attendance trend.
type TrendPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Analytics holds every view derived from the roster and the filter selection.
type Analytics struct {
	Branches       []string
	Years          []int
	Filtered       []Student
	LowAttendance  []Student
	BranchAverages []BranchAverage
	Histogram      []Bucket
}

// Derive computes all analytics. Options, averages and the histogram use the full roster;
// only Filtered depends on the filter.
func Derive(students []Student, filter Filter) Analytics {
	return Analytics{
		Branches:       BranchOptions(students),
		Years:          YearOptions(students),
		Filtered:       filter.Apply(students),
		LowAttendance:  LowAttendance(students),
		BranchAverages: BranchAverages(students),
		Histogram:      Histogram(students),
	}
}

// BranchOptions returns the distinct non-empty branches, sorted.
func BranchOptions(students []Student) []string {
	seen := make(map[string]struct{}, len(students))
	branches := make([]string, 0)
	for _, s := range students {
		if s.Branch == "" {
			continue
		}
		if _, ok := seen[s.Branch]; ok {
			continue
		}
		seen[s.Branch] = struct{}{}
		branches = append(branches, s.Branch)
	}
	sort.Strings(branches)
	return branches
}

// YearOptions returns the distinct years that are set, ascending.
func YearOptions(students []Student) []int {
	seen := make(map[int]struct{}, len(students))
	years := make([]int, 0)
	for _, s := range students {
		if s.StudentYear == AllYears {
			continue
		}
		if _, ok := seen[s.StudentYear]; ok {
			continue
		}
		seen[s.StudentYear] = struct{}{}
		years = append(years, s.StudentYear)
	}
	sort.Ints(years)
	return years
}

// LowAttendance returns the at-risk students, in roster order.
func LowAttendance(students []Student) []Student {
	res := make([]Student, 0)
	for _, s := range students {
		if s.AtRisk() {
			res = append(res, s)
		}
	}
	return res
}

// BranchAverages groups students by branch and sorts the groups by average attendance, highest first.
// Ties keep the order in which branches first appear in the roster.
func BranchAverages(students []Student) []BranchAverage {
	type group struct {
		total float64
		count int
	}
	order := make([]string, 0)
	groups := make(map[string]*group)
	for _, s := range students {
		key := s.Branch
		if key == "" {
			key = UnknownBranch
		}
		g, ok := groups[key]
		if !ok {
			g = new(group)
			groups[key] = g
			order = append(order, key)
		}
		g.total += s.Attendance()
		g.count++
	}

	rows := make([]BranchAverage, 0, len(order))
	for _, branch := range order {
		g := groups[branch]
		var avg float64
		if g.count > 0 {
			avg = g.total / float64(g.count)
		}
		rows = append(rows, BranchAverage{Branch: branch, Avg: avg, Count: g.count})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Avg > rows[j].Avg })
	return rows
}

// Buckets returns the four empty histogram buckets.
func Buckets() []Bucket {
	return []Bucket{
		{Label: "< 55%", Min: MinAttendance, Max: AtRiskThreshold},
		{Label: "55-69%", Min: AtRiskThreshold, Max: 70},
		{Label: "70-84%", Min: 70, Max: TopperThreshold},
		{Label: "85-100%", Min: TopperThreshold, Max: MaxAttendance},
	}
}

// Histogram counts students per attendance bucket.
func Histogram(students []Student) []Bucket {
	buckets := Buckets()
	last := len(buckets) - 1
	for _, s := range students {
		att := s.Attendance()
		for i := range buckets {
			if buckets[i].Contains(att, i == 0, i == last) {
				buckets[i].Count++
				break
			}
		}
	}
	return buckets
}

// Trend simulates a four week history ending at the current attendance. Display only.
func Trend(s Student) []TrendPoint {
	base := s.Attendance()
	offsets := []float64{-6, -3, 1, 0}
	points := make([]TrendPoint, 0, len(offsets))
	for i, off := range offsets {
		points = append(points, TrendPoint{
			Label: fmt.Sprintf("Week %d", i+1),
			Value: clamp(base+off, MinAttendance, MaxAttendance),
		})
	}
	return points
}
