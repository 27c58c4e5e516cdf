package student

import (
	"reflect"
	"testing"
)

func att(v float64) *float64 { return &v }

func classroom() []Student {
	return []Student{
		{ID: 1, Name: "Alice", Branch: "CS", StudentYear: 2, AttendancePercentage: att(50)},
		{ID: 2, Name: "Bob", Branch: "CS", StudentYear: 2, AttendancePercentage: att(90)},
		{ID: 3, Name: "Cy", Branch: "EE", StudentYear: 1, AttendancePercentage: att(70)},
	}
}

func ids(students []Student) []int64 {
	res := make([]int64, 0, len(students))
	for _, s := range students {
		res = append(res, s.ID)
	}
	return res
}

func TestFilter_Apply(t *testing.T) {
	roster := append(classroom(),
		Student{ID: 14, Name: "Dana", Branch: "ME", StudentYear: 3},                               // no attendance
		Student{ID: 21, Name: "alina", Branch: "", StudentYear: 4, AttendancePercentage: att(85)}, // no branch
	)

	with := func(mod func(f *Filter)) Filter {
		f := DefaultFilter()
		mod(&f)
		return f
	}

	tests := []struct {
		name   string
		filter Filter
		want   []int64
	}{
		{name: "default", filter: DefaultFilter(), want: []int64{1, 2, 3, 14, 21}},
		{name: "search name (case-insensitive)", filter: with(func(f *Filter) { f.Search = "ALI" }), want: []int64{1, 21}},
		{name: "search is trimmed", filter: with(func(f *Filter) { f.Search = "  bob " }), want: []int64{2}},
		{name: "search id", filter: with(func(f *Filter) { f.Search = "1" }), want: []int64{1, 14, 21}},
		{name: "search unknown", filter: with(func(f *Filter) { f.Search = "zz" }), want: []int64{}},
		{name: "branch", filter: with(func(f *Filter) { f.Branch = "CS" }), want: []int64{1, 2}},
		{name: "empty branch is a wildcard", filter: with(func(f *Filter) { f.Branch = "" }), want: []int64{1, 2, 3, 14, 21}},
		{name: "year", filter: with(func(f *Filter) { f.Year = 2 }), want: []int64{1, 2}},
		{name: "range", filter: with(func(f *Filter) { f.Low, f.High = 60, 100 }), want: []int64{2, 3, 21}},
		{name: "range is inclusive", filter: with(func(f *Filter) { f.Low, f.High = 50, 70 }), want: []int64{1, 3}},
		{name: "missing attendance counts as 0", filter: with(func(f *Filter) { f.High = 0 }), want: []int64{14}},
		{name: "at risk", filter: with(func(f *Filter) { f.Quick = QuickAtRisk }), want: []int64{1, 14}},
		{name: "topper", filter: with(func(f *Filter) { f.Quick = QuickTopper }), want: []int64{2, 21}},
		{
			name: "all combined",
			filter: with(func(f *Filter) {
				f.Search = "b"
				f.Branch = "CS"
				f.Year = 2
				f.Low = 80
				f.Quick = QuickTopper
			}),
			want: []int64{2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Apply(roster)
			if !reflect.DeepEqual(ids(got), tt.want) {
				t.Errorf("Apply() = %v, want %v", ids(got), tt.want)
			}
			for _, s := range roster {
				inResult := false
				for _, g := range got {
					if g.ID == s.ID {
						inResult = true
					}
				}
				if tt.filter.Match(s) != inResult {
					t.Errorf("Match(%d) = %v, but Apply() inclusion = %v", s.ID, !inResult, inResult)
				}
			}
		})
	}
}

func TestFilter_Scenarios(t *testing.T) {
	roster := classroom()

	f := DefaultFilter()
	f.Search = "ali"
	if got := ids(f.Apply(roster)); !reflect.DeepEqual(got, []int64{1}) {
		t.Errorf("search ali = %v, want [1]", got)
	}

	f = DefaultFilter()
	f.Low, f.High = 60, 100
	if got := ids(f.Apply(roster)); !reflect.DeepEqual(got, []int64{2, 3}) {
		t.Errorf("range [60,100] = %v, want [2 3]", got)
	}
}

func TestFilter_QuickSetsAreDisjoint(t *testing.T) {
	var roster []Student
	for i := 0; i <= 200; i++ {
		roster = append(roster, Student{ID: int64(i), AttendancePercentage: att(float64(i) / 2)})
	}

	atRisk := DefaultFilter()
	atRisk.Quick = QuickAtRisk
	topper := DefaultFilter()
	topper.Quick = QuickTopper

	risky := make(map[int64]bool)
	for _, s := range atRisk.Apply(roster) {
		if s.Attendance() >= AtRiskThreshold {
			t.Errorf("AT_RISK included %v", s.Attendance())
		}
		risky[s.ID] = true
	}
	for _, s := range topper.Apply(roster) {
		if s.Attendance() < TopperThreshold {
			t.Errorf("TOPPER included %v", s.Attendance())
		}
		if risky[s.ID] {
			t.Errorf("student %d is both AT_RISK and TOPPER", s.ID)
		}
	}
	if got, want := len(atRisk.Apply(roster)), 110; got != want { // 0..54.5
		t.Errorf("len(AT_RISK) = %d, want %d", got, want)
	}
	if got, want := len(topper.Apply(roster)), 31; got != want { // 85..100
		t.Errorf("len(TOPPER) = %d, want %d", got, want)
	}
}

func TestFilter_Normalize(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   Filter
	}{
		{name: "zero value", filter: Filter{}, want: Filter{Branch: AllBranches, Quick: QuickAll}},
		{
			name:   "clamped",
			filter: Filter{Low: -10, High: 140, Branch: "CS", Quick: QuickTopper},
			want:   Filter{Low: 0, High: 100, Branch: "CS", Quick: QuickTopper},
		},
		{
			name:   "swapped",
			filter: Filter{Low: 80, High: 20, Branch: AllBranches, Quick: QuickAll},
			want:   Filter{Low: 20, High: 80, Branch: AllBranches, Quick: QuickAll},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.filter.Normalize()
			if tt.filter != tt.want {
				t.Errorf("Normalize() = %+v, want %+v", tt.filter, tt.want)
			}
		})
	}

	if !DefaultFilter().IsDefault() {
		t.Error("DefaultFilter().IsDefault() = false")
	}
	f := DefaultFilter()
	f.Search = "x"
	if f.IsDefault() {
		t.Error("IsDefault() = true with a search")
	}
}

func TestParseQuick(t *testing.T) {
	tests := []struct {
		in      string
		want    Quick
		wantErr bool
	}{
		{in: "", want: QuickAll},
		{in: "all", want: QuickAll},
		{in: "at_risk", want: QuickAtRisk},
		{in: "at-risk", want: QuickAtRisk},
		{in: " TOPPER ", want: QuickTopper},
		{in: "lol", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseQuick(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseQuick() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseQuick() = %v, want %v", got, tt.want)
			}
		})
	}
}
