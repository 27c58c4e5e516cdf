package student

import (
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/rosterdash/core"
)

// UnknownBranch groups students without a branch in branch analytics.
const UnknownBranch = "Unknown"

// Student is one roster record as served by the API.
type Student struct {
	ID                   int64    `json:"id"`
	Name                 string   `json:"name"`
	Branch               string   `json:"branch"`
	StudentYear          int      `json:"studentYear"` // 0 when not set
	AttendancePercentage *float64 `json:"attendancePercentage"`
}

// Attendance resolves the attendance percentage, a missing value counts as 0.
func (s Student) Attendance() float64 {
	if s.AttendancePercentage == nil {
		return 0
	}
	return *s.AttendancePercentage
}

// IDString is the decimal form of the ID, as matched by searches.
func (s Student) IDString() string {
	return strconv.FormatInt(s.ID, 10)
}

// AtRisk reports whether attendance is strictly below AtRiskThreshold.
func (s Student) AtRisk() bool {
	return s.Attendance() < AtRiskThreshold
}

// Topper reports whether attendance reaches TopperThreshold.
func (s Student) Topper() bool {
	return s.Attendance() >= TopperThreshold
}

// Form contains the information submitted to create or replace a Student.
type Form struct {
	ID                   int64   `json:"id" validate:"required,gt=0"`
	Name                 string  `json:"name" validate:"required"`
	Branch               string  `json:"branch" validate:"required"`
	StudentYear          int     `json:"studentYear" validate:"required,min=1,max=4"`
	AttendancePercentage float64 `json:"attendancePercentage" validate:"min=0,max=100"`
}

// FormFrom pre-fills a Form with an existing record, as done when editing.
func FormFrom(s Student) Form {
	return Form{
		ID:                   s.ID,
		Name:                 s.Name,
		Branch:               s.Branch,
		StudentYear:          s.StudentYear,
		AttendancePercentage: s.Attendance(),
	}
}

func (f *Form) Validate(validate *validator.Validate) error {
	f.Name = core.CleanString(f.Name)
	f.Branch = core.CleanString(f.Branch)
	return validate.Struct(f)
}

// Student builds the full record sent to the API.
func (f Form) Student() Student {
	att := f.AttendancePercentage
	return Student{
		ID:                   f.ID,
		Name:                 f.Name,
		Branch:               f.Branch,
		StudentYear:          f.StudentYear,
		AttendancePercentage: &att,
	}
}
