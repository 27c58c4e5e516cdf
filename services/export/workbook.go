package exportsvc

import (
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/rosterdash/core"
	"github.com/trezcool/rosterdash/core/student"
)

// Sheet names of an exported workbook.
const (
	SheetStudents   = "Students"
	SheetBranches   = "Branches"
	SheetAttendance = "Attendance"
)

var studentColumns = []string{"id", "name", "branch", "studentYear", "attendancePercentage"}

// WriteWorkbook writes the filtered students and the roster analytics as an xlsx workbook.
func WriteWorkbook(w io.Writer, analytics student.Analytics, total int) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetStudents); err != nil {
		return errors.Wrap(err, "renaming default sheet")
	}
	for _, name := range []string{SheetBranches, SheetAttendance} {
		if _, err := f.NewSheet(name); err != nil {
			return errors.Wrapf(err, "creating sheet %s", name)
		}
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "creating header style")
	}

	students := [][]interface{}{toRow(studentColumns)}
	for _, s := range analytics.Filtered {
		var att interface{}
		if s.AttendancePercentage != nil {
			att = *s.AttendancePercentage
		}
		students = append(students, []interface{}{s.ID, s.Name, s.Branch, s.StudentYear, att})
	}

	branches := [][]interface{}{{"branch", "students", "average"}}
	for _, row := range analytics.BranchAverages {
		branches = append(branches, []interface{}{row.Branch, row.Count, row.Avg})
	}

	buckets := [][]interface{}{{"range", "students", "percent"}}
	for _, b := range analytics.Histogram {
		buckets = append(buckets, []interface{}{b.Label, b.Count, b.Percent(total)})
	}

	for _, sheet := range []struct {
		name string
		rows [][]interface{}
	}{
		{SheetStudents, students},
		{SheetBranches, branches},
		{SheetAttendance, buckets},
	} {
		if err = writeRows(f, sheet.name, sheet.rows); err != nil {
			return err
		}
		if err = f.SetRowStyle(sheet.name, 1, 1, header); err != nil {
			return errors.Wrapf(err, "styling %s header", sheet.name)
		}
	}
	f.SetActiveSheet(0)

	return errors.Wrap(f.Write(w), "writing workbook")
}

func toRow(values []string) []interface{} {
	row := make([]interface{}, 0, len(values))
	for _, v := range values {
		row = append(row, v)
	}
	return row
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return errors.Wrap(err, "computing cell name")
		}
		row := row
		if err = f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Wrapf(err, "writing %s row %d", sheet, i+1)
		}
	}
	return nil
}

// ReadWorkbook reads student forms from the first sheet. The header row names the columns
// (case-insensitive, any order); blank rows are skipped. Forms are not validated.
func ReadWorkbook(r io.Reader) ([]student.Form, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "opening workbook")
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, core.NewValidationError(errors.New("workbook has no sheet"))
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "reading sheet %s", sheet)
	}
	if len(rows) == 0 {
		return nil, core.NewValidationError(errors.New("workbook is empty"))
	}

	cols, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	forms := make([]student.Form, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		form, err := parseRow(row, cols)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i+2)
		}
		forms = append(forms, form)
	}
	return forms, nil
}

func headerIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var fldErrs []core.FieldError
	for _, c := range studentColumns {
		if _, ok := cols[strings.ToLower(c)]; !ok {
			fldErrs = append(fldErrs, core.FieldError{Field: c, Error: "missing column"})
		}
	}
	if len(fldErrs) > 0 {
		return nil, core.NewValidationError(nil, fldErrs...)
	}
	return cols, nil
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func cell(row []string, cols map[string]int, name string) string {
	i := cols[strings.ToLower(name)]
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseRow(row []string, cols map[string]int) (student.Form, error) {
	var form student.Form
	var fldErrs []core.FieldError
	var err error

	if v := cell(row, cols, "id"); v != "" {
		if form.ID, err = strconv.ParseInt(v, 10, 64); err != nil {
			fldErrs = append(fldErrs, core.FieldError{Field: "id", Error: "must be a whole number"})
		}
	}
	form.Name = cell(row, cols, "name")
	form.Branch = cell(row, cols, "branch")
	if v := cell(row, cols, "studentYear"); v != "" {
		if form.StudentYear, err = strconv.Atoi(v); err != nil {
			fldErrs = append(fldErrs, core.FieldError{Field: "studentYear", Error: "must be a whole number"})
		}
	}
	if v := cell(row, cols, "attendancePercentage"); v != "" {
		if form.AttendancePercentage, err = strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64); err != nil {
			fldErrs = append(fldErrs, core.FieldError{Field: "attendancePercentage", Error: "must be a number"})
		}
	}

	if len(fldErrs) > 0 {
		return form, core.NewValidationError(nil, fldErrs...)
	}
	return form, nil
}
