package dashboard

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/trezcool/rosterdash/core/student"
)

const progressWidth = 30

// FormatAverage renders the server average with two decimals.
func FormatAverage(avg float64) string {
	return fmt.Sprintf("%.2f%%", avg)
}

// Progress draws value (0-100) as a fixed width bar.
func Progress(value float64, width int) string {
	if width <= 0 {
		width = progressWidth
	}
	v := math.Max(student.MinAttendance, math.Min(student.MaxAttendance, value))
	filled := int(math.Round(v / student.MaxAttendance * float64(width)))
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}

func status(s student.Student) string {
	switch {
	case s.AtRisk():
		return "AT RISK"
	case s.Topper():
		return "TOPPER"
	}
	return ""
}

func attendance(s student.Student) string {
	if s.AttendancePercentage == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", *s.AttendancePercentage)
}

func year(y int) string {
	if y == student.AllYears {
		return "-"
	}
	return fmt.Sprint(y)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// Render writes the current screen.
func (a *App) Render(w io.Writer) error {
	switch a.screen {
	case ScreenLogin:
		_, err := fmt.Fprintln(w, "Dashboard Login: rosterdash login -username <name>")
		return err
	case ScreenRegister:
		_, err := fmt.Fprintln(w, "Create an account: rosterdash register -username <name>")
		return err
	}

	sess := a.Session()
	fmt.Fprintf(w, "%s (%s)\n\n", sess.Username, sess.Role)
	if s, ok := a.Drawer(); ok {
		return RenderStudent(w, s)
	}
	analytics := a.Analytics()
	if a.page == PageStudents {
		if err := RenderFilter(w, a.filter); err != nil {
			return err
		}
		fmt.Fprintf(w, "%d of %d students\n", len(analytics.Filtered), a.roster.Len())
		return RenderStudents(w, analytics.Filtered)
	}
	return RenderDashboard(w, a.Average(), a.roster.Len(), analytics)
}

// RenderDashboard writes the analytics page.
func RenderDashboard(w io.Writer, average float64, total int, analytics student.Analytics) error {
	fmt.Fprintf(w, "Average attendance  %s %s\n", FormatAverage(average), Progress(average, progressWidth))
	fmt.Fprintf(w, "Students            %d\n", total)
	fmt.Fprintf(w, "At risk (< %g%%)     %d\n\n", student.AtRiskThreshold, len(analytics.LowAttendance))

	tw := newTable(w)
	fmt.Fprintln(tw, "RANGE\tSTUDENTS\tSHARE\t")
	for _, b := range analytics.Histogram {
		fmt.Fprintf(tw, "%s\t%d\t%.1f%%\t\n", b.Label, b.Count, b.Percent(total))
	}
	fmt.Fprintln(tw, "\t\t\t")
	fmt.Fprintln(tw, "BRANCH\tSTUDENTS\tAVERAGE\t")
	for _, row := range analytics.BranchAverages {
		fmt.Fprintf(tw, "%s\t%d\t%.2f%%\t\n", row.Branch, row.Count, row.Avg)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(analytics.LowAttendance) == 0 {
		return nil
	}
	fmt.Fprintln(w, "\nLow attendance")
	return RenderStudents(w, analytics.LowAttendance)
}

// RenderStudents writes the roster table.
func RenderStudents(w io.Writer, students []student.Student) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tBRANCH\tYEAR\tATTENDANCE\tSTATUS\t")
	for _, s := range students {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t\n", s.ID, s.Name, s.Branch, year(s.StudentYear), attendance(s), status(s))
	}
	return tw.Flush()
}

// RenderStudent writes one student and their trend.
func RenderStudent(w io.Writer, s student.Student) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "ID\t%d\n", s.ID)
	fmt.Fprintf(tw, "Name\t%s\n", s.Name)
	fmt.Fprintf(tw, "Branch\t%s\n", s.Branch)
	fmt.Fprintf(tw, "Year\t%s\n", year(s.StudentYear))
	fmt.Fprintf(tw, "Attendance\t%s %s\n", attendance(s), Progress(s.Attendance(), progressWidth))
	if st := status(s); st != "" {
		fmt.Fprintf(tw, "Status\t%s\n", st)
	}
	fmt.Fprintln(tw, "\t")
	for _, p := range student.Trend(s) {
		fmt.Fprintf(tw, "%s\t%6.2f%% %s\n", p.Label, p.Value, Progress(p.Value, progressWidth))
	}
	return tw.Flush()
}

// RenderFilter writes the active filter selection, nothing for the default one.
func RenderFilter(w io.Writer, f student.Filter) error {
	if f.IsDefault() {
		return nil
	}
	parts := make([]string, 0, 5)
	if f.Search != "" {
		parts = append(parts, fmt.Sprintf("search=%q", f.Search))
	}
	if f.Branch != student.AllBranches && f.Branch != "" {
		parts = append(parts, "branch="+f.Branch)
	}
	if f.Year != student.AllYears {
		parts = append(parts, fmt.Sprintf("year=%d", f.Year))
	}
	if f.Low != student.MinAttendance || f.High != student.MaxAttendance {
		parts = append(parts, fmt.Sprintf("attendance=[%g,%g]", f.Low, f.High))
	}
	if f.Quick != student.QuickAll {
		parts = append(parts, "quick="+string(f.Quick))
	}
	_, err := fmt.Fprintf(w, "Filters: %s\n", strings.Join(parts, " "))
	return err
}

// RenderNotifications writes one line per notification.
func RenderNotifications(w io.Writer, notifications []Notification) error {
	for _, n := range notifications {
		if _, err := fmt.Fprintf(w, "[%s] %s\n", strings.ToUpper(string(n.Severity)), n.Message); err != nil {
			return err
		}
	}
	return nil
}
