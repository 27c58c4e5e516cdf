package testutil

import "github.com/trezcool/rosterdash/core/student"

func Attendance(v float64) *float64 { return &v }

// Classroom is the three student roster used across the test suites.
func Classroom() []student.Student {
	return []student.Student{
		{ID: 1, Name: "Alice", Branch: "CS", StudentYear: 2, AttendancePercentage: Attendance(50)},
		{ID: 2, Name: "Bob", Branch: "CS", StudentYear: 2, AttendancePercentage: Attendance(90)},
		{ID: 3, Name: "Cy", Branch: "EE", StudentYear: 1, AttendancePercentage: Attendance(70)},
	}
}

// IDs lists the student ids in order.
func IDs(students []student.Student) []int64 {
	res := make([]int64, 0, len(students))
	for _, s := range students {
		res = append(res, s.ID)
	}
	return res
}
