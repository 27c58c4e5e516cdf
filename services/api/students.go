package apiclient

import (
	"context"
	"net/http"
	"strconv"

	"github.com/trezcool/rosterdash/core/student"
)

const studentsPath = "/api/students"

func studentPath(id int64) string {
	return studentsPath + "/" + strconv.FormatInt(id, 10)
}

func (c *Client) ListStudents(ctx context.Context) ([]student.Student, error) {
	students := make([]student.Student, 0)
	if err := c.do(ctx, http.MethodGet, studentsPath, nil, &students); err != nil {
		return nil, err
	}
	return students, nil
}

// GetStudent fails with a 404 *Error for unknown ids, including when the API answers 200 with a null body.
func (c *Client) GetStudent(ctx context.Context, id int64) (student.Student, error) {
	var s *student.Student
	if err := c.do(ctx, http.MethodGet, studentPath(id), nil, &s); err != nil {
		return student.Student{}, err
	}
	if s == nil {
		return student.Student{}, &Error{StatusCode: http.StatusNotFound, Message: "Student not found"}
	}
	return *s, nil
}

func (c *Client) AddStudent(ctx context.Context, s student.Student) error {
	return c.do(ctx, http.MethodPost, studentsPath, s, nil)
}

// UpdateStudent replaces the whole record identified by s.ID.
func (c *Client) UpdateStudent(ctx context.Context, s student.Student) error {
	return c.do(ctx, http.MethodPut, studentPath(s.ID), s, nil)
}

func (c *Client) DeleteStudent(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, studentPath(id), nil, nil)
}

// AverageAttendance is computed by the server over students with a recorded attendance.
func (c *Client) AverageAttendance(ctx context.Context) (float64, error) {
	var avg *float64
	if err := c.do(ctx, http.MethodGet, studentsPath+"/average-attendance", nil, &avg); err != nil {
		return 0, err
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}
