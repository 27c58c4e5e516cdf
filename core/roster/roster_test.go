package roster

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/rosterdash/core/student"
	"github.com/trezcool/rosterdash/tests"
)

type nopLogger struct{ warnings int }

func (l *nopLogger) Debug(string, ...interface{}) {}
func (l *nopLogger) Info(string, ...interface{})  {}
func (l *nopLogger) Warn(string, ...interface{})  { l.warnings++ }
func (l *nopLogger) Error(string, ...interface{}) {}
func (l *nopLogger) Fatal(string, ...interface{}) {}

type fakeClient struct {
	students   []student.Student
	average    float64
	listErr    error
	averageErr error
	writeErr   error
	lists      int
}

func (c *fakeClient) ListStudents(context.Context) ([]student.Student, error) {
	c.lists++
	if c.listErr != nil {
		return nil, c.listErr
	}
	return append([]student.Student(nil), c.students...), nil
}

func (c *fakeClient) AverageAttendance(context.Context) (float64, error) {
	return c.average, c.averageErr
}

func (c *fakeClient) AddStudent(_ context.Context, s student.Student) error {
	if c.writeErr != nil {
		return c.writeErr
	}
	c.students = append(c.students, s)
	return nil
}

func (c *fakeClient) UpdateStudent(_ context.Context, s student.Student) error {
	if c.writeErr != nil {
		return c.writeErr
	}
	for i := range c.students {
		if c.students[i].ID == s.ID {
			c.students[i] = s
		}
	}
	return nil
}

func (c *fakeClient) DeleteStudent(_ context.Context, id int64) error {
	if c.writeErr != nil {
		return c.writeErr
	}
	for i := range c.students {
		if c.students[i].ID == id {
			c.students = append(c.students[:i], c.students[i+1:]...)
			break
		}
	}
	return nil
}

func TestRoster_Refresh(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{students: testutil.Classroom(), average: 70}
	logger := new(nopLogger)
	r := New(client, logger)

	assert.False(t, r.Loaded())
	require.NoError(t, r.Refresh(ctx))
	assert.True(t, r.Loaded())
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, 70.0, r.Average())

	// the average failing keeps the previous value
	client.students = client.students[:1]
	client.averageErr = errors.New("boom")
	require.NoError(t, r.Refresh(ctx))
	assert.Equal(t, []int64{1}, testutil.IDs(r.Students()))
	assert.Equal(t, 70.0, r.Average())
	assert.Equal(t, 1, logger.warnings)

	// the list failing keeps everything
	client.listErr = errors.New("offline")
	assert.Error(t, r.Refresh(ctx))
	assert.Equal(t, []int64{1}, testutil.IDs(r.Students()))

	r.Clear()
	assert.False(t, r.Loaded())
	assert.Zero(t, r.Len())
}

func TestRoster_StudentsIsACopy(t *testing.T) {
	r := New(&fakeClient{students: testutil.Classroom()}, new(nopLogger))
	require.NoError(t, r.Refresh(context.Background()))

	got := r.Students()
	got[0].Name = "Mallory"
	s, err := r.Find(1)
	require.NoError(t, err)
	assert.Equal(t, "Alice", s.Name)

	_, err = r.Find(42)
	assert.Equal(t, ErrNotFound, err)
}

func TestRoster_Mutations(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{students: testutil.Classroom()}
	r := New(client, new(nopLogger))
	require.NoError(t, r.Refresh(ctx))

	dana := student.Student{ID: 4, Name: "Dana", Branch: "ME", StudentYear: 3}
	require.NoError(t, r.Add(ctx, dana))
	assert.Equal(t, []int64{1, 2, 3, 4}, testutil.IDs(r.Students()))

	dana.Name = "Dana S."
	require.NoError(t, r.Update(ctx, dana))
	s, _ := r.Find(4)
	assert.Equal(t, "Dana S.", s.Name)

	require.NoError(t, r.Delete(ctx, 2))
	assert.Equal(t, []int64{1, 3, 4}, testutil.IDs(r.Students()))
	assert.Equal(t, 4, client.lists, "every mutation refetches")

	// failures leave the list untouched and skip the refetch
	client.writeErr = errors.New("forbidden")
	assert.Error(t, r.Add(ctx, student.Student{ID: 9}))
	assert.Error(t, r.Update(ctx, dana))
	assert.Error(t, r.Delete(ctx, 1))
	assert.Equal(t, []int64{1, 3, 4}, testutil.IDs(r.Students()))
	assert.Equal(t, 4, client.lists)
	assert.Equal(t, client.writeErr, errors.Cause(r.Delete(ctx, 1)))
	assert.False(t, IsRefreshError(r.Delete(ctx, 1)))

	// a failed refetch after a successful write is reported apart
	client.writeErr = nil
	client.listErr = errors.New("list unavailable")
	err := r.Delete(ctx, 3)
	require.Error(t, err)
	assert.True(t, IsRefreshError(err))
	assert.Equal(t, client.listErr, errors.Cause(err))
	assert.Equal(t, []int64{1, 3, 4}, testutil.IDs(r.Students()), "stale list kept")
	assert.Len(t, client.students, 2)
}
