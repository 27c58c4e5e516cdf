package roster

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/rosterdash/core"
	"github.com/trezcool/rosterdash/core/student"
)

var (
	// errors
	ErrNotFound = errors.New("student not found")
)

// Client is the part of the REST API the roster needs.
type Client interface {
	ListStudents(ctx context.Context) ([]student.Student, error)
	AverageAttendance(ctx context.Context) (float64, error)
	AddStudent(ctx context.Context, s student.Student) error
	UpdateStudent(ctx context.Context, s student.Student) error
	DeleteStudent(ctx context.Context, id int64) error
}

// Roster holds the canonical student list and the server computed average.
// Mutations go through the API and are followed by a full refetch.
type Roster struct {
	client Client
	logger core.Logger

	mu       sync.RWMutex
	students []student.Student
	average  float64
	loaded   bool
}

func New(client Client, logger core.Logger) *Roster {
	return &Roster{client: client, logger: logger}
}

// Refresh replaces the list wholesale, then fetches the average.
// A failed average fetch is logged and the previous average kept.
func (r *Roster) Refresh(ctx context.Context) error {
	students, err := r.client.ListStudents(ctx)
	if err != nil {
		return errors.Wrap(err, "listing students")
	}

	r.mu.Lock()
	r.students = students
	r.loaded = true
	r.mu.Unlock()

	avg, err := r.client.AverageAttendance(ctx)
	if err != nil {
		r.logger.Warn("fetching average attendance", errors.Wrap(err, "average attendance"))
		return nil
	}
	r.mu.Lock()
	r.average = avg
	r.mu.Unlock()
	return nil
}

// Students returns a copy of the current list.
func (r *Roster) Students() []student.Student {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]student.Student, len(r.students))
	copy(res, r.students)
	return res
}

func (r *Roster) Average() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.average
}

// Loaded reports whether a list was fetched at least once.
func (r *Roster) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded
}

func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.students)
}

func (r *Roster) Find(id int64) (student.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.students {
		if s.ID == id {
			return s, nil
		}
	}
	return student.Student{}, ErrNotFound
}

// Clear forgets the list, e.g. on logout.
func (r *Roster) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.students = nil
	r.average = 0
	r.loaded = false
}

// RefreshError is returned by a mutation that reached the server when the refetch after it failed.
type RefreshError struct {
	Err error
}

func (err *RefreshError) Error() string { return err.Err.Error() }
func (err *RefreshError) Cause() error  { return err.Err }
func (err *RefreshError) Unwrap() error { return err.Err }

// IsRefreshError reports whether err only failed the refetch, the mutation itself succeeded.
func IsRefreshError(err error) bool {
	var rErr *RefreshError
	return errors.As(err, &rErr)
}

func (r *Roster) Add(ctx context.Context, s student.Student) error {
	return r.refreshAfter(ctx, r.client.AddStudent(ctx, s), "adding student")
}

func (r *Roster) Update(ctx context.Context, s student.Student) error {
	return r.refreshAfter(ctx, r.client.UpdateStudent(ctx, s), "updating student")
}

func (r *Roster) Delete(ctx context.Context, id int64) error {
	return r.refreshAfter(ctx, r.client.DeleteStudent(ctx, id), "deleting student")
}

func (r *Roster) refreshAfter(ctx context.Context, err error, action string) error {
	if err != nil {
		return errors.Wrap(err, action)
	}
	if err = r.Refresh(ctx); err != nil {
		return &RefreshError{Err: err}
	}
	return nil
}
