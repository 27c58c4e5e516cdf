package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/rosterdash/core/session"
	"github.com/trezcool/rosterdash/core/student"
	"github.com/trezcool/rosterdash/tests"
)

func newClient(b *testutil.Backend, token string) *Client {
	return New(Options{BaseURL: b.URL() + "/", Timeout: 5 * time.Second}, TokenFunc(func() string { return token }))
}

func TestClient_Login(t *testing.T) {
	b := testutil.NewBackend(t)
	ctx := context.Background()
	c := newClient(b, "")

	sess, err := c.Login(ctx, session.Credentials{Username: testutil.AdminUsername, Password: testutil.AdminPassword})
	require.NoError(t, err)
	assert.Equal(t, session.RoleAdmin, sess.Role)
	assert.Equal(t, testutil.AdminUsername, sess.Username)
	assert.NotEmpty(t, sess.Token)

	claims, err := session.ParseClaims(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, testutil.AdminUsername, claims.Subject)

	_, err = c.Login(ctx, session.Credentials{Username: testutil.AdminUsername, Password: "wrong-password"})
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, "INVALID", Message(err))

	for _, id := range b.RequestIDs() {
		_, err := uuid.Parse(id)
		assert.NoError(t, err, "X-Request-ID %q", id)
	}
}

func TestClient_Register(t *testing.T) {
	b := testutil.NewBackend(t)
	ctx := context.Background()
	c := newClient(b, "")

	sess, err := c.Register(ctx, session.Credentials{Username: "carol", Password: "s3cure-pass"})
	require.NoError(t, err)
	assert.Equal(t, session.Session{Token: sess.Token, Role: session.RoleStudent, Username: "carol"}, sess)

	_, err = c.Register(ctx, session.Credentials{Username: "carol", Password: "s3cure-pass"})
	require.Error(t, err)
	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "Username already exists", apiErr.Message)

	_, err = c.Register(ctx, session.Credentials{Username: "dave", Password: "abc"})
	require.Error(t, err)
	apiErr, ok = AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Validation failed", apiErr.Message)
	assert.Contains(t, apiErr.Fields, "password")
	assert.Contains(t, apiErr.Detail(), "password: ")
}

func TestClient_Students(t *testing.T) {
	b := testutil.NewBackend(t, testutil.Classroom()...)
	ctx := context.Background()

	// unauthenticated
	_, err := newClient(b, "").ListStudents(ctx)
	assert.True(t, IsUnauthorized(err), "err = %v", err)

	// expired
	expired := testutil.Token(t, testutil.AdminUsername, session.RoleAdmin, -time.Minute)
	_, err = newClient(b, expired).ListStudents(ctx)
	assert.True(t, IsUnauthorized(err), "err = %v", err)

	// students can read but not write
	stud := newClient(b, testutil.Token(t, "bob", session.RoleStudent))
	students, err := stud.ListStudents(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, testutil.IDs(students))

	err = stud.DeleteStudent(ctx, 1)
	assert.True(t, IsForbidden(err), "err = %v", err)
	assert.Equal(t, "Access Denied", Message(err))

	admin := newClient(b, testutil.Token(t, testutil.AdminUsername, session.RoleAdmin))

	avg, err := admin.AverageAttendance(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 70.0, avg, 1e-9)

	dana := student.Student{ID: 4, Name: "Dana", Branch: "ME", StudentYear: 3, AttendancePercentage: testutil.Attendance(95)}
	require.NoError(t, admin.AddStudent(ctx, dana))

	got, err := admin.GetStudent(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, dana, got)

	dana.Name = "Dana S."
	require.NoError(t, admin.UpdateStudent(ctx, dana))
	assert.Equal(t, "Dana S.", b.Students()[3].Name)

	err = admin.UpdateStudent(ctx, student.Student{ID: 99, Name: "X", Branch: "CS", StudentYear: 1, AttendancePercentage: testutil.Attendance(1)})
	assert.True(t, IsNotFound(err), "err = %v", err)

	_, err = admin.GetStudent(ctx, 99)
	assert.True(t, IsNotFound(err), "err = %v", err)

	err = admin.AddStudent(ctx, student.Student{ID: 5, Name: "", Branch: "CS", StudentYear: 9})
	require.Error(t, err)
	apiErr, _ := AsError(err)
	require.NotNil(t, apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Fields, "name")
	assert.Contains(t, apiErr.Fields, "studentYear")

	require.NoError(t, admin.DeleteStudent(ctx, 1))
	assert.Equal(t, []int64{2, 3, 4}, testutil.IDs(b.Students()))

	b.BreakAverage(true)
	_, err = admin.AverageAttendance(ctx)
	apiErr, _ = AsError(err)
	require.NotNil(t, apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "Something went wrong", apiErr.Message)
}

func TestClient_Headers(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL}, TokenFunc(func() string { return "abc" }))
	_, err := c.ListStudents(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, "Bearer abc", got.Get("Authorization"))
	_, err = uuid.Parse(got.Get("X-Request-ID"))
	assert.NoError(t, err)

	c = New(Options{BaseURL: srv.URL}, nil)
	_, err = c.ListStudents(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got.Get("Authorization"))
}

func TestClient_InvalidAuthResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"username":"bob"}`))
	}))
	defer srv.Close()

	_, err := New(Options{BaseURL: srv.URL}, nil).Login(context.Background(), session.Credentials{Username: "bob", Password: "x"})
	assert.Equal(t, ErrInvalidCredentials, err)
}

func TestNewError(t *testing.T) {
	tests := []struct {
		name   string
		code   int
		body   string
		want   string
		detail string
	}{
		{name: "json message", code: 400, body: `{"message":"Validation failed","errors":{"name":"Name is required"}}`, want: "Validation failed", detail: "Validation failed (name: Name is required)"},
		{name: "json error", code: 403, body: `{"error":"permission denied"}`, want: "permission denied", detail: "permission denied"},
		{name: "plain text", code: 409, body: "Username already exists\n", want: "Username already exists", detail: "Username already exists"},
		{name: "json string", code: 401, body: `"INVALID"`, want: "INVALID", detail: "INVALID"},
		{name: "html", code: 502, body: "<html>bad gateway</html>", want: "", detail: ""},
		{name: "empty", code: 500, body: "", want: "", detail: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newError(tt.code, []byte(tt.body))
			assert.Equal(t, tt.code, err.StatusCode)
			assert.Equal(t, tt.want, err.Message)
			assert.Equal(t, tt.detail, err.Detail())
		})
	}
	assert.Equal(t, "api: 500 Internal Server Error", newError(500, nil).Error())
}
