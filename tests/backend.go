package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/rosterdash/core"
	"github.com/trezcool/rosterdash/core/session"
	"github.com/trezcool/rosterdash/core/student"
)

// Default admin account, created by every Backend.
const (
	AdminUsername = "admin"
	AdminPassword = "admin123"
)

var (
	secretKey   = []byte("rosterdash-test-secret")
	tokenTTL    = time.Hour
	ctxTokenKey = "userToken"

	errForbidden       = echo.NewHTTPError(http.StatusForbidden, "Access Denied")
	errStudentNotFound = echo.NewHTTPError(http.StatusNotFound, "Student not found")
)

type account struct {
	hash []byte
	role string
}

// Backend is an in-memory implementation of the student dashboard REST API.
type Backend struct {
	app        *echo.Echo
	srv        *httptest.Server
	validate   *validator.Validate
	translator ut.Translator

	mu            sync.Mutex
	users         map[string]account
	students      []student.Student
	requestIDs    []string
	averageBroken bool
	listBroken    bool
}

// NewBackend starts a Backend seeded with students; it is closed when the test ends.
func NewBackend(t *testing.T, students ...student.Student) *Backend {
	t.Helper()

	b := &Backend{
		app:        echo.New(),
		validate:   validator.New(),
		translator: core.NewTranslator(),
		users:      make(map[string]account),
		students:   append([]student.Student(nil), students...),
	}
	core.InitValidators(b.validate, b.translator)
	b.setup()
	b.AddUser(t, AdminUsername, AdminPassword, session.RoleAdmin)

	b.srv = httptest.NewServer(b.app)
	t.Cleanup(b.srv.Close)
	return b
}

func (b *Backend) setup() {
	b.app.HideBanner = true
	b.app.Logger.SetLevel(log.OFF)
	b.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	b.app.Use(b.recordRequestID)
	b.app.HTTPErrorHandler = b.httpErrorHandler

	auth := b.app.Group("/auth")
	auth.POST("/login", b.login)
	auth.POST("/register", b.register)

	jwtMw := middleware.JWTWithConfig(middleware.JWTConfig{
		SigningKey:    secretKey,
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    ctxTokenKey,
		Claims:        new(session.Claims),
	})
	sg := b.app.Group("/api/students", jwtMw)
	sg.GET("", b.listStudents)
	sg.GET("/average-attendance", b.averageAttendance)
	sg.GET("/:id", b.getStudent)
	sg.POST("", b.addStudent, adminOnly)
	sg.PUT("/:id", b.updateStudent, adminOnly)
	sg.DELETE("/:id", b.deleteStudent, adminOnly)
}

func (b *Backend) URL() string { return b.srv.URL }

// AddUser registers an account with the given role.
func (b *Backend) AddUser(t *testing.T, username, pwd, role string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("AddUser() failed: %v", err)
	}
	b.mu.Lock()
	b.users[username] = account{hash: hash, role: role}
	b.mu.Unlock()
}

// Students returns a snapshot of the server side roster.
func (b *Backend) Students() []student.Student {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]student.Student(nil), b.students...)
}

// RequestIDs lists the X-Request-ID headers received so far.
func (b *Backend) RequestIDs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requestIDs...)
}

// BreakAverage makes the average endpoint fail with a 500.
func (b *Backend) BreakAverage(broken bool) {
	b.mu.Lock()
	b.averageBroken = broken
	b.mu.Unlock()
}

// BreakList makes the list endpoint fail with a 500.
func (b *Backend) BreakList(broken bool) {
	b.mu.Lock()
	b.listBroken = broken
	b.mu.Unlock()
}

// Token signs a token the Backend accepts; a negative ttl yields an expired token.
func Token(t *testing.T, username, role string, ttl ...time.Duration) string {
	t.Helper()
	delta := tokenTTL
	if len(ttl) > 0 {
		delta = ttl[0]
	}
	tkn, err := signToken(username, role, delta)
	if err != nil {
		t.Fatalf("Token() failed: %v", err)
	}
	return tkn
}

func signToken(username, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := session.Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   username,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
		Role: role,
	}
	ss, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secretKey)
	return ss, errors.Wrap(err, "signing token")
}

// Middleware

func (b *Backend) recordRequestID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		b.mu.Lock()
		b.requestIDs = append(b.requestIDs, ctx.Request().Header.Get("X-Request-ID"))
		b.mu.Unlock()
		return next(ctx)
	}
}

func adminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if token, ok := ctx.Get(ctxTokenKey).(*jwt.Token); ok {
			if claims, ok := token.Claims.(*session.Claims); ok && claims.Role == session.RoleAdmin {
				return next(ctx)
			}
		}
		return errForbidden
	}
}

func (b *Backend) httpErrorHandler(err error, ctx echo.Context) {
	var code int
	var body interface{}

	switch origErr := errors.Cause(err).(type) {
	case *echo.HTTPError:
		code = origErr.Code
		if origErr == middleware.ErrJWTMissing {
			code = http.StatusUnauthorized
		}
		body = echo.Map{"message": origErr.Message}
	case validator.ValidationErrors:
		fldErrs := make(map[string]string, len(origErr))
		for _, vErr := range origErr {
			fldErrs[vErr.Field()] = vErr.Translate(b.translator)
		}
		code = http.StatusBadRequest
		body = echo.Map{"message": "Validation failed", "errors": fldErrs}
	default:
		code = http.StatusInternalServerError
		body = echo.Map{"message": "Something went wrong"}
	}

	if !ctx.Response().Committed {
		if err = ctx.JSON(code, body); err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}

// Auth handlers

type authRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=100"`
}

func (b *Backend) respondWithToken(ctx echo.Context, username, role string) error {
	tkn, err := signToken(username, role, tokenTTL)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"token": tkn, "role": role, "username": username})
}

func (b *Backend) login(ctx echo.Context) error {
	var data authRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to authRequest")
	}
	if err := b.validate.Struct(data); err != nil {
		return err
	}

	b.mu.Lock()
	acc, ok := b.users[data.Username]
	b.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(acc.hash, []byte(data.Password)) != nil {
		return ctx.String(http.StatusUnauthorized, "INVALID")
	}
	return b.respondWithToken(ctx, data.Username, acc.role)
}

func (b *Backend) register(ctx echo.Context) error {
	var data authRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to authRequest")
	}
	if err := b.validate.Struct(data); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(data.Password), bcrypt.MinCost)
	if err != nil {
		return errors.Wrap(err, "hashing password")
	}

	b.mu.Lock()
	_, exists := b.users[data.Username]
	if !exists {
		b.users[data.Username] = account{hash: hash, role: session.RoleStudent}
	}
	b.mu.Unlock()

	if exists {
		return ctx.String(http.StatusConflict, "Username already exists")
	}
	return b.respondWithToken(ctx, data.Username, session.RoleStudent)
}

// Student handlers

type studentRequest struct {
	ID                   *int64   `json:"id" validate:"required"`
	Name                 string   `json:"name" validate:"required"`
	Branch               string   `json:"branch" validate:"required"`
	StudentYear          int      `json:"studentYear" validate:"min=1,max=4"`
	AttendancePercentage *float64 `json:"attendancePercentage" validate:"required,min=0,max=100"`
}

func (req studentRequest) student() student.Student {
	return student.Student{
		ID:                   *req.ID,
		Name:                 req.Name,
		Branch:               req.Branch,
		StudentYear:          req.StudentYear,
		AttendancePercentage: req.AttendancePercentage,
	}
}

func (b *Backend) bindStudent(ctx echo.Context) (studentRequest, error) {
	// decoded by hand: echo's binder would also bind the :id path param
	var data studentRequest
	if err := json.NewDecoder(ctx.Request().Body).Decode(&data); err != nil {
		return data, echo.NewHTTPError(http.StatusBadRequest, "malformed student").SetInternal(err)
	}
	return data, b.validate.Struct(data)
}

func paramID(ctx echo.Context) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// index returns the position of id in the roster, or -1. Callers hold b.mu.
func (b *Backend) index(id int64) int {
	for i, s := range b.students {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (b *Backend) listStudents(ctx echo.Context) error {
	b.mu.Lock()
	broken := b.listBroken
	b.mu.Unlock()
	if broken {
		return errors.New("list unavailable")
	}
	return ctx.JSON(http.StatusOK, b.Students())
}

func (b *Backend) getStudent(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.index(id); i >= 0 {
		return ctx.JSON(http.StatusOK, b.students[i])
	}
	return ctx.JSON(http.StatusOK, nil)
}

func (b *Backend) averageAttendance(ctx echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.averageBroken {
		return errors.New("average unavailable")
	}

	var total float64
	var count int
	for _, s := range b.students {
		if s.AttendancePercentage != nil {
			total += *s.AttendancePercentage
			count++
		}
	}
	if count == 0 {
		return ctx.JSON(http.StatusOK, 0.0)
	}
	return ctx.JSON(http.StatusOK, total/float64(count))
}

func (b *Backend) addStudent(ctx echo.Context) error {
	data, err := b.bindStudent(ctx)
	if err != nil {
		return err
	}
	s := data.student()

	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.index(s.ID); i >= 0 {
		b.students[i] = s
	} else {
		b.students = append(b.students, s)
	}
	return ctx.JSON(http.StatusOK, s)
}

func (b *Backend) updateStudent(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	data, err := b.bindStudent(ctx)
	if err != nil {
		return err
	}
	s := data.student()
	s.ID = id

	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.index(id)
	if i < 0 {
		return errStudentNotFound
	}
	b.students[i] = s
	return ctx.JSON(http.StatusOK, s)
}

func (b *Backend) deleteStudent(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.index(id); i >= 0 {
		b.students = append(b.students[:i], b.students[i+1:]...)
	}
	return ctx.NoContent(http.StatusOK)
}
