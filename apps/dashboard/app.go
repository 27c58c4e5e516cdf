package dashboard

import (
	"context"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/rosterdash/core"
	"github.com/trezcool/rosterdash/core/roster"
	"github.com/trezcool/rosterdash/core/session"
	"github.com/trezcool/rosterdash/core/student"
)

// Screen is the top level state of the view.
type Screen string

const (
	ScreenLogin     Screen = "login"
	ScreenRegister  Screen = "register"
	ScreenDashboard Screen = "dashboard"
)

// Page is a sub page of the dashboard screen.
type Page string

const (
	PageDashboard Page = "dashboard"
	PageStudents  Page = "students"
)

func ParsePage(s string) (Page, bool) {
	switch p := Page(s); p {
	case PageDashboard, PageStudents:
		return p, true
	}
	return "", false
}

// API is the REST API as seen by the view.
type API interface {
	Login(ctx context.Context, creds session.Credentials) (session.Session, error)
	Register(ctx context.Context, creds session.Credentials) (session.Session, error)
	roster.Client
}

type Deps struct {
	API        API
	Sessions   *session.Manager
	Logger     core.Logger
	Validate   *validator.Validate
	Translator ut.Translator
	Mailer     core.EmailService // optional, enables at-risk alerts
	Timeout    time.Duration     // per intent, 0 means none
}

// App is the view-model: it owns the screen state, the filter selection and the notifications,
// and turns user intents into roster or session changes.
type App struct {
	api        API
	sessions   *session.Manager
	logger     core.Logger
	validate   *validator.Validate
	translator ut.Translator
	mailer     core.EmailService
	timeout    time.Duration

	roster *roster.Roster

	screen        Screen
	page          Page
	filter        student.Filter
	editID        int64 // 0 when adding
	form          student.Form
	pendingDelete *student.Student
	drawer        *student.Student
	notifications []Notification
}

func New(deps Deps) *App {
	a := &App{
		api:        deps.API,
		sessions:   deps.Sessions,
		logger:     deps.Logger,
		validate:   deps.Validate,
		translator: deps.Translator,
		mailer:     deps.Mailer,
		timeout:    deps.Timeout,
		roster:     roster.New(deps.API, deps.Logger),
		screen:     ScreenLogin,
		page:       PageDashboard,
		filter:     student.DefaultFilter(),
	}
	if a.sessions.LoggedIn() {
		a.screen = ScreenDashboard
	}
	return a
}

func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}

func (a *App) Screen() Screen { return a.screen }
func (a *App) Page() Page     { return a.page }

func (a *App) Session() session.Session { return a.sessions.Current() }
func (a *App) IsAdmin() bool            { return a.sessions.IsAdmin() }

// Students is the full roster.
func (a *App) Students() []student.Student { return a.roster.Students() }

// Average is the server computed average attendance.
func (a *App) Average() float64 { return a.roster.Average() }

func (a *App) Filter() student.Filter { return a.filter }

// Analytics derives every view from the current roster and filter.
func (a *App) Analytics() student.Analytics {
	return student.Derive(a.roster.Students(), a.filter)
}

// Editing returns the id of the student being edited.
func (a *App) Editing() (int64, bool) { return a.editID, a.editID != 0 }

// Form is the add/edit form as last loaded or submitted.
func (a *App) Form() student.Form { return a.form }

// PendingDelete is the student awaiting delete confirmation.
func (a *App) PendingDelete() (student.Student, bool) {
	if a.pendingDelete == nil {
		return student.Student{}, false
	}
	return *a.pendingDelete, true
}

// Drawer is the student opened in the detail drawer.
func (a *App) Drawer() (student.Student, bool) {
	if a.drawer == nil {
		return student.Student{}, false
	}
	return *a.drawer, true
}

// Trend is the synthetic trend of the student in the drawer, nil when closed.
func (a *App) Trend() []student.TrendPoint {
	if a.drawer == nil {
		return nil
	}
	return student.Trend(*a.drawer)
}
