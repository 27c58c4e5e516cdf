package dashboard

import (
	"github.com/pkg/errors"

	"github.com/trezcool/rosterdash/core"
	"github.com/trezcool/rosterdash/core/session"
	apiclient "github.com/trezcool/rosterdash/services/api"
)

// user facing messages
const (
	msgSessionExpired  = "Session expired. Please login again."
	msgLoginRequired   = "Please login first."
	msgMissingCreds    = "Enter username & password"
	msgLoginFailed     = "Login failed. Backend not reachable."
	msgRegisterFailed  = "Registration failed. Backend not reachable."
	msgLoadFailed      = "Error loading students"
	msgSaveFailed      = "Error saving student"
	msgDeleteFailed    = "Error deleting student"
	msgAlertFailed     = "Error sending the at-risk alert"
	msgAdminSave       = "Only ADMIN can add or update students."
	msgAdminEdit       = "Only ADMIN can edit students."
	msgAdminDelete     = "Only ADMIN can delete students."
	msgStudentNotFound = "Student not found"
)

var (
	// errors
	ErrForbidden = errors.New("admin role required")
)

// failure describes how an intent reports its errors.
type failure struct {
	fallback  string // error message when the server sent none
	forbidden string // warning on 403
	login     bool   // a 401 is a credentials problem, not an expired session
}

// fail maps err to a notification and returns it. A 401 outside login ends the session.
func (a *App) fail(err error, f failure) error {
	switch {
	case core.IsValidationError(err):
		a.notify(core.ValidationMessage(err, a.translator), SeverityWarning)
	case apiclient.IsUnauthorized(err) && !f.login:
		a.forceLogout()
		a.notify(msgSessionExpired, SeverityWarning)
	case apiclient.IsForbidden(err):
		msg := f.forbidden
		if msg == "" {
			msg = apiclient.Message(err)
		}
		a.notify(msg, SeverityWarning)
	default:
		msg := apiclient.Message(err)
		if msg == "" {
			if errors.Cause(err) == apiclient.ErrInvalidCredentials {
				msg = apiclient.ErrInvalidCredentials.Error()
			} else {
				msg = f.fallback
			}
		}
		if _, ok := apiclient.AsError(err); !ok && errors.Cause(err) != apiclient.ErrInvalidCredentials {
			a.logger.Error(f.fallback, err, a.sessions.Current())
		}
		a.notify(msg, SeverityError)
	}
	return err
}

// forbid reports a client side role check failure.
func (a *App) forbid(msg string) error {
	a.notify(msg, SeverityWarning)
	return ErrForbidden
}

func (a *App) requireSession() error {
	if a.screen != ScreenDashboard || !a.sessions.LoggedIn() {
		a.notify(msgLoginRequired, SeverityWarning)
		return session.ErrNoSession
	}
	return nil
}
