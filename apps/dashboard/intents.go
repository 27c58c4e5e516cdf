package dashboard

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/trezcool/rosterdash/core/roster"
	"github.com/trezcool/rosterdash/core/session"
	"github.com/trezcool/rosterdash/core/student"
	emailsvc "github.com/trezcool/rosterdash/services/email"
)

// Auth

func (a *App) Login(ctx context.Context, creds session.Credentials) error {
	if err := creds.Validate(a.validate); err != nil {
		a.notify(msgMissingCreds, SeverityWarning)
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	sess, err := a.api.Login(ctx, creds)
	if err != nil {
		return a.fail(err, failure{fallback: msgLoginFailed, login: true})
	}
	if err = a.sessions.Begin(sess); err != nil {
		return a.fail(err, failure{fallback: msgLoginFailed, login: true})
	}

	a.screen = ScreenDashboard
	a.page = PageDashboard
	a.notify("Welcome, "+sess.Username, SeveritySuccess)
	return a.refresh(ctx)
}

func (a *App) GoToRegister() {
	if a.screen == ScreenLogin {
		a.screen = ScreenRegister
	}
}

func (a *App) GoToLogin() {
	if a.screen == ScreenRegister {
		a.screen = ScreenLogin
	}
}

// Register creates a student account, then returns to the login screen.
func (a *App) Register(ctx context.Context, reg session.Registration) error {
	if err := reg.Validate(a.validate); err != nil {
		return a.fail(err, failure{})
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if _, err := a.api.Register(ctx, reg.Credentials()); err != nil {
		return a.fail(err, failure{fallback: msgRegisterFailed, login: true})
	}
	a.screen = ScreenLogin
	a.notify("Registration successful. Please login.", SeveritySuccess)
	return nil
}

func (a *App) Logout() error {
	err := a.endSession()
	a.notify("Logged out", SeverityInfo)
	return err
}

func (a *App) forceLogout() {
	_ = a.endSession()
}

func (a *App) endSession() error {
	err := a.sessions.End()
	if err != nil {
		a.logger.Error("clearing session", err)
	}
	a.roster.Clear()
	a.screen = ScreenLogin
	a.page = PageDashboard
	a.filter = student.DefaultFilter()
	a.resetForm()
	a.pendingDelete = nil
	a.drawer = nil
	return err
}

// Navigation & filters

func (a *App) Navigate(page Page) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	a.page = page
	return nil
}

func (a *App) SetFilter(f student.Filter) {
	f.Normalize()
	a.filter = f
}

// UpdateFilter applies a partial change to the current selection.
func (a *App) UpdateFilter(change func(f *student.Filter)) {
	f := a.filter
	change(&f)
	a.SetFilter(f)
}

func (a *App) ResetFilters() {
	a.filter = student.DefaultFilter()
}

// Roster

func (a *App) Refresh(ctx context.Context) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	return a.refresh(ctx)
}

func (a *App) refresh(ctx context.Context) error {
	if err := a.roster.Refresh(ctx); err != nil {
		return a.fail(err, failure{fallback: msgLoadFailed})
	}
	a.syncDrawer()
	return nil
}

// refreshed reports a failed refetch after a successful mutation. The mutation is not failed for it.
func (a *App) refreshed(err error) error {
	if err != nil {
		_ = a.fail(err, failure{fallback: msgLoadFailed})
		return nil
	}
	a.syncDrawer()
	return nil
}

func (a *App) syncDrawer() {
	if a.drawer != nil {
		if s, err := a.roster.Find(a.drawer.ID); err == nil {
			a.drawer = &s
		} else {
			a.drawer = nil
		}
	}
}

// SaveStudent adds the student, or updates it when a student is being edited.
func (a *App) SaveStudent(ctx context.Context, form student.Form) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	a.form = form
	if err := a.form.Validate(a.validate); err != nil {
		return a.fail(err, failure{})
	}
	if !a.sessions.IsAdmin() {
		return a.forbid(msgAdminSave)
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	s := a.form.Student()
	var err error
	if a.editID != 0 {
		s.ID = a.editID
		err = a.roster.Update(ctx, s)
	} else {
		err = a.roster.Add(ctx, s)
	}
	if err != nil && !roster.IsRefreshError(err) {
		return a.fail(err, failure{fallback: msgSaveFailed, forbidden: msgAdminSave})
	}

	if a.editID != 0 {
		a.notify("Student updated successfully", SeveritySuccess)
	} else {
		a.notify("Student added successfully", SeveritySuccess)
	}
	a.resetForm()
	return a.refreshed(err)
}

// EditStudent loads the student into the form and switches to edit mode.
func (a *App) EditStudent(id int64) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	if !a.sessions.IsAdmin() {
		return a.forbid(msgAdminEdit)
	}
	s, err := a.find(id)
	if err != nil {
		return err
	}
	a.editID = s.ID
	a.form = student.FormFrom(s)
	a.page = PageDashboard
	return nil
}

func (a *App) CancelEdit() { a.resetForm() }

func (a *App) resetForm() {
	a.editID = 0
	a.form = student.Form{}
}

// RequestDelete opens the delete confirmation.
func (a *App) RequestDelete(id int64) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	if !a.sessions.IsAdmin() {
		return a.forbid(msgAdminDelete)
	}
	s, err := a.find(id)
	if err != nil {
		return err
	}
	a.pendingDelete = &s
	return nil
}

// ConfirmDelete deletes the student awaiting confirmation, if any.
func (a *App) ConfirmDelete(ctx context.Context) error {
	if a.pendingDelete == nil {
		return nil
	}
	id := a.pendingDelete.ID
	a.pendingDelete = nil

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	err := a.roster.Delete(ctx, id)
	if err != nil && !roster.IsRefreshError(err) {
		return a.fail(err, failure{fallback: msgDeleteFailed, forbidden: msgAdminDelete})
	}
	if a.editID == id {
		a.resetForm()
	}
	if a.drawer != nil && a.drawer.ID == id {
		a.drawer = nil
	}
	a.notify("Student deleted successfully", SeveritySuccess)
	return a.refreshed(err)
}

func (a *App) CancelDelete() { a.pendingDelete = nil }

// OpenStudent opens the detail drawer of a student.
func (a *App) OpenStudent(id int64) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	s, err := a.find(id)
	if err != nil {
		return err
	}
	a.drawer = &s
	return nil
}

func (a *App) CloseStudent() { a.drawer = nil }

func (a *App) find(id int64) (student.Student, error) {
	s, err := a.roster.Find(id)
	if err != nil {
		if err == roster.ErrNotFound {
			a.notify(msgStudentNotFound, SeverityWarning)
		}
		return s, err
	}
	return s, nil
}

// Alerts

// SendAtRiskAlert emails the students below the at-risk threshold to the recipients.
func (a *App) SendAtRiskAlert(to []mail.Address) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	if a.mailer == nil {
		return a.fail(errors.New("no email service configured"), failure{fallback: msgAlertFailed})
	}

	all := a.roster.Students()
	msg := emailsvc.NewAtRiskMessage(to, student.LowAttendance(all), len(all))
	if msg == nil {
		a.notify(fmt.Sprintf("No student is below %g%% attendance.", student.AtRiskThreshold), SeverityInfo)
		return nil
	}
	if err := a.mailer.SendMessages(msg); err != nil {
		return a.fail(errors.Wrap(err, "sending at-risk alert"), failure{fallback: msgAlertFailed})
	}
	a.notify(fmt.Sprintf("At-risk alert sent to %d recipient(s)", len(to)), SeveritySuccess)
	return nil
}
