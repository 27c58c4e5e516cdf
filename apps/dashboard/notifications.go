package dashboard

// Severity of a Notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification is a transient message shown to the user after an intent.
type Notification struct {
	Message  string
	Severity Severity
}

func (a *App) notify(msg string, sev Severity) {
	a.notifications = append(a.notifications, Notification{Message: msg, Severity: sev})
}

// Notifications returns the pending notifications and clears them.
func (a *App) Notifications() []Notification {
	res := a.notifications
	a.notifications = nil
	return res
}

// LastNotification peeks at the latest pending notification.
func (a *App) LastNotification() (Notification, bool) {
	if len(a.notifications) == 0 {
		return Notification{}, false
	}
	return a.notifications[len(a.notifications)-1], true
}
