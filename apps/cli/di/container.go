package di

import (
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	"github.com/trezcool/rosterdash/apps/dashboard"
	"github.com/trezcool/rosterdash/core"
	"github.com/trezcool/rosterdash/core/session"
	apiclient "github.com/trezcool/rosterdash/services/api"
	emailsvc "github.com/trezcool/rosterdash/services/email"
	logsvc "github.com/trezcool/rosterdash/services/logger"
	sessionstore "github.com/trezcool/rosterdash/storage/session"
)

// AppParams are the dependencies of the dashboard.
type AppParams struct {
	dig.In

	Conf       *core.Config
	API        *apiclient.Client
	Sessions   *session.Manager
	Logger     core.Logger
	Validate   *validator.Validate
	Translator ut.Translator
	Mailer     core.EmailService
}

func newRollbarLogger(conf *core.Config) *logsvc.RollbarLogger {
	return logsvc.NewRollbarLogger(logsvc.NewStdLogger(os.Stderr), conf)
}

func newLogger(l *logsvc.RollbarLogger) core.Logger { return l }

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	session.InitValidators(validate, translator)
	return validate
}

func newSessionStore(conf *core.Config) session.Store {
	return sessionstore.NewFileStore(conf.SessionFile)
}

func newAPIClient(conf *core.Config, sessions *session.Manager) *apiclient.Client {
	return apiclient.New(apiclient.Options{BaseURL: conf.APIBaseURL, Timeout: conf.RequestTimeout}, sessions)
}

func newApp(p AppParams) *dashboard.App {
	return dashboard.New(dashboard.Deps{
		API:        p.API,
		Sessions:   p.Sessions,
		Logger:     p.Logger,
		Validate:   p.Validate,
		Translator: p.Translator,
		Mailer:     p.Mailer,
		Timeout:    p.Conf.RequestTimeout,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newRollbarLogger))
	must(c.Provide(newLogger))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(newSessionStore))
	must(c.Provide(session.NewManager))
	must(c.Provide(newAPIClient))
	must(c.Provide(emailsvc.NewService))
	must(c.Provide(newApp))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
