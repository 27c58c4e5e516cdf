package di

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/rosterdash/apps/dashboard"
	"github.com/trezcool/rosterdash/core"
	emailsvc "github.com/trezcool/rosterdash/services/email"
	logsvc "github.com/trezcool/rosterdash/services/logger"
)

func TestNew(t *testing.T) {
	sessionFile := filepath.Join(t.TempDir(), "session.json")
	t.Setenv("ENV", "TEST")
	t.Setenv("TEST_SESSIONFILE", sessionFile)
	t.Setenv("TEST_APIBASEURL", "http://school.test:8080/")

	c := New()
	err := c.Invoke(func(conf *core.Config, logger *logsvc.RollbarLogger, mailer core.EmailService, app *dashboard.App) {
		assert.Equal(t, "TEST", conf.Env)
		assert.True(t, conf.TestMode)
		assert.Equal(t, sessionFile, conf.SessionFile)
		assert.Equal(t, "http://school.test:8080", conf.APIBaseURL)

		assert.False(t, logger.Enabled())
		assert.IsType(t, &emailsvc.ConsoleService{}, mailer)

		assert.Equal(t, dashboard.ScreenLogin, app.Screen())
	})
	require.NoError(t, err)
}
