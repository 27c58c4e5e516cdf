package logsvc

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/rosterdash/core"
	"github.com/trezcool/rosterdash/core/session"
)

func TestRollbarLogger(t *testing.T) {
	tests := []struct {
		name        string
		conf        core.Config
		wantEnabled bool
	}{
		{name: "debug", conf: core.Config{Debug: true, RollbarToken: "tkn"}},
		{name: "no token", conf: core.Config{}},
		{name: "enabled", conf: core.Config{RollbarToken: "tkn", Env: "TEST"}, wantEnabled: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewRollbarLogger(NewStdLogger(&buf), &tt.conf)
			defer l.Enable(false)
			assert.Equal(t, tt.wantEnabled, l.Enabled())
		})
	}
}

func TestRollbarLogger_Print(t *testing.T) {
	var buf bytes.Buffer
	l := NewRollbarLogger(NewStdLogger(&buf), &core.Config{Debug: true})

	sess := session.Session{Token: "secret-token", Username: "admin"}
	l.Warn("fetching average attendance", errors.New("boom"), sess)

	out := buf.String()
	assert.Contains(t, out, stdPrefix)
	assert.Contains(t, out, "WARN fetching average attendance")
	assert.Contains(t, out, "boom")
	assert.NotContains(t, out, "secret-token")

	args := l.prepare("msg", []interface{}{sess, 1})
	assert.Equal(t, []interface{}{"msg", 1}, args)
}
