package emailsvc

import (
	"bytes"
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/rosterdash/core"
	"github.com/trezcool/rosterdash/core/student"
	"github.com/trezcool/rosterdash/tests"
)

func testConfig() *core.Config {
	return &core.Config{
		Debug:            true,
		AppName:          "Roster Dashboard",
		DefaultFromEmail: mail.Address{Name: "Roster", Address: "noreply@school.edu"},
	}
}

func TestConsoleService_AtRisk(t *testing.T) {
	var out bytes.Buffer
	svc := NewConsoleService(testConfig(), &out)

	roster := testutil.Classroom()
	to, err := ParseRecipients("Dean <dean@school.edu>, hod@school.edu")
	require.NoError(t, err)
	require.Len(t, to, 2)

	msg := NewAtRiskMessage(to, student.LowAttendance(roster), len(roster))
	require.NotNil(t, msg)
	require.NoError(t, svc.SendMessages(msg))

	sent := svc.SentMessages()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].TextContent, "1 of 3 students are below 55% attendance")
	assert.Contains(t, sent[0].TextContent, "#1 Alice (CS, year 2): 50.00%")
	assert.Contains(t, sent[0].HTMLContent, "<td>Alice</td>")
	assert.Contains(t, sent[0].TextContent, "Roster Dashboard")

	printed := out.String()
	assert.Contains(t, printed, "Subject: [Roster Dashboard] Attendance alert: 1 students below 55%")
	assert.Contains(t, printed, `To: "Dean" <dean@school.edu>, <hod@school.edu>`)
	assert.Contains(t, printed, "text/html")
}

func TestConsoleService_SkipsEmpty(t *testing.T) {
	var out bytes.Buffer
	svc := NewConsoleService(testConfig(), &out)

	require.NoError(t, svc.SendMessages(
		&core.EmailMessage{Subject: "no recipients", BodyStr: "hello"},
		&core.EmailMessage{To: []mail.Address{{Address: "a@b.c"}}, Subject: "no content"},
	))
	assert.Empty(t, svc.SentMessages())
	assert.Empty(t, out.String())

	err := svc.SendMessages(&core.EmailMessage{To: []mail.Address{{Address: "a@b.c"}}, TemplateName: "nope"})
	assert.Error(t, err)
}

func TestNewAtRiskMessage_Empty(t *testing.T) {
	assert.Nil(t, NewAtRiskMessage([]mail.Address{{Address: "a@b.c"}}, nil, 3))
}

func TestParseRecipients(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "a@b.c", want: 1},
		{in: " a@b.c , d@e.f ", want: 2},
		{in: "", wantErr: true},
		{in: "not an address", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRecipients(tt.in)
			if tt.wantErr {
				assert.True(t, core.IsValidationError(err), "err = %v", err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestNewService(t *testing.T) {
	conf := testConfig()
	_, ok := NewService(conf, nil).(*ConsoleService)
	assert.True(t, ok)

	conf.Debug = false
	conf.SendgridApiKey = "SG.key"
	svc, ok := NewService(conf, nil).(*SendgridService)
	require.True(t, ok)

	m := svc.prepare(core.EmailMessage{
		To:          []mail.Address{{Name: "Dean", Address: "dean@school.edu"}},
		Subject:     "hi",
		TextContent: "text",
	})
	require.Len(t, m.Personalizations, 1)
	assert.Equal(t, "[Roster Dashboard] hi", m.Personalizations[0].Subject)
	assert.Len(t, m.Content, 1)
}
