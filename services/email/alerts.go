package emailsvc

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/rosterdash/core"
	"github.com/trezcool/rosterdash/core/student"
)

const atRiskTemplate = "at_risk"

// AtRiskData feeds the at_risk email templates.
type AtRiskData struct {
	Students  []student.Student
	Total     int
	Threshold float64
}

// NewAtRiskMessage builds the low attendance alert; it returns nil when nobody is at risk.
func NewAtRiskMessage(to []mail.Address, atRisk []student.Student, total int) *core.EmailMessage {
	if len(atRisk) == 0 {
		return nil
	}
	return &core.EmailMessage{
		To:           to,
		Subject:      fmt.Sprintf("Attendance alert: %d students below %g%%", len(atRisk), student.AtRiskThreshold),
		TemplateName: atRiskTemplate,
		TemplateData: AtRiskData{
			Students:  atRisk,
			Total:     total,
			Threshold: student.AtRiskThreshold,
		},
	}
}

// ParseRecipients parses a comma separated address list, e.g. "Dean <dean@school.edu>, hod@school.edu".
func ParseRecipients(list string) ([]mail.Address, error) {
	list = strings.TrimSpace(list)
	if list == "" {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "to", Error: "this field is required"})
	}
	addrs, err := mail.ParseAddressList(list)
	if err != nil {
		return nil, core.NewValidationError(errors.Wrap(err, "invalid recipients"))
	}
	res := make([]mail.Address, 0, len(addrs))
	for _, a := range addrs {
		res = append(res, *a)
	}
	return res, nil
}

// NewService picks the console service in debug mode (or without an api key) and SendGrid otherwise.
func NewService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridApiKey == "" {
		return NewConsoleService(conf, nil)
	}
	return NewSendgridService(conf, logger)
}
