package session

import (
	"fmt"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/rosterdash/core"
)

var (
	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to the username"

	pwdMinLen = 6
	pwdMaxLen = 100
)

// Credentials is the login form.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (c *Credentials) Validate(validate *validator.Validate) error {
	c.Username = core.CleanString(c.Username)
	return validate.Struct(c)
}

// Registration is the sign-up form. New accounts are always students.
// The password similarity check is a client side policy, the API only checks lengths.
type Registration struct {
	Username        string `json:"username" validate:"required,min=3,max=50"`
	Password        string `json:"password" validate:"required,min=6,max=100"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (r *Registration) Validate(validate *validator.Validate) error {
	r.Username = core.CleanString(r.Username)
	return validate.Struct(r)
}

// Credentials drops the confirmation, as sent to the API.
func (r Registration) Credentials() Credentials {
	return Credentials{Username: r.Username, Password: r.Password}
}

// InitValidators registers the session form validations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(registrationStructValidation, Registration{})
	core.RegisterCustomTranslation(validate, translator, pwdAttrSimTag, pwdAttrSimText)
}

// registrationStructValidation rejects passwords that mostly repeat the username.
func registrationStructValidation(sl validator.StructLevel) {
	reg, ok := sl.Current().Interface().(Registration)
	if !ok {
		return
	}
	if len(reg.Password) < pwdMinLen || len(reg.Password) > pwdMaxLen || reg.Username == "" {
		return // reported by field validations
	}
	if similarity(reg.Password, reg.Username) >= pwdMaxSim {
		sl.ReportError(reg.Password, "password", "Password", pwdAttrSimTag, "")
	}
}

func similarity(pwd, attr string) float64 {
	pwd, attr = strings.ToLower(pwd), strings.ToLower(attr)
	return difflib.NewMatcher(strings.Split(pwd, ""), strings.Split(attr, "")).QuickRatio()
}

// String hides the password.
func (c Credentials) String() string {
	return fmt.Sprintf("{username:%s password:***}", c.Username)
}
