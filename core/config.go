package core

import (
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config holds the client settings resolved from defaults, the environment and an optional dotenv file.
type Config struct {
	Env              string
	Debug            bool
	TestMode         bool
	AppName          string
	Build            string
	APIBaseURL       string
	RequestTimeout   time.Duration
	SessionFile      string
	RollbarToken     string
	SendgridApiKey   string
	DefaultFromEmail mail.Address
}

// NewConfig loads the configuration. Environment variables are prefixed with the value of ENV
// (DEV by default), e.g. DEV_APIBASEURL=http://school.local:8080.
func NewConfig() (*Config, error) {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "Roster Dashboard")
	v.SetDefault("build", "develop")
	v.SetDefault("apiBaseURL", "http://localhost:8080")
	v.SetDefault("requestTimeout", 10*time.Second)
	v.SetDefault("sessionFile", defaultSessionFile())
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("defaultFromName", "Roster Dashboard")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:            env,
		Debug:          v.GetBool("debug"),
		TestMode:       v.GetBool("testMode"),
		AppName:        v.GetString("appName"),
		Build:          v.GetString("build"),
		APIBaseURL:     strings.TrimRight(v.GetString("apiBaseURL"), "/"),
		RequestTimeout: v.GetDuration("requestTimeout"),
		SessionFile:    v.GetString("sessionFile"),
		RollbarToken:   v.GetString("rollbarToken"),
		SendgridApiKey: v.GetString("sendgridApiKey"),
		DefaultFromEmail: mail.Address{
			Name:    v.GetString("defaultFromName"),
			Address: v.GetString("defaultFromEmail"),
		},
	}
	if conf.RequestTimeout <= 0 {
		conf.RequestTimeout = 10 * time.Second
	}
	return conf, nil
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "rosterdash", "session.json")
}
