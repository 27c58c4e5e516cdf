package main

import (
	"fmt"
	"time"

	"github.com/trezcool/rosterdash/core/session"
)

func (cli *commandLine) login(args []string) error {
	cmd := cli.newFlagSet("login")
	username := cmd.String("username", "", "Your username. The password will be prompted next.")
	if err := parse(cmd, args); err != nil {
		return err
	}
	if *username == "" {
		cmd.Usage()
		return errHelp
	}

	pwd, err := cli.readPassword("Enter password:")
	if err != nil {
		return err
	}
	if pwd == "" {
		cmd.Usage()
		return errHelp
	}
	return cli.app.Login(cli.ctx, session.Credentials{Username: *username, Password: pwd})
}

func (cli *commandLine) register(args []string) error {
	cmd := cli.newFlagSet("register")
	username := cmd.String("username", "", "The new username. The password will be prompted next.")
	if err := parse(cmd, args); err != nil {
		return err
	}
	if *username == "" {
		cmd.Usage()
		return errHelp
	}

	pwd, err := cli.readPassword("Enter password:")
	if err != nil {
		return err
	}
	confirm, err := cli.readPassword("Confirm password:")
	if err != nil {
		return err
	}

	cli.app.GoToRegister()
	return cli.app.Register(cli.ctx, session.Registration{
		Username:        *username,
		Password:        pwd,
		PasswordConfirm: confirm,
	})
}

func (cli *commandLine) whoami() error {
	sess := cli.app.Session()
	if sess.IsZero() {
		fmt.Fprintln(cli.out, "Not logged in.")
		return session.ErrNoSession
	}

	fmt.Fprintf(cli.out, "%s (%s)\n", sess.Username, sess.Role)
	if exp := sess.ExpiresAt(); !exp.IsZero() {
		state := "expires"
		if exp.Before(time.Now()) {
			state = "expired"
		}
		fmt.Fprintf(cli.out, "Token %s %s\n", state, exp.Local().Format(time.RFC1123))
	}
	fmt.Fprintf(cli.out, "API %s\n", cli.conf.APIBaseURL)
	return nil
}
