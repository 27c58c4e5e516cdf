package main

import (
	"fmt"
	"strings"

	"github.com/trezcool/rosterdash/apps/dashboard"
	"github.com/trezcool/rosterdash/core/student"
)

func (cli *commandLine) dashboard() error {
	if err := cli.app.Refresh(cli.ctx); err != nil {
		return err
	}
	if err := cli.app.Navigate(dashboard.PageDashboard); err != nil {
		return err
	}
	return cli.app.Render(cli.out)
}

func (cli *commandLine) students(args []string) error {
	cmd := cli.newFlagSet("students")
	filters := addFilterFlags(cmd)
	if err := parse(cmd, args); err != nil {
		return err
	}
	f, err := filters.filter()
	if err != nil {
		return err
	}

	if err = cli.app.Refresh(cli.ctx); err != nil {
		return err
	}
	cli.app.SetFilter(f)
	if err = cli.app.Navigate(dashboard.PageStudents); err != nil {
		return err
	}
	return cli.app.Render(cli.out)
}

func (cli *commandLine) show(args []string) error {
	cmd := cli.newFlagSet("show")
	id := cmd.Int64("id", 0, "The student id.")
	if err := parse(cmd, args); err != nil {
		return err
	}
	if *id == 0 {
		cmd.Usage()
		return errHelp
	}

	if err := cli.app.Refresh(cli.ctx); err != nil {
		return err
	}
	if err := cli.app.OpenStudent(*id); err != nil {
		return err
	}
	defer cli.app.CloseStudent()
	return cli.app.Render(cli.out)
}

func (cli *commandLine) add(args []string) error {
	cmd := cli.newFlagSet("add")
	fields := addStudentFlags(cmd)
	if err := parse(cmd, args); err != nil {
		return err
	}
	if cmd.NFlag() == 0 {
		cmd.Usage()
		return errHelp
	}

	var form student.Form
	fields.apply(cmd, &form)
	cli.app.CancelEdit()
	return cli.app.SaveStudent(cli.ctx, form)
}

func (cli *commandLine) update(args []string) error {
	cmd := cli.newFlagSet("update")
	fields := addStudentFlags(cmd)
	if err := parse(cmd, args); err != nil {
		return err
	}
	if *fields.id == 0 {
		cmd.Usage()
		return errHelp
	}

	if err := cli.app.Refresh(cli.ctx); err != nil {
		return err
	}
	if err := cli.app.EditStudent(*fields.id); err != nil {
		return err
	}
	form := cli.app.Form()
	fields.apply(cmd, &form)
	return cli.app.SaveStudent(cli.ctx, form)
}

func (cli *commandLine) delete(args []string) error {
	cmd := cli.newFlagSet("delete")
	id := cmd.Int64("id", 0, "The student id.")
	yes := cmd.Bool("yes", false, "Do not ask for confirmation.")
	if err := parse(cmd, args); err != nil {
		return err
	}
	if *id == 0 {
		cmd.Usage()
		return errHelp
	}

	if err := cli.app.Refresh(cli.ctx); err != nil {
		return err
	}
	if err := cli.app.RequestDelete(*id); err != nil {
		return err
	}
	if !*yes {
		s, _ := cli.app.PendingDelete()
		answer, err := readLineFunc(fmt.Sprintf("Delete %s (#%d)? [y/N] ", s.Name, s.ID))
		if err != nil {
			cli.app.CancelDelete()
			return err
		}
		if a := strings.ToLower(answer); a != "y" && a != "yes" {
			cli.app.CancelDelete()
			fmt.Fprintln(cli.out, "Cancelled.")
			return nil
		}
	}
	return cli.app.ConfirmDelete(cli.ctx)
}
