package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/rosterdash/core/student"
	emailsvc "github.com/trezcool/rosterdash/services/email"
	exportsvc "github.com/trezcool/rosterdash/services/export"
)

func (cli *commandLine) export(args []string) error {
	cmd := cli.newFlagSet("export")
	output := cmd.String("o", "", "The xlsx file to write.")
	filters := addFilterFlags(cmd)
	if err := parse(cmd, args); err != nil {
		return err
	}
	if *output == "" {
		cmd.Usage()
		return errHelp
	}
	f, err := filters.filter()
	if err != nil {
		return err
	}

	if err = cli.app.Refresh(cli.ctx); err != nil {
		return err
	}
	cli.app.SetFilter(f)
	analytics := cli.app.Analytics()
	total := len(cli.app.Students())
	err = writeFile(*output, func(w io.Writer) error {
		return exportsvc.WriteWorkbook(w, analytics, total)
	})
	if err != nil {
		return errors.Wrapf(err, "exporting to %s", *output)
	}
	fmt.Fprintf(cli.out, "Exported %d of %d students to %s\n", len(analytics.Filtered), total, *output)
	return nil
}

// importWorkbook adds every student of the first sheet, stopping at the first failure.
func (cli *commandLine) importWorkbook(args []string) error {
	cmd := cli.newFlagSet("import")
	input := cmd.String("f", "", "The xlsx file to read.")
	if err := parse(cmd, args); err != nil {
		return err
	}
	if *input == "" {
		cmd.Usage()
		return errHelp
	}

	file, err := os.Open(*input)
	if err != nil {
		return err
	}
	defer file.Close()
	forms, err := exportsvc.ReadWorkbook(file)
	if err != nil {
		return errors.Wrapf(err, "reading %s", *input)
	}

	cli.app.CancelEdit()
	for i, form := range forms {
		if err = cli.app.SaveStudent(cli.ctx, form); err != nil {
			fmt.Fprintf(cli.out, "Imported %d of %d students\n", i, len(forms))
			return errors.Wrapf(err, "importing student %d", form.ID)
		}
	}
	fmt.Fprintf(cli.out, "Imported %d students\n", len(forms))
	return nil
}

func (cli *commandLine) chart(args []string) error {
	cmd := cli.newFlagSet("chart")
	kindName := cmd.String("kind", string(exportsvc.ChartHistogram), "histogram, branches or trend.")
	id := cmd.Int64("id", 0, "The student id, for the trend chart.")
	output := cmd.String("o", "", "The png file to write.")
	if err := parse(cmd, args); err != nil {
		return err
	}
	kind, err := exportsvc.ParseChartKind(*kindName)
	if err != nil {
		return err
	}
	if *output == "" || (kind == exportsvc.ChartTrend && *id == 0) {
		cmd.Usage()
		return errHelp
	}

	if err = cli.app.Refresh(cli.ctx); err != nil {
		return err
	}

	var render func(w io.Writer) error
	switch kind {
	case exportsvc.ChartHistogram:
		buckets := cli.app.Analytics().Histogram
		render = func(w io.Writer) error { return exportsvc.RenderHistogram(w, buckets) }
	case exportsvc.ChartBranches:
		rows := cli.app.Analytics().BranchAverages
		render = func(w io.Writer) error { return exportsvc.RenderBranchAverages(w, rows) }
	case exportsvc.ChartTrend:
		if err = cli.app.OpenStudent(*id); err != nil {
			return err
		}
		s, _ := cli.app.Drawer()
		cli.app.CloseStudent()
		render = func(w io.Writer) error { return exportsvc.RenderTrend(w, s) }
	}

	if err = writeFile(*output, render); err != nil {
		return errors.Wrapf(err, "writing %s chart", kind)
	}
	fmt.Fprintf(cli.out, "Wrote %s\n", *output)
	return nil
}

func (cli *commandLine) report(args []string) error {
	cmd := cli.newFlagSet("report")
	output := cmd.String("o", "", "The file to write, .html for HTML, Markdown otherwise.")
	if err := parse(cmd, args); err != nil {
		return err
	}
	if *output == "" {
		cmd.Usage()
		return errHelp
	}

	if err := cli.app.Refresh(cli.ctx); err != nil {
		return err
	}
	rep := exportsvc.NewReport(cli.conf.AppName+" report", cli.app.Session().Username, cli.app.Students(), cli.app.Average())

	write := exportsvc.WriteMarkdown
	switch strings.ToLower(filepath.Ext(*output)) {
	case ".html", ".htm":
		write = exportsvc.WriteHTML
	}
	if err := writeFile(*output, func(w io.Writer) error { return write(w, rep) }); err != nil {
		return errors.Wrap(err, "writing report")
	}
	fmt.Fprintf(cli.out, "Wrote %s\n", *output)
	return nil
}

func (cli *commandLine) alerts(args []string) error {
	cmd := cli.newFlagSet("alerts")
	to := cmd.String("to", "", "Comma separated recipients, e.g. \"Dean <dean@school.edu>\".")
	if err := parse(cmd, args); err != nil {
		return err
	}
	if *to == "" {
		cmd.Usage()
		return errHelp
	}
	recipients, err := emailsvc.ParseRecipients(*to)
	if err != nil {
		return err
	}

	if err = cli.app.Refresh(cli.ctx); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%d of %d students below %g%%\n",
		len(student.LowAttendance(cli.app.Students())), len(cli.app.Students()), student.AtRiskThreshold)
	return cli.app.SendAtRiskAlert(recipients)
}
