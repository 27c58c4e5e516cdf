package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/rosterdash/apps/dashboard"
	"github.com/trezcool/rosterdash/core"
	"github.com/trezcool/rosterdash/core/student"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	readLineFunc     = readLine          // mockable

	stdin = bufio.NewReader(os.Stdin)

	errHelp = errors.New("help provided")
)

type commandLine struct {
	ctx  context.Context
	conf *core.Config
	app  *dashboard.App
	out  io.Writer
}

func newCommandLine(ctx context.Context, conf *core.Config, app *dashboard.App, out io.Writer) *commandLine {
	return &commandLine{ctx: ctx, conf: conf, app: app, out: out}
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  login -username USERNAME                       - login, the password is prompted")
	fmt.Fprintln(cli.out, "  register -username USERNAME                    - create a student account")
	fmt.Fprintln(cli.out, "  logout                                         - forget the session")
	fmt.Fprintln(cli.out, "  whoami                                         - show the current session")
	fmt.Fprintln(cli.out, "  dashboard                                      - show attendance analytics")
	fmt.Fprintln(cli.out, "  students [filters]                             - list students")
	fmt.Fprintln(cli.out, "  show -id ID                                    - show a student and their trend")
	fmt.Fprintln(cli.out, "  add -id ID -name NAME -branch BRANCH -year N -attendance PCT")
	fmt.Fprintln(cli.out, "  update -id ID [-name NAME] [-branch BRANCH] [-year N] [-attendance PCT]")
	fmt.Fprintln(cli.out, "  delete -id ID [-yes]                           - delete a student")
	fmt.Fprintln(cli.out, "  export -o FILE.xlsx [filters]                  - export students and analytics")
	fmt.Fprintln(cli.out, "  import -f FILE.xlsx                            - add the students of a workbook")
	fmt.Fprintln(cli.out, "  chart -kind histogram|branches|trend [-id ID] -o FILE.png")
	fmt.Fprintln(cli.out, "  report -o FILE.md|FILE.html                    - write a summary report")
	fmt.Fprintln(cli.out, "  alerts -to ADDRESS[,ADDRESS]                   - email the at-risk students")
	fmt.Fprintln(cli.out, "  shell                                          - run commands interactively")
	fmt.Fprintln(cli.out, "Filters: -search TEXT -branch BRANCH -year N -min PCT -max PCT -quick ALL|AT_RISK|TOPPER")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	defer cli.flushNotifications()

	cmd, rest := args[1], args[2:]
	switch cmd {
	case "login":
		return cli.login(rest)
	case "register":
		return cli.register(rest)
	case "logout":
		return cli.app.Logout()
	case "whoami":
		return cli.whoami()
	case "dashboard":
		return cli.dashboard()
	case "students":
		return cli.students(rest)
	case "show":
		return cli.show(rest)
	case "add":
		return cli.add(rest)
	case "update":
		return cli.update(rest)
	case "delete":
		return cli.delete(rest)
	case "export":
		return cli.export(rest)
	case "import":
		return cli.importWorkbook(rest)
	case "chart":
		return cli.chart(rest)
	case "report":
		return cli.report(rest)
	case "alerts":
		return cli.alerts(rest)
	case "shell":
		return cli.shell(args[0])
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) flushNotifications() {
	_ = dashboard.RenderNotifications(cli.out, cli.app.Notifications())
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return errHelp
		}
		return err
	}
	return nil
}

func (cli *commandLine) readPassword(prompt string) (string, error) {
	fmt.Fprint(cli.out, prompt)
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	return string(pwd), err
}

// readLine prompts on stdout and reads one trimmed line from stdin.
func readLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := stdin.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	return strings.TrimSpace(line), err
}

// filterFlags are the roster filter options shared by students and export.
type filterFlags struct {
	search *string
	branch *string
	year   *int
	low    *float64
	high   *float64
	quick  *string
}

func addFilterFlags(fs *flag.FlagSet) filterFlags {
	return filterFlags{
		search: fs.String("search", "", "Match the id or name (case-insensitive)."),
		branch: fs.String("branch", student.AllBranches, "Only this branch."),
		year:   fs.Int("year", student.AllYears, "Only this year (1-4), 0 for all."),
		low:    fs.Float64("min", student.MinAttendance, "Minimum attendance percentage."),
		high:   fs.Float64("max", student.MaxAttendance, "Maximum attendance percentage."),
		quick:  fs.String("quick", string(student.QuickAll), "ALL, AT_RISK or TOPPER."),
	}
}

func (ff filterFlags) filter() (student.Filter, error) {
	quick, err := student.ParseQuick(*ff.quick)
	if err != nil {
		return student.Filter{}, core.NewValidationError(nil, core.FieldError{Field: "quick", Error: err.Error()})
	}
	return student.Filter{
		Search: *ff.search,
		Branch: strings.TrimSpace(*ff.branch),
		Year:   *ff.year,
		Low:    *ff.low,
		High:   *ff.high,
		Quick:  quick,
	}, nil
}

// studentFlags are the fields of the add and update commands.
type studentFlags struct {
	id         *int64
	name       *string
	branch     *string
	year       *int
	attendance *float64
}

func addStudentFlags(fs *flag.FlagSet) studentFlags {
	return studentFlags{
		id:         fs.Int64("id", 0, "The student id."),
		name:       fs.String("name", "", "The student name."),
		branch:     fs.String("branch", "", "The branch, e.g. CS."),
		year:       fs.Int("year", 0, "The year of study (1-4)."),
		attendance: fs.Float64("attendance", 0, "The attendance percentage (0-100)."),
	}
}

// apply copies the flags given on the command line onto form.
func (sf studentFlags) apply(fs *flag.FlagSet, form *student.Form) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "id":
			form.ID = *sf.id
		case "name":
			form.Name = *sf.name
		case "branch":
			form.Branch = *sf.branch
		case "year":
			form.StudentYear = *sf.year
		case "attendance":
			form.AttendancePercentage = *sf.attendance
		}
	})
}

// writeFile renders into memory first so a failed render leaves no partial file behind.
func writeFile(path string, render func(w io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
