package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

const shellPrompt = "rosterdash> "

// shell runs commands read line by line against the same dashboard until exit or EOF.
func (cli *commandLine) shell(prog string) error {
	fmt.Fprintln(cli.out, `Type "help" for the commands, "exit" to quit.`)
	for {
		line, err := readLineFunc(shellPrompt)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		fields, err := splitArgs(line)
		if err != nil {
			fmt.Fprintf(cli.out, "error: %s\n", err)
			continue
		}
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "exit", "quit":
			return nil
		case "help":
			cli.printUsage()
			continue
		case "shell":
			continue
		}

		if err = cli.run(append([]string{prog}, fields...)); err != nil && err != errHelp {
			fmt.Fprintf(cli.out, "error: %s\n", err)
		}
	}
}

// splitArgs splits a shell line on spaces, keeping double quoted words together.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		quoted  bool
		started bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			started = true
		case (r == ' ' || r == '\t') && !quoted:
			if started {
				args = append(args, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if quoted {
		return nil, errors.New("unterminated quote")
	}
	if started {
		args = append(args, cur.String())
	}
	return args, nil
}
