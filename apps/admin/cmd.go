package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
	"github.com/ChukwumaKingsley/smart-school-forked/core/assessment"
	"github.com/ChukwumaKingsley/smart-school-forked/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db         *sqlx.DB
	usrSvc     user.ServiceInterface
	asmSvc     *assessment.Service
	logger     core.Logger
	validate   *validator.Validate
	translator ut.Translator
	out        io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  createinstructor -name NAME -email EMAIL -department DEPT -faculty FACULTY [-title TITLE] - create an instructor")
	fmt.Fprintln(cli.out, "  resetpassword -email EMAIL - reset user's password")
	fmt.Fprintln(cli.out, "  endassessments - complete the assessments whose end date has passed")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose command: up, down, status, redo, version...")
}

func (cli *commandLine) run(args []string) error {
	if cli.out == nil {
		cli.out = os.Stdout
	}
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	createInstructorCmd := flag.NewFlagSet("createinstructor", flag.ContinueOnError)
	createInstructorCmd.SetOutput(cli.out)
	title := createInstructorCmd.String("title", "", "The instructor's title (Dr., Prof., ...)")
	name := createInstructorCmd.String("name", "", "The instructor's full name")
	email := createInstructorCmd.String("email", "", "The instructor's email. The password will be prompted next.")
	department := createInstructorCmd.String("department", "", "The instructor's department")
	faculty := createInstructorCmd.String("faculty", "", "The instructor's faculty")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordCmd.SetOutput(cli.out)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The user's email. The password will be prompted next.")

	switch args[1] {
	case "createinstructor":
		if err := createInstructorCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *name == "" || *email == "" || *department == "" || *faculty == "" {
			createInstructorCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			createInstructorCmd.Usage()
			return errHelp
		}
		return cli.createInstructor(ctx, user.NewUser{
			Title:      *title,
			Name:       *name,
			Email:      *email,
			Department: *department,
			Faculty:    *faculty,
			Password:   pwd,
		})
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(ctx, *resetPasswordEmail, pwd)
	case "endassessments":
		return cli.endAssessments(ctx)
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}
