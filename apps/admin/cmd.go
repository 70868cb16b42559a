package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/taskbell/apps/shared"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db   *sqlx.DB
	svcs *shared.Services
	out  io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose migration command (up, down, status, ...)")
	fmt.Fprintln(cli.out, "  send -account ID -message TEXT [-channel NAME] - send a notification to an account")
	fmt.Fprintln(cli.out, "  remind [-channel NAME] - dispatch every due assignment reminder")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	sendCmd := flag.NewFlagSet("send", flag.ContinueOnError)
	sendCmd.SetOutput(cli.out)
	sendAccount := sendCmd.String("account", "", "The recipient account id.")
	sendMessage := sendCmd.String("message", "", "The message to deliver.")
	sendChannel := sendCmd.String("channel", "", "The channel to deliver through. Defaults to the first registered one.")

	remindCmd := flag.NewFlagSet("remind", flag.ContinueOnError)
	remindCmd.SetOutput(cli.out)
	remindChannel := remindCmd.String("channel", "", "The channel to deliver through. Defaults to the first registered one.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "send":
		if err := sendCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *sendAccount == "" || *sendMessage == "" {
			sendCmd.Usage()
			return errHelp
		}
		return cli.send(*sendAccount, *sendMessage, *sendChannel)
	case "remind":
		if err := remindCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.remind(*remindChannel)
	default:
		cli.printUsage()
		return errHelp
	}
}
