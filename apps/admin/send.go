package main

import (
	"context"
	"fmt"

	"github.com/trezcool/taskbell/core"
)

// send delivers message to one account and reports whether it went through.
func (cli *commandLine) send(accountID, message, channel string) error {
	ok, err := cli.svcs.NotificationSvc.DispatchToAccount(
		context.Background(), core.CleanString(accountID), message, core.OptionalString(channel), nil,
	)
	if err != nil {
		return err
	}
	if ok {
		fmt.Fprintln(cli.out, "sent")
	} else {
		fmt.Fprintln(cli.out, "not delivered (see delivery records)")
	}
	return nil
}
