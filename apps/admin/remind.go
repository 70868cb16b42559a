package main

import (
	"context"
	"fmt"

	"github.com/trezcool/taskbell/core"
)

func (cli *commandLine) remind(channel string) error {
	summary, err := cli.svcs.ReminderSvc.DispatchDue(context.Background(), core.OptionalString(channel))
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "reminders: %d, sent: %d, failed: %d\n", summary.Reminders, summary.Sent, summary.Failed)
	return nil
}
