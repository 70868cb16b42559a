// Command bot runs the Telegram long-poll loop answering `/start <code>` link requests.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/trezcool/taskbell/apps/shared"
	"github.com/trezcool/taskbell/core"
)

func main() {
	conf := core.NewConfig()
	logger := shared.NewLogger(conf, "bot")

	db, err := shared.SetUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() { _ = db.Close() }()

	svcs := shared.NewServices(conf, db, shared.NewRegistry(conf), logger)

	b, err := newBot(conf.Telegram, svcs.LinkSvc, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("starting bot: %v", err), err)
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go b.Start()
	logger.Info(fmt.Sprintf("Bot started : version %q", conf.Build))

	sig := <-shutdown
	logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))
	b.Stop()
	logger.Info("Bot stopped")
}
