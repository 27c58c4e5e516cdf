package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/trezcool/rosterdash/apps/cli/di"
	"github.com/trezcool/rosterdash/apps/dashboard"
	"github.com/trezcool/rosterdash/core"
	logsvc "github.com/trezcool/rosterdash/services/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	code := 0
	err := di.New().Invoke(func(conf *core.Config, logger *logsvc.RollbarLogger, app *dashboard.App) {
		defer logger.Close()
		cli := newCommandLine(ctx, conf, app, os.Stdout)
		if err := cli.run(os.Args); err != nil {
			if err != errHelp {
				fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
			}
			code = 1
		}
	})
	stop()
	if err != nil {
		log.Println(err)
		code = 1
	}
	os.Exit(code)
}
