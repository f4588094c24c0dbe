package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/teranos/i18n-sheets/cmd/i18n-sheets/commands"
	"github.com/teranos/i18n-sheets/logger"
)

func main() {
	rootCmd := commands.NewRootCmd()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logger.Cleanup()

	if err != nil {
		jsonOutput, _ := rootCmd.PersistentFlags().GetBool(commands.FlagJSON)
		commands.ReportError(os.Stderr, err, jsonOutput)
		os.Exit(1)
	}
}
