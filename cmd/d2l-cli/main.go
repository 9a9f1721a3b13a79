package main

import (
	"context"
	"log/slog"
	"os"

	"brightspace-helper/cmd/d2l-cli/commands"
	"brightspace-helper/lib/telemetry"
	"brightspace-helper/lib/util/serviceutil"
)

func main() {
	ctx := serviceutil.SignalContext()

	tel, err := telemetry.SetupFromEnv(ctx, "d2l-cli")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}

	err = commands.ExecuteContext(ctx)

	shutdownErr := tel.Shutdown(context.Background())
	if shutdownErr != nil {
		slog.Warn("failed to shutdown telemetry", "err", shutdownErr)
	}
	if err != nil {
		os.Exit(1)
	}
}
