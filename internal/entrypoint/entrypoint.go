package entrypoint

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"tildabook/internal/app"
	"tildabook/internal/cli"
	"tildabook/internal/config"
)

const defaultConfigName = "tildabook.yaml"

func Execute(args []string) (int, error) {
	opts, initConfig, err := cli.ParseArgs(args[1:])
	if err != nil {
		var exitErr cli.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code, exitErr.Err
		}
		return 1, err
	}

	if initConfig {
		if err := config.WriteDefault(defaultConfigName); err != nil {
			return 1, err
		}
		return 0, nil
	}

	// An interrupt cancels the traversal; the browser session is released
	// before the process exits.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, opts); err != nil {
		return 1, err
	}
	return 0, nil
}
