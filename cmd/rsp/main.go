package main

import (
	"fmt"
	"os"

	"ResourceShare/internal/bootstrap"
	"ResourceShare/internal/config"
	pkg "ResourceShare/pkg/routes"

	"go.uber.org/fx"
)

func main() {
	if err := bootstrap.Loadenv(); err != nil {
		fmt.Fprintln(os.Stderr, "failed to load .env:", err)
		os.Exit(1)
	}
	app := fx.New(
		pkg.EchoModules,
		fx.WithLogger(config.FxLogger),
	)

	app.Run()
}
