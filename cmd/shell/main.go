// Interactive console for the railway reservation service
package main

import (
	"context"
	"os"

	"github.com/ds124wfegd/railway-reservation/config"
	"github.com/ds124wfegd/railway-reservation/internal/appServer"
	"github.com/ds124wfegd/railway-reservation/internal/console"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stderr)

	viperInstance, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Cannot load config. Error: {%s}", err.Error())
	}
	cfg, err := config.ParseConfig(viperInstance)
	if err != nil {
		log.Fatalf("Cannot parse config. Error: {%s}", err.Error())
	}

	// Service logs would interleave with the menu, keep only warnings and errors.
	cfg.Log.Format = "text"
	if cfg.Log.Level == "" || cfg.Log.Level == "info" || cfg.Log.Level == "debug" {
		cfg.Log.Level = "warn"
	}
	if err := appServer.ConfigureLogger(log, &cfg.Log); err != nil {
		log.Fatalf("Invalid log configuration: %v", err)
	}
	log.SetOutput(os.Stderr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := appServer.NewApplication(ctx, cfg, log)
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}
	defer app.Close()

	go app.AuditWorker.Start(ctx)

	if err := console.New(app.Trains, app.Reservations, os.Stdin, os.Stdout, log).Run(ctx); err != nil {
		log.Errorf("Console stopped: %v", err)
	}
}
