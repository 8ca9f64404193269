package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kridmal/nerd-stationery-sub000/config"
	"github.com/kridmal/nerd-stationery-sub000/internal/app"
	"github.com/kridmal/nerd-stationery-sub000/internal/webapi"
	"github.com/kridmal/nerd-stationery-sub000/internal/webserver"
	"go.uber.org/zap"
)

var (
	conffile = flag.String("c", "/etc/nerdstationery.yml", "config file path")
	initdb   = flag.Bool("initdb", false, "drop and recreate all tables, then exit")
	showver  = flag.Bool("v", false, "print version and exit")
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	flag.Parse()

	if *showver {
		fmt.Printf("nerdstationery %s (built %s)\n", version, buildTime)
		return
	}

	cfg := config.LoadConfig(*conffile)
	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initdb {
		application.InitDb()
		zap.S().Info("database initialized")
		return
	}

	webserver.Init(cfg)
	webapi.InitRouter(webapi.Deps{
		DB:     application.DB(),
		Ledger: application.Ledger(),
		Placer: application.OrderPlacer(),
		Alerts: application.AlertRunner(),
	})

	go func() {
		if err := webserver.Listen(); err != nil {
			zap.S().Fatalf("web server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	zap.S().Info("shutting down")
}
