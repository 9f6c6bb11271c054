/* Copyright 2025 Doto Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/getdoto/doto/pkg/clock"
	"github.com/getdoto/doto/pkg/server/app"
	"github.com/getdoto/doto/pkg/server/buildinfo"
	"github.com/getdoto/doto/pkg/server/config"
	"github.com/getdoto/doto/pkg/server/controllers"
	"github.com/getdoto/doto/pkg/server/database"
	"github.com/getdoto/doto/pkg/server/log"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/robfig/cron"
	"gorm.io/gorm"
)

func initDB(cfg config.Config) *gorm.DB {
	var db *gorm.DB
	if cfg.PostgresURL != "" {
		db = database.OpenPostgres(cfg.PostgresURL)
	} else {
		db = database.Open(cfg.DBPath)
	}

	database.InitSchema(db)

	return db
}

func initApp(cfg config.Config) app.App {
	db := initDB(cfg)

	return app.App{
		DB:                  db,
		Clock:               clock.New(),
		DisableRegistration: cfg.DisableRegistration,
		Port:                cfg.Port,
		DBPath:              cfg.DBPath,
	}
}

func startSessionCleanup(a *app.App) *cron.Cron {
	c := cron.New()
	c.AddFunc("@hourly", func() {
		if err := a.DeleteExpiredSessions(); err != nil {
			log.ErrorWrap(err, "deleting expired sessions")
		}
	})
	c.Start()

	return c
}

func startCmd(args []string) {
	startFlags := flag.NewFlagSet("start", flag.ExitOnError)
	startFlags.Usage = func() {
		fmt.Printf(`Usage:
  doto-server start [flags]

Flags:
`)
		startFlags.PrintDefaults()
	}

	appEnv := startFlags.String("appEnv", "", "Application environment (env: APP_ENV, default: PRODUCTION)")
	port := startFlags.String("port", "", "Server port (env: PORT, default: 3001)")
	dbPath := startFlags.String("dbPath", "", "Path to SQLite database file (env: DBPath, default: $XDG_DATA_HOME/doto/server.db)")
	postgresURL := startFlags.String("postgresUrl", "", "Postgres connection URL. Overrides dbPath (env: PostgresURL)")
	disableRegistration := startFlags.Bool("disableRegistration", false, "Disable user registration (env: DisableRegistration, default: false)")
	logLevel := startFlags.String("logLevel", "", "Log level: debug, info, warn, or error (env: LOG_LEVEL, default: info)")

	startFlags.Parse(args)

	cfg, err := config.New(config.Params{
		AppEnv:              *appEnv,
		Port:                *port,
		DBPath:              *dbPath,
		PostgresURL:         *postgresURL,
		DisableRegistration: *disableRegistration,
		LogLevel:            *logLevel,
	})
	if err != nil {
		fmt.Printf("Error: %s\n\n", err)
		startFlags.Usage()
		os.Exit(1)
	}

	log.SetLevel(cfg.LogLevel)

	app := initApp(cfg)
	defer func() {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}()

	cleanup := startSessionCleanup(&app)
	defer cleanup.Stop()

	ctl := controllers.New(&app)
	rc := controllers.RouteConfig{
		APIRoutes:   controllers.NewAPIRoutes(&app, ctl),
		Controllers: ctl,
	}

	r, err := controllers.NewRouter(&app, rc)
	if err != nil {
		panic(errors.Wrap(err, "initializing router"))
	}

	log.WithFields(log.Fields{
		"version": buildinfo.Version,
		"port":    cfg.Port,
	}).Info("Doto server starting")

	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.ErrorWrap(err, "server failed")
		os.Exit(1)
	}
}

func versionCmd() {
	fmt.Printf("doto-server-%s\n", buildinfo.Version)
}

func rootCmd() {
	fmt.Printf(`Doto server - a simple command line to-do list

Usage:
  doto-server [command] [flags]

Available commands:
  start: Start the server (use 'doto-server start --help' for flags)
  version: Print the version
`)
}

func main() {
	godotenv.Load()

	if len(os.Args) < 2 {
		rootCmd()
		return
	}

	cmd := os.Args[1]

	switch cmd {
	case "start":
		startCmd(os.Args[2:])
	case "version":
		versionCmd()
	default:
		fmt.Printf("Unknown command %s\n", cmd)
		rootCmd()
		os.Exit(1)
	}
}
