// cmd/groundcontrol/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/groundctl/groundcontrol/internal/config"
	"github.com/groundctl/groundcontrol/internal/display"
	"github.com/groundctl/groundcontrol/internal/feed"
	"github.com/groundctl/groundcontrol/internal/logging"
	"github.com/groundctl/groundcontrol/internal/loop"
	"github.com/groundctl/groundcontrol/internal/stats"
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: groundcontrol <config.yaml>")
		return 1
	}

	// Optional .env for feed credentials; absence is not an error.
	_ = godotenv.Load()

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		return 1
	}

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "config validation failed: %v\n", err)
		return 1
	}

	config.Normalize(cfg)

	d := cfg.GroundControl
	log := logging.New(d.Log.Level)

	// --------------------
	// Build the pipeline: feed -> reconcile -> display
	// --------------------

	client := feed.NewHTTPClient(d.Feed)

	backend, err := display.Build(d.Display, logging.Component(log, "display"))
	if err != nil {
		// Hardware init failure is fatal before the loop ever starts.
		log.WithError(err).Error("hardware init failed")
		return 1
	}

	driver := display.New(backend, logging.Component(log, "display"))
	defer func() {
		if err := driver.Close(); err != nil {
			log.WithError(err).Warn("display close failed")
		}
	}()

	tracker := stats.New(time.Now())

	ctl, err := loop.New(
		loop.Config{
			Interval: time.Duration(d.Poll.IntervalMs) * time.Millisecond,
			Slots:    d.Display.Slots,
		},
		client,
		driver,
		tracker,
		logging.Component(log, "loop"),
	)
	if err != nil {
		log.WithError(err).Error("loop init failed")
		return 1
	}

	// --------------------
	// Run until SIGINT/SIGTERM
	// --------------------

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.WithFields(logrus.Fields{
		"endpoint": d.Feed.Endpoint,
		"backend":  d.Display.Backend,
		"slots":    d.Display.Slots,
		"interval": d.Poll.IntervalMs,
	}).Info("ground control starting")

	if err := ctl.Run(ctx); err != nil {
		log.WithError(err).Error("control loop failed")
		return 1
	}

	log.WithFields(logrus.Fields{
		"daily_unique":  tracker.Daily.Unique,
		"best_day":      tracker.AllTime.BestDayDate,
		"best_day_seen": tracker.AllTime.BestDayUnique,
	}).Info("ground control stopped")
	return 0
}
