// Command simcore-bench is a minimal load/step/report harness: it loads
// a previously persist.Saved model, steps its clock a fixed number of
// ticks, and prints every story event the run produced. Each run is
// tagged with a random
// github.com/google/uuid so repeated benchmark runs against the same
// save file can be told apart in aggregated logs.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/google/uuid"

	"github.com/orbitalcombat/simcore/internal/ephemeris"
	"github.com/orbitalcombat/simcore/persist"
)

func main() {
	var (
		savePath string
		ticks    int
		dt       float64
	)
	flag.StringVar(&savePath, "save", "", "path to a persist.Save JSON document")
	flag.IntVar(&ticks, "ticks", 100, "number of Update(dt) ticks to run")
	flag.Float64Var(&dt, "dt", 1, "seconds of simulated time per tick")
	flag.Parse()

	if savePath == "" {
		fmt.Fprintln(os.Stderr, "simcore-bench: -save is required")
		os.Exit(2)
	}

	logger := kitlog.NewLogfmtLogger(os.Stderr)
	logger = kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC, "run", uuid.NewString())

	if err := run(logger, savePath, ticks, dt); err != nil {
		logger.Log("level", "critical", "subsys", "bench", "err", err)
		os.Exit(1)
	}
}

func run(logger kitlog.Logger, savePath string, ticks int, dt float64) error {
	data, err := os.ReadFile(savePath)
	if err != nil {
		return fmt.Errorf("reading save file: %w", err)
	}

	m, err := persist.Load(string(data), logger)
	if err != nil {
		return fmt.Errorf("loading model: %w", err)
	}
	logger.Log("level", "info", "subsys", "bench", "msg", "model loaded",
		"orbitables", len(m.Orbitables()), "vessels", len(m.Vessels()))

	started := ephemeris.NewEpoch(time.Now().UTC())

	var events int
	for i := 0; i < ticks; i++ {
		for _, e := range m.Update(dt) {
			events++
			logger.Log("level", "info", "subsys", "bench", "msg", "story event",
				"tick", i, "kind", e.Kind, "entity", e.Entity)
		}
	}

	wallDays := ephemeris.NewEpoch(time.Now().UTC()).JulianDay() - started.JulianDay()
	logger.Log("level", "notice", "subsys", "bench", "msg", "bench complete",
		"ticks", ticks,
		"simSeconds", float64(ticks)*dt,
		"clockTime", m.Clock.Time,
		"events", events,
		"wallSeconds", wallDays*86400)
	return nil
}
