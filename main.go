package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/victorzhrn/swingmaster/internal/analyzer"
	"github.com/victorzhrn/swingmaster/internal/api"
	"github.com/victorzhrn/swingmaster/internal/config"
	"github.com/victorzhrn/swingmaster/internal/monitoring"
	"github.com/victorzhrn/swingmaster/internal/segmentdb"
	"github.com/victorzhrn/swingmaster/internal/source"
	"github.com/victorzhrn/swingmaster/internal/validator"
)

var (
	listen       = flag.String("listen", ":8080", "Listen address")
	dbFile       = flag.String("db", "swing_data.db", "Segment database path")
	configPath   = flag.String("config", "", "Optional tuning config (JSON)")
	validatorURL = flag.String("validator", "http://localhost:9090", "Swing validation service base URL")
)

func main() {
	flag.Parse()

	var tuning *config.TuningConfig
	if *configPath != "" {
		loaded, err := config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load tuning config: %v", err)
		}
		tuning = loaded
	}

	db, err := segmentdb.NewDB(*dbFile)
	if err != nil {
		log.Fatalf("Failed to open segment database: %v", err)
	}
	defer db.Close()

	src := source.FileSource{}
	sched := analyzer.NewScheduler(
		src,
		src,
		validator.NewClient(*validatorURL, nil),
		tuning.SchedulerConfig(),
	)
	sched.OnRunComplete(func(run *analyzer.Run) {
		if err := db.RecordRun(run.ID, run.Video); err != nil {
			monitoring.Logf("persist run %s: %v", run.ID, err)
			return
		}
		if err := db.RecordSegments(run.ID, run.Results()); err != nil {
			monitoring.Logf("persist segments for run %s: %v", run.ID, err)
		}
	})

	server := api.NewServer(sched, db, tuning.TrajectoryOptions())
	httpServer := &http.Server{Addr: *listen, Handler: server.ServeMux()}

	go func() {
		monitoring.Logf("listening on %s", *listen)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	monitoring.Logf("shutting down")
	httpServer.Close()
}
