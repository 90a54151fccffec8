package app

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"autoassign/internal/assignment"
	"autoassign/internal/config"
	"autoassign/internal/httpapi"
	"autoassign/internal/httpx"
	"autoassign/internal/logging"
	"autoassign/internal/metrics"
	"autoassign/internal/notify"
	"autoassign/internal/oort"
	"autoassign/internal/schedule"
	"autoassign/internal/storage/sqlite"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/slack-go/slack"
)

func Main() {
	once := flag.Bool("once", false, "run a single assignment pass and exit")
	flag.Parse()

	cfg := config.LoadConfig()
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	appliedHTTPTimeout := httpx.ConfigureExternalHTTPClient(cfg.ExternalHTTPTimeoutSeconds)
	log.Printf(
		"Config loaded. Schedule=%s PaceInterval=%s Timezone=%s DB=%s HTTPAddr=%q Slack=%t ExternalHTTPTimeout=%s",
		cfg.AssignmentSchedule,
		cfg.PaceInterval(),
		cfg.Timezone,
		cfg.DBPath,
		cfg.HTTPAddr,
		cfg.SlackConfigured(),
		appliedHTTPTimeout,
	)

	db, err := sqlite.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to init database: %v", err)
	}
	log.Printf("Database initialized at %s", cfg.DBPath)
	defer db.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	client := oort.NewClient(cfg.OortURL, cfg.OortToken, httpx.ExternalClient(), oort.WithLogger(logger))
	eng := assignment.New(client, client, client, client,
		assignment.WithPacer(assignment.FixedDelay{Interval: cfg.PaceInterval()}),
		assignment.WithLogger(logger),
		assignment.WithMetrics(metrics.NewPrometheus(reg, "")),
	)

	runner := &Runner{
		Resources: cfg.Resources,
		Engine:    eng,
		DB:        db,
		Logger:    logger,
	}
	if cfg.SlackConfigured() {
		runner.Notifier = notify.NewNotifier(slack.New(cfg.SlackBotToken), cfg.ReportChannelID)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *once {
		if err := runner.RunOnce(ctx); err != nil {
			log.Fatalf("Assignment run failed: %v", err)
		}
		return
	}

	if cfg.HTTPAddr != "" {
		srv := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           httpapi.NewServer(db, reg),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("HTTP server error: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	sched, err := schedule.New(cfg.AssignmentSchedule, cfg.Location, logger)
	if err != nil {
		log.Fatalf("Invalid assignment_schedule '%s': %v", cfg.AssignmentSchedule, err)
	}

	log.Println("Starting complaint auto-assignment...")
	_ = sched.Run(ctx, func(ctx context.Context) {
		_ = runner.RunOnce(ctx)
	})
	log.Println("Shutting down")
}
