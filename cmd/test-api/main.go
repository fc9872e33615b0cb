// Command test-api serves a synthetic spreadsheet-backed leaderboard API for
// local development.
//
//	go run ./cmd/test-api -variant sheet -latency 300ms
//	BASSBOARD_API_BASE=http://localhost:9090/exec BASSBOARD_ACTION_PARAM=endpoint go run ./cmd serve
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/bassboard/internal/testapi"
	"github.com/okian/bassboard/pkg/logger"
)

// Server timeout constants.
const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

func main() {
	var (
		addr    = flag.String("addr", ":9090", "Listen address")
		events  = flag.Int("events", testapi.DefaultEvents, "Number of events to generate")
		anglers = flag.Int("anglers", testapi.DefaultAnglers, "Anglers per event")
		latency = flag.Duration("latency", 0, "Delay added to every response")
		variant = flag.String("variant", string(testapi.VariantCanonical), "Key spelling: canonical, sheet or legacy")
		seed    = flag.Uint64("seed", 1, "Generator seed")
		verbose = flag.Bool("verbose", false, "Log every request")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}
	log := logger.Get()

	v, err := testapi.ParseVariant(*variant)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := testapi.NewServer(testapi.Config{
		Events:  *events,
		Anglers: *anglers,
		Latency: *latency,
		Variant: v,
		Seed:    *seed,
	})
	srv := &http.Server{
		Addr:              *addr,
		Handler:           api,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info(ctx, "serving test API",
		logger.String("addr", *addr),
		logger.String("variant", string(v)),
		logger.String("action_param", v.ActionParam()),
		logger.Int("events", len(api.Dataset().Events)),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error(ctx, "test API failed", logger.Error(err))
		os.Exit(1)
	}
	log.Info(ctx, "test API stopped", logger.Any("requests", api.Requests()))
}
