// cmd/supervisor/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/tamzrod/ulp-supervisor/internal/config"
	"github.com/tamzrod/ulp-supervisor/internal/fault"
	"github.com/tamzrod/ulp-supervisor/internal/host"
	"github.com/tamzrod/ulp-supervisor/internal/observability"
	"github.com/tamzrod/ulp-supervisor/internal/power"
	"github.com/tamzrod/ulp-supervisor/internal/region"
	"github.com/tamzrod/ulp-supervisor/internal/satellite"
	"github.com/tamzrod/ulp-supervisor/internal/writer"
)

func main() {
	dump := flag.String("dump", "", "print the region stored in `file` and exit")
	flag.Parse()

	if *dump != "" {
		if err := dumpRegion(*dump); err != nil {
			fmt.Fprintf(os.Stderr, "dump failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: supervisor <config.yaml> | supervisor -dump <region-file>")
		os.Exit(2)
	}

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	logger := observability.InitLogger("supervisor", observability.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("supervisor stopped")
	}
	logger.Info().Msg("supervisor shut down")
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	observability.RegisterMetrics()

	// --------------------
	// Shared region
	// --------------------

	r, err := openRegion(cfg.Region.Path)
	if err != nil {
		return err
	}
	defer r.Close()

	image := satellite.DefaultImage()
	if cfg.Satellite.ImagePath != "" {
		image, err = os.ReadFile(cfg.Satellite.ImagePath)
		if err != nil {
			return fmt.Errorf("satellite image: %w", err)
		}
	}

	clk := clock.New()
	trap := fault.NewTrap()

	// The crash source registers its trap handler before the power manager
	// so the crash flag is set by the time a crash wake is delivered.
	mode, err := fault.ParseMode(cfg.Crash.Mode)
	if err != nil {
		return err
	}
	faults, err := fault.New(mode, trap, r)
	if err != nil {
		return err
	}
	sim := power.NewSim(clk, trap)

	g, gctx := errgroup.WithContext(ctx)

	// --------------------
	// Satellite (simulated co-processor)
	// --------------------

	sc := cfg.Satellite
	factory := func() (*satellite.Satellite, error) {
		return satellite.New(
			satellite.Config{
				WakeEvery:    *sc.WakeEvery,
				AcquireDepth: sc.AcquireDepth,
			},
			r,
			satellite.Env{
				Clock: clk,
				Delay: satellite.BusyWait{Clock: clk, D: time.Duration(sc.AcquisitionDelayUs) * time.Microsecond},
				Stack: satellite.SimStack{Top: sc.Stack.Top, Frame: sc.Stack.Frame, Floor: sc.Stack.Limit},
				Waker: sim,
				Trap:  trap,
			},
		)
	}
	loader := satellite.NewSimLoader(gctx, factory, r.Zero)
	defer loader.Wait()

	// --------------------
	// Telemetry (optional)
	// --------------------

	tw, closeTelemetry, err := writer.Build(cfg.Telemetry)
	if err != nil {
		return err
	}
	defer closeTelemetry()

	var publisher host.Publisher
	if tw != nil {
		publisher = tw
	}

	// --------------------
	// Host controller
	// --------------------

	ret, err := host.NewRetained(r)
	if err != nil {
		return err
	}

	hc := cfg.Host
	ctrl, err := host.NewController(
		host.Config{
			Image:         image,
			TickPeriodUs:  sc.TickPeriodUs,
			Iterations:    hc.Iterations,
			PollInterval:  pollInterval(hc.PollIntervalMs, sc.TickPeriodUs),
			TimerWake:     time.Duration(hc.Wake.TimerMs) * time.Millisecond,
			SatelliteWake: hc.Wake.Satellite,
			CrashWake:     hc.Wake.Crash,
			StallAfter:    time.Duration(hc.StallAfterMs) * time.Millisecond,
		},
		ret,
		host.Deps{
			Loader:    loader,
			Wake:      sim,
			Faults:    faults,
			Clock:     clk,
			Log:       logger.With().Str("component", "host").Logger(),
			Publisher: publisher,
		},
	)
	if err != nil {
		return err
	}

	g.Go(func() error {
		return ctrl.Run(gctx)
	})

	if addr := cfg.Metrics.Addr; addr != "" {
		srv := &http.Server{
			Addr:              addr,
			Handler:           promhttp.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info().Str("addr", addr).Msg("metrics listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

func openRegion(path string) (*region.Region, error) {
	if path == "" {
		return region.New(), nil
	}
	return region.OpenFile(path)
}

// pollInterval defaults to one satellite tick.
func pollInterval(ms int, tickUs uint32) time.Duration {
	if ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return time.Duration(tickUs) * time.Microsecond
}

// ---- dump ----

type regionDump struct {
	LoopCount       uint32    `yaml:"loop_count"`
	State           string    `yaml:"state"`
	Value           *float64  `yaml:"value,omitempty"`
	History         []float64 `yaml:"history"`
	MinStackAddress string    `yaml:"min_stack_address"`
	Crashed         bool      `yaml:"crash_flag"`
}

// dumpRegion prints another process's live region without writing to it.
func dumpRegion(path string) error {
	r, err := region.MapFile(path)
	if err != nil {
		return err
	}
	defer r.Close()

	s := r.Host().Snapshot()
	d := regionDump{
		LoopCount:       s.LoopCount,
		State:           s.State.String(),
		History:         s.History[:],
		MinStackAddress: fmt.Sprintf("%#08x", s.MinStackAddress),
		Crashed:         s.Crashed,
	}
	if s.State == region.Ready {
		d.Value = &s.Value
	}

	enc := yaml.NewEncoder(os.Stdout)
	defer enc.Close()
	enc.SetIndent(2)
	return enc.Encode(d)
}
