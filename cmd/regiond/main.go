// Command regiond loads a DNS zone into a region-backed store, takes a
// copy-on-write snapshot on each POST /snapshot request, and exports
// allocator/zone metrics. It does not answer DNS queries.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nmxmxh/region/kernel/memmap"
	"github.com/nmxmxh/region/kernel/region"
	"github.com/nmxmxh/region/kernel/utils"
	"github.com/nmxmxh/region/kernel/zone"
)

func main() {
	var (
		regionPath = flag.String("region", memmap.DefaultPath("region.db"), "path to the region-backed file")
		regionSize = flag.Uint("size", 64<<20, "size in bytes to create the region file at, if it doesn't exist")
		zonePath   = flag.String("zone", "", "path to a zone file to load at startup")
		origin     = flag.String("origin", "", "zone origin (required if -zone is set)")
		listenAddr = flag.String("listen", ":9110", "address to serve /metrics and /healthz on")
		devLog     = flag.Bool("dev", false, "use human-readable, colorized logging instead of JSON")
	)
	flag.Parse()

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:       zap.InfoLevel,
		Component:   "regiond",
		Development: *devLog,
	})
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := run(logger, *regionPath, uint32(*regionSize), *zonePath, *origin, *listenAddr); err != nil {
		logger.Fatal("regiond exited with error", utils.Err(err))
	}
}

func run(logger *utils.Logger, regionPath string, regionSize uint32, zonePath, origin, listenAddr string) error {
	create := false
	if _, statErr := os.Stat(regionPath); os.IsNotExist(statErr) {
		create = true
	}

	fp, err := memmap.OpenFile(memmap.FileOptions{Path: regionPath, Size: regionSize, Create: create})
	if err != nil {
		return err
	}
	defer fp.Close()

	var r *region.Region
	if create {
		logger.Info("formatting new region", utils.String("path", regionPath), utils.Uint64("size", uint64(regionSize)))
		r, err = region.Init(fp.Bytes())
	} else {
		logger.Info("opening existing region", utils.String("path", regionPath))
		r, err = region.Open(fp.Bytes())
	}
	if err != nil {
		return err
	}

	store := zone.NewStore(r, fp, logger.Logger)

	if zonePath != "" {
		f, err := os.Open(zonePath)
		if err != nil {
			return err
		}
		n, err := store.LoadZoneFile(f, origin, zonePath)
		_ = f.Close()
		if err != nil {
			return err
		}
		logger.Info("loaded zone", utils.String("origin", origin), utils.Int("records", n))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(newMetricsCollector(store))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/snapshot", snapshotHandler(logger, store))
	server := &http.Server{Addr: listenAddr, Handler: mux}

	shutdown := utils.NewGracefulShutdown(10*time.Second, logger)
	shutdown.Register(func() error { return server.Shutdown(context.Background()) })
	shutdown.Register(fp.Sync)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("serving metrics", utils.String("addr", listenAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return statsLoop(gctx, logger, store)
	})

	<-ctx.Done()
	logger.Info("shutdown signal received")
	if err := shutdown.Shutdown(context.Background()); err != nil {
		logger.Error("graceful shutdown failed", utils.Err(err))
	}

	return g.Wait()
}

func statsLoop(ctx context.Context, logger *utils.Logger, store *zone.Store) error {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			st := store.Stats()
			logger.Info("region stats",
				utils.Uint64("total_pages", uint64(st.TotalPages)),
				utils.Int("zone_names", store.Len()),
			)
		}
	}
}
