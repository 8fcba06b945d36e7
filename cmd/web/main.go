// cmd/web/main.go
//
// Storefront edge – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load config (.env → conf/global.yaml → STOREFRONT_ env, vault refs).
//
//  2. Start the daily rotating logger (tees to console in a TTY).
//
//  3. Tracing (OTLP, only when telemetry.otlp_endpoint is set) and the
//     optional GeoLite2 reader.
//
//  4. Data sources: with database.dsn the catalog and the segment
//     vocabulary come from MySQL, otherwise from conf/catalog.yaml and the
//     static segment table.
//
//  5. Edge-cache store (memory, redis, or none) and the background runner
//     that carries cache fills past the response.
//
//  6. Handler chain, outermost first:
//
//     • otelhttp           – server span per request
//     • Recoverer          – panics become 500s
//     • TraceLogger        – trace ids on request logs
//     • requestinfo.Enrich – UA and GeoIP
//     • AccessLog          – one line per request
//     • Security headers and ForceHTTPS
//     • mux                – /metrics, else the storefront pipeline
//
//  7. Serve until SIGINT/SIGTERM, then drain in-flight requests and
//     background work within http.shutdown_timeout.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/yanizio/storefront/internal/background"
	"github.com/yanizio/storefront/internal/catalog"
	"github.com/yanizio/storefront/internal/commerce"
	"github.com/yanizio/storefront/internal/config"
	"github.com/yanizio/storefront/internal/database"
	"github.com/yanizio/storefront/internal/edgecache"
	"github.com/yanizio/storefront/internal/form"
	"github.com/yanizio/storefront/internal/i18n"
	"github.com/yanizio/storefront/internal/logger"
	"github.com/yanizio/storefront/internal/middleware"
	"github.com/yanizio/storefront/internal/pipeline"
	"github.com/yanizio/storefront/internal/requestinfo"
	"github.com/yanizio/storefront/internal/routing"
	"github.com/yanizio/storefront/internal/server"
	"github.com/yanizio/storefront/internal/storefront"
	"github.com/yanizio/storefront/internal/telemetry"
)

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logOut, err := logger.New(cfg.Runtime.Root, runningInTTY(), "info")
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer func() { _ = logOut.Sync() }()

	//
	// ── 1.  Tracing and GeoIP ───────────────────────────────────────────
	//
	shutdownTracing, err := telemetry.Init(ctx, cfg.Telemetry, cfg.Cache.BuildVersion)
	if err != nil {
		logOut.Fatalw("init tracing", "err", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	closeGeo, err := requestinfo.InitGeo(cfg.Region.GeoIPDB)
	if err != nil {
		logOut.Fatalw("open geoip db", "file", cfg.Region.GeoIPDB, "err", err)
	}
	defer func() { _ = closeGeo() }()

	//
	// ── 2.  Catalog and segment vocabulary ──────────────────────────────
	//
	static := i18n.NewVocabulary(cfg.I18n.Segments)
	var (
		products catalog.Repository
		vocab    i18n.VocabularySource = static
	)
	if cfg.Database.DSN != "" {
		db, err := database.Open(ctx, cfg.Database.DSN)
		if err != nil {
			logOut.Fatalw("connect database", "err", err)
		}
		defer db.Close()

		segs := routing.NewSegmentCache(db, static, cfg.Database.SegmentTTL)
		if err := segs.Load(ctx); err != nil {
			logOut.Warnw("segment overrides unavailable, serving static table", "err", err)
		}
		vocab = segs
		products = catalog.NewSQL(db)
	} else {
		seed := cfg.Catalog.SeedFile
		if seed != "" && !filepath.IsAbs(seed) {
			seed = filepath.Join(cfg.Runtime.Root, seed)
		}
		mem, err := catalog.LoadYAML(seed)
		if err != nil {
			logOut.Fatalw("load catalog seed", "err", err)
		}
		products = mem
	}

	//
	// ── 3.  Edge-cache store and background runner ──────────────────────
	//
	var store edgecache.Store
	switch cfg.Cache.Backend {
	case "redis":
		rs, err := edgecache.NewRedisStore(ctx, edgecache.RedisOptions{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			logOut.Fatalw("connect redis", "addr", cfg.Cache.RedisAddr, "err", err)
		}
		defer rs.Close()
		store = rs
	case "memory":
		store = edgecache.NewMemoryStore(cfg.Cache.MemoryEntries)
	}
	runner := background.New(cfg.Cache.BackgroundWorkers)

	//
	// ── 4.  Storefront behind the pipeline ──────────────────────────────
	//
	opts := pipeline.FromConfig(cfg, runner, store, vocab)
	var purge http.Handler
	if opts.Cache.Store != nil && cfg.Cache.PurgeToken != "" {
		purge = edgecache.PurgeHandler(opts.Cache.Store, cfg.Cache.PurgeToken)
	}
	site := storefront.New(storefront.Deps{
		Catalog:      products,
		Orders:       commerce.NewMemory(products),
		Localizer:    i18n.Localizer{Set: opts.Locale.Set, Vocab: vocab},
		CSRF:         form.NewSigner(cfg.HTTP.CSRFKey),
		BuildVersion: cfg.Cache.BuildVersion,
		SiteTitle:    cfg.HTTP.SiteTitle,
		Purge:        purge,
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", pipeline.New(opts, site.Routes()))

	//
	// ── 5.  Outer middleware, outermost last ────────────────────────────
	//
	var h http.Handler = mux
	h = middleware.ForceHTTPS(cfg.HTTP.ForceHTTPS)(h)
	h = middleware.Security(cfg.HTTP.ForceHTTPS)(h)
	h = middleware.AccessLog(h)
	h = requestinfo.Enrich(h)
	h = middleware.TraceLogger(zap.L())(h)
	h = chimw.Recoverer(h)
	h = otelhttp.NewHandler(h, "storefront",
		otelhttp.WithFilter(func(r *http.Request) bool { return r.URL.Path != "/metrics" }))

	logOut.Infow("storefront edge starting",
		"addr", cfg.HTTP.ListenAddr,
		"build", cfg.Cache.BuildVersion,
		"cache", cfg.Cache.Backend,
		"database", cfg.Database.DSN != "")

	srv := server.New(cfg.HTTP, h)
	if err := server.Run(ctx, srv, runner, cfg.HTTP.ShutdownTimeout); err != nil {
		logOut.Errorw("http server", "err", err)
	}
	logOut.Info("storefront edge stopped")
}
