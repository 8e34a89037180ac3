package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/xtding233/suika-backend/internal/config"
	"github.com/xtding233/suika-backend/internal/game"
	"github.com/xtding233/suika-backend/internal/journal"
	"github.com/xtding233/suika-backend/internal/roll"
	"github.com/xtding233/suika-backend/internal/runner"
	"github.com/xtding233/suika-backend/internal/store"
	"github.com/xtding233/suika-backend/internal/transport/grpcapi"
	"github.com/xtding233/suika-backend/internal/transport/httpapi"
	"github.com/xtding233/suika-backend/internal/transport/ws"
	"github.com/xtding233/suika-backend/internal/tuning"
)

func newLogger(prefix string) *log.Logger {
	return log.New(os.Stdout, "["+prefix+"] ", log.LstdFlags|log.Lmicroseconds)
}

func main() {
	logger := newLogger("server")
	if err := config.InitConfig(logger); err != nil {
		logger.Fatal(err)
	}

	var (
		httpAddr    = flag.String("http", config.String("SUIKA_HTTP_ADDR", ":8080"), "HTTP and WebSocket listen address")
		grpcAddr    = flag.String("grpc", config.String("SUIKA_GRPC_ADDR", ":9090"), "gRPC listen address (empty disables)")
		dbPath      = flag.String("db", config.String("SUIKA_DB", "suika.db"), "SQLite file for high score and achievements")
		tuningDir   = flag.String("tuning", config.String("SUIKA_TUNING_DIR", "tuning"), "tuning directory")
		profile     = flag.String("profile", config.String("SUIKA_PROFILE", ""), "tuning profile")
		journalDir  = flag.String("journal", config.String("SUIKA_JOURNAL_DIR", "journal"), "session journal directory (empty disables)")
		broadcastHz = flag.Int("broadcast-hz", config.Int("SUIKA_BROADCAST_HZ", 20), "frames per second sent to observers")
		watch       = flag.Duration("watch", time.Duration(config.Int("SUIKA_WATCH_MS", 2000))*time.Millisecond, "tuning poll interval (0 disables)")
	)
	flag.Parse()

	loader := tuning.NewLoader(*tuningDir)
	_, params, err := loader.Resolve(*profile, tuning.Overrides{})
	if err != nil {
		logger.Fatalf("tuning: %v", err)
	}
	logger.Printf("tuning loaded: dir=%s profile=%q version=%s", *tuningDir, *profile, params.Version)

	db, err := store.OpenSQLite(*dbPath)
	if err != nil {
		logger.Fatalf("store: %v", err)
	}
	defer db.Close()

	g := game.New(game.Options{
		Params: params,
		Store:  db,
		RNG:    roll.DefaultRNG(),
		Logger: newLogger("game"),
	})

	var jw *journal.Writer
	if *journalDir != "" {
		if err := os.MkdirAll(*journalDir, 0o755); err != nil {
			logger.Fatalf("journal: %v", err)
		}
		jw = journal.NewWriter(*journalDir, "session")
		defer jw.Close()
	}

	rn := runner.New(runner.Options{
		Game:        g,
		BroadcastHz: *broadcastHz,
		Journal:     jw,
		Logger:      newLogger("runner"),
	})
	go rn.Run()
	defer rn.Stop()

	reload := func(ctx context.Context, prof string) (tuning.Params, error) {
		loader.Invalidate()
		_, p, err := loader.Resolve(prof, tuning.Overrides{})
		if err != nil {
			return tuning.Params{}, err
		}
		return p, rn.Tune(ctx, p)
	}

	if *watch > 0 {
		fw := tuning.NewFileWatcher(loader.Paths(*profile), *watch, func(changed []string) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			p, err := reload(ctx, *profile)
			if err != nil {
				logger.Printf("tuning reload after change to %v failed: %v", changed, err)
				return
			}
			logger.Printf("tuning reloaded after change to %v: version=%s (applies next run)", changed, p.Version)
		})
		fw.Start()
		defer fw.Stop()
	}

	mux := http.NewServeMux()
	mux.Handle("/", httpapi.New(rn, reload, newLogger("http")).Handler())
	mux.Handle("/ws", ws.NewServer(rn, newLogger("ws")).Handler())
	httpSrv := &http.Server{Addr: *httpAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	var grpcSrv *grpc.Server
	if *grpcAddr != "" {
		lis, err := net.Listen("tcp", *grpcAddr)
		if err != nil {
			logger.Fatalf("grpc listen: %v", err)
		}
		grpcSrv = grpc.NewServer()
		grpcapi.Register(grpcSrv, grpcapi.NewService(rn, newLogger("grpc")))
		go func() {
			logger.Printf("gRPC listening on %s", *grpcAddr)
			if err := grpcSrv.Serve(lis); err != nil {
				logger.Printf("grpc serve: %v", err)
			}
		}()
	}

	go func() {
		logger.Printf("HTTP listening on %s", *httpAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http serve: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	logger.Printf("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("http shutdown: %v", err)
	}
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
}
