package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/xtding233/suika-backend/internal/audio"
	"github.com/xtding233/suika-backend/internal/config"
	"github.com/xtding233/suika-backend/internal/game"
	"github.com/xtding233/suika-backend/internal/roll"
	"github.com/xtding233/suika-backend/internal/runner"
	"github.com/xtding233/suika-backend/internal/store"
	"github.com/xtding233/suika-backend/internal/tui"
	"github.com/xtding233/suika-backend/internal/tuning"
)

func main() {
	if err := config.InitConfig(nil); err != nil {
		log.Fatal(err)
	}
	var (
		dbPath    = flag.String("db", config.String("SUIKA_DB", "suika.db"), "SQLite file for high score and achievements (empty keeps them in memory)")
		tuningDir = flag.String("tuning", config.String("SUIKA_TUNING_DIR", "tuning"), "tuning directory (missing dir uses built-in rules)")
		profile   = flag.String("profile", config.String("SUIKA_PROFILE", ""), "tuning profile")
		sound     = flag.Bool("sound", config.Bool("SUIKA_SOUND", true), "play sound cues")
		logPath   = flag.String("log", config.String("SUIKA_LOG", ""), "write logs to this file")
	)
	flag.Parse()

	// The screen owns stdout, so logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		logOut = f
	}
	logger := log.New(logOut, "[suika] ", log.LstdFlags|log.Lmicroseconds)

	params := tuning.Default()
	if _, err := os.Stat(*tuningDir); err == nil {
		_, p, err := tuning.NewLoader(*tuningDir).Resolve(*profile, tuning.Overrides{})
		if err != nil {
			log.Fatalf("tuning: %v", err)
		}
		params = p
	}

	var st store.Store = store.NewMemory()
	if *dbPath != "" {
		db, err := store.OpenSQLite(*dbPath)
		if err != nil {
			log.Fatalf("store: %v", err)
		}
		defer db.Close()
		st = db
	}

	player := audio.NewPlayer(audio.DefaultConfig())
	if *sound {
		if err := player.Initialize(); err != nil {
			logger.Printf("sound disabled: %v", err)
		}
	}
	defer player.Close()

	g := game.New(game.Options{Params: params, Store: st, RNG: roll.DefaultRNG(), Logger: logger})
	rn := runner.New(runner.Options{
		Game:        g,
		BroadcastHz: params.TickHz,
		Cues:        player,
		Logger:      logger,
	})
	go rn.Run()
	defer rn.Stop()

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatal(err)
	}
	if err := screen.Init(); err != nil {
		log.Fatal(err)
	}
	defer screen.Fini()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := tui.NewApp(screen, rn.Inbox).Run(ctx); err != nil {
		logger.Printf("ui: %v", err)
	}
}
