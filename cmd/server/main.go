package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"craftstream.ai/internal/persistence/indexdb"
	persistlog "craftstream.ai/internal/persistence/log"
	"craftstream.ai/internal/protocol"
	"craftstream.ai/internal/sim/session"
	"craftstream.ai/internal/sim/task"
	"craftstream.ai/internal/sim/tuning"
	"craftstream.ai/internal/sim/vocab"
	"craftstream.ai/internal/sim/world"
	"craftstream.ai/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		seed       = flag.Int64("seed", 1337, "base world seed")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		synPath    = flag.String("synonyms", "", "path to synonyms.json (default: <configs>/synonyms.json)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite episode index")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	sp := strings.TrimSpace(*synPath)
	if sp == "" {
		sp = filepath.Join(*configDir, "synonyms.json")
	}
	syn, synDigest, err := vocab.LoadSynonyms(sp)
	if err != nil {
		logger.Fatalf("load synonyms: %v", err)
	}

	tasks, err := vocab.BuildTasks(syn)
	if err != nil {
		logger.Fatalf("build tasks: %v", err)
	}
	set, err := task.NewSet(tasks, vocab.EncodingOrder(syn), tune.DummyBits)
	if err != nil {
		logger.Fatalf("task set: %v", err)
	}
	logger.Printf("task set: %d real, %d decoy slots, encoding width %d", set.Len(), set.DummySlots(), set.Width())

	palette := world.Palette()
	paletteJSON, _ := json.Marshal(palette)
	paletteSum := sha256.Sum256(paletteJSON)
	paletteDigest := hex.EncodeToString(paletteSum[:])

	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(*dataDir, "index", "craftstream.db"))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
	}

	epLog := persistlog.NewEpisodeLogger(*dataDir)
	defer epLog.Close()

	var (
		sessionsTotal atomic.Int64
		episodesTotal atomic.Int64
		rewardsTotal  atomic.Int64
	)

	// Each connection gets its own session with a seed derived from the
	// base seed and a session counter, so runs stay reproducible while
	// concurrent sessions diverge.
	sessionCfg := session.Config{
		Area:          [2]int{tune.Area[0], tune.Area[1]},
		ViewRadius:    tune.ViewRadius,
		DayLength:     tune.DayLength,
		EpisodeLength: tune.EpisodeLength,
		TimeoutSteps:  tune.TaskTimeout,
		CarryOverProb: tune.CarryOverProb,
	}

	wsSrv := ws.NewServer(ws.Config{
		NewSession: func() *session.Session {
			n := sessionsTotal.Add(1)
			cfg := sessionCfg
			cfg.Seed = *seed + n
			return session.New(cfg, set, rand.New(rand.NewSource(cfg.Seed)))
		},
		Welcome: func(sessionID string) protocol.WelcomeMsg {
			return protocol.WelcomeMsg{
				Type:            protocol.TypeWelcome,
				ProtocolVersion: protocol.Version,
				SessionID:       sessionID,
				EnvParams: protocol.EnvParams{
					Area:          [2]int{tune.Area[0], tune.Area[1]},
					ObsRadius:     tune.ViewRadius,
					DayLength:     tune.DayLength,
					EpisodeLength: tune.EpisodeLength,
					TaskTimeout:   tune.TaskTimeout,
					CarryOverProb: tune.CarryOverProb,
					Seed:          *seed,
				},
				Tasks: protocol.TaskManifest{
					Count:         set.Len(),
					DummySlots:    set.DummySlots(),
					EncodingWidth: set.Width(),
					SynonymDigest: synDigest,
					Actions:       world.Actions(),
				},
				Palette: protocol.PaletteDigest{
					Digest: paletteDigest,
					Count:  len(palette),
				},
			}
		},
		OnEpisodeEnd: func(e session.EpisodeLogEntry) {
			episodesTotal.Add(1)
			rewardsTotal.Add(int64(e.Return))
			if err := epLog.WriteEpisode(e); err != nil {
				logger.Printf("episode log: %v", err)
			}
			if idx != nil {
				_ = idx.WriteEpisode(e)
			}
		},
		OnFeedback: func(sessionID string, rates []float64) {
			if idx != nil {
				idx.RecordTaskStats(sessionID, rates)
			}
		},
	}, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

		// Minimal Prometheus exposition format.
		fmt.Fprintf(rw, "# HELP craftstream_sessions_total Total sessions opened.\n")
		fmt.Fprintf(rw, "# TYPE craftstream_sessions_total counter\n")
		fmt.Fprintf(rw, "craftstream_sessions_total %d\n", sessionsTotal.Load())

		fmt.Fprintf(rw, "# HELP craftstream_episodes_total Total episodes finished.\n")
		fmt.Fprintf(rw, "# TYPE craftstream_episodes_total counter\n")
		fmt.Fprintf(rw, "craftstream_episodes_total %d\n", episodesTotal.Load())

		fmt.Fprintf(rw, "# HELP craftstream_rewards_total Total task rewards granted (rounded down per episode).\n")
		fmt.Fprintf(rw, "# TYPE craftstream_rewards_total counter\n")
		fmt.Fprintf(rw, "craftstream_rewards_total %d\n", rewardsTotal.Load())

		fmt.Fprintf(rw, "# HELP craftstream_task_count Number of real tasks in the stream.\n")
		fmt.Fprintf(rw, "# TYPE craftstream_task_count gauge\n")
		fmt.Fprintf(rw, "craftstream_task_count %d\n", set.Len())
	})
	if envBool("CS_ENABLE_PPROF_HTTP", false) {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	} else {
		logger.Printf("pprof endpoints disabled (CS_ENABLE_PPROF_HTTP=false)")
	}
	mux.HandleFunc("/v1/ws", wsSrv.Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := signalContext()
	defer cancel()
	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func envBool(name string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}
