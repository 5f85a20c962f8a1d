package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gofrs/flock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"yardwatch/internal/bot"
	"yardwatch/internal/config"
	"yardwatch/internal/domain"
	"yardwatch/internal/events"
	"yardwatch/internal/httpapi"
	"yardwatch/internal/logging"
	"yardwatch/internal/metrics"
	"yardwatch/internal/notify"
	"yardwatch/internal/poll"
	"yardwatch/internal/secrets"
	"yardwatch/internal/store"
)

func main() {
	var (
		configPath  = flag.String("config", "", "config file (default <data-dir>/config.yml)")
		dataDirFlag = flag.String("data-dir", "", "data directory (default $YARDWATCH_DATA_DIR or ~/.yardwatch)")
		setToken    = flag.Bool("set-token", false, "store the Discord bot token in the OS keychain and exit")
		setIMAPPass = flag.Bool("set-imap-pass", false, "store the mailalert IMAP password in the OS keychain and exit")
		pruneDays   = flag.Int("prune", 0, "delete listings first seen more than N days ago, then exit")
		once        = flag.Bool("once", false, "run a single cycle and exit (for cron)")
		testMode    = flag.Bool("test-mode", false, "log notifications instead of sending them")
	)
	flag.Parse()

	dataDir := resolveDataDir(*dataDirFlag)
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		fatalf("data dir: %v", err)
	}

	cfgPath := *configPath
	if cfgPath == "" {
		var err error
		cfgPath, err = config.EnsureUserConfig(dataDir, filepath.Join("config", "config.yml"))
		if err != nil {
			fatalf("config bootstrap failed: %v", err)
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fatalf("config load failed (%s): %v", cfgPath, err)
	}
	config.ApplyEnv(&cfg)

	// keychain maintenance works while a watcher is running, so it comes
	// before the instance lock
	if *setToken {
		tok := readSecret("Discord bot token: ")
		if err := secrets.SetDiscordToken(tok); err != nil {
			fatalf("store token: %v", err)
		}
		fmt.Println("token stored")
		return
	}
	if *setIMAPPass {
		ma := cfg.Sources.MailAlert
		account := secrets.IMAPAccount(ma.Username, ma.IMAPHost)
		pw := readSecret("IMAP password for " + account + ": ")
		if err := secrets.SetIMAPPassword(account, pw); err != nil {
			fatalf("store password: %v", err)
		}
		fmt.Println("password stored")
		return
	}

	lock := flock.New(filepath.Join(dataDir, "yardwatch.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		fatalf("instance lock: %v", err)
	}
	if !locked {
		fatalf("another yardwatch is already running against %s", dataDir)
	}
	defer lock.Unlock()

	if *testMode {
		cfg.Notify.TestMode = true
	}

	cfg, v := config.NormalizeAndValidate(cfg)
	if !v.OK() {
		fmt.Fprintln(os.Stderr, "yardwatch: config is invalid:")
		for _, e := range v.Errors {
			fmt.Fprintln(os.Stderr, "  - "+e)
		}
		os.Exit(1)
	}

	log := logging.New(logging.Options{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
	})
	for _, w := range v.Warnings {
		log.Warn().Msg(w)
	}

	db, err := store.Open(filepath.Join(dataDir, "yardwatch.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()
	if err := store.Migrate(db.Pool); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	if *pruneDays > 0 {
		n, err := db.PruneOlderThan(context.Background(), *pruneDays)
		if err != nil {
			log.Fatal().Err(err).Msg("prune")
		}
		log.Info().Int64("deleted", n).Int("days", *pruneDays).Msg("prune complete")
		return
	}

	sources, err := buildSources(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("build sources")
	}

	hub := events.NewHub()

	rec := metrics.NewNop()
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		rec = metrics.New(reg, func() float64 {
			n, err := db.Count(context.Background())
			if err != nil {
				return 0
			}
			return float64(n)
		})
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	var session *discordgo.Session
	var sink notify.Notifier
	if cfg.Notify.TestMode {
		sink = &notify.LogNotifier{Log: log}
	} else {
		token, err := secrets.GetDiscordToken()
		if err != nil {
			log.Fatal().Err(err).Msg("discord token required (or enable notify.test_mode)")
		}
		session, err = discordgo.New("Bot " + token)
		if err != nil {
			log.Fatal().Err(err).Msg("discord session")
		}
		sink = notify.NewDiscord(session, cfg.Discord.ChannelID)
	}

	cycle := &poll.Cycle{
		Sources:  sources,
		Store:    db,
		Notifier: sink,
		Criteria: domain.Criteria{
			YearMin:   cfg.Search.YearMin,
			YearMax:   cfg.Search.YearMax,
			Make:      cfg.Search.Make,
			Models:    cfg.Search.Models,
			Locations: cfg.Search.Locations,
		},
		Timeout: time.Duration(cfg.Polling.SourceTimeoutSeconds) * time.Second,
		Hub:     hub,
		Metrics: rec,
		Log:     log,
	}
	poller := poll.NewPoller(cycle, poll.Options{
		Interval: time.Duration(cfg.Polling.IntervalMinutes) * time.Minute,
		TestMode: cfg.Notify.TestMode,
	}, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *once {
		rep, err := poller.RunCycle(ctx, poll.TriggerManual)
		if err != nil {
			log.Fatal().Err(err).Msg("cycle")
		}
		log.Info().Int("fetched", rep.TotalFetched).Int("new", rep.TotalNew).Msg("single cycle done")
		return
	}

	if session != nil {
		b := bot.New(cfg.Discord.ChannelID, poller, log)
		session.AddHandler(b.OnMessage)
		session.Identify.Intents = discordgo.IntentGuildMessages | discordgo.IntentMessageContent
		if err := session.Open(); err != nil {
			log.Fatal().Err(err).Msg("discord connect")
		}
		defer session.Close()
		log.Info().Str("channel", cfg.Discord.ChannelID).Msg("discord connected")
	}

	poller.Start(ctx)

	mux := httpapi.NewMux(httpapi.Deps{
		DB:       db,
		Hub:      hub,
		Log:      log,
		RunCycle: poller.RunCycle,
		Status:   poller.Status,
		Metrics:  metricsHandler,
	})
	handler := httpapi.Chain(mux,
		httpapi.RequestID,
		httpapi.AccessLog(log),
		httpapi.Recover(log),
	)

	ln, err := net.Listen("tcp", cfg.App.HTTPAddr)
	if err != nil {
		log.Fatal().Err(err).Msg("listen")
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.App.HTTPAddr).Msg("control api listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutCtx)
}

func resolveDataDir(flagVal string) string {
	if flagVal != "" {
		return flagVal
	}
	if v := os.Getenv("YARDWATCH_DATA_DIR"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		fatalf("home dir: %v", err)
	}
	return filepath.Join(home, ".yardwatch")
}

// readSecret takes the value from stdin so it stays out of argv and
// shell history.
func readSecret(prompt string) string {
	fmt.Fprint(os.Stderr, prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		fatalf("read input: %v", err)
	}
	return strings.TrimSpace(line)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "yardwatch: "+format+"\n", args...)
	os.Exit(1)
}
