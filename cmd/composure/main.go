package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/composure/audio"
	"github.com/lixenwraith/composure/config"
	"github.com/lixenwraith/composure/core"
	"github.com/lixenwraith/composure/engine"
	"github.com/lixenwraith/composure/render"
	"github.com/lixenwraith/composure/report"
	"github.com/lixenwraith/composure/session"
	"github.com/lixenwraith/composure/simulate"
	"github.com/lixenwraith/composure/status"
	"github.com/lixenwraith/composure/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// exitSignals quit the running session, which still persists its record
// SIGHUP arrives when the terminal window is closed
var exitSignals = []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGHUP}

func notifyExit(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, exitSignals...)
}

// options are the flags shared by every subcommand
type options struct {
	configPath string
	seed       uint64
	storePath  string
	backend    string
	debug      bool
	noAudio    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "composure",
		Short:         "Timed attention tasks under disruption, scored for emotional stability",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file")
	root.PersistentFlags().Uint64Var(&opts.seed, "seed", 0, "random seed, 0 picks one from the clock")
	root.PersistentFlags().StringVar(&opts.storePath, "store", "", "assessment store path")
	root.PersistentFlags().StringVar(&opts.backend, "backend", "", "store backend: json|sqlite")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "write logs to "+logDir+"/"+logFileName)
	root.PersistentFlags().BoolVar(&opts.noAudio, "no-audio", false, "disable feedback sounds")

	root.AddCommand(newPlayCmd(opts))
	root.AddCommand(newSimulateCmd(opts))
	root.AddCommand(newReportCmd(opts))
	return root
}

// load layers flags over the file and environment config
func (o *options) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = o.seed
	}
	if flags.Changed("store") {
		cfg.StorePath = o.storePath
	}
	if flags.Changed("backend") {
		cfg.StoreBackend = store.Backend(o.backend)
	}
	if flags.Changed("debug") {
		cfg.Debug = o.debug
	}
	if o.noAudio {
		cfg.Audio = false
	}
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}
	return cfg, cfg.Validate()
}

func newPlayCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Run an interactive session in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if logFile := setupLogging(cfg.Debug); logFile != nil {
				defer logFile.Close()
			}
			return play(cmd.Context(), cfg)
		},
	}
}

func play(ctx context.Context, cfg config.Config) error {
	ctx, stop := notifyExit(ctx)
	defer stop()

	st, err := cfg.OpenStore()
	if err != nil {
		return err
	}
	defer st.Close()

	var cues session.CueSink = audio.Silent{}
	if cfg.Audio {
		player := audio.NewPlayer()
		if err := player.Init(); err != nil {
			log.Printf("audio unavailable: %v", err)
		} else {
			defer player.Close()
			cues = player
		}
	}

	screen, err := render.OpenScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	defer func() {
		screen.Fini()
		core.SetCrashCleanup(nil)
	}()

	clock := engine.NewMonotonicTimeProvider()
	s := session.New(cfg.Session(cfg.Seed), session.Deps{Clock: clock, Store: st, Cues: cues})
	log.Printf("session %s: seed %d, store %s:%s", s.ID(), cfg.Seed, cfg.StoreBackend, cfg.StorePath)

	reg := status.NewRegistry()
	stateStat := reg.Strings.Get("session.state")

	var frontend *render.Frontend
	scheduler := engine.NewClockScheduler(s, clock, cfg.TickInterval(), func() {
		snap := s.Snapshot()
		stateStat.Store(snap.State)
		frontend.Publish(snap)
	})
	frontend = render.New(screen, scheduler)
	if cfg.Debug {
		scheduler.Instrument(reg)
		frontend.ShowStatus(reg)
	}
	defer func() {
		for _, line := range reg.Lines() {
			log.Printf("status: %s", line)
		}
	}()

	s.Start()
	scheduler.Start(ctx)
	defer scheduler.Stop()

	if err := frontend.Run(ctx, scheduler.Done()); err != nil && ctx.Err() == nil {
		return err
	}

	// Leaving the frontend early still quits and persists the session
	scheduler.Stop()
	return s.Err()
}

func newSimulateCmd(opts *options) *cobra.Command {
	pilot := simulate.DefaultPilot()

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a headless session with a simulated user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if logFile := setupLogging(cfg.Debug); logFile != nil {
				defer logFile.Close()
			}

			ctx, stop := notifyExit(cmd.Context())
			defer stop()

			st, err := cfg.OpenStore()
			if err != nil {
				return err
			}
			defer st.Close()

			res, err := simulate.Run(ctx, simulate.Config{
				Session:      cfg.Session(cfg.Seed),
				Pilot:        pilot,
				TickInterval: cfg.TickInterval(),
			}, st)
			if err != nil {
				return err
			}

			rec := res.Record
			_, _ = fmt.Fprintf(cmd.OutOrStdout(),
				"seed %d: %d tasks, %d clicks (%d missed), %.0fs simulated\n"+
					"stability %.1f  recovery %.1f  persistence %.1f  composite %.1f\n",
				cfg.Seed, len(rec.PerformanceStability), res.Clicks, res.Misses, rec.TotalTimePlayed,
				rec.StabilityRating, rec.DisruptionRecoveryRating, rec.PersistenceRating, rec.NeuroticismScore)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.DurationVar(&pilot.ReactionDelay, "reaction", pilot.ReactionDelay, "base delay between clicks")
	flags.DurationVar(&pilot.Jitter, "jitter", pilot.Jitter, "random extra delay per click")
	flags.Float64Var(&pilot.MissChance, "miss", pilot.MissChance, "probability a click misses")
	flags.Float64Var(&pilot.AbandonChance, "abandon", pilot.AbandonChance, "probability a task is abandoned")
	return cmd
}

func newReportCmd(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize stored assessments",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			setupLogging(false)

			st, err := cfg.OpenStore()
			if err != nil {
				return err
			}
			defer st.Close()

			recs, err := st.Load(cmd.Context())
			if err != nil {
				return err
			}
			return report.Render(cmd.OutOrStdout(), recs, time.Now(), limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "rows to show, 0 for all")
	return cmd
}
