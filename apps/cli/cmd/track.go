package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/canterburyairpatrol/smm-asset/packages/asset"
	"github.com/canterburyairpatrol/smm-asset/packages/journal"
	"github.com/canterburyairpatrol/smm-asset/packages/logger"
	"github.com/canterburyairpatrol/smm-asset/packages/session"
)

var trackCmd = &cobra.Command{
	Use:   "track [asset] <track.yaml>",
	Short: "Replay a track file as position reports",
	Long: `Send every position in a YAML track file as a report, at most --rate
reports per second, printing each new command the server answers with.

Track file format:
  positions:
    - {lat: -43.5, lon: 172.6, alt: 120, bearing: 90}
    - {lat: -43.501, lon: 172.601, alt: 120, bearing: 92, fix: 2}

Examples:
  smm-asset track drone7 sortie.yaml
  smm-asset track drone7 sortie.yaml --rate 0.5 --journal sqlite://reports.db`,
	Args: cobra.RangeArgs(1, 2),
	RunE: trackCommand,
}

var (
	trackRateFlag    float64
	trackJournalFlag string
)

func init() {
	trackCmd.Flags().Float64VarP(&trackRateFlag, "rate", "r", getEnvFloat("SMM_RATE", 1), "Reports per second (env: SMM_RATE)")
	trackCmd.Flags().StringVar(&trackJournalFlag, "journal", getEnvString("SMM_JOURNAL", ""), "Record reports to a SQLite journal, e.g. sqlite://reports.db (env: SMM_JOURNAL)")
}

type trackFile struct {
	Positions []trackPoint `yaml:"positions"`
}

type trackPoint struct {
	Lat     float64 `yaml:"lat"`
	Lon     float64 `yaml:"lon"`
	Alt     uint    `yaml:"alt"`
	Bearing uint16  `yaml:"bearing"`
	Fix     *uint8  `yaml:"fix"`
}

// loadTrack reads a track file. Points without a fix are 3D fixes.
func loadTrack(path string) ([]asset.Position, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tf trackFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(tf.Positions) == 0 {
		return nil, fmt.Errorf("%s: no positions", path)
	}

	positions := make([]asset.Position, 0, len(tf.Positions))
	for _, p := range tf.Positions {
		fix := uint8(3)
		if p.Fix != nil {
			fix = *p.Fix
		}
		positions = append(positions, asset.Position{
			Latitude:  p.Lat,
			Longitude: p.Lon,
			Altitude:  p.Alt,
			Bearing:   p.Bearing,
			Fix:       fix,
		})
	}
	return positions, nil
}

func trackCommand(cmd *cobra.Command, args []string) error {
	positions, err := loadTrack(args[len(args)-1])
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}
	if trackRateFlag <= 0 {
		return withExitCode(ExitUsageError, fmt.Errorf("--rate must be positive"))
	}

	c, err := connect(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	a, err := c.asset(args[:len(args)-1])
	if err != nil {
		return err
	}

	t := &tracker{
		asset:   a,
		sess:    c.sess,
		limiter: rate.NewLimiter(rate.Limit(trackRateFlag), 1),
		log:     c.log,
		onCommand: func(command asset.Command) {
			c.out.FormatCommand(a, command)
		},
	}

	journalURL := trackJournalFlag
	if journalURL == "" {
		journalURL = c.cfg.Journal
	}
	if journalURL != "" {
		j, err := journal.Open(journalURL)
		if err != nil {
			return withExitCode(ExitConfigError, err)
		}
		defer j.Close()
		t.journal = j
	}

	// Set up signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\nReceived interrupt, stopping gracefully...")
			cancel()
		case <-ctx.Done():
		}
	}()

	runErr := t.run(ctx, positions)
	c.out.FormatSummary(c.stats.Summary())
	return runErr
}

type sessionState interface {
	Host() string
	State() session.State
}

// tracker sends positions one at a time through a rate limiter.
type tracker struct {
	asset     *asset.Asset
	sess      sessionState
	limiter   *rate.Limiter
	journal   *journal.Journal
	log       *slog.Logger
	onCommand func(asset.Command)
}

// run reports every position until done or ctx is cancelled. A failed
// report is logged and skipped unless the session has lost its login.
func (t *tracker) run(ctx context.Context, positions []asset.Position) error {
	last := asset.CommandNone
	failed := 0
	for i, p := range positions {
		if err := t.limiter.Wait(ctx); err != nil {
			// only cancellation ends a wait early
			return nil
		}

		command, err := t.asset.ReportPosition(p)
		if err != nil {
			failed++
			t.log.Warn("position report failed", slog.Int("index", i), logger.Error(err))
			if state := t.sess.State(); state != session.StateConnected {
				return stateError(t.sess.Host(), state)
			}
			continue
		}

		if t.journal != nil {
			if _, err := t.journal.Record(journal.Report{
				AssetID:   t.asset.ID,
				Latitude:  p.Latitude,
				Longitude: p.Longitude,
				Altitude:  p.Altitude,
				Bearing:   p.Bearing,
				Fix:       p.Fix,
				Command:   command.String(),
			}); err != nil {
				t.log.Warn("journal write failed", logger.Error(err))
			}
		}

		if command != last && t.onCommand != nil {
			t.onCommand(command)
		}
		last = command
	}

	if failed == len(positions) {
		return fmt.Errorf("all %d position reports failed", failed)
	}
	return nil
}
