package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/magefree/battle-sim-go/internal/battle/exchange"
	"github.com/magefree/battle-sim-go/internal/battle/replay"
	"github.com/magefree/battle-sim-go/internal/config"
)

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "battlesim",
		Short:        "Deterministic creature battle simulator",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to configuration file")

	root.AddCommand(newRunCmd(), newVerifyCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var (
		seed  uint64
		turns int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Play the scripted exchange and record a replay",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if cmd.Flags().Changed("seed") {
				cfg.Battle.Seed = seed
			}
			if cmd.Flags().Changed("turns") {
				cfg.Battle.Turns = turns
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ex := exchange.New(logger, cfg.Battle.Seed, cfg.Battle.MaxHP)
			if err := ex.Setup(); err != nil {
				return err
			}

			var journal *replay.Journal
			if cfg.Replay.Enabled {
				journal = replay.NewJournal(cfg.Battle.BattleID, cfg.Battle.Seed)
				ex.Record(journal)
			}

			logger.Info("starting exchange",
				zap.Uint64("seed", cfg.Battle.Seed),
				zap.Int("turns", cfg.Battle.Turns))

			outcome, err := ex.Run(cfg.Battle.Turns)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "turns: %d\n", outcome.Turns)
			fmt.Fprintf(cmd.OutOrStdout(), "winner: %s\n", winnerName(outcome.Winner))
			for _, id := range []string{exchange.FirstID, exchange.SecondID} {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d HP\n", id, outcome.HP[id])
			}

			if journal == nil {
				return nil
			}
			if err := journal.SaveToFile(cfg.Replay.Dir); err != nil {
				return fmt.Errorf("failed to save replay: %w", err)
			}
			sum, err := journal.Checksum()
			if err != nil {
				return err
			}
			logger.Info("saved replay to disk",
				zap.String("battle_id", journal.BattleID),
				zap.Int("entry_count", journal.Size()),
				zap.String("directory", cfg.Replay.Dir))
			fmt.Fprintf(cmd.OutOrStdout(), "replay: %s\nchecksum: %s\n", journal.BattleID, sum)
			return nil
		},
	}

	cmd.Flags().Uint64Var(&seed, "seed", 0, "override battle.seed")
	cmd.Flags().IntVar(&turns, "turns", 0, "override battle.turns")
	return cmd
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <battle-id>",
		Short: "Load a replay, print its checksum and re-run it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			journal, err := replay.LoadFromFile(cfg.Replay.Dir, args[0])
			if err != nil {
				return err
			}
			sum, err := journal.Checksum()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "entries: %d\nchecksum: %s\n", journal.Size(), sum)

			maxHP := cfg.Battle.MaxHP
			if journal.MaxHP > 0 {
				maxHP = journal.MaxHP
			}
			ex := exchange.New(logger, journal.Seed, maxHP)
			if err := ex.Setup(); err != nil {
				return err
			}
			if err := replay.Verify(journal, ex.Bus(), ex.RNG()); err != nil {
				return err
			}

			logger.Info("replay verified", zap.String("battle_id", journal.BattleID))
			fmt.Fprintln(cmd.OutOrStdout(), "verified: ok")
			return nil
		},
	}
}

func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := initLogger(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger, nil
}

func winnerName(id string) string {
	if id == "" {
		return "none"
	}
	return id
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
