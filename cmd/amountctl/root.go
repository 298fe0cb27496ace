package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/govalues/auction"
	"github.com/govalues/auction/internal/batch"
	"github.com/govalues/auction/internal/config"
	"github.com/govalues/auction/internal/logging"
)

const version = "v0.1.0"

// app carries the settings resolved before any subcommand runs.
type app struct {
	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.Default(), logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:          "amountctl",
		Short:        "Compute settlement amounts of partial fills",
		Version:      version,
		SilenceUsage: true,
		Long: `amountctl computes the amount owed for a fraction of an order whose
amount moves linearly from a start amount to an end amount over the
validity window of the order.

Amounts and window positions are unsigned 256-bit integers, given in
decimal or 0x-prefixed hex. All arithmetic is checked.`,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("env", "", "Path to a .env file (default: ./.env if present)")
	flags.String("log-level", "", "Log level (debug|info|warn|error)")
	flags.String("output", "", "Output format (text|json|yaml)")
	flags.Int("scale", 0, "Print amounts in whole units with this many decimal places")

	rootCmd.AddCommand(
		newLocateCmd(a),
		newFractionCmd(a),
		newApplyCmd(a),
		newBatchCmd(a),
	)
	return rootCmd
}

// setup loads configuration and lets explicitly set flags override it.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	envPath, _ := flags.GetString("env")
	cfg, err := config.LoadFromEnv(envPath)
	if err != nil {
		return err
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("output") {
		cfg.Output, _ = flags.GetString("output")
	}
	if flags.Changed("scale") {
		cfg.Scale, _ = flags.GetInt("scale")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.cfg, a.logger = cfg, logger
	a.logger.Debug("config_loaded",
		zap.String("command", cmd.Name()),
		zap.String("output", cfg.Output),
		zap.Int("scale", cfg.Scale),
	)
	return nil
}

// writeAmount prints a single computed amount in the configured format.
func (a *app) writeAmount(w io.Writer, amount auction.Amount) error {
	s, err := batch.FormatAmount(amount, a.cfg.Scale)
	if err != nil {
		return err
	}
	switch a.cfg.Output {
	case config.OutputJSON:
		return json.NewEncoder(w).Encode(map[string]string{"amount": s})
	case config.OutputYAML:
		return yaml.NewEncoder(w).Encode(map[string]string{"amount": s})
	default:
		_, err = fmt.Fprintln(w, s)
		return err
	}
}

func amountFlag(flags *pflag.FlagSet, name string) (auction.Amount, error) {
	text, err := flags.GetString(name)
	if err != nil {
		return auction.Amount{}, err
	}
	if text == "" {
		return auction.Amount{}, fmt.Errorf("flag --%v is required", name)
	}
	amount, err := auction.ParseAmount(text)
	if err != nil {
		return auction.Amount{}, fmt.Errorf("flag --%v: %w", name, err)
	}
	return amount, nil
}

func uintFlag(flags *pflag.FlagSet, name string) (uint256.Int, error) {
	amount, err := amountFlag(flags, name)
	if err != nil {
		return uint256.Int{}, err
	}
	return *amount.Uint256(), nil
}

// windowFlags reads --elapsed, --remaining and --duration.
func windowFlags(flags *pflag.FlagSet) (elapsed, remaining, duration uint256.Int, err error) {
	if elapsed, err = uintFlag(flags, "elapsed"); err != nil {
		return
	}
	if remaining, err = uintFlag(flags, "remaining"); err != nil {
		return
	}
	duration, err = uintFlag(flags, "duration")
	return
}

func addWindowFlags(flags *pflag.FlagSet) {
	flags.String("elapsed", "", "Time elapsed since the start of the window")
	flags.String("remaining", "", "Time remaining until the end of the window")
	flags.String("duration", "", "Length of the window")
	flags.Bool("round-up", false, "Round the interpolated amount up")
}
