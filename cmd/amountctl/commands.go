package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/govalues/auction"
	"github.com/govalues/auction/internal/batch"
)

func newLocateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locate",
		Short: "Interpolate between a start and an end amount",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			start, err := amountFlag(flags, "start")
			if err != nil {
				return err
			}
			end, err := amountFlag(flags, "end")
			if err != nil {
				return err
			}
			elapsed, remaining, duration, err := windowFlags(flags)
			if err != nil {
				return err
			}
			roundUp, _ := flags.GetBool("round-up")
			amount, err := auction.LocateCurrentAmount(start, end, elapsed, remaining, duration, roundUp)
			if err != nil {
				return err
			}
			a.logger.Debug("amount_located", zap.Stringer("amount", amount))
			return a.writeAmount(cmd.OutOrStdout(), amount)
		},
	}
	cmd.Flags().String("start", "", "Amount at the start of the window")
	cmd.Flags().String("end", "", "Amount at the end of the window")
	addWindowFlags(cmd.Flags())
	return cmd
}

func newFractionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fraction",
		Short: "Apply an exact fraction to an amount",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			numerator, err := uintFlag(flags, "numerator")
			if err != nil {
				return err
			}
			denominator, err := uintFlag(flags, "denominator")
			if err != nil {
				return err
			}
			value, err := amountFlag(flags, "value")
			if err != nil {
				return err
			}
			amount, err := auction.GetFraction(numerator, denominator, value)
			if err != nil {
				return err
			}
			a.logger.Debug("fraction_applied", zap.Stringer("amount", amount))
			return a.writeAmount(cmd.OutOrStdout(), amount)
		},
	}
	cmd.Flags().String("numerator", "", "Numerator of the fraction")
	cmd.Flags().String("denominator", "", "Denominator of the fraction")
	cmd.Flags().String("value", "", "Amount to take the fraction of")
	return cmd
}

func newApplyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Compute the amount owed for a partial fill at a point of the window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			start, err := amountFlag(flags, "start")
			if err != nil {
				return err
			}
			end, err := amountFlag(flags, "end")
			if err != nil {
				return err
			}
			var spec auction.FractionSpec
			if spec.Numerator, err = uintFlag(flags, "numerator"); err != nil {
				return err
			}
			if spec.Denominator, err = uintFlag(flags, "denominator"); err != nil {
				return err
			}
			if spec.Elapsed, spec.Remaining, spec.Duration, err = windowFlags(flags); err != nil {
				return err
			}
			if validate, _ := flags.GetBool("validate"); validate {
				if err := spec.Validate(); err != nil {
					return err
				}
			}
			roundUp, _ := flags.GetBool("round-up")
			amount, err := auction.ApplyFraction(start, end, spec, roundUp)
			if err != nil {
				return err
			}
			a.logger.Debug("fraction_applied", zap.Stringer("spec", spec), zap.Stringer("amount", amount))
			return a.writeAmount(cmd.OutOrStdout(), amount)
		},
	}
	cmd.Flags().String("start", "", "Amount at the start of the window")
	cmd.Flags().String("end", "", "Amount at the end of the window")
	cmd.Flags().String("numerator", "", "Numerator of the filled fraction")
	cmd.Flags().String("denominator", "", "Denominator of the filled fraction")
	cmd.Flags().Bool("validate", false, "Reject specs that break the order lifecycle rules")
	addWindowFlags(cmd.Flags())
	return cmd
}

func newBatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "batch FILE",
		Short: "Evaluate a YAML sheet of fills (use - for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			sheet, err := batch.Load(in)
			if err != nil {
				return fmt.Errorf("loading %v: %w", args[0], err)
			}
			results := batch.Evaluate(sheet, a.logger)
			if err := results.Write(cmd.OutOrStdout(), a.cfg.Output, a.cfg.Scale); err != nil {
				return err
			}
			if n := results.Failed(); n > 0 {
				return fmt.Errorf("%d of %d fills failed", n, len(results))
			}
			return nil
		},
	}
}
