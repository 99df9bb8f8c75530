package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gitrdm/goggp/internal/simulate"
	"github.com/gitrdm/goggp/pkg/statemachine"
)

var (
	verifyWalks    int
	verifyMaxSteps int
	verifySeed     uint64
)

var verifyCmd = &cobra.Command{
	Use:   "verify GAME",
	Short: "Check that the prover and propnet backends agree",
	Long: `Walks the game tree at random and compares both backends on every visited
state: terminality, goals, legal moves and the successor of every legal joint
move. Exits non-zero on the first disagreement.`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().IntVar(&verifyWalks, "walks", 20, "Number of random walks")
	verifyCmd.Flags().IntVar(&verifyMaxSteps, "max-steps", 0, "Steps per walk (0 = config value)")
	verifyCmd.Flags().Uint64Var(&verifySeed, "seed", 0, "Random seed (0 = config value)")
}

func runVerify(cmd *cobra.Command, args []string) error {
	machines := simulate.NewMachines(machineOptions(), nil)
	p, err := machines.Get(args[0], statemachine.BackendProver)
	if err != nil {
		return err
	}
	n, err := machines.Get(args[0], statemachine.BackendPropnet)
	if err != nil {
		return err
	}
	opts := simulate.VerifyOptions{
		Walks:    verifyWalks,
		Workers:  cfg.Simulation.Workers,
		MaxSteps: cfg.Simulation.MaxSteps,
		Seed:     cfg.Simulation.Seed,
		Logger:   logger,
	}
	if verifyMaxSteps > 0 {
		opts.MaxSteps = verifyMaxSteps
	}
	if verifySeed != 0 {
		opts.Seed = verifySeed
	}
	if err := simulate.Verify(cmd.Context(), p, n, opts); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: backends agree on %d walks\n", args[0], opts.Walks)
	return nil
}
