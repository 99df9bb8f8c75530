package main

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gitrdm/goggp/internal/games"
	"github.com/gitrdm/goggp/pkg/game"
	"github.com/gitrdm/goggp/pkg/statemachine"
)

var (
	playSeed     uint64
	playMaxSteps int
)

var playCmd = &cobra.Command{
	Use:   "play GAME",
	Short: "Play one random match and print every step",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlay,
}

func init() {
	playCmd.Flags().Uint64Var(&playSeed, "seed", 1, "Random seed")
	playCmd.Flags().IntVar(&playMaxSteps, "max-steps", 0, "Stop after this many steps (0 = config value)")
}

func runPlay(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	db, err := games.Resolve(args[0])
	if err != nil {
		return err
	}
	sm, err := statemachine.New(db, machineOptions())
	if err != nil {
		return err
	}
	maxSteps := playMaxSteps
	if maxSteps == 0 {
		maxSteps = cfg.Simulation.MaxSteps
	}

	rng := rand.New(rand.NewPCG(playSeed, 0))
	st := sm.InitialState()
	fmt.Fprintf(out, "0: %s\n", st)
	for step := 1; ; step++ {
		terminal, err := sm.IsTerminal(st)
		if err != nil {
			return err
		}
		if terminal {
			break
		}
		if maxSteps > 0 && step > maxSteps {
			return fmt.Errorf("%w (%d)", statemachine.ErrPlayoutTooLong, maxSteps)
		}
		jm, err := statemachine.RandomJointMove(sm, st, rng)
		if err != nil {
			return err
		}
		if st, err = sm.NextState(st, jm); err != nil {
			return err
		}
		fmt.Fprintf(out, "%d: %s -> %s\n", step, formatJointMove(sm.Roles(), jm), st)
	}

	goals, err := statemachine.Goals(sm, st)
	if err != nil {
		return err
	}
	parts := make([]string, len(goals))
	for i, r := range sm.Roles() {
		parts[i] = fmt.Sprintf("%s=%d", r, goals[i])
	}
	fmt.Fprintf(out, "goals: %s\n", strings.Join(parts, " "))
	return nil
}

func formatJointMove(roles []game.Role, jm game.JointMove) string {
	parts := make([]string, 0, len(roles))
	for _, r := range roles {
		parts = append(parts, r.String()+":"+jm[r].String())
	}
	return strings.Join(parts, " ")
}
