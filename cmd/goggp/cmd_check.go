package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gitrdm/goggp/internal/games"
	"github.com/gitrdm/goggp/pkg/propnet"
	"github.com/gitrdm/goggp/pkg/statemachine"
)

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "List the bundled games",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range games.Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check GAME",
	Short: "Validate a game and compile it into a propnet",
	Long: `Parses the rules, checks arities and stratification, builds the prover
backend and compiles the propnet. Prints the roles, the initial state and the
network statistics.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	db, err := games.Resolve(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "rules:      %d\n", db.Len())

	opts := machineOptions()
	sm, err := statemachine.NewProverMachine(db, opts)
	if err != nil {
		return err
	}
	roles := make([]string, 0, len(sm.Roles()))
	for _, r := range sm.Roles() {
		roles = append(roles, r.String())
	}
	fmt.Fprintf(out, "roles:      %s\n", strings.Join(roles, " "))
	fmt.Fprintf(out, "initial:    %s\n", sm.InitialState())

	start := time.Now()
	pn, err := propnet.Compile(db, sm.Roles(),
		propnet.WithLogger(logger),
		propnet.WithMaxPropositions(opts.MaxPropositions))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "propnet:    %s\n", pn.Stats())
	fmt.Fprintf(out, "compiled in %s\n", time.Since(start).Round(time.Microsecond))
	return nil
}
