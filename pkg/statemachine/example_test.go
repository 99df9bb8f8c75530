package statemachine_test

import (
	"fmt"

	"github.com/gitrdm/goggp/internal/games"
	"github.com/gitrdm/goggp/pkg/game"
	"github.com/gitrdm/goggp/pkg/gdl"
	"github.com/gitrdm/goggp/pkg/statemachine"
)

// ExampleNew solves buttons and lights with the compiled backend.
func ExampleNew() {
	sm, err := statemachine.New(games.MustLoad(games.Buttons), statemachine.Options{
		Backend: statemachine.BackendPropnet,
	})
	if err != nil {
		panic(err)
	}
	robot := sm.Roles()[0]

	st := sm.InitialState()
	moves, _ := sm.LegalMoves(st, robot)
	fmt.Println(moves)

	for _, name := range []string{"a", "b", "c", "a", "b", "a"} {
		mv := game.NewMove(gdl.NewConstant(name))
		if st, err = sm.NextState(st, game.JointMove{robot: mv}); err != nil {
			panic(err)
		}
	}
	terminal, _ := sm.IsTerminal(st)
	goal, _ := sm.Goal(st, robot)
	fmt.Println(st)
	fmt.Println(terminal, goal)
	// Output:
	// [a b c]
	// {(true (on p)) (true (on q)) (true (on r)) (true (step 7))}
	// true 100
}

// ExampleLegalJointMoves lists the simultaneous openings of rock paper scissors.
func ExampleLegalJointMoves() {
	sm, err := statemachine.New(games.MustLoad(games.RPS), statemachine.Options{
		Backend: statemachine.BackendProver,
	})
	if err != nil {
		panic(err)
	}
	joint, err := statemachine.LegalJointMoves(sm, sm.InitialState())
	if err != nil {
		panic(err)
	}
	left, right := sm.Roles()[0], sm.Roles()[1]
	for _, jm := range joint[:3] {
		fmt.Println(jm[left], jm[right])
	}
	fmt.Println(len(joint))
	// Output:
	// paper paper
	// paper rock
	// paper scissors
	// 9
}
