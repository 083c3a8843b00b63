package game

// Phase is a room's stage in the fixed round lifecycle.
type Phase string

const (
	PhaseLobby        Phase = "lobby"
	PhasePickingTopic Phase = "picking_topic"
	PhaseInput        Phase = "input"
	PhaseVoting       Phase = "voting"
	PhaseResults      Phase = "results"
	PhaseGameOver     Phase = "gameover"
)

func (p Phase) String() string {
	return string(p)
}

// validTransitions is the closed transition table. Restart is the one
// edge allowed from anywhere, handled separately.
var validTransitions = map[Phase][]Phase{
	PhaseLobby:        {PhasePickingTopic},
	PhasePickingTopic: {PhaseInput},
	PhaseInput:        {PhaseVoting},
	PhaseVoting:       {PhaseResults},
	PhaseResults:      {PhasePickingTopic, PhaseGameOver},
	PhaseGameOver:     {PhaseLobby},
}

// CanTransitionTo reports whether the lifecycle permits moving from p
// to target.
func (p Phase) CanTransitionTo(target Phase) bool {
	for _, next := range validTransitions[p] {
		if next == target {
			return true
		}
	}
	return false
}
