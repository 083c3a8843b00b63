package game

import (
	"encoding/json"
	"log"
	"time"

	"github.com/yallagames/kedhba/internal/protocol"
)

// Rejoin reattaches a returning player by display name. The surviving
// Player record keeps its id, score, answer and vote; only the
// connection alias is rebound. A name with no offline seat falls back
// to a fresh lobby join, so a stale client can't usurp a live one.
func (r *Room) Rejoin(connID string, conn Sender, name string, avatar, social json.RawMessage) (*Player, *protocol.RejoinSuccessPayload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.playerByName(name)
	if p == nil || p.Online {
		joined, err := r.join(connID, conn, name, avatar, social)
		if err != nil {
			return nil, nil, err
		}
		snapshot := r.rejoinSnapshot(joined)
		return joined, &snapshot, nil
	}

	p.ConnID = connID
	p.Conn = conn
	p.Online = true
	r.markPresence()

	// A host who timed out of the seat gets it back if it is vacant
	// or was passed to cover the absence.
	if r.hostID == "" && !r.IsPublic {
		r.handoffHost()
	}

	// Future rounds include the returnee again.
	if r.round != nil && !r.inChooserPool(p.ID) {
		r.chooserPool = append(r.chooserPool, p.ID)
	}

	// The pick has no deadline, so an offline chooser seat left over
	// from an all-offline stretch would stall the room.
	if r.phase == PhasePickingTopic && r.round != nil {
		if c := r.playerByID(r.round.chooserID); c == nil || !c.Online {
			r.redrawChooser()
		}
	}

	snapshot := r.rejoinSnapshot(p)
	r.broadcastLobby()
	log.Printf("🔌 player %s reconnected to room %s (%s)", p.Name, r.Code, r.phase)

	return p, &snapshot, nil
}

func (r *Room) inChooserPool(id string) bool {
	for _, pid := range r.chooserPool {
		if pid == id {
			return true
		}
	}
	return false
}

// rejoinSnapshot assembles the phase-appropriate resync payload.
// Lock held.
func (r *Room) rejoinSnapshot(p *Player) protocol.RejoinSuccessPayload {
	out := protocol.RejoinSuccessPayload{
		Code:      r.Code,
		PlayerID:  p.ID,
		Name:      p.Name,
		IsHost:    p.IsHost,
		Players:   r.playersInfo(),
		GameState: r.phase.String(),
	}

	if r.round == nil {
		return out
	}

	switch r.phase {
	case PhasePickingTopic:
		snap := r.topicSnapshot()
		out.TopicData = &snap

	case PhaseInput:
		out.QuestionData = &protocol.StartRoundPayload{
			Question:  r.round.question.Prompt,
			InputType: "text",
			Time:      r.round.budget,
			StartTime: r.round.startedAt.UnixMilli(),
		}
		_, out.HasAnswered = r.round.answers[p.ID]
		out.DoneIDs = keysOf(r.round.answers)
		out.RemainingSeconds = r.remainingSeconds()

	case PhaseVoting:
		out.VoteOptions = r.publicOptions()
		_, out.HasVoted = r.round.votes[p.ID]
		out.VotedIDs = keysOf(r.round.votes)
		out.RemainingSeconds = r.remainingSeconds()

	case PhaseResults:
		snap := r.resultsSnapshot(r.currentRound >= r.settings.Rounds)
		out.ResultData = &snap
	}

	return out
}

// remainingSeconds recomputes the countdown from the phase start, so a
// reconnect never resets a timer. Never negative.
func (r *Room) remainingSeconds() int {
	elapsed := int(time.Since(r.round.startedAt) / time.Second)
	if left := r.round.budget - elapsed; left > 0 {
		return left
	}
	return 0
}

func keysOf(m map[string]string) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	return ids
}
