package game

import "log"

// VoteKick registers a ballot against the target. A strict majority of
// the current online roster ejects them; ballots are idempotent per
// voter and die with either party's departure.
func (r *Room) VoteKick(actorID, targetID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if actorID == targetID {
		return ErrSelfVote
	}
	if r.playerByID(actorID) == nil {
		return ErrNotInRoom
	}
	target := r.playerByID(targetID)
	if target == nil {
		return ErrNotInRoom
	}

	ballots := r.kickBallots[targetID]
	if ballots == nil {
		ballots = make(map[string]bool)
		r.kickBallots[targetID] = ballots
	}
	ballots[actorID] = true

	needed := r.onlineCount()/2 + 1
	log.Printf("🗳️ room %s kick vote on %s: %d/%d", r.Code, target.Name, len(ballots), needed)

	if len(ballots) >= needed {
		delete(r.kickBallots, targetID)
		r.removePlayer(targetID, RemoveKicked)
	}
	return nil
}

// pruneBallots erases the player's ballot box and their votes in every
// other box. Lock held.
func (r *Room) pruneBallots(playerID string) {
	delete(r.kickBallots, playerID)
	for _, ballots := range r.kickBallots {
		delete(ballots, playerID)
	}
}
