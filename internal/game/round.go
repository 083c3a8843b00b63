package game

import (
	"log"
	"math/rand"
	"strconv"
	"time"

	"github.com/yallagames/kedhba/internal/protocol"
	"github.com/yallagames/kedhba/internal/question"
	"github.com/yallagames/kedhba/internal/text"
)

// roundData is replaced wholesale each round.
type roundData struct {
	question    question.Question
	questionKey string
	chooserID   string
	answers     map[string]string // player id -> raw lie text
	normalized  map[string]string // player id -> normalized lie
	votes       map[string]string // player id -> option id
	options     []voteOption
	startedAt   time.Time // current phase start, for reconnect countdowns
	budget      int       // seconds for the running phase
}

// voteOption keeps authorship server side; only ID and Text ever reach
// clients.
type voteOption struct {
	ID      string
	Text    string
	OwnerID string // empty for the truth entry
	IsTruth bool
}

// placeholderLies back-fill for players who ran out the clock without
// getting ejected, so the round can still be voted on.
var placeholderLies = []string{
	"نسيت الإجابة من كثر الضحك",
	"اسألوا جارنا أبو صالح",
	"الجواب راح مع الواي فاي",
	"مخي علق، جرب لاحقا",
	"إجابة سرية للغاية",
}

// StartGame begins the first round. Private rooms are host-gated;
// public rooms require the full ready-quorum.
func (r *Room) StartGame(actorID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhaseLobby {
		return ErrWrongPhase
	}
	if err := r.advanceGate(actorID); err != nil {
		return err
	}
	if len(r.players) < 2 {
		return ErrNotEnough
	}

	r.chooserPool = nil // fresh rotation each game
	r.startTopicPhase()
	return nil
}

// Ready toggles the actor's ready flag in public rooms. When the whole
// roster is ready the game starts (lobby) or the next round begins
// (results), replacing host-driven advancement.
func (r *Room) Ready(actorID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.IsPublic {
		return ErrWrongPhase
	}
	if r.playerByID(actorID) == nil {
		return ErrNotInRoom
	}
	if r.phase != PhaseLobby && r.phase != PhaseResults && r.phase != PhaseGameOver {
		return ErrWrongPhase
	}

	r.ready[actorID] = !r.ready[actorID]
	r.broadcastLobby()

	if !r.quorumReady() {
		return nil
	}

	switch r.phase {
	case PhaseLobby:
		if len(r.players) >= 2 {
			r.chooserPool = nil
			r.startTopicPhase()
		}
	case PhaseResults:
		r.nextStep()
	case PhaseGameOver:
		r.restart()
	}
	return nil
}

// quorumReady reports whether every online player has signalled ready.
func (r *Room) quorumReady() bool {
	n := 0
	for _, p := range r.players {
		if !p.Online {
			continue
		}
		if !r.ready[p.ID] {
			return false
		}
		n++
	}
	return n > 0
}

// advanceGate authorizes lobby/results advancement: the host in
// private rooms, the ready-quorum in public ones.
func (r *Room) advanceGate(actorID string) error {
	if r.IsPublic {
		if !r.quorumReady() {
			return ErrNotHost
		}
		return nil
	}
	if actorID != r.hostID {
		return ErrNotHost
	}
	return nil
}

// startTopicPhase opens a new round with a freshly drawn chooser.
func (r *Room) startTopicPhase() {
	r.stopTimer()
	r.phase = PhasePickingTopic
	r.currentRound++
	r.ready = make(map[string]bool)

	chooser := r.nextChooser()
	if chooser == nil {
		// Nobody left to choose; the sweep will collect the room.
		return
	}

	r.round = &roundData{
		chooserID:  chooser.ID,
		answers:    make(map[string]string),
		normalized: make(map[string]string),
		votes:      make(map[string]string),
		startedAt:  time.Now(),
	}

	r.broadcast(protocol.MustNewMessage(protocol.MsgChooseTopicPhase, r.topicSnapshot()))
	log.Printf("🎯 room %s round %d/%d, chooser %s", r.Code, r.currentRound, r.settings.Rounds, chooser.Name)
}

func (r *Room) topicSnapshot() protocol.ChooseTopicPhasePayload {
	chooserName := ""
	if p := r.playerByID(r.round.chooserID); p != nil {
		chooserName = p.Name
	}
	return protocol.ChooseTopicPhasePayload{
		ChooserID:   r.round.chooserID,
		ChooserName: chooserName,
		Topics:      r.settings.Topics,
		Round:       r.currentRound,
		TotalRounds: r.settings.Rounds,
	}
}

// SelectTopic is chooser-only; an unrecognized topic falls back to the
// default category inside the catalog.
func (r *Room) SelectTopic(actorID, topic string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhasePickingTopic {
		return ErrWrongPhase
	}
	if r.round == nil || actorID != r.round.chooserID {
		return ErrNotChooser
	}

	r.startInputPhase(topic)
	return nil
}

func (r *Room) startInputPhase(topic string) {
	q, key := r.catalog.Pick(topic, r.usedQs)
	r.usedQs[key] = true

	r.phase = PhaseInput
	r.round.question = q
	r.round.questionKey = key
	r.round.answers = make(map[string]string)
	r.round.normalized = make(map[string]string)
	r.round.startedAt = time.Now()
	r.round.budget = r.settings.Seconds

	r.broadcast(protocol.MustNewMessage(protocol.MsgStartRound, protocol.StartRoundPayload{
		Question:  q.Prompt,
		InputType: "text",
		Time:      r.round.budget,
		StartTime: r.round.startedAt.UnixMilli(),
	}))

	// One extra second absorbs network latency so a submission sent
	// at the buzzer still lands.
	r.scheduleTimer(time.Duration(r.round.budget+1)*time.Second, PhaseInput, r.handleInputTimeout)
}

// SubmitAnswer records a player's lie. Writing the truth, or a lie
// someone already wrote, is bounced back to the sender only.
func (r *Room) SubmitAnswer(actorID, answer string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhaseInput {
		return ErrWrongPhase
	}
	p := r.playerByID(actorID)
	if p == nil {
		return ErrNotInRoom
	}
	if _, done := r.round.answers[actorID]; done {
		return ErrAlreadyDone
	}

	norm := text.Normalize(answer)
	if norm == "" {
		return ErrBadSelection
	}
	if norm == text.Normalize(r.round.question.Truth) {
		return ErrTruthWritten
	}
	for _, other := range r.round.normalized {
		if norm == other {
			return ErrLieTaken
		}
	}

	r.round.answers[actorID] = answer
	r.round.normalized[actorID] = norm
	p.Strikes = 0

	p.send(protocol.MustNewMessage(protocol.MsgWaitForOthers, nil))
	r.broadcast(protocol.MustNewMessage(protocol.MsgPlayerDone, protocol.PlayerDonePayload{PlayerID: actorID}))

	if r.allAnswered() {
		r.startVotingPhase()
	}
	return nil
}

// handleInputTimeout is the input-phase degradation path: strike the
// silent players, eject the repeat offenders, back-fill the rest.
func (r *Room) handleInputTimeout() {
	var ejected []string
	for _, p := range r.players {
		if _, ok := r.round.answers[p.ID]; ok {
			continue
		}
		p.Strikes++
		if p.Strikes >= r.cfg.AFKStrikeLimit {
			ejected = append(ejected, p.ID)
			continue
		}
		lie := placeholderLies[rand.Intn(len(placeholderLies))]
		r.round.answers[p.ID] = lie
		r.round.normalized[p.ID] = text.Normalize(lie)
	}

	for _, id := range ejected {
		r.removePlayer(id, RemoveAFK)
	}

	// removePlayer may already have advanced the phase via its
	// completion check.
	if r.phase == PhaseInput {
		r.startVotingPhase()
	}
}

func (r *Room) startVotingPhase() {
	r.stopTimer()
	r.phase = PhaseVoting

	options := []voteOption{{ID: "o0", Text: r.round.question.Truth, IsTruth: true}}
	for _, p := range r.players {
		if lie, ok := r.round.answers[p.ID]; ok {
			options = append(options, voteOption{Text: lie, OwnerID: p.ID})
		}
	}
	rand.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	// Opaque ids assigned after the shuffle so position reveals
	// nothing either.
	for i := range options {
		options[i].ID = "o" + strconv.Itoa(i+1)
	}

	r.round.options = options
	r.round.votes = make(map[string]string)
	r.round.startedAt = time.Now()
	r.round.budget = min(r.settings.Seconds, r.cfg.MaxVotingSecs)

	r.broadcast(protocol.MustNewMessage(protocol.MsgVotingPhase, protocol.VotingPhasePayload{
		Options:   r.publicOptions(),
		Time:      r.round.budget,
		StartTime: r.round.startedAt.UnixMilli(),
	}))

	r.scheduleTimer(time.Duration(r.round.budget+1)*time.Second, PhaseVoting, r.computeResults)
}

// publicOptions strips authorship before anything leaves the server.
func (r *Room) publicOptions() []protocol.VoteOption {
	out := make([]protocol.VoteOption, len(r.round.options))
	for i, o := range r.round.options {
		out[i] = protocol.VoteOption{ID: o.ID, Text: o.Text}
	}
	return out
}

func (r *Room) optionByID(id string) *voteOption {
	for i := range r.round.options {
		if r.round.options[i].ID == id {
			return &r.round.options[i]
		}
	}
	return nil
}

// SubmitVote records a vote. One per player, no self-votes, and the
// choice itself is never broadcast.
func (r *Room) SubmitVote(actorID, choiceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhaseVoting {
		return ErrWrongPhase
	}
	if r.playerByID(actorID) == nil {
		return ErrNotInRoom
	}
	if _, done := r.round.votes[actorID]; done {
		return ErrAlreadyDone
	}

	opt := r.optionByID(choiceID)
	if opt == nil {
		return ErrBadSelection
	}
	if opt.OwnerID == actorID {
		return ErrSelfVote
	}

	r.round.votes[actorID] = choiceID
	r.broadcast(protocol.MustNewMessage(protocol.MsgPlayerVoted, protocol.PlayerVotedPayload{PlayerID: actorID}))

	if r.allVoted() {
		r.computeResults()
	}
	return nil
}

// computeResults tallies whatever votes exist and opens the results
// phase. A scoring panic is contained to this room: it is logged and
// surfaced as a generic notice, never a process crash.
func (r *Room) computeResults() {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("🔥 result computation panicked in room %s: %v", r.Code, rec)
			r.broadcast(protocol.NewErrorMessage(protocol.ErrCodeInternalError))
		}
	}()

	r.stopTimer()
	r.phase = PhaseResults
	r.ready = make(map[string]bool)
	r.round.startedAt = time.Now()
	r.round.budget = r.cfg.ResultsSeconds

	r.scoreVotes()

	isFinal := r.currentRound >= r.settings.Rounds
	r.broadcast(protocol.MustNewMessage(protocol.MsgShowResults, r.resultsSnapshot(isFinal)))

	if r.recorder != nil && isFinal {
		r.recordScores()
	}

	// Hostless rooms cannot rely on a host clicking through, so the
	// results screen advances itself when the budget runs out.
	if r.IsPublic {
		r.scheduleTimer(time.Duration(r.round.budget)*time.Second, PhaseResults, r.nextStep)
	}

	log.Printf("📊 room %s round %d results (final=%v)", r.Code, r.currentRound, isFinal)
}

// scoreVotes applies the additive rule once per recorded vote: truth
// finders gain 2, a believed lie earns its owner 1. Self-votes were
// rejected at submission, so the scorer does not re-check them.
func (r *Room) scoreVotes() {
	for _, p := range r.players {
		p.LastPoints = 0
	}

	for voterID, choiceID := range r.round.votes {
		voter := r.playerByID(voterID)
		opt := r.optionByID(choiceID)
		if opt == nil {
			continue
		}

		if opt.IsTruth {
			if voter != nil {
				voter.Score += 2
				voter.LastPoints += 2
			}
			continue
		}

		if owner := r.playerByID(opt.OwnerID); owner != nil && opt.OwnerID != voterID {
			owner.Score += 1
			owner.LastPoints += 1
		}
	}
}

func (r *Room) resultsSnapshot(isFinal bool) protocol.ShowResultsPayload {
	return protocol.ShowResultsPayload{
		Truth:       r.round.question.Truth,
		Leaderboard: r.leaderboard(),
		IsFinal:     isFinal,
		HostID:      r.hostID,
		Time:        r.round.budget,
		StartTime:   r.round.startedAt.UnixMilli(),
	}
}

// NextStep advances past results: next round, or the gameover summary
// after the final round.
func (r *Room) NextStep(actorID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhaseResults {
		return ErrWrongPhase
	}
	if err := r.advanceGate(actorID); err != nil {
		return err
	}

	r.nextStep()
	return nil
}

func (r *Room) nextStep() {
	if r.currentRound >= r.settings.Rounds {
		r.finishGame()
		return
	}
	r.startTopicPhase()
}

// finishGame computes winner and loser. Score ties resolve to the
// earlier joiner, deliberately, so the outcome is deterministic.
func (r *Room) finishGame() {
	r.stopTimer()
	r.phase = PhaseGameOver
	r.ready = make(map[string]bool)

	if len(r.players) == 0 {
		return
	}

	winner, loser := r.players[0], r.players[0]
	for _, p := range r.players[1:] {
		if p.Score > winner.Score {
			winner = p
		}
		if p.Score < loser.Score {
			loser = p
		}
	}

	r.broadcast(protocol.MustNewMessage(protocol.MsgGameOver, protocol.GameOverPayload{
		Winner:      winner.Info(),
		Loser:       loser.Info(),
		Leaderboard: r.leaderboard(),
		HostID:      r.hostID,
	}))

	log.Printf("🏆 room %s game over, winner %s (%d pts)", r.Code, winner.Name, winner.Score)
}

// recordScores pushes final standings to the lifetime leaderboard
// without blocking the room.
func (r *Room) recordScores() {
	top := -1
	for _, p := range r.players {
		if p.Score > top {
			top = p.Score
		}
	}
	for _, p := range r.players {
		go r.recorder.RecordGame(p.Name, p.Score, p.Score == top)
	}
}

// Restart resets scores and the round counter back to the lobby.
func (r *Room) Restart(actorID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.advanceGate(actorID); err != nil {
		return err
	}

	r.restart()
	return nil
}

func (r *Room) restart() {
	r.stopTimer()
	r.phase = PhaseLobby
	r.currentRound = 0
	r.round = nil
	r.usedQs = make(map[string]bool)
	r.chooserPool = nil
	r.ready = make(map[string]bool)
	for _, p := range r.players {
		p.Score = 0
		p.LastPoints = 0
		p.Strikes = 0
	}

	r.broadcastLobby()
	log.Printf("🔁 room %s restarted", r.Code)
}

// --- completion checks (lock held) ---

// allAnswered reports whether every online player has an answer on
// file. Offline seats don't block the round; the timer and the AFK
// ladder deal with them.
func (r *Room) allAnswered() bool {
	n := 0
	for _, p := range r.players {
		if !p.Online {
			continue
		}
		if _, ok := r.round.answers[p.ID]; !ok {
			return false
		}
		n++
	}
	return n > 0
}

func (r *Room) allVoted() bool {
	n := 0
	for _, p := range r.players {
		if !p.Online {
			continue
		}
		if _, ok := r.round.votes[p.ID]; !ok {
			return false
		}
		n++
	}
	return n > 0
}

// checkPhaseCompletion re-runs the all-in checks after a departure: the
// player everyone was waiting on may just have gone.
func (r *Room) checkPhaseCompletion() {
	if r.round == nil {
		return
	}
	switch r.phase {
	case PhaseInput:
		if r.allAnswered() {
			r.startVotingPhase()
		}
	case PhaseVoting:
		if r.allVoted() {
			r.computeResults()
		}
	}
}
