package game

import (
	"log"
	"math/rand"

	"github.com/yallagames/kedhba/internal/protocol"
)

// nextChooser draws the round's topic chooser from the rotation pool.
// The pool is a shuffled copy of the roster that refills only when it
// runs dry, so nobody chooses twice before everyone has chosen once.
// Lock held.
func (r *Room) nextChooser() *Player {
	for {
		if len(r.chooserPool) == 0 {
			r.refillChooserPool()
			if len(r.chooserPool) == 0 {
				return nil
			}
		}

		id := r.chooserPool[0]
		r.chooserPool = r.chooserPool[1:]

		// The drawn player may have left since the pool was filled.
		if p := r.playerByID(id); p != nil && p.Online {
			return p
		}
	}
}

func (r *Room) refillChooserPool() {
	ids := make([]string, 0, len(r.players))
	for _, p := range r.players {
		if p.Online {
			ids = append(ids, p.ID)
		}
	}
	rand.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
	r.chooserPool = ids
}

// redrawChooser replaces a chooser who left mid-pick. The round number
// stays put; only the seat changes. Lock held.
func (r *Room) redrawChooser() {
	chooser := r.nextChooser()
	if chooser == nil {
		return
	}
	r.round.chooserID = chooser.ID
	r.broadcast(protocol.MustNewMessage(protocol.MsgChooseTopicPhase, r.topicSnapshot()))
	log.Printf("🎯 room %s redrew chooser: %s", r.Code, chooser.Name)
}
