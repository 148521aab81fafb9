package main

import (
	"time"

	"github.com/google/uuid"
)

const (
	correctReward    = 1.0
	incorrectPenalty = 0.5
)

// Session is one timed play-through. It is a plain value: every scoring
// operation returns the updated copy and leaves the receiver untouched.
// Score has no floor or ceiling.
type Session struct {
	ID            string
	Mode          Mode
	Score         float64
	RoundIndex    int
	TimeRemaining time.Duration
	StartedAt     time.Time
}

func newSession(mode Mode, length time.Duration) Session {
	return Session{
		ID:            uuid.NewString(),
		Mode:          mode,
		TimeRemaining: length,
	}
}

// ApplyGuess scores a left or right pick against the round's ground truth
// and advances to the next round index.
func (s Session) ApplyGuess(pickedLeft bool, r Round) (Session, bool) {
	correct := pickedLeft == r.LeftIsReal
	if correct {
		s.Score += correctReward
	} else {
		s.Score -= incorrectPenalty
	}
	s.RoundIndex++

	return s, correct
}

// ApplySkip advances to the next round index without touching the score.
func (s Session) ApplySkip() Session {
	s.RoundIndex++

	return s
}
