package main

import (
	"testing"
	"time"
)

func TestApplyGuess(t *testing.T) {
	tests := []struct {
		name       string
		leftIsReal bool
		pickedLeft bool
		correct    bool
		score      float64
	}{
		{"left real, picked left", true, true, true, 1.0},
		{"left real, picked right", true, false, false, -0.5},
		{"right real, picked right", false, false, true, 1.0},
		{"right real, picked left", false, true, false, -0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := newSession(ModeSameCategory, time.Minute)

			got, correct := start.ApplyGuess(tt.pickedLeft, Round{LeftIsReal: tt.leftIsReal})
			if correct != tt.correct {
				t.Fatalf("correct = %t, want %t", correct, tt.correct)
			}
			if got.Score != tt.score {
				t.Fatalf("score = %v, want %v", got.Score, tt.score)
			}
			if got.RoundIndex != 1 {
				t.Fatalf("round index = %d, want 1", got.RoundIndex)
			}
			if start.Score != 0 || start.RoundIndex != 0 {
				t.Fatalf("receiver changed: %+v", start)
			}
		})
	}
}

func TestApplySkip(t *testing.T) {
	s := Session{Score: 2.5, RoundIndex: 3}

	got := s.ApplySkip()
	if got.Score != 2.5 {
		t.Fatalf("score = %v, want 2.5", got.Score)
	}
	if got.RoundIndex != 4 {
		t.Fatalf("round index = %d, want 4", got.RoundIndex)
	}
}

func TestScoreHasNoFloor(t *testing.T) {
	s := newSession(ModeCrossCategory, time.Minute)
	r := Round{LeftIsReal: true}

	for range 3 {
		s, _ = s.ApplyGuess(false, r)
	}

	if s.Score != -1.5 {
		t.Fatalf("score = %v, want -1.5", s.Score)
	}
}

func TestNewSession(t *testing.T) {
	a := newSession(ModeSameCategory, 45*time.Second)
	b := newSession(ModeSameCategory, 45*time.Second)

	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("session ids = %q, %q, want distinct non-empty", a.ID, b.ID)
	}
	if a.TimeRemaining != 45*time.Second {
		t.Fatalf("time remaining = %s, want 45s", a.TimeRemaining)
	}
	if a.Score != 0 || a.RoundIndex != 0 {
		t.Fatalf("new session not zeroed: %+v", a)
	}
}
