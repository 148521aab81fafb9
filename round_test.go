package main

import (
	"math/rand/v2"
	"strings"
	"testing"
)

func TestNextRoundSameCategory(t *testing.T) {
	ds := testDataset(t, "cats", "dogs", "owls")
	rng := rand.New(rand.NewPCG(1, 2))

	leftReal, rightReal := 0, 0
	for range 500 {
		r := nextRound(ds, ModeSameCategory, rng)

		if r.Real().Category != r.Fake().Category {
			t.Fatalf("same-category round mixed %s and %s", r.Real().Category, r.Fake().Category)
		}
		if !strings.HasPrefix(r.Real().Path, "/data/real/") {
			t.Fatalf("real path = %s, want under /data/real", r.Real().Path)
		}
		if !strings.HasPrefix(r.Fake().Path, "/data/fake/") {
			t.Fatalf("fake path = %s, want under /data/fake", r.Fake().Path)
		}

		if r.LeftIsReal {
			leftReal++
		} else {
			rightReal++
		}
	}

	if leftReal == 0 || rightReal == 0 {
		t.Fatalf("real side never varied: left=%d right=%d", leftReal, rightReal)
	}
}

func TestNextRoundCrossCategory(t *testing.T) {
	ds := testDataset(t, "cats", "dogs", "owls")
	rng := rand.New(rand.NewPCG(3, 4))

	same, mixed := 0, 0
	for range 500 {
		r := nextRound(ds, ModeCrossCategory, rng)
		if r.Real().Category == r.Fake().Category {
			same++
		} else {
			mixed++
		}
	}

	if same == 0 || mixed == 0 {
		t.Fatalf("cross-category draws: same=%d mixed=%d, want both", same, mixed)
	}
}

func TestNextRoundSingleCategoryCrossMode(t *testing.T) {
	ds := testDataset(t, "cats")
	rng := rand.New(rand.NewPCG(5, 6))

	for range 50 {
		r := nextRound(ds, ModeCrossCategory, rng)
		if r.Real().Category != "cats" || r.Fake().Category != "cats" {
			t.Fatalf("round = %+v, want both from cats", r)
		}
	}
}

func TestRoundSides(t *testing.T) {
	left := Asset{Category: "a", Path: "/left"}
	right := Asset{Category: "b", Path: "/right"}

	r := Round{Left: left, Right: right, LeftIsReal: true}
	if r.Real() != left || r.Fake() != right {
		t.Fatalf("LeftIsReal round: real=%v fake=%v", r.Real(), r.Fake())
	}

	r.LeftIsReal = false
	if r.Real() != right || r.Fake() != left {
		t.Fatalf("right-real round: real=%v fake=%v", r.Real(), r.Fake())
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
		ok   bool
	}{
		{"same-category", ModeSameCategory, true},
		{"cross-category", ModeCrossCategory, true},
		{"hard", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := parseMode(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("parseMode(%q) = %q, %t, want %q, %t", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
