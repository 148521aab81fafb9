package main

import (
	"math/rand/v2"
)

// Mode selects how a round's real and fake images are drawn.
type Mode string

const (
	// ModeSameCategory draws both images from one category.
	ModeSameCategory Mode = "same-category"
	// ModeCrossCategory draws the real and fake images from independently
	// chosen categories.
	ModeCrossCategory Mode = "cross-category"
)

var modes = []Mode{ModeSameCategory, ModeCrossCategory}

func parseMode(s string) (Mode, bool) {
	for _, m := range modes {
		if string(m) == s {
			return m, true
		}
	}
	return "", false
}

func (m Mode) Label() string {
	switch m {
	case ModeSameCategory:
		return "Same category"
	case ModeCrossCategory:
		return "Mixed categories"
	default:
		return string(m)
	}
}

// Asset references one image on disk and the category it was drawn from.
type Asset struct {
	Category string `json:"category"`
	Path     string `json:"-"`
}

// Round is one left/right pairing. It is replaced wholesale by the next one.
type Round struct {
	Serial     int
	Left       Asset
	Right      Asset
	LeftIsReal bool
}

func (r Round) Real() Asset {
	if r.LeftIsReal {
		return r.Left
	}
	return r.Right
}

func (r Round) Fake() Asset {
	if r.LeftIsReal {
		return r.Right
	}
	return r.Left
}

func pick(rng *rand.Rand, items []string) string {
	return items[rng.IntN(len(items))]
}

func (d *Dataset) randomCategory(rng *rand.Rand) Category {
	return d.categories[pick(rng, d.names)]
}

// nextRound draws a fresh pair for the given mode and places the real image
// on the left with probability one half.
func nextRound(ds *Dataset, mode Mode, rng *rand.Rand) Round {
	realCat := ds.randomCategory(rng)
	fakeCat := realCat
	if mode == ModeCrossCategory {
		fakeCat = ds.randomCategory(rng)
	}

	realAsset := Asset{Category: realCat.Name, Path: pick(rng, realCat.Real)}
	fakeAsset := Asset{Category: fakeCat.Name, Path: pick(rng, fakeCat.Fake)}

	if rng.Float64() < 0.5 {
		return Round{Left: realAsset, Right: fakeAsset, LeftIsReal: true}
	}

	return Round{Left: fakeAsset, Right: realAsset, LeftIsReal: false}
}
