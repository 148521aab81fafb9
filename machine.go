package main

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"
	"unicode"

	"github.com/dustin/go-humanize"
)

// State is one screen of the game loop.
type State int

const (
	StateIntro State = iota
	StateStartPrompt
	StateDifficultyPrompt
	StateCountdown
	StatePlaying
	StateEnterName
	StateLeaderboard
)

func (s State) String() string {
	switch s {
	case StateIntro:
		return "intro"
	case StateStartPrompt:
		return "start_prompt"
	case StateDifficultyPrompt:
		return "difficulty_prompt"
	case StateCountdown:
		return "countdown"
	case StatePlaying:
		return "playing"
	case StateEnterName:
		return "enter_name"
	case StateLeaderboard:
		return "leaderboard"
	default:
		return "unknown"
	}
}

// transitions lists every legal edge. enter panics on anything else.
var transitions = map[State][]State{
	StateIntro:            {StateStartPrompt},
	StateStartPrompt:      {StateDifficultyPrompt},
	StateDifficultyPrompt: {StateCountdown},
	StateCountdown:        {StatePlaying},
	StatePlaying:          {StateEnterName},
	StateEnterName:        {StateLeaderboard},
	StateLeaderboard:      {StateStartPrompt},
}

func canTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IntentKind is a discrete player action delivered by the input adapter.
type IntentKind int

const (
	IntentSelectLeft IntentKind = iota
	IntentSelectRight
	IntentSkip
	IntentConfirm
	IntentBackspace
	IntentAppendChar
	IntentQuit
)

type Intent struct {
	Kind IntentKind
	Char rune
}

// EventKind tells the rendering and audio adapters what just happened.
type EventKind string

const (
	EventStateEntered   EventKind = "state_entered"
	EventCountdownPhase EventKind = "countdown_phase"
	EventGuessCorrect   EventKind = "guess_correct"
	EventGuessIncorrect EventKind = "guess_incorrect"
	EventSkip           EventKind = "skip"
	EventQualified      EventKind = "qualified"
)

type Event struct {
	Kind  EventKind
	State State
	Label string
}

// Notifier receives events synchronously on the control goroutine. The
// machine never depends on what the notifier does with them.
type Notifier interface {
	Notify(Event)
}

type nopNotifier struct{}

func (nopNotifier) Notify(Event) {}

const (
	introDuration  = 3 * time.Second
	actionCooldown = 500 * time.Millisecond
	hurryThreshold = 10 * time.Second
)

type countdownPhase struct {
	label    string
	duration time.Duration
}

var countdownPhases = []countdownPhase{
	{"3", 800 * time.Millisecond},
	{"2", 800 * time.Millisecond},
	{"1", 800 * time.Millisecond},
	{"GO", 600 * time.Millisecond},
}

// countdownAt returns the phase index for the time spent in countdown, or
// len(countdownPhases) once every phase has elapsed.
func countdownAt(elapsed time.Duration) int {
	var end time.Duration
	for i, p := range countdownPhases {
		end += p.duration
		if elapsed < end {
			return i
		}
	}
	return len(countdownPhases)
}

// Result is what the leaderboard screen shows for the session that just ended.
type Result struct {
	Score     float64
	Qualified bool
	Entries   []LeaderboardEntry
}

// Machine is the session controller. All methods must be called from one
// goroutine; every call takes the current wall-clock time explicitly.
type Machine struct {
	cfg     *Config
	dataset *Dataset
	store   *LeaderboardStore
	rng     *rand.Rand
	notify  Notifier

	state      State
	enteredAt  time.Time
	phase      int
	mode       Mode
	session    Session
	round      Round
	serial     int
	lastAction time.Time
	name       []rune
	result     Result
	quit       bool
}

func newMachine(cfg *Config, ds *Dataset, store *LeaderboardStore, rng *rand.Rand, notify Notifier, now time.Time) *Machine {
	if notify == nil {
		notify = nopNotifier{}
	}

	return &Machine{
		cfg:       cfg,
		dataset:   ds,
		store:     store,
		rng:       rng,
		notify:    notify,
		state:     StateIntro,
		enteredAt: now,
		mode:      ModeSameCategory,
	}
}

func (m *Machine) State() State {
	return m.state
}

func (m *Machine) Session() Session {
	return m.session
}

func (m *Machine) Round() Round {
	return m.round
}

func (m *Machine) Mode() Mode {
	return m.mode
}

func (m *Machine) Result() Result {
	return m.result
}

// Quit reports whether the player asked to leave. The frame loop stops on it.
func (m *Machine) Quit() bool {
	return m.quit
}

func (m *Machine) sessionLength() time.Duration {
	if m.cfg == nil || m.cfg.sessionLength <= 0 {
		return defaultSessionLength
	}
	return m.cfg.sessionLength
}

func (m *Machine) enter(next State, now time.Time) {
	if !canTransition(m.state, next) {
		panic(fmt.Sprintf("illegal transition %s -> %s", m.state, next))
	}

	logf(m.cfg, "STATE: %s -> %s", m.state, next)

	m.state = next
	m.enteredAt = now

	switch next {
	case StateCountdown:
		m.session = newSession(m.mode, m.sessionLength())
		m.phase = 0
		m.newRound()
	case StatePlaying:
		m.session.StartedAt = now
		m.session.TimeRemaining = m.sessionLength()
		m.lastAction = time.Time{}
	case StateEnterName:
		m.name = m.name[:0]
		m.result = Result{Score: m.session.Score}
	}

	m.notify.Notify(Event{Kind: EventStateEntered, State: next})
	if next == StateCountdown {
		m.notify.Notify(Event{Kind: EventCountdownPhase, State: next, Label: countdownPhases[0].label})
	}
}

func (m *Machine) newRound() {
	m.serial++
	m.round = nextRound(m.dataset, m.mode, m.rng)
	m.round.Serial = m.serial
}

// Update applies the time-based transitions. It never blocks.
func (m *Machine) Update(now time.Time) {
	switch m.state {
	case StateIntro:
		if now.Sub(m.enteredAt) >= introDuration {
			m.enter(StateStartPrompt, now)
		}

	case StateCountdown:
		phase := countdownAt(now.Sub(m.enteredAt))
		if phase >= len(countdownPhases) {
			m.enter(StatePlaying, now)
			return
		}
		if phase != m.phase {
			m.phase = phase
			m.notify.Notify(Event{Kind: EventCountdownPhase, State: m.state, Label: countdownPhases[phase].label})
		}

	case StatePlaying:
		remaining := m.sessionLength() - now.Sub(m.session.StartedAt)
		if remaining <= 0 {
			m.session.TimeRemaining = 0
			m.enter(StateEnterName, now)
			return
		}
		m.session.TimeRemaining = remaining
	}
}

// HandleIntent applies one player action. Time-based transitions are brought
// up to date first so that an action never lands on an expired session.
func (m *Machine) HandleIntent(in Intent, now time.Time) {
	m.Update(now)

	if in.Kind == IntentQuit {
		logf(m.cfg, "STATE: Quit requested in %s", m.state)
		m.quit = true
		return
	}

	switch m.state {
	case StateIntro:
		if in.Kind == IntentConfirm {
			m.enter(StateStartPrompt, now)
		}

	case StateStartPrompt:
		if in.Kind == IntentConfirm {
			m.enter(StateDifficultyPrompt, now)
		}

	case StateDifficultyPrompt:
		switch in.Kind {
		case IntentSelectLeft:
			m.mode = ModeSameCategory
			m.enter(StateCountdown, now)
		case IntentSelectRight:
			m.mode = ModeCrossCategory
			m.enter(StateCountdown, now)
		}

	case StatePlaying:
		m.handlePlaying(in, now)

	case StateEnterName:
		m.handleNameEntry(in, now)

	case StateLeaderboard:
		if in.Kind == IntentConfirm {
			m.enter(StateStartPrompt, now)
		}
	}
}

func (m *Machine) handlePlaying(in Intent, now time.Time) {
	switch in.Kind {
	case IntentSelectLeft, IntentSelectRight, IntentSkip:
	default:
		return
	}

	if !m.lastAction.IsZero() && now.Sub(m.lastAction) < actionCooldown {
		return
	}
	m.lastAction = now

	if in.Kind == IntentSkip {
		m.session = m.session.ApplySkip()
		m.notify.Notify(Event{Kind: EventSkip, State: m.state})
		m.newRound()
		return
	}

	var correct bool
	m.session, correct = m.session.ApplyGuess(in.Kind == IntentSelectLeft, m.round)
	if correct {
		m.notify.Notify(Event{Kind: EventGuessCorrect, State: m.state})
	} else {
		m.notify.Notify(Event{Kind: EventGuessIncorrect, State: m.state})
	}
	m.newRound()
}

func (m *Machine) handleNameEntry(in Intent, now time.Time) {
	switch in.Kind {
	case IntentAppendChar:
		if len(m.name) < maxNameLength && unicode.IsPrint(in.Char) {
			m.name = append(m.name, in.Char)
		}

	case IntentBackspace:
		if len(m.name) > 0 {
			m.name = m.name[:len(m.name)-1]
		}

	case IntentConfirm:
		qualified, entries := m.store.Submit(m.mode, string(m.name), m.session.Score)
		m.result = Result{
			Score:     m.session.Score,
			Qualified: qualified,
			Entries:   entries,
		}
		logf(m.cfg, "GAMES: Session %s (%s) ended with %.1f after %d rounds, qualified=%t",
			m.session.ID, m.mode, m.session.Score, m.session.RoundIndex, qualified)

		m.enter(StateLeaderboard, now)
		if qualified {
			m.notify.Notify(Event{Kind: EventQualified, State: m.state})
		}
	}
}

// RankView is one leaderboard row as the renderer shows it.
type RankView struct {
	Rank  int     `json:"rank"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
	Date  string  `json:"date"`
	Age   string  `json:"age,omitempty"`
}

// View is a read-only snapshot of the machine for the rendering adapter.
type View struct {
	State     string     `json:"state"`
	Mode      Mode       `json:"mode"`
	ModeLabel string     `json:"mode_label"`
	SessionID string     `json:"session_id,omitempty"`
	Countdown string     `json:"countdown,omitempty"`
	Score     float64    `json:"score"`
	TimeLeft  int        `json:"time_left"`
	Hurry     bool       `json:"hurry"`
	Round     int        `json:"round"`
	Rounds    int        `json:"rounds"`
	Name      string     `json:"name"`
	Qualified bool       `json:"qualified"`
	Entries   []RankView `json:"entries,omitempty"`
}

func (m *Machine) Name() string {
	return string(m.name)
}

func (m *Machine) Snapshot(now time.Time) View {
	v := View{
		State:     m.state.String(),
		Mode:      m.mode,
		ModeLabel: m.mode.Label(),
		SessionID: m.session.ID,
		Score:     m.session.Score,
		TimeLeft:  int(math.Ceil(m.session.TimeRemaining.Seconds())),
		Hurry:     m.state == StatePlaying && m.session.TimeRemaining <= hurryThreshold,
		Round:     m.round.Serial,
		Rounds:    m.session.RoundIndex,
		Name:      string(m.name),
		Qualified: m.result.Qualified,
	}

	switch m.state {
	case StateCountdown:
		v.Countdown = countdownPhases[m.phase].label
	case StateEnterName:
		v.Score = m.result.Score
	case StateLeaderboard:
		v.Score = m.result.Score
		v.Entries = make([]RankView, 0, len(m.result.Entries))
		for i, e := range m.result.Entries {
			row := RankView{
				Rank:  i + 1,
				Name:  truncateName(e.Name),
				Score: e.Score,
				Date:  e.Date,
			}
			if t, err := time.ParseInLocation(leaderboardDate, e.Date, time.Local); err == nil && !t.After(now) {
				row.Age = humanize.RelTime(t, now, "ago", "from now")
			}
			v.Entries = append(v.Entries, row)
		}
	}

	return v
}

func truncateName(name string) string {
	r := []rune(name)
	if len(r) > maxNameLength {
		return string(r[:maxNameLength])
	}
	return name
}
