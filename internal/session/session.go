// Package session owns the in-progress study session: phase transitions,
// batch bookkeeping, the re-queue policy for missed cards, and the
// write-through of committed progress.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"braindrop/internal/domain"
	"braindrop/internal/srs"
)

// Phase is the session state machine's current stage.
type Phase string

const (
	PhaseIdle     Phase = "idle" // no deck selected yet
	PhaseLearn    Phase = "learn"
	PhaseDrag     Phase = "drag"
	PhaseComplete Phase = "complete"
)

// Feedback is the transient per-answer display state. While it is
// non-empty a commit is pending and further answers are ignored.
type Feedback string

const (
	FeedbackNone    Feedback = ""
	FeedbackCorrect Feedback = "correct"
	FeedbackWrong   Feedback = "wrong"
)

// Saver persists the whole state after a committed mutation.
type Saver interface {
	SaveState(*domain.State) error
}

// Gold awarded for a perfect first-encounter answer.
const perfectReward = 10

// Feedback display windows, mirroring the UI's animation timing. A zero
// value commits inline, which tests rely on.
const (
	DefaultCorrectDelay = 800 * time.Millisecond
	DefaultWrongDelay   = 600 * time.Millisecond
)

// Controller is the single owner of session state. All transitions run
// under its lock and to completion, so no overlapping mutation is
// possible; the delayed answer commit re-acquires the lock and is
// discarded if the session moved on in the meantime.
type Controller struct {
	mu    sync.Mutex
	state *domain.State
	saver Saver

	now          func() time.Time
	correctDelay time.Duration
	wrongDelay   time.Duration

	sessionID    uuid.UUID
	deckID       string
	phase        Phase
	snapshot     []domain.Card // cards still to be mastered this session
	originalSize int
	learning     []domain.Card
	testing      []domain.Card
	idx          int
	score        int
	eliminated   []domain.Option
	attempts     int
	feedback     Feedback
	wasNew       map[string]bool

	pendingGen   int
	pendingTimer *time.Timer
}

// NewController wraps the given state. saver may be nil (no persistence).
func NewController(state *domain.State, saver Saver) *Controller {
	return &Controller{
		state:        state,
		saver:        saver,
		now:          time.Now,
		correctDelay: DefaultCorrectDelay,
		wrongDelay:   DefaultWrongDelay,
		phase:        PhaseIdle,
	}
}

// SetClock replaces the time source. Test hook.
func (c *Controller) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// SetTiming adjusts the feedback windows. Zero durations commit inline.
func (c *Controller) SetTiming(correct, wrong time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.correctDelay = correct
	c.wrongDelay = wrong
}

// Close abandons any pending feedback continuation without committing.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelPendingLocked()
}

// SelectDeck starts a session for the deck: rolls the daily counters
// over if the date changed, computes today's due set, and enters the
// learn phase (or completes immediately when nothing is due). Any
// pending answer commit from a previous session is abandoned. Returns
// false for an unknown deck id.
func (c *Controller) SelectDeck(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	deck := c.state.Deck(id)
	if deck == nil {
		return false
	}
	c.cancelPendingLocked()

	c.deckID = id
	c.sessionID = uuid.New()
	c.idx = 0
	c.score = 0
	c.eliminated = nil
	c.attempts = 0
	c.feedback = FeedbackNone

	now := c.now()
	rolled := c.state.Studied.RolloverIfNewDay(now)
	due := srs.DueCards(deck, c.state.Settings, c.state.Studied, now)

	c.wasNew = make(map[string]bool, len(due))
	for i := range due {
		due[i].SessionEncounters = 0
		c.wasNew[due[i].ID] = due[i].SeenCount == 0
	}
	c.snapshot = due
	c.originalSize = len(due)
	c.testing = nil

	if len(due) == 0 {
		c.phase = PhaseComplete
		c.learning = nil
	} else {
		c.phase = PhaseLearn
		c.learning = cloneCards(due)
	}

	if rolled {
		c.persistLocked()
	}
	return true
}

// AdvanceLearning marks the current card as seen and moves the cursor.
// When the last card has been shown, the learning batch becomes the
// testing batch and the phase switches to drag. No-op outside the learn
// phase.
func (c *Controller) AdvanceLearning() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseLearn {
		return
	}
	if c.idx >= len(c.learning) {
		c.beginTestingLocked()
		return
	}

	// Learning is a one-time exposure: seen count becomes 1, not +1.
	c.markSeenLocked(c.learning[c.idx].ID)
	c.idx++
	if c.idx >= len(c.learning) {
		c.beginTestingLocked()
	}
	c.persistLocked()
}

func (c *Controller) beginTestingLocked() {
	c.testing = cloneCards(c.learning)
	c.idx = 0
	c.phase = PhaseDrag
	c.eliminated = nil
	c.attempts = 0
}

func (c *Controller) markSeenLocked(cardID string) {
	if card := c.state.CardIn(c.deckID, cardID); card != nil {
		card.SeenCount = 1
	}
	for i := range c.snapshot {
		if c.snapshot[i].ID == cardID {
			c.snapshot[i].SeenCount = 1
		}
	}
	for i := range c.learning {
		if c.learning[i].ID == cardID {
			c.learning[i].SeenCount = 1
		}
	}
}

// SubmitAnswer handles a test-phase answer for the active card. A wrong
// answer eliminates the chosen option and leaves the card in place; a
// correct answer shows feedback and commits the outcome after the
// feedback window. Answers are ignored while feedback is pending, when
// no card is active, or for an invalid option.
func (c *Controller) SubmitAnswer(opt domain.Option) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseDrag || !opt.Valid() {
		return
	}
	if c.feedback != FeedbackNone {
		return // commit in flight for this card
	}
	if c.idx >= len(c.testing) {
		return
	}
	card := c.testing[c.idx]

	if opt != card.Correct {
		if !containsOption(c.eliminated, opt) {
			c.eliminated = append(c.eliminated, opt)
		}
		c.attempts++
		c.feedback = FeedbackWrong
		c.scheduleLocked(c.wrongDelay, func() {
			c.feedback = FeedbackNone
		})
		return
	}

	c.feedback = FeedbackCorrect
	c.scheduleLocked(c.correctDelay, c.commitCorrectLocked)
}

// scheduleLocked runs fn after d, unless the session moves on first.
// With d <= 0 it runs inline, still under the held lock.
func (c *Controller) scheduleLocked(d time.Duration, fn func()) {
	c.pendingGen++
	gen := c.pendingGen
	if d <= 0 {
		fn()
		return
	}
	c.pendingTimer = time.AfterFunc(d, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != c.pendingGen {
			return // abandoned: no commit
		}
		c.pendingTimer = nil
		fn()
	})
}

func (c *Controller) cancelPendingLocked() {
	c.pendingGen++
	if c.pendingTimer != nil {
		c.pendingTimer.Stop()
		c.pendingTimer = nil
	}
}

// commitCorrectLocked finalizes a correct answer: grades the card,
// graduates it through the scheduler or re-queues it by miss severity,
// then advances the batch machinery.
func (c *Controller) commitCorrectLocked() {
	c.feedback = FeedbackNone
	if c.idx >= len(c.testing) {
		return
	}
	card := c.testing[c.idx]
	encounters := card.SessionEncounters + 1
	attempts := c.attempts

	var grade srs.Grade
	switch {
	case encounters == 1 && attempts == 0:
		grade = srs.Perfect
	case encounters == 2:
		grade = srs.OneMiss
	case encounters == 3:
		grade = srs.TwoMiss
	default:
		grade = srs.ThreePlusMiss
	}

	// A clean viewing graduates; the 3rd encounter always graduates to
	// bound re-queue churn.
	graduate := attempts == 0 || encounters >= 3

	if graduate {
		c.testing = removeAt(c.testing, c.idx)
		c.snapshot = removeByID(c.snapshot, card.ID)
		c.graduateLocked(card, grade, encounters)
	} else {
		moved := card
		moved.SessionEncounters = encounters

		c.testing = removeAt(c.testing, c.idx)
		c.testing = insertAt(c.testing, requeueIndex(attempts, len(c.testing)), moved)

		c.snapshot = removeByID(c.snapshot, card.ID)
		c.snapshot = insertAt(c.snapshot, requeueIndex(attempts, len(c.snapshot)), moved)
	}

	c.score++
	c.eliminated = nil
	c.attempts = 0

	if c.idx >= len(c.testing) {
		if len(c.snapshot) == 0 {
			c.phase = PhaseComplete
			c.snapshot = nil
			c.learning = nil
			c.testing = nil
			c.idx = 0
		} else {
			// Cards still needing a pass become the next sweep. They
			// were already learned, so the session stays in drag.
			c.learning = cloneCards(c.snapshot)
			c.testing = cloneCards(c.snapshot)
			c.idx = 0
			c.phase = PhaseDrag
		}
	}
	c.persistLocked()
}

// requeueIndex maps the wrong-attempt count on the last viewing to a
// reinsertion point: 1 miss resurfaces last, 2 at the midpoint, 3+ right
// behind the next card.
func requeueIndex(attempts, remaining int) int {
	switch {
	case attempts <= 1:
		return remaining
	case attempts == 2:
		return remaining / 2
	default:
		return min(1, remaining)
	}
}

func (c *Controller) graduateLocked(card domain.Card, grade srs.Grade, encounters int) {
	now := c.now()
	update := srs.Schedule(card, grade, now, c.state.Settings.ExamDate)

	if dc := c.state.CardIn(c.deckID, card.ID); dc != nil {
		update.Apply(dc)
		dc.LastReviewed = now
		dc.SeenCount++
		dc.SessionEncounters = encounters
	}

	gold := 0
	if grade == srs.Perfect {
		gold = perfectReward
	}
	c.state.Gold += gold

	newCard := c.wasNew[card.ID]
	if newCard {
		c.state.Studied.NewCards++
	} else {
		c.state.Studied.Reviews++
	}
	c.state.Stats.RecordReview(now, newCard, grade == srs.Perfect, gold)
}

func (c *Controller) persistLocked() {
	if c.saver == nil {
		return
	}
	if err := c.saver.SaveState(c.state); err != nil {
		slog.Warn("failed to persist state", "error", err)
	}
}

// ToggleSuspend flips a card's suspension flag. Returns false when the
// deck or card is unknown.
func (c *Controller) ToggleSuspend(deckID, cardID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	card := c.state.CardIn(deckID, cardID)
	if card == nil {
		return false
	}
	card.Suspended = !card.Suspended
	c.persistLocked()
	return true
}

// ResetFields selects which card progress to restore to defaults. The
// zero value resets everything.
type ResetFields struct {
	Scheduling bool // ease, interval, reps, lapses, due date, state
	History    bool // seen count, last reviewed, suspension
}

// ResetCardProgress restores the selected progress fields of a card to
// their defaults. Returns false when the deck or card is unknown.
func (c *Controller) ResetCardProgress(deckID, cardID string, fields ResetFields) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	card := c.state.CardIn(deckID, cardID)
	if card == nil {
		return false
	}
	if !fields.Scheduling && !fields.History {
		fields = ResetFields{Scheduling: true, History: true}
	}
	now := c.now()
	if fields.Scheduling {
		card.Ease = domain.DefaultEase
		card.IntervalDays = 0
		card.Reps = 0
		card.Lapses = 0
		card.DueDate = now
		card.State = domain.StateNew
	}
	if fields.History {
		card.SeenCount = 0
		card.LastReviewed = time.Time{}
		card.Suspended = false
		card.SessionEncounters = 0
	}
	c.persistLocked()
	return true
}

// SettingsPatch carries optional settings updates; nil fields are left
// unchanged.
type SettingsPatch struct {
	NewPerDay     *int
	ReviewsPerDay *int
	ExamDate      *time.Time
}

// UpdateSettings applies a partial settings update.
func (c *Controller) UpdateSettings(p SettingsPatch) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p.NewPerDay != nil {
		c.state.Settings.NewPerDay = *p.NewPerDay
	}
	if p.ReviewsPerDay != nil {
		c.state.Settings.ReviewsPerDay = *p.ReviewsPerDay
	}
	if p.ExamDate != nil {
		c.state.Settings.ExamDate = *p.ExamDate
	}
	c.persistLocked()
}

// BuyCosmetic deducts the cost and unlocks the cosmetic. Returns false
// for an unknown id, an already-owned cosmetic, or insufficient gold.
func (c *Controller) BuyCosmetic(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	cosmetic := domain.CosmeticByID(id)
	if cosmetic == nil || c.state.Owns(id) || c.state.Gold < cosmetic.Cost {
		return false
	}
	c.state.Gold -= cosmetic.Cost
	c.state.Owned = append(c.state.Owned, id)
	c.persistLocked()
	return true
}

// EquipCosmetic equips an owned cosmetic into its slot. Returns false
// for unknown or unowned ids.
func (c *Controller) EquipCosmetic(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	cosmetic := domain.CosmeticByID(id)
	if cosmetic == nil || !c.state.Owns(id) {
		return false
	}
	if c.state.Equipped == nil {
		c.state.Equipped = map[domain.CosmeticType]string{}
	}
	c.state.Equipped[cosmetic.Type] = id
	c.persistLocked()
	return true
}

// AddGold credits the balance directly. Admin/testing hook.
func (c *Controller) AddGold(amount int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Gold += amount
	c.persistLocked()
}

func cloneCards(cards []domain.Card) []domain.Card {
	out := make([]domain.Card, len(cards))
	copy(out, cards)
	return out
}

func removeAt(cards []domain.Card, i int) []domain.Card {
	out := make([]domain.Card, 0, len(cards)-1)
	out = append(out, cards[:i]...)
	return append(out, cards[i+1:]...)
}

func removeByID(cards []domain.Card, id string) []domain.Card {
	for i := range cards {
		if cards[i].ID == id {
			return removeAt(cards, i)
		}
	}
	return cards
}

func insertAt(cards []domain.Card, i int, card domain.Card) []domain.Card {
	if i > len(cards) {
		i = len(cards)
	}
	out := make([]domain.Card, 0, len(cards)+1)
	out = append(out, cards[:i]...)
	out = append(out, card)
	return append(out, cards[i:]...)
}

func containsOption(opts []domain.Option, o domain.Option) bool {
	for _, e := range opts {
		if e == o {
			return true
		}
	}
	return false
}
