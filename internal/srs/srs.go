package srs

import (
	"math"
	"time"

	"braindrop/internal/domain"
)

// Grade classifies how a card was answered over the whole session: how
// many times it had to be re-shown before it was answered cleanly.
type Grade int

const (
	ThreePlusMiss Grade = iota // quality 0, treated as a lapse
	TwoMiss                    // quality 1
	OneMiss                    // quality 2
	Perfect                    // quality 3, never missed
)

// Quality returns the numeric quality 0..3 used by the ease adjustment.
func (g Grade) Quality() int { return int(g) }

func (g Grade) String() string {
	switch g {
	case Perfect:
		return "perfect"
	case OneMiss:
		return "one_miss"
	case TwoMiss:
		return "two_miss"
	default:
		return "three_plus_miss"
	}
}

// Scheduling constants. Intervals are in days; fractions are allowed.
const (
	lapseInterval     = 0.5  // failed cards come back in 12 hours
	minReviewInterval = 0.33 // 8 hour floor once a card has graduated
	cramWindowDays    = 5    // within this window of the exam, taper hard
	cramMaxInterval   = 3
)

// Update is the set of card fields changed by one scheduling pass.
// The caller merges it into the persisted card via Apply.
type Update struct {
	Ease         float64
	IntervalDays float64
	Reps         int
	Lapses       int
	DueDate      time.Time
	State        domain.CardState
}

// Apply merges the update into a card.
func (u Update) Apply(c *domain.Card) {
	c.Ease = u.Ease
	c.IntervalDays = u.IntervalDays
	c.Reps = u.Reps
	c.Lapses = u.Lapses
	c.DueDate = u.DueDate
	c.State = u.State
}

// DaysUntil returns the non-negative fractional number of days from today
// until the exam.
func DaysUntil(today, exam time.Time) float64 {
	d := exam.Sub(today).Hours() / 24
	if d < 0 {
		return 0
	}
	return d
}

func clampEase(e float64) float64 {
	return math.Max(domain.MinEase, math.Min(domain.MaxEase, e))
}

// nextEase applies the quality-dependent ease delta and clamps the result.
// In the last days before the exam a perfect answer no longer raises ease,
// so near-deadline reviews cannot inflate intervals.
func nextEase(ease float64, quality int, daysToExam float64) float64 {
	var add float64
	switch quality {
	case 3:
		add = 0.15
	case 2:
		add = 0
	case 1:
		add = -0.15
	default:
		add = -0.30
	}
	next := clampEase(ease + add)
	if daysToExam <= cramWindowDays && quality == 3 {
		next = clampEase(ease)
	}
	return next
}

// Schedule computes a card's next scheduling state from a graded session
// outcome. It is a pure function of its inputs: repeated calls with the
// same arguments yield the same update.
func Schedule(card domain.Card, grade Grade, today, examDate time.Time) Update {
	quality := grade.Quality()
	daysToExam := DaysUntil(today, examDate)

	ease := card.Ease
	if ease == 0 {
		ease = domain.DefaultEase
	}

	if quality == 0 {
		// Lapse: interval collapses, ease drops, card relearns.
		return Update{
			Ease:         nextEase(ease, quality, daysToExam),
			IntervalDays: lapseInterval,
			Reps:         card.Reps,
			Lapses:       card.Lapses + 1,
			DueDate:      addDays(today, lapseInterval),
			State:        domain.StateRelearn,
		}
	}

	newEase := nextEase(ease, quality, daysToExam)

	var interval float64
	if card.Reps > 0 {
		var mult float64
		switch quality {
		case 3:
			mult = 1.0
		case 2:
			mult = 0.75
		default:
			mult = 0.55
		}
		interval = card.IntervalDays * newEase * mult
		if interval < minReviewInterval {
			interval = minReviewInterval
		}
	} else {
		// First graduation: fixed interval by quality.
		switch quality {
		case 3:
			interval = 2
		case 2:
			interval = 1
		default:
			interval = 0.5
		}
	}

	// Never schedule past the exam.
	if ceil := math.Max(1, daysToExam); interval > ceil {
		interval = ceil
	}
	if daysToExam <= cramWindowDays && interval > cramMaxInterval {
		interval = cramMaxInterval
	}

	reps := card.Reps + 1
	if reps < 1 {
		reps = 1
	}

	return Update{
		Ease:         newEase,
		IntervalDays: interval,
		Reps:         reps,
		Lapses:       card.Lapses,
		DueDate:      addDays(today, interval),
		State:        domain.StateReview,
	}
}

func addDays(t time.Time, days float64) time.Time {
	return t.Add(time.Duration(days * 24 * float64(time.Hour)))
}
