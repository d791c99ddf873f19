package srs

import (
	"math"
	"testing"
	"time"

	"braindrop/internal/domain"
)

var today = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func exam(daysOut int) time.Time {
	return today.AddDate(0, 0, daysOut)
}

func newCard() domain.Card {
	return domain.Card{ID: "c1", Ease: domain.DefaultEase, State: domain.StateNew}
}

func reviewCard(ease, interval float64, reps int) domain.Card {
	return domain.Card{ID: "c1", Ease: ease, IntervalDays: interval, Reps: reps, State: domain.StateReview}
}

func TestScheduleFirstGraduation(t *testing.T) {
	testCases := []struct {
		name             string
		grade            Grade
		expectedInterval float64
		expectedEase     float64
	}{
		{"perfect graduates at 2 days", Perfect, 2, 2.55},
		{"one miss graduates at 1 day", OneMiss, 1, 2.4},
		{"two miss graduates at 12 hours", TwoMiss, 0.5, 2.25},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			u := Schedule(newCard(), tc.grade, today, exam(21))
			if math.Abs(u.IntervalDays-tc.expectedInterval) > 1e-9 {
				t.Errorf("Expected interval %.2f, got %.2f", tc.expectedInterval, u.IntervalDays)
			}
			if math.Abs(u.Ease-tc.expectedEase) > 1e-9 {
				t.Errorf("Expected ease %.2f, got %.2f", tc.expectedEase, u.Ease)
			}
			if u.Reps != 1 {
				t.Errorf("Expected reps 1, got %d", u.Reps)
			}
			if u.State != domain.StateReview {
				t.Errorf("Expected state review, got %s", u.State)
			}
		})
	}
}

func TestScheduleLapse(t *testing.T) {
	card := reviewCard(2.1, 4, 5)
	card.Lapses = 2

	u := Schedule(card, ThreePlusMiss, today, exam(21))

	if u.IntervalDays != 0.5 {
		t.Errorf("Expected lapse interval 0.5, got %.2f", u.IntervalDays)
	}
	if u.Lapses != 3 {
		t.Errorf("Expected lapses 3, got %d", u.Lapses)
	}
	if u.State != domain.StateRelearn {
		t.Errorf("Expected state relearn, got %s", u.State)
	}
	if u.Reps != 5 {
		t.Errorf("Expected reps unchanged at 5, got %d", u.Reps)
	}
	if math.Abs(u.Ease-1.8) > 1e-9 {
		t.Errorf("Expected ease clamped to 1.80, got %.2f", u.Ease)
	}
	wantDue := today.Add(12 * time.Hour)
	if !u.DueDate.Equal(wantDue) {
		t.Errorf("Expected due %v, got %v", wantDue, u.DueDate)
	}
}

func TestScheduleReviewMultipliers(t *testing.T) {
	testCases := []struct {
		name     string
		grade    Grade
		expected float64 // interval = prev * newEase * mult
	}{
		{"perfect", Perfect, 4 * 2.55 * 1.0},
		{"one miss", OneMiss, 4 * 2.4 * 0.75},
		{"two miss", TwoMiss, 4 * 2.25 * 0.55},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			u := Schedule(reviewCard(2.4, 4, 3), tc.grade, today, exam(60))
			if math.Abs(u.IntervalDays-tc.expected) > 1e-9 {
				t.Errorf("Expected interval %.3f, got %.3f", tc.expected, u.IntervalDays)
			}
		})
	}
}

func TestScheduleReviewFloor(t *testing.T) {
	// Tiny previous interval: two-miss multiplier would drop below 8 hours.
	u := Schedule(reviewCard(1.8, 0.1, 2), TwoMiss, today, exam(21))
	if u.IntervalDays != 0.33 {
		t.Errorf("Expected 8 hour floor 0.33, got %.3f", u.IntervalDays)
	}
}

func TestScheduleNeverPastExam(t *testing.T) {
	card := reviewCard(2.8, 20, 6)
	for _, daysOut := range []int{1, 3, 7, 14, 21} {
		u := Schedule(card, Perfect, today, exam(daysOut))
		if u.DueDate.After(exam(daysOut)) {
			t.Errorf("daysOut=%d: due %v exceeds exam %v", daysOut, u.DueDate, exam(daysOut))
		}
	}
}

func TestScheduleCramTaper(t *testing.T) {
	u := Schedule(reviewCard(2.8, 10, 4), Perfect, today, exam(5))
	if u.IntervalDays > 3 {
		t.Errorf("Expected interval capped at 3 inside cram window, got %.2f", u.IntervalDays)
	}
}

func TestScheduleEaseFrozenNearExam(t *testing.T) {
	u := Schedule(reviewCard(2.4, 2, 3), Perfect, today, exam(4))
	if math.Abs(u.Ease-2.4) > 1e-9 {
		t.Errorf("Expected ease unchanged near exam, got %.2f", u.Ease)
	}
}

func TestEaseStaysBounded(t *testing.T) {
	// Any sequence of grades keeps ease within [1.80, 2.80].
	grades := []Grade{Perfect, Perfect, Perfect, Perfect, Perfect, ThreePlusMiss,
		ThreePlusMiss, ThreePlusMiss, TwoMiss, OneMiss, Perfect, TwoMiss, TwoMiss}
	card := newCard()
	for i, g := range grades {
		u := Schedule(card, g, today, exam(30))
		if u.Ease < domain.MinEase-1e-9 || u.Ease > domain.MaxEase+1e-9 {
			t.Fatalf("step %d (%s): ease %.3f out of bounds", i, g, u.Ease)
		}
		u.Apply(&card)
	}
}

func TestScheduleIsPure(t *testing.T) {
	card := reviewCard(2.2, 3, 2)
	a := Schedule(card, OneMiss, today, exam(21))
	b := Schedule(card, OneMiss, today, exam(21))
	if a != b {
		t.Errorf("Expected identical updates, got %+v and %+v", a, b)
	}
}

func dueDeck() *domain.Deck {
	yesterday := today.AddDate(0, 0, -1)
	tomorrow := today.AddDate(0, 0, 1)
	return &domain.Deck{
		ID:   "d1",
		Name: "Deck",
		Cards: []domain.Card{
			{ID: "new1", State: domain.StateNew},
			{ID: "new2", State: domain.StateNew},
			{ID: "sus", State: domain.StateNew, Suspended: true},
			{ID: "due1", SeenCount: 3, DueDate: yesterday, State: domain.StateReview},
			{ID: "due2", SeenCount: 1, DueDate: today, State: domain.StateReview},
			{ID: "later", SeenCount: 2, DueDate: tomorrow, State: domain.StateReview},
			{ID: "susdue", SeenCount: 2, DueDate: yesterday, State: domain.StateReview, Suspended: true},
		},
	}
}

func cardIDs(cards []domain.Card) []string {
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	return ids
}

func TestDueCards(t *testing.T) {
	settings := domain.Settings{NewPerDay: 10, ReviewsPerDay: 50, ExamDate: exam(21)}
	studied := domain.DailyStudy{Date: domain.DayKey(today)}

	t.Run("new then due, deck order, no suspended", func(t *testing.T) {
		got := cardIDs(DueCards(dueDeck(), settings, studied, today))
		want := []string{"new1", "new2", "due1", "due2"}
		if len(got) != len(want) {
			t.Fatalf("Expected %v, got %v", want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("Expected %v, got %v", want, got)
			}
		}
	})

	t.Run("quotas truncate each pool", func(t *testing.T) {
		s := domain.Settings{NewPerDay: 1, ReviewsPerDay: 1, ExamDate: exam(21)}
		got := cardIDs(DueCards(dueDeck(), s, studied, today))
		if len(got) != 2 || got[0] != "new1" || got[1] != "due1" {
			t.Errorf("Expected [new1 due1], got %v", got)
		}
	})

	t.Run("consumed quota shrinks the pools", func(t *testing.T) {
		consumed := domain.DailyStudy{Date: domain.DayKey(today), NewCards: 2, Reviews: 1}
		got := cardIDs(DueCards(dueDeck(), settings, consumed, today))
		if len(got) != 1 || got[0] != "due1" {
			t.Errorf("Expected only due1 after quota consumption, got %v", got)
		}
		over := domain.DailyStudy{Date: domain.DayKey(today), NewCards: 99, Reviews: 99}
		if got := DueCards(dueDeck(), settings, over, today); len(got) != 0 {
			t.Errorf("Expected empty set with exhausted quotas, got %v", cardIDs(got))
		}
	})

	t.Run("idempotent without intervening answers", func(t *testing.T) {
		first := cardIDs(DueCards(dueDeck(), settings, studied, today))
		second := cardIDs(DueCards(dueDeck(), settings, studied, today))
		if len(first) != len(second) {
			t.Fatalf("Expected identical sets, got %v and %v", first, second)
		}
		for i := range first {
			if first[i] != second[i] {
				t.Fatalf("Expected identical sets, got %v and %v", first, second)
			}
		}
	})

	t.Run("zero due date counts as due", func(t *testing.T) {
		deck := &domain.Deck{Cards: []domain.Card{{ID: "x", SeenCount: 1}}}
		got := DueCards(deck, settings, studied, today)
		if len(got) != 1 {
			t.Errorf("Expected card with zero due date to be selected")
		}
	})
}

func TestDailyRollover(t *testing.T) {
	d := domain.DailyStudy{Date: domain.DayKey(today.AddDate(0, 0, -1)), NewCards: 5, Reviews: 7}

	if !d.RolloverIfNewDay(today) {
		t.Fatal("Expected first rollover of the day to reset")
	}
	if d.NewCards != 0 || d.Reviews != 0 || d.Date != domain.DayKey(today) {
		t.Errorf("Expected zeroed counters for today, got %+v", d)
	}

	d.NewCards = 3
	if d.RolloverIfNewDay(today) {
		t.Error("Expected second rollover the same day to be a no-op")
	}
	if d.NewCards != 3 {
		t.Errorf("Expected counters untouched, got %+v", d)
	}
}
