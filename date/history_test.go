package date

import "testing"

func TestAppend(t *testing.T) {
	h := new(History[string])
	d1, v1 := New(2025, 07, 01), "25 Jul 1"
	d2, v2 := New(2024, 07, 01), "24 Jul 1"

	// Test is about appending two values in reverse order and checking that everything is
	// as expected at every step of the way.

	if h.Len() != 0 {
		t.Errorf("History.Len() = %v want 0", h.Len())
	}

	h.Append(d1, v1)
	if h.Len() != 1 {
		t.Errorf("Append(d1, v1).Len() = %v want 1", h.Len())
	}

	h.Append(d2, v2)
	if h.Len() != 2 {
		t.Errorf("Append(d2, v2).Len() = %v want 2", h.Len())
	}

	if h.days[1] != d1 {
		t.Errorf("history[1].day = %v want %v", h.days[1], d1)
	}
	if h.days[0] != d2 {
		t.Errorf("history[0].day = %v want %v", h.days[0], d2)
	}
	if h.values[1] != v1 {
		t.Errorf("history[1].value = %v want %v", h.values[1], v1)
	}
	if h.values[0] != v2 {
		t.Errorf("history[0].value = %v want %v", h.values[0], v2)
	}

}

func TestHistory_CountInRange(t *testing.T) {
	h := new(History[float64])
	h.Append(New(2023, 1, 1), 100)
	h.Append(New(2023, 3, 31), 105)
	h.Append(New(2023, 6, 30), 110)

	q1 := Range{From: New(2023, 1, 1), To: New(2023, 3, 31)}
	if got := h.CountInRange(q1); got != 2 {
		t.Errorf("CountInRange(Q1) = %v want 2", got)
	}

	q2 := Range{From: New(2023, 4, 1), To: New(2023, 6, 30)}
	if got := h.CountInRange(q2); got != 1 {
		t.Errorf("CountInRange(Q2) = %v want 1", got)
	}

	empty := Range{From: New(2024, 1, 1), To: New(2024, 12, 31)}
	if got := h.CountInRange(empty); got != 0 {
		t.Errorf("CountInRange(empty) = %v want 0", got)
	}
}
