package booking

import (
	"testing"
)

func mins(h, m int) int { return h*60 + m }

func TestIntervalOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"disjoint", Interval{540, 600}, Interval{660, 720}, false},
		{"identical", Interval{540, 600}, Interval{540, 600}, true},
		{"partial", Interval{540, 600}, Interval{570, 630}, true},
		{"contained", Interval{540, 720}, Interval{570, 600}, true},
		{"touching end to start", Interval{540, 600}, Interval{600, 660}, false},
		{"touching start to end", Interval{600, 660}, Interval{540, 600}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("(%v).Overlaps(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Errorf("overlap is not symmetric for %v and %v", tt.a, tt.b)
			}
		})
	}
}

func TestGenerateSlotsSkipsBreaks(t *testing.T) {
	// 09:00-18:00 with a 13:00-14:00 lunch break, 60-minute service on a
	// 30-minute grid. Slots that would run into the break must disappear:
	// ..., 11:30, 12:00, [12:30, 13:00, 13:30 gone], 14:00, 14:30, ...
	day := WorkDay{
		Window: Interval{mins(9, 0), mins(18, 0)},
		Breaks: []Interval{{mins(13, 0), mins(14, 0)}},
	}
	got := GenerateSlots(day, 60, 30)

	var want []Interval
	for start := mins(9, 0); start <= mins(12, 0); start += 30 {
		want = append(want, Interval{start, start + 60})
	}
	for start := mins(14, 0); start <= mins(17, 0); start += 30 {
		want = append(want, Interval{start, start + 60})
	}

	if len(got) != len(want) {
		t.Fatalf("got %d slots, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slot %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestGenerateSlotsServiceEndsAtBreakStart(t *testing.T) {
	// A 60-minute service at 12:00 ends exactly when the break starts and
	// must survive; 12:30 must not.
	day := WorkDay{
		Window: Interval{mins(9, 0), mins(18, 0)},
		Breaks: []Interval{{mins(13, 0), mins(14, 0)}},
	}
	got := GenerateSlots(day, 60, 30)

	has := func(start int) bool {
		for _, s := range got {
			if s.Start == start {
				return true
			}
		}
		return false
	}
	if !has(mins(12, 0)) {
		t.Error("slot at 12:00 should be generated: it ends exactly at the break start")
	}
	if has(mins(12, 30)) {
		t.Error("slot at 12:30 overlaps the break and must not be generated")
	}
	if !has(mins(14, 0)) {
		t.Error("slot at 14:00 should be generated: it starts exactly at the break end")
	}
}

func TestGenerateSlotsLastSlotFitsExactly(t *testing.T) {
	day := WorkDay{Window: Interval{mins(9, 0), mins(18, 0)}}
	got := GenerateSlots(day, 60, 30)
	if len(got) == 0 {
		t.Fatal("expected slots")
	}
	last := got[len(got)-1]
	if last.Start != mins(17, 0) {
		t.Errorf("last slot starts at %d, want %d (17:00)", last.Start, mins(17, 0))
	}
	if last.End != mins(18, 0) {
		t.Errorf("last slot ends at %d, want closing time %d", last.End, mins(18, 0))
	}
}

func TestGenerateSlotsDurationLongerThanWindow(t *testing.T) {
	day := WorkDay{Window: Interval{mins(9, 0), mins(10, 0)}}
	if got := GenerateSlots(day, 90, 30); got != nil {
		t.Errorf("expected no slots for a 90-minute service in a 60-minute window, got %v", got)
	}
}

func TestGenerateSlotsInvalidInputs(t *testing.T) {
	day := WorkDay{Window: Interval{mins(9, 0), mins(18, 0)}}
	if got := GenerateSlots(day, 0, 30); got != nil {
		t.Errorf("zero duration should produce no slots, got %v", got)
	}
	if got := GenerateSlots(day, 60, 0); got != nil {
		t.Errorf("zero grid should produce no slots, got %v", got)
	}
}

func TestFilterConflictsAdjacentBookings(t *testing.T) {
	// Existing booking 10:00-11:00. A 60-minute slot at 09:00 ends exactly
	// when the booking starts and stays available; 09:30 collides.
	candidates := []Interval{
		{mins(9, 0), mins(10, 0)},
		{mins(9, 30), mins(10, 30)},
		{mins(11, 0), mins(12, 0)},
	}
	busy := []Interval{{mins(10, 0), mins(11, 0)}}

	got := FilterConflicts(candidates, busy)
	if len(got) != 3 {
		t.Fatalf("conflict filter must keep every candidate, got %d of 3", len(got))
	}
	if !got[0].Available {
		t.Error("09:00 slot ends exactly at the booking start and should be available")
	}
	if got[1].Available {
		t.Error("09:30 slot overlaps the booking and should be unavailable")
	}
	if got[1].Reason != "booked" {
		t.Errorf("blocked slot reason = %q, want %q", got[1].Reason, "booked")
	}
	if !got[2].Available {
		t.Error("11:00 slot starts exactly at the booking end and should be available")
	}
}

func TestFilterConflictsNoBusy(t *testing.T) {
	candidates := []Interval{{mins(9, 0), mins(10, 0)}}
	got := FilterConflicts(candidates, nil)
	if len(got) != 1 || !got[0].Available {
		t.Errorf("with no bookings every slot should be available, got %+v", got)
	}
}
