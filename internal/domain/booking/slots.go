package booking

// All slot arithmetic happens in whole minutes from midnight, in the vendor's
// time zone. Intervals are half-open: an appointment ending at 13:00 does not
// collide with one starting at 13:00.

// Interval is a half-open [Start, End) window in minutes from midnight.
type Interval struct {
	Start int
	End   int
}

// Overlaps reports whether two half-open intervals intersect.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start < other.End && other.Start < iv.End
}

// WorkDay is one staff member's working window and breaks for a single date.
type WorkDay struct {
	Window Interval
	Breaks []Interval
}

// Slot is a candidate appointment window for one staff member, tagged with
// whether it can still be booked.
type Slot struct {
	Interval
	Available bool
	Reason    string
}

// GenerateSlots returns every grid-aligned start inside the working window
// where a service of the given duration fits without touching a break. Starts
// step from the window opening in gridMin increments; a candidate survives
// only if it ends by closing time and overlaps no break.
func GenerateSlots(day WorkDay, durationMin, gridMin int) []Interval {
	if durationMin <= 0 || gridMin <= 0 {
		return nil
	}
	var out []Interval
	for start := day.Window.Start; start+durationMin <= day.Window.End; start += gridMin {
		cand := Interval{Start: start, End: start + durationMin}
		blocked := false
		for _, br := range day.Breaks {
			if cand.Overlaps(br) {
				blocked = true
				break
			}
		}
		if !blocked {
			out = append(out, cand)
		}
	}
	return out
}

// FilterConflicts tags each candidate against the staff member's committed
// appointments. Slots are never dropped here: callers need the unavailable
// ones to render a full grid.
func FilterConflicts(candidates []Interval, busy []Interval) []Slot {
	slots := make([]Slot, 0, len(candidates))
	for _, cand := range candidates {
		slot := Slot{Interval: cand, Available: true}
		for _, b := range busy {
			if cand.Overlaps(b) {
				slot.Available = false
				slot.Reason = "booked"
				break
			}
		}
		slots = append(slots, slot)
	}
	return slots
}
