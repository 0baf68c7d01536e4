package staff

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/salonhub/salonhub/internal/domain/vendor"
)

// Break is a window within a working day when the staff member is off the
// floor. Times are HH:MM wall clock in the vendor's time zone.
type Break struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DaySchedule is one weekday of a staff member's recurring schedule.
type DaySchedule struct {
	Available bool    `json:"available"`
	Start     string  `json:"start,omitempty"`
	End       string  `json:"end,omitempty"`
	Breaks    []Break `json:"breaks,omitempty"`
}

// WeekSchedule maps lowercase weekday names to day schedules. A missing day
// means not available.
type WeekSchedule map[string]DaySchedule

var weekdayNames = map[time.Weekday]string{
	time.Monday:    "monday",
	time.Tuesday:   "tuesday",
	time.Wednesday: "wednesday",
	time.Thursday:  "thursday",
	time.Friday:    "friday",
	time.Saturday:  "saturday",
	time.Sunday:    "sunday",
}

var dayNameSet = func() map[string]struct{} {
	s := make(map[string]struct{}, len(weekdayNames))
	for _, name := range weekdayNames {
		s[name] = struct{}{}
	}
	return s
}()

// For returns the schedule for the given weekday.
func (w WeekSchedule) For(wd time.Weekday) DaySchedule {
	if w == nil {
		return DaySchedule{}
	}
	return w[weekdayNames[wd]]
}

// Staff maps to the staff table. ServiceIDs lists the services the member can
// perform; an empty list means every service the vendor offers.
type Staff struct {
	ID         uuid.UUID    `db:"id" json:"id"`
	VendorID   uuid.UUID    `db:"vendor_id" json:"vendor_id"`
	Name       string       `db:"name" json:"name"`
	Title      *string      `db:"title" json:"title,omitempty"`
	ServiceIDs []uuid.UUID  `db:"service_ids" json:"service_ids"`
	Schedule   WeekSchedule `db:"schedule" json:"schedule"`
	Active     bool         `db:"active" json:"active"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time    `db:"updated_at" json:"updated_at"`
}

// CanPerform reports whether this member is eligible for the service.
func (s *Staff) CanPerform(serviceID uuid.UUID) bool {
	if len(s.ServiceIDs) == 0 {
		return true
	}
	for _, id := range s.ServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}

// ValidateSchedule checks every configured day: windows well-formed, breaks
// inside the working window and non-overlapping.
func ValidateSchedule(w WeekSchedule) error {
	for day, ds := range w {
		if _, ok := dayNameSet[day]; !ok {
			return fmt.Errorf("unknown weekday %q", day)
		}
		if !ds.Available {
			continue
		}
		start, err := vendor.ParseClock(ds.Start)
		if err != nil {
			return fmt.Errorf("%s start: %w", day, err)
		}
		end, err := vendor.ParseClock(ds.End)
		if err != nil {
			return fmt.Errorf("%s end: %w", day, err)
		}
		if start >= end {
			return fmt.Errorf("%s: start %s must be before end %s", day, ds.Start, ds.End)
		}
		prevEnd := -1
		for i, br := range ds.Breaks {
			bs, err := vendor.ParseClock(br.Start)
			if err != nil {
				return fmt.Errorf("%s break %d start: %w", day, i, err)
			}
			be, err := vendor.ParseClock(br.End)
			if err != nil {
				return fmt.Errorf("%s break %d end: %w", day, i, err)
			}
			if bs >= be {
				return fmt.Errorf("%s break %d: start must be before end", day, i)
			}
			if bs < start || be > end {
				return fmt.Errorf("%s break %d: outside working window", day, i)
			}
			if bs < prevEnd {
				return fmt.Errorf("%s break %d: overlaps previous break", day, i)
			}
			prevEnd = be
		}
	}
	return nil
}
