package booking

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/salonhub/salonhub/internal/domain/staff"
	"github.com/salonhub/salonhub/internal/domain/vendor"
	"github.com/salonhub/salonhub/internal/platform/cache"
)

func slotByTime(t *testing.T, resp *AvailabilityResponse, clock string) *AggregateSlot {
	t.Helper()
	for i := range resp.Slots {
		if resp.Slots[i].Time == clock {
			return &resp.Slots[i]
		}
	}
	return nil
}

func TestAvailabilityAggregatesAcrossStaff(t *testing.T) {
	f := newFixture(t)
	resp, err := f.svc.Availability(context.Background(), f.vendorID, f.serviceID, f.date, nil)
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}

	if !resp.Open {
		t.Error("a day with slots should report is_open")
	}
	if resp.OpenTime != "09:00" || resp.CloseTime != "18:00" {
		t.Errorf("business hours = %s-%s, want 09:00-18:00", resp.OpenTime, resp.CloseTime)
	}

	// 09:00 only Alice works; available through her alone.
	nine := slotByTime(t, resp, "09:00")
	if nine == nil {
		t.Fatal("expected a 09:00 slot")
	}
	if !nine.Available {
		t.Error("09:00 should be available via Alice")
	}
	if len(nine.AvailableStaff) != 1 || nine.AvailableStaff[0].StaffID != f.staffA {
		t.Errorf("09:00 staff = %+v, want only Alice", nine.AvailableStaff)
	}

	// 13:00 falls in Alice's break but inside Bruno's shift.
	one := slotByTime(t, resp, "13:00")
	if one == nil {
		t.Fatal("expected a 13:00 slot")
	}
	if !one.Available {
		t.Error("13:00 should be available via Bruno")
	}
	if len(one.AvailableStaff) != 1 || one.AvailableStaff[0].StaffID != f.staffB {
		t.Errorf("13:00 staff = %+v, want only Bruno", one.AvailableStaff)
	}

	// 17:00 is past Bruno's 16:00 end; only Alice again.
	five := slotByTime(t, resp, "17:00")
	if five == nil {
		t.Fatal("expected a 17:00 slot")
	}
	if len(five.AvailableStaff) != 1 || five.AvailableStaff[0].StaffID != f.staffA {
		t.Errorf("17:00 staff = %+v, want only Alice", five.AvailableStaff)
	}

	// Slots are sorted by start time.
	for i := 1; i < len(resp.Slots); i++ {
		if resp.Slots[i-1].Time >= resp.Slots[i].Time {
			t.Fatalf("slots out of order: %s before %s", resp.Slots[i-1].Time, resp.Slots[i].Time)
		}
	}

	// The flat list mirrors the available subset of the grid.
	var want []string
	for _, slot := range resp.Slots {
		if slot.Available {
			want = append(want, slot.Time)
		}
	}
	if len(resp.AvailableSlots) != len(want) {
		t.Fatalf("available_slots has %d entries, want %d", len(resp.AvailableSlots), len(want))
	}
	for i, tm := range want {
		if resp.AvailableSlots[i] != tm {
			t.Errorf("available_slots[%d] = %s, want %s", i, resp.AvailableSlots[i], tm)
		}
	}
}

func TestAvailabilityTagsBookedSlots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Book both staff at 12:00 so the slot stays listed but unavailable.
	for _, id := range []uuid.UUID{f.staffA, f.staffB} {
		staffID := id
		if _, err := f.svc.CreateBooking(ctx, "cust", CreateRequest{
			VendorID: f.vendorID, ServiceID: f.serviceID, StaffID: &staffID,
			Date: f.date, Time: "12:00",
		}); err != nil {
			t.Fatalf("setup booking for %s: %v", id, err)
		}
	}

	resp, err := f.svc.Availability(ctx, f.vendorID, f.serviceID, f.date, nil)
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	noon := slotByTime(t, resp, "12:00")
	if noon == nil {
		t.Fatal("booked slots must stay in the grid")
	}
	if noon.Available {
		t.Error("12:00 is fully booked and should be unavailable")
	}
	// 11:30 overlaps both 12:00 bookings for a 60-minute service.
	half := slotByTime(t, resp, "11:30")
	if half == nil || half.Available {
		t.Errorf("11:30 overlaps the 12:00 bookings and should be listed unavailable, got %+v", half)
	}
	// 11:00 ends exactly at 12:00 and stays bookable.
	eleven := slotByTime(t, resp, "11:00")
	if eleven == nil || !eleven.Available {
		t.Errorf("11:00 should stay available, got %+v", eleven)
	}

	for _, tm := range resp.AvailableSlots {
		if tm == "11:30" || tm == "12:00" {
			t.Errorf("available_slots contains booked time %s", tm)
		}
	}
	// A fully-booked window still counts as an open day.
	if !resp.Open {
		t.Error("a booked-out day with scheduled staff should stay is_open")
	}
}

func TestAvailabilityOpenWhenNoSlotFits(t *testing.T) {
	// Staff are scheduled, but the service is longer than anyone's window:
	// the day is open with an empty grid, not "no staff are scheduled".
	f := newFixture(t)
	f.svc.services.(*mockServiceDir).services[f.serviceID].DurationMin = 120
	staffDir := f.svc.staff.(*mockStaffDir)
	staffDir.members = staffDir.members[:1]
	staffDir.members[0].Schedule = allWeekSchedule(staff.DaySchedule{
		Available: true, Start: "09:00", End: "10:00",
	})

	resp, err := f.svc.Availability(context.Background(), f.vendorID, f.serviceID, f.date, nil)
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	if !resp.Open {
		t.Error("scheduled staff on an open weekday should report is_open")
	}
	if len(resp.Slots) != 0 || len(resp.AvailableSlots) != 0 {
		t.Errorf("120-minute service in a 60-minute window should yield no slots, got %d", len(resp.Slots))
	}
	if resp.Message == "" || resp.Message == "no staff are scheduled for this date" {
		t.Errorf("message = %q, want a no-openings explanation", resp.Message)
	}
}

func TestAvailabilityNoStaffScheduled(t *testing.T) {
	f := newFixture(t)
	staffDir := f.svc.staff.(*mockStaffDir)
	for _, m := range staffDir.members {
		m.Schedule = allWeekSchedule(staff.DaySchedule{Available: false})
	}

	resp, err := f.svc.Availability(context.Background(), f.vendorID, f.serviceID, f.date, nil)
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	if resp.Open {
		t.Error("a day with nobody scheduled should not report is_open")
	}
	if resp.Message != "no staff are scheduled for this date" {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestAvailabilitySpecificStaff(t *testing.T) {
	f := newFixture(t)
	resp, err := f.svc.Availability(context.Background(), f.vendorID, f.serviceID, f.date, &f.staffB)
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	for _, slot := range resp.Slots {
		for _, ss := range slot.AvailableStaff {
			if ss.StaffID != f.staffB {
				t.Fatalf("staff-filtered availability leaked %s", ss.StaffID)
			}
		}
	}
	if first := resp.Slots[0].Time; first != "10:00" {
		t.Errorf("Bruno's first slot = %s, want 10:00", first)
	}
	last := resp.Slots[len(resp.Slots)-1].Time
	if last != "15:00" {
		t.Errorf("Bruno's last slot = %s, want 15:00 for a 60-minute service ending by 16:00", last)
	}
}

func TestAvailabilityUnknownStaffNotEligible(t *testing.T) {
	f := newFixture(t)
	stranger := uuid.New()
	_, err := f.svc.Availability(context.Background(), f.vendorID, f.serviceID, f.date, &stranger)
	if KindOf(err) != KindNotEligible {
		t.Errorf("unknown staff: err = %v, want not-eligible", err)
	}
}

func TestAvailabilityClosedDay(t *testing.T) {
	f := newFixture(t)
	// Close the vendor entirely.
	v, _ := f.svc.vendors.GetVendor(context.Background(), f.vendorID)
	for day := range v.Hours {
		v.Hours[day] = vendor.DayHours{}
	}
	resp, err := f.svc.Availability(context.Background(), f.vendorID, f.serviceID, f.date, nil)
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	if len(resp.Slots) != 0 {
		t.Errorf("closed day should produce no slots, got %d", len(resp.Slots))
	}
	if resp.Open || resp.Message == "" {
		t.Errorf("closed day should report is_open=false with a message, got %+v", resp)
	}
}

func TestAvailabilityInvalidDate(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Availability(context.Background(), f.vendorID, f.serviceID, "not-a-date", nil)
	if KindOf(err) != KindValidation {
		t.Errorf("invalid date: err = %v, want validation error", err)
	}
}

func TestAvailabilityCaching(t *testing.T) {
	f := newFixture(t)
	f.svc.cache = cache.NewMemoryStore()
	f.svc.cacheTTL = time.Minute
	ctx := context.Background()

	staffDir := f.svc.staff.(*mockStaffDir)
	if _, err := f.svc.Availability(ctx, f.vendorID, f.serviceID, f.date, nil); err != nil {
		t.Fatalf("first call: %v", err)
	}
	callsAfterFirst := staffDir.calls
	if _, err := f.svc.Availability(ctx, f.vendorID, f.serviceID, f.date, nil); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if staffDir.calls != callsAfterFirst {
		t.Error("second call should be served from cache without recomputing")
	}

	// A new booking bumps the version; the next read recomputes.
	if _, err := f.svc.CreateBooking(ctx, "cust", CreateRequest{
		VendorID: f.vendorID, ServiceID: f.serviceID, StaffID: &f.staffA,
		Date: f.date, Time: "10:00",
	}); err != nil {
		t.Fatalf("booking: %v", err)
	}
	resp, err := f.svc.Availability(ctx, f.vendorID, f.serviceID, f.date, nil)
	if err != nil {
		t.Fatalf("post-booking call: %v", err)
	}
	if staffDir.calls == callsAfterFirst {
		t.Error("availability after a booking should recompute, not reuse the stale entry")
	}
	ten := slotByTime(t, resp, "10:00")
	if ten == nil {
		t.Fatal("expected a 10:00 slot")
	}
	for _, ss := range ten.AvailableStaff {
		if ss.StaffID == f.staffA && ss.Available {
			t.Error("Alice is booked at 10:00 and should be unavailable")
		}
	}
}
