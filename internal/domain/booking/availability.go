package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/salonhub/salonhub/internal/domain/catalog"
	"github.com/salonhub/salonhub/internal/domain/staff"
	"github.com/salonhub/salonhub/internal/domain/vendor"
	"github.com/salonhub/salonhub/internal/platform/metrics"
)

// Directories are the read-side views this package needs from the other
// domains. Satisfied by their services; keeps wiring one-directional.
type VendorDirectory interface {
	GetVendor(ctx context.Context, id uuid.UUID) (*vendor.Vendor, error)
}

type ServiceDirectory interface {
	GetService(ctx context.Context, id uuid.UUID) (*catalog.Service, error)
}

type StaffDirectory interface {
	ListEligible(ctx context.Context, vendorID, serviceID uuid.UUID) ([]*staff.Staff, error)
}

// StaffSlot is one staff member's view of a candidate slot.
type StaffSlot struct {
	StaffID   uuid.UUID `json:"staff_id"`
	StaffName string    `json:"staff_name"`
	Available bool      `json:"available"`
}

// AggregateSlot is the union view of a start time across all eligible staff.
// A slot is available when at least one member is free; AvailableStaff is
// ordered by staff id ascending, so its first entry is the member an "any
// staff" booking would be assigned to.
type AggregateSlot struct {
	Time           string      `json:"time"`
	Available      bool        `json:"available"`
	AvailableStaff []StaffSlot `json:"staff,omitempty"`
}

// AvailabilityResponse is the payload for the availability endpoint. Open
// means the vendor's hours are open that weekday and at least one eligible
// staff member is scheduled; when it is false, Message says why.
// AvailableSlots is the bookable subset of Slots, for clients that only want
// the times.
type AvailabilityResponse struct {
	VendorID       uuid.UUID       `json:"vendor_id"`
	ServiceID      uuid.UUID       `json:"service_id"`
	Date           string          `json:"date"`
	Timezone       string          `json:"timezone"`
	Open           bool            `json:"is_open"`
	OpenTime       string          `json:"open_time,omitempty"`
	CloseTime      string          `json:"close_time,omitempty"`
	Message        string          `json:"message,omitempty"`
	Slots          []AggregateSlot `json:"slots"`
	AvailableSlots []string        `json:"available_slots"`
}

// Availability computes the bookable slots for a vendor, service and date.
// With a non-nil staffID the result is restricted to that member. Results for
// today hide nothing: starts already in the past are tagged unavailable.
func (s *Service) Availability(ctx context.Context, vendorID, serviceID uuid.UUID, date string, staffID *uuid.UUID) (*AvailabilityResponse, error) {
	v, err := s.vendors.GetVendor(ctx, vendorID)
	if err != nil {
		return nil, NewNotFoundError("vendor %s not found", vendorID)
	}
	if !v.IsApproved() {
		return nil, NewNotFoundError("vendor %s not found", vendorID)
	}
	svc, err := s.services.GetService(ctx, serviceID)
	if err != nil {
		return nil, NewNotFoundError("service %s not found", serviceID)
	}
	if svc.VendorID != vendorID {
		return nil, NewValidationError("service %s does not belong to vendor %s", serviceID, vendorID)
	}
	loc, err := v.Location()
	if err != nil {
		return nil, err
	}
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return nil, NewValidationError("invalid date %q, want YYYY-MM-DD", date)
	}

	if resp, ok := s.cachedAvailability(ctx, vendorID, serviceID, date, staffID); ok {
		return resp, nil
	}

	members, err := s.staff.ListEligible(ctx, vendorID, serviceID)
	if err != nil {
		return nil, err
	}
	if staffID != nil {
		var picked *staff.Staff
		for _, m := range members {
			if m.ID == *staffID {
				picked = m
				break
			}
		}
		if picked == nil {
			return nil, NewNotEligibleError("staff %s cannot perform service %s", *staffID, serviceID)
		}
		members = []*staff.Staff{picked}
	}

	resp := &AvailabilityResponse{
		VendorID:       vendorID,
		ServiceID:      serviceID,
		Date:           date,
		Timezone:       v.Timezone,
		Slots:          []AggregateSlot{},
		AvailableSlots: []string{},
	}

	open := v.Hours.For(day.Weekday())
	if !open.Open {
		resp.Message = fmt.Sprintf("closed on %s", strings.ToLower(day.Weekday().String()))
		s.storeAvailability(ctx, vendorID, serviceID, date, staffID, resp)
		return resp, nil
	}
	if len(members) == 0 {
		resp.Message = "no staff can perform this service"
		s.storeAvailability(ctx, vendorID, serviceID, date, staffID, resp)
		return resp, nil
	}
	openStart, err := vendor.ParseClock(open.Start)
	if err != nil {
		return nil, err
	}
	openEnd, err := vendor.ParseClock(open.End)
	if err != nil {
		return nil, err
	}

	staffIDs := make([]uuid.UUID, len(members))
	for i, m := range members {
		staffIDs[i] = m.ID
	}
	dayStart := day
	dayEnd := day.Add(24 * time.Hour)
	holding, err := s.bookings.ListHolding(ctx, staffIDs, dayStart.UTC(), dayEnd.UTC())
	if err != nil {
		return nil, err
	}
	busyByStaff := make(map[uuid.UUID][]Interval, len(members))
	for _, b := range holding {
		busyByStaff[b.StaffID] = append(busyByStaff[b.StaffID], intervalOf(b, day, loc))
	}

	nowMin := -1
	if today := time.Now().In(loc); today.Format("2006-01-02") == date {
		nowMin = today.Hour()*60 + today.Minute()
	}

	byStart := map[int]*AggregateSlot{}
	scheduled := 0
	for _, m := range members {
		wd, ok := workDayFor(m, day.Weekday(), openStart, openEnd)
		if !ok {
			continue
		}
		scheduled++
		slots := FilterConflicts(GenerateSlots(wd, svc.DurationMin, s.gridMin), busyByStaff[m.ID])
		for _, slot := range slots {
			agg := byStart[slot.Start]
			if agg == nil {
				agg = &AggregateSlot{Time: vendor.FormatClock(slot.Start)}
				byStart[slot.Start] = agg
			}
			available := slot.Available && slot.Start > nowMin
			agg.AvailableStaff = append(agg.AvailableStaff, StaffSlot{
				StaffID: m.ID, StaffName: m.Name, Available: available,
			})
			if available {
				agg.Available = true
			}
		}
	}

	starts := make([]int, 0, len(byStart))
	for start := range byStart {
		starts = append(starts, start)
	}
	sort.Ints(starts)
	for _, start := range starts {
		agg := byStart[start]
		resp.Slots = append(resp.Slots, *agg)
		if agg.Available {
			resp.AvailableSlots = append(resp.AvailableSlots, agg.Time)
		}
	}

	// The venue counts as open when its hours are open and somebody is
	// scheduled, even if no slot fits or everything is taken.
	if scheduled == 0 {
		resp.Message = "no staff are scheduled for this date"
	} else {
		resp.Open = true
		resp.OpenTime = open.Start
		resp.CloseTime = open.End
		if len(resp.Slots) == 0 {
			resp.Message = "no openings for this service on this date"
		}
	}

	s.storeAvailability(ctx, vendorID, serviceID, date, staffID, resp)
	return resp, nil
}

// workDayFor intersects a staff member's day schedule with the vendor's
// opening window. Members are never bookable outside business hours.
func workDayFor(m *staff.Staff, wd time.Weekday, openStart, openEnd int) (WorkDay, bool) {
	ds := m.Schedule.For(wd)
	if !ds.Available {
		return WorkDay{}, false
	}
	start, err := vendor.ParseClock(ds.Start)
	if err != nil {
		return WorkDay{}, false
	}
	end, err := vendor.ParseClock(ds.End)
	if err != nil {
		return WorkDay{}, false
	}
	if start < openStart {
		start = openStart
	}
	if end > openEnd {
		end = openEnd
	}
	if start >= end {
		return WorkDay{}, false
	}
	day := WorkDay{Window: Interval{Start: start, End: end}}
	for _, br := range ds.Breaks {
		bs, err1 := vendor.ParseClock(br.Start)
		be, err2 := vendor.ParseClock(br.End)
		if err1 != nil || err2 != nil {
			continue
		}
		day.Breaks = append(day.Breaks, Interval{Start: bs, End: be})
	}
	return day, true
}

// intervalOf converts a stored UTC booking into minutes from midnight on the
// availability date. Windows clipped to the day keep overnight spill sane.
func intervalOf(b *Booking, day time.Time, loc *time.Location) Interval {
	start := int(b.StartTime.In(loc).Sub(day).Minutes())
	end := int(b.EndTime.In(loc).Sub(day).Minutes())
	if start < 0 {
		start = 0
	}
	if end > 24*60 {
		end = 24 * 60
	}
	return Interval{Start: start, End: end}
}

// Cache keys embed a per-vendor-day version that every write bumps, so stale
// entries die by never being read again rather than by enumeration.

func (s *Service) availVersion(ctx context.Context, vendorID uuid.UUID, date string) string {
	if s.cache == nil {
		return "0"
	}
	ver, ok := s.cache.Get(ctx, fmt.Sprintf("availver:%s:%s", vendorID, date))
	if !ok || len(ver) == 0 {
		return "0"
	}
	return string(ver)
}

func (s *Service) bumpAvailVersion(ctx context.Context, vendorID uuid.UUID, date string) {
	if s.cache == nil {
		return
	}
	key := fmt.Sprintf("availver:%s:%s", vendorID, date)
	s.cache.Set(ctx, key, []byte(fmt.Sprintf("%d", time.Now().UnixNano())), 48*time.Hour)
}

func availKey(vendorID, serviceID uuid.UUID, date, version string, staffID *uuid.UUID) string {
	sid := "any"
	if staffID != nil {
		sid = staffID.String()
	}
	return fmt.Sprintf("avail:%s:%s:%s:%s:%s", vendorID, serviceID, date, sid, version)
}

func (s *Service) cachedAvailability(ctx context.Context, vendorID, serviceID uuid.UUID, date string, staffID *uuid.UUID) (*AvailabilityResponse, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, ok := s.cache.Get(ctx, availKey(vendorID, serviceID, date, s.availVersion(ctx, vendorID, date), staffID))
	if !ok {
		metrics.IncAvailabilityCache("miss")
		return nil, false
	}
	var resp AvailabilityResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		metrics.IncAvailabilityCache("miss")
		return nil, false
	}
	metrics.IncAvailabilityCache("hit")
	return &resp, true
}

func (s *Service) storeAvailability(ctx context.Context, vendorID, serviceID uuid.UUID, date string, staffID *uuid.UUID, resp *AvailabilityResponse) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	s.cache.Set(ctx, availKey(vendorID, serviceID, date, s.availVersion(ctx, vendorID, date), staffID), raw, s.cacheTTL)
}
