package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/salonhub/salonhub/internal/domain/staff"
	"github.com/salonhub/salonhub/internal/domain/vendor"
	"github.com/salonhub/salonhub/internal/platform/cache"
	"github.com/salonhub/salonhub/internal/platform/metrics"
	"github.com/salonhub/salonhub/internal/platform/notification"
)

// CouponRedeemer validates and burns coupon codes. Satisfied by the coupon
// service; both calls run inside the booking transaction.
type CouponRedeemer interface {
	Quote(ctx context.Context, code string, vendorID uuid.UUID, customerID string, amountCents int64) (int64, error)
	Redeem(ctx context.Context, code string, vendorID uuid.UUID, customerID string, bookingID uuid.UUID) error
}

// TxRunner runs fn inside a database transaction carried on the context.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// Service implements booking creation, the lifecycle transitions and the
// availability aggregation in availability.go.
type Service struct {
	bookings Repository
	vendors  VendorDirectory
	services ServiceDirectory
	staff    StaffDirectory
	coupons  CouponRedeemer
	cache    cache.Store
	notify   *notification.Dispatcher
	runTx    TxRunner
	gridMin  int
	cacheTTL time.Duration
}

type ServiceOpts struct {
	Bookings Repository
	Vendors  VendorDirectory
	Services ServiceDirectory
	Staff    StaffDirectory
	Coupons  CouponRedeemer // optional
	Cache    cache.Store    // optional
	Notify   *notification.Dispatcher
	RunTx    TxRunner
	GridMin  int
	CacheTTL time.Duration
}

func NewService(opts ServiceOpts) *Service {
	if opts.GridMin <= 0 {
		opts.GridMin = 30
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Minute
	}
	return &Service{
		bookings: opts.Bookings,
		vendors:  opts.Vendors,
		services: opts.Services,
		staff:    opts.Staff,
		coupons:  opts.Coupons,
		cache:    opts.Cache,
		notify:   opts.Notify,
		runTx:    opts.RunTx,
		gridMin:  opts.GridMin,
		cacheTTL: opts.CacheTTL,
	}
}

// CreateRequest is the input for CreateBooking. Date and Time are wall clock
// in the vendor's time zone. A nil StaffID means "any eligible staff".
type CreateRequest struct {
	VendorID   uuid.UUID  `json:"vendor_id"`
	ServiceID  uuid.UUID  `json:"service_id"`
	StaffID    *uuid.UUID `json:"staff_id,omitempty"`
	Date       string     `json:"date"` // YYYY-MM-DD
	Time       string     `json:"time"` // HH:MM
	CouponCode *string    `json:"coupon_code,omitempty"`
	Notes      *string    `json:"notes,omitempty"`
}

// CreateBooking books a slot for the customer. Duration and price come from
// the service row, never from the client. The availability check repeats
// inside the transaction with the staff member's bookings locked, so two
// concurrent requests for the same slot cannot both succeed.
func (s *Service) CreateBooking(ctx context.Context, customerID string, req CreateRequest) (*Booking, error) {
	if customerID == "" {
		return nil, NewValidationError("missing customer identity")
	}
	v, err := s.vendors.GetVendor(ctx, req.VendorID)
	if err != nil {
		return nil, NewNotFoundError("vendor %s not found", req.VendorID)
	}
	if !v.IsApproved() {
		return nil, NewNotFoundError("vendor %s not found", req.VendorID)
	}
	svc, err := s.services.GetService(ctx, req.ServiceID)
	if err != nil {
		return nil, NewNotFoundError("service %s not found", req.ServiceID)
	}
	if svc.VendorID != req.VendorID {
		return nil, NewValidationError("service %s does not belong to vendor %s", req.ServiceID, req.VendorID)
	}
	loc, err := v.Location()
	if err != nil {
		return nil, err
	}
	day, err := time.ParseInLocation("2006-01-02", req.Date, loc)
	if err != nil {
		return nil, NewValidationError("invalid date %q, want YYYY-MM-DD", req.Date)
	}
	startMin, err := vendor.ParseClock(req.Time)
	if err != nil {
		return nil, NewValidationError("invalid time %q, want HH:MM", req.Time)
	}
	if startMin%s.gridMin != 0 {
		return nil, NewValidationError("time %s is not on the %d-minute grid", req.Time, s.gridMin)
	}
	startTime := day.Add(time.Duration(startMin) * time.Minute)
	if !startTime.After(time.Now()) {
		return nil, NewValidationError("booking time %s is in the past", startTime.Format(time.RFC3339))
	}
	endTime := startTime.Add(time.Duration(svc.DurationMin) * time.Minute)

	candidates, err := s.scheduledCandidates(ctx, v, req, day, startMin, svc.DurationMin)
	if err != nil {
		return nil, err
	}

	b := &Booking{
		VendorID:    req.VendorID,
		ServiceID:   req.ServiceID,
		CustomerID:  customerID,
		StartTime:   startTime.UTC(),
		EndTime:     endTime.UTC(),
		DurationMin: svc.DurationMin,
		PriceCents:  svc.PriceCents,
		Status:      StatusPending,
		Notes:       req.Notes,
	}

	err = s.runTx(ctx, func(ctx context.Context) error {
		assigned, err := s.assignStaff(ctx, candidates, startTime.UTC(), endTime.UTC())
		if err != nil {
			return err
		}
		b.StaffID = assigned

		if req.CouponCode != nil && *req.CouponCode != "" {
			if s.coupons == nil {
				return NewValidationError("coupons are not supported")
			}
			discount, err := s.coupons.Quote(ctx, *req.CouponCode, req.VendorID, customerID, svc.PriceCents)
			if err != nil {
				return err
			}
			b.DiscountCents = discount
			b.CouponCode = req.CouponCode
		}

		if err := s.bookings.Create(ctx, b); err != nil {
			return err
		}
		if b.CouponCode != nil {
			return s.coupons.Redeem(ctx, *b.CouponCode, req.VendorID, customerID, b.ID)
		}
		return nil
	})
	if err != nil {
		if KindOf(err) == KindConflict {
			metrics.IncBookingConflict()
		}
		return nil, err
	}

	s.bumpAvailVersion(ctx, req.VendorID, req.Date)
	preference := "any"
	if req.StaffID != nil {
		preference = "specific"
	}
	metrics.IncBookingCreated(preference)
	log.Info().
		Str("booking_id", b.ID.String()).
		Str("vendor_id", b.VendorID.String()).
		Str("staff_id", b.StaffID.String()).
		Time("start", b.StartTime).
		Msg("booking created")

	s.notifyBooking(ctx, b, v, svc.Name, "booking-created", "vendor-new-booking")
	return b, nil
}

// scheduledCandidates returns the eligible staff, in id order, whose schedule
// covers the requested window. Booking conflicts are checked later under lock.
func (s *Service) scheduledCandidates(ctx context.Context, v *vendor.Vendor, req CreateRequest, day time.Time, startMin, durationMin int) ([]*staff.Staff, error) {
	members, err := s.staff.ListEligible(ctx, req.VendorID, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if req.StaffID != nil {
		var picked *staff.Staff
		for _, m := range members {
			if m.ID == *req.StaffID {
				picked = m
				break
			}
		}
		if picked == nil {
			return nil, NewNotEligibleError("staff %s cannot perform service %s", *req.StaffID, req.ServiceID)
		}
		members = []*staff.Staff{picked}
	}

	open := v.Hours.For(day.Weekday())
	if !open.Open {
		return nil, NewValidationError("vendor is closed on %s", day.Weekday())
	}
	openStart, err := vendor.ParseClock(open.Start)
	if err != nil {
		return nil, err
	}
	openEnd, err := vendor.ParseClock(open.End)
	if err != nil {
		return nil, err
	}

	want := Interval{Start: startMin, End: startMin + durationMin}
	var candidates []*staff.Staff
	for _, m := range members {
		wd, ok := workDayFor(m, day.Weekday(), openStart, openEnd)
		if !ok {
			continue
		}
		if want.Start < wd.Window.Start || want.End > wd.Window.End {
			continue
		}
		onBreak := false
		for _, br := range wd.Breaks {
			if want.Overlaps(br) {
				onBreak = true
				break
			}
		}
		if !onBreak {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		if req.StaffID != nil {
			return nil, NewValidationError("staff member is not scheduled to work at %s on %s", req.Time, req.Date)
		}
		return nil, NewValidationError("no staff is scheduled to work at %s on %s", req.Time, req.Date)
	}
	return candidates, nil
}

// assignStaff picks the first candidate, in id order, whose locked bookings
// leave the window free.
func (s *Service) assignStaff(ctx context.Context, candidates []*staff.Staff, from, to time.Time) (uuid.UUID, error) {
	for _, m := range candidates {
		holding, err := s.bookings.LockHolding(ctx, m.ID, from, to)
		if err != nil {
			return uuid.Nil, fmt.Errorf("lock bookings for staff %s: %w", m.ID, err)
		}
		if len(holding) == 0 {
			return m.ID, nil
		}
	}
	return uuid.Nil, NewConflictError("slot is no longer available")
}

// Get returns a booking visible to the given user. Customers see their own
// bookings; anyone else needs the handler's role checks.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

func (s *Service) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*Booking, int, error) {
	return s.bookings.ListByCustomer(ctx, customerID, limit, offset)
}

func (s *Service) ListByVendor(ctx context.Context, vendorID uuid.UUID, date *time.Time, limit, offset int) ([]*Booking, int, error) {
	return s.bookings.ListByVendor(ctx, vendorID, date, limit, offset)
}

// Transition moves a booking through its lifecycle and invalidates the
// availability cache when a slot frees up.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, to string) (*Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(b.Status, to) {
		return nil, NewValidationError("cannot move booking from %s to %s", b.Status, to)
	}
	if err := s.bookings.SetStatus(ctx, id, to); err != nil {
		return nil, err
	}
	metrics.IncBookingTransition(to)

	if HoldsSlot(b.Status) && !HoldsSlot(to) {
		if v, err := s.vendors.GetVendor(ctx, b.VendorID); err == nil {
			if loc, err := v.Location(); err == nil {
				s.bumpAvailVersion(ctx, b.VendorID, b.StartTime.In(loc).Format("2006-01-02"))
			}
		}
	}

	b.Status = to
	if to == StatusCancelled {
		now := time.Now()
		b.CancelledAt = &now
	}

	if s.notify != nil && (to == StatusConfirmed || to == StatusCancelled) {
		template := "booking-confirmed"
		if to == StatusCancelled {
			template = "booking-cancelled"
		}
		if v, err := s.vendors.GetVendor(ctx, b.VendorID); err == nil {
			if svc, err := s.services.GetService(ctx, b.ServiceID); err == nil {
				s.notifyBooking(ctx, b, v, svc.Name, template, "")
			}
		}
	}
	return b, nil
}

func (s *Service) notifyBooking(ctx context.Context, b *Booking, v *vendor.Vendor, serviceName, customerTemplate, vendorTemplate string) {
	if s.notify == nil {
		return
	}
	loc, err := v.Location()
	if err != nil {
		loc = time.UTC
	}
	local := b.StartTime.In(loc)
	data := map[string]string{
		"customer_name": b.CustomerID,
		"vendor_name":   v.Name,
		"service_name":  serviceName,
		"date":          local.Format("2006-01-02"),
		"time":          local.Format("15:04"),
	}
	if customerTemplate != "" {
		s.notify.SendAsync(notification.TypeEmail, b.CustomerID, customerTemplate, data)
	}
	if vendorTemplate != "" {
		s.notify.SendAsync(notification.TypeEmail, v.Email, vendorTemplate, data)
	}
}
