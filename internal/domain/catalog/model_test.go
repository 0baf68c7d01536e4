package catalog

import (
	"testing"

	"github.com/google/uuid"
)

func TestServiceValidate(t *testing.T) {
	vendorID := uuid.New()
	good := &Service{VendorID: vendorID, Name: "Haircut", DurationMin: 60, PriceCents: 5000}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid service rejected: %v", err)
	}

	tests := []struct {
		name string
		s    *Service
	}{
		{"missing vendor", &Service{Name: "Haircut", DurationMin: 60, PriceCents: 5000}},
		{"missing name", &Service{VendorID: vendorID, DurationMin: 60, PriceCents: 5000}},
		{"duration below minimum", &Service{VendorID: vendorID, Name: "Trim", DurationMin: 10, PriceCents: 1000}},
		{"negative price", &Service{VendorID: vendorID, Name: "Haircut", DurationMin: 60, PriceCents: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.s.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	// A duration of exactly the minimum is bookable.
	edge := &Service{VendorID: vendorID, Name: "Quick trim", DurationMin: MinDurationMin, PriceCents: 1500}
	if err := edge.Validate(); err != nil {
		t.Errorf("minimum duration rejected: %v", err)
	}
}
