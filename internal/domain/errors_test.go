package domain_test

import (
	"errors"
	"testing"

	"github.com/neomorfeo/leadrecon/internal/domain"
)

func TestSlugConflictError_Error(t *testing.T) {
	err := &domain.SlugConflictError{Slug: "acme"}
	want := `slug "acme" is already in use`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestTransitionError_Error(t *testing.T) {
	err := &domain.TransitionError{
		Entity:  "tenant",
		Event:   string(domain.TenantEventReactivate),
		Current: string(domain.TenantActive),
	}
	want := `tenant event "reactivate" is not valid from state "active"`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestProbeError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &domain.ProbeError{Probe: "tenant", LeadID: "l-1", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("ProbeError should unwrap to its cause")
	}
	want := "probe tenant for lead l-1: connection refused"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestNotification_Message(t *testing.T) {
	cases := []struct {
		n    domain.Notification
		want string
	}{
		{domain.Notification{Kind: domain.NotificationDriftDetected, Count: 3}, "found 3 invalid conversions"},
		{domain.Notification{Kind: domain.NotificationBulkFixed, Count: 2, Total: 3}, "fixed 2 of 3 leads"},
	}
	for _, tc := range cases {
		if got := tc.n.Message(); got != tc.want {
			t.Errorf("Message() = %q, want %q", got, tc.want)
		}
	}
}
