package domain_test

import (
	"reflect"
	"testing"

	"github.com/neomorfeo/leadrecon/internal/domain"
)

func convertedLead(id string) domain.Lead {
	lead := domain.NewLead(id, "Acme", "Ada", "ada@acme.test")
	lead.Status = domain.LeadConverted
	return lead
}

func TestClassify_DecisionTableIsTotal(t *testing.T) {
	lead := convertedLead("l-1")

	for _, exists := range []bool{false, true} {
		for _, active := range []bool{false, true} {
			for _, rel := range []bool{false, true} {
				tenant := domain.TenantProbe{Exists: exists, Active: active}
				if exists {
					tenant.Tenant = domain.NewTenant("t-1", lead.ID, "Acme", "acme", "free")
				}

				got := domain.Classify(lead, tenant, domain.IdentityProbe{Exists: true, IdentityID: "i-1"}, rel)

				var want domain.Action
				switch {
				case !exists:
					want = domain.ActionRevertStatus
				case !active:
					want = domain.ActionManualIntervention
				case !rel:
					want = domain.ActionRetryConversion
				default:
					want = domain.ActionNone
				}

				if got.RecommendedAction != want {
					t.Fatalf("Classify(exists=%v, active=%v, rel=%v) action = %q, want %q",
						exists, active, rel, got.RecommendedAction, want)
				}
				if got.IsValid() != (got.RecommendedAction == domain.ActionNone) {
					t.Fatalf("Classify(exists=%v, active=%v, rel=%v) IsValid = %v with action %q",
						exists, active, rel, got.IsValid(), got.RecommendedAction)
				}
				if got.IsValid() != (len(got.Issues) == 0) {
					t.Fatalf("IsValid = %v but %d issues", got.IsValid(), len(got.Issues))
				}

				known := false
				for _, a := range domain.Actions {
					if a == got.RecommendedAction {
						known = true
					}
				}
				if !known {
					t.Fatalf("action %q is not a known action", got.RecommendedAction)
				}
			}
		}
	}
}

func TestClassify_TenantMissing(t *testing.T) {
	got := domain.Classify(convertedLead("L1"), domain.TenantProbe{}, domain.IdentityProbe{}, false)

	if got.TenantExists {
		t.Error("TenantExists = true, want false")
	}
	if got.RecommendedAction != domain.ActionRevertStatus {
		t.Errorf("RecommendedAction = %q, want %q", got.RecommendedAction, domain.ActionRevertStatus)
	}
	if got.IsValid() {
		t.Error("IsValid = true, want false")
	}
	if !got.HasIssue(domain.IssueTenantMissing) {
		t.Errorf("Issues = %v, want tenant missing", got.IssueMessages())
	}
}

func TestClassify_MissingRelationshipFlagsUnknownOwner(t *testing.T) {
	lead := convertedLead("L2")
	tenant := domain.TenantProbe{Exists: true, Active: true, Tenant: domain.NewTenant("t-2", "L2", "Acme", "acme", "free")}

	got := domain.Classify(lead, tenant, domain.IdentityProbe{}, false)

	if got.RecommendedAction != domain.ActionRetryConversion {
		t.Errorf("RecommendedAction = %q, want %q", got.RecommendedAction, domain.ActionRetryConversion)
	}
	if !got.HasIssue(domain.IssueOwnerIdentityMissing) {
		t.Errorf("Issues = %v, want owner identity flagged", got.IssueMessages())
	}
	if got.TenantID != "t-2" {
		t.Errorf("TenantID = %q, want %q", got.TenantID, "t-2")
	}
}

func TestClassify_PrefersTenantOwnerEmail(t *testing.T) {
	lead := convertedLead("L5")
	tenant := domain.NewTenant("t-5", "L5", "Acme", "acme", "free")
	tenant.OwnerEmail = "owner@acme.test"

	got := domain.Classify(lead, domain.TenantProbe{Exists: true, Active: true, Tenant: tenant}, domain.IdentityProbe{}, true)

	if got.OwnerEmail != "owner@acme.test" {
		t.Errorf("OwnerEmail = %q, want %q", got.OwnerEmail, "owner@acme.test")
	}
}

func TestClassify_RelationshipIgnoredWithoutTenant(t *testing.T) {
	got := domain.Classify(convertedLead("L6"), domain.TenantProbe{}, domain.IdentityProbe{}, true)

	if got.AdminRelationshipExists {
		t.Error("AdminRelationshipExists = true without a tenant")
	}
}

func TestClassify_SameInputSameResult(t *testing.T) {
	lead := convertedLead("l-1")
	tenant := domain.TenantProbe{Exists: true, Active: true, Tenant: domain.Tenant{ID: "t-1"}}
	identity := domain.IdentityProbe{Exists: true, IdentityID: "i-1"}

	first := domain.Classify(lead, tenant, identity, false)
	second := domain.Classify(lead, tenant, identity, false)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Classify results differ:\n%+v\n%+v", first, second)
	}
	if !first.CheckedAt.IsZero() {
		t.Errorf("CheckedAt = %v, want zero", first.CheckedAt)
	}
}

func TestIssueKind_String(t *testing.T) {
	cases := map[domain.IssueKind]string{
		domain.IssueTenantMissing:            "tenant missing",
		domain.IssueTenantInactive:           "tenant inactive",
		domain.IssueAdminRelationshipMissing: "admin relationship missing",
		domain.IssueOwnerIdentityMissing:     "owner identity not found",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}

func TestAction_Executable(t *testing.T) {
	if domain.ActionManualIntervention.Executable() {
		t.Error("manual_intervention must not be executable")
	}
	if domain.ActionNone.Executable() {
		t.Error("none must not be executable")
	}
	if !domain.ActionRevertStatus.Executable() || !domain.ActionRetryConversion.Executable() {
		t.Error("revert_status and retry_conversion must be executable")
	}
}
