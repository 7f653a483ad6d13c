package usecase

import "github.com/quiprentals/lead-market/internal/entity"

// Visibility classifies what a viewer may observe of a lead. The filter is a
// pure function of (lead, viewer) and must be re-derived on every read: a
// lead's class flips the instant it is purchased.
type Visibility int

const (
	// Hidden: excluded from the result set entirely.
	Hidden Visibility = iota
	// Masked: descriptive fields without requester contact info or purchase
	// fields. What non-paying viewers see of a New lead.
	Masked
	// Full: every field.
	Full
)

func VisibilityFor(lead *entity.Lead, viewer entity.Account) Visibility {
	if viewer.IsAdmin() {
		return Full
	}
	if lead.IsNew() {
		return Masked
	}
	if lead.IsPurchased() && !viewer.IsAnonymous() && lead.PurchasedBy == viewer.ID {
		return Full
	}
	return Hidden
}

// ApplyVisibility returns the view of the lead the viewer is allowed, or
// ok=false when the lead must be excluded. Masked views are copies; the
// original is never mutated.
func ApplyVisibility(lead *entity.Lead, viewer entity.Account) (*entity.Lead, bool) {
	switch VisibilityFor(lead, viewer) {
	case Full:
		return lead, true
	case Masked:
		masked := *lead
		masked.Name = ""
		masked.Email = ""
		masked.Phone = ""
		masked.Street = ""
		masked.PurchasedBy = ""
		masked.PurchasedAt = nil
		masked.LeadStatus = ""
		return &masked, true
	default:
		return nil, false
	}
}

// FilterLeads applies the visibility filter to a snapshot of leads,
// preserving order.
func FilterLeads(leads []*entity.Lead, viewer entity.Account) []*entity.Lead {
	visible := make([]*entity.Lead, 0, len(leads))
	for _, lead := range leads {
		if view, ok := ApplyVisibility(lead, viewer); ok {
			visible = append(visible, view)
		}
	}
	return visible
}
