package businessflow

import (
	"maps"
	"slices"
	"strings"

	"github.com/amirphl/referral-hub/app/dto"
	"github.com/amirphl/referral-hub/utils"
)

// FilterState holds the active listing criteria. The zero value is not usable; call NewFilterState.
// Ids may reference locations or tags that no referral carries.
type FilterState struct {
	SelectedLocationID *string
	SelectedWorkType   *string
	SelectedTagIDs     map[string]struct{}

	// Query is a free-text search over title, description and company.
	// It is not compared by Equal.
	Query string
}

// NewFilterState returns a state that lets every referral through
func NewFilterState() *FilterState {
	return &FilterState{SelectedTagIDs: make(map[string]struct{})}
}

// NewFilterStateFromRequest builds a state from a listing request
func NewFilterStateFromRequest(req *dto.ListReferralsRequest) *FilterState {
	s := NewFilterState()
	if req == nil {
		return s
	}
	s.SetLocation(req.LocationID)
	s.SetWorkType(req.WorkType)
	for _, id := range req.TagIDs {
		s.SelectedTagIDs[id] = struct{}{}
	}
	s.SetQuery(req.Query)
	return s
}

// SetLocation selects a location option id, or clears the selection when id is nil
func (s *FilterState) SetLocation(id *string) {
	s.SelectedLocationID = cloneString(id)
}

// SetWorkType selects a display work type such as "Remote", or clears it when t is nil
func (s *FilterState) SetWorkType(t *string) {
	s.SelectedWorkType = cloneString(t)
}

// ToggleTag adds id to the selected tags, or removes it when already selected
func (s *FilterState) ToggleTag(id string) {
	if s.SelectedTagIDs == nil {
		s.SelectedTagIDs = make(map[string]struct{})
	}
	if _, ok := s.SelectedTagIDs[id]; ok {
		delete(s.SelectedTagIDs, id)
		return
	}
	s.SelectedTagIDs[id] = struct{}{}
}

// SetQuery replaces the free-text search
func (s *FilterState) SetQuery(q string) {
	s.Query = strings.TrimSpace(q)
}

// ClearAll resets the state to NewFilterState
func (s *FilterState) ClearAll() {
	s.SelectedLocationID = nil
	s.SelectedWorkType = nil
	s.SelectedTagIDs = make(map[string]struct{})
	s.Query = ""
}

// SelectedTags returns the selected tag ids sorted
func (s *FilterState) SelectedTags() []string {
	return slices.Sorted(maps.Keys(s.SelectedTagIDs))
}

// IsEmpty reports whether no clause is active
func (s *FilterState) IsEmpty() bool {
	return s.SelectedLocationID == nil && s.SelectedWorkType == nil && len(s.SelectedTagIDs) == 0 && s.Query == ""
}

// Equal compares location, work type and tag selection
func (s *FilterState) Equal(other *FilterState) bool {
	if s == nil || other == nil {
		return s == other
	}
	return equalStringPtr(s.SelectedLocationID, other.SelectedLocationID) &&
		equalStringPtr(s.SelectedWorkType, other.SelectedWorkType) &&
		maps.Equal(s.SelectedTagIDs, other.SelectedTagIDs)
}

// Matches reports whether card passes every active clause.
// locations resolves the selected location id to the name matched as a substring;
// an id that resolves to nothing is matched as the empty string.
func (s *FilterState) Matches(card dto.CardReferral, locations []dto.FilterOption) bool {
	if s.SelectedLocationID != nil {
		name := ""
		for _, loc := range locations {
			if loc.ID == *s.SelectedLocationID {
				name = loc.Name
				break
			}
		}
		if !strings.Contains(card.Location, name) {
			return false
		}
	}

	if s.SelectedWorkType != nil && card.WorkType != *s.SelectedWorkType {
		return false
	}

	if len(s.SelectedTagIDs) > 0 {
		have := make(map[string]struct{}, len(card.Tags))
		for _, t := range card.Tags {
			have[t.ID] = struct{}{}
		}
		for id := range s.SelectedTagIDs {
			if _, ok := have[id]; !ok {
				return false
			}
		}
	}

	if s.Query != "" {
		needle := utils.FoldText(s.Query)
		haystack := utils.FoldText(card.Title + "\n" + card.Description + "\n" + card.Company)
		if !strings.Contains(haystack, needle) {
			return false
		}
	}

	return true
}

// Apply returns the cards that match, keeping their relative order
func (s *FilterState) Apply(cards []dto.CardReferral, locations []dto.FilterOption) []dto.CardReferral {
	out := make([]dto.CardReferral, 0, len(cards))
	for _, card := range cards {
		if s.Matches(card, locations) {
			out = append(out, card)
		}
	}
	return out
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
