package businessflow

import (
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/amirphl/referral-hub/app/dto"
	"github.com/amirphl/referral-hub/models"
)

// UnknownAuthorName is shown for referrals whose author id matches no user
const UnknownAuthorName = "Unknown"

// NormalizeReferrals flattens referrals into display cards, one card per referral in input order.
// Authors and tags are resolved by id; unknown tag ids are dropped and an unknown author
// degrades to {"", "Unknown", ""}. Status is not inspected.
func NormalizeReferrals(referrals []models.Referral, users []models.User, tags []models.Tag) []dto.CardReferral {
	authors := make(map[string]dto.AuthorSummary, len(users))
	for _, u := range users {
		if _, seen := authors[u.ID]; seen {
			continue
		}
		authors[u.ID] = dto.AuthorSummary{ID: u.ID, Name: u.Name, Email: u.Email}
	}

	tagNames := make(map[string]string, len(tags))
	for _, t := range tags {
		if _, seen := tagNames[t.ID]; seen {
			continue
		}
		tagNames[t.ID] = t.Name
	}

	cards := make([]dto.CardReferral, 0, len(referrals))
	for _, r := range referrals {
		author, ok := authors[r.AuthorID]
		if !ok {
			author = dto.AuthorSummary{Name: UnknownAuthorName}
		}

		resolved := make([]dto.TagSummary, 0, len(r.TagIDs))
		for _, id := range r.TagIDs {
			if name, ok := tagNames[id]; ok {
				resolved = append(resolved, dto.TagSummary{ID: id, Name: name})
			}
		}

		cards = append(cards, dto.CardReferral{
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			Company:     r.Company,
			Location:    r.Location,
			WorkType:    DisplayWorkType(string(r.WorkType)),
			Status:      string(r.Status),
			PostedAt:    r.CreatedAt,
			Tags:        resolved,
			Author:      author,
		})
	}
	return cards
}

// DisplayWorkType upper-cases the first character and leaves the rest untouched
func DisplayWorkType(workType string) string {
	r, size := utf8.DecodeRuneInString(workType)
	if r == utf8.RuneError {
		return workType
	}
	return string(unicode.ToUpper(r)) + workType[size:]
}

// DistinctLocations returns the unique referral locations in first-seen order.
// Ids are 1-based positions and only stable for the same input order.
func DistinctLocations(referrals []models.Referral) []dto.FilterOption {
	seen := make(map[string]struct{}, len(referrals))
	locations := make([]dto.FilterOption, 0)
	for _, r := range referrals {
		if _, ok := seen[r.Location]; ok {
			continue
		}
		seen[r.Location] = struct{}{}
		locations = append(locations, dto.FilterOption{
			ID:   strconv.Itoa(len(locations) + 1),
			Name: r.Location,
		})
	}
	return locations
}

// DistinctTags projects the tag catalog onto filter options in catalog order
func DistinctTags(tags []models.Tag) []dto.FilterOption {
	options := make([]dto.FilterOption, 0, len(tags))
	for _, t := range tags {
		options = append(options, dto.FilterOption{ID: t.ID, Name: t.Name})
	}
	return options
}
