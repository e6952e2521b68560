package dto

import "time"

// TagColor is the background/text pair used to render a tag chip
type TagColor struct {
	Background string `json:"background"`
	Text       string `json:"text"`
}

// TagSummary is a tag resolved from a referral's tag ids
type TagSummary struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Color *TagColor `json:"color,omitempty"`
}

// AuthorSummary is the resolved author of a referral.
// An unknown author is represented as {"", "Unknown", ""}.
type AuthorSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CardReferral is the flattened, display-ready projection of a referral
type CardReferral struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Company     string        `json:"company,omitempty"`
	Location    string        `json:"location"`
	WorkType    string        `json:"workType"`
	Status      string        `json:"status"`
	PostedAt    time.Time     `json:"postedAt"`
	PostedLabel string        `json:"postedLabel,omitempty"`
	Tags        []TagSummary  `json:"tags"`
	Author      AuthorSummary `json:"author"`
}

// TagIDs returns the ids of the resolved tags in display order
func (c CardReferral) TagIDs() []string {
	ids := make([]string, 0, len(c.Tags))
	for _, t := range c.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}

// FilterOption is an {id, name} pair offered by a filter control
type FilterOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListReferralsRequest carries the active filter selection.
// Location is a location option id as returned by the filters endpoint.
type ListReferralsRequest struct {
	LocationID *string  `json:"locationId,omitempty"`
	WorkType   *string  `json:"workType,omitempty"`
	TagIDs     []string `json:"tagIds,omitempty"`
	Query      string   `json:"q,omitempty"`
	ActiveOnly bool     `json:"activeOnly,omitempty"`
}

// ListReferralsResponse is the filtered listing plus the options it was computed against
type ListReferralsResponse struct {
	Referrals []CardReferral       `json:"referrals"`
	Total     int                  `json:"total"`
	Filters   FilterOptionsResponse `json:"filters"`
}

// FilterOptionsResponse lists the values each filter control can take
type FilterOptionsResponse struct {
	Locations []FilterOption `json:"locations"`
	WorkTypes []string       `json:"workTypes"`
	Tags      []FilterOption `json:"tags"`
}

// ReferralDetailResponse is a card plus the fields only shown on the detail view
type ReferralDetailResponse struct {
	CardReferral
	Department         string   `json:"department,omitempty"`
	Requirements       string   `json:"requirements,omitempty"`
	Salary             string   `json:"salary,omitempty"`
	Benefits           []string `json:"benefits"`
	ApplicationProcess string   `json:"applicationProcess,omitempty"`
}

// TagCount is a tag with the number of referrals carrying it
type TagCount struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Count int      `json:"count"`
	Color TagColor `json:"color"`
}

// CompanyCount is a company with the number of referrals posted for it
type CompanyCount struct {
	Company string `json:"company"`
	Count   int    `json:"count"`
}

// AuthorReferralsResponse lists the referrals a user posted
type AuthorReferralsResponse struct {
	Author    AuthorSummary  `json:"author"`
	Referrals []CardReferral `json:"referrals"`
}

// RefreshCatalogResponse summarises a catalog reload
type RefreshCatalogResponse struct {
	Users       int       `json:"users"`
	Referrals   int       `json:"referrals"`
	Tags        int       `json:"tags"`
	RefreshedAt time.Time `json:"refreshedAt"`
}
