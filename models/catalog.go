package models

// Catalog is the complete set of entities the listing logic works on.
type Catalog struct {
	Users     []User     `json:"users" yaml:"users"`
	Referrals []Referral `json:"referrals" yaml:"referrals"`
	Tags      []Tag      `json:"tags" yaml:"tags"`
}

// Dataset is a catalog plus the referral requests made against it, as stored in seed files.
type Dataset struct {
	Users            []User            `json:"users" yaml:"users"`
	Referrals        []Referral        `json:"referrals" yaml:"referrals"`
	Tags             []Tag             `json:"tags" yaml:"tags"`
	ReferralRequests []ReferralRequest `json:"referral_requests" yaml:"referral_requests"`
}

// Catalog returns the listing view of the dataset. Slices are shared, not copied.
func (d *Dataset) Catalog() *Catalog {
	return &Catalog{
		Users:     d.Users,
		Referrals: d.Referrals,
		Tags:      d.Tags,
	}
}

// AllModels lists the tables owned by the service, in dependency order.
func AllModels() []any {
	return []any{&User{}, &Tag{}, &Referral{}, &ReferralRequest{}}
}
