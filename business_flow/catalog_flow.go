package businessflow

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/amirphl/referral-hub/app/dto"
	"github.com/amirphl/referral-hub/models"
	"github.com/amirphl/referral-hub/repository"
	"github.com/amirphl/referral-hub/utils"
	"github.com/xuri/excelize/v2"
)

// WorkTypeOptions are the display work types offered by the filter control
var WorkTypeOptions = []string{"Remote", "On-site", "Hybrid"}

// CatalogFlow serves the referral listing and its supporting lookups
type CatalogFlow interface {
	ListReferrals(ctx context.Context, req *dto.ListReferralsRequest) (*dto.ListReferralsResponse, error)
	GetReferral(ctx context.Context, id string) (*dto.ReferralDetailResponse, error)
	FilterOptions(ctx context.Context) (*dto.FilterOptionsResponse, error)
	PopularTags(ctx context.Context, limit int) ([]dto.TagCount, error)
	TopCompanies(ctx context.Context, limit int) ([]dto.CompanyCount, error)
	ReferralsByAuthor(ctx context.Context, userID string) (*dto.AuthorReferralsResponse, error)
	ExportReferrals(ctx context.Context, req *dto.ListReferralsRequest) (string, []byte, error)
	Refresh(ctx context.Context) (*dto.RefreshCatalogResponse, error)
}

// CatalogFlowImpl implements CatalogFlow on top of a CatalogReader
type CatalogFlowImpl struct {
	reader repository.CatalogReader
	source string
	now    func() time.Time
}

// NewCatalogFlow creates a catalog flow. source labels load metrics, e.g. "database" or "file".
func NewCatalogFlow(reader repository.CatalogReader, source string) CatalogFlow {
	return &CatalogFlowImpl{
		reader: reader,
		source: source,
		now:    utils.UTCNow,
	}
}

func (f *CatalogFlowImpl) load(ctx context.Context) (*models.Catalog, error) {
	start := time.Now()
	catalog, err := f.reader.Load(ctx)
	catalogLoadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		catalogLoadsTotal.WithLabelValues(f.source, "error").Inc()
		log.Printf(`{"level":"error","event":"catalog_load_failed","source":"%s","error":"%v"}`, f.source, err)
		return nil, NewBusinessError("CATALOG_UNAVAILABLE", "Failed to load referral catalog", fmt.Errorf("%w: %v", ErrCatalogUnavailable, err))
	}
	if catalog == nil {
		catalog = &models.Catalog{}
	}
	catalogLoadsTotal.WithLabelValues(f.source, "success").Inc()
	return catalog, nil
}

// ListReferrals normalizes the catalog and applies the requested filter
func (f *CatalogFlowImpl) ListReferrals(ctx context.Context, req *dto.ListReferralsRequest) (*dto.ListReferralsResponse, error) {
	catalog, err := f.load(ctx)
	if err != nil {
		return nil, err
	}

	cards, locations := f.filteredCards(catalog, req)
	return &dto.ListReferralsResponse{
		Referrals: cards,
		Total:     len(cards),
		Filters:   f.filterOptions(catalog, locations),
	}, nil
}

// filteredCards returns decorated cards passing req, plus the location options their ids refer to.
// Location ids are always computed over the whole catalog so they agree with FilterOptions.
func (f *CatalogFlowImpl) filteredCards(catalog *models.Catalog, req *dto.ListReferralsRequest) ([]dto.CardReferral, []dto.FilterOption) {
	locations := DistinctLocations(catalog.Referrals)
	cards := NormalizeReferrals(catalog.Referrals, catalog.Users, catalog.Tags)

	if req != nil && req.ActiveOnly {
		cards = slices.DeleteFunc(cards, func(c dto.CardReferral) bool {
			return c.Status != string(models.ReferralStatusActive)
		})
	}

	cards = NewFilterStateFromRequest(req).Apply(cards, locations)
	f.decorate(cards)
	return cards, locations
}

func (f *CatalogFlowImpl) decorate(cards []dto.CardReferral) {
	now := f.now()
	for i := range cards {
		cards[i].PostedLabel = FormatRelativeDate(cards[i].PostedAt, now)
		for j := range cards[i].Tags {
			color := TagColor(cards[i].Tags[j].ID)
			cards[i].Tags[j].Color = &color
		}
	}
}

// GetReferral returns a single referral with its detail fields
func (f *CatalogFlowImpl) GetReferral(ctx context.Context, id string) (*dto.ReferralDetailResponse, error) {
	catalog, err := f.load(ctx)
	if err != nil {
		return nil, err
	}

	idx := slices.IndexFunc(catalog.Referrals, func(r models.Referral) bool { return r.ID == id })
	if idx < 0 {
		return nil, ErrReferralNotFound
	}
	r := catalog.Referrals[idx]

	cards := NormalizeReferrals([]models.Referral{r}, catalog.Users, catalog.Tags)
	f.decorate(cards)

	benefits := []string(r.Benefits)
	if benefits == nil {
		benefits = []string{}
	}
	return &dto.ReferralDetailResponse{
		CardReferral:       cards[0],
		Department:         r.Department,
		Requirements:       r.Requirements,
		Salary:             r.Salary,
		Benefits:           benefits,
		ApplicationProcess: r.ApplicationProcess,
	}, nil
}

// FilterOptions returns the values the listing can be filtered by
func (f *CatalogFlowImpl) FilterOptions(ctx context.Context) (*dto.FilterOptionsResponse, error) {
	catalog, err := f.load(ctx)
	if err != nil {
		return nil, err
	}
	opts := f.filterOptions(catalog, DistinctLocations(catalog.Referrals))
	return &opts, nil
}

func (f *CatalogFlowImpl) filterOptions(catalog *models.Catalog, locations []dto.FilterOption) dto.FilterOptionsResponse {
	return dto.FilterOptionsResponse{
		Locations: locations,
		WorkTypes: slices.Clone(WorkTypeOptions),
		Tags:      DistinctTags(catalog.Tags),
	}
}

// PopularTags ranks tags by the number of referrals carrying them.
// Ties keep catalog order and tags no referral uses are left out.
func (f *CatalogFlowImpl) PopularTags(ctx context.Context, limit int) ([]dto.TagCount, error) {
	limit, err := rankingLimit(limit, utils.DefaultPopularTagsLimit)
	if err != nil {
		return nil, err
	}
	catalog, err := f.load(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, r := range catalog.Referrals {
		for _, id := range r.TagIDs {
			counts[id]++
		}
	}

	ranked := make([]dto.TagCount, 0, len(catalog.Tags))
	for _, t := range catalog.Tags {
		if n := counts[t.ID]; n > 0 {
			ranked = append(ranked, dto.TagCount{ID: t.ID, Name: t.Name, Count: n, Color: TagColor(t.ID)})
			delete(counts, t.ID)
		}
	}
	slices.SortStableFunc(ranked, func(a, b dto.TagCount) int { return b.Count - a.Count })

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// TopCompanies ranks companies by referral count. Names are grouped ignoring case and accents
// and reported with the first spelling seen; referrals without a company are skipped.
func (f *CatalogFlowImpl) TopCompanies(ctx context.Context, limit int) ([]dto.CompanyCount, error) {
	limit, err := rankingLimit(limit, utils.DefaultTopCompaniesLimit)
	if err != nil {
		return nil, err
	}
	catalog, err := f.load(ctx)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	ranked := make([]dto.CompanyCount, 0)
	for _, r := range catalog.Referrals {
		name := strings.TrimSpace(r.Company)
		if name == "" {
			continue
		}
		key := utils.FoldText(name)
		if i, ok := index[key]; ok {
			ranked[i].Count++
			continue
		}
		index[key] = len(ranked)
		ranked = append(ranked, dto.CompanyCount{Company: name, Count: 1})
	}
	slices.SortStableFunc(ranked, func(a, b dto.CompanyCount) int { return b.Count - a.Count })

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

func rankingLimit(limit, def int) (int, error) {
	switch {
	case limit == 0:
		return def, nil
	case limit < 0 || limit > utils.MaxRankingLimit:
		return 0, NewBusinessErrorf("INVALID_LIMIT", "limit must be between 1 and %d", ErrInvalidLimit, utils.MaxRankingLimit)
	}
	return limit, nil
}

// ReferralsByAuthor returns the cards a user posted, in catalog order
func (f *CatalogFlowImpl) ReferralsByAuthor(ctx context.Context, userID string) (*dto.AuthorReferralsResponse, error) {
	catalog, err := f.load(ctx)
	if err != nil {
		return nil, err
	}

	idx := slices.IndexFunc(catalog.Users, func(u models.User) bool { return u.ID == userID })
	if idx < 0 {
		return nil, ErrUserNotFound
	}

	authored := make([]models.Referral, 0)
	for _, r := range catalog.Referrals {
		if r.AuthorID == userID {
			authored = append(authored, r)
		}
	}
	cards := NormalizeReferrals(authored, catalog.Users, catalog.Tags)
	f.decorate(cards)

	return &dto.AuthorReferralsResponse{
		Author:    ToAuthorSummary(catalog.Users[idx]),
		Referrals: cards,
	}, nil
}

// ExportReferrals writes the filtered listing to an xlsx workbook
func (f *CatalogFlowImpl) ExportReferrals(ctx context.Context, req *dto.ListReferralsRequest) (string, []byte, error) {
	catalog, err := f.load(ctx)
	if err != nil {
		return "", nil, err
	}
	cards, _ := f.filteredCards(catalog, req)

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := "Referrals"
	if err := xl.SetSheetName(xl.GetSheetName(0), sheet); err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to prepare Excel sheet", err)
	}

	header := []string{"id", "title", "company", "location", "work_type", "status", "tags", "author", "author_email", "posted_at"}
	if err := xl.SetSheetRow(sheet, "A1", &header); err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel header", err)
	}

	for i, c := range cards {
		names := make([]string, 0, len(c.Tags))
		for _, t := range c.Tags {
			names = append(names, t.Name)
		}
		record := []string{
			c.ID,
			c.Title,
			c.Company,
			c.Location,
			c.WorkType,
			c.Status,
			strings.Join(names, ", "),
			c.Author.Name,
			c.Author.Email,
			utils.Timestamp(c.PostedAt),
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := xl.SetSheetRow(sheet, cellRef, &record); err != nil {
			return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel row", err)
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}
	filename := fmt.Sprintf("referrals_%s.xlsx", utils.DateStamp(f.now()))
	return filename, buf.Bytes(), nil
}

// Refresh drops any cached snapshot and reloads the catalog from its source
func (f *CatalogFlowImpl) Refresh(ctx context.Context) (*dto.RefreshCatalogResponse, error) {
	if inv, ok := f.reader.(repository.CatalogInvalidator); ok {
		if err := inv.Invalidate(ctx); err != nil {
			log.Printf(`{"level":"warn","event":"catalog_invalidate_failed","error":"%v"}`, err)
		}
	}

	catalog, err := f.load(ctx)
	if err != nil {
		return nil, err
	}

	log.Printf(`{"level":"info","event":"catalog_refreshed","source":"%s","users":%d,"referrals":%d,"tags":%d}`,
		f.source, len(catalog.Users), len(catalog.Referrals), len(catalog.Tags))

	return &dto.RefreshCatalogResponse{
		Users:       len(catalog.Users),
		Referrals:   len(catalog.Referrals),
		Tags:        len(catalog.Tags),
		RefreshedAt: f.now(),
	}, nil
}
