package repository

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"
	"slices"

	"github.com/amirphl/referral-hub/models"
	"gopkg.in/yaml.v3"
)

//go:embed seed/catalog.yaml
var defaultDataset []byte

// FileCatalogReader reads a YAML dataset from disk, or the bundled sample dataset when path is empty
type FileCatalogReader struct {
	path string
}

// NewFileCatalogReader creates a file-backed catalog reader
func NewFileCatalogReader(path string) *FileCatalogReader {
	return &FileCatalogReader{path: path}
}

// Load returns the catalog part of the dataset
func (r *FileCatalogReader) Load(ctx context.Context) (*models.Catalog, error) {
	ds, err := r.LoadDataset(ctx)
	if err != nil {
		return nil, err
	}
	return ds.Catalog(), nil
}

// LoadDataset decodes the full dataset including referral requests
func (r *FileCatalogReader) LoadDataset(ctx context.Context) (*models.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := defaultDataset
	source := "embedded dataset"
	if r.path != "" {
		b, err := os.ReadFile(r.path)
		if err != nil {
			return nil, fmt.Errorf("read dataset %s: %w", r.path, err)
		}
		data = b
		source = r.path
	}

	return DecodeDataset(data, source)
}

// DecodeDataset parses a YAML dataset. Unknown keys are rejected so typos in seed files surface early.
func DecodeDataset(data []byte, source string) (*models.Dataset, error) {
	var ds models.Dataset
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ds); err != nil {
		return nil, fmt.Errorf("decode dataset %s: %w", source, err)
	}
	return &ds, nil
}

// DatasetReferralRequests serves referral request lookups from a loaded dataset
type DatasetReferralRequests struct {
	requests []models.ReferralRequest
}

// NewDatasetReferralRequests indexes the requests of ds
func NewDatasetReferralRequests(ds *models.Dataset) *DatasetReferralRequests {
	if ds == nil {
		return &DatasetReferralRequests{}
	}
	return &DatasetReferralRequests{requests: ds.ReferralRequests}
}

// ListByRequester returns the requests a user made, newest first
func (d *DatasetReferralRequests) ListByRequester(ctx context.Context, requesterID string) ([]*models.ReferralRequest, error) {
	return d.match(func(r models.ReferralRequest) bool { return r.RequesterID == requesterID }), nil
}

// ListByReferral returns the requests made against a referral, newest first
func (d *DatasetReferralRequests) ListByReferral(ctx context.Context, referralID string) ([]*models.ReferralRequest, error) {
	return d.match(func(r models.ReferralRequest) bool { return r.ReferralID == referralID }), nil
}

func (d *DatasetReferralRequests) match(keep func(models.ReferralRequest) bool) []*models.ReferralRequest {
	out := make([]*models.ReferralRequest, 0)
	for i := range d.requests {
		if keep(d.requests[i]) {
			r := d.requests[i]
			out = append(out, &r)
		}
	}
	slices.SortStableFunc(out, func(a, b *models.ReferralRequest) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}
