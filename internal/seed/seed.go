// Package seed holds the starter restaurant set for a fresh deployment.
package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Akshaybondre123/First-Startup/internal/domain"
)

//go:embed fixtures.json
var fixturesJSON []byte

//go:embed schema.json
var schemaJSON []byte

// Fixtures returns the embedded restaurants, validated against the embedded
// schema. IDs, slugs and timestamps are left for the caller to assign.
func Fixtures() ([]domain.Restaurant, error) {
	return Parse(fixturesJSON)
}

// Parse validates data against the fixture schema and decodes it. Each
// restaurant's rating sum is derived from its rating and review count so
// later reviews fold in consistently.
func Parse(data []byte) ([]domain.Restaurant, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("validate fixtures: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("invalid fixtures: %s", strings.Join(msgs, "; "))
	}

	var rs []domain.Restaurant
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	for i := range rs {
		r := &rs[i]
		r.RatingSum = math.Round(r.Rating * float64(r.ReviewCount))
		r.Normalize()
	}
	return rs, nil
}
