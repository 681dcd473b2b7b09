package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akshaybondre123/First-Startup/internal/domain"
	"github.com/Akshaybondre123/First-Startup/internal/geo"
)

func TestFixtures(t *testing.T) {
	rs, err := Fixtures()
	require.NoError(t, err)
	require.Len(t, rs, 4)

	names := make([]string, len(rs))
	for i, r := range rs {
		names[i] = r.Name
		assert.True(t, r.Verified, r.Name)
		assert.True(t, r.PriceRange.Valid(), r.Name)
		assert.Equal(t, geo.Round1(r.RatingSum/float64(r.ReviewCount)), r.Rating, r.Name)
	}
	assert.Equal(t, []string{"The Nagpur Kitchen", "Love & Latte", "Sky High Lounge", "Saoji Delight"}, names)

	saoji := rs[3]
	assert.Equal(t, 16660.0, saoji.RatingSum)
	assert.Equal(t, 3400, saoji.ReviewCount)
	assert.Equal(t, domain.PriceModerate, saoji.PriceRange)
	assert.Equal(t, 21.12, saoji.Location.Lat())
	assert.Equal(t, 79.05, saoji.Location.Lng())
	assert.Contains(t, saoji.Tags, "Pure Veg")
	assert.Equal(t, "contact@saojidelight.com", saoji.Email)
}

func TestParse_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"empty array", `[]`, "invalid fixtures"},
		{"bad tier", `[{"name":"X","image":"https://x.test/a.jpg","rating":4,"reviewCount":1,"priceRange":"$$",
			"address":"A","location":{"type":"Point","coordinates":[79,21]},"verified":false}]`, "priceRange"},
		{"latitude out of range", `[{"name":"X","image":"https://x.test/a.jpg","rating":4,"reviewCount":1,"priceRange":"₹",
			"address":"A","location":{"type":"Point","coordinates":[79,121]},"verified":false}]`, "invalid fixtures"},
		{"missing address", `[{"name":"X","image":"https://x.test/a.jpg","rating":4,"reviewCount":1,"priceRange":"₹",
			"location":{"type":"Point","coordinates":[79,21]},"verified":false}]`, "address"},
		{"not json", `{`, "validate fixtures"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
