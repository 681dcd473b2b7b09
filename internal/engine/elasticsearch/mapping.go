package elasticsearch

// DefaultIndexName is the index used when ES_INDEX is unset.
const DefaultIndexName = "wampin_restaurants"

// indexMapping mirrors domain.Restaurant's JSON. Text fields carry a keyword
// sub-field so substring search can run case-insensitive wildcards on the
// whole value.
const indexMapping = `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0
  },
  "mappings": {
    "properties": {
      "id":             { "type": "keyword" },
      "slug":           { "type": "keyword" },
      "name":           { "type": "text", "fields": { "keyword": { "type": "keyword", "ignore_above": 256 } } },
      "image":          { "type": "keyword", "index": false },
      "rating":         { "type": "float" },
      "reviewCount":    { "type": "integer" },
      "priceRange":     { "type": "keyword" },
      "cuisines":       { "type": "keyword" },
      "tags":           { "type": "keyword" },
      "features":       { "type": "keyword" },
      "address":        { "type": "text", "fields": { "keyword": { "type": "keyword", "ignore_above": 512 } } },
      "description":    { "type": "text", "fields": { "keyword": { "type": "keyword", "ignore_above": 2048 } } },
      "location":       { "type": "geo_point" },
      "verified":       { "type": "boolean" },
      "phone":          { "type": "keyword", "index": false },
      "email":          { "type": "keyword", "index": false },
      "website":        { "type": "keyword", "index": false },
      "operatingHours": { "type": "object", "enabled": false },
      "createdAt":      { "type": "date" },
      "updatedAt":      { "type": "date" }
    }
  }
}`
