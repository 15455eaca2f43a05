package resource

import "time"

// Lifecycle states for a metadata record. Drafts may lack a DOI; published
// records always carry one.
const (
	StateDraft     = "draft"
	StateReview    = "review"
	StatePublished = "published"
)

// Creator is one author of a dataset, DataCite-style.
type Creator struct {
	Name        string `json:"name" bson:"name"`
	Affiliation string `json:"affiliation,omitempty" bson:"affiliation,omitempty"`
	ORCID       string `json:"orcid,omitempty" bson:"orcid,omitempty"`
}

// BoundingBox is the geographic extent shown on the landing-page map.
type BoundingBox struct {
	MinLat float64 `json:"minLat" bson:"minLat"`
	MaxLat float64 `json:"maxLat" bson:"maxLat"`
	MinLon float64 `json:"minLon" bson:"minLon"`
	MaxLon float64 `json:"maxLon" bson:"maxLon"`
}

// Resource is a dataset metadata record under curation. DOI stays empty
// while the record is a draft; it is set during the publish workflow and
// is unique across the store once assigned.
type Resource struct {
	ID              string       `json:"id" bson:"id"`
	DOI             string       `json:"doi,omitempty" bson:"doi,omitempty"`
	Slug            string       `json:"slug,omitempty" bson:"slug,omitempty"`
	Title           string       `json:"title" bson:"title"`
	Creators        []Creator    `json:"creators,omitempty" bson:"creators,omitempty"`
	Publisher       string       `json:"publisher,omitempty" bson:"publisher,omitempty"`
	PublicationYear int          `json:"publicationYear,omitempty" bson:"publicationYear,omitempty"`
	ResourceType    string       `json:"resourceType,omitempty" bson:"resourceType,omitempty"`
	Licenses        []string     `json:"licenses,omitempty" bson:"licenses,omitempty"`
	Abstract        string       `json:"abstract,omitempty" bson:"abstract,omitempty"`
	Keywords        []string     `json:"keywords,omitempty" bson:"keywords,omitempty"`
	Coverage        *BoundingBox `json:"coverage,omitempty" bson:"coverage,omitempty"`
	State           string       `json:"state" bson:"state"`
	FileKey         string       `json:"fileKey,omitempty" bson:"fileKey,omitempty"`
	CreatedAt       time.Time    `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt" bson:"updatedAt"`
}
