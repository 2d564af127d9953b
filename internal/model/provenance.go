package model

// ProvenanceTag records which resolution tier produced a package descriptor.
type ProvenanceTag string

const (
	SourceHardcoded ProvenanceTag = "hardcoded"
	SourceCache     ProvenanceTag = "cache"
	SourceRemote    ProvenanceTag = "remote"
	SourceEstimated ProvenanceTag = "estimated"

	// SourceAPIFallback is only used on shopping lines whose package could
	// not be resolved into something priceable.
	SourceAPIFallback ProvenanceTag = "api fallback"
)

// Valid reports whether the tag is one of the known provenance values.
func (t ProvenanceTag) Valid() bool {
	switch t {
	case SourceHardcoded, SourceCache, SourceRemote, SourceEstimated, SourceAPIFallback:
		return true
	default:
		return false
	}
}

// PackageDescriptor is the smallest retail unit purchasable for an ingredient.
type PackageDescriptor struct {
	Size   string        `json:"size"`
	Price  float64       `json:"price"`
	Source ProvenanceTag `json:"source"`
	// Degraded marks an estimate produced because the remote tier failed,
	// as opposed to one produced because no tier knew the ingredient.
	Degraded bool `json:"degraded,omitempty"`
}

// WithSource returns a copy of d tagged with src.
func (d PackageDescriptor) WithSource(src ProvenanceTag) PackageDescriptor {
	d.Source = src
	return d
}
