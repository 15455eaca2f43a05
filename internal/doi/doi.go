package doi

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultMaxProbes bounds how many candidate DOIs SuggestNext will test
// against the store before giving up. Purely defensive; a curated series
// never comes close to this many consecutive taken suffixes.
const DefaultMaxProbes = 10000

// doiPattern matches "10.", a numeric registrant prefix, "/", and a non-empty
// suffix. Syntax only — registrant existence or resolvability is not checked.
var doiPattern = regexp.MustCompile(`^10\.\d+/.+$`)

// IsValidFormat reports whether s is a syntactically valid DOI.
func IsValidFormat(s string) bool {
	return doiPattern.MatchString(s)
}

// ResourceRef identifies the resource currently holding a DOI.
type ResourceRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ResourceFinder is the store-side collaborator the checker reads from.
// FindByDOI compares DOIs with an exact, case-sensitive match (the DOI
// Handbook says DOIs are case-insensitive; the store does not normalize
// case, so neither do we). excludeID suppresses a resource from matching,
// used when a resource is validated against its own unchanged DOI.
// MaxDOI returns the highest assigned DOI by the store's ordering, or ""
// when no resource has one.
type ResourceFinder interface {
	FindByDOI(ctx context.Context, doi string, excludeID string) (*ResourceRef, error)
	MaxDOI(ctx context.Context) (string, error)
}

// CheckResult is the per-request outcome of a DOI validation call. It is
// never persisted; suggestions are advisory and not reserved, so a
// concurrent save can still take the suggested DOI first. The unique index
// on the store enforces uniqueness at save time.
type CheckResult struct {
	IsValidFormat    bool         `json:"is_valid_format"`
	Exists           bool         `json:"exists"`
	ExistingResource *ResourceRef `json:"existing_resource,omitempty"`
	LastAssignedDOI  string       `json:"last_assigned_doi,omitempty"`
	SuggestedDOI     string       `json:"suggested_doi,omitempty"`
}

// Checker validates candidate DOIs against the resource store and proposes
// the next free DOI in a numbering series. Stateless between calls.
type Checker struct {
	finder    ResourceFinder
	maxProbes int
}

// NewChecker returns a Checker backed by the given finder. maxProbes <= 0
// selects DefaultMaxProbes.
func NewChecker(f ResourceFinder, maxProbes int) *Checker {
	if maxProbes <= 0 {
		maxProbes = DefaultMaxProbes
	}
	return &Checker{finder: f, maxProbes: maxProbes}
}

// ResourceByDOI returns the resource holding doi, or nil when the DOI is
// free (or only held by the excluded resource).
func (c *Checker) ResourceByDOI(ctx context.Context, doi, excludeID string) (*ResourceRef, error) {
	return c.finder.FindByDOI(ctx, doi, excludeID)
}

// LastAssignedDOI returns the highest DOI currently assigned, or "" when no
// resource has one. Informational only; it need not be in the same series
// as any candidate.
func (c *Checker) LastAssignedDOI(ctx context.Context) (string, error) {
	return c.finder.MaxDOI(ctx)
}

// SuggestNext proposes the next unassigned DOI in the numbering series of
// the given (taken) DOI. The trailing digit run of the suffix is
// incremented, preserving zero-padding until the counter outgrows its
// original width ("099" -> "100", "999" -> "1000"). Returns "" when the
// suffix has no trailing digits or when maxProbes candidates were all
// taken. Malformed input also yields "".
func (c *Checker) SuggestNext(ctx context.Context, doi string) (string, error) {
	if !IsValidFormat(doi) {
		return "", nil
	}
	slash := strings.LastIndex(doi, "/")
	prefix := doi[:slash+1]
	suffix := doi[slash+1:]

	end := len(suffix)
	start := end
	for start > 0 && suffix[start-1] >= '0' && suffix[start-1] <= '9' {
		start--
	}
	if start == end {
		// no numeric counter to increment
		return "", nil
	}
	numeric := suffix[start:]
	base := suffix[:start]
	if len(numeric) > 18 {
		// counter too large to parse into an int64; treat like a
		// non-numeric suffix
		return "", nil
	}
	n, err := strconv.ParseInt(numeric, 10, 64)
	if err != nil {
		return "", nil
	}
	width := len(numeric)

	for i := 0; i < c.maxProbes; i++ {
		n++
		candidate := prefix + base + fmt.Sprintf("%0*d", width, n)
		taken, err := c.finder.FindByDOI(ctx, candidate, "")
		if err != nil {
			return "", err
		}
		if taken == nil {
			return candidate, nil
		}
	}
	// probe budget exhausted; caller falls back to manual assignment
	return "", nil
}

// Check runs the full validation for a candidate DOI: format, collision
// (excluding excludeID, so editing a resource does not collide with
// itself), and, on collision, the last assigned DOI plus a suggestion.
// An invalid format short-circuits without touching the store.
func (c *Checker) Check(ctx context.Context, doi, excludeID string) (*CheckResult, error) {
	res := &CheckResult{IsValidFormat: IsValidFormat(doi)}
	if !res.IsValidFormat {
		return res, nil
	}
	existing, err := c.ResourceByDOI(ctx, doi, excludeID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return res, nil
	}
	res.Exists = true
	res.ExistingResource = existing

	last, err := c.LastAssignedDOI(ctx)
	if err != nil {
		return nil, err
	}
	res.LastAssignedDOI = last

	suggested, err := c.SuggestNext(ctx, doi)
	if err != nil {
		return nil, err
	}
	res.SuggestedDOI = suggested
	return res, nil
}
