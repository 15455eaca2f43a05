// Package citation assembles the citation line shown on dataset landing
// pages, in the "Creators (Year): Title. Publisher. DOI" style used for
// DataCite records.
package citation

import (
	"fmt"
	"strings"

	"github.com/rdhub/rdhub/backend/go-services/internal/resource"
)

// Format renders the citation string for a resource. Missing pieces are
// skipped rather than rendered as placeholders; a resource with only a
// title still yields a usable line.
func Format(r *resource.Resource) string {
	var parts []string

	if names := creatorList(r.Creators); names != "" {
		if r.PublicationYear > 0 {
			parts = append(parts, fmt.Sprintf("%s (%d):", names, r.PublicationYear))
		} else {
			parts = append(parts, names+":")
		}
	} else if r.PublicationYear > 0 {
		parts = append(parts, fmt.Sprintf("(%d):", r.PublicationYear))
	}

	if r.Title != "" {
		parts = append(parts, ensurePeriod(r.Title))
	}
	if r.Publisher != "" {
		parts = append(parts, ensurePeriod(r.Publisher))
	}
	if r.DOI != "" {
		parts = append(parts, "https://doi.org/"+r.DOI)
	}
	return strings.Join(parts, " ")
}

// creatorList joins creator names with "; ", the separator DataCite landing
// pages use for multi-author datasets.
func creatorList(creators []resource.Creator) string {
	names := make([]string, 0, len(creators))
	for _, c := range creators {
		if c.Name != "" {
			names = append(names, c.Name)
		}
	}
	return strings.Join(names, "; ")
}

func ensurePeriod(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	if strings.HasSuffix(s, ".") || strings.HasSuffix(s, "?") || strings.HasSuffix(s, "!") {
		return s
	}
	return s + "."
}
