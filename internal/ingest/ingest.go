// Package ingest turns uploaded metadata files (DataCite XML records and
// CSV batches) into draft resources.
package ingest

import (
	"bytes"
	"encoding/csv"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rdhub/rdhub/backend/go-services/internal/resource"
)

var ErrUnknownFormat = errors.New("upload is neither DataCite XML nor CSV")

// Format of an uploaded file, decided by content sniffing rather than
// filename.
type Format string

const (
	FormatXML     Format = "datacite-xml"
	FormatCSV     Format = "csv"
	FormatUnknown Format = "unknown"
)

// Sniff guesses the upload format from its leading bytes. XML wins when the
// payload starts with an angle bracket; otherwise anything with a plausible
// header row is treated as CSV.
func Sniff(peek []byte) Format {
	peek = bytes.TrimSpace(peek)
	if len(peek) == 0 {
		return FormatUnknown
	}
	if peek[0] == '<' {
		return FormatXML
	}
	line := peek
	if i := bytes.IndexByte(peek, '\n'); i >= 0 {
		line = peek[:i]
	}
	if bytes.Contains(bytes.ToLower(line), []byte("title")) && bytes.ContainsRune(line, ',') {
		return FormatCSV
	}
	return FormatUnknown
}

// Parse dispatches on the sniffed format. XML yields one record; CSV yields
// one per data row. Row-level CSV failures are reported per row and do not
// abort the batch.
func Parse(data []byte) ([]*resource.Resource, []error, error) {
	switch Sniff(data) {
	case FormatXML:
		r, err := ParseDataCiteXML(bytes.NewReader(data))
		if err != nil {
			return nil, nil, err
		}
		return []*resource.Resource{r}, nil, nil
	case FormatCSV:
		recs, rowErrs := ParseCSV(bytes.NewReader(data))
		return recs, rowErrs, nil
	default:
		return nil, nil, ErrUnknownFormat
	}
}

// dataciteRecord mirrors the subset of the DataCite kernel the editor
// round-trips. Unknown elements are ignored.
type dataciteRecord struct {
	XMLName    xml.Name `xml:"resource"`
	Identifier struct {
		Type  string `xml:"identifierType,attr"`
		Value string `xml:",chardata"`
	} `xml:"identifier"`
	Creators []struct {
		Name           string `xml:"creatorName"`
		Affiliation    string `xml:"affiliation"`
		NameIdentifier struct {
			Scheme string `xml:"nameIdentifierScheme,attr"`
			Value  string `xml:",chardata"`
		} `xml:"nameIdentifier"`
	} `xml:"creators>creator"`
	Titles          []string `xml:"titles>title"`
	Publisher       string   `xml:"publisher"`
	PublicationYear string   `xml:"publicationYear"`
	ResourceType    struct {
		General string `xml:"resourceTypeGeneral,attr"`
		Value   string `xml:",chardata"`
	} `xml:"resourceType"`
	Subjects     []string `xml:"subjects>subject"`
	Rights       []string `xml:"rightsList>rights"`
	Descriptions []struct {
		Type  string `xml:"descriptionType,attr"`
		Value string `xml:",chardata"`
	} `xml:"descriptions>description"`
	GeoBoxes []struct {
		West  string `xml:"westBoundLongitude"`
		East  string `xml:"eastBoundLongitude"`
		South string `xml:"southBoundLatitude"`
		North string `xml:"northBoundLatitude"`
	} `xml:"geoLocations>geoLocation>geoLocationBox"`
}

// ParseDataCiteXML reads a single DataCite record into a draft resource.
// A missing title is the one hard error; everything else is optional.
func ParseDataCiteXML(r io.Reader) (*resource.Resource, error) {
	var rec dataciteRecord
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("datacite xml: %w", err)
	}
	if len(rec.Titles) == 0 || strings.TrimSpace(rec.Titles[0]) == "" {
		return nil, errors.New("datacite xml: record has no title")
	}

	res := &resource.Resource{
		Title:        strings.TrimSpace(rec.Titles[0]),
		Publisher:    strings.TrimSpace(rec.Publisher),
		ResourceType: strings.TrimSpace(rec.ResourceType.Value),
		State:        resource.StateDraft,
	}
	if res.ResourceType == "" {
		res.ResourceType = rec.ResourceType.General
	}
	if strings.EqualFold(rec.Identifier.Type, "DOI") {
		res.DOI = strings.TrimSpace(rec.Identifier.Value)
	}
	if y, err := strconv.Atoi(strings.TrimSpace(rec.PublicationYear)); err == nil {
		res.PublicationYear = y
	}
	for _, c := range rec.Creators {
		cr := resource.Creator{
			Name:        strings.TrimSpace(c.Name),
			Affiliation: strings.TrimSpace(c.Affiliation),
		}
		if strings.EqualFold(c.NameIdentifier.Scheme, "ORCID") {
			cr.ORCID = strings.TrimSpace(c.NameIdentifier.Value)
		}
		if cr.Name != "" {
			res.Creators = append(res.Creators, cr)
		}
	}
	for _, s := range rec.Subjects {
		if s = strings.TrimSpace(s); s != "" {
			res.Keywords = append(res.Keywords, s)
		}
	}
	for _, l := range rec.Rights {
		if l = strings.TrimSpace(l); l != "" {
			res.Licenses = append(res.Licenses, l)
		}
	}
	for _, d := range rec.Descriptions {
		if strings.EqualFold(d.Type, "Abstract") {
			res.Abstract = strings.TrimSpace(d.Value)
			break
		}
	}
	if len(rec.GeoBoxes) > 0 {
		b := rec.GeoBoxes[0]
		box, err := parseBox(b.South, b.North, b.West, b.East)
		if err == nil {
			res.Coverage = box
		}
	}
	return res, nil
}

// csv column order; the header row is required and matched by name so
// partial exports stay importable.
var csvColumns = []string{
	"title", "doi", "creators", "publisher", "publicationyear",
	"resourcetype", "licenses", "keywords",
}

// ParseCSV reads a batch of records, one per row. Rows that cannot be
// parsed are skipped and reported; valid rows still import.
func ParseCSV(r io.Reader) ([]*resource.Resource, []error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, []error{fmt.Errorf("csv header: %w", err)}
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := idx["title"]; !ok {
		return nil, []error{errors.New("csv header: missing required column title")}
	}

	field := func(row []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []*resource.Resource
	var rowErrs []error
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: %w", line, err))
			continue
		}
		title := field(row, "title")
		if title == "" {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: empty title", line))
			continue
		}
		res := &resource.Resource{
			Title:        title,
			DOI:          field(row, "doi"),
			Publisher:    field(row, "publisher"),
			ResourceType: field(row, "resourcetype"),
			Licenses:     splitMulti(field(row, "licenses")),
			Keywords:     splitMulti(field(row, "keywords")),
			State:        resource.StateDraft,
		}
		if y := field(row, "publicationyear"); y != "" {
			n, err := strconv.Atoi(y)
			if err != nil {
				rowErrs = append(rowErrs, fmt.Errorf("row %d: bad publicationYear %q", line, y))
				continue
			}
			res.PublicationYear = n
		}
		for _, name := range splitMulti(field(row, "creators")) {
			res.Creators = append(res.Creators, resource.Creator{Name: name})
		}
		out = append(out, res)
	}
	return out, rowErrs
}

// splitMulti splits a semicolon-separated multi-value CSV cell.
func splitMulti(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ";") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseBox(south, north, west, east string) (*resource.BoundingBox, error) {
	vals := [4]float64{}
	for i, s := range []string{south, north, west, east} {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, err
		}
		vals[i] = f
	}
	return &resource.BoundingBox{MinLat: vals[0], MaxLat: vals[1], MinLon: vals[2], MaxLon: vals[3]}, nil
}
