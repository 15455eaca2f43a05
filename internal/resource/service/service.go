package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rdhub/rdhub/backend/go-services/internal/citation"
	"github.com/rdhub/rdhub/backend/go-services/internal/doi"
	"github.com/rdhub/rdhub/backend/go-services/internal/resource"
	"github.com/rdhub/rdhub/backend/go-services/internal/resource/repository"
	"github.com/rdhub/rdhub/backend/go-services/internal/slug"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrDOIInvalid   = errors.New("doi format invalid")
	ErrDOITaken     = errors.New("doi already assigned to another resource")
	ErrDOIBadPrefix = errors.New("doi outside the configured registrant prefix")
	ErrNoDOI        = errors.New("resource has no doi to publish under")
)

// Repository is the persistence contract both the memory and the Mongo
// repo satisfy.
type Repository interface {
	Create(ctx context.Context, r *resource.Resource) (string, error)
	Get(ctx context.Context, id string) (*resource.Resource, error)
	List(ctx context.Context) ([]*resource.Resource, error)
	Update(ctx context.Context, r *resource.Resource) error
	Delete(ctx context.Context, id string) error
	FindByDOI(ctx context.Context, doi string, excludeID string) (*resource.Resource, error)
	FindBySlug(ctx context.Context, slug string) (*resource.Resource, error)
	MaxDOI(ctx context.Context) (string, error)
}

// Registrar registers a DOI with the external registration agency during
// publish. Nil disables outbound registration (local/dev deployments).
type Registrar interface {
	Register(ctx context.Context, doi string, r *resource.Resource, landingURL string) error
}

// FileStore produces download links for dataset files referenced by
// resources. Nil disables download links on landing pages.
type FileStore interface {
	GetPresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// Service is the curation business layer the handlers call into.
type Service struct {
	repo        Repository
	checker     *doi.Checker
	registrar   Registrar
	files       FileStore
	prefix      string
	landingBase string
}

// New wires the service. maxProbes configures the DOI suggestion probe cap
// (<=0 selects the default); prefix is the registrant prefix publish
// candidates must be minted under ("" disables the check); landingBase is
// the public URL prefix landing slugs are appended to when registering DOIs.
func New(repo Repository, maxProbes int, prefix string, reg Registrar, files FileStore, landingBase string) *Service {
	s := &Service{repo: repo, registrar: reg, files: files, prefix: prefix, landingBase: landingBase}
	s.checker = doi.NewChecker(&finderAdapter{repo: repo}, maxProbes)
	return s
}

// finderAdapter narrows the repository to the checker's read-only view.
type finderAdapter struct {
	repo Repository
}

func (f *finderAdapter) FindByDOI(ctx context.Context, d string, excludeID string) (*doi.ResourceRef, error) {
	r, err := f.repo.FindByDOI(ctx, d, excludeID)
	if err != nil || r == nil {
		return nil, err
	}
	return &doi.ResourceRef{ID: r.ID, Title: r.Title}, nil
}

func (f *finderAdapter) MaxDOI(ctx context.Context) (string, error) {
	return f.repo.MaxDOI(ctx)
}

func (s *Service) Create(ctx context.Context, r *resource.Resource) (string, error) {
	if r.Slug == "" {
		r.Slug = slug.Make(r.Title)
	}
	return s.repo.Create(ctx, r)
}

func (s *Service) Get(ctx context.Context, id string) (*resource.Resource, error) {
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r, nil
}

func (s *Service) List(ctx context.Context) ([]*resource.Resource, error) {
	return s.repo.List(ctx)
}

// Update persists metadata edits. The lifecycle state is not editable
// here: a draft becomes published only through Publish, so an incoming
// state is ignored in favor of the stored one. An empty DOI likewise
// leaves the stored DOI untouched, so a plain edit cannot strip the
// identifier off a published record.
func (s *Service) Update(ctx context.Context, r *resource.Resource) error {
	cur, err := s.Get(ctx, r.ID)
	if err != nil {
		return err
	}
	r.State = cur.State
	if r.DOI == "" {
		r.DOI = cur.DOI
	}
	if r.Slug == "" {
		r.Slug = slug.Make(r.Title)
	}
	return s.save(ctx, r)
}

func (s *Service) save(ctx context.Context, r *resource.Resource) error {
	err := s.repo.Update(ctx, r)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrDuplicateDOI):
		return ErrDOITaken
	}
	return err
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// CheckDOI runs format validation, collision lookup and suffix suggestion
// for a candidate DOI. excludeID is the resource being edited, "" for new
// records.
func (s *Service) CheckDOI(ctx context.Context, candidate string, excludeID string) (*doi.CheckResult, error) {
	return s.checker.Check(ctx, candidate, excludeID)
}

// Publish assigns the DOI (the resource's own, or newDOI when given),
// registers it with the registrar and moves the record to the published
// state. Nothing is persisted when registration fails.
func (s *Service) Publish(ctx context.Context, id string, newDOI string) (*resource.Resource, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	d := r.DOI
	if newDOI != "" {
		d = newDOI
	}
	if d == "" {
		return nil, ErrNoDOI
	}
	if !doi.IsValidFormat(d) {
		return nil, ErrDOIInvalid
	}
	if s.prefix != "" && !strings.HasPrefix(d, s.prefix+"/") {
		return nil, ErrDOIBadPrefix
	}
	holder, err := s.repo.FindByDOI(ctx, d, r.ID)
	if err != nil {
		return nil, err
	}
	if holder != nil {
		return nil, ErrDOITaken
	}
	if r.Slug == "" {
		r.Slug = slug.Make(r.Title)
	}
	if s.registrar != nil {
		if err := s.registrar.Register(ctx, d, r, s.landingBase+"/"+r.Slug); err != nil {
			return nil, err
		}
	}
	r.DOI = d
	r.State = resource.StatePublished
	if err := s.save(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// LandingView is the public landing-page payload for a published dataset.
type LandingView struct {
	Title       string                `json:"title"`
	Citation    string                `json:"citation"`
	DOI         string                `json:"doi,omitempty"`
	Creators    []resource.Creator    `json:"creators,omitempty"`
	Publisher   string                `json:"publisher,omitempty"`
	Year        int                   `json:"publicationYear,omitempty"`
	Licenses    []string              `json:"licenses,omitempty"`
	Abstract    string                `json:"abstract,omitempty"`
	Keywords    []string              `json:"keywords,omitempty"`
	Coverage    *resource.BoundingBox `json:"coverage,omitempty"`
	DownloadURL string                `json:"downloadUrl,omitempty"`
}

// Landing composes the landing page for a published resource identified by
// its slug. Unpublished records are not exposed.
func (s *Service) Landing(ctx context.Context, slugStr string) (*LandingView, error) {
	r, err := s.repo.FindBySlug(ctx, slugStr)
	if err != nil {
		return nil, err
	}
	if r == nil || r.State != resource.StatePublished {
		return nil, ErrNotFound
	}
	v := &LandingView{
		Title:     r.Title,
		Citation:  citation.Format(r),
		DOI:       r.DOI,
		Creators:  r.Creators,
		Publisher: r.Publisher,
		Year:      r.PublicationYear,
		Licenses:  r.Licenses,
		Abstract:  r.Abstract,
		Keywords:  r.Keywords,
		Coverage:  r.Coverage,
	}
	if r.FileKey != "" && s.files != nil {
		// download links stay valid long enough for a browser session
		if url, err := s.files.GetPresignedURL(ctx, r.FileKey, time.Hour); err == nil {
			v.DownloadURL = url
		}
	}
	return v, nil
}
