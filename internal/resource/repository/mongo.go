package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rdhub/rdhub/backend/go-services/internal/resource"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo implements the resource store on a MongoDB collection. A unique
// sparse index on "doi" is the save-time uniqueness guard: DOI suggestions
// are advisory only, so two curators can be offered the same DOI and the
// index decides who keeps it.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	idx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "doi", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
	}
	col.Indexes().CreateMany(context.Background(), idx)
	return &MongoRepo{col: col}
}

func (m *MongoRepo) Create(ctx context.Context, r *resource.Resource) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.State == "" {
		r.State = resource.StateDraft
	}
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
	if _, err := m.col.InsertOne(ctx, r); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", ErrDuplicateDOI
		}
		return "", err
	}
	return r.ID, nil
}

func (m *MongoRepo) Get(ctx context.Context, id string) (*resource.Resource, error) {
	var r resource.Resource
	err := m.col.FindOne(ctx, bson.M{"id": id}).Decode(&r)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

func (m *MongoRepo) List(ctx context.Context) ([]*resource.Resource, error) {
	cur, err := m.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*resource.Resource{}
	for cur.Next(ctx) {
		var r resource.Resource
		if err := cur.Decode(&r); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, cur.Err()
}

func (m *MongoRepo) Update(ctx context.Context, r *resource.Resource) error {
	r.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"title":           r.Title,
		"creators":        r.Creators,
		"publisher":       r.Publisher,
		"publicationYear": r.PublicationYear,
		"resourceType":    r.ResourceType,
		"licenses":        r.Licenses,
		"abstract":        r.Abstract,
		"keywords":        r.Keywords,
		"coverage":        r.Coverage,
		"state":           r.State,
		"fileKey":         r.FileKey,
		"updatedAt":       r.UpdatedAt,
	}
	if r.DOI != "" {
		set["doi"] = r.DOI
	}
	if r.Slug != "" {
		set["slug"] = r.Slug
	}
	res, err := m.col.UpdateOne(ctx, bson.M{"id": r.ID}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateDOI
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoRepo) Delete(ctx context.Context, id string) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// FindByDOI does an exact case-sensitive match on the doi field, optionally
// excluding one resource id (self-collision during edits).
func (m *MongoRepo) FindByDOI(ctx context.Context, doi string, excludeID string) (*resource.Resource, error) {
	if doi == "" {
		return nil, nil
	}
	filter := bson.M{"doi": doi}
	if excludeID != "" {
		filter["id"] = bson.M{"$ne": excludeID}
	}
	var r resource.Resource
	if err := m.col.FindOne(ctx, filter).Decode(&r); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

// FindBySlug returns the resource with the given landing-page slug, or nil.
func (m *MongoRepo) FindBySlug(ctx context.Context, slug string) (*resource.Resource, error) {
	if slug == "" {
		return nil, nil
	}
	var r resource.Resource
	if err := m.col.FindOne(ctx, bson.M{"slug": slug}).Decode(&r); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

// MaxDOI returns the highest assigned DOI by descending string sort over
// documents that carry one, "" when none do.
func (m *MongoRepo) MaxDOI(ctx context.Context) (string, error) {
	filter := bson.M{"doi": bson.M{"$exists": true, "$ne": ""}}
	opts := options.FindOne().SetSort(bson.D{{Key: "doi", Value: -1}})
	var r resource.Resource
	if err := m.col.FindOne(ctx, filter, opts).Decode(&r); err != nil {
		if err == mongo.ErrNoDocuments {
			return "", nil
		}
		return "", err
	}
	return r.DOI, nil
}
