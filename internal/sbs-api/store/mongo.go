package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"

	"github.com/kart-io/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kart-io/sbs-x/internal/model"
	"github.com/kart-io/sbs-x/pkg/component/mongodb"
	"github.com/kart-io/sbs-x/pkg/infra/tracing"
	mongodbopts "github.com/kart-io/sbs-x/pkg/options/mongodb"
)

// Collection names.
const (
	VolumeCollection = "sbs"
	TagCollection    = "sbstags"
)

const tracerName = "sbs-api/store"

// MongoFactory implements Factory on MongoDB.
type MongoFactory struct {
	client  *mongodb.Client
	volumes *mongoVolumes
	tags    *mongoTags
}

// NewMongoFactory connects to MongoDB and makes sure the volume indexes exist.
func NewMongoFactory(ctx context.Context, opts *mongodbopts.Options) (*MongoFactory, error) {
	client, err := mongodb.New(ctx, opts)
	if err != nil {
		return nil, err
	}

	f := NewMongoFactoryWithClient(client)
	if err := f.EnsureIndexes(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Infow("MongoDB store ready", "database", opts.Database)
	return f, nil
}

// NewMongoFactoryWithClient wraps an already connected client.
func NewMongoFactoryWithClient(client *mongodb.Client) *MongoFactory {
	return &MongoFactory{
		client:  client,
		volumes: &mongoVolumes{coll: client.Collection(VolumeCollection)},
		tags:    &mongoTags{coll: client.Collection(TagCollection)},
	}
}

// Volumes returns the volume store.
func (f *MongoFactory) Volumes() VolumeStore {
	return f.volumes
}

// Tags returns the tag store.
func (f *MongoFactory) Tags() TagStore {
	return f.tags
}

// Ping checks the connection.
func (f *MongoFactory) Ping(ctx context.Context) error {
	return f.client.Ping(ctx)
}

// Close disconnects the client.
func (f *MongoFactory) Close() error {
	return f.client.Close()
}

// EnsureIndexes creates the unique volume index on both collections.
func (f *MongoFactory) EnsureIndexes(ctx context.Context) error {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "volume", Value: 1}},
		Options: mongoopts.Index().SetUnique(true),
	}
	for _, coll := range []*mongo.Collection{f.volumes.coll, f.tags.coll} {
		if _, err := coll.Indexes().CreateOne(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index on %s: %w", coll.Name(), err)
		}
	}
	return nil
}

// literal builds a case-insensitive pattern that matches term verbatim.
func literal(term string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
}

var byVolume = mongoopts.Find().SetSort(bson.D{{Key: "volume", Value: 1}})

type mongoVolumes struct {
	coll *mongo.Collection
}

func (s *mongoVolumes) List(ctx context.Context) (_ []model.VolumeSummary, err error) {
	ctx, end := tracing.Start(ctx, tracerName, "volumes.List")
	defer end(&err)

	opts := mongoopts.Find().
		SetProjection(bson.D{{Key: "_id", Value: 0}, {Key: "volume", Value: 1}, {Key: "summary", Value: 1}}).
		SetSort(bson.D{{Key: "volume", Value: 1}})

	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}

	var docs []model.Volume
	if err = cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	list := make([]model.VolumeSummary, 0, len(docs))
	for i := range docs {
		list = append(list, docs[i].Summarize())
	}
	return list, nil
}

func (s *mongoVolumes) Get(ctx context.Context, volume int) (_ *model.Volume, err error) {
	ctx, end := tracing.Start(ctx, tracerName, "volumes.Get", attribute.Int("sbs.volume", volume))
	defer end(&err)

	var v model.Volume
	if err = s.coll.FindOne(ctx, bson.D{{Key: "volume", Value: volume}}).Decode(&v); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (s *mongoVolumes) SearchText(ctx context.Context, term string) (_ []*model.Volume, err error) {
	ctx, end := tracing.Start(ctx, tracerName, "volumes.SearchText", attribute.String("sbs.term", term))
	defer end(&err)

	re := literal(term)
	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "chapters.sections.question.text", Value: re}},
		bson.D{{Key: "chapters.sections.answer.segments.text", Value: re}},
	}}}

	cur, err := s.coll.Find(ctx, filter, byVolume)
	if err != nil {
		return nil, err
	}

	var out []*model.Volume
	if err = cur.All(ctx, &out); err != nil {
		return nil, err
	}
	tracing.Annotate(ctx, attribute.Int("sbs.documents", len(out)))
	return out, nil
}

type mongoTags struct {
	coll *mongo.Collection
}

func (s *mongoTags) Get(ctx context.Context, volume int) (_ *model.VolumeTags, err error) {
	ctx, end := tracing.Start(ctx, tracerName, "tags.Get", attribute.Int("sbs.volume", volume))
	defer end(&err)

	var t model.VolumeTags
	if err = s.coll.FindOne(ctx, bson.D{{Key: "volume", Value: volume}}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (s *mongoTags) SearchByField(ctx context.Context, field model.TagField, term string) (_ []*model.VolumeTags, err error) {
	ctx, end := tracing.Start(ctx, tracerName, "tags.SearchByField",
		attribute.String("sbs.field", string(field)),
		attribute.String("sbs.term", term),
	)
	defer end(&err)

	if !field.Valid() {
		return nil, fmt.Errorf("unknown tag field %q", field)
	}

	cur, err := s.coll.Find(ctx, bson.D{{Key: field.Path(), Value: literal(term)}}, byVolume)
	if err != nil {
		return nil, err
	}

	var out []*model.VolumeTags
	if err = cur.All(ctx, &out); err != nil {
		return nil, err
	}
	tracing.Annotate(ctx, attribute.Int("sbs.documents", len(out)))
	return out, nil
}

func (s *mongoTags) Distinct(ctx context.Context, field model.TagField) (_ []string, err error) {
	ctx, end := tracing.Start(ctx, tracerName, "tags.Distinct", attribute.String("sbs.field", string(field)))
	defer end(&err)

	if !field.Valid() {
		return nil, fmt.Errorf("unknown tag field %q", field)
	}

	raw, err := s.coll.Distinct(ctx, field.Path(), bson.D{})
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if str, ok := v.(string); ok && str != "" {
			out = append(out, str)
		}
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}
