package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/film-catalog/internal/core/domain"
	"github.com/99minutos/film-catalog/internal/core/ports"
)

const collectionFilms = "films"

// FilmRepository stores films in MongoDB. Transactions require the server to
// run as a replica set.
type FilmRepository struct {
	client *mongo.Client
	col    *mongo.Collection
}

func NewFilmRepository(client *mongo.Client, db *mongo.Database) *FilmRepository {
	return &FilmRepository{client: client, col: db.Collection(collectionFilms)}
}

type filmDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description *string            `bson:"description,omitempty"`
	ReleaseYear *int               `bson:"release_year,omitempty"`
	Director    *string            `bson:"director,omitempty"`
	Producer    *string            `bson:"producer,omitempty"`
	ExternalID  *string            `bson:"external_id,omitempty"`
}

func toFilmDocument(f *domain.Film) filmDocument {
	return filmDocument{
		Title:       f.Title,
		Description: f.Description,
		ReleaseYear: f.ReleaseYear,
		Director:    f.Director,
		Producer:    f.Producer,
		ExternalID:  f.ExternalID,
	}
}

func (d filmDocument) toDomain() *domain.Film {
	return &domain.Film{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		ReleaseYear: d.ReleaseYear,
		Director:    d.Director,
		Producer:    d.Producer,
		ExternalID:  d.ExternalID,
	}
}

// List returns every film ordered by title.
func (r *FilmRepository) List(ctx context.Context) ([]*domain.Film, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "title", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list films: %w", err)
	}
	defer cur.Close(ctx)

	var docs []filmDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode films: %w", err)
	}

	films := make([]*domain.Film, 0, len(docs))
	for _, d := range docs {
		films = append(films, d.toDomain())
	}
	return films, nil
}

// FindByID treats an id that is not a valid ObjectID as missing.
func (r *FilmRepository) FindByID(ctx context.Context, id string) (*domain.Film, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrFilmNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *FilmRepository) FindByExternalID(ctx context.Context, externalID string) (*domain.Film, error) {
	return r.findOne(ctx, bson.M{"external_id": externalID})
}

func (r *FilmRepository) findOne(ctx context.Context, filter bson.M) (*domain.Film, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc filmDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrFilmNotFound
		}
		return nil, fmt.Errorf("find film: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *FilmRepository) Create(ctx context.Context, film *domain.Film) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, toFilmDocument(film))
	if err != nil {
		return fmt.Errorf("insert film: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		film.ID = oid.Hex()
	}
	return nil
}

// Update replaces the descriptive fields of an existing film.
func (r *FilmRepository) Update(ctx context.Context, film *domain.Film) error {
	oid, err := primitive.ObjectIDFromHex(film.ID)
	if err != nil {
		return domain.ErrFilmNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toFilmDocument(film)
	doc.ID = oid
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		return fmt.Errorf("update film: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrFilmNotFound
	}
	return nil
}

func (r *FilmRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrFilmNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete film: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrFilmNotFound
	}
	return nil
}

// WithinTransaction runs fn inside a session transaction. Operations issued
// with the session context passed to fn join the transaction.
func (r *FilmRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx ports.FilmRepository) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, r)
	})
	return err
}

// EnsureIndexes creates the title sort index and a unique external_id index
// that only applies to documents carrying one.
func (r *FilmRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "title", Value: 1}}},
		{
			Keys: bson.D{{Key: "external_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("uniq_external_id").
				SetPartialFilterExpression(bson.M{"external_id": bson.M{"$type": "string"}}),
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
