package mongostore

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Skotchmaster/watchit/internal/models"
)

type movieDoc struct {
	ID        int64     `bson:"_id"`
	Title     string    `bson:"title"`
	Genre     string    `bson:"genre"`
	Rating    float64   `bson:"rating"`
	CreatedAt time.Time `bson:"created_at"`
}

func (d movieDoc) toModel() models.Movie {
	return models.Movie{ID: d.ID, Title: d.Title, Genre: d.Genre, Rating: d.Rating, CreatedAt: d.CreatedAt}
}

func (s *Store) ListMovies(ctx context.Context, offset, limit int) ([]models.Movie, int64, error) {
	return s.findMovies(ctx, bson.D{}, offset, limit)
}

func (s *Store) SearchMovies(ctx context.Context, query string, offset, limit int) ([]models.Movie, int64, error) {
	filter := bson.D{{Key: "title", Value: bson.Regex{
		Pattern: regexp.QuoteMeta(strings.TrimSpace(query)),
		Options: "i",
	}}}
	return s.findMovies(ctx, filter, offset, limit)
}

func (s *Store) findMovies(ctx context.Context, filter bson.D, offset, limit int) ([]models.Movie, int64, error) {
	total, err := s.movies.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	cur, err := s.movies.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit)))
	if err != nil {
		return nil, 0, err
	}
	var docs []movieDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	out := make([]models.Movie, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toModel())
	}
	return out, total, nil
}

func (s *Store) GetMovie(ctx context.Context, id int64) (*models.Movie, error) {
	var doc movieDoc
	if err := s.movies.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	m := doc.toModel()
	return &m, nil
}

func (s *Store) CreateMovie(ctx context.Context, m *models.Movie) error {
	id, err := s.nextID(ctx, moviesCollection)
	if err != nil {
		return err
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	m.ID = id
	_, err = s.movies.InsertOne(ctx, movieDoc{
		ID:        m.ID,
		Title:     m.Title,
		Genre:     m.Genre,
		Rating:    m.Rating,
		CreatedAt: m.CreatedAt,
	})
	return err
}

// nextID hands out sequential integer ids from the counters collection.
func (s *Store) nextID(ctx context.Context, name string) (int64, error) {
	var out struct {
		Seq int64 `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: name}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "seq", Value: int64(1)}}}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return 0, err
	}
	return out.Seq, nil
}
