package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ticket-resale/models"

	"github.com/pocketbase/dbx"
)

// CatalogStore serves the known-movies catalog (poster resolution and
// the closed extraction vocabulary) and static cinema metadata. The
// scraper that fills these tables lives outside this service.
type CatalogStore struct {
	db *dbx.DB
}

func NewCatalogStore(db *dbx.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

// MovieNames returns the closed vocabulary for structured extraction.
func (s *CatalogStore) MovieNames(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.Select("name").From("movies").WithContext(ctx).Column(&names)
	if err != nil {
		return nil, fmt.Errorf("list movie names: %w", err)
	}
	return names, nil
}

// PosterURL resolves a poster by exact movie name match. Returns nil
// when the movie is unknown.
func (s *CatalogStore) PosterURL(ctx context.Context, name string) (*string, error) {
	var m models.Movie
	err := s.db.Select().From("movies").
		Where(dbx.HashExp{"name": name}).
		WithContext(ctx).
		One(&m)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup poster: %w", err)
	}
	if m.PosterURL == "" {
		return nil, nil
	}
	return &m.PosterURL, nil
}

// UpsertMovie adds or refreshes a catalog entry.
func (s *CatalogStore) UpsertMovie(ctx context.Context, name, posterURL string) error {
	_, err := s.db.NewQuery(`
		INSERT INTO movies (name, poster_url) VALUES ({:name}, {:poster})
		ON CONFLICT(name) DO UPDATE SET poster_url = excluded.poster_url
	`).Bind(dbx.Params{"name": name, "poster": posterURL}).
		WithContext(ctx).Execute()
	if err != nil {
		return fmt.Errorf("upsert movie: %w", err)
	}
	return nil
}

// Cinemas returns the static venue metadata passthrough.
func (s *CatalogStore) Cinemas(ctx context.Context) ([]models.Cinema, error) {
	var cinemas []models.Cinema
	err := s.db.Select().From("cinemas").WithContext(ctx).All(&cinemas)
	if err != nil {
		return nil, fmt.Errorf("list cinemas: %w", err)
	}
	return cinemas, nil
}
