package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Skotchmaster/watchit/internal/events"
	"github.com/Skotchmaster/watchit/internal/models"
	"github.com/Skotchmaster/watchit/internal/store"
	"github.com/Skotchmaster/watchit/pkg/logging"
	"github.com/Skotchmaster/watchit/pkg/tokens"
)

const defaultMetadataConcurrency = 8

type ListService struct {
	Lists    store.Lists
	Metadata MetadataClient
	Events   events.Publisher

	// MetadataConcurrency bounds parallel metadata lookups. Zero means 8.
	MetadataConcurrency int
}

type ListEntry struct {
	ID      int64          `json:"id"`
	Details map[string]any `json:"details"`
}

type DetailedLists map[string][]ListEntry

// AuthorizeUser allows acting on username's data for that user and for
// admins.
func AuthorizeUser(claims *tokens.Claims, username string) error {
	if claims == nil {
		return ErrForbidden
	}
	if claims.Username == username || claims.Role == models.RoleAdmin {
		return nil
	}
	return ErrForbidden
}

func (s *ListService) AddToList(ctx context.Context, username string, movieID int64, list string) (bool, error) {
	if !models.ValidListName(list) {
		return false, invalidListName(list)
	}
	added, err := s.Lists.AddToList(ctx, username, list, movieID)
	if err != nil {
		return false, userErr("add to list", err)
	}

	logging.FromContext(ctx).Info("list_item_added", "username", username, "list", list, "movie_id", movieID, "changed", added)
	if added {
		publish(ctx, s.Events, events.TopicLists, username, events.Event{
			Type:     events.TypeListItemAdded,
			Username: username,
			List:     list,
			MovieID:  movieID,
		})
	}
	return added, nil
}

// RemoveFromList succeeds whether or not the movie was in the list; removed
// tells which.
func (s *ListService) RemoveFromList(ctx context.Context, username string, movieID int64, list string) (bool, error) {
	if !models.ValidListName(list) {
		return false, invalidListName(list)
	}
	removed, err := s.Lists.RemoveFromList(ctx, username, list, movieID)
	if err != nil {
		return false, userErr("remove from list", err)
	}

	logging.FromContext(ctx).Info("list_item_removed", "username", username, "list", list, "movie_id", movieID, "changed", removed)
	if removed {
		publish(ctx, s.Events, events.TopicLists, username, events.Event{
			Type:     events.TypeListItemRemoved,
			Username: username,
			List:     list,
			MovieID:  movieID,
		})
	}
	return removed, nil
}

func (s *ListService) GetList(ctx context.Context, username, list string) ([]int64, error) {
	if !models.ValidListName(list) {
		return nil, invalidListName(list)
	}
	ids, err := s.Lists.GetList(ctx, username, list)
	if err != nil {
		return nil, userErr("get list", err)
	}
	return ids, nil
}

func (s *ListService) GetLists(ctx context.Context, username string) (models.Lists, error) {
	lists, err := s.Lists.GetLists(ctx, username)
	if err != nil {
		return nil, userErr("get lists", err)
	}
	return lists, nil
}

// GetListsWithDetails returns every list with each id resolved through the
// metadata client. Each distinct id is looked up once.
func (s *ListService) GetListsWithDetails(ctx context.Context, username string) (DetailedLists, error) {
	lists, err := s.GetLists(ctx, username)
	if err != nil {
		return nil, err
	}
	seen := map[int64]bool{}
	var unique []int64
	for _, name := range models.ListNames {
		for _, id := range lists[name] {
			if !seen[id] {
				seen[id] = true
				unique = append(unique, id)
			}
		}
	}

	if len(unique) > 0 && s.Metadata == nil {
		return nil, newPublicError(ErrUpstream, "Movie metadata service is not configured")
	}

	limit := s.MetadataConcurrency
	if limit <= 0 {
		limit = defaultMetadataConcurrency
	}
	var mu sync.Mutex
	details := make(map[int64]map[string]any, len(unique))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, id := range unique {
		g.Go(func() error {
			d, err := s.Metadata.GetMovieDetails(gctx, id)
			if err != nil {
				return fmt.Errorf("movie %d: %w", id, err)
			}
			mu.Lock()
			details[id] = d
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logging.FromContext(ctx).Error("metadata_lookup_failed", "username", username, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	out := make(DetailedLists, len(lists))
	for name, ids := range lists {
		entries := make([]ListEntry, 0, len(ids))
		for _, id := range ids {
			entries = append(entries, ListEntry{ID: id, Details: details[id]})
		}
		out[name] = entries
	}
	return out, nil
}

// CreateCustomList is reserved for admins. Custom lists have no storage yet,
// so the call always ends in ErrNotImplemented once access is granted.
func (s *ListService) CreateCustomList(ctx context.Context, claims *tokens.Claims, name string) error {
	if claims == nil || claims.Role != models.RoleAdmin {
		return ErrForbidden
	}
	if strings.TrimSpace(name) == "" {
		return newPublicError(ErrValidation, "List name is required")
	}
	logging.FromContext(ctx).Info("custom_list_requested", "username", claims.Username, "name", name)
	return newPublicError(ErrNotImplemented, "Custom lists are not supported yet")
}

func userErr(op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
