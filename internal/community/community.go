// Package community holds the post interaction logic: like toggling with set
// semantics and append-only comments.
package community

import (
	"context"
	"log/slog"
	"strings"

	"github.com/kehila-platform/kehila/pkg/models"
	"github.com/kehila-platform/kehila/pkg/store"
)

type Service struct {
	entities store.EntityStore
	logger   *slog.Logger
}

func NewService(entities store.EntityStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{entities: entities, logger: logger}
}

// ToggleLike adds a like when the user has none on the post and removes it
// otherwise. Membership is keyed by (post, user email), so toggling twice
// always restores the original state and a user can never hold two likes on
// one post. Returns whether the post is liked after the call.
func (s *Service) ToggleLike(ctx context.Context, postID, userEmail, userName string) (bool, error) {
	if strings.TrimSpace(userEmail) == "" {
		return false, store.ErrNotSignedIn
	}

	existing, err := s.entities.Filter(ctx, store.EntityLike, store.Fields{
		"post_id":    postID,
		"user_email": userEmail,
	})
	if err != nil {
		return false, err
	}

	if len(existing) > 0 {
		// remove every match so duplicates from older clients collapse back
		// to set semantics
		for _, like := range existing {
			if err := s.entities.Delete(ctx, store.EntityLike, like.ID()); err != nil && !store.IsNotFound(err) {
				return false, err
			}
		}
		return false, nil
	}

	_, err = s.entities.Create(ctx, store.EntityLike, store.Fields{
		"post_id":    postID,
		"user_email": userEmail,
		"user_name":  userName,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListLikes returns the likes on a post.
func (s *Service) ListLikes(ctx context.Context, postID string) ([]models.Like, error) {
	recs, err := s.entities.Filter(ctx, store.EntityLike, store.Fields{"post_id": postID})
	if err != nil {
		return nil, err
	}
	out := make([]models.Like, 0, len(recs))
	for _, rec := range recs {
		var like models.Like
		if err := store.DecodeRecord(rec, &like); err != nil {
			return nil, err
		}
		out = append(out, like)
	}
	return out, nil
}

// AddComment appends a comment to a post. Identity is the author's email;
// the display name is optional and falls back to it. Comments cannot be
// edited or deleted through this surface.
func (s *Service) AddComment(ctx context.Context, postID, authorEmail, authorName, content string) (store.Record, error) {
	if strings.TrimSpace(authorEmail) == "" {
		return nil, store.ErrNotSignedIn
	}
	if strings.TrimSpace(content) == "" {
		return nil, &store.ValidationError{Entity: store.EntityComment, Missing: []string{"content"}}
	}
	if strings.TrimSpace(authorName) == "" {
		authorName = authorEmail
	}

	return s.entities.Create(ctx, store.EntityComment, store.Fields{
		"post_id":     postID,
		"author_name": authorName,
		"created_by":  authorEmail,
		"content":     content,
	})
}

// ListComments returns the comments on a post.
func (s *Service) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	recs, err := s.entities.Filter(ctx, store.EntityComment, store.Fields{"post_id": postID})
	if err != nil {
		return nil, err
	}
	out := make([]models.Comment, 0, len(recs))
	for _, rec := range recs {
		var cm models.Comment
		if err := store.DecodeRecord(rec, &cm); err != nil {
			return nil, err
		}
		out = append(out, cm)
	}
	return out, nil
}
