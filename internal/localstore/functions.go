package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kehila-platform/kehila/pkg/models"
	"github.com/kehila-platform/kehila/pkg/store"
)

// Invoke dispatches a named function locally. These are call-site-compatible
// stand-ins for the serverless functions the hosted platform runs remotely.
func (s *Store) Invoke(ctx context.Context, name string, payload any) (json.RawMessage, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	switch name {
	case store.FnSendEmail:
		return s.sendEmail(b)
	case store.FnSendNotification:
		return s.sendNotification(ctx, b)
	case store.FnAwardBadges:
		return s.awardBadges(ctx, b)
	case store.FnExpireSubscriptions:
		return s.expireSubscriptions(ctx)
	case store.FnModerateContent:
		return s.moderateContent(ctx, b)
	default:
		return nil, &store.RemoteError{Op: "invoke " + name, Err: fmt.Errorf("unknown function")}
	}
}

// sendEmail only logs in local mode; there is no SMTP relay to talk to.
func (s *Store) sendEmail(payload []byte) (json.RawMessage, error) {
	var p struct {
		To      string `json:"to"`
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("sendEmail payload: %w", err)
	}
	if p.To == "" {
		return nil, &store.RemoteError{Op: "invoke sendEmail", Err: fmt.Errorf("to is required")}
	}
	s.logger.Info("local sendEmail", "to", p.To, "subject", p.Subject)
	return json.RawMessage(`{"status":"sent"}`), nil
}

// sendNotification persists a Notification record for the recipient.
func (s *Store) sendNotification(ctx context.Context, payload []byte) (json.RawMessage, error) {
	var p struct {
		UserEmail string `json:"user_email"`
		Message   string `json:"message"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("sendNotification payload: %w", err)
	}
	if _, err := s.Create(ctx, store.EntityNotification, store.Fields{
		"user_email": p.UserEmail,
		"message":    p.Message,
		"is_read":    false,
	}); err != nil {
		return nil, err
	}
	return json.RawMessage(`{"status":"sent"}`), nil
}

// awardBadges recomputes a member's badge level from her completed goals and
// writes it onto the User record.
func (s *Store) awardBadges(ctx context.Context, payload []byte) (json.RawMessage, error) {
	var p struct {
		UserEmail string `json:"user_email"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("awardBadges payload: %w", err)
	}

	goals, err := s.Filter(ctx, store.EntityGoal, store.Fields{
		"created_by": p.UserEmail,
		"status":     models.GoalCompleted,
	})
	if err != nil {
		return nil, err
	}

	level := ""
	switch n := len(goals); {
	case n >= 10:
		level = "gold"
	case n >= 5:
		level = "silver"
	case n >= 1:
		level = "bronze"
	}

	user, err := s.userRecord(ctx, p.UserEmail)
	if err != nil {
		return nil, err
	}
	if user != nil && level != "" {
		if _, err := s.Update(ctx, store.EntityUser, user.ID(), store.Fields{"badge_level": level}); err != nil {
			return nil, err
		}
	}

	out, _ := json.Marshal(map[string]any{"badge_level": level, "completed_goals": len(goals)})
	return out, nil
}

// expireSubscriptions flips active subscriptions whose expiry date has
// passed. Invoked periodically by the sweeper.
func (s *Store) expireSubscriptions(ctx context.Context) (json.RawMessage, error) {
	users, err := s.Filter(ctx, store.EntityUser, store.Fields{"subscription_status": "active"})
	if err != nil {
		return nil, err
	}

	expired := 0
	cutoff := time.Now().UTC()
	for _, u := range users {
		raw := u.Str("subscription_expiry")
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			s.logger.Warn("bad subscription_expiry", "user", u.Str("email"), "value", raw)
			continue
		}
		if t.After(cutoff) {
			continue
		}
		if _, err := s.Update(ctx, store.EntityUser, u.ID(), store.Fields{"subscription_status": "expired"}); err != nil {
			return nil, err
		}
		expired++
	}

	out, _ := json.Marshal(map[string]int{"expired": expired})
	return out, nil
}

// moderateContent removes a reported post together with its likes and
// comments.
func (s *Store) moderateContent(ctx context.Context, payload []byte) (json.RawMessage, error) {
	var p struct {
		PostID string `json:"post_id"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("moderateContent payload: %w", err)
	}
	if p.PostID == "" {
		return nil, &store.RemoteError{Op: "invoke moderateContent", Err: fmt.Errorf("post_id is required")}
	}

	if err := s.Delete(ctx, store.EntityCommunityPost, p.PostID); err != nil {
		return nil, err
	}
	for _, entity := range []string{store.EntityLike, store.EntityComment} {
		recs, err := s.Filter(ctx, entity, store.Fields{"post_id": p.PostID})
		if err != nil {
			return nil, err
		}
		for _, rec := range recs {
			if err := s.Delete(ctx, entity, rec.ID()); err != nil {
				return nil, err
			}
		}
	}

	return json.RawMessage(`{"status":"removed"}`), nil
}

func (s *Store) userRecord(ctx context.Context, email string) (store.Record, error) {
	recs, err := s.Filter(ctx, store.EntityUser, store.Fields{"email": email})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return recs[0], nil
}
