package memory

import (
	"context"
	"time"

	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/repositories"
)

type tokenRepository struct {
	s *Store
}

func findToken(d *state, token string) (int64, bool) {
	for id, t := range d.tokens {
		if t.Token == token {
			return id, true
		}
	}
	return 0, false
}

func (r *tokenRepository) Create(ctx context.Context, t *models.RefreshToken) error {
	return r.s.view(ctx, func(d *state) error {
		if _, ok := findToken(d, t.Token); ok {
			return duplicate(repositories.ConstraintRefreshToken)
		}
		if _, ok := d.users[t.UserID]; !ok {
			return repositories.ErrNotFound
		}
		t.ID = d.next("refresh_tokens")
		t.CreatedAt = r.s.now()
		d.tokens[t.ID] = *t
		return nil
	})
}

func (r *tokenRepository) GetByToken(ctx context.Context, token string) (out *models.RefreshToken, err error) {
	err = r.s.view(ctx, func(d *state) error {
		id, ok := findToken(d, token)
		if !ok {
			return repositories.ErrNotFound
		}
		out, err = get(d.tokens, id)
		return err
	})
	return out, err
}

func (r *tokenRepository) Revoke(ctx context.Context, token string) (changed bool, err error) {
	err = r.s.view(ctx, func(d *state) error {
		id, ok := findToken(d, token)
		if !ok || d.tokens[id].IsRevoked {
			return nil
		}
		t := d.tokens[id]
		t.IsRevoked = true
		d.tokens[id] = t
		changed = true
		return nil
	})
	return changed, err
}

func (r *tokenRepository) RevokeAllForUser(ctx context.Context, userID int64) error {
	return r.s.view(ctx, func(d *state) error {
		for id, t := range d.tokens {
			if t.UserID == userID && !t.IsRevoked {
				t.IsRevoked = true
				d.tokens[id] = t
			}
		}
		return nil
	})
}

func (r *tokenRepository) DeleteStale(ctx context.Context, now, revokedBefore time.Time) (n int64, err error) {
	err = r.s.view(ctx, func(d *state) error {
		for id, t := range d.tokens {
			if t.Expired(now) || (t.IsRevoked && t.CreatedAt.Before(revokedBefore)) {
				delete(d.tokens, id)
				n++
			}
		}
		return nil
	})
	return n, err
}
