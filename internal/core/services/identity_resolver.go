package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/AchilleasB/school-admin/school-service/internal/core/domain"
	"github.com/AchilleasB/school-admin/school-service/internal/core/ports"
)

type IdentityResolver struct {
	store  ports.Store
	logger *slog.Logger
}

var _ ports.IdentityResolver = (*IdentityResolver)(nil)

func NewIdentityResolver(store ports.Store, logger *slog.Logger) *IdentityResolver {
	return &IdentityResolver{store: store, logger: resolveLogger(logger)}
}

// Resolve maps a token subject (an email) to the caller's identity. A subject
// without a user fails authentication.
func (r *IdentityResolver) Resolve(ctx context.Context, subject string) (domain.Identity, error) {
	var identity domain.Identity
	err := r.store.WithinTx(ctx, func(tx ports.Tx) error {
		user, err := tx.FindUserByEmail(ctx, subject)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrUnauthenticated
		}
		if err != nil {
			return err
		}

		teacher, err := tx.FindTeacherByUserID(ctx, user.ID)
		if errors.Is(err, domain.ErrNotFound) {
			teacher = nil
		} else if err != nil {
			return err
		}

		identity = domain.NewIdentity(*user, teacher)
		return nil
	})
	if err != nil {
		return domain.Identity{}, logUnexpected(r.logger, "identity_resolve_failed", err)
	}
	return identity, nil
}
