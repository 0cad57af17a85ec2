package memory

import (
	"context"

	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/app/repositories"
)

// IdentityRepository is the in-memory credential store
type IdentityRepository struct {
	store *Store
}

func (r *IdentityRepository) GetByUsername(ctx context.Context, username string) (*models.Identity, error) {
	var out *models.Identity
	err := r.store.do(ctx, func(st *state) error {
		id, ok := st.usernames[username]
		if !ok {
			return repositories.ErrNotFound
		}
		identity := st.identities[id]
		out = &identity
		return nil
	})
	return out, err
}

func (r *IdentityRepository) Create(ctx context.Context, identity *models.Identity) error {
	return r.store.do(ctx, func(st *state) error {
		if _, exists := st.usernames[identity.Username]; exists {
			return repositories.ErrDuplicate
		}
		st.nextIdentityID++
		identity.ID = st.nextIdentityID
		identity.CreatedAt = r.store.clock().UTC()
		st.identities[identity.ID] = *identity
		st.usernames[identity.Username] = identity.ID
		return nil
	})
}

func (r *IdentityRepository) Update(ctx context.Context, identity *models.Identity) error {
	return r.store.do(ctx, func(st *state) error {
		current, ok := st.identities[identity.ID]
		if !ok {
			return repositories.ErrNotFound
		}
		current.PasswordHash = identity.PasswordHash
		current.Role = identity.Role
		st.identities[identity.ID] = current
		return nil
	})
}
