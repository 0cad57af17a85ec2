package memory

import (
	"context"
	"sort"

	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/app/repositories"
)

// StudentRepository is the in-memory student record store
type StudentRepository struct {
	store *Store
}

func (r *StudentRepository) Create(ctx context.Context, profile *models.StudentProfile) error {
	return r.store.do(ctx, func(st *state) error {
		identity, ok := st.identities[profile.OwnerID]
		if !ok {
			return repositories.ErrNotFound
		}
		if _, exists := st.owners[profile.OwnerID]; exists {
			return repositories.ErrDuplicate
		}
		st.nextProfileID++
		row := &profileRow{id: st.nextProfileID, ownerID: profile.OwnerID}
		st.profiles[row.id] = row
		st.owners[row.ownerID] = row.id

		profile.ID = row.id
		profile.Version = row.version
		profile.OwnerUsername = identity.Username
		profile.Courses = []models.Course{}
		return nil
	})
}

func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.StudentProfile, error) {
	var out *models.StudentProfile
	err := r.store.do(ctx, func(st *state) error {
		row, ok := st.profiles[id]
		if !ok {
			return repositories.ErrNotFound
		}
		out = st.profile(row)
		return nil
	})
	return out, err
}

func (r *StudentRepository) GetByOwnerUsername(ctx context.Context, username string) (*models.StudentProfile, error) {
	var out *models.StudentProfile
	err := r.store.do(ctx, func(st *state) error {
		identityID, ok := st.usernames[username]
		if !ok {
			return repositories.ErrNotFound
		}
		profileID, ok := st.owners[identityID]
		if !ok {
			return repositories.ErrNotFound
		}
		out = st.profile(st.profiles[profileID])
		return nil
	})
	return out, err
}

func (r *StudentRepository) List(ctx context.Context) ([]*models.StudentProfile, error) {
	out := []*models.StudentProfile{}
	err := r.store.do(ctx, func(st *state) error {
		for _, row := range st.profiles {
			out = append(out, st.profile(row))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *StudentRepository) SaveCourses(ctx context.Context, profile *models.StudentProfile) error {
	return r.store.do(ctx, func(st *state) error {
		row, ok := st.profiles[profile.ID]
		if !ok {
			return repositories.ErrNotFound
		}
		if row.version != profile.Version {
			return repositories.ErrVersionConflict
		}

		ids := profile.CourseIDs()
		seen := make(map[int64]bool, len(ids))
		unique := make([]int64, 0, len(ids))
		for _, id := range ids {
			if _, exists := st.courses[id]; !exists {
				return repositories.ErrUnknownCourse
			}
			if !seen[id] {
				seen[id] = true
				unique = append(unique, id)
			}
		}

		row.courseIDs = unique
		row.version++
		profile.Version = row.version
		return nil
	})
}
