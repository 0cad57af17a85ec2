package memory

import (
	"context"
	"sort"

	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/app/repositories"
)

// CourseRepository is the in-memory course catalog
type CourseRepository struct {
	store *Store
}

func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	return r.store.do(ctx, func(st *state) error {
		st.nextCourseID++
		course.ID = st.nextCourseID
		course.CreatedAt = r.store.clock().UTC()
		st.courses[course.ID] = *course
		return nil
	})
}

func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	var out *models.Course
	err := r.store.do(ctx, func(st *state) error {
		c, ok := st.courses[id]
		if !ok {
			return repositories.ErrNotFound
		}
		out = &c
		return nil
	})
	return out, err
}

func (r *CourseRepository) GetByIDs(ctx context.Context, ids []int64) ([]models.Course, error) {
	out := []models.Course{}
	err := r.store.do(ctx, func(st *state) error {
		seen := make(map[int64]bool, len(ids))
		for _, id := range ids {
			if c, ok := st.courses[id]; ok && !seen[id] {
				seen[id] = true
				out = append(out, c)
			}
		}
		return nil
	})
	sortCourses(out)
	return out, err
}

func (r *CourseRepository) List(ctx context.Context) ([]models.Course, error) {
	out := []models.Course{}
	err := r.store.do(ctx, func(st *state) error {
		for _, c := range st.courses {
			out = append(out, c)
		}
		return nil
	})
	sortCourses(out)
	return out, err
}

func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	return r.store.do(ctx, func(st *state) error {
		if _, ok := st.courses[id]; !ok {
			return repositories.ErrNotFound
		}
		for _, p := range st.profiles {
			for _, courseID := range p.courseIDs {
				if courseID == id {
					return repositories.ErrCourseReferenced
				}
			}
		}
		delete(st.courses, id)
		return nil
	})
}

func sortCourses(courses []models.Course) {
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
}
