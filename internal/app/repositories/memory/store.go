// Package memory is an in-process implementation of the repositories with the
// same semantics as the Postgres ones. State is lost on restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/app/repositories"
)

type txKey struct{}

type profileRow struct {
	id        int64
	ownerID   int64
	version   int64
	courseIDs []int64
}

type state struct {
	identities map[int64]models.Identity
	usernames  map[string]int64
	profiles   map[int64]*profileRow
	owners     map[int64]int64 // identity id -> profile id
	courses    map[int64]models.Course

	nextIdentityID int64
	nextProfileID  int64
	nextCourseID   int64
}

func newState() *state {
	return &state{
		identities: map[int64]models.Identity{},
		usernames:  map[string]int64{},
		profiles:   map[int64]*profileRow{},
		owners:     map[int64]int64{},
		courses:    map[int64]models.Course{},
	}
}

func (s *state) clone() *state {
	c := &state{
		identities:     make(map[int64]models.Identity, len(s.identities)),
		usernames:      make(map[string]int64, len(s.usernames)),
		profiles:       make(map[int64]*profileRow, len(s.profiles)),
		owners:         make(map[int64]int64, len(s.owners)),
		courses:        make(map[int64]models.Course, len(s.courses)),
		nextIdentityID: s.nextIdentityID,
		nextProfileID:  s.nextProfileID,
		nextCourseID:   s.nextCourseID,
	}
	for k, v := range s.identities {
		c.identities[k] = v
	}
	for k, v := range s.usernames {
		c.usernames[k] = v
	}
	for k, v := range s.profiles {
		row := *v
		row.courseIDs = append([]int64(nil), v.courseIDs...)
		c.profiles[k] = &row
	}
	for k, v := range s.owners {
		c.owners[k] = v
	}
	for k, v := range s.courses {
		c.courses[k] = v
	}
	return c
}

// Store holds all in-memory data behind a single mutex
type Store struct {
	mu    sync.Mutex
	data  *state
	clock func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{data: newState(), clock: time.Now}
}

// Repositories returns the store's repositories wired like the Postgres ones
func (s *Store) Repositories() *repositories.Repositories {
	return &repositories.Repositories{
		Identities: &IdentityRepository{store: s},
		Courses:    &CourseRepository{store: s},
		Students:   &StudentRepository{store: s},
		Tx:         s,
	}
}

// Ping always succeeds
func (s *Store) Ping(context.Context) error {
	return nil
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// do runs fn under the store lock unless ctx already holds it
func (s *Store) do(ctx context.Context, fn func(*state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.inTx(ctx) {
		return fn(s.data)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// WithinTransaction runs fn holding the store lock; state is restored if fn fails.
// Nested calls join the outer transaction.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	defer func() {
		if r := recover(); r != nil {
			s.data = snapshot
			panic(r)
		}
		if err != nil {
			s.data = snapshot
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, s))
}

// profile builds the public view of a row with its courses ordered by id
func (st *state) profile(row *profileRow) *models.StudentProfile {
	p := &models.StudentProfile{
		ID:            row.id,
		OwnerID:       row.ownerID,
		OwnerUsername: st.identities[row.ownerID].Username,
		Version:       row.version,
		Courses:       make([]models.Course, 0, len(row.courseIDs)),
	}
	for _, id := range row.courseIDs {
		if c, ok := st.courses[id]; ok {
			p.Courses = append(p.Courses, c)
		}
	}
	sort.Slice(p.Courses, func(i, j int) bool { return p.Courses[i].ID < p.Courses[j].ID })
	return p
}
