// Package planner holds the per-session workspace: the in-memory entity
// store, the derivations computed from it and the mutation router that keeps
// it in step with the selected backend.
package planner

import (
	"slices"
	"sync"

	"github.com/ahorrat/weekly-planner/internal/core/domain"
)

// Cascade lists every id removed by a single delete.
type Cascade struct {
	Roles      []int64 `json:"roles"`
	Objectives []int64 `json:"objectives"`
	Activities []int64 `json:"activities"`
}

// Store keeps the three ordered collections of one workspace. Entities are
// never changed in place: every write swaps in a new value.
type Store struct {
	mu         sync.RWMutex
	roles      []domain.Role
	objectives []domain.Objective
	activities []domain.Activity
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Replace swaps all three collections at once.
func (s *Store) Replace(roles []domain.Role, objectives []domain.Objective, activities []domain.Activity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles = slices.Clone(roles)
	s.objectives = slices.Clone(objectives)
	s.activities = slices.Clone(activities)
}

// Clear empties the store.
func (s *Store) Clear() {
	s.Replace(nil, nil, nil)
}

// Snapshot returns a copy that is safe to read while the store keeps changing.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Roles:      nonNil(slices.Clone(s.roles)),
		Objectives: nonNil(slices.Clone(s.objectives)),
		Activities: nonNil(slices.Clone(s.activities)),
	}
}

func (s *Store) Role(id int64) (domain.Role, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.roles, func(r domain.Role) bool { return r.ID == id })
	if i < 0 {
		return domain.Role{}, false
	}
	return s.roles[i], true
}

func (s *Store) Objective(id int64) (domain.Objective, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.objectives, func(o domain.Objective) bool { return o.ID == id })
	if i < 0 {
		return domain.Objective{}, false
	}
	return s.objectives[i], true
}

func (s *Store) Activity(id int64) (domain.Activity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.activities, func(a domain.Activity) bool { return a.ID == id })
	if i < 0 {
		return domain.Activity{}, false
	}
	return s.activities[i], true
}

func (s *Store) AppendRole(r domain.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles = append(s.roles, r)
}

func (s *Store) AppendObjective(o domain.Objective) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objectives = append(s.objectives, o)
}

func (s *Store) AppendActivity(a domain.Activity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities = append(s.activities, a)
}

// ReplaceRole swaps the role with the same id, keeping its position.
// It reports false when no such role exists.
func (s *Store) ReplaceRole(r domain.Role) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.roles, func(x domain.Role) bool { return x.ID == r.ID })
	if i < 0 {
		return false
	}
	s.roles[i] = r
	return true
}

func (s *Store) ReplaceObjective(o domain.Objective) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.objectives, func(x domain.Objective) bool { return x.ID == o.ID })
	if i < 0 {
		return false
	}
	s.objectives[i] = o
	return true
}

func (s *Store) ReplaceActivity(a domain.Activity) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.activities, func(x domain.Activity) bool { return x.ID == a.ID })
	if i < 0 {
		return false
	}
	s.activities[i] = a
	return true
}

// RemoveRole drops the role together with its objectives and their activities.
func (s *Store) RemoveRole(id int64) (Cascade, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !slices.ContainsFunc(s.roles, func(r domain.Role) bool { return r.ID == id }) {
		return Cascade{}, false
	}
	c := Cascade{Roles: []int64{id}}

	objectiveIDs := make(map[int64]struct{})
	for _, o := range s.objectives {
		if o.RoleID == id {
			objectiveIDs[o.ID] = struct{}{}
			c.Objectives = append(c.Objectives, o.ID)
		}
	}
	for _, a := range s.activities {
		if _, ok := objectiveIDs[a.ObjectiveID]; ok {
			c.Activities = append(c.Activities, a.ID)
		}
	}

	s.roles = slices.DeleteFunc(slices.Clone(s.roles), func(r domain.Role) bool { return r.ID == id })
	s.objectives = slices.DeleteFunc(slices.Clone(s.objectives), func(o domain.Objective) bool { return o.RoleID == id })
	s.activities = slices.DeleteFunc(slices.Clone(s.activities), func(a domain.Activity) bool {
		_, ok := objectiveIDs[a.ObjectiveID]
		return ok
	})
	return c, true
}

// RemoveObjective drops the objective together with its activities.
func (s *Store) RemoveObjective(id int64) (Cascade, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !slices.ContainsFunc(s.objectives, func(o domain.Objective) bool { return o.ID == id }) {
		return Cascade{}, false
	}
	c := Cascade{Objectives: []int64{id}}
	for _, a := range s.activities {
		if a.ObjectiveID == id {
			c.Activities = append(c.Activities, a.ID)
		}
	}

	s.objectives = slices.DeleteFunc(slices.Clone(s.objectives), func(o domain.Objective) bool { return o.ID == id })
	s.activities = slices.DeleteFunc(slices.Clone(s.activities), func(a domain.Activity) bool { return a.ObjectiveID == id })
	return c, true
}

func (s *Store) RemoveActivity(id int64) (Cascade, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !slices.ContainsFunc(s.activities, func(a domain.Activity) bool { return a.ID == id }) {
		return Cascade{}, false
	}
	s.activities = slices.DeleteFunc(slices.Clone(s.activities), func(a domain.Activity) bool { return a.ID == id })
	return Cascade{Activities: []int64{id}}, true
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
