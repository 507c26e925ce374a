package planner

import (
	"sort"

	"github.com/ahorrat/weekly-planner/internal/core/domain"
)

// Snapshot is an immutable view of a store at one point in time. All
// derivations are recomputed from it on every call.
type Snapshot struct {
	Roles      []domain.Role      `json:"roles"`
	Objectives []domain.Objective `json:"objectives"`
	Activities []domain.Activity  `json:"activities"`
}

// RoleName returns the name of the role, or "" when it does not exist.
func (s Snapshot) RoleName(id int64) string {
	for _, r := range s.Roles {
		if r.ID == id {
			return r.Name
		}
	}
	return ""
}

// ObjectiveDescription returns the description of the objective, or "".
func (s Snapshot) ObjectiveDescription(id int64) string {
	if o, ok := s.objective(id); ok {
		return o.Description
	}
	return ""
}

// ObjectiveRoleID returns the parent role id, or 0 when the objective is unknown.
func (s Snapshot) ObjectiveRoleID(id int64) int64 {
	if o, ok := s.objective(id); ok {
		return o.RoleID
	}
	return 0
}

// ObjectivePriority returns the priority, or 0 when the objective is unknown.
func (s Snapshot) ObjectivePriority(id int64) domain.Priority {
	if o, ok := s.objective(id); ok {
		return o.Priority
	}
	return 0
}

func (s Snapshot) objective(id int64) (domain.Objective, bool) {
	for _, o := range s.Objectives {
		if o.ID == id {
			return o, true
		}
	}
	return domain.Objective{}, false
}

// ActivitiesOn returns the activities scheduled on day, earliest first.
// Ordering uses the parsed time of day so "9:00" sorts before "10:00".
func (s Snapshot) ActivitiesOn(day domain.Day) []domain.Activity {
	out := []domain.Activity{}
	for _, a := range s.Activities {
		if a.Day == day {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return domain.SlotMinutes(out[i].Time) < domain.SlotMinutes(out[j].Time)
	})
	return out
}

// RolesWithoutObjectives returns the roles no objective points at.
func (s Snapshot) RolesWithoutObjectives() []domain.Role {
	used := make(map[int64]struct{}, len(s.Objectives))
	for _, o := range s.Objectives {
		used[o.RoleID] = struct{}{}
	}
	out := []domain.Role{}
	for _, r := range s.Roles {
		if _, ok := used[r.ID]; !ok {
			out = append(out, r)
		}
	}
	return out
}

// ObjectivesWithoutActivities returns the objectives no activity points at.
func (s Snapshot) ObjectivesWithoutActivities() []domain.Objective {
	used := make(map[int64]struct{}, len(s.Activities))
	for _, a := range s.Activities {
		used[a.ObjectiveID] = struct{}{}
	}
	out := []domain.Objective{}
	for _, o := range s.Objectives {
		if _, ok := used[o.ID]; !ok {
			out = append(out, o)
		}
	}
	return out
}

// Week lays the activities out on the seven-day grid.
func (s Snapshot) Week() domain.WeekView {
	w := domain.WeekView{Days: make([]domain.DayColumn, 0, len(domain.Days))}
	for _, day := range domain.Days {
		col := domain.DayColumn{Day: day, Activities: []domain.ScheduledActivity{}}
		for _, a := range s.ActivitiesOn(day) {
			roleID := s.ObjectiveRoleID(a.ObjectiveID)
			col.Activities = append(col.Activities, domain.ScheduledActivity{
				Activity:             a,
				ObjectiveDescription: s.ObjectiveDescription(a.ObjectiveID),
				RoleID:               roleID,
				RoleName:             s.RoleName(roleID),
				Priority:             s.ObjectivePriority(a.ObjectiveID),
			})
		}
		w.Days = append(w.Days, col)
	}
	return w
}

// Advisories are the hints shown next to the planner forms.
type Advisories struct {
	RolesWithoutObjectives      []domain.Role      `json:"roles_without_objectives"`
	ObjectivesWithoutActivities []domain.Objective `json:"objectives_without_activities"`
}

func (s Snapshot) Advisories() Advisories {
	return Advisories{
		RolesWithoutObjectives:      s.RolesWithoutObjectives(),
		ObjectivesWithoutActivities: s.ObjectivesWithoutActivities(),
	}
}
