package handler

import (
	"github.com/ahorrat/weekly-planner/internal/core/domain"
	"github.com/ahorrat/weekly-planner/internal/core/planner"
)

// --- Request → Workspace input ---

func toRoleInput(req roleRequest) planner.RoleInput {
	return planner.RoleInput{Name: req.Name}
}

func toObjectiveInput(req objectiveRequest) planner.ObjectiveInput {
	return planner.ObjectiveInput{
		RoleID:      req.RoleID,
		Description: req.Description,
		Priority:    domain.Priority(req.Priority),
	}
}

func toActivityInput(req activityRequest) planner.ActivityInput {
	return planner.ActivityInput{
		ObjectiveID: req.ObjectiveID,
		Description: req.Description,
		Day:         req.Day,
		Time:        req.Time,
	}
}

// --- Snapshot → Response ---

func toPlannerResponse(mode domain.SessionMode, snap planner.Snapshot) plannerResponse {
	return plannerResponse{
		Mode:       mode,
		Roles:      snap.Roles,
		Objectives: snap.Objectives,
		Activities: snap.Activities,
		Advisories: snap.Advisories(),
	}
}
