package handler

import (
	"github.com/ahorrat/weekly-planner/internal/core/domain"
	"github.com/ahorrat/weekly-planner/internal/core/planner"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type credentialsRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type roleRequest struct {
	Name string `json:"name" validate:"required"`
}

type objectiveRequest struct {
	RoleID      int64  `json:"role_id"     validate:"required,gt=0"`
	Description string `json:"description" validate:"required"`
	Priority    int    `json:"priority"    validate:"required,oneof=1 2 3"`
}

type activityRequest struct {
	ObjectiveID int64  `json:"objective_id" validate:"required,gt=0"`
	Description string `json:"description"  validate:"required"`
	Day         string `json:"day"          validate:"required"`
	Time        string `json:"time"         validate:"required"`
}

type plannerResponse struct {
	Mode       domain.SessionMode `json:"mode"`
	Roles      []domain.Role      `json:"roles"`
	Objectives []domain.Objective `json:"objectives"`
	Activities []domain.Activity  `json:"activities"`
	Advisories planner.Advisories `json:"advisories"`
}

type dayResponse struct {
	Day        domain.Day        `json:"day"`
	Activities []domain.Activity `json:"activities"`
}

type deleteResponse struct {
	Deleted planner.Cascade `json:"deleted"`
}
