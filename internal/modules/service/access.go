package service

import (
	"github.com/google/uuid"

	"github.com/AbelardoOk/PlanTracker/internal/modules/model"
	"github.com/AbelardoOk/PlanTracker/internal/pkg/scope"
	"github.com/AbelardoOk/PlanTracker/internal/telemetry"
)

// Operation names used for denied-access metrics.
const (
	opProjectDetails = "project-details"
	opDeleteProject  = "delete-project"
	opCreatePlant    = "create-plant"
	opPlantDetails   = "plant-details"
	opDeletePlant    = "delete-plant"
	opCreateVisitor  = "create-visitor"
	opPhoto          = "photo"
)

// authorize runs after the project was found; a missing project is never reported as Forbidden.
func authorize(m *telemetry.Metrics, op string, actor uuid.UUID, p *model.Project) error {
	if !scope.CanAccess(actor, p) {
		m.RecordDenied(op)
		return ErrForbidden
	}
	return nil
}

func authorizeDelete(m *telemetry.Metrics, actor uuid.UUID, p *model.Project) error {
	if !scope.CanDelete(actor, p) {
		m.RecordDenied(opDeleteProject)
		return ErrNotOwner
	}
	return nil
}
