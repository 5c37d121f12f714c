// Package scope decides whether an actor may touch a project's records.
package scope

import (
	"github.com/google/uuid"

	"github.com/AbelardoOk/PlanTracker/internal/modules/model"
)

// CanAccess reports whether actor owns p or is one of its collaborators.
// Collaborators must be loaded on p.
func CanAccess(actor uuid.UUID, p *model.Project) bool {
	if p == nil || actor == uuid.Nil {
		return false
	}
	if p.OwnerID == actor {
		return true
	}
	for _, c := range p.Collaborators {
		if c.ID == actor {
			return true
		}
	}
	return false
}

// CanDelete reports whether actor may delete p. Only the owner can.
func CanDelete(actor uuid.UUID, p *model.Project) bool {
	return p != nil && actor != uuid.Nil && p.OwnerID == actor
}
