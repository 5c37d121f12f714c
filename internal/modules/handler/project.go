package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AbelardoOk/PlanTracker/internal/modules/repo"
	"github.com/AbelardoOk/PlanTracker/internal/modules/serializer"
	"github.com/AbelardoOk/PlanTracker/internal/modules/service"
)

type ProjectHandler struct {
	svc service.ProjectService
}

func NewProjectHandler(s service.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: s}
}

type ListProjectsReq struct {
	Name        string `form:"name" json:"name" example:"mata"`
	Institution string `form:"institution" json:"institution" example:"unb"`
}

// ListProjects godoc
//
//	@Summary		List projects
//	@Description	Projects owned by the caller and projects shared with them. name and institution are case-insensitive substrings combined with AND.
//	@Tags			project
//	@Produce		json
//	@Param			name		query	string	false	"Project name substring"
//	@Param			institution	query	string	false	"Institution substring"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=service.HomeOutput}
//	@Router			/projects [get]
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	req := ListProjectsReq{}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
		return
	}

	out, err := h.svc.ListHome(c.Request.Context(), actor.UserID, repo.ProjectFilter{
		Name:        req.Name,
		Institution: req.Institution,
	})
	if err != nil {
		renderErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: out})
}

type CreateProjectReq struct {
	Name          string   `json:"name" form:"name" example:"Mata Atlântica"`
	Advisor       string   `json:"advisor" form:"advisor"`
	Location      string   `json:"location" form:"location"`
	Institution   string   `json:"institution" form:"institution" example:"UnB"`
	Collaborators []string `json:"collaborators" form:"collaborators"`
}

// CreateProject godoc
//
//	@Summary		Create project
//	@Description	Create a project owned by the caller. collaborators lists existing usernames.
//	@Tags			project
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	handler.CreateProjectReq	true	"Project"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.Project}
//	@Router			/projects [post]
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	req := CreateProjectReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
		return
	}

	p, err := h.svc.Create(c.Request.Context(), actor.UserID, service.CreateProjectInput{
		Name:          req.Name,
		Advisor:       req.Advisor,
		Location:      req.Location,
		Institution:   req.Institution,
		Collaborators: req.Collaborators,
	})
	if err != nil {
		renderErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: p})
}

// GetProject godoc
//
//	@Summary		Project details
//	@Description	Project with its collaborators and plants
//	@Tags			project
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Project}
//	@Failure		403	{object}	serializer.Response{}
//	@Failure		404	{object}	serializer.Response{}
//	@Router			/projects/{project_id} [get]
func (h *ProjectHandler) GetProject(c *gin.Context) {
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
		return
	}

	p, err := h.svc.Get(c.Request.Context(), actor.UserID, projectID)
	if err != nil {
		renderErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: p})
}

// DeleteProject godoc
//
//	@Summary		Delete project
//	@Description	Delete a project with its plants, visitors and photos. Owner only.
//	@Tags			project
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{}
//	@Failure		403	{object}	serializer.Response{}
//	@Router			/projects/{project_id} [delete]
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
		return
	}

	if err := h.svc.Delete(c.Request.Context(), actor.UserID, projectID); err != nil {
		if errors.Is(err, service.ErrForbidden) {
			// the delete path always explains the denial
			c.JSON(http.StatusForbidden, serializer.ForbiddenErr("only the project owner can delete it"))
			return
		}
		renderErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{})
}
