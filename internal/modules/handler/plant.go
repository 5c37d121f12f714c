package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AbelardoOk/PlanTracker/internal/config"
	"github.com/AbelardoOk/PlanTracker/internal/modules/model"
	"github.com/AbelardoOk/PlanTracker/internal/modules/serializer"
	"github.com/AbelardoOk/PlanTracker/internal/modules/service"
)

type PlantHandler struct {
	svc service.PlantService
	cfg *config.Config
}

func NewPlantHandler(s service.PlantService, cfg *config.Config) *PlantHandler {
	return &PlantHandler{svc: s, cfg: cfg}
}

type CreatePlantReq struct {
	Name           string `form:"name" json:"name" example:"Rosa"`
	PopularName    string `form:"popular_name" json:"popular_name"`
	NumIndividuals int    `form:"num_individuals" json:"num_individuals" example:"1"`
	NumFlowers     int    `form:"num_flowers" json:"num_flowers" example:"12"`
	Scent          string `form:"scent" json:"scent" example:"idiopathic"`
	Resources      string `form:"resources" json:"resources"`
}

// CreatePlant godoc
//
//	@Summary		Create plant
//	@Description	Add a plant to a project. Plants whose names match after removing accents, case and spaces share one plant_id (PA001, PA002, ...).
//	@Tags			plant
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			project_id		path		string	true	"Project ID"	Format(uuid)
//	@Param			name			formData	string	true	"Plant name"
//	@Param			popular_name	formData	string	false	"Popular name"
//	@Param			num_individuals	formData	integer	true	"Number of individuals, at least 1"
//	@Param			num_flowers		formData	integer	false	"Number of flowers"
//	@Param			scent			formData	string	true	"idiopathic or sympathetic"
//	@Param			resources		formData	string	false	"Resources offered"
//	@Param			photo			formData	file	false	"Plant photo"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.Plant}
//	@Router			/projects/{project_id}/plants [post]
func (h *PlantHandler) CreatePlant(c *gin.Context) {
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	req := CreatePlantReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
		return
	}

	photo, err := formUpload(c, "photo", h.cfg.S3.MaxPhotoBytes)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid photo upload", err))
		return
	}

	p, err := h.svc.Create(c.Request.Context(), actor.UserID, projectID, service.CreatePlantInput{
		Name:           req.Name,
		PopularName:    req.PopularName,
		NumIndividuals: req.NumIndividuals,
		NumFlowers:     req.NumFlowers,
		Scent:          model.Scent(req.Scent),
		Resources:      req.Resources,
		Photo:          photo,
	})
	if err != nil {
		renderErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: p})
}

// GetPlant godoc
//
//	@Summary		Plant details
//	@Description	Plant with its visitors
//	@Tags			plant
//	@Produce		json
//	@Param			plant_id	path	string	true	"Plant ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Plant}
//	@Router			/plants/{plant_id} [get]
func (h *PlantHandler) GetPlant(c *gin.Context) {
	plantID, ok := pathID(c, "plant_id")
	if !ok {
		return
	}

	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
		return
	}

	p, err := h.svc.Get(c.Request.Context(), actor.UserID, plantID)
	if err != nil {
		renderErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: p})
}

// DeletePlant godoc
//
//	@Summary		Delete plant
//	@Description	Delete a plant with its visitors. Allowed to the project owner and collaborators.
//	@Tags			plant
//	@Produce		json
//	@Param			plant_id	path	string	true	"Plant ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{}
//	@Router			/plants/{plant_id} [delete]
func (h *PlantHandler) DeletePlant(c *gin.Context) {
	plantID, ok := pathID(c, "plant_id")
	if !ok {
		return
	}

	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
		return
	}

	if err := h.svc.Delete(c.Request.Context(), actor.UserID, plantID); err != nil {
		if errors.Is(err, service.ErrForbidden) {
			c.JSON(http.StatusForbidden, serializer.ForbiddenErr("only project members can delete its plants"))
			return
		}
		renderErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{})
}

// GetPlantPhoto godoc
//
//	@Summary		Plant photo
//	@Tags			plant
//	@Produce		image/jpeg,image/png,image/webp
//	@Param			plant_id	path	string	true	"Plant ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{file}	binary
//	@Router			/plants/{plant_id}/photo [get]
func (h *PlantHandler) GetPlantPhoto(c *gin.Context) {
	plantID, ok := pathID(c, "plant_id")
	if !ok {
		return
	}

	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
		return
	}

	photo, err := h.svc.Photo(c.Request.Context(), actor.UserID, plantID)
	if err != nil {
		renderErr(c, err)
		return
	}
	sendPhoto(c, photo)
}
