package handler

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AbelardoOk/PlanTracker/internal/config"
	"github.com/AbelardoOk/PlanTracker/internal/modules/serializer"
	"github.com/AbelardoOk/PlanTracker/internal/modules/service"
	"github.com/AbelardoOk/PlanTracker/internal/pkg/export"
)

type VisitorHandler struct {
	svc service.VisitorService
	cfg *config.Config
	now func() time.Time
}

func NewVisitorHandler(s service.VisitorService, cfg *config.Config) *VisitorHandler {
	return &VisitorHandler{svc: s, cfg: cfg, now: time.Now}
}

type CreateVisitorReq struct {
	Name        string   `form:"name" json:"name" example:"Apis mellifera"`
	PopularName string   `form:"popular_name" json:"popular_name" example:"abelha europeia"`
	UseNow      bool     `form:"use_now" json:"use_now"`
	Date        string   `form:"date" json:"date" example:"2024-06-01"`
	Time        string   `form:"time" json:"time" example:"09:15"`
	Latitude    string   `form:"latitude" json:"latitude" example:"-15.79"`
	Longitude   string   `form:"longitude" json:"longitude" example:"-47.88"`
	Behavior    string   `form:"behavior" json:"behavior"`
	NumVisitors int      `form:"num_visitors" json:"num_visitors"`
	TypeVisitor string   `form:"type" json:"type"`
	FlowerTypes []string `form:"flower_types" json:"flower_types"`
	Resources   []string `form:"resources" json:"resources"`
}

// CreateVisitor godoc
//
//	@Summary		Create visitor
//	@Description	Record a visitor on a plant. The visitor_id is the next number for that plant, starting at 1. date and time are required unless use_now is true.
//	@Tags			visitor
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			plant_id		path		string	true	"Plant ID"	Format(uuid)
//	@Param			name			formData	string	true	"Visitor name"
//	@Param			use_now			formData	boolean	false	"Use the server clock for date and time"
//	@Param			date			formData	string	false	"YYYY-MM-DD"
//	@Param			time			formData	string	false	"HH:MM"
//	@Param			latitude		formData	number	true	"Latitude"
//	@Param			longitude		formData	number	true	"Longitude"
//	@Param			flower_types	formData	[]string	false	"Flower visitor kinds"	collectionFormat(multi)
//	@Param			resources		formData	[]string	false	"Resources collected"	collectionFormat(multi)
//	@Param			photo			formData	file	false	"Visitor photo"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.Visitor}
//	@Router			/plants/{plant_id}/visitors [post]
func (h *VisitorHandler) CreateVisitor(c *gin.Context) {
	plantID, ok := pathID(c, "plant_id")
	if !ok {
		return
	}

	req := CreateVisitorReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
		return
	}

	coords := &service.ValidationError{}
	lat := coordinate(coords, "latitude", req.Latitude)
	lng := coordinate(coords, "longitude", req.Longitude)
	if err := coords.Err(); err != nil {
		renderErr(c, err)
		return
	}

	photo, err := formUpload(c, "photo", h.cfg.S3.MaxPhotoBytes)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid photo upload", err))
		return
	}

	v, err := h.svc.Create(c.Request.Context(), actor.UserID, plantID, service.CreateVisitorInput{
		Name:        req.Name,
		PopularName: req.PopularName,
		UseNow:      req.UseNow,
		Date:        req.Date,
		Time:        req.Time,
		Latitude:    lat,
		Longitude:   lng,
		Behavior:    req.Behavior,
		NumVisitors: req.NumVisitors,
		TypeVisitor: req.TypeVisitor,
		FlowerTypes: req.FlowerTypes,
		Resources:   req.Resources,
		Photo:       photo,
	})
	if err != nil {
		renderErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: v})
}

// coordinate parses a submitted coordinate. A blank value is left nil so the
// service reports it as missing instead of storing zero.
func coordinate(v *service.ValidationError, field, raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		v.Add(field, "enter a number")
		return nil
	}
	return &f
}

type ListVisitorsReq struct {
	service.ListVisitorsInput
	Export string `form:"export" json:"export" example:"csv"`
}

// ListVisitors godoc
//
//	@Summary		Filter and export visitors
//	@Description	Visitors of every project the caller can access, narrowed by the given filters (AND). With export=csv or export=xlsx the same rows are returned as an attachment.
//	@Tags			visitor
//	@Produce		json,text/csv
//	@Param			project		query	string	false	"Project name substring"
//	@Param			date_from	query	string	false	"YYYY-MM-DD, inclusive"
//	@Param			date_to		query	string	false	"YYYY-MM-DD, inclusive"
//	@Param			type		query	string	false	"Visitor type or flower-type substring"
//	@Param			resource	query	string	false	"Resource substring"
//	@Param			export		query	string	false	"csv or xlsx"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]model.Visitor}
//	@Router			/visitors [get]
func (h *VisitorHandler) ListVisitors(c *gin.Context) {
	req := ListVisitorsReq{}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	format, exporting, err := export.ParseFormat(req.Export)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
		return
	}

	if !exporting {
		items, err := h.svc.List(c.Request.Context(), actor.UserID, req.ListVisitorsInput)
		if err != nil {
			renderErr(c, err)
			return
		}
		c.JSON(http.StatusOK, serializer.Response{Data: items})
		return
	}

	// render into memory first so a failure can still be reported as JSON
	var buf bytes.Buffer
	if _, err := h.svc.Export(c.Request.Context(), actor.UserID, req.ListVisitorsInput, format, &buf); err != nil {
		renderErr(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename(h.now())))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// GetVisitorPhoto godoc
//
//	@Summary		Visitor photo
//	@Tags			visitor
//	@Produce		image/jpeg,image/png,image/webp
//	@Param			visitor_id	path	string	true	"Visitor ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{file}	binary
//	@Router			/visitors/{visitor_id}/photo [get]
func (h *VisitorHandler) GetVisitorPhoto(c *gin.Context) {
	visitorID, ok := pathID(c, "visitor_id")
	if !ok {
		return
	}

	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
		return
	}

	photo, err := h.svc.Photo(c.Request.Context(), actor.UserID, visitorID)
	if err != nil {
		renderErr(c, err)
		return
	}
	sendPhoto(c, photo)
}
