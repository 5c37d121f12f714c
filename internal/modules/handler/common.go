package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AbelardoOk/PlanTracker/internal/modules/repo"
	"github.com/AbelardoOk/PlanTracker/internal/modules/serializer"
	"github.com/AbelardoOk/PlanTracker/internal/modules/service"
)

// ActorKey is the gin context key holding the authenticated *repo.Session.
const ActorKey = "actor"

func actorFrom(c *gin.Context) (*repo.Session, bool) {
	v, exists := c.Get(ActorKey)
	if !exists {
		return nil, false
	}
	actor, ok := v.(*repo.Session)
	return actor, ok && actor != nil
}

// pathID parses a uuid path parameter, writing a 400 response when it is malformed.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr(fmt.Sprintf("invalid %s", name), err))
		return uuid.Nil, false
	}
	return id, true
}

// renderErr maps service errors onto status codes.
func renderErr(c *gin.Context, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, serializer.FieldErr(ve.Fields))
	case errors.Is(err, service.ErrProjectNotFound),
		errors.Is(err, service.ErrPlantNotFound),
		errors.Is(err, service.ErrVisitorNotFound),
		errors.Is(err, service.ErrPhotoNotFound):
		c.JSON(http.StatusNotFound, serializer.NotFoundErr(err.Error()))
	case errors.Is(err, service.ErrNotOwner):
		c.JSON(http.StatusForbidden, serializer.ForbiddenErr("only the project owner can delete it"))
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, serializer.ForbiddenErr(""))
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
	}
}

// formUpload reads the optional photo file of a multipart request. Reading
// stops one byte past limit so the service can reject oversized photos
// without buffering them whole.
func formUpload(c *gin.Context, field string, limit int64) (*service.Upload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := io.Reader(f)
	if limit > 0 {
		r = io.LimitReader(f, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return &service.Upload{Filename: fh.Filename, Data: data}, nil
}

func sendPhoto(c *gin.Context, p *service.Photo) {
	defer p.Body.Close()
	contentType := p.Info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	size := p.Info.Size
	if size <= 0 {
		size = -1
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.DataFromReader(http.StatusOK, size, contentType, p.Body, nil)
}
