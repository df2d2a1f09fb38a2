package server

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/prompttemplates/marketplace/internal/audit/domain"
	"github.com/prompttemplates/marketplace/internal/storage"
	templatedomain "github.com/prompttemplates/marketplace/internal/template/domain"
)

// ListTemplates returns the active catalog, newest first.
func (s *Server) ListTemplates(c *gin.Context) {
	rows, err := s.templateSvc.ListActive(c.Request.Context())
	if err != nil {
		s.abort(c, err)
		return
	}
	respondOK(c, rows)
}

// CreateTemplate accepts a multipart upload: a required zip archive, an
// optional background image, and the template fields.
func (s *Server) CreateTemplate(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	description := strings.TrimSpace(c.PostForm("description"))
	priceRaw := strings.TrimSpace(c.PostForm("price"))
	previewHTML := c.PostForm("preview_html")

	if name == "" || description == "" || priceRaw == "" {
		s.abort(c, errInvalidRequest)
		return
	}
	price, err := strconv.ParseInt(priceRaw, 10, 64)
	if err != nil || price <= 0 {
		s.abort(c, templatedomain.ErrInvalidPrice)
		return
	}

	zipPath, err := s.saveUpload(c, "template", storage.PurposeTemplate, true)
	if err != nil {
		s.abort(c, err)
		return
	}
	backgroundPath, err := s.saveUpload(c, "background", storage.PurposeBackground, false)
	if err != nil {
		s.abort(c, err)
		return
	}

	var backgroundURL *string
	if backgroundPath != "" {
		backgroundURL = &backgroundPath
	}

	resp, err := s.templateSvc.Create(c.Request.Context(), templatedomain.CreateRequest{
		Name:          name,
		Description:   description,
		Price:         price,
		BackgroundURL: backgroundURL,
		ZipFileURL:    zipPath,
		PreviewHTML:   previewHTML,
	})
	if err != nil {
		s.abort(c, err)
		return
	}

	s.auditAdminAction(c, "template.create", "template", resp.ID.String(), map[string]any{
		"name":  resp.Name,
		"price": resp.Price,
	})
	respondOK(c, resp)
}

// DeleteTemplate soft-deletes; repeating the call yields 404.
func (s *Server) DeleteTemplate(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.templateSvc.SoftDelete(c.Request.Context(), id); err != nil {
		s.abort(c, err)
		return
	}

	s.auditAdminAction(c, "template.delete", "template", id, nil)
	respondMessage(c, "Template deleted successfully")
}

// saveUpload stores one multipart file field. A missing optional field
// returns an empty path.
func (s *Server) saveUpload(c *gin.Context, field string, purpose storage.Purpose, required bool) (string, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if required {
			return "", templatedomain.ErrMissingArchive
		}
		return "", nil
	}

	file, err := header.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	return s.store.Save(purpose, header.Filename, header.Header.Get("Content-Type"), file)
}

func (s *Server) auditAdminAction(c *gin.Context, action, targetType, targetID string, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	var actorID *string
	if admin := adminFromContext(c); admin != nil {
		id := admin.ID.String()
		actorID = &id
	}
	target := targetID
	_ = s.auditSvc.Log(c.Request.Context(), auditdomain.ActorTypeAdmin, actorID, action, targetType, &target, metadata)
}
