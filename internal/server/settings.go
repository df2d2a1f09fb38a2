package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	settingsdomain "github.com/prompttemplates/marketplace/internal/settings/domain"
	"github.com/prompttemplates/marketplace/internal/storage"
)

// GetSettings is public: the storefront reads branding and contact details.
func (s *Server) GetSettings(c *gin.Context) {
	row, err := s.settingsSvc.Get(c.Request.Context())
	if err != nil {
		s.abort(c, err)
		return
	}
	respondOK(c, row)
}

// UpdateSettings upserts the singleton; an uploaded logo replaces the old
// one, an absent logo field keeps it.
func (s *Server) UpdateSettings(c *gin.Context) {
	logoPath, err := s.saveUpload(c, "logo", storage.PurposeLogo, false)
	if err != nil {
		s.abort(c, err)
		return
	}
	var logoURL *string
	if logoPath != "" {
		logoURL = &logoPath
	}

	socialLinks := map[string]any{}
	for _, key := range []string{"tiktok_url", "facebook_url", "whatsapp_number", "instagram_url"} {
		if value := strings.TrimSpace(c.PostForm(key)); value != "" {
			socialLinks[key] = value
		}
	}

	row, err := s.settingsSvc.Upsert(c.Request.Context(), settingsdomain.UpsertRequest{
		PlatformName: c.PostForm("platform_name"),
		LogoURL:      logoURL,
		ContactPhone: c.PostForm("contact_phone"),
		ContactEmail: c.PostForm("contact_email"),
		SocialLinks:  socialLinks,
	})
	if err != nil {
		s.abort(c, err)
		return
	}

	s.auditAdminAction(c, "settings.update", "platform_settings", "singleton", nil)
	respondOK(c, row)
}
