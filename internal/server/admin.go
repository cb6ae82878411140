package server

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/domain"
	"storefront-backend/internal/infrastructure/asset"
)

const maxUploadBytes = 15 << 20

type loginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleAdminLogin(c *gin.Context) {
	if s.Auth == nil {
		s.err(c, http.StatusServiceUnavailable, "AdminDisabled", "admin access is not configured")
		return
	}
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		s.err(c, http.StatusBadRequest, "BadRequest", "username and password required")
		return
	}
	token, err := s.Auth.Login(req.Username, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (s *Server) requireAdmin(c *gin.Context) {
	if s.Auth == nil {
		s.err(c, http.StatusServiceUnavailable, "AdminDisabled", "admin access is not configured")
		return
	}
	h := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok || token == "" {
		s.err(c, http.StatusUnauthorized, "Unauthorized", "missing bearer token")
		return
	}
	sub, err := s.Auth.Verify(token)
	if err != nil {
		s.err(c, http.StatusUnauthorized, "Unauthorized", "invalid token")
		return
	}
	c.Set(ctxKeyAdmin, sub)
	c.Next()
}

func (s *Server) handleCreateItem(c *gin.Context) {
	var req domain.MenuItem
	if err := c.ShouldBindJSON(&req); err != nil {
		s.err(c, http.StatusBadRequest, "BadRequest", "invalid json")
		return
	}
	it, err := s.Catalog.CreateItem(req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, it)
}

func (s *Server) handleUpdateItem(c *gin.Context) {
	var req domain.MenuItem
	if err := c.ShouldBindJSON(&req); err != nil {
		s.err(c, http.StatusBadRequest, "BadRequest", "invalid json")
		return
	}
	it, err := s.Catalog.UpdateItem(domain.ItemID(c.Param("id")), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

func (s *Server) handleDeleteItem(c *gin.Context) {
	if err := s.Catalog.DeleteItem(domain.ItemID(c.Param("id"))); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleUpdateSettings(c *gin.Context) {
	var req domain.SettingsPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		s.err(c, http.StatusBadRequest, "BadRequest", "invalid json")
		return
	}
	st, err := s.Catalog.UpdateSettings(req)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.Log.InfoContext(c.Request.Context(), "settings updated", "admin", c.GetString(ctxKeyAdmin))
	c.JSON(http.StatusOK, st)
}

func (s *Server) handleListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	if s.Archive == nil {
		c.JSON(http.StatusOK, gin.H{"items": []domain.ArchivedOrder{}, "total": 0, "page": page, "pageSize": size})
		return
	}
	items, total, err := s.Archive.ListArchived(page, size)
	if err != nil {
		s.fail(c, err)
		return
	}
	if items == nil {
		items = []domain.ArchivedOrder{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total, "page": page, "pageSize": size})
}

func (s *Server) handleUpload(c *gin.Context) {
	hdr, err := c.FormFile("file")
	if err != nil {
		s.err(c, http.StatusBadRequest, "BadRequest", "field 'file' required")
		return
	}
	if hdr.Size > maxUploadBytes {
		s.err(c, http.StatusBadRequest, "BadRequest", "file too large")
		return
	}
	if !asset.ValidImageName(hdr.Filename) {
		s.err(c, http.StatusBadRequest, "BadRequest", asset.ErrUnsupportedImage.Error())
		return
	}
	f, err := hdr.Open()
	if err != nil {
		s.err(c, http.StatusBadRequest, "BadRequest", "cannot read file")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		s.err(c, http.StatusBadRequest, "BadRequest", "cannot read file")
		return
	}
	url, err := s.Assets.WriteMenuImage(hdr.Filename, data)
	if err != nil {
		s.err(c, http.StatusInternalServerError, "ServerError", "cannot save file")
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
