package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/domain"
	"storefront-backend/internal/infrastructure/mercadopago"
	"storefront-backend/internal/usecase"
)

func (s *Server) handleMenu(c *gin.Context) {
	items, err := s.Catalog.Menu()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) handleSettings(c *gin.Context) {
	st, err := s.Catalog.Settings()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) snapshot(c *gin.Context, status int) {
	var snap usecase.Snapshot
	_ = sessionOf(c).Do(func(m *usecase.OrderManager) error {
		snap = m.Snapshot()
		return nil
	})
	c.JSON(status, snap)
}

func (s *Server) handleSnapshot(c *gin.Context) {
	s.snapshot(c, http.StatusOK)
}

type addItemReq struct {
	ID    domain.ItemID `json:"id" binding:"required"`
	Notes string        `json:"notes"`
}

func (s *Server) handleAddItem(c *gin.Context) {
	var req addItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		s.err(c, http.StatusBadRequest, "BadRequest", "field 'id' required")
		return
	}
	item, err := s.Catalog.CartItem(req.ID, req.Notes)
	if err != nil {
		s.fail(c, err)
		return
	}
	ctx := c.Request.Context()
	_ = sessionOf(c).Do(func(m *usecase.OrderManager) error {
		m.AddItem(ctx, item)
		return nil
	})
	s.snapshot(c, http.StatusOK)
}

func (s *Server) handleRemoveItem(c *gin.Context) {
	id := domain.ItemID(c.Param("id"))
	ctx := c.Request.Context()
	err := sessionOf(c).Do(func(m *usecase.OrderManager) error {
		if !m.RemoveItem(ctx, id) {
			return usecase.ErrNotFound("cart item")
		}
		return nil
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	s.snapshot(c, http.StatusOK)
}

type quantityReq struct {
	Delta int `json:"delta"`
}

func (s *Server) handleUpdateQuantity(c *gin.Context) {
	var req quantityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		s.err(c, http.StatusBadRequest, "BadRequest", "invalid json")
		return
	}
	id := domain.ItemID(c.Param("id"))
	ctx := c.Request.Context()
	err := sessionOf(c).Do(func(m *usecase.OrderManager) error {
		if !m.UpdateQuantity(ctx, id, req.Delta) {
			return usecase.ErrNotFound("cart item")
		}
		return nil
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	s.snapshot(c, http.StatusOK)
}

type modeReq struct {
	Mode domain.OrderMode `json:"mode"`
}

func (s *Server) handleSetMode(c *gin.Context) {
	var req modeReq
	if err := c.ShouldBindJSON(&req); err != nil || !req.Mode.Valid() {
		s.err(c, http.StatusBadRequest, "BadRequest", "mode must be DELIVERY or PICKUP")
		return
	}
	_ = sessionOf(c).Do(func(m *usecase.OrderManager) error {
		m.SetMode(req.Mode)
		return nil
	})
	s.snapshot(c, http.StatusOK)
}

func (s *Server) handleSetCustomer(c *gin.Context) {
	var req domain.CustomerData
	if err := c.ShouldBindJSON(&req); err != nil {
		s.err(c, http.StatusBadRequest, "BadRequest", "invalid json")
		return
	}
	_ = sessionOf(c).Do(func(m *usecase.OrderManager) error {
		m.SetCustomerData(req)
		return nil
	})
	s.snapshot(c, http.StatusOK)
}

type notesReq struct {
	Notes string `json:"notes"`
}

func (s *Server) handleSetNotes(c *gin.Context) {
	var req notesReq
	if err := c.ShouldBindJSON(&req); err != nil {
		s.err(c, http.StatusBadRequest, "BadRequest", "invalid json")
		return
	}
	// no order yet: ignored
	_ = sessionOf(c).Do(func(m *usecase.OrderManager) error {
		m.SetNotes(req.Notes)
		return nil
	})
	s.snapshot(c, http.StatusOK)
}

func (s *Server) handleAbandon(c *gin.Context) {
	s.Checkout.Abandon(c.Request.Context(), sessionOf(c))
	s.snapshot(c, http.StatusOK)
}

type submitReq struct {
	Mode         domain.OrderMode    `json:"mode"`
	CustomerData domain.CustomerData `json:"customerData"`
	Notes        string              `json:"notes"`
}

func (s *Server) handleSubmit(c *gin.Context) {
	var req submitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		s.err(c, http.StatusBadRequest, "BadRequest", "invalid json")
		return
	}
	order, err := s.Checkout.Submit(c.Request.Context(), sessionOf(c), req.Mode, req.CustomerData, req.Notes)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (s *Server) handleStartPayment(c *gin.Context) {
	ctx := mercadopago.WithSiteURL(c.Request.Context(), s.requestOrigin(c))
	redirect, err := s.Checkout.StartPayment(ctx, sessionOf(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, redirect)
}

func (s *Server) handleResult(c *gin.Context) {
	var p usecase.ReturnParams
	if err := c.ShouldBindQuery(&p); err != nil {
		s.err(c, http.StatusBadRequest, "BadRequest", "invalid query")
		return
	}
	view, err := s.Checkout.Reconcile(c.Request.Context(), sessionOf(c), p)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleDispatch(c *gin.Context) {
	res, err := s.Checkout.Dispatch(c.Request.Context(), sessionOf(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// requestOrigin rebuilds the public origin the shopper used. Forwarded
// headers count only when a trusted proxy sits in front.
func (s *Server) requestOrigin(c *gin.Context) string {
	host := c.Request.Host
	if s.Config.TrustProxy {
		if h := c.GetHeader("X-Forwarded-Host"); h != "" {
			host = h
		}
	}
	return s.scheme(c) + "://" + host
}
