package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"storefront-backend/internal/config"
	"storefront-backend/internal/infrastructure/asset"
	"storefront-backend/internal/usecase"
)

const (
	sessionCookie   = "sid"
	ctxKeySession   = "session"
	ctxKeyRequestID = "requestId"
	ctxKeyAdmin     = "admin"
)

type Deps struct {
	Config   config.Config
	Log      *slog.Logger
	Sessions *usecase.SessionRegistry
	Catalog  *usecase.CatalogService
	Checkout *usecase.CheckoutService
	Auth     *usecase.AuthService
	Archive  usecase.OrderArchive
	Assets   *asset.FSWriter
}

type Server struct {
	Deps
	engine *gin.Engine
	tracer trace.Tracer
}

func New(d Deps) *Server {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	s := &Server{Deps: d, engine: gin.New(), tracer: otel.Tracer("storefront-backend/server")}
	s.engine.Use(s.requestID, s.traceRequests, s.logRequests, gin.Recovery(), s.cors)
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() {
	r := s.engine
	r.Static("/assets", s.Config.AssetsDir)
	r.GET("/healthz", s.handleHealth)

	api := r.Group("/api")
	api.GET("/menu", s.handleMenu)
	api.GET("/settings", s.handleSettings)

	shop := api.Group("", s.session)
	shop.GET("/cart", s.handleSnapshot)
	shop.POST("/cart/items", s.handleAddItem)
	shop.DELETE("/cart/items/:id", s.handleRemoveItem)
	shop.PATCH("/cart/items/:id", s.handleUpdateQuantity)
	shop.GET("/order", s.handleSnapshot)
	shop.PUT("/order/mode", s.handleSetMode)
	shop.PUT("/order/customer", s.handleSetCustomer)
	shop.PUT("/order/notes", s.handleSetNotes)
	shop.DELETE("/order", s.handleAbandon)
	shop.POST("/checkout", s.handleSubmit)
	shop.POST("/checkout/payment", s.handleStartPayment)
	shop.GET("/checkout/result", s.handleResult)
	shop.POST("/checkout/dispatch", s.handleDispatch)

	api.POST("/admin/login", s.handleAdminLogin)
	admin := api.Group("/admin", s.requireAdmin)
	admin.GET("/menu", s.handleMenu)
	admin.POST("/menu", s.handleCreateItem)
	admin.PUT("/menu/:id", s.handleUpdateItem)
	admin.DELETE("/menu/:id", s.handleDeleteItem)
	admin.PATCH("/settings", s.handleUpdateSettings)
	admin.GET("/orders", s.handleListOrders)
	admin.POST("/uploads", s.handleUpload)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": s.Sessions.Len()})
}

func (s *Server) requestID(c *gin.Context) {
	id := c.GetHeader("X-Request-Id")
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(ctxKeyRequestID, id)
	c.Header("X-Request-Id", id)
	c.Next()
}

// traceRequests continues the caller's trace from traceparent, or starts one, for the
// rest of the chain. The trace id is echoed back in X-Trace-Id.
func (s *Server) traceRequests(c *gin.Context) {
	ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	ctx, span := s.tracer.Start(ctx, c.Request.Method+" "+route, trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()
	if sc := span.SpanContext(); sc.HasTraceID() {
		c.Header("X-Trace-Id", sc.TraceID().String())
	}
	c.Request = c.Request.WithContext(ctx)
	c.Next()

	status := c.Writer.Status()
	span.SetAttributes(
		attribute.String("http.request.method", c.Request.Method),
		attribute.String("http.route", route),
		attribute.Int("http.response.status_code", status),
		attribute.String("request.id", c.GetString(ctxKeyRequestID)),
	)
	if status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(status))
	}
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.Log.InfoContext(c.Request.Context(), "http request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"duration_ms", time.Since(start).Milliseconds(),
		"request_id", c.GetString(ctxKeyRequestID),
	)
}

// allowedOrigin accepts any origin until a site URL is configured, then only that one.
func (s *Server) allowedOrigin(origin string) bool {
	site := strings.TrimRight(s.Config.SiteURL, "/")
	return site == "" || strings.EqualFold(origin, site)
}

func (s *Server) cors(c *gin.Context) {
	origin := c.GetHeader("Origin")
	switch {
	case origin == "":
		c.Header("Access-Control-Allow-Origin", "*")
	case s.allowedOrigin(origin):
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Credentials", "true")
	}
	c.Header("Vary", "Origin")
	c.Header("Access-Control-Allow-Headers", "Content-Type,Authorization,X-Request-Id")
	c.Header("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}
	c.Next()
}

// session attaches the shopper's session. A request without a valid cookie
// gets a new id, except reads, which see an empty unregistered session.
func (s *Server) session(c *gin.Context) {
	id, err := c.Cookie(sessionCookie)
	if _, perr := uuid.Parse(id); err != nil || perr != nil {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			c.Set(ctxKeySession, s.Sessions.Transient())
			c.Next()
			return
		}
		id = uuid.NewString()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, id, int(s.Config.SessionTTL.Seconds()), "/", "", s.scheme(c) == "https", true)
	}
	c.Set(ctxKeySession, s.Sessions.Get(c.Request.Context(), id))
	c.Next()
}

// scheme honors X-Forwarded-Proto only behind a trusted proxy.
func (s *Server) scheme(c *gin.Context) string {
	if s.Config.TrustProxy {
		if p := c.GetHeader("X-Forwarded-Proto"); p == "http" || p == "https" {
			return p
		}
	}
	if c.Request.TLS != nil {
		return "https"
	}
	return "http"
}

func sessionOf(c *gin.Context) *usecase.Session {
	return c.MustGet(ctxKeySession).(*usecase.Session)
}

func (s *Server) err(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"code":      code,
			"message":   msg,
			"requestId": c.GetString(ctxKeyRequestID),
		},
	})
}

// fail maps use case errors onto HTTP responses.
func (s *Server) fail(c *gin.Context, err error) {
	var (
		verr *usecase.ValidationError
		perr *usecase.PaymentError
		nf   usecase.ErrNotFound
		cf   usecase.ErrConflict
		br   usecase.ErrBadRequest
		ua   usecase.ErrUnauthorized
	)
	switch {
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"error": gin.H{
				"code":      "ValidationFailed",
				"message":   err.Error(),
				"requestId": c.GetString(ctxKeyRequestID),
			},
			"valid":       false,
			"errors":      verr.Result.Errors,
			"fieldErrors": verr.Result.FieldErrors,
		})
	case errors.As(err, &perr):
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
			"error": gin.H{
				"code":      "PaymentProviderError",
				"message":   perr.Message,
				"requestId": c.GetString(ctxKeyRequestID),
			},
			"message": perr.Message,
			"details": perr.Details,
		})
	case errors.As(err, &nf):
		s.err(c, http.StatusNotFound, "NotFound", err.Error())
	case errors.As(err, &cf):
		s.err(c, http.StatusConflict, "Conflict", err.Error())
	case errors.As(err, &br):
		s.err(c, http.StatusBadRequest, "BadRequest", err.Error())
	case errors.As(err, &ua):
		s.err(c, http.StatusUnauthorized, "Unauthorized", err.Error())
	default:
		s.Log.ErrorContext(c.Request.Context(), "request failed", "path", c.Request.URL.Path, "error", err)
		s.err(c, http.StatusInternalServerError, "ServerError", "internal error")
	}
}
