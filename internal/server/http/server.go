// Package httpserver exposes the shipment desk HTTP+JSON API.
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/cargodesk/internal/errs"
	"github.com/and161185/cargodesk/internal/request"
	"github.com/and161185/cargodesk/internal/service"
)

// Pinger reports datastore liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options tune the HTTP surface.
type Options struct {
	SignKey     []byte
	CORSOrigins []string
}

// Server wires services into gin handlers.
type Server struct {
	auth      service.AuthService
	shipments service.ShipmentService
	db        Pinger
	log       *zap.Logger
	signKey   []byte
	engine    *gin.Engine
}

// New constructs the server and its routes. db may be nil, in which case
// /healthz only reports the process as up.
func New(auth service.AuthService, shipments service.ShipmentService, db Pinger, log *zap.Logger, opt Options) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{auth: auth, shipments: shipments, db: db, log: log, signKey: opt.SignKey}

	r := gin.New()
	r.Use(Recover(log), Logging(log), cors.New(corsConfig(opt.CORSOrigins)))

	r.GET("/", s.Root)
	r.GET("/healthz", s.Health)

	api := r.Group("/api")
	api.POST("/auth/login", s.Login)

	form := api.Group("/form", RequireAuth(s.signKey))
	{
		form.POST("/create", s.CreateShipment)
		form.GET("/mydata", s.MyShipments)
		form.GET("/:id", s.GetShipment)
	}

	s.engine = r
	return s
}

// Handler returns the routed http.Handler.
func (s *Server) Handler() http.Handler { return s.engine }

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

// Root answers liveness probes without touching the datastore.
func (s *Server) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Backend is running"})
}

// Health pings the datastore.
func (s *Server) Health(c *gin.Context) {
	if s.db != nil {
		if err := s.db.Ping(c.Request.Context()); err != nil {
			s.log.Warn("health: db ping failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Login authenticates a user and returns a session token with a public user summary.
func (s *Server) Login(c *gin.Context) {
	var in request.Login
	if !s.decode(c, &in) {
		return
	}
	sess, err := s.auth.Login(c.Request.Context(), in, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
		case errors.Is(err, errs.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"message": "Access denied."})
		default:
			s.fail(c, err, "Internal server error")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": sess.Token, "user": sess.User})
}

// CreateShipment validates the nested payload and stores it for the caller.
func (s *Server) CreateShipment(c *gin.Context) {
	who, ok := ClaimsFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}
	var in request.Shipment
	if !s.decode(c, &in) {
		return
	}
	row, err := s.shipments.Create(c.Request.Context(), who, in)
	if err != nil {
		s.fail(c, err, "Failed to create shipment")
		return
	}
	c.JSON(http.StatusCreated, row)
}

// MyShipments lists the caller's shipments: ?page=&limit=&search=.
func (s *Server) MyShipments(c *gin.Context) {
	who, ok := ClaimsFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}
	page, limit := request.ParsePage(c.Query("page"), c.Query("limit"))
	out, err := s.shipments.List(c.Request.Context(), who, page, limit, c.Query("search"))
	if err != nil {
		s.fail(c, err, "Failed to fetch shipments")
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetShipment returns one of the caller's shipments.
func (s *Server) GetShipment(c *gin.Context) {
	who, ok := ClaimsFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}
	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Shipment not found"})
		return
	}
	row, err := s.shipments.Get(c.Request.Context(), who, id)
	if err != nil {
		s.fail(c, err, "Failed to fetch shipment")
		return
	}
	c.JSON(http.StatusOK, row)
}

// decode reads the raw body into v and answers 400 on any validation problem.
func (s *Server) decode(c *gin.Context, v request.Validatable) bool {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed", "errors": request.Invalid("body", "unreadable").Fields})
		return false
	}
	if err := request.Decode(raw, v); err != nil {
		s.fail(c, err, "Validation failed")
		return false
	}
	return true
}

// fail maps err onto a status code. Storage failures carry the generic
// message plus the error text and are logged.
func (s *Server) fail(c *gin.Context, err error, msg string) {
	var verr *request.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed", "errors": verr.Fields})
	case errors.Is(err, errs.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
	case errors.Is(err, errs.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": "Access denied."})
	case errors.Is(err, errs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Shipment not found"})
	case errors.Is(err, errs.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"message": "Too many login attempts, try again later"})
	default:
		_ = c.Error(err)
		s.log.Error(msg, zap.Error(err), zap.String("path", c.Request.URL.Path))
		c.JSON(http.StatusInternalServerError, gin.H{"message": msg, "error": err.Error()})
	}
}
