// Help-request HTTP handlers.
//
// This file exposes REST endpoints for the request lifecycle:
//   - POST /requests               (create, idempotent via Idempotency-Key)
//   - POST /requests/{id}/claim    (open → claimed)
//   - POST /requests/{id}/complete (→ completed, accrues impact)
//   - GET  /requests/nearby        (open requests inside a radius)
//   - GET  /requests/mine          (requester's own requests, paginated)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate service errors into the stable code taxonomy in errors.go.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/go-neighbornet-backend/internal/domain"
	"github.com/tbourn/go-neighbornet-backend/internal/http/middleware"
	"github.com/tbourn/go-neighbornet-backend/internal/repo"
	"github.com/tbourn/go-neighbornet-backend/internal/services"
	"github.com/tbourn/go-neighbornet-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// RequestService defines the lifecycle operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type RequestService interface {
	// Create persists a new open request for userID.
	Create(ctx context.Context, userID string, in services.CreateRequestInput) (*domain.HelpRequest, error)
	// Claim transitions an open request to claimed by userID.
	Claim(ctx context.Context, userID, requestID string) (*domain.HelpRequest, error)
	// Complete finishes a request, recording actual minutes.
	Complete(ctx context.Context, userID, requestID string, actualMinutes int) (*domain.HelpRequest, error)
	// FindNearbyOpen lists open requests inside a radius around a point.
	FindNearbyOpen(ctx context.Context, lat, lng, radiusKm float64) ([]domain.HelpRequest, error)
	// ListMine returns a page of the caller's own requests and the total count.
	ListMine(ctx context.Context, userID string, page, pageSize int) ([]domain.HelpRequest, int64, error)
}

// ProfileService defines profile update operations consumed by HTTP handlers.
type ProfileService interface {
	// Update persists caller-editable profile fields.
	Update(ctx context.Context, userID string, in services.UpdateProfileInput) error
}

// ImpactService exposes the community-wide impact counters.
type ImpactService interface {
	// Get returns the global counters.
	Get(ctx context.Context) (*domain.ImpactMetrics, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for requests, profiles, and impact metrics.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	reqSvc     RequestService
	profileSvc ProfileService
	impactSvc  ImpactService

	// IdempotencyTTL bounds how long a stored create result can be replayed.
	IdempotencyTTL time.Duration
}

// New constructs and returns a Handlers instance bound to the given services.
func New(reqSvc RequestService, profileSvc ProfileService, impactSvc ImpactService, idemTTL time.Duration) *Handlers {
	return &Handlers{reqSvc: reqSvc, profileSvc: profileSvc, impactSvc: impactSvc, IdempotencyTTL: idemTTL}
}

// userID extracts the authenticated user id from Gin context (set by upstream
// middleware). If absent, it falls back to the "X-User-ID" header (demo/test
// identity). An empty result means the caller is unauthenticated.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return ""
}

// failService translates a service-layer error into the HTTP taxonomy.
func failService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		fail(c, http.StatusUnauthorized, ErrCodeUnauthenticated, err.Error())
	case errors.Is(err, services.ErrMissingFields),
		errors.Is(err, services.ErrMissingLocation),
		errors.Is(err, services.ErrInvalidCoordinates),
		errors.Is(err, services.ErrUnresolvedAddress),
		errors.Is(err, services.ErrInvalidMinutes),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, domain.ErrInvalidUrgency):
		fail(c, http.StatusBadRequest, ErrCodeInvalidArgument, err.Error())
	case errors.Is(err, services.ErrRequestNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, services.ErrAlreadyClaimed),
		errors.Is(err, services.ErrAlreadyCompleted):
		fail(c, http.StatusConflict, ErrCodeFailedPrecondition, err.Error())
	case errors.Is(err, services.ErrPermissionDenied):
		fail(c, http.StatusForbidden, ErrCodePermissionDenied, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

//
// DTOs
//

// CreateRequestBody is the JSON payload for creating a help request.
type CreateRequestBody struct {
	// Type classifies the request (groceries, transport, errand, ...).
	Type string `json:"type" binding:"required" example:"groceries"`
	// Title is a short human-readable summary.
	Title string `json:"title" binding:"required" example:"Need milk and bread"`
	// Description carries optional free-form detail.
	Description string `json:"description" example:"Two bags, building entrance code 4711"`
	// Urgency is low|normal|high; defaults to normal.
	Urgency string `json:"urgency" example:"normal"`
	// Address is geocoded when no location is given.
	Address string `json:"address" example:"1 Main St, Springfield"`
	// UseMyLocation pulls coordinates from the caller's saved profile.
	UseMyLocation bool `json:"use_my_location"`
	// Location, when set, wins over address and profile location.
	Location *domain.Location `json:"location"`
	// EstimatedMinutes defaults to 60 when omitted.
	EstimatedMinutes int `json:"estimated_minutes" example:"45"`
}

// CreateRequestResponse returns the id of the created (or replayed) request.
type CreateRequestResponse struct {
	ID string `json:"id" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
}

// CompleteRequestBody is the JSON payload for completing a request.
type CompleteRequestBody struct {
	// ActualMinutes is the volunteered time actually spent; must be positive.
	ActualMinutes int `json:"actual_minutes" binding:"required" example:"45"`
}

// OKResponse is the minimal success acknowledgment for state transitions.
type OKResponse struct {
	OK bool `json:"ok" example:"true"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// NearbyResponse wraps the open requests inside the queried radius.
type NearbyResponse struct {
	Items []domain.HelpRequest `json:"items"`
}

// MyRequestsResponse wraps a page of the caller's requests.
type MyRequestsResponse struct {
	Requests   []domain.HelpRequest `json:"requests"`
	Pagination Pagination           `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// serviceDB exposes the GORM handle when the concrete RequestService is in
// use; idempotency replay is skipped otherwise (e.g., in handler unit tests
// with fakes).
func (h *Handlers) serviceDB() *gorm.DB {
	if svc, ok := h.reqSvc.(*services.RequestService); ok {
		return svc.DB
	}
	return nil
}

//
// Handlers
//

// CreateRequest godoc
// @ID          createRequest
// @Summary     Create a help request
// @Description Creates an open help request for the current user. Supply coordinates, use_my_location, or an address to geocode. Send an Idempotency-Key header to make retries safe.
// @Tags        Requests
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  false "User ID (demo header)" example(user123)
// @Param       Idempotency-Key  header  string  false "Key for safe retries"
// @Param       body             body    handlers.CreateRequestBody  true  "Create request payload"
//
// @Success     201  {object}  handlers.CreateRequestResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid argument"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /requests [post]
func (h *Handlers) CreateRequest(c *gin.Context) {
	uid := userID(c)
	if uid == "" {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthenticated, "caller identity required")
		return
	}

	// Replay a previously stored result instead of creating a duplicate.
	key, hasKey := middleware.GetIdempotencyKey(c)
	db := h.serviceDB()
	if hasKey && db != nil {
		if rec, err := repo.GetIdempotency(c.Request.Context(), db, uid, key, time.Now().UTC()); err == nil {
			ok(c, rec.Status, CreateRequestResponse{ID: rec.RequestID})
			return
		}
	}

	var body CreateRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidArgument, "invalid JSON body")
		return
	}

	created, err := h.reqSvc.Create(c.Request.Context(), uid, services.CreateRequestInput{
		Type:             body.Type,
		Title:            body.Title,
		Description:      body.Description,
		Urgency:          domain.Urgency(strings.ToLower(strings.TrimSpace(body.Urgency))),
		Address:          body.Address,
		UseMyLocation:    body.UseMyLocation,
		Location:         body.Location,
		EstimatedMinutes: body.EstimatedMinutes,
	})
	if err != nil {
		failService(c, err)
		return
	}

	if hasKey && db != nil {
		// Best effort; a duplicate insert means a concurrent retry won.
		_, _ = repo.CreateIdempotency(c.Request.Context(), db, uid, key, created.ID, http.StatusCreated, h.IdempotencyTTL)
	}
	ok(c, http.StatusCreated, CreateRequestResponse{ID: created.ID})
}

// ClaimRequest godoc
// @ID          claimRequest
// @Summary     Claim an open request
// @Description Atomically assigns the request to the current user. Exactly one concurrent claimer succeeds.
// @Tags        Requests
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)" example(vol42)
// @Param       id         path    string  true  "Request ID (UUID)" format(uuid)
//
// @Success     200  {object}  handlers.OKResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     404  {object}  handlers.ErrorResponse  "Request not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Already claimed or completed"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /requests/{id}/claim [post]
func (h *Handlers) ClaimRequest(c *gin.Context) {
	uid := userID(c)
	if uid == "" {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthenticated, "caller identity required")
		return
	}
	if _, err := h.reqSvc.Claim(c.Request.Context(), uid, c.Param("id")); err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, OKResponse{OK: true})
}

// CompleteRequest godoc
// @ID          completeRequest
// @Summary     Complete a request
// @Description Marks the request completed, recording actual minutes and accruing volunteer hours and community impact. Allowed for the assigned volunteer or the requester.
// @Tags        Requests
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)" example(vol42)
// @Param       id         path    string  true  "Request ID (UUID)" format(uuid)
// @Param       body       body    handlers.CompleteRequestBody  true  "Completion payload"
//
// @Success     200  {object}  handlers.OKResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid argument"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     403  {object}  handlers.ErrorResponse  "Permission denied"
// @Failure     404  {object}  handlers.ErrorResponse  "Request not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Already completed"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /requests/{id}/complete [post]
func (h *Handlers) CompleteRequest(c *gin.Context) {
	uid := userID(c)
	if uid == "" {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthenticated, "caller identity required")
		return
	}
	var body CompleteRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidArgument, "actual_minutes required")
		return
	}
	if _, err := h.reqSvc.Complete(c.Request.Context(), uid, c.Param("id"), body.ActualMinutes); err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, OKResponse{OK: true})
}

// NearbyRequests godoc
// @ID          nearbyRequests
// @Summary     List open requests nearby
// @Description Returns open requests inside the bounding box around (lat, lng). No ordering is promised.
// @Tags        Requests
// @Produce     json
//
// @Param       lat        query  number  true  "Latitude"  example(34.05)
// @Param       lng        query  number  true  "Longitude" example(-118.25)
// @Param       radius_km  query  number  false "Radius in km (default 5, capped)" example(5)
//
// @Success     200  {object}  handlers.NearbyResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid argument"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /requests/nearby [get]
func (h *Handlers) NearbyRequests(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lngErr != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidArgument, "lat and lng are required numbers")
		return
	}
	radius := utils.AtofDefault(c.Query("radius_km"), 0)

	items, err := h.reqSvc.FindNearbyOpen(c.Request.Context(), lat, lng, radius)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, NearbyResponse{Items: items})
}

// MyRequests godoc
// @ID          myRequests
// @Summary     List my requests (paginated)
// @Description Returns a page of the current user's own requests, newest first.
// @Tags        Requests
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)" example(user123)
// @Param       page       query   int     false "Page number"    minimum(1) default(1)
// @Param       page_size  query   int     false "Items per page" minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.MyRequestsResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /requests/mine [get]
func (h *Handlers) MyRequests(c *gin.Context) {
	uid := userID(c)
	if uid == "" {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthenticated, "caller identity required")
		return
	}
	page, pageSize := clampPagination(c)

	items, total, err := h.reqSvc.ListMine(c.Request.Context(), uid, page, pageSize)
	if err != nil {
		failService(c, err)
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, MyRequestsResponse{
		Requests: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}
