// Profile and impact HTTP handlers.
//
// This file exposes the caller-editable profile endpoint and the public
// community impact counters:
//   - PUT /profile
//   - GET /impact
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-neighbornet-backend/internal/domain"
	"github.com/tbourn/go-neighbornet-backend/internal/services"
)

// UpdateProfileBody is the JSON payload for a profile update. All fields are
// optional; omitted fields keep their stored value.
type UpdateProfileBody struct {
	Name     *string          `json:"name" example:"Pat"`
	Phone    *string          `json:"phone" example:"+15551234567"`
	Role     *string          `json:"role" example:"volunteer"`
	Location *domain.Location `json:"location"`
}

// ImpactResponse mirrors the community impact counters.
type ImpactResponse struct {
	TotalRequestsCompleted int64 `json:"total_requests_completed" example:"42"`
	TotalVolunteerMinutes  int64 `json:"total_volunteer_minutes" example:"1260"`
}

// UpdateProfile godoc
// @ID          updateProfile
// @Summary     Update my profile
// @Description Updates the caller's name, phone, role, or saved location. Volunteers with a saved location receive nearby-request notifications.
// @Tags        Profile
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)" example(user123)
// @Param       body       body    handlers.UpdateProfileBody  true  "Profile fields to update"
//
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid argument"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /profile [put]
func (h *Handlers) UpdateProfile(c *gin.Context) {
	uid := userID(c)
	if uid == "" {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthenticated, "caller identity required")
		return
	}
	var body UpdateProfileBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidArgument, "invalid JSON body")
		return
	}

	err := h.profileSvc.Update(c.Request.Context(), uid, services.UpdateProfileInput{
		Name:     body.Name,
		Phone:    body.Phone,
		Role:     body.Role,
		Location: body.Location,
	})
	if err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}

// GetImpact godoc
// @ID          getImpact
// @Summary     Community impact counters
// @Description Returns the community-wide totals of completed requests and volunteered minutes.
// @Tags        Impact
// @Produce     json
//
// @Success     200  {object}  handlers.ImpactResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /impact [get]
func (h *Handlers) GetImpact(c *gin.Context) {
	m, err := h.impactSvc.Get(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, ImpactResponse{
		TotalRequestsCompleted: m.TotalRequestsCompleted,
		TotalVolunteerMinutes:  m.TotalVolunteerMinutes,
	})
}
