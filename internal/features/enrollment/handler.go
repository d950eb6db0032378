package enrollment

import (
	"errors"
	"net/http"
	"strings"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	schoolfeature "github.com/mkamel7/academy-server-go/internal/features/school"
	userfeature "github.com/mkamel7/academy-server-go/internal/features/user"
	"github.com/mkamel7/academy-server-go/internal/middleware"
	"github.com/mkamel7/academy-server-go/pkg/email"
	"github.com/mkamel7/academy-server-go/pkg/pagination"
	"github.com/mkamel7/academy-server-go/pkg/request"
	"github.com/mkamel7/academy-server-go/pkg/response"
	"github.com/mkamel7/academy-server-go/pkg/types"
)

// Handler processes plan and enrollment HTTP requests.
type Handler struct {
	db          *gorm.DB
	logger      *slog.Logger
	emailClient *email.Client
}

// NewHandler constructs an enrollment handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger, emailClient *email.Client) *Handler {
	return &Handler{db: db, logger: logger, emailClient: emailClient}
}

// ListPlans returns all plans of a school.
func (h *Handler) ListPlans(c *gin.Context) {
	schoolID, err := uuid.Parse(c.Param("schoolId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid school id", err)
		return
	}

	if err := h.ensureSchool(schoolID); err != nil {
		h.respondError(c, err, "failed to load school")
		return
	}

	plans, err := ListPlans(h.db, schoolID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list plans", err)
		return
	}

	response.Success(c, http.StatusOK, plans, "", nil)
}

// CreatePlan inserts a new plan. Admin only.
func (h *Handler) CreatePlan(c *gin.Context) {
	schoolID, err := uuid.Parse(c.Param("schoolId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid school id", err)
		return
	}

	if err := h.ensureSchool(schoolID); err != nil {
		h.respondError(c, err, "failed to load school")
		return
	}

	var req struct {
		Name         string   `json:"name" binding:"required"`
		Price        *float64 `json:"price"`
		Currency     *string  `json:"currency"`
		DurationDays *int     `json:"durationDays" binding:"required"`
		Active       *bool    `json:"isActive"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid plan payload", err)
		return
	}

	input := PlanInput{
		SchoolID:     schoolID,
		Name:         req.Name,
		DurationDays: req.DurationDays,
		Active:       req.Active,
	}
	if req.Price != nil {
		price := types.NewMoney(*req.Price)
		input.Price = &price
	}
	if req.Currency != nil {
		currency := types.Currency(strings.ToUpper(strings.TrimSpace(*req.Currency)))
		input.Currency = &currency
	}

	plan, err := CreatePlan(h.db, input)
	if err != nil {
		h.respondError(c, err, "failed to create plan")
		return
	}

	response.Created(c, plan, "")
}

// UpdatePlan modifies an existing plan. Admin only.
func (h *Handler) UpdatePlan(c *gin.Context) {
	id, err := uuid.Parse(c.Param("planId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid plan id", err)
		return
	}

	body := map[string]interface{}{}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid plan payload", err)
		return
	}

	input := PlanInput{}

	if value, ok := body["name"]; ok {
		str, err := request.ReadString(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "name must be a string", err)
			return
		}
		input.Name = str
	}

	if value, ok := body["price"]; ok {
		val, err := request.ReadFloat(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "price must be a number", err)
			return
		}
		price := types.NewMoney(val)
		input.Price = &price
	}

	if value, ok := body["currency"]; ok {
		str, err := request.ReadString(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "currency must be a string", err)
			return
		}
		currency := types.Currency(strings.ToUpper(strings.TrimSpace(str)))
		input.Currency = &currency
	}

	if value, ok := body["durationDays"]; ok {
		val, err := request.ReadInt(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "durationDays must be an integer", err)
			return
		}
		input.DurationDays = &val
	}

	if value, ok := body["isActive"]; ok {
		val, err := request.ReadBool(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "isActive must be boolean", err)
			return
		}
		input.Active = &val
	}

	plan, err := UpdatePlan(h.db, id, input)
	if err != nil {
		h.respondError(c, err, "failed to update plan")
		return
	}

	response.Success(c, http.StatusOK, plan, "", nil)
}

// DeletePlan removes a plan. Admin only.
func (h *Handler) DeletePlan(c *gin.Context) {
	id, err := uuid.Parse(c.Param("planId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid plan id", err)
		return
	}

	if err := DeletePlan(h.db, id); err != nil {
		h.respondError(c, err, "failed to delete plan")
		return
	}

	response.Success(c, http.StatusOK, true, "", nil)
}

// List returns paginated enrollments. Admin only.
func (h *Handler) List(c *gin.Context) {
	filters := ListFilters{}

	if raw := strings.TrimSpace(c.Query("userId")); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid user id", err)
			return
		}
		filters.UserID = &userID
	}

	if raw := strings.TrimSpace(c.Query("schoolId")); raw != "" {
		schoolID, err := uuid.Parse(raw)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid school id", err)
			return
		}
		filters.SchoolID = &schoolID
	}

	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		filters.Status = types.EnrollmentStatus(raw)
	}

	params := pagination.Extract(c)

	enrollments, total, err := List(h.db, filters, params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list enrollments", err)
		return
	}

	response.Success(c, http.StatusOK, enrollments, "", pagination.MetadataFrom(total, params))
}

// ListMine returns the current user's enrollments.
func (h *Handler) ListMine(c *gin.Context) {
	viewer, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	enrollments, err := ListForUser(h.db, viewer.ID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list enrollments", err)
		return
	}

	response.Success(c, http.StatusOK, enrollments, "", nil)
}

// Create enrolls a user in a school. Admin only.
func (h *Handler) Create(c *gin.Context) {
	var req struct {
		UserID    string  `json:"userId" binding:"required"`
		SchoolID  string  `json:"schoolId" binding:"required"`
		PlanID    *string `json:"planId"`
		StartsAt  *string `json:"startsAt"`
		ExpiresAt *string `json:"expiresAt"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid enrollment payload", err)
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid user id", err)
		return
	}

	schoolID, err := uuid.Parse(req.SchoolID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid school id", err)
		return
	}

	usr, err := userfeature.Get(h.db, userID)
	if err != nil {
		if errors.Is(err, userfeature.ErrUserNotFound) {
			h.respondError(c, ErrUserNotFound, "failed to load user")
			return
		}
		h.respondError(c, err, "failed to load user")
		return
	}

	sch, err := schoolfeature.Get(h.db, schoolID)
	if err != nil {
		if errors.Is(err, schoolfeature.ErrSchoolNotFound) {
			h.respondError(c, ErrSchoolNotFound, "failed to load school")
			return
		}
		h.respondError(c, err, "failed to load school")
		return
	}

	input := CreateInput{UserID: userID, SchoolID: schoolID}

	if req.PlanID != nil {
		planID, err := uuid.Parse(*req.PlanID)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid plan id", err)
			return
		}
		input.PlanID = &planID
	}

	startsAt, err := request.ParseRFC3339Ptr(req.StartsAt)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "startsAt must be an RFC3339 timestamp", err)
		return
	}
	input.StartsAt = startsAt

	expiresAt, err := request.ParseRFC3339Ptr(req.ExpiresAt)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "expiresAt must be an RFC3339 timestamp", err)
		return
	}
	input.ExpiresAt = expiresAt

	enr, err := Create(h.db, input)
	if err != nil {
		h.respondError(c, err, "failed to create enrollment")
		return
	}

	go func() {
		if err := h.emailClient.SendEnrollmentConfirmation(usr.Email, usr.FullName, sch.Name, enr.ExpiresAt); err != nil {
			h.logger.Error("failed to send enrollment confirmation",
				slog.String("email", usr.Email),
				slog.String("error", err.Error()))
		}
	}()

	response.Created(c, enr, "")
}

// Cancel marks an enrollment cancelled. Admin only.
func (h *Handler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("enrollmentId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid enrollment id", err)
		return
	}

	enr, err := Cancel(h.db, id)
	if err != nil {
		h.respondError(c, err, "failed to cancel enrollment")
		return
	}

	response.Success(c, http.StatusOK, enr, "", nil)
}

func (h *Handler) ensureSchool(schoolID uuid.UUID) error {
	if _, err := schoolfeature.Get(h.db, schoolID); err != nil {
		if errors.Is(err, schoolfeature.ErrSchoolNotFound) {
			return ErrSchoolNotFound
		}
		return err
	}
	return nil
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrSchoolNotFound):
		status = http.StatusNotFound
		message = "School not found."
	case errors.Is(err, ErrUserNotFound):
		status = http.StatusNotFound
		message = "User not found."
	case errors.Is(err, ErrPlanNotFound):
		status = http.StatusNotFound
		message = "Plan not found."
	case errors.Is(err, ErrEnrollmentNotFound):
		status = http.StatusNotFound
		message = "Enrollment not found."
	case errors.Is(err, ErrPlanNameRequired):
		status = http.StatusBadRequest
		message = "Plan name is required."
	case errors.Is(err, ErrPlanInactive):
		status = http.StatusBadRequest
		message = "Plan is not active."
	case errors.Is(err, ErrDurationInvalid):
		status = http.StatusBadRequest
		message = "Plan duration must be a positive number of days."
	case errors.Is(err, ErrExpiryRequired):
		status = http.StatusBadRequest
		message = "An expiry date or a plan is required."
	case errors.Is(err, ErrExpiryBeforeStart):
		status = http.StatusBadRequest
		message = "Expiry must be after the start date."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
