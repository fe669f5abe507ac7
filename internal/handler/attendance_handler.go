package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campushq/attendance-api/internal/models"
	"github.com/campushq/attendance-api/internal/service"
	appErrors "github.com/campushq/attendance-api/pkg/errors"
	"github.com/campushq/attendance-api/pkg/export"
	"github.com/campushq/attendance-api/pkg/response"
)

// AttendanceHandler handles attendance marking, queries and exports.
type AttendanceHandler struct {
	service *service.AttendanceService
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
}

// NewAttendanceHandler constructs an attendance handler.
func NewAttendanceHandler(svc *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{
		service: svc,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
	}
}

// Mark godoc
// @Summary Mark attendance for a user
// @Description Upsert the attendance record for (user, date); re-marking overwrites
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.MarkAttendanceRequest true "Attendance payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /attendance/mark [put]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}
	att, err := h.service.Mark(c.Request.Context(), claims.Role, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, att, nil)
}

// RollCall godoc
// @Summary Roll call for the marker's target role
// @Description Every active user the caller may mark, with today's status merged in
// @Tags Attendance
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) RollCall(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	date, err := dateQuery(c, "date")
	if err != nil {
		response.Error(c, err)
		return
	}
	// Attendance rows key on midnight dates, so the default must be
	// truncated the same way explicit date params are parsed.
	day := time.Now().UTC().Truncate(24 * time.Hour)
	if date != nil {
		day = *date
	}
	entries, err := h.service.RollCall(c.Request.Context(), claims.Role, day)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Mine godoc
// @Summary Own attendance history
// @Tags Attendance
// @Produce json
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /attendance/me [get]
func (h *AttendanceHandler) Mine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	from, err := dateQuery(c, "from")
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := dateQuery(c, "to")
	if err != nil {
		response.Error(c, err)
		return
	}
	records, err := h.service.ListMine(c.Request.Context(), claims.UserID, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// Summary godoc
// @Summary Own attendance summary for a date range
// @Tags Attendance
// @Produce json
// @Param from query string true "From date (YYYY-MM-DD)"
// @Param to query string true "To date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /attendance/me/summary [get]
func (h *AttendanceHandler) Summary(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	from, err := dateQuery(c, "from")
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := dateQuery(c, "to")
	if err != nil {
		response.Error(c, err)
		return
	}
	if from == nil || to == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "from and to are required"))
		return
	}
	summary, err := h.service.SummaryMine(c.Request.Context(), claims.UserID, *from, *to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Department godoc
// @Summary Department attendance records
// @Description Attendance of all active users in the caller's department
// @Tags Attendance
// @Produce json
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param department_id query int false "Department (admin only)"
// @Success 200 {object} response.Envelope
// @Router /attendance/department [get]
func (h *AttendanceHandler) Department(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	departmentID, from, to, err := h.departmentScope(c, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	records, err := h.service.ListDepartment(c.Request.Context(), departmentID, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// Export godoc
// @Summary Export department attendance
// @Description Renders the department's attendance records as CSV or PDF
// @Tags Attendance
// @Produce octet-stream
// @Param format query string true "csv or pdf"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param department_id query int false "Department (admin only)"
// @Success 200 {file} binary
// @Router /attendance/department/export [get]
func (h *AttendanceHandler) Export(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	format := strings.ToLower(strings.TrimSpace(c.Query("format")))
	if format != "csv" && format != "pdf" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
		return
	}
	departmentID, from, to, err := h.departmentScope(c, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	data, err := h.service.ExportDepartment(c.Request.Context(), departmentID, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("attendance-%s.%s", time.Now().Format("2006-01-02"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	switch format {
	case "csv":
		body, err := h.csv.Render(data)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Data(http.StatusOK, "text/csv", body)
	case "pdf":
		body, err := h.pdf.Render(data, "Attendance Report")
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Data(http.StatusOK, "application/pdf", body)
	}
}

// departmentScope resolves which department the caller may read. Heads
// are pinned to their own department; admins pick one via query.
func (h *AttendanceHandler) departmentScope(c *gin.Context, claims *models.JWTClaims) (int64, *time.Time, *time.Time, error) {
	from, err := dateQuery(c, "from")
	if err != nil {
		return 0, nil, nil, err
	}
	to, err := dateQuery(c, "to")
	if err != nil {
		return 0, nil, nil, err
	}

	if claims.Role == models.RoleAdmin {
		id, err := optionalIDQuery(c, "department_id")
		if err != nil {
			return 0, nil, nil, err
		}
		if id == nil {
			return 0, nil, nil, appErrors.Clone(appErrors.ErrValidation, "department_id is required")
		}
		return *id, from, to, nil
	}

	if claims.DepartmentID == nil {
		return 0, nil, nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "caller has no department")
	}
	return *claims.DepartmentID, from, to, nil
}
