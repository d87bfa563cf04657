package v1

import (
	"net/http"

	"go-headhunter-backend/internal/delivery/http/response"
	"go-headhunter-backend/internal/domain"
	"go-headhunter-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type StudentHandler struct {
	reservationUC domain.ReservationUsecase
}

// NewStudentHandler registers the student routes; hr must already enforce HR auth.
func NewStudentHandler(hr *gin.RouterGroup, reservationUC domain.ReservationUsecase) {
	handler := &StudentHandler{reservationUC: reservationUC}

	students := hr.Group("/students")
	{
		students.GET("", handler.ListAvailable)
		students.GET("/reserved", handler.ListReserved)
		students.POST("/:id/reserve", handler.Reserve)
		students.DELETE("/:id/reserve", handler.Release)
	}
}

// ListAvailable godoc
// @Summary      List available students
// @Description  Students without an active reservation, filtered by minimum grades and preferences.
// @Tags         students
// @Produce      json
// @Security     BearerAuth
// @Param        min_course_completion    query     number  false  "Minimum course completion (0-5)"
// @Param        min_course_engagement    query     number  false  "Minimum course engagement (0-5)"
// @Param        min_project_degree       query     number  false  "Minimum project degree (0-5)"
// @Param        min_team_project_degree  query     number  false  "Minimum team project degree (0-5)"
// @Param        expected_type_work       query     string  false  "ONSITE, RELOCATION, REMOTE, HYBRID or ANY"
// @Param        expected_contract_type   query     string  false  "EMPLOYMENT, B2B, MANDATE or ANY"
// @Param        can_take_apprenticeship  query     bool    false  "Apprenticeship"
// @Param        page                     query     int     false  "Page (default 1)"
// @Param        limit                    query     int     false  "Page size (default 20, max 100)"
// @Success      200                      {object}  response.Response{data=[]domain.StudentProfile}
// @Failure      400                      {object}  response.Response
// @Router       /students [get]
func (h *StudentHandler) ListAvailable(c *gin.Context) {
	var filter domain.StudentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(apperror.BadRequest("Invalid query parameters").Wrap(err))
		return
	}

	students, total, err := h.reservationUC.ListAvailableStudents(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	page, limit := filter.PageBounds()
	response.Paginated(c, http.StatusOK, "Available students", students, response.Meta{Page: page, Limit: limit, Total: total})
}

// ListReserved godoc
// @Summary      List my reserved students
// @Tags         students
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]domain.StudentProfile}
// @Router       /students/reserved [get]
func (h *StudentHandler) ListReserved(c *gin.Context) {
	students, err := h.reservationUC.ListReservedStudents(c.Request.Context(), c.GetString(string(domain.KeyUserID)))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Reserved students", students)
}

// Reserve godoc
// @Summary      Reserve student
// @Tags         students
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Student profile id"
// @Success      200  {object}  response.Response{data=domain.StudentProfile}
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /students/{id}/reserve [post]
func (h *StudentHandler) Reserve(c *gin.Context) {
	student, err := h.reservationUC.ReserveStudent(c.Request.Context(), c.GetString(string(domain.KeyUserID)), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Student reserved", student)
}

// Release godoc
// @Summary      Release reserved student
// @Tags         students
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Student profile id"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /students/{id}/reserve [delete]
func (h *StudentHandler) Release(c *gin.Context) {
	if err := h.reservationUC.ReleaseStudent(c.Request.Context(), c.GetString(string(domain.KeyUserID)), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Student released", nil)
}
