package v1

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"

	"go-headhunter-backend/internal/delivery/http/response"
	"go-headhunter-backend/internal/domain"
	"go-headhunter-backend/pkg/apperror"
	"go-headhunter-backend/pkg/logger"
	"go-headhunter-backend/pkg/security"
	"go-headhunter-backend/pkg/studentimport"

	"github.com/gin-gonic/gin"
)

const defaultMaxUploadBytes = 10 << 20

// ImportArchiver keeps a copy of uploaded student lists
type ImportArchiver interface {
	Store(ctx context.Context, filename string, data []byte) (string, error)
}

type UserHandler struct {
	registrationUC domain.RegistrationUsecase
	activationUC   domain.ActivationUsecase
	archive        ImportArchiver
	maxUploadBytes int64
}

type UserHandlerConfig struct {
	Archive        ImportArchiver // optional
	MaxUploadBytes int64
	// Middlewares applied to the public registration and activation routes
	RegisterLimit gin.HandlerFunc
	AdminGuard    gin.HandlerFunc
}

func NewUserHandler(public *gin.RouterGroup, registrationUC domain.RegistrationUsecase, activationUC domain.ActivationUsecase, cfg UserHandlerConfig) {
	handler := &UserHandler{
		registrationUC: registrationUC,
		activationUC:   activationUC,
		archive:        cfg.Archive,
		maxUploadBytes: cfg.MaxUploadBytes,
	}
	if handler.maxUploadBytes <= 0 {
		handler.maxUploadBytes = defaultMaxUploadBytes
	}

	limited := []gin.HandlerFunc{}
	if cfg.RegisterLimit != nil {
		limited = append(limited, cfg.RegisterLimit)
	}
	admin := []gin.HandlerFunc{}
	if cfg.AdminGuard != nil {
		admin = append(admin, cfg.AdminGuard)
	}

	users := public.Group("/users")
	{
		users.POST("/register/hr", append(limited, handler.RegisterHr)...)
		users.PATCH("/activate/:userId/:token", append(limited, handler.Activate)...)
		users.POST("/register/students", append(admin, handler.RegisterStudents)...)
	}
}

// RegisterHr godoc
// @Summary      Register HR
// @Description  Creates an inactive recruiter account with its profile and mails the activation link.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request  body      domain.HrRegisterRequest  true  "Recruiter data"
// @Success      201      {object}  response.Response{data=domain.HrRegistrationResult}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Failure      429      {object}  response.Response
// @Failure      502      {object}  response.Response
// @Router       /users/register/hr [post]
func (h *UserHandler) RegisterHr(c *gin.Context) {
	var req domain.HrRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body").Wrap(err))
		return
	}

	result, err := h.registrationUC.RegisterHr(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "HR account registered", result)
}

// RegisterStudents godoc
// @Summary      Import students
// @Description  Registers one student account per new email in an uploaded CSV or XLSX list.
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Param        X-Admin-Token  header    string  true  "Operator token"
// @Param        file           formData  file    true  "Student list (.csv or .xlsx)"
// @Success      200            {object}  response.Response{data=domain.StudentRegistrationSummary}
// @Failure      400            {object}  response.Response
// @Failure      401            {object}  response.Response
// @Failure      413            {object}  response.Response
// @Router       /users/register/students [post]
func (h *UserHandler) RegisterStudents(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+(1<<20))

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.Error(apperror.New(http.StatusRequestEntityTooLarge, "Uploaded file is too large", err))
			return
		}
		c.Error(apperror.BadRequest("Multipart field 'file' is required").Wrap(err))
		return
	}
	if fileHeader.Size > h.maxUploadBytes {
		c.Error(apperror.New(http.StatusRequestEntityTooLarge, "Uploaded file is too large", nil))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.Error(apperror.BadRequest("Cannot read uploaded file").Wrap(err))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		c.Error(apperror.BadRequest("Cannot read uploaded file").Wrap(err))
		return
	}

	if err := security.ValidateImportFile(fileHeader.Filename, data); err != nil {
		c.Error(apperror.BadRequest("Invalid student list file: " + err.Error()).Wrap(err))
		return
	}
	source, err := studentimport.FromUpload(fileHeader.Filename, data)
	if err != nil {
		c.Error(apperror.BadRequest(err.Error()).Wrap(err))
		return
	}
	// Parse up front so malformed files are reported as client errors
	records, err := source.Records(c.Request.Context())
	if err != nil {
		c.Error(apperror.BadRequest("Invalid student list: " + err.Error()).Wrap(err))
		return
	}

	if h.archive != nil {
		key, err := h.archive.Store(c.Request.Context(), filepath.Base(fileHeader.Filename), data)
		if err != nil {
			logger.Log.Warn("student import archive failed", "filename", fileHeader.Filename, "error", err)
		} else {
			logger.Log.Info("student import archived", "key", key)
		}
	}

	summary, err := h.registrationUC.RegisterStudents(c.Request.Context(), studentimport.StaticSource(records))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Student import finished", summary)
}

// Activate godoc
// @Summary      Activate account
// @Description  Consumes the emailed activation token.
// @Tags         users
// @Produce      json
// @Param        userId  path      string  true  "Account id"
// @Param        token   path      string  true  "Activation token"
// @Success      200     {object}  response.Response{data=domain.SanitizedUser}
// @Failure      400     {object}  response.Response
// @Failure      404     {object}  response.Response
// @Router       /users/activate/{userId}/{token} [patch]
func (h *UserHandler) Activate(c *gin.Context) {
	view, err := h.activationUC.Activate(c.Request.Context(), c.Param("userId"), c.Param("token"))
	if err != nil {
		c.Error(err)
		return
	}

	message := "Account activated"
	if !view.IsActive {
		message = "Activation link accepted, account is still pending"
	}
	response.Success(c, http.StatusOK, message, view)
}
