package v1

import (
	"io"
	"mime/multipart"
	"net/http"

	"moondev-backend/internal/delivery/http/middleware"
	"moondev-backend/internal/delivery/http/response"
	"moondev-backend/internal/domain"
	"moondev-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type SubmissionHandler struct {
	submissionUC   domain.SubmissionUsecase
	maxArchiveSize int64
}

func NewSubmissionHandler(protected *gin.RouterGroup, submissionUC domain.SubmissionUsecase, maxArchiveSize int64, submitLimiter gin.HandlerFunc) {
	handler := &SubmissionHandler{
		submissionUC:   submissionUC,
		maxArchiveSize: maxArchiveSize,
	}

	developerOnly := middleware.RequireRole(domain.RoleDeveloper)
	evaluatorOnly := middleware.RequireRole(domain.RoleEvaluator)

	subs := protected.Group("/submissions")
	{
		subs.POST("", developerOnly, submitLimiter, handler.Submit)
		subs.GET("/me", developerOnly, handler.MyStatus)
		subs.GET("", evaluatorOnly, handler.List)
		subs.PATCH("/:id/decision", evaluatorOnly, handler.Decide)
	}
}

// readFormFile loads an uploaded part into memory, refusing anything
// over the ceiling before buffering it
func readFormFile(file *multipart.FileHeader, maxSize int64) (domain.Artifact, error) {
	if file.Size > maxSize {
		return domain.Artifact{}, apperror.TooLarge("Uploaded file exceeds the size limit")
	}
	src, err := file.Open()
	if err != nil {
		return domain.Artifact{}, apperror.Internal(err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxSize+1))
	if err != nil {
		return domain.Artifact{}, apperror.Internal(err)
	}
	if int64(len(data)) > maxSize {
		return domain.Artifact{}, apperror.TooLarge("Uploaded file exceeds the size limit")
	}
	return domain.Artifact{Filename: file.Filename, Data: data}, nil
}

// Submit godoc
// @Summary      Submit an application
// @Description  Submit the developer application with profile fields, a profile picture, and a ZIP of the source code
// @Tags         submissions
// @Accept       multipart/form-data
// @Produce      json
// @Param        full_name        formData  string  true  "Full name"
// @Param        phone_number     formData  string  true  "Phone number"
// @Param        location         formData  string  true  "Location"
// @Param        hobbies          formData  string  true  "Hobbies"
// @Param        profile_picture  formData  file    true  "Profile picture (JPEG or PNG)"
// @Param        source_code      formData  file    true  "Source code ZIP archive"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Failure      413  {object}  response.Response
// @Router       /submissions [post]
func (h *SubmissionHandler) Submit(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))
	email := c.GetString(string(domain.KeyUserEmail))

	profile := domain.SubmissionProfile{
		FullName:    c.PostForm("full_name"),
		PhoneNumber: c.PostForm("phone_number"),
		Location:    c.PostForm("location"),
		Hobbies:     c.PostForm("hobbies"),
	}

	pictureFile, err := c.FormFile("profile_picture")
	if err != nil {
		c.Error(apperror.BadRequest("Profile picture is required"))
		return
	}
	archiveFile, err := c.FormFile("source_code")
	if err != nil {
		c.Error(apperror.BadRequest("Source code ZIP is required"))
		return
	}

	picture, err := readFormFile(pictureFile, h.maxArchiveSize)
	if err != nil {
		c.Error(err)
		return
	}
	archive, err := readFormFile(archiveFile, h.maxArchiveSize)
	if err != nil {
		c.Error(err)
		return
	}

	sub, err := h.submissionUC.Submit(c.Request.Context(), userID, email, profile, picture, archive)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Application submitted successfully", sub)
}

// MyStatus godoc
// @Summary      My submission status
// @Description  Return the developer's own submission status and feedback
// @Tags         submissions
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /submissions/me [get]
func (h *SubmissionHandler) MyStatus(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	view, err := h.submissionUC.MyStatus(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Submission status", view)
}

// List godoc
// @Summary      List submissions
// @Description  List submissions newest first, optionally filtered by status and a name/email/location search
// @Tags         submissions
// @Produce      json
// @Param        status  query  string  false  "Filter by status"  Enums(pending, accepted, rejected)
// @Param        search  query  string  false  "Search name, email, or location"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /submissions [get]
func (h *SubmissionHandler) List(c *gin.Context) {
	filter := domain.SubmissionFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
	}

	subs, err := h.submissionUC.List(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Submissions", subs)
}

type DecideRequest struct {
	Decision string `json:"decision" binding:"required,oneof=accepted rejected"`
	Feedback string `json:"feedback" binding:"required"`
}

// Decide godoc
// @Summary      Decide a submission
// @Description  Accept or reject a pending submission with mandatory feedback
// @Tags         submissions
// @Accept       json
// @Produce      json
// @Param        id      path  string         true  "Submission ID"
// @Param        decide  body  DecideRequest  true  "Decision"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /submissions/{id}/decision [patch]
func (h *SubmissionHandler) Decide(c *gin.Context) {
	var req DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	evaluatorID := c.GetString(string(domain.KeyUserID))
	sub, err := h.submissionUC.Decide(c.Request.Context(), c.Param("id"), evaluatorID, req.Decision, req.Feedback)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Decision recorded", sub)
}
