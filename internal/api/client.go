package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/MihaiMalos/elearning-client/internal/models"
	apperrors "github.com/MihaiMalos/elearning-client/pkg/errors"
	"github.com/MihaiMalos/elearning-client/pkg/httpclient"
	"github.com/MihaiMalos/elearning-client/pkg/logger"
	"github.com/MihaiMalos/elearning-client/pkg/metrics"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Client is the typed facade over the backend REST API: one method per
// operation, and the only place that knows paths, verbs and wire field
// names. Authentication is handled by the underlying HTTP client; error
// mapping is uniform (transport failures and non-2xx statuses both
// become *apperrors.APIError).
type Client struct {
	baseURL  string
	http     httpclient.Client
	validate *validator.Validate
}

// NewClient creates an API client rooted at baseURL (e.g.
// "http://localhost:8000/api/v1"). The HTTP client is injected so tests
// can point at a mock backend and production code gets the
// authenticated transport.
func NewClient(baseURL string, httpClient httpclient.Client) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     httpClient,
		validate: validator.New(),
	}
}

// RegisterRequest carries a new account. Constraints mirror the
// backend's so obviously bad input fails locally without a round trip.
type RegisterRequest struct {
	Email    string          `validate:"required,email"`
	Username string          `validate:"required,min=3,max=50"`
	Password string          `validate:"required,min=8,max=100"`
	Role     models.UserRole `validate:"required,oneof=teacher student"`
}

// CourseRequest carries a course create/update payload.
type CourseRequest struct {
	Title       string `validate:"required,min=1,max=200"`
	Description string
}

// EnrollRequest enrolls the caller, or a named student when a teacher
// enrolls someone else.
type EnrollRequest struct {
	CourseID  int `validate:"required,gt=0"`
	StudentID int `validate:"omitempty,gt=0"`
}

// ChatRequest asks the AI tutor one question scoped to a course.
type ChatRequest struct {
	CourseID int    `validate:"required,gt=0"`
	Question string `validate:"required,min=1,max=2000"`
}

// UploadFile is one part of a multipart material upload.
type UploadFile struct {
	Name    string
	Content io.Reader
}

// Login exchanges credentials for a bearer token. The backend expects
// form fields, not JSON. Returns the token and its scheme exactly as
// the server reported them.
func (c *Client) Login(ctx context.Context, username, password string) (token, scheme string, err error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var resp tokenResponse
	err = c.doForm(ctx, "login", "/auth/login", form, &resp)
	if err != nil {
		return "", "", err
	}
	return resp.AccessToken, resp.TokenType, nil
}

// Register creates a new account and returns the created user.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (models.User, error) {
	if err := c.checkRequest(req); err != nil {
		return models.User{}, err
	}

	body := registerBody{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Role:     string(req.Role),
	}
	var resp userResponse
	if err := c.doJSON(ctx, "register", http.MethodPost, "/auth/register", nil, body, &resp); err != nil {
		return models.User{}, err
	}
	return resp.toModel(), nil
}

// CurrentUser fetches the profile behind the current session token.
func (c *Client) CurrentUser(ctx context.Context) (models.User, error) {
	var resp userResponse
	if err := c.doJSON(ctx, "getCurrentUser", http.MethodGet, "/users/me", nil, nil, &resp); err != nil {
		return models.User{}, err
	}
	return resp.toModel(), nil
}

// Courses lists all courses, optionally filtered by a search term.
func (c *Client) Courses(ctx context.Context, search string) ([]models.Course, error) {
	query := url.Values{}
	if search != "" {
		query.Set("search", search)
	}

	var resp []courseResponse
	if err := c.doJSON(ctx, "getCourses", http.MethodGet, "/courses/", query, nil, &resp); err != nil {
		return nil, err
	}
	courses := make([]models.Course, 0, len(resp))
	for _, course := range resp {
		courses = append(courses, course.toModel())
	}
	return courses, nil
}

// CourseByID fetches one course with its denormalized teacher name and
// material/enrollment counts.
func (c *Client) CourseByID(ctx context.Context, courseID int) (models.Course, error) {
	var resp courseResponse
	path := "/courses/" + strconv.Itoa(courseID)
	if err := c.doJSON(ctx, "getCourseById", http.MethodGet, path, nil, nil, &resp); err != nil {
		return models.Course{}, err
	}
	return resp.toModel(), nil
}

// CreateCourse creates a course owned by the calling teacher.
func (c *Client) CreateCourse(ctx context.Context, req CourseRequest) (models.Course, error) {
	if err := c.checkRequest(req); err != nil {
		return models.Course{}, err
	}

	var resp courseResponse
	if err := c.doJSON(ctx, "createCourse", http.MethodPost, "/courses/", nil, courseBodyOf(req), &resp); err != nil {
		return models.Course{}, err
	}
	return resp.toModel(), nil
}

// UpdateCourse replaces a course's title/description.
func (c *Client) UpdateCourse(ctx context.Context, courseID int, req CourseRequest) (models.Course, error) {
	if err := c.checkRequest(req); err != nil {
		return models.Course{}, err
	}

	var resp courseResponse
	path := "/courses/" + strconv.Itoa(courseID)
	if err := c.doJSON(ctx, "updateCourse", http.MethodPut, path, nil, courseBodyOf(req), &resp); err != nil {
		return models.Course{}, err
	}
	return resp.toModel(), nil
}

// DeleteCourse removes a course; only its teacher may do so.
func (c *Client) DeleteCourse(ctx context.Context, courseID int) error {
	path := "/courses/" + strconv.Itoa(courseID)
	return c.doJSON(ctx, "deleteCourse", http.MethodDelete, path, nil, nil, nil)
}

// Enroll creates an enrollment. StudentID is omitted when students
// enroll themselves.
func (c *Client) Enroll(ctx context.Context, req EnrollRequest) (models.Enrollment, error) {
	if err := c.checkRequest(req); err != nil {
		return models.Enrollment{}, err
	}

	body := enrollmentBody{CourseID: req.CourseID}
	if req.StudentID > 0 {
		body.StudentID = &req.StudentID
	}
	var resp enrollmentResponse
	if err := c.doJSON(ctx, "enrollInCourse", http.MethodPost, "/enrollments/", nil, body, &resp); err != nil {
		return models.Enrollment{}, err
	}
	return resp.toModel(), nil
}

// MyEnrollments lists the calling student's enrollments with
// denormalized course details.
func (c *Client) MyEnrollments(ctx context.Context) ([]models.Enrollment, error) {
	var resp []enrollmentResponse
	if err := c.doJSON(ctx, "getUserEnrollments", http.MethodGet, "/enrollments/my-enrollments", nil, nil, &resp); err != nil {
		return nil, err
	}
	return enrollmentsOf(resp), nil
}

// CourseEnrollments lists all enrollments of one course.
func (c *Client) CourseEnrollments(ctx context.Context, courseID int) ([]models.Enrollment, error) {
	var resp []enrollmentResponse
	path := "/enrollments/course/" + strconv.Itoa(courseID)
	if err := c.doJSON(ctx, "getCourseEnrollments", http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	return enrollmentsOf(resp), nil
}

// DeleteEnrollment removes an enrollment (unenroll).
func (c *Client) DeleteEnrollment(ctx context.Context, enrollmentID int) error {
	path := "/enrollments/" + strconv.Itoa(enrollmentID)
	return c.doJSON(ctx, "deleteEnrollment", http.MethodDelete, path, nil, nil, nil)
}

// CourseMaterials lists the uploaded files of a course. The backend
// answers 403 for students who are not enrolled.
func (c *Client) CourseMaterials(ctx context.Context, courseID int) ([]models.CourseMaterial, error) {
	var resp []materialResponse
	path := "/files/course/" + strconv.Itoa(courseID)
	if err := c.doJSON(ctx, "getCourseMaterials", http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	materials := make([]models.CourseMaterial, 0, len(resp))
	for _, material := range resp {
		materials = append(materials, material.toModel())
	}
	return materials, nil
}

// UploadMaterials posts files as multipart parts. Files rejected
// server-side land in the result's FailedFiles; they do not fail the
// operation.
func (c *Client) UploadMaterials(ctx context.Context, courseID int, files []UploadFile) (models.UploadResult, error) {
	if len(files) == 0 {
		return models.UploadResult{}, apperrors.InvalidInputError("files", "at least one file is required")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, file := range files {
		part, err := writer.CreatePart(filePartHeader(file.Name))
		if err != nil {
			return models.UploadResult{}, fmt.Errorf("failed to create multipart part: %w", err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return models.UploadResult{}, fmt.Errorf("failed to read %s: %w", file.Name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return models.UploadResult{}, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	path := "/files/upload/" + strconv.Itoa(courseID)
	raw, err := c.do(ctx, "uploadMaterials", http.MethodPost, path, nil, &buf, writer.FormDataContentType())
	if err != nil {
		metrics.MaterialUploads.WithLabelValues("error").Inc()
		return models.UploadResult{}, err
	}

	var resp uploadResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		metrics.MaterialUploads.WithLabelValues("error").Inc()
		return models.UploadResult{}, decodeError("uploadMaterials", err)
	}
	metrics.MaterialUploads.WithLabelValues("success").Inc()
	return resp.toModel(), nil
}

// DeleteMaterial removes one uploaded file; only the course teacher may.
func (c *Client) DeleteMaterial(ctx context.Context, materialID int) error {
	path := "/files/" + strconv.Itoa(materialID)
	return c.doJSON(ctx, "deleteMaterial", http.MethodDelete, path, nil, nil, nil)
}

// DownloadMaterial returns the raw file body; interpretation depends on
// the material's mime type.
func (c *Client) DownloadMaterial(ctx context.Context, materialID int) ([]byte, error) {
	path := "/files/download/" + strconv.Itoa(materialID)
	return c.do(ctx, "downloadMaterial", http.MethodGet, path, nil, nil, "")
}

// SendChatMessage asks the AI tutor a question grounded in the course's
// uploaded materials.
func (c *Client) SendChatMessage(ctx context.Context, req ChatRequest) (models.ChatAnswer, error) {
	if err := c.checkRequest(req); err != nil {
		return models.ChatAnswer{}, err
	}

	body := chatBody{CourseID: req.CourseID, Question: req.Question}
	var resp chatResponse
	if err := c.doJSON(ctx, "sendChatMessage", http.MethodPost, "/chat/", nil, body, &resp); err != nil {
		metrics.ChatMessagesSent.WithLabelValues("error").Inc()
		return models.ChatAnswer{}, err
	}
	metrics.ChatMessagesSent.WithLabelValues("success").Inc()
	return resp.toModel(), nil
}

// Users lists accounts, optionally filtered by role and search term.
func (c *Client) Users(ctx context.Context, role models.UserRole, search string) ([]models.User, error) {
	query := url.Values{}
	if role != "" {
		query.Set("role", string(role))
	}
	if search != "" {
		query.Set("search", search)
	}

	var resp []userResponse
	if err := c.doJSON(ctx, "getUsers", http.MethodGet, "/users/", query, nil, &resp); err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(resp))
	for _, user := range resp {
		users = append(users, user.toModel())
	}
	return users, nil
}

// UserByID fetches one user record.
func (c *Client) UserByID(ctx context.Context, userID int) (models.User, error) {
	var resp userResponse
	path := "/users/" + strconv.Itoa(userID)
	if err := c.doJSON(ctx, "getUserById", http.MethodGet, path, nil, nil, &resp); err != nil {
		return models.User{}, err
	}
	return resp.toModel(), nil
}

// checkRequest validates a payload locally; a failure short-circuits
// with ErrInvalidInput and no network call is made.
func (c *Client) checkRequest(req interface{}) error {
	if err := c.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidInput, err.Error())
	}
	return nil
}

// doJSON executes one request with an optional JSON body and decodes
// the response into out (nil out discards the body, e.g. 204 deletes).
func (c *Client) doJSON(ctx context.Context, operation, method, path string, query url.Values, body, out interface{}) error {
	var reader io.Reader
	contentType := ""
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", operation, err)
		}
		reader = bytes.NewReader(raw)
		contentType = "application/json"
	}

	raw, err := c.do(ctx, operation, method, path, query, reader, contentType)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return decodeError(operation, err)
	}
	return nil
}

// doForm executes a form-urlencoded POST (the login endpoint).
func (c *Client) doForm(ctx context.Context, operation, path string, form url.Values, out interface{}) error {
	raw, err := c.do(ctx, operation, http.MethodPost, path, nil,
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return decodeError(operation, err)
	}
	return nil
}

// do performs the round trip and applies the uniform error mapping:
// transport failures become status-less APIErrors, non-2xx responses
// become APIErrors carrying the status and the backend's detail
// message. Success returns the raw body.
func (c *Client) do(ctx context.Context, operation, method, path string, query url.Values, body io.Reader, contentType string) ([]byte, error) {
	start := time.Now()

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", operation, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(operation, start, 0, err)
		return nil, apperrors.NewTransportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe(operation, start, resp.StatusCode, err)
		return nil, apperrors.NewTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		httpErr := apperrors.NewHTTPError(resp.StatusCode, detailMessage(raw))
		c.observe(operation, start, resp.StatusCode, httpErr)
		return nil, httpErr
	}

	c.observe(operation, start, resp.StatusCode, nil)
	return raw, nil
}

// observe records metrics and the API-call log line for one operation.
func (c *Client) observe(operation string, start time.Time, statusCode int, err error) {
	duration := metrics.MeasureDuration(start)
	status := "success"
	if err != nil {
		status = "error"
	}

	metrics.APIRequestDuration.WithLabelValues(operation, status).Observe(duration)
	metrics.APIRequestTotal.WithLabelValues(operation, status).Inc()

	fields := []zap.Field{zap.Int("http_status", statusCode)}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	logger.LogAPICall(operation, status, duration, fields...)
}

// detailMessage extracts FastAPI's {"detail": ...} error message.
// Detail is usually a string; validation errors carry a structured list
// which is surfaced verbatim as JSON. Anything unparseable falls back
// to the raw body.
func detailMessage(raw []byte) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return ""
	}

	var envelope errorBody
	if err := json.Unmarshal(raw, &envelope); err != nil || len(envelope.Detail) == 0 {
		return trimmed
	}

	var detail string
	if err := json.Unmarshal(envelope.Detail, &detail); err == nil {
		return detail
	}
	return string(envelope.Detail)
}

func decodeError(operation string, err error) error {
	return fmt.Errorf("failed to decode %s response: %w", operation, err)
}

func courseBodyOf(req CourseRequest) courseBody {
	body := courseBody{Title: req.Title}
	if req.Description != "" {
		body.Description = &req.Description
	}
	return body
}

func enrollmentsOf(resp []enrollmentResponse) []models.Enrollment {
	enrollments := make([]models.Enrollment, 0, len(resp))
	for _, enrollment := range resp {
		enrollments = append(enrollments, enrollment.toModel())
	}
	return enrollments
}

// filePartHeader builds the multipart header for one "files" part with
// a content type guessed from the file extension.
func filePartHeader(name string) textproto.MIMEHeader {
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="files"; filename="%s"`, filepath.Base(name)))
	header.Set("Content-Type", contentType)
	return header
}
