package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"docstore/internal/model"
	"docstore/internal/service"
	serviceMocks "docstore/internal/service/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testToken = "test-token"

type testEnv struct {
	app     *fiber.App
	authSvc *serviceMocks.MockAuthService
	userSvc *serviceMocks.MockUserService
	fileSvc *serviceMocks.MockFileService
	user    *model.User
}

// newTestEnv builds a routed app whose auth middleware resolves testToken to
// the given user.
func newTestEnv(user *model.User) *testEnv {
	env := &testEnv{
		authSvc: new(serviceMocks.MockAuthService),
		userSvc: new(serviceMocks.MockUserService),
		fileSvc: new(serviceMocks.MockFileService),
		user:    user,
	}
	env.app = fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	RegisterRoutes(env.app, nil, env.authSvc, env.userSvc, env.fileSvc)
	if user != nil {
		env.authSvc.On("CurrentUser", mock.Anything, testToken).Return(user, nil)
	}
	return env
}

func authedRequest(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+testToken)
	return req
}

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var res errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	return res
}

func managerUser() *model.User {
	return &model.User{ID: 2, Username: "maria", Role: model.RoleManager, Department: "engineering"}
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	env := &testEnv{
		authSvc: new(serviceMocks.MockAuthService),
		userSvc: new(serviceMocks.MockUserService),
		fileSvc: new(serviceMocks.MockFileService),
	}
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	RegisterRoutes(app, db, env.authSvc, env.userSvc, env.fileSvc)

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp).Error.Code)
	})

	t.Run("liveness", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestLogin(t *testing.T) {
	env := newTestEnv(nil)

	t.Run("success", func(t *testing.T) {
		env.authSvc.On("Login", mock.Anything, "maria", "secret").Return("signed-token", nil).Once()

		body, _ := json.Marshal(loginRequest{Username: "maria", Password: "secret"})
		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := env.app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var res loginResponse
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "signed-token", res.AccessToken)
		assert.Equal(t, "bearer", res.TokenType)
		env.authSvc.AssertExpectations(t)
	})

	t.Run("missing credentials", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte(`{"username":"maria"}`)))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := env.app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "MISSING_CREDENTIALS", decodeError(t, resp).Error.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		env.authSvc.On("Login", mock.Anything, "maria", "wrong").Return("", service.ErrInvalidCredentials).Once()

		body, _ := json.Marshal(loginRequest{Username: "maria", Password: "wrong"})
		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := env.app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "INVALID_CREDENTIALS", decodeError(t, resp).Error.Code)
	})
}

func TestAuthentication(t *testing.T) {
	env := newTestEnv(nil)

	t.Run("missing bearer token", func(t *testing.T) {
		resp, _ := env.app.Test(httptest.NewRequest(http.MethodGet, "/files", nil))

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, resp).Error.Code)
	})

	t.Run("rejected token", func(t *testing.T) {
		env.authSvc.On("CurrentUser", mock.Anything, "garbage").Return(nil, service.ErrInvalidCredentials).Once()

		req := httptest.NewRequest(http.MethodGet, "/files", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer garbage")
		resp, _ := env.app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestMe(t *testing.T) {
	user := managerUser()
	env := newTestEnv(user)

	resp, _ := env.app.Test(authedRequest(http.MethodGet, "/auth/me", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var res model.User
	json.NewDecoder(resp.Body).Decode(&res)
	assert.Equal(t, user.Username, res.Username)
	assert.Equal(t, user.Role, res.Role)
}

func multipartUpload(t *testing.T, filename, visibility string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	part.Write(content)
	if visibility != "" {
		writer.WriteField("visibility", visibility)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestUploadFile(t *testing.T) {
	user := managerUser()
	env := newTestEnv(user)

	t.Run("success", func(t *testing.T) {
		expected := &model.File{ID: 10, OriginalName: "report.docx", Visibility: model.VisibilityDepartment}
		env.fileSvc.On("Upload", mock.Anything, mock.Anything, "report.docx", mock.Anything, mock.Anything, model.VisibilityDepartment, user).
			Return(expected, nil).Once()

		body, ct := multipartUpload(t, "report.docx", "DEPARTMENT", []byte("content"))
		req := authedRequest(http.MethodPost, "/files", body)
		req.Header.Set(fiber.HeaderContentType, ct)
		resp, _ := env.app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var res model.File
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, expected.ID, res.ID)
		env.fileSvc.AssertExpectations(t)
	})

	t.Run("visibility defaults to private", func(t *testing.T) {
		expected := &model.File{ID: 11, OriginalName: "notes.pdf", Visibility: model.VisibilityPrivate}
		env.fileSvc.On("Upload", mock.Anything, mock.Anything, "notes.pdf", mock.Anything, mock.Anything, model.VisibilityPrivate, user).
			Return(expected, nil).Once()

		body, ct := multipartUpload(t, "notes.pdf", "", []byte("content"))
		req := authedRequest(http.MethodPost, "/files", body)
		req.Header.Set(fiber.HeaderContentType, ct)
		resp, _ := env.app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		env.fileSvc.AssertExpectations(t)
	})

	t.Run("no file", func(t *testing.T) {
		resp, _ := env.app.Test(authedRequest(http.MethodPost, "/files", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "FILE_REQUIRED", decodeError(t, resp).Error.Code)
	})

	t.Run("invalid visibility", func(t *testing.T) {
		body, ct := multipartUpload(t, "report.docx", "EVERYONE", []byte("content"))
		req := authedRequest(http.MethodPost, "/files", body)
		req.Header.Set(fiber.HeaderContentType, ct)
		resp, _ := env.app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_VISIBILITY", decodeError(t, resp).Error.Code)
	})

	t.Run("type not allowed", func(t *testing.T) {
		env.fileSvc.On("Upload", mock.Anything, mock.Anything, "script.exe", mock.Anything, mock.Anything, model.VisibilityPrivate, user).
			Return(nil, service.ErrFileTypeNotAllowed).Once()

		body, ct := multipartUpload(t, "script.exe", "PRIVATE", []byte("content"))
		req := authedRequest(http.MethodPost, "/files", body)
		req.Header.Set(fiber.HeaderContentType, ct)
		resp, _ := env.app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "FILE_TYPE_NOT_ALLOWED", decodeError(t, resp).Error.Code)
	})

	t.Run("too large", func(t *testing.T) {
		env.fileSvc.On("Upload", mock.Anything, mock.Anything, "big.pdf", mock.Anything, mock.Anything, model.VisibilityPrivate, user).
			Return(nil, service.ErrFileSizeExceeded).Once()

		body, ct := multipartUpload(t, "big.pdf", "PRIVATE", []byte("content"))
		req := authedRequest(http.MethodPost, "/files", body)
		req.Header.Set(fiber.HeaderContentType, ct)
		resp, _ := env.app.Test(req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
		assert.Equal(t, "FILE_TOO_LARGE", decodeError(t, resp).Error.Code)
	})
}

func TestListFiles(t *testing.T) {
	user := managerUser()
	env := newTestEnv(user)
	env.fileSvc.On("ListAccessible", mock.Anything, user).
		Return([]model.File{{ID: 1, OriginalName: "a.pdf"}, {ID: 2, OriginalName: "b.docx"}}, nil).Once()

	resp, _ := env.app.Test(authedRequest(http.MethodGet, "/files", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var res []model.File
	json.NewDecoder(resp.Body).Decode(&res)
	assert.Len(t, res, 2)
	env.fileSvc.AssertExpectations(t)
}

func TestGetFile(t *testing.T) {
	user := managerUser()
	env := newTestEnv(user)

	t.Run("success", func(t *testing.T) {
		env.fileSvc.On("GetByID", mock.Anything, int64(7), user).
			Return(&model.File{ID: 7, OriginalName: "a.pdf"}, nil).Once()

		resp, _ := env.app.Test(authedRequest(http.MethodGet, "/files/7", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var res model.File
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, int64(7), res.ID)
	})

	t.Run("invalid id", func(t *testing.T) {
		resp, _ := env.app.Test(authedRequest(http.MethodGet, "/files/not-a-number", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ID", decodeError(t, resp).Error.Code)
	})

	t.Run("not found", func(t *testing.T) {
		env.fileSvc.On("GetByID", mock.Anything, int64(99), user).
			Return(nil, service.ErrFileNotFound).Once()

		resp, _ := env.app.Test(authedRequest(http.MethodGet, "/files/99", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("forbidden", func(t *testing.T) {
		env.fileSvc.On("GetByID", mock.Anything, int64(8), user).
			Return(nil, service.ErrFileAccessDenied).Once()

		resp, _ := env.app.Test(authedRequest(http.MethodGet, "/files/8", nil))

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "FORBIDDEN", decodeError(t, resp).Error.Code)
	})
}

func TestDownloadFile(t *testing.T) {
	user := managerUser()
	env := newTestEnv(user)

	t.Run("success", func(t *testing.T) {
		content := []byte("file content")
		file := &model.File{ID: 7, OriginalName: "report.pdf", ContentType: "application/pdf", Size: int64(len(content))}
		env.fileSvc.On("Download", mock.Anything, int64(7), user).
			Return(io.NopCloser(bytes.NewReader(content)), file, nil).Once()

		resp, _ := env.app.Test(authedRequest(http.MethodGet, "/files/7/download", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
		assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), `filename="report.pdf"`)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, content, body)
	})

	t.Run("forbidden", func(t *testing.T) {
		env.fileSvc.On("Download", mock.Anything, int64(8), user).
			Return(nil, nil, service.ErrFileAccessDenied).Once()

		resp, _ := env.app.Test(authedRequest(http.MethodGet, "/files/8/download", nil))

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestDeleteFile(t *testing.T) {
	user := managerUser()
	env := newTestEnv(user)

	t.Run("success", func(t *testing.T) {
		env.fileSvc.On("Delete", mock.Anything, int64(7), user).Return(nil).Once()

		resp, _ := env.app.Test(authedRequest(http.MethodDelete, "/files/7", nil))

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		env.fileSvc.AssertExpectations(t)
	})

	t.Run("forbidden", func(t *testing.T) {
		env.fileSvc.On("Delete", mock.Anything, int64(8), user).Return(service.ErrFileAccessDenied).Once()

		resp, _ := env.app.Test(authedRequest(http.MethodDelete, "/files/8", nil))

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("not found", func(t *testing.T) {
		env.fileSvc.On("Delete", mock.Anything, int64(99), user).Return(service.ErrFileNotFound).Once()

		resp, _ := env.app.Test(authedRequest(http.MethodDelete, "/files/99", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestCreateUser(t *testing.T) {
	user := managerUser()
	env := newTestEnv(user)

	t.Run("success", func(t *testing.T) {
		created := &model.User{ID: 5, Username: "newhire", Role: model.RoleUser, Department: "engineering"}
		env.userSvc.On("CreateUser", mock.Anything, "newhire", "pw", model.RoleUser, "engineering", user).
			Return(created, nil).Once()

		body, _ := json.Marshal(createUserRequest{Username: "newhire", Password: "pw", Role: model.RoleUser, Department: "engineering"})
		req := authedRequest(http.MethodPost, "/users", bytes.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := env.app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var res model.User
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "newhire", res.Username)
		env.userSvc.AssertExpectations(t)
	})

	t.Run("invalid role", func(t *testing.T) {
		req := authedRequest(http.MethodPost, "/users", bytes.NewReader([]byte(`{"username":"x","password":"pw","role":"ROOT"}`)))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := env.app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ROLE", decodeError(t, resp).Error.Code)
	})

	t.Run("username taken", func(t *testing.T) {
		env.userSvc.On("CreateUser", mock.Anything, "maria", "pw", model.RoleUser, "engineering", user).
			Return(nil, service.ErrUserExists).Once()

		body, _ := json.Marshal(createUserRequest{Username: "maria", Password: "pw", Role: model.RoleUser, Department: "engineering"})
		req := authedRequest(http.MethodPost, "/users", bytes.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := env.app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "USER_EXISTS", decodeError(t, resp).Error.Code)
	})
}

func TestListUsers(t *testing.T) {
	user := managerUser()
	env := newTestEnv(user)
	env.userSvc.On("ListUsers", mock.Anything, user).
		Return([]model.User{*user, {ID: 5, Username: "newhire"}}, nil).Once()

	resp, _ := env.app.Test(authedRequest(http.MethodGet, "/users", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var res []model.User
	json.NewDecoder(resp.Body).Decode(&res)
	assert.Len(t, res, 2)
}

func TestUpdateRole(t *testing.T) {
	user := managerUser()
	env := newTestEnv(user)

	t.Run("forbidden for non-admin", func(t *testing.T) {
		env.userSvc.On("UpdateRole", mock.Anything, int64(5), model.RoleManager, user).
			Return(nil, service.ErrInsufficientRole).Once()

		req := authedRequest(http.MethodPut, "/users/5/role", bytes.NewReader([]byte(`{"role":"MANAGER"}`)))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := env.app.Test(req)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("invalid role", func(t *testing.T) {
		req := authedRequest(http.MethodPut, "/users/5/role", bytes.NewReader([]byte(`{"role":"ROOT"}`)))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := env.app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ROLE", decodeError(t, resp).Error.Code)
	})
}

func TestRouting(t *testing.T) {
	env := newTestEnv(nil)

	t.Run("not found route", func(t *testing.T) {
		resp, _ := env.app.Test(httptest.NewRequest(http.MethodGet, "/non-existent", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		resp, _ := env.app.Test(httptest.NewRequest(http.MethodPost, "/health", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, resp).Error.Code)
	})
}
