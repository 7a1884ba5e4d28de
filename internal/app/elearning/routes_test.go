package elearning_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/magabrotheeeer/elearning-api/internal/app/elearning"
	"github.com/magabrotheeeer/elearning-api/internal/config"
	"github.com/magabrotheeeer/elearning-api/internal/http/response"
	"github.com/magabrotheeeer/elearning-api/internal/lib/jwt"
	"github.com/magabrotheeeer/elearning-api/internal/models"
	authservice "github.com/magabrotheeeer/elearning-api/internal/services/auth"
	courseservice "github.com/magabrotheeeer/elearning-api/internal/services/course"
	"github.com/magabrotheeeer/elearning-api/internal/storage"
)

// memStore хранит пользователей и курсы в памяти, повторяя контракт
// хранилища, включая уникальность email.
type memStore struct {
	mu      sync.Mutex
	users   map[string]*models.User
	courses map[string]*models.Course
}

func newMemStore() *memStore {
	return &memStore{
		users:   make(map[string]*models.User),
		courses: make(map[string]*models.Course),
	}
}

func (m *memStore) CreateUser(_ context.Context, user models.User) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.Email]; ok {
		return "", storage.ErrUserExists
	}
	user.ID = bson.NewObjectID()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	m.users[user.Email] = &user
	return user.ID.Hex(), nil
}

func (m *memStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	return nil, storage.ErrNotFound
}

func (m *memStore) FindUserByFullName(_ context.Context, fullName string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.FullName == fullName {
			return u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *memStore) FindUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID.Hex() == id {
			return u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *memStore) FindAdmin(_ context.Context) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Role == models.RoleAdmin {
			return u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *memStore) ListUsers(_ context.Context, limit int64) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*models.User
	for _, u := range m.users {
		result = append(result, u)
		if int64(len(result)) >= limit {
			break
		}
	}
	return result, nil
}

func (m *memStore) CreateCourse(_ context.Context, course models.Course) (*models.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	course.ID = bson.NewObjectID()
	course.CreatedAt = time.Now().UTC()
	course.UpdatedAt = course.CreatedAt
	m.courses[course.ID.Hex()] = &course
	return &course, nil
}

func (m *memStore) FindCourseByID(_ context.Context, id string) (*models.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, storage.ErrNotFound
}

func (m *memStore) ListCourses(_ context.Context, skip, limit int64) ([]*models.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*models.Course
	for _, c := range m.courses {
		result = append(result, c)
	}
	if skip >= int64(len(result)) {
		return []*models.Course{}, nil
	}
	end := skip + limit
	if end > int64(len(result)) {
		end = int64(len(result))
	}
	return result[skip:end], nil
}

func (m *memStore) UpdateCourse(_ context.Context, id string, fields map[string]any) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.courses[id]
	if !ok {
		return 0, nil
	}
	if title, ok := fields["title"].(string); ok {
		c.Title = title
	}
	c.UpdatedAt = time.Now().UTC()
	return 1, nil
}

func (m *memStore) DeleteCourse(_ context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.courses[id]; !ok {
		return 0, nil
	}
	delete(m.courses, id)
	return 1, nil
}

func (m *memStore) InsertHealthProbe(_ context.Context) error {
	return nil
}

func newTestServer(t *testing.T) (*httptest.Server, *memStore) {
	t.Helper()

	store := newMemStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	jwtMaker := jwt.NewJWTMaker("test_secret_key", time.Hour)

	defaultAdmin := config.DefaultAdmin{
		Email:    "antonio.admin@demo.local",
		FullName: "AntonioAdmin",
		Password: "Antonio89",
	}
	auth := authservice.New(store, jwtMaker, nil, defaultAdmin)
	courses := courseservice.New(store, nil, logger)

	router := chi.NewRouter()
	elearning.RegisterRoutes(router, logger, jwtMaker, auth, courses, store)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, store
}

func doJSON(t *testing.T, method, rawURL, token string, body string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, rawURL, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, data
}

func loginForm(t *testing.T, srv *httptest.Server, username, password string) (*http.Response, []byte) {
	t.Helper()

	form := url.Values{"username": {username}, "password": {password}}
	resp, err := http.PostForm(srv.URL+"/auth/token", form)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, data
}

func TestAccessChain_EndToEnd(t *testing.T) {
	srv, _ := newTestServer(t)

	// Регистрация студента
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/auth/register", "",
		`{"email":"user@test.io","full_name":"Test Student","password":"pw1234"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	// Повторная регистрация с тем же email отклоняется
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/auth/register", "",
		`{"email":"user@test.io","full_name":"Another Name","password":"pw1234"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var errResp response.Response
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Contains(t, errResp.Error, "email already registered")

	// Вход студента, первый вход создает администратора по умолчанию
	resp, body = loginForm(t, srv, "user@test.io", "pw1234")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var tokenResp map[string]string
	require.NoError(t, json.Unmarshal(body, &tokenResp))
	studentToken := tokenResp["access_token"]
	require.NotEmpty(t, studentToken)
	assert.Equal(t, "bearer", tokenResp["token_type"])

	// Профиль по токену
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/auth/me", studentToken, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var public models.PublicUser
	require.NoError(t, json.Unmarshal(body, &public))
	assert.Equal(t, "user@test.io", public.Email)
	assert.Equal(t, models.RoleStudent, public.Role)

	// Без токена — 401 с challenge заголовком
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/auth/me", "", "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))

	// Студенту закрыт административный список
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/admin/users", studentToken, "")
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Вход администратора по умолчанию
	resp, body = loginForm(t, srv, "antonio.admin@demo.local", "Antonio89")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, &tokenResp))
	adminToken := tokenResp["access_token"]
	require.NotEmpty(t, adminToken)

	// Администратору список доступен и содержит студента
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/admin/users", adminToken, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listResp response.Response
	require.NoError(t, json.Unmarshal(body, &listResp))
	data, err := json.Marshal(listResp.Data)
	require.NoError(t, err)
	var usersList []models.PublicUser
	require.NoError(t, json.Unmarshal(data, &usersList))
	emails := make([]string, 0, len(usersList))
	for _, u := range usersList {
		emails = append(emails, u.Email)
	}
	assert.Contains(t, emails, "user@test.io")
	assert.Contains(t, emails, "antonio.admin@demo.local")
}

func TestCourseRoutes_AdminOnlyMutation(t *testing.T) {
	srv, _ := newTestServer(t)

	// Каталог открыт без токена
	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/courses", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Создание курса без токена — 401
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/courses", "",
		`{"title":"Go 101","description":"Basics"}`)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Студент не может создавать курсы
	_, body := doJSON(t, http.MethodPost, srv.URL+"/auth/register", "",
		`{"email":"user@test.io","full_name":"Test Student","password":"pw1234"}`)
	require.NotEmpty(t, body)
	_, body = loginForm(t, srv, "user@test.io", "pw1234")
	var tokenResp map[string]string
	require.NoError(t, json.Unmarshal(body, &tokenResp))
	studentToken := tokenResp["access_token"]

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/courses", studentToken,
		`{"title":"Go 101","description":"Basics"}`)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Администратор создает, обновляет и удаляет курс
	_, body = loginForm(t, srv, "antonio.admin@demo.local", "Antonio89")
	require.NoError(t, json.Unmarshal(body, &tokenResp))
	adminToken := tokenResp["access_token"]

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/courses", adminToken,
		`{"title":"Go 101","description":"Basics","level":"beginner","price":49.9}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var createResp response.Response
	require.NoError(t, json.Unmarshal(body, &createResp))
	courseData, err := json.Marshal(createResp.Data)
	require.NoError(t, err)
	var created models.Course
	require.NoError(t, json.Unmarshal(courseData, &created))
	courseID := created.ID.Hex()

	// Чтение курса открыто без токена
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/courses/"+courseID, "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var readResp response.Response
	require.NoError(t, json.Unmarshal(body, &readResp))
	readData, err := json.Marshal(readResp.Data)
	require.NoError(t, err)
	var fetched models.Course
	require.NoError(t, json.Unmarshal(readData, &fetched))
	assert.Equal(t, "Go 101", fetched.Title)

	// Чтение несуществующего курса — 404
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/courses/"+bson.NewObjectID().Hex(), "", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPatch, srv.URL+"/courses/"+courseID, adminToken,
		`{"title":"Go 101: updated"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Обновление несуществующего курса — 404
	resp, _ = doJSON(t, http.MethodPatch, srv.URL+"/courses/"+bson.NewObjectID().Hex(),
		adminToken, `{"title":"ghost"}`)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/courses/"+courseID, adminToken, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/courses/"+courseID, adminToken, "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
