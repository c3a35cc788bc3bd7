package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"clinic-booking-server/internal/config"
	"clinic-booking-server/internal/lock"
	"clinic-booking-server/internal/middleware"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/routes"
	"clinic-booking-server/internal/scheduler"
	"clinic-booking-server/internal/store"
	"clinic-booking-server/internal/utils"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, models.AutoMigrate(db))

	cfg := &config.Config{
		Environment:               "test",
		JWTSecret:                 "test-access-secret",
		JWTRefreshSecret:          "test-refresh-secret",
		JWTExpirationMinutes:      15,
		JWTRefreshExpirationHours: 1,
	}

	svc := scheduler.NewService(store.NewGormAppointmentStore(db), lock.NewLocalLocker(), scheduler.DefaultOptions(), zerolog.Nop())

	router := gin.New()
	router.Use(middleware.Recovery(zerolog.Nop()), middleware.RequestID())
	routes.SetupRoutes(router, routes.Dependencies{
		DB:        db,
		Scheduler: svc,
		Config:    cfg,
		Log:       zerolog.Nop(),
	})

	return &testServer{t: t, router: router, db: db, cfg: cfg}
}

// userToken stores a user with the given role and returns an access token for it.
func (s *testServer) userToken(email string, role models.Role) string {
	s.t.Helper()
	user := models.User{
		Email:     email,
		FirstName: "Test",
		LastName:  string(role),
		Role:      role,
		IsActive:  true,
	}
	require.NoError(s.t, user.SetPassword("password123"))
	require.NoError(s.t, s.db.Create(&user).Error)

	access, _, err := utils.GenerateTokens(&user, s.cfg)
	require.NoError(s.t, err)
	return access
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// envelope is the generic response shape from utils.
type envelope[T any] struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
}
