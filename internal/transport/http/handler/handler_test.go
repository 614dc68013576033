package handler

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"habit-garden/internal/clock"
	"habit-garden/internal/domain/entity"
	"habit-garden/internal/domain/streak"
	"habit-garden/internal/infrastructure/memory"
	"habit-garden/internal/metrics"
	"habit-garden/internal/readmodel"
	"habit-garden/internal/service"
	"habit-garden/internal/transport/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testSecret = []byte("handler-secret")

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	engine *gin.Engine
	clock  *clock.Fixed
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	clk := clock.NewFixed("2024-03-10")

	habitRepo := memory.NewHabitRepository()
	userRepo := memory.NewUserRepository()
	notifier := memory.NewNotifier()

	habits := service.NewHabitService(habitRepo, readmodel.New(), notifier, nil, clk, streak.New(streak.PolicyDecrement), logger, m)
	activity := service.NewActivityService(memory.NewActivityRepository(), clk, logger, m)
	friends := service.NewFriendService(userRepo, clk, logger)
	motivation := service.NewMotivationService(habitRepo, userRepo, nil, clk, logger, m)

	router := NewRouter(
		NewHabitHandler(habits, motivation, notifier, logger),
		NewActivityHandler(activity, logger),
		NewFriendHandler(friends, habits, motivation, logger),
		nil,
		m,
		logger,
		RouterConfig{
			JWTSecret:   testSecret,
			JWTIssuer:   "habit-garden",
			MetricsPath: "/metrics",
			Gatherer:    reg,
		},
	)
	return &testServer{engine: router.Setup(), clock: clk}
}

type caller struct {
	id    uuid.UUID
	email string
	token string
}

func newCaller(t *testing.T, email string) caller {
	t.Helper()
	id := uuid.New()
	token, err := middleware.IssueToken(testSecret, "habit-garden", id, email, time.Hour)
	require.NoError(t, err)
	return caller{id: id, email: email, token: token}
}

func (s *testServer) do(t *testing.T, who caller, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if who.token != "" {
		req.Header.Set("Authorization", "Bearer "+who.token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, caller{}, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())

	w = s.do(t, caller{}, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "habits_http_requests_total")
}

func TestAPI_RequiresToken(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, caller{}, http.MethodGet, "/api/v1/habits", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHabitLifecycle(t *testing.T) {
	s := newTestServer(t)
	alice := newCaller(t, "alice@example.com")

	w := s.do(t, alice, http.MethodPost, "/api/v1/habits", gin.H{"name": "Read", "description": "ten pages"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Habit entity.Habit `json:"habit"`
	}
	decode(t, w, &created)
	assert.Equal(t, "Read", created.Habit.Name)
	habitPath := "/api/v1/habits/" + created.Habit.ID.String()

	w = s.do(t, alice, http.MethodPost, habitPath+"/toggle", gin.H{"completed": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var outcome struct {
		Habit   entity.Habit `json:"habit"`
		Changed bool         `json:"changed"`
	}
	decode(t, w, &outcome)
	assert.True(t, outcome.Changed)
	assert.Equal(t, int32(1), outcome.Habit.CurrentStreak)
	require.NotNil(t, outcome.Habit.LastCompleted)
	assert.Equal(t, "2024-03-10", outcome.Habit.LastCompleted.String())

	w = s.do(t, alice, http.MethodPost, habitPath+"/toggle", gin.H{"completed": true})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &outcome)
	assert.False(t, outcome.Changed)
	assert.Equal(t, int32(1), outcome.Habit.CurrentStreak)

	w = s.do(t, alice, http.MethodGet, "/api/v1/habits/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var dashboard struct {
		CompletedToday int `json:"completed_today"`
		Weekly         []struct {
			Completed int `json:"completed"`
		} `json:"weekly"`
	}
	decode(t, w, &dashboard)
	assert.Equal(t, 1, dashboard.CompletedToday)
	require.Len(t, dashboard.Weekly, 7)
	assert.Equal(t, 1, dashboard.Weekly[6].Completed)

	w = s.do(t, alice, http.MethodPatch, habitPath, gin.H{"name": "Read more", "description": ""})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &created)
	assert.Equal(t, "Read more", created.Habit.Name)
	assert.Equal(t, int32(1), created.Habit.CurrentStreak)

	w = s.do(t, alice, http.MethodDelete, habitPath, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, alice, http.MethodGet, habitPath, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHabitErrors(t *testing.T) {
	s := newTestServer(t)
	alice := newCaller(t, "alice@example.com")
	bob := newCaller(t, "bob@example.com")

	w := s.do(t, alice, http.MethodPost, "/api/v1/habits", gin.H{"name": "Stretch"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Habit entity.Habit `json:"habit"`
	}
	decode(t, w, &created)
	habitPath := "/api/v1/habits/" + created.Habit.ID.String()

	tests := []struct {
		name   string
		who    caller
		method string
		path   string
		body   interface{}
		status int
	}{
		{"empty name", alice, http.MethodPost, "/api/v1/habits", gin.H{"name": " "}, http.StatusBadRequest},
		{"bad id", alice, http.MethodGet, "/api/v1/habits/not-a-uuid", nil, http.StatusBadRequest},
		{"unknown id", alice, http.MethodGet, "/api/v1/habits/" + uuid.NewString(), nil, http.StatusNotFound},
		{"other user's habit", bob, http.MethodGet, habitPath, nil, http.StatusNotFound},
		{"toggle other user's habit", bob, http.MethodPost, habitPath + "/toggle", gin.H{"completed": true}, http.StatusNotFound},
		{"toggle without state", alice, http.MethodPost, habitPath + "/toggle", gin.H{}, http.StatusBadRequest},
		{"motivation without generator", alice, http.MethodGet, habitPath + "/motivation", nil, http.StatusBadGateway},
		{"story with bad flag", alice, http.MethodGet, habitPath + "/story?audio=maybe", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.who, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestActivityEndpoints(t *testing.T) {
	s := newTestServer(t)
	alice := newCaller(t, "alice@example.com")

	w := s.do(t, alice, http.MethodGet, "/api/v1/activity/today", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var activity entity.Activity
	decode(t, w, &activity)
	assert.Zero(t, activity.Water)
	assert.False(t, activity.Exercise)

	w = s.do(t, alice, http.MethodPatch, "/api/v1/activity/today", gin.H{"exercise": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &activity)
	assert.True(t, activity.Exercise)

	w = s.do(t, alice, http.MethodPost, "/api/v1/activity/today/water", gin.H{"delta": 3})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &activity)
	assert.Equal(t, int32(3), activity.Water)
	assert.True(t, activity.Exercise)

	w = s.do(t, alice, http.MethodPost, "/api/v1/activity/today/water", gin.H{"delta": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, alice, http.MethodPatch, "/api/v1/activity/today", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, alice, http.MethodGet, "/api/v1/activity/week", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var week struct {
		Days []struct {
			Date  string `json:"date"`
			Water int32  `json:"water"`
		} `json:"days"`
	}
	decode(t, w, &week)
	require.Len(t, week.Days, 7)
	assert.Equal(t, "2024-03-04", week.Days[0].Date)
	assert.Equal(t, "2024-03-10", week.Days[6].Date)
	assert.Equal(t, int32(3), week.Days[6].Water)
}

func TestProfileAndFriends(t *testing.T) {
	s := newTestServer(t)
	alice := newCaller(t, "alice@example.com")
	bob := newCaller(t, "bob@example.com")

	w := s.do(t, alice, http.MethodPost, "/api/v1/profile", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var profile struct {
		User entity.User `json:"user"`
	}
	decode(t, w, &profile)
	assert.Equal(t, alice.id, profile.User.ID)
	assert.Equal(t, "alice", profile.User.Name)

	w = s.do(t, alice, http.MethodGet, "/api/v1/habits", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Habits []entity.Habit `json:"habits"`
	}
	decode(t, w, &list)
	require.Len(t, list.Habits, 1)
	assert.Equal(t, "Log your first habit!", list.Habits[0].Name)

	// a second sign-in does not add another welcome habit
	w = s.do(t, alice, http.MethodPost, "/api/v1/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, alice, http.MethodGet, "/api/v1/habits", nil)
	decode(t, w, &list)
	assert.Len(t, list.Habits, 1)

	w = s.do(t, alice, http.MethodPost, "/api/v1/friends", gin.H{"email": "bob@example.com"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, bob, http.MethodPost, "/api/v1/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, alice, http.MethodPost, "/api/v1/friends", gin.H{"email": "alice@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, alice, http.MethodPost, "/api/v1/friends", gin.H{"email": " Bob@Example.com "})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, alice, http.MethodPost, "/api/v1/friends", gin.H{"email": "bob@example.com"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, bob, http.MethodGet, "/api/v1/friends", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var friends struct {
		Friends []entity.User `json:"friends"`
	}
	decode(t, w, &friends)
	require.Len(t, friends.Friends, 1)
	assert.Equal(t, alice.id, friends.Friends[0].ID)

	w = s.do(t, alice, http.MethodPost, "/api/v1/friends", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, alice, http.MethodGet, "/api/v1/profile/avatar", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestStream(t *testing.T) {
	s := newTestServer(t)
	alice := newCaller(t, "alice@example.com")

	w := s.do(t, alice, http.MethodPost, "/api/v1/habits", gin.H{"name": "Walk"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Habit entity.Habit `json:"habit"`
	}
	decode(t, w, &created)

	srv := httptest.NewServer(s.engine)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/habits/stream?access_token="+alice.token, nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	reader := bufio.NewReader(resp.Body)
	nextEvent := func() (string, string) {
		var event, data string
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimRight(line, "\n")
			switch {
			case strings.HasPrefix(line, "event:"):
				event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			case strings.HasPrefix(line, "data:"):
				data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			case line == "" && event != "":
				return event, data
			}
		}
	}

	event, data := nextEvent()
	assert.Equal(t, "snapshot", event)
	assert.Contains(t, data, created.Habit.ID.String())

	w = s.do(t, alice, http.MethodPost, "/api/v1/habits/"+created.Habit.ID.String()+"/toggle", gin.H{"completed": true})
	require.Equal(t, http.StatusOK, w.Code)

	event, data = nextEvent()
	assert.Equal(t, string(entity.ChangeUpserted), event)
	var change entity.HabitChange
	require.NoError(t, json.Unmarshal([]byte(data), &change))
	assert.Equal(t, created.Habit.ID, change.HabitID)
	require.NotNil(t, change.Habit)
	assert.Equal(t, int32(1), change.Habit.CurrentStreak)
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{entity.ErrInvalidInput, http.StatusBadRequest},
		{entity.ErrInvalidDate, http.StatusBadRequest},
		{entity.ErrSelfFriend, http.StatusBadRequest},
		{entity.ErrHabitNotFound, http.StatusNotFound},
		{entity.ErrUserNotFound, http.StatusNotFound},
		{entity.ErrAlreadyFriends, http.StatusConflict},
		{entity.ErrConflict, http.StatusConflict},
		{entity.ErrGenerationFailed, http.StatusBadGateway},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, errorStatus(tt.err), tt.err.Error())
	}
}
