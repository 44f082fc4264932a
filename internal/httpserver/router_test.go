package httpserver_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"task-tracker/internal/handler"
	"task-tracker/internal/httpserver"
	"task-tracker/internal/model"
	"task-tracker/internal/repository"
	"task-tracker/internal/repository/repotest"
	"task-tracker/internal/service"
)

const actorHeader = "x-user-id"

type testAPI struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := repotest.OpenMemory(t)
	log := zap.NewNop()

	userRepo := repository.NewUserRepository(db)
	statusRepo := repository.NewStatusRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	audit := service.NewAuditService(repository.NewLogRepository(db), log)

	router := httpserver.NewRouter(httpserver.Handlers{
		Tasks:    handler.NewTaskHandler(service.NewTaskService(taskRepo, statusRepo, userRepo, audit), actorHeader, log),
		Users:    handler.NewUserHandler(service.NewUserService(userRepo), log),
		Statuses: handler.NewStatusHandler(service.NewStatusService(statusRepo), log),
	}, db, log)

	return &testAPI{t: t, db: db, router: router}
}

func (a *testAPI) do(method, path, body, actor string) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if actor != "" {
		req.Header.Set(actorHeader, actor)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

// seed creates status 1 and users 1..7 so ids line up with request bodies.
func (a *testAPI) seed() {
	a.t.Helper()
	repotest.SeedStatus(a.t, a.db, "open")
	for i := 1; i <= 7; i++ {
		repotest.SeedUser(a.t, a.db, fmt.Sprintf("user%d", i))
	}
}

func (a *testAPI) createTask(body, actor string) uint {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/tasks", body, actor)
	if rec.Code != http.StatusCreated {
		a.t.Fatalf("create status = %d body=%s", rec.Code, rec.Body.String())
	}
	return uint(decode(a.t, rec)["id"].(float64))
}

func TestCreateTaskScenario(t *testing.T) {
	api := newTestAPI(t)
	api.seed()

	rec := api.do(http.MethodPost, "/tasks", `{"title":"A","description":"B","dueDate":"2025-01-01","statusId":1}`, "7")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["title"] != "A" || body["isPublic"] != true || body["isDeleted"] != false {
		t.Errorf("body = %v", body)
	}
	id := uint(body["id"].(float64))
	if id == 0 {
		t.Fatal("missing id")
	}

	var entries []model.Log
	if err := api.db.Where("entity_id = ?", id).Find(&entries).Error; err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Action != model.ActionCreate || *entries[0].ActorID != 7 {
		t.Errorf("log entries = %+v", entries)
	}
	if owner, ok := body["user"].(map[string]any); !ok || owner["username"] != "user7" {
		t.Errorf("owner = %v", body["user"])
	} else if _, leaked := owner["password"]; leaked {
		t.Error("password serialized")
	}
}

func TestCreateTaskBadRequests(t *testing.T) {
	api := newTestAPI(t)
	api.seed()

	tests := []struct {
		name  string
		body  string
		actor string
	}{
		{"missing title", `{"description":"B","dueDate":"2025-01-01","statusId":1}`, "7"},
		{"missing status", `{"title":"A","description":"B","dueDate":"2025-01-01"}`, "7"},
		{"bad date", `{"title":"A","description":"B","dueDate":"someday","statusId":1}`, "7"},
		{"no actor", `{"title":"A","description":"B","dueDate":"2025-01-01","statusId":1}`, ""},
		{"non numeric actor", `{"title":"A","description":"B","dueDate":"2025-01-01","statusId":1}`, "abc"},
		{"malformed json", `{"title":`, "7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(http.MethodPost, "/tasks", tt.body, tt.actor)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if msg := decode(t, rec)["message"]; msg != "missing required fields" {
				t.Errorf("message = %v", msg)
			}
		})
	}

	var n int64
	api.db.Model(&model.Task{}).Count(&n)
	if n != 0 {
		t.Errorf("tasks = %d, want 0", n)
	}
}

func TestCreateTaskNotFound(t *testing.T) {
	api := newTestAPI(t)
	api.seed()

	rec := api.do(http.MethodPost, "/tasks", `{"title":"A","description":"B","dueDate":"2025-01-01","statusId":42}`, "7")
	if rec.Code != http.StatusNotFound || decode(t, rec)["message"] != "status does not exist" {
		t.Errorf("status = %d body=%s", rec.Code, rec.Body.String())
	}

	rec = api.do(http.MethodPost, "/tasks", `{"title":"A","description":"B","dueDate":"2025-01-01","statusId":1}`, "99")
	if rec.Code != http.StatusNotFound || decode(t, rec)["message"] != "user does not exist" {
		t.Errorf("status = %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestListTasksEnvelope(t *testing.T) {
	api := newTestAPI(t)
	api.seed()

	for i := 0; i < 3; i++ {
		api.createTask(`{"title":"pub","description":"d","dueDate":"2025-01-01","statusId":1}`, "1")
	}
	api.createTask(`{"title":"priv","description":"d","dueDate":"2025-01-01","statusId":1,"isPublic":false}`, "2")

	rec := api.do(http.MethodGet, "/tasks?page=2&limit=2", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode(t, rec)
	if body["page"] != float64(2) || body["limit"] != float64(2) || body["total"] != float64(3) || body["totalPages"] != float64(2) {
		t.Errorf("envelope = %v", body)
	}
	data := body["data"].([]any)
	if len(data) != 1 {
		t.Fatalf("data len = %d, want 1", len(data))
	}
	row := data[0].(map[string]any)
	if row["status"] != "open" || row["owner"] != "user1" {
		t.Errorf("row = %v", row)
	}
	if _, ok := row["description"]; ok {
		t.Error("listing should not expose description")
	}

	rec = api.do(http.MethodGet, "/tasks?page=x&limit=y", "", "2")
	body = decode(t, rec)
	if body["page"] != float64(1) || body["limit"] != float64(10) || body["total"] != float64(4) {
		t.Errorf("owner envelope = %v", body)
	}
}

func TestGetTask(t *testing.T) {
	api := newTestAPI(t)
	api.seed()
	id := api.createTask(`{"title":"priv","description":"d","dueDate":"2025-01-01","statusId":1,"isPublic":false}`, "3")

	path := fmt.Sprintf("/tasks/%d", id)
	if rec := api.do(http.MethodGet, path, "", "3"); rec.Code != http.StatusOK {
		t.Errorf("owner status = %d", rec.Code)
	} else if status := decode(t, rec)["status"].(map[string]any); status["name"] != "open" {
		t.Errorf("status = %v", status)
	}
	if rec := api.do(http.MethodGet, path, "", "4"); rec.Code != http.StatusNotFound {
		t.Errorf("other actor status = %d, want 404", rec.Code)
	}
	if rec := api.do(http.MethodGet, "/tasks/abc", "", "3"); rec.Code != http.StatusNotFound {
		t.Errorf("bad id status = %d, want 404", rec.Code)
	}
}

func TestReplaceAndPatch(t *testing.T) {
	api := newTestAPI(t)
	api.seed()
	id := api.createTask(`{"title":"A","description":"B","dueDate":"2025-01-01","statusId":1,"comments":"c"}`, "7")
	path := fmt.Sprintf("/tasks/%d", id)

	rec := api.do(http.MethodPut, path, `{"title":"A2","description":"B2","dueDate":"2025-02-02","statusId":1}`, "7")
	if rec.Code != http.StatusBadRequest || decode(t, rec)["message"] != "missing required field: userId" {
		t.Errorf("replace without userId: %d %s", rec.Code, rec.Body.String())
	}

	rec = api.do(http.MethodPut, path, `{"title":"A2","description":"B2","dueDate":"2025-02-02","statusId":9,"userId":1}`, "7")
	if rec.Code != http.StatusNotFound || decode(t, rec)["message"] != "status does not exist" {
		t.Errorf("replace with bad status: %d %s", rec.Code, rec.Body.String())
	}

	rec = api.do(http.MethodPut, path, `{"title":"A2","description":"B2","dueDate":"2025-02-02","statusId":1,"userId":1}`, "7")
	if rec.Code != http.StatusOK {
		t.Fatalf("replace: %d %s", rec.Code, rec.Body.String())
	}
	if body := decode(t, rec); body["title"] != "A2" || body["userId"] != float64(1) {
		t.Errorf("replace body = %v", body)
	}

	rec = api.do(http.MethodPatch, path, `{"comments":"only this"}`, "7")
	if rec.Code != http.StatusOK {
		t.Fatalf("patch: %d %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["comments"] != "only this" || body["title"] != "A2" || body["description"] != "B2" {
		t.Errorf("patch body = %v", body)
	}
	if owner := body["user"].(map[string]any); owner["username"] != "user1" {
		t.Errorf("patch owner = %v", owner)
	}

	rec = api.do(http.MethodPatch, path, `{"userId":404}`, "7")
	if rec.Code != http.StatusNotFound || decode(t, rec)["message"] != "user does not exist" {
		t.Errorf("patch bad user: %d %s", rec.Code, rec.Body.String())
	}

	if rec := api.do(http.MethodPatch, "/tasks/999", `{"comments":"x"}`, "7"); rec.Code != http.StatusNotFound {
		t.Errorf("patch missing task = %d", rec.Code)
	}
	if n := repotest.CountLogs(t, api.db, id, model.ActionUpdate); n != 2 {
		t.Errorf("update logs = %d, want 2", n)
	}
}

func TestUpdateWithEmptyBody(t *testing.T) {
	api := newTestAPI(t)
	api.seed()
	id := api.createTask(`{"title":"A","description":"B","dueDate":"2025-01-01","statusId":1,"comments":"c"}`, "7")
	path := fmt.Sprintf("/tasks/%d", id)

	rec := api.do(http.MethodPatch, path, "", "7")
	if rec.Code != http.StatusOK {
		t.Fatalf("empty patch: %d %s", rec.Code, rec.Body.String())
	}
	if body := decode(t, rec); body["title"] != "A" || body["description"] != "B" || body["comments"] != "c" {
		t.Errorf("empty patch body = %v", body)
	}
	if n := repotest.CountLogs(t, api.db, id, model.ActionUpdate); n != 1 {
		t.Errorf("update logs = %d, want 1", n)
	}

	rec = api.do(http.MethodPut, path, "", "7")
	if rec.Code != http.StatusBadRequest || decode(t, rec)["message"] != "missing required field: title" {
		t.Errorf("empty replace: %d %s", rec.Code, rec.Body.String())
	}

	rec = api.do(http.MethodPatch, path, `{"title":`, "7")
	if rec.Code != http.StatusBadRequest || decode(t, rec)["message"] != "invalid request body" {
		t.Errorf("truncated patch: %d %s", rec.Code, rec.Body.String())
	}
	if n := repotest.CountLogs(t, api.db, id, model.ActionUpdate); n != 1 {
		t.Errorf("update logs after rejected requests = %d, want 1", n)
	}
}

func TestNullFieldsCountAsAbsent(t *testing.T) {
	api := newTestAPI(t)
	api.seed()
	id := api.createTask(`{"title":"A","description":"B","dueDate":"2025-01-01","statusId":1}`, "7")
	path := fmt.Sprintf("/tasks/%d", id)

	rec := api.do(http.MethodPut, path, `{"title":null,"description":"B2","dueDate":"2025-02-02","statusId":1,"userId":1}`, "7")
	if rec.Code != http.StatusBadRequest || decode(t, rec)["message"] != "missing required field: title" {
		t.Errorf("replace with null title: %d %s", rec.Code, rec.Body.String())
	}

	rec = api.do(http.MethodPatch, path, `{"title":null,"comments":"x"}`, "7")
	if rec.Code != http.StatusOK {
		t.Fatalf("patch with null title: %d %s", rec.Code, rec.Body.String())
	}
	if body := decode(t, rec); body["title"] != "A" || body["comments"] != "x" {
		t.Errorf("patch body = %v", body)
	}
}

func TestDeleteTaskTwice(t *testing.T) {
	api := newTestAPI(t)
	api.seed()
	id := api.createTask(`{"title":"A","description":"B","dueDate":"2025-01-01","statusId":1}`, "7")
	path := fmt.Sprintf("/tasks/%d", id)

	for i := 0; i < 2; i++ {
		rec := api.do(http.MethodDelete, path, "", "7")
		if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
			t.Fatalf("delete #%d = %d %q", i+1, rec.Code, rec.Body.String())
		}
	}
	if n := repotest.CountLogs(t, api.db, id, model.ActionDelete); n != 2 {
		t.Errorf("delete logs = %d, want 2", n)
	}
	if rec := api.do(http.MethodGet, path, "", "7"); rec.Code != http.StatusNotFound {
		t.Errorf("deleted task get = %d", rec.Code)
	}
	if rec := api.do(http.MethodDelete, "/tasks/999", "", "7"); rec.Code != http.StatusNotFound {
		t.Errorf("delete missing = %d", rec.Code)
	}
}

func TestUsersAndStatuses(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodPost, "/users", `{"username":"zoe","password":"pw"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create user = %d %s", rec.Code, rec.Body.String())
	}
	user := decode(t, rec)
	if user["active"] != true || strings.Contains(rec.Body.String(), "pw") {
		t.Errorf("user body = %s", rec.Body.String())
	}
	if rec := api.do(http.MethodGet, fmt.Sprintf("/users/%d", uint(user["id"].(float64))), "", ""); rec.Code != http.StatusOK {
		t.Errorf("get user = %d", rec.Code)
	}
	if rec := api.do(http.MethodGet, "/users/55", "", ""); rec.Code != http.StatusNotFound {
		t.Errorf("missing user = %d", rec.Code)
	}
	if rec := api.do(http.MethodPost, "/users", `{"username":"zoe"}`, ""); rec.Code != http.StatusBadRequest {
		t.Errorf("user without password = %d", rec.Code)
	}

	if rec := api.do(http.MethodPost, "/status", `{"name":"review"}`, ""); rec.Code != http.StatusCreated {
		t.Errorf("create status = %d", rec.Code)
	}
	rec = api.do(http.MethodPost, "/status", `{"name":"review"}`, "")
	if rec.Code != http.StatusConflict || decode(t, rec)["message"] != "status already exists" {
		t.Errorf("duplicate status: %d %s", rec.Code, rec.Body.String())
	}
	rec = api.do(http.MethodGet, "/status", "", "")
	var statuses []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &statuses); err != nil {
		t.Fatal(err)
	}
	if len(statuses) != 1 || statuses[0]["name"] != "review" {
		t.Errorf("statuses = %v", statuses)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	api := newTestAPI(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		if rec := api.do(http.MethodGet, path, "", ""); rec.Code != http.StatusOK {
			t.Errorf("%s = %d", path, rec.Code)
		}
	}

	api.do(http.MethodGet, "/tasks", "", "")
	rec := api.do(http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "http_request_duration_seconds") {
		t.Errorf("metrics = %d", rec.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/healthz", "", "")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	rec = httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "fixed-id" {
		t.Errorf("request id = %q", got)
	}
}
