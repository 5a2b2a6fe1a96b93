package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"feedback-backend/internal/auth"
	"feedback-backend/internal/handlers"
	"feedback-backend/internal/metrics"
	"feedback-backend/internal/models"
	"feedback-backend/internal/notify"
	"feedback-backend/internal/ratelimit"
	"feedback-backend/internal/repository/memstore"
	"feedback-backend/internal/workflow"

	"github.com/prometheus/client_golang/prometheus"
)

type server struct {
	t   *testing.T
	srv *httptest.Server
	wf  *workflow.Service
}

func newServer(t *testing.T) *server {
	t.Helper()
	store := memstore.New()
	m := metrics.New(prometheus.NewRegistry())
	wf := workflow.NewService(workflow.Stores{
		Users:    store.Users(),
		Teams:    store.Teams(),
		Feedback: store.Feedback(),
		Requests: store.Requests(),
		Comments: store.Comments(),
		Acks:     store.Acks(),
		Tags:     store.Tags(),
		Tx:       store,
	}, notify.Multi{notify.NewLogNotifier(), m})
	authSvc := auth.NewService(store.Users(), store.Sessions(), auth.NewTokenIssuer("test-secret", time.Hour), ratelimit.Noop{})

	srv := httptest.NewServer(handlers.NewRouter(handlers.Deps{
		Auth:     authSvc,
		Workflow: wf,
		Metrics:  m,
	}))
	t.Cleanup(func() {
		wf.Wait()
		srv.Close()
	})
	return &server{t: t, srv: srv, wf: wf}
}

type account struct {
	ID    string
	Token string
}

func (s *server) do(method, path, token string, body any) *http.Response {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, s.srv.URL+path, &buf)
	if err != nil {
		s.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.srv.Client().Do(req)
	if err != nil {
		s.t.Fatalf("%s %s: %v", method, path, err)
	}
	s.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		var body bytes.Buffer
		body.ReadFrom(resp.Body)
		t.Fatalf("%s %s = %d, want %d: %s", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, want, body.String())
	}
}

func (s *server) signUp(name string, role models.Role) account {
	s.t.Helper()
	email := name + "@example.com"
	resp := s.do(http.MethodPost, "/api/register", "", map[string]string{
		"name": name, "email": email, "password": "hunter22", "role": string(role),
	})
	expectStatus(s.t, resp, http.StatusCreated)

	resp = s.do(http.MethodPost, "/api/login", "", map[string]string{"email": email, "password": "hunter22"})
	expectStatus(s.t, resp, http.StatusOK)
	res := decode[auth.LoginResult](s.t, resp)
	if res.Role != role {
		s.t.Fatalf("login role = %q, want %q", res.Role, role)
	}
	return account{ID: res.User.ID.Hex(), Token: res.Token}
}

// team registers a manager with one employee on their team.
func (s *server) team() (manager, employee account) {
	s.t.Helper()
	manager = s.signUp("maria", models.RoleManager)
	employee = s.signUp("eli", models.RoleEmployee)
	resp := s.do(http.MethodPost, "/api/team", manager.Token, map[string]string{"employee_id": employee.ID})
	expectStatus(s.t, resp, http.StatusCreated)
	return manager, employee
}

func TestHealthAndMetrics(t *testing.T) {
	s := newServer(t)
	expectStatus(t, s.do(http.MethodGet, "/health", "", nil), http.StatusOK)

	s.do(http.MethodGet, "/api/team", "", nil)
	resp := s.do(http.MethodGet, "/metrics", "", nil)
	expectStatus(t, resp, http.StatusOK)
	var body bytes.Buffer
	body.ReadFrom(resp.Body)
	if !strings.Contains(body.String(), "feedback_http_requests_total") {
		t.Fatalf("metrics output missing request counter")
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newServer(t)
	for _, path := range []string{"/api/team", "/api/users", "/api/feedback/tags"} {
		resp := s.do(http.MethodGet, path, "", nil)
		expectStatus(t, resp, http.StatusUnauthorized)
		body := decode[map[string]string](t, resp)
		if body["code"] != "unauthenticated" {
			t.Fatalf("%s code = %q", path, body["code"])
		}
	}
	expectStatus(t, s.do(http.MethodGet, "/api/team", "not-a-token", nil), http.StatusUnauthorized)
}

func TestLoginAndLogout(t *testing.T) {
	s := newServer(t)
	a := s.signUp("maria", models.RoleManager)

	resp := s.do(http.MethodPost, "/api/login", "", map[string]string{"email": "maria@example.com", "password": "wrong"})
	expectStatus(t, resp, http.StatusUnauthorized)
	if body := decode[map[string]string](t, resp); body["code"] != "invalid_credentials" {
		t.Fatalf("code = %q", body["code"])
	}

	expectStatus(t, s.do(http.MethodPost, "/api/register", "", map[string]string{
		"name": "dup", "email": "MARIA@example.com", "password": "x",
	}), http.StatusConflict)

	expectStatus(t, s.do(http.MethodPost, "/api/logout", a.Token, nil), http.StatusOK)
	expectStatus(t, s.do(http.MethodGet, "/api/team", a.Token, nil), http.StatusUnauthorized)
}

func TestFeedbackLifecycle(t *testing.T) {
	s := newServer(t)
	manager, employee := s.team()

	submit := map[string]any{
		"employee_id":     employee.ID,
		"strengths":       "Ships carefully",
		"improvements":    "Speak up in reviews",
		"sentiment":       "positive",
		"tags":            []string{"Teamwork"},
		"idempotency_key": "k-1",
	}
	resp := s.do(http.MethodPost, "/api/feedback", manager.Token, submit)
	expectStatus(t, resp, http.StatusCreated)
	fb := decode[workflow.FeedbackView](t, resp)
	if len(fb.Tags) != 1 || fb.Acknowledged {
		t.Fatalf("unexpected feedback %+v", fb)
	}

	replay := s.do(http.MethodPost, "/api/feedback", manager.Token, submit)
	expectStatus(t, replay, http.StatusOK)
	if again := decode[workflow.FeedbackView](t, replay); again.ID != fb.ID {
		t.Fatalf("replay returned %s, want %s", again.ID.Hex(), fb.ID.Hex())
	}

	id := fb.ID.Hex()
	expectStatus(t, s.do(http.MethodPut, "/api/feedback/"+id, employee.Token, map[string]string{"strengths": "x"}), http.StatusForbidden)
	expectStatus(t, s.do(http.MethodPut, "/api/feedback/"+id, manager.Token, map[string]string{"sentiment": "great"}), http.StatusBadRequest)

	resp = s.do(http.MethodPut, "/api/feedback/"+id, manager.Token, map[string]string{"improvements": "Lead a design review"})
	expectStatus(t, resp, http.StatusOK)
	if edited := decode[workflow.FeedbackView](t, resp); edited.Improvements != "Lead a design review" || edited.Strengths != "Ships carefully" {
		t.Fatalf("partial edit lost fields: %+v", edited)
	}

	ack := map[string]string{"feedback_id": id}
	expectStatus(t, s.do(http.MethodPost, "/api/feedback/acknowledge", manager.Token, ack), http.StatusForbidden)
	expectStatus(t, s.do(http.MethodPost, "/api/feedback/acknowledge", employee.Token, ack), http.StatusCreated)
	expectStatus(t, s.do(http.MethodPost, "/api/feedback/acknowledge", employee.Token, ack), http.StatusOK)

	resp = s.do(http.MethodGet, "/api/feedback/employee/"+employee.ID, employee.Token, nil)
	expectStatus(t, resp, http.StatusOK)
	list := decode[[]workflow.FeedbackView](t, resp)
	if len(list) != 1 || !list[0].Acknowledged || list[0].ManagerName != "maria" {
		t.Fatalf("employee view = %+v", list)
	}

	resp = s.do(http.MethodGet, "/api/feedback/stats/"+manager.ID, manager.Token, nil)
	expectStatus(t, resp, http.StatusOK)
	stats := decode[models.Stats](t, resp)
	if stats.TotalFeedback != 1 || stats.AcknowledgementRate != 100 {
		t.Fatalf("stats = %+v", stats)
	}
	expectStatus(t, s.do(http.MethodGet, "/api/feedback/stats/"+manager.ID, employee.Token, nil), http.StatusForbidden)

	expectStatus(t, s.do(http.MethodDelete, "/api/feedback/"+id, manager.Token, nil), http.StatusOK)
	expectStatus(t, s.do(http.MethodGet, "/api/feedback/"+id, manager.Token, nil), http.StatusNotFound)
}

func TestSubmitRejectsIdentityMismatch(t *testing.T) {
	s := newServer(t)
	manager, employee := s.team()
	other := s.signUp("otto", models.RoleManager)

	resp := s.do(http.MethodPost, "/api/feedback", manager.Token, map[string]any{
		"employee_id":  employee.ID,
		"manager_id":   other.ID,
		"strengths":    "a",
		"improvements": "b",
		"sentiment":    "neutral",
	})
	expectStatus(t, resp, http.StatusForbidden)

	expectStatus(t, s.do(http.MethodPost, "/api/feedback", other.Token, map[string]any{
		"employee_id":  employee.ID,
		"strengths":    "a",
		"improvements": "b",
		"sentiment":    "neutral",
	}), http.StatusForbidden)

	expectStatus(t, s.do(http.MethodGet, "/api/feedback/not-an-id", manager.Token, nil), http.StatusBadRequest)
}

func TestAnonymousRequestHidesRequester(t *testing.T) {
	s := newServer(t)
	manager, employee := s.team()

	resp := s.do(http.MethodPost, "/api/feedback/request", employee.Token, map[string]any{
		"target_manager_id": manager.ID,
		"message":           "How did the launch go?",
		"is_anonymous":      true,
	})
	expectStatus(t, resp, http.StatusCreated)

	resp = s.do(http.MethodGet, "/api/feedback/requests/"+manager.ID, manager.Token, nil)
	expectStatus(t, resp, http.StatusOK)
	raw := decode[[]map[string]any](t, resp)
	if len(raw) != 1 {
		t.Fatalf("got %d requests", len(raw))
	}
	if _, ok := raw[0]["requester_id"]; ok {
		t.Fatalf("anonymous request leaked requester_id: %v", raw[0])
	}
	if raw[0]["requester_name"] != workflow.AnonymousName {
		t.Fatalf("requester_name = %v", raw[0]["requester_name"])
	}

	resp = s.do(http.MethodGet, "/api/feedback/requests/employee/"+employee.ID, employee.Token, nil)
	expectStatus(t, resp, http.StatusOK)
	mine := decode[[]map[string]any](t, resp)
	if len(mine) != 1 || mine[0]["requester_id"] != employee.ID {
		t.Fatalf("requester view = %v", mine)
	}

	id := raw[0]["id"].(string)
	expectStatus(t, s.do(http.MethodPut, "/api/feedback/request/"+id, employee.Token, map[string]string{"status": "approved"}), http.StatusForbidden)
	resp = s.do(http.MethodPut, "/api/feedback/request/"+id, manager.Token, map[string]string{"status": "approved"})
	expectStatus(t, resp, http.StatusOK)
	resolved := decode[map[string]any](t, resp)
	if _, ok := resolved["requester_id"]; ok {
		t.Fatalf("resolve response leaked requester_id: %v", resolved)
	}
	if resolved["requester_name"] != workflow.AnonymousName || resolved["status"] != "approved" {
		t.Fatalf("resolve response = %v", resolved)
	}

	resp = s.do(http.MethodPut, "/api/feedback/request/"+id, manager.Token, map[string]string{"status": "declined"})
	expectStatus(t, resp, http.StatusBadRequest)
	if body := decode[map[string]string](t, resp); body["code"] != "invalid_transition" {
		t.Fatalf("code = %q", body["code"])
	}
}

func TestCommentsAndTags(t *testing.T) {
	s := newServer(t)
	manager, employee := s.team()
	resp := s.do(http.MethodPost, "/api/feedback", manager.Token, map[string]any{
		"employee_id":  employee.ID,
		"strengths":    "a",
		"improvements": "b",
		"sentiment":    "neutral",
	})
	expectStatus(t, resp, http.StatusCreated)
	id := decode[workflow.FeedbackView](t, resp).ID.Hex()

	expectStatus(t, s.do(http.MethodPost, "/api/comments", employee.Token, map[string]string{
		"feedback_id": id, "text": "**Thanks**",
	}), http.StatusCreated)
	expectStatus(t, s.do(http.MethodPost, "/api/comments", employee.Token, map[string]string{
		"feedback_id": id, "text": "  ",
	}), http.StatusBadRequest)

	resp = s.do(http.MethodGet, "/api/comments/"+id, manager.Token, nil)
	expectStatus(t, resp, http.StatusOK)
	comments := decode[[]workflow.CommentView](t, resp)
	if len(comments) != 1 || comments[0].UserName != "eli" {
		t.Fatalf("comments = %+v", comments)
	}

	resp = s.do(http.MethodPost, "/api/feedback/tags", employee.Token, map[string]string{"feedback_id": id, "tag_name": "Growth"})
	expectStatus(t, resp, http.StatusCreated)
	tag := decode[models.Tag](t, resp)
	expectStatus(t, s.do(http.MethodPost, "/api/feedback/tags", manager.Token, map[string]string{"feedback_id": id, "tag_name": "growth"}), http.StatusConflict)

	resp = s.do(http.MethodGet, "/api/feedback/tags", employee.Token, nil)
	expectStatus(t, resp, http.StatusOK)
	if suggested := decode[[]string](t, resp); len(suggested) == 0 {
		t.Fatalf("no suggested tags")
	}

	expectStatus(t, s.do(http.MethodDelete, "/api/feedback/tags/"+tag.ID.Hex(), manager.Token, nil), http.StatusOK)
	resp = s.do(http.MethodGet, "/api/feedback/tags/"+id, employee.Token, nil)
	expectStatus(t, resp, http.StatusOK)
	if tags := decode[[]models.Tag](t, resp); len(tags) != 0 {
		t.Fatalf("tags after delete = %+v", tags)
	}
}

func TestExportFeedback(t *testing.T) {
	s := newServer(t)
	manager, employee := s.team()
	resp := s.do(http.MethodPost, "/api/feedback", manager.Token, map[string]any{
		"employee_id":  employee.ID,
		"strengths":    "Calm under pressure",
		"improvements": "Delegate more",
		"sentiment":    "positive",
	})
	expectStatus(t, resp, http.StatusCreated)
	id := decode[workflow.FeedbackView](t, resp).ID.Hex()

	resp = s.do(http.MethodGet, "/api/feedback/export/"+id, employee.Token, nil)
	expectStatus(t, resp, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content type = %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "feedback_"+id+".pdf") {
		t.Fatalf("content disposition = %q", cd)
	}
	var body bytes.Buffer
	body.ReadFrom(resp.Body)
	if !strings.HasPrefix(body.String(), "%PDF-") || !strings.Contains(body.String(), "Calm under pressure") {
		t.Fatalf("export body missing strengths:\n%s", body.String())
	}
}

func TestTeamAndDirectory(t *testing.T) {
	s := newServer(t)
	manager, employee := s.team()
	loner := s.signUp("lena", models.RoleEmployee)

	resp := s.do(http.MethodGet, "/api/team/members/"+manager.ID, manager.Token, nil)
	expectStatus(t, resp, http.StatusOK)
	available := decode[[]models.UserSummary](t, resp)
	if len(available) != 1 || available[0].ID.Hex() != loner.ID {
		t.Fatalf("available = %+v", available)
	}

	resp = s.do(http.MethodGet, "/api/team", manager.Token, nil)
	expectStatus(t, resp, http.StatusOK)
	if team := decode[[]models.UserSummary](t, resp); len(team) != 1 || team[0].ID.Hex() != employee.ID {
		t.Fatalf("team = %+v", team)
	}

	resp = s.do(http.MethodGet, "/api/users?role=Manager", employee.Token, nil)
	expectStatus(t, resp, http.StatusOK)
	if managers := decode[[]models.UserSummary](t, resp); len(managers) != 1 {
		t.Fatalf("managers = %+v", managers)
	}

	expectStatus(t, s.do(http.MethodGet, "/api/user/"+employee.ID, manager.Token, nil), http.StatusOK)
	expectStatus(t, s.do(http.MethodDelete, "/api/team", manager.Token, map[string]string{"employee_id": employee.ID}), http.StatusOK)
}
