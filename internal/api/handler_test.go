package api

import (
	"bytes"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hanatore/api/internal/evaluate"
	"github.com/hanatore/api/internal/identity"
	"github.com/hanatore/api/internal/league"
	"github.com/hanatore/api/internal/question"
	"github.com/hanatore/api/internal/store"
	"github.com/hanatore/api/internal/training"
)

const testAnonID = "anon_0123456789abcdef0123456789abcdef"

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()

	repo := store.NewMemory()
	catalog := question.Default()
	gateway := evaluate.NewGateway(nil, evaluate.NewHeuristic(evaluate.DefaultLexicons()))
	base := NewHandler(repo)

	r := chi.NewRouter()
	r.Use(identity.Middleware(repo, true))
	base.RegisterRoutes(r)
	NewTrainingHandler(base, training.NewService(repo, catalog, gateway, nil)).RegisterRoutes(r)
	NewQuestionHandler(base, catalog).RegisterRoutes(r)
	NewLeagueHandler(base, league.NewService(repo, nil, rand.New(rand.NewSource(1)))).RegisterRoutes(r)
	NewUserHandler(base).RegisterRoutes(r)
	NewAIHandler(base, gateway, false, "").RegisterRoutes(r)
	return r
}

func doRequest(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.AddCookie(&http.Cookie{Name: identity.AnonCookieName, Value: testAnonID})
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

const prepAnswer = "結論から言うと、このプランが最適です。理由は、コストを20パーセント削減できるからです。具体的には、過去30件の導入事例で同様の効果が確認されています。なぜなら自動化により作業時間が減るためです。したがって、このプランを推奨します。"

func TestRootReportsIdentity(t *testing.T) {
	r := newTestRouter(t)

	rec := doRequest(t, r, http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["name"] != "Hanatore API" || body["version"] != "1.0.0" || body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestSubscriptionStatus(t *testing.T) {
	r := newTestRouter(t)

	rec := doRequest(t, r, http.MethodGet, "/api/subscription/status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["plan"] != "free" || body["status"] != "active" {
		t.Errorf("body = %v", body)
	}
}

func TestIdentityCookieIssuedOnFirstContact(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var issued *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == identity.AnonCookieName {
			issued = c
		}
	}
	if issued == nil {
		t.Fatal("no anonymous id cookie issued")
	}
	if !strings.HasPrefix(issued.Value, "anon_") || !issued.HttpOnly {
		t.Errorf("cookie = %+v", issued)
	}
}

func TestTrainingLifecycle(t *testing.T) {
	r := newTestRouter(t)

	rec := doRequest(t, r, http.MethodPost, "/api/training/start", map[string]string{
		"mode": "BUSINESS", "trainingType": "STRUCTURED",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("start status = %d: %s", rec.Code, rec.Body.String())
	}
	started := decodeBody(t, rec)
	sessionID, _ := started["sessionId"].(string)
	if sessionID == "" {
		t.Fatalf("start body = %v", started)
	}

	rec = doRequest(t, r, http.MethodPost, "/api/training/answer", map[string]interface{}{
		"sessionId": sessionID, "questionId": "q-001", "content": prepAnswer, "timeSpentSeconds": 60,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("answer status = %d: %s", rec.Code, rec.Body.String())
	}
	answered := decodeBody(t, rec)
	if answered["answerId"] == "" || answered["answerId"] == nil {
		t.Errorf("answer body = %v", answered)
	}
	if score, ok := answered["score"].(float64); !ok || score <= 0 {
		t.Errorf("score = %v", answered["score"])
	}
	if xp, ok := answered["xpEarned"].(float64); !ok || xp <= 0 {
		t.Errorf("xpEarned = %v", answered["xpEarned"])
	}
	if _, ok := answered["scoreDetail"].(map[string]interface{}); !ok {
		t.Errorf("scoreDetail = %v", answered["scoreDetail"])
	}

	rec = doRequest(t, r, http.MethodPost, "/api/training/complete", map[string]string{"sessionId": sessionID})
	if rec.Code != http.StatusOK {
		t.Fatalf("complete status = %d: %s", rec.Code, rec.Body.String())
	}
	completed := decodeBody(t, rec)
	summary, ok := completed["summary"].(map[string]interface{})
	if !ok {
		t.Fatalf("complete body = %v", completed)
	}
	if summary["questionsCount"] != float64(1) {
		t.Errorf("summary = %v", summary)
	}

	// A completed session rejects further answers with the stable code.
	rec = doRequest(t, r, http.MethodPost, "/api/training/answer", map[string]interface{}{
		"sessionId": sessionID, "questionId": "q-001", "content": prepAnswer,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("answer after complete status = %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != CodeSessionCompleted {
		t.Errorf("error = %v", body["error"])
	}

	rec = doRequest(t, r, http.MethodGet, "/api/training/history", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("history status = %d", rec.Code)
	}
	history := decodeBody(t, rec)
	if history["total"] != float64(1) || history["hasMore"] != false {
		t.Errorf("history = %v", history)
	}

	rec = doRequest(t, r, http.MethodGet, "/api/training/session/"+sessionID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("detail status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), prepAnswer) {
		t.Error("session detail leaked answer content")
	}
	detail := decodeBody(t, rec)
	answers, ok := detail["answers"].([]interface{})
	if !ok || len(answers) != 1 {
		t.Fatalf("answers = %v", detail["answers"])
	}
	first := answers[0].(map[string]interface{})
	if _, present := first["content"]; present {
		t.Error("answer detail includes content")
	}
	if _, present := first["improvements"]; present {
		t.Error("answer detail includes improvements")
	}
}

func TestTrainingErrorEnvelopes(t *testing.T) {
	r := newTestRouter(t)

	rec := doRequest(t, r, http.MethodPost, "/api/training/start", map[string]string{
		"mode": "SPEEDRUN", "trainingType": "STRUCTURED",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad mode status = %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != CodeValidation {
		t.Errorf("bad mode error = %v", body["error"])
	}

	rec = doRequest(t, r, http.MethodPost, "/api/training/answer", map[string]string{
		"sessionId": "missing", "questionId": "q-001", "content": "回答",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing session status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != CodeNotFound || body["message"] != "Session not found" {
		t.Errorf("missing session body = %v", body)
	}

	rec = doRequest(t, r, http.MethodPost, "/api/training/start", map[string]string{
		"mode": "BUSINESS", "trainingType": "QUICK",
	})
	sessionID := decodeBody(t, rec)["sessionId"].(string)
	rec = doRequest(t, r, http.MethodPost, "/api/training/complete", map[string]string{"sessionId": sessionID})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty complete status = %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != CodeNoAnswers {
		t.Errorf("empty complete error = %v", body["error"])
	}

	rec = doRequest(t, r, http.MethodGet, "/api/training/session/unknown", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown detail status = %d", rec.Code)
	}
}

func TestQuestionsNeverExposeSampleAnswers(t *testing.T) {
	r := newTestRouter(t)

	for _, path := range []string{"/api/questions", "/api/questions/daily", "/api/questions/q-001"} {
		rec := doRequest(t, r, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, rec.Code)
		}
		if strings.Contains(rec.Body.String(), "sampleAnswer") {
			t.Errorf("%s leaked sampleAnswer", path)
		}
	}
}

func TestQuestionsListValidation(t *testing.T) {
	r := newTestRouter(t)

	rec := doRequest(t, r, http.MethodGet, "/api/questions?mode=BUSINESS&limit=3", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	questions := body["questions"].([]interface{})
	if len(questions) > 3 {
		t.Errorf("limit ignored, got %d questions", len(questions))
	}
	for _, q := range questions {
		if q.(map[string]interface{})["mode"] != "BUSINESS" {
			t.Errorf("mode filter ignored: %v", q)
		}
	}

	rec = doRequest(t, r, http.MethodGet, "/api/questions?mode=INVALID", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid mode status = %d", rec.Code)
	}

	rec = doRequest(t, r, http.MethodGet, "/api/questions/q-999", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown question status = %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != CodeNotFound {
		t.Errorf("unknown question error = %v", body["error"])
	}
}

func TestLeagueEndpoints(t *testing.T) {
	r := newTestRouter(t)

	rec := doRequest(t, r, http.MethodGet, "/api/league/current", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("current status = %d: %s", rec.Code, rec.Body.String())
	}
	current := decodeBody(t, rec)
	if current["leagueId"] == "" || current["totalParticipants"] != float64(20) {
		t.Errorf("current = %v", current)
	}
	if current["tier"] != "BRONZE" && current["tier"] != "SILVER" && current["tier"] != "GOLD" {
		t.Errorf("tier = %v", current["tier"])
	}

	rec = doRequest(t, r, http.MethodGet, "/api/league/ranking?limit=5", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("ranking status = %d", rec.Code)
	}
	page := decodeBody(t, rec)
	ranking := page["ranking"].([]interface{})
	if len(ranking) != 5 {
		t.Errorf("ranking length = %d, want 5", len(ranking))
	}
	top := ranking[0].(map[string]interface{})
	if top["rank"] != float64(1) || top["displayName"] == "" {
		t.Errorf("top entry = %v", top)
	}

	rec = doRequest(t, r, http.MethodGet, "/api/league/history", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("history status = %d", rec.Code)
	}
	history := decodeBody(t, rec)
	if history["totalWeeks"] != float64(0) {
		t.Errorf("history = %v", history)
	}
	if _, ok := history["history"].([]interface{}); !ok {
		t.Errorf("history list = %v", history["history"])
	}
}

func TestUserProfile(t *testing.T) {
	r := newTestRouter(t)

	rec := doRequest(t, r, http.MethodGet, "/api/users/me", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d", rec.Code)
	}
	me := decodeBody(t, rec)
	if me["displayName"] != "トレーニーcdef" {
		t.Errorf("displayName = %v", me["displayName"])
	}
	if me["level"] != float64(1) || me["totalXp"] != float64(0) {
		t.Errorf("me = %v", me)
	}
	if _, ok := me["preferredModes"].([]interface{}); !ok {
		t.Errorf("preferredModes = %v", me["preferredModes"])
	}

	rec = doRequest(t, r, http.MethodPatch, "/api/users/me", map[string]interface{}{
		"displayName": "練習の達人", "preferredModes": []string{"THINKING"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status = %d: %s", rec.Code, rec.Body.String())
	}
	updated := decodeBody(t, rec)
	if updated["displayName"] != "練習の達人" {
		t.Errorf("updated displayName = %v", updated["displayName"])
	}
	modes := updated["preferredModes"].([]interface{})
	if len(modes) != 1 || modes[0] != "THINKING" {
		t.Errorf("updated modes = %v", modes)
	}

	rec = doRequest(t, r, http.MethodPatch, "/api/users/me", map[string]string{
		"displayName": strings.Repeat("あ", 51),
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("long name status = %d", rec.Code)
	}

	rec = doRequest(t, r, http.MethodPatch, "/api/users/me", map[string]interface{}{
		"preferredModes": []string{"COOKING"},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad mode status = %d", rec.Code)
	}
}

func TestUserProgress(t *testing.T) {
	r := newTestRouter(t)

	rec := doRequest(t, r, http.MethodGet, "/api/users/me/progress", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("progress status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["level"] != float64(1) || body["todayCompleted"] != false {
		t.Errorf("progress = %v", body)
	}

	// Completing a session flips the same-day flag and banks XP.
	rec = doRequest(t, r, http.MethodPost, "/api/training/start", map[string]string{
		"mode": "THINKING", "trainingType": "QUICK",
	})
	sessionID := decodeBody(t, rec)["sessionId"].(string)
	doRequest(t, r, http.MethodPost, "/api/training/answer", map[string]interface{}{
		"sessionId": sessionID, "questionId": "q-001", "content": prepAnswer,
	})
	doRequest(t, r, http.MethodPost, "/api/training/complete", map[string]string{"sessionId": sessionID})

	rec = doRequest(t, r, http.MethodGet, "/api/users/me/progress", nil)
	body = decodeBody(t, rec)
	if body["todayCompleted"] != true {
		t.Errorf("todayCompleted = %v after completed session", body["todayCompleted"])
	}
	if body["totalXp"] == float64(0) {
		t.Error("totalXp not updated after completed session")
	}
	if body["currentStreak"] != float64(1) {
		t.Errorf("currentStreak = %v, want 1", body["currentStreak"])
	}
}

func TestAIEndpoints(t *testing.T) {
	r := newTestRouter(t)

	rec := doRequest(t, r, http.MethodGet, "/api/ai/status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["available"] != false {
		t.Errorf("available = %v", body["available"])
	}

	// The heuristic fallback scores every request, even an empty one.
	rec = doRequest(t, r, http.MethodPost, "/api/ai/evaluate", map[string]interface{}{
		"question": "お題", "answer": prepAnswer, "method": "PREP", "mode": "BUSINESS", "difficulty": 2,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("evaluate status = %d: %s", rec.Code, rec.Body.String())
	}
	result := decodeBody(t, rec)
	if score, ok := result["score"].(float64); !ok || score <= 0 {
		t.Errorf("score = %v", result["score"])
	}
	if result["feedback"] == "" {
		t.Error("empty feedback")
	}
}

func TestInvalidJSONBody(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/training/start", strings.NewReader("{not json"))
	req.AddCookie(&http.Cookie{Name: identity.AnonCookieName, Value: testAnonID})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != CodeValidation {
		t.Errorf("error = %v", body["error"])
	}
}
