package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"hangout/internal/application"
	"hangout/internal/infrastructure/i18n"
	"hangout/internal/infrastructure/idgen"
	"hangout/internal/infrastructure/memory"
)

const testSecret = "test-secret"

type apiHarness struct {
	router *gin.Engine
	store  *memory.Store
}

func newAPIHarness(t *testing.T) *apiHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()
	translator := i18n.NewTranslator("en", logger)
	engine := application.NewEngine(application.Deps{
		Hangouts:    store,
		Profiles:    store.Profiles(),
		Guests:      store.Guests(),
		Memberships: store.Memberships(),
		Options:     store,
		Votes:       store.Votes(),
		Invites:     store,
		Tx:          store,
		Notifier:    store,
		Translator:  translator,
		Clock:       memory.NewClock(time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)),
		IDs:         idgen.UUIDGenerator{},
		Tokens:      idgen.TokenGenerator{},
		LinkBaseURL: "https://hangout.test",
		Logger:      logger,
	})
	srv := New(engine.UseCases(), Options{
		JWTSecret: testSecret,
		Messages:  translator,
		Logger:    logger,
	})
	return &apiHarness{router: srv.Router(), store: store}
}

func signToken(t *testing.T, subject, name string) string {
	t.Helper()
	claims := AuthClaims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + signed
}

func (h *apiHarness) do(t *testing.T, method, path, auth string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func TestHangoutFlowOverHTTP(t *testing.T) {
	h := newAPIHarness(t)
	alice := signToken(t, "discord:alice", "Alice")

	rec := h.do(t, http.MethodPost, "/api/hangouts", alice, map[string]any{"title": "Friday night", "consensus_threshold": 60})
	expectStatus(t, rec, http.StatusCreated)
	hg := decode[hangoutJSON](t, rec)
	if hg.Status != "PLANNING" || hg.Creator.Kind != "registered" {
		t.Fatalf("unexpected hangout: %+v", hg)
	}
	base := "/api/hangouts/" + hg.ID

	rec = h.do(t, http.MethodPost, base+"/options", alice, map[string]any{"activity_ref": "activity:bowling", "display_name": "Bowling"})
	expectStatus(t, rec, http.StatusCreated)
	bowling := decode[optionJSON](t, rec)
	rec = h.do(t, http.MethodPost, base+"/options", alice, map[string]any{"activity_ref": "activity:museum", "display_name": "Museum"})
	expectStatus(t, rec, http.StatusCreated)

	rec = h.do(t, http.MethodPost, base+"/invite", alice, nil)
	expectStatus(t, rec, http.StatusOK)
	invite := decode[map[string]string](t, rec)["token"]

	joinPath := "/api/invites/" + invite + "/guests"
	rec = h.do(t, http.MethodPost, joinPath, "", map[string]any{"display_name": "Gus", "rsvp": "going"}, idempotencyHeader, "device-1")
	expectStatus(t, rec, http.StatusCreated)
	first := decode[map[string]any](t, rec)
	rec = h.do(t, http.MethodPost, joinPath, "", map[string]any{"display_name": "Gus", "rsvp": "going"}, idempotencyHeader, "device-1")
	expectStatus(t, rec, http.StatusOK)
	replay := decode[map[string]any](t, rec)
	if first["guest_id"] != replay["guest_id"] || first["token"] != replay["token"] {
		t.Fatalf("replayed join returned a different guest: %v vs %v", first, replay)
	}
	guest := "Guest " + first["token"].(string)

	rec = h.do(t, http.MethodPut, "/api/options/"+bowling.ID+"/vote", guest, map[string]any{"value": 1})
	expectStatus(t, rec, http.StatusNoContent)

	rec = h.do(t, http.MethodPost, base+"/voting", alice, nil)
	expectStatus(t, rec, http.StatusOK)

	rec = h.do(t, http.MethodGet, base+"/status", guest, nil)
	expectStatus(t, rec, http.StatusOK)
	st := decode[statusJSON](t, rec)
	if len(st.Members) != 2 || len(st.Options) != 2 || st.Rsvp.Going != 2 {
		t.Fatalf("unexpected status: %+v", st)
	}
	if st.Options[0].Score == nil || *st.Options[0].Score != 1 || len(st.Options[0].Ballots) != 1 {
		t.Fatalf("expected one ballot on bowling: %+v", st.Options[0])
	}

	rec = h.do(t, http.MethodPost, base+"/end-voting", alice, nil)
	expectStatus(t, rec, http.StatusOK)
	res := decode[resolutionJSON](t, rec)
	if res.Outcome != "RESOLVED" || res.Winner == nil || res.Winner.ActivityRef != "activity:bowling" {
		t.Fatalf("unexpected resolution: %+v", res)
	}
	if res.Hangout.Status != "CONFIRMED" || res.Hangout.FinalOptionID != "activity:bowling" {
		t.Fatalf("hangout not confirmed: %+v", res.Hangout)
	}

	rec = h.do(t, http.MethodPost, base+"/end-voting", alice, nil)
	expectStatus(t, rec, http.StatusOK)
	if again := decode[resolutionJSON](t, rec); again.Outcome != "ALREADY_RESOLVED" {
		t.Fatalf("expected ALREADY_RESOLVED, got %s", again.Outcome)
	}

	if n := len(h.store.Notifications()); n != 1 {
		t.Fatalf("expected the guest to be notified once, got %d", n)
	}
}

func TestAuthentication(t *testing.T) {
	h := newAPIHarness(t)

	expectStatus(t, h.do(t, http.MethodGet, "/api/me", "", nil), http.StatusUnauthorized)
	expectStatus(t, h.do(t, http.MethodGet, "/api/me", "Bearer not-a-jwt", nil), http.StatusUnauthorized)
	expectStatus(t, h.do(t, http.MethodGet, "/api/me", "Basic abc", nil), http.StatusUnauthorized)

	rec := h.do(t, http.MethodGet, "/api/me", "Guest unknown", nil)
	expectStatus(t, rec, http.StatusUnauthorized)
	if body := decode[errorBody](t, rec); body.Code != "invalid_token" {
		t.Fatalf("expected invalid_token, got %+v", body)
	}

	forged, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "discord:mallory"},
	}).SignedString([]byte("other-secret"))
	expectStatus(t, h.do(t, http.MethodGet, "/api/me", "Bearer "+forged, nil), http.StatusUnauthorized)

	rec = h.do(t, http.MethodGet, "/api/me", signToken(t, "discord:alice", "Alice"), nil)
	expectStatus(t, rec, http.StatusOK)
	if me := decode[map[string]any](t, rec); me["display_name"] != "Alice" {
		t.Fatalf("unexpected profile: %v", me)
	}
}

func TestDomainErrorsMapToStatusAndLocalizedMessage(t *testing.T) {
	h := newAPIHarness(t)
	alice := signToken(t, "discord:alice", "Alice")
	bob := signToken(t, "discord:bob", "Bob")

	rec := h.do(t, http.MethodGet, "/api/hangouts/missing/status", alice, nil)
	expectStatus(t, rec, http.StatusNotFound)
	if body := decode[errorBody](t, rec); body.Code != "hangout_not_found" {
		t.Fatalf("unexpected body: %+v", body)
	}

	rec = h.do(t, http.MethodPost, "/api/hangouts", alice, map[string]any{"title": "Picnic"})
	expectStatus(t, rec, http.StatusCreated)
	hg := decode[hangoutJSON](t, rec)

	rec = h.do(t, http.MethodPost, "/api/hangouts/"+hg.ID+"/end-voting", bob, nil, "Accept-Language", "fr-FR,fr;q=0.9")
	expectStatus(t, rec, http.StatusForbidden)
	body := decode[errorBody](t, rec)
	if body.Code != "not_creator" || body.Message != "Seul l'organisateur peut faire cela." {
		t.Fatalf("expected French not_creator message, got %+v", body)
	}

	rec = h.do(t, http.MethodPut, "/api/hangouts/"+hg.ID+"/rsvp", alice, map[string]any{"status": "perhaps"})
	expectStatus(t, rec, http.StatusBadRequest)
	if body := decode[errorBody](t, rec); body.Code != "invalid_rsvp" {
		t.Fatalf("unexpected body: %+v", body)
	}

	rec = h.do(t, http.MethodPost, "/api/hangouts/"+hg.ID+"/voting", alice, nil)
	expectStatus(t, rec, http.StatusOK)
	rec = h.do(t, http.MethodPost, "/api/hangouts/"+hg.ID+"/end-voting", alice, nil)
	expectStatus(t, rec, http.StatusUnprocessableEntity)

	expectStatus(t, h.do(t, http.MethodPost, "/api/hangouts", alice, map[string]any{}), http.StatusBadRequest)
}

func TestGuestsCannotUseRegisteredOnlyRoutes(t *testing.T) {
	h := newAPIHarness(t)
	alice := signToken(t, "discord:alice", "Alice")

	rec := h.do(t, http.MethodPost, "/api/hangouts", alice, map[string]any{"title": "Picnic"})
	expectStatus(t, rec, http.StatusCreated)
	hg := decode[hangoutJSON](t, rec)
	rec = h.do(t, http.MethodPost, "/api/hangouts/"+hg.ID+"/invite", alice, nil)
	invite := decode[map[string]string](t, rec)["token"]
	rec = h.do(t, http.MethodPost, "/api/invites/"+invite+"/guests", "", map[string]any{"display_name": "Gus"})
	expectStatus(t, rec, http.StatusCreated)
	joined := decode[map[string]any](t, rec)
	guest := "Guest " + joined["token"].(string)

	expectStatus(t, h.do(t, http.MethodPost, "/api/hangouts", guest, map[string]any{"title": "Mine"}), http.StatusForbidden)

	bob := signToken(t, "discord:bob", "Bob")
	rec = h.do(t, http.MethodPost, "/api/guests/upgrade", bob, map[string]any{"guest_token": joined["token"]})
	expectStatus(t, rec, http.StatusOK)

	rec = h.do(t, http.MethodGet, "/api/me", guest, nil)
	expectStatus(t, rec, http.StatusOK)
	if me := decode[map[string]any](t, rec); me["display_name"] != "Bob" {
		t.Fatalf("upgraded guest token should resolve to Bob, got %v", me)
	}

	rec = h.do(t, http.MethodPost, "/api/invites/"+invite+"/guests/"+joined["guest_id"].(string)+"/claim", "", nil)
	expectStatus(t, rec, http.StatusNotFound)
}

func TestNonMembersCannotReadHangoutOrClaimGuests(t *testing.T) {
	h := newAPIHarness(t)
	alice := signToken(t, "discord:alice", "Alice")
	mallory := signToken(t, "discord:mallory", "Mallory")

	rec := h.do(t, http.MethodPost, "/api/hangouts", alice, map[string]any{"title": "Picnic"})
	expectStatus(t, rec, http.StatusCreated)
	hg := decode[hangoutJSON](t, rec)
	base := "/api/hangouts/" + hg.ID
	rec = h.do(t, http.MethodPost, base+"/invite", alice, nil)
	invite := decode[map[string]string](t, rec)["token"]
	rec = h.do(t, http.MethodPost, "/api/invites/"+invite+"/guests", "", map[string]any{"display_name": "Gus"})
	expectStatus(t, rec, http.StatusCreated)
	joined := decode[map[string]any](t, rec)
	guestID := joined["guest_id"].(string)

	for _, path := range []string{base, base + "/status", base + "/options", base + "/time-options", base + "/tally", base + "/rsvp", base + "/members"} {
		rec := h.do(t, http.MethodGet, path, mallory, nil)
		expectStatus(t, rec, http.StatusForbidden)
		if body := decode[errorBody](t, rec); body.Code != "not_a_member" {
			t.Fatalf("%s: unexpected body %+v", path, body)
		}
	}
	expectStatus(t, h.do(t, http.MethodGet, base+"/status", alice, nil), http.StatusOK)

	// The old hangout-scoped claim route no longer exists.
	expectStatus(t, h.do(t, http.MethodPost, base+"/guests/"+guestID+"/claim", "", nil), http.StatusNotFound)

	rec = h.do(t, http.MethodPost, "/api/invites/not-the-invite/guests/"+guestID+"/claim", "", nil)
	expectStatus(t, rec, http.StatusUnauthorized)
	if body := decode[errorBody](t, rec); body.Code != "invalid_token" {
		t.Fatalf("unexpected body: %+v", body)
	}

	rec = h.do(t, http.MethodPost, "/api/invites/"+invite+"/guests/"+guestID+"/claim", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if got := decode[map[string]string](t, rec)["token"]; got != joined["token"] {
		t.Fatalf("invite holder should recover the guest token")
	}
}
