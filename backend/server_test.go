package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ellavondegurechaff/gohye-trades/backend/config"
	"github.com/ellavondegurechaff/gohye-trades/backend/handlers"
	webmodels "github.com/ellavondegurechaff/gohye-trades/backend/models"
	webservices "github.com/ellavondegurechaff/gohye-trades/backend/services"
	"github.com/ellavondegurechaff/gohye-trades/internal/domain/notifications"
	"github.com/ellavondegurechaff/gohye-trades/internal/domain/trades"
)

const testSessionKey = "server-test-key"

type fakeTrades struct {
	err      error
	trade    *trades.Trade
	list     []*trades.Trade
	lastCall string
	caller   trades.Caller
	accept   bool
}

func (f *fakeTrades) result(call string, caller trades.Caller) (*trades.Trade, error) {
	f.lastCall, f.caller = call, caller
	if f.err != nil {
		return nil, f.err
	}
	return f.trade, nil
}

func (f *fakeTrades) Propose(_ context.Context, caller trades.Caller, _ string, _, _ []string) (*trades.Trade, error) {
	return f.result("propose", caller)
}

func (f *fakeTrades) Respond(_ context.Context, caller trades.Caller, _ string, accept bool) (*trades.Trade, error) {
	f.accept = accept
	return f.result("respond", caller)
}

func (f *fakeTrades) Cancel(_ context.Context, caller trades.Caller, _ string) (*trades.Trade, error) {
	return f.result("cancel", caller)
}

func (f *fakeTrades) Get(_ context.Context, caller trades.Caller, _ string) (*trades.Trade, error) {
	return f.result("get", caller)
}

func (f *fakeTrades) ListForParty(_ context.Context, caller trades.Caller) ([]*trades.Trade, error) {
	f.lastCall, f.caller = "list", caller
	return f.list, f.err
}

func (f *fakeTrades) ListPending(_ context.Context, caller trades.Caller) ([]*trades.Trade, error) {
	f.lastCall, f.caller = "pending", caller
	return f.list, f.err
}

type fakeInbox struct {
	list    []*notifications.Notification
	filter  notifications.ListFilter
	markErr error
	deleted string
}

func (f *fakeInbox) List(_ context.Context, _ string, filter notifications.ListFilter) ([]*notifications.Notification, error) {
	f.filter = filter
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, notifications.ErrUnknownKind
	}
	return f.list, nil
}

func (f *fakeInbox) Get(_ context.Context, id, recipientID string) (*notifications.Notification, error) {
	for _, n := range f.list {
		if n.ID == id && n.RecipientID == recipientID {
			return n, nil
		}
	}
	return nil, notifications.ErrNotFound
}

func (f *fakeInbox) Delete(_ context.Context, id, recipientID string) error {
	if _, err := f.Get(context.Background(), id, recipientID); err != nil {
		return err
	}
	f.deleted = id
	return nil
}

func (f *fakeInbox) UnreadCount(context.Context, string) (int, error) {
	return len(f.list), nil
}

func (f *fakeInbox) MarkRead(context.Context, string, string) error {
	return f.markErr
}

func (f *fakeInbox) MarkAllRead(context.Context, string) (int, error) {
	return len(f.list), nil
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code     string         `json:"code"`
		Message  string         `json:"message"`
		Category string         `json:"category"`
		Details  map[string]any `json:"details"`
	} `json:"error"`
}

func newTestServer(t *testing.T, tr *fakeTrades, inbox *fakeInbox, proposeLimit int) *Server {
	t.Helper()
	cfg := config.DefaultWebConfig()
	cfg.SessionKey = testSessionKey
	cfg.ProposeLimit = proposeLimit

	return NewServer(&handlers.WebApp{
		Trades:         tr,
		Inbox:          inbox,
		DB:             fakePinger{},
		SessionService: webservices.NewSessionService(testSessionKey),
		Version:        "test",
	}, cfg)
}

func sessionToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := webservices.NewSessionService(testSessionKey).Encode(&webmodels.UserSession{
		DiscordID: userID,
		Username:  userID,
		ExpiresAt: time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	return token
}

func do(t *testing.T, s *Server, method, path, body, userID string) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("Authorization", "Session "+sessionToken(t, userID))
	}

	resp, err := s.App().Test(req)
	if err != nil {
		t.Fatalf("app.Test(%s %s) error = %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &env)
	return resp, env
}

func pendingTrade() *trades.Trade {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &trades.Trade{
		ID:             "trade-1",
		InitiatorID:    "alice",
		ReceiverID:     "bob",
		InitiatorItems: []string{"c1"},
		ReceiverItems:  nil,
		Status:         trades.StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestServer_RequiresSession(t *testing.T) {
	s := newTestServer(t, &fakeTrades{}, &fakeInbox{}, 0)

	resp, env := do(t, s, "GET", "/api/trades", "", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	if env.Error == nil || env.Error.Code != "UNAUTHORIZED" {
		t.Errorf("error = %+v, want UNAUTHORIZED", env.Error)
	}
}

func TestServer_Propose(t *testing.T) {
	tr := &fakeTrades{trade: pendingTrade()}
	s := newTestServer(t, tr, &fakeInbox{}, 0)

	resp, env := do(t, s, "POST", "/api/trades", `{"receiverId":"bob","initiatorCardIds":["c1"],"receiverCardIds":[]}`, "alice")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	if tr.caller.ID != "alice" {
		t.Errorf("caller = %q, want alice", tr.caller.ID)
	}

	var data webmodels.TradeEnvelope
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Trade.ID != "trade-1" || data.Trade.Status != "pending" || data.Trade.RespondedAt != nil {
		t.Errorf("trade = %+v", data.Trade)
	}
	if data.Trade.ReceiverCardIDs == nil {
		t.Errorf("receiverCardIds should encode as an empty list")
	}
}

func TestServer_RequestValidation(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		field  string
	}{
		{name: "Missing receiver", method: "POST", path: "/api/trades", body: `{"initiatorCardIds":["c1"]}`, field: "receiverId"},
		{name: "Missing decision", method: "PATCH", path: "/api/trades/trade-1/respond", body: `{}`, field: "accept"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &fakeTrades{trade: pendingTrade()}
			s := newTestServer(t, tr, &fakeInbox{}, 0)

			resp, env := do(t, s, tt.method, tt.path, tt.body, "bob")
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
			if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
				t.Fatalf("error = %+v, want VALIDATION_ERROR", env.Error)
			}
			if _, ok := env.Error.Details[tt.field]; !ok {
				t.Errorf("details = %v, want %s", env.Error.Details, tt.field)
			}
			if tr.lastCall != "" {
				t.Errorf("engine was called with an invalid request")
			}
		})
	}
}

func TestServer_RespondPassesDecision(t *testing.T) {
	accepted := pendingTrade()
	accepted.Status = trades.StatusAccepted
	tr := &fakeTrades{trade: accepted}
	s := newTestServer(t, tr, &fakeInbox{}, 0)

	resp, env := do(t, s, "PATCH", "/api/trades/trade-1/respond", `{"accept":true}`, "bob")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !tr.accept || tr.lastCall != "respond" {
		t.Errorf("respond called = %q accept = %v", tr.lastCall, tr.accept)
	}
	if env.Message != "Trade accepted" {
		t.Errorf("message = %q", env.Message)
	}
}

func TestServer_TradeErrorEnvelope(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
		wantMeta   map[string]any
	}{
		{
			name:       "Not found",
			err:        &trades.Error{Kind: trades.ErrNotFound, Msg: "trade not found", TradeID: "trade-1"},
			wantStatus: http.StatusNotFound,
			wantCode:   "TRADE_NOT_FOUND",
			wantMsg:    "trade not found",
			wantMeta:   map[string]any{"trade_id": "trade-1"},
		},
		{
			name:       "Forbidden",
			err:        &trades.Error{Kind: trades.ErrPermissionDenied, Msg: "only the trade receiver can respond to this trade"},
			wantStatus: http.StatusForbidden,
			wantCode:   "TRADE_FORBIDDEN",
			wantMsg:    "only the trade receiver can respond to this trade",
		},
		{
			name:       "Bad input",
			err:        &trades.Error{Kind: trades.ErrInvalidArgument, Msg: "cannot trade with yourself"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "TRADE_BAD_INPUT",
			wantMsg:    "cannot trade with yourself",
		},
		{
			name:       "Invalid state",
			err:        &trades.Error{Kind: trades.ErrInvalidState, Msg: "trade trade-1 is already accepted", TradeID: "trade-1", Status: trades.StatusAccepted},
			wantStatus: http.StatusConflict,
			wantCode:   "TRADE_INVALID_STATE",
			wantMsg:    "trade trade-1 is already accepted",
			wantMeta:   map[string]any{"trade_id": "trade-1", "status": "accepted"},
		},
		{
			name:       "Conflict",
			err:        &trades.Error{Kind: trades.ErrConflict, Msg: "ownership changed", InstanceID: "c1"},
			wantStatus: http.StatusConflict,
			wantCode:   "TRADE_CONFLICT",
			wantMsg:    "ownership changed",
			wantMeta:   map[string]any{"instance_id": "c1"},
		},
		{
			name:       "Unclassified failure",
			err:        errors.New("failed to load trade: connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "TRADE_INTERNAL",
			wantMsg:    "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, &fakeTrades{err: tt.err}, &fakeInbox{}, 0)

			resp, env := do(t, s, "PATCH", "/api/trades/trade-1/cancel", "", "alice")
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if env.Success || env.Error == nil {
				t.Fatalf("envelope = %+v, want failure", env)
			}
			if env.Error.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", env.Error.Code, tt.wantCode)
			}
			if env.Error.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", env.Error.Message, tt.wantMsg)
			}
			for k, v := range tt.wantMeta {
				if env.Error.Details[k] != v {
					t.Errorf("details[%s] = %v, want %v", k, env.Error.Details[k], v)
				}
			}
		})
	}
}

func TestServer_ProposeRateLimit(t *testing.T) {
	s := newTestServer(t, &fakeTrades{trade: pendingTrade()}, &fakeInbox{}, 2)
	body := `{"receiverId":"bob","initiatorCardIds":["c1"]}`

	for i := 0; i < 2; i++ {
		if resp, _ := do(t, s, "POST", "/api/trades", body, "alice"); resp.StatusCode != http.StatusCreated {
			t.Fatalf("proposal %d status = %d, want 201", i, resp.StatusCode)
		}
	}
	resp, env := do(t, s, "POST", "/api/trades", body, "alice")
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
	if env.Error == nil || env.Error.Code != "RATE_LIMIT_EXCEEDED" {
		t.Errorf("error = %+v", env.Error)
	}

	// other callers have their own window
	if resp, _ := do(t, s, "POST", "/api/trades", body, "carol"); resp.StatusCode != http.StatusCreated {
		t.Errorf("carol status = %d, want 201", resp.StatusCode)
	}
}

func TestServer_Notifications(t *testing.T) {
	inbox := &fakeInbox{list: []*notifications.Notification{{
		ID:          "n1",
		RecipientID: "bob",
		Kind:        notifications.KindTradeOffer,
		Title:       "New Trade Offer",
		Message:     "You have received a new trade offer.",
	}}}
	s := newTestServer(t, &fakeTrades{}, inbox, 0)

	resp, env := do(t, s, "GET", "/api/notifications?unread=true&type=trade_offer", "", "bob")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if want := (notifications.ListFilter{UnreadOnly: true, Kind: notifications.KindTradeOffer}); inbox.filter != want {
		t.Errorf("filter = %+v, want %+v", inbox.filter, want)
	}
	var list webmodels.NotificationListEnvelope
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(list.Notifications) != 1 || list.Notifications[0].Type != "TRADE_OFFER" {
		t.Errorf("notifications = %+v", list.Notifications)
	}

	inbox.markErr = notifications.ErrNotFound
	resp, env = do(t, s, "PATCH", "/api/notifications/missing/read", "", "bob")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("mark read status = %d, want 404", resp.StatusCode)
	}
	if env.Error == nil || env.Error.Code != "NOTIFICATION_NOT_FOUND" {
		t.Errorf("error = %+v", env.Error)
	}

	resp, _ = do(t, s, "PATCH", "/api/notifications/read-all", "", "bob")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("read-all status = %d, want 200", resp.StatusCode)
	}

	resp, env = do(t, s, "GET", "/api/notifications?type=party", "", "bob")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown type status = %d, want 400", resp.StatusCode)
	}
	if env.Error == nil || env.Error.Code != "NOTIFICATION_BAD_TYPE" {
		t.Errorf("error = %+v", env.Error)
	}
}

func TestServer_NotificationDetailAndDelete(t *testing.T) {
	inbox := &fakeInbox{list: []*notifications.Notification{{
		ID:          "n1",
		RecipientID: "bob",
		Kind:        notifications.KindTradeAccepted,
		Title:       "Trade Accepted",
		Message:     "Your trade offer has been accepted.",
	}}}
	s := newTestServer(t, &fakeTrades{}, inbox, 0)

	resp, env := do(t, s, "GET", "/api/notifications/n1", "", "bob")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("detail status = %d, want 200", resp.StatusCode)
	}
	var detail webmodels.NotificationEnvelope
	if err := json.Unmarshal(env.Data, &detail); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if detail.Notification == nil || detail.Notification.ID != "n1" || detail.Notification.Type != "TRADE_ACCEPTED" {
		t.Errorf("notification = %+v", detail.Notification)
	}

	tests := []struct {
		name     string
		method   string
		userID   string
		wantCode int
	}{
		{name: "Detail of another party", method: "GET", userID: "alice", wantCode: http.StatusNotFound},
		{name: "Delete of another party", method: "DELETE", userID: "alice", wantCode: http.StatusNotFound},
		{name: "Delete own", method: "DELETE", userID: "bob", wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := do(t, s, tt.method, "/api/notifications/n1", "", tt.userID)
			if resp.StatusCode != tt.wantCode {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantCode)
			}
		})
	}
	if inbox.deleted != "n1" {
		t.Errorf("deleted = %q, want n1", inbox.deleted)
	}
}

func TestServer_Health(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantStatus int
	}{
		{name: "Healthy", wantStatus: http.StatusOK},
		{name: "Database down", pingErr: errors.New("dial tcp: refused"), wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultWebConfig()
			cfg.SessionKey = testSessionKey
			s := NewServer(&handlers.WebApp{
				Trades:         &fakeTrades{},
				Inbox:          &fakeInbox{},
				DB:             fakePinger{err: tt.pingErr},
				SessionService: webservices.NewSessionService(testSessionKey),
				Version:        "test",
			}, cfg)

			resp, err := s.App().Test(httptest.NewRequest("GET", "/health", nil))
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestServer_UnknownRoute(t *testing.T) {
	s := newTestServer(t, &fakeTrades{}, &fakeInbox{}, 0)

	resp, err := s.App().Test(httptest.NewRequest("GET", "/nope", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
