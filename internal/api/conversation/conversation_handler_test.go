package conversation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-travel-assistant/internal/api"
	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) ListConversations(ctx context.Context, userID uuid.UUID) ([]types.Conversation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Conversation), args.Error(1)
}

func (m *MockService) CreateConversation(ctx context.Context, userID uuid.UUID, title string) (*types.Conversation, error) {
	args := m.Called(ctx, userID, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Conversation), args.Error(1)
}

func (m *MockService) DeleteConversation(ctx context.Context, userID, conversationID uuid.UUID) error {
	return m.Called(ctx, userID, conversationID).Error(0)
}

func (m *MockService) GetConversationMessages(ctx context.Context, userID, conversationID uuid.UUID) (*types.ConversationWithMessages, error) {
	args := m.Called(ctx, userID, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ConversationWithMessages), args.Error(1)
}

func authedRequest(method, target string, body io.Reader, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, body)
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	return req.WithContext(api.WithUserID(ctx, testUserID))
}

func envelope(t *testing.T, rr *httptest.ResponseRecorder) types.Response {
	t.Helper()
	var resp types.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func newTestHandler() (*HandlerImpl, *MockService) {
	svc := new(MockService)
	return NewHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil))), svc
}

func TestHandler_ListConversations(t *testing.T) {
	h, svc := newTestHandler()
	svc.On("ListConversations", mock.Anything, testUserID).
		Return([]types.Conversation{{ID: testConversationID, Title: "北京三日游", MessageCount: 2}}, nil).Once()

	rr := httptest.NewRecorder()
	h.ListConversations(rr, authedRequest(http.MethodGet, "/api/v1/conversations", nil, nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	resp := envelope(t, rr)
	assert.True(t, resp.Success)
	list := resp.Data.([]any)
	require.Len(t, list, 1)
	assert.Equal(t, float64(2), list[0].(map[string]any)["message_count"])
}

func TestHandler_ListConversationsUnauthenticated(t *testing.T) {
	h, _ := newTestHandler()
	rr := httptest.NewRecorder()
	h.ListConversations(rr, httptest.NewRequest(http.MethodGet, "/api/v1/conversations", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandler_CreateConversation(t *testing.T) {
	t.Run("with title", func(t *testing.T) {
		h, svc := newTestHandler()
		svc.On("CreateConversation", mock.Anything, testUserID, "上海周末").
			Return(&types.Conversation{ID: testConversationID, Title: "上海周末"}, nil).Once()

		rr := httptest.NewRecorder()
		h.CreateConversation(rr, authedRequest(http.MethodPost, "/api/v1/conversations", bytes.NewBufferString(`{"title":"上海周末"}`), nil))
		assert.Equal(t, http.StatusCreated, rr.Code)
	})

	t.Run("empty body", func(t *testing.T) {
		h, svc := newTestHandler()
		svc.On("CreateConversation", mock.Anything, testUserID, "").
			Return(&types.Conversation{ID: testConversationID, Title: "对话 06-01 14:30"}, nil).Once()

		rr := httptest.NewRecorder()
		h.CreateConversation(rr, authedRequest(http.MethodPost, "/api/v1/conversations", nil, nil))
		assert.Equal(t, http.StatusCreated, rr.Code)
		svc.AssertExpectations(t)
	})
}

func TestHandler_DeleteConversation(t *testing.T) {
	params := map[string]string{"id": testConversationID.String()}

	t.Run("deleted", func(t *testing.T) {
		h, svc := newTestHandler()
		svc.On("DeleteConversation", mock.Anything, testUserID, testConversationID).Return(nil).Once()

		rr := httptest.NewRecorder()
		h.DeleteConversation(rr, authedRequest(http.MethodDelete, "/api/v1/conversations/x", nil, params))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "对话已删除", envelope(t, rr).Message)
	})

	t.Run("not found", func(t *testing.T) {
		h, svc := newTestHandler()
		svc.On("DeleteConversation", mock.Anything, testUserID, testConversationID).Return(ErrNotFound).Once()

		rr := httptest.NewRecorder()
		h.DeleteConversation(rr, authedRequest(http.MethodDelete, "/api/v1/conversations/x", nil, params))
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "对话不存在或无权访问", envelope(t, rr).Error)
	})

	t.Run("malformed id", func(t *testing.T) {
		h, _ := newTestHandler()
		rr := httptest.NewRecorder()
		h.DeleteConversation(rr, authedRequest(http.MethodDelete, "/api/v1/conversations/x", nil, map[string]string{"id": "abc"}))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestHandler_GetMessages(t *testing.T) {
	params := map[string]string{"id": testConversationID.String()}

	t.Run("ok", func(t *testing.T) {
		h, svc := newTestHandler()
		svc.On("GetConversationMessages", mock.Anything, testUserID, testConversationID).
			Return(&types.ConversationWithMessages{
				Conversation: types.Conversation{ID: testConversationID},
				Messages:     []types.Message{{SenderType: types.SenderUser, Content: "你好"}},
			}, nil).Once()

		rr := httptest.NewRecorder()
		h.GetMessages(rr, authedRequest(http.MethodGet, "/api/v1/conversations/x/messages", nil, params))
		assert.Equal(t, http.StatusOK, rr.Code)
		data := envelope(t, rr).Data.(map[string]any)
		assert.Len(t, data["messages"], 1)
	})

	t.Run("internal error", func(t *testing.T) {
		h, svc := newTestHandler()
		svc.On("GetConversationMessages", mock.Anything, testUserID, testConversationID).
			Return(nil, errors.New("db down")).Once()

		rr := httptest.NewRecorder()
		h.GetMessages(rr, authedRequest(http.MethodGet, "/api/v1/conversations/x/messages", nil, params))
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}
