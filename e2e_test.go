package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/suite"

	"github.com/FACorreiaa/go-travel-assistant/config"
	generativeAI "github.com/FACorreiaa/go-travel-assistant/internal/api/generative_ai"
	"github.com/FACorreiaa/go-travel-assistant/internal/container"
	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

const beijingAnswer = `为您推荐北京的景点：

1. 故宫博物院
地址：北京市东城区景山前街4号
坐标：39.9163, 116.3972

2. 天坛公园
地址：北京市东城区天坛东里甲1号`

type cannedAssistant struct {
	answer string
}

func (a cannedAssistant) Ask(_ context.Context, req generativeAI.AskRequest) (*generativeAI.AskResponse, error) {
	return &generativeAI.AskResponse{Answer: a.answer, ConversationID: "dify-conv-e2e", CreatedAt: time.Now()}, nil
}

// E2ETestSuite drives complete user workflows through the real router and
// services against a mocked database.
type E2ETestSuite struct {
	suite.Suite
	server *httptest.Server
	db     pgxmock.PgxPoolIface
	userID uuid.UUID
	now    time.Time
}

func (s *E2ETestSuite) SetupTest() {
	db, err := pgxmock.NewPool()
	s.Require().NoError(err)
	s.db = db
	s.userID = uuid.New()
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	cfg, err := config.Load([]byte(`
jwt:
  secretKey: e2e-secret
  issuer: travel-assistant
  audience: travel-assistant-clients
extraction:
  maxAttractionsPerResponse: 5
  defaultAttractionImage: https://example.com/default.jpg
rateLimit:
  chatPerMinute: 30
`))
	s.Require().NoError(err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := container.NewContainer(&cfg, nil, db, cannedAssistant{answer: beijingAnswer}, logger)
	s.server = httptest.NewServer(c.Router())
}

func (s *E2ETestSuite) TearDownTest() {
	s.server.Close()
	s.NoError(s.db.ExpectationsWereMet())
	s.db.Close()
}

func (s *E2ETestSuite) do(method, path, token string, body any) (int, types.Response) {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.server.URL+path, &buf)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	var envelope types.Response
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&envelope))
	return resp.StatusCode, envelope
}

func (s *E2ETestSuite) userRow(phone string) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "phone", "nickname", "password_hash", "avatar_url", "email",
		"provider", "provider_id", "is_active", "last_login_at", "created_at", "updated_at"}).
		AddRow(s.userID, &phone, "用户"+phone[7:], nil, nil, nil, types.ProviderLocal, nil, true, nil, s.now, s.now)
}

func (s *E2ETestSuite) expectUserInsert(phone string) *pgxmock.ExpectedQuery {
	var none *string
	return s.db.ExpectQuery("INSERT INTO users").
		WithArgs(&phone, "用户"+phone[7:], pgxmock.AnyArg(), none, none, types.ProviderLocal, none)
}

func (s *E2ETestSuite) expectRegister(phone string) {
	s.expectUserInsert(phone).WillReturnRows(s.userRow(phone))
	s.db.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs(pgxmock.AnyArg(), s.userID, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
}

func (s *E2ETestSuite) expectMessage(conversationID uuid.UUID, sender types.SenderType, content string) {
	s.db.ExpectBegin()
	s.db.ExpectQuery("INSERT INTO messages").
		WithArgs(conversationID, string(sender), content, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(uuid.New(), s.now))
	s.db.ExpectExec("UPDATE conversations SET updated_at").
		WithArgs(conversationID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	s.db.ExpectCommit()
}

func (s *E2ETestSuite) register(phone string) string {
	s.expectRegister(phone)
	status, resp := s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"phone":    phone,
		"password": "secret123",
	})
	s.Require().Equal(http.StatusCreated, status, resp.Error)

	data := resp.Data.(map[string]any)
	s.Equal("Bearer", data["token_type"])
	s.Equal("用户"+phone[7:], data["user"].(map[string]any)["nickname"])
	return data["access_token"].(string)
}

func (s *E2ETestSuite) TestRegisterThenChat() {
	token := s.register("13800138000")

	s.db.ExpectQuery("FROM users WHERE id").
		WithArgs(s.userID).
		WillReturnRows(s.userRow("13800138000"))
	status, resp := s.do(http.MethodGet, "/api/v1/auth/verify", token, nil)
	s.Require().Equal(http.StatusOK, status, resp.Error)
	s.Equal(s.userID.String(), resp.Data.(map[string]any)["id"])

	conversationID := uuid.New()
	s.db.ExpectQuery("INSERT INTO conversations").
		WithArgs(s.userID, "北京有什么好玩的景点？").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(conversationID, s.now, s.now))
	s.expectMessage(conversationID, types.SenderUser, "北京有什么好玩的景点？")
	s.db.ExpectExec("UPDATE conversations SET provider_conversation_id").
		WithArgs(conversationID, "dify-conv-e2e").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	s.expectMessage(conversationID, types.SenderAI, beijingAnswer)

	status, resp = s.do(http.MethodPost, "/api/v1/chat/send", token, map[string]string{
		"message": "  北京有什么好玩的景点？ ",
	})
	s.Require().Equal(http.StatusOK, status, resp.Error)

	data := resp.Data.(map[string]any)
	s.Equal(conversationID.String(), data["conversation_id"])
	found := data["attractions"].([]any)
	s.Require().Len(found, 2)
	first := found[0].(map[string]any)
	s.Equal("故宫博物院", first["name"])
	s.Equal("北京市东城区景山前街4号", first["address"])
	s.Equal("https://example.com/default.jpg", first["image"])
	s.NotNil(first["coordinates"])
	s.Nil(found[1].(map[string]any)["coordinates"])
	s.Equal(beijingAnswer, data["ai_message"].(map[string]any)["content"])
}

func (s *E2ETestSuite) TestChatRejectsEmptyMessage() {
	token := s.register("13900139000")

	status, resp := s.do(http.MethodPost, "/api/v1/chat/send", token, map[string]string{"message": "   "})
	s.Equal(http.StatusBadRequest, status)
	s.Equal("消息内容不能为空", resp.Error)
}

func (s *E2ETestSuite) TestRegisterDuplicatePhone() {
	s.expectUserInsert("13800138000").WillReturnError(&pgconn.PgError{Code: "23505"})

	status, resp := s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"phone":    "13800138000",
		"password": "secret123",
	})
	s.Equal(http.StatusConflict, status)
	s.Equal("该手机号已被注册", resp.Error)
}

func (s *E2ETestSuite) TestUnauthenticatedAccess() {
	for _, path := range []string{"/api/v1/conversations", "/api/v1/trips"} {
		status, resp := s.do(http.MethodGet, path, "", nil)
		s.Equal(http.StatusUnauthorized, status, path)
		s.False(resp.Success)
	}
}

func TestE2E(t *testing.T) {
	suite.Run(t, new(E2ETestSuite))
}
