package chat

import (
	"context"
	"time"

	"github.com/gogf/gf/v2/frame/g"

	"github.com/cleardocs/backend/core/common"
	"github.com/cleardocs/backend/core/errors"
	"github.com/cleardocs/backend/core/onyx"
	gormModel "github.com/cleardocs/backend/internal/model/gorm"
)

const apiKeyNamePrefix = "cleardocs-"

// Gateway 聊天所需的 Onyx 操作面
type Gateway interface {
	ConnectorsByDocSet(ctx context.Context, docSetID int) []onyx.Connector
	CreateAPIKey(ctx context.Context, name, role string) (string, error)
	CreatePersona(ctx context.Context, name string, docSetID int) (int, error)
	CreateChatSession(ctx context.Context, authorization string, body map[string]interface{}) (map[string]interface{}, error)
	StreamChatMessage(ctx context.Context, authorization string, body map[string]interface{}, w onyx.StreamWriter) error
}

// AccountStore 账户持久化（只需要更新）
type AccountStore interface {
	Update(ctx context.Context, account *gormModel.Account) error
}

// Service 聊天配置器与流式中继。
// Bootstrap 在账户首次进入聊天时惰性补齐 API key 和 persona，
// 之后的请求直接复用已持久化的凭据。
type Service struct {
	gw       Gateway
	accounts AccountStore
}

// NewService 创建聊天服务
func NewService(gw Gateway, accounts AccountStore) *Service {
	return &Service{gw: gw, accounts: accounts}
}

// Credentials 聊天所需的已就绪凭据
type Credentials struct {
	APIKey    string `json:"apiKey"`
	PersonaID int    `json:"personaId"`
}

// Bootstrap 校验账户已有可聊天的来源，并确保 API key 与 persona 就位。
// 没有任何连接器时直接拒绝，不创建任何凭据。
func (s *Service) Bootstrap(ctx context.Context, account *gormModel.Account) (*Credentials, error) {
	start := time.Now()
	g.Log().Infof(ctx, "chat bootstrap - account id=%s docSetId=%v", account.ID, account.DocSetID)

	if account.DocSetID == nil {
		return nil, errors.New(errors.ErrChatNoSources, "No connectors. Add connectors before using chat.")
	}
	connectors := s.gw.ConnectorsByDocSet(ctx, *account.DocSetID)
	if len(connectors) == 0 {
		return nil, errors.New(errors.ErrChatNoSources, "No connectors. Add connectors before using chat.")
	}

	if account.APIKey == "" {
		key, err := s.gw.CreateAPIKey(ctx, apiKeyNameFor(account), "basic")
		if err != nil {
			return nil, err
		}
		account.APIKey = key
		// 密钥一发出就落库；persona 创建失败时下次重试不会再发一把
		if err := s.accounts.Update(ctx, account); err != nil {
			return nil, err
		}
		g.Log().Infof(ctx, "chat bootstrap - api key created for account id=%s", account.ID)
	}
	if account.PersonaID == nil {
		personaName := common.PersonaNameFor(account.ID, account.Name, account.Email)
		personaID, err := s.gw.CreatePersona(ctx, personaName, *account.DocSetID)
		if err != nil {
			return nil, err
		}
		account.PersonaID = &personaID
		if err := s.accounts.Update(ctx, account); err != nil {
			return nil, err
		}
		g.Log().Infof(ctx, "chat bootstrap - persona id=%d created for account id=%s", personaID, account.ID)
	}

	g.Log().Infof(ctx, "chat bootstrap - done in %dms", time.Since(start).Milliseconds())
	return &Credentials{APIKey: account.APIKey, PersonaID: *account.PersonaID}, nil
}

// CreateSession 透传创建会话请求，响应体原样返回
func (s *Service) CreateSession(ctx context.Context, authorization string, body map[string]interface{}) (map[string]interface{}, error) {
	start := time.Now()
	result, err := s.gw.CreateChatSession(ctx, authorization, body)
	if err != nil {
		return nil, err
	}
	g.Log().Infof(ctx, "create chat session - done in %dms", time.Since(start).Milliseconds())
	return result, nil
}

// StreamMessage 把聊天消息转发到上游并逐块中继回写方
func (s *Service) StreamMessage(ctx context.Context, authorization string, body map[string]interface{}, w onyx.StreamWriter) error {
	return s.gw.StreamChatMessage(ctx, authorization, body, w)
}

// apiKeyNameFor 为账户生成 API key 名称，邮箱里的非字母数字统一折叠成 '-'
func apiKeyNameFor(account *gormModel.Account) string {
	if account.Email != "" {
		return apiKeyNamePrefix + common.SanitizeKeyName(account.Email)
	}
	return apiKeyNamePrefix + account.ID
}
