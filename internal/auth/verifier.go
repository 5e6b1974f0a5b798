package auth

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gogf/gf/v2/frame/g"
	"github.com/gogf/gf/v2/net/gclient"

	"github.com/cleardocs/backend/core/errors"
)

// Identity 通过校验的外部身份。身份令牌如何签发与校验不归本服务管，
// 这里只消费校验结果。
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Verifier 身份令牌校验器
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// RemoteVerifier 将令牌交给外部校验服务换取身份
type RemoteVerifier struct {
	url    string
	client *gclient.Client
}

// NewRemoteVerifier 从配置创建校验器
func NewRemoteVerifier(ctx context.Context) *RemoteVerifier {
	url := g.Cfg().MustGet(ctx, "auth.verifyURL", "http://localhost:8081/verify").String()
	timeout := g.Cfg().MustGet(ctx, "auth.timeout", 10).Int()

	client := g.Client()
	client.SetTimeout(time.Duration(timeout) * time.Second)
	return &RemoteVerifier{url: url, client: client}
}

// Verify 校验令牌并返回身份；校验不通过返回未授权错误
func (v *RemoteVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	payload, err := sonic.Marshal(map[string]string{"token": token})
	if err != nil {
		return nil, err
	}
	resp, err := v.client.ContentJson().Post(ctx, v.url, string(payload))
	if err != nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, err, "token verification failed")
	}
	defer resp.Close()
	if resp.StatusCode >= 400 {
		return nil, errors.Newf(errors.ErrUnauthorized, "token verification returned %d", resp.StatusCode)
	}
	var identity Identity
	if err := sonic.Unmarshal(resp.ReadAll(), &identity); err != nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, err, "token verification returned undecodable body")
	}
	if identity.UID == "" {
		return nil, errors.New(errors.ErrUnauthorized, "token verification returned empty uid")
	}
	return &identity, nil
}
