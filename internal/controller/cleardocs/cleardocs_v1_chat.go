package cleardocs

import (
	"context"

	"github.com/bytedance/sonic"
	"github.com/gogf/gf/v2/frame/g"

	v1 "github.com/cleardocs/backend/api/cleardocs/v1"
	"github.com/cleardocs/backend/core/errors"
	"github.com/cleardocs/backend/core/onyx"
	"github.com/cleardocs/backend/internal/logic/account"
	"github.com/cleardocs/backend/internal/service"
)

func (c *ControllerV1) ChatBootstrap(ctx context.Context, req *v1.ChatBootstrapReq) (res *v1.ChatBootstrapRes, err error) {
	acct, err := account.FromCtx(ctx)
	if err != nil {
		return nil, err
	}
	creds, err := service.Chat().Bootstrap(ctx, acct)
	if err != nil {
		return nil, err
	}
	return &v1.ChatBootstrapRes{APIKey: creds.APIKey, PersonaID: creds.PersonaID}, nil
}

// ChatSessionCreate 创建会话代理。请求体与 Authorization 原样转发，
// 上游响应不做包装直接写回。
func (c *ControllerV1) ChatSessionCreate(ctx context.Context, req *v1.ChatSessionCreateReq) (res *v1.ChatSessionCreateRes, err error) {
	r := g.RequestFromCtx(ctx)

	body, err := passthroughBody(r.GetBody())
	if err != nil {
		return nil, err
	}
	result, err := service.Chat().CreateSession(ctx, r.Header.Get("Authorization"), body)
	if err != nil {
		return nil, err
	}
	r.Response.WriteJson(result)
	return nil, nil
}

// ChatMessageSend 发送消息代理。上游分块响应逐块写回并逐块冲刷，
// 中继结束后在终止路径上做最后一次冲刷。
func (c *ControllerV1) ChatMessageSend(ctx context.Context, req *v1.ChatMessageSendReq) (res *v1.ChatMessageSendRes, err error) {
	r := g.RequestFromCtx(ctx)

	body, err := passthroughBody(r.GetBody())
	if err != nil {
		return nil, err
	}

	r.Response.Header().Set("Content-Type", "text/event-stream")
	r.Response.Header().Set("Cache-Control", "no-cache")
	r.Response.Header().Set("Connection", "keep-alive")
	r.Response.Header().Set("X-Accel-Buffering", "no")

	writer := onyx.NewFlushWriter(r.Response.Writer, r.Response.Writer)
	defer writer.Flush()

	if err = service.Chat().StreamMessage(ctx, r.Header.Get("Authorization"), body, writer); err != nil {
		return nil, err
	}
	return nil, nil
}

// passthroughBody 解析原样转发的请求体；空体按空对象处理
func passthroughBody(raw []byte) (map[string]interface{}, error) {
	if len(raw) == 0 {
		return map[string]interface{}{}, nil
	}
	var body map[string]interface{}
	if err := sonic.Unmarshal(raw, &body); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidParameter, err, "request body must be a JSON object")
	}
	return body, nil
}
