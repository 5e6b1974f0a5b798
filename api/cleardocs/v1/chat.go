package v1

import (
	"github.com/gogf/gf/v2/frame/g"
)

type ChatBootstrapReq struct {
	g.Meta `path:"/v1/chat" method:"get" tags:"chat" summary:"Prepare chat credentials"`
}

type ChatBootstrapRes struct {
	APIKey    string `json:"apiKey" dc:"knowledge base API key scoped to the account"`
	PersonaID int    `json:"personaId" dc:"persona bound to the account document set"`
}

// ChatSessionCreateReq 创建会话代理。
// 请求体不在这里建模：控制器读取原始 body 原样转发，
// Authorization 携带用户自己的 API Key。
type ChatSessionCreateReq struct {
	g.Meta `path:"/v1/chat/create-chat-session" method:"post" tags:"chat" summary:"Create chat session (proxy)"`
}

type ChatSessionCreateRes struct {
	g.Meta `mime:"application/json"`
}

// ChatMessageSendReq 发送消息代理，响应为流式。请求体同样原样转发。
type ChatMessageSendReq struct {
	g.Meta `path:"/v1/chat/send-chat-message" method:"post" tags:"chat" summary:"Send chat message (streaming proxy)"`
}

type ChatMessageSendRes struct {
	g.Meta `mime:"text/event-stream"`
}
