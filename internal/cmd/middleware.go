package cmd

import (
	"mime"
	"net/http"
	"strings"

	"github.com/gogf/gf/v2/errors/gcode"
	"github.com/gogf/gf/v2/errors/gerror"
	"github.com/gogf/gf/v2/frame/g"
	"github.com/gogf/gf/v2/net/ghttp"

	"github.com/cleardocs/backend/core/errors"
	"github.com/cleardocs/backend/internal/logic/account"
	"github.com/cleardocs/backend/internal/service"
)

const (
	contentTypeEventStream  = "text/event-stream"
	contentTypeOctetStream  = "application/octet-stream"
	contentTypeMixedReplace = "multipart/x-mixed-replace"
)

// 连接器文件上传大小限制: 100MB
const maxConnectorUploadSize = 100 << 20

var (
	// streamContentType is the content types for stream response.
	streamContentType = []string{contentTypeEventStream, contentTypeOctetStream, contentTypeMixedReplace}

	// 聊天代理路径携带用户自己的 Onyx API Key，不走后端身份校验
	authExemptPaths = []string{
		"/api/v1/chat/create-chat-session",
		"/api/v1/chat/send-chat-message",
	}
)

// MiddlewareAuth 校验 Bearer token 并把账户注入上下文。
// 首次见到的身份在这里完成注册。
func MiddlewareAuth(r *ghttp.Request) {
	for _, path := range authExemptPaths {
		if r.URL.Path == path {
			r.Middleware.Next()
			return
		}
	}

	ctx := r.Context()
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if token == "" || token == r.Header.Get("Authorization") {
		writeError(r, errors.New(errors.ErrUnauthorized, "missing bearer token"))
		return
	}

	identity, err := service.Auth().Verify(ctx, token)
	if err != nil {
		writeError(r, err)
		return
	}
	acct, err := service.Account().Resolve(ctx, identity)
	if err != nil {
		writeError(r, err)
		return
	}
	r.SetCtx(account.WithCtx(ctx, acct))
	r.Middleware.Next()
}

// MiddlewareHandlerResponse 统一响应包装。
// 业务错误映射到各自的 HTTP 状态码；流式响应不做包装。
func MiddlewareHandlerResponse(r *ghttp.Request) {
	r.Middleware.Next()

	// There's custom buffer content, it then exits current handler.
	if r.Response.BufferLength() > 0 || r.Response.Writer.BytesWritten() > 0 {
		return
	}

	// It does not output common response content if it is stream response.
	mediaType, _, _ := mime.ParseMediaType(r.Response.Header().Get("Content-Type"))
	for _, ct := range streamContentType {
		if mediaType == ct {
			return
		}
	}

	var (
		msg  string
		err  = r.GetError()
		res  = r.GetHandlerResponse()
		code = gerror.Code(err)
	)
	if err != nil {
		if appErr := errors.GetAppError(err); appErr != nil {
			r.Response.WriteStatus(appErr.Code.HTTPStatusCode())
			r.Response.WriteJson(ghttp.DefaultHandlerResponse{
				Code:    int(appErr.Code),
				Message: appErr.Message,
				Data:    nil,
			})
			return
		}
		if code == gcode.CodeNil {
			code = gcode.CodeInternalError
		}
		msg = err.Error()
	} else {
		if r.Response.Status > 0 && r.Response.Status != http.StatusOK {
			switch r.Response.Status {
			case http.StatusNotFound:
				code = gcode.CodeNotFound
			case http.StatusForbidden:
				code = gcode.CodeNotAuthorized
			default:
				code = gcode.CodeUnknown
			}
			// It creates an error as it can be retrieved by other middlewares.
			err = gerror.NewCode(code, msg)
			r.SetError(err)
		} else {
			code = gcode.CodeOK
		}
		msg = code.Message()
	}
	r.Response.WriteJson(ghttp.DefaultHandlerResponse{
		Code:    code.Code(),
		Message: msg,
		Data:    res,
	})
}

// MiddlewareMultipartMaxMemory 限制连接器文件上传的大小
func MiddlewareMultipartMaxMemory(r *ghttp.Request) {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		r.Middleware.Next()
		return
	}
	if err := r.ParseMultipartForm(maxConnectorUploadSize); err != nil {
		r.Response.WriteStatus(http.StatusRequestEntityTooLarge)
		r.Response.WriteJson(ghttp.DefaultHandlerResponse{
			Code:    gcode.CodeInvalidParameter.Code(),
			Message: "File size exceeds the upload limit (100MB)",
			Data:    nil,
		})
		return
	}
	r.Middleware.Next()
}

// writeError 中间件内直接短路返回业务错误
func writeError(r *ghttp.Request, err error) {
	status := http.StatusInternalServerError
	code := gcode.CodeInternalError.Code()
	msg := err.Error()
	if appErr := errors.GetAppError(err); appErr != nil {
		status = appErr.Code.HTTPStatusCode()
		code = int(appErr.Code)
		msg = appErr.Message
	}
	g.Log().Warningf(r.Context(), "request rejected: %s %s: %v", r.Method, r.URL.Path, err)
	r.Response.WriteStatus(status)
	r.Response.WriteJson(ghttp.DefaultHandlerResponse{
		Code:    code,
		Message: msg,
		Data:    nil,
	})
}
