package onyx

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gogf/gf/v2/frame/g"

	"github.com/cleardocs/backend/core/errors"
)

// 上游响应按固定大小分块读取
const streamChunkSize = 4096

// StreamWriter 流式响应的落点。每写一个分块必须 Flush 一次：
// 不逐块冲刷时，最后一个分块（通常是结束标记）可能滞留在缓冲区里，
// 连接断开后就永远到不了客户端，表现为回答被截断。
type StreamWriter interface {
	io.Writer
	Flush()
}

// StreamChatMessage 代理 send-chat-message 并把上游分块响应逐块复制到 w。
// 请求体先深拷贝，再强制注入 llm_override.temperature=0（覆盖调用方传入的值），
// 保证补全结果确定。Authorization 头原样转发。
// 分块严格按到达顺序转发，不缓冲不重试；中途 I/O 失败（多为客户端断开）
// 记录耗时与字节/分块计数后上抛。
func (c *Client) StreamChatMessage(ctx context.Context, authorization string, body map[string]interface{}, w StreamWriter) error {
	url := c.urlAPI(pathChatMessage)
	sessionID := body["chat_session_id"]
	start := time.Now()
	g.Log().Infof(ctx, "sendChatMessage onyx start sessionId=%v messagePreview=%s url=%s",
		sessionID, messagePreview(body["message"]), url)

	payload, err := sonic.Marshal(forceZeroTemperature(body))
	if err != nil {
		return errors.Wrap(errors.ErrStreamingFailed, err, "failed to encode chat message payload")
	}

	headers := map[string]string{}
	if authorization != "" {
		headers["Authorization"] = authorization
	}
	resp, err := c.stream.ContentJson().Header(headers).Post(ctx, url, string(payload))
	if err != nil {
		g.Log().Errorf(ctx, "sendChatMessage onyx error sessionId=%v elapsed_ms=%d error=%v",
			sessionID, time.Since(start).Milliseconds(), err)
		return errors.Wrap(errors.ErrStreamingFailed, err, "onyx send chat message failed")
	}
	defer resp.Close()
	if resp.StatusCode >= 400 {
		g.Log().Errorf(ctx, "sendChatMessage onyx error sessionId=%v status=%d", sessionID, resp.StatusCode)
		return errors.Newf(errors.ErrStreamingFailed, "onyx send chat message returned %d", resp.StatusCode)
	}
	g.Log().Debugf(ctx, "sendChatMessage onyx response sessionId=%v status=%d contentType=%s",
		sessionID, resp.StatusCode, resp.Header.Get("Content-Type"))

	if err := copyChunks(ctx, resp.Body, w, sessionID, start); err != nil {
		return err
	}
	g.Log().Infof(ctx, "sendChatMessage onyx done sessionId=%v elapsed_ms=%d",
		sessionID, time.Since(start).Milliseconds())
	return nil
}

// copyChunks 单线程顺序复制循环：读一块、写一块、冲刷一块
func copyChunks(ctx context.Context, in io.Reader, w StreamWriter, sessionID interface{}, start time.Time) error {
	buffer := make([]byte, streamChunkSize)
	var totalBytes int64
	var chunkCount int
	for {
		n, readErr := in.Read(buffer)
		if n > 0 {
			if _, writeErr := w.Write(buffer[:n]); writeErr != nil {
				g.Log().Errorf(ctx,
					"sendChatMessage onyx error sessionId=%v elapsed_ms=%d chunks=%d bytes=%d error=%v (possible client disconnect)",
					sessionID, time.Since(start).Milliseconds(), chunkCount, totalBytes, writeErr)
				return errors.Wrap(errors.ErrStreamingFailed, writeErr, "failed to relay chat stream chunk")
			}
			w.Flush() // 每块必刷，保证结束标记及时送达
			totalBytes += int64(n)
			chunkCount++
			if chunkCount%50 == 0 {
				g.Log().Debugf(ctx, "sendChatMessage streaming sessionId=%v chunks=%d bytes=%d",
					sessionID, chunkCount, totalBytes)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			g.Log().Errorf(ctx,
				"sendChatMessage onyx error sessionId=%v elapsed_ms=%d chunks=%d bytes=%d error=%v",
				sessionID, time.Since(start).Milliseconds(), chunkCount, totalBytes, readErr)
			return errors.Wrap(errors.ErrStreamingFailed, readErr, "failed to read chat stream from onyx")
		}
	}
	g.Log().Infof(ctx, "sendChatMessage onyx stream drained sessionId=%v bytes=%d chunks=%d elapsed_ms=%d",
		sessionID, totalBytes, chunkCount, time.Since(start).Milliseconds())
	return nil
}

// forceZeroTemperature 深拷贝请求体并强制 llm_override.temperature=0
func forceZeroTemperature(body map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(body)+1)
	for k, v := range body {
		out[k] = v
	}
	override := make(map[string]interface{})
	if existing, ok := body["llm_override"].(map[string]interface{}); ok {
		for k, v := range existing {
			override[k] = v
		}
	}
	override["temperature"] = 0
	out["llm_override"] = override
	return out
}

func messagePreview(message interface{}) string {
	s, _ := message.(string)
	if len(s) > 80 {
		return s[:80] + "..."
	}
	return s
}

var _ StreamWriter = (*flushWriter)(nil)

// flushWriter 将支持 http.Flusher 的 ResponseWriter 适配为 StreamWriter
type flushWriter struct {
	w io.Writer
	f http.Flusher
}

// NewFlushWriter 组合 writer 与 flusher；flusher 为 nil 时 Flush 是空操作
func NewFlushWriter(w io.Writer, f http.Flusher) StreamWriter {
	return &flushWriter{w: w, f: f}
}

func (fw *flushWriter) Write(p []byte) (int, error) {
	return fw.w.Write(p)
}

func (fw *flushWriter) Flush() {
	if fw.f != nil {
		fw.f.Flush()
	}
}
