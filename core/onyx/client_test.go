package onyx

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cleardocs/backend/core/errors"
)

func newTestClient(serverURL string) *Client {
	return NewWithConfig(serverURL, "/manage", "test-key", 5*time.Second, 5*time.Second)
}

func TestConnectorsByDocSetResolvesStatuses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/manage/document-set":
			io.WriteString(w, `[{"id":7,"name":"Docs","cc_pair_summaries":[{"id":1,"name":"files","source":"file"}],"federated_connector_summaries":[{"id":2,"name":"site","source":"web"}]}]`)
		case "/manage/admin/connector/indexing-status":
			io.WriteString(w, `[{"indexing_statuses":[{"cc_pair_id":1,"cc_pair_status":"ACTIVE"},{"cc_pair_id":2,"cc_pair_status":"PAUSED"}]}]`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	connectors := newTestClient(server.URL).ConnectorsByDocSet(context.Background(), 7)
	assert.Len(t, connectors, 2)
	assert.Equal(t, "ACTIVE", connectors[0].Status)
	assert.Equal(t, "PAUSED", connectors[1].Status)
}

func TestConnectorsByDocSetSwallowsUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	// 读路径不向调用方暴露上游故障
	connectors := newTestClient(server.URL).ConnectorsByDocSet(context.Background(), 7)
	assert.Nil(t, connectors)
}

func TestConnectorsByDocSetSwallowsNullStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/manage/document-set":
			io.WriteString(w, `[{"id":7,"name":"Docs","cc_pair_summaries":[{"id":1,"name":"files","source":"file"}]}]`)
		case "/manage/admin/connector/indexing-status":
			io.WriteString(w, `[{"indexing_statuses":[{"cc_pair_id":1,"cc_pair_status":null}]}]`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	// 状态解析失败同样按读路径吞掉
	connectors := newTestClient(server.URL).ConnectorsByDocSet(context.Background(), 7)
	assert.Nil(t, connectors)
}

func TestCcPairStatusNullStatusIsInconsistency(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"indexing_statuses":[{"cc_pair_id":5,"cc_pair_status":null}]}]`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).CcPairStatus(context.Background(), 5)
	assert.True(t, errors.IsCode(err, errors.ErrUpstreamInconsistent))
}

func TestCcPairStatusNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"indexing_statuses":[{"cc_pair_id":1,"cc_pair_status":"ACTIVE"}]}]`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).CcPairStatus(context.Background(), 99)
	assert.True(t, errors.IsCode(err, errors.ErrConnectorNotFound))
}

func TestDeleteConnectorRejectsActiveConnector(t *testing.T) {
	deletionAttempted := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/manage/admin/connector/indexing-status":
			io.WriteString(w, `[{"indexing_statuses":[{"cc_pair_id":5,"cc_pair_status":"ACTIVE"}]}]`)
		case "/manage/admin/deletion-attempt":
			deletionAttempted = true
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	err := newTestClient(server.URL).DeleteConnector(context.Background(), 5)
	assert.True(t, errors.IsCode(err, errors.ErrConnectorNotPaused))
	assert.False(t, deletionAttempted)
}

func TestDeleteConnectorResolvesUnderlyingIDs(t *testing.T) {
	var deletionBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/manage/admin/connector/indexing-status":
			io.WriteString(w, `[{"indexing_statuses":[{"cc_pair_id":5,"cc_pair_status":"PAUSED"}]}]`)
		case "/manage/admin/connector/status":
			// cc_pair_id 与底层 connector/credential id 刻意不同
			io.WriteString(w, `[{"cc_pair_id":5,"connector":{"id":17},"credential":{"id":23}}]`)
		case "/manage/admin/deletion-attempt":
			body, _ := io.ReadAll(r.Body)
			deletionBody = string(body)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	err := newTestClient(server.URL).DeleteConnector(context.Background(), 5)
	assert.NoError(t, err)
	assert.JSONEq(t, `{"connector_id":17,"credential_id":23}`, deletionBody)
}

func TestDeleteConnectorMissingIDsIsInconsistency(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/manage/admin/connector/indexing-status":
			io.WriteString(w, `[{"indexing_statuses":[{"cc_pair_id":5,"cc_pair_status":"PAUSED"}]}]`)
		case "/manage/admin/connector/status":
			io.WriteString(w, `[{"cc_pair_id":5,"connector":null,"credential":{"id":23}}]`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	err := newTestClient(server.URL).DeleteConnector(context.Background(), 5)
	assert.True(t, errors.IsCode(err, errors.ErrUpstreamInconsistent))
}

func TestCreateDocumentSetDecodesBareID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/manage/admin/document-set", r.URL.Path)
		io.WriteString(w, `42`)
	}))
	defer server.Close()

	id, err := newTestClient(server.URL).CreateDocumentSet(context.Background(), "Docs", "", []int{1})
	assert.NoError(t, err)
	assert.Equal(t, 42, id)
}

func TestCreateConnectorPropagatesFailureMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":false,"message":"duplicate name","data":null}`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).CreateURLConnector(context.Background(), "Blog", "https://example.com")
	assert.True(t, errors.IsCode(err, errors.ErrConnectorCreateError))
	assert.Contains(t, err.Error(), "duplicate name")
}

func TestCreateAPIKeyAcceptsEitherKeyField(t *testing.T) {
	payloads := []string{
		`{"api_key":"on_abc"}`,
		`{"key":"on_abc"}`,
	}
	for _, payload := range payloads {
		p := payload
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/admin/api-key", r.URL.Path)
			io.WriteString(w, p)
		}))
		key, err := newTestClient(server.URL).CreateAPIKey(context.Background(), "n", "basic")
		server.Close()
		assert.NoError(t, err)
		assert.Equal(t, "on_abc", key)
	}
}

func TestCreateAPIKeyEmptyKeyFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{}`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).CreateAPIKey(context.Background(), "n", "basic")
	assert.True(t, errors.IsCode(err, errors.ErrChatKeyFailed))
}

func TestCreatePersonaBindsDocumentSet(t *testing.T) {
	var requestBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/persona", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		requestBody = string(body)
		io.WriteString(w, `{"id":33}`)
	}))
	defer server.Close()

	id, err := newTestClient(server.URL).CreatePersona(context.Background(), "Assistant-U", 7)
	assert.NoError(t, err)
	assert.Equal(t, 33, id)
	assert.Contains(t, requestBody, `"document_set_ids":[7]`)
	assert.Contains(t, requestBody, `"num_chunks":25`)
	assert.Contains(t, requestBody, `"tool_ids":[1]`)
}

func TestAuthorizationHeaderForwardedVerbatim(t *testing.T) {
	var seen string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("Authorization")
		io.WriteString(w, `{"chat_session_id":"s1"}`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).CreateChatSession(context.Background(), "Bearer on_user_key", map[string]interface{}{})
	assert.NoError(t, err)
	assert.Equal(t, "Bearer on_user_key", seen)
}
