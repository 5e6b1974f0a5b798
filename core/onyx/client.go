package onyx

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gogf/gf/v2/frame/g"
	"github.com/gogf/gf/v2/net/gclient"

	"github.com/cleardocs/backend/core/errors"
)

const (
	pathDocumentSet      = "/document-set"
	pathAdminDocumentSet = "/admin/document-set"
	pathConnectorUpload  = "/admin/connector/file/upload"
	pathConnectorCreate  = "/admin/connector-with-mock-credential"
	pathConnectorStatus  = "/admin/connector/status"
	pathIndexingStatus   = "/admin/connector/indexing-status"
	pathDeletionAttempt  = "/admin/deletion-attempt"
	pathCcPair           = "/admin/cc-pair"
	pathAPIKey           = "/admin/api-key"
	pathPersona          = "/persona"
	pathChatSession      = "/chat/create-chat-session"
	pathChatMessage      = "/chat/send-chat-message"
)

// Client Onyx 知识库服务的类型化客户端。
// 读操作（列表、状态查询）吞掉传输/解码错误并返回空结果；
// 写操作单次尝试，失败原样上抛，不做重试。
type Client struct {
	baseURL    string
	managePath string
	apiKey     string
	http       *gclient.Client
	stream     *gclient.Client
}

// New 从配置创建 Onyx 客户端。
// 普通调用与流式调用使用不同的超时：流式响应里 LLM 可能长时间停顿，
// 超时需要按分钟计，否则会截断响应。
func New(ctx context.Context) *Client {
	baseURL := g.Cfg().MustGet(ctx, "onyx.baseURL", "http://localhost:3000/api").String()
	managePath := g.Cfg().MustGet(ctx, "onyx.managePath", "/manage").String()
	apiKey := g.Cfg().MustGet(ctx, "onyx.apiKey", "").String()
	timeout := g.Cfg().MustGet(ctx, "onyx.timeout", 30).Int()
	streamTimeout := g.Cfg().MustGet(ctx, "onyx.streamTimeout", 600).Int()

	return NewWithConfig(baseURL, managePath, apiKey,
		time.Duration(timeout)*time.Second,
		time.Duration(streamTimeout)*time.Second)
}

// NewWithConfig 创建指定参数的客户端，主要用于测试
func NewWithConfig(baseURL, managePath, apiKey string, timeout, streamTimeout time.Duration) *Client {
	httpClient := g.Client()
	httpClient.SetTimeout(timeout)

	streamClient := g.Client()
	streamClient.SetTimeout(streamTimeout)
	// 流式连接需要支撑长时间读取，调大响应头超时并保持长连接
	streamClient.Transport = &http.Transport{
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		ResponseHeaderTimeout: streamTimeout,
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		managePath: strings.TrimRight(managePath, "/"),
		apiKey:     apiKey,
		http:       httpClient,
		stream:     streamClient,
	}
}

// url 管理接口地址（/manage 前缀下）
func (c *Client) url(path string) string {
	return c.baseURL + c.managePath + path
}

// urlAPI 非 /manage 前缀的接口地址（如 /persona、/chat）
func (c *Client) urlAPI(path string) string {
	return c.baseURL + path
}

func (c *Client) authHeader() map[string]string {
	if c.apiKey == "" {
		return map[string]string{}
	}
	return map[string]string{"Authorization": "Bearer " + c.apiKey}
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	resp, err := c.http.Header(c.authHeader()).Get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Close()
	if resp.StatusCode >= 400 {
		return errors.Newf(errors.ErrUpstreamFailed, "onyx GET %s returned %d", url, resp.StatusCode)
	}
	return sonic.Unmarshal(resp.ReadAll(), out)
}

func (c *Client) postJSON(ctx context.Context, url string, body interface{}, out interface{}) error {
	return c.doJSON(ctx, http.MethodPost, url, body, out)
}

func (c *Client) doJSON(ctx context.Context, method, url string, body interface{}, out interface{}) error {
	payload, err := sonic.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := c.http.ContentJson().Header(c.authHeader()).DoRequest(ctx, method, url, string(payload))
	if err != nil {
		return errors.Wrap(errors.ErrUpstreamFailed, err, "onyx "+method+" "+url+" failed")
	}
	defer resp.Close()
	if resp.StatusCode >= 400 {
		return errors.Newf(errors.ErrUpstreamFailed, "onyx %s %s returned %d", method, url, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := sonic.Unmarshal(resp.ReadAll(), out); err != nil {
		return errors.Wrap(errors.ErrUpstreamFailed, err, "onyx "+method+" "+url+" returned undecodable body")
	}
	return nil
}

// fetchAllDocumentSets 拉取全部文档集
func (c *Client) fetchAllDocumentSets(ctx context.Context) ([]DocumentSet, error) {
	var sets []DocumentSet
	if err := c.getJSON(ctx, c.url(pathDocumentSet), &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

// fetchIndexingStatus 批量拉取全部连接器的运行状态
func (c *Client) fetchIndexingStatus(ctx context.Context) ([]indexingStatusResponse, error) {
	var responses []indexingStatusResponse
	err := c.postJSON(ctx, c.url(pathIndexingStatus), indexingStatusRequest{GetAllConnectors: true}, &responses)
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// statusByCcPair 构建 cc_pair_id -> 状态 的映射。
// 记录存在但状态为 null 属于上游数据损坏，直接上抛不一致错误，不做默认值兜底。
func (c *Client) statusByCcPair(ctx context.Context) (map[int]string, error) {
	responses, err := c.fetchIndexingStatus(ctx)
	if err != nil {
		return nil, err
	}
	statuses := make(map[int]string)
	for _, resp := range responses {
		for _, item := range resp.IndexingStatuses {
			if item.CcPairID == nil {
				continue
			}
			if item.CcPairStatus == nil {
				return nil, errors.Newf(errors.ErrUpstreamInconsistent,
					"onyx returned null cc_pair_status for cc_pair_id=%d", *item.CcPairID)
			}
			statuses[*item.CcPairID] = *item.CcPairStatus
		}
	}
	return statuses, nil
}

// ConnectorsByDocSet 返回指定文档集的连接器及其运行状态。
// 文档集不存在或 Onyx 不可达时返回空列表：对这些读路径来说
// “没有”和“服务不可用”对调用方是同一回事，不应让用户侧读请求失败。
func (c *Client) ConnectorsByDocSet(ctx context.Context, docSetID int) []Connector {
	sets, err := c.fetchAllDocumentSets(ctx)
	if err != nil {
		g.Log().Warningf(ctx, "failed to fetch connectors from onyx for docSetId=%d: %v", docSetID, err)
		return nil
	}
	var target *DocumentSet
	for i := range sets {
		if sets[i].ID != nil && *sets[i].ID == docSetID {
			target = &sets[i]
			break
		}
	}
	if target == nil {
		g.Log().Debugf(ctx, "document set id=%d not found in onyx response", docSetID)
		return nil
	}
	statuses, err := c.statusByCcPair(ctx)
	if err != nil {
		g.Log().Warningf(ctx, "failed to resolve connector statuses from onyx: %v", err)
		return nil
	}
	connectors := make([]Connector, 0, len(target.CcPairSummaries)+len(target.FederatedConnectorSummaries))
	for _, summary := range target.AllSummaries() {
		status := StatusUnknown
		if summary.ID != nil {
			if s, ok := statuses[*summary.ID]; ok {
				status = s
			}
		}
		connectors = append(connectors, Connector{
			ID:     summary.ID,
			Name:   summary.Name,
			Source: summary.Source,
			Status: status,
		})
	}
	return connectors
}

// AllConnectorNames 返回 Onyx 内全部文档集的连接器名称（用于全局唯一性检查）。
// 失败时返回空集合。
func (c *Client) AllConnectorNames(ctx context.Context) []string {
	sets, err := c.fetchAllDocumentSets(ctx)
	if err != nil {
		g.Log().Warningf(ctx, "failed to fetch all connector names from onyx: %v", err)
		return nil
	}
	var names []string
	for i := range sets {
		for _, summary := range sets[i].AllSummaries() {
			if strings.TrimSpace(summary.Name) != "" {
				names = append(names, summary.Name)
			}
		}
	}
	return names
}

// DocumentSetByID 按 id 查找文档集；不存在或拉取失败时 ok 为 false
func (c *Client) DocumentSetByID(ctx context.Context, id int) (*DocumentSet, bool) {
	sets, err := c.fetchAllDocumentSets(ctx)
	if err != nil {
		g.Log().Warningf(ctx, "failed to fetch document set id=%d: %v", id, err)
		return nil, false
	}
	for i := range sets {
		if sets[i].ID != nil && *sets[i].ID == id {
			return &sets[i], true
		}
	}
	return nil, false
}

// UploadFiles 上传本地文件到 Onyx 文件库，返回 FileStore id 与文件名
func (c *Client) UploadFiles(ctx context.Context, filePaths []string) (*FileUpload, error) {
	if len(filePaths) == 0 {
		return nil, errors.New(errors.ErrInvalidParameter, "at least one file is required")
	}
	parts := make([]string, 0, len(filePaths))
	for _, p := range filePaths {
		parts = append(parts, "files=@file:"+p)
	}
	resp, err := c.http.Header(c.authHeader()).Post(ctx, c.url(pathConnectorUpload), strings.Join(parts, "&"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrUpstreamFailed, err, "onyx file upload failed")
	}
	defer resp.Close()
	if resp.StatusCode >= 400 {
		return nil, errors.Newf(errors.ErrUpstreamFailed, "onyx file upload returned %d", resp.StatusCode)
	}
	var upload FileUpload
	if err := sonic.Unmarshal(resp.ReadAll(), &upload); err != nil {
		return nil, errors.Wrap(errors.ErrUpstreamFailed, err, "onyx file upload returned undecodable body")
	}
	return &upload, nil
}

// CreateFileConnector 创建文件连接器（mock credential），创建即触发索引。
// 返回 cc-pair id。
func (c *Client) CreateFileConnector(ctx context.Context, name string, fileLocations, fileNames []string) (int, error) {
	if len(fileNames) == 0 {
		fileNames = fileLocations
	}
	request := connectorCreateRequest{
		Name:      name,
		Source:    SourceFile,
		InputType: "load_state",
		ConnectorSpecificConfig: map[string]interface{}{
			"file_locations": fileLocations,
			"file_names":     fileNames,
		},
		AccessType: "public",
		Groups:     []int{},
	}
	return c.createConnector(ctx, request)
}

// CreateURLConnector 创建 web 连接器，固定使用递归抓取
func (c *Client) CreateURLConnector(ctx context.Context, name, baseURL string) (int, error) {
	refreshFreq := 86400  // 24h
	pruneFreq := 432000   // 5d
	request := connectorCreateRequest{
		Name:      name,
		Source:    SourceWeb,
		InputType: "load_state",
		ConnectorSpecificConfig: map[string]interface{}{
			"base_url":               baseURL,
			"web_connector_type":     "recursive",
			"scroll_before_scraping": false,
		},
		AccessType:  "public",
		Groups:      []int{},
		RefreshFreq: &refreshFreq,
		PruneFreq:   &pruneFreq,
	}
	return c.createConnector(ctx, request)
}

func (c *Client) createConnector(ctx context.Context, request connectorCreateRequest) (int, error) {
	var response connectorCreateResponse
	if err := c.postJSON(ctx, c.url(pathConnectorCreate), request, &response); err != nil {
		return 0, err
	}
	if response.Success == nil || !*response.Success || response.Data == nil {
		return 0, errors.Newf(errors.ErrConnectorCreateError,
			"failed to create connector in onyx: %s", response.Message)
	}
	return *response.Data, nil
}

// CreateDocumentSet 创建文档集，返回新 id
func (c *Client) CreateDocumentSet(ctx context.Context, name, description string, ccPairIDs []int) (int, error) {
	request := documentSetCreateRequest{
		Name:        name,
		Description: description,
		CcPairIDs:   ccPairIDs,
		IsPublic:    true,
		Users:       []string{},
		Groups:      []int{},
	}
	var id int
	if err := c.postJSON(ctx, c.url(pathAdminDocumentSet), request, &id); err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateDocumentSet 更新文档集成员列表。Onyx 这里要求 PATCH 而不是 POST。
func (c *Client) UpdateDocumentSet(ctx context.Context, update *DocumentSetUpdate) error {
	return c.doJSON(ctx, http.MethodPatch, c.url(pathAdminDocumentSet), update, nil)
}

// CcPairStatus 解析单个连接器的运行状态。
// Onyx 返回了记录但状态为 null 属于数据损坏，上抛不一致错误；
// 记录不存在上抛 NotFound。
func (c *Client) CcPairStatus(ctx context.Context, ccPairID int) (string, error) {
	responses, err := c.fetchIndexingStatus(ctx)
	if err != nil {
		return "", err
	}
	for _, resp := range responses {
		for _, item := range resp.IndexingStatuses {
			if item.CcPairID != nil && *item.CcPairID == ccPairID {
				if item.CcPairStatus == nil {
					return "", errors.Newf(errors.ErrUpstreamInconsistent,
						"onyx returned null cc_pair_status for cc_pair_id=%d", ccPairID)
				}
				return *item.CcPairStatus, nil
			}
		}
	}
	return "", errors.Newf(errors.ErrConnectorNotFound,
		"connector not found in onyx indexing status: cc_pair_id=%d", ccPairID)
}

// UpdateConnectorStatus 修改连接器状态: PUT /admin/cc-pair/{id}/status
func (c *Client) UpdateConnectorStatus(ctx context.Context, ccPairID int, status string) error {
	url := c.url(pathCcPair + "/" + strconv.Itoa(ccPairID) + "/status")
	g.Log().Infof(ctx, "onyx request: PUT %s status=%s", url, status)
	return c.doJSON(ctx, http.MethodPut, url, statusUpdateRequest{Status: status}, nil)
}

// PauseConnector 暂停连接器
func (c *Client) PauseConnector(ctx context.Context, ccPairID int) error {
	return c.UpdateConnectorStatus(ctx, ccPairID, StatusPaused)
}

// ResumeConnector 恢复连接器
func (c *Client) ResumeConnector(ctx context.Context, ccPairID int) error {
	return c.UpdateConnectorStatus(ctx, ccPairID, StatusActive)
}

// DeleteConnector 通过 deletion-attempt 删除连接器。
// 删除前置条件：连接器必须是 PAUSED，正在索引的连接器不允许删除。
// cc-pair id 与 (connector_id, credential_id) 是两套独立的外部标识，
// 必须经 connector/status 接口解析，不能假设相等。
func (c *Client) DeleteConnector(ctx context.Context, ccPairID int) error {
	status, err := c.CcPairStatus(ctx, ccPairID)
	if err != nil {
		return err
	}
	if !strings.EqualFold(status, StatusPaused) {
		return errors.Newf(errors.ErrConnectorNotPaused,
			"connector must be paused before deletion. Current status: %s", status)
	}

	var statuses []connectorStatus
	if err := c.getJSON(ctx, c.url(pathConnectorStatus), &statuses); err != nil {
		return errors.Wrap(errors.ErrUpstreamFailed, err, "onyx connector status fetch failed")
	}
	var target *connectorStatus
	for i := range statuses {
		if statuses[i].CcPairID != nil && *statuses[i].CcPairID == ccPairID {
			target = &statuses[i]
			break
		}
	}
	if target == nil {
		return errors.Newf(errors.ErrConnectorNotFound,
			"connector not found in onyx status: cc_pair_id=%d", ccPairID)
	}
	if target.Connector == nil || target.Connector.ID == nil ||
		target.Credential == nil || target.Credential.ID == nil {
		return errors.Newf(errors.ErrUpstreamInconsistent,
			"connector or credential id missing for cc_pair_id=%d", ccPairID)
	}

	url := c.url(pathDeletionAttempt)
	g.Log().Infof(ctx, "onyx request: POST %s connector_id=%d credential_id=%d",
		url, *target.Connector.ID, *target.Credential.ID)
	return c.doJSON(ctx, http.MethodPost, url, deletionAttemptRequest{
		ConnectorID:  *target.Connector.ID,
		CredentialID: *target.Credential.ID,
	}, nil)
}

// CreateAPIKey 创建角色限定的 API Key，返回密钥串
func (c *Client) CreateAPIKey(ctx context.Context, name, role string) (string, error) {
	if name == "" {
		name = "Chat Key"
	}
	if role == "" {
		role = "limited"
	}
	var response apiKeyCreateResponse
	err := c.postJSON(ctx, c.urlAPI(pathAPIKey), apiKeyCreateRequest{Name: name, Role: role}, &response)
	if err != nil {
		return "", err
	}
	if response.keyValue() == "" {
		return "", errors.New(errors.ErrChatKeyFailed, "onyx create API key returned empty key")
	}
	return response.keyValue(), nil
}

// CreatePersona 创建绑定指定文档集的 persona，返回 persona id
func (c *Client) CreatePersona(ctx context.Context, name string, docSetID int) (int, error) {
	if name == "" {
		name = "Chat Assistant"
	}
	request := personaUpsertRequest{
		Name:           name,
		DocumentSetIDs: []int{docSetID},
		NumChunks:      25,
		IsPublic:       true,
		RecencyBias:    "base_decay",
		ToolIDs:        []int{1}, // internal_search，文档检索必需
	}
	var snapshot personaSnapshot
	if err := c.postJSON(ctx, c.urlAPI(pathPersona), request, &snapshot); err != nil {
		return 0, err
	}
	if snapshot.ID == nil {
		return 0, errors.New(errors.ErrChatPersonaFailed, "onyx create persona returned empty id")
	}
	return *snapshot.ID, nil
}

// CreateChatSession 代理 create-chat-session。
// Authorization 头原样转发（调用方持有自己的 Onyx API Key），不做凭证转换。
func (c *Client) CreateChatSession(ctx context.Context, authorization string, body map[string]interface{}) (map[string]interface{}, error) {
	payload, err := sonic.Marshal(body)
	if err != nil {
		return nil, err
	}
	headers := map[string]string{}
	if authorization != "" {
		headers["Authorization"] = authorization
	}
	resp, err := c.http.ContentJson().Header(headers).Post(ctx, c.urlAPI(pathChatSession), string(payload))
	if err != nil {
		return nil, errors.Wrap(errors.ErrUpstreamFailed, err, "onyx create chat session failed")
	}
	defer resp.Close()
	if resp.StatusCode >= 400 {
		return nil, errors.Newf(errors.ErrUpstreamFailed, "onyx create chat session returned %d", resp.StatusCode)
	}
	var result map[string]interface{}
	if err := sonic.Unmarshal(resp.ReadAll(), &result); err != nil {
		return nil, errors.Wrap(errors.ErrUpstreamFailed, err, "onyx create chat session returned undecodable body")
	}
	return result, nil
}
