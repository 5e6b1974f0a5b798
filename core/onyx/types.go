package onyx

// 连接器运行状态（cc-pair 状态），来源于 Onyx indexing-status 接口
const (
	StatusScheduled = "SCHEDULED"
	StatusActive    = "ACTIVE"
	StatusPaused    = "PAUSED"
	StatusUnknown   = "UNKNOWN"
)

// 连接器来源类型
const (
	SourceFile = "file"
	SourceWeb  = "web"
)

// Connector 文档集内一个连接器的视图（cc-pair + 运行状态）
type Connector struct {
	ID     *int   `json:"id"`
	Name   string `json:"name"`
	Source string `json:"source"`
	Status string `json:"status"`
}

// ConnectorSummary Onyx 文档集响应内的连接器摘要
type ConnectorSummary struct {
	ID         *int   `json:"id"`
	Name       string `json:"name"`
	Source     string `json:"source"`
	AccessType string `json:"access_type"`
}

// DocumentSet Onyx 文档集
type DocumentSet struct {
	ID                          *int               `json:"id"`
	Name                        string             `json:"name"`
	Description                 string             `json:"description"`
	IsPublic                    bool               `json:"is_public"`
	Users                       []string           `json:"users"`
	Groups                      []int              `json:"groups"`
	CcPairSummaries             []ConnectorSummary `json:"cc_pair_summaries"`
	FederatedConnectorSummaries []ConnectorSummary `json:"federated_connector_summaries"`
}

// AllSummaries 返回常规与 federated 连接器摘要的合集
func (d *DocumentSet) AllSummaries() []ConnectorSummary {
	result := make([]ConnectorSummary, 0, len(d.CcPairSummaries)+len(d.FederatedConnectorSummaries))
	result = append(result, d.CcPairSummaries...)
	result = append(result, d.FederatedConnectorSummaries...)
	return result
}

// FileUpload Onyx 文件上传结果，file_paths 为 FileStore 内部 id
type FileUpload struct {
	FilePaths         []string `json:"file_paths"`
	FileNames         []string `json:"file_names"`
	ZipMetadataFileID string   `json:"zip_metadata_file_id"`
}

// DocumentSetUpdate 文档集更新请求，保留原有可见性与 ACL 字段
type DocumentSetUpdate struct {
	ID          int      `json:"id"`
	Description string   `json:"description"`
	CcPairIDs   []int    `json:"cc_pair_ids"`
	IsPublic    bool     `json:"is_public"`
	Users       []string `json:"users"`
	Groups      []int    `json:"groups"`
}

type documentSetCreateRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	CcPairIDs   []int    `json:"cc_pair_ids"`
	IsPublic    bool     `json:"is_public"`
	Users       []string `json:"users"`
	Groups      []int    `json:"groups"`
}

type connectorCreateRequest struct {
	Name                    string                 `json:"name"`
	Source                  string                 `json:"source"`
	InputType               string                 `json:"input_type"`
	ConnectorSpecificConfig map[string]interface{} `json:"connector_specific_config"`
	AccessType              string                 `json:"access_type"`
	Groups                  []int                  `json:"groups"`
	RefreshFreq             *int                   `json:"refresh_freq,omitempty"`
	PruneFreq               *int                   `json:"prune_freq,omitempty"`
	IndexingStart           *string                `json:"indexing_start,omitempty"`
}

type connectorCreateResponse struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
	Data    *int   `json:"data"`
}

type indexingStatusRequest struct {
	GetAllConnectors bool `json:"get_all_connectors"`
}

type indexingStatusLite struct {
	CcPairID     *int    `json:"cc_pair_id"`
	CcPairStatus *string `json:"cc_pair_status"`
}

type indexingStatusResponse struct {
	IndexingStatuses []indexingStatusLite `json:"indexing_statuses"`
}

type idSnapshot struct {
	ID *int `json:"id"`
}

// connectorStatus 将 cc-pair id 解析到底层 (connector_id, credential_id)
type connectorStatus struct {
	CcPairID   *int        `json:"cc_pair_id"`
	Connector  *idSnapshot `json:"connector"`
	Credential *idSnapshot `json:"credential"`
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

type deletionAttemptRequest struct {
	ConnectorID  int `json:"connector_id"`
	CredentialID int `json:"credential_id"`
}

type apiKeyCreateRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type apiKeyCreateResponse struct {
	APIKey string `json:"api_key"`
	Key    string `json:"key"`
}

// keyValue Onyx 在不同版本里用 api_key 或 key 字段返回密钥
func (r *apiKeyCreateResponse) keyValue() string {
	if r.APIKey != "" {
		return r.APIKey
	}
	return r.Key
}

type personaUpsertRequest struct {
	Name                string `json:"name"`
	Description         string `json:"description"`
	DocumentSetIDs      []int  `json:"document_set_ids"`
	NumChunks           int    `json:"num_chunks"`
	IsPublic            bool   `json:"is_public"`
	RecencyBias         string `json:"recency_bias"`
	LLMFilterExtraction bool   `json:"llm_filter_extraction"`
	LLMRelevanceFilter  bool   `json:"llm_relevance_filter"`
	ToolIDs             []int  `json:"tool_ids"`
	SystemPrompt        string `json:"system_prompt"`
	TaskPrompt          string `json:"task_prompt"`
	DatetimeAware       bool   `json:"datetime_aware"`
}

type personaSnapshot struct {
	ID *int `json:"id"`
}
