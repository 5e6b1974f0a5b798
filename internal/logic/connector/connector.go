package connector

import (
	"context"
	"strings"

	"github.com/gogf/gf/v2/frame/g"

	"github.com/cleardocs/backend/core/common"
	"github.com/cleardocs/backend/core/errors"
	"github.com/cleardocs/backend/core/onyx"
	gormModel "github.com/cleardocs/backend/internal/model/gorm"
)

// 自动生成的文档集名称前缀
const defaultDocumentSetName = "Docs"

// Gateway 编排器依赖的 Onyx 操作面
type Gateway interface {
	ConnectorsByDocSet(ctx context.Context, docSetID int) []onyx.Connector
	AllConnectorNames(ctx context.Context) []string
	DocumentSetByID(ctx context.Context, id int) (*onyx.DocumentSet, bool)
	UploadFiles(ctx context.Context, filePaths []string) (*onyx.FileUpload, error)
	CreateFileConnector(ctx context.Context, name string, fileLocations, fileNames []string) (int, error)
	CreateURLConnector(ctx context.Context, name, url string) (int, error)
	CreateDocumentSet(ctx context.Context, name, description string, ccPairIDs []int) (int, error)
	UpdateDocumentSet(ctx context.Context, update *onyx.DocumentSetUpdate) error
	PauseConnector(ctx context.Context, ccPairID int) error
	ResumeConnector(ctx context.Context, ccPairID int) error
	DeleteConnector(ctx context.Context, ccPairID int) error
}

// AccountStore 账户持久化（只需要更新）
type AccountStore interface {
	Update(ctx context.Context, account *gormModel.Account) error
}

// Service 资源生命周期编排器。
// 每个账户至多一个文档集：首个连接器创建成功时惰性建出，
// 之后的连接器合并进成员列表。外部状态漂移（文档集被外部删除）
// 通过回落到首建路径自愈，不让用户请求失败。
type Service struct {
	gw       Gateway
	accounts AccountStore
}

// NewService 创建编排器
func NewService(gw Gateway, accounts AccountStore) *Service {
	return &Service{gw: gw, accounts: accounts}
}

// ListResult 连接器列表与配额余量
type ListResult struct {
	Connectors []onyx.Connector `json:"connectors"`
	CanAdd     bool             `json:"canAdd"`
}

// Created 新建连接器的结果
type Created struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Source string `json:"source"`
}

// List 返回账户的连接器及是否还能新增
func (s *Service) List(ctx context.Context, account *gormModel.Account) *ListResult {
	g.Log().Infof(ctx, "list connectors - account id=%s docSetId=%v", account.ID, account.DocSetID)
	var connectors []onyx.Connector
	if account.DocSetID != nil {
		connectors = s.gw.ConnectorsByDocSet(ctx, *account.DocSetID)
	}
	if connectors == nil {
		connectors = []onyx.Connector{}
	}
	maxConnectors := account.Plan.MaxConnectors()
	return &ListResult{
		Connectors: connectors,
		CanAdd:     len(connectors) < maxConnectors,
	}
}

// CreateFileConnector 创建文件连接器并把它并入账户的文档集
func (s *Service) CreateFileConnector(ctx context.Context, account *gormModel.Account, name string, filePaths []string) (*Created, error) {
	g.Log().Infof(ctx, "create file connector - account id=%s docSetId=%v name=%s",
		account.ID, account.DocSetID, name)

	if strings.TrimSpace(name) == "" {
		return nil, errors.New(errors.ErrInvalidParameter, "connector name is required")
	}
	if len(filePaths) == 0 {
		return nil, errors.New(errors.ErrInvalidParameter, "at least one file is required")
	}

	existing, err := s.checkQuota(ctx, account)
	if err != nil {
		return nil, err
	}

	upload, err := s.gw.UploadFiles(ctx, filePaths)
	if err != nil {
		return nil, err
	}
	if len(upload.FilePaths) == 0 {
		return nil, errors.New(errors.ErrInvalidParameter, "no valid files were uploaded")
	}

	connectorName := s.uniqueConnectorName(ctx, account, name)
	ccPairID, err := s.gw.CreateFileConnector(ctx, connectorName, upload.FilePaths, upload.FileNames)
	if err != nil {
		return nil, err
	}

	if err := s.linkConnector(ctx, account, existing, ccPairID); err != nil {
		return nil, err
	}
	g.Log().Infof(ctx, "create file connector - done cc_pair_id=%d", ccPairID)
	return &Created{ID: ccPairID, Name: connectorName, Source: onyx.SourceFile}, nil
}

// CreateURLConnector 创建 web 连接器并把它并入账户的文档集
func (s *Service) CreateURLConnector(ctx context.Context, account *gormModel.Account, name, url string) (*Created, error) {
	g.Log().Infof(ctx, "create url connector - account id=%s docSetId=%v name=%s url=%s",
		account.ID, account.DocSetID, name, url)

	if strings.TrimSpace(name) == "" {
		return nil, errors.New(errors.ErrInvalidParameter, "connector name is required")
	}
	if strings.TrimSpace(url) == "" {
		return nil, errors.New(errors.ErrInvalidParameter, "url is required")
	}

	existing, err := s.checkQuota(ctx, account)
	if err != nil {
		return nil, err
	}

	connectorName := s.uniqueConnectorName(ctx, account, name)
	ccPairID, err := s.gw.CreateURLConnector(ctx, connectorName, url)
	if err != nil {
		return nil, err
	}

	if err := s.linkConnector(ctx, account, existing, ccPairID); err != nil {
		return nil, err
	}
	g.Log().Infof(ctx, "create url connector - done cc_pair_id=%d", ccPairID)
	return &Created{ID: ccPairID, Name: connectorName, Source: onyx.SourceWeb}, nil
}

// UpdateStatus 暂停或恢复账户自己的连接器。status 取 paused/active（大小写不敏感）。
func (s *Service) UpdateStatus(ctx context.Context, account *gormModel.Account, ccPairID int, status string) error {
	g.Log().Infof(ctx, "update connector - account id=%s docSetId=%v ccPairId=%d status=%s",
		account.ID, account.DocSetID, ccPairID, status)

	if err := s.checkOwnership(ctx, account, ccPairID); err != nil {
		return err
	}
	switch {
	case strings.EqualFold(status, "paused"):
		if err := s.gw.PauseConnector(ctx, ccPairID); err != nil {
			return err
		}
		g.Log().Infof(ctx, "update connector - connector %d paused", ccPairID)
	case strings.EqualFold(status, "active"):
		if err := s.gw.ResumeConnector(ctx, ccPairID); err != nil {
			return err
		}
		g.Log().Infof(ctx, "update connector - connector %d resumed", ccPairID)
	default:
		return errors.Newf(errors.ErrInvalidParameter, "status must be 'paused' or 'active', got: %s", status)
	}
	return nil
}

// Delete 删除账户自己的连接器。
// 暂停前置校验由网关的受保护删除负责；编排器不额外改动文档集成员列表，
// deletion-attempt 流程会在外部完成摘除。
func (s *Service) Delete(ctx context.Context, account *gormModel.Account, ccPairID int) error {
	g.Log().Infof(ctx, "delete connector - account id=%s docSetId=%v ccPairId=%d",
		account.ID, account.DocSetID, ccPairID)

	if err := s.checkOwnership(ctx, account, ccPairID); err != nil {
		return err
	}
	if err := s.gw.DeleteConnector(ctx, ccPairID); err != nil {
		return err
	}
	g.Log().Infof(ctx, "delete connector - done, connector %d deleted", ccPairID)
	return nil
}

// checkQuota 读取当前成员并校验配额。
// 成员数每次新鲜拉取，不做缓存；对外部服务这步检查不是原子的，
// 同账户并发创建可能双双通过（已知限制）。
func (s *Service) checkQuota(ctx context.Context, account *gormModel.Account) ([]onyx.Connector, error) {
	var existing []onyx.Connector
	if account.DocSetID != nil {
		existing = s.gw.ConnectorsByDocSet(ctx, *account.DocSetID)
	}
	maxConnectors := account.Plan.MaxConnectors()
	if len(existing) >= maxConnectors {
		g.Log().Warningf(ctx, "connector limit reached - account id=%s current=%d max=%d",
			account.ID, len(existing), maxConnectors)
		return nil, errors.Newf(errors.ErrConnectorLimit,
			"Connector limit reached. Current: %d, Maximum allowed: %d", len(existing), maxConnectors)
	}
	return existing, nil
}

// checkOwnership 重新拉取成员列表，校验连接器归属于账户自己的文档集
func (s *Service) checkOwnership(ctx context.Context, account *gormModel.Account, ccPairID int) error {
	if account.DocSetID == nil {
		return errors.New(errors.ErrNotFound, "account has no document set")
	}
	connectors := s.gw.ConnectorsByDocSet(ctx, *account.DocSetID)
	for _, c := range connectors {
		if c.ID != nil && *c.ID == ccPairID {
			return nil
		}
	}
	return errors.New(errors.ErrConnectorNotFound, "connector not found")
}

// uniqueConnectorName 连接器名称做全局去重
func (s *Service) uniqueConnectorName(ctx context.Context, account *gormModel.Account, name string) string {
	return common.EnsureUniqueName(name, s.gw.AllConnectorNames(ctx), common.NameSuffix(account.ID))
}

// linkConnector 将新连接器并入账户的文档集：
// 没有文档集时首建；有文档集但外部已丢失时自愈重建。
func (s *Service) linkConnector(ctx context.Context, account *gormModel.Account, existing []onyx.Connector, ccPairID int) error {
	if account.DocSetID == nil {
		return s.createAndLinkDocumentSet(ctx, account, ccPairID)
	}

	docSet, ok := s.gw.DocumentSetByID(ctx, *account.DocSetID)
	if !ok {
		// 文档集在 Onyx 侧被删或数据不一致，重建一个
		g.Log().Warningf(ctx, "document set id=%d not found in onyx, creating new document set for account id=%s",
			*account.DocSetID, account.ID)
		return s.createAndLinkDocumentSet(ctx, account, ccPairID)
	}

	ccPairIDs := make([]int, 0, len(existing)+1)
	for _, c := range existing {
		if c.ID != nil {
			ccPairIDs = append(ccPairIDs, *c.ID)
		}
	}
	ccPairIDs = append(ccPairIDs, ccPairID)

	update := &onyx.DocumentSetUpdate{
		ID:          *docSet.ID,
		Description: docSet.Description,
		CcPairIDs:   ccPairIDs,
		IsPublic:    docSet.IsPublic,
		Users:       docSet.Users,
		Groups:      docSet.Groups,
	}
	if err := s.gw.UpdateDocumentSet(ctx, update); err != nil {
		return err
	}
	g.Log().Infof(ctx, "updated document set id=%d with new connector", *docSet.ID)
	return nil
}

func (s *Service) createAndLinkDocumentSet(ctx context.Context, account *gormModel.Account, ccPairID int) error {
	name := common.DocumentSetNameFor(defaultDocumentSetName, account.ID, account.Name, account.Email)
	docSetID, err := s.gw.CreateDocumentSet(ctx, name, "", []int{ccPairID})
	if err != nil {
		return err
	}
	account.DocSetID = &docSetID
	if err := s.accounts.Update(ctx, account); err != nil {
		return err
	}
	g.Log().Infof(ctx, "created document set id=%d for account id=%s", docSetID, account.ID)
	return nil
}
