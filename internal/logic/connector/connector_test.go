package connector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cleardocs/backend/core/errors"
	"github.com/cleardocs/backend/core/onyx"
	gormModel "github.com/cleardocs/backend/internal/model/gorm"
)

// fakeGateway 记录调用并返回预置结果的 Onyx 网关
type fakeGateway struct {
	connectors     []onyx.Connector
	connectorNames []string
	docSets        map[int]*onyx.DocumentSet
	nextCcPairID   int
	nextDocSetID   int

	uploadedPaths    []string
	createdFileNames []string
	createdURLNames  []string
	createdDocSets   []string
	updatedDocSets   []*onyx.DocumentSetUpdate
	pausedIDs        []int
	resumedIDs       []int
	deletedIDs       []int

	createErr error
	deleteErr error
}

func (f *fakeGateway) ConnectorsByDocSet(ctx context.Context, docSetID int) []onyx.Connector {
	return f.connectors
}

func (f *fakeGateway) AllConnectorNames(ctx context.Context) []string {
	return f.connectorNames
}

func (f *fakeGateway) DocumentSetByID(ctx context.Context, id int) (*onyx.DocumentSet, bool) {
	ds, ok := f.docSets[id]
	return ds, ok
}

func (f *fakeGateway) UploadFiles(ctx context.Context, filePaths []string) (*onyx.FileUpload, error) {
	f.uploadedPaths = append(f.uploadedPaths, filePaths...)
	return &onyx.FileUpload{FilePaths: filePaths, FileNames: filePaths}, nil
}

func (f *fakeGateway) CreateFileConnector(ctx context.Context, name string, fileLocations, fileNames []string) (int, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.createdFileNames = append(f.createdFileNames, name)
	return f.nextCcPairID, nil
}

func (f *fakeGateway) CreateURLConnector(ctx context.Context, name, url string) (int, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.createdURLNames = append(f.createdURLNames, name)
	return f.nextCcPairID, nil
}

func (f *fakeGateway) CreateDocumentSet(ctx context.Context, name, description string, ccPairIDs []int) (int, error) {
	f.createdDocSets = append(f.createdDocSets, name)
	return f.nextDocSetID, nil
}

func (f *fakeGateway) UpdateDocumentSet(ctx context.Context, update *onyx.DocumentSetUpdate) error {
	f.updatedDocSets = append(f.updatedDocSets, update)
	return nil
}

func (f *fakeGateway) PauseConnector(ctx context.Context, ccPairID int) error {
	f.pausedIDs = append(f.pausedIDs, ccPairID)
	return nil
}

func (f *fakeGateway) ResumeConnector(ctx context.Context, ccPairID int) error {
	f.resumedIDs = append(f.resumedIDs, ccPairID)
	return nil
}

func (f *fakeGateway) DeleteConnector(ctx context.Context, ccPairID int) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedIDs = append(f.deletedIDs, ccPairID)
	return nil
}

// fakeAccountStore 记录更新过的账户
type fakeAccountStore struct {
	updated []*gormModel.Account
	err     error
}

func (f *fakeAccountStore) Update(ctx context.Context, account *gormModel.Account) error {
	if f.err != nil {
		return f.err
	}
	f.updated = append(f.updated, account)
	return nil
}

func intPtr(v int) *int { return &v }

func testAccount(docSetID *int, maxConnectors int) *gormModel.Account {
	return &gormModel.Account{
		ID:       "19e576e3-94f1-45ba-bfd4-984f33c11d81",
		Email:    "user@example.com",
		Name:     "Test User",
		DocSetID: docSetID,
		Plan: &gormModel.Plan{
			Code:  gormModel.PlanCodeFree,
			Limit: &gormModel.PlanLimit{MaxConnectors: maxConnectors},
		},
	}
}

func TestListWithoutDocumentSet(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{}
	svc := NewService(gw, &fakeAccountStore{})

	// 还没有文档集的账户应返回空列表且允许新增
	result := svc.List(ctx, testAccount(nil, 3))
	assert.NotNil(t, result.Connectors)
	assert.Empty(t, result.Connectors)
	assert.True(t, result.CanAdd)
}

func TestListQuotaExhausted(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{
		connectors: []onyx.Connector{
			{ID: intPtr(1), Name: "a"},
			{ID: intPtr(2), Name: "b"},
		},
	}
	svc := NewService(gw, &fakeAccountStore{})

	result := svc.List(ctx, testAccount(intPtr(10), 2))
	assert.Len(t, result.Connectors, 2)
	assert.False(t, result.CanAdd)
}

func TestCreateFileConnectorFirstTimeCreatesDocumentSet(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{nextCcPairID: 42, nextDocSetID: 7}
	store := &fakeAccountStore{}
	svc := NewService(gw, store)
	account := testAccount(nil, 3)

	created, err := svc.CreateFileConnector(ctx, account, "My Docs", []string{"/tmp/a.pdf"})
	assert.NoError(t, err)
	assert.Equal(t, 42, created.ID)
	assert.Equal(t, onyx.SourceFile, created.Source)

	// 首个连接器创建后应建出文档集并持久化 id
	assert.Len(t, gw.createdDocSets, 1)
	assert.NotNil(t, account.DocSetID)
	assert.Equal(t, 7, *account.DocSetID)
	assert.Len(t, store.updated, 1)
}

func TestCreateFileConnectorMergesIntoExistingDocumentSet(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{
		nextCcPairID: 43,
		connectors:   []onyx.Connector{{ID: intPtr(42), Name: "first"}},
		docSets: map[int]*onyx.DocumentSet{
			7: {ID: intPtr(7), Description: "keep me", IsPublic: true, Users: []string{"u1"}},
		},
	}
	store := &fakeAccountStore{}
	svc := NewService(gw, store)
	account := testAccount(intPtr(7), 3)

	_, err := svc.CreateFileConnector(ctx, account, "Second", []string{"/tmp/b.pdf"})
	assert.NoError(t, err)

	// 已有文档集时不应重建，只应把新 cc-pair 并入成员列表
	assert.Empty(t, gw.createdDocSets)
	assert.Len(t, gw.updatedDocSets, 1)
	update := gw.updatedDocSets[0]
	assert.Equal(t, 7, update.ID)
	assert.Equal(t, []int{42, 43}, update.CcPairIDs)
	assert.Equal(t, "keep me", update.Description)
	assert.True(t, update.IsPublic)
	assert.Equal(t, []string{"u1"}, update.Users)
	assert.Empty(t, store.updated)
}

func TestCreateFileConnectorHealsMissingDocumentSet(t *testing.T) {
	ctx := context.Background()
	// 账户记录了 docSetId=7 但 Onyx 侧已不存在
	gw := &fakeGateway{nextCcPairID: 44, nextDocSetID: 9, docSets: map[int]*onyx.DocumentSet{}}
	store := &fakeAccountStore{}
	svc := NewService(gw, store)
	account := testAccount(intPtr(7), 3)

	_, err := svc.CreateFileConnector(ctx, account, "Recovered", []string{"/tmp/c.pdf"})
	assert.NoError(t, err)
	assert.Len(t, gw.createdDocSets, 1)
	assert.Equal(t, 9, *account.DocSetID)
	assert.Len(t, store.updated, 1)
}

func TestCreateFileConnectorQuotaRejectedBeforeUpstream(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{
		connectors: []onyx.Connector{{ID: intPtr(1)}, {ID: intPtr(2)}},
	}
	svc := NewService(gw, &fakeAccountStore{})
	account := testAccount(intPtr(7), 2)

	_, err := svc.CreateFileConnector(ctx, account, "One Too Many", []string{"/tmp/d.pdf"})
	assert.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConnectorLimit))

	// 配额拒绝时不得触碰上游
	assert.Empty(t, gw.uploadedPaths)
	assert.Empty(t, gw.createdFileNames)
}

func TestCreateFileConnectorValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&fakeGateway{}, &fakeAccountStore{})
	account := testAccount(nil, 3)

	_, err := svc.CreateFileConnector(ctx, account, "  ", []string{"/tmp/a.pdf"})
	assert.True(t, errors.IsCode(err, errors.ErrInvalidParameter))

	_, err = svc.CreateFileConnector(ctx, account, "Name", nil)
	assert.True(t, errors.IsCode(err, errors.ErrInvalidParameter))
}

func TestCreateURLConnectorUniquifiesName(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{
		nextCcPairID:   50,
		nextDocSetID:   11,
		connectorNames: []string{"Blog"},
	}
	svc := NewService(gw, &fakeAccountStore{})
	account := testAccount(nil, 3)

	created, err := svc.CreateURLConnector(ctx, account, "Blog", "https://example.com")
	assert.NoError(t, err)
	assert.Equal(t, onyx.SourceWeb, created.Source)

	// 重名时应追加账户后缀
	assert.Len(t, gw.createdURLNames, 1)
	assert.Equal(t, "Blog - 19e576e3", gw.createdURLNames[0])
	assert.Equal(t, created.Name, gw.createdURLNames[0])
}

func TestUpdateStatusPauseAndResume(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{connectors: []onyx.Connector{{ID: intPtr(5)}}}
	svc := NewService(gw, &fakeAccountStore{})
	account := testAccount(intPtr(7), 3)

	assert.NoError(t, svc.UpdateStatus(ctx, account, 5, "PAUSED"))
	assert.Equal(t, []int{5}, gw.pausedIDs)

	assert.NoError(t, svc.UpdateStatus(ctx, account, 5, "active"))
	assert.Equal(t, []int{5}, gw.resumedIDs)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{connectors: []onyx.Connector{{ID: intPtr(5)}}}
	svc := NewService(gw, &fakeAccountStore{})

	err := svc.UpdateStatus(ctx, testAccount(intPtr(7), 3), 5, "stopped")
	assert.True(t, errors.IsCode(err, errors.ErrInvalidParameter))
	assert.Empty(t, gw.pausedIDs)
	assert.Empty(t, gw.resumedIDs)
}

func TestUpdateStatusRejectsForeignConnector(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{connectors: []onyx.Connector{{ID: intPtr(5)}}}
	svc := NewService(gw, &fakeAccountStore{})

	// 不属于账户文档集的连接器不可操作
	err := svc.UpdateStatus(ctx, testAccount(intPtr(7), 3), 99, "paused")
	assert.True(t, errors.IsCode(err, errors.ErrConnectorNotFound))
}

func TestDeleteOwnConnector(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{connectors: []onyx.Connector{{ID: intPtr(5)}}}
	svc := NewService(gw, &fakeAccountStore{})

	assert.NoError(t, svc.Delete(ctx, testAccount(intPtr(7), 3), 5))
	assert.Equal(t, []int{5}, gw.deletedIDs)
}

func TestDeletePropagatesNotPaused(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{
		connectors: []onyx.Connector{{ID: intPtr(5)}},
		deleteErr:  errors.New(errors.ErrConnectorNotPaused, "connector must be paused before deletion"),
	}
	svc := NewService(gw, &fakeAccountStore{})

	err := svc.Delete(ctx, testAccount(intPtr(7), 3), 5)
	assert.True(t, errors.IsCode(err, errors.ErrConnectorNotPaused))
	assert.Empty(t, gw.deletedIDs)
}

func TestDeleteWithoutDocumentSet(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{}
	svc := NewService(gw, &fakeAccountStore{})

	err := svc.Delete(ctx, testAccount(nil, 3), 5)
	assert.True(t, errors.IsCode(err, errors.ErrNotFound))
}
