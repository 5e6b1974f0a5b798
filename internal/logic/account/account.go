package account

import (
	"context"

	"github.com/gogf/gf/v2/frame/g"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/cleardocs/backend/core/errors"
	"github.com/cleardocs/backend/internal/auth"
	"github.com/cleardocs/backend/internal/dao"
	gormModel "github.com/cleardocs/backend/internal/model/gorm"
)

// Store 账户存取
type Store interface {
	GetByFirebaseUID(ctx context.Context, firebaseUID string) (*gormModel.Account, error)
	Create(ctx context.Context, account *gormModel.Account) error
}

// PlanLookup 套餐查找
type PlanLookup interface {
	GetByCode(ctx context.Context, code string) (*gormModel.Plan, error)
}

// Service 账户解析与首次注册
type Service struct {
	store Store
	plans PlanLookup
	// 同一外部身份的并发首次请求在进程内合并成一次注册；
	// 跨进程竞态由 firebase_uid 唯一索引兜底，冲突方重读已提交行
	registerGroup singleflight.Group
}

// NewService 创建账户服务
func NewService(store Store, plans PlanLookup) *Service {
	return &Service{store: store, plans: plans}
}

// Resolve 将已校验身份解析为账户；首次见到该身份时注册（免费套餐）
func (s *Service) Resolve(ctx context.Context, identity *auth.Identity) (*gormModel.Account, error) {
	existing, err := s.store.GetByFirebaseUID(ctx, identity.UID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	g.Log().Infof(ctx, "account not found for uid=%s, registering", identity.UID)
	result, err, shared := s.registerGroup.Do(identity.UID, func() (interface{}, error) {
		return s.register(ctx, identity)
	})
	if err != nil {
		return nil, err
	}
	acct := result.(*gormModel.Account)
	if shared {
		// 合并注册的各请求各拿一份拷贝，后续 DocSetID/APIKey 的写入互不串扰
		copied := *acct
		return &copied, nil
	}
	return acct, nil
}

func (s *Service) register(ctx context.Context, identity *auth.Identity) (*gormModel.Account, error) {
	// singleflight 的败者进来时行可能已提交，先重读
	existing, err := s.store.GetByFirebaseUID(ctx, identity.UID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	plan, err := s.plans.GetByCode(ctx, gormModel.PlanCodeFree)
	if err != nil {
		return nil, err
	}

	account := &gormModel.Account{
		ID:          uuid.NewString(),
		FirebaseUID: identity.UID,
		Email:       identity.Email,
		Name:        identity.Name,
		PlanID:      plan.ID,
		Plan:        plan,
	}
	if err := s.store.Create(ctx, account); err != nil {
		if dao.IsDuplicateKey(err) {
			// 另一个进程抢先插入，读它提交的行
			g.Log().Warningf(ctx, "duplicate key on register, fetching existing account uid=%s", identity.UID)
			committed, readErr := s.store.GetByFirebaseUID(ctx, identity.UID)
			if readErr != nil {
				return nil, readErr
			}
			if committed == nil {
				return nil, errors.New(errors.ErrAccountCreateFailed, "account creation failed due to race condition")
			}
			return committed, nil
		}
		return nil, err
	}
	g.Log().Infof(ctx, "registered account id=%s uid=%s", account.ID, identity.UID)
	return account, nil
}
