package plan

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gogf/gf/v2/frame/g"

	"github.com/cleardocs/backend/core/cache"
	"github.com/cleardocs/backend/core/common"
	"github.com/cleardocs/backend/core/errors"
	"github.com/cleardocs/backend/internal/dao"
	gormModel "github.com/cleardocs/backend/internal/model/gorm"
)

const (
	catalogCacheKey = "cleardocs:plans:catalog"
	catalogCacheTTL = 10 * time.Minute
)

// Service 套餐目录。套餐是不可变参考数据，目录整体可缓存；
// 缓存不可用时直接读库。
type Service struct{}

// NewService 创建套餐服务
func NewService() *Service {
	return &Service{}
}

// List 返回全部套餐
func (s *Service) List(ctx context.Context) ([]*gormModel.Plan, error) {
	if cached := s.fromCache(ctx); cached != nil {
		return cached, nil
	}
	plans, err := dao.Plan.List(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabaseQuery, err, "failed to list plans")
	}
	// 缓存回填不在请求路径上等待
	common.SafeGo(ctx, "plan-catalog-cache", func() {
		s.toCache(context.WithoutCancel(ctx), plans)
	})
	return plans, nil
}

// GetByCode 按代码查找套餐，未找到返回 NotFound
func (s *Service) GetByCode(ctx context.Context, code string) (*gormModel.Plan, error) {
	plan, err := dao.Plan.GetByCode(ctx, code)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabaseQuery, err, "failed to query plan")
	}
	if plan == nil {
		return nil, errors.Newf(errors.ErrPlanNotFound, "plan is not found with code = %s", code)
	}
	return plan, nil
}

func (s *Service) fromCache(ctx context.Context) []*gormModel.Plan {
	rdb := cache.GetRedisClient()
	if rdb == nil {
		return nil
	}
	raw, err := rdb.Get(ctx, catalogCacheKey).Bytes()
	if err != nil {
		return nil
	}
	var plans []*gormModel.Plan
	if err := sonic.Unmarshal(raw, &plans); err != nil {
		g.Log().Warningf(ctx, "plan catalog cache decode failed: %v", err)
		return nil
	}
	return plans
}

func (s *Service) toCache(ctx context.Context, plans []*gormModel.Plan) {
	rdb := cache.GetRedisClient()
	if rdb == nil {
		return
	}
	raw, err := sonic.Marshal(plans)
	if err != nil {
		return
	}
	if err := rdb.Set(ctx, catalogCacheKey, raw, catalogCacheTTL).Err(); err != nil {
		g.Log().Warningf(ctx, "plan catalog cache write failed: %v", err)
	}
}
