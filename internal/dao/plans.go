package dao

import (
	"context"
	"errors"

	"github.com/gogf/gf/v2/frame/g"
	"gorm.io/gorm"

	gormModel "github.com/cleardocs/backend/internal/model/gorm"
)

// PlanDAO 套餐数据访问对象
type PlanDAO struct{}

var Plan = &PlanDAO{}

// GetByCode 按套餐代码查找（带限额），未找到返回 nil
func (d *PlanDAO) GetByCode(ctx context.Context, code string) (*gormModel.Plan, error) {
	var plan gormModel.Plan
	err := GetDB().WithContext(ctx).
		Preload("Limit").
		Where("code = ?", code).
		First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		g.Log().Errorf(ctx, "查询套餐失败: %v", err)
		return nil, err
	}
	return &plan, nil
}

// List 返回全部套餐（带限额）
func (d *PlanDAO) List(ctx context.Context) ([]*gormModel.Plan, error) {
	var plans []*gormModel.Plan
	if err := GetDB().WithContext(ctx).Preload("Limit").Find(&plans).Error; err != nil {
		g.Log().Errorf(ctx, "查询套餐列表失败: %v", err)
		return nil, err
	}
	return plans, nil
}

// SeedDefaults 首次启动时写入内置套餐；已存在的代码跳过
func (d *PlanDAO) SeedDefaults(ctx context.Context) error {
	defaults := []gormModel.Plan{
		{
			ID:         "a3f1c2d4-0000-4000-8000-000000000001",
			Code:       gormModel.PlanCodeFree,
			Title:      "Free",
			PriceRub:   0,
			PeriodDays: 0,
			LimitID:    "a3f1c2d4-0000-4000-8000-000000000011",
			Limit: &gormModel.PlanLimit{
				ID:            "a3f1c2d4-0000-4000-8000-000000000011",
				MaxConnectors: 3,
			},
		},
		{
			ID:         "a3f1c2d4-0000-4000-8000-000000000002",
			Code:       gormModel.PlanCodePro,
			Title:      "Pro",
			PriceRub:   990,
			PeriodDays: 30,
			LimitID:    "a3f1c2d4-0000-4000-8000-000000000012",
			Limit: &gormModel.PlanLimit{
				ID:            "a3f1c2d4-0000-4000-8000-000000000012",
				MaxConnectors: 20,
			},
		},
	}
	for i := range defaults {
		plan := &defaults[i]
		existing, err := d.GetByCode(ctx, plan.Code)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		if err := GetDB().WithContext(ctx).Create(plan.Limit).Error; err != nil {
			g.Log().Errorf(ctx, "写入套餐限额失败: %v", err)
			return err
		}
		limit := plan.Limit
		plan.Limit = nil
		if err := GetDB().WithContext(ctx).Create(plan).Error; err != nil {
			g.Log().Errorf(ctx, "写入套餐失败: %v", err)
			return err
		}
		plan.Limit = limit
		g.Log().Infof(ctx, "seeded plan %s (max connectors %d)", plan.Code, limit.MaxConnectors)
	}
	return nil
}
