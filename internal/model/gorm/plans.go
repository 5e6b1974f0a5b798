package gorm

import (
	"time"
)

// 套餐代码
const (
	PlanCodeFree = "FREE"
	PlanCodePro  = "PRO"
)

// Plan 套餐表，不可变参考数据，按 code 查找
type Plan struct {
	ID         string     `gorm:"primaryKey;column:id;type:varchar(36)"`
	Code       string     `gorm:"column:code;type:varchar(32);uniqueIndex;not null"`
	Title      string     `gorm:"column:title;type:varchar(128)"`
	PriceRub   int        `gorm:"column:price_rub"`
	PeriodDays int        `gorm:"column:period_days"`
	LimitID    string     `gorm:"column:limit_id;type:varchar(36)"`
	Limit      *PlanLimit `gorm:"foreignKey:LimitID"`
	CreateTime *time.Time `gorm:"column:create_time;autoCreateTime"`
	UpdateTime *time.Time `gorm:"column:update_time;autoUpdateTime"`
}

// TableName 设置表名
func (Plan) TableName() string {
	return "plans"
}

// MaxConnectors 套餐允许的连接器上限；未配置 limit 时为 0
func (p *Plan) MaxConnectors() int {
	if p == nil || p.Limit == nil {
		return 0
	}
	return p.Limit.MaxConnectors
}

// PlanLimit 套餐限额表
type PlanLimit struct {
	ID            string     `gorm:"primaryKey;column:id;type:varchar(36)"`
	MaxConnectors int        `gorm:"column:max_connectors"`
	CreateTime    *time.Time `gorm:"column:create_time;autoCreateTime"`
	UpdateTime    *time.Time `gorm:"column:update_time;autoUpdateTime"`
}

// TableName 设置表名
func (PlanLimit) TableName() string {
	return "plan_limits"
}
