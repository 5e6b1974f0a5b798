package dao

import (
	"context"
	"errors"

	"github.com/gogf/gf/v2/frame/g"
	"gorm.io/gorm"

	gormModel "github.com/cleardocs/backend/internal/model/gorm"
)

// AccountDAO 账户数据访问对象
type AccountDAO struct{}

var Account = &AccountDAO{}

// Create 创建账户。外部身份 id 上有唯一索引，并发插入时
// 冲突方会拿到 duplicated key 错误，由调用方重读已提交行。
func (d *AccountDAO) Create(ctx context.Context, account *gormModel.Account) error {
	if err := GetDB().WithContext(ctx).Create(account).Error; err != nil {
		g.Log().Errorf(ctx, "创建账户失败: %v", err)
		return err
	}
	return nil
}

// GetByFirebaseUID 根据外部身份 id 获取账户（带套餐与限额），未找到返回 nil
func (d *AccountDAO) GetByFirebaseUID(ctx context.Context, firebaseUID string) (*gormModel.Account, error) {
	var account gormModel.Account
	err := GetDB().WithContext(ctx).
		Preload("Plan").Preload("Plan.Limit").
		Where("firebase_uid = ?", firebaseUID).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		g.Log().Errorf(ctx, "查询账户失败: %v", err)
		return nil, err
	}
	return &account, nil
}

// Update 更新账户。外部资源 id（文档集、API Key、persona）一经取得
// 立即落库，调用返回前持久化完成。
func (d *AccountDAO) Update(ctx context.Context, account *gormModel.Account) error {
	if err := GetDB().WithContext(ctx).Save(account).Error; err != nil {
		g.Log().Errorf(ctx, "更新账户失败: %v", err)
		return err
	}
	return nil
}

// IsDuplicateKey 判断是否为唯一约束冲突
func IsDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
