package gorm

import (
	"time"
)

// Account 账户表。一个外部身份对应且仅对应一条记录，
// 首次通过身份校验时创建。外部资源（文档集、API Key、persona）
// 的生命周期由 Onyx 持有，这里只缓存它们的 id 用于寻址。
type Account struct {
	ID          string     `gorm:"primaryKey;column:id;type:varchar(36)"`
	FirebaseUID string     `gorm:"column:firebase_uid;type:varchar(128);uniqueIndex;not null"` // 外部身份 id
	Email       string     `gorm:"column:email;type:varchar(255)"`
	Name        string     `gorm:"column:name;type:varchar(255)"`
	PlanID      string     `gorm:"column:plan_id;type:varchar(36)"`
	Plan        *Plan      `gorm:"foreignKey:PlanID"`
	DocSetID    *int       `gorm:"column:doc_set_id"` // Onyx 文档集 id，首个连接器创建时才产生
	APIKey      string     `gorm:"column:api_key;type:varchar(255)"`
	PersonaID   *int       `gorm:"column:persona_id"`
	CreateTime  *time.Time `gorm:"column:create_time;autoCreateTime"`
	UpdateTime  *time.Time `gorm:"column:update_time;autoUpdateTime"`
}

// TableName 设置表名
func (Account) TableName() string {
	return "accounts"
}
