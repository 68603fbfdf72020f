// Package profile 定义学习者画像的领域模型。
//
// LearnerProfile 是存储韧性层搬运的实体记录：按 (TenantID, Subject)
// 复合键唯一标识，Attributes 承载任意画像属性。韧性层对属性内容
// 不做解释，整条记录以"全量替换"语义读写，不支持字段级局部更新。
package profile

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/studyloop/aegis/xerrors"
)

// LearnerProfile 学习者画像记录
//
// Attributes 在数据库中持久化为 AttributesRaw 的 JSON 文本，
// 由 GORM 钩子在存取时自动转换。
type LearnerProfile struct {
	ID uint `gorm:"primaryKey" json:"-" msgpack:"-"`

	// TenantID 租户标识（Canvas 实例/机构），复合唯一键的第一段
	TenantID string `gorm:"size:128;not null;uniqueIndex:idx_tenant_subject" json:"tenant_id" msgpack:"tenant_id"`

	// Subject 学习者标识（LTI subject claim），复合唯一键的第二段
	Subject string `gorm:"size:128;not null;uniqueIndex:idx_tenant_subject" json:"subject" msgpack:"subject"`

	// Attributes 任意画像属性（掌握度、偏好、课程进度等）
	Attributes map[string]any `gorm:"-" json:"attributes" msgpack:"attributes"`

	// AttributesRaw Attributes 的 JSON 持久化形式，业务代码不直接读写
	AttributesRaw string `gorm:"column:attributes;type:text" json:"-" msgpack:"-"`

	CreatedAt time.Time `json:"created_at" msgpack:"created_at"`
	UpdatedAt time.Time `json:"updated_at" msgpack:"updated_at"`
}

// TableName 指定表名
func (LearnerProfile) TableName() string {
	return "learner_profiles"
}

// BeforeSave GORM 钩子：落库前把 Attributes 序列化到文本列
func (p *LearnerProfile) BeforeSave(tx *gorm.DB) error {
	if p.Attributes == nil {
		p.AttributesRaw = ""
		return nil
	}
	data, err := json.Marshal(p.Attributes)
	if err != nil {
		return xerrors.Wrap(err, "profile: marshal attributes")
	}
	p.AttributesRaw = string(data)
	return nil
}

// AfterFind GORM 钩子：查询后把文本列反序列化回 Attributes
func (p *LearnerProfile) AfterFind(tx *gorm.DB) error {
	if p.AttributesRaw == "" {
		p.Attributes = nil
		return nil
	}
	if err := json.Unmarshal([]byte(p.AttributesRaw), &p.Attributes); err != nil {
		return xerrors.Wrap(err, "profile: unmarshal attributes")
	}
	return nil
}

// Validate 校验记录的标识字段
//
// 韧性层只要求复合键完整；属性内容由上游业务校验。
func (p *LearnerProfile) Validate() error {
	if p == nil {
		return ErrProfileNil
	}
	if p.TenantID == "" {
		return ErrTenantEmpty
	}
	if p.Subject == "" {
		return ErrSubjectEmpty
	}
	return nil
}

// Clone 返回记录的深拷贝（Attributes 逐层复制到顶层）
//
// 顶层 map 独立复制，嵌套的 map/slice 仍与原记录共享底层数据，
// 调用方应将嵌套值视为只读。
func (p *LearnerProfile) Clone() *LearnerProfile {
	if p == nil {
		return nil
	}
	cp := *p
	if p.Attributes != nil {
		cp.Attributes = make(map[string]any, len(p.Attributes))
		for k, v := range p.Attributes {
			cp.Attributes[k] = v
		}
	}
	return &cp
}

// 错误定义
var (
	// ErrProfileNil 记录为空
	ErrProfileNil = xerrors.New("profile: record is nil")

	// ErrTenantEmpty 缺少租户标识
	ErrTenantEmpty = xerrors.New("profile: tenant id is empty")

	// ErrSubjectEmpty 缺少学习者标识
	ErrSubjectEmpty = xerrors.New("profile: subject is empty")
)
