package account

import (
	"context"

	"github.com/cleardocs/backend/core/errors"
	gormModel "github.com/cleardocs/backend/internal/model/gorm"
)

type ctxKey struct{}

// WithCtx 将账户注入请求上下文
func WithCtx(ctx context.Context, account *gormModel.Account) context.Context {
	return context.WithValue(ctx, ctxKey{}, account)
}

// FromCtx 从请求上下文取出账户；未认证时返回未授权错误
func FromCtx(ctx context.Context) (*gormModel.Account, error) {
	account, ok := ctx.Value(ctxKey{}).(*gormModel.Account)
	if !ok || account == nil {
		return nil, errors.New(errors.ErrUnauthorized, "auth required")
	}
	return account, nil
}
