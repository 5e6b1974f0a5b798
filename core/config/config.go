package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/gogf/gf/v2/frame/g"
)

// ValidateConfiguration validates all required configuration items
func ValidateConfiguration(ctx context.Context) error {
	var missingConfigs []string
	var warnings []string

	// 验证 Onyx 配置
	onyxBaseURL := g.Cfg().MustGet(ctx, "onyx.baseURL", "").String()
	if onyxBaseURL == "" {
		missingConfigs = append(missingConfigs, "onyx.baseURL")
	}
	onyxAPIKey := g.Cfg().MustGet(ctx, "onyx.apiKey", "").String()
	if onyxAPIKey == "" {
		warnings = append(warnings, "onyx.apiKey is not set, management requests will be unauthenticated")
	}

	// 验证身份校验服务配置
	verifyURL := g.Cfg().MustGet(ctx, "auth.verifyURL", "").String()
	if verifyURL == "" {
		warnings = append(warnings, "auth.verifyURL is not set, falling back to http://localhost:8081/verify")
	}

	// 验证数据库配置
	dbHost := g.Cfg().MustGet(ctx, "database.default.host", "").String()
	dbPort := g.Cfg().MustGet(ctx, "database.default.port", "").String()
	dbUser := g.Cfg().MustGet(ctx, "database.default.user", "").String()
	dbName := g.Cfg().MustGet(ctx, "database.default.name", "").String()

	if dbHost == "" {
		missingConfigs = append(missingConfigs, "database.default.host")
	}
	if dbPort == "" {
		missingConfigs = append(missingConfigs, "database.default.port")
	}
	if dbUser == "" {
		missingConfigs = append(missingConfigs, "database.default.user")
	}
	if dbName == "" {
		missingConfigs = append(missingConfigs, "database.default.name")
	}

	// Redis 可选，未配置时套餐目录退化为每次查库
	redisAddress := g.Cfg().MustGet(ctx, "redis.address", "").String()
	if redisAddress == "" {
		warnings = append(warnings, "redis.address is not set, plan catalog caching is disabled")
	}

	// 输出警告信息
	if len(warnings) > 0 {
		g.Log().Warningf(ctx, "Configuration warnings:\n- %s", strings.Join(warnings, "\n- "))
	}

	// 检查是否有缺失的必需配置
	if len(missingConfigs) > 0 {
		return fmt.Errorf("missing required configuration items:\n- %s\n\nPlease check your config.yaml file and ensure all required settings are properly configured", strings.Join(missingConfigs, "\n- "))
	}

	// 输出成功信息
	g.Log().Info(ctx, "✓ All required configuration items are present")

	return nil
}
