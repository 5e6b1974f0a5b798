package errors

// ErrCode 业务错误码类型
type ErrCode int

const (
	// 通用错误 1000-1999
	ErrInvalidParameter ErrCode = 1001 // 参数错误
	ErrUnauthorized     ErrCode = 1002 // 未授权
	ErrInternalError    ErrCode = 1003 // 内部错误
	ErrNotFound         ErrCode = 1004 // 资源未找到
	ErrAlreadyExists    ErrCode = 1005 // 资源已存在
	ErrOperationFailed  ErrCode = 1006 // 操作失败

	// 账户相关 2000-2999
	ErrAccountNotFound     ErrCode = 2001 // 账户未找到
	ErrAccountCreateFailed ErrCode = 2002 // 账户创建失败
	ErrPlanNotFound        ErrCode = 2003 // 套餐未找到

	// 连接器相关 3000-3999
	ErrConnectorNotFound    ErrCode = 3001 // 连接器未找到
	ErrConnectorLimit       ErrCode = 3002 // 连接器数量超限
	ErrConnectorNotPaused   ErrCode = 3003 // 连接器未暂停，禁止删除
	ErrDocumentSetNotFound  ErrCode = 3004 // 文档集未找到
	ErrConnectorCreateError ErrCode = 3005 // 连接器创建失败

	// 聊天相关 4000-4999
	ErrChatNoSources     ErrCode = 4001 // 没有可聊天的知识来源
	ErrChatKeyFailed     ErrCode = 4002 // API Key 创建失败
	ErrChatPersonaFailed ErrCode = 4003 // Persona 创建失败
	ErrStreamingFailed   ErrCode = 4004 // 流式响应失败

	// 外部服务相关 5000-5999
	ErrUpstreamFailed       ErrCode = 5001 // 外部服务调用失败
	ErrUpstreamInconsistent ErrCode = 5002 // 外部服务返回了不一致的数据

	// 数据库相关 6000-6999
	ErrDatabaseQuery  ErrCode = 6001 // 数据库查询失败
	ErrDatabaseInsert ErrCode = 6002 // 数据库插入失败
	ErrDatabaseUpdate ErrCode = 6003 // 数据库更新失败
	ErrDatabaseInit   ErrCode = 6005 // 数据库初始化失败
)

// HTTPStatusCode 返回错误码对应的HTTP状态码
func (e ErrCode) HTTPStatusCode() int {
	switch e {
	case ErrInvalidParameter, ErrConnectorLimit, ErrConnectorNotPaused, ErrChatNoSources:
		return 400
	case ErrUnauthorized:
		return 401
	case ErrNotFound, ErrAccountNotFound, ErrPlanNotFound, ErrConnectorNotFound, ErrDocumentSetNotFound:
		return 404
	case ErrAlreadyExists:
		return 409
	default:
		// 外部服务失败、数据不一致等一律不向调用方泄露细节
		return 500
	}
}
