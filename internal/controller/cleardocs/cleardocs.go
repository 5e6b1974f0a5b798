package cleardocs

// ControllerV1 /api/v1 路由的控制器
type ControllerV1 struct{}

// NewV1 创建 v1 控制器
func NewV1() *ControllerV1 {
	return &ControllerV1{}
}
