package core

// DomainError 是领域层的统一错误类型。
//
// 数据稀疏（未知用户、空快照、零向量）一律不是错误——各组件返回空结果，
// 交给降级链路。只有违反调用契约（如 limit < 1）才返回错误。
type DomainError struct {
	Code    string // 错误代码（如 "INVALID_INPUT"）
	Message string // 错误消息
	Module  string // 模块名称（如 "engine", "store"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError 创建新的领域错误。
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{Module: module, Code: code, Message: message}
}

// GetDomainError 获取 DomainError，如果不是则返回 nil。
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// 错误代码常量
const (
	ErrorCodeNotFound     = "NOT_FOUND"     // 资源不存在
	ErrorCodeInvalidInput = "INVALID_INPUT" // 输入违反调用契约
	ErrorCodeUnavailable  = "UNAVAILABLE"   // 数据/服务不可用
)

// 模块名称常量
const (
	ModuleEngine = "engine"
	ModuleStore  = "store"
	ModuleLoader = "loader"
)

var (
	// ErrInvalidLimit 表示 limit < 1，属于调用方编程错误。
	ErrInvalidLimit = NewDomainError(ModuleEngine, ErrorCodeInvalidInput, "engine: limit must be >= 1")

	// ErrSnapshotUnavailable 表示尚无可用快照（上游数据还未就绪）。
	ErrSnapshotUnavailable = NewDomainError(ModuleStore, ErrorCodeUnavailable, "store: no snapshot available")

	// ErrStoreNotFound 表示 key 不存在。
	ErrStoreNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "store: key not found")
)

// IsInvalidInput 检查错误是否为调用契约违反。
func IsInvalidInput(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInvalidInput
	}
	return false
}

// IsUnavailable 检查错误是否为数据不可用。
func IsUnavailable(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeUnavailable
	}
	return false
}

// IsNotFound 检查错误是否为资源不存在。
func IsNotFound(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}
