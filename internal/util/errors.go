package util

import "errors"

// 资源不存在
var (
	ErrUserNotFound    = errors.New("用户不存在")
	ErrEmailRegistered = errors.New("该邮箱已被注册")
	ErrCourseNotFound  = errors.New("course not found")
	ErrSectionNotFound = errors.New("section not found")
	ErrVersionNotFound = errors.New("version not found")
)

// 权限
var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrForkNotAllowed   = errors.New("course is private and cannot be forked")
)

// 结构/参数校验；服务层用 fmt.Errorf("%w: ...") 附加具体原因
var (
	ErrNestingDepthExceeded = errors.New("nesting depth exceeded")
	ErrCrossCourseParent    = errors.New("parent section belongs to another course")
	ErrInvalidSplitPoint    = errors.New("invalid split point")
	ErrInvalidFormat        = errors.New("invalid content format")
	ErrEmptyTargetFormat    = errors.New("target format slot has no content")
	ErrSelfParent           = errors.New("section cannot be its own ancestor")
)

// IsValidation 校验类错误统一映射为 400
func IsValidation(err error) bool {
	return errors.Is(err, ErrNestingDepthExceeded) ||
		errors.Is(err, ErrCrossCourseParent) ||
		errors.Is(err, ErrInvalidSplitPoint) ||
		errors.Is(err, ErrInvalidFormat) ||
		errors.Is(err, ErrEmptyTargetFormat) ||
		errors.Is(err, ErrSelfParent)
}

// IsNotFound 资源不存在类错误统一映射为 404
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCourseNotFound) ||
		errors.Is(err, ErrSectionNotFound) ||
		errors.Is(err, ErrVersionNotFound) ||
		errors.Is(err, ErrUserNotFound)
}
