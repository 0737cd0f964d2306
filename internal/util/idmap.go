package util

// IDMap 记录深拷贝时旧ID到新ID的映射。
// 深拷贝带交叉引用的实体图分两遍：第一遍只拷贝实体并登记映射，
// 第二遍用映射改写全部引用，避免在ID尚未分配时互相指向。
type IDMap[T comparable] map[T]T

func NewIDMap[T comparable]() IDMap[T] {
	return make(IDMap[T])
}

func (m IDMap[T]) Add(old, new T) {
	m[old] = new
}

// Remap 单个ID的映射；不在映射内时原样返回并报告false
func (m IDMap[T]) Remap(old T) (T, bool) {
	v, ok := m[old]
	if !ok {
		return old, false
	}
	return v, true
}

// RemapPtr 指针形式的映射，nil 保持为 nil
func (m IDMap[T]) RemapPtr(old *T) *T {
	if old == nil {
		return nil
	}
	if v, ok := m[*old]; ok {
		return &v
	}
	return nil
}

// RemapSlice 逐个映射并丢弃无法解析的条目
func (m IDMap[T]) RemapSlice(olds []T) []T {
	if olds == nil {
		return nil
	}
	out := make([]T, 0, len(olds))
	for _, o := range olds {
		if v, ok := m[o]; ok {
			out = append(out, v)
		}
	}
	return out
}
