package service

import "fmt"

// 缓存键与失效标签。同一课程的所有投影共用一个 course 标签，
// 任何写操作按课程整体失效，避免逐键追踪。
func courseTag(courseID uint) string {
	return fmt.Sprintf("course:%d", courseID)
}

func courseKey(courseID uint, maxDepth int, includeContent bool) string {
	return fmt.Sprintf("course:%d:tree:%d:%t", courseID, maxDepth, includeContent)
}

func hierarchyKey(courseID uint) string {
	return fmt.Sprintf("course:%d:hierarchy", courseID)
}

func tocKey(courseID uint, maxDepth int) string {
	return fmt.Sprintf("course:%d:toc:%d", courseID, maxDepth)
}

func statsKey(courseID uint) string {
	return fmt.Sprintf("course:%d:stats", courseID)
}

func searchKey(courseID uint, query string) string {
	return fmt.Sprintf("course:%d:search:%s", courseID, query)
}
