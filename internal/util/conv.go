package util

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParseID 解析路径参数里的数字 ID
// 非法输入直接回 400 并返回 false，调用方应立即 return
func ParseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		BadRequest(c, fmt.Sprintf("invalid %s", name))
		return 0, false
	}
	return uint(id), true
}
