// file: utils/response.go
package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Msg: msg, Data: data})
}

func Error(c *gin.Context, code int, msg string) {
	c.JSON(http.StatusOK, Response{Code: code, Msg: msg})
}

// NotFound 统一的 404。访问控制失败也走这里，避免向无权限的用户确认资源存在
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, Response{Code: 4004, Msg: "not found"})
	c.Abort()
}
