package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Home 首页, 跳转到前端页面
func Home(c *gin.Context) {
	c.Redirect(http.StatusFound, "/static/index.html")
}

// Dashboard 仪表盘 (页面尚未实现)
func Dashboard(c *gin.Context) {
	c.String(http.StatusOK, "Dashboard Coming Soon!")
}

// About 关于页面 (页面尚未实现)
func About(c *gin.Context) {
	c.String(http.StatusOK, "About Page Coming Soon!")
}
