package router

import "github.com/gin-gonic/gin"

// Module is a feature slice (accounts, courses) that knows how to mount its
// own routes under the versioned API group.
type Module interface {
	Register(rg *gin.RouterGroup)
}
