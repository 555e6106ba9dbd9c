package controller

import (
	"net/http"

	"github.com/cinerate/cinerate/web/docs"

	"github.com/gin-gonic/gin"
)

const swaggerPage = `<!DOCTYPE html>
<html>
<head>
<title>cinerate API</title>
<link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
<script>SwaggerUIBundle({url: "/openapi.json", dom_id: "#swagger-ui"});</script>
</body>
</html>`

const redocPage = `<!DOCTYPE html>
<html>
<head>
<title>cinerate API</title>
</head>
<body>
<redoc spec-url="/openapi.json"></redoc>
<script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
</body>
</html>`

// DocsController serves the OpenAPI document and two viewers for it.
type DocsController struct{}

func NewDocsController(g *gin.RouterGroup) *DocsController {
	a := &DocsController{}
	a.initRouter(g)
	return a
}

func (a *DocsController) initRouter(g *gin.RouterGroup) {
	g.GET("/openapi.json", a.openapi)
	g.GET("/docs", a.html(swaggerPage))
	g.GET("/redoc", a.html(redocPage))
}

func (a *DocsController) openapi(c *gin.Context) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", docs.JSON())
}

func (a *DocsController) html(page string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
	}
}
