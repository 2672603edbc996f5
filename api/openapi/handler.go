// Package openapi configures the generated OpenAPI 3.1 document of the JSON
// API and serves Swagger UI for it.
package openapi

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/labstack/echo/v4"
)

// SpecPath is where huma serves the generated document.
const SpecPath = "/openapi"

const swaggerUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>meli-lister API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: "` + SpecPath + `.json",
      dom_id: "#swagger-ui",
      presets: [SwaggerUIBundle.presets.apis, SwaggerUIBundle.SwaggerUIStandalonePreset],
      layout: "BaseLayout",
    });
  </script>
</body>
</html>`

// Config returns the huma configuration of the JSON API. Response bodies are
// plain JSON without $schema links, and the docs page is served by
// RegisterRoutes instead of huma.
func Config(version string) huma.Config {
	cfg := huma.DefaultConfig("meli-lister API", version)
	cfg.Info.Description = "Publish and list MercadoLibre items on behalf of the signed-in browser session."
	cfg.OpenAPIPath = SpecPath
	cfg.DocsPath = ""
	cfg.CreateHooks = nil
	return cfg
}

// RegisterRoutes adds the Swagger UI routes to the Echo instance.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/docs", serveUI)
	e.GET("/swagger", redirectToUI)
	e.GET("/swagger/", redirectToUI)
}

func serveUI(c echo.Context) error {
	return c.HTML(http.StatusOK, swaggerUIHTML)
}

func redirectToUI(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/docs")
}
