package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>rdhub — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document covering the curation and auth endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "rdhub", "version": "v0.1.0" },
  "paths": {
    "/auth/login": {
      "post": {
        "summary": "Exchange authorization code / login",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"mode":{"type":"string"},"username":{"type":"string"},"password":{"type":"string"},"code":{"type":"string"},"redirect_uri":{"type":"string"}}}}}},
        "responses": { "200": { "description": "tokens returned" } }
      }
    },
    "/auth/refresh": {
      "post": { "summary": "Refresh access token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refresh_token":{"type":"string"}}}}}}, "responses": { "200": { "description": "new access token" }, "401": { "description": "invalid refresh" } } }
    },
    "/auth/logout": {
      "post": { "summary": "Logout and invalidate refresh token", "responses": { "200": { "description": "logged out" } } }
    },
    "/api/resources": {
      "get": { "summary": "List metadata records", "responses": { "200": { "description": "resource list" } } },
      "post": { "summary": "Create a draft record", "responses": { "201": { "description": "created" } } }
    },
    "/api/resources/{id}": {
      "get": { "summary": "Get a record", "responses": { "200": { "description": "resource" }, "404": { "description": "not found" } } },
      "put": { "summary": "Update a record", "responses": { "200": { "description": "updated" }, "409": { "description": "doi conflict" } } },
      "delete": { "summary": "Delete a record", "responses": { "204": { "description": "deleted" } } }
    },
    "/api/resources/{id}/publish": {
      "post": { "summary": "Register DOI and publish", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"doi":{"type":"string"}}}}}}, "responses": { "200": { "description": "published" }, "409": { "description": "doi conflict" } } }
    },
    "/api/resources/import": {
      "post": { "summary": "Import DataCite XML or CSV metadata", "responses": { "201": { "description": "drafts created" }, "415": { "description": "unknown format" } } }
    },
    "/api/doi/check": {
      "post": { "summary": "Validate a DOI and suggest the next free suffix", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"doi":{"type":"string"},"exclude_resource_id":{"type":"string"}}}}}}, "responses": { "200": { "description": "check result" } } }
    },
    "/api/landing/{slug}": {
      "get": { "summary": "Public landing page for a published dataset", "responses": { "200": { "description": "landing payload" }, "404": { "description": "not published" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
