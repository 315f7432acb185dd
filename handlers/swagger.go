package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the user service.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>user service - Swagger</title>
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

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "user service", "version": "v1.0.0" },
  "components": {
    "schemas": {
      "User": {"type":"object","properties":{"_id":{"type":"string"},"username":{"type":"string"},"email":{"type":"string"},"createdAt":{"type":"string","format":"date-time"},"updatedAt":{"type":"string","format":"date-time"},"__v":{"type":"integer"},"_self":{"type":"string"}}},
      "UserInput": {"type":"object","properties":{"username":{"type":"string"},"email":{"type":"string"},"password":{"type":"string"}}},
      "Error": {"type":"object","properties":{"error":{"type":"string"}}},
      "BatchResult": {"type":"object","properties":{"matchedCount":{"type":"integer"},"deletedCount":{"type":"integer"},"acknowledged":{"type":"boolean"}}}
    }
  },
  "paths": {
    "/user": {
      "get": {
        "summary": "Search users by username or email",
        "parameters": [
          {"name":"query","in":"query","schema":{"type":"string"}},
          {"name":"limit","in":"query","schema":{"type":"integer","default":20,"minimum":1}},
          {"name":"offset","in":"query","schema":{"type":"integer","default":0,"minimum":0}},
          {"name":"sort","in":"query","schema":{"type":"string"},"description":"space separated fields, '-' prefix for descending"}
        ],
        "responses": { "200": { "description": "search envelope with meta, objects and _self/_first/_last/_next/_prev links" }, "400": { "description": "invalid limit or offset" } }
      },
      "post": {
        "summary": "Create a user",
        "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/UserInput"}}}},
        "responses": { "201": { "description": "created user" }, "409": { "description": "username or email already taken" } }
      },
      "delete": {
        "summary": "Delete the listed ids, or every user when the body is empty",
        "requestBody": { "required": false, "content": { "application/json": { "schema": {"type":"array","items":{"type":"string"}}}}},
        "responses": { "200": { "description": "batch outcome", "content": { "application/json": { "schema": {"$ref":"#/components/schemas/BatchResult"}}} } }
      }
    },
    "/user/verify": {
      "post": {
        "summary": "Check an email and password pair",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"email":{"type":"string"},"password":{"type":"string"}}}}}},
        "responses": { "200": { "description": "true or false" }, "400": { "description": "email and password required" }, "404": { "description": "no user with that email" } }
      }
    },
    "/user/{id}": {
      "parameters": [ {"name":"id","in":"path","required":true,"schema":{"type":"string"}} ],
      "get": { "summary": "Get a user", "responses": { "200": { "description": "user" }, "404": { "description": "null" } } },
      "put": { "summary": "Update a user", "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/UserInput"}}}}, "responses": { "200": { "description": "updated user" }, "404": { "description": "null" } } },
      "delete": { "summary": "Delete a user", "responses": { "200": { "description": "deleted user" }, "404": { "description": "null" } } }
    },
    "/": { "get": { "summary": "Heartbeat", "responses": { "200": { "description": "server is running" } } } },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "text exposition" } } } }
  }
}`
