// Package docs holds the OpenAPI description served under /swagger
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Register a new student",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.RegisterRequest"}}],
                "responses": {
                    "200": {"description": "Student registered", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "400": {"description": "Invalid request or weak password", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "409": {"description": "Username already exists", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "User login",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.LoginRequest"}}],
                "responses": {
                    "200": {"description": "Login successful", "schema": {"$ref": "#/definitions/dto.TokenResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["auth"],
                "summary": "Current principal",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Caller identity", "schema": {"$ref": "#/definitions/dto.PrincipalResponse"}},
                    "401": {"description": "Missing or invalid token", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/courses": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["courses"],
                "summary": "List courses",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Courses", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.CourseResponse"}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["courses"],
                "summary": "Create a course",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.CreateCourseRequest"}}],
                "responses": {
                    "200": {"description": "Course created", "schema": {"$ref": "#/definitions/dto.CourseResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/courses/{id}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["courses"],
                "summary": "Delete a course",
                "parameters": [{"type": "integer", "description": "Course ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "Course deleted"},
                    "404": {"description": "Course not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "409": {"description": "Course has enrolled students", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/students": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["students"],
                "summary": "List students",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Students", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.StudentResponse"}}}
                }
            }
        },
        "/students/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["students"],
                "summary": "Get own profile",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Own profile", "schema": {"$ref": "#/definitions/dto.StudentResponse"}}
                }
            }
        },
        "/students/me/courses": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["students"],
                "summary": "Add own courses",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.CourseIDsRequest"}}],
                "responses": {
                    "200": {"description": "Updated profile", "schema": {"$ref": "#/definitions/dto.StudentResponse"}},
                    "404": {"description": "Unknown course id", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/students/me/courses/{courseId}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["students"],
                "summary": "Remove own course",
                "parameters": [{"type": "integer", "description": "Course ID", "name": "courseId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Updated profile", "schema": {"$ref": "#/definitions/dto.StudentResponse"}},
                    "404": {"description": "Unknown course or not enrolled", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/students/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["students"],
                "summary": "Get student by ID",
                "parameters": [{"type": "integer", "description": "Student ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Student", "schema": {"$ref": "#/definitions/dto.StudentResponse"}},
                    "404": {"description": "Student not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/students/{id}/courses": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["students"],
                "summary": "Enroll a student",
                "consumes": ["application/json"],
                "parameters": [
                    {"type": "integer", "description": "Student ID", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.CourseIDsRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated profile", "schema": {"$ref": "#/definitions/dto.StudentResponse"}},
                    "404": {"description": "Unknown student or course", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/students/{id}/courses/{courseId}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["students"],
                "summary": "Remove a student's course",
                "parameters": [
                    {"type": "integer", "description": "Student ID", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "Course ID", "name": "courseId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Updated profile", "schema": {"$ref": "#/definitions/dto.StudentResponse"}},
                    "404": {"description": "Unknown student, unknown course or not enrolled", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.APIResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": true},
                "message": {"type": "string"},
                "data": {},
                "timestamp": {"type": "string"}
            }
        },
        "dto.ErrorDetail": {
            "type": "object",
            "properties": {
                "code": {"type": "string", "example": "RES_001"},
                "message": {"type": "string"},
                "field": {"type": "string"},
                "severity": {"type": "string", "example": "ERROR"},
                "details": {}
            }
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": false},
                "error": {"$ref": "#/definitions/dto.ErrorDetail"},
                "timestamp": {"type": "string"}
            }
        },
        "dto.RegisterRequest": {
            "type": "object",
            "required": ["username"],
            "properties": {
                "username": {"type": "string", "maxLength": 50, "minLength": 3, "example": "alice"},
                "password": {"type": "string", "maxLength": 72, "example": "LongEnough1"}
            }
        },
        "dto.LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string", "example": "alice"},
                "password": {"type": "string", "example": "LongEnough1"}
            }
        },
        "dto.TokenResponse": {
            "type": "object",
            "properties": {
                "accessToken": {"type": "string"},
                "tokenType": {"type": "string", "example": "Bearer"},
                "expiresIn": {"type": "integer", "example": 3600}
            }
        },
        "dto.PrincipalResponse": {
            "type": "object",
            "properties": {
                "username": {"type": "string", "example": "alice"},
                "role": {"type": "string", "enum": ["ADMIN", "STUDENT"]}
            }
        },
        "dto.CreateCourseRequest": {
            "type": "object",
            "required": ["title"],
            "properties": {
                "title": {"type": "string", "maxLength": 200, "example": "Linear Algebra"},
                "description": {"type": "string", "maxLength": 2000}
            }
        },
        "dto.CourseResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer", "example": 1},
                "title": {"type": "string", "example": "Linear Algebra"},
                "description": {"type": "string"},
                "createdAt": {"type": "string"}
            }
        },
        "dto.CourseIDsRequest": {
            "type": "object",
            "properties": {
                "courseIds": {"type": "array", "items": {"type": "integer"}, "example": [1, 2]}
            }
        },
        "dto.StudentResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer", "example": 1},
                "username": {"type": "string", "example": "alice"},
                "courses": {"type": "array", "items": {"$ref": "#/definitions/dto.CourseResponse"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the access token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Course Hub API",
	Description:      "Course catalog and student enrollment service with role-based access control.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
