// Package docs registers the OpenAPI description of the Referral Hub API with swag.
// Regenerate with `swag init -g main.go` after changing handler annotations.
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
        "/api/v1/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "Service is healthy", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/api/v1/referrals": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Referrals"],
                "summary": "List referrals",
                "description": "Returns the referral cards passing every active filter. Tags use AND semantics.",
                "parameters": [
                    {"type": "string", "description": "Location option id from /api/v1/filters", "name": "location", "in": "query"},
                    {"type": "string", "description": "Display work type: Remote, On-site or Hybrid", "name": "workType", "in": "query"},
                    {"type": "string", "description": "Comma separated tag ids; a referral must carry all of them", "name": "tags", "in": "query"},
                    {"type": "string", "description": "Free-text search over title, description and company", "name": "q", "in": "query"},
                    {"type": "boolean", "description": "Only list referrals still accepting requests", "name": "activeOnly", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Referrals retrieved successfully", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "400": {"description": "Invalid query parameters", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "503": {"description": "Catalog unavailable", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/api/v1/referrals/export": {
            "get": {
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["Referrals"],
                "summary": "Export referrals (Excel)",
                "responses": {
                    "200": {"description": "Excel file", "schema": {"type": "string"}}
                }
            }
        },
        "/api/v1/referrals/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Referrals"],
                "summary": "Get referral details",
                "parameters": [{"type": "string", "description": "Referral id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Referral retrieved successfully", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "404": {"description": "Referral not found", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/api/v1/referrals/{id}/requests": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Referrals"],
                "summary": "Referral requests made against a referral",
                "parameters": [{"type": "string", "description": "Referral id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Referral requests retrieved successfully", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/api/v1/filters": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Referrals"],
                "summary": "List filter options",
                "responses": {
                    "200": {"description": "Filter options retrieved successfully", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/api/v1/tags/popular": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Referrals"],
                "summary": "Most used tags",
                "parameters": [{"type": "integer", "description": "Number of tags (default 5, max 50)", "name": "limit", "in": "query"}],
                "responses": {
                    "200": {"description": "Popular tags retrieved successfully", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "400": {"description": "Invalid limit", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/api/v1/companies/top": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Referrals"],
                "summary": "Companies with the most referrals",
                "parameters": [{"type": "integer", "description": "Number of companies (default 5, max 50)", "name": "limit", "in": "query"}],
                "responses": {
                    "200": {"description": "Top companies retrieved successfully", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "400": {"description": "Invalid limit", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/api/v1/users/{id}/referrals": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Referrals posted by a user",
                "parameters": [{"type": "string", "description": "User id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Referrals retrieved successfully", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "404": {"description": "User not found", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/api/v1/users/{id}/referral-requests": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Referral requests made by a user",
                "parameters": [{"type": "string", "description": "User id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Referral requests retrieved successfully", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/api/referral-requests": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["ReferralRequests"],
                "summary": "Submit a referral request",
                "description": "Validates the request and acknowledges it with a request id. Nothing is stored.",
                "parameters": [{"description": "Referral request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.SubmitReferralRequestRequest"}}],
                "responses": {
                    "200": {"description": "Referral request submitted successfully", "schema": {"$ref": "#/definitions/dto.SubmitReferralRequestResponse"}},
                    "400": {"description": "Missing required fields, or a malformed field when format checks are on", "schema": {"$ref": "#/definitions/dto.IntakeErrorResponse"}},
                    "500": {"description": "Failed to process request", "schema": {"$ref": "#/definitions/dto.IntakeErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.APIResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {},
                "error": {}
            }
        },
        "dto.TagSummary": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "dto.SubmitReferralRequestRequest": {
            "type": "object",
            "required": ["email", "linkedinUrl", "tags"],
            "properties": {
                "linkedinUrl": {"type": "string"},
                "email": {"type": "string"},
                "tags": {"type": "array", "items": {"$ref": "#/definitions/dto.TagSummary"}},
                "cvUrl": {"type": "string"},
                "referralId": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "dto.SubmitReferralRequestResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "requestId": {"type": "string"}
            }
        },
        "dto.IntakeErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Referral Hub API",
	Description:      "Browse job referrals, filter them by location, work type and tags, and submit referral requests.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
