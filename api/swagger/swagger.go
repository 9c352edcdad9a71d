package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Innovation Hub API",
        "description": "Healthcare innovation tracking backend",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "tags": [
        {"name": "Innovations", "description": "Innovation lifecycle"},
        {"name": "Sections", "description": "Innovation record sections"},
        {"name": "Evidence", "description": "Evidence of effectiveness"},
        {"name": "Files", "description": "Evidence file storage"},
        {"name": "Actions", "description": "Support actions"},
        {"name": "Supports", "description": "Organisation unit support"},
        {"name": "Assessments", "description": "Needs assessments"},
        {"name": "Comments", "description": "Innovation comments"},
        {"name": "Notifications", "description": "Unread notifications"},
        {"name": "Transfers", "description": "Ownership transfers"},
        {"name": "Organisations", "description": "Support organisation directory"},
        {"name": "Users", "description": "User provisioning and profiles"},
        {"name": "Reports", "description": "Assessment exports"}
    ],
    "paths": {
        "/me": {
            "get": {
                "tags": ["Users"],
                "summary": "Caller profile",
                "responses": {"200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}}
            }
        },
        "/users": {
            "post": {
                "tags": ["Users"],
                "summary": "Provision a platform user",
                "responses": {"201": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "Created"}}
            },
            "put": {
                "tags": ["Users"],
                "summary": "Update directory fields of a user",
                "responses": {"200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}}
            }
        },
        "/organisations": {
            "get": {
                "tags": ["Organisations"],
                "summary": "List support organisations with units",
                "responses": {"200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}}
            }
        },
        "/organisation-units/{unitId}/users": {
            "get": {
                "tags": ["Organisations"],
                "summary": "List accessors of one unit",
                "parameters": [{"name": "unitId", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}}
            }
        },
        "/notifications/counters": {
            "get": {
                "tags": ["Notifications"],
                "summary": "Unread counts per context type",
                "responses": {"200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}}
            }
        },
        "/notifications/dismiss": {
            "patch": {
                "tags": ["Notifications"],
                "summary": "Mark notifications on one context read",
                "responses": {"200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}}
            }
        },
        "/notifications/read": {
            "patch": {
                "tags": ["Notifications"],
                "summary": "Mark all notifications read",
                "responses": {"200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}}
            }
        },
        "/actions": {
            "get": {
                "tags": ["Actions"],
                "summary": "Accessor worklist across innovations",
                "responses": {"200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}}
            }
        },
        "/transfers": {
            "get": {
                "tags": ["Transfers"],
                "summary": "Transfers created by the caller",
                "responses": {"200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}}
            }
        },
        "/transfers/{transferId}": {
            "patch": {
                "tags": ["Transfers"],
                "summary": "Cancel, decline or complete a transfer",
                "parameters": [{"name": "transferId", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}}
            }
        },
        "/innovations": {
            "get": {
                "tags": ["Innovations"],
                "summary": "List innovations visible to the caller",
                "responses": {"200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}}
            },
            "post": {
                "tags": ["Innovations"],
                "summary": "Register a new innovation",
                "responses": {"201": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "Created"}}
            }
        },
        "/innovations/{innovationId}": {
            "get": {
                "tags": ["Innovations"],
                "summary": "Fetch one innovation",
                "parameters": [{"name": "innovationId", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}}
            },
            "delete": {
                "tags": ["Innovations"],
                "summary": "Archive an innovation",
                "parameters": [{"name": "innovationId", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/innovations/{innovationId}/submit": {
            "patch": {
                "tags": ["Innovations"],
                "summary": "Submit for needs assessment",
                "parameters": [{"name": "innovationId", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}}
            }
        },
        "/innovations/{innovationId}/shares": {
            "get": {
                "tags": ["Innovations"],
                "summary": "List data sharing organisations",
                "parameters": [{"name": "innovationId", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}}
            },
            "put": {
                "tags": ["Innovations"],
                "summary": "Replace data sharing preferences",
                "parameters": [{"name": "innovationId", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}}
            }
        },
        "/innovations/{innovationId}/sections": {
            "get": {
                "tags": ["Sections"],
                "summary": "List record sections with status",
                "parameters": [{"name": "innovationId", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}}
            },
            "patch": {
                "tags": ["Sections"],
                "summary": "Submit a batch of sections",
                "parameters": [{"name": "innovationId", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}}
            }
        },
        "/innovations/{innovationId}/sections/{sectionKey}": {
            "get": {
                "tags": ["Sections"],
                "summary": "Fetch one record section",
                "parameters": [
                    {"name": "innovationId", "in": "path", "required": true, "type": "string"},
                    {"name": "sectionKey", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}}
            },
            "put": {
                "tags": ["Sections"],
                "summary": "Save a section draft",
                "parameters": [
                    {"name": "innovationId", "in": "path", "required": true, "type": "string"},
                    {"name": "sectionKey", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}}
            }
        },
        "/innovations/{innovationId}/evidence": {
            "get": {
                "tags": ["Evidence"],
                "summary": "List evidence items",
                "parameters": [{"name": "innovationId", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}}
            },
            "post": {
                "tags": ["Evidence"],
                "summary": "Add an evidence item",
                "parameters": [{"name": "innovationId", "in": "path", "required": true, "type": "string"}],
                "responses": {"201": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "Created"}}
            }
        },
        "/innovations/{innovationId}/evidence/{evidenceId}": {
            "get": {
                "tags": ["Evidence"],
                "summary": "Fetch one evidence item",
                "parameters": [
                    {"name": "innovationId", "in": "path", "required": true, "type": "string"},
                    {"name": "evidenceId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}}
            },
            "put": {
                "tags": ["Evidence"],
                "summary": "Update an evidence item",
                "parameters": [
                    {"name": "innovationId", "in": "path", "required": true, "type": "string"},
                    {"name": "evidenceId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}}
            },
            "delete": {
                "tags": ["Evidence"],
                "summary": "Remove an evidence item",
                "parameters": [
                    {"name": "innovationId", "in": "path", "required": true, "type": "string"},
                    {"name": "evidenceId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/innovations/{innovationId}/files": {
            "post": {
                "tags": ["Files"],
                "summary": "Upload an evidence file",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "innovationId", "in": "path", "required": true, "type": "string"},
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {"201": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "Created"}}
            }
        },
        "/innovations/{innovationId}/files/download": {
            "get": {
                "tags": ["Files"],
                "summary": "Download an evidence file via signed token",
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "innovationId", "in": "path", "required": true, "type": "string"},
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/innovations/{innovationId}/actions": {
            "get": {
                "tags": ["Actions"],
                "summary": "List actions of an innovation",
                "parameters": [{"name": "innovationId", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}}
            },
            "post": {
                "tags": ["Actions"],
                "summary": "Request a support action",
                "parameters": [{"name": "innovationId", "in": "path", "required": true, "type": "string"}],
                "responses": {"201": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "Created"}}
            }
        },
        "/innovations/{innovationId}/actions/{actionId}": {
            "get": {
                "tags": ["Actions"],
                "summary": "Fetch one action",
                "parameters": [
                    {"name": "innovationId", "in": "path", "required": true, "type": "string"},
                    {"name": "actionId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}}
            },
            "put": {
                "tags": ["Actions"],
                "summary": "Update an action's status",
                "parameters": [
                    {"name": "innovationId", "in": "path", "required": true, "type": "string"},
                    {"name": "actionId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}}
            }
        },
        "/innovations/{innovationId}/supports": {
            "get": {
                "tags": ["Supports"],
                "summary": "List unit supports",
                "parameters": [{"name": "innovationId", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}}
            },
            "post": {
                "tags": ["Supports"],
                "summary": "Create or update the caller's unit support",
                "parameters": [{"name": "innovationId", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}}
            }
        },
        "/innovations/{innovationId}/supports/{supportId}": {
            "get": {
                "tags": ["Supports"],
                "summary": "Fetch one support record",
                "parameters": [
                    {"name": "innovationId", "in": "path", "required": true, "type": "string"},
                    {"name": "supportId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}}
            }
        },
        "/innovations/{innovationId}/assessments": {
            "post": {
                "tags": ["Assessments"],
                "summary": "Start a needs assessment",
                "parameters": [{"name": "innovationId", "in": "path", "required": true, "type": "string"}],
                "responses": {"201": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "Created"}}
            }
        },
        "/innovations/{innovationId}/assessments/{assessmentId}": {
            "get": {
                "tags": ["Assessments"],
                "summary": "Fetch a needs assessment",
                "parameters": [
                    {"name": "innovationId", "in": "path", "required": true, "type": "string"},
                    {"name": "assessmentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}}
            },
            "put": {
                "tags": ["Assessments"],
                "summary": "Save or submit a needs assessment",
                "parameters": [
                    {"name": "innovationId", "in": "path", "required": true, "type": "string"},
                    {"name": "assessmentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}}
            }
        },
        "/innovations/{innovationId}/assessments/{assessmentId}/pdf": {
            "get": {
                "tags": ["Reports"],
                "summary": "Export a needs assessment as PDF",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "innovationId", "in": "path", "required": true, "type": "string"},
                    {"name": "assessmentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/innovations/{innovationId}/assessments/{assessmentId}/csv": {
            "get": {
                "tags": ["Reports"],
                "summary": "Export a needs assessment as CSV",
                "produces": ["text/csv"],
                "parameters": [
                    {"name": "innovationId", "in": "path", "required": true, "type": "string"},
                    {"name": "assessmentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/innovations/{innovationId}/comments": {
            "get": {
                "tags": ["Comments"],
                "summary": "List threaded comments",
                "parameters": [{"name": "innovationId", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}}
            },
            "post": {
                "tags": ["Comments"],
                "summary": "Post a comment or reply",
                "parameters": [{"name": "innovationId", "in": "path", "required": true, "type": "string"}],
                "responses": {"201": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "Created"}}
            }
        },
        "/innovations/{innovationId}/transfers": {
            "post": {
                "tags": ["Transfers"],
                "summary": "Invite another user to take ownership",
                "parameters": [{"name": "innovationId", "in": "path", "required": true, "type": "string"}],
                "responses": {"201": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "Created"}}
            }
        }
    },
    "definitions": {
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
