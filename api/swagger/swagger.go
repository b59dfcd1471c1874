package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Parikshan Ops API",
        "description": "Substitute-teacher assignment engine and leave approval gate",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Leaves", "description": "Leave requests and the capacity gate"},
        {"name": "Substitutions", "description": "Assignment ledger and allocation runs"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/leaves": {
            "get": {
                "tags": ["Leaves"],
                "summary": "List leave requests, earliest submitted first",
                "parameters": [
                    {"name": "wingId", "in": "query", "type": "string"},
                    {"name": "date", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["PENDING", "APPROVED", "REJECTED"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Leaves"],
                "summary": "Submit a leave request",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitLeaveRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/leaves/{id}/approve": {
            "post": {
                "tags": ["Leaves"],
                "summary": "Approve through the wing capacity gate",
                "description": "A declined gate returns 200 with the reason; the request stays PENDING.",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Gate decision plus optional allocation summary", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/leaves/{id}/reject": {
            "post": {
                "tags": ["Leaves"],
                "summary": "Reject a leave request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/substitutions/allocate": {
            "post": {
                "tags": ["Substitutions"],
                "summary": "Run allocation for a school day",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AllocateRequest"}}
                ],
                "responses": {
                    "200": {"description": "Allocation summary", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/substitutions": {
            "get": {
                "tags": ["Substitutions"],
                "summary": "List committed assignments",
                "parameters": [
                    {"name": "date", "in": "query", "required": true, "type": "string"},
                    {"name": "teacherId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/substitutions/unfilled": {
            "get": {
                "tags": ["Substitutions"],
                "summary": "List unfilled vacancies",
                "parameters": [
                    {"name": "date", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/substitutions/report": {
            "get": {
                "tags": ["Substitutions"],
                "summary": "Export a day coverage report",
                "parameters": [
                    {"name": "date", "in": "query", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "CSV or PDF payload"}
                }
            }
        }
    },
    "definitions": {
        "SubmitLeaveRequest": {
            "type": "object",
            "properties": {
                "teacherId": {"type": "string"},
                "date": {"type": "string", "example": "2026-09-01"},
                "leaveType": {"type": "string", "enum": ["SICK", "CASUAL", "EARNED", "DUTY"]},
                "reason": {"type": "string"}
            },
            "required": ["teacherId", "date", "leaveType"]
        },
        "AllocateRequest": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "example": "2026-09-01"}
            },
            "required": ["date"]
        },
        "GateDecision": {
            "type": "object",
            "properties": {
                "approved": {"type": "boolean"},
                "reason": {"type": "string", "enum": ["WING_QUOTA_EXCEEDED", "EARLIER_REQUEST_PENDING"]},
                "approved_count": {"type": "integer"},
                "quota": {"type": "integer"}
            }
        },
        "Substitution": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "date": {"type": "string"},
                "period_index": {"type": "integer"},
                "section_id": {"type": "string"},
                "original_teacher_id": {"type": "string"},
                "substitute_teacher_id": {"type": "string"},
                "subject_id": {"type": "string"},
                "leave_request_id": {"type": "string"},
                "score": {"type": "integer"},
                "weights_version": {"type": "integer"},
                "is_notified": {"type": "boolean"}
            }
        },
        "UnfilledVacancy": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "date": {"type": "string"},
                "period_index": {"type": "integer"},
                "section_id": {"type": "string"},
                "original_teacher_id": {"type": "string"},
                "subject_id": {"type": "string"},
                "leave_request_id": {"type": "string"},
                "reason": {"type": "string", "enum": ["NO_ELIGIBLE_CANDIDATE", "COMMIT_CONFLICT"]}
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
                "pagination": {"type": "object"},
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
