package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA HOD API",
        "description": "Head-of-department dashboard backend",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "HOD", "description": "Department dashboard of the head of department"},
        {"name": "Finance", "description": "School fee collection overview"},
        {"name": "Users", "description": "User directory"}
    ],
    "paths": {
        "/hod/overview": {
            "get": {
                "tags": ["HOD"],
                "summary": "Department dashboard overview",
                "parameters": [{"$ref": "#/parameters/department"}],
                "responses": {
                    "200": {"description": "Stats, roster, resources and badges", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized"},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/hod/department": {
            "get": {
                "tags": ["HOD"],
                "summary": "Department performance stats",
                "parameters": [{"$ref": "#/parameters/department"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/DepartmentStats"}}
                }
            }
        },
        "/hod/teachers": {
            "get": {
                "tags": ["HOD"],
                "summary": "Teacher performance roster",
                "parameters": [{"$ref": "#/parameters/department"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/TeacherPerformance"}}}
                }
            }
        },
        "/hod/resources": {
            "get": {
                "tags": ["HOD"],
                "summary": "Department budget status",
                "parameters": [{"$ref": "#/parameters/department"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResourceStatus"}}
                }
            }
        },
        "/hod/badges": {
            "get": {
                "tags": ["HOD"],
                "summary": "Navigation badge counts",
                "parameters": [{"$ref": "#/parameters/department"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/BadgeCounts"}}
                }
            }
        },
        "/hod/refresh": {
            "post": {
                "tags": ["HOD"],
                "summary": "Reload department data from the system of record",
                "parameters": [{"$ref": "#/parameters/department"}],
                "responses": {
                    "200": {"description": "Provenance of the data now served", "schema": {"$ref": "#/definitions/RefreshResult"}}
                }
            }
        },
        "/hod/teachers/{id}/messages": {
            "post": {
                "tags": ["HOD"],
                "summary": "Message a teacher of the department",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SendTeacherMessageRequest"}}
                ],
                "responses": {
                    "202": {"description": "Queued or sent", "schema": {"$ref": "#/definitions/MessageResult"}},
                    "400": {"description": "Invalid payload"},
                    "404": {"description": "Teacher not in the department roster"},
                    "502": {"description": "Delivery failed"}
                }
            }
        },
        "/hod/resource-requests": {
            "post": {
                "tags": ["HOD"],
                "summary": "Submit a resource request",
                "parameters": [
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/ResourceRequestPayload"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResourceRequestReceipt"}},
                    "400": {"description": "Invalid payload"}
                }
            }
        },
        "/hod/reports/department": {
            "get": {
                "tags": ["HOD"],
                "summary": "Export the department report",
                "produces": ["text/csv", "application/pdf", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "parameters": [
                    {"$ref": "#/parameters/department"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf", "xlsx"]}
                ],
                "responses": {
                    "200": {"description": "Report file", "schema": {"type": "file"}},
                    "400": {"description": "Unsupported format"}
                }
            }
        },
        "/hod/session": {
            "delete": {
                "tags": ["HOD"],
                "summary": "Stop the caller's department session",
                "parameters": [{"$ref": "#/parameters/department"}],
                "responses": {
                    "204": {"description": "Stopped"},
                    "404": {"description": "No active session"}
                }
            }
        },
        "/finance/overview": {
            "get": {
                "tags": ["Finance"],
                "summary": "Fee collection overview",
                "parameters": [{"name": "term", "in": "query", "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/FinancialOverview"}}
                }
            }
        },
        "/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List users",
                "parameters": [
                    {"name": "role", "in": "query", "type": "string", "enum": ["SUPERMANAGER", "HOD", "TEACHER", "PARENT"]},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer", "maximum": 100}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "parameters": {
        "department": {"name": "department", "in": "query", "type": "string", "description": "Department code, honored for SUPERMANAGER only"}
    },
    "definitions": {
        "DepartmentStats": {
            "type": "object",
            "properties": {
                "departmentName": {"type": "string"},
                "totalTeachers": {"type": "integer"},
                "totalStudents": {"type": "integer"},
                "totalClasses": {"type": "integer"},
                "departmentAverage": {"type": "number"},
                "attendanceRate": {"type": "number"},
                "schoolRanking": {"type": "integer"},
                "trend": {"type": "string", "enum": ["IMPROVING", "STABLE", "DECLINING"]},
                "trendValue": {"type": "number"}
            }
        },
        "TeacherPerformance": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "subject": {"type": "string"},
                "classCount": {"type": "integer"},
                "studentCount": {"type": "integer"},
                "averageScore": {"type": "number"},
                "status": {"type": "string"},
                "departmentRank": {"type": "integer"}
            }
        },
        "ResourceStatus": {
            "type": "object",
            "properties": {
                "allocated": {"type": "number"},
                "spent": {"type": "number"},
                "remaining": {"type": "number"},
                "pendingRequests": {"type": "integer"}
            }
        },
        "BadgeCounts": {
            "type": "object",
            "properties": {
                "department": {"type": "integer", "minimum": 0},
                "resources": {"type": "integer", "minimum": 0},
                "reports": {"type": "integer", "minimum": 0}
            }
        },
        "RefreshResult": {
            "type": "object",
            "properties": {
                "provenance": {"type": "string", "enum": ["live", "cached", "fallback"]},
                "refreshedAt": {"type": "string", "format": "date-time"},
                "error": {"type": "string"}
            }
        },
        "SendTeacherMessageRequest": {
            "type": "object",
            "required": ["message"],
            "properties": {
                "message": {"type": "string", "maxLength": 4000}
            }
        },
        "MessageResult": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["SENT", "QUEUED", "NOT_FOUND", "FAILED"]},
                "messageId": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "ResourceRequestPayload": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "category": {"type": "string"},
                "amount": {"type": "number", "minimum": 0},
                "justification": {"type": "string"},
                "attributes": {"type": "object"}
            }
        },
        "ResourceRequestReceipt": {
            "type": "object",
            "properties": {
                "requestId": {"type": "string"},
                "forwarded": {"type": "boolean"},
                "badges": {"$ref": "#/definitions/BadgeCounts"},
                "error": {"type": "string"}
            }
        },
        "FinancialOverview": {
            "type": "object",
            "properties": {
                "term": {"type": "string"},
                "currency": {"type": "string"},
                "totalBilled": {"type": "number"},
                "totalCollected": {"type": "number"},
                "outstanding": {"type": "number"},
                "collectionRate": {"type": "number"},
                "overdueAccounts": {"type": "integer"}
            }
        },
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
