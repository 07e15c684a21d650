package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Bus Tracker API",
        "description": "Roster, attendance and payment tracking for a single school bus",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Driver login"},
        {"name": "Bus", "description": "Bus identity and roster"},
        {"name": "Students", "description": "Roster edits and attendance toggling"},
        {"name": "Payments", "description": "Monthly payment settlement"},
        {"name": "Notifications", "description": "In-app notification feed"},
        {"name": "Location", "description": "Bus position tracking"},
        {"name": "Dashboard", "description": "Derived counters"},
        {"name": "Reports", "description": "CSV/PDF exports"},
        {"name": "Events", "description": "WebSocket change stream"}
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
        "/api/v1/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate the driver with id and PIN",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/bus": {
            "get": {
                "tags": ["Bus"],
                "summary": "Current bus info and roster",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/bus/driver": {
            "patch": {
                "tags": ["Bus"],
                "summary": "Rename the driver",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateDriverRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List the roster",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get one student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not on roster", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Students"],
                "summary": "Patch a student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStudentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not on roster", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/students/{id}/toggle": {
            "post": {
                "tags": ["Students"],
                "summary": "Toggle a student on or off the bus",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/ToggleAttendanceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not on roster", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/students/{id}/payments": {
            "post": {
                "tags": ["Payments"],
                "summary": "Settle a student's payment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not on roster", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/attendance": {
            "get": {
                "tags": ["Students"],
                "summary": "Recent boarding/alighting events",
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "List notifications, newest first",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Notifications"],
                "summary": "Add a notification",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateNotificationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Notifications"],
                "summary": "Clear every notification",
                "responses": {
                    "204": {"description": "Cleared"}
                }
            }
        },
        "/api/v1/notifications/{id}/read": {
            "post": {
                "tags": ["Notifications"],
                "summary": "Mark a notification read",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Marked"}
                }
            }
        },
        "/api/v1/location": {
            "get": {
                "tags": ["Location"],
                "summary": "Tracker status and latest known position",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/location/samples": {
            "post": {
                "tags": ["Location"],
                "summary": "Push a position sample from the driver's device",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LocationSample"}}
                ],
                "responses": {
                    "204": {"description": "Accepted"}
                }
            }
        },
        "/api/v1/location/tracking/start": {
            "post": {
                "tags": ["Location"],
                "summary": "Start the position watch",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/location/tracking/stop": {
            "post": {
                "tags": ["Location"],
                "summary": "Stop the position watch",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Dashboard counters and revenue partition",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/reports/payments": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download the payment report",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File"}
                }
            }
        },
        "/api/v1/reports/attendance": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download the attendance report",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File"}
                }
            }
        },
        "/api/v1/events": {
            "get": {
                "tags": ["Events"],
                "summary": "Stream store change events over WebSocket",
                "responses": {
                    "101": {"description": "Switching protocols"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["driver_id", "pin"],
            "properties": {
                "driver_id": {"type": "string"},
                "pin": {"type": "string"}
            }
        },
        "UpdateDriverRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"}
            }
        },
        "UpdateStudentRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "age": {"type": "integer"},
                "grade": {"type": "string"},
                "address": {"type": "string"},
                "pickup_location": {"type": "string"},
                "dropoff_location": {"type": "string"},
                "payment": {"$ref": "#/definitions/PaymentPatch"}
            }
        },
        "PaymentPatch": {
            "type": "object",
            "properties": {
                "monthly_amount": {"type": "number"},
                "due_date": {"type": "string", "format": "date-time"},
                "last_payment_date": {"type": "string", "format": "date-time"},
                "is_paid": {"type": "boolean"},
                "is_overdue": {"type": "boolean"}
            }
        },
        "ToggleAttendanceRequest": {
            "type": "object",
            "properties": {
                "location": {"$ref": "#/definitions/LocationSample"}
            }
        },
        "LocationSample": {
            "type": "object",
            "required": ["latitude", "longitude"],
            "properties": {
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "timestamp": {"type": "string", "format": "date-time"},
                "speed": {"type": "number"},
                "heading": {"type": "number"}
            }
        },
        "CreateNotificationRequest": {
            "type": "object",
            "required": ["type", "title", "message"],
            "properties": {
                "type": {"type": "string", "enum": ["payment_overdue", "payment_reminder", "attendance", "system"]},
                "title": {"type": "string"},
                "message": {"type": "string"},
                "student_id": {"type": "string"},
                "student_name": {"type": "string"}
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
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
