package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Timetable Notify API",
        "description": "Weekly class timetable with push notification scheduling",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Timetable", "description": "Weekly schedule views"},
        {"name": "Subscriptions", "description": "Push destination lifecycle"},
        {"name": "Notifications", "description": "Scheduling and dispatch"}
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
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unavailable"}
                }
            }
        },
        "/api/v1/timetable": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Full weekly timetable",
                "responses": {
                    "200": {"description": "Weekly schedule", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/timetable/today": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Today's slots",
                "responses": {
                    "200": {"description": "Slots for the current weekday", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/subscriptions": {
            "post": {
                "tags": ["Subscriptions"],
                "summary": "Register a push subscription",
                "responses": {
                    "201": {"description": "Created"},
                    "200": {"description": "Already registered"},
                    "400": {"description": "Invalid payload"}
                }
            },
            "delete": {
                "tags": ["Subscriptions"],
                "summary": "Deactivate a push subscription",
                "responses": {
                    "204": {"description": "Deactivated"},
                    "400": {"description": "Invalid payload"}
                }
            }
        },
        "/api/v1/notifications/schedule": {
            "post": {
                "tags": ["Notifications"],
                "summary": "Recompute and persist all future notifications",
                "responses": {
                    "200": {"description": "Scheduled count", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/notifications/sweep": {
            "post": {
                "tags": ["Notifications"],
                "summary": "Dispatch all due unsent notifications",
                "responses": {
                    "200": {"description": "Sweep summary", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/notifications/send": {
            "post": {
                "tags": ["Notifications"],
                "summary": "Broadcast a notification to all active subscriptions",
                "responses": {
                    "200": {"description": "Broadcast summary"},
                    "400": {"description": "Missing title or body"}
                }
            }
        },
        "/api/v1/notifications/upcoming": {
            "get": {
                "tags": ["Notifications"],
                "summary": "Notification instants due within a horizon",
                "parameters": [
                    {"name": "hours", "in": "query", "type": "integer", "description": "Horizon in hours (default 24)"}
                ],
                "responses": {
                    "200": {"description": "Upcoming instants"}
                }
            }
        },
        "/api/v1/notifications/pending": {
            "get": {
                "tags": ["Notifications"],
                "summary": "Durable records awaiting dispatch",
                "responses": {
                    "200": {"description": "Pending records"}
                }
            }
        },
        "/api/v1/notifications/logs": {
            "get": {
                "tags": ["Notifications"],
                "summary": "Recent delivery attempts",
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer", "description": "Maximum entries (default 50)"}
                ],
                "responses": {
                    "200": {"description": "Delivery log entries"}
                }
            }
        },
        "/api/v1/notifications/status": {
            "get": {
                "tags": ["Notifications"],
                "summary": "Developer-facing notification status",
                "responses": {
                    "200": {"description": "Delivery adapter status"}
                }
            }
        }
    },
    "definitions": {
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
