package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Reading Reports API",
        "description": "Combines reading platform exports and serves the summary dashboard",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Dashboard", "description": "Summary views over the downloaded exports"},
        {"name": "Reports", "description": "Combined workbooks and the reports directory"},
        {"name": "Jobs", "description": "Scrape and combine runs"},
        {"name": "Settings", "description": "Scraper filters and enabled tabs"},
        {"name": "Authentication", "description": "Operator login"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/metrics": {
            "get": {
                "summary": "Prometheus metrics",
                "produces": ["text/plain"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/metrics/summary": {
            "get": {
                "summary": "Process counters as JSON",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate the operator",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard/overview": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Every summary view plus period, institution and latest combined workbook",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/dashboard/school": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "School totals",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No Student Usage exports", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard/classrooms": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Per-classroom usage",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No Student Usage exports", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard/comparison": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Classroom comparison chart series",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No Student Usage exports", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard/skills": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Skill accuracy",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No Skill exports", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard/top-readers": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Top three readers per classroom",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No Student Usage exports", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard/level-up": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Level up progress per classroom",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No Level Up Progress exports", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard/activity/{type}": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Assignment or assessment activity per owner",
                "parameters": [
                    {"name": "type", "in": "path", "required": true, "type": "string", "enum": ["assignment", "assessment"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Unknown type", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No exports", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard/export/pdf": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "School overview PDF",
                "produces": ["application/pdf"],
                "responses": {"200": {"description": "PDF file"}, "404": {"description": "No data"}}
            }
        },
        "/dashboard/export/csv": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Classroom summary CSV",
                "produces": ["text/csv"],
                "responses": {"200": {"description": "CSV file"}, "404": {"description": "No data"}}
            }
        },
        "/reports": {
            "get": {
                "tags": ["Reports"],
                "summary": "List stored workbooks newest first",
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/reports/latest": {
            "get": {
                "tags": ["Reports"],
                "summary": "Newest combined workbook",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Nothing combined yet", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/zip": {
            "get": {
                "tags": ["Reports"],
                "summary": "Every stored workbook as a zip archive",
                "produces": ["application/zip"],
                "responses": {"200": {"description": "Zip archive"}, "404": {"description": "No files"}}
            }
        },
        "/reports/download/{token}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a workbook through a signed link",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "Workbook"}, "401": {"description": "Invalid or expired link"}, "404": {"description": "Not found"}}
            }
        },
        "/reports/{filename}/link": {
            "post": {
                "tags": ["Reports"],
                "summary": "Create a signed download link",
                "parameters": [
                    {"name": "filename", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid filename", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/combine": {
            "post": {
                "tags": ["Reports"],
                "summary": "Combine the downloaded exports without scraping",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "A run is already active", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/jobs/scrape": {
            "post": {
                "tags": ["Jobs"],
                "summary": "Start a scrape followed by a combine",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "A run is already active", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/jobs/status": {
            "get": {
                "tags": ["Jobs"],
                "summary": "Busy flag with the current and last run",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/jobs/runs": {
            "get": {
                "tags": ["Jobs"],
                "summary": "Run history newest first",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string", "enum": ["QUEUED", "RUNNING", "FINISHED", "EMPTY", "FAILED"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/settings": {
            "get": {
                "tags": ["Settings"],
                "summary": "Current scrape settings",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "put": {
                "tags": ["Settings"],
                "summary": "Replace scrape settings",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ScrapeSettings"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/users": {
            "get": {
                "tags": ["Users"],
                "summary": "Scraper accounts",
                "description": "Passwords are never returned.",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "put": {
                "tags": ["Users"],
                "summary": "Replace scraper accounts",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReplaceAccountsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/users/upload": {
            "post": {
                "tags": ["Users"],
                "summary": "Upload scraper accounts file",
                "consumes": ["multipart/form-data"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "users_file", "in": "formData", "type": "file", "required": true, "description": "JSON array of accounts"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "ReplaceAccountsRequest": {
            "type": "object",
            "properties": {
                "users": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "username": {"type": "string"},
                            "password": {"type": "string", "description": "empty keeps the stored password"}
                        },
                        "required": ["username"]
                    }
                }
            }
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["username", "password"]
        },
        "ScrapeSettings": {
            "type": "object",
            "properties": {
                "date_filter": {"type": "string", "enum": ["Today", "Last 7 Days", "Last 30 Days", "Last 90 Days", "Last Year", "Custom"]},
                "products_filter": {"type": "string"},
                "custom_start_date": {"type": "string", "description": "DD/MM/YYYY"},
                "custom_end_date": {"type": "string", "description": "DD/MM/YYYY"},
                "tabs": {"type": "object", "additionalProperties": {"type": "boolean"}}
            },
            "required": ["date_filter", "products_filter"]
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
