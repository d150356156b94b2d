// Package portal registers the OpenAPI document served under /swagger/.
// Regenerate with: swag init -g internal/portal/http/router.go -o api/portal
package portal

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "BorealFin Platform Team",
            "url": "https://github.com/borealfin/portal"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/livez": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health Check Endpoint",
                "responses": {
                    "200": {"description": "status, uptime, version"}
                }
            }
        },
        "/readyz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness Check Endpoint",
                "responses": {
                    "200": {"description": "status, uptime, version, checks"},
                    "503": {"description": "service not ready"}
                }
            }
        },
        "/v1/otp/request": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["OTP"],
                "summary": "Request One-Time Code",
                "responses": {
                    "200": {"description": "sent"},
                    "400": {"description": "error, error_description"}
                }
            }
        },
        "/v1/otp/verify": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["OTP"],
                "summary": "Verify One-Time Code",
                "responses": {
                    "200": {"description": "verified, accessToken, nextStep"},
                    "401": {"description": "verified=false"}
                }
            }
        },
        "/v1/profile": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Profile"],
                "summary": "Fetch Client Profile",
                "responses": {
                    "200": {"description": "profile"},
                    "401": {"description": "error, error_description"}
                }
            }
        },
        "/v1/profile/prefill": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Profile"],
                "summary": "Last Used Phone",
                "responses": {
                    "200": {"description": "phone"}
                }
            }
        },
        "/v1/boot": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Routing"],
                "summary": "Resolve Boot Route",
                "responses": {
                    "200": {"description": "route"}
                }
            }
        },
        "/v1/resume/{token}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Routing"],
                "summary": "Resolve Resume Route",
                "responses": {
                    "200": {"description": "route"}
                }
            }
        },
        "/v1/guard": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Routing"],
                "summary": "Resolve Session Guard Action",
                "responses": {
                    "200": {"description": "action"}
                }
            }
        },
        "/v1/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Routing"],
                "summary": "Application Status",
                "responses": {
                    "200": {"description": "token, stage"},
                    "401": {"description": "error, error_description"}
                }
            }
        },
        "/v1/session/refresh": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Session"],
                "summary": "Refresh Client Session",
                "responses": {
                    "200": {"description": "refreshed"}
                }
            }
        },
        "/v1/applications": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Applications"],
                "summary": "Create Application",
                "responses": {
                    "201": {"description": "token"}
                }
            }
        },
        "/v1/applications/{token}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Applications"],
                "summary": "Fetch Application",
                "responses": {
                    "200": {"description": "snapshot"},
                    "404": {"description": "error, error_description"}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "tags": ["Applications"],
                "summary": "Autosave Application",
                "responses": {
                    "204": {"description": "saved"},
                    "409": {"description": "error, error_description"}
                }
            }
        },
        "/v1/applications/{token}/missing-documents": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Applications"],
                "summary": "Missing Required Documents",
                "responses": {
                    "200": {"description": "missing, blocked"}
                }
            }
        },
        "/v1/applications/{token}/submit": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Applications"],
                "summary": "Submit Application",
                "responses": {
                    "200": {"description": "applicationId, redirect"},
                    "422": {"description": "error, error_description"}
                }
            }
        },
        "/v1/applications/{token}/links": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Applications"],
                "summary": "List Linked Applications",
                "responses": {
                    "200": {"description": "links"}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["Applications"],
                "summary": "Link Child Application",
                "responses": {
                    "204": {"description": "linked"}
                }
            }
        },
        "/v1/applications/{token}/signing-url": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Applications"],
                "summary": "Obtain Signing URL",
                "responses": {
                    "200": {"description": "signingUrl"}
                }
            }
        },
        "/v1/applications/{token}/sign-status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Applications"],
                "summary": "Poll Signing Status",
                "responses": {
                    "200": {"description": "status"}
                }
            }
        },
        "/v1/uploads/retry": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Applications"],
                "summary": "Drain Upload Retry Queue",
                "responses": {
                    "200": {"description": "retried, remaining"}
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "Portal access token. Format: \"Bearer {token}\"."
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Client Portal API",
	Description:      "Phone-verified loan application portal: one-time-code login, resumable application wizard, document submission and status tracking.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
