// Package docs holds the OpenAPI document served at /swagger. It mirrors the
// handler annotations; regenerate with `swag init -g cmd/server/main.go`.
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
        "/access/me": {
            "get": {
                "description": "Returns the client's cached counters and the ten most recent players it sent likes to.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Access"
                ],
                "summary": "The caller's client dashboard",
                "operationId": "accessMe",
                "parameters": [
                    {
                        "type": "string",
                        "example": "AB1234",
                        "description": "Access code",
                        "name": "X-Access-Code",
                        "in": "header",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/services.ClientStats"
                        }
                    },
                    "401": {
                        "description": "Missing or unknown code",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "Expired or IP not allowed",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/access/redeem": {
            "post": {
                "description": "Validates the code for the caller's IP, marks it used on first use and binds the IP when the code enforces it.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Access"
                ],
                "summary": "Redeem an access code",
                "operationId": "redeemCode",
                "parameters": [
                    {
                        "description": "Access code",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.CodeRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/services.Redemption"
                        }
                    },
                    "400": {
                        "description": "Bad request",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Unknown code",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "Expired or IP not allowed",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/clients": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Clients ordered by likes sent.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Admin"
                ],
                "summary": "List clients (paginated)",
                "operationId": "listClients",
                "parameters": [
                    {
                        "type": "integer",
                        "maximum": 200,
                        "minimum": 1,
                        "default": 50,
                        "description": "Items per page",
                        "name": "limit",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "minimum": 0,
                        "default": 0,
                        "description": "Items to skip",
                        "name": "offset",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.ListClientsResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/clients/{id}/stats": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Cached counters and recent players. With verify=true the counters are also replayed from history and drift is reported.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Admin"
                ],
                "summary": "A client's dashboard",
                "operationId": "clientStats",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Client id (UUID)",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "boolean",
                        "description": "Replay counters from history",
                        "name": "verify",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/services.ClientStats"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/codes": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Admin"
                ],
                "summary": "List access codes (paginated)",
                "operationId": "listCodes",
                "parameters": [
                    {
                        "type": "integer",
                        "maximum": 200,
                        "minimum": 1,
                        "default": 50,
                        "description": "Items per page",
                        "name": "limit",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "minimum": 0,
                        "default": 0,
                        "description": "Items to skip",
                        "name": "offset",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.ListCodesResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            },
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Creates a code valid for the given number of days; the client is created on first use of its name.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Admin"
                ],
                "summary": "Generate an access code",
                "operationId": "createCode",
                "parameters": [
                    {
                        "description": "Code settings",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.GenerateCodeRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/domain.AccessCode"
                        }
                    },
                    "400": {
                        "description": "Bad request",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/codes/{id}": {
            "delete": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "tags": [
                    "Admin"
                ],
                "summary": "Delete an access code",
                "operationId": "deleteCode",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Code id (UUID)",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content",
                        "schema": {
                            "type": "string"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/login": {
            "post": {
                "description": "Exchanges the admin code for a short-lived bearer token.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Admin"
                ],
                "summary": "Admin login",
                "operationId": "adminLogin",
                "parameters": [
                    {
                        "description": "Admin code",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.CodeRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.LoginResponse"
                        }
                    },
                    "400": {
                        "description": "Bad request",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Wrong code",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "503": {
                        "description": "Admin login disabled",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/stats": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Admin"
                ],
                "summary": "Client and code counts",
                "operationId": "adminStats",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/repo.AccessStats"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/cooldown": {
            "get": {
                "description": "Reports whether the device is cooling down and how many whole seconds remain.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Likes"
                ],
                "summary": "Caller's cooldown",
                "operationId": "getCooldown",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Stable device id; the caller IP is used when absent",
                        "name": "X-Device-ID",
                        "in": "header"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.CooldownResponse"
                        }
                    }
                }
            }
        },
        "/global-history": {
            "get": {
                "description": "Returns recorded like attempts newest first with aggregate stats. Supports weak ETag via If-None-Match and may return 304.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "History"
                ],
                "summary": "List the global like history (paginated)",
                "operationId": "globalHistory",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Return 304 if ETag matches",
                        "name": "If-None-Match",
                        "in": "header"
                    },
                    {
                        "type": "integer",
                        "maximum": 200,
                        "minimum": 1,
                        "default": 50,
                        "description": "Items per page",
                        "name": "limit",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "minimum": 0,
                        "default": 0,
                        "description": "Items to skip",
                        "name": "offset",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.GlobalHistoryResponse"
                        },
                        "headers": {
                            "ETag": {
                                "type": "string",
                                "description": "Weak ETag for current result"
                            }
                        }
                    },
                    "304": {
                        "description": "Not Modified",
                        "schema": {
                            "type": "string"
                        }
                    },
                    "500": {
                        "description": "Internal error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/global-stats": {
            "get": {
                "description": "Returns counts of recorded, successful and limited attempts and the total likes delivered.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "History"
                ],
                "summary": "Global like stats",
                "operationId": "globalStats",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/repo.HistoryStats"
                        }
                    },
                    "500": {
                        "description": "Internal error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/likes": {
            "post": {
                "description": "Runs one like request: validation, per-device cooldown, provider call with fallbacks,\nreconciliation of the before/after counters, durable history and live notification.\nSupports idempotency via the Idempotency-Key header (same device + key → same entry).",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Likes"
                ],
                "summary": "Send likes to a player",
                "operationId": "sendLikes",
                "parameters": [
                    {
                        "type": "string",
                        "example": "3f7c2a9e-device",
                        "description": "Stable device id; the caller IP is used when absent",
                        "name": "X-Device-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "example": "AB1234",
                        "description": "Access code (required unless anonymous use is enabled)",
                        "name": "X-Access-Code",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "example": "7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab",
                        "description": "Idempotency key for safe retries (UUID recommended)",
                        "name": "Idempotency-Key",
                        "in": "header"
                    },
                    {
                        "description": "Like request",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.SendLikesRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/services.LikeResult"
                        },
                        "headers": {
                            "Idempotency-Replayed": {
                                "type": "string",
                                "description": "true when the stored result was replayed"
                            }
                        }
                    },
                    "400": {
                        "description": "Invalid player id or quantity",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Access code missing or unknown",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "Access code expired or IP not allowed",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "422": {
                        "description": "Player nickname could not be resolved",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "429": {
                        "description": "Cooldown active",
                        "schema": {
                            "$ref": "#/definitions/handlers.CooldownErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "502": {
                        "description": "Provider unavailable",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/player": {
            "get": {
                "description": "Forwards ?uid= to the provider's player endpoint and returns its JSON unchanged.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Relay"
                ],
                "summary": "Relay a player-info lookup",
                "operationId": "playerRelay",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Relay key (when relay keys are configured)",
                        "name": "X-API-Key",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "example": "123456789",
                        "description": "Player id",
                        "name": "uid",
                        "in": "query",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Provider response",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "400": {
                        "description": "Missing uid",
                        "schema": {
                            "$ref": "#/definitions/handlers.RelayError"
                        }
                    },
                    "500": {
                        "description": "Not configured or provider unreachable",
                        "schema": {
                            "$ref": "#/definitions/handlers.RelayError"
                        }
                    }
                }
            }
        },
        "/players/{id}/history": {
            "get": {
                "description": "Returns the most recent attempts for a player with that player's stats.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "History"
                ],
                "summary": "One player's like history",
                "operationId": "playerHistory",
                "parameters": [
                    {
                        "type": "string",
                        "example": "123456789",
                        "description": "Player id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "maximum": 200,
                        "minimum": 1,
                        "default": 50,
                        "description": "Items to return",
                        "name": "limit",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.PlayerHistoryResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid player id",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/send-likes": {
            "post": {
                "description": "Forwards {uid, quantity} to the provider with the server-held key and returns the provider's JSON unchanged.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Relay"
                ],
                "summary": "Relay a like request to the provider",
                "operationId": "sendLikesRelay",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Relay key (when relay keys are configured)",
                        "name": "X-API-Key",
                        "in": "header"
                    },
                    {
                        "description": "Relay payload",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.RelayLikesRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Provider response",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "400": {
                        "description": "Missing fields",
                        "schema": {
                            "$ref": "#/definitions/handlers.RelayError"
                        }
                    },
                    "401": {
                        "description": "Bad relay key",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "405": {
                        "description": "Method not allowed",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Not configured or provider unreachable",
                        "schema": {
                            "$ref": "#/definitions/handlers.RelayError"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "domain.AccessCode": {
            "type": "object",
            "properties": {
                "allowedIp": {
                    "type": "string"
                },
                "boundIp": {
                    "type": "string"
                },
                "client": {
                    "$ref": "#/definitions/domain.Client"
                },
                "clientId": {
                    "type": "string"
                },
                "code": {
                    "type": "string"
                },
                "createdAt": {
                    "type": "string",
                    "format": "date-time"
                },
                "enforceIp": {
                    "type": "boolean"
                },
                "expiresAt": {
                    "type": "string",
                    "format": "date-time"
                },
                "hours": {
                    "type": "integer"
                },
                "id": {
                    "type": "string"
                },
                "used": {
                    "type": "boolean"
                },
                "usedAt": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "domain.Client": {
            "type": "object",
            "properties": {
                "createdAt": {
                    "type": "string",
                    "format": "date-time"
                },
                "email": {
                    "type": "string"
                },
                "id": {
                    "type": "string"
                },
                "lastActivityAt": {
                    "type": "string",
                    "format": "date-time"
                },
                "name": {
                    "type": "string"
                },
                "phone": {
                    "type": "string"
                },
                "totalLikesSent": {
                    "type": "integer"
                },
                "uniquePlayersCount": {
                    "type": "integer"
                },
                "updatedAt": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "domain.ClientPlayerTotal": {
            "type": "object",
            "properties": {
                "clientId": {
                    "type": "string"
                },
                "createdAt": {
                    "type": "string",
                    "format": "date-time"
                },
                "id": {
                    "type": "string"
                },
                "lastSentAt": {
                    "type": "string",
                    "format": "date-time"
                },
                "playerId": {
                    "type": "string"
                },
                "playerNickname": {
                    "type": "string"
                },
                "playerRegion": {
                    "type": "string"
                },
                "totalSent": {
                    "type": "integer"
                }
            }
        },
        "domain.HistoryEntry": {
            "type": "object",
            "properties": {
                "clientId": {
                    "type": "string"
                },
                "createdAt": {
                    "type": "string",
                    "format": "date-time"
                },
                "id": {
                    "type": "string"
                },
                "likesAfter": {
                    "type": "integer"
                },
                "likesBefore": {
                    "type": "integer"
                },
                "likesReported": {
                    "type": "integer"
                },
                "likesSentActual": {
                    "type": "integer"
                },
                "outcome": {
                    "allOf": [
                        {
                            "$ref": "#/definitions/domain.Outcome"
                        }
                    ]
                },
                "playerExp": {
                    "type": "integer"
                },
                "playerId": {
                    "type": "string"
                },
                "playerLevel": {
                    "type": "integer"
                },
                "playerNickname": {
                    "type": "string"
                },
                "playerRegion": {
                    "type": "string"
                },
                "quantityRequested": {
                    "type": "integer"
                }
            }
        },
        "domain.Outcome": {
            "type": "string",
            "enum": [
                "success",
                "partial_success",
                "limit_reached",
                "failure"
            ],
            "x-enum-varnames": [
                "OutcomeSuccess",
                "OutcomePartialSuccess",
                "OutcomeLimitReached",
                "OutcomeFailure"
            ]
        },
        "handlers.CodeRequest": {
            "type": "object",
            "required": [
                "code"
            ],
            "properties": {
                "code": {
                    "type": "string",
                    "example": "AB1234"
                }
            }
        },
        "handlers.CooldownErrorResponse": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string",
                    "example": "not_found"
                },
                "message": {
                    "type": "string",
                    "example": "resource not found"
                },
                "remainingSeconds": {
                    "type": "integer",
                    "example": 17
                },
                "request_id": {
                    "type": "string",
                    "example": "123e4567-e89b-12d3-a456-426614174000"
                }
            }
        },
        "handlers.CooldownResponse": {
            "type": "object",
            "properties": {
                "active": {
                    "type": "boolean"
                },
                "remainingSeconds": {
                    "type": "integer"
                }
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string",
                    "example": "not_found",
                    "description": "Stable, machine-readable code (see errors.go constants)"
                },
                "message": {
                    "type": "string",
                    "example": "resource not found",
                    "description": "Human-readable message (safe to show to users)"
                },
                "request_id": {
                    "type": "string",
                    "example": "123e4567-e89b-12d3-a456-426614174000",
                    "description": "Correlates server logs and client errors"
                }
            }
        },
        "handlers.GenerateCodeRequest": {
            "type": "object",
            "required": [
                "clientName",
                "days"
            ],
            "properties": {
                "allowedIp": {
                    "type": "string",
                    "example": "203.0.113.7"
                },
                "clientName": {
                    "type": "string",
                    "example": "João Silva"
                },
                "days": {
                    "type": "integer",
                    "example": 30
                },
                "enforceIp": {
                    "type": "boolean"
                }
            }
        },
        "handlers.GlobalHistoryResponse": {
            "type": "object",
            "properties": {
                "history": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.HistoryEntry"
                    }
                },
                "pagination": {
                    "$ref": "#/definitions/handlers.Pagination"
                },
                "stats": {
                    "$ref": "#/definitions/repo.HistoryStats"
                }
            }
        },
        "handlers.ListClientsResponse": {
            "type": "object",
            "properties": {
                "clients": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.Client"
                    }
                },
                "pagination": {
                    "$ref": "#/definitions/handlers.Pagination"
                }
            }
        },
        "handlers.ListCodesResponse": {
            "type": "object",
            "properties": {
                "codes": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.AccessCode"
                    }
                },
                "pagination": {
                    "$ref": "#/definitions/handlers.Pagination"
                }
            }
        },
        "handlers.LoginResponse": {
            "type": "object",
            "properties": {
                "expiresAt": {
                    "type": "string",
                    "format": "date-time"
                },
                "token": {
                    "type": "string"
                }
            }
        },
        "handlers.Pagination": {
            "type": "object",
            "properties": {
                "hasMore": {
                    "type": "boolean"
                },
                "limit": {
                    "type": "integer"
                },
                "offset": {
                    "type": "integer"
                },
                "total": {
                    "type": "integer"
                }
            }
        },
        "handlers.PlayerHistoryResponse": {
            "type": "object",
            "properties": {
                "history": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.HistoryEntry"
                    }
                },
                "playerId": {
                    "type": "string"
                },
                "stats": {
                    "$ref": "#/definitions/repo.HistoryStats"
                }
            }
        },
        "handlers.RelayError": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "string",
                    "example": "uid and quantity are required"
                }
            }
        },
        "handlers.RelayLikesRequest": {
            "type": "object",
            "properties": {
                "quantity": {
                    "type": "integer",
                    "example": 100
                },
                "uid": {
                    "type": "string",
                    "example": "123456789"
                }
            }
        },
        "handlers.SendLikesRequest": {
            "type": "object",
            "properties": {
                "playerId": {
                    "type": "string",
                    "example": "123456789",
                    "description": "PlayerID is the numeric Free Fire account id."
                },
                "quantity": {
                    "type": "integer",
                    "example": 100,
                    "description": "Quantity is the number of likes asked for."
                }
            }
        },
        "repo.AccessStats": {
            "type": "object",
            "properties": {
                "activeCodes": {
                    "type": "integer"
                },
                "clients": {
                    "type": "integer"
                },
                "codes": {
                    "type": "integer"
                },
                "usedCodes": {
                    "type": "integer"
                }
            }
        },
        "repo.ClientAggregate": {
            "type": "object",
            "properties": {
                "lastActivityAt": {
                    "type": "string",
                    "format": "date-time"
                },
                "totalLikesSent": {
                    "type": "integer"
                },
                "uniquePlayersCount": {
                    "type": "integer"
                }
            }
        },
        "repo.HistoryStats": {
            "type": "object",
            "properties": {
                "failed": {
                    "type": "integer"
                },
                "successful": {
                    "type": "integer"
                },
                "total": {
                    "type": "integer"
                },
                "totalLikes": {
                    "type": "integer"
                }
            }
        },
        "services.ClientStats": {
            "type": "object",
            "properties": {
                "client": {
                    "$ref": "#/definitions/domain.Client"
                },
                "drift": {
                    "type": "boolean",
                    "description": "Drift is true when the cached counters disagree with Verified."
                },
                "recentPlayers": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.ClientPlayerTotal"
                    }
                },
                "verified": {
                    "description": "Verified is the aggregate replayed from history; set on request.",
                    "allOf": [
                        {
                            "$ref": "#/definitions/repo.ClientAggregate"
                        }
                    ]
                }
            }
        },
        "services.LikeResult": {
            "type": "object",
            "properties": {
                "entry": {
                    "$ref": "#/definitions/domain.HistoryEntry"
                },
                "likesSent": {
                    "type": "integer"
                },
                "message": {
                    "type": "string"
                },
                "outcome": {
                    "allOf": [
                        {
                            "$ref": "#/definitions/domain.Outcome"
                        }
                    ]
                },
                "requested": {
                    "type": "integer"
                },
                "shortfall": {
                    "type": "boolean"
                }
            }
        },
        "services.Redemption": {
            "type": "object",
            "properties": {
                "clientId": {
                    "type": "string"
                },
                "clientName": {
                    "type": "string"
                },
                "expiresAt": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
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
	Title:            "Free Fire Likes API",
	Description:      "Likes orchestration with per-device cooldown, provider fallbacks, durable history and a live feed.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
