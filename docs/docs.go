// Package docs registra el documento OpenAPI que sirve /swagger/*.
// Se mantiene a mano junto con las anotaciones @Summary/@Router de los handlers.
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Estado del servicio y del store",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/health.Report"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/respond.Envelope"}}
                }
            }
        },
        "/animals": {
            "get": {
                "produces": ["application/json"],
                "tags": ["animals"],
                "summary": "Listar animales",
                "parameters": [
                    {"type": "string", "description": "Available | Pending | Adopted | Not Available | Medical Hold", "name": "status", "in": "query"},
                    {"type": "string", "description": "Especie (case-insensitive)", "name": "species", "in": "query"},
                    {"type": "integer", "description": "Filtrar por hábitat", "name": "habitat", "in": "query"},
                    {"type": "boolean", "description": "Solo Available", "name": "available_only", "in": "query"},
                    {"type": "string", "description": "name | species | age | arrivalDate | adoptionStatus", "name": "sort", "in": "query"},
                    {"type": "string", "description": "asc | desc", "name": "order", "in": "query"},
                    {"type": "integer", "description": "Página (default 1)", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Tamaño de página (default 20, máx 100)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/respond.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.Envelope"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["animals"],
                "summary": "Registrar animal (staff)",
                "parameters": [
                    {"description": "Datos del animal", "name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/respond.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.Envelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/respond.Envelope"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/respond.Envelope"}}
                }
            }
        },
        "/animals/{animalID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["animals"],
                "summary": "Obtener animal",
                "parameters": [{"type": "integer", "description": "ID del animal", "name": "animalID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/respond.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.Envelope"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["animals"],
                "summary": "Actualizar animal (staff)",
                "parameters": [
                    {"type": "integer", "description": "ID del animal", "name": "animalID", "in": "path", "required": true},
                    {"description": "Campos a cambiar; habitat_id null saca al animal del hábitat", "name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/respond.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.Envelope"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/respond.Envelope"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["animals"],
                "summary": "Retirar animal (staff, soft delete)",
                "parameters": [{"type": "integer", "description": "ID del animal", "name": "animalID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/respond.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.Envelope"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/respond.Envelope"}}
                }
            }
        },
        "/habitats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["habitats"],
                "summary": "Listar hábitats (staff)",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/respond.Envelope"}}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["habitats"],
                "summary": "Crear hábitat (staff)",
                "parameters": [{"description": "habitat_name, habitat_type, capacity", "name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/respond.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.Envelope"}}
                }
            }
        },
        "/habitats/{habitatID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["habitats"],
                "summary": "Obtener hábitat (staff)",
                "parameters": [{"type": "integer", "description": "ID del hábitat", "name": "habitatID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/respond.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.Envelope"}}
                }
            }
        },
        "/adopters": {
            "get": {
                "produces": ["application/json"],
                "tags": ["adopters"],
                "summary": "Listar adoptantes (staff)",
                "parameters": [
                    {"type": "string", "description": "Texto libre", "name": "search", "in": "query"},
                    {"type": "integer", "description": "Página", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Tamaño de página", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/respond.Envelope"}}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["adopters"],
                "summary": "Registrar adoptante",
                "parameters": [{"description": "Datos del adoptante", "name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/respond.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.Envelope"}}
                }
            }
        },
        "/adopters/{adopterID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["adopters"],
                "summary": "Obtener adoptante con sus solicitudes (staff)",
                "parameters": [{"type": "integer", "description": "ID del adoptante", "name": "adopterID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/respond.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.Envelope"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["adopters"],
                "summary": "Actualizar adoptante (staff)",
                "parameters": [
                    {"type": "integer", "description": "ID del adoptante", "name": "adopterID", "in": "path", "required": true},
                    {"description": "Campos a cambiar", "name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/respond.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.Envelope"}}
                }
            }
        },
        "/applications": {
            "get": {
                "produces": ["application/json"],
                "tags": ["applications"],
                "summary": "Listar solicitudes (staff)",
                "parameters": [
                    {"type": "string", "description": "Estado", "name": "status", "in": "query"},
                    {"type": "integer", "description": "Adoptante", "name": "adopter_id", "in": "query"},
                    {"type": "integer", "description": "Animal", "name": "animal_id", "in": "query"},
                    {"type": "integer", "description": "Página", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Tamaño de página", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/respond.Envelope"}}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["applications"],
                "summary": "Enviar solicitud de adopción",
                "parameters": [{"description": "adopter_id o adopter inline, animal_id y narrativa", "name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/respond.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.Envelope"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/respond.Envelope"}}
                }
            }
        },
        "/applications/{applicationID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["applications"],
                "summary": "Obtener solicitud (staff)",
                "parameters": [{"type": "integer", "description": "ID de la solicitud", "name": "applicationID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/respond.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.Envelope"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["applications"],
                "summary": "Editar staff_notes / interview_date (staff)",
                "parameters": [
                    {"type": "integer", "description": "ID de la solicitud", "name": "applicationID", "in": "path", "required": true},
                    {"description": "Campos a cambiar", "name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/respond.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.Envelope"}}
                }
            }
        },
        "/applications/{applicationID}/status": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["applications"],
                "summary": "Cambiar estado de la solicitud (staff)",
                "parameters": [
                    {"type": "integer", "description": "ID de la solicitud", "name": "applicationID", "in": "path", "required": true},
                    {"description": "status y reason (obligatorio para Rejected)", "name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/respond.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.Envelope"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/respond.Envelope"}}
                }
            }
        },
        "/activity": {
            "get": {
                "produces": ["application/json"],
                "tags": ["activity"],
                "summary": "Leer el activity log (staff)",
                "parameters": [
                    {"type": "string", "description": "animals | adopters | adoption_applications", "name": "table", "in": "query"},
                    {"type": "integer", "description": "ID del registro", "name": "record_id", "in": "query"},
                    {"type": "integer", "description": "Página", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Tamaño de página", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/respond.Envelope"}}}
            }
        }
    },
    "definitions": {
        "respond.Envelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {},
                "error": {"type": "string"},
                "message": {"type": "string"},
                "pagination": {"$ref": "#/definitions/pagination.Meta"}
            }
        },
        "pagination.Meta": {
            "type": "object",
            "properties": {
                "current_page": {"type": "integer"},
                "per_page": {"type": "integer"},
                "total_records": {"type": "integer"},
                "total_pages": {"type": "integer"},
                "has_next_page": {"type": "boolean"},
                "has_prev_page": {"type": "boolean"}
            }
        },
        "health.Report": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "timestamp": {"type": "string"},
                "uptime_seconds": {"type": "integer"},
                "database": {
                    "type": "object",
                    "properties": {
                        "connected": {"type": "boolean"},
                        "stats": {"type": "object"}
                    }
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Animal Sanctuary API",
	Description:      "Registro de animales, hábitats, adoptantes y solicitudes de adopción.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
