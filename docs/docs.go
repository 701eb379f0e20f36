// Package docs registra la especificación Swagger servida en /swagger/*.
// Mantener alineado con las anotaciones godoc de los handlers.
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
                "tags": ["ops"],
                "summary": "Health check",
                "produces": ["text/plain"],
                "responses": {"200": {"description": "ok"}}
            }
        },
        "/documents": {
            "get": {
                "tags": ["documents"],
                "summary": "Listar fichas",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/documents.DocumentInfo"}}},
                    "503": {"description": "no document source configured"}
                }
            }
        },
        "/documents/parse": {
            "post": {
                "tags": ["documents"],
                "summary": "Parsear texto subido",
                "consumes": ["text/plain"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "name", "in": "query"},
                    {"type": "boolean", "name": "raw", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/documents.Result"}},
                    "400": {"description": "empty document"},
                    "413": {"description": "document too large"}
                }
            }
        },
        "/documents/{name}/parse": {
            "get": {
                "tags": ["documents"],
                "summary": "Parsear ficha",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "name", "in": "path", "required": true},
                    {"type": "boolean", "name": "raw", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/documents.Result"}},
                    "400": {"description": "invalid document name"},
                    "404": {"description": "document not found"}
                }
            }
        },
        "/records": {
            "post": {
                "tags": ["records"],
                "summary": "Guardar documento parseado",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "document", "in": "body", "required": true, "schema": {"$ref": "#/definitions/parser.ParsedDocument"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/records.SaveResult"}},
                    "400": {"description": "invalid input"}
                }
            }
        },
        "/records/owners": {
            "get": {
                "tags": ["records"],
                "summary": "Listar dueños",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/records.OwnerSummary"}}}
                }
            }
        },
        "/records/owners/{ownerID}": {
            "get": {
                "tags": ["records"],
                "summary": "Detalle de dueño",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "ownerID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/records.OwnerDetail"}},
                    "404": {"description": "not found"}
                }
            },
            "put": {
                "tags": ["records"],
                "summary": "Actualizar dueño, mascotas y visitas",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "ownerID", "in": "path", "required": true},
                    {"name": "update", "in": "body", "required": true, "schema": {"$ref": "#/definitions/records.OwnerUpdate"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/records.OwnerDetail"}},
                    "400": {"description": "invalid input"},
                    "404": {"description": "not found"}
                }
            }
        },
        "/export/records.xlsx": {
            "get": {
                "tags": ["export"],
                "summary": "Exportar registros",
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "responses": {"200": {"description": "OK", "schema": {"type": "file"}}}
            }
        }
    },
    "definitions": {
        "documents.DocumentInfo": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "size": {"type": "integer"},
                "modifiedAt": {"type": "string", "format": "date-time"}
            }
        },
        "documents.Result": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "encoding": {"type": "string"},
                "document": {"$ref": "#/definitions/parser.ParsedDocument"}
            }
        },
        "parser.OwnerCandidate": {
            "type": "object",
            "properties": {
                "fullName": {"type": "string"},
                "taxCode": {"type": "string"},
                "emails": {"type": "array", "items": {"type": "string"}},
                "phones": {"type": "array", "items": {"type": "string"}},
                "address": {"type": "string"},
                "role": {"type": "string", "enum": ["primary", "secondary"]},
                "startDate": {"type": "string"},
                "endDate": {"type": "string"}
            }
        },
        "parser.Visit": {
            "type": "object",
            "properties": {
                "visitedAt": {"type": "string"},
                "description": {"type": "string"},
                "examsText": {"type": "string"},
                "prescriptionsText": {"type": "string"},
                "rawText": {"type": "string"}
            }
        },
        "parser.PetRecord": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "species": {"type": "string", "enum": ["Gatto", "Cane"]},
                "breed": {"type": "string"},
                "sex": {"type": "string", "enum": ["M", "F"]},
                "dob": {"type": "string"},
                "color": {"type": "string"},
                "sterilized": {"type": "boolean"},
                "microchip": {"type": "string"},
                "visits": {"type": "array", "items": {"$ref": "#/definitions/parser.Visit"}}
            }
        },
        "parser.ParsedDocument": {
            "type": "object",
            "properties": {
                "owners": {"type": "array", "items": {"$ref": "#/definitions/parser.OwnerCandidate"}},
                "pets": {"type": "array", "items": {"$ref": "#/definitions/parser.PetRecord"}},
                "raw": {"type": "string"}
            }
        },
        "records.SaveResult": {
            "type": "object",
            "properties": {
                "ownerIds": {"type": "array", "items": {"type": "string"}},
                "petIds": {"type": "array", "items": {"type": "string"}},
                "ownersCreated": {"type": "integer"},
                "petsCreated": {"type": "integer"},
                "visitsCreated": {"type": "integer"},
                "linksCreated": {"type": "integer"}
            }
        },
        "records.OwnerSummary": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "fullName": {"type": "string"},
                "taxCode": {"type": "string"},
                "address": {"type": "string"},
                "petsCount": {"type": "integer"},
                "visitsCount": {"type": "integer"},
                "lastVisitAt": {"type": "string"}
            }
        },
        "records.OwnerDetail": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "fullName": {"type": "string"},
                "taxCode": {"type": "string"},
                "address": {"type": "string"},
                "emails": {"type": "array", "items": {"type": "string"}},
                "phones": {"type": "array", "items": {"type": "string"}},
                "pets": {"type": "array", "items": {"type": "object"}}
            }
        },
        "records.OwnerUpdate": {
            "type": "object",
            "properties": {
                "fullName": {"type": "string"},
                "taxCode": {"type": "string"},
                "address": {"type": "string"},
                "emails": {"type": "array", "items": {"type": "string"}},
                "phones": {"type": "array", "items": {"type": "string"}},
                "pets": {"type": "array", "items": {"type": "object"}},
                "visits": {"type": "array", "items": {"type": "object"}}
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
	Title:            "vet-sheet-parser API",
	Description:      "Extracción de dueños, mascotas y visitas desde fichas clínicas veterinarias en texto libre.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
