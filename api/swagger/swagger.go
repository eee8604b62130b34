package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Lepak Masjid Directory API",
        "description": "Community mosque directory with moderated submissions",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Mosques", "description": "Public directory listing and admin management"},
        {"name": "Amenities", "description": "Amenity catalog"},
        {"name": "Submissions", "description": "Member submissions and moderation"},
        {"name": "Audit", "description": "Administrative audit trail"}
    ],
    "paths": {
        "/mosques": {
            "get": {
                "tags": ["Mosques"],
                "summary": "List approved mosques",
                "parameters": [
                    {"name": "state", "in": "query", "type": "string"},
                    {"name": "q", "in": "query", "type": "string"},
                    {"name": "amenities", "in": "query", "type": "string", "description": "Comma separated amenity ids"},
                    {"name": "sort", "in": "query", "type": "string", "enum": ["alphabetical", "most_amenities", "nearest"]},
                    {"name": "lat", "in": "query", "type": "number"},
                    {"name": "lng", "in": "query", "type": "number"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Mosques"],
                "summary": "Create mosque (admin)",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MosqueUpsertRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/mosques/{id}": {
            "get": {
                "tags": ["Mosques"],
                "summary": "Get mosque with amenities and activities",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found"}
                }
            },
            "put": {
                "tags": ["Mosques"],
                "summary": "Update mosque (admin)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MosqueUpsertRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Mosques"],
                "summary": "Delete mosque and its amenity links (admin)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/mosques/{id}/amenities": {
            "put": {
                "tags": ["Mosques"],
                "summary": "Replace the mosque's full amenity set (admin)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReplaceAmenitiesRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/amenities": {
            "get": {
                "tags": ["Amenities"],
                "summary": "List the amenity catalog",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/submissions": {
            "get": {
                "tags": ["Submissions"],
                "summary": "List submissions (admin)",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string", "enum": ["pending", "approved", "rejected"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Submissions"],
                "summary": "Submit a new or edited mosque for moderation",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSubmissionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/submissions/{id}": {
            "get": {
                "tags": ["Submissions"],
                "summary": "Get submission (admin)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/submissions/{id}/approve": {
            "post": {
                "tags": ["Submissions"],
                "summary": "Approve a pending submission (admin)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already reviewed"}
                }
            }
        },
        "/submissions/{id}/reject": {
            "post": {
                "tags": ["Submissions"],
                "summary": "Reject a pending submission (admin)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RejectSubmissionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already reviewed"}
                }
            }
        },
        "/audit-logs": {
            "get": {
                "tags": ["Audit"],
                "summary": "List audit trail entries (admin)",
                "parameters": [
                    {"name": "action", "in": "query", "type": "string"},
                    {"name": "entity_type", "in": "query", "type": "string"},
                    {"name": "actor_id", "in": "query", "type": "string"},
                    {"name": "start", "in": "query", "type": "string"},
                    {"name": "end", "in": "query", "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/audit-logs/export": {
            "post": {
                "tags": ["Audit"],
                "summary": "Export the audit trail as CSV (admin)",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Mosque": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "name_bm": {"type": "string"},
                "address": {"type": "string"},
                "state": {"type": "string"},
                "lat": {"type": "number"},
                "lng": {"type": "number"},
                "description": {"type": "string"},
                "description_bm": {"type": "string"},
                "status": {"type": "string"},
                "image": {"type": "string"},
                "created": {"type": "string"},
                "updated": {"type": "string"}
            }
        },
        "MosqueUpsertRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "name_bm": {"type": "string"},
                "address": {"type": "string"},
                "state": {"type": "string"},
                "lat": {"type": "number"},
                "lng": {"type": "number"},
                "description": {"type": "string"},
                "description_bm": {"type": "string"},
                "status": {"type": "string"}
            },
            "required": ["name", "address", "state"]
        },
        "ReplaceAmenitiesRequest": {
            "type": "object",
            "properties": {
                "entries": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/AmenityEntry"}
                }
            }
        },
        "AmenityEntry": {
            "type": "object",
            "properties": {
                "amenity_id": {"type": "string"},
                "custom_name": {"type": "string"},
                "details": {"type": "string"},
                "verified": {"type": "boolean"}
            }
        },
        "CreateSubmissionRequest": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["new_mosque", "edit_mosque"]},
                "mosque_id": {"type": "string"},
                "data": {"type": "object"}
            },
            "required": ["type", "data"]
        },
        "RejectSubmissionRequest": {
            "type": "object",
            "properties": {
                "reason": {"type": "string"}
            },
            "required": ["reason"]
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
                "warning": {"$ref": "#/definitions/APIError"},
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
