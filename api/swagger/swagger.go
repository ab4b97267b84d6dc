package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "OBE Attainment API",
        "description": "Course/Program outcome attainment calculation engine",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Attainment", "description": "Course outcome attainment"},
        {"name": "PO Attainment", "description": "Program outcome attainment"}
    ],
    "paths": {
        "/courses/{courseId}/attainment": {
            "get": {
                "tags": ["Attainment"],
                "summary": "Course-level attainment of every CO",
                "parameters": [
                    {"name": "courseId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Attainment"],
                "summary": "Recompute and persist the full course attainment tree",
                "parameters": [
                    {"name": "courseId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{courseId}/attainment/{coId}": {
            "get": {
                "tags": ["Attainment"],
                "summary": "Course-level attainment of one CO",
                "parameters": [
                    {"name": "courseId", "in": "path", "required": true, "type": "string"},
                    {"name": "coId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "No mapped questions for the CO"}
                }
            }
        },
        "/courses/{courseId}/sections/{sectionId}/attainment/{coId}": {
            "get": {
                "tags": ["Attainment"],
                "summary": "Section-level attainment of one CO",
                "parameters": [
                    {"name": "courseId", "in": "path", "required": true, "type": "string"},
                    {"name": "sectionId", "in": "path", "required": true, "type": "string"},
                    {"name": "coId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{courseId}/students/{studentId}/attainment/{coId}": {
            "get": {
                "tags": ["Attainment"],
                "summary": "One student's attainment of one CO",
                "parameters": [
                    {"name": "courseId", "in": "path", "required": true, "type": "string"},
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "coId", "in": "path", "required": true, "type": "string"},
                    {"name": "sectionId", "in": "query", "required": false, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Student not enrolled or CO has no mapped questions"}
                }
            }
        },
        "/programs/{programId}/po-attainment": {
            "get": {
                "tags": ["PO Attainment"],
                "summary": "Program-scope PO attainment summary",
                "parameters": [
                    {"name": "programId", "in": "path", "required": true, "type": "string"},
                    {"name": "academicYear", "in": "query", "required": false, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/batches/{batchId}/po-attainment": {
            "get": {
                "tags": ["PO Attainment"],
                "summary": "Batch-scope PO attainment summary",
                "parameters": [
                    {"name": "batchId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
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
