package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Secretaria API",
        "description": "School secretariat management API",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login and account management"},
        {"name": "Students", "description": "Student records (alunos)"},
        {"name": "ClassSections", "description": "Class sections (turmas)"},
        {"name": "Enrollments", "description": "Enrollments (matriculas)"},
        {"name": "Grades", "description": "Academic records (notas)"},
        {"name": "ServiceRequests", "description": "Secretariat requests (atendimentos)"},
        {"name": "Dashboard", "description": "Aggregate counters"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "responses": {
                    "200": {"description": "Token issued"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user profile",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Missing or invalid token"}
                }
            }
        },
        "/alunos": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Students"],
                "summary": "Register student",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Duplicate CPF"}
                }
            }
        },
        "/turmas": {
            "get": {
                "tags": ["ClassSections"],
                "summary": "List class sections",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["ClassSections"],
                "summary": "Create class section",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/matriculas": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "List enrollments",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Enrollments"],
                "summary": "Enroll student",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Duplicate enrollment or section full"},
                    "412": {"description": "Student not eligible"}
                }
            }
        },
        "/notas": {
            "get": {
                "tags": ["Grades"],
                "summary": "List grades",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Grades"],
                "summary": "Record or replace grade",
                "responses": {
                    "200": {"description": "Saved"},
                    "404": {"description": "Enrollment not found"}
                }
            }
        },
        "/atendimentos": {
            "get": {
                "tags": ["ServiceRequests"],
                "summary": "List service requests",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["ServiceRequests"],
                "summary": "Open service request",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Aggregate counters",
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
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
                "pagination": {"$ref": "#/definitions/Pagination"}
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
