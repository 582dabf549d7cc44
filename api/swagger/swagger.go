package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Gestor de Asistencia API",
        "description": "Attendance management backend for schools",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Teachers", "description": "Teacher profile and timetable"},
        {"name": "Subjects", "description": "Subjects and rosters"},
        {"name": "Classes", "description": "Schedule slot rosters"},
        {"name": "Attendance", "description": "Attendance submission"},
        {"name": "Reports", "description": "Daily reports and CSV export"},
        {"name": "Absences", "description": "School-wide absence aggregation"},
        {"name": "Students", "description": "Alerts and attendance summaries"},
        {"name": "Admin", "description": "Administrative management"}
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/teachers/profile": {
            "get": {
                "tags": ["Teachers"],
                "summary": "Get or provision the caller's teacher profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/teachers/today-classes": {
            "get": {
                "tags": ["Teachers"],
                "summary": "List the caller's timetable slots for today",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teachers/subjects": {
            "get": {
                "tags": ["Teachers"],
                "summary": "List the caller's subjects",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/subjects/all": {
            "get": {
                "tags": ["Subjects"],
                "summary": "List every subject with its course",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/subjects/{subjectId}/students": {
            "get": {
                "tags": ["Subjects"],
                "summary": "List the roster behind a subject",
                "parameters": [
                    {"name": "subjectId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/classes/{scheduleId}/students": {
            "get": {
                "tags": ["Classes"],
                "summary": "List the roster behind a schedule slot",
                "parameters": [
                    {"name": "scheduleId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/attendance": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Record attendance for one class session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitAttendanceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation or duplicate"},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/reports/daily": {
            "get": {
                "tags": ["Reports"],
                "summary": "Build daily reports for the caller's records",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string"},
                    {"name": "course_id", "in": "query", "type": "string"},
                    {"name": "subject_id", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/export/csv": {
            "get": {
                "tags": ["Reports"],
                "summary": "Export the caller's absent rows for a date as CSV",
                "produces": ["text/csv"],
                "parameters": [
                    {"name": "date", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "CSV payload"}
                }
            }
        },
        "/absences/daily": {
            "get": {
                "tags": ["Absences"],
                "summary": "Aggregate every absence of the day school wide",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/alerts": {
            "get": {
                "tags": ["Students"],
                "summary": "Flag students with consecutive absences in a course",
                "parameters": [
                    {"name": "course_id", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/attendance-summary": {
            "get": {
                "tags": ["Students"],
                "summary": "Summarise sessions and absences per student of a course",
                "parameters": [
                    {"name": "course_id", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/courses": {
            "get": {
                "tags": ["Admin"],
                "summary": "List courses",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/teachers": {
            "get": {
                "tags": ["Admin"],
                "summary": "List teachers",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/teachers/{id}": {
            "put": {
                "tags": ["Admin"],
                "summary": "Update a teacher",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateTeacherRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Admin"],
                "summary": "Delete a teacher without subjects",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Teacher still owns subjects"}
                }
            }
        },
        "/admin/students": {
            "get": {
                "tags": ["Admin"],
                "summary": "List students",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Admin"],
                "summary": "Create a student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/students/{id}": {
            "put": {
                "tags": ["Admin"],
                "summary": "Update a student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Admin"],
                "summary": "Delete a student without absence history",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Student has absence history"}
                }
            }
        },
        "/admin/students/import": {
            "post": {
                "tags": ["Admin"],
                "summary": "Import students from a CSV roster",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "200": {"description": "Import summary", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/attendance-records": {
            "get": {
                "tags": ["Admin"],
                "summary": "List the latest attendance records",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/attendance-records/{id}": {
            "delete": {
                "tags": ["Admin"],
                "summary": "Delete an attendance record and its absences",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/admin/settings": {
            "get": {
                "tags": ["Admin"],
                "summary": "Get the academic settings singleton",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Admin"],
                "summary": "Update the academic settings singleton",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSettingsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/subject-hours": {
            "get": {
                "tags": ["Admin"],
                "summary": "List the live subject-hour allocation",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Admin"],
                "summary": "Bulk upsert subject-hour allocations",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateHoursRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Admin"],
                "summary": "Clear the live subject-hour allocation",
                "responses": {
                    "200": {"description": "Deleted count", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/config-store/save": {
            "post": {
                "tags": ["Admin"],
                "summary": "Save settings plus hours and snapshot the configuration",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveConfigRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/config-store/history": {
            "get": {
                "tags": ["Admin"],
                "summary": "List configuration snapshots summarised by grade buckets",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "SubmitAttendanceRequest": {
            "type": "object",
            "required": ["subject_id", "schedule_id", "attendance_date"],
            "properties": {
                "subject_id": {"type": "string"},
                "schedule_id": {"type": "string"},
                "attendance_date": {"type": "string", "example": "2026-02-10"},
                "absent_student_ids": {"type": "array", "items": {"type": "string"}}
            }
        },
        "UpdateTeacherRequest": {
            "type": "object",
            "required": ["name", "email"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "tutor_course_id": {"type": "string"}
            }
        },
        "StudentRequest": {
            "type": "object",
            "required": ["name", "course_id"],
            "properties": {
                "name": {"type": "string"},
                "course_id": {"type": "string"}
            }
        },
        "UpdateSettingsRequest": {
            "type": "object",
            "required": ["active_year", "terms_count"],
            "properties": {
                "active_year": {"type": "integer"},
                "terms_count": {"type": "integer"}
            }
        },
        "SubjectHoursEntry": {
            "type": "object",
            "required": ["subject", "grade"],
            "properties": {
                "subject": {"type": "string"},
                "grade": {"type": "integer"},
                "hours": {"type": "integer"}
            }
        },
        "UpdateHoursRequest": {
            "type": "object",
            "required": ["hours"],
            "properties": {
                "hours": {"type": "array", "items": {"$ref": "#/definitions/SubjectHoursEntry"}}
            }
        },
        "SaveConfigRequest": {
            "type": "object",
            "required": ["active_year", "terms_count", "hours"],
            "properties": {
                "active_year": {"type": "integer"},
                "terms_count": {"type": "integer"},
                "hours": {"type": "array", "items": {"$ref": "#/definitions/SubjectHoursEntry"}}
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
