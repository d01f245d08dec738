// Package docs регистрирует OpenAPI-описание сервиса для swaggo/http-swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/subscriptions/top": {
            "get": {
                "description": "Возвращает сервисы с наибольшим числом подписок. При равенстве сервисы упорядочены по имени.",
                "produces": ["application/json"],
                "tags": ["Subscriptions"],
                "summary": "Популярные сервисы",
                "parameters": [
                    {"type": "integer", "description": "Размер рейтинга (по умолчанию 3)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Рейтинг сервисов", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Некорректный limit", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Ошибка сервера", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/users": {
            "post": {
                "description": "Регистрирует пользователя с нулевым числом подписок. Email должен быть уникальным.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Создать пользователя",
                "parameters": [
                    {"description": "Имя и email", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.DummyUser"}}
                ],
                "responses": {
                    "201": {"description": "UUID созданного пользователя", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Некорректный JSON", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "409": {"description": "Email уже занят", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "422": {"description": "Ошибка валидации", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Ошибка сервера", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/users/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Получить пользователя",
                "parameters": [
                    {"type": "string", "description": "UUID пользователя", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Профиль пользователя", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Некорректный id", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Пользователь не найден", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Ошибка сервера", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            },
            "put": {
                "description": "Меняет имя и, если передан new_email, email пользователя. Счётчик подписок не меняется.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Изменить пользователя",
                "parameters": [
                    {"type": "string", "description": "UUID пользователя", "name": "id", "in": "path", "required": true},
                    {"description": "Новые данные", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.DummyUserUpdate"}}
                ],
                "responses": {
                    "200": {"description": "Пользователь обновлён", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Некорректный id или JSON", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Пользователь не найден", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "409": {"description": "Email уже занят", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "422": {"description": "Ошибка валидации", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Ошибка сервера", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            },
            "delete": {
                "description": "Удаляет пользователя вместе со всеми его подписками.",
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Удалить пользователя",
                "parameters": [
                    {"type": "string", "description": "UUID пользователя", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Пользователь удалён", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Некорректный id", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Пользователь не найден", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Ошибка сервера", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/users/{id}/subscriptions": {
            "get": {
                "description": "Возвращает подписки пользователя в порядке создания. Для неизвестного пользователя список пуст.",
                "produces": ["application/json"],
                "tags": ["Subscriptions"],
                "summary": "Список подписок пользователя",
                "parameters": [
                    {"type": "string", "description": "UUID пользователя", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Список подписок", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Некорректный id", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Ошибка сервера", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            },
            "post": {
                "description": "Создает подписку пользователя на сервис или продлевает истёкшую. Действующая подписка не продлевается.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Subscriptions"],
                "summary": "Оформить подписку",
                "parameters": [
                    {"type": "string", "description": "UUID пользователя", "name": "id", "in": "path", "required": true},
                    {"description": "Сервис и длительность подписки", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.DummySubscription"}}
                ],
                "responses": {
                    "200": {"description": "Подписка оформлена или продлена", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Некорректный id, JSON или длительность", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Пользователь не найден", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "409": {"description": "Подписка ещё действует", "schema": {"$ref": "#/definitions/response.ConflictResponse"}},
                    "422": {"description": "Ошибка валидации", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Ошибка сервера", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "503": {"description": "Параллельное изменение, запрос можно повторить", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/users/{id}/subscriptions/{sub_id}": {
            "delete": {
                "description": "Удаляет подписку, если она принадлежит пользователю.",
                "produces": ["application/json"],
                "tags": ["Subscriptions"],
                "summary": "Отменить подписку",
                "parameters": [
                    {"type": "string", "description": "UUID пользователя", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "ID подписки", "name": "sub_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Подписка удалена", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Некорректный id", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Пользователь или подписка не найдены", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Ошибка сервера", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "models.DummySubscription": {
            "type": "object",
            "required": ["service_name"],
            "properties": {
                "service_name": {"type": "string"},
                "subscription_duration_days": {"type": "integer"}
            }
        },
        "models.DummyUser": {
            "type": "object",
            "required": ["email", "user_name"],
            "properties": {
                "email": {"type": "string"},
                "user_name": {"type": "string"}
            }
        },
        "models.DummyUserUpdate": {
            "type": "object",
            "required": ["user_name"],
            "properties": {
                "new_email": {"type": "string"},
                "user_name": {"type": "string"}
            }
        },
        "response.ConflictResponse": {
            "type": "object",
            "properties": {
                "end_time": {"type": "string"},
                "error": {"type": "string", "example": "subscription is not ended yet, it ends at 2024-02-01T00:00:00Z"},
                "status": {"type": "string", "example": "Error"}
            }
        },
        "response.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "invalid request body"},
                "status": {"type": "string", "example": "Error"}
            }
        },
        "response.Response": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {"type": "string"},
                "status": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Subscription Tracker API",
	Description:      "API для оформления, продления и отмены подписок пользователей на сервисы",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
