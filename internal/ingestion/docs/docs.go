// Package docs registers the OpenAPI description served at /swagger/*.
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
        "/scrape/today-price": {
            "get": {
                "description": "Fetches the NEPSE today's-price page with the chosen source and ingests it, or only returns the normalized rows when dry_run is set.",
                "produces": ["application/json"],
                "tags": ["scrape"],
                "summary": "Scrape today's prices in-process",
                "parameters": [
                    {"type": "string", "default": "http", "description": "Page source: http or browser", "name": "source", "in": "query"},
                    {"type": "boolean", "description": "Parse only, store nothing", "name": "dry_run", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.IngestionResponse"}},
                    "207": {"description": "Multi-Status", "schema": {"$ref": "#/definitions/dto.IngestionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "post": {
                "description": "Resolves each row's company (creating placeholders for unknown symbols) and upserts one market-data row per company for today.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["scrape"],
                "summary": "Ingest scraped today's-price rows",
                "parameters": [
                    {"description": "Scraped rows", "name": "rows", "in": "body", "required": true, "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.ScrapedRow"}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.IngestionResponse"}},
                    "207": {"description": "Multi-Status", "schema": {"$ref": "#/definitions/dto.IngestionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.IngestionResponse"}}
                }
            }
        },
        "/scrape/logs": {
            "get": {
                "description": "Get the most recent ingestion run summaries, newest first",
                "produces": ["application/json"],
                "tags": ["scrape"],
                "summary": "Get recent ingestion runs",
                "parameters": [
                    {"type": "integer", "default": 20, "description": "Maximum number of entries", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.RunSummary"}}}
                }
            }
        },
        "/scrape-via-process/today-price": {
            "get": {
                "description": "Runs the configured scraper command, then posts its rows to the ingestion endpoint and relays that endpoint's status.",
                "produces": ["application/json"],
                "tags": ["scrape"],
                "summary": "Run the external scraper and store its rows",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.TriggerResponse"}},
                    "207": {"description": "Multi-Status", "schema": {"$ref": "#/definitions/dto.TriggerResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/dto.TriggerResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/dto.TriggerResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/dto.TriggerResponse"}}
                }
            }
        },
        "/companies": {
            "get": {
                "description": "List companies for symbol search",
                "produces": ["application/json"],
                "tags": ["companies"],
                "summary": "List companies",
                "parameters": [
                    {"type": "boolean", "description": "Only active companies", "name": "active", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.CompanySearchItem"}}}
                }
            }
        },
        "/companies/{symbol}": {
            "get": {
                "description": "Get a company and its most recent market-data row",
                "produces": ["application/json"],
                "tags": ["companies"],
                "summary": "Get a company profile",
                "parameters": [
                    {"type": "string", "description": "Ticker symbol", "name": "symbol", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.CompanyProfileResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/companies/{symbol}/market-data": {
            "get": {
                "description": "Get a company's daily market data, newest first",
                "produces": ["application/json"],
                "tags": ["companies"],
                "summary": "Get daily market data",
                "parameters": [
                    {"type": "string", "description": "Ticker symbol", "name": "symbol", "in": "path", "required": true},
                    {"type": "integer", "default": 30, "description": "Number of days (max 365)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.MarketDataResponse"}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "details": {}
            }
        },
        "dto.ScrapedRow": {
            "type": "object",
            "required": ["companySymbol"],
            "properties": {
                "s_n": {"type": "string"},
                "companySymbol": {"type": "string", "maxLength": 20},
                "ltp": {"type": "string"},
                "changePercent": {"type": "string"},
                "openPrice": {"type": "string"},
                "highPrice": {"type": "string"},
                "lowPrice": {"type": "string"},
                "qtyTraded": {"type": "string"},
                "turnover": {"type": "string"},
                "prevClosing": {"type": "string"},
                "differenceRs": {"type": "string"}
            }
        },
        "dto.IngestionCounts": {
            "type": "object",
            "properties": {
                "rawDataEntries": {"type": "integer"},
                "companiesNewlyCreated": {"type": "integer"},
                "marketDataEntriesForUpsert": {"type": "integer"},
                "marketDataSuccessfullyUpserted": {"type": "integer"},
                "companiesFailedOperations": {"type": "integer"},
                "marketDataFailedOperations": {"type": "integer"},
                "duplicateRowsSkipped": {"type": "integer"}
            }
        },
        "dto.IngestionResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "tradeDate": {"type": "string"},
                "counts": {"$ref": "#/definitions/dto.IngestionCounts"},
                "errors": {"type": "array", "items": {"type": "string"}}
            }
        },
        "dto.RunSummary": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "source": {"type": "string"},
                "outcome": {"type": "string"},
                "statusCode": {"type": "integer"},
                "tradeDate": {"type": "string"},
                "message": {"type": "string"},
                "counts": {"$ref": "#/definitions/dto.IngestionCounts"},
                "errors": {"type": "array", "items": {"type": "string"}},
                "startedAt": {"type": "string"},
                "finishedAt": {"type": "string"}
            }
        },
        "dto.TriggerResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "error": {"type": "string"},
                "errorKind": {"type": "string"},
                "details": {},
                "recordsScraped": {"type": "integer"},
                "sample": {"type": "array", "items": {"$ref": "#/definitions/dto.ScrapedRow"}},
                "processStderr": {"type": "string"},
                "storageApiResponse": {"type": "object"}
            }
        },
        "dto.CompanySearchItem": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "ticker_symbol": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "dto.CompanyResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "ticker_symbol": {"type": "string"},
                "name": {"type": "string"},
                "sector_name": {"type": "string"},
                "industry": {"type": "string"},
                "website_url": {"type": "string"},
                "is_active": {"type": "boolean"},
                "scraped_at": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "dto.MarketDataResponse": {
            "type": "object",
            "properties": {
                "trade_date": {"type": "string"},
                "open_price": {"type": "number"},
                "high_price": {"type": "number"},
                "low_price": {"type": "number"},
                "close_price": {"type": "number"},
                "adjusted_close_price": {"type": "number"},
                "volume": {"type": "integer"},
                "turnover": {"type": "number"},
                "market_cap": {"type": "number"},
                "previous_close_price": {"type": "number"},
                "price_change": {"type": "number"},
                "percent_change": {"type": "number"},
                "fifty_two_week_high": {"type": "number"},
                "fifty_two_week_low": {"type": "number"},
                "scraped_at": {"type": "string"}
            }
        },
        "dto.CompanyProfileResponse": {
            "type": "object",
            "properties": {
                "company": {"$ref": "#/definitions/dto.CompanyResponse"},
                "latest_market_data": {"$ref": "#/definitions/dto.MarketDataResponse"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "NEPSE Ingestion API",
	Description:      "Scrapes the NEPSE today's-price table and reconciles it into the company directory and daily market data.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
