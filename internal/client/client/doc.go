// Package client contains the client-side transport for the rentkeeper
// metadata service.
//
// # Overview
//
// The package provides:
//  1. A transport contract (see the Client interface): request, confirm and
//     cancel an upload, and list, fetch the latest or delete file records.
//  2. A JSON-over-HTTP implementation (see HTTPClient) that sends the bearer
//     token given at construction and maps response statuses to errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) for the
//     attempt journal, an SQLite database with embedded goose migrations.
//
// # Error Handling
//
// Non-2xx answers are returned as *APIError, which unwraps to one of the
// sentinels ErrUnauthorized, ErrForbidden, ErrNotFound or ErrUnavailable so
// callers can use errors.Is. Network failures wrap ErrUnavailable. A
// cancelled context is returned as the context's error.
package client
