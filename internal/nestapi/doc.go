// Package nestapi provides an HTTP client for the listings backend.
//
// # Endpoints
//
//   - GET /api/properties: the full collection, either a bare array or an
//     envelope with the array under "properties" or "data"
//   - GET /api/contact: submitted contacts under "data"
//   - POST /api/contact: submit an inquiry
//   - GET /api/download-excel, GET /api/download-contact-excel: spreadsheet
//     exports, streamed to a writer
//
// Property records are canonicalized through package listing. Records that
// cannot be canonicalized are dropped and counted rather than failing the
// whole fetch.
//
// # Request Handling
//
// All requests:
//   - Use context for cancellation and timeout control
//   - Set Accept: application/json and User-Agent: nestview/0.1
//   - Carry a fresh X-Request-ID so backend logs can be correlated
//   - Have a 10-second timeout, except exports which get two minutes
//
// Statuses of 400 and above are returned as *StatusError. Malformed bodies
// produce errors prefixed with "decode response".
//
// The client does not retry. The catalog store decides what a failed fetch
// means for the snapshot.
package nestapi
