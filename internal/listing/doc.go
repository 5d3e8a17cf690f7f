// Package listing defines the catalog's unit of data and the rules for turning
// raw backend records into it.
//
// # Canonicalization
//
// Records reach the client from three places: the /api/properties collection,
// push events and the local cache. The backend has shipped both "id" and the
// document-store "_id" key over time, so Canonicalize reads "id" first and
// falls back to "_id". Integer identifiers are rendered as decimal strings and
// {"$oid": "..."} documents are unwrapped.
//
// Every record is checked against an embedded JSON schema before decoding.
// Records that are not objects, lack an identifier or carry wrongly typed
// collections are rejected with ErrMalformed and dropped by the caller.
//
// # Numbers
//
// Price, bedroom, bathroom and area values are Number. The backend sends some
// of them as strings ("2500000", "4"). Numeric strings are accepted. Anything
// else is kept as raw text with Valid == false so that filters can treat it as
// failing instead of aborting the whole query.
package listing
