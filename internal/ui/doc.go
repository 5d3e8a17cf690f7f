// Package ui provides the terminal user interface for nestview.
//
// # Architecture Overview
//
// The UI is a single Bubble Tea program. Model is the root state container
// and owns every view. The catalog itself lives in catalog.Store; the model
// keeps a copy of the latest snapshot and derives the visible list from it
// with package query whenever the snapshot or the filter spec changes.
//
// # Views
//
//   - Catalog: filter bar, property list and a preview pane
//   - Detail: one listing with gallery position, amenities, agent,
//     coordinates with geohash and similar properties
//   - Favorites: listings saved this session, including ones since removed
//   - Contacts: submitted inquiries, with live additions from the push channel
//   - Diagnostics: catalog status and a level-filtered tail of the log file
//
// # Event Flow
//
//  1. Run() builds the Model and starts the program on the alternate screen
//  2. Init() reads the first snapshot and starts waiting on the store's
//     change channel and the contacts channel
//  3. Each change message carries a fresh snapshot; the wait is re-armed
//  4. Remote calls (reload, contacts, inquiry) run as commands and report
//     back through messages
//  5. Context cancellation shuts the program down
//
// # Key Bindings
//
//   - /: Search titles and locations (applies while typing)
//   - l, c: Cycle location and property type
//   - b/B, a/A: Raise/lower minimum bedrooms and bathrooms
//   - [ and ]: Lower/raise the price ceiling in AED 1,000,000 steps
//   - s: Cycle sort, r: reset filters
//   - f: Toggle favorite, enter: open detail, i: apply now
//   - R: Reload the catalog from the API
//   - F, C, D: Favorites, contacts and diagnostics; tab cycles views
//   - T: Cycle theme (saved to prefs)
//   - esc: Return to the catalog, q or Ctrl+C: exit
//
// Leaving the catalog, including into a listing's detail, resets the
// filters to their defaults.
package ui
