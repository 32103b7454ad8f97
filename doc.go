// Package raido builds importable flashcard packages (.apkg files) from
// declarative model, note, and deck descriptions.
//
// A Model describes the shape of a family of notes: its ordered fields and
// the templates that render them into review cards. A Note binds a model to
// concrete field values and expands into one or more Cards: one per
// template for front/back models, one per distinct cloze index for cloze
// models. Decks collect notes, and a Package serializes decks plus media
// files into a zip archive holding an embedded SQLite collection database,
// numbered media blobs, and a manifest mapping blob index to file name.
//
// All construction functions are pure and synchronous; the only I/O happens
// in Package.WriteToFile and Package.WriteTo. Note identity (GUID, duplicate
// checksum) is derived deterministically from field values, so re-building a
// package from the same inputs lets the importing application recognize the
// same notes across imports.
package raido
