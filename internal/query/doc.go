// Package query turns raw, untyped request parameters into typed values.
//
// Parse converts the list parameters shared by every collection (where, sort,
// select/filter, skip, limit, count) into a validated Options descriptor. The
// coercion helpers (Bool, Time, String) apply the field-level input rules used
// when reading request bodies.
//
// The "filter" parameter is a legacy alias of "select". Only one of the two is
// ever read and "select" takes priority. Do not build new behavior on the alias.
package query
