// Package ingest reads raw order files from a data directory and produces
// the normalized order line set the derivation pipeline runs on.
//
// Source files are delimited text (CSV, EUC-KR primary encoding with UTF-8
// fallback) or Excel exports sharing the same column schema. Rows are tagged
// with their source file, concatenated, and deduplicated on the composite
// (order id, product code) key keeping the last-seen occurrence. Optional
// columns are detected once per file and surfaced as typed capabilities; a
// file that cannot be decoded or lacks required columns is skipped, never
// fatal to the whole load.
package ingest
