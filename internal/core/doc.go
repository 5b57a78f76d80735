// Package core provides the dataset ingestion pipeline for the Khmer text
// normalization corpus.
//
// This package holds all domain logic independent of any transport or
// storage layer. It is used by the web handlers, the datasetctl CLI and
// tests without modification.
//
// # Architecture
//
//   - Tokenizer: [SplitLine] splits one line on commas, honoring quotes.
//   - Parser: [ParseDataset] reads the header and data lines into [RawRow]s.
//   - Validator: [NormalizeRow] runs every text field through the khmer
//     normalizer, [ValidateRow] applies the acceptance rules.
//   - Pipeline: [ProcessDataset] ties the three together into a [BatchResult].
//   - Serializer: [Serialize] and [DatasetWriter] write rows back out in the
//     same format, so a serialized batch parses to the same rows.
//   - Service: the entry point for imports, exports and single-record edits,
//     backed by a [Store].
//
// # Dataset Format
//
// A dataset is UTF-8 text with a header naming the six columns
//
//	raw_text,type,normtext,span_raw,span_type,span_norm
//
// in any order. Each following non-blank line is one record. Type cells
// hold pipe-separated tags ("noun|verb"). Quoted fields may contain commas
// and doubled quotes but not line breaks.
//
// # Imports
//
// The flow of [Service.ImportDataset] is:
//
//  1. Take a slot from the [ImportLimiter]
//  2. Read the upload through [NewDatasetReader] (BOM, UTF-16, invalid UTF-8)
//  3. Run [ProcessDataset]; header problems fail the whole import
//  4. Bulk insert the accepted rows and write an [ImportRecord]
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - DB001-DB007: Database errors (duplicates, constraints, connections)
//   - VAL001-VAL006: Validation errors (missing columns, blank fields)
//   - FILE001-FILE005: File errors (size, encoding, format)
//   - UPL002-UPL005: Import errors (busy, cancelled, timeout)
//   - REC001-REC002: Record errors (not found, bad id)
//   - REQ001: Request body is not valid JSON
package core
