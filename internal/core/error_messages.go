// error_messages.go maps technical errors to user-facing messages with a
// support code.
//
// Codes by family:
//
//	DB001-DB007     database (duplicate key, unique value, connection refused
//	                or reset, timeout, deadlock)
//	VAL001-VAL006   validation (the four row rejection reasons, missing
//	                header columns, no valid rows)
//	FILE001-FILE005 uploaded file (too large, bad encoding, no file, empty)
//	UPL002-UPL005   imports (no free slot, cancelled, deadline)
//	REC001-REC002   single records (not found, invalid id)
//	REQ001          request body is not valid JSON
//	RATE001         rate limited
//	ERR000          fallback; the logs hold the technical error
//
// Resolution order: typed errors from this package and the context package,
// then a PostgreSQL SQLSTATE when the error carries one, then
// case-insensitive substring patterns over the error text. The first match
// wins.

package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

const fallbackCode = "ERR000"

var userMessages = map[string]UserMessage{
	"DB001": {"A record with this ID already exists", "Reload the record list and try again", "DB001"},
	"DB002": {"This value must be unique but already exists", "Check for duplicate entries in your CSV", "DB002"},
	"DB004": {"Unable to connect to database", "Please try again in a few moments", "DB004"},
	"DB005": {"Database connection was interrupted", "Please try again", "DB005"},
	"DB006": {"Operation timed out", "Try again later", "DB006"},
	"DB007": {"Database was busy with conflicting operations", "Please try again", "DB007"},

	"VAL001": {"Raw text and normalized text are required", "Fill in both text fields", "VAL001"},
	"VAL002": {"At least one type is required", "Select at least one type", "VAL002"},
	"VAL003": {"Span normalized text is required when span raw text is provided", "Fill in the span normalized text or clear the span", "VAL003"},
	"VAL004": {"Required column is missing from CSV", "The header must contain raw_text, type, normtext, span_raw, span_type and span_norm", "VAL004"},
	"VAL005": {"Span type is required when span raw text is provided", "Add a span_type value or clear span_raw", "VAL005"},
	"VAL006": {"No valid rows found", "Check required columns and values", "VAL006"},

	"FILE001": {"File exceeds maximum size limit", "Split the file into smaller chunks", "FILE001"},
	"FILE003": {"File contains invalid characters", "Save file as UTF-8 encoding", "FILE003"},
	"FILE004": {"No file was selected", "Please choose a CSV file", "FILE004"},
	"FILE005": {"The uploaded file has no readable lines", "Please upload a CSV file with a header and data rows", "FILE005"},

	"UPL002": {"System is busy processing other imports", "Please wait a moment and try again", "UPL002"},
	"UPL004": {"Request was cancelled", "Please try again", "UPL004"},
	"UPL005": {"Request timed out", "Try uploading a smaller file or check your connection", "UPL005"},

	"REC001": {"Record not found", "It may have been deleted. Reload the list", "REC001"},
	"REC002": {"Invalid record id", "Check the link or reload the list", "REC002"},

	"REQ001": {"Invalid request body", "Send a valid JSON object", "REQ001"},

	"RATE001": {"Too many requests", "Please wait a moment before trying again", "RATE001"},

	fallbackCode: {"An unexpected error occurred", "Please try again or contact support", fallbackCode},
}

// reasonCodes maps row rejection reasons to their codes.
var reasonCodes = map[string]string{
	ReasonMissingText:     "VAL001",
	ReasonMissingType:     "VAL002",
	ReasonMissingSpanNorm: "VAL003",
	ReasonMissingSpanType: "VAL005",
}

// sentinelCodes is checked with errors.Is, in order.
var sentinelCodes = []struct {
	err  error
	code string
}{
	{ErrRecordNotFound, "REC001"},
	{ErrFileTooLarge, "FILE001"},
	{ErrMalformedInput, "FILE005"},
	{ErrNoValidRows, "VAL006"},
	{ErrTooManyImports, "UPL002"},
	{context.DeadlineExceeded, "UPL005"},
	{context.Canceled, "UPL004"},
}

// sqlStateCodes maps PostgreSQL error classes that reach the user.
var sqlStateCodes = map[string]string{
	"23505": "DB002", // unique_violation
	"40P01": "DB007", // deadlock_detected
	"57014": "DB006", // query_canceled (statement timeout)
	"08001": "DB004", // unable to connect
	"08006": "DB005", // connection failure
}

// errorPatterns match the lower-cased error text. Specific patterns come
// before general ones.
var errorPatterns = []struct {
	pattern string
	code    string
}{
	{"duplicate key", "DB001"},
	{"unique constraint", "DB002"},
	{"violates unique", "DB002"},
	{"connection refused", "DB004"},
	{"connection reset", "DB005"},
	{"deadlock", "DB007"},
	{"missing required column", "VAL004"},
	{"no valid rows", "VAL006"},
	{"file too large", "FILE001"},
	{"encoding error", "FILE003"},
	{"no file provided", "FILE004"},
	{"malformed input", "FILE005"},
	{"empty file", "FILE005"},
	{"too many imports", "UPL002"},
	{"context canceled", "UPL004"},
	{"context deadline exceeded", "UPL005"},
	{"timeout", "DB006"},
	{"record not found", "REC001"},
	{"invalid request body", "REQ001"},
	{"invalid record id", "REC002"},
	{"rate limit", "RATE001"},
}

// MapError converts a technical error to a user-friendly message. If
// nothing matches, the ERR000 fallback is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	return userMessages[errorCode(err)]
}

func errorCode(err error) string {
	var (
		missing *MissingColumnsError
		invalid *RecordValidationError
		sqlErr  interface{ SQLState() string }
	)

	if errors.As(err, &missing) {
		return "VAL004"
	}
	if errors.As(err, &invalid) {
		if code, ok := reasonCodes[invalid.Reason]; ok {
			return code
		}
	}
	for _, s := range sentinelCodes {
		if errors.Is(err, s.err) {
			return s.code
		}
	}
	if errors.As(err, &sqlErr) {
		if code, ok := sqlStateCodes[sqlErr.SQLState()]; ok {
			return code
		}
	}

	text := strings.ToLower(err.Error())
	for _, p := range errorPatterns {
		if strings.Contains(text, p.pattern) {
			return p.code
		}
	}
	return fallbackCode
}

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}
