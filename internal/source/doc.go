// Package source turns an input (a URL, a file path or raw text) into plain
// text for the extractors.
//
// Web pages are fetched with retries, cleaned with goquery and reduced to
// their main article text. PDFs contribute the text of their first pages,
// images contribute EXIF metadata and, when enabled, tesseract OCR output.
// Every failure is returned as a *Error.
package source
