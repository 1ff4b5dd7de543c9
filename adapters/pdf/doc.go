// Package proposalpdf converts composed proposal HTML into PDF documents.
//
// A Converter buffers the markup, enforces a size limit and hands it to a
// pluggable Engine (chromedp, go-rod or wkhtmltopdf). Pages keep the CSS
// page size declared by the proposal stylesheet unless Options override it.
package proposalpdf
