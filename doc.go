// Package viewpager provides bidirectional, token-driven pagination over
// document database views.
//
// Overview
//
// A view endpoint only answers range queries: startkey, startkey_docid,
// limit and descending. viewpager rebuilds "next page" and "previous page"
// on top of that primitive:
//   - ViewPager: reads one page per call through a ViewExecutor, fetching one
//     extra row to detect the following page and reading backward (descending)
//     to reach the preceding one.
//   - PageCursor: the decoded continuation token. It carries the start
//     position of the target page and the anchor (first row) of the page that
//     issued it. Tokens are opaque base64url strings for callers.
//   - Page: the result list with paging display info (result range, page
//     number, total results) and neighbor tokens.
//
// Executors
//
// The core package never performs I/O itself. Concrete executors live in
// sibling packages: memview (in-memory), sqlview (GORM table) and couchview
// (CouchDB HTTP view endpoint). See examples/ for runnable programs.
package viewpager
