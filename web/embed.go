package web

import "embed"

// Templates holds the server-rendered pages. Every page is parsed together
// with layout.html.
//
//go:embed templates/*.html
var Templates embed.FS

// Static holds the client script and stylesheet served under /static/.
//
//go:embed static
var Static embed.FS
