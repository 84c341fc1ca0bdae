// Package assets holds the static files served to the browser.
package assets

import _ "embed"

//go:embed widget.js
var WidgetJS []byte
