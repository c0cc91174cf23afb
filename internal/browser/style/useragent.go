// internal/browser/style/useragent.go
package style

import "go.uber.org/zap"

// UserAgentCSS is the built-in default style sheet. The indent of 50px
// leaves room for two digit list numbers; the 12px paragraph spacing adds
// up to a full default line across top and bottom margins.
const UserAgentCSS = `
html, address, body, center, div, dl, dt, form, marquee, dd, blockquote,
dir, menu, ol, ul, p, pre, h1, h2, h3, h4, h5, h6, hr { display: block }

head, title, meta, link, script, style { display: none }

:link { color: #0000ff; text-decoration: underline }
b, strong { font-weight: bold }
i, em { font-style: italic }
tt, pre, code { font-family: monospace }

body { padding: 6px }
blockquote { margin: 12px 50px }
button { display: inline-block; padding: 3px }
center { margin-top: 12px; margin-bottom: 12px; text-align: center }
dd { margin-left: 50px }
dir, menu { margin: 12px 0 12px 50px; list-style-type: square }

h1, h2, h3, h4, h5, h6 { font-weight: bold; margin-top: 12px; margin-bottom: 12px }
h1 { font-size: 18pt }
h2 { font-size: 16pt }
h3 { font-size: 14pt }
h4 { font-size: 12pt }
h5 { font-size: 10pt }
h6 { font-size: 8pt }

hr { border-top: 1px solid #888888; margin-top: 12px; margin-bottom: 12px }
img, input, select, textarea { display: inline-block }
li { display: list-item; margin-top: 12px; margin-bottom: 12px }
ol { margin-left: 50px; list-style-type: decimal }
ul { margin-left: 50px; list-style-type: square }
ul ul { list-style-type: circle }
ul ul ul { list-style-type: disc }
p { margin-top: 12px; margin-bottom: 12px }
pre { white-space: pre; margin-top: 12px; margin-bottom: 12px }
sub { vertical-align: sub }
sup { vertical-align: super }

table { display: table; clear: both }
thead, tbody, tfoot { display: table-row-group }
tr { display: table-row }
td { display: table-cell; padding: 1px; text-align: left }
th { display: table-cell; padding: 1px; text-align: center; font-weight: bold }
caption { display: table-caption; text-align: center }
`

// DefaultStyleSheet returns the user-agent sheet. Its rules rank below
// every author rule regardless of selector specificity.
func DefaultStyleSheet(logger *zap.Logger) *StyleSheet {
	ss := NewStyleSheet(WithLogger(logger))
	ss.specificityOffset = -SpecificityImportant
	ss.Read(UserAgentCSS, nil, nil, DefaultMediaTypes)
	return ss
}
