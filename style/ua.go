package style

// uaStylesheet is the built-in user-agent stylesheet : the
// minimal HTML defaults expressible with the supported property
// set. Callers can disable it through EngineConfig.
const uaStylesheet = `
html, body, div, p, h1, h2, h3, h4, h5, h6, ul, ol, li,
header, footer, main, section, article, nav, aside,
blockquote, pre, form, fieldset, table { display: block }

head, style, script, link, meta, title { display: none }

span, a, b, i, u, em, strong, small, code, label, img { display: inline }

body { margin: 8px }

h1 { font-size: 2em; font-weight: bold; margin: 0.67em 0 }
h2 { font-size: 1.5em; font-weight: bold; margin: 0.83em 0 }
h3 { font-size: 1.17em; font-weight: bold; margin: 1em 0 }
h4 { font-weight: bold; margin: 1.33em 0 }
h5 { font-size: 0.83em; font-weight: bold; margin: 1.67em 0 }
h6 { font-size: 0.67em; font-weight: bold; margin: 2.33em 0 }

p { margin: 1em 0 }
b, strong { font-weight: bold }
i, em { font-style: italic }
pre, code { font-family: monospace }
small { font-size: 0.83em }

a { color: blue }
a:visited { color: purple }

ul, ol { padding-left: 40px; margin: 1em 0 }
`
