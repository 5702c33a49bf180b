package host

// Stylesheet is one active stylesheet of the document. Access-restricted
// sheets (cross-origin without CORS, detached owners) appear with AccessErr
// set and no rules; the fallback matcher skips and counts them.
type Stylesheet struct {
	URL       string // href for linked sheets, "" for inline <style>
	Inline    bool
	Rules     []Rule
	AccessErr error
}

// Rule is a selector plus its declared property/value pairs. Selector is
// the full prelude text and may contain comma-separated groups; at-rules
// without style declarations are not represented.
type Rule struct {
	Selector     string
	Declarations []Declaration
}

// Declaration is one declared property as written in the source.
type Declaration struct {
	Property  string // kebab-case, as authored
	Value     string // as authored, without trailing !important
	Important bool
}
