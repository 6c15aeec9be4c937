package configfile

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// NamespaceFormat is the storage format of a namespace, inferred from its
// name suffix. It drives both the "raw" rendering path and the response
// Content-Type for that path.
type NamespaceFormat string

const (
	FormatProperties NamespaceFormat = "properties"
	FormatJSON       NamespaceFormat = "json"
	FormatYAML       NamespaceFormat = "yaml"
	FormatYML        NamespaceFormat = "yml"
	FormatXML        NamespaceFormat = "xml"
)

// namespaceFormatOrder fixes the suffix-matching order. Each suffix is
// matched with its leading dot, so at most one can match a given name and
// the order does not change the result.
var namespaceFormatOrder = []NamespaceFormat{
	FormatJSON, FormatYAML, FormatYML, FormatXML, FormatProperties,
}

// DetermineNamespaceFormat inspects a namespace name's suffix and returns
// its storage format, defaulting to properties when no known suffix matches.
func DetermineNamespaceFormat(namespaceName string) NamespaceFormat {
	lower := strings.ToLower(namespaceName)
	for _, format := range namespaceFormatOrder {
		if strings.HasSuffix(lower, "."+string(format)) {
			return format
		}
	}
	return FormatProperties
}

// OutputFormat is the rendering the client asked for via the request path
// (properties / json / raw), distinct from the namespace's own storage
// format used only by the raw path.
type OutputFormat string

const (
	OutputProperties OutputFormat = "properties"
	OutputJSON       OutputFormat = "json"
	OutputRaw        OutputFormat = "raw"
)

// RenderError indicates the codec could not produce a payload from an
// otherwise-successful resolver result; the HTTP boundary treats this the
// same as NotFound.
type RenderError struct {
	Namespace string
	Reason    string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render namespace %q: %s", e.Namespace, e.Reason)
}

// RenderProperties writes a key/value map using Java properties escaping:
// '\', '=', ':' and leading whitespace are backslash-escaped, and keys are
// emitted in a deterministic (sorted) order so repeated calls over the same
// map produce byte-identical output.
func RenderProperties(configurations map[string]string) (string, error) {
	keys := make([]string, 0, len(configurations))
	for k := range configurations {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(escapeProperties(k))
		b.WriteByte('=')
		b.WriteString(escapeProperties(configurations[k]))
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// escapeProperties follows java.util.Properties.store: '\\', '\n', '\r',
// '\t', '\f' become their backslash forms; ':' and '=' are escaped so a
// value containing either round-trips; a leading space is escaped so it
// isn't trimmed on read-back.
func escapeProperties(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\f':
			b.WriteString(`\f`)
		case '=':
			b.WriteString(`\=`)
		case ':':
			b.WriteString(`\:`)
		case ' ':
			if i == 0 {
				b.WriteString(`\ `)
			} else {
				b.WriteRune(r)
			}
		default:
			if r < 0x20 {
				b.WriteString(fmt.Sprintf(`\u%04x`, r))
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// RenderJSON emits a JSON object whose members are exactly the input map's
// entries, string values only.
func RenderJSON(configurations map[string]string) (string, error) {
	b, err := json.Marshal(configurations)
	if err != nil {
		return "", &RenderError{Reason: err.Error()}
	}
	return string(b), nil
}

// rawContentKey is the reserved configuration key under which a non-properties
// namespace stores its already-formatted document body.
const rawContentKey = "content"

// RenderRaw reproduces the namespace's native format: properties namespaces
// render exactly like RenderProperties; everything else is expected to carry
// its document body verbatim under the reserved "content" key.
func RenderRaw(namespaceName string, configurations map[string]string) (string, error) {
	format := DetermineNamespaceFormat(namespaceName)
	if format == FormatProperties {
		return RenderProperties(configurations)
	}
	content, ok := configurations[rawContentKey]
	if !ok {
		return "", &RenderError{Namespace: namespaceName, Reason: "raw namespace missing content key"}
	}
	return content, nil
}

// ContentTypeForRaw maps a namespace's storage format to the Content-Type
// header used by the raw rendering route.
func ContentTypeForRaw(namespaceName string) string {
	switch DetermineNamespaceFormat(namespaceName) {
	case FormatJSON:
		return "application/json;charset=UTF-8"
	case FormatYAML, FormatYML:
		return "application/yaml;charset=UTF-8"
	case FormatXML:
		return "application/xml;charset=UTF-8"
	default:
		return "text/plain;charset=UTF-8"
	}
}
