package configfile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetermineNamespaceFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		expected NamespaceFormat
	}{
		{"application.properties", FormatProperties},
		{"application", FormatProperties},
		{"application.json", FormatJSON},
		{"application.yaml", FormatYAML},
		{"application.yml", FormatYML},
		{"application.xml", FormatXML},
		{"APPLICATION.JSON", FormatJSON},
	}
	for _, tt := range tests {
		require.Equal(t, tt.expected, DetermineNamespaceFormat(tt.name), tt.name)
	}
}

func TestRenderPropertiesSorted(t *testing.T) {
	t.Parallel()

	out, err := RenderProperties(map[string]string{
		"b": "v2",
		"a": "v1",
	})
	require.NoError(t, err)
	require.Equal(t, "a=v1\nb=v2\n", out)
}

func TestRenderPropertiesEscapesSpecialCharacters(t *testing.T) {
	t.Parallel()

	out, err := RenderProperties(map[string]string{
		"k": "a=b:c\\d\ne",
	})
	require.NoError(t, err)
	require.Equal(t, "k=a\\=b\\:c\\\\d\\ne\n", out)
}

func TestRenderPropertiesSingleEntry(t *testing.T) {
	t.Parallel()

	out, err := RenderProperties(map[string]string{"k": "v"})
	require.NoError(t, err)
	require.Equal(t, "k=v\n", out)
}

func TestRenderJSON(t *testing.T) {
	t.Parallel()

	out, err := RenderJSON(map[string]string{"a": "1", "b": "2"})
	require.NoError(t, err)
	require.JSONEq(t, `{"a":"1","b":"2"}`, out)
}

func TestRenderRawProperties(t *testing.T) {
	t.Parallel()

	out, err := RenderRaw("ns1", map[string]string{"k": "v"})
	require.NoError(t, err)
	require.Equal(t, "k=v\n", out)
}

func TestRenderRawYAMLUsesContentKey(t *testing.T) {
	t.Parallel()

	out, err := RenderRaw("ns1.yaml", map[string]string{"content": "foo: bar\n"})
	require.NoError(t, err)
	require.Equal(t, "foo: bar\n", out)
}

func TestRenderRawYAMLMissingContentKeyFails(t *testing.T) {
	t.Parallel()

	_, err := RenderRaw("ns1.yaml", map[string]string{})
	require.Error(t, err)
	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
}

func TestContentTypeForRaw(t *testing.T) {
	t.Parallel()

	require.Equal(t, "application/json;charset=UTF-8", ContentTypeForRaw("ns1.json"))
	require.Equal(t, "application/yaml;charset=UTF-8", ContentTypeForRaw("ns1.yaml"))
	require.Equal(t, "application/yaml;charset=UTF-8", ContentTypeForRaw("ns1.yml"))
	require.Equal(t, "application/xml;charset=UTF-8", ContentTypeForRaw("ns1.xml"))
	require.Equal(t, "text/plain;charset=UTF-8", ContentTypeForRaw("ns1.properties"))
	require.Equal(t, "text/plain;charset=UTF-8", ContentTypeForRaw("ns1"))
}
