package dom_test

import (
	"strings"
	"testing"

	"github.com/antchfx/htmlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/htmlview/internal/browser/dom"
)

const testHTML = `
	<html>
	<body>
		<div id="header">
			<h1>Welcome</h1>
		</div>
		<div class="content">
			<p>P1</p><p>P2</p>
			<ul>
				<li>Item 1</li>
				<li>Item 2</li>
				<li id="special">Item 3</li>
			</ul>
		</div>
		<div class="content"><p>P3</p></div>
	</body>
	</html>
	`

// nth returns the n-th (zero based) element with the given name.
func nth(d *dom.Document, name string, n int) dom.NodeID {
	found := dom.NoNode
	d.Walk(d.Root(), func(id dom.NodeID) bool {
		if found == dom.NoNode && d.Kind(id) == dom.ElementNode && d.Name(id) == name {
			if n == 0 {
				found = id
			}
			n--
		}
		return found == dom.NoNode
	})
	return found
}

func TestPath(t *testing.T) {
	d, err := dom.ParseHTML(strings.NewReader(testHTML))
	require.NoError(t, err)
	ref, err := htmlquery.Parse(strings.NewReader(testHTML))
	require.NoError(t, err)

	tests := []struct {
		name     string
		target   dom.NodeID
		expected string
	}{
		{"Body", d.FindFirst("body"), "/html[1]/body[1]"},
		{"Element with ID", d.ElementByID("header"), `//*[@id='header']`},
		{"Child of ID element", d.FindFirst("h1"), `//*[@id='header']/h1[1]`},
		{"Specific index", nth(d, "p", 1), "/html[1]/body[1]/div[2]/p[2]"},
		{"Ambiguous classes", nth(d, "p", 2), "/html[1]/body[1]/div[3]/p[1]"},
		{"List item", nth(d, "li", 1), "/html[1]/body[1]/div[2]/ul[1]/li[2]"},
		{"List item with ID", d.ElementByID("special"), `//*[@id='special']`},
		{"Text node", d.Children(nth(d, "p", 0))[0], "/html[1]/body[1]/div[2]/p[1]/text()[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotEqual(t, dom.NoNode, tt.target)
			path := d.Path(tt.target)
			assert.Equal(t, tt.expected, path)

			// The path must select the same content in an independently
			// parsed tree.
			found := htmlquery.FindOne(ref, path)
			require.NotNil(t, found, "path %s selects nothing", path)
			assert.Equal(t, d.TextContent(tt.target), htmlquery.InnerText(found))
		})
	}

	assert.Empty(t, d.Path(dom.NoNode))
}

func TestQuery(t *testing.T) {
	d, err := dom.ParseHTML(strings.NewReader(testHTML))
	require.NoError(t, err)

	t.Run("Path round trip", func(t *testing.T) {
		for _, target := range []dom.NodeID{
			d.FindFirst("body"),
			d.FindFirst("h1"),
			nth(d, "p", 1),
			nth(d, "li", 1),
			d.ElementByID("special"),
			d.Children(nth(d, "p", 0))[0],
		} {
			path := d.Path(target)
			got, err := d.Query(path)
			require.NoError(t, err)
			assert.Equal(t, target, got, "path %s", path)
		}
	})

	t.Run("QueryAll in document order", func(t *testing.T) {
		ids, err := d.QueryAll("//div[@class='content']//p")
		require.NoError(t, err)
		require.Len(t, ids, 3)
		for i, want := range []string{"P1", "P2", "P3"} {
			assert.Equal(t, want, d.TextContent(ids[i]))
		}
	})

	t.Run("Attribute predicates", func(t *testing.T) {
		id, err := d.Query("//li[@id]")
		require.NoError(t, err)
		assert.Equal(t, d.ElementByID("special"), id)
	})

	t.Run("No match", func(t *testing.T) {
		id, err := d.Query("//table")
		require.NoError(t, err)
		assert.Equal(t, dom.NoNode, id)
	})

	t.Run("Invalid expression", func(t *testing.T) {
		_, err := d.Query("//p[")
		assert.Error(t, err)
	})
}
