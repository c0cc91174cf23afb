package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingMeasurer records how often each rune was measured.
type countingMeasurer struct {
	FixedMeasurer
	calls map[rune]int
}

func (m *countingMeasurer) Advance(f Font, r rune) int {
	m.calls[r]++
	return m.FixedMeasurer.Advance(f, r)
}

func TestWidthCache(t *testing.T) {
	m := &countingMeasurer{FixedMeasurer: FixedMeasurer{CharWidth: 10}, calls: map[rune]int{}}
	c := NewWidthCache(m)
	regular := Font{Size: 16}
	large := Font{Size: 32, Bold: true}

	t.Run("Measures text", func(t *testing.T) {
		assert.Equal(t, 50, c.Width(regular, []rune("hello")))
		assert.Equal(t, 100, c.Width(large, []rune("hello")))
		assert.Equal(t, 0, c.Width(regular, nil))
	})

	t.Run("Memoises per font", func(t *testing.T) {
		c.RuneWidth(regular, 'h')
		c.RuneWidth(regular, 'h')
		assert.Equal(t, 2, m.calls['h'], "one call per font")
	})

	t.Run("Zero width runes are cached too", func(t *testing.T) {
		assert.Equal(t, 0, c.RuneWidth(regular, '\n'))
		assert.Equal(t, 0, c.RuneWidth(regular, '\n'))
		assert.Equal(t, 1, m.calls['\n'])
	})

	t.Run("Tables grow by doubling", func(t *testing.T) {
		require.Len(t, c.fonts[regular], initialCacheRunes)
		assert.Equal(t, 10, c.RuneWidth(regular, 'é'))
		assert.Len(t, c.fonts[regular], 256)
		assert.Equal(t, 10, c.RuneWidth(regular, 'Ж'))
		assert.Len(t, c.fonts[regular], 2048)
		assert.Equal(t, 10, c.RuneWidth(regular, 'h'), "entries survive growth")
	})

	t.Run("Runes beyond the BMP bypass the tables", func(t *testing.T) {
		before := len(c.fonts[regular])
		assert.Equal(t, 10, c.RuneWidth(regular, '😀'))
		assert.Equal(t, 10, c.RuneWidth(regular, '😀'))
		assert.Equal(t, 2, m.calls['😀'])
		assert.Len(t, c.fonts[regular], before)
	})

	t.Run("Height", func(t *testing.T) {
		assert.Equal(t, 16, c.Height(regular))
		assert.Equal(t, 1, c.Height(Font{}), "at least one pixel")
	})
}

func TestFaceMeasurer(t *testing.T) {
	m := NewFaceMeasurer(nil)

	tests := []struct {
		name     string
		font     Font
		r        rune
		expected int
	}{
		{"Nominal size", Font{Size: 13}, 'a', 7},
		{"Double size", Font{Size: 26}, 'a', 14},
		{"Bold is wider", Font{Size: 13, Bold: true}, 'a', 8},
		{"Control characters", Font{Size: 13}, '\n', 0},
		{"Glyphs outside the face", Font{Size: 13}, '中', 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, m.Advance(tt.font, tt.r))
		})
	}

	h, ascent := m.Metrics(Font{Size: 13})
	assert.Equal(t, 13, h)
	assert.Equal(t, 11, ascent)
	h, _ = m.Metrics(Font{Size: 26})
	assert.Equal(t, 26, h)

	t.Run("Nominal size override", func(t *testing.T) {
		m := NewFaceMeasurer(nil)
		m.SetNominalSize(26)
		assert.Equal(t, 7, m.Advance(Font{Size: 26}, 'a'))
		assert.Equal(t, 4, m.Advance(Font{Size: 13}, 'a'))
		m.SetNominalSize(0)
		assert.Equal(t, 7, m.Advance(Font{Size: 26}, 'a'), "ignored when not positive")
	})
}
