package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractEmptyInput(t *testing.T) {
	e := NewExtractor()
	fv := e.Extract("")

	assert.Equal(t, 0, fv.NumLines)
	assert.Equal(t, 0, fv.NumChars)
	assert.Equal(t, 1.0, fv.IndentationConsistency)
	assert.Equal(t, 1.0, fv.NamingConsistency)
	assert.Equal(t, 0.0, fv.AvgLineLength)
}

func TestExtractSingleStatement(t *testing.T) {
	e := NewExtractor()
	fv := e.Extract("print('hello')")

	assert.Equal(t, 1, fv.NumLines)
	assert.Equal(t, 0, fv.NumFunctions)
	assert.Equal(t, 0, fv.NumClasses)
	assert.Equal(t, 1, fv.CyclomaticComplexity)
	assert.Equal(t, 14.0, fv.AvgLineLength)
	assert.Equal(t, 0.0, fv.CommentRatio)
}

func TestExtractNonUTF8DoesNotPanic(t *testing.T) {
	e := NewExtractor()
	raw := string([]byte{0xff, 0xfe, 'a', '\n', 'b', 0x80})

	require.NotPanics(t, func() {
		fv := e.Extract(raw)
		assert.Equal(t, 2, fv.NumLines)
	})
}

func TestExtractCounts(t *testing.T) {
	code := "import os\n" +
		"# setup\n" +
		"def run():\n" +
		"    for i in items:\n" +
		"        if i:\n" +
		"            total = total + i\n" +
		"    return total\n"

	fv := NewExtractor().Extract(code)

	assert.Equal(t, 1, fv.NumFunctions)
	assert.Equal(t, 1, fv.NumLoops)
	assert.Equal(t, 1, fv.NumComments)
	// for + if + 1
	assert.Equal(t, 3, fv.CyclomaticComplexity)
	assert.Greater(t, fv.AvgFunctionLength, 0.0)
}

func TestIndentationConsistency(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		uniform bool
	}{
		{"all flush left", "a = 1\nb = 2\nc = 3", true},
		{"tabs equal four spaces", "\tx = 1\n    y = 2", true},
		{"mixed widths", "a = 1\n        b = 2\n  c = 3", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fv := NewExtractor().Extract(tt.code)
			if tt.uniform {
				assert.Equal(t, 1.0, fv.IndentationConsistency)
			} else {
				assert.Less(t, fv.IndentationConsistency, 1.0)
			}
		})
	}
}

func TestNamingConsistency(t *testing.T) {
	tests := []struct {
		name string
		code string
		want float64
	}{
		{"single identifier is neutral", "x = 1", 1.0},
		{"uniform snake case", "first_val = 1\nsecond_val = 2\nthird_val = 3", 1.0},
		{"mixed styles", "first_val = 1\nsecondVal = 2\nthird_val = 3\nfourth_val = 4", 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fv := NewExtractor().Extract(tt.code)
			assert.InDelta(t, tt.want, fv.NamingConsistency, 0.001)
		})
	}
}

func TestExtractDeterministic(t *testing.T) {
	code := "def f(x):\n    # doc\n    return x and x > 1\n"
	e := NewExtractor()
	assert.Equal(t, e.Extract(code), e.Extract(code))
}
