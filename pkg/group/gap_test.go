package group

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/symlump/pkg/errors"
)

func TestScript(t *testing.T) {
	s := Script(gens(t, 4, "(1,2)", "(3,4)"))

	assert.Contains(t, s, "G := Group([(1,2),(3,4)]);;")
	assert.Contains(t, s, `SetPrintFormattingStatus("*stdout*", false)`)
	assert.Contains(t, s, "ConjugacyClasses(G)")
	assert.True(t, strings.HasSuffix(s, "QUIT;\n"))
}

func TestParseGAPOutput(t *testing.T) {
	out := strings.Join([]string{
		"order 6",
		"class 1 ()",
		"class 3 (1,2)",
		"class 2 (1,2,3)",
		"",
	}, "\n")

	g, err := ParseGAPOutput(strings.NewReader(out), 5)
	require.NoError(t, err)
	require.NoError(t, g.Validate())
	assert.Equal(t, int64(6), g.Order.Int64())
	require.Len(t, g.Classes, 3)
	assert.True(t, g.Classes[0].Representative.IsIdentity())
	assert.Equal(t, "(1,2,3)", g.Classes[2].Representative.String())
	assert.Equal(t, int64(2), g.Classes[2].Size.Int64())
}

func TestParseGAPOutputHugeOrder(t *testing.T) {
	order := "2658271574788448768043625811014615890319638528000000000"
	g, err := ParseGAPOutput(strings.NewReader("order "+order+"\nclass "+order+" ()\n"), 3)
	require.NoError(t, err)
	assert.Equal(t, order, g.Order.String())
}

func TestParseGAPOutputErrors(t *testing.T) {
	tests := []struct {
		name string
		out  string
	}{
		{"no order", "class 1 ()\n"},
		{"bad order", "order many\n"},
		{"bad size", "order 2\nclass two ()\n"},
		{"missing representative", "order 2\nclass 2\n"},
		{"representative outside domain", "order 2\nclass 1 ()\nclass 1 (1,9)\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseGAPOutput(strings.NewReader(tt.out), 4)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeConsistency), "got %v", err)
		})
	}
}

func TestGAPMissingExecutable(t *testing.T) {
	o := NewGAP("/nonexistent/symlump-test/gap")
	err := o.Check()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeOracleUnavailable))
	assert.True(t, errors.Fatal(err))

	_, err = Analyze(context.Background(), o, gens(t, 4, "(1,2)"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeOracleUnavailable))
}
