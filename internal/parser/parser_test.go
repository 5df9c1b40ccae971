package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCanonicalEquation(t *testing.T) {
	src := "dX2 = ( (0.01 - 0.05 * 0.01^2) * X2 ) * dt + ( 0.15 * X2 ) * dW2 + ( X2 ) * dJ1(0.05)"
	eq, err := Parse(src)
	require.NoError(t, err)

	require.Equal(t, "X2", eq.Name)
	require.Len(t, eq.Drift, 1)
	require.Len(t, eq.Diffusions, 1)
	require.Equal(t, "dW2", eq.Diffusions[0].Symbol)
	require.Len(t, eq.Jumps, 1)
	require.Equal(t, "dJ1", eq.Jumps[0].Symbol)
	require.Equal(t, src, eq.Source)

	num, isNum := eq.Jumps[0].Intensity.(*Num)
	require.True(t, isNum)
	require.Equal(t, 0.05, num.Value)
}

func TestParseMultipleDriftTerms(t *testing.T) {
	eq, err := Parse("dX = ( 0.1 ) * dt + ( -0.2 * X ) * dt")
	require.NoError(t, err)
	require.Len(t, eq.Drift, 2)
	require.Empty(t, eq.Diffusions)
}

func TestParseDiffusionOnly(t *testing.T) {
	eq, err := Parse("dX1 = ( 0.01 ) * dW1")
	require.NoError(t, err)
	require.Equal(t, "X1", eq.Name)
	require.Empty(t, eq.Drift)
	require.Len(t, eq.Diffusions, 1)
}

func TestParsePrecedence(t *testing.T) {
	eq, err := Parse("dX = ( 1 + 2 * 3 ) * dt")
	require.NoError(t, err)

	root, ok := eq.Drift[0].(*Binary)
	require.True(t, ok)
	require.Equal(t, byte('+'), root.Op)
	mul, ok := root.Y.(*Binary)
	require.True(t, ok)
	require.Equal(t, byte('*'), mul.Op)
}

func TestParseScientificLiterals(t *testing.T) {
	eq, err := Parse("dX = ( 2.5e-3 + 1E2 ) * dt")
	require.NoError(t, err)
	root := eq.Drift[0].(*Binary)
	require.Equal(t, 2.5e-3, root.X.(*Num).Value)
	require.Equal(t, 100.0, root.Y.(*Num).Value)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"missing equals", "dX ( 1.0 ) * dt", "expected '='"},
		{"bad lhs", "X = ( 1.0 ) * dt", "left-hand side"},
		{"unbalanced parens", "dX = ( (1.0 * dt", "unbalanced parentheses"},
		{"missing coefficient parens", "dX = 1.0 * dt", "expected '('"},
		{"bad differential", "dX = ( 1.0 ) * dQ1", "term must end in"},
		{"jump without argument", "dX = ( 1.0 ) * dJ1", "requires an intensity argument"},
		{"jump with two arguments", "dX = ( 1.0 ) * dJ1(0.5, 0.6)", "exactly one intensity argument"},
		{"trailing garbage", "dX = ( 1.0 ) * dt 42", "expected '+' or end of equation"},
		{"unexpected character", "dX = ( 1.0 % 2 ) * dt", "unexpected character"},
		{"dangling operator", "dX = ( 1.0 + ) * dt", "expected literal, variable or '('"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			require.Error(t, err)

			var perr *ParseError
			require.True(t, errors.As(err, &perr), "want *ParseError, got %T", err)
			require.Equal(t, tt.src, perr.Equation)
			require.GreaterOrEqual(t, perr.Offset, 0)
			require.LessOrEqual(t, perr.Offset, len(tt.src))
			require.True(t, strings.Contains(perr.Msg, tt.want),
				"message %q does not contain %q", perr.Msg, tt.want)
		})
	}
}

func TestParseErrorNamesOffendingText(t *testing.T) {
	src := "dX = ( (1.0 * dW1"
	_, err := Parse(src)
	require.Error(t, err)
	require.Contains(t, err.Error(), src)
}

func TestParseAllStopsAtFirstFailure(t *testing.T) {
	_, err := ParseAll([]string{"dX = ( 1.0 ) * dt", "dY = ("})
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, "dY = (", perr.Equation)
}

func TestParseAllEmpty(t *testing.T) {
	_, err := ParseAll(nil)
	require.Error(t, err)
}
