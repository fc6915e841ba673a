package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "golimit version 0.1.0\n", out)
}

func TestCalcCommand(t *testing.T) {
	out, err := execute(t, "calc", "--log-level", "error", "(x^2 - 1)/(x - 1)", "1")
	require.NoError(t, err)
	assert.Equal(t, "lim[x→1] (x**2 - 1)/(x - 1) = 2\n", out)
}

func TestCalcCommand_Side(t *testing.T) {
	out, err := execute(t, "calc", "--log-level", "error", "--side", "-", "exp(-1/x)", "0")
	require.NoError(t, err)
	assert.Equal(t, "lim[x→0 -] exp(-1/x) = oo\n", out)
}

func TestCalcCommand_Failure(t *testing.T) {
	out, err := execute(t, "calc", "--log-level", "error", "--side", "", "x", "banana")
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, out, "Ponto inválido.")
}
