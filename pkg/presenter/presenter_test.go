package presenter

import (
	"bytes"
	"os"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestNewWithOptions(t *testing.T) {
	var output, errorOutput bytes.Buffer
	p := NewWithOptions(&output, &errorOutput, ColorNever)

	assert.Equal(t, &output, p.output)
	assert.Equal(t, &errorOutput, p.errorOutput)
	assert.False(t, p.IsQuiet())
}

func TestDetectColorMode(t *testing.T) {
	tests := []struct {
		name          string
		noColor       string
		plugscanColor string
		expected      ColorMode
	}{
		{name: "NO_COLOR set", noColor: "1", expected: ColorNever},
		{name: "always", plugscanColor: "always", expected: ColorAlways},
		{name: "force", plugscanColor: "force", expected: ColorAlways},
		{name: "never", plugscanColor: "never", expected: ColorNever},
		{name: "off", plugscanColor: "off", expected: ColorNever},
		{name: "default", expected: ColorAuto},
		{name: "unrecognized", plugscanColor: "sometimes", expected: ColorAuto},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Unsetenv("NO_COLOR")
			os.Unsetenv("PLUGSCAN_COLOR")
			defer os.Unsetenv("NO_COLOR")
			defer os.Unsetenv("PLUGSCAN_COLOR")

			if tt.noColor != "" {
				os.Setenv("NO_COLOR", tt.noColor)
			}
			if tt.plugscanColor != "" {
				os.Setenv("PLUGSCAN_COLOR", tt.plugscanColor)
			}

			assert.Equal(t, tt.expected, detectColorMode())
		})
	}
}

func TestErrorOutput(t *testing.T) {
	var errorOutput bytes.Buffer
	p := NewWithOptions(nil, &errorOutput, ColorNever)

	p.Error(errors.New("boom"), "scanning")
	assert.Contains(t, errorOutput.String(), "[ERROR] scanning: boom")

	errorOutput.Reset()
	p.Error(errors.New("boom"), "")
	assert.Contains(t, errorOutput.String(), "[ERROR] boom")

	errorOutput.Reset()
	p.Error(nil, "ignored")
	assert.Empty(t, errorOutput.String())
}

func TestQuietSuppressesInfoButNotError(t *testing.T) {
	var output, errorOutput bytes.Buffer
	p := NewWithOptions(&output, &errorOutput, ColorNever)
	p.SetQuiet(true)

	p.Info("hello")
	p.Success("done")
	p.Warning("careful")
	p.Section("title")
	assert.Empty(t, output.String())

	p.Error(errors.New("boom"), "")
	assert.Contains(t, errorOutput.String(), "boom")
}

func TestMessages(t *testing.T) {
	var output bytes.Buffer
	p := NewWithOptions(&output, nil, ColorNever)

	p.Info("plain info")
	p.Success("all good")
	p.Warning("heads up")
	p.Section("Results")

	out := output.String()
	assert.Contains(t, out, "plain info")
	assert.Contains(t, out, "✓ all good")
	assert.Contains(t, out, "⚠ heads up")
	assert.Contains(t, out, "Results\n-------")
}
