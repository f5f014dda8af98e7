package template

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/presenter/internal"
)

func TestPresenter_Present(t *testing.T) {
	pres := NewPresenter(internal.GenerateDocument(), "test-fixtures/test.template")

	var buffer bytes.Buffer
	require.NoError(t, pres.Present(&buffer))

	expected := "com.example.app risk=11\n" +
		"HIGH AFT-CODE-001 sources/com/example/app/Net.java:4,\n" +
		"MEDIUM AFT-MAN-002 AndroidManifest.xml\n"
	assert.Equal(t, expected, buffer.String())
}

func TestPresenter_Errors(t *testing.T) {
	var buffer bytes.Buffer

	err := NewPresenter(internal.GenerateDocument(), "test-fixtures/missing.template").Present(&buffer)
	assert.ErrorContains(t, err, "unable to get output template")

	err = NewPresenter(internal.GenerateDocument(), "test-fixtures/invalid.template").Present(&buffer)
	assert.ErrorContains(t, err, "unable to parse template")
}
