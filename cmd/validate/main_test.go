package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun(t *testing.T) {
	dir := t.TempDir()
	valid := filepath.Join(dir, "s3.json")
	invalid := filepath.Join(dir, "blob.json")
	assert.NoError(t, os.WriteFile(valid, []byte(`{"id":"1","name":"s3-prod","serviceType":"S3","href":"/services/storage/1","version":1}`), 0o644))
	assert.NoError(t, os.WriteFile(invalid, []byte(`{"id":"2","name":"blob","serviceType":"AZURE_BLOB","href":"/services/storage/2"}`), 0o644))

	t.Run("Usage", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		assert.Equal(t, 2, run(nil, strings.NewReader(""), &stdout, &stderr))
		assert.Contains(t, stderr.String(), "Usage:")
	})

	t.Run("ValidFile", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		assert.Equal(t, 0, run([]string{valid}, strings.NewReader(""), &stdout, &stderr))
		assert.Equal(t, valid+": ok (S3 s3-prod version 1.0)\n", stdout.String())
		assert.Empty(t, stderr.String())
	})

	t.Run("InvalidFile", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		assert.Equal(t, 1, run([]string{valid, invalid}, strings.NewReader(""), &stdout, &stderr))
		assert.Contains(t, stdout.String(), "s3-prod")
		assert.Contains(t, stderr.String(), "serviceType")
	})

	t.Run("MissingFile", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		assert.Equal(t, 1, run([]string{filepath.Join(dir, "nope.json")}, strings.NewReader(""), &stdout, &stderr))
		assert.NotEmpty(t, stderr.String())
	})

	t.Run("Stdin", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		in := strings.NewReader(`{"id":"9","name":"lake","serviceType":"ABFS","href":"/h"}`)
		assert.Equal(t, 0, run([]string{"-"}, in, &stdout, &stderr))
		assert.Equal(t, "-: ok (ABFS lake version -)\n", stdout.String())
	})
}
