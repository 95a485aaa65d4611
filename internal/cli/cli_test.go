package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/picklr-io/slsloop/internal/config"
	"github.com/picklr-io/slsloop/internal/loader"
	"github.com/picklr-io/slsloop/internal/plugin/recursiveloop"
	"github.com/picklr-io/slsloop/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTemplate = `{
  "AWSTemplateFormatVersion": "2010-09-09",
  "Resources": {
    "ALambdaFunction": {"Type": "AWS::Lambda::Function", "Properties": {"Handler": "handler.a"}},
    "BLambdaFunction": {"Type": "AWS::Lambda::Function", "Properties": {"Handler": "handler.b"}},
    "CLambdaFunction": {"Type": "AWS::Lambda::Function", "Properties": {"Handler": "handler.c"}}
  }
}`

func setupProject(t *testing.T, service string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "serverless.yml"), []byte(service), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".serverless"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultTemplate), []byte(testTemplate), 0644))
	return dir
}

func open(t *testing.T, dir string) *project {
	t.Helper()
	p, err := openProject(context.Background(), dir, config.Default())
	require.NoError(t, err)
	return p
}

func loopSettings(t *testing.T, dir, path string) map[string]any {
	t.Helper()
	tpl, err := loader.New(dir).LoadTemplate(path)
	require.NoError(t, err)

	out := make(map[string]any)
	for id, res := range tpl.Resources {
		if v, ok := res.Properties[recursiveloop.ResourceProperty]; ok {
			out[id] = v
		}
	}
	return out
}

func TestAnnotate(t *testing.T) {
	dir := setupProject(t, `service: demo
provider:
  name: aws
functions:
  a:
    handler: handler.a
    recursiveLoop: Terminate
  b:
    handler: handler.b
    recursiveLoop: Allow
  c:
    handler: handler.c
`)
	p := open(t, dir)

	var out bytes.Buffer
	require.NoError(t, p.annotate(&out, annotateOptions{template: config.DefaultTemplate}))

	want := map[string]any{"ALambdaFunction": "Terminate", "BLambdaFunction": "Allow"}
	if diff := cmp.Diff(want, loopSettings(t, dir, config.DefaultTemplate)); diff != "" {
		t.Errorf("RecursiveLoop mismatch (-want +got):\n%s", diff)
	}
	assert.Contains(t, out.String(), "ALambdaFunction: RecursiveLoop = Terminate")
	assert.Contains(t, out.String(), "Annotated 2 of 3 functions.")
}

func TestAnnotate_OutFile(t *testing.T) {
	dir := setupProject(t, "service: demo\nprovider:\n  name: aws\nfunctions:\n  a:\n    recursiveLoop: Allow\n")
	p := open(t, dir)

	var out bytes.Buffer
	require.NoError(t, p.annotate(&out, annotateOptions{template: config.DefaultTemplate, out: "annotated.json"}))

	assert.Equal(t, map[string]any{"ALambdaFunction": "Allow"}, loopSettings(t, dir, "annotated.json"))
	assert.Empty(t, loopSettings(t, dir, config.DefaultTemplate))
}

func TestAnnotate_InvalidValue(t *testing.T) {
	service := "service: demo\nprovider:\n  name: aws\nfunctions:\n  a:\n    recursiveLoop: Bogus\n"

	t.Run("validation rejects", func(t *testing.T) {
		dir := setupProject(t, service)
		var out bytes.Buffer
		err := open(t, dir).annotate(&out, annotateOptions{template: config.DefaultTemplate})

		var verr *schema.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "a", verr.Violations[0].Function)
	})

	t.Run("skip validation drops value", func(t *testing.T) {
		dir := setupProject(t, service)
		var out bytes.Buffer
		err := open(t, dir).annotate(&out, annotateOptions{template: config.DefaultTemplate, skipValidation: true})

		require.NoError(t, err)
		assert.Empty(t, loopSettings(t, dir, config.DefaultTemplate))
		assert.Contains(t, out.String(), "Annotated 0 of 1 functions.")
	})
}

func TestAnnotate_MissingResource(t *testing.T) {
	dir := setupProject(t, "service: demo\nprovider:\n  name: aws\nfunctions:\n  missing:\n    recursiveLoop: Allow\n")

	var out bytes.Buffer
	err := open(t, dir).annotate(&out, annotateOptions{template: config.DefaultTemplate})
	require.Error(t, err)
	assert.ErrorIs(t, err, recursiveloop.ErrResourceNotFound)
	assert.Contains(t, err.Error(), "MissingLambdaFunction")
}

func TestValidate(t *testing.T) {
	dir := setupProject(t, "service: demo\nprovider:\n  name: aws\nfunctions:\n  a:\n    recursiveLoop: allow\n  b:\n    recursiveLoop: Allow\n")

	var out bytes.Buffer
	err := open(t, dir).validate(&out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 invalid function setting(s)")
	assert.Contains(t, out.String(), "functions.a.recursiveLoop")

	dir = setupProject(t, "service: demo\nprovider:\n  name: aws\nfunctions:\n  a:\n    recursiveLoop: Terminate\n")
	out.Reset()
	require.NoError(t, open(t, dir).validate(&out))
	assert.Contains(t, out.String(), "Configuration is valid!")
}

func TestDeclaredFragments(t *testing.T) {
	fragments, err := declaredFragments()
	require.NoError(t, err)

	require.Contains(t, fragments, "aws")
	assert.Equal(t,
		schema.Property{Type: "string", Enum: []string{"Allow", "Terminate"}},
		fragments["aws"].Properties["recursiveLoop"])
}

func TestProjectDir(t *testing.T) {
	dir := t.TempDir()
	got, err := projectDir([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	file := filepath.Join(dir, "serverless.yml")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	_, err = projectDir([]string{file})
	assert.Error(t, err)

	_, err = projectDir([]string{filepath.Join(dir, "missing")})
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	assert.Contains(t, out.String(), "slsloop version dev")
}
