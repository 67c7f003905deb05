package variables_test

import (
	"testing"

	"github.com/dukex/operion-studio/pkg/models"
	"github.com/dukex/operion-studio/pkg/testutil"
	"github.com/dukex/operion-studio/pkg/variables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withType(t models.VariableType) func(*models.VariableDefinition) {
	return func(v *models.VariableDefinition) {
		v.Type = t
	}
}

func required() func(*models.VariableDefinition) {
	return func(v *models.VariableDefinition) {
		v.Required = true
	}
}

func withDefault(value any) func(*models.VariableDefinition) {
	return func(v *models.VariableDefinition) {
		v.DefaultValue = value
	}
}

func TestValidate_RequiredGating(t *testing.T) {
	t.Parallel()

	defs := []models.VariableDefinition{testutil.CreateTestVariable("to", required())}

	errs := variables.Validate(map[string]any{}, defs)
	require.Len(t, errs, 1)
	assert.Equal(t, "to", errs[0].Variable)

	assert.Empty(t, variables.Validate(map[string]any{"to": "a@b.com"}, defs))
	assert.Len(t, variables.Validate(map[string]any{"to": nil}, defs), 1)
}

func TestValidate_RequiredWithDefault(t *testing.T) {
	t.Parallel()

	defs := []models.VariableDefinition{
		testutil.CreateTestVariable("retries", required(), withType(models.VariableTypeNumber), withDefault("2")),
	}

	values, errs := variables.Coerce(map[string]any{}, defs)
	assert.Empty(t, errs)
	assert.Equal(t, 2.0, values["retries"])
}

func TestValidate_Number(t *testing.T) {
	t.Parallel()

	defs := []models.VariableDefinition{testutil.CreateTestVariable("retries", withType(models.VariableTypeNumber))}

	values, errs := variables.Coerce(map[string]any{"retries": "3"}, defs)
	assert.Empty(t, errs)
	assert.Equal(t, 3.0, values["retries"])

	errs = variables.Validate(map[string]any{"retries": "abc"}, defs)
	require.Len(t, errs, 1)
	assert.Equal(t, "retries", errs[0].Variable)

	tests := []struct {
		input any
		valid bool
	}{
		{input: 4, valid: true},
		{input: 2.5, valid: true},
		{input: " 7 ", valid: true},
		{input: "1e3", valid: true},
		{input: "-0.5", valid: true},
		{input: "0x1p3", valid: false},
		{input: "-0X10", valid: false},
		{input: "1_000", valid: false},
		{input: "NaN", valid: false},
		{input: "Inf", valid: false},
		{input: []any{1}, valid: false},
		{input: "", valid: true},
	}

	for _, tt := range tests {
		errs := variables.Validate(map[string]any{"retries": tt.input}, defs)
		assert.Equal(t, tt.valid, len(errs) == 0, "%v", tt.input)
	}
}

func TestValidate_BooleanNeverFails(t *testing.T) {
	t.Parallel()

	defs := []models.VariableDefinition{testutil.CreateTestVariable("flag", withType(models.VariableTypeBoolean))}

	tests := []struct {
		input any
		want  bool
	}{
		{input: true, want: true},
		{input: "false", want: false},
		{input: "yes", want: true},
		{input: "", want: false},
		{input: 0, want: false},
		{input: 3, want: true},
		{input: map[string]any{}, want: true},
	}

	for _, tt := range tests {
		values, errs := variables.Coerce(map[string]any{"flag": tt.input}, defs)
		assert.Empty(t, errs)
		assert.Equal(t, tt.want, values["flag"], "%v", tt.input)
	}
}

func TestValidate_JSONAndList(t *testing.T) {
	t.Parallel()

	defs := []models.VariableDefinition{
		testutil.CreateTestVariable("payload", withType(models.VariableTypeJSON)),
		testutil.CreateTestVariable("items", withType(models.VariableTypeList)),
	}

	values, errs := variables.Coerce(map[string]any{
		"payload": `{"a": 1}`,
		"items":   []any{"x", "y"},
	}, defs)
	assert.Empty(t, errs)
	assert.Equal(t, map[string]any{"a": 1.0}, values["payload"])
	assert.Equal(t, []any{"x", "y"}, values["items"])

	values, errs = variables.Coerce(map[string]any{"payload": "{not json"}, defs)
	assert.Empty(t, errs)
	assert.Equal(t, "{not json", values["payload"])

	errs = variables.Validate(map[string]any{"payload": "{not json"}, defs, variables.WithStrictJSON())
	require.Len(t, errs, 1)
	assert.Equal(t, "payload", errs[0].Variable)
}

func TestValidate_StringAndSecretNeverFail(t *testing.T) {
	t.Parallel()

	defs := []models.VariableDefinition{
		testutil.CreateTestVariable("name"),
		testutil.CreateTestVariable("token", withType(models.VariableTypeSecret)),
	}

	values, errs := variables.Coerce(map[string]any{"name": 12, "token": "s3cr3t", "extra": "kept"}, defs)
	assert.Empty(t, errs)
	assert.Equal(t, 12, values["name"])
	assert.Equal(t, "s3cr3t", values["token"])
	assert.Equal(t, "kept", values["extra"])
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	t.Parallel()

	defs := []models.VariableDefinition{
		testutil.CreateTestVariable("to", required()),
		testutil.CreateTestVariable("count", withType(models.VariableTypeNumber)),
		testutil.CreateTestVariable("cc"),
	}

	errs := variables.Validate(map[string]any{"count": "many"}, defs)
	assert.Equal(t, []models.VariableError{
		{Variable: "to", Error: "is required"},
		{Variable: "count", Error: "must be a number"},
	}, errs)

	assert.NotNil(t, variables.Validate(map[string]any{"to": "x"}, defs))
	assert.Empty(t, variables.Validate(map[string]any{"to": "x"}, defs))
}

func TestMask(t *testing.T) {
	t.Parallel()

	defs := []models.VariableDefinition{
		testutil.CreateTestVariable("token", withType(models.VariableTypeSecret)),
		testutil.CreateTestVariable("password", func(v *models.VariableDefinition) { v.Sensitive = true }),
		testutil.CreateTestVariable("name"),
	}

	values := map[string]any{"token": "t", "password": "p", "name": "n"}
	masked := variables.Mask(values, defs)

	assert.Equal(t, map[string]any{"token": variables.MaskedValue, "password": variables.MaskedValue, "name": "n"}, masked)
	assert.Equal(t, "t", values["token"])
}
