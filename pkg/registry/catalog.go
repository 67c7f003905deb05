package registry

import "github.com/dukex/operion-studio/pkg/models"

var httpMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE"}

// defaultSteps is the compiled-in step palette.
func defaultSteps() []models.StepTypeSpec {
	return []models.StepTypeSpec{
		{
			Type:        "http_request",
			Label:       "HTTP Request",
			Description: "Call an HTTP endpoint",
			Category:    "integration",
			Fields: []models.FieldSpec{
				{Key: "url", Label: "URL", Kind: models.FieldKindText, Placeholder: "https://api.example.com", Format: models.FieldFormatURL},
				{Key: "method", Label: "Method", Kind: models.FieldKindSelect, Options: httpMethods},
				{Key: "headers", Label: "Headers (JSON)", Kind: models.FieldKindTextarea},
				{Key: "body", Label: "Body", Kind: models.FieldKindTextarea},
				{Key: "timeout_seconds", Label: "Timeout (seconds)", Kind: models.FieldKindNumber, Placeholder: "30"},
			},
		},
		{
			Type:        "delay",
			Label:       "Delay",
			Description: "Wait before continuing",
			Category:    "flow",
			Fields: []models.FieldSpec{
				{Key: "duration", Label: "Duration", Kind: models.FieldKindNumber, Placeholder: "5"},
				{Key: "unit", Label: "Unit", Kind: models.FieldKindSelect, Options: []string{"seconds", "minutes", "hours", "days"}},
			},
		},
		{
			Type:        "condition",
			Label:       "Condition",
			Description: "Branch on an expression",
			Category:    "flow",
			Fields: []models.FieldSpec{
				{Key: "expression", Label: "Expression", Kind: models.FieldKindTextarea, Placeholder: "{{ vars.amount }} > 100"},
			},
		},
		{
			Type:        "transform",
			Label:       "Transform",
			Description: "Reshape data with an expression",
			Category:    "data",
			Fields: []models.FieldSpec{
				{Key: "expression", Label: "Expression", Kind: models.FieldKindTextarea, Placeholder: "$sum(orders.amount)", Format: models.FieldFormatJSONata},
				{Key: "output_key", Label: "Output key", Kind: models.FieldKindText},
			},
		},
		{
			Type:        "log",
			Label:       "Log",
			Description: "Write a message to the execution log",
			Category:    "utility",
			Fields: []models.FieldSpec{
				{Key: "message", Label: "Message", Kind: models.FieldKindText},
				{Key: "level", Label: "Level", Kind: models.FieldKindSelect, Options: []string{"debug", "info", "warn", "error"}},
			},
		},
		{
			Type:        "email",
			Label:       "Send Email",
			Description: "Send an email message",
			Category:    "integration",
			Fields: []models.FieldSpec{
				{Key: "to", Label: "To", Kind: models.FieldKindText, Format: models.FieldFormatEmail},
				{Key: "subject", Label: "Subject", Kind: models.FieldKindText},
				{Key: "body", Label: "Body", Kind: models.FieldKindTextarea},
				{Key: "html", Label: "HTML body", Kind: models.FieldKindBoolean},
			},
		},
		{
			Type:        "script",
			Label:       "Script",
			Description: "Run a code snippet",
			Category:    "data",
			Fields: []models.FieldSpec{
				{Key: "language", Label: "Language", Kind: models.FieldKindSelect, Options: []string{"javascript", "python"}},
				{Key: "code", Label: "Code", Kind: models.FieldKindTextarea},
			},
		},
		{
			Type:        "schedule",
			Label:       "Schedule",
			Description: "Start the workflow on a cron schedule",
			Category:    "trigger",
			Fields: []models.FieldSpec{
				{Key: "expression", Label: "Cron expression", Kind: models.FieldKindText, Placeholder: "0 * * * *", Format: models.FieldFormatCron},
				{Key: "timezone", Label: "Timezone", Kind: models.FieldKindText, Placeholder: "UTC"},
			},
		},
		{
			Type:        "webhook",
			Label:       "Webhook",
			Description: "Start the workflow from an incoming HTTP call",
			Category:    "trigger",
			Fields: []models.FieldSpec{
				{Key: "path", Label: "Path", Kind: models.FieldKindText, Placeholder: "/hooks/my-flow"},
				{Key: "method", Label: "Method", Kind: models.FieldKindSelect, Options: httpMethods},
			},
		},
		{
			Type:        "loop",
			Label:       "Loop",
			Description: "Repeat the following steps for each item",
			Category:    "flow",
			Fields: []models.FieldSpec{
				{Key: "items", Label: "Items", Kind: models.FieldKindText, Placeholder: "{{ vars.recipients }}"},
				{Key: "max_iterations", Label: "Max iterations", Kind: models.FieldKindNumber, Placeholder: "100"},
			},
		},
		{
			Type:        "approval",
			Label:       "Approval",
			Description: "Pause until a person approves",
			Category:    "human",
			Fields: []models.FieldSpec{
				{Key: "approvers", Label: "Approvers", Kind: models.FieldKindText},
				{Key: "message", Label: "Message", Kind: models.FieldKindTextarea},
				{Key: "timeout_hours", Label: "Timeout (hours)", Kind: models.FieldKindNumber},
			},
		},
		{
			Type:        "notification",
			Label:       "Notification",
			Description: "Post a message to a chat channel",
			Category:    "integration",
			Fields: []models.FieldSpec{
				{Key: "channel", Label: "Channel", Kind: models.FieldKindSelect, Options: []string{"slack", "teams", "discord"}},
				{Key: "target", Label: "Target", Kind: models.FieldKindText},
				{Key: "message", Label: "Message", Kind: models.FieldKindTextarea},
			},
		},
	}
}

// RegisterDefaultSteps registers the built-in step palette.
func (r *Registry) RegisterDefaultSteps() {
	for _, spec := range defaultSteps() {
		if err := r.Register(spec); err != nil {
			// The catalog is static; a failure here is a programming error.
			panic(err)
		}
	}
}
