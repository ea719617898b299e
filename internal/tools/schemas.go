package tools

import "github.com/google/jsonschema-go/jsonschema"

func stringProp(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: description}
}

func numberProp(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "number", Description: description}
}

func integerProp(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "integer", Description: description}
}

func enumProp(description string, values ...any) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: description, Enum: values}
}

var chatInputSchema = &jsonschema.Schema{
	Type: "object",
	Properties: map[string]*jsonschema.Schema{
		"prompt":            stringProp("Primary user content to send to the chat model."),
		"system_prompt":     stringProp("Optional system instruction injected ahead of the user message to steer tone, policy, or persona."),
		"model":             stringProp("Override the default chat model or deployment."),
		"temperature":       numberProp("Softmax temperature; lower values are more deterministic. Defaults to 0.2."),
		"top_p":             numberProp("Nucleus sampling cutoff applied alongside temperature. Defaults to 1.0."),
		"max_output_tokens": integerProp("Hard limit on assistant tokens; defaults to the model maximum when omitted."),
		"user":              stringProp("Opaque user identifier forwarded upstream for abuse monitoring."),
		"response_format":   stringProp("Set to 'json' to force JSON output, or pass a provider response format type."),
		"presence_penalty":  numberProp("Penalty encouraging the model to introduce new topics."),
		"frequency_penalty": numberProp("Penalty discouraging repeated tokens."),
		"seed":              integerProp("Determinism seed; identical inputs and seed yield identical outputs."),
		"metadata": {
			Type:        "object",
			Description: "Arbitrary string metadata forwarded upstream for audit tagging.",
		},
	},
	Required: []string{"prompt"},
}

var imageInputSchema = &jsonschema.Schema{
	Type: "object",
	Properties: map[string]*jsonschema.Schema{
		"prompt":  stringProp("Natural language description of the image to render."),
		"size":    enumProp("Output resolution.", "1024x1024", "1024x1536", "1536x1024", "auto"),
		"quality": enumProp("Image fidelity preset.", "low", "medium", "high", "auto"),
		"format":  enumProp("Output file format. Defaults to png.", "png", "jpeg", "webp"),
		"count":   integerProp("Number of variations to render (1-10)."),
		"user":    stringProp("Opaque user identifier forwarded upstream for abuse monitoring."),
	},
	Required: []string{"prompt"},
}

var speechInputSchema = &jsonschema.Schema{
	Type: "object",
	Properties: map[string]*jsonschema.Schema{
		"text":            stringProp("Plain text that should be converted into audio."),
		"model":           stringProp("Override the default TTS model or deployment."),
		"voice":           stringProp("Voice preset such as 'alloy' or 'verse'."),
		"response_format": enumProp("Audio container to return. Defaults to mp3.", "mp3", "wav", "flac", "opus", "ogg", "aac", "m4a"),
		"speed":           numberProp("Playback rate multiplier where 1.0 is real-time."),
	},
	Required: []string{"text"},
}

var videoInputSchema = &jsonschema.Schema{
	Type: "object",
	Properties: map[string]*jsonschema.Schema{
		"prompt":  stringProp("Rich description of the motion scene to synthesize."),
		"model":   stringProp("Override the default video model."),
		"seconds": integerProp("Clip duration; must be 4, 8, or 12 seconds."),
		"size":    stringProp("Output resolution such as '720x1280' (portrait) or '1280x720' (landscape)."),
		"variant": enumProp("Download target.", "video", "thumbnail", "spritesheet"),
	},
	Required: []string{"prompt"},
}

var modelsInputSchema = &jsonschema.Schema{
	Type: "object",
	Properties: map[string]*jsonschema.Schema{
		"capability":                enumProp("Optional capability filter.", "chat", "image", "audio", "video"),
		"include_provider_metadata": {Type: "boolean", Description: "Append provider info (base URLs, endpoints) when true. Defaults to true."},
	},
}
