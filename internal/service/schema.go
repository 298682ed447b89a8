package service

import "google.golang.org/genai"

// Response schemas for structured generation. These mirror the artifact
// shapes in internal/model; the provider is instructed to return JSON of
// exactly this form.

func quizSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"question":           {Type: genai.TypeString},
				"options":            {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
				"correctAnswerIndex": {Type: genai.TypeInteger},
			},
			Required: []string{"question", "options", "correctAnswerIndex"},
		},
	}
}

func finalTestSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"question":           {Type: genai.TypeString},
				"options":            {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
				"correctAnswerIndex": {Type: genai.TypeInteger},
				"explanation":        {Type: genai.TypeString},
			},
			Required: []string{"question", "options", "correctAnswerIndex", "explanation"},
		},
	}
}

func presentationSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"title":   {Type: genai.TypeString},
				"content": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			},
			Required: []string{"title", "content"},
		},
	}
}

func analysisSchema() *genai.Schema {
	item := func(desc string) *genai.Schema {
		return &genai.Schema{
			Type:        genai.TypeArray,
			Description: desc,
			Items:       &genai.Schema{Type: genai.TypeString},
		}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"strongPoints":                item("Pozitivní zjištění, co student zvládl."),
			"areasForImprovement":         item("Konkrétní oblasti, kde má student mezery."),
			"recommendationsForStudent":   item("Akční kroky pro studenta."),
			"recommendationsForProfessor": item("Návrhy, jak může profesor pomoci."),
		},
		Required: []string{"strongPoints", "areasForImprovement", "recommendationsForStudent", "recommendationsForProfessor"},
	}
}
