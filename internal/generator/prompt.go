package generator

// SystemPrompt pins the model to the outline wire shape.
const SystemPrompt = `You are a mind map generator. Your responses must be valid JSON only, with no additional text. Generate a structured mind map from the given content using this exact format: {"nodes": [{"title": "Main Topic", "children": [{"title": "Subtopic 1"}, {"title": "Subtopic 2", "children": [{"title": "Detail 1"}]}]}]}`

const userPromptPrefix = "Generate a mind map structure for the following content, responding with JSON only: "

// UserPrompt wraps the source content.
func UserPrompt(content string) string {
	return userPromptPrefix + content
}
