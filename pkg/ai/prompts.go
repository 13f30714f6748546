package ai

import "fmt"

const describeImagePrompt = "Describe the main elements in this image in a few words (e.g., objects, scenes, themes)."

// genreInstruction возвращает жанровую инструкцию для промпта истории.
func genreInstruction(genre string) string {
	switch genre {
	case "fantasy":
		return "Create a fantasy story with magical elements, mythical creatures, and epic adventures."
	case "scifi":
		return "Create a science fiction story with futuristic technology, space exploration, and scientific concepts."
	case "mystery":
		return "Create a mystery story with suspense, clues, and a surprising revelation at the end."
	case "romance":
		return "Create a romantic story focusing on relationships, emotions, and character connections."
	case "horror":
		return "Create a horror story with suspense, tension, and elements of fear and surprise."
	default:
		return "Create an engaging story with interesting characters and plot."
	}
}

// storyPrompt собирает полный промпт истории из жанра, пользовательского
// ввода и языковой инструкции.
func storyPrompt(prompt, genre, language string) string {
	languageInstruction := ""
	if language != "" && language != "english" {
		languageInstruction = fmt.Sprintf("Write the story in %s.", language)
	}
	return fmt.Sprintf("%s %s %s", genreInstruction(genre), prompt, languageInstruction)
}

// titlePrompt собирает промпт для генерации заголовка.
func titlePrompt(prompt string) string {
	return fmt.Sprintf(`Generate a creative, concise title (3-5 words) for a story with these elements: %s.
The title should be catchy and memorable, but not start with phrases like "Here are" or similar.
Just return the title itself, nothing else.`, prompt)
}
