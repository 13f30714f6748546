package model

// CatalogEntry элемент статического справочника (жанры, языки).
type CatalogEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Genres фиксированный набор предлагаемых жанров. Поле genre у истории
// при этом остается свободной строкой.
func Genres() []CatalogEntry {
	return []CatalogEntry{
		{ID: "general", Name: "General"},
		{ID: "fantasy", Name: "Fantasy"},
		{ID: "scifi", Name: "Science Fiction"},
		{ID: "mystery", Name: "Mystery"},
		{ID: "romance", Name: "Romance"},
		{ID: "horror", Name: "Horror"},
	}
}

// Languages фиксированный набор предлагаемых языков.
func Languages() []CatalogEntry {
	return []CatalogEntry{
		{ID: "english", Name: "English"},
		{ID: "spanish", Name: "Spanish"},
		{ID: "french", Name: "French"},
		{ID: "german", Name: "German"},
		{ID: "italian", Name: "Italian"},
	}
}

// Statistics агрегированные показатели по всем историям.
type Statistics struct {
	TotalStories         int            `json:"totalStories"`
	TotalImages          int            `json:"totalImages"`
	TotalWords           int            `json:"totalWords"`
	AverageLength        int            `json:"averageLength"`
	GenreDistribution    map[string]int `json:"genreDistribution"`
	LanguageDistribution map[string]int `json:"languageDistribution"`
}
