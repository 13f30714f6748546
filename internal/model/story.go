package model

import "time"

// CurrentSchemaVersion текущая версия схемы документа story.json.
// Документы без поля schemaVersion считаются версией 1.
const CurrentSchemaVersion = 1

// DefaultTitle заголовок-заглушка, используемый когда генерация заголовка
// не удалась или дала пустой результат.
const DefaultTitle = "Untitled Story"

// Story представляет одну сгенерированную историю вместе с метаданными.
// Это единственная персистентная сущность: одна директория stories/<id>
// с файлом story.json и скопированными изображениями.
type Story struct {
	SchemaVersion int        `json:"schemaVersion"`
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Story         string     `json:"story"`
	Genre         string     `json:"genre,omitempty"`
	Language      string     `json:"language,omitempty"`
	Branching     bool       `json:"branching,omitempty"`
	ImageURLs     []string   `json:"imageUrls"`
	IsComplete    bool       `json:"isComplete"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
}

// WordCount возвращает количество слов в тексте истории.
func (s *Story) WordCount() int {
	count := 0
	inWord := false
	for _, r := range s.Story {
		switch r {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			inWord = false
		default:
			if !inWord {
				count++
			}
			inWord = true
		}
	}
	return count
}
