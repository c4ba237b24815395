package news

// Category is a user-facing filter shown as a tab.
type Category struct {
	ID    string
	Label string
}

// Categories lists the selectable categories in display order. The empty ID
// means "no filter".
var Categories = []Category{
	{ID: "", Label: "全て"},
	{ID: "world", Label: "世界"},
	{ID: "nation", Label: "国内"},
	{ID: "business", Label: "ビジネス"},
	{ID: "technology", Label: "テクノロジー"},
	{ID: "entertainment", Label: "エンタメ"},
	{ID: "sports", Label: "スポーツ"},
	{ID: "science", Label: "サイエンス"},
	{ID: "health", Label: "ヘルス"},
}

// categoryTopics maps a category id to the backend topic id. The current
// taxonomy is an identity mapping.
var categoryTopics = map[string]string{
	"world":         "world",
	"nation":        "nation",
	"business":      "business",
	"technology":    "technology",
	"entertainment": "entertainment",
	"sports":        "sports",
	"science":       "science",
	"health":        "health",
}

// TopicFor returns the backend topic for a category. Unknown or empty
// categories report ok=false and mean "no topic filter".
func TopicFor(category string) (topic string, ok bool) {
	if category == "" {
		return "", false
	}
	topic, ok = categoryTopics[category]
	return topic, ok
}

// CategoryIndex returns the position of id in Categories, or 0 (all) when
// the id is unknown.
func CategoryIndex(id string) int {
	for i, c := range Categories {
		if c.ID == id {
			return i
		}
	}
	return 0
}

// CategoryLabel returns the display label for id, falling back to the id.
func CategoryLabel(id string) string {
	for _, c := range Categories {
		if c.ID == id {
			return c.Label
		}
	}
	return id
}
