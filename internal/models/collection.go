package models

// Collection describes one harvested content type and where its files live.
type Collection struct {
	Name           string `yaml:"name"`
	IndexName      string `yaml:"index_name"`
	Dir            string `yaml:"dir"`
	CombinedFile   string `yaml:"combined_file"`
	CheckpointFile string `yaml:"checkpoint_file"`
}

// DefaultCollections returns the three collections in harvest order.
func DefaultCollections() []Collection {
	return []Collection{
		{
			Name:           "articles",
			IndexName:      "article-lists",
			Dir:            "articles",
			CombinedFile:   "all_articles.json",
			CheckpointFile: "progress_articles.json",
		},
		{
			Name:           "news_articles",
			IndexName:      "news_articles",
			Dir:            "news_articles",
			CombinedFile:   "all_news_articles.json",
			CheckpointFile: "progress_news_articles.json",
		},
		{
			Name:           "questions",
			IndexName:      "questions",
			Dir:            "questions",
			CombinedFile:   "all_questions.json",
			CheckpointFile: "progress_questions.json",
		},
	}
}
