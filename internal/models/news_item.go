package models

// NewsItem is the shape editors append to news.json.
type NewsItem struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Date        string `json:"date"`
	YoutubeURL  string `json:"youtube_url,omitempty"`
	IsFeatured  bool   `json:"is_featured"`
	Author      string `json:"author,omitempty"`
	ReadTime    string `json:"read_time,omitempty"`
	SourceURL   string `json:"source_url,omitempty"`
}
