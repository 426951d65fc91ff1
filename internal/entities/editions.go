package entities

import (
	"time"
)

type RunStatus string

const (
	RunStatusPending             RunStatus = "pending"
	RunStatusRunning             RunStatus = "running"
	RunStatusCompleted           RunStatus = "completed"
	RunStatusCompletedWithErrors RunStatus = "completed_with_errors"
	RunStatusFailed              RunStatus = "failed"
)

// Edition is one uploaded issue of the publication together with the
// status of its most recent extraction run.
type Edition struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Number       *int       `json:"number,omitempty"`
	Date         *time.Time `json:"date,omitempty"`
	CoverTitle   string     `gorm:"size:512" json:"cover_title,omitempty"`
	CoverChapeau string     `gorm:"type:text" json:"cover_chapeau,omitempty"`
	SourceDir    string     `gorm:"uniqueIndex;size:1024" json:"source_dir"`
	Status       RunStatus  `gorm:"size:32;default:'pending'" json:"status"`
	Errors       string     `gorm:"type:text" json:"errors,omitempty"`   // JSON array of messages
	Warnings     string     `gorm:"type:text" json:"warnings,omitempty"` // JSON array of messages
	ArticleCount int        `json:"article_count"`
	AuthorCount  int        `json:"author_count"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	Articles     []Article  `gorm:"foreignKey:EditionID" json:"articles,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type Article struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	EditionID      uint           `gorm:"index" json:"edition_id"`
	Position       int            `json:"position"`
	Title          string         `gorm:"index;size:512" json:"title"`
	Chapeau        string         `gorm:"type:text" json:"chapeau,omitempty"`
	Body           string         `gorm:"type:text" json:"-"` // rendered body markup
	Excerpt        string         `gorm:"type:text" json:"excerpt,omitempty"`
	Category       string         `gorm:"size:256" json:"category,omitempty"`
	Lifespan       string         `gorm:"size:64" json:"lifespan,omitempty"`
	VerseReference string         `gorm:"size:128" json:"verse_reference,omitempty"`
	IntroVerse     string         `gorm:"type:text" json:"intro_verse,omitempty"`
	AuthorBio      string         `gorm:"type:text" json:"author_bio,omitempty"`
	PageStart      int            `json:"page_start"`
	PageEnd        int            `json:"page_end"`
	Images         []ArticleImage `gorm:"foreignKey:ArticleID" json:"images,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type ArticleImage struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	ArticleID  uint   `gorm:"index" json:"article_id"`
	Filename   string `gorm:"size:512" json:"filename"`
	URL        string `gorm:"size:2048" json:"url"`
	Caption    string `gorm:"type:text" json:"caption,omitempty"`
	IsFeatured bool   `gorm:"default:false" json:"is_featured"`
	SortOrder  int    `json:"sort_order"`
}

// Author is unique by name across all editions.
type Author struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:256" json:"name"`
	PhotoURL  string    `gorm:"size:2048" json:"photo_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ArticleAuthor links an article to one of its authors.
type ArticleAuthor struct {
	ArticleID uint      `gorm:"primaryKey" json:"article_id"`
	AuthorID  uint      `gorm:"primaryKey;index" json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (Edition) TableName() string {
	return "editions"
}

func (Article) TableName() string {
	return "articles"
}

func (ArticleImage) TableName() string {
	return "article_images"
}

func (Author) TableName() string {
	return "authors"
}

func (ArticleAuthor) TableName() string {
	return "article_authors"
}
