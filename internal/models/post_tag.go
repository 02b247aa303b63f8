package models

// PostTag is the posts<->tags join row. Position records the order in
// which the tags appeared when the post was created or last edited, so
// summaries can list them as written rather than by tag id.
type PostTag struct {
	PostID   uint `gorm:"primaryKey" json:"post_id"`
	TagID    uint `gorm:"primaryKey" json:"tag_id"`
	Position int  `gorm:"not null;default:0" json:"position"`
}
