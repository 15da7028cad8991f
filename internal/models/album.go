package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Album is the unit of sharing: a short-lived "lobby" of images owned by
// one user. The image list is embedded as a single JSONB document; its
// order is the display order.
type Album struct {
	ID             string     `gorm:"primaryKey;size:12" json:"id"`
	AlbumName      string     `gorm:"size:255;not null" json:"albumName"`
	OwnerID        string     `gorm:"size:128;not null;index" json:"ownerId"`
	ViewersCanEdit bool       `gorm:"default:false" json:"viewersCanEdit"`
	IsFullQuality  bool       `gorm:"default:false" json:"isFullQuality"`
	CreatedOn      time.Time  `json:"createdOn"`
	FirstUploadOn  *time.Time `gorm:"index" json:"firstUploadOn"`
	ImageList      ImageList  `gorm:"type:jsonb;not null;default:'[]'" json:"imageList"`

	UpdatedAt time.Time `json:"-"`
}

// ImageEntry is one image embedded in an album's image list.
type ImageEntry struct {
	ID             string     `json:"id"`
	ImageURL       string     `json:"imageUrl"`
	UploaderID     string     `json:"uploaderId"`
	UploadedOn     int64      `json:"uploadedOn"` // unix milliseconds
	Reactions      []Reaction `json:"reactions"`
	ReactionString string     `json:"reactionString"`
}

// Reaction is a single user's reaction to an image. The apply logic keeps
// at most one entry per user per image.
type Reaction struct {
	UserID string `json:"userId"`
	Symbol string `json:"reaction"`
}

type ImageList []ImageEntry

func (l ImageList) Value() (driver.Value, error) {
	if l == nil {
		l = ImageList{}
	}
	return json.Marshal(l)
}

func (l *ImageList) Scan(value interface{}) error {
	if value == nil {
		*l = ImageList{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("malformed image list: unexpected type %T", value)
	}
	var list []ImageEntry
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("malformed image list: %w", err)
	}
	*l = list
	return nil
}

var ErrImageIndexOutOfRange = errors.New("image index out of range")

// Thumbnail returns the display thumbnail for album listings: the first
// image's URL, or empty when the album has no uploads yet.
func (a *Album) Thumbnail() string {
	if len(a.ImageList) == 0 {
		return ""
	}
	return a.ImageList[0].ImageURL
}

// CanEdit reports whether userID may add images to the album. Open
// albums accept anonymous uploaders too; their entries carry an empty
// uploader id.
func (a *Album) CanEdit(userID string) bool {
	if a.OwnerID == userID {
		return true
	}
	return a.ViewersCanEdit
}

// ImageIDs returns the embedded image IDs in display order.
func (a *Album) ImageIDs() []string {
	ids := make([]string, len(a.ImageList))
	for i, img := range a.ImageList {
		ids[i] = img.ID
	}
	return ids
}
