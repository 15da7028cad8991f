package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageListScan(t *testing.T) {
	raw := `[{"id":"img-1","imageUrl":"https://m/img-1.jpg","uploaderId":"u1","uploadedOn":1700000000000,"reactions":[],"reactionString":""}]`

	var list ImageList
	require.NoError(t, list.Scan([]byte(raw)))
	require.Len(t, list, 1)
	assert.Equal(t, "img-1", list[0].ID)
	assert.Equal(t, "u1", list[0].UploaderID)

	// String input is accepted too; gorm drivers differ here.
	var fromString ImageList
	require.NoError(t, fromString.Scan(raw))
	assert.Equal(t, list, fromString)

	var fromNil ImageList
	require.NoError(t, fromNil.Scan(nil))
	assert.Empty(t, fromNil)
}

func TestImageListScanRejectsMalformed(t *testing.T) {
	var list ImageList
	assert.ErrorContains(t, list.Scan([]byte(`{"not":"a list"`)), "malformed image list")
	assert.ErrorContains(t, list.Scan(42), "malformed image list")
}

func TestAlbumCanEdit(t *testing.T) {
	album := &Album{OwnerID: "owner", ViewersCanEdit: false}

	assert.True(t, album.CanEdit("owner"))
	assert.False(t, album.CanEdit("someone-else"))
	assert.False(t, album.CanEdit(""))

	album.ViewersCanEdit = true
	assert.True(t, album.CanEdit("someone-else"))
	// Open albums accept uploads without a bearer token; the uploader is
	// recorded as empty.
	assert.True(t, album.CanEdit(""))
}

func TestAlbumThumbnail(t *testing.T) {
	album := &Album{}
	assert.Equal(t, "", album.Thumbnail())

	album.ImageList = ImageList{
		{ID: "a", ImageURL: "https://m/a.jpg"},
		{ID: "b", ImageURL: "https://m/b.jpg"},
	}
	assert.Equal(t, "https://m/a.jpg", album.Thumbnail())
	assert.Equal(t, []string{"a", "b"}, album.ImageIDs())
}

func TestReportStatusTransitions(t *testing.T) {
	assert.True(t, ValidStatusTransition(ReportStatusOpen, ReportStatusReviewing))
	assert.True(t, ValidStatusTransition(ReportStatusOpen, ReportStatusResolved))
	assert.True(t, ValidStatusTransition(ReportStatusReviewing, ReportStatusResolved))

	assert.False(t, ValidStatusTransition(ReportStatusResolved, ReportStatusOpen))
	assert.False(t, ValidStatusTransition(ReportStatusReviewing, ReportStatusOpen))
	assert.False(t, ValidStatusTransition(ReportStatusOpen, ReportStatusOpen))
}
