package services

import "errors"

var (
	ErrAlbumNotFound      = errors.New("album not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrReportNotFound     = errors.New("report not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrUploadWindowClosed = errors.New("upload window has closed")
	ErrTooManyImages      = errors.New("image count limit exceeded")
	ErrFileTooLarge       = errors.New("file size too large")
	ErrNotAnImage         = errors.New("file is not an image")
	ErrNoFiles            = errors.New("no files to upload")
	ErrAllUploadsFailed   = errors.New("all uploads failed")
)
