package models

type Avatar struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"userId"`
	MimeType  string `json:"mimeType"`
	ObjectKey string `json:"-"`
}

// AvatarData carries the image inline, base64 encoded.
type AvatarData struct {
	Avatar
	Data string `json:"avatar"`
}
