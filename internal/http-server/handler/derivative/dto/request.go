package dto

// ProcessRequest is the JSON ingestion body. The image travels base64
// encoded; sizing bounds are required and must be positive. An empty
// blobContainer selects the service's configured default bucket.
type ProcessRequest struct {
	ImageBase64        string `json:"imageBase64" validate:"required"`
	FileName           string `json:"fileName"`
	Extension          string `json:"extension" validate:"required"`
	UseHashForFileName bool   `json:"useHashForFileName"`
	DeDupe             bool   `json:"deDupe"`
	SubDirectory       string `json:"subDirectory"`
	BlobContainer      string `json:"blobContainer"`
	OriginalMaxWidth   int    `json:"originalMaxWidth" validate:"gt=0"`
	OriginalMaxHeight  int    `json:"originalMaxHeight" validate:"gt=0"`
	SizedMaxWidth      int    `json:"sizedMaxWidth" validate:"gt=0"`
	SizedMaxHeight     int    `json:"sizedMaxHeight" validate:"gt=0"`
	ThumbnailMaxWidth  int    `json:"thumbnailMaxWidth" validate:"gt=0"`
	ThumbnailMaxHeight int    `json:"thumbnailMaxHeight" validate:"gt=0"`
}
