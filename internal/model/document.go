package model

type Document struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id"`
	Title       string `json:"title"`
	FileKey     string `json:"file_key"`
	LanguageSrc string `json:"language_src"`
	LanguageTgt string `json:"language_tgt"`
	TotalPages  int    `json:"total_pages"`
	Ctime       int64  `json:"ctime"`
	Mtime       int64  `json:"mtime"`
}
