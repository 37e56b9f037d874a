package dto

const (
	ExportFormatJSON = "json"
	ExportFormatTXT  = "txt"
)

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
	Count       int
}
