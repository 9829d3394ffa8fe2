package filestorage

import "mime/multipart"

// FileStorage abstracts where uploaded files land so services can be tested
// without touching the filesystem.
type FileStorage interface {
	// SaveAs stores the uploaded file under the given name and returns the
	// accessible path used as the stored reference.
	SaveAs(fileHeader *multipart.FileHeader, filename string) (string, error)
	// DeleteFile removes a previously stored file. Deleting a missing file
	// is not an error.
	DeleteFile(filePath string) error
}
