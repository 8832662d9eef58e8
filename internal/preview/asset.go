// ABOUTME: Marketplace asset descriptors
// ABOUTME: Locates the preview file among an asset's files
package preview

// FileTypePreviewMP3 marks the scrambled preview among an asset's files
const FileTypePreviewMP3 = "preview_mp3"

// File is one downloadable file attached to an asset
type File struct {
	Type string `json:"asset_file_type_slug"`
	URL  string `json:"url"`
}

// Asset is a sample as returned by the marketplace search API
type Asset struct {
	UUID  string `json:"uuid"`
	Name  string `json:"name"`
	Files []File `json:"files"`
}

// PreviewFile returns the preview_mp3 descriptor, if any
func (a Asset) PreviewFile() (File, bool) {
	for _, f := range a.Files {
		if f.Type == FileTypePreviewMP3 {
			return f, true
		}
	}
	return File{}, false
}

// key identifies the asset in caches, falling back to the preview URL
func (a Asset) key() string {
	if a.UUID != "" {
		return a.UUID
	}
	if f, ok := a.PreviewFile(); ok {
		return f.URL
	}
	return ""
}
