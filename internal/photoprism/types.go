package photoprism

// Photo represents a PhotoPrism photo search result
type Photo struct {
	UID          string `json:"UID"`
	Title        string `json:"Title"`
	TakenAt      string `json:"TakenAt"`
	Type         string `json:"Type"`
	Hash         string `json:"Hash"`
	Width        int    `json:"Width"`
	Height       int    `json:"Height"`
	OriginalName string `json:"OriginalName"` // Original filename when uploaded
	FileName     string `json:"FileName"`     // Current filename
	Name         string `json:"Name"`         // Internal name
}

// File is one file attached to a photo
type File struct {
	UID     string `json:"UID"`
	Name    string `json:"Name"`
	Hash    string `json:"Hash"`
	Mime    string `json:"Mime"`
	Primary bool   `json:"Primary"`
}

// PhotoDetails is the subset of the photo details response the client reads
type PhotoDetails struct {
	UID   string `json:"UID"`
	Files []File `json:"Files"`
}

// PrimaryFile returns the primary file, or the first one when none is marked.
func (d *PhotoDetails) PrimaryFile() (File, bool) {
	for _, f := range d.Files {
		if f.Primary {
			return f, true
		}
	}
	if len(d.Files) > 0 {
		return d.Files[0], true
	}
	return File{}, false
}
