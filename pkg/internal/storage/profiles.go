package storage

import "fmt"

// Profile is the transform policy the CDN applies to an upload.
type Profile struct {
	Name      string
	MaxSize   int64
	MimeTypes []string
	Format    string
	Quality   int
	Width     int
	Height    int
	Crop      bool
}

func (v Profile) Metadata() map[string]string {
	return map[string]string{
		"profile": v.Name,
		"format":  v.Format,
		"quality": fmt.Sprintf("%d", v.Quality),
		"resize":  fmt.Sprintf("%dx%d", v.Width, v.Height),
		"crop":    fmt.Sprintf("%t", v.Crop),
	}
}

var imageMimeTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

var Profiles = map[string]Profile{
	"avatar": {
		Name:      "avatar",
		MaxSize:   2 << 20,
		MimeTypes: imageMimeTypes,
		Format:    "webp",
		Quality:   80,
		Width:     256,
		Height:    256,
		Crop:      true,
	},
	"post": {
		Name:      "post",
		MaxSize:   10 << 20,
		MimeTypes: imageMimeTypes,
		Format:    "webp",
		Quality:   85,
		Width:     1600,
		Height:    900,
	},
	"category": {
		Name:      "category",
		MaxSize:   5 << 20,
		MimeTypes: imageMimeTypes,
		Format:    "webp",
		Quality:   85,
		Width:     800,
		Height:    450,
	},
	"editor": {
		Name:      "editor",
		MaxSize:   10 << 20,
		MimeTypes: imageMimeTypes,
		Format:    "webp",
		Quality:   90,
		Width:     1920,
		Height:    0,
	},
}

func GetProfile(name string) (Profile, bool) {
	profile, ok := Profiles[name]
	return profile, ok
}
