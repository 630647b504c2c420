package sink

import (
	"fmt"

	"github.com/bogem/id3v2"
)

// TagMP3 rewrites the exported file's ID3v2 tag with the mix name as title,
// keeping the default artist/album/year front-matter.
func TagMP3(path, mixName string) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("tag %s: %w", path, err)
	}
	defer tag.Close()

	tag.SetTitle(mixName)
	tag.SetArtist(DefaultArtist)
	tag.SetAlbum(DefaultAlbum)
	tag.AddTextFrame("TYER", id3v2.EncodingUTF8, DefaultYear)

	if err := tag.Save(); err != nil {
		return fmt.Errorf("tag %s: %w", path, err)
	}
	return nil
}
