package model

// Volume is a linear gain stored as an integer in [0, VolumeNormalization],
// where VolumeNormalization maps to 1.0.
type Volume int64

// VolumeNormalization is the integer divisor mapping a stored Volume to unit gain.
const VolumeNormalization Volume = 1000

// Gain converts the stored volume to a float gain clamped to [0, 1].
func (v Volume) Gain() float64 {
	g := float64(v) / float64(VolumeNormalization)
	if g < 0 {
		return 0
	}
	if g > 1 {
		return 1
	}
	return g
}

// BpmNormalization scales stored beat-per-minute values; a stored bpm of
// 128000 means 128.000 BPM.
const BpmNormalization int64 = 1000

// Track represents an audio track in the music library.
//
// Durations are integer milliseconds; timestamps are milliseconds since the
// Unix epoch. ID is -1 for a track that has not been persisted yet.
type Track struct {
	ID             int64  `json:"id"`
	FolderID       int64  `json:"folderId"`
	Filepath       string `json:"-"` // absolute path, unique in the library
	FileSizeBytes  int64  `json:"fileSizeBytes"`
	LastModifiedFs int64  `json:"lastModifiedFs"`
	DateAdded      int64  `json:"dateAdded"`
	LastScanned    int64  `json:"lastScanned"`

	Title           string `json:"title"`
	ArtistName      string `json:"artistName"`
	AlbumTitle      string `json:"albumTitle"`
	AlbumArtistName string `json:"albumArtistName"`
	TrackNumber     int64  `json:"trackNumber"`
	DiscNumber      int64  `json:"discNumber"`
	Year            int64  `json:"year"`

	DurationMs int64  `json:"durationMs"`
	SampleRate int64  `json:"sampleRate"`
	Channels   int64  `json:"channels"`
	Bitrate    int64  `json:"bitrate"`
	CodecName  string `json:"codecName"`

	Bpm               int64  `json:"bpm"`          // scaled by BpmNormalization, 0 = unknown
	IntroEndMs        int64  `json:"introEndMs"`   // 0 = unset
	OutroStartMs      int64  `json:"outroStartMs"` // 0 = unset
	KeyString         string `json:"keyString"`
	BeatLocationsJSON string `json:"-"`

	Rating      int64  `json:"rating"`
	LikedStatus int64  `json:"likedStatus"`
	PlayCount   int64  `json:"playCount"`
	LastPlayed  int64  `json:"lastPlayed"`
	ContentHash string `json:"-"`
	UserNotes   string `json:"userNotes"`
	IsMissing   bool   `json:"isMissing"`
}

// UnsavedID marks a Track that has never been persisted; SaveTrack assigns
// the real id on insert.
const UnsavedID int64 = -1
