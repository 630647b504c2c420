package repository

import (
	"strings"
)

// PageSize is the fixed number of rows per page when QueryArgs.Paged is set.
// Offsets must be a multiple of it.
const PageSize = 128

// SortColumn names a UI sort column and its direction.
type SortColumn struct {
	Column     string
	Descending bool
}

// QueryArgs bundles the filters, sort order and paging of a track listing.
//
// Search terms are ANDed; each term matches when title, artist, album or
// filepath contains it, case-insensitively. A zero WorkingSetID or MixID
// means "no filter".
type QueryArgs struct {
	SearchTerms  []string
	PathFilter   string
	WorkingSetID int64
	MixID        int64
	SortBy       []SortColumn
	Paged        bool
	Offset       int64
}

// sortableColumns maps the column names the UI exposes onto the Tracks
// schema. Text columns carry a NOCASE collation for the composite sort.
var sortableColumns = map[string]struct {
	expr   string
	isText bool
}{
	"title":        {"t.title", true},
	"artist":       {"t.artist_name", true},
	"album":        {"t.album_title", true},
	"album_artist": {"t.album_artist_name", true},
	"filepath":     {"t.filepath", true},
	"codec":        {"t.codec_name", true},
	"key":          {"t.key_string", true},
	"duration":     {"t.duration", false},
	"bpm":          {"t.bpm", false},
	"year":         {"t.year", false},
	"rating":       {"t.rating", false},
	"liked_status": {"t.liked_status", false},
	"play_count":   {"t.play_count", false},
	"last_played":  {"t.last_played", false},
	"date_added":   {"t.date_added", false},
	"track_number": {"t.track_number", false},
	"filesize":     {"t.filesize_bytes", false},
}

// buildTrackFilter renders the FROM/JOIN/WHERE part of a track query for the
// given args. The returned SQL starts at "FROM Tracks t".
func buildTrackFilter(args *QueryArgs) (string, []interface{}) {
	var b strings.Builder
	var params []interface{}

	b.WriteString("FROM Tracks t")
	if args.WorkingSetID != 0 {
		b.WriteString(" JOIN WorkingSetTracks wst ON wst.track_id = t.track_id AND wst.ws_id = ?")
		params = append(params, args.WorkingSetID)
	}
	if args.MixID != 0 {
		b.WriteString(" JOIN MixTracks mt ON mt.track_id = t.track_id AND mt.mix_id = ?")
		params = append(params, args.MixID)
	}

	b.WriteString(" WHERE 1=1")
	for _, term := range args.SearchTerms {
		if term == "" {
			continue
		}
		pattern := "%" + escapeLike(term) + "%"
		b.WriteString(` AND (t.title LIKE ? ESCAPE '\'` +
			` OR t.artist_name LIKE ? ESCAPE '\'` +
			` OR t.album_title LIKE ? ESCAPE '\'` +
			` OR t.filepath LIKE ? ESCAPE '\')`)
		params = append(params, pattern, pattern, pattern, pattern)
	}
	if args.PathFilter != "" {
		b.WriteString(` AND t.filepath LIKE ? ESCAPE '\'`)
		params = append(params, escapeLike(args.PathFilter)+"%")
	}

	return b.String(), params
}

// buildOrderBy renders the ORDER BY clause for the args' sort columns.
// Unknown column names are ignored; track_id is appended as the final key so
// the composite sort is stable.
func buildOrderBy(args *QueryArgs) string {
	var parts []string
	for _, sc := range args.SortBy {
		col, ok := sortableColumns[strings.ToLower(sc.Column)]
		if !ok {
			continue
		}
		expr := col.expr
		if col.isText {
			expr += " COLLATE NOCASE"
		}
		if sc.Descending {
			expr += " DESC"
		}
		parts = append(parts, expr)
	}
	parts = append(parts, "t.track_id")
	return " ORDER BY " + strings.Join(parts, ", ")
}

// escapeLike escapes the LIKE wildcards in a user-supplied term.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
