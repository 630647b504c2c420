package repository

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"jucyaudio/db"
	"jucyaudio/model"
)

// testStore opens a fresh library in a temp directory, on both the raw and
// the GORM handle, and applies the schema.
func testStore(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "library.db")
	conn, err := sql.Open("sqlite3",
		fmt.Sprintf("file:%s?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000", path))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.InitSchema(conn); err != nil {
		t.Fatalf("schema: %v", err)
	}

	gormDB, err := gorm.Open(sqlite.Open(
		path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"),
		&gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return NewStore(conn, gormDB)
}

func newTrack(path, title, artist string) *model.Track {
	return &model.Track{
		ID:         model.UnsavedID,
		Filepath:   path,
		Title:      title,
		ArtistName: artist,
		DurationMs: 30000,
	}
}

func mustSave(t *testing.T, s *Store, track *model.Track) *model.Track {
	t.Helper()
	if err := s.Tracks.SaveTrack(track, nil); err != nil {
		t.Fatalf("SaveTrack(%s): %v", track.Filepath, err)
	}
	return track
}

func TestSaveTrackRoundTrip(t *testing.T) {
	s := testStore(t)

	in := &model.Track{
		ID:                model.UnsavedID,
		FolderID:          0,
		Filepath:          "/music/a.flac",
		FileSizeBytes:     123456,
		LastModifiedFs:    1700000000000,
		DateAdded:         1700000001000,
		LastScanned:       1700000002000,
		Title:             "One More Time",
		ArtistName:        "Daft Punk",
		AlbumTitle:        "Discovery",
		AlbumArtistName:   "Daft Punk",
		TrackNumber:       1,
		DiscNumber:        1,
		Year:              2001,
		DurationMs:        320000,
		SampleRate:        44100,
		Channels:          2,
		Bitrate:           1024000,
		CodecName:         "flac",
		Bpm:               123000,
		IntroEndMs:        8000,
		OutroStartMs:      300000,
		KeyString:         "8A",
		BeatLocationsJSON: `[0,488]`,
		Rating:            5,
		LikedStatus:       1,
		PlayCount:         7,
		LastPlayed:        1700000003000,
		ContentHash:       "abc123",
		UserNotes:         "opener",
		IsMissing:         false,
	}

	if err := s.Tracks.SaveTrack(in, nil); err != nil {
		t.Fatalf("SaveTrack: %v", err)
	}
	if in.ID <= 0 {
		t.Fatalf("insert did not assign an id, got %d", in.ID)
	}

	got, err := s.Tracks.GetTrackByID(in.ID)
	if err != nil {
		t.Fatalf("GetTrackByID: %v", err)
	}
	if got == nil {
		t.Fatal("GetTrackByID returned nil for a saved track")
	}
	if !reflect.DeepEqual(got, in) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, in)
	}

	byPath, err := s.Tracks.GetTrackByFilepath("/music/a.flac")
	if err != nil {
		t.Fatalf("GetTrackByFilepath: %v", err)
	}
	if byPath == nil || byPath.ID != in.ID {
		t.Error("GetTrackByFilepath did not find the saved track")
	}
}

func TestSaveTrackUpdate(t *testing.T) {
	s := testStore(t)
	track := mustSave(t, s, newTrack("/music/a.flac", "Old", "Artist"))

	track.Title = "New"
	track.Rating = 4
	if err := s.Tracks.SaveTrack(track, nil); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := s.Tracks.GetTrackByID(track.ID)
	if err != nil {
		t.Fatalf("GetTrackByID: %v", err)
	}
	if got.Title != "New" || got.Rating != 4 {
		t.Errorf("update not persisted: %+v", got)
	}

	ghost := newTrack("/music/ghost.flac", "Ghost", "")
	ghost.ID = 99999
	err = s.Tracks.SaveTrack(ghost, nil)
	if StatusOf(err) != ErrorNotFound {
		t.Errorf("updating a missing track: status %v, want ErrorNotFound", StatusOf(err))
	}
}

func TestSaveTrackWithoutFolder(t *testing.T) {
	s := testStore(t)

	// A zero FolderID means the track belongs to no folder; the row must
	// not point at a folder id that cannot exist.
	track := newTrack("/music/loose.flac", "Loose", "")
	if err := s.Tracks.SaveTrack(track, nil); err != nil {
		t.Fatalf("SaveTrack without folder: %v", err)
	}

	got, err := s.Tracks.GetTrackByID(track.ID)
	if err != nil {
		t.Fatalf("GetTrackByID: %v", err)
	}
	if got.FolderID != 0 {
		t.Errorf("FolderID = %d, want 0", got.FolderID)
	}

	// A non-zero FolderID must reference a real folder row.
	orphan := newTrack("/music/orphan.flac", "Orphan", "")
	orphan.FolderID = 99999
	err = s.Tracks.SaveTrack(orphan, nil)
	if StatusOf(err) != ErrorConstraintFailed {
		t.Errorf("dangling folder id: status %v, want ErrorConstraintFailed", StatusOf(err))
	}
}

func TestGetTrackAbsentIsNilNil(t *testing.T) {
	s := testStore(t)

	track, err := s.Tracks.GetTrackByID(42)
	if err != nil || track != nil {
		t.Errorf("GetTrackByID(42) = (%v, %v), want (nil, nil)", track, err)
	}
	track, err = s.Tracks.GetTrackByFilepath("/nope")
	if err != nil || track != nil {
		t.Errorf("GetTrackByFilepath = (%v, %v), want (nil, nil)", track, err)
	}
}

func TestSaveTrackDuplicatePath(t *testing.T) {
	s := testStore(t)
	mustSave(t, s, newTrack("/music/a.flac", "A", ""))

	err := s.Tracks.SaveTrack(newTrack("/music/a.flac", "B", ""), nil)
	if StatusOf(err) != ErrorAlreadyExists {
		t.Errorf("duplicate filepath: status %v, want ErrorAlreadyExists", StatusOf(err))
	}
	if s.LastError() == "" {
		t.Error("LastError is empty after a failed save")
	}
}

func TestGetTracksSearchSemantics(t *testing.T) {
	s := testStore(t)
	mustSave(t, s, newTrack("/music/daft/one.flac", "One More Time", "Daft Punk"))
	mustSave(t, s, newTrack("/music/daft/two.flac", "Aerodynamic", "Daft Punk"))
	mustSave(t, s, newTrack("/music/other/three.flac", "One Time", "Justice"))

	// A term matches title, artist, album or filepath, case-insensitively.
	got, err := s.Tracks.GetTracks(&QueryArgs{SearchTerms: []string{"DAFT"}})
	if err != nil {
		t.Fatalf("GetTracks: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("search 'DAFT' matched %d tracks, want 2", len(got))
	}

	// Multiple terms are ANDed.
	got, err = s.Tracks.GetTracks(&QueryArgs{SearchTerms: []string{"one", "daft"}})
	if err != nil {
		t.Fatalf("GetTracks: %v", err)
	}
	if len(got) != 1 || got[0].Title != "One More Time" {
		t.Errorf("search 'one daft' returned %d tracks", len(got))
	}

	// LIKE wildcards in terms are literal.
	got, err = s.Tracks.GetTracks(&QueryArgs{SearchTerms: []string{"100%"}})
	if err != nil {
		t.Fatalf("GetTracks: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("search '100%%' matched %d tracks, want 0", len(got))
	}

	count, err := s.Tracks.GetTotalTrackCount(&QueryArgs{SearchTerms: []string{"one"}})
	if err != nil {
		t.Fatalf("GetTotalTrackCount: %v", err)
	}
	if count != 2 {
		t.Errorf("count for 'one' = %d, want 2", count)
	}
}

func TestGetTracksSortAndPaging(t *testing.T) {
	s := testStore(t)
	mustSave(t, s, newTrack("/music/b.flac", "beta", ""))
	mustSave(t, s, newTrack("/music/a.flac", "Alpha", ""))
	mustSave(t, s, newTrack("/music/c.flac", "charlie", ""))

	got, err := s.Tracks.GetTracks(&QueryArgs{SortBy: []SortColumn{{Column: "title"}}})
	if err != nil {
		t.Fatalf("GetTracks: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d tracks", len(got))
	}
	// Case-insensitive sort: Alpha, beta, charlie.
	if got[0].Title != "Alpha" || got[1].Title != "beta" || got[2].Title != "charlie" {
		t.Errorf("sort order: %q, %q, %q", got[0].Title, got[1].Title, got[2].Title)
	}

	desc, err := s.Tracks.GetTracks(&QueryArgs{SortBy: []SortColumn{{Column: "title", Descending: true}}})
	if err != nil {
		t.Fatalf("GetTracks desc: %v", err)
	}
	if desc[0].Title != "charlie" {
		t.Errorf("descending sort starts with %q", desc[0].Title)
	}

	// A page offset must be a multiple of the page size.
	_, err = s.Tracks.GetTracks(&QueryArgs{Paged: true, Offset: 5})
	if StatusOf(err) != ErrorConstraintFailed {
		t.Errorf("bad offset: status %v, want ErrorConstraintFailed", StatusOf(err))
	}

	page, err := s.Tracks.GetTracks(&QueryArgs{Paged: true, Offset: 0})
	if err != nil {
		t.Fatalf("paged GetTracks: %v", err)
	}
	if len(page) != 3 {
		t.Errorf("first page has %d tracks, want 3", len(page))
	}
	empty, err := s.Tracks.GetTracks(&QueryArgs{Paged: true, Offset: PageSize})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("second page has %d tracks, want 0", len(empty))
	}
}

func TestTrackFieldUpdates(t *testing.T) {
	s := testStore(t)
	track := mustSave(t, s, newTrack("/music/a.flac", "A", ""))

	if err := s.Tracks.UpdateRating(track.ID, 3); err != nil {
		t.Fatalf("UpdateRating: %v", err)
	}
	if err := s.Tracks.UpdateLikedStatus(track.ID, 1); err != nil {
		t.Fatalf("UpdateLikedStatus: %v", err)
	}
	if err := s.Tracks.IncrementPlayCount(track.ID); err != nil {
		t.Fatalf("IncrementPlayCount: %v", err)
	}
	if err := s.Tracks.UpdateUserNotes(track.ID, "peak time"); err != nil {
		t.Fatalf("UpdateUserNotes: %v", err)
	}
	if err := s.Tracks.UpdateMissingFlag(track.ID, true); err != nil {
		t.Fatalf("UpdateMissingFlag: %v", err)
	}

	got, err := s.Tracks.GetTrackByID(track.ID)
	if err != nil {
		t.Fatalf("GetTrackByID: %v", err)
	}
	if got.Rating != 3 || got.LikedStatus != 1 || got.PlayCount != 1 ||
		got.UserNotes != "peak time" || !got.IsMissing {
		t.Errorf("updates not persisted: %+v", got)
	}
	if got.LastPlayed == 0 {
		t.Error("IncrementPlayCount did not stamp last_played")
	}

	if err := s.Tracks.UpdateRating(99999, 3); StatusOf(err) != ErrorNotFound {
		t.Errorf("UpdateRating on missing track: status %v", StatusOf(err))
	}
}

func TestTags(t *testing.T) {
	s := testStore(t)
	track := mustSave(t, s, newTrack("/music/a.flac", "A", ""))

	id1, err := s.Tags.GetOrCreateTagID("House", true)
	if err != nil {
		t.Fatalf("GetOrCreateTagID: %v", err)
	}
	// Case-insensitive: the same tag, not a new one.
	id2, err := s.Tags.GetOrCreateTagID("house", true)
	if err != nil {
		t.Fatalf("GetOrCreateTagID lowercase: %v", err)
	}
	if id1 != id2 {
		t.Errorf("case-insensitive lookup created a second tag: %d vs %d", id1, id2)
	}

	if _, err := s.Tags.GetOrCreateTagID("Techno", false); StatusOf(err) != ErrorNotFound {
		t.Errorf("missing tag without create: status %v, want ErrorNotFound", StatusOf(err))
	}

	id3, err := s.Tags.GetOrCreateTagID("Techno", true)
	if err != nil {
		t.Fatalf("GetOrCreateTagID: %v", err)
	}

	if err := s.Tags.UpdateTrackTags(track.ID, []int64{id1, id3}); err != nil {
		t.Fatalf("UpdateTrackTags: %v", err)
	}
	got, err := s.Tags.GetTrackTags(track.ID)
	if err != nil {
		t.Fatalf("GetTrackTags: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("track has %d tags, want 2", len(got))
	}

	// Replacement, not accumulation.
	if err := s.Tags.UpdateTrackTags(track.ID, []int64{id3}); err != nil {
		t.Fatalf("UpdateTrackTags replace: %v", err)
	}
	got, err = s.Tags.GetTrackTags(track.ID)
	if err != nil {
		t.Fatalf("GetTrackTags: %v", err)
	}
	if len(got) != 1 || got[0] != id3 {
		t.Errorf("replacement left tags %v, want [%d]", got, id3)
	}

	tags, err := s.Tags.ListTags()
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	if len(tags) != 2 {
		t.Errorf("ListTags returned %d tags, want 2", len(tags))
	}
}

func TestMixLifecycle(t *testing.T) {
	s := testStore(t)
	a := mustSave(t, s, newTrack("/music/a.flac", "A", ""))
	b := mustSave(t, s, newTrack("/music/b.flac", "B", ""))

	mix := &model.Mix{Name: "Friday"}
	tracks := []model.MixTrack{
		{TrackID: a.ID, OrderInMix: 0, MixStartTimeMs: 0, CutoffTimeMs: 30000,
			VolumeStart: 1000, VolumeEnd: 1000,
			Envelope: []model.EnvelopePoint{{TimeMs: 0, Volume: 0}, {TimeMs: 5000, Volume: 1000}}},
		{TrackID: b.ID, OrderInMix: 1, MixStartTimeMs: 25000, CutoffTimeMs: 30000,
			VolumeStart: 1000, VolumeEnd: 1000},
	}
	if err := s.Mixes.CreateOrUpdateMix(mix, tracks); err != nil {
		t.Fatalf("CreateOrUpdateMix: %v", err)
	}
	if mix.ID <= 0 {
		t.Fatal("create did not assign a mix id")
	}
	if mix.TrackCount != 2 || mix.TotalLengthMs != 55000 {
		t.Errorf("derived totals: count %d, length %d; want 2, 55000", mix.TrackCount, mix.TotalLengthMs)
	}

	got, err := s.Mixes.GetMixByID(mix.ID)
	if err != nil {
		t.Fatalf("GetMixByID: %v", err)
	}
	if got == nil || got.Name != "Friday" || got.TotalLengthMs != 55000 {
		t.Errorf("stored header: %+v", got)
	}

	children, err := s.Mixes.GetMixTracks(mix.ID)
	if err != nil {
		t.Fatalf("GetMixTracks: %v", err)
	}
	if len(children) != 2 {
		t.Fatalf("mix has %d tracks, want 2", len(children))
	}
	if children[0].TrackID != a.ID || children[1].TrackID != b.ID {
		t.Error("children not ordered by order_in_mix")
	}
	if len(children[0].Envelope) != 2 || children[0].Envelope[1].Volume != 1000 {
		t.Errorf("envelope did not survive the round trip: %+v", children[0].Envelope)
	}
	if len(children[1].Envelope) != 0 {
		t.Errorf("empty envelope came back with %d points", len(children[1].Envelope))
	}

	// An update replaces the child rows.
	if err := s.Mixes.CreateOrUpdateMix(mix, tracks[:1]); err != nil {
		t.Fatalf("update: %v", err)
	}
	children, err = s.Mixes.GetMixTracks(mix.ID)
	if err != nil {
		t.Fatalf("GetMixTracks: %v", err)
	}
	if len(children) != 1 {
		t.Errorf("after update the mix has %d tracks, want 1", len(children))
	}
	if mix.TrackCount != 1 || mix.TotalLengthMs != 30000 {
		t.Errorf("totals after update: count %d, length %d", mix.TrackCount, mix.TotalLengthMs)
	}

	summaries, err := s.Mixes.GetMixes(&QueryArgs{SearchTerms: []string{"fri"}})
	if err != nil {
		t.Fatalf("GetMixes: %v", err)
	}
	if len(summaries) != 1 || summaries[0].TrackCount != 1 {
		t.Errorf("summaries: %+v", summaries)
	}

	if err := s.Mixes.RemoveMix(mix.ID); err != nil {
		t.Fatalf("RemoveMix: %v", err)
	}
	children, err = s.Mixes.GetMixTracks(mix.ID)
	if err != nil {
		t.Fatalf("GetMixTracks after remove: %v", err)
	}
	if len(children) != 0 {
		t.Errorf("cascade left %d child rows", len(children))
	}
	if err := s.Mixes.RemoveMix(mix.ID); StatusOf(err) != ErrorNotFound {
		t.Errorf("double remove: status %v, want ErrorNotFound", StatusOf(err))
	}
	// The participating tracks survive the mix.
	if got, _ := s.Tracks.GetTrackByID(a.ID); got == nil {
		t.Error("removing the mix deleted a library track")
	}
}

func TestCreateOrUpdateMixIdempotent(t *testing.T) {
	s := testStore(t)
	a := mustSave(t, s, newTrack("/music/a.flac", "A", ""))

	mix := &model.Mix{Name: "loop"}
	tracks := []model.MixTrack{
		{TrackID: a.ID, OrderInMix: 0, MixStartTimeMs: 0, CutoffTimeMs: 30000,
			VolumeStart: 1000, VolumeEnd: 1000},
	}
	if err := s.Mixes.CreateOrUpdateMix(mix, tracks); err != nil {
		t.Fatalf("first save: %v", err)
	}
	id := mix.ID

	// Saving the same content again changes nothing but the timestamp.
	if err := s.Mixes.CreateOrUpdateMix(mix, tracks); err != nil {
		t.Fatalf("second save: %v", err)
	}
	if mix.ID != id {
		t.Errorf("resave changed the id: %d -> %d", id, mix.ID)
	}
	if mix.TrackCount != 1 || mix.TotalLengthMs != 30000 {
		t.Errorf("resave changed the totals: count %d, length %d", mix.TrackCount, mix.TotalLengthMs)
	}
	children, err := s.Mixes.GetMixTracks(id)
	if err != nil {
		t.Fatalf("GetMixTracks: %v", err)
	}
	if len(children) != 1 || children[0].TrackID != a.ID {
		t.Errorf("resave changed the children: %+v", children)
	}
}

func TestMixDuplicateName(t *testing.T) {
	s := testStore(t)

	if err := s.Mixes.CreateOrUpdateMix(&model.Mix{Name: "Friday"}, nil); err != nil {
		t.Fatalf("CreateOrUpdateMix: %v", err)
	}
	err := s.Mixes.CreateOrUpdateMix(&model.Mix{Name: "friday"}, nil)
	if StatusOf(err) != ErrorAlreadyExists {
		t.Errorf("duplicate name: status %v, want ErrorAlreadyExists", StatusOf(err))
	}
}

func TestWorkingSets(t *testing.T) {
	s := testStore(t)
	a := mustSave(t, s, newTrack("/music/a.flac", "Alpha", "Daft Punk"))
	b := mustSave(t, s, newTrack("/music/b.flac", "Beta", "Daft Punk"))
	c := mustSave(t, s, newTrack("/music/c.flac", "Gamma", "Justice"))

	ws, err := s.WorkingSets.CreateWorkingSetFromTrackIDs([]int64{a.ID, b.ID}, "picks")
	if err != nil {
		t.Fatalf("CreateWorkingSetFromTrackIDs: %v", err)
	}
	if ws.ID <= 0 {
		t.Fatal("working set has no id")
	}

	members, err := s.Tracks.GetTracks(&QueryArgs{WorkingSetID: ws.ID})
	if err != nil {
		t.Fatalf("GetTracks by working set: %v", err)
	}
	if len(members) != 2 {
		t.Errorf("working set has %d members, want 2", len(members))
	}

	if err := s.WorkingSets.AddToWorkingSet(ws.ID, c.ID, c.ID); err != nil {
		t.Fatalf("AddToWorkingSet: %v", err)
	}
	if err := s.WorkingSets.RemoveFromWorkingSet(ws.ID, a.ID); err != nil {
		t.Fatalf("RemoveFromWorkingSet: %v", err)
	}
	members, err = s.Tracks.GetTracks(&QueryArgs{WorkingSetID: ws.ID})
	if err != nil {
		t.Fatalf("GetTracks: %v", err)
	}
	if len(members) != 2 {
		t.Errorf("after add/remove the set has %d members, want 2", len(members))
	}

	fromQuery, err := s.WorkingSets.CreateWorkingSetFromQuery(
		&QueryArgs{SearchTerms: []string{"daft"}}, "daft only")
	if err != nil {
		t.Fatalf("CreateWorkingSetFromQuery: %v", err)
	}
	members, err = s.Tracks.GetTracks(&QueryArgs{WorkingSetID: fromQuery.ID})
	if err != nil {
		t.Fatalf("GetTracks: %v", err)
	}
	if len(members) != 2 {
		t.Errorf("query-built set has %d members, want 2", len(members))
	}

	sets, err := s.WorkingSets.ListWorkingSets()
	if err != nil {
		t.Fatalf("ListWorkingSets: %v", err)
	}
	if len(sets) != 2 {
		t.Errorf("ListWorkingSets returned %d sets", len(sets))
	}

	if err := s.WorkingSets.RemoveWorkingSet(ws.ID); err != nil {
		t.Fatalf("RemoveWorkingSet: %v", err)
	}
	if err := s.WorkingSets.RemoveWorkingSet(ws.ID); StatusOf(err) != ErrorNotFound {
		t.Errorf("double remove: status %v, want ErrorNotFound", StatusOf(err))
	}
	// Membership rows are gone, the tracks stay.
	if got, _ := s.Tracks.GetTrackByID(a.ID); got == nil {
		t.Error("removing the working set deleted a library track")
	}
}

func TestFolderCascade(t *testing.T) {
	s := testStore(t)

	folder := &model.Folder{FsPath: "/music/incoming"}
	if err := s.Folders.CreateFolder(folder); err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}
	if folder.ID <= 0 {
		t.Fatal("folder has no id")
	}

	track := newTrack("/music/incoming/a.flac", "A", "")
	track.FolderID = folder.ID
	mustSave(t, s, track)

	got, err := s.Folders.GetFolderByPath("/music/incoming")
	if err != nil {
		t.Fatalf("GetFolderByPath: %v", err)
	}
	if got == nil || got.ID != folder.ID {
		t.Error("GetFolderByPath did not find the folder")
	}
	if absent, err := s.Folders.GetFolderByPath("/nope"); err != nil || absent != nil {
		t.Errorf("absent folder = (%v, %v), want (nil, nil)", absent, err)
	}

	folder.NumFiles = 1
	folder.TotalBytes = 1000
	folder.LastScanned = 1700000000000
	if err := s.Folders.UpdateFolder(folder); err != nil {
		t.Fatalf("UpdateFolder: %v", err)
	}
	got, err = s.Folders.GetFolderByID(folder.ID)
	if err != nil {
		t.Fatalf("GetFolderByID: %v", err)
	}
	if got.NumFiles != 1 || got.TotalBytes != 1000 {
		t.Errorf("UpdateFolder not persisted: %+v", got)
	}

	// Removing the folder cascades to its tracks.
	if err := s.Folders.RemoveFolder(folder.ID); err != nil {
		t.Fatalf("RemoveFolder: %v", err)
	}
	orphan, err := s.Tracks.GetTrackByID(track.ID)
	if err != nil {
		t.Fatalf("GetTrackByID: %v", err)
	}
	if orphan != nil {
		t.Error("folder removal did not cascade to the track")
	}

	if err := s.Folders.RemoveFolder(folder.ID); StatusOf(err) != ErrorNotFound {
		t.Errorf("double remove: status %v, want ErrorNotFound", StatusOf(err))
	}
}

func TestRunMaintenance(t *testing.T) {
	s := testStore(t)
	mustSave(t, s, newTrack("/music/a.flac", "A", ""))

	if err := s.RunMaintenance(nil); err != nil {
		t.Fatalf("RunMaintenance: %v", err)
	}
}
