package store

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/simon/scenecast/internal/playback"
	"github.com/simon/scenecast/internal/scene"
)

func testSession(t *testing.T) *playback.Session {
	t.Helper()
	sc := scene.New("demo")
	sc.Steps = []scene.Step{{Kind: scene.StepCommand, Text: "echo hi"}}
	sess, err := playback.NewSession(sc, 42)
	if err != nil {
		t.Fatal(err)
	}
	sess.Transcript.Append(playback.EntryInput, "e")
	sess.Transcript.Append(playback.EntryOutput, "e")
	sess.StepIndex = 0
	sess.Cursor = 1
	sess.Status = playback.StatusPaused
	return sess
}

func TestSnapshotRoundTrip(t *testing.T) {
	ss := NewSnapshotStore(t.TempDir())
	sess := testSession(t)

	if err := ss.Write(sess); err != nil {
		t.Fatalf("Write() = %v", err)
	}

	snap, err := ss.Read(sess.ID)
	if err != nil {
		t.Fatalf("Read() = %v", err)
	}

	restored := snap.Restore()
	if restored.ID != sess.ID ||
		restored.SceneName != sess.SceneName ||
		restored.SceneChecksum != sess.SceneChecksum ||
		restored.Seed != sess.Seed ||
		restored.Status != sess.Status ||
		restored.StepIndex != sess.StepIndex ||
		restored.Cursor != sess.Cursor {
		t.Errorf("restored session differs:\nwant %+v\ngot  %+v", sess, restored)
	}

	want := sess.Transcript.Entries()
	got := restored.Transcript.Entries()
	if len(got) != len(want) {
		t.Fatalf("transcript length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Kind != want[i].Kind || got[i].Data != want[i].Data {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSnapshotOverwriteKeepsLatest(t *testing.T) {
	ss := NewSnapshotStore(t.TempDir())
	sess := testSession(t)

	if err := ss.Write(sess); err != nil {
		t.Fatal(err)
	}
	sess.Cursor = 5
	sess.Status = playback.StatusRunning
	if err := ss.Write(sess); err != nil {
		t.Fatal(err)
	}

	snap, err := ss.Read(sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Cursor != 5 || snap.Status != "running" {
		t.Errorf("snapshot = cursor %d status %s, want latest write", snap.Cursor, snap.Status)
	}
}

func TestSnapshotReadMissing(t *testing.T) {
	ss := NewSnapshotStore(t.TempDir())
	if _, err := ss.Read("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Read(missing) = %v, want ErrSessionNotFound", err)
	}
}

func TestSnapshotRemove(t *testing.T) {
	ss := NewSnapshotStore(t.TempDir())
	sess := testSession(t)
	if err := ss.Write(sess); err != nil {
		t.Fatal(err)
	}
	if err := ss.Remove(sess.ID); err != nil {
		t.Fatalf("Remove() = %v", err)
	}
	if err := ss.Remove(sess.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Remove() twice = %v, want ErrSessionNotFound", err)
	}
}

func TestIndexRecordAndList(t *testing.T) {
	ix, err := OpenIndex(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("OpenIndex() = %v", err)
	}
	defer ix.Close()

	now := time.Now()
	for _, row := range []struct{ id, scene, status string }{
		{"20250101000000000-aaaa", "intro", "completed"},
		{"20250102000000000-bbbb", "intro", "paused"},
		{"20250103000000000-cccc", "finale", "failed"},
	} {
		if err := ix.Record(row.id, row.scene, row.status, "/tmp/"+row.id+".json", now); err != nil {
			t.Fatalf("Record(%s) = %v", row.id, err)
		}
	}

	infos, err := ix.List(0)
	if err != nil {
		t.Fatalf("List() = %v", err)
	}
	var ids []string
	for _, info := range infos {
		ids = append(ids, info.ID)
	}
	want := []string{"20250103000000000-cccc", "20250102000000000-bbbb", "20250101000000000-aaaa"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("List() order = %v, want newest first %v", ids, want)
	}

	limited, err := ix.List(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 {
		t.Errorf("List(2) returned %d rows", len(limited))
	}
}

func TestIndexRecordUpsert(t *testing.T) {
	ix, err := OpenIndex(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer ix.Close()

	if err := ix.Record("s1", "intro", "running", "/tmp/s1.json", time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := ix.Record("s1", "intro", "completed", "/tmp/s1.json", time.Now()); err != nil {
		t.Fatal(err)
	}

	infos, err := ix.List(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 1 || infos[0].Status != "completed" {
		t.Errorf("upsert produced %+v, want single completed row", infos)
	}
}

func TestIndexResumable(t *testing.T) {
	ix, err := OpenIndex(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer ix.Close()

	now := time.Now()
	_ = ix.Record("a", "s", "completed", "", now)
	_ = ix.Record("b", "s", "paused", "", now)
	_ = ix.Record("c", "s", "running", "", now)
	_ = ix.Record("d", "s", "aborted", "", now)

	infos, err := ix.Resumable(0)
	if err != nil {
		t.Fatalf("Resumable() = %v", err)
	}
	var ids []string
	for _, info := range infos {
		ids = append(ids, info.ID)
	}
	want := []string{"c", "b"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("Resumable() = %v, want %v", ids, want)
	}
}

func TestIndexDelete(t *testing.T) {
	ix, err := OpenIndex(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer ix.Close()

	if err := ix.Record("gone", "s", "completed", "", time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := ix.Delete("gone"); err != nil {
		t.Fatalf("Delete() = %v", err)
	}
	if err := ix.Delete("gone"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Delete() twice = %v, want ErrSessionNotFound", err)
	}
}
