package repository_test

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/padelrpm/ranking/internal/adapters/repository"
	"github.com/padelrpm/ranking/internal/domain/movement"
	"github.com/padelrpm/ranking/internal/domain/record"
	. "github.com/smartystreets/goconvey/convey"
)

// sortedRows builds already-sorted records with strictly descending levels.
func sortedRows(names ...string) []record.Record {
	rows := make([]record.Record, len(names))
	for i, n := range names {
		rows[i] = record.New(map[string]string{
			record.NameField:  n,
			record.LevelField: strconv.Itoa(10 - i),
		})
	}
	return rows
}

func openStore(t *testing.T) *repository.SQLStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rank_test.db")
	store, err := repository.New(context.Background(), path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestMeta(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty store", t, func() {
		store := openStore(t)

		Convey("Then an absent key reads as not ok", func() {
			_, ok, err := store.Meta(ctx, "rank_hash:ALL")
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})

		Convey("Then set and read round-trips", func() {
			So(store.SetMeta(ctx, "rank_hash:ALL", "abc"), ShouldBeNil)
			v, ok, err := store.Meta(ctx, "rank_hash:ALL")
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, "abc")
		})

		Convey("Then a second set overwrites (last write wins)", func() {
			So(store.SetMeta(ctx, "rank_hash:ALL", "abc"), ShouldBeNil)
			So(store.SetMeta(ctx, "rank_hash:ALL", "def"), ShouldBeNil)
			v, _, err := store.Meta(ctx, "rank_hash:ALL")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "def")
		})
	})
}

func TestPositions(t *testing.T) {
	ctx := context.Background()

	Convey("Given a store with positions in two scopes", t, func() {
		store := openStore(t)
		So(store.UpsertPositions(ctx, map[movement.Key]int{
			{Scope: "ALL", Player: "ana"}:    1,
			{Scope: "ALL", Player: "benita"}: 2,
			{Scope: "F:A", Player: "ana"}:    1,
		}), ShouldBeNil)

		Convey("Then LastPositions returns everything", func() {
			got, err := store.LastPositions(ctx)
			So(err, ShouldBeNil)
			So(got, ShouldHaveLength, 3)
			So(got[movement.Key{Scope: "ALL", Player: "benita"}], ShouldEqual, 2)
		})

		Convey("Then an upsert updates in place", func() {
			So(store.UpsertPositions(ctx, map[movement.Key]int{
				{Scope: "ALL", Player: "ana"}: 5,
			}), ShouldBeNil)
			got, err := store.LastPositions(ctx)
			So(err, ShouldBeNil)
			So(got, ShouldHaveLength, 3)
			So(got[movement.Key{Scope: "ALL", Player: "ana"}], ShouldEqual, 5)
			// The other scope's entry is untouched.
			So(got[movement.Key{Scope: "F:A", Player: "ana"}], ShouldEqual, 1)
		})

		Convey("Then an empty upsert is a no-op", func() {
			So(store.UpsertPositions(ctx, nil), ShouldBeNil)
		})
	})
}

func TestMovements(t *testing.T) {
	ctx := context.Background()

	Convey("Given a store with movement flags in two scopes", t, func() {
		store := openStore(t)
		So(store.UpsertMovements(ctx, map[movement.Key]movement.Flag{
			{Scope: "ALL", Player: "ana"}:    movement.Up,
			{Scope: "ALL", Player: "benita"}: movement.Down,
			{Scope: "M:3ra", Player: "cruz"}: movement.Same,
		}), ShouldBeNil)

		Convey("Then Movements filters by scope and keys by player", func() {
			got, err := store.Movements(ctx, "ALL")
			So(err, ShouldBeNil)
			So(got, ShouldResemble, map[string]movement.Flag{
				"ana":    movement.Up,
				"benita": movement.Down,
			})
		})

		Convey("Then an unknown scope reads empty", func() {
			got, err := store.Movements(ctx, "F:E")
			So(err, ShouldBeNil)
			So(got, ShouldBeEmpty)
		})

		Convey("Then flags overwrite on conflict", func() {
			So(store.UpsertMovements(ctx, map[movement.Key]movement.Flag{
				{Scope: "ALL", Player: "ana"}: movement.Same,
			}), ShouldBeNil)
			got, err := store.Movements(ctx, "ALL")
			So(err, ShouldBeNil)
			So(got["ana"], ShouldEqual, movement.Same)
		})
	})
}

func TestTrackerAgainstSQLStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given a tracker over the sqlite store", t, func() {
		store := openStore(t)
		tracker := movement.NewTracker(store)

		rows := sortedRows("Ana", "Benita")

		Convey("Then first and second calls behave like the contract", func() {
			flags, _, err := tracker.Track(ctx, rows, "ALL")
			So(err, ShouldBeNil)
			So(flags["ana"], ShouldEqual, movement.None)

			flipped := sortedRows("Benita", "Ana")
			flags, _, err = tracker.Track(ctx, flipped, "ALL")
			So(err, ShouldBeNil)
			So(flags["benita"], ShouldEqual, movement.Up)
			So(flags["ana"], ShouldEqual, movement.Down)
		})
	})
}
