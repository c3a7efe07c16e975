package main

import (
	"encoding/json"
	"net/http"

	"github.com/nmxmxh/region/kernel/utils"
	"github.com/nmxmxh/region/kernel/zone"
)

// snapshotHandler takes a copy-on-write snapshot of the store, commits it
// back immediately, and reports the snapshot ID that named the run. This
// handler is the only place regiond takes snapshots.
func snapshotHandler(logger *utils.Logger, store *zone.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST only", http.StatusMethodNotAllowed)
			return
		}

		id := utils.NewSnapshotID()
		snap, err := store.Snapshot()
		if err != nil {
			logger.Error("snapshot failed", utils.String("snapshot_id", id), utils.Err(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer snap.Close()

		if err := snap.Commit(); err != nil {
			logger.Error("snapshot commit failed", utils.String("snapshot_id", id), utils.Err(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		logger.Info("snapshot committed", utils.String("snapshot_id", id))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"snapshot_id": id})
	}
}
