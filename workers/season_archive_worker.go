package workers

import (
	"context"
	"fmt"
	"log"
	"time"

	"ranked-tournaments/models"

	"gorm.io/gorm"
)

// ArchiveStore uploads a JSON document and returns where it can be fetched.
type ArchiveStore interface {
	PutJSON(ctx context.Context, key string, body []byte) (string, error)
}

// SeasonArchiveWorker ships closed season standings to object storage.
type SeasonArchiveWorker struct {
	DB    *gorm.DB
	Store ArchiveStore
	Now   func() time.Time
}

func NewSeasonArchiveWorker(db *gorm.DB, store ArchiveStore) *SeasonArchiveWorker {
	return &SeasonArchiveWorker{
		DB:    db,
		Store: store,
		Now:   func() time.Time { return time.Now().UTC() },
	}
}

// Start polls for pending archives until ctx is cancelled.
func (w *SeasonArchiveWorker) Start(ctx context.Context, pollInterval time.Duration) {
	log.Println("[ARCHIVE] Starting season archive polling...")
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[ARCHIVE] Season archive polling stopped.")
			return
		case <-ticker.C:
			if _, err := w.UploadPending(ctx); err != nil {
				log.Printf("❌ [ARCHIVE] %v", err)
			}
		}
	}
}

// UploadPending uploads every archive not yet stored and marks it. A failed
// upload is left pending for the next tick.
func (w *SeasonArchiveWorker) UploadPending(ctx context.Context) (int, error) {
	var pending []models.SeasonArchive
	if err := w.DB.WithContext(ctx).
		Where("uploaded_at IS NULL").
		Order("season_month ASC").
		Find(&pending).Error; err != nil {
		return 0, fmt.Errorf("load pending archives: %w", err)
	}

	uploaded := 0
	for _, archive := range pending {
		key := fmt.Sprintf("ranked/seasons/%s/standings.json", archive.SeasonMonth)
		url, err := w.Store.PutJSON(ctx, key, []byte(archive.Standings))
		if err != nil {
			log.Printf("❌ [ARCHIVE] Upload of season %s failed: %v", archive.SeasonMonth, err)
			continue
		}

		now := w.Now()
		if err := w.DB.WithContext(ctx).Model(&models.SeasonArchive{}).
			Where("id = ? AND uploaded_at IS NULL", archive.ID).
			Updates(map[string]interface{}{
				"object_key":  key,
				"url":         url,
				"uploaded_at": now,
			}).Error; err != nil {
			log.Printf("❌ [ARCHIVE] Failed to mark season %s uploaded: %v", archive.SeasonMonth, err)
			continue
		}
		uploaded++
		log.Printf("✅ [ARCHIVE] Uploaded season %s standings to %s", archive.SeasonMonth, url)
	}
	return uploaded, nil
}
