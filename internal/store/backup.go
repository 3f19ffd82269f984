package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
)

// ErrInvalidBackup is returned for backup files missing a top-level collection
var ErrInvalidBackup = errors.New("invalid backup file format")

// Backup is the user-facing export file
type Backup struct {
	Videos     []Video         `json:"videos"`
	Schedule   []ScheduleEntry `json:"schedule"`
	Settings   Settings        `json:"settings"`
	Version    int             `json:"version"`
	ExportedAt string          `json:"exportedAt"`
}

// backupFile is the tolerant decode target for ReadBackup
type backupFile struct {
	Videos     *[]persistedVideo  `json:"videos"`
	Schedule   *[]ScheduleEntry   `json:"schedule"`
	Settings   *persistedSettings `json:"settings"`
	Version    *int               `json:"version"`
	ExportedAt string             `json:"exportedAt"`
}

// BackupFileName returns the default export file name for day t
func BackupFileName(t time.Time) string {
	return fmt.Sprintf("workout-planner-backup-%s.json", t.Format("2006-01-02"))
}

// Export snapshots the store for download. The snapshot's settings carry the
// export time; the store itself is unchanged until MarkExported.
func (s *Store) Export() (Backup, error) {
	if !s.Hydrated() {
		return Backup{}, fmt.Errorf("export: %w", ErrNotHydrated)
	}
	exportedAt := s.now().UTC().Format(time.RFC3339Nano)
	st := s.State()
	st.Settings.LastExportedAt = exportedAt
	return Backup{
		Videos:     st.Videos,
		Schedule:   st.Schedule,
		Settings:   st.Settings,
		Version:    CurrentVersion,
		ExportedAt: exportedAt,
	}, nil
}

// MarkExported records a completed export. Call it once the backup has
// been written.
func (s *Store) MarkExported(b Backup) error {
	if err := s.UpdateSettings(SettingsPatch{LastExportedAt: &b.ExportedAt}); err != nil {
		return fmt.Errorf("recording export time: %w", err)
	}
	return nil
}

// WriteBackup writes b as indented JSON
func WriteBackup(w io.Writer, b Backup) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("encoding backup: %w", err)
	}
	return nil
}

// ReadBackup parses a backup file. Files lacking videos, schedule or settings
// are rejected with ErrInvalidBackup. Older versions are migrated.
func ReadBackup(r io.Reader) (*Backup, error) {
	var f backupFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if f.Videos == nil || f.Schedule == nil || f.Settings == nil {
		return nil, ErrInvalidBackup
	}

	version := CurrentVersion
	if f.Version != nil {
		version = *f.Version
	}

	ps := persistedState{
		Videos:   *f.Videos,
		Schedule: *f.Schedule,
		Settings: f.Settings,
	}
	if version < CurrentVersion {
		ps, _ = migrate(ps, version)
	}
	st := ps.toState()

	return &Backup{
		Videos:     st.Videos,
		Schedule:   st.Schedule,
		Settings:   st.Settings,
		Version:    version,
		ExportedAt: f.ExportedAt,
	}, nil
}

// ImportBackup replaces the store contents with b
func (s *Store) ImportBackup(b *Backup) error {
	settings := b.Settings
	if err := s.ImportData(ImportState{
		Videos:   b.Videos,
		Schedule: b.Schedule,
		Settings: &settings,
	}); err != nil {
		return err
	}
	if n := len(s.Orphans()); n > 0 {
		s.logger.Warn("imported schedule references missing videos", zap.Int("orphans", n))
	}
	return nil
}
