package scheduler

import (
	"github.com/aristath/riskalloc/internal/database"
	"github.com/rs/zerolog"
)

// walTruncateThreshold is the WAL size in frames above which the job
// truncates the log instead of only reporting it.
const walTruncateThreshold = 1000

// CheckWALCheckpointsJob checkpoints the settings database so its WAL does
// not grow between restarts.
type CheckWALCheckpointsJob struct {
	log      zerolog.Logger
	configDB *database.DB
}

// NewCheckWALCheckpointsJob creates a new CheckWALCheckpointsJob
func NewCheckWALCheckpointsJob(configDB *database.DB, log zerolog.Logger) *CheckWALCheckpointsJob {
	return &CheckWALCheckpointsJob{
		log:      log.With().Str("job", "check_wal_checkpoints").Logger(),
		configDB: configDB,
	}
}

// Name returns the job name
func (j *CheckWALCheckpointsJob) Name() string {
	return "check_wal_checkpoints"
}

// Run executes a passive checkpoint and truncates the WAL when it is large
func (j *CheckWALCheckpointsJob) Run() error {
	if j.configDB == nil {
		return nil
	}

	status, err := j.configDB.WALCheckpoint("PASSIVE")
	if err != nil {
		return err
	}

	if status.Frames <= walTruncateThreshold {
		j.log.Debug().
			Str("database", j.configDB.Name()).
			Int("wal_frames", status.Frames).
			Msg("WAL checkpoint status OK")
		return nil
	}

	j.log.Warn().
		Str("database", j.configDB.Name()).
		Int("wal_frames", status.Frames).
		Int("checkpointed", status.Checkpointed).
		Msg("WAL file is large, truncating")

	if _, err := j.configDB.WALCheckpoint("TRUNCATE"); err != nil {
		return err
	}
	return nil
}
