package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/identity/internal/database/codes"
	"github.com/mrlokans/identity/internal/database/sessions"
	"github.com/mrlokans/identity/internal/entities"
)

func setupScheduler(t *testing.T) (*CleanupScheduler, *sessions.Repository, *codes.Repository) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Session{}, &entities.VerificationCode{})
	require.NoError(t, err)

	sessionRepo := sessions.NewRepository(db)
	codeRepo := codes.NewRepository(db)

	return NewCleanupScheduler(sessionRepo, codeRepo), sessionRepo, codeRepo
}

func TestCleanupScheduler_Sweep(t *testing.T) {
	scheduler, sessionRepo, codeRepo := setupScheduler(t)

	now := time.Now()
	expiredSession, err := sessionRepo.Create(1, "agent", now.Add(-time.Hour))
	require.NoError(t, err)
	liveSession, err := sessionRepo.Create(1, "agent", now.Add(time.Hour))
	require.NoError(t, err)

	expiredCode, err := codeRepo.Create(1, entities.CodeTypePasswordReset, now.Add(-time.Hour))
	require.NoError(t, err)
	liveCode, err := codeRepo.Create(1, entities.CodeTypeEmailVerification, now.Add(time.Hour))
	require.NoError(t, err)

	scheduler.Sweep()

	_, err = sessionRepo.GetByID(expiredSession.ID)
	assert.ErrorIs(t, err, sessions.ErrNotFound)
	_, err = sessionRepo.GetByID(liveSession.ID)
	assert.NoError(t, err)

	_, err = codeRepo.GetValid(expiredCode.ID, entities.CodeTypePasswordReset, now.Add(-2*time.Hour))
	assert.ErrorIs(t, err, codes.ErrNotFound)
	_, err = codeRepo.GetValid(liveCode.ID, entities.CodeTypeEmailVerification, now)
	assert.NoError(t, err)
}

func TestCleanupScheduler_StartStop(t *testing.T) {
	scheduler, _, _ := setupScheduler(t)

	err := scheduler.Start("0 * * * *")
	require.NoError(t, err)

	// Starting twice is a no-op.
	err = scheduler.Start("0 * * * *")
	require.NoError(t, err)

	scheduler.Stop()
	// Stopping twice is safe.
	scheduler.Stop()
}

func TestCleanupScheduler_InvalidSchedule(t *testing.T) {
	scheduler, _, _ := setupScheduler(t)

	err := scheduler.Start("not-a-schedule")

	assert.Error(t, err)
}
