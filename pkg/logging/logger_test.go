package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, fileLogging bool) *Service {
	t.Helper()
	svc, err := New(Config{
		Dir:                t.TempDir(),
		ConsoleLevel:       logrus.ErrorLevel, // keep test output quiet
		FileLoggingEnabled: fileLogging,
	})
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc
}

func categoryFile(svc *Service, category Category) string {
	day := time.Now().UTC().Format("2006-01-02")
	return filepath.Join(svc.cfg.Dir, string(category)+"-"+day+".log")
}

func TestErrorsAlwaysReachFile(t *testing.T) {
	svc := newTestService(t, false)

	svc.Error(CategoryAuth, "token exchange failed", Fields{"subject": "auth0|123"})

	data, err := os.ReadFile(categoryFile(svc, CategoryAuth))
	require.NoError(t, err)
	assert.Contains(t, string(data), "[ERROR] [AUTH] token exchange failed")
	assert.Contains(t, string(data), "subject=auth0|123")
}

func TestInfoSkipsFileUnlessEnabled(t *testing.T) {
	svc := newTestService(t, false)
	svc.Info(CategoryAPI, "request served", nil)
	_, err := os.Stat(categoryFile(svc, CategoryAPI))
	assert.True(t, os.IsNotExist(err), "INFO must not create a file when file logging is off")

	svc = newTestService(t, true)
	svc.Info(CategoryAPI, "request served", nil)
	data, err := os.ReadFile(categoryFile(svc, CategoryAPI))
	require.NoError(t, err)
	assert.Contains(t, string(data), "[INFO] [API] request served")
}

func TestCategoriesGetSeparateFiles(t *testing.T) {
	svc := newTestService(t, false)

	svc.Warn(CategoryDashboard, "denied dashboard access", nil)
	svc.Warn(CategorySystem, "cache cleanup slow", nil)

	for _, category := range []Category{CategoryDashboard, CategorySystem} {
		_, err := os.Stat(categoryFile(svc, category))
		assert.NoError(t, err, "category %s must have its own file", category)
	}
}

// A disk fault must never propagate to the caller.
func TestWriteFailureDoesNotPanicOrError(t *testing.T) {
	svc := newTestService(t, false)
	// Point the service at a directory that no longer exists.
	require.NoError(t, os.RemoveAll(svc.cfg.Dir))

	assert.NotPanics(t, func() {
		svc.Error(CategorySystem, "entry during disk fault", nil)
	})
}
