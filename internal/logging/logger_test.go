package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_LevelFiltering(t *testing.T) {
	logger, err := NewLogger("test")
	require.NoError(t, err)

	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.SetLevels(WARN, DEBUG)

	logger.Info("не должно попасть")
	logger.Warn("предупреждение %d", 42)

	out := buf.String()
	assert.NotContains(t, out, "не должно попасть")
	assert.Contains(t, out, "[WARN] [test] предупреждение 42")
}

func TestLogger_EmptyComponent(t *testing.T) {
	_, err := NewLogger("")
	assert.Error(t, err, "Пустое имя компонента должно давать ошибку")
}

func TestLogger_FileSink(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger("filetest")
	require.NoError(t, err)
	logger.SetOutput(&bytes.Buffer{})

	require.NoError(t, logger.EnableFile(dir))
	logger.Debug("в файл")
	require.NoError(t, logger.Close())

	files, err := filepath.Glob(filepath.Join(dir, "filetest_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "[DEBUG] [filetest] в файл")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel(" warning "))
	assert.Equal(t, INFO, ParseLevel("nonsense"))
}

func TestLoggerManager_ComponentLoggers(t *testing.T) {
	lm := &LoggerManager{loggers: make(map[string]*Logger)}
	var buf bytes.Buffer
	lm.SetOutput(&buf)

	a := lm.MustGetLogger("alpha")
	b := lm.MustGetLogger("alpha")
	assert.Same(t, a, b, "Повторный запрос должен вернуть тот же логгер")

	lm.MustGetLogger("beta").Error("сбой")
	assert.Contains(t, buf.String(), "[ERROR] [beta] сбой")
	assert.Equal(t, []string{"alpha", "beta"}, lm.ListComponents())

	assert.Error(t, lm.SetLogLevel("gamma", INFO, INFO))
	assert.NoError(t, lm.SetLogLevel("alpha", ERROR, ERROR))
	assert.NoError(t, lm.CloseAll())
	assert.Empty(t, lm.ListComponents())
}

func TestLoggerManager_Configure(t *testing.T) {
	lm := NewLoggerManager()
	var buf bytes.Buffer
	lm.SetOutput(&buf)

	early := lm.MustGetLogger(ComponentWorld)
	early.Debug("скрыто")
	assert.Empty(t, buf.String(), "по умолчанию DEBUG не выводится")

	require.NoError(t, lm.Configure(DEBUG, ""))
	early.Debug("видно")
	lm.MustGetLogger(ComponentSim).Debug("тоже видно")
	assert.Contains(t, buf.String(), "[DEBUG] [world] видно")
	assert.Contains(t, buf.String(), "[DEBUG] [sim] тоже видно", "настройки применяются к новым логгерам")

	dir := t.TempDir()
	require.NoError(t, lm.Configure(WARN, dir))
	lm.MustGetLogger(ComponentWorldgen).Warn("в файл")
	require.NoError(t, lm.CloseAll())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3, "у каждого компонента свой файл")
}
