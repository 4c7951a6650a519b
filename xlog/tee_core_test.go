package xlog

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestConsoleAndFileMultiCores_DataRace(t *testing.T) {
	tee := make(xLogMultiCore, 0, 2)

	dir := t.TempDir()
	fl, err := NewFileLog(&FileLogConfig{Dir: dir, Filename: "tee.log"})
	require.NoError(t, err)

	mem := &testMemOutWriter{}
	lvlEnabler := zap.NewAtomicLevelAt(LogLevelDebug.zapLevel())
	tee = append(tee,
		newConsoleCore(JSON, zapcore.AddSync(mem), lvlEnabler, zapcore.CapitalLevelEncoder, zapcore.ISO8601TimeEncoder),
		newFileCore(JSON, zapcore.AddSync(fl), lvlEnabler, zapcore.CapitalLevelEncoder, zapcore.ISO8601TimeEncoder),
	)
	tee2 := tee.withEncoderConfig(componentCoreEncoderCfg)

	var wg sync.WaitGroup
	wg.Add(2)
	for gid, core := range []zapcore.Core{tee, tee2} {
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				ent := zapcore.Entry{Level: zapcore.InfoLevel, Message: "tee write"}
				assert.NoError(t, core.Write(ent, []zap.Field{
					zap.String("id", strconv.Itoa(gid)+"-"+strconv.Itoa(i)),
				}))
			}
		}()
	}
	wg.Wait()
	require.NoError(t, tee.Sync())
	require.NoError(t, tee2.Sync())

	lvlEnabler.SetLevel(zapcore.WarnLevel)
	require.False(t, tee.Enabled(zapcore.InfoLevel))
	require.False(t, tee2.Enabled(zapcore.InfoLevel))
	require.True(t, tee.Enabled(zapcore.ErrorLevel))

	require.NoError(t, fl.Close())
	data, err := os.ReadFile(filepath.Join(dir, "tee.log"))
	require.NoError(t, err)
	require.Len(t, strings.Split(strings.TrimSpace(string(data)), "\n"), 200)
	require.Len(t, mem.lines(), 200)
}
