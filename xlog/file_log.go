package xlog

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/benz9527/xtree/lib/infra"
	"go.uber.org/zap/zapcore"
)

var (
	_ zapcore.WriteSyncer = (*fileLog)(nil)
	_ io.Closer           = (*fileLog)(nil)
)

var errLogFileIsDir = errors.New("[XLogger] log file is a dir")

// fileLog appends the logs to a single file. The file and its
// parent dirs are created on the first write.
type fileLog struct {
	filePath    string
	filename    string
	lock        sync.Mutex
	currentFile *os.File
}

func (log *fileLog) Write(p []byte) (n int, err error) {
	log.lock.Lock()
	defer log.lock.Unlock()

	if log.currentFile == nil {
		if err := log.openOrCreate(); err != nil {
			return 0, err
		}
	}
	return log.currentFile.Write(p)
}

func (log *fileLog) Sync() error {
	log.lock.Lock()
	defer log.lock.Unlock()

	if log.currentFile == nil {
		return nil
	}
	return log.currentFile.Sync()
}

func (log *fileLog) Close() error {
	log.lock.Lock()
	defer log.lock.Unlock()

	if log.currentFile == nil {
		return nil
	}
	if err := log.currentFile.Close(); err != nil {
		return err
	}
	log.currentFile = nil
	return nil
}

func (log *fileLog) openOrCreate() error {
	if err := os.MkdirAll(log.filePath, 0o755); err != nil {
		return infra.WrapErrorStack(err, "unable to create log dir: "+log.filePath)
	}

	pathToLog := filepath.Join(log.filePath, log.filename)
	info, err := os.Stat(pathToLog)
	if os.IsNotExist(err) {
		return log.create(pathToLog)
	} else if err != nil {
		return infra.WrapErrorStack(err, "unable to stat log file: "+pathToLog)
	}

	if info.IsDir() {
		return infra.WrapErrorStack(errLogFileIsDir, pathToLog)
	}

	f, err := os.OpenFile(pathToLog, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return infra.WrapErrorStack(err, "failed to open an exists log file: "+pathToLog)
	}
	log.currentFile = f
	return nil
}

func (log *fileLog) create(pathToLog string) error {
	f, err := os.OpenFile(pathToLog, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return infra.WrapErrorStack(err, "unable to create new log file: "+pathToLog)
	}
	log.currentFile = f
	return nil
}

func newFileLog(pathToLog string) *fileLog {
	return &fileLog{
		filePath: filepath.Dir(pathToLog),
		filename: filepath.Base(pathToLog),
	}
}
