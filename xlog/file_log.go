package xlog

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/safearchive/zip"
	"github.com/google/safeopen"
	"go.uber.org/multierr"

	"github.com/benz9527/xbst/lib/infra"
)

type fileSizeUnit uint64

const (
	B fileSizeUnit = 1 << (10 * iota)
	KB
	MB
	_maxFileSize = 1024 * MB
)

const backupTimeFormat = "2006_01_02T15_04_05.000000000"

var fileSizeRegexp = regexp.MustCompile(`^(\d+)(([kK]|[mM])?[bB])$`)

var ErrXLoggerFileClosed = errors.New("[XLogger] file log closed")

func parseFileSize(size string) (uint64, error) {
	res := fileSizeRegexp.FindStringSubmatch(size)
	if len(res) < 3 {
		return 0, infra.NewErrorStack("invalid file size <" + size + ">")
	}
	unit := B
	switch strings.ToUpper(res[2]) {
	case "KB":
		unit = KB
	case "MB":
		unit = MB
	default:
	}
	n, err := strconv.ParseUint(res[1], 10, 64)
	if err != nil || n == 0 {
		return 0, infra.NewErrorStack("invalid file size <" + size + ">")
	}
	return min(n*uint64(unit), uint64(_maxFileSize)), nil
}

type FileLogConfig struct {
	Dir      string `json:"dir" yaml:"dir"`
	Filename string `json:"filename" yaml:"filename"`
	// MaxSize like "512KB" or "10MB". Empty disables the rotation.
	MaxSize    string `json:"maxSize" yaml:"maxSize"`
	MaxBackups int    `json:"maxBackups" yaml:"maxBackups"`
	// Compress moves the pruned backups into a single zip
	// instead of removing them.
	Compress bool `json:"compress" yaml:"compress"`
}

var _ io.WriteCloser = (*fileLog)(nil)

// fileLog appends to Dir/Filename and renames it to a timestamped
// backup once MaxSize is reached. If the file is removed or renamed
// by someone else, the next write recreates it.
type fileLog struct {
	lock       sync.Mutex
	dir        string
	filename   string
	maxSize    uint64
	maxBackups int
	compress   bool
	wroteSize  uint64
	current    *os.File
	watcher    *fsnotify.Watcher
	closed     bool
	closeC     chan struct{}
	doneC      chan struct{}
}

func (log *fileLog) Write(p []byte) (n int, err error) {
	log.lock.Lock()
	defer log.lock.Unlock()
	if log.closed {
		return 0, ErrXLoggerFileClosed
	}
	if log.current == nil {
		if err = log.openOrCreate(); err != nil {
			return 0, err
		}
	}
	n, err = log.current.Write(p)
	log.wroteSize += uint64(n)
	if err != nil || log.maxSize == 0 || log.wroteSize < log.maxSize {
		return n, err
	}
	if err = log.rotate(); err != nil {
		return n, err
	}
	return n, nil
}

func (log *fileLog) Sync() error {
	log.lock.Lock()
	defer log.lock.Unlock()
	if log.current == nil {
		return nil
	}
	return log.current.Sync()
}

func (log *fileLog) Close() error {
	log.lock.Lock()
	if log.closed {
		log.lock.Unlock()
		return nil
	}
	log.closed = true
	close(log.closeC)
	err := log.closeCurrent()
	log.lock.Unlock()

	<-log.doneC
	return multierr.Append(err, log.watcher.Close())
}

func (log *fileLog) closeCurrent() error {
	if log.current == nil {
		return nil
	}
	err := log.current.Close()
	log.current = nil
	return err
}

func (log *fileLog) openOrCreate() error {
	info, err := os.Stat(filepath.Join(log.dir, log.filename))
	if err == nil && info.IsDir() {
		return infra.NewErrorStack("log file <" + filepath.Join(log.dir, log.filename) + "> is a dir")
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return infra.WrapErrorStack(err)
	}
	f, err := safeopen.OpenFileBeneath(log.dir, log.filename, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return infra.WrapErrorStackWithMessage(err, "unable to open log file "+filepath.Join(log.dir, log.filename))
	}
	log.current = f
	log.wroteSize = 0
	if info != nil {
		log.wroteSize = uint64(info.Size())
	}
	return nil
}

func (log *fileLog) backupName(now time.Time) string {
	ext := filepath.Ext(log.filename)
	return strings.TrimSuffix(log.filename, ext) + "_" + now.UTC().Format(backupTimeFormat) + ext
}

func (log *fileLog) rotate() error {
	if err := log.closeCurrent(); err != nil {
		return infra.WrapErrorStackWithMessage(err, "failed to close log file before rotation")
	}
	if err := os.Rename(
		filepath.Join(log.dir, log.filename),
		filepath.Join(log.dir, log.backupName(time.Now())),
	); err != nil {
		return infra.WrapErrorStackWithMessage(err, "failed to rename log file")
	}
	if err := log.openOrCreate(); err != nil {
		return err
	}
	return log.prune()
}

// backups returns the backup files, oldest first.
func (log *fileLog) backups() ([]string, error) {
	entries, err := os.ReadDir(log.dir)
	if err != nil {
		return nil, infra.WrapErrorStack(err)
	}
	ext := filepath.Ext(log.filename)
	prefix := strings.TrimSuffix(log.filename, ext) + "_"
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ext) {
			continue
		}
		ts := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ext)
		if _, err = time.Parse(backupTimeFormat, ts); err != nil {
			continue
		}
		names = append(names, name)
	}
	// The timestamp layout sorts lexically.
	sort.Strings(names)
	return names, nil
}

func (log *fileLog) prune() error {
	if log.maxBackups <= 0 {
		return nil
	}
	names, err := log.backups()
	if err != nil {
		return err
	}
	if len(names) <= log.maxBackups {
		return nil
	}
	redundant := names[:len(names)-log.maxBackups]
	if log.compress {
		return compressLogs(log.dir, log.archiveName(), redundant)
	}
	var merr error
	for _, name := range redundant {
		merr = multierr.Append(merr, os.Remove(filepath.Join(log.dir, name)))
	}
	return merr
}

func (log *fileLog) archiveName() string {
	return strings.TrimSuffix(log.filename, filepath.Ext(log.filename)) + "_archive.zip"
}

func (log *fileLog) watch() {
	defer close(log.doneC)
	for {
		select {
		case <-log.closeC:
			return
		case event, ok := <-log.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != log.filename ||
				!(event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)) {
				continue
			}
			log.lock.Lock()
			// Our own rotation has already reopened it.
			if _, err := os.Stat(filepath.Join(log.dir, log.filename)); errors.Is(err, fs.ErrNotExist) {
				_ = log.closeCurrent()
			}
			log.lock.Unlock()
		case _, ok := <-log.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// compressLogs moves names into dir/zipName, keeping the entries of
// an existing archive.
func compressLogs(dir, zipName string, names []string) error {
	const tmpName = "xlog-tmp.zip"
	tmp, err := safeopen.OpenFileBeneath(dir, tmpName, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return infra.WrapErrorStack(err)
	}
	zw := zip.NewWriter(tmp)

	var merr error
	if prev, err := zip.OpenReader(filepath.Join(dir, zipName)); err == nil {
		prev.SetSecurityMode(prev.GetSecurityMode() | zip.MaximumSecurityMode)
		for _, f := range prev.File {
			merr = multierr.Append(merr, copyZipEntry(zw, f))
		}
		merr = multierr.Append(merr, prev.Close())
	}

	archived := make([]string, 0, len(names))
	for _, name := range names {
		if err := addZipEntry(zw, dir, name); err != nil {
			merr = multierr.Append(merr, err)
			continue
		}
		archived = append(archived, name)
	}
	merr = multierr.Append(merr, zw.Close())
	merr = multierr.Append(merr, tmp.Close())
	if merr != nil {
		_ = os.Remove(filepath.Join(dir, tmpName))
		return merr
	}

	if err = os.Rename(filepath.Join(dir, tmpName), filepath.Join(dir, zipName)); err != nil {
		return infra.WrapErrorStack(err)
	}
	for _, name := range archived {
		merr = multierr.Append(merr, os.Remove(filepath.Join(dir, name)))
	}
	return merr
}

func copyZipEntry(zw *zip.Writer, f *zip.File) error {
	if f.Mode().IsDir() {
		return nil
	}
	r, err := f.Open()
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()
	w, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: f.Method})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, r)
	return err
}

func addZipEntry(zw *zip.Writer, dir, name string) error {
	f, err := safeopen.OpenBeneath(dir, name)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}

// NewFileLog creates cfg.Dir if needed and starts watching it.
// The returned writer must be closed to stop the watcher.
func NewFileLog(cfg *FileLogConfig) (io.WriteCloser, error) {
	if cfg == nil || cfg.Filename == "" {
		return nil, infra.NewErrorStack("[XLogger] empty log filename")
	}
	if filepath.Base(cfg.Filename) != cfg.Filename {
		return nil, infra.NewErrorStack("[XLogger] log filename <" + cfg.Filename + "> contains a dir")
	}
	log := &fileLog{
		dir:        cfg.Dir,
		filename:   cfg.Filename,
		maxBackups: cfg.MaxBackups,
		compress:   cfg.Compress,
		closeC:     make(chan struct{}),
		doneC:      make(chan struct{}),
	}
	if log.dir == "" {
		log.dir = os.TempDir()
	}
	if cfg.MaxSize != "" {
		size, err := parseFileSize(cfg.MaxSize)
		if err != nil {
			return nil, err
		}
		log.maxSize = size
	}
	if err := os.MkdirAll(log.dir, 0o755); err != nil {
		return nil, infra.WrapErrorStack(err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "failed to create file watcher")
	}
	if err = watcher.Add(log.dir); err != nil {
		return nil, multierr.Append(
			infra.WrapErrorStackWithMessage(err, "failed to watch log dir"),
			watcher.Close(),
		)
	}
	log.watcher = watcher
	go log.watch()
	return log, nil
}
