package filelock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// ErrTimeout возвращается, если блокировку не удалось получить за отведённое время.
var ErrTimeout = errors.New("lock acquisition timeout")

// Значения по умолчанию.
const (
	DefaultTimeout       = 5 * time.Second
	DefaultRetryInterval = 50 * time.Millisecond
)

// Lock — межпроцессная advisory-блокировка (flock) на файле.
// Файл не удаляется, его содержимое "pid:epochMillis" только для диагностики.
// Ядро снимает блокировку при завершении процесса, поэтому брошенный файл от упавшего
// владельца не мешает следующему запуску.
type Lock struct {
	Path          string
	Timeout       time.Duration
	RetryInterval time.Duration
	Now           func() time.Time
}

// New создаёт блокировку с параметрами по умолчанию.
func New(path string) *Lock {
	return &Lock{
		Path:          path,
		Timeout:       DefaultTimeout,
		RetryInterval: DefaultRetryInterval,
		Now:           time.Now,
	}
}

// Acquire ждёт блокировку не дольше Timeout, опрашивая её каждые RetryInterval.
// Возвращает функцию освобождения.
func (l *Lock) Acquire(ctx context.Context) (func() error, error) {
	if err := os.MkdirAll(filepath.Dir(l.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}

	deadline := l.now().Add(l.Timeout)
	for {
		f, err := l.tryLock()
		if err == nil {
			return func() error { return unlock(f) }, nil
		}
		if !errors.Is(err, errBusy) {
			return nil, err
		}

		if !l.now().Before(deadline) {
			return nil, fmt.Errorf("%w after %s: %s", ErrTimeout, l.Timeout, l.Path)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.RetryInterval):
		}
	}
}

var errBusy = errors.New("lock busy")

func (l *Lock) tryLock() (*os.File, error) {
	f, err := os.OpenFile(l.Path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = f.Close()
		if errors.Is(err, syscall.EWOULDBLOCK) || errors.Is(err, syscall.EAGAIN) {
			return nil, errBusy
		}
		return nil, fmt.Errorf("flock: %w", err)
	}
	if err := writeOwner(f, l.now()); err != nil {
		_ = unlock(f)
		return nil, fmt.Errorf("write lock file: %w", err)
	}
	return f, nil
}

func writeOwner(f *os.File, at time.Time) error {
	if err := f.Truncate(0); err != nil {
		return err
	}
	_, err := f.WriteAt([]byte(fmt.Sprintf("%d:%d", os.Getpid(), at.UnixMilli())), 0)
	return err
}

func unlock(f *os.File) error {
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_UN); err != nil {
		return errors.Join(fmt.Errorf("release lock: %w", err), f.Close())
	}
	return f.Close()
}

func (l *Lock) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

// Owner читает содержимое файла блокировки: pid и момент последнего захвата.
func Owner(path string) (int, time.Time, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, time.Time{}, err
	}
	var pid int
	var millis int64
	if _, err := fmt.Sscanf(string(raw), "%d:%d", &pid, &millis); err != nil {
		return 0, time.Time{}, fmt.Errorf("parse lock owner %q: %w", raw, err)
	}
	return pid, time.UnixMilli(millis), nil
}
