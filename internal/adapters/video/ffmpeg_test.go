package video

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// fakeFFmpeg пишет скрипт, который записывает в последний аргумент FAKE_FFMPEG_SIZE байт
// и сохраняет аргументы в файл args.
func fakeFFmpeg(t *testing.T) (bin, argsFile string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake")
	}
	dir := t.TempDir()
	argsFile = filepath.Join(dir, "args")
	bin = filepath.Join(dir, "ffmpeg")
	script := `#!/bin/sh
if [ "$1" = "-version" ]; then exit 0; fi
echo "$@" > "` + argsFile + `"
for a; do last="$a"; done
head -c "${FAKE_FFMPEG_SIZE:-10}" /dev/zero > "$last"
`
	if err := os.WriteFile(bin, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake ffmpeg: %v", err)
	}
	return bin, argsFile
}

func TestConvertSingleFile(t *testing.T) {
	bin, argsFile := fakeFFmpeg(t)
	c := NewFFmpeg(zerolog.Nop())
	c.Bin = bin
	c.Dir = t.TempDir()

	conv, err := c.Convert(context.Background(), "https://media/playlist.m3u8", "31470133")
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if conv.TooLarge || conv.SizeBytes != 10 || conv.Path != filepath.Join(c.Dir, "shiur_31470133.mp4") {
		t.Fatalf("unexpected conversion %+v", conv)
	}
	raw, _ := os.ReadFile(argsFile)
	args := string(raw)
	for _, want := range []string{"-protocol_whitelist file,http,https,tcp,tls,crypto", "-i https://media/playlist.m3u8", "-c copy", "-bsf:a aac_adtstoasc", "-movflags +faststart", "-t 600"} {
		if !strings.Contains(args, want) {
			t.Fatalf("args %q miss %q", args, want)
		}
	}

	c.Cleanup(conv)
	if _, err := os.Stat(conv.Path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Cleanup must remove the file")
	}
	c.Cleanup(conv)
}

func TestConvertTooLarge(t *testing.T) {
	bin, _ := fakeFFmpeg(t)
	t.Setenv("FAKE_FFMPEG_SIZE", "2048")
	c := NewFFmpeg(zerolog.Nop())
	c.Bin = bin
	c.Dir = t.TempDir()
	c.MaxBytes = 1024

	conv, err := c.Convert(context.Background(), "https://media/playlist.m3u8", "1")
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !conv.TooLarge || conv.Path != "" || conv.SizeBytes != 2048 {
		t.Fatalf("expected TooLarge, got %+v", conv)
	}
	if _, err := os.Stat(filepath.Join(c.Dir, "shiur_1.mp4")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("oversized file must be removed")
	}
}

func TestConvertMissingBinary(t *testing.T) {
	c := NewFFmpeg(zerolog.Nop())
	c.Bin = filepath.Join(t.TempDir(), "no-ffmpeg")
	if _, err := c.Convert(context.Background(), "x", "1"); !errors.Is(err, ErrFFmpegMissing) {
		t.Fatalf("expected ErrFFmpegMissing, got %v", err)
	}
}
