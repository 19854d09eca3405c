package video

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"nach-yomi-bot/internal/domain"
	"nach-yomi-bot/internal/infra/metrics"
)

// Ограничения конвертации.
const (
	DefaultTimeout  = 2 * time.Minute
	DefaultMaxBytes = 50 << 20
	// maxDuration обрезает шиур до первых 10 минут.
	maxDuration = "600"
)

// ErrFFmpegMissing возвращается, если ffmpeg не установлен.
var ErrFFmpegMissing = errors.New("video: ffmpeg is not available")

// FFmpegConverter скачивает HLS-поток в MP4 без перекодирования.
type FFmpegConverter struct {
	Bin      string
	Dir      string
	Timeout  time.Duration
	MaxBytes int64

	logger    zerolog.Logger
	checkOnce sync.Once
	checkErr  error
}

// NewFFmpeg создаёт конвертер, пишущий во временный каталог ОС.
func NewFFmpeg(logger zerolog.Logger) *FFmpegConverter {
	return &FFmpegConverter{
		Bin:      "ffmpeg",
		Dir:      os.TempDir(),
		Timeout:  DefaultTimeout,
		MaxBytes: DefaultMaxBytes,
		logger:   logger,
	}
}

// Available проверяет, что ffmpeg запускается.
func (c *FFmpegConverter) Available(ctx context.Context) error {
	c.checkOnce.Do(func() {
		if err := exec.CommandContext(ctx, c.Bin, "-version").Run(); err != nil {
			c.checkErr = fmt.Errorf("%w: %v", ErrFFmpegMissing, err)
		}
	})
	return c.checkErr
}

// Convert сохраняет поток hlsURL в файл shiur_<name>.mp4.
// Файл больше MaxBytes удаляется, результат помечается TooLarge.
func (c *FFmpegConverter) Convert(ctx context.Context, hlsURL, name string) (domain.VideoConversion, error) {
	if err := c.Available(ctx); err != nil {
		return domain.VideoConversion{}, err
	}
	out := filepath.Join(c.Dir, "shiur_"+name+".mp4")

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	args := []string{
		"-y",
		"-protocol_whitelist", "file,http,https,tcp,tls,crypto",
		"-i", hlsURL,
		"-c", "copy",
		"-bsf:a", "aac_adtstoasc",
		"-movflags", "+faststart",
		"-t", maxDuration,
		out,
	}
	start := time.Now()
	cmd := exec.CommandContext(ctx, c.Bin, args...)
	output, err := cmd.CombinedOutput()
	metrics.ObserveNetworkRequest("ffmpeg", "convert", "kolhalashon", start, err)
	if err != nil {
		_ = os.Remove(out)
		return domain.VideoConversion{}, fmt.Errorf("ffmpeg: %w: %s", err, tail(string(output), 300))
	}

	info, err := os.Stat(out)
	if err != nil {
		return domain.VideoConversion{}, fmt.Errorf("stat converted video: %w", err)
	}
	size := info.Size()
	if size > c.MaxBytes {
		c.logger.Warn().Str("video", name).Int64("bytes", size).Msg("видео больше лимита Telegram, отправим ссылку")
		_ = os.Remove(out)
		return domain.VideoConversion{TooLarge: true, SizeBytes: size}, nil
	}
	c.logger.Info().Str("video", name).Int64("bytes", size).Dur("took", time.Since(start)).Msg("видео сконвертировано")
	return domain.VideoConversion{Path: out, SizeBytes: size}, nil
}

// Cleanup удаляет файл конвертации.
func (c *FFmpegConverter) Cleanup(conv domain.VideoConversion) {
	if conv.Path == "" {
		return
	}
	if err := os.Remove(conv.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		c.logger.Warn().Err(err).Str("path", conv.Path).Msg("не удалось удалить видео")
	}
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

var _ domain.VideoConverter = (*FFmpegConverter)(nil)
