package knowledge

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
)

// Base is the legal reference text prepended to every analysis prompt.
// It is read once and never changes afterwards.
type Base struct {
	bns          string
	constitution string
	text         string
}

// Load reads both knowledge files. A missing file is logged and contributes an
// empty body; any other read error is returned.
func Load(logger *slog.Logger, bnsPath, constitutionPath string) (*Base, error) {
	if logger == nil {
		logger = slog.Default()
	}
	bns, err := readOptional(logger, "bns", bnsPath)
	if err != nil {
		return nil, err
	}
	constitution, err := readOptional(logger, "constitution", constitutionPath)
	if err != nil {
		return nil, err
	}
	return New(bns, constitution), nil
}

func New(bns, constitution string) *Base {
	var sb strings.Builder
	sb.WriteString("\n--- BHARATIYA NYAYA SANHITA (BNS) ---\n")
	sb.WriteString(bns)
	sb.WriteString("\n\n--- INDIAN CONSTITUTION ---\n")
	sb.WriteString(constitution)
	sb.WriteString("\n")
	return &Base{bns: bns, constitution: constitution, text: sb.String()}
}

func (b *Base) String() string {
	return b.text
}

// Loaded reports which sources contributed text.
func (b *Base) Loaded() (bns, constitution bool) {
	return b.bns != "", b.constitution != ""
}

func readOptional(logger *slog.Logger, name, path string) (string, error) {
	if path == "" {
		logger.Warn("knowledge file not configured", "source", name)
		return "", nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("knowledge file not found", "source", name, "path", path)
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read knowledge file %s failed: %w", path, err)
	}
	logger.Info("knowledge file loaded", "source", name, "path", path, "bytes", len(data))
	return string(data), nil
}
