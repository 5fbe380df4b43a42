package exporter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Bios-Marcel/wastebasket/v2"
	"go.uber.org/zap"

	"github.com/Faultbox/ccexport/internal/logger"
)

var (
	// ErrUnsafePath is returned when a destination is too short to delete.
	ErrUnsafePath = errors.New("refusing to delete unsafe path")
	// ErrFilesystem wraps failures creating or deleting destination folders.
	ErrFilesystem = errors.New("filesystem error")
)

// CharacterConfigFolder is the wrapper added when AddRootFolder is set.
const CharacterConfigFolder = "character_config"

// minSafePathLen is the shortest absolute path that may be deleted; "/" and
// "C:\" fall below it.
const minSafePathLen = 4

// Target returns the folder the export writes into.
func Target(opts Options) string {
	if opts.AddRootFolder {
		return filepath.Join(opts.Root, CharacterConfigFolder)
	}
	return opts.Root
}

// CheckDestructive rejects targets that look like a filesystem root.
func CheckDestructive(target string) error {
	abs, err := filepath.Abs(target)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnsafePath, target, err)
	}
	if len(abs) < minSafePathLen {
		return fmt.Errorf("%w: %s", ErrUnsafePath, target)
	}
	return nil
}

// ResetDestination deletes target if it exists, or moves it to the trash when
// trash is set. A missing target is not an error.
func ResetDestination(target string, trash bool) error {
	if err := CheckDestructive(target); err != nil {
		return err
	}
	if _, err := os.Stat(target); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if trash {
		logger.Info("moving destination to trash", zap.String("path", target))
		if err := wastebasket.Trash(target); err != nil {
			return fmt.Errorf("%w: trashing %s: %v", ErrFilesystem, target, err)
		}
		return nil
	}

	logger.Info("deleting destination", zap.String("path", target))
	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("%w: deleting %s: %v", ErrFilesystem, target, err)
	}
	return nil
}

func makeDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrFilesystem, path, err)
	}
	return nil
}
