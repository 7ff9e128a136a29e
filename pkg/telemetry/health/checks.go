package health

import (
	"context"
	"errors"
	"fmt"
	"os"

	"mealshare/trustcore/pkg/safety"
)

// TermSetCheck fails while source has no term set or an empty one. The
// sidecar must not report ready before it can actually reject content.
func TermSetCheck(source safety.TermSource) CheckFunc {
	return func(ctx context.Context) error {
		if source == nil {
			return errors.New("no term source configured")
		}
		ts := source.TermSet()
		if ts == nil {
			return errors.New("term set not loaded")
		}
		if ts.Len() == 0 {
			return errors.New("term set is empty")
		}
		return nil
	}
}

// DictionaryFileCheck fails when the dictionary at path can no longer be
// read. The loaded term set stays in use, but the next reload would fail.
func DictionaryFileCheck(path string) CheckFunc {
	return func(ctx context.Context) error {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("dictionary unreadable: %w", err)
		}
		return f.Close()
	}
}
