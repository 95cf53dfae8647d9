package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

const filePrefix = "ms365"

func categoryFileName(k groupKey) string {
	return fmt.Sprintf("%s_%s_%s_%s.txt", filePrefix, k.Area, k.Addr, k.Dim)
}

func portFileName(k groupKey) string {
	return fmt.Sprintf("%s_%s_%s_port%s.txt", filePrefix, k.Area, k.Addr, k.Dim)
}

// cleanOutputDir creates dir when missing and removes every .txt left over
// from a previous run. Service areas that vanish from the feed must not
// leave stale lists behind.
func cleanOutputDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	stale, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return err
	}
	for _, f := range stale {
		if err := os.Remove(f); err != nil {
			return err
		}
	}
	return nil
}

// dedupSort returns a sorted, duplicate-free copy of values. Dedup is exact
// string comparison: "13.107.6.152" and "13.107.6.152/32" stay distinct.
func dedupSort(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// writeGroups materializes every non-empty group into dir, one value per
// line with a trailing newline, overwriting existing files. Keys are walked
// in sorted order so log output is stable across runs. Returns the number
// of files written.
func writeGroups(dir string, groups groupSet, fileName func(groupKey) string, logger *zap.Logger) (int, error) {
	keys := make([]groupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})

	written := 0
	for _, k := range keys {
		entries := dedupSort(groups[k])
		if len(entries) == 0 {
			continue
		}
		name := fileName(k)
		path := filepath.Join(dir, name)
		content := strings.Join(entries, "\n") + "\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		logger.Info("wrote list",
			zap.String("file", name),
			zap.Int("entries", len(entries)))
		written++
	}
	return written, nil
}
