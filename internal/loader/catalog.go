package loader

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"streampulse/internal/events"
)

type catalogFile struct {
	Videos []catalogEntry `yaml:"videos"`
}

type catalogEntry struct {
	VideoID     string `yaml:"video_id"`
	CreatorID   string `yaml:"creator_id"`
	PublishTime string `yaml:"publish_time"`
	Category    string `yaml:"category"`
	Views       int64  `yaml:"views"`
}

// LoadVideoCatalog reads static video metadata from a YAML catalog. The
// simulator samples from it when generating synthetic traffic.
func (l *Loader) LoadVideoCatalog(path string) ([]events.VideoMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}

	catalog := make([]events.VideoMetadata, 0, len(file.Videos))
	for i, entry := range file.Videos {
		if entry.VideoID == "" || entry.CreatorID == "" {
			return nil, fmt.Errorf("catalog %s: entry %d: video_id and creator_id are required", path, i)
		}
		publishTime, err := events.ParseEventTime(entry.PublishTime)
		if err != nil {
			return nil, fmt.Errorf("catalog %s: entry %d: %w", path, i, err)
		}
		if entry.Views < 0 {
			return nil, fmt.Errorf("catalog %s: entry %d: views cannot be negative", path, i)
		}
		catalog = append(catalog, events.VideoMetadata{
			VideoID:     entry.VideoID,
			CreatorID:   entry.CreatorID,
			PublishTime: publishTime,
			Category:    entry.Category,
			Views:       entry.Views,
		})
	}

	l.logger.Info("Loaded video catalog", slog.String("path", path), slog.Int("videos", len(catalog)))
	return catalog, nil
}
