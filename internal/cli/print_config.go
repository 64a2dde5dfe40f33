package cli

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/calvinalkan/vwplan/internal/config"
	"github.com/calvinalkan/vwplan/internal/plan"
)

func execPrintConfig(io *IO, cfg config.Config, date time.Time) error {
	mapping, err := plan.Generate(cfg.Tags, date)
	if err != nil {
		return err
	}

	tempPath := cfg.TempPath
	if tempPath == "" {
		tempPath = "(in memory)"
	}

	io.Println("wiki_path=" + cfg.WikiPath)
	io.Println("tags_file=" + cfg.IndexPath())
	io.Println("diary_dir=" + cfg.DiaryPath())
	io.Println("temp_path=" + tempPath)
	io.Println("target=" + cfg.TargetPath(date))
	io.Println("sections=" + strings.Join(cfg.Sections, ", "))

	io.Println("")
	io.Println("# tags for " + date.Format(time.DateOnly))

	for _, tag := range slices.Sorted(maps.Keys(mapping)) {
		route := mapping[tag]
		io.Printf("%s -> %s (%s)\n", tag, route.Section, route.Display)
	}

	io.Println("")
	io.Println("# sources")
	io.Println("config=" + cfg.Source)

	return nil
}
